package flow

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when asking a value for a capability it does not
// provide.
var ErrUnsupported = errors.New("flow: unsupported")

type subscriberCounter interface {
	Subscribers() int
}

// SubscriberCount returns the number of observers attached to v. Values that
// do not track observers, such as a plain Flow, fail with ErrUnsupported
// rather than reporting zero.
func SubscriberCount(v any) (int, error) {
	c, ok := v.(subscriberCounter)
	if !ok {
		return 0, fmt.Errorf("%w: %T does not count subscribers", ErrUnsupported, v)
	}
	return c.Subscribers(), nil
}
