// Package mvitest provides a scripted view-model and helpers for testing
// screens and observers without real view-model logic.
package mvitest

import (
	"sync"
	"testing"
	"time"

	"github.com/jask/gomvi/event"
	"github.com/jask/gomvi/flow"
	"github.com/jask/gomvi/mvi"
)

// Timeout bounds the waits of NextValue.
var Timeout = 2 * time.Second

// ViewModel is a view-model with a fixed initial state that records every
// event it receives. Tests drive it through the embedded Base setters.
type ViewModel[VS, EV, NE, VE any] struct {
	*mvi.Base[VS, NE, VE]

	mu     sync.Mutex
	events []EV
}

var _ mvi.ViewModel[int, string, string, string] = (*ViewModel[int, string, string, string])(nil)

type options[NE, VE any] struct {
	view *VE
	nav  *NE
}

// Option seeds a ViewModel built by New.
type Option[NE, VE any] func(*options[NE, VE])

// WithViewEffect dispatches effect right after construction.
func WithViewEffect[NE, VE any](effect VE) Option[NE, VE] {
	return func(o *options[NE, VE]) { o.view = &effect }
}

// WithNavigationEffect dispatches effect right after construction.
func WithNavigationEffect[VE, NE any](effect NE) Option[NE, VE] {
	return func(o *options[NE, VE]) { o.nav = &effect }
}

// New returns a ViewModel seeded with state. It is closed when the test ends.
func New[VS, EV, NE, VE any](t testing.TB, state VS, opts ...Option[NE, VE]) *ViewModel[VS, EV, NE, VE] {
	t.Helper()
	base, err := mvi.NewBase[VS, NE, VE](mvi.WithInitialState(state), mvi.WithName[VS]("test"))
	if err != nil {
		t.Fatalf("mvitest: %v", err)
	}
	t.Cleanup(base.Close)

	var o options[NE, VE]
	for _, opt := range opts {
		opt(&o)
	}
	if o.view != nil {
		base.DispatchViewEffect(*o.view)
	}
	if o.nav != nil {
		base.DispatchNavigationEffect(*o.nav)
	}
	return &ViewModel[VS, EV, NE, VE]{Base: base}
}

// OnEvent records ev.
func (vm *ViewModel[VS, EV, NE, VE]) OnEvent(ev EV) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.events = append(vm.events, ev)
}

// Events returns the recorded events in arrival order.
func (vm *ViewModel[VS, EV, NE, VE]) Events() []EV {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]EV(nil), vm.events...)
}

// PendingEffect consumes the current effect of st and returns its payload.
// It reports false when there is no effect or it was already consumed.
func PendingEffect[E any](st flow.State[*event.Consumable[E]]) (E, bool) {
	var got E
	ev := st.Value()
	if ev == nil {
		return got, false
	}
	ok := ev.Consume(func(e E) { got = e })
	return got, ok
}

// NextValue waits for the next value of sub and fails the test when none
// arrives within Timeout or the subscription ends.
func NextValue[T any](t testing.TB, sub *flow.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		if !ok {
			t.Fatalf("mvitest: subscription ended")
		}
		return v
	case <-time.After(Timeout):
		t.Fatalf("mvitest: no value within %s", Timeout)
	}
	var zero T
	return zero
}
