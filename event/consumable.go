// Package event provides the one-shot wrapper used to deliver view and
// navigation effects through a state holder.
//
// A state holder replays its latest value to every new observer. Wrapping an
// effect in a Consumable keeps that replay harmless: the first observer that
// consumes the payload wins and every later observer sees an already-consumed
// event.
package event

import (
	"fmt"
	"sync"
)

// Consumable owns a payload that may be handed to at most one consumer.
type Consumable[T any] struct {
	mu       sync.Mutex
	payload  T
	consumed bool
}

// New wraps payload in an unconsumed event.
func New[T any](payload T) *Consumable[T] {
	return &Consumable[T]{payload: payload}
}

// Consume invokes consumer with the payload if the event has not been consumed
// yet and reports whether it did. The check, the flag update and the call run
// under one lock, so only one caller's consumer ever runs. The consumer must not
// call back into the same event.
func (e *Consumable[T]) Consume(consumer func(T)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.consumed {
		return false
	}
	e.consumed = true
	consumer(e.payload)
	return true
}

// ConsumeOptionally passes the payload to handler if the event has not been
// consumed yet. The handler returns true when it consumed the event; returning
// false leaves the event pending for another handler. The result is true only
// when this handler consumed it.
func (e *Consumable[T]) ConsumeOptionally(handler func(T) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.consumed {
		return false
	}
	e.consumed = handler(e.payload)
	return e.consumed
}

// Peek returns the payload without consuming it.
func (e *Consumable[T]) Peek() T {
	return e.payload
}

// IsConsumed reports whether a consumer has taken the payload.
func (e *Consumable[T]) IsConsumed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.consumed
}

func (e *Consumable[T]) String() string {
	return fmt.Sprintf("Consumable(%v, consumed=%t)", e.payload, e.IsConsumed())
}
