// Package flow implements the observable primitives behind the MVI contract:
// a lazily collected asynchronous sequence (Flow), a latest-value state holder
// with replay-one subscriptions (MutableState), and the adapter that shares one
// upstream collection between many observers while keeping a synchronously
// readable latest value (StateIn).
package flow

import (
	"context"
	"time"
)

// Flow is a cold asynchronous sequence. Collect runs the producer and calls
// emit for every value until the sequence ends or ctx is cancelled.
type Flow[T any] interface {
	Collect(ctx context.Context, emit func(T)) error
}

// FlowFunc adapts a producer function to Flow.
type FlowFunc[T any] func(ctx context.Context, emit func(T)) error

// Collect calls f.
func (f FlowFunc[T]) Collect(ctx context.Context, emit func(T)) error {
	return f(ctx, emit)
}

// Peeker is implemented by sources that can report a current value without
// blocking. ok is false when no value is available without waiting.
type Peeker[T any] interface {
	Peek() (value T, ok bool)
}

// Of returns a finite flow that emits values in order.
func Of[T any](values ...T) Flow[T] {
	return FlowFunc[T](func(ctx context.Context, emit func(T)) error {
		for _, v := range values {
			if err := ctx.Err(); err != nil {
				return err
			}
			emit(v)
		}
		return nil
	})
}

// Ticker emits 0 immediately and then the next integer after every interval.
// It only stops when ctx is cancelled.
func Ticker(interval time.Duration) Flow[int] {
	return FlowFunc[int](func(ctx context.Context, emit func(int)) error {
		timer := time.NewTimer(interval)
		defer timer.Stop()
		for n := 0; ; n++ {
			emit(n)
			timer.Reset(interval)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	})
}

type mapped[T, R any] struct {
	src Flow[T]
	fn  func(T) R
}

// Map transforms every value of src with fn. The result keeps the
// non-blocking probe of src when src implements Peeker.
func Map[T, R any](src Flow[T], fn func(T) R) Flow[R] {
	return &mapped[T, R]{src: src, fn: fn}
}

func (m *mapped[T, R]) Collect(ctx context.Context, emit func(R)) error {
	return m.src.Collect(ctx, func(v T) { emit(m.fn(v)) })
}

func (m *mapped[T, R]) Peek() (R, bool) {
	if p, ok := m.src.(Peeker[T]); ok {
		if v, ok := p.Peek(); ok {
			return m.fn(v), true
		}
	}
	var zero R
	return zero, false
}
