package flow

import (
	"context"
	"sync"
)

// State is the read-only view of a state holder. It always has a value.
type State[T any] interface {
	Flow[T]

	// Value returns the latest value without blocking.
	Value() T

	// Subscribe attaches a new observer. The latest value is delivered first.
	Subscribe() *Subscription[T]

	// Subscribers returns the number of attached observers.
	Subscribers() int
}

// StateOption configures a MutableState.
type StateOption[T any] func(*MutableState[T])

// WithEqual makes Set ignore values equal to the current one.
func WithEqual[T any](equal func(a, b T) bool) StateOption[T] {
	return func(s *MutableState[T]) { s.equal = equal }
}

// MutableState is a single-value container. Every accepted write bumps a
// version counter, which CompareAndSet uses to reject writes computed from a
// stale read.
type MutableState[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
	subs    map[*Subscription[T]]struct{}
	equal   func(a, b T) bool
	closed  bool
}

// NewMutableState returns a state holder seeded with initial.
func NewMutableState[T any](initial T, opts ...StateOption[T]) *MutableState[T] {
	s := &MutableState[T]{
		value: initial,
		subs:  make(map[*Subscription[T]]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Value returns the current value.
func (s *MutableState[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Snapshot returns the current value together with its version.
func (s *MutableState[T]) Snapshot() (T, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.version
}

// Peek implements Peeker; a state holder can always answer without waiting.
func (s *MutableState[T]) Peek() (T, bool) {
	return s.Value(), true
}

// Set replaces the value and pushes it to every subscriber. It is a no-op
// once the holder is closed.
func (s *MutableState[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(v)
}

// Update replaces the value with fn(current) atomically and returns the new
// value. fn must not touch the holder.
func (s *MutableState[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(fn(s.value))
	return s.value
}

// CompareAndSet stores v only if no write happened since version was read.
func (s *MutableState[T]) CompareAndSet(version uint64, v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version || s.closed {
		return false
	}
	s.setLocked(v)
	return true
}

func (s *MutableState[T]) setLocked(v T) {
	if s.closed {
		return
	}
	if s.equal != nil && s.equal(s.value, v) {
		return
	}
	s.value = v
	s.version++
	for sub := range s.subs {
		sub.push(v)
	}
}

// Subscribe attaches an observer.
func (s *MutableState[T]) Subscribe() *Subscription[T] {
	return s.subscribe(nil)
}

func (s *MutableState[T]) subscribe(onDetach func()) *Subscription[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sub *Subscription[T]
	sub = newSubscription(s.value, func() {
		s.mu.Lock()
		_, attached := s.subs[sub]
		delete(s.subs, sub)
		s.mu.Unlock()
		if attached && onDetach != nil {
			onDetach()
		}
	})
	if s.closed {
		sub.end()
		return sub
	}
	s.subs[sub] = struct{}{}
	return sub
}

// Collect delivers the latest value and every later one to emit until ctx is
// cancelled or the holder is closed. It returns nil when the holder closes.
func (s *MutableState[T]) Collect(ctx context.Context, emit func(T)) error {
	return collect[T](ctx, s, emit)
}

// Subscribers returns the number of attached observers.
func (s *MutableState[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close ends every subscription after its queued values are delivered and
// makes later writes no-ops. The last value stays readable.
func (s *MutableState[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		sub.end()
	}
	clear(s.subs)
}

// Closed reports whether Close was called.
func (s *MutableState[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ReadOnly returns a view that cannot be type-asserted back to the mutable
// holder.
func (s *MutableState[T]) ReadOnly() State[T] {
	return readOnly[T]{s: s}
}

type readOnly[T any] struct {
	s *MutableState[T]
}

func (r readOnly[T]) Value() T                    { return r.s.Value() }
func (r readOnly[T]) Subscribe() *Subscription[T] { return r.s.Subscribe() }
func (r readOnly[T]) Subscribers() int            { return r.s.Subscribers() }
func (r readOnly[T]) Peek() (T, bool)             { return r.s.Peek() }

func (r readOnly[T]) Collect(ctx context.Context, emit func(T)) error {
	return r.s.Collect(ctx, emit)
}

func collect[T any](ctx context.Context, st State[T], emit func(T)) error {
	sub := st.Subscribe()
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v, ok := <-sub.C():
			if !ok {
				return nil
			}
			emit(v)
		}
	}
}
