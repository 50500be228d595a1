package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultStopTimeout is how long a Shared state keeps its upstream running
// after the last subscriber detached.
const DefaultStopTimeout = 5 * time.Second

type sharedConfig struct {
	stopTimeout time.Duration
	resetOnStop bool
	logger      *slog.Logger
}

// SharedOption configures StateIn.
type SharedOption func(*sharedConfig)

// WithStopTimeout sets the grace period between the last subscriber
// detaching and the upstream being cancelled. Zero stops immediately.
func WithStopTimeout(d time.Duration) SharedOption {
	return func(c *sharedConfig) {
		if d >= 0 {
			c.stopTimeout = d
		}
	}
}

// WithResetOnStop restores the initial value whenever the upstream is
// stopped for lack of subscribers.
func WithResetOnStop() SharedOption {
	return func(c *sharedConfig) { c.resetOnStop = true }
}

// WithLogger sets the logger used for upstream failures.
func WithLogger(l *slog.Logger) SharedOption {
	return func(c *sharedConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

type upstreamState int

const (
	upstreamStopped upstreamState = iota
	upstreamRunning
	upstreamCompleted
)

// Shared bridges a Flow into a State. The upstream is collected only while
// someone is subscribed, and one collection is shared by all subscribers.
type Shared[T any] struct {
	scope   context.Context
	source  Flow[T]
	initial T
	cfg     sharedConfig
	cell    *MutableState[T]

	mu       sync.Mutex
	subs     int
	upstream upstreamState
	cancel   context.CancelFunc
	gen      uint64
	idle     *time.Timer
	idleGen  uint64
	stopped  bool
}

// StateIn returns a State that is fed by source and seeded with initial.
// Cancelling scope is terminal: the upstream stops and every subscription
// ends. The last value stays readable.
func StateIn[T any](scope context.Context, source Flow[T], initial T, opts ...SharedOption) *Shared[T] {
	cfg := sharedConfig{stopTimeout: DefaultStopTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Shared[T]{
		scope:   scope,
		source:  source,
		initial: initial,
		cfg:     cfg,
		cell:    NewMutableState(initial),
	}
	context.AfterFunc(scope, s.shutdown)
	return s
}

// Value returns the latest value without blocking.
//
// The read is best effort. While no upstream collection is running and the
// source can answer without waiting (it implements Peeker), the fresh value is
// probed and cached. Otherwise the last value pushed by the upstream is
// returned, which may lag behind what the source would produce next.
func (s *Shared[T]) Value() T {
	cached, version := s.cell.Snapshot()
	if s.Active() {
		return cached
	}
	p, ok := s.source.(Peeker[T])
	if !ok {
		return cached
	}
	fresh, ok := p.Peek()
	if !ok {
		return cached
	}
	if s.cell.CompareAndSet(version, fresh) {
		return fresh
	}
	// An authoritative push won the race.
	return s.cell.Value()
}

// Peek implements Peeker so a Shared can feed another StateIn.
func (s *Shared[T]) Peek() (T, bool) {
	return s.Value(), true
}

// Subscribe attaches an observer, starting the upstream if needed.
func (s *Shared[T]) Subscribe() *Subscription[T] {
	sub := s.cell.subscribe(s.release)
	s.acquire()
	return sub
}

// Collect delivers values to emit until ctx is cancelled or the scope ends.
func (s *Shared[T]) Collect(ctx context.Context, emit func(T)) error {
	return collect[T](ctx, s, emit)
}

// Subscribers returns the number of attached observers.
func (s *Shared[T]) Subscribers() int {
	return s.cell.Subscribers()
}

// Active reports whether the upstream is currently being collected.
func (s *Shared[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upstream == upstreamRunning
}

func (s *Shared[T]) acquire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.subs++
	if s.subs > 1 {
		return
	}
	if s.idle != nil {
		// Reattached inside the grace window: keep whatever is running.
		s.idle.Stop()
		s.idle = nil
		s.idleGen++
		return
	}
	if s.upstream == upstreamStopped {
		s.startLocked()
	}
}

func (s *Shared[T]) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.subs == 0 {
		return
	}
	s.subs--
	if s.subs > 0 {
		return
	}
	if s.cfg.stopTimeout == 0 {
		s.stopLocked()
		return
	}
	s.idleGen++
	token := s.idleGen
	s.idle = time.AfterFunc(s.cfg.stopTimeout, func() { s.expire(token) })
}

func (s *Shared[T]) expire(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || token != s.idleGen || s.subs > 0 {
		return
	}
	s.idle = nil
	s.stopLocked()
}

func (s *Shared[T]) startLocked() {
	ctx, cancel := context.WithCancel(s.scope)
	s.cancel = cancel
	s.upstream = upstreamRunning
	s.gen++
	go s.run(ctx, s.gen)
}

func (s *Shared[T]) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	// Bumping gen makes the finishing run leave the state alone.
	s.gen++
	s.upstream = upstreamStopped
	if s.cfg.resetOnStop {
		s.cell.Set(s.initial)
	}
}

func (s *Shared[T]) run(ctx context.Context, gen uint64) {
	err := s.source.Collect(ctx, func(v T) {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A stopped run must not overwrite a reset.
		if gen != s.gen || ctx.Err() != nil {
			return
		}
		s.cell.Set(v)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.cfg.logger.Warn("flow: upstream failed", "err", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.upstream = upstreamCompleted
	s.cancel = nil
}

func (s *Shared[T]) shutdown() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.upstream = upstreamStopped
	s.mu.Unlock()

	s.cell.Close()
}
