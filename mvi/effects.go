package mvi

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jask/gomvi/event"
	"github.com/jask/gomvi/flow"
)

// Effects owns the view-model scope and the two effect channels. It is
// embedded by Base and Derived.
type Effects[NE, VE any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup
	closers []func()

	closeOnce sync.Once
	done      chan struct{}

	nav  *flow.MutableState[*event.Consumable[NE]]
	view *flow.MutableState[*event.Consumable[VE]]
}

func newEffects[NE, VE any](parent context.Context, logger *slog.Logger) *Effects[NE, VE] {
	ctx, cancel := context.WithCancel(parent)
	e := &Effects[NE, VE]{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		done:   make(chan struct{}),
		nav:    flow.NewMutableState[*event.Consumable[NE]](nil),
		view:   flow.NewMutableState[*event.Consumable[VE]](nil),
	}
	// A cancelled parent tears the view-model down too.
	context.AfterFunc(ctx, func() { go e.Close() })
	return e
}

// Context returns the view-model scope. It is cancelled by Close.
func (e *Effects[NE, VE]) Context() context.Context { return e.ctx }

// Logger returns the view-model logger.
func (e *Effects[NE, VE]) Logger() *slog.Logger { return e.logger }

// NavigationEffects returns the pending navigation effect, or nil.
func (e *Effects[NE, VE]) NavigationEffects() flow.State[*event.Consumable[NE]] {
	return e.nav.ReadOnly()
}

// ViewEffects returns the pending view effect, or nil.
func (e *Effects[NE, VE]) ViewEffects() flow.State[*event.Consumable[VE]] {
	return e.view.ReadOnly()
}

// DispatchNavigationEffect publishes effect, replacing any navigation effect
// that was not consumed yet.
func (e *Effects[NE, VE]) DispatchNavigationEffect(effect NE) {
	if e.rejectClosed("dispatch navigation effect") {
		return
	}
	e.nav.Set(event.New(effect))
}

// ClearNavigationEffect drops the pending navigation effect.
func (e *Effects[NE, VE]) ClearNavigationEffect() {
	if e.rejectClosed("clear navigation effect") {
		return
	}
	e.nav.Set(nil)
}

// DispatchViewEffect publishes effect, replacing any view effect that was not
// consumed yet.
func (e *Effects[NE, VE]) DispatchViewEffect(effect VE) {
	if e.rejectClosed("dispatch view effect") {
		return
	}
	e.view.Set(event.New(effect))
}

// ClearViewEffect drops the pending view effect.
func (e *Effects[NE, VE]) ClearViewEffect() {
	if e.rejectClosed("clear view effect") {
		return
	}
	e.view.Set(nil)
}

// Launch runs fn in a goroutine bound to the view-model scope. Close cancels
// the context passed to fn and waits for fn to return. Launch reports false
// and does nothing once the view-model is closed.
func (e *Effects[NE, VE]) Launch(fn func(ctx context.Context)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.logger.Debug("mvi: launch after close ignored")
		return false
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn(e.ctx)
	}()
	return true
}

// Closed reports whether the view-model was torn down.
func (e *Effects[NE, VE]) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close tears the view-model down: the scope is cancelled, launched work is
// awaited and every state holder stops emitting. Later calls that would
// change state are ignored. Close is idempotent and every caller returns only
// once teardown has finished, so it must not be called from work started by
// Launch.
func (e *Effects[NE, VE]) Close() {
	e.closeOnce.Do(e.teardown)
	<-e.done
}

func (e *Effects[NE, VE]) teardown() {
	defer close(e.done)

	e.mu.Lock()
	e.closed = true
	closers := e.closers
	e.closers = nil
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
	for _, fn := range closers {
		fn()
	}
	e.nav.Close()
	e.view.Close()
	e.logger.Debug("mvi: closed")
}

func (e *Effects[NE, VE]) onClose(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closers = append(e.closers, fn)
}

func (e *Effects[NE, VE]) rejectClosed(op string) bool {
	if !e.Closed() {
		return false
	}
	e.logger.Debug("mvi: ignored after close", "op", op)
	return true
}
