package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/gomvi/lifecycle"
	"github.com/jask/gomvi/mvi"
)

// Screen is one entry of the screen stack: a view-model, the lifecycle owner
// gating it and the rendering of its state.
type Screen interface {
	ID() string
	Route() string
	Title() string
	Scope() string
	Owner() *lifecycle.Owner
	View(width, height int) string

	start(ctx context.Context, out chan<- tea.Msg)
	handle(a Action) bool
	close()
}

// Phases holds the minimum phases used by every screen.
type Phases struct {
	State  lifecycle.Phase
	Effect lifecycle.Phase
	Event  lifecycle.Phase
}

// host binds a view-model to the screen stack. Its state field is written
// only from App.Update.
type host[VS, EV, NE, VE any] struct {
	id     string
	route  string
	title  string
	scope  string
	owner  *lifecycle.Owner
	vm     mvi.ViewModel[VS, EV, NE, VE]
	closer func()
	gate   *mvi.EventGate[EV]
	phases Phases
	logger *slog.Logger

	state VS

	events   func(Action) (EV, bool)
	navigate func(NE) Navigation
	toast    func(VE) string
	render   func(state VS, width, height int) string

	cancel context.CancelFunc
	done   chan struct{}
}

type hostConfig[VS, EV, NE, VE any] struct {
	route    string
	title    string
	scope    string
	vm       mvi.ViewModel[VS, EV, NE, VE]
	closer   func()
	phases   Phases
	logger   *slog.Logger
	events   func(Action) (EV, bool)
	navigate func(NE) Navigation
	toast    func(VE) string
	render   func(state VS, width, height int) string
}

func newHost[VS, EV, NE, VE any](c hostConfig[VS, EV, NE, VE]) *host[VS, EV, NE, VE] {
	id := uuid.NewString()
	logger := c.logger.With("screen", c.route, "id", id[:8])
	owner := lifecycle.NewOwner(c.route, logger)
	return &host[VS, EV, NE, VE]{
		id:       id,
		route:    c.route,
		title:    c.title,
		scope:    c.scope,
		owner:    owner,
		vm:       c.vm,
		closer:   c.closer,
		gate:     mvi.NewEventGate(owner, c.phases.Event, c.vm.OnEvent),
		phases:   c.phases,
		logger:   logger,
		state:    c.vm.ViewStates().Value(),
		events:   c.events,
		navigate: c.navigate,
		toast:    c.toast,
		render:   c.render,
	}
}

func (h *host[VS, EV, NE, VE]) ID() string              { return h.id }
func (h *host[VS, EV, NE, VE]) Route() string           { return h.route }
func (h *host[VS, EV, NE, VE]) Title() string           { return h.title }
func (h *host[VS, EV, NE, VE]) Scope() string           { return h.scope }
func (h *host[VS, EV, NE, VE]) Owner() *lifecycle.Owner { return h.owner }

func (h *host[VS, EV, NE, VE]) View(width, height int) string {
	return h.render(h.state, width, height)
}

func (h *host[VS, EV, NE, VE]) start(ctx context.Context, out chan<- tea.Msg) {
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})

	send := func(msg tea.Msg) {
		select {
		case out <- msg:
		case <-ctx.Done():
		}
	}
	obs := mvi.Observers[VS, NE, VE]{
		OnViewState: func(s VS) {
			send(stateMsg{screen: h.id, apply: func() { h.state = s }})
		},
		StateMinPhase:  h.phases.State,
		EffectMinPhase: h.phases.Effect,
	}
	if h.navigate != nil {
		obs.OnNavigationEffect = func(e NE) {
			send(navigateMsg{screen: h.id, nav: h.navigate(e)})
		}
	}
	if h.toast != nil {
		obs.OnViewEffect = func(e VE) {
			send(toastMsg{screen: h.id, text: h.toast(e)})
		}
	}

	go func() {
		defer close(h.done)
		err := mvi.ObserveViewModel(ctx, h.owner, h.vm, obs)
		if err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Warn("tui: observer stopped", "err", err)
		}
	}()
}

// handle turns a key action into a view-model event. It reports false when
// the action means nothing to this screen or the screen is not resumed.
func (h *host[VS, EV, NE, VE]) handle(a Action) bool {
	if h.events == nil {
		return false
	}
	ev, ok := h.events(a)
	if !ok {
		return false
	}
	if !h.gate.Dispatch(ev) {
		h.logger.Debug("tui: event dropped", "action", a, "phase", h.owner.Phase())
		return false
	}
	return true
}

// close stops the observers before destroying the owner, so an observer
// blocked on out cannot stall the caller.
func (h *host[VS, EV, NE, VE]) close() {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}
	h.owner.Destroy()
	if h.closer != nil {
		h.closer()
	}
}
