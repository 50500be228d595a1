package mvi

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jask/gomvi/event"
	"github.com/jask/gomvi/flow"
	"github.com/jask/gomvi/lifecycle"
)

const (
	// DefaultStateMinPhase is the phase from which view states are rendered.
	DefaultStateMinPhase = lifecycle.Started
	// DefaultEffectMinPhase is the phase from which effects are consumed. An
	// effect dispatched earlier stays pending until the owner resumes.
	DefaultEffectMinPhase = lifecycle.Resumed
	// DefaultEventMinPhase is the phase from which user events are forwarded.
	DefaultEventMinPhase = lifecycle.Resumed
)

// ConsumeEffects consumes every effect of effects while owner is at least in
// phase min. Each effect reaches handler at most once across all observers.
// It returns like lifecycle.RepeatOnLifecycle.
func ConsumeEffects[E any](ctx context.Context, owner *lifecycle.Owner, effects flow.State[*event.Consumable[E]], min lifecycle.Phase, handler func(E)) error {
	return lifecycle.RepeatOnLifecycle(ctx, owner, min, func(ctx context.Context) {
		_ = effects.Collect(ctx, func(ev *event.Consumable[E]) {
			if ev != nil {
				ev.Consume(handler)
			}
		})
	})
}

// ObserveViewStates calls handler with every view state while owner is at
// least in phase min. Each time the owner re-enters min the current state is
// delivered again.
func ObserveViewStates[VS any](ctx context.Context, owner *lifecycle.Owner, states flow.State[VS], min lifecycle.Phase, handler func(VS)) error {
	return lifecycle.RepeatOnLifecycle(ctx, owner, min, func(ctx context.Context) {
		_ = states.Collect(ctx, handler)
	})
}

// Observers groups the callbacks of ObserveViewModel. Nil callbacks are
// skipped; zero phases fall back to the defaults above.
type Observers[VS, NE, VE any] struct {
	OnViewState        func(VS)
	OnNavigationEffect func(NE)
	OnViewEffect       func(VE)

	StateMinPhase  lifecycle.Phase
	EffectMinPhase lifecycle.Phase
}

// ObserveViewModel wires vm to the callbacks in obs for as long as owner
// lives. It returns nil once the owner is destroyed, ctx.Err() when ctx ends
// first, or the first error of the underlying observers.
func ObserveViewModel[VS, EV, NE, VE any](ctx context.Context, owner *lifecycle.Owner, vm ViewModel[VS, EV, NE, VE], obs Observers[VS, NE, VE]) error {
	statePhase := obs.StateMinPhase
	if statePhase == lifecycle.Destroyed {
		statePhase = DefaultStateMinPhase
	}
	effectPhase := obs.EffectMinPhase
	if effectPhase == lifecycle.Destroyed {
		effectPhase = DefaultEffectMinPhase
	}

	g, ctx := errgroup.WithContext(ctx)
	if obs.OnViewState != nil {
		g.Go(func() error {
			return ObserveViewStates(ctx, owner, vm.ViewStates(), statePhase, obs.OnViewState)
		})
	}
	if obs.OnNavigationEffect != nil {
		g.Go(func() error {
			return ConsumeEffects(ctx, owner, vm.NavigationEffects(), effectPhase, obs.OnNavigationEffect)
		})
	}
	if obs.OnViewEffect != nil {
		g.Go(func() error {
			return ConsumeEffects(ctx, owner, vm.ViewEffects(), effectPhase, obs.OnViewEffect)
		})
	}
	return g.Wait()
}

// EventGate forwards user events only while its owner is at least in a given
// phase. Events arriving earlier or later are dropped.
type EventGate[EV any] struct {
	owner   *lifecycle.Owner
	min     lifecycle.Phase
	onEvent func(EV)
}

// NewEventGate returns a gate in front of onEvent, usually a view-model's
// OnEvent. A zero min means DefaultEventMinPhase.
func NewEventGate[EV any](owner *lifecycle.Owner, min lifecycle.Phase, onEvent func(EV)) *EventGate[EV] {
	if min == lifecycle.Destroyed {
		min = DefaultEventMinPhase
	}
	return &EventGate[EV]{owner: owner, min: min, onEvent: onEvent}
}

// Dispatch forwards ev and reports whether it was delivered.
func (g *EventGate[EV]) Dispatch(ev EV) bool {
	if !g.owner.Phase().AtLeast(g.min) {
		return false
	}
	g.onEvent(ev)
	return true
}
