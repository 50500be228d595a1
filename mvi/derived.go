package mvi

import (
	"context"

	"github.com/jask/gomvi/flow"
)

// Derived is a view-model whose state is produced by a flow instead of being
// set directly. It has no state setters.
type Derived[VS, NE, VE any] struct {
	*Effects[NE, VE]
	states flow.State[VS]
}

// NewDerived builds a Derived. states is called once with the view-model
// scope and must return the state to expose, typically
// ToViewStates(scope, source, initial). WithInitialState and WithSavedState
// are ignored.
func NewDerived[VS, NE, VE any](states func(scope context.Context) flow.State[VS], opts ...Option[VS]) (*Derived[VS, NE, VE], error) {
	if states == nil {
		return nil, ErrMissingInitialState
	}
	cfg := newConfig(opts)
	if cfg.saved != nil {
		cfg.logger.Warn("mvi: saved state is not supported for derived view state")
	}
	effects := newEffects[NE, VE](cfg.ctx, cfg.logger)
	st := states(effects.Context())
	if st == nil {
		effects.Close()
		return nil, ErrMissingInitialState
	}
	return &Derived[VS, NE, VE]{Effects: effects, states: st}, nil
}

// ViewStates returns the view state.
func (d *Derived[VS, NE, VE]) ViewStates() flow.State[VS] {
	return d.states
}

// ViewState returns the latest view state. See flow.Shared.Value for the
// freshness guarantees when the state comes from ToViewStates.
func (d *Derived[VS, NE, VE]) ViewState() VS {
	return d.states.Value()
}
