package mvi

import (
	"context"
	"errors"
	"fmt"

	"github.com/jask/gomvi/flow"
	"github.com/jask/gomvi/savedstate"
)

// Base is a view-model whose state is owned and replaced by the view-model
// itself. Embed *Base in a concrete view-model and implement OnEvent.
type Base[VS, NE, VE any] struct {
	*Effects[NE, VE]
	states *flow.MutableState[VS]
}

// NewBase builds a Base. WithInitialState is required. With WithSavedState a
// previously persisted state replaces the initial one; a persisted payload of
// the wrong shape fails with ErrStateMismatch.
func NewBase[VS, NE, VE any](opts ...Option[VS]) (*Base[VS, NE, VE], error) {
	cfg := newConfig(opts)
	if !cfg.hasInitial {
		return nil, ErrMissingInitialState
	}

	initial := cfg.initial
	if cfg.saved != nil {
		var restored VS
		ok, err := cfg.saved.Load(ViewStateKey, &restored)
		switch {
		case errors.Is(err, savedstate.ErrDecode):
			return nil, fmt.Errorf("%w: %w", ErrStateMismatch, err)
		case err != nil:
			return nil, fmt.Errorf("mvi: restore view state: %w", err)
		case ok:
			cfg.logger.Debug("mvi: view state restored")
			initial = restored
		}
	}

	b := &Base[VS, NE, VE]{
		Effects: newEffects[NE, VE](cfg.ctx, cfg.logger),
		states:  flow.NewMutableState(initial),
	}
	if cfg.saved != nil {
		b.mirror(cfg.saved)
	}
	b.onClose(b.states.Close)
	return b, nil
}

// ViewStates returns the read-only view state.
func (b *Base[VS, NE, VE]) ViewStates() flow.State[VS] {
	return b.states.ReadOnly()
}

// ViewState returns the current view state.
func (b *Base[VS, NE, VE]) ViewState() VS {
	return b.states.Value()
}

// SetViewState replaces the view state.
func (b *Base[VS, NE, VE]) SetViewState(state VS) {
	if b.rejectClosed("set view state") {
		return
	}
	b.states.Set(state)
}

// UpdateViewState replaces the view state with fn(current) atomically.
func (b *Base[VS, NE, VE]) UpdateViewState(fn func(VS) VS) {
	if b.rejectClosed("update view state") {
		return
	}
	b.states.Update(fn)
}

// mirror writes every view state into h. The last state is written once more
// on Close so a change made just before teardown is not lost.
func (b *Base[VS, NE, VE]) mirror(h savedstate.Handle) {
	save := func(v VS) {
		if err := h.Save(ViewStateKey, v); err != nil {
			b.logger.Warn("mvi: persist view state", "err", err)
		}
	}
	sub := b.states.Subscribe()
	b.Launch(func(ctx context.Context) {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-sub.C():
				if !ok {
					return
				}
				save(v)
			}
		}
	})
	b.onClose(func() { save(b.states.Value()) })
}
