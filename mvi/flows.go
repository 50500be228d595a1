package mvi

import (
	"context"

	"github.com/jask/gomvi/event"
	"github.com/jask/gomvi/flow"
)

// ToViewStates shares src as a view state seeded with initial. The upstream
// runs while the state is observed and stops when scope ends.
func ToViewStates[VS any](scope context.Context, src flow.Flow[VS], initial VS, opts ...flow.SharedOption) *flow.Shared[VS] {
	return flow.StateIn(scope, src, initial, opts...)
}

// ToViewEffects shares src as a view effect channel. Every value emitted by
// src becomes a fresh consumable event.
func ToViewEffects[VE any](scope context.Context, src flow.Flow[VE], opts ...flow.SharedOption) *flow.Shared[*event.Consumable[VE]] {
	return flow.StateIn[*event.Consumable[VE]](scope, wrapEffects(src), nil, opts...)
}

// ToNavigationEffects shares src as a navigation effect channel.
func ToNavigationEffects[NE any](scope context.Context, src flow.Flow[NE], opts ...flow.SharedOption) *flow.Shared[*event.Consumable[NE]] {
	return flow.StateIn[*event.Consumable[NE]](scope, wrapEffects(src), nil, opts...)
}

// wrapEffects deliberately hides any Peeker of src: probing would wrap the
// same payload in a new, unconsumed event on every read.
func wrapEffects[E any](src flow.Flow[E]) flow.Flow[*event.Consumable[E]] {
	return flow.FlowFunc[*event.Consumable[E]](func(ctx context.Context, emit func(*event.Consumable[E])) error {
		return src.Collect(ctx, func(v E) { emit(event.New(v)) })
	})
}
