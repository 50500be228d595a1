package mvi

import (
	"github.com/jask/gomvi/event"
	"github.com/jask/gomvi/flow"
)

// ViewModel is the unidirectional-data-flow contract between a screen and its
// logic. VS is the view state, EV the intent type, NE the navigation effect
// type and VE the view effect type.
type ViewModel[VS, EV, NE, VE any] interface {
	ViewStates() flow.State[VS]
	ViewEffects() flow.State[*event.Consumable[VE]]
	NavigationEffects() flow.State[*event.Consumable[NE]]
	OnEvent(event EV)
}

// None is the event or effect type of view-models that do not use that
// channel.
type None struct{}

// ViewStateKey is the saved-state key the view state is mirrored under.
const ViewStateKey = "MviViewModel.viewState"
