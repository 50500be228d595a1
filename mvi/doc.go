// Package mvi is a small Model-View-Intent toolkit.
//
// A view-model receives intents through OnEvent, publishes the state to render
// through ViewStates, and emits one-shot effects through NavigationEffects and
// ViewEffects. State uses replay-latest semantics: every observer sees the
// current value first. Effects ride on the same kind of state holder but are
// wrapped in an event.Consumable, so the first observer that consumes one wins
// and replays to later observers are ignored.
//
// Each effect channel holds at most one pending effect. Dispatching a new
// effect replaces one that nobody consumed yet; the older effect is lost.
// Effects are meant for exactly one active consumer per channel.
//
// Concrete view-models embed *Base (state owned by the view-model and replaced
// with SetViewState) or *Derived (state produced by a flow, usually through
// ToViewStates). Mutating helpers exist only on those concrete types; the
// State values handed to observers are read-only.
package mvi
