// Package choice is the start screen: it draws random numbers, shows a toast
// and navigates to the other screens.
package choice

import (
	"math/rand/v2"

	"github.com/jask/gomvi/mvi"
)

// ToastMessage is the text of the toast shown by ShowToastClicked.
const ToastMessage = "Toast message!"

// MaxNumber bounds the drawn numbers: they lie in [0, MaxNumber).
const MaxNumber = 100

type ViewState struct {
	RandomNumber int `json:"random_number"`
}

//sumtype:decl
type Event interface{ isEvent() }

type (
	// ShowDetailsClicked opens the details of item ID.
	ShowDetailsClicked struct{ ID string }
	// DrawNumberClicked replaces the number with a new random one.
	DrawNumberClicked struct{}
	// ShowToastClicked shows ToastMessage.
	ShowToastClicked struct{}
	// NavigateToCounterClicked opens the counter.
	NavigateToCounterClicked struct{}
)

func (ShowDetailsClicked) isEvent()       {}
func (DrawNumberClicked) isEvent()        {}
func (ShowToastClicked) isEvent()         {}
func (NavigateToCounterClicked) isEvent() {}

//sumtype:decl
type ViewEffect interface{ isViewEffect() }

// ShowToast displays Message briefly.
type ShowToast struct{ Message string }

func (ShowToast) isViewEffect() {}

//sumtype:decl
type NavigationEffect interface{ isNavigationEffect() }

type (
	NavigateToDetails struct{ ID string }
	NavigateToCounter struct{}
)

func (NavigateToDetails) isNavigationEffect() {}
func (NavigateToCounter) isNavigationEffect() {}

// ViewModel handles the choice screen. Its state survives restarts when a
// saved-state handle is supplied.
type ViewModel struct {
	*mvi.Base[ViewState, NavigationEffect, ViewEffect]
	draw func() int
}

var _ mvi.ViewModel[ViewState, Event, NavigationEffect, ViewEffect] = (*ViewModel)(nil)

// Option configures New.
type Option func(*ViewModel)

// WithDraw replaces the random number source.
func WithDraw(draw func() int) Option {
	return func(vm *ViewModel) { vm.draw = draw }
}

// New returns a choice view-model starting at number 0.
func New(base []mvi.Option[ViewState], opts ...Option) (*ViewModel, error) {
	base = append([]mvi.Option[ViewState]{
		mvi.WithName[ViewState]("choice"),
		mvi.WithInitialState(ViewState{}),
	}, base...)
	b, err := mvi.NewBase[ViewState, NavigationEffect, ViewEffect](base...)
	if err != nil {
		return nil, err
	}
	vm := &ViewModel{Base: b, draw: func() int { return rand.IntN(MaxNumber) }}
	for _, opt := range opts {
		opt(vm)
	}
	return vm, nil
}

func (vm *ViewModel) OnEvent(ev Event) {
	switch ev := ev.(type) {
	case ShowDetailsClicked:
		vm.DispatchNavigationEffect(NavigateToDetails{ID: ev.ID})
	case DrawNumberClicked:
		n := vm.draw()
		vm.UpdateViewState(func(s ViewState) ViewState {
			s.RandomNumber = n
			return s
		})
		vm.Logger().Debug("choice: number drawn", "number", n)
	case ShowToastClicked:
		vm.DispatchViewEffect(ShowToast{Message: ToastMessage})
	case NavigateToCounterClicked:
		vm.DispatchNavigationEffect(NavigateToCounter{})
	}
}
