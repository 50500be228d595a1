// Package counter is a screen whose state is derived from a ticking source.
package counter

import (
	"context"
	"time"

	"github.com/jask/gomvi/flow"
	"github.com/jask/gomvi/mvi"
)

// DefaultInterval is the delay between two counts.
const DefaultInterval = time.Second

// ViewState is the rendered count. Count is -1 until the source produced its
// first value.
type ViewState struct {
	Count int `json:"count"`
}

// InitialState is shown before the ticker started.
var InitialState = ViewState{Count: -1}

//sumtype:decl
type Event interface{ isEvent() }

// BackClicked asks to leave the screen.
type BackClicked struct{}

func (BackClicked) isEvent() {}

//sumtype:decl
type NavigationEffect interface{ isNavigationEffect() }

// NavigateBack pops the screen.
type NavigateBack struct{}

func (NavigateBack) isNavigationEffect() {}

// Config tunes the counter source.
type Config struct {
	Interval    time.Duration
	StopTimeout time.Duration
	ResetOnStop bool
}

// ViewModel counts up while it is observed.
type ViewModel struct {
	*mvi.Derived[ViewState, NavigationEffect, mvi.None]
}

var _ mvi.ViewModel[ViewState, Event, NavigationEffect, mvi.None] = (*ViewModel)(nil)

// New returns a counter view-model. The count restarts from zero when the
// source is restarted after the stop timeout.
func New(cfg Config, opts ...mvi.Option[ViewState]) (*ViewModel, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	shared := []flow.SharedOption{flow.WithStopTimeout(cfg.StopTimeout)}
	if cfg.ResetOnStop {
		shared = append(shared, flow.WithResetOnStop())
	}

	opts = append([]mvi.Option[ViewState]{mvi.WithName[ViewState]("counter")}, opts...)
	d, err := mvi.NewDerived[ViewState, NavigationEffect, mvi.None](func(scope context.Context) flow.State[ViewState] {
		counts := flow.Map(flow.Ticker(cfg.Interval), func(i int) ViewState { return ViewState{Count: i} })
		return mvi.ToViewStates(scope, counts, InitialState, shared...)
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &ViewModel{Derived: d}, nil
}

func (vm *ViewModel) OnEvent(ev Event) {
	switch ev.(type) {
	case BackClicked:
		vm.DispatchNavigationEffect(NavigateBack{})
	}
}
