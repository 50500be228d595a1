package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jask/gomvi/internal/screens/choice"
	"github.com/jask/gomvi/internal/screens/counter"
	"github.com/jask/gomvi/internal/screens/details"
	"github.com/jask/gomvi/mvi"
	"github.com/jask/gomvi/savedstate"
)

const (
	RouteChoice  = "choice"
	RouteCounter = "counter"
	RouteDetails = "details"

	// StartRoute is pushed when the app starts.
	StartRoute = RouteChoice
)

// ErrUnknownRoute is returned for routes no screen is registered for.
var ErrUnknownRoute = errors.New("tui: unknown route")

// DetailsRoute returns the route of the details of item id.
func DetailsRoute(id string) string { return RouteDetails + "/" + id }

// PersistedRoutes lists the saved-state owners screens write under.
func PersistedRoutes() []string { return []string{RouteChoice} }

// Routes lists the navigable routes. Details routes need an id.
func Routes() []string { return []string{RouteChoice, RouteCounter, RouteDetails + "/{id}"} }

// Factory builds screens by route.
type Factory struct {
	Counter counter.Config
	Phases  Phases
	// States persists view states when set. Screens without persistence
	// ignore it.
	States savedstate.Backend
	Logger *slog.Logger
	// Draw replaces the random source of the choice screen.
	Draw func() int
}

// DefaultFactory returns a factory with the library's default phases.
func DefaultFactory(logger *slog.Logger) *Factory {
	return &Factory{
		Counter: counter.Config{Interval: counter.DefaultInterval, StopTimeout: 5 * time.Second},
		Phases: Phases{
			State:  mvi.DefaultStateMinPhase,
			Effect: mvi.DefaultEffectMinPhase,
			Event:  mvi.DefaultEventMinPhase,
		},
		Logger: logger,
	}
}

// Build creates the screen of route. ctx scopes the view-model.
func (f *Factory) Build(ctx context.Context, route string) (Screen, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name, arg, _ := strings.Cut(route, "/")
	switch {
	case name == RouteChoice && arg == "":
		return f.choice(ctx, logger)
	case name == RouteCounter && arg == "":
		return f.counter(ctx, logger)
	case name == RouteDetails && arg != "":
		return f.details(ctx, logger, arg)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRoute, route)
}

func (f *Factory) choice(ctx context.Context, logger *slog.Logger) (Screen, error) {
	base := []mvi.Option[choice.ViewState]{
		mvi.WithContext[choice.ViewState](ctx),
		mvi.WithLogger[choice.ViewState](logger),
	}
	if f.States != nil {
		base = append(base, mvi.WithSavedState[choice.ViewState](savedstate.NewStore(ctx, f.States, RouteChoice)))
	}
	var opts []choice.Option
	if f.Draw != nil {
		opts = append(opts, choice.WithDraw(f.Draw))
	}
	vm, err := choice.New(base, opts...)
	if err != nil {
		return nil, fmt.Errorf("build choice: %w", err)
	}
	return newHost(hostConfig[choice.ViewState, choice.Event, choice.NavigationEffect, choice.ViewEffect]{
		route:  RouteChoice,
		title:  "Choice",
		scope:  scopeChoice,
		vm:     vm,
		closer: vm.Close,
		phases: f.Phases,
		logger: logger,
		events: func(a Action) (choice.Event, bool) {
			switch a {
			case actionToast:
				return choice.ShowToastClicked{}, true
			case actionDetails1:
				return choice.ShowDetailsClicked{ID: "1"}, true
			case actionDetails2:
				return choice.ShowDetailsClicked{ID: "2"}, true
			case actionCounter:
				return choice.NavigateToCounterClicked{}, true
			case actionDraw:
				return choice.DrawNumberClicked{}, true
			}
			return nil, false
		},
		navigate: func(e choice.NavigationEffect) Navigation {
			switch e := e.(type) {
			case choice.NavigateToDetails:
				return PushRoute(DetailsRoute(e.ID))
			case choice.NavigateToCounter:
				return PushRoute(RouteCounter)
			}
			return Navigation{}
		},
		toast: func(e choice.ViewEffect) string {
			switch e := e.(type) {
			case choice.ShowToast:
				return e.Message
			}
			return ""
		},
		render: renderChoice,
	}), nil
}

func (f *Factory) counter(ctx context.Context, logger *slog.Logger) (Screen, error) {
	vm, err := counter.New(f.Counter,
		mvi.WithContext[counter.ViewState](ctx),
		mvi.WithLogger[counter.ViewState](logger),
	)
	if err != nil {
		return nil, fmt.Errorf("build counter: %w", err)
	}
	return newHost(hostConfig[counter.ViewState, counter.Event, counter.NavigationEffect, mvi.None]{
		route:  RouteCounter,
		title:  "Counter",
		scope:  scopeCounter,
		vm:     vm,
		closer: vm.Close,
		phases: f.Phases,
		logger: logger,
		events: func(a Action) (counter.Event, bool) {
			if a == actionBack {
				return counter.BackClicked{}, true
			}
			return nil, false
		},
		navigate: func(e counter.NavigationEffect) Navigation {
			if _, ok := e.(counter.NavigateBack); ok {
				return Back()
			}
			return Navigation{}
		},
		render: renderCounter,
	}), nil
}

func (f *Factory) details(ctx context.Context, logger *slog.Logger, id string) (Screen, error) {
	vm, err := details.New(id,
		mvi.WithContext[details.ViewState](ctx),
		mvi.WithLogger[details.ViewState](logger),
	)
	if err != nil {
		return nil, fmt.Errorf("build details: %w", err)
	}
	return newHost(hostConfig[details.ViewState, mvi.None, mvi.None, mvi.None]{
		route:  DetailsRoute(id),
		title:  "Details",
		scope:  scopeDetails,
		vm:     vm,
		closer: vm.Close,
		phases: f.Phases,
		logger: logger,
		render: renderDetails,
	}), nil
}
