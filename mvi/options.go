package mvi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jask/gomvi/savedstate"
)

var (
	// ErrMissingInitialState is returned when a view-model has neither an
	// initial view state nor a source producing one.
	ErrMissingInitialState = errors.New("mvi: no initial view state and no view state source")

	// ErrStateMismatch is returned when a persisted view state cannot be
	// decoded into the view state type.
	ErrStateMismatch = errors.New("mvi: persisted view state does not match the view state type")
)

type config[VS any] struct {
	ctx        context.Context
	logger     *slog.Logger
	name       string
	initial    VS
	hasInitial bool
	saved      savedstate.Handle
}

// Option configures NewBase and NewDerived.
type Option[VS any] func(*config[VS])

// WithInitialState seeds the view state. Required by NewBase.
func WithInitialState[VS any](state VS) Option[VS] {
	return func(c *config[VS]) {
		c.initial = state
		c.hasInitial = true
	}
}

// WithSavedState restores the view state from h at construction and mirrors
// every later state into it. Only NewBase honours it.
func WithSavedState[VS any](h savedstate.Handle) Option[VS] {
	return func(c *config[VS]) { c.saved = h }
}

// WithContext sets the parent of the view-model scope. Cancelling it tears
// the view-model down just like Close.
func WithContext[VS any](ctx context.Context) Option[VS] {
	return func(c *config[VS]) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithLogger sets the logger.
func WithLogger[VS any](l *slog.Logger) Option[VS] {
	return func(c *config[VS]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithName labels the view-model in log lines.
func WithName[VS any](name string) Option[VS] {
	return func(c *config[VS]) { c.name = name }
}

func newConfig[VS any](opts []Option[VS]) config[VS] {
	c := config[VS]{ctx: context.Background(), logger: slog.Default(), name: "viewmodel"}
	for _, opt := range opts {
		opt(&c)
	}
	c.logger = c.logger.With("viewmodel", c.name)
	return c
}
