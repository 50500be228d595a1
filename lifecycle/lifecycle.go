// Package lifecycle models the activity phases of an observing surface (a
// screen, a window, a test harness) and runs work only while the surface is
// at least in a given phase.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jask/gomvi/flow"
)

// Phase is an ordered lifecycle phase. Later phases are "more active".
type Phase int

const (
	Destroyed Phase = iota
	Initialized
	Created
	Started
	Resumed
)

var phaseNames = [...]string{
	Destroyed:   "destroyed",
	Initialized: "initialized",
	Created:     "created",
	Started:     "started",
	Resumed:     "resumed",
}

func (p Phase) String() string {
	if p < Destroyed || p > Resumed {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// AtLeast reports whether p is min or a more active phase.
func (p Phase) AtLeast(min Phase) bool {
	return p >= min
}

// ErrInvalidPhase is returned for phase names or minimum phases that cannot
// be used.
var ErrInvalidPhase = errors.New("lifecycle: invalid phase")

// ParsePhase converts a case-insensitive phase name.
func ParsePhase(s string) (Phase, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p, n := range phaseNames {
		if n == name {
			return Phase(p), nil
		}
	}
	return Destroyed, fmt.Errorf("%w: %q", ErrInvalidPhase, s)
}

// Owner holds the current phase of one surface. Phase changes are published
// through a state holder, so observers always see the current phase first.
type Owner struct {
	name   string
	phases *flow.MutableState[Phase]
	logger *slog.Logger
}

// NewOwner returns an owner in the Initialized phase.
func NewOwner(name string, logger *slog.Logger) *Owner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Owner{
		name:   name,
		phases: flow.NewMutableState(Initialized, flow.WithEqual(func(a, b Phase) bool { return a == b })),
		logger: logger,
	}
}

// Phase returns the current phase.
func (o *Owner) Phase() Phase {
	return o.phases.Value()
}

// Phases returns the observable phase.
func (o *Owner) Phases() flow.State[Phase] {
	return o.phases.ReadOnly()
}

// MoveTo changes the phase. Moving to Destroyed is final; later moves are
// ignored.
func (o *Owner) MoveTo(p Phase) {
	if o.phases.Closed() {
		return
	}
	o.logger.Debug("lifecycle: phase change", "owner", o.name, "from", o.Phase(), "to", p)
	o.phases.Set(p)
	if p == Destroyed {
		o.phases.Close()
	}
}

// Destroy is MoveTo(Destroyed).
func (o *Owner) Destroy() {
	o.MoveTo(Destroyed)
}

// RepeatOnLifecycle runs block in a new goroutine each time the owner enters
// min (or a later phase) and cancels it when the owner drops below min. It
// blocks until the owner is destroyed, returning nil, or until ctx is done,
// returning ctx.Err(). A running block is always cancelled and awaited before
// RepeatOnLifecycle returns.
func RepeatOnLifecycle(ctx context.Context, owner *Owner, min Phase, block func(ctx context.Context)) error {
	if min <= Initialized || min > Resumed {
		return fmt.Errorf("%w: cannot repeat at %s", ErrInvalidPhase, min)
	}

	var (
		cancel context.CancelFunc
		done   chan struct{}
	)
	stop := func() {
		if cancel == nil {
			return
		}
		cancel()
		<-done
		cancel = nil
	}
	defer stop()

	return owner.Phases().Collect(ctx, func(p Phase) {
		if !p.AtLeast(min) {
			stop()
			return
		}
		if cancel != nil {
			return
		}
		var blockCtx context.Context
		blockCtx, cancel = context.WithCancel(ctx)
		done = make(chan struct{})
		go func(finished chan struct{}) {
			defer close(finished)
			block(blockCtx)
		}(done)
	})
}
