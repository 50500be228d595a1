package lifecycle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func TestParsePhase(t *testing.T) {
	t.Parallel()

	for _, p := range []Phase{Destroyed, Initialized, Created, Started, Resumed} {
		got, err := ParsePhase(p.String())
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
	got, err := ParsePhase(" RESUMED ")
	require.NoError(t, err)
	require.Equal(t, Resumed, got)

	_, err = ParsePhase("paused")
	require.ErrorIs(t, err, ErrInvalidPhase)
}

func TestOwnerDestroyIsFinal(t *testing.T) {
	t.Parallel()

	o := NewOwner("screen", nil)
	require.Equal(t, Initialized, o.Phase())
	o.MoveTo(Resumed)
	require.Equal(t, Resumed, o.Phase())
	o.Destroy()
	o.MoveTo(Resumed)
	require.Equal(t, Destroyed, o.Phase())
}

func TestRepeatOnLifecycleFollowsPhase(t *testing.T) {
	t.Parallel()

	o := NewOwner("screen", nil)
	var running, starts atomic.Int32
	block := func(ctx context.Context) {
		starts.Add(1)
		running.Add(1)
		<-ctx.Done()
		running.Add(-1)
	}

	done := make(chan error, 1)
	go func() { done <- RepeatOnLifecycle(context.Background(), o, Started, block) }()

	o.MoveTo(Created)
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 0, starts.Load(), "block must not run below the minimum phase")

	o.MoveTo(Started)
	require.Eventually(t, func() bool { return running.Load() == 1 }, waitFor, time.Millisecond)

	o.MoveTo(Resumed)
	time.Sleep(20 * time.Millisecond)
	require.EqualValues(t, 1, starts.Load(), "staying above the minimum keeps the same run")

	o.MoveTo(Created)
	require.Eventually(t, func() bool { return running.Load() == 0 }, waitFor, time.Millisecond)

	o.MoveTo(Resumed)
	require.Eventually(t, func() bool { return starts.Load() == 2 && running.Load() == 1 }, waitFor, time.Millisecond)

	o.Destroy()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("RepeatOnLifecycle did not return after destroy")
	}
	require.EqualValues(t, 0, running.Load())
}

func TestRepeatOnLifecycleContextCancel(t *testing.T) {
	t.Parallel()

	o := NewOwner("screen", nil)
	o.MoveTo(Resumed)
	ctx, cancel := context.WithCancel(context.Background())
	var running atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- RepeatOnLifecycle(ctx, o, Resumed, func(ctx context.Context) {
			running.Add(1)
			<-ctx.Done()
			running.Add(-1)
		})
	}()
	require.Eventually(t, func() bool { return running.Load() == 1 }, waitFor, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.EqualValues(t, 0, running.Load())
}

func TestRepeatOnLifecycleRejectsInitialized(t *testing.T) {
	t.Parallel()

	err := RepeatOnLifecycle(context.Background(), NewOwner("x", nil), Initialized, func(context.Context) {})
	require.ErrorIs(t, err, ErrInvalidPhase)
}
