package counter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/gomvi/mvitest"
)

func TestCounterCountsFromMinusOne(t *testing.T) {
	t.Parallel()

	vm, err := New(Config{Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(vm.Close)

	require.Equal(t, InitialState, vm.ViewState())

	sub := vm.ViewStates().Subscribe()
	defer sub.Close()
	require.Equal(t, -1, mvitest.NextValue(t, sub).Count)
	require.Equal(t, 0, mvitest.NextValue(t, sub).Count)
	require.Equal(t, 1, mvitest.NextValue(t, sub).Count)
	require.Equal(t, 2, mvitest.NextValue(t, sub).Count)
}

func TestCounterBackNavigatesOnce(t *testing.T) {
	t.Parallel()

	vm, err := New(Config{})
	require.NoError(t, err)
	t.Cleanup(vm.Close)

	vm.OnEvent(BackClicked{})
	eff, ok := mvitest.PendingEffect(vm.NavigationEffects())
	require.True(t, ok)
	require.Equal(t, NavigateBack{}, eff)

	_, ok = mvitest.PendingEffect(vm.NavigationEffects())
	require.False(t, ok)
}

func TestCounterKeepsLastCountWithinStopTimeout(t *testing.T) {
	t.Parallel()

	vm, err := New(Config{Interval: 10 * time.Millisecond, StopTimeout: time.Minute})
	require.NoError(t, err)
	t.Cleanup(vm.Close)

	sub := vm.ViewStates().Subscribe()
	mvitest.NextValue(t, sub)
	last := mvitest.NextValue(t, sub)
	sub.Close()

	require.GreaterOrEqual(t, vm.ViewState().Count, last.Count)
}

func TestCounterResetsOnStop(t *testing.T) {
	t.Parallel()

	vm, err := New(Config{Interval: 10 * time.Millisecond, ResetOnStop: true})
	require.NoError(t, err)
	t.Cleanup(vm.Close)

	sub := vm.ViewStates().Subscribe()
	mvitest.NextValue(t, sub)
	require.Equal(t, 0, mvitest.NextValue(t, sub).Count)
	sub.Close()

	require.Eventually(t, func() bool { return vm.ViewState() == InitialState }, 2*time.Second, 5*time.Millisecond)
}
