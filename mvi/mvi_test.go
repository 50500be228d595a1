package mvi_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/gomvi/flow"
	"github.com/jask/gomvi/lifecycle"
	"github.com/jask/gomvi/mvi"
	"github.com/jask/gomvi/savedstate"
)

const waitFor = 2 * time.Second

type noteState struct {
	Text string `json:"text"`
}

type noteEvent struct{ text string }

type noteVM struct {
	*mvi.Base[noteState, string, string]
}

func (vm *noteVM) OnEvent(ev noteEvent) {
	vm.SetViewState(noteState{Text: ev.text})
	if ev.text == "go" {
		vm.DispatchNavigationEffect("next")
	}
}

var _ mvi.ViewModel[noteState, noteEvent, string, string] = (*noteVM)(nil)

func newNoteVM(t *testing.T, opts ...mvi.Option[noteState]) *noteVM {
	t.Helper()
	opts = append([]mvi.Option[noteState]{mvi.WithInitialState(noteState{Text: "init"})}, opts...)
	base, err := mvi.NewBase[noteState, string, string](opts...)
	require.NoError(t, err)
	t.Cleanup(base.Close)
	return &noteVM{Base: base}
}

// collector gathers values delivered on arbitrary goroutines.
type collector[T any] struct {
	mu   sync.Mutex
	vals []T
}

func (c *collector[T]) add(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals = append(c.vals, v)
}

func (c *collector[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.vals...)
}

func (c *collector[T]) waitLen(t *testing.T, n int) []T {
	t.Helper()
	require.Eventually(t, func() bool { return len(c.snapshot()) >= n }, waitFor, 5*time.Millisecond)
	return c.snapshot()
}

func TestNewBaseRequiresInitialState(t *testing.T) {
	t.Parallel()

	_, err := mvi.NewBase[noteState, string, string]()
	require.ErrorIs(t, err, mvi.ErrMissingInitialState)
}

func TestNewDerivedRequiresSource(t *testing.T) {
	t.Parallel()

	_, err := mvi.NewDerived[int, string, string](nil)
	require.ErrorIs(t, err, mvi.ErrMissingInitialState)
}

func TestBaseStateUpdates(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	require.Equal(t, "init", vm.ViewState().Text)

	vm.OnEvent(noteEvent{text: "hello"})
	require.Equal(t, "hello", vm.ViewStates().Value().Text)

	vm.UpdateViewState(func(s noteState) noteState {
		s.Text += "!"
		return s
	})
	require.Equal(t, "hello!", vm.ViewState().Text)
}

func TestEffectWaitsForResumedAndIsConsumedOnce(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	vm.OnEvent(noteEvent{text: "go"})

	owner := lifecycle.NewOwner("screen", nil)
	owner.MoveTo(lifecycle.Started)

	var got collector[string]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- mvi.ConsumeEffects(ctx, owner, vm.NavigationEffects(), mvi.DefaultEffectMinPhase, got.add)
	}()

	time.Sleep(50 * time.Millisecond)
	require.Empty(t, got.snapshot())
	pending := vm.NavigationEffects().Value()
	require.NotNil(t, pending)
	require.False(t, pending.IsConsumed())

	owner.MoveTo(lifecycle.Resumed)
	require.Equal(t, []string{"next"}, got.waitLen(t, 1))
	require.True(t, vm.NavigationEffects().Value().IsConsumed())

	// Re-entering the phase replays the consumed event without delivering it.
	owner.MoveTo(lifecycle.Started)
	owner.MoveTo(lifecycle.Resumed)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []string{"next"}, got.snapshot())

	owner.Destroy()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("ConsumeEffects did not return after destroy")
	}
}

func TestUnobservedEffectIsSuperseded(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	vm.DispatchViewEffect("first")
	vm.DispatchViewEffect("second")

	owner := lifecycle.NewOwner("screen", nil)
	owner.MoveTo(lifecycle.Resumed)

	var got collector[string]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = mvi.ConsumeEffects(ctx, owner, vm.ViewEffects(), lifecycle.Resumed, got.add)
	}()

	require.Equal(t, []string{"second"}, got.waitLen(t, 1))
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []string{"second"}, got.snapshot())
}

func TestActiveObserverSeesEveryEffect(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	owner := lifecycle.NewOwner("screen", nil)
	owner.MoveTo(lifecycle.Resumed)

	var got collector[string]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = mvi.ConsumeEffects(ctx, owner, vm.ViewEffects(), lifecycle.Resumed, got.add)
	}()
	require.Eventually(t, func() bool { return vm.ViewEffects().Subscribers() == 1 }, waitFor, 5*time.Millisecond)

	vm.DispatchViewEffect("a")
	vm.DispatchViewEffect("b")
	require.Equal(t, []string{"a", "b"}, got.waitLen(t, 2))
}

func TestClearEffect(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	vm.DispatchViewEffect("toast")
	vm.DispatchNavigationEffect("away")
	vm.ClearViewEffect()
	vm.ClearNavigationEffect()
	require.Nil(t, vm.ViewEffects().Value())
	require.Nil(t, vm.NavigationEffects().Value())
}

func TestCloseStopsStateChanges(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	sub := vm.ViewStates().Subscribe()
	defer sub.Close()

	vm.Close()
	vm.Close()
	require.True(t, vm.Closed())

	vm.SetViewState(noteState{Text: "late"})
	vm.DispatchViewEffect("late")
	require.Equal(t, "init", vm.ViewState().Text)
	require.Nil(t, vm.ViewEffects().Value())
	require.False(t, vm.Launch(func(context.Context) {}))

	var last noteState
	for v := range sub.C() {
		last = v
	}
	require.Equal(t, "init", last.Text)
}

func TestLaunchIsCancelledByClose(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	stopped := make(chan struct{})
	require.True(t, vm.Launch(func(ctx context.Context) {
		<-ctx.Done()
		close(stopped)
	}))
	vm.Close()
	select {
	case <-stopped:
	default:
		t.Fatal("Close returned before launched work finished")
	}
}

func TestParentContextClosesViewModel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	vm := newNoteVM(t, mvi.WithContext[noteState](ctx))
	cancel()
	require.Eventually(t, vm.Closed, waitFor, 5*time.Millisecond)
}

func TestSavedStateRestoreAndMirror(t *testing.T) {
	t.Parallel()

	saved := savedstate.NewMemory()
	vm := newNoteVM(t, mvi.WithSavedState[noteState](saved))
	vm.OnEvent(noteEvent{text: "kept"})
	vm.Close()

	var persisted noteState
	ok, err := saved.Load(mvi.ViewStateKey, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "kept", persisted.Text)

	restored := newNoteVM(t, mvi.WithSavedState[noteState](saved))
	require.Equal(t, "kept", restored.ViewState().Text)
}

// syncBackend fails calls whose context is already done, like a database
// driver would.
type syncBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (b *syncBackend) LoadState(ctx context.Context, owner, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.data[owner+"/"+key]
	return d, ok, nil
}

func (b *syncBackend) SaveState(ctx context.Context, owner, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[owner+"/"+key] = payload
	return nil
}

func (b *syncBackend) get(owner, key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data[owner+"/"+key])
}

func TestSavedStateSurvivesParentCancel(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	backend := &syncBackend{data: map[string][]byte{}}
	vm := newNoteVM(t,
		mvi.WithContext[noteState](parent),
		mvi.WithSavedState[noteState](savedstate.NewStore(parent, backend, "notes")),
	)
	for _, text := range []string{"a", "b", "c", "d", "last"} {
		vm.OnEvent(noteEvent{text: text})
	}
	cancel()
	vm.Close()

	require.JSONEq(t, `{"text":"last"}`, backend.get("notes", mvi.ViewStateKey))
}

func TestCloseWaitsForTeardownInEveryCaller(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	var finished atomic.Bool
	require.True(t, vm.Launch(func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	}))

	go vm.Close()
	require.Eventually(t, vm.Closed, waitFor, time.Millisecond)
	vm.Close()
	require.True(t, finished.Load(), "second Close returned before launched work finished")
}

func TestSavedStateMismatch(t *testing.T) {
	t.Parallel()

	saved := savedstate.NewMemory()
	saved.SaveRaw(mvi.ViewStateKey, []byte(`{"count": 3}`))

	_, err := mvi.NewBase[noteState, string, string](
		mvi.WithInitialState(noteState{}),
		mvi.WithSavedState[noteState](saved),
	)
	require.ErrorIs(t, err, mvi.ErrStateMismatch)
	require.ErrorIs(t, err, savedstate.ErrDecode)
}

func TestDerivedViewModel(t *testing.T) {
	t.Parallel()

	values := make(chan int)
	src := flow.FlowFunc[int](func(ctx context.Context, emit func(int)) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case v := <-values:
				emit(v)
			}
		}
	})

	vm, err := mvi.NewDerived[int, string, string](func(scope context.Context) flow.State[int] {
		return mvi.ToViewStates(scope, src, -1, flow.WithStopTimeout(0))
	})
	require.NoError(t, err)
	defer vm.Close()
	require.Equal(t, -1, vm.ViewState())

	sub := vm.ViewStates().Subscribe()
	defer sub.Close()
	require.Equal(t, -1, <-sub.C())

	values <- 7
	select {
	case v := <-sub.C():
		require.Equal(t, 7, v)
	case <-time.After(waitFor):
		t.Fatal("no derived state")
	}
}

func TestToViewEffectsWrapsEachValue(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	effects := mvi.ToViewEffects(ctx, flow.Of("x", "y"))
	require.Nil(t, effects.Value())

	owner := lifecycle.NewOwner("screen", nil)
	owner.MoveTo(lifecycle.Resumed)
	var got collector[string]
	go func() {
		_ = mvi.ConsumeEffects(ctx, owner, effects, lifecycle.Resumed, got.add)
	}()
	require.Equal(t, []string{"x", "y"}, got.waitLen(t, 2))
}

func TestObserveViewModel(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	owner := lifecycle.NewOwner("screen", nil)

	var states, navs collector[string]
	done := make(chan error, 1)
	go func() {
		done <- mvi.ObserveViewModel[noteState, noteEvent, string, string](context.Background(), owner, vm, mvi.Observers[noteState, string, string]{
			OnViewState:        func(s noteState) { states.add(s.Text) },
			OnNavigationEffect: navs.add,
		})
	}()

	owner.MoveTo(lifecycle.Started)
	require.Equal(t, []string{"init"}, states.waitLen(t, 1))

	vm.OnEvent(noteEvent{text: "go"})
	require.Equal(t, []string{"init", "go"}, states.waitLen(t, 2))
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, navs.snapshot())

	owner.MoveTo(lifecycle.Resumed)
	require.Equal(t, []string{"next"}, navs.waitLen(t, 1))

	owner.Destroy()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("ObserveViewModel did not return")
	}
}

func TestEventGate(t *testing.T) {
	t.Parallel()

	vm := newNoteVM(t)
	owner := lifecycle.NewOwner("screen", nil)
	gate := mvi.NewEventGate(owner, 0, vm.OnEvent)

	owner.MoveTo(lifecycle.Started)
	require.False(t, gate.Dispatch(noteEvent{text: "early"}))
	require.Equal(t, "init", vm.ViewState().Text)

	owner.MoveTo(lifecycle.Resumed)
	require.True(t, gate.Dispatch(noteEvent{text: "now"}))
	require.Equal(t, "now", vm.ViewState().Text)
}
