package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func recv[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for value")
	}
	panic("unreachable")
}

func requireNoValue[T any](t *testing.T, sub *Subscription[T]) {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected value %v", v)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMutableStateReplaysLatest(t *testing.T) {
	t.Parallel()

	s := NewMutableState("v0")
	early := s.Subscribe()
	defer early.Close()

	s.Set("v1")
	late := s.Subscribe()
	defer late.Close()

	require.Equal(t, "v0", recv(t, early))
	require.Equal(t, "v1", recv(t, early))
	require.Equal(t, "v1", recv(t, late))
	requireNoValue(t, late)
}

func TestMutableStateDeliversEveryValueInOrder(t *testing.T) {
	t.Parallel()

	s := NewMutableState(0)
	sub := s.Subscribe()
	defer sub.Close()
	for i := 1; i <= 100; i++ {
		s.Set(i)
	}
	for i := 0; i <= 100; i++ {
		require.Equal(t, i, recv(t, sub))
	}
}

func TestMutableStateValueIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewMutableState(3)
	require.Equal(t, s.Value(), s.Value())
	s.Set(4)
	require.Equal(t, 4, s.Value())
	require.Equal(t, s.Value(), s.Value())
}

func TestMutableStateCompareAndSet(t *testing.T) {
	t.Parallel()

	s := NewMutableState(1)
	_, version := s.Snapshot()
	s.Set(2)
	require.False(t, s.CompareAndSet(version, 99), "stale write must lose")
	require.Equal(t, 2, s.Value())

	_, version = s.Snapshot()
	require.True(t, s.CompareAndSet(version, 3))
	require.Equal(t, 3, s.Value())
}

func TestMutableStateWithEqualSkipsDuplicates(t *testing.T) {
	t.Parallel()

	s := NewMutableState(1, WithEqual(func(a, b int) bool { return a == b }))
	sub := s.Subscribe()
	defer sub.Close()

	s.Set(1)
	s.Set(2)
	s.Set(2)
	require.Equal(t, 1, recv(t, sub))
	require.Equal(t, 2, recv(t, sub))
	requireNoValue(t, sub)
}

func TestMutableStateUpdate(t *testing.T) {
	t.Parallel()

	s := NewMutableState(10)
	require.Equal(t, 11, s.Update(func(v int) int { return v + 1 }))
	require.Equal(t, 11, s.Value())
}

func TestMutableStateCloseEndsSubscriptions(t *testing.T) {
	t.Parallel()

	s := NewMutableState("a")
	done := make(chan error, 1)
	var seen []string
	go func() {
		done <- s.Collect(context.Background(), func(v string) { seen = append(seen, v) })
	}()
	require.Eventually(t, func() bool { return s.Subscribers() == 1 }, waitFor, time.Millisecond)

	s.Set("b")
	s.Close()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("collect did not return after close")
	}
	require.Equal(t, []string{"a", "b"}, seen)

	s.Set("c")
	require.Equal(t, "b", s.Value(), "writes after close are ignored")

	late := s.Subscribe()
	require.Equal(t, "b", recv(t, late))
	_, ok := <-late.C()
	require.False(t, ok)
}

func TestCollectStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	s := NewMutableState(0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Collect(ctx, func(int) {}) }()
	require.Eventually(t, func() bool { return s.Subscribers() == 1 }, waitFor, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Eventually(t, func() bool { return s.Subscribers() == 0 }, waitFor, time.Millisecond)
}

func TestReadOnlyHidesSetter(t *testing.T) {
	t.Parallel()

	s := NewMutableState(1)
	ro := s.ReadOnly()
	_, isMutable := ro.(*MutableState[int])
	require.False(t, isMutable)
	s.Set(2)
	require.Equal(t, 2, ro.Value())
}

func TestSubscriberCount(t *testing.T) {
	t.Parallel()

	s := NewMutableState(0)
	sub := s.Subscribe()
	n, err := SubscriberCount(s)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	sub.Close()
	require.Equal(t, 0, s.Subscribers())

	_, err = SubscriberCount(Of(1, 2))
	require.ErrorIs(t, err, ErrUnsupported)
}
