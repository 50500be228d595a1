package event

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsumeRunsHandlerOnce(t *testing.T) {
	t.Parallel()

	ev := New("payload")
	var got []string
	for i := 0; i < 5; i++ {
		ok := ev.Consume(func(p string) { got = append(got, p) })
		require.Equal(t, i == 0, ok, "call %d", i)
	}
	require.Equal(t, []string{"payload"}, got)
	require.True(t, ev.IsConsumed())
}

func TestConsumeConcurrentCallers(t *testing.T) {
	t.Parallel()

	ev := New(42)
	var calls, wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ev.Consume(func(int) { calls.Add(1) }) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, calls.Load())
	require.EqualValues(t, 1, wins.Load())
}

func TestConsumeOptionallyChain(t *testing.T) {
	t.Parallel()

	ev := New("toast")
	var seenByFirst string
	first := func(p string) bool {
		seenByFirst = p
		return false
	}
	second := func(string) bool { return true }

	require.False(t, ev.ConsumeOptionally(first))
	require.Equal(t, "toast", seenByFirst)
	require.False(t, ev.IsConsumed())

	require.True(t, ev.ConsumeOptionally(second))
	require.True(t, ev.IsConsumed())

	require.False(t, ev.ConsumeOptionally(second))
	require.False(t, ev.Consume(func(string) { t.Fatal("consumed twice") }))
}

func TestPeekDoesNotConsume(t *testing.T) {
	t.Parallel()

	ev := New(7)
	require.Equal(t, 7, ev.Peek())
	require.False(t, ev.IsConsumed())
	require.True(t, ev.Consume(func(int) {}))
	require.Equal(t, 7, ev.Peek())
	require.Equal(t, "Consumable(7, consumed=true)", ev.String())
}
