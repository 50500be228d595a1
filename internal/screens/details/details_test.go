package details

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/gomvi/mvi"
)

func TestDetailsTitle(t *testing.T) {
	t.Parallel()

	vm, err := New("42")
	require.NoError(t, err)
	t.Cleanup(vm.Close)

	require.Equal(t, "#42", vm.ViewState().Title)
	vm.OnEvent(mvi.None{})
	require.Equal(t, "#42", vm.ViewState().Title)
	require.Nil(t, vm.ViewEffects().Value())
}
