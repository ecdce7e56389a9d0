package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewMapRegistry()
	err := r.Register(Attribute{
		Name: "mode",
		Show: func() (string, error) { return "normal\n", nil },
	})
	require.NoError(t, err)

	a, ok := r.Lookup("mode")
	require.True(t, ok)
	assert.True(t, a.ReadOnly())
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := NewMapRegistry()
	require.NoError(t, r.Register(Attribute{Name: "debug"}))
	err := r.Register(Attribute{Name: "debug"})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestUnregisterUnknownFails(t *testing.T) {
	r := NewMapRegistry()
	err := r.Unregister("nope")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestNamesSorted(t *testing.T) {
	r := NewMapRegistry()
	require.NoError(t, r.Register(Attribute{Name: "threshold_mC"}))
	require.NoError(t, r.Register(Attribute{Name: "debug"}))
	require.NoError(t, r.Register(Attribute{Name: "mode"}))

	assert.Equal(t, []string{"debug", "mode", "threshold_mC"}, r.Names())
}

func TestUnregisterRemoves(t *testing.T) {
	r := NewMapRegistry()
	require.NoError(t, r.Register(Attribute{Name: "sampling_ms"}))
	require.NoError(t, r.Unregister("sampling_ms"))

	_, ok := r.Lookup("sampling_ms")
	assert.False(t, ok)
}
