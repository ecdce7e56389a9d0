package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLookup(t *testing.T) {
	m := Map{"sampling-ms": 250}
	v, ok := m.Int("sampling-ms")
	require.True(t, ok)
	assert.Equal(t, int64(250), v)

	_, ok = m.Int("threshold-mC")
	assert.False(t, ok)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SIMTEMP_SAMPLING_MS", "333")
	l := FromEnv()

	v, ok := l.Int("sampling-ms")
	require.True(t, ok)
	assert.Equal(t, int64(333), v)

	_, ok = l.Int("unset-key")
	assert.False(t, ok)
}

func TestFromEnvRejectsNonInteger(t *testing.T) {
	t.Setenv("SIMTEMP_THRESHOLD_MC", "not-a-number")
	l := FromEnv()
	_, ok := l.Int("threshold-mC")
	assert.False(t, ok)
}

func TestChainTriesInOrder(t *testing.T) {
	c := Chain{Map{}, Map{"mode": 1}}
	v, ok := c.Int("mode")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestMustMapFromArgs(t *testing.T) {
	m, err := MustMapFromArgs([]string{"sampling-ms=100", "threshold-mC=-5"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), m["sampling-ms"])
	assert.Equal(t, int64(-5), m["threshold-mC"])

	_, err = MustMapFromArgs([]string{"bad"})
	assert.Error(t, err)
}
