package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonotonicIsNonZeroAndIncreasing(t *testing.T) {
	var m Monotonic
	a := m.NowNS()
	b := m.NowNS()
	assert.NotZero(t, a)
	assert.GreaterOrEqual(t, b, a)
}

func TestFakeAdvance(t *testing.T) {
	f := NewFake(100)
	assert.Equal(t, uint64(100), f.NowNS())

	f.Advance(50)
	assert.Equal(t, uint64(150), f.NowNS())

	f.Set(9000)
	assert.Equal(t, uint64(9000), f.NowNS())
}
