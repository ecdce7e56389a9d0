package simtemp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PyCharmGuy123/simtemp/internal/binding"
	"github.com/PyCharmGuy123/simtemp/internal/wire"
)

func TestOpenAppliesParamsAndDefaults(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 50, ThresholdMC: 20000, Mode: "ramp"}, nil)
	require.NoError(t, err)
	defer dev.Close(context.Background())

	assert.Equal(t, uint32(50), dev.store.SamplingMs())
	assert.Equal(t, int32(20000), dev.store.ThresholdMC())
	assert.Equal(t, "ramp", dev.store.ModeValue().String())
}

func TestOpenAppliesBindingDefaultsWhenParamsZero(t *testing.T) {
	dev, err := Open(context.Background(), Params{}, &Options{
		Binding: binding.Map{"sampling-ms": 25, "threshold-mC": 12345},
	})
	require.NoError(t, err)
	defer dev.Close(context.Background())

	assert.Equal(t, uint32(25), dev.store.SamplingMs())
	assert.Equal(t, int32(12345), dev.store.ThresholdMC())
}

func TestOpenTreatsZeroSamplingMsAsDefault(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 0}, nil)
	// SamplingMs: 0 means "use default" at the Params level, not a literal
	// write of zero, so this must NOT fail. Verify defaults kick in.
	require.NoError(t, err)
	defer dev.Close(context.Background())
	assert.Equal(t, DefaultSamplingMs, dev.store.SamplingMs())
}

func TestStreamNameIsStable(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 1000}, nil)
	require.NoError(t, err)
	defer dev.Close(context.Background())
	assert.Equal(t, "simtemp", dev.StreamName())
}

func TestAttributeRoundTripSamplingMs(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 1000}, nil)
	require.NoError(t, err)
	defer dev.Close(context.Background())

	a, ok := dev.Attrs().Lookup("sampling_ms")
	require.True(t, ok)
	require.NoError(t, a.Store("250\n"))

	got, err := a.Show()
	require.NoError(t, err)
	assert.Equal(t, "250\n", got)
}

func TestAttributeSamplingMsZeroRejected(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 1000}, nil)
	require.NoError(t, err)
	defer dev.Close(context.Background())

	a, _ := dev.Attrs().Lookup("sampling_ms")
	err = a.Store("0")
	assert.Error(t, err)

	got, _ := a.Show()
	assert.Equal(t, "1000\n", got, "rejected write must leave prior value unchanged")
}

func TestAttributeModeRejectsUnknown(t *testing.T) {
	dev, err := Open(context.Background(), Params{}, nil)
	require.NoError(t, err)
	defer dev.Close(context.Background())

	a, _ := dev.Attrs().Lookup("mode")
	err = a.Store("bogus")
	assert.Error(t, err)

	got, _ := a.Show()
	assert.Equal(t, "normal\n", got)
}

func TestStatsAttributeFormat(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 10, Mode: "ramp"}, nil)
	require.NoError(t, err)
	defer dev.Close(context.Background())

	time.Sleep(60 * time.Millisecond)

	a, _ := dev.Attrs().Lookup("stats")
	got, err := a.Show()
	require.NoError(t, err)
	assert.Regexp(t, `^updates=\d+ alerts=\d+ drops=\d+\n$`, got)
}

func TestReadDeliversRampSequence(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 50, Mode: "ramp"}, nil)
	require.NoError(t, err)
	defer dev.Close(context.Background())

	h, err := dev.OpenStream(false)
	require.NoError(t, err)
	defer dev.CloseStream(h)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	buf := make([]byte, wire.Size)
	var temps []int32
	for i := 0; i < 3; i++ {
		n, err := dev.Read(ctx, h, buf)
		require.NoError(t, err)
		require.Equal(t, wire.Size, n)
		rec := wire.Decode(buf[:n])
		require.NotZero(t, rec.Flags&wire.FlagNewSample)
		temps = append(temps, rec.TempMC)
	}
	assert.Equal(t, []int32{25000, 25200, 25400}, temps)
}

func TestPollReportsPriorityOnThresholdCrossing(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 30, ThresholdMC: 20000, Mode: "normal"}, nil)
	require.NoError(t, err)
	defer dev.Close(context.Background())

	h, err := dev.OpenStream(true)
	require.NoError(t, err)
	defer dev.CloseStream(h)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if dev.Poll(h)&(1<<1) != 0 { // Priority bit
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.NotZero(t, dev.Poll(h)&2)
	assert.Equal(t, uint64(1), dev.MetricsSnapshot().Alerts)

	buf := make([]byte, wire.Size)
	_, err = dev.Read(context.Background(), h, buf)
	require.NoError(t, err)
	rec := wire.Decode(buf)
	assert.NotZero(t, rec.Flags&wire.FlagThreshold)

	assert.Zero(t, dev.Poll(h) & 2)
}

func TestWritingSamplingMsZeroLeavesCadenceUnchanged(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 1000}, nil)
	require.NoError(t, err)
	defer dev.Close(context.Background())

	a, _ := dev.Attrs().Lookup("sampling_ms")
	err = a.Store("0")
	require.Error(t, err)

	got, _ := a.Show()
	assert.Equal(t, "1000\n", got)
}

func TestCloseUnblocksBlockedReaderWithIoFatal(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 5 * 1000}, nil)
	require.NoError(t, err)

	h, err := dev.OpenStream(false)
	require.NoError(t, err)

	resultCh := make(chan error, 1)
	buf := make([]byte, wire.Size)
	go func() {
		_, err := dev.Read(context.Background(), h, buf)
		resultCh <- err
	}()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, dev.Close(context.Background()))

	select {
	case err := <-resultCh:
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIoFatal))
	case <-time.After(2 * time.Second):
		t.Fatal("blocked reader did not unblock after Close")
	}
}

func TestOpenStreamFailsAfterClose(t *testing.T) {
	dev, err := Open(context.Background(), Params{SamplingMs: 1000}, nil)
	require.NoError(t, err)
	require.NoError(t, dev.Close(context.Background()))

	_, err = dev.OpenStream(false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIoFatal))
}
