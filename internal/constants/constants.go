// Package constants collects the device's fixed, compile-time parameters:
// the wire record size, queue capacity, and configuration defaults.
package constants

// Record queue and wire format parameters, fixed by spec.
const (
	// RecordSize is the fixed wire size of one record, in bytes.
	RecordSize = 16

	// QueueCapacity is the fixed record queue capacity.
	QueueCapacity = 128
)

// Configuration store defaults.
const (
	// DefaultSamplingMs is the default producer tick period.
	DefaultSamplingMs uint32 = 1000

	// DefaultThresholdMC is the default alert threshold in milli-Celsius.
	DefaultThresholdMC int32 = 45000
)

// StreamName is the stable name the record stream endpoint registers
// under.
const StreamName = "simtemp"
