package simtemp

import "github.com/PyCharmGuy123/simtemp/internal/constants"

// Re-exported fixed parameters for the public API.
const (
	RecordSize    = constants.RecordSize
	QueueCapacity = constants.QueueCapacity

	DefaultSamplingMs  = constants.DefaultSamplingMs
	DefaultThresholdMC = constants.DefaultThresholdMC

	StreamName = constants.StreamName
)
