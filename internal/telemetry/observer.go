// Package telemetry defines the tick-observation collaborator interface
// shared between internal/producer and the metrics implementations the
// root package and cmd/simtempd provide, keeping the producer free of any
// dependency on a concrete metrics type.
package telemetry

// Observer is notified once per producer tick that reaches a commit
// decision (every tick, since the producer never fails externally).
type Observer interface {
	ObserveTick(latencyNs uint64, armed, evicted bool)
}

// NoOp discards every observation. Useful as a default when no metrics
// sink is configured.
type NoOp struct{}

func (NoOp) ObserveTick(uint64, bool, bool) {}

var _ Observer = NoOp{}
