// Package config implements the configuration store (CS): the mutable
// sampling period, threshold, mode, and debug flag guarded by a sleeping
// mutex, plus the lock-free atomic operation counters.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/PyCharmGuy123/simtemp/internal/constants"
)

// Mode selects the sample producer's temperature generation function.
type Mode int

const (
	ModeNormal Mode = iota
	ModeRamp
	ModeNoisy
)

// String returns the canonical lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeRamp:
		return "ramp"
	case ModeNoisy:
		return "noisy"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name, trimming whitespace and case-folding it.
// Unknown names report ok=false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return ModeNormal, true
	case "ramp":
		return ModeRamp, true
	case "noisy":
		return ModeNoisy, true
	default:
		return 0, false
	}
}

// Defaults for a freshly bootstrapped store, mirroring
// internal/constants.
const (
	DefaultSamplingMs  = constants.DefaultSamplingMs
	DefaultThresholdMC = constants.DefaultThresholdMC
)

// Snapshot is an immutable copy of the store's fields, taken under the
// store's lock, for the producer to read without holding the lock for the
// duration of a tick.
type Snapshot struct {
	SamplingMs  uint32
	ThresholdMC int32
	Mode        Mode
	Debug       bool
}

// Counters holds the three operation counters, each updated lock-free.
// They are deliberately separate from the mutex-protected fields above.
type Counters struct {
	updates atomic.Uint64
	alerts  atomic.Uint64
	drops   atomic.Uint64
}

func (c *Counters) IncUpdates() { c.updates.Add(1) }
func (c *Counters) IncAlerts()  { c.alerts.Add(1) }
func (c *Counters) IncDrops()   { c.drops.Add(1) }

func (c *Counters) Updates() uint64 { return c.updates.Load() }
func (c *Counters) Alerts() uint64  { return c.alerts.Load() }
func (c *Counters) Drops() uint64   { return c.drops.Load() }

// Stats formats the counters in the exact form the `stats` control
// attribute exposes: "updates=<u> alerts=<a> drops=<d>\n".
func (c *Counters) Stats() string {
	return fmt.Sprintf("updates=%d alerts=%d drops=%d\n", c.Updates(), c.Alerts(), c.Drops())
}

// Store is the configuration store (CS).
type Store struct {
	mu          sync.Mutex
	samplingMs  uint32
	thresholdMC int32
	mode        Mode
	debug       bool

	Counters Counters
}

// New returns a store initialized to spec defaults, optionally overridden
// by bring-up configuration applied by the caller afterward.
func New() *Store {
	return &Store{
		samplingMs:  DefaultSamplingMs,
		thresholdMC: DefaultThresholdMC,
		mode:        ModeNormal,
	}
}

// ErrInvalidSamplingMs is returned by SetSamplingMs for a zero period.
var ErrInvalidSamplingMs = fmt.Errorf("sampling_ms must be > 0")

// SamplingMs returns the current sampling period in milliseconds.
func (s *Store) SamplingMs() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samplingMs
}

// SetSamplingMs validates and assigns the sampling period. It does not
// reschedule the producer; that is the caller's (lifecycle controller's)
// responsibility, performed outside this lock per the spec's lock-ordering
// rule.
func (s *Store) SetSamplingMs(v uint32) error {
	if v == 0 {
		return ErrInvalidSamplingMs
	}
	s.mu.Lock()
	s.samplingMs = v
	s.mu.Unlock()
	return nil
}

// ThresholdMC returns the current threshold in milli-Celsius.
func (s *Store) ThresholdMC() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thresholdMC
}

// SetThresholdMC assigns the threshold. Any signed value is accepted.
func (s *Store) SetThresholdMC(v int32) {
	s.mu.Lock()
	s.thresholdMC = v
	s.mu.Unlock()
}

// ModeValue returns the current generation mode.
func (s *Store) ModeValue() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ErrInvalidMode is returned by SetMode for an unrecognized mode name.
var ErrInvalidMode = fmt.Errorf("unknown mode")

// SetMode parses and assigns the generation mode.
func (s *Store) SetMode(name string) error {
	m, ok := ParseMode(name)
	if !ok {
		return ErrInvalidMode
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	return nil
}

// Debug returns the current debug flag.
func (s *Store) Debug() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debug
}

// SetDebug assigns the debug flag. Per spec, any nonzero input is true;
// callers pass the already-parsed bool.
func (s *Store) SetDebug(v bool) {
	s.mu.Lock()
	s.debug = v
	s.mu.Unlock()
}

// ParseDebug parses the textual 0/1 debug attribute value.
func ParseDebug(s string) (bool, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// Snapshot takes a single lock acquisition and returns a copy of all
// mutex-guarded fields, used by the producer at the start of a tick.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SamplingMs:  s.samplingMs,
		ThresholdMC: s.thresholdMC,
		Mode:        s.mode,
		Debug:       s.debug,
	}
}
