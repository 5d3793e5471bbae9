package scheduler

import "time"

// Fixed reseed thresholds (bytes accumulated since last drain), one
// per priority regime. These are not configuration knobs: they are
// the pool-selection security parameter of the reseed rule itself.
const (
	highReseedThresholdBytes   = 48
	normalReseedThresholdBytes = 96
	lowReseedThresholdBytes    = 256
)

// Fixed inter-cycle sleep durations per priority.
const (
	highCycleSleep   = 1 * time.Millisecond
	normalCycleSleep = 5 * time.Second
	lowCycleSleep    = 30 * time.Second

	emptyRegistryWait = 100 * time.Millisecond
)

// Config carries the knobs left to the deployer, each with a default
// matching the most conservative (disabled) behaviour.
type Config struct {
	// MinReseedInterval enforces a floor on how often a reseed may
	// occur, regardless of how fast the entropy thresholds are met.
	// Zero disables the floor.
	MinReseedInterval time.Duration

	// SourcePollConcurrency bounds how many sources are polled in
	// parallel per cycle. 1 means strictly sequential; values above 1
	// use a collect-then-add discipline so accumulator ordering stays
	// well-defined regardless of completion order.
	SourcePollConcurrency int

	// SourceFaultDemoteThreshold is the number of consecutive faults
	// (errors or panics) tolerated from a source before it is
	// dropped from the registry. Zero disables demotion entirely.
	SourceFaultDemoteThreshold int
}

// DefaultConfig returns the most conservative defaults: no minimum
// reseed interval, sequential polling, no fault-based demotion.
func DefaultConfig() Config {
	return Config{
		MinReseedInterval:          0,
		SourcePollConcurrency:      1,
		SourceFaultDemoteThreshold: 0,
	}
}

func (c Config) normalized() Config {
	if c.SourcePollConcurrency < 1 {
		c.SourcePollConcurrency = 1
	}
	return c
}
