// Package accumulator implements Fortuna's pooled entropy accumulator:
// a bank of N mixing pools fed round-robin, drained by a selection
// rule that bounds how long an attacker controlling some sources can
// influence a given pool's contribution to a seed.
package accumulator

import "sync"

// PoolCount is Fortuna's canonical pool count.
const PoolCount = 32

// Event is a single entropy contribution: an opaque byte payload
// paired with the stable identity of the source that produced it.
type Event struct {
	Data              []byte
	SourceFingerprint uint64
}

// Accumulator is the bank of pools plus the round-robin routing
// cursor and reseed sequence counter.
type Accumulator struct {
	mu                sync.Mutex
	pools             [PoolCount]*pool
	totalReseedEvents uint64 // k; starts at 0, first NextSeed produces k=1
	nextPoolForEvent  int
}

// New constructs an Accumulator with all pools empty.
func New() *Accumulator {
	a := &Accumulator{}
	for i := range a.pools {
		a.pools[i] = newPool()
	}
	return a
}

// Add routes an event to the current round-robin pool, updates that
// pool's hash state and counters, and advances the cursor mod
// PoolCount. Never fails.
func (a *Accumulator) Add(event Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pools[a.nextPoolForEvent].add(event.Data)
	a.nextPoolForEvent = (a.nextPoolForEvent + 1) % PoolCount
}

// NextSeed drains the Fortuna-selected subset of pools for the next
// reseed event k = totalReseedEvents+1 (pool i is included iff 2^i
// divides k), concatenates their digests, resets those pools, and
// returns the seed material along with k. It never fails.
func (a *Accumulator) NextSeed() (material []byte, k uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	k = a.totalReseedEvents + 1
	for i := 0; i < PoolCount; i++ {
		if !poolIncluded(i, k) {
			continue
		}
		material = append(material, a.pools[i].drain()...)
	}
	a.totalReseedEvents = k
	return material, k
}

// poolIncluded reports whether pool i is drained for reseed event k,
// per Fortuna's rule: included iff 2^i divides k.
func poolIncluded(i int, k uint64) bool {
	if i >= 63 {
		// 2^63 or higher never divides any realistic k; treat as
		// never-included rather than overflow the shift.
		return false
	}
	return k%(uint64(1)<<uint(i)) == 0
}

// TotalReseedEvents returns the strictly monotone reseed sequence
// number, i.e. the k of the most recent NextSeed call (0 before any
// reseed).
func (a *Accumulator) TotalReseedEvents() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalReseedEvents
}

// PoolZeroEntropyBytesSinceLastSeed returns pool 0's byte counter,
// used by the High-priority reseed predicate.
func (a *Accumulator) PoolZeroEntropyBytesSinceLastSeed() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pools[0].entropyEstimateBytes
}

// MinPoolEntropyBytesSinceLastSeed returns the minimum byte counter
// across all pools, used by the Normal/Low priority reseed
// predicates.
func (a *Accumulator) MinPoolEntropyBytesSinceLastSeed() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	min := a.pools[0].entropyEstimateBytes
	for i := 1; i < PoolCount; i++ {
		if v := a.pools[i].entropyEstimateBytes; v < min {
			min = v
		}
	}
	return min
}

// PoolSnapshot is a read-only view of one pool's counters, used by
// the status/observability surface.
type PoolSnapshot struct {
	Index                 int
	BytesSinceLastDrained int64
	EntropyEstimateBytes  int64
}

// Snapshot returns a point-in-time copy of every pool's counters.
func (a *Accumulator) Snapshot() [PoolCount]PoolSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out [PoolCount]PoolSnapshot
	for i, p := range a.pools {
		out[i] = PoolSnapshot{
			Index:                 i,
			BytesSinceLastDrained: p.bytesSinceLastDrained,
			EntropyEstimateBytes:  p.entropyEstimateBytes,
		}
	}
	return out
}
