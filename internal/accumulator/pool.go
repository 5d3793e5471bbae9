package accumulator

import (
	"crypto/sha256"
	"hash"
)

// pool is one of the N incremental hash accumulators. Its internal
// state is never exposed directly; only drain's digest leaves the
// pool.
type pool struct {
	h                     hash.Hash
	bytesSinceLastDrained int64
	entropyEstimateBytes  int64
}

func newPool() *pool {
	return &pool{h: sha256.New()}
}

// add feeds an entropy event's payload into the pool's running hash
// and updates its observable counters. Never fails.
func (p *pool) add(data []byte) {
	p.h.Write(data)
	n := int64(len(data))
	p.bytesSinceLastDrained += n
	p.entropyEstimateBytes += n
}

// drain returns the pool's digest and resets its hash state and
// counters to fresh-empty, per the accumulator invariant.
func (p *pool) drain() []byte {
	digest := p.h.Sum(nil)
	p.h = sha256.New()
	p.bytesSinceLastDrained = 0
	p.entropyEstimateBytes = 0
	return digest
}
