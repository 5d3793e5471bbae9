// Package source defines the abstract entropy source contract and a
// thread-safe registry of sources for the scheduler to poll.
package source

import "context"

// Priority mirrors the generator facade's reseed-aggressiveness
// regime; sources may use it to decide how much work to do (e.g. skip
// a slow external call while priority is Low).
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityNormal:
		return "Normal"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// Source is a distrusted entropy source: it may be slow, may lie, and
// may raise. GetEntropy may return (nil, nil) to mean "nothing new
// this cycle". Release is called exactly once when the source is
// removed from service and must be idempotent.
type Source interface {
	Name() string
	GetEntropy(ctx context.Context, priority Priority) ([]byte, error)
	Release() error
}
