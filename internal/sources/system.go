// Package sources provides reference entropy sources for wiring a
// running daemon: the operating system's CSPRNG, scheduler jitter
// timing, and an HTTP-polled external oracle. None of these are
// imported by the core generator/accumulator/scheduler packages; they
// are registered by cmd/fortunad and by the admin add-source handler
// in internal/handlers.
package sources

import (
	"context"
	"crypto/rand"

	"github.com/coldkeep/fortunad/internal/source"
)

// System draws bytes directly from the operating system's CSPRNG. It
// is the simplest possible source and a reasonable default to seed
// any deployment with.
type System struct {
	name string
	n    int
}

// NewSystem constructs a System source that contributes n bytes per
// poll.
func NewSystem(n int) *System {
	return &System{name: "system", n: n}
}

func (s *System) Name() string { return s.name }

func (s *System) GetEntropy(_ context.Context, _ source.Priority) ([]byte, error) {
	buf := make([]byte, s.n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *System) Release() error { return nil }
