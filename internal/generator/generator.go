// Package generator is the public facade over the cipher PRNG, the
// entropy accumulator, the source registry, and the worker that ties
// them together. It is the one type callers construct and hold.
package generator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coldkeep/fortunad/internal/accumulator"
	"github.com/coldkeep/fortunad/internal/cipherprng"
	"github.com/coldkeep/fortunad/internal/scheduler"
	"github.com/coldkeep/fortunad/internal/source"
)

// Generator owns a cipher PRNG, an entropy accumulator, a source
// registry, and the worker goroutine that drives reseeding. The zero
// value is not usable; construct with New.
type Generator struct {
	id       uuid.UUID
	cipher   *cipherprng.Generator
	acc      *accumulator.Accumulator
	registry *source.Registry
	sched    *scheduler.Scheduler
	log      *logrus.Entry

	bytesRequested atomic.Int64

	startOnce sync.Once
	started   atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}

	disposeOnce sync.Once
}

// New constructs a Generator with an empty source registry and an
// unseeded cipher PRNG. Call AddSource and Start (or
// StartAndWaitForNthSeed) before Fill will succeed.
func New(cfg scheduler.Config, log *logrus.Entry) (*Generator, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	cipher, err := cipherprng.New(cipherprng.NullKey, nil)
	if err != nil {
		return nil, err
	}
	acc := accumulator.New()
	registry := source.NewRegistry()

	sched, err := scheduler.New(cfg, registry, acc, cipher, log)
	if err != nil {
		return nil, err
	}

	return &Generator{
		id:       uuid.New(),
		cipher:   cipher,
		acc:      acc,
		registry: registry,
		sched:    sched,
		log:      log,
		done:     make(chan struct{}),
	}, nil
}

// ID returns this generator instance's stable identity, used for
// logging and status reporting only.
func (g *Generator) ID() uuid.UUID {
	return g.id
}

// AddSource registers an entropy source. Safe to call before or after
// Start.
func (g *Generator) AddSource(src source.Source) {
	g.registry.Add(src)
}

// AddReseedListener registers a callback fired after every successful
// reseed.
func (g *Generator) AddReseedListener(fn func()) {
	g.sched.AddReseedListener(fn)
}

// Start launches the worker goroutine. Safe to call more than once;
// only the first call has effect.
func (g *Generator) Start() {
	g.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		g.cancel = cancel
		g.started.Store(true)
		go func() {
			defer close(g.done)
			g.sched.Run(ctx)
		}()
	})
}

// StartAndWaitForNthSeed starts the worker if needed and blocks until
// the reseed counter reaches n, or ctx is done.
func (g *Generator) StartAndWaitForNthSeed(ctx context.Context, n uint64) error {
	g.Start()
	return g.sched.WaitForNthSeed(ctx, n)
}

// Reseed forces an immediate High-priority reseed cycle and blocks
// until it completes, or ctx is done.
func (g *Generator) Reseed(ctx context.Context) error {
	g.Start()
	return g.sched.RequestReseed(ctx)
}

// Fill writes length random bytes into buf[offset:offset+length] and
// counts them against BytesRequested. It fails with
// cipherprng.ErrUninitialised until the first reseed has completed,
// and with cipherprng.ErrRequestTooLarge past MaxRequestBytes.
func (g *Generator) Fill(buf []byte, offset, length int) error {
	if err := g.cipher.Generate(buf, offset, length); err != nil {
		return err
	}
	g.bytesRequested.Add(int64(length))
	return nil
}

// MaxRequestBytes is the largest length Fill accepts in one call.
func (g *Generator) MaxRequestBytes() int {
	return g.cipher.MaxRequestBytes()
}

// BytesRequested returns the running total of bytes handed out by
// Fill.
func (g *Generator) BytesRequested() int64 {
	return g.bytesRequested.Load()
}

// ReseedCount returns the strictly monotone reseed sequence number.
func (g *Generator) ReseedCount() uint64 {
	return g.sched.TotalReseedEvents()
}

// Priority returns the worker's current scheduling regime.
func (g *Generator) Priority() source.Priority {
	return g.sched.Priority()
}

// Snapshot returns a point-in-time view of every accumulator pool's
// counters, for status reporting.
func (g *Generator) Snapshot() []accumulator.PoolSnapshot {
	snap := g.acc.Snapshot()
	out := make([]accumulator.PoolSnapshot, len(snap))
	copy(out, snap[:])
	return out
}

// SetPriority moves the worker between Normal and Low. Returns an
// error if asked to set High, which is only ever entered via Reseed.
func (g *Generator) SetPriority(p source.Priority) error {
	return g.sched.SetPriority(p)
}

// RequestStop signals the worker to exit without waiting for it.
func (g *Generator) RequestStop() {
	if g.cancel != nil {
		g.cancel()
	}
}

// Stop signals the worker to exit and blocks until it has.
func (g *Generator) Stop() {
	g.RequestStop()
	if g.started.Load() {
		<-g.done
	}
}

// Dispose stops the worker, disposes the cipher PRNG, and releases
// every registered source exactly once. Idempotent and safe to call
// from any goroutine, including from inside a reseed listener: the
// scheduler fires listeners off its own worker goroutine, so blocking
// here on that goroutine's exit never deadlocks.
func (g *Generator) Dispose() {
	g.disposeOnce.Do(func() {
		g.Stop()
		g.cipher.Dispose()
		if errs := g.registry.ReleaseAll(); len(errs) > 0 {
			for _, err := range errs {
				g.log.WithError(err).Warn("source release failed during dispose")
			}
		}
	})
}
