// Package scheduler implements the Fortuna worker loop: it polls
// entropy sources, feeds the accumulator, and decides when to reseed
// the cipher PRNG under one of three priority regimes.
package scheduler

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coldkeep/fortunad/internal/accumulator"
	"github.com/coldkeep/fortunad/internal/cipherprng"
	"github.com/coldkeep/fortunad/internal/source"
)

// ErrCancelled is returned by waiters when their context is done
// before the awaited condition holds.
var ErrCancelled = errors.New("scheduler: cancelled")

// Scheduler drives entropy harvesting and reseed decisions on a
// single goroutine. All of its state is otherwise safe to read
// concurrently (atomics, or delegated to the accumulator's own lock).
type Scheduler struct {
	cfg      Config
	log      *logrus.Entry
	registry *source.Registry
	acc      *accumulator.Accumulator
	cipher   *cipherprng.Generator // the facade's shared, reseeded generator
	shuffler *cipherprng.Generator // cheap-key, private, shuffle only

	priority atomic.Int32 // source.Priority
	wake     chan struct{}

	seeded seedSignal

	listenersMu sync.Mutex
	listeners   []func()

	faultsMu sync.Mutex
	faults   map[string]int

	lastReseedUnixNano atomic.Int64
}

// New constructs a Scheduler. cipher is the generator that Fill reads
// from and that reseed events key; it may be in NullKey mode.
func New(cfg Config, registry *source.Registry, acc *accumulator.Accumulator, cipher *cipherprng.Generator, log *logrus.Entry) (*Scheduler, error) {
	shuffler, err := cipherprng.New(cipherprng.CheapKey, nil)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Scheduler{
		cfg:      cfg.normalized(),
		log:      log,
		registry: registry,
		acc:      acc,
		cipher:   cipher,
		shuffler: shuffler,
		wake:     make(chan struct{}, 1),
		faults:   make(map[string]int),
	}
	s.priority.Store(int32(source.PriorityHigh))
	return s, nil
}

// Priority returns the current scheduling regime.
func (s *Scheduler) Priority() source.Priority {
	return source.Priority(s.priority.Load())
}

// TotalReseedEvents delegates to the accumulator's monotone counter.
func (s *Scheduler) TotalReseedEvents() uint64 {
	return s.acc.TotalReseedEvents()
}

// Wake nudges the worker to attempt a reseed evaluation on its next
// cycle instead of waiting out its inter-cycle sleep. Non-blocking.
func (s *Scheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// AddReseedListener registers a callback fired after every successful
// reseed, once the cipher PRNG's lock has been released. Each firing
// runs on its own goroutine, never on the worker goroutine itself, so
// a listener that blocks (including one that calls Stop/Dispose on the
// owning generator) cannot deadlock the worker loop. A listener that
// panics is recovered and logged; it never aborts the worker.
func (s *Scheduler) AddReseedListener(fn func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetPriority allows an external caller to move between Normal and
// Low; the core never drives this transition itself. Moving to High
// is only ever done via RequestReseed, so it is rejected here.
func (s *Scheduler) SetPriority(p source.Priority) error {
	if p != source.PriorityNormal && p != source.PriorityLow {
		return errors.New("scheduler: only Normal and Low may be set explicitly")
	}
	s.priority.Store(int32(p))
	return nil
}

// RequestReseed forces priority to High, wakes the worker, and blocks
// until the reseed counter has advanced by at least one, or ctx is
// done.
func (s *Scheduler) RequestReseed(ctx context.Context) error {
	s.priority.Store(int32(source.PriorityHigh))
	target := s.acc.TotalReseedEvents() + 1
	s.Wake()
	return s.WaitForNthSeed(ctx, target)
}

// WaitForNthSeed blocks until TotalReseedEvents() >= n, or ctx is
// done.
func (s *Scheduler) WaitForNthSeed(ctx context.Context, n uint64) error {
	for {
		// Take the channel before checking the count, so a broadcast
		// that lands between the two is not missed.
		ch := s.seeded.wait()
		if s.acc.TotalReseedEvents() >= n {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ErrCancelled
		}
	}
}

// Run executes the worker loop until ctx is cancelled. It is intended
// to be launched once, on its own goroutine, by the owning facade.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		s.cycle(ctx)
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	sources := s.registry.Snapshot()
	if len(sources) == 0 {
		s.sleep(ctx, emptyRegistryWait)
		return
	}

	s.shuffle(sources)
	s.pollAll(ctx, sources)

	if ctx.Err() != nil {
		return
	}

	if s.shouldReseed() {
		s.reseed()
	}

	s.sleep(ctx, s.cycleSleep())
}

// shuffle randomizes poll order in place using the private cheap-key
// cipher, so no single source can rely on always being polled last
// (and thus having the most recent, most influential contribution).
func (s *Scheduler) shuffle(sources []source.Source) {
	n := len(sources)
	for i := n - 1; i > 0; i-- {
		j := s.randIntn(i + 1)
		sources[i], sources[j] = sources[j], sources[i]
	}
}

func (s *Scheduler) randIntn(n int) int {
	if n <= 1 {
		return 0
	}
	var buf [4]byte
	// Generate never fails for a seeded (cheap-key) generator with a
	// tiny in-cap request; the shuffler is always seeded at
	// construction.
	_ = s.shuffler.Generate(buf[:], 0, len(buf))
	v := binary.BigEndian.Uint32(buf[:])
	return int(v % uint32(n))
}

// pollAll polls every source, honoring the configured concurrency
// bound, and adds the results to the accumulator in the shuffled
// order once every poll in the batch has completed. Collecting into
// results first and only adding afterward keeps accumulator ordering
// well-defined regardless of which goroutine finishes first.
func (s *Scheduler) pollAll(ctx context.Context, sources []source.Source) {
	results := make([][]byte, len(sources))
	sem := make(chan struct{}, s.cfg.SourcePollConcurrency)
	var wg sync.WaitGroup

	for i, src := range sources {
		if ctx.Err() != nil {
			break
		}
		i, src := i, src
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.pollOne(ctx, src)
		}()
	}
	wg.Wait()

	for i, src := range sources {
		data := results[i]
		if data == nil {
			continue
		}
		fp := source.Fingerprint("source", src.Name())
		s.acc.Add(accumulator.Event{Data: data, SourceFingerprint: fp})
	}
}

// pollOne polls a single source, recovering from a panic and treating
// both an error and a panic as a SourceFault: the source is skipped
// for this cycle without halting the worker.
func (s *Scheduler) pollOne(ctx context.Context, src source.Source) (data []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("source", src.Name()).WithField("panic", r).Warn("source panicked during poll")
			s.recordFault(src)
			data = nil
		}
	}()

	got, err := src.GetEntropy(ctx, s.Priority())
	if err != nil {
		s.log.WithError(err).WithField("source", src.Name()).Debug("source poll failed")
		s.recordFault(src)
		return nil
	}
	if len(got) == 0 {
		return nil
	}
	s.clearFault(src)
	return got
}

func (s *Scheduler) recordFault(src source.Source) {
	if s.cfg.SourceFaultDemoteThreshold <= 0 {
		return
	}
	s.faultsMu.Lock()
	s.faults[src.Name()]++
	n := s.faults[src.Name()]
	s.faultsMu.Unlock()

	if n >= s.cfg.SourceFaultDemoteThreshold {
		s.log.WithField("source", src.Name()).WithField("consecutive_faults", n).
			Warn("demoting persistently faulting source")
		s.demote(src)
	}
}

func (s *Scheduler) clearFault(src source.Source) {
	if s.cfg.SourceFaultDemoteThreshold <= 0 {
		return
	}
	s.faultsMu.Lock()
	delete(s.faults, src.Name())
	s.faultsMu.Unlock()
}

// demote is a best-effort removal of a persistently faulting source
// from future polls.
func (s *Scheduler) demote(src source.Source) {
	s.registry.Remove(src.Name())
	_ = src.Release()
}

func (s *Scheduler) shouldReseed() bool {
	if s.cfg.MinReseedInterval > 0 {
		last := s.lastReseedUnixNano.Load()
		if last != 0 && time.Since(time.Unix(0, last)) < s.cfg.MinReseedInterval {
			return false
		}
	}

	switch s.Priority() {
	case source.PriorityHigh:
		return s.acc.PoolZeroEntropyBytesSinceLastSeed() > highReseedThresholdBytes
	case source.PriorityNormal:
		return s.acc.MinPoolEntropyBytesSinceLastSeed() > normalReseedThresholdBytes
	case source.PriorityLow:
		return s.acc.MinPoolEntropyBytesSinceLastSeed() > lowReseedThresholdBytes
	default:
		return false
	}
}

func (s *Scheduler) reseed() {
	material, k := s.acc.NextSeed()
	defer zero(material)

	if err := s.cipher.Reseed(material); err != nil {
		s.log.WithError(err).Warn("reseed of cipher PRNG failed")
		return
	}
	s.lastReseedUnixNano.Store(time.Now().UnixNano())

	if s.Priority() == source.PriorityHigh {
		s.priority.Store(int32(source.PriorityNormal))
	}

	s.log.WithField("k", k).WithField("priority", s.Priority().String()).Info("reseeded cipher PRNG")

	s.seeded.broadcast()
	s.fireListeners()
}

// fireListeners dispatches every registered listener on its own
// goroutine and returns without waiting for any of them to finish.
// Running listeners off the worker goroutine means one that blocks
// waiting for the worker to exit (as Generator.Stop does) cannot
// starve the very loop iteration that would let it exit.
func (s *Scheduler) fireListeners() {
	s.listenersMu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		go s.invokeListener(fn)
	}
}

func (s *Scheduler) invokeListener(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Warn("reseed listener panicked")
		}
	}()
	fn()
}

func (s *Scheduler) cycleSleep() time.Duration {
	switch s.Priority() {
	case source.PriorityHigh:
		return highCycleSleep
	case source.PriorityLow:
		return lowCycleSleep
	default:
		return normalCycleSleep
	}
}

// sleep waits for d, or returns early on wake or ctx cancellation.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-s.wake:
	case <-ctx.Done():
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
