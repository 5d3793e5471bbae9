package sources

import (
	"context"
	"encoding/binary"
	"runtime"
	"time"

	"github.com/coldkeep/fortunad/internal/source"
)

// Jitter measures scheduler timing noise: the wall-clock delay before
// a goroutine it spawns gets to run. This noise is a function of
// runtime scheduling decisions and OS load, not of anything the
// process itself controls.
type Jitter struct {
	samples int
}

// NewJitter constructs a Jitter source that takes samples readings
// per poll.
func NewJitter(samples int) *Jitter {
	if samples < 1 {
		samples = 1
	}
	return &Jitter{samples: samples}
}

func (j *Jitter) Name() string { return "jitter" }

func (j *Jitter) GetEntropy(ctx context.Context, _ source.Priority) ([]byte, error) {
	buf := make([]byte, 8*j.samples)
	for i := 0; i < j.samples; i++ {
		delta := j.sampleOnce(ctx)
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(delta))
	}
	return buf, nil
}

func (j *Jitter) sampleOnce(ctx context.Context) time.Duration {
	start := time.Now()
	done := make(chan struct{})
	go func() {
		runtime.Gosched()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return time.Since(start)
}

func (j *Jitter) Release() error { return nil }
