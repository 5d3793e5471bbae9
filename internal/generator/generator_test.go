package generator

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/coldkeep/fortunad/internal/cipherprng"
	"github.com/coldkeep/fortunad/internal/scheduler"
	"github.com/coldkeep/fortunad/internal/source"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

type burstSource struct {
	name     string
	payload  []byte
	released int
}

func (b *burstSource) Name() string { return b.name }
func (b *burstSource) GetEntropy(ctx context.Context, p source.Priority) ([]byte, error) {
	return b.payload, nil
}
func (b *burstSource) Release() error {
	b.released++
	return nil
}

func TestFillFailsUninitialisedBeforeFirstReseed(t *testing.T) {
	g, err := New(scheduler.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	defer g.Dispose()

	g.Start()
	time.Sleep(250 * time.Millisecond)
	require.Zero(t, g.ReseedCount())

	buf := make([]byte, 8)
	require.ErrorIs(t, g.Fill(buf, 0, 8), cipherprng.ErrUninitialised)
}

func TestFillSucceedsAfterSourceContributesEnoughEntropy(t *testing.T) {
	g, err := New(scheduler.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	defer g.Dispose()

	g.AddSource(&burstSource{name: "s1", payload: make([]byte, 64)})
	g.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.StartAndWaitForNthSeed(ctx, 1))
	require.GreaterOrEqual(t, g.ReseedCount(), uint64(1))
	require.Equal(t, source.PriorityNormal, g.Priority())

	buf := make([]byte, 8)
	require.NoError(t, g.Fill(buf, 0, 8))
	require.EqualValues(t, 8, g.BytesRequested())
}

func TestReseedReturnsToNormalAfterForcingHigh(t *testing.T) {
	g, err := New(scheduler.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	defer g.Dispose()

	g.AddSource(&burstSource{name: "s1", payload: make([]byte, 64)})
	g.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.StartAndWaitForNthSeed(ctx, 1))

	before := g.ReseedCount()
	require.NoError(t, g.Reseed(ctx))
	require.Greater(t, g.ReseedCount(), before)
	require.Equal(t, source.PriorityNormal, g.Priority())
}

func TestDisposeReleasesEverySourceExactlyOnce(t *testing.T) {
	g, err := New(scheduler.DefaultConfig(), discardLogger())
	require.NoError(t, err)

	src := &burstSource{name: "s1", payload: make([]byte, 64)}
	g.AddSource(src)
	g.Start()
	g.Dispose()
	g.Dispose()

	require.Equal(t, 1, src.released)
}

func TestDisposeCalledFromReseedListenerReturns(t *testing.T) {
	g, err := New(scheduler.DefaultConfig(), discardLogger())
	require.NoError(t, err)

	done := make(chan struct{})
	g.AddReseedListener(func() {
		g.Dispose()
		close(done)
	})

	g.AddSource(&burstSource{name: "s1", payload: make([]byte, 64)})
	g.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, g.StartAndWaitForNthSeed(ctx, 1))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispose called from within a reseed listener did not return")
	}
}

func TestDistinctGeneratorsHaveDistinctIDs(t *testing.T) {
	g1, err := New(scheduler.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	defer g1.Dispose()

	g2, err := New(scheduler.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	defer g2.Dispose()

	require.NotEqual(t, g1.ID(), g2.ID())
}
