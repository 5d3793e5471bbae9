package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubSource struct {
	name     string
	released int
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) GetEntropy(ctx context.Context, p Priority) ([]byte, error) {
	return []byte("x"), nil
}
func (s *stubSource) Release() error {
	s.released++
	return nil
}

func TestSnapshotIsShallowCloneNotAliasedToLiveSlice(t *testing.T) {
	r := NewRegistry()
	r.Add(&stubSource{name: "a"})

	snap := r.Snapshot()
	require.Len(t, snap, 1)

	r.Add(&stubSource{name: "b"})
	require.Len(t, snap, 1, "prior snapshot must not observe later Adds")
	require.Equal(t, 2, r.Len())
}

func TestRemoveDropsOnlyTheNamedSource(t *testing.T) {
	r := NewRegistry()
	r.Add(&stubSource{name: "a"})
	r.Add(&stubSource{name: "b"})

	r.Remove("a")
	snap := r.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, "b", snap[0].Name())
}

func TestReleaseAllCallsEachSourceExactlyOnce(t *testing.T) {
	r := NewRegistry()
	a := &stubSource{name: "a"}
	b := &stubSource{name: "b"}
	r.Add(a)
	r.Add(b)

	errs := r.ReleaseAll()
	require.Empty(t, errs)
	require.Equal(t, 1, a.released)
	require.Equal(t, 1, b.released)
	require.Zero(t, r.Len())
}
