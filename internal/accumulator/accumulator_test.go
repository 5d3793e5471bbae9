package accumulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAdvancesRoundRobinCursor(t *testing.T) {
	a := New()
	for i := 0; i < PoolCount+3; i++ {
		require.Equal(t, i%PoolCount, a.nextPoolForEvent)
		a.Add(Event{Data: []byte("x")})
	}
}

func TestPoolInclusionMatchesFortunaRule(t *testing.T) {
	cases := []struct {
		k        uint64
		included []int
	}{
		{1, []int{0}},
		{2, []int{0, 1}},
		{3, []int{0}},
		{4, []int{0, 1, 2}},
	}
	for _, c := range cases {
		var got []int
		for i := 0; i < PoolCount; i++ {
			if poolIncluded(i, c.k) {
				got = append(got, i)
			}
		}
		require.Equal(t, c.included, got, "k=%d", c.k)
	}
}

func TestNextSeedResetsIncludedPoolsOnly(t *testing.T) {
	a := New()
	for i := 0; i < PoolCount; i++ {
		a.Add(Event{Data: []byte("seed-material")})
	}

	before := a.Snapshot()
	require.NotZero(t, before[0].EntropyEstimateBytes)

	material, k := a.NextSeed()
	require.Equal(t, uint64(1), k)
	require.NotEmpty(t, material)

	after := a.Snapshot()
	require.Zero(t, after[0].BytesSinceLastDrained)
	require.Zero(t, after[0].EntropyEstimateBytes)
	// pool 1 is not included at k=1 and must be untouched.
	require.Equal(t, before[1], after[1])
}

func TestTotalReseedEventsIsStrictlyMonotone(t *testing.T) {
	a := New()
	var last uint64
	for i := 0; i < 5; i++ {
		a.Add(Event{Data: []byte("more")})
		_, k := a.NextSeed()
		require.Greater(t, k, last)
		last = k
	}
}

func TestMinPoolEntropyBytesAcrossEvenDistribution(t *testing.T) {
	a := New()
	require.Zero(t, a.MinPoolEntropyBytesSinceLastSeed())

	for i := 0; i < PoolCount; i++ {
		a.Add(Event{Data: []byte("abcdefgh")}) // 8 bytes to every pool once
	}
	require.EqualValues(t, 8, a.MinPoolEntropyBytesSinceLastSeed())
}
