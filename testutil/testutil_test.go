package testutil

import (
	"testing"

	"github.com/hupe1980/domarch/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHits_AreValid(t *testing.T) {
	rng := NewRNG(4711)

	hits := rng.Hits(100, HitOptions{MaxSegments: 4})

	require.Len(t, hits, 100)
	for _, h := range hits {
		require.NoError(t, h.Validate())
		assert.Equal(t, "query", h.QueryID)
		assert.GreaterOrEqual(t, h.RawScore, 1.0)
		assert.LessOrEqual(t, len(h.Segments), 4)
	}
}

func TestHits_Reproducible(t *testing.T) {
	a := NewRNG(1).Hits(20, HitOptions{MaxSegments: 2})
	b := NewRNG(1).Hits(20, HitOptions{MaxSegments: 2})
	assert.Equal(t, a, b)

	rng := NewRNG(1)
	first := rng.Hits(5, HitOptions{})
	rng.Reset()
	assert.Equal(t, first, rng.Hits(5, HitOptions{}))
}

func TestBruteForceBest(t *testing.T) {
	hits := Untrimmed([]model.Hit{
		{MatchID: "a", RawScore: 5, Segments: []model.Segment{{Start: 1, Stop: 10}}},
		{MatchID: "b", RawScore: 3, Segments: []model.Segment{{Start: 5, Stop: 15}}},
		{MatchID: "c", RawScore: 4, Segments: []model.Segment{{Start: 11, Stop: 20}}},
	})

	assert.InDelta(t, 9.0, BruteForceBest(hits), 1e-12)
	assert.Zero(t, BruteForceBest(nil))
}

func TestConflictFree(t *testing.T) {
	hits := Untrimmed([]model.Hit{
		{Segments: []model.Segment{{Start: 1, Stop: 10}, {Start: 40, Stop: 50}}},
		{Segments: []model.Segment{{Start: 20, Stop: 30}}},
	})
	assert.True(t, ConflictFree(hits))

	hits = append(hits, Untrimmed([]model.Hit{{Segments: []model.Segment{{Start: 45, Stop: 46}}}})...)
	assert.False(t, ConflictFree(hits))
}
