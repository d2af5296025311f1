package engine

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/model"
	"github.com/hupe1980/domarch/resolve"
	"github.com/hupe1980/domarch/score"
	"github.com/hupe1980/domarch/trim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawHit(match string, score float64, pairs ...int) model.Hit {
	segs := make([]model.Segment, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		segs = append(segs, model.Segment{Start: pairs[i], Stop: pairs[i+1]})
	}
	return model.Hit{QueryID: "query", MatchID: match, RawScore: score, Kind: model.RawScore, Segments: segs}
}

func segs(pairs ...int) []model.Segment {
	return rawHit("", 0, pairs...).Segments
}

func newPipeline(t *testing.T, mutate func(*Config)) *Pipeline {
	t.Helper()
	cfg := Config{Trim: trim.NoTrim, Filter: filter.DefaultSpec()}
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := NewPipeline(cfg)
	require.NoError(t, err)
	return p
}

func TestPipeline_InterleavedDiscontinuousHits(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Trim = trim.MustNew(1, 0) })

	res := p.Resolve("query", []model.Hit{
		rawHit("match_a", 10, 10, 19, 40, 49),
		rawHit("match_b", 10, 30, 39, 50, 59),
		rawHit("match_c", 10, 0, 9, 60, 69),
	})

	arch := res.Architecture
	require.Equal(t, 3, arch.Len())
	assert.Equal(t, "match_c", arch.Selected[0].Hit.MatchID)
	assert.Equal(t, "match_a", arch.Selected[1].Hit.MatchID)
	assert.Equal(t, "match_b", arch.Selected[2].Hit.MatchID)
	for _, h := range arch.Selected {
		assert.Equal(t, h.Hit.Segments, h.Boundaries())
		assert.Equal(t, h.Boundaries(), h.Trimmed())
	}
	assert.InDelta(t, 30.0, arch.TotalScore, 1e-12)
}

func TestPipeline_MinSegLengthDropsShortSegment(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Filter.MinSegLength = 7 })

	res := p.Resolve("query", []model.Hit{
		rawHit("match_1", 10, 21, 122),
		rawHit("match_2", 5, 0, 20, 94, 95),
	})

	arch := res.Architecture
	require.Equal(t, 2, arch.Len())
	assert.Equal(t, "match_2", arch.Selected[0].Hit.MatchID)
	assert.Equal(t, segs(0, 20), arch.Selected[0].Trimmed())
	assert.Equal(t, "match_1", arch.Selected[1].Hit.MatchID)
	assert.Equal(t, segs(21, 122), arch.Selected[1].Trimmed())
	assert.InDelta(t, 15.0, arch.TotalScore, 1e-12)
}

func TestPipeline_TrimmingAllowsNearOverlaps(t *testing.T) {
	hits := []model.Hit{
		rawHit("left", 10, 1, 100),
		rawHit("right", 10, 95, 200),
	}

	untrimmed := newPipeline(t, nil).Resolve("query", hits)
	assert.Equal(t, 1, untrimmed.Architecture.Len())

	trimmed := newPipeline(t, func(c *Config) { c.Trim = trim.MustNew(30, 10) }).Resolve("query", hits)
	require.Equal(t, 2, trimmed.Architecture.Len())
	assert.Equal(t, segs(1, 100), trimmed.Architecture.Selected[0].Boundaries())
	assert.Equal(t, segs(6, 95), trimmed.Architecture.Selected[0].Trimmed())
}

func TestPipeline_ReportsRawTotal(t *testing.T) {
	p := newPipeline(t, func(c *Config) {
		c.Score = score.Spec{LongDomainsPreference: 50, HighScoresPreference: 25}
	})

	res := p.Resolve("query", []model.Hit{rawHit("a", 3, 1, 50), rawHit("b", 4, 60, 90)})
	assert.InDelta(t, 7.0, res.Architecture.TotalScore, 1e-12)
	assert.Greater(t, res.Architecture.EffectiveTotal(), 7.0)
}

func TestPipeline_Summary(t *testing.T) {
	var dropped sync.Map
	p := newPipeline(t, func(c *Config) {
		c.Filter.WorstScore = 1
		c.Filter.MinSegLength = 5
		c.OnDrop = func(h model.Hit, reason filter.Reason) { dropped.Store(h.MatchID, reason) }
	})

	res := p.Resolve("query", []model.Hit{
		rawHit("good", 10, 1, 50),
		rawHit("weak", 0.5, 60, 90),
		rawHit("short", 10, 100, 102),
		rawHit("broken", 10),
		rawHit("dominated", 2, 1, 60),
	})

	assert.Equal(t, 5, res.InputHits)
	assert.Equal(t, 1, res.Candidates)

	c := p.Summary().Snapshot()
	assert.Equal(t, int64(5), c.InputHits)
	assert.Equal(t, int64(1), c.Queries)
	assert.Equal(t, int64(1), c.Kept)
	assert.Equal(t, int64(1), c.DroppedScore)
	assert.Equal(t, int64(1), c.DroppedShortSegments)
	assert.Equal(t, int64(1), c.DroppedInvalid)
	assert.Equal(t, int64(1), c.PrunedRedundant)

	reason, ok := dropped.Load("dominated")
	require.True(t, ok)
	assert.Equal(t, filter.PrunedRedundant, reason)
}

func bitscoreHit(match string, score float64, start, stop int) model.Hit {
	h := rawHit(match, score, start, stop)
	h.Kind = model.Bitscore
	return h
}

func TestPipeline_CATHRules(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Score.ApplyCATHRules = true })

	cond, indep := 1e-5, 0.01
	quartered := bitscoreHit("quartered", 40, 1, 10)
	quartered.CondEvalue, quartered.IndepEvalue = &cond, &indep

	res := p.Resolve("query", []model.Hit{quartered, bitscoreHit("good", 20, 20, 40)})
	require.Equal(t, 2, res.Architecture.Len())
	assert.InDelta(t, 10.0, res.Architecture.Selected[0].Hit.RawScore, 1e-12)
	assert.InDelta(t, 30.0, res.Architecture.TotalScore, 1e-12)
}

func TestPipeline_NonPositiveBitscoresSkipped(t *testing.T) {
	tests := []struct {
		name string
		mode resolve.Mode
		cath bool
	}{
		{"greedy", resolve.NaiveGreedy, false},
		{"greedy with CATH rules", resolve.NaiveGreedy, true},
		{"optimal", resolve.Optimal, false},
		{"optimal with CATH rules", resolve.Optimal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			p := newPipeline(t, func(c *Config) {
				c.Mode = tt.mode
				c.Score.ApplyCATHRules = tt.cath
				c.Logger = slog.New(slog.NewTextHandler(&logs, nil))
			})

			res := p.Resolve("query", []model.Hit{
				bitscoreHit("good", 30, 1, 50),
				bitscoreHit("neg", -4, 60, 120),
				bitscoreHit("zero", 0, 130, 140),
			})

			require.Equal(t, 1, res.Architecture.Len())
			assert.Equal(t, "good", res.Architecture.Selected[0].Hit.MatchID)
			assert.InDelta(t, 30.0, res.Architecture.TotalScore, 1e-12)
			assert.Equal(t, 1, res.Candidates)
			assert.Equal(t, int64(2), p.Summary().Snapshot().DroppedNonPositive)
			assert.Equal(t, 1, strings.Count(logs.String(), "non-positive bitscores"))
		})
	}
}

func TestPipeline_NegativeRawScoresKept(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Mode = resolve.NaiveGreedy })

	res := p.Resolve("query", []model.Hit{rawHit("neg", -4, 1, 10)})
	assert.Equal(t, 1, res.Candidates)
	assert.Zero(t, p.Summary().Snapshot().DroppedNonPositive)
}

func TestPipeline_Admit(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Filter.LimitQueries = 1 })

	assert.True(t, p.Admit("q1", []model.Hit{rawHit("a", 1, 1, 2)}))
	assert.False(t, p.Admit("q2", []model.Hit{rawHit("a", 1, 1, 2), rawHit("b", 1, 3, 4)}))
	assert.Equal(t, int64(2), p.Summary().Snapshot().DroppedQuery)
}

func TestPipeline_GreedyMode(t *testing.T) {
	p := newPipeline(t, func(c *Config) { c.Mode = resolve.NaiveGreedy })
	assert.Equal(t, resolve.NaiveGreedy, p.Mode())

	hits := []model.Hit{rawHit("long", 5, 1, 100), rawHit("left", 3, 1, 50), rawHit("right", 3, 51, 100)}
	res := p.Resolve("query", hits)
	require.Equal(t, 1, res.Architecture.Len())
	assert.Equal(t, "long", res.Architecture.Selected[0].Hit.MatchID)

	again := p.Resolve("query", hits)
	assert.Equal(t, res.Architecture, again.Architecture)
}

func TestNewPipeline_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"filter", Config{Filter: filter.Spec{WorstEvalue: -1}}},
		{"score", Config{Filter: filter.DefaultSpec(), Score: score.Spec{HighScoresPreference: 101}}},
		{"mode", Config{Filter: filter.DefaultSpec(), Mode: resolve.Mode(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(tt.cfg)
			assert.Error(t, err)
		})
	}
}
