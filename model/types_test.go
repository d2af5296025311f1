package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Segment
		want bool
	}{
		{"disjoint", Segment{0, 9}, Segment{10, 19}, false},
		{"touching", Segment{0, 10}, Segment{10, 19}, true},
		{"nested", Segment{0, 100}, Segment{10, 19}, true},
		{"single residue", Segment{5, 5}, Segment{5, 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestHit_Validate(t *testing.T) {
	tests := []struct {
		name    string
		hit     Hit
		wantErr bool
	}{
		{"valid", Hit{QueryID: "q", MatchID: "m", RawScore: 1, Segments: []Segment{{1, 10}, {20, 30}}}, false},
		{"no segments", Hit{QueryID: "q", MatchID: "m", RawScore: 1}, true},
		{"reversed", Hit{QueryID: "q", MatchID: "m", Segments: []Segment{{10, 1}}}, true},
		{"negative", Hit{QueryID: "q", MatchID: "m", Segments: []Segment{{-1, 1}}}, true},
		{"overlapping", Hit{QueryID: "q", MatchID: "m", Segments: []Segment{{1, 10}, {10, 20}}}, true},
		{"nan", Hit{QueryID: "q", MatchID: "m", RawScore: math.NaN(), Segments: []Segment{{1, 10}}}, true},
		{"inf", Hit{QueryID: "q", MatchID: "m", RawScore: math.Inf(1), Segments: []Segment{{1, 10}}}, true},
		{"residue too large", Hit{QueryID: "q", MatchID: "m", Segments: []Segment{{1, math.MaxUint32 + 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.hit.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidHit)

			var hitErr *HitError
			require.ErrorAs(t, err, &hitErr)
			assert.Equal(t, "q", hitErr.QueryID)
			assert.Equal(t, "m", hitErr.MatchID)
		})
	}
}

func TestParseScoreKind(t *testing.T) {
	for _, k := range []ScoreKind{FullEvalue, Bitscore, RawScore} {
		got, err := ParseScoreKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseScoreKind("bogus")
	assert.Error(t, err)
}

func TestNewArchitecture(t *testing.T) {
	mk := func(id string, idx int, raw float64, start, stop int) ResolvedHit {
		seg := Segment{start, stop}
		return ResolvedHit{
			Hit:            Hit{MatchID: id, RawScore: raw, Segments: []Segment{seg}},
			Resolved:       []ResolvedSegment{{Original: seg, Trimmed: seg}},
			EffectiveScore: raw * 2,
			Index:          idx,
		}
	}

	arch := NewArchitecture("q1", []ResolvedHit{mk("b", 1, 2, 50, 60), mk("a", 0, 3, 1, 10)})

	require.Equal(t, 2, arch.Len())
	assert.Equal(t, "a", arch.Selected[0].Hit.MatchID)
	assert.Equal(t, "b", arch.Selected[1].Hit.MatchID)
	assert.InDelta(t, 5.0, arch.TotalScore, 1e-12)
	assert.InDelta(t, 10.0, arch.EffectiveTotal(), 1e-12)
}

func TestFormatSegments(t *testing.T) {
	assert.Equal(t, "37-124,239-331", FormatSegments([]Segment{{37, 124}, {239, 331}}))
	assert.Equal(t, "", FormatSegments(nil))
}

func TestHMMCoords_Coverage(t *testing.T) {
	assert.InDelta(t, 0.5, HMMCoords{From: 1, To: 50, Length: 100}.Coverage(), 1e-12)
	assert.Zero(t, HMMCoords{}.Coverage())
}

func TestGroupByQuery(t *testing.T) {
	hits := []Hit{
		{QueryID: "q2", MatchID: "a"},
		{QueryID: "q1", MatchID: "b"},
		{QueryID: "q2", MatchID: "c"},
		{QueryID: "q3", MatchID: "d"},
	}

	batches := GroupByQuery(hits)
	require.Len(t, batches, 3)
	assert.Equal(t, "q2", batches[0].QueryID)
	assert.Equal(t, "q1", batches[1].QueryID)
	assert.Equal(t, "q3", batches[2].QueryID)
	require.Len(t, batches[0].Hits, 2)
	assert.Equal(t, "a", batches[0].Hits[0].MatchID)
	assert.Equal(t, "c", batches[0].Hits[1].MatchID)

	assert.Empty(t, GroupByQuery(nil))
}

func TestArchitecture_ResolvedBoundaries(t *testing.T) {
	resolved := func(idx int, segs ...Segment) ResolvedHit {
		rs := make([]ResolvedSegment, len(segs))
		for i, s := range segs {
			rs[i] = ResolvedSegment{Original: s, Trimmed: s}
		}
		return ResolvedHit{Hit: Hit{Segments: segs}, Resolved: rs, Index: idx}
	}

	arch := NewArchitecture("q", []ResolvedHit{
		resolved(0, Segment{10, 50}),
		resolved(1, Segment{40, 80}, Segment{120, 130}),
		resolved(2, Segment{200, 220}),
	})

	assert.Equal(t, []Segment{{10, 45}}, arch.ResolvedBoundaries(0))
	assert.Equal(t, []Segment{{46, 80}, {120, 130}}, arch.ResolvedBoundaries(1))
	assert.Equal(t, []Segment{{200, 220}}, arch.ResolvedBoundaries(2))
	assert.Equal(t, []Segment{{40, 80}, {120, 130}}, arch.Selected[1].Boundaries())
}
