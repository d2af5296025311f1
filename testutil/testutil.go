package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/domarch/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// HitOptions shapes randomly generated hits.
type HitOptions struct {
	// QueryID is assigned to every hit. Default: "query".
	QueryID string
	// SequenceLength bounds segment stops. Default: 200.
	SequenceLength int
	// MaxSegments is the maximum number of segments per hit. Default: 1.
	MaxSegments int
	// MaxSegmentLength is the maximum length of one segment. Default: 40.
	MaxSegmentLength int
	// MaxScore bounds raw scores, which are drawn from [1, MaxScore). Default: 100.
	MaxScore float64
	// IntegerScores rounds scores down, which produces many ties.
	IntegerScores bool
}

func (o HitOptions) withDefaults() HitOptions {
	if o.QueryID == "" {
		o.QueryID = "query"
	}
	if o.SequenceLength <= 0 {
		o.SequenceLength = 200
	}
	if o.MaxSegments <= 0 {
		o.MaxSegments = 1
	}
	if o.MaxSegmentLength <= 0 {
		o.MaxSegmentLength = 40
	}
	if o.MaxScore <= 1 {
		o.MaxScore = 100
	}
	return o
}

// Hits generates n valid raw-score hits.
func (r *RNG) Hits(n int, opts HitOptions) []model.Hit {
	opts = opts.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	hits := make([]model.Hit, 0, n)
	for i := range n {
		numSegs := 1 + r.rand.Intn(opts.MaxSegments)
		pos := r.rand.Intn(opts.SequenceLength)
		segs := make([]model.Segment, 0, numSegs)
		for range numSegs {
			length := 1 + r.rand.Intn(opts.MaxSegmentLength)
			segs = append(segs, model.Segment{Start: pos, Stop: pos + length - 1})
			pos += length + 1 + r.rand.Intn(opts.MaxSegmentLength)
		}

		score := 1 + r.rand.Float64()*(opts.MaxScore-1)
		if opts.IntegerScores {
			score = float64(int(score))
		}

		hits = append(hits, model.Hit{
			QueryID:  opts.QueryID,
			MatchID:  fmt.Sprintf("match_%d", i),
			RawScore: score,
			Kind:     model.RawScore,
			Segments: segs,
		})
	}
	return hits
}

// ResolvedHits generates n untrimmed resolved hits whose effective score
// equals their raw score.
func (r *RNG) ResolvedHits(n int, opts HitOptions) []model.ResolvedHit {
	return Untrimmed(r.Hits(n, opts))
}

// Untrimmed wraps hits as resolved hits with unchanged boundaries.
func Untrimmed(hits []model.Hit) []model.ResolvedHit {
	out := make([]model.ResolvedHit, len(hits))
	for i, h := range hits {
		rs := make([]model.ResolvedSegment, len(h.Segments))
		for j, s := range h.Segments {
			rs[j] = model.ResolvedSegment{Original: s, Trimmed: s}
		}
		out[i] = model.ResolvedHit{Hit: h, Resolved: rs, EffectiveScore: h.RawScore, Index: i}
	}
	return out
}

// ConflictFree reports whether no two hits share an overlapping trimmed segment pair.
func ConflictFree(hits []model.ResolvedHit) bool {
	for i := range hits {
		for j := i + 1; j < len(hits); j++ {
			if hits[i].ConflictsWith(hits[j]) {
				return false
			}
		}
	}
	return true
}

// BruteForceBest returns the maximal total effective score over every
// conflict-free subset of hits. It enumerates all subsets and is only
// usable for small inputs.
func BruteForceBest(hits []model.ResolvedHit) float64 {
	if len(hits) > 20 {
		panic("testutil: BruteForceBest supports at most 20 hits")
	}

	conflicts := make([]uint32, len(hits))
	for i := range hits {
		for j := range hits {
			if i != j && hits[i].ConflictsWith(hits[j]) {
				conflicts[i] |= 1 << j
			}
		}
	}

	best := 0.0
	for set := uint32(0); set < 1<<len(hits); set++ {
		total := 0.0
		ok := true
		for i := range hits {
			if set&(1<<i) == 0 {
				continue
			}
			if conflicts[i]&set != 0 {
				ok = false
				break
			}
			total += hits[i].EffectiveScore
		}
		if ok && total > best {
			best = total
		}
	}
	return best
}
