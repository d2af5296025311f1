package filter

import "sync/atomic"

// Summary counts filtering outcomes across a run. It is safe for concurrent use.
type Summary struct {
	input   atomic.Int64
	queries atomic.Int64
	dropped [PrunedRedundant + 1]atomic.Int64
}

// Counts is a point-in-time copy of a Summary.
type Counts struct {
	Queries              int64 `json:"queries"`
	InputHits            int64 `json:"input_hits"`
	Kept                 int64 `json:"kept"`
	DroppedInvalid       int64 `json:"dropped_invalid"`
	DroppedScore         int64 `json:"dropped_score"`
	DroppedQuery         int64 `json:"dropped_query"`
	DroppedCoverage      int64 `json:"dropped_coverage"`
	DroppedShortSegments int64 `json:"dropped_short_segments"`
	DroppedNonPositive   int64 `json:"dropped_non_positive_bitscore"`
	PrunedRedundant      int64 `json:"pruned_redundant"`
}

// AddInput counts n input hits.
func (s *Summary) AddInput(n int) {
	s.input.Add(int64(n))
}

// AddQuery counts one resolved query.
func (s *Summary) AddQuery() {
	s.queries.Add(1)
}

// Record counts one outcome. Kept outcomes are counted as such.
func (s *Summary) Record(r Reason) {
	if r < 0 || int(r) >= len(s.dropped) {
		return
	}
	s.dropped[r].Add(1)
}

// Snapshot returns the current counts.
func (s *Summary) Snapshot() Counts {
	return Counts{
		Queries:              s.queries.Load(),
		InputHits:            s.input.Load(),
		Kept:                 s.dropped[Kept].Load(),
		DroppedInvalid:       s.dropped[DroppedInvalid].Load(),
		DroppedScore:         s.dropped[DroppedScore].Load(),
		DroppedQuery:         s.dropped[DroppedQuery].Load(),
		DroppedCoverage:      s.dropped[DroppedCoverage].Load(),
		DroppedShortSegments: s.dropped[DroppedShortSegments].Load(),
		DroppedNonPositive:   s.dropped[DroppedNonPositive].Load(),
		PrunedRedundant:      s.dropped[PrunedRedundant].Load(),
	}
}

// Dropped returns the total number of hits excluded for any reason.
func (c Counts) Dropped() int64 {
	return c.DroppedInvalid + c.DroppedScore + c.DroppedQuery + c.DroppedCoverage +
		c.DroppedShortSegments + c.DroppedNonPositive + c.PrunedRedundant
}
