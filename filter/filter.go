package filter

import (
	"regexp"

	"github.com/hupe1980/domarch/model"
	"github.com/hupe1980/domarch/trim"
)

// Reason classifies the outcome of filtering one hit.
type Reason int

const (
	// Kept means the hit survived filtering.
	Kept Reason = iota
	// DroppedInvalid means the hit violated the input contract.
	DroppedInvalid
	// DroppedScore means the score was worse than the permissible threshold.
	DroppedScore
	// DroppedQuery means the query was excluded by the allow-list or limit.
	DroppedQuery
	// DroppedCoverage means the hit covered too little of its model.
	DroppedCoverage
	// DroppedShortSegments means no segment survived trimming and the length filter.
	DroppedShortSegments
	// DroppedNonPositive means the hit's bitscore was zero or negative.
	DroppedNonPositive
	// PrunedRedundant means a better hit made this one redundant.
	PrunedRedundant
)

var reasonNames = [...]string{
	Kept:                 "kept",
	DroppedInvalid:       "invalid",
	DroppedScore:         "score",
	DroppedQuery:         "query",
	DroppedCoverage:      "coverage",
	DroppedShortSegments: "short_segments",
	DroppedNonPositive:   "non_positive_bitscore",
	PrunedRedundant:      "redundant",
}

func (r Reason) String() string {
	if r >= 0 && int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// Reasons lists every drop reason.
func Reasons() []Reason {
	return []Reason{DroppedInvalid, DroppedScore, DroppedQuery, DroppedCoverage, DroppedShortSegments, DroppedNonPositive, PrunedRedundant}
}

var dcMatchID = regexp.MustCompile(`^dc_\w{32}$`)

// IsDiscontinuousDomain reports whether matchID names a discontinuous-domain model.
func IsDiscontinuousDomain(matchID string) bool {
	return dcMatchID.MatchString(matchID)
}

// Filter applies the per-hit rules of a Spec. It is safe for concurrent use.
type Filter struct {
	spec Spec
	trim trim.Spec
}

// New creates a filter. The spec is validated first.
func New(spec Spec, ts trim.Spec) (*Filter, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if ts.IsZero() {
		ts = trim.NoTrim
	}
	return &Filter{spec: spec, trim: ts}, nil
}

// Spec returns the filter configuration.
func (f *Filter) Spec() Spec {
	return f.spec
}

// Check applies the score and coverage rules to h.
// Contract violations are reported with their error.
func (f *Filter) Check(h model.Hit) (Reason, error) {
	if err := h.Validate(); err != nil {
		return DroppedInvalid, err
	}
	if !f.scoreOK(h) {
		return DroppedScore, nil
	}
	if !f.coverageOK(h) {
		return DroppedCoverage, nil
	}
	return Kept, nil
}

func (f *Filter) scoreOK(h model.Hit) bool {
	switch h.Kind {
	case model.FullEvalue:
		return h.RawScore <= f.spec.WorstEvalue
	case model.Bitscore:
		return h.RawScore >= f.spec.WorstBitscore
	default:
		return h.RawScore >= f.spec.WorstScore
	}
}

func (f *Filter) coverageOK(h model.Hit) bool {
	if h.HMM == nil {
		return true
	}
	minCov := f.spec.MinHMMCoverage
	if IsDiscontinuousDomain(h.MatchID) {
		minCov = f.spec.MinDCHMMCoverage
	}
	return minCov <= 0 || h.HMM.Coverage() >= minCov
}

// Resolve trims h's segments and drops those shorter than the minimum segment length.
// h must have passed Check. index is the hit's position in its query's input.
func (f *Filter) Resolve(h model.Hit, index int) (model.ResolvedHit, Reason) {
	resolved := make([]model.ResolvedSegment, 0, len(h.Segments))
	for _, s := range h.Segments {
		if f.trim.LengthAfterTrim(s.Length()) <= 0 {
			continue
		}
		t, err := f.trim.Segment(s)
		if err != nil {
			continue
		}
		if t.Length() < f.spec.MinSegLength {
			continue
		}
		resolved = append(resolved, model.ResolvedSegment{Original: s, Trimmed: t})
	}
	if len(resolved) == 0 {
		return model.ResolvedHit{}, DroppedShortSegments
	}
	return model.ResolvedHit{
		Hit:            h,
		Resolved:       resolved,
		EffectiveScore: h.RawScore,
		Index:          index,
	}, Kept
}
