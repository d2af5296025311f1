package filter

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSpec is wrapped by every Spec validation error.
var ErrInvalidSpec = errors.New("filter: invalid spec")

const (
	// DefaultWorstEvalue is the default ceiling for e-values.
	DefaultWorstEvalue = 0.001
	// ImplicitMinHMMCoverage is the coverage fraction used when coverage filtering is enabled without a value.
	ImplicitMinHMMCoverage = 0.5
	// ImplicitMinDCHMMCoverage is the discontinuous-domain counterpart of ImplicitMinHMMCoverage.
	ImplicitMinDCHMMCoverage = 0.8
)

// Spec configures the hit filter. It is never mutated after validation.
type Spec struct {
	// WorstEvalue is the ceiling for FullEvalue hits.
	WorstEvalue float64
	// WorstBitscore is the floor for Bitscore hits.
	WorstBitscore float64
	// WorstScore is the floor for RawScore hits.
	WorstScore float64

	// QueryIDs, if non-empty, restricts resolution to these queries.
	QueryIDs []string
	// LimitQueries, if positive, admits only the first LimitQueries distinct queries.
	LimitQueries int

	// MinHMMCoverage is the minimum model coverage fraction in [0, 1].
	MinHMMCoverage float64
	// MinDCHMMCoverage is the minimum model coverage of discontinuous-domain hits.
	MinDCHMMCoverage float64

	// MinSegLength drops trimmed segments shorter than this.
	MinSegLength int

	// PruneRedundant removes hits dominated by a better hit on a subset of their residues.
	PruneRedundant bool
}

// DefaultSpec returns the default filter configuration.
func DefaultSpec() Spec {
	return Spec{
		WorstEvalue:    DefaultWorstEvalue,
		WorstBitscore:  math.Inf(-1),
		WorstScore:     math.Inf(-1),
		PruneRedundant: true,
	}
}

// Validate checks the spec for out-of-range or contradictory values.
func (s Spec) Validate() error {
	if math.IsNaN(s.WorstEvalue) || s.WorstEvalue <= 0 {
		return fmt.Errorf("%w: worst permissible evalue %v must be positive", ErrInvalidSpec, s.WorstEvalue)
	}
	if math.IsNaN(s.WorstBitscore) || math.IsInf(s.WorstBitscore, 1) {
		return fmt.Errorf("%w: worst permissible bitscore %v", ErrInvalidSpec, s.WorstBitscore)
	}
	if math.IsNaN(s.WorstScore) || math.IsInf(s.WorstScore, 1) {
		return fmt.Errorf("%w: worst permissible score %v", ErrInvalidSpec, s.WorstScore)
	}
	if len(s.QueryIDs) > 0 && s.LimitQueries > 0 {
		return fmt.Errorf("%w: cannot specify both a query allow-list and a query limit", ErrInvalidSpec)
	}
	if s.LimitQueries < 0 {
		return fmt.Errorf("%w: query limit %d must not be negative", ErrInvalidSpec, s.LimitQueries)
	}
	if err := checkFraction("min hmm coverage", s.MinHMMCoverage); err != nil {
		return err
	}
	if err := checkFraction("min dc hmm coverage", s.MinDCHMMCoverage); err != nil {
		return err
	}
	if s.MinSegLength < 0 {
		return fmt.Errorf("%w: min segment length %d must not be negative", ErrInvalidSpec, s.MinSegLength)
	}
	return nil
}

func checkFraction(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: %s %v must be in [0, 1]", ErrInvalidSpec, name, v)
	}
	return nil
}

// CoverageFromPercent converts a percentage in [0, 100] to a fraction.
func CoverageFromPercent(pct float64) (float64, error) {
	if math.IsNaN(pct) || pct < 0 || pct > 100 {
		return 0, fmt.Errorf("%w: coverage percentage %v must be in [0, 100]", ErrInvalidSpec, pct)
	}
	return pct / 100, nil
}
