// Package score turns a hit's raw score into the effective score used to
// select an architecture.
//
// The raw score is first mapped onto a higher-is-better base scale, then
// biased by two bounded preference dials. Reported totals always use the raw
// score; the effective score only decides the selection.
package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/domarch/model"
)

// ErrInvalidSpec is wrapped by every Spec validation error.
var ErrInvalidSpec = errors.New("score: invalid spec")

// MaxPreference bounds both preference dials.
const MaxPreference = 100.0

// Spec configures the score adjuster.
type Spec struct {
	// LongDomainsPreference in [-100, 100] favours (or, if negative, penalises) longer hits.
	LongDomainsPreference float64
	// HighScoresPreference in [-100, 100] stretches (or, if negative, compresses) the score scale.
	HighScoresPreference float64
	// ApplyCATHRules enables the CATH rule set for discontinuous-domain models.
	ApplyCATHRules bool
}

// Validate checks that both dials lie within their bounds.
func (s Spec) Validate() error {
	if err := checkPreference("long domains preference", s.LongDomainsPreference); err != nil {
		return err
	}
	return checkPreference("high scores preference", s.HighScoresPreference)
}

func checkPreference(name string, v float64) error {
	if math.IsNaN(v) || v < -MaxPreference || v > MaxPreference {
		return fmt.Errorf("%w: %s %v must be in [%v, %v]", ErrInvalidSpec, name, v, -MaxPreference, MaxPreference)
	}
	return nil
}

// Adjuster computes effective scores. It is safe for concurrent use.
type Adjuster struct {
	lenExp   float64
	scoreExp float64
}

// NewAdjuster creates an Adjuster from a validated spec.
func NewAdjuster(spec Spec) (*Adjuster, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Adjuster{
		lenExp:   spec.LongDomainsPreference / MaxPreference,
		scoreExp: spec.HighScoresPreference / MaxPreference,
	}, nil
}

// Base maps a raw score onto a higher-is-better scale.
func Base(kind model.ScoreKind, raw float64) float64 {
	if kind == model.FullEvalue {
		return -math.Log10(math.Max(raw, math.SmallestNonzeroFloat64))
	}
	return raw
}

// Effective returns the effective score of a hit with the given raw score and
// total trimmed length.
//
// For a positive base score s and length L it is s * (1+L)^(p_len/100) * (1+s)^(p_score/100).
// Non-positive base scores are never biased.
func (a *Adjuster) Effective(kind model.ScoreKind, raw float64, length int) float64 {
	base := Base(kind, raw)
	if base <= 0 {
		return base
	}
	s := base
	if a.lenExp != 0 {
		s *= math.Pow(1+float64(max(length, 0)), a.lenExp)
	}
	if a.scoreExp != 0 {
		s *= math.Pow(1+base, a.scoreExp)
	}
	return s
}

// Apply sets the effective score of every hit in place.
func (a *Adjuster) Apply(hits []model.ResolvedHit) {
	for i := range hits {
		h := &hits[i]
		h.EffectiveScore = a.Effective(h.Hit.Kind, h.Hit.RawScore, h.TrimmedLength())
	}
}
