package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/domarch/internal/conv"
)

// ErrInvalidHit is the sentinel wrapped by every HitError.
var ErrInvalidHit = errors.New("invalid hit")

// Segment is an inclusive residue range.
type Segment struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

// Length returns the number of residues covered by the segment.
func (s Segment) Length() int {
	return s.Stop - s.Start + 1
}

// Overlaps reports whether the two closed ranges intersect.
func (s Segment) Overlaps(o Segment) bool {
	return s.Start <= o.Stop && o.Start <= s.Stop
}

// Contains reports whether o lies entirely within s.
func (s Segment) Contains(o Segment) bool {
	return s.Start <= o.Start && o.Stop <= s.Stop
}

// String returns the segment in "start-stop" form.
func (s Segment) String() string {
	return strconv.Itoa(s.Start) + "-" + strconv.Itoa(s.Stop)
}

// FormatSegments renders segments as a comma separated list, e.g. "37-124,239-331".
func FormatSegments(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// SegmentsOverlap reports whether any segment of a overlaps any segment of b.
func SegmentsOverlap(a, b []Segment) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Overlaps(y) {
				return true
			}
		}
	}
	return false
}

// ScoreKind determines how a hit's raw score is interpreted.
type ScoreKind int

const (
	// FullEvalue scores are e-values: lower is better.
	FullEvalue ScoreKind = iota
	// Bitscore scores are HMMER bitscores: higher is better.
	Bitscore
	// RawScore scores are arbitrary scores: higher is better.
	RawScore
)

// String returns the canonical name of the score kind.
func (k ScoreKind) String() string {
	switch k {
	case FullEvalue:
		return "evalue"
	case Bitscore:
		return "bitscore"
	case RawScore:
		return "score"
	default:
		return fmt.Sprintf("ScoreKind(%d)", int(k))
	}
}

// ParseScoreKind parses the canonical name of a score kind.
func ParseScoreKind(s string) (ScoreKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "evalue", "full-evalue":
		return FullEvalue, nil
	case "bitscore":
		return Bitscore, nil
	case "score", "raw":
		return RawScore, nil
	default:
		return 0, fmt.Errorf("unknown score kind %q", s)
	}
}

// HMMCoords are the model coordinates reported by HMM based formats.
type HMMCoords struct {
	From   int `json:"from"`
	To     int `json:"to"`
	Length int `json:"length"`
}

// Coverage returns the fraction of the model covered by the match.
func (c HMMCoords) Coverage() float64 {
	if c.Length <= 0 {
		return 0
	}
	return float64(c.To-c.From+1) / float64(c.Length)
}

// Hit is a scored candidate domain match of a query against a reference.
type Hit struct {
	QueryID  string    `json:"query_id"`
	MatchID  string    `json:"match_id"`
	RawScore float64   `json:"score"`
	Kind     ScoreKind `json:"score_kind"`
	Segments []Segment `json:"segments"`

	// Optional format specific extras.
	HMM           *HMMCoords `json:"hmm,omitempty"`
	CondEvalue    *float64   `json:"cond_evalue,omitempty"`
	IndepEvalue   *float64   `json:"indep_evalue,omitempty"`
	AlignSegments []Segment  `json:"align_segments,omitempty"`
}

// Validate checks the input contract of a hit.
func (h Hit) Validate() error {
	if len(h.Segments) == 0 {
		return NewHitError(h, "no segments")
	}
	if math.IsNaN(h.RawScore) || math.IsInf(h.RawScore, 0) {
		return NewHitError(h, fmt.Sprintf("non-finite score %v", h.RawScore))
	}
	for i, s := range h.Segments {
		if s.Start < 0 {
			return NewHitError(h, fmt.Sprintf("segment %s has a negative start", s))
		}
		if s.Stop < s.Start {
			return NewHitError(h, fmt.Sprintf("segment %d-%d stops before it starts", s.Start, s.Stop))
		}
		if _, err := conv.IntToUint32(s.Stop); err != nil {
			return NewHitError(h, fmt.Sprintf("segment %s: %v", s, err))
		}
		if i > 0 && s.Start <= h.Segments[i-1].Stop {
			return NewHitError(h, fmt.Sprintf("segment %s is unsorted or overlaps %s", s, h.Segments[i-1]))
		}
	}
	return nil
}

// HitError describes a hit that violates the input contract.
type HitError struct {
	QueryID string
	MatchID string
	Reason  string
}

// NewHitError creates a HitError identifying h.
func NewHitError(h Hit, reason string) *HitError {
	return &HitError{QueryID: h.QueryID, MatchID: h.MatchID, Reason: reason}
}

func (e *HitError) Error() string {
	return fmt.Sprintf("invalid hit %s/%s: %s", e.QueryID, e.MatchID, e.Reason)
}

// Unwrap returns ErrInvalidHit.
func (e *HitError) Unwrap() error {
	return ErrInvalidHit
}
