package score

import (
	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/model"
)

// CATHEvalueCutoff separates significant from insignificant e-values in the CATH rules.
const CATHEvalueCutoff = 0.001

// ApplyCATHRules rewrites h according to the CATH rule set.
//
//   - discontinuous-domain models use their alignment bounds instead of the envelope
//   - a bitscore whose conditional e-value is significant but whose independent
//     e-value is not is quartered
func ApplyCATHRules(h model.Hit) model.Hit {
	if len(h.AlignSegments) > 0 && filter.IsDiscontinuousDomain(h.MatchID) {
		segs := make([]model.Segment, len(h.AlignSegments))
		copy(segs, h.AlignSegments)
		h.Segments = segs
	}

	if h.Kind != model.Bitscore {
		return h
	}

	if h.CondEvalue != nil && h.IndepEvalue != nil &&
		*h.CondEvalue <= CATHEvalueCutoff && *h.IndepEvalue > CATHEvalueCutoff {
		h.RawScore /= 4
	}
	return h
}
