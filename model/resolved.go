package model

import "sort"

// ResolvedSegment is a segment together with its post-trim boundaries.
type ResolvedSegment struct {
	Original Segment `json:"original"`
	Trimmed  Segment `json:"trimmed"`
}

// ResolvedHit is a hit whose surviving segments have been trimmed and scored.
type ResolvedHit struct {
	Hit            Hit               `json:"hit"`
	Resolved       []ResolvedSegment `json:"resolved"`
	EffectiveScore float64           `json:"-"`
	// Index is the position of the hit in its query's input order.
	Index int `json:"-"`
}

// Boundaries returns the original segments of the surviving resolved segments.
func (r ResolvedHit) Boundaries() []Segment {
	out := make([]Segment, len(r.Resolved))
	for i, rs := range r.Resolved {
		out[i] = rs.Original
	}
	return out
}

// Trimmed returns the trimmed segments used for conflict detection.
func (r ResolvedHit) Trimmed() []Segment {
	out := make([]Segment, len(r.Resolved))
	for i, rs := range r.Resolved {
		out[i] = rs.Trimmed
	}
	return out
}

// Start returns the first trimmed start.
func (r ResolvedHit) Start() int {
	return r.Resolved[0].Trimmed.Start
}

// Stop returns the last trimmed stop.
func (r ResolvedHit) Stop() int {
	return r.Resolved[len(r.Resolved)-1].Trimmed.Stop
}

// TrimmedLength returns the summed length of the trimmed segments.
func (r ResolvedHit) TrimmedLength() int {
	n := 0
	for _, rs := range r.Resolved {
		n += rs.Trimmed.Length()
	}
	return n
}

// ConflictsWith reports whether any trimmed segment of r overlaps any of o.
func (r ResolvedHit) ConflictsWith(o ResolvedHit) bool {
	for _, a := range r.Resolved {
		for _, b := range o.Resolved {
			if a.Trimmed.Overlaps(b.Trimmed) {
				return true
			}
		}
	}
	return false
}

// Architecture is the resolved, conflict-free selection for one query.
type Architecture struct {
	QueryID  string        `json:"query_id"`
	Selected []ResolvedHit `json:"selected"`
	// TotalScore is the sum of the selected hits' raw scores.
	TotalScore float64 `json:"total_score"`
}

// NewArchitecture builds an Architecture, ordering the selection by start.
func NewArchitecture(queryID string, selected []ResolvedHit) Architecture {
	sel := make([]ResolvedHit, len(selected))
	copy(sel, selected)
	sort.SliceStable(sel, func(i, j int) bool {
		if sel[i].Start() != sel[j].Start() {
			return sel[i].Start() < sel[j].Start()
		}
		return sel[i].Index < sel[j].Index
	})

	total := 0.0
	for _, h := range sel {
		total += h.Hit.RawScore
	}
	return Architecture{QueryID: queryID, Selected: sel, TotalScore: total}
}

// EffectiveTotal returns the summed effective score of the selection.
func (a Architecture) EffectiveTotal() float64 {
	total := 0.0
	for _, h := range a.Selected {
		total += h.EffectiveScore
	}
	return total
}

// Len returns the number of selected hits.
func (a Architecture) Len() int {
	return len(a.Selected)
}

// ResolvedBoundaries returns the original boundaries of the i-th selected hit
// with overlaps against the rest of the selection split at their midpoint.
// The earlier segment keeps the midpoint residue.
func (a Architecture) ResolvedBoundaries(i int) []Segment {
	segs := a.Selected[i].Boundaries()
	for j, other := range a.Selected {
		if j == i {
			continue
		}
		for _, o := range other.Boundaries() {
			for k, s := range segs {
				if !s.Overlaps(o) {
					continue
				}
				switch {
				case o.Start < s.Start && o.Stop < s.Stop:
					segs[k].Start = max(s.Start, (s.Start+o.Stop)/2+1)
				case o.Start > s.Start && o.Stop > s.Stop:
					segs[k].Stop = min(s.Stop, (o.Start+s.Stop)/2)
				}
			}
		}
	}
	return segs
}
