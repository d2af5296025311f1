package resolve

import (
	"sort"

	"github.com/hupe1980/domarch/conflict"
	"github.com/hupe1980/domarch/model"
)

// arch is a persistent list of chosen hits, newest first.
type arch struct {
	hit  int
	prev *arch
}

type choice struct {
	score float64
	arch  *arch
}

// scan holds best[i]: the best choice among hits stopping at or before
// stops[i] that leave every residue of mask free.
type scan struct {
	mask *conflict.Index
	best []choice
}

type solver struct {
	hits  []model.ResolvedHit
	segs  [][]model.Segment
	stops []int
	// groups[i] lists the hits stopping at stops[i].
	groups [][]int
	scans  map[string]*scan
}

// Best returns a conflict-free subset of hits with the maximal total
// effective score. Among equally scoring subsets the first one found in scan
// order wins. Hits with a non-positive effective score are never selected.
func Best(hits []model.ResolvedHit) []model.ResolvedHit {
	if len(hits) == 0 {
		return nil
	}

	s := newSolver(hits)
	empty := s.scanFor(conflict.New())
	s.extend(empty, len(s.stops)-1)

	var selected []model.ResolvedHit
	for a := empty.best[len(s.stops)-1].arch; a != nil; a = a.prev {
		selected = append(selected, s.hits[a.hit])
	}
	// Newest first; restore stop order.
	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}
	return selected
}

func newSolver(in []model.ResolvedHit) *solver {
	hits := make([]model.ResolvedHit, len(in))
	copy(hits, in)
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Stop() != b.Stop() {
			return a.Stop() < b.Stop()
		}
		if a.Start() != b.Start() {
			return a.Start() < b.Start()
		}
		return a.Index < b.Index
	})

	s := &solver{
		hits:  hits,
		segs:  make([][]model.Segment, len(hits)),
		scans: make(map[string]*scan),
	}
	for i, h := range hits {
		s.segs[i] = h.Trimmed()
		stop := h.Stop()
		if n := len(s.stops); n == 0 || s.stops[n-1] != stop {
			s.stops = append(s.stops, stop)
			s.groups = append(s.groups, nil)
		}
		s.groups[len(s.groups)-1] = append(s.groups[len(s.groups)-1], i)
	}
	return s
}

// position returns the index of the last stop at or before q, or -1.
func (s *solver) position(q int) int {
	return sort.SearchInts(s.stops, q+1) - 1
}

func (s *solver) scanFor(mask *conflict.Index) *scan {
	key := mask.Key()
	if sc, ok := s.scans[key]; ok {
		return sc
	}
	sc := &scan{mask: mask}
	s.scans[key] = sc
	return sc
}

// lookup returns the best choice among hits stopping at or before q that
// avoid mask. It takes ownership of mask.
func (s *solver) lookup(mask *conflict.Index, q int) choice {
	mask.ClipTo(q)
	// A free hit must stop before any run that reaches q.
	for {
		last, ok := mask.Last()
		if !ok || last.Stop < q {
			break
		}
		q = last.Start - 1
		mask.DropLast()
	}

	j := s.position(q)
	if j < 0 {
		return choice{}
	}
	sc := s.scanFor(mask)
	s.extend(sc, j)
	return sc.best[j]
}

// extend computes sc.best up to index j.
//
// Nested lookups always ask for positions strictly before the one being
// computed, so sc.best never grows underneath this loop.
func (s *solver) extend(sc *scan, j int) {
	for len(sc.best) <= j {
		i := len(sc.best)

		var cur choice
		if i > 0 {
			cur = sc.best[i-1]
		}

		for _, h := range s.groups[i] {
			segs := s.segs[h]
			if sc.mask.Conflicts(segs) {
				continue
			}

			last := segs[len(segs)-1]
			var prev choice
			if len(segs) == 1 {
				if k := s.position(last.Start - 1); k >= 0 {
					prev = sc.best[k]
				}
			} else {
				sub := sc.mask.Clone()
				sub.Add(segs[:len(segs)-1]...)
				prev = s.lookup(sub, last.Start-1)
			}

			if score := prev.score + s.hits[h].EffectiveScore; score > cur.score {
				cur = choice{score: score, arch: &arch{hit: h, prev: prev.arch}}
			}
		}

		sc.best = append(sc.best, cur)
	}
}
