package resolve

import (
	"sort"

	"github.com/hupe1980/domarch/model"
)

// PruneRedundant removes every hit that another hit makes redundant and
// returns the survivors in input order along with the removed hits.
//
// Hit a makes hit b redundant when a's trimmed residues are a subset of b's
// and a scores at least as well: any architecture using b could use a
// instead. Identical residues with identical scores keep the hit with the
// smaller match id, then the smaller index. Pruning never lowers the optimal
// total.
func PruneRedundant(hits []model.ResolvedHit) (kept, pruned []model.ResolvedHit) {
	if len(hits) < 2 {
		return hits, nil
	}

	segs := make([][]model.Segment, len(hits))
	lengths := make([]int, len(hits))
	order := make([]int, len(hits))
	for i, h := range hits {
		segs[i] = h.Trimmed()
		lengths[i] = h.TrimmedLength()
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return hits[order[a]].Start() < hits[order[b]].Start()
	})

	redundant := make([]bool, len(hits))
	for _, b := range order {
		hb := hits[b]
		lo := sort.Search(len(order), func(k int) bool { return hits[order[k]].Start() >= hb.Start() })
		for k := lo; k < len(order) && hits[order[k]].Start() <= hb.Stop(); k++ {
			a := order[k]
			if a == b || !within(segs[a], segs[b]) {
				continue
			}
			if dominates(hits[a], hits[b], lengths[a] < lengths[b]) {
				redundant[b] = true
				break
			}
		}
	}

	for i, h := range hits {
		if redundant[i] {
			pruned = append(pruned, h)
		} else {
			kept = append(kept, h)
		}
	}
	return kept, pruned
}

// dominates reports whether a, whose residues lie within b's, is the better choice.
func dominates(a, b model.ResolvedHit, strictlyShorter bool) bool {
	switch {
	case a.EffectiveScore > b.EffectiveScore:
		return true
	case a.EffectiveScore < b.EffectiveScore:
		return false
	case strictlyShorter:
		return true
	case a.Hit.MatchID != b.Hit.MatchID:
		return a.Hit.MatchID < b.Hit.MatchID
	default:
		return a.Index < b.Index
	}
}

// within reports whether every residue of a lies in b. Both must be sorted.
func within(a, b []model.Segment) bool {
	j := 0
	for _, s := range a {
		for j < len(b) && b[j].Stop < s.Start {
			j++
		}
		if j == len(b) || !b[j].Contains(s) {
			return false
		}
	}
	return true
}
