package resolve

import (
	"sort"

	"github.com/hupe1980/domarch/conflict"
	"github.com/hupe1980/domarch/model"
)

// Greedy accepts hits in descending effective score (ties in input order)
// whenever they do not conflict with an already accepted hit.
func Greedy(hits []model.ResolvedHit) []model.ResolvedHit {
	order := make([]int, len(hits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ha, hb := hits[order[a]], hits[order[b]]
		if ha.EffectiveScore != hb.EffectiveScore {
			return ha.EffectiveScore > hb.EffectiveScore
		}
		return ha.Index < hb.Index
	})

	occupied := conflict.New()
	var selected []model.ResolvedHit
	for _, i := range order {
		segs := hits[i].Trimmed()
		if occupied.Conflicts(segs) {
			continue
		}
		occupied.Add(segs...)
		selected = append(selected, hits[i])
	}
	return selected
}
