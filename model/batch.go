package model

// Batch holds every hit of one query.
type Batch struct {
	QueryID string
	Hits    []Hit
}

// GroupByQuery splits hits into per-query batches, in order of each query's
// first appearance. Hits keep their relative order within a batch.
func GroupByQuery(hits []Hit) []Batch {
	index := make(map[string]int)
	var batches []Batch
	for _, h := range hits {
		i, ok := index[h.QueryID]
		if !ok {
			i = len(batches)
			index[h.QueryID] = i
			batches = append(batches, Batch{QueryID: h.QueryID})
		}
		batches[i].Hits = append(batches[i].Hits, h)
	}
	return batches
}
