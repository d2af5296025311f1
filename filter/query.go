package filter

import "sync"

// QueryGate admits queries by allow-list or by order of first appearance.
// Call Admit in input order; the gate is safe for concurrent use.
type QueryGate struct {
	mu       sync.Mutex
	allowed  map[string]struct{}
	limit    int
	admitted map[string]struct{}
}

// NewQueryGate creates the query gate described by spec.
func NewQueryGate(spec Spec) *QueryGate {
	g := &QueryGate{
		limit:    spec.LimitQueries,
		admitted: make(map[string]struct{}),
	}
	if len(spec.QueryIDs) > 0 {
		g.allowed = make(map[string]struct{}, len(spec.QueryIDs))
		for _, id := range spec.QueryIDs {
			g.allowed[id] = struct{}{}
		}
	}
	return g
}

// Admit reports whether hits for queryID should be resolved.
func (g *QueryGate) Admit(queryID string) bool {
	if g == nil {
		return true
	}
	if g.allowed != nil {
		_, ok := g.allowed[queryID]
		return ok
	}
	if g.limit <= 0 {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.admitted[queryID]; ok {
		return true
	}
	if len(g.admitted) >= g.limit {
		return false
	}
	g.admitted[queryID] = struct{}{}
	return true
}
