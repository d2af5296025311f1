package hitio

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/hupe1980/domarch/model"
)

// Grouper collects consecutive hits of the same query into batches.
type Grouper struct {
	r       *Reader
	pending *model.Hit
	seen    map[string]struct{}
	done    bool
}

// NewGrouper creates a Grouper reading from r.
func NewGrouper(r *Reader) *Grouper {
	return &Grouper{r: r, seen: make(map[string]struct{})}
}

// Next returns the next query's hits, or io.EOF. It fails with
// ErrNotContiguous if a finished query reappears.
func (g *Grouper) Next() (model.Batch, error) {
	if g.done {
		return model.Batch{}, io.EOF
	}

	var b model.Batch
	if g.pending != nil {
		b = model.Batch{QueryID: g.pending.QueryID, Hits: []model.Hit{*g.pending}}
		g.pending = nil
	}

	for {
		h, err := g.r.Next()
		if errors.Is(err, io.EOF) {
			g.done = true
			if b.QueryID == "" && len(b.Hits) == 0 {
				return model.Batch{}, io.EOF
			}
			return b, nil
		}
		if err != nil {
			g.done = true
			return model.Batch{}, err
		}

		if len(b.Hits) == 0 {
			if _, dup := g.seen[h.QueryID]; dup {
				g.done = true
				return model.Batch{}, fmt.Errorf("%w: %q at line %d", ErrNotContiguous, h.QueryID, g.r.Line())
			}
			g.seen[h.QueryID] = struct{}{}
			b.QueryID = h.QueryID
		}
		if h.QueryID != b.QueryID {
			if _, dup := g.seen[h.QueryID]; dup {
				g.done = true
				return model.Batch{}, fmt.Errorf("%w: %q at line %d", ErrNotContiguous, h.QueryID, g.r.Line())
			}
			g.seen[h.QueryID] = struct{}{}
			g.pending = &h
			return b, nil
		}
		b.Hits = append(b.Hits, h)
	}
}

// All returns an iterator over the remaining batches. Iteration stops after
// the first error, which is yielded.
func (g *Grouper) All() iter.Seq2[model.Batch, error] {
	return func(yield func(model.Batch, error) bool) {
		for {
			b, err := g.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(b, err) || err != nil {
				return
			}
		}
	}
}
