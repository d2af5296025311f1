package engine

import (
	"context"
	"runtime"
	"sync"

	"github.com/hupe1980/domarch/model"
)

// Pool resolves queries through a Pipeline on a fixed set of goroutines.
// Inputs with millions of queries never spawn a goroutine per query.
type Pool struct {
	pipeline *Pipeline
	workers  int
	jobs     chan job

	mu     sync.RWMutex // guards closed and sends on jobs
	closed bool
	wg     sync.WaitGroup
}

type job struct {
	queryID string
	hits    []model.Hit
	out     chan<- Result
}

// NewPool starts workers goroutines. Resolution is CPU bound, so
// workers <= 0 means runtime.GOMAXPROCS(0).
func NewPool(p *Pipeline, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pl := &Pool{
		pipeline: p,
		workers:  workers,
		jobs:     make(chan job, 2*workers),
	}
	pl.wg.Add(workers)
	for range workers {
		go pl.run()
	}
	return pl
}

// Workers returns the number of worker goroutines.
func (pl *Pool) Workers() int {
	return pl.workers
}

func (pl *Pool) run() {
	defer pl.wg.Done()
	for j := range pl.jobs {
		j.out <- pl.pipeline.Resolve(j.queryID, j.hits)
	}
}

// Submit queues one query, blocking while the queue is full. The returned
// channel receives exactly one Result.
//
// It returns ErrPoolClosed after Close, or ctx.Err() if ctx ends first.
func (pl *Pool) Submit(ctx context.Context, queryID string, hits []model.Hit) (<-chan Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pl.mu.RLock()
	defer pl.mu.RUnlock()
	if pl.closed {
		return nil, ErrPoolClosed
	}

	out := make(chan Result, 1)
	select {
	case pl.jobs <- job{queryID: queryID, hits: hits, out: out}:
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close finishes queued queries and stops the workers. It is idempotent.
func (pl *Pool) Close() {
	pl.mu.Lock()
	if pl.closed {
		pl.mu.Unlock()
		return
	}
	pl.closed = true
	close(pl.jobs)
	pl.mu.Unlock()

	pl.wg.Wait()
}
