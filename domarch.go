package domarch

import (
	"context"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/domarch/engine"
	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/model"
	"github.com/hupe1980/domarch/resolve"
	"github.com/hupe1980/domarch/resource"
)

// approxHitBytes is the memory reserved per buffered hit while streaming.
const approxHitBytes = 256

// Batch holds every hit of one query.
type Batch = model.Batch

// GroupByQuery splits ungrouped hits into per-query batches in order of first appearance.
func GroupByQuery(hits []model.Hit) []Batch {
	return model.GroupByQuery(hits)
}

// Engine resolves domain architectures. It is safe for concurrent use,
// but query limits count queries in the order they reach the Engine.
type Engine struct {
	runID    string
	pipeline *engine.Pipeline
	pool     *engine.Pool
	rc       *resource.Controller
	logger   *Logger
	metrics  MetricsCollector
	started  time.Time
	closed   atomic.Bool
}

// New validates the options and creates an Engine.
//
// Configuration problems are reported as *ConfigError, matching ErrInvalidConfig.
func New(optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)

	if err := o.filter.Validate(); err != nil {
		return nil, translateError("filter", err)
	}
	if err := o.score.Validate(); err != nil {
		return nil, translateError("score", err)
	}
	if o.mode != resolve.Optimal && o.mode != resolve.NaiveGreedy {
		return nil, &ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %v", o.mode), cause: resolve.ErrUnknownMode}
	}
	if o.queriesPerSecond < 0 {
		return nil, &ConfigError{Field: "queries_per_second", Reason: "must not be negative"}
	}

	runID := uuid.NewString()
	logger := o.logger.WithRunID(runID)
	metrics := o.metricsCollector

	pipeline, err := engine.NewPipeline(engine.Config{
		Trim:   o.trim,
		Filter: o.filter,
		Score:  o.score,
		Mode:   o.mode,
		Logger: logger.Logger,
		OnDrop: func(h model.Hit, reason filter.Reason) {
			metrics.RecordHitDropped(reason)
			logger.LogHitDropped(context.Background(), h, reason)
		},
	})
	if err != nil {
		return nil, translateError("pipeline", err)
	}

	pool := engine.NewPool(pipeline, o.workers)

	rc := o.controller
	if rc == nil {
		rc = resource.NewController(resource.Config{
			MaxInFlightQueries: int64(4 * pool.Workers()),
			QueriesPerSecond:   o.queriesPerSecond,
		})
	}

	logger.Debug("engine created",
		"mode", o.mode.String(),
		"trim", o.trim.String(),
		"workers", pool.Workers(),
	)

	return &Engine{
		runID:    runID,
		pipeline: pipeline,
		pool:     pool,
		rc:       rc,
		logger:   logger,
		metrics:  metrics,
		started:  time.Now(),
	}, nil
}

// RunID returns the identifier attached to this engine's log records.
func (e *Engine) RunID() string {
	return e.runID
}

// Mode returns the resolution mode.
func (e *Engine) Mode() resolve.Mode {
	return e.pipeline.Mode()
}

// Summary returns the outcome counts accumulated so far.
func (e *Engine) Summary() filter.Counts {
	return e.pipeline.Summary().Snapshot()
}

// Resolve resolves one query's hits. Every hit must carry queryID.
//
// A query excluded by the filter's allow-list or limit yields an empty
// architecture and ok == false.
func (e *Engine) Resolve(ctx context.Context, queryID string, hits []model.Hit) (arch model.Architecture, ok bool, err error) {
	if e.closed.Load() {
		return model.Architecture{}, false, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return model.Architecture{}, false, err
	}
	b := Batch{QueryID: queryID, Hits: hits}
	if err := checkBatch(b); err != nil {
		return model.Architecture{}, false, err
	}
	if !e.pipeline.Admit(queryID, hits) {
		return model.Architecture{QueryID: queryID}, false, nil
	}
	if err := e.rc.WaitQuery(ctx); err != nil {
		return model.Architecture{}, false, err
	}
	return e.resolveAdmitted(ctx, b), true, nil
}

// ResolveBatch resolves whole query batches in parallel.
//
// Results are returned in input order, skipping queries excluded by the
// filter's allow-list or limit. Cancelling ctx stops scheduling new queries.
func (e *Engine) ResolveBatch(ctx context.Context, batches []Batch) ([]model.Architecture, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()

	for _, b := range batches {
		if err := checkBatch(b); err != nil {
			return nil, err
		}
	}

	admitted := make([]int, 0, len(batches))
	for i, b := range batches {
		if e.pipeline.Admit(b.QueryID, b.Hits) {
			admitted = append(admitted, i)
		}
	}

	results := make([]model.Architecture, len(admitted))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.pool.Workers())

	for k, i := range admitted {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := e.rc.WaitQuery(gctx); err != nil {
				return err
			}
			results[k] = e.resolveAdmitted(gctx, batches[i])
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	e.finishRun(ctx, len(admitted), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

type pendingResult struct {
	ch  <-chan engine.Result
	res *resource.Reservation
}

// ResolveStream resolves a hit stream grouped by query and calls emit with
// each architecture in input order.
//
// Only a bounded number of queries is buffered at once. The stream fails with
// ErrNotGrouped if a query reappears after another query started. An error
// from hits or emit stops the run and is returned. Queries excluded by the
// filter's allow-list or limit are not emitted.
func (e *Engine) ResolveStream(ctx context.Context, hits iter.Seq2[model.Hit, error], emit func(model.Architecture) error) error {
	if e.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	var queries atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	pending := make(chan pendingResult, 2*e.pool.Workers())

	g.Go(func() error {
		for p := range pending {
			var res engine.Result
			select {
			case res = <-p.ch:
			case <-gctx.Done():
				<-p.ch
				p.res.Release()
				return gctx.Err()
			}
			p.res.Release()
			e.observe(gctx, res)
			if err := emit(res.Architecture); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(pending)

		submit := func(b Batch) error {
			if !e.pipeline.Admit(b.QueryID, b.Hits) {
				return nil
			}
			if err := e.rc.WaitQuery(gctx); err != nil {
				return err
			}
			res, err := e.rc.ReserveQuery(gctx, int64(len(b.Hits))*approxHitBytes)
			if err != nil {
				return err
			}

			ch, err := e.pool.Submit(gctx, b.QueryID, b.Hits)
			if err != nil {
				res.Release()
				return err
			}
			queries.Add(1)

			select {
			case pending <- pendingResult{ch: ch, res: res}:
				return nil
			case <-gctx.Done():
				res.Release()
				return gctx.Err()
			}
		}

		seen := make(map[string]struct{})
		var cur Batch
		started := false
		for h, err := range hits {
			if err != nil {
				return err
			}
			if !started || h.QueryID != cur.QueryID {
				if started {
					if err := submit(cur); err != nil {
						return err
					}
				}
				if _, dup := seen[h.QueryID]; dup {
					return fmt.Errorf("%w: query %q reappears", ErrNotGrouped, h.QueryID)
				}
				seen[h.QueryID] = struct{}{}
				cur = Batch{QueryID: h.QueryID}
				started = true
			}
			cur.Hits = append(cur.Hits, h)
			if err := gctx.Err(); err != nil {
				return err
			}
		}
		if started {
			return submit(cur)
		}
		return nil
	})

	err := g.Wait()
	// Results left unread after a failure still hold reservations.
	for p := range pending {
		<-p.ch
		p.res.Release()
	}
	e.finishRun(ctx, int(queries.Load()), time.Since(start), err)
	return err
}

// Close stops the worker pool. It is idempotent; queued queries finish first.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.pool.Close()
	e.logger.LogRunSummary(context.Background(), e.Summary(), time.Since(e.started), nil)
	return nil
}

func (e *Engine) resolveAdmitted(ctx context.Context, b Batch) model.Architecture {
	res := e.pipeline.Resolve(b.QueryID, b.Hits)
	e.observe(ctx, res)
	return res.Architecture
}

func (e *Engine) observe(ctx context.Context, res engine.Result) {
	id := res.Architecture.QueryID
	e.metrics.RecordResolve(id, res.InputHits, res.Architecture.Len(), res.Elapsed, nil)
	e.logger.LogQueryResolved(ctx, id, res.InputHits, res.Architecture, nil)
}

func (e *Engine) finishRun(ctx context.Context, queries int, elapsed time.Duration, err error) {
	e.metrics.RecordRun(queries, elapsed, err)
	if err != nil {
		e.logger.ErrorContext(ctx, "run failed", "queries", queries, "elapsed", elapsed, "error", err)
		return
	}
	e.logger.DebugContext(ctx, "run completed", "queries", queries, "elapsed", elapsed)
}

func checkBatch(b Batch) error {
	for _, h := range b.Hits {
		if h.QueryID != b.QueryID {
			return fmt.Errorf("%w: hit %q for query %q in batch for %q", ErrNotGrouped, h.MatchID, h.QueryID, b.QueryID)
		}
	}
	return nil
}
