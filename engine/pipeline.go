package engine

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/model"
	"github.com/hupe1980/domarch/resolve"
	"github.com/hupe1980/domarch/score"
	"github.com/hupe1980/domarch/trim"
)

// Config configures a Pipeline. It is read once by NewPipeline.
type Config struct {
	Trim   trim.Spec
	Filter filter.Spec
	Score  score.Spec
	Mode   resolve.Mode

	// Summary receives outcome counts. Optional.
	Summary *filter.Summary
	// Logger receives warnings. Optional; per-hit records belong to OnDrop.
	Logger *slog.Logger
	// OnDrop is called for every excluded hit. Optional; must be safe for concurrent use.
	OnDrop func(h model.Hit, reason filter.Reason)
}

// Pipeline resolves the hits of one query at a time.
type Pipeline struct {
	filter   *filter.Filter
	gate     *filter.QueryGate
	adjuster *score.Adjuster
	cath     bool
	prune    bool
	mode     resolve.Mode
	summary  *filter.Summary
	logger   *slog.Logger
	onDrop   func(model.Hit, filter.Reason)

	warnedNonPositive atomic.Bool
	warnedEmpty       atomic.Bool
}

// Result is the outcome of resolving one query.
type Result struct {
	Architecture model.Architecture
	// InputHits is the number of hits handed to the pipeline.
	InputHits int
	// Candidates is the number of hits that reached the optimizer.
	Candidates int
	// Elapsed is the time spent resolving the query.
	Elapsed time.Duration
}

// NewPipeline validates cfg and creates a Pipeline.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Trim.IsZero() {
		cfg.Trim = trim.NoTrim
	}

	f, err := filter.New(cfg.Filter, cfg.Trim)
	if err != nil {
		return nil, err
	}
	adj, err := score.NewAdjuster(cfg.Score)
	if err != nil {
		return nil, err
	}
	if cfg.Mode != resolve.Optimal && cfg.Mode != resolve.NaiveGreedy {
		return nil, fmt.Errorf("%w: %v", resolve.ErrUnknownMode, cfg.Mode)
	}

	summary := cfg.Summary
	if summary == nil {
		summary = &filter.Summary{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pipeline{
		filter:   f,
		gate:     filter.NewQueryGate(cfg.Filter),
		adjuster: adj,
		cath:     cfg.Score.ApplyCATHRules,
		prune:    cfg.Filter.PruneRedundant && cfg.Mode == resolve.Optimal,
		mode:     cfg.Mode,
		summary:  summary,
		logger:   logger,
		onDrop:   cfg.OnDrop,
	}, nil
}

// Summary returns the run's outcome counters.
func (p *Pipeline) Summary() *filter.Summary {
	return p.summary
}

// Mode returns the resolution mode.
func (p *Pipeline) Mode() resolve.Mode {
	return p.mode
}

// Admit applies the query allow-list and limit. It must be called in input
// order, once per query batch; rejected hits are counted.
func (p *Pipeline) Admit(queryID string, hits []model.Hit) bool {
	if p.gate.Admit(queryID) {
		return true
	}
	p.summary.AddInput(len(hits))
	for _, h := range hits {
		p.drop(h, filter.DroppedQuery)
	}
	return false
}

// Resolve runs every per-hit stage and the optimizer over one query's hits.
// hits must all share queryID; they are not modified.
func (p *Pipeline) Resolve(queryID string, hits []model.Hit) Result {
	start := time.Now()
	p.summary.AddInput(len(hits))
	p.summary.AddQuery()

	candidates := make([]model.ResolvedHit, 0, len(hits))
	for i, h := range hits {
		if h.Kind == model.Bitscore && h.RawScore <= 0 {
			if p.warnedNonPositive.CompareAndSwap(false, true) {
				p.logger.Warn("skipping hits with non-positive bitscores", "query", queryID, "match", h.MatchID, "bitscore", h.RawScore)
			}
			p.drop(h, filter.DroppedNonPositive)
			continue
		}
		if p.cath {
			h = score.ApplyCATHRules(h)
		}

		reason, err := p.filter.Check(h)
		if err != nil {
			p.logger.Warn("dropping invalid hit", "query", queryID, "match", h.MatchID, "error", err)
		}
		if reason != filter.Kept {
			p.drop(h, reason)
			continue
		}

		rh, reason := p.filter.Resolve(h, i)
		if reason != filter.Kept {
			if p.warnedEmpty.CompareAndSwap(false, true) {
				p.logger.Warn("dropping hits with no segments left after trimming and minimum length filtering", "query", queryID, "match", h.MatchID)
			}
			p.drop(h, reason)
			continue
		}
		candidates = append(candidates, rh)
	}

	p.adjuster.Apply(candidates)

	if p.prune {
		var pruned []model.ResolvedHit
		candidates, pruned = resolve.PruneRedundant(candidates)
		for _, h := range pruned {
			p.drop(h.Hit, filter.PrunedRedundant)
		}
	}

	for range candidates {
		p.summary.Record(filter.Kept)
	}

	return Result{
		Architecture: resolve.Resolve(p.mode, queryID, candidates),
		InputHits:    len(hits),
		Candidates:   len(candidates),
		Elapsed:      time.Since(start),
	}
}

func (p *Pipeline) drop(h model.Hit, reason filter.Reason) {
	p.summary.Record(reason)
	if p.onDrop != nil {
		p.onDrop(h, reason)
	}
}
