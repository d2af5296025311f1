package domarch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/model"
)

// Logger is a slog.Logger that knows how to report resolution events.
type Logger struct {
	*slog.Logger
}

// LogFormat selects the record layout of NewWriterLogger.
type LogFormat int

const (
	// LogText writes slog text records.
	LogText LogFormat = iota
	// LogJSON writes one JSON object per record.
	LogJSON
)

// NewLogger creates a Logger on handler, or on an info level text handler
// writing to stderr if handler is nil.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		return NewWriterLogger(os.Stderr, LogText, slog.LevelInfo)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewWriterLogger creates a Logger writing records at or above level to w.
func NewWriterLogger(w io.Writer, format LogFormat, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == LogJSON {
		return &Logger{Logger: slog.New(slog.NewJSONHandler(w, opts))}
	}
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, opts))}
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithRunID tags every record with the run identifier.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run_id", id)}
}

// LogQueryResolved logs the outcome of resolving one query.
func (l *Logger) LogQueryResolved(ctx context.Context, queryID string, hits int, arch model.Architecture, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resolve failed", "query", queryID, "hits", hits, "error", err)
		return
	}
	l.DebugContext(ctx, "query resolved",
		"query", queryID,
		"hits", hits,
		"selected", arch.Len(),
		"total_score", arch.TotalScore,
	)
}

// LogHitDropped logs a hit excluded before resolution.
func (l *Logger) LogHitDropped(ctx context.Context, h model.Hit, reason filter.Reason) {
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}
	l.DebugContext(ctx, "hit dropped", "query", h.QueryID, "match", h.MatchID, "reason", reason.String())
}

// LogRunSummary logs the counts collected over a run.
func (l *Logger) LogRunSummary(ctx context.Context, counts filter.Counts, elapsed time.Duration, err error) {
	attrs := []any{
		"queries", counts.Queries,
		"hits", counts.InputHits,
		"kept", counts.Kept,
		"dropped", counts.Dropped(),
		"elapsed", elapsed,
	}
	if err != nil {
		l.ErrorContext(ctx, "run failed", append(attrs, "error", err)...)
		return
	}
	l.InfoContext(ctx, "run completed", attrs...)
}
