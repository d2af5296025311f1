package domarch_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/domarch"
	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/model"
)

func TestWriterLogger(t *testing.T) {
	tests := []struct {
		name   string
		format domarch.LogFormat
		want   string
	}{
		{"text", domarch.LogText, "msg=\"run completed\""},
		{"json", domarch.LogJSON, `"msg":"run completed"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := domarch.NewWriterLogger(&buf, tt.format, slog.LevelInfo).WithRunID("run-1")

			logger.LogQueryResolved(context.Background(), "q", 3, model.Architecture{QueryID: "q"}, nil)
			assert.Empty(t, buf.String())

			logger.LogRunSummary(context.Background(), filter.Counts{Queries: 1, InputHits: 3, Kept: 3}, 0, nil)
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), "run-1")
		})
	}
}

func TestEngine_LogsDroppedHits(t *testing.T) {
	var buf bytes.Buffer
	spec := filter.DefaultSpec()
	spec.WorstScore = 0
	eng := newEngine(t,
		domarch.WithLogger(domarch.NewWriterLogger(&buf, domarch.LogJSON, slog.LevelDebug)),
		domarch.WithFilter(spec),
	)

	_, _, err := eng.Resolve(context.Background(), "q1", []model.Hit{hit("q1", "weak", -1, 1, 10)})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(buf.String(), `"msg":"hit dropped"`))
	assert.Contains(t, buf.String(), `"reason":"score"`)
	assert.Contains(t, buf.String(), `"match":"weak"`)
}

func TestNoopLogger(t *testing.T) {
	logger := domarch.NoopLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
