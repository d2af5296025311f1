package hitio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/domarch/codec"
	"github.com/hupe1980/domarch/filter"
	"github.com/hupe1980/domarch/model"
)

// TextHeader is the field line of the text output.
const TextHeader = "#FIELDS query-id match-id score boundaries resolved"

// Writer writes resolved architectures. Close flushes buffered output but
// does not close the underlying writer.
type Writer interface {
	Write(arch model.Architecture) error
	Close() error
}

// WriterOptions configures NewWriter.
type WriterOptions struct {
	// Codec encodes JSON output. Default: codec.Default.
	Codec codec.Codec
	// Counts supplies the run counts for summary output.
	Counts func() filter.Counts
	// Generator names the producing program in the text header. Optional.
	Generator string
}

// NewWriter creates a Writer for the given format.
func NewWriter(w io.Writer, format OutputFormat, opts WriterOptions) (Writer, error) {
	switch format {
	case Text:
		return NewTextWriter(w, opts.Generator), nil
	case JSON:
		return NewJSONWriter(w, opts.Codec), nil
	case Summary:
		return NewSummaryWriter(w, opts.Counts), nil
	default:
		return nil, fmt.Errorf("%w %v", ErrUnknownFormat, format)
	}
}

// TextWriter writes one row per selected hit.
type TextWriter struct {
	w         *bufio.Writer
	generator string
	started   bool
}

// NewTextWriter creates a TextWriter.
func NewTextWriter(w io.Writer, generator string) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w), generator: generator}
}

func (t *TextWriter) header() {
	if t.started {
		return
	}
	t.started = true
	if t.generator != "" {
		t.w.WriteString("# Generated by " + t.generator + "\n")
	}
	t.w.WriteString(TextHeader + "\n")
}

// Write writes the selected hits of arch in start order.
func (t *TextWriter) Write(arch model.Architecture) error {
	t.header()
	for i, h := range arch.Selected {
		t.w.WriteString(arch.QueryID)
		t.w.WriteByte(' ')
		t.w.WriteString(h.Hit.MatchID)
		t.w.WriteByte(' ')
		t.w.WriteString(FormatScore(h.Hit.RawScore))
		t.w.WriteByte(' ')
		t.w.WriteString(model.FormatSegments(h.Boundaries()))
		t.w.WriteByte(' ')
		t.w.WriteString(model.FormatSegments(arch.ResolvedBoundaries(i)))
		if err := t.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// Close writes the header if nothing was written and flushes.
func (t *TextWriter) Close() error {
	t.header()
	return t.w.Flush()
}

// FormatScore renders a score in its shortest exact form.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type jsonHit struct {
	MatchID    string  `json:"match_id"`
	Score      float64 `json:"score"`
	ScoreKind  string  `json:"score_kind"`
	Boundaries string  `json:"boundaries"`
	Resolved   string  `json:"resolved"`
	Trimmed    string  `json:"trimmed"`
}

type jsonArchitecture struct {
	QueryID    string    `json:"query_id"`
	TotalScore float64   `json:"total_score"`
	Hits       []jsonHit `json:"hits"`
}

// JSONWriter writes one JSON object per line.
type JSONWriter struct {
	w   *bufio.Writer
	enc codec.Encoder
}

// NewJSONWriter creates a JSONWriter. A nil codec uses codec.Default.
func NewJSONWriter(w io.Writer, c codec.Codec) *JSONWriter {
	if c == nil {
		c = codec.Default
	}
	bw := bufio.NewWriter(w)
	return &JSONWriter{w: bw, enc: c.NewEncoder(bw)}
}

func (j *JSONWriter) Write(arch model.Architecture) error {
	out := jsonArchitecture{
		QueryID:    arch.QueryID,
		TotalScore: arch.TotalScore,
		Hits:       make([]jsonHit, len(arch.Selected)),
	}
	for i, h := range arch.Selected {
		out.Hits[i] = jsonHit{
			MatchID:    h.Hit.MatchID,
			Score:      h.Hit.RawScore,
			ScoreKind:  h.Hit.Kind.String(),
			Boundaries: model.FormatSegments(h.Boundaries()),
			Resolved:   model.FormatSegments(arch.ResolvedBoundaries(i)),
			Trimmed:    model.FormatSegments(h.Trimmed()),
		}
	}

	if err := j.enc.Encode(out); err != nil {
		return fmt.Errorf("encode %s: %w", arch.QueryID, err)
	}
	return nil
}

func (j *JSONWriter) Close() error {
	return j.w.Flush()
}

// SummaryWriter tallies architectures and writes run counts on Close.
type SummaryWriter struct {
	w        io.Writer
	counts   func() filter.Counts
	arches   int64
	selected int64
	total    float64
}

// NewSummaryWriter creates a SummaryWriter. counts may be nil.
func NewSummaryWriter(w io.Writer, counts func() filter.Counts) *SummaryWriter {
	return &SummaryWriter{w: w, counts: counts}
}

func (s *SummaryWriter) Write(arch model.Architecture) error {
	s.arches++
	s.selected += int64(arch.Len())
	s.total += arch.TotalScore
	return nil
}

// Close writes one "name value" line per count.
func (s *SummaryWriter) Close() error {
	bw := bufio.NewWriter(s.w)
	line := func(name string, v int64) {
		fmt.Fprintf(bw, "%-24s %d\n", name, v)
	}
	line("architectures", s.arches)
	line("selected_hits", s.selected)
	fmt.Fprintf(bw, "%-24s %s\n", "total_score", FormatScore(s.total))

	if s.counts != nil {
		c := s.counts()
		line("queries", c.Queries)
		line("input_hits", c.InputHits)
		line("kept", c.Kept)
		line("dropped_invalid", c.DroppedInvalid)
		line("dropped_score", c.DroppedScore)
		line("dropped_query", c.DroppedQuery)
		line("dropped_coverage", c.DroppedCoverage)
		line("dropped_short_segments", c.DroppedShortSegments)
		line("dropped_non_positive", c.DroppedNonPositive)
		line("pruned_redundant", c.PrunedRedundant)
	}
	return bw.Flush()
}
