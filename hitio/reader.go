package hitio

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/hupe1980/domarch/model"
)

const maxLineBytes = 1 << 20

// domtblout columns.
const (
	dtTarget    = 0
	dtQuery     = 3
	dtQueryLen  = 5
	dtCondEval  = 11
	dtIndepEval = 12
	dtScore     = 13
	dtHMMFrom   = 15
	dtHMMTo     = 16
	dtAliFrom   = 17
	dtAliTo     = 18
	dtEnvFrom   = 19
	dtEnvTo     = 20
	dtMinFields = 21
)

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithScoreKind overrides the score kind of raw_with_scores hits, e.g. to
// model.Bitscore. Other formats ignore it.
func WithScoreKind(k model.ScoreKind) ReaderOption {
	return func(r *Reader) {
		if r.format == RawWithScores {
			r.kind = k
		}
	}
}

// Reader streams hits from a hit file.
type Reader struct {
	sc     *bufio.Scanner
	format InputFormat
	kind   model.ScoreKind
	line   int
	err    error
}

// NewReader creates a Reader for the given format.
func NewReader(r io.Reader, format InputFormat, opts ...ReaderOption) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	rd := &Reader{sc: sc, format: format, kind: format.DefaultKind()}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next hit, or io.EOF when the input is exhausted.
// A malformed line yields a *ParseError; reading may continue after it.
func (r *Reader) Next() (model.Hit, error) {
	if r.err != nil {
		return model.Hit{}, r.err
	}
	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if r.format == Domtblout {
			return r.parseDomtbl(line)
		}
		return r.parseRaw(line)
	}
	if err := r.sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			r.err = &ParseError{Line: r.line + 1, Reason: "line too long", cause: err}
		} else {
			r.err = err
		}
		return model.Hit{}, r.err
	}
	r.err = io.EOF
	return model.Hit{}, io.EOF
}

// All returns an iterator over the remaining hits. Iteration stops after the
// first error, which is yielded.
func (r *Reader) All() iter.Seq2[model.Hit, error] {
	return func(yield func(model.Hit, error) bool) {
		for {
			h, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(h, err) || err != nil {
				return
			}
		}
	}
}

// ReadAll reads every remaining hit.
func (r *Reader) ReadAll() ([]model.Hit, error) {
	var hits []model.Hit
	for h, err := range r.All() {
		if err != nil {
			return hits, err
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func (r *Reader) malformed(reason string, cause error) error {
	return &ParseError{Line: r.line, Reason: reason, cause: cause}
}

func (r *Reader) parseRaw(line string) (model.Hit, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return model.Hit{}, r.malformed("expected 4 fields, got "+strconv.Itoa(len(fields)), nil)
	}
	score, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return model.Hit{}, r.malformed("bad score "+strconv.Quote(fields[2]), err)
	}
	segs, err := ParseSegments(fields[3])
	if err != nil {
		return model.Hit{}, r.malformed("bad segments", err)
	}
	return model.Hit{
		QueryID:  fields[0],
		MatchID:  fields[1],
		RawScore: score,
		Kind:     r.kind,
		Segments: segs,
	}, nil
}

func (r *Reader) parseDomtbl(line string) (model.Hit, error) {
	fields := strings.Fields(line)
	if len(fields) < dtMinFields {
		return model.Hit{}, r.malformed("expected at least "+strconv.Itoa(dtMinFields)+" fields, got "+strconv.Itoa(len(fields)), nil)
	}

	var (
		ints = map[int]int{}
		flts = map[int]float64{}
	)
	for _, i := range []int{dtQueryLen, dtHMMFrom, dtHMMTo, dtAliFrom, dtAliTo, dtEnvFrom, dtEnvTo} {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return model.Hit{}, r.malformed("bad integer in column "+strconv.Itoa(i+1), err)
		}
		ints[i] = v
	}
	for _, i := range []int{dtCondEval, dtIndepEval, dtScore} {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return model.Hit{}, r.malformed("bad number in column "+strconv.Itoa(i+1), err)
		}
		flts[i] = v
	}

	cond, indep := flts[dtCondEval], flts[dtIndepEval]
	return model.Hit{
		QueryID:       fields[dtTarget],
		MatchID:       fields[dtQuery],
		RawScore:      flts[dtScore],
		Kind:          model.Bitscore,
		Segments:      []model.Segment{{Start: ints[dtEnvFrom], Stop: ints[dtEnvTo]}},
		HMM:           &model.HMMCoords{From: ints[dtHMMFrom], To: ints[dtHMMTo], Length: ints[dtQueryLen]},
		CondEvalue:    &cond,
		IndepEvalue:   &indep,
		AlignSegments: []model.Segment{{Start: ints[dtAliFrom], Stop: ints[dtAliTo]}},
	}, nil
}

// ParseSegments parses comma separated "start-stop" ranges.
func ParseSegments(s string) ([]model.Segment, error) {
	if s == "" {
		return nil, errors.New("empty segment list")
	}
	parts := strings.Split(s, ",")
	segs := make([]model.Segment, 0, len(parts))
	for _, p := range parts {
		a, b, ok := strings.Cut(p, "-")
		if !ok {
			return nil, errors.New("segment " + strconv.Quote(p) + " is not start-stop")
		}
		start, err := strconv.Atoi(a)
		if err != nil {
			return nil, err
		}
		stop, err := strconv.Atoi(b)
		if err != nil {
			return nil, err
		}
		segs = append(segs, model.Segment{Start: start, Stop: stop})
	}
	return segs, nil
}
