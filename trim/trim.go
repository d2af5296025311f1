package trim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/domarch/model"
)

var (
	// ErrInvalidSpec is returned for a spec whose total trimming is not below its full length.
	ErrInvalidSpec = errors.New("trim: invalid spec")
	// ErrInvalidSegment is returned when a segment stops before it starts.
	ErrInvalidSegment = errors.New("trim: segment stops before it starts")
)

// Spec is an immutable trimming specification.
type Spec struct {
	fullLength    int
	totalTrimming int
}

// NoTrim never trims anything.
var NoTrim = Spec{fullLength: 1, totalTrimming: 0}

// New creates a Spec. fullLength must be positive and totalTrimming must lie in [0, fullLength).
func New(fullLength, totalTrimming int) (Spec, error) {
	if fullLength <= 0 {
		return Spec{}, fmt.Errorf("%w: full length %d must be positive", ErrInvalidSpec, fullLength)
	}
	if totalTrimming < 0 || totalTrimming >= fullLength {
		return Spec{}, fmt.Errorf("%w: total trimming %d must be in [0, %d)", ErrInvalidSpec, totalTrimming, fullLength)
	}
	return Spec{fullLength: fullLength, totalTrimming: totalTrimming}, nil
}

// MustNew is like New but panics on error.
func MustNew(fullLength, totalTrimming int) Spec {
	s, err := New(fullLength, totalTrimming)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse parses the "full/total" form, e.g. "30/10".
func Parse(s string) (Spec, error) {
	full, total, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q is not of the form full/total", ErrInvalidSpec, s)
	}
	l, err := strconv.Atoi(full)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: full length %q: %w", ErrInvalidSpec, full, err)
	}
	m, err := strconv.Atoi(total)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: total trimming %q: %w", ErrInvalidSpec, total, err)
	}
	return New(l, m)
}

// FullLength returns the length at which the full trimming applies.
func (s Spec) FullLength() int { return s.fullLength }

// TotalTrimming returns the maximum total trimming.
func (s Spec) TotalTrimming() int { return s.totalTrimming }

// IsZero reports whether the spec is the zero value.
func (s Spec) IsZero() bool { return s.fullLength == 0 }

// String returns the spec in "full/total" form.
func (s Spec) String() string {
	return strconv.Itoa(s.fullLength) + "/" + strconv.Itoa(s.totalTrimming)
}

// MarshalText implements encoding.TextMarshaler.
func (s Spec) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Spec) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TotalTrim returns the total amount to trim from a segment of length n.
func (s Spec) TotalTrim(n int) int {
	switch {
	case n <= 0:
		return 0
	case n >= s.fullLength:
		return s.totalTrimming
	default:
		// n < fullLength implies fullLength >= 2 here.
		return s.totalTrimming * (n - 1) / (s.fullLength - 1)
	}
}

// LengthAfterTrim returns the length of a segment of length n after trimming.
func (s Spec) LengthAfterTrim(n int) int {
	return n - s.TotalTrim(n)
}

// StartTrim returns the amount trimmed from the start of a segment of length n.
func (s Spec) StartTrim(n int) int {
	return s.TotalTrim(n) / 2
}

// StopTrim returns the amount trimmed from the stop of a segment of length n.
func (s Spec) StopTrim(n int) int {
	total := s.TotalTrim(n)
	return total - total/2
}

// Copy returns the trimmed boundaries of the segment start-stop.
func (s Spec) Copy(start, stop int) (int, int, error) {
	if stop < start {
		return 0, 0, fmt.Errorf("%w: %d-%d", ErrInvalidSegment, start, stop)
	}
	n := stop - start + 1
	return start + s.StartTrim(n), stop - s.StopTrim(n), nil
}

// Segment returns the trimmed copy of seg.
func (s Spec) Segment(seg model.Segment) (model.Segment, error) {
	start, stop, err := s.Copy(seg.Start, seg.Stop)
	if err != nil {
		return model.Segment{}, err
	}
	return model.Segment{Start: start, Stop: stop}, nil
}
