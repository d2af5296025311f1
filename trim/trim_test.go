package trim

import (
	"testing"

	"github.com/hupe1980/domarch/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_GoldenValues(t *testing.T) {
	spec := MustNew(5, 3)

	wantTotal := []int{0, 0, 0, 1, 2, 3, 3, 3, 3, 3}
	wantAfter := []int{0, 1, 2, 2, 2, 2, 3, 4, 5, 6}
	wantStart := []int{0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	wantStop := []int{0, 0, 0, 1, 1, 2, 2, 2, 2, 2}

	for n := range 10 {
		assert.Equal(t, wantTotal[n], spec.TotalTrim(n), "total trim at %d", n)
		assert.Equal(t, wantAfter[n], spec.LengthAfterTrim(n), "length after trim at %d", n)
		assert.Equal(t, wantStart[n], spec.StartTrim(n), "start trim at %d", n)
		assert.Equal(t, wantStop[n], spec.StopTrim(n), "stop trim at %d", n)
	}

	start, stop, err := spec.Copy(11, 16)
	require.NoError(t, err)
	assert.Equal(t, 12, start)
	assert.Equal(t, 14, stop)
}

func TestSpec_Properties(t *testing.T) {
	for l := 1; l <= 40; l++ {
		for m := 0; m < l; m++ {
			spec := MustNew(l, m)
			prev := 0
			for n := -2; n <= 2*l+2; n++ {
				total := spec.TotalTrim(n)
				assert.LessOrEqual(t, total, m)
				assert.GreaterOrEqual(t, total, prev, "non-decreasing for %s at %d", spec, n)
				assert.Equal(t, total, spec.StartTrim(n)+spec.StopTrim(n))
				if n >= 0 {
					assert.GreaterOrEqual(t, spec.LengthAfterTrim(n), 0)
				}
				prev = total
			}
			for n := 1; n <= 2*l; n++ {
				start, stop, err := spec.Copy(100, 100+n-1)
				require.NoError(t, err)
				if spec.LengthAfterTrim(n) > 0 {
					assert.LessOrEqual(t, start, stop)
					assert.Equal(t, spec.LengthAfterTrim(n), stop-start+1)
				}
			}
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		full  int
		total int
	}{
		{"zero full length", 0, 0},
		{"negative trimming", 10, -1},
		{"trimming equals full length", 10, 10},
		{"trimming exceeds full length", 10, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.full, tt.total)
			assert.ErrorIs(t, err, ErrInvalidSpec)
		})
	}
}

func TestParse(t *testing.T) {
	spec, err := Parse("30/10")
	require.NoError(t, err)
	assert.Equal(t, 30, spec.FullLength())
	assert.Equal(t, 10, spec.TotalTrimming())
	assert.Equal(t, "30/10", spec.String())

	for _, bad := range []string{"30", "x/1", "1/y", "10/10", ""} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidSpec, bad)
	}
}

func TestSpec_TextRoundTrip(t *testing.T) {
	var spec Spec
	require.NoError(t, spec.UnmarshalText([]byte("100/60")))
	b, err := spec.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "100/60", string(b))
}

func TestCopy_Invalid(t *testing.T) {
	_, _, err := NoTrim.Copy(10, 9)
	assert.ErrorIs(t, err, ErrInvalidSegment)

	_, err = NoTrim.Segment(model.Segment{Start: 5, Stop: 4})
	assert.ErrorIs(t, err, ErrInvalidSegment)
}

func TestNoTrim(t *testing.T) {
	seg, err := NoTrim.Segment(model.Segment{Start: 10, Stop: 19})
	require.NoError(t, err)
	assert.Equal(t, model.Segment{Start: 10, Stop: 19}, seg)
}
