// Package conflict tracks the residues claimed by selected hits and answers
// whether a candidate's segments overlap any of them.
package conflict

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/domarch/internal/conv"
	"github.com/hupe1980/domarch/model"
)

// Index is a set of occupied residues.
//
// Membership queries go through a Roaring bitmap; the merged runs are kept
// alongside so the occupied set has a canonical, cheap-to-compare form.
// An Index is not safe for concurrent mutation.
type Index struct {
	rb   *roaring.Bitmap
	runs []model.Segment
}

// New creates an empty index.
func New() *Index {
	return &Index{rb: roaring.New()}
}

// FromSegments creates an index occupied by segs.
func FromSegments(segs ...model.Segment) *Index {
	idx := New()
	idx.Add(segs...)
	return idx
}

// Add marks every residue of segs as occupied.
func (x *Index) Add(segs ...model.Segment) {
	for _, s := range segs {
		if s.Stop < s.Start {
			continue
		}
		x.rb.AddRange(uint64(s.Start), uint64(s.Stop)+1)
		x.insertRun(s)
	}
}

func (x *Index) insertRun(s model.Segment) {
	// First run that could touch or follow s.
	i := sort.Search(len(x.runs), func(i int) bool { return x.runs[i].Stop+1 >= s.Start })
	j := i
	for j < len(x.runs) && x.runs[j].Start <= s.Stop+1 {
		s.Start = min(s.Start, x.runs[j].Start)
		s.Stop = max(s.Stop, x.runs[j].Stop)
		j++
	}
	if i == j {
		x.runs = append(x.runs, model.Segment{})
		copy(x.runs[i+1:], x.runs[i:])
		x.runs[i] = s
		return
	}
	x.runs[i] = s
	x.runs = append(x.runs[:i+1], x.runs[j:]...)
}

// Count returns how many residues of seg are occupied.
func (x *Index) Count(seg model.Segment) int {
	if seg.Stop < seg.Start || x.rb.IsEmpty() {
		return 0
	}
	n := x.rb.Rank(conv.ClampUint32(seg.Stop))
	if seg.Start > 0 {
		n -= x.rb.Rank(conv.ClampUint32(seg.Start - 1))
	}
	return int(n)
}

// Overlaps reports whether any residue of seg is occupied.
func (x *Index) Overlaps(seg model.Segment) bool {
	return x.Count(seg) > 0
}

// Conflicts reports whether any of segs overlaps an occupied residue.
func (x *Index) Conflicts(segs []model.Segment) bool {
	for _, s := range segs {
		if x.Overlaps(s) {
			return true
		}
	}
	return false
}

// Covers reports whether every residue of segs is occupied.
func (x *Index) Covers(segs []model.Segment) bool {
	for _, s := range segs {
		if x.Count(s) != s.Length() {
			return false
		}
	}
	return true
}

// Len returns the number of occupied residues.
func (x *Index) Len() int {
	n, err := conv.Uint64ToInt(x.rb.GetCardinality())
	if err != nil {
		return math.MaxInt
	}
	return n
}

// IsEmpty reports whether no residue is occupied.
func (x *Index) IsEmpty() bool {
	return len(x.runs) == 0
}

// Segments returns the occupied residues as sorted, merged runs.
func (x *Index) Segments() []model.Segment {
	out := make([]model.Segment, len(x.runs))
	copy(out, x.runs)
	return out
}

// Last returns the highest occupied run.
func (x *Index) Last() (model.Segment, bool) {
	if len(x.runs) == 0 {
		return model.Segment{}, false
	}
	return x.runs[len(x.runs)-1], true
}

// ClipTo frees every residue above pos.
func (x *Index) ClipTo(pos int) {
	if pos < 0 {
		x.rb.Clear()
		x.runs = x.runs[:0]
		return
	}
	x.rb.RemoveRange(uint64(pos)+1, uint64(math.MaxUint32)+1)
	for len(x.runs) > 0 {
		last := &x.runs[len(x.runs)-1]
		if last.Start > pos {
			x.runs = x.runs[:len(x.runs)-1]
			continue
		}
		if last.Stop > pos {
			last.Stop = pos
		}
		break
	}
}

// DropLast frees the highest occupied run.
func (x *Index) DropLast() {
	last, ok := x.Last()
	if !ok {
		return
	}
	x.rb.RemoveRange(uint64(last.Start), uint64(last.Stop)+1)
	x.runs = x.runs[:len(x.runs)-1]
}

// Clone returns a deep copy of the index.
func (x *Index) Clone() *Index {
	runs := make([]model.Segment, len(x.runs))
	copy(runs, x.runs)
	return &Index{rb: x.rb.Clone(), runs: runs}
}

// Key returns a canonical representation of the occupied set.
// Two indexes share a key iff they occupy the same residues.
func (x *Index) Key() string {
	if len(x.runs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range x.runs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(r.Start))
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(r.Stop))
	}
	return b.String()
}
