package abstraction

import (
	"github.com/matzehuels/motifscope/pkg/matrix"
)

const (
	// Threshold is the largest cluster size that is never folded.
	Threshold = 9
	// Keep is the number of columns shown at each end of a folded cluster,
	// and the number of placeholders between them.
	Keep = 3
	// FoldedWidth is the display width of a folded cluster.
	FoldedWidth = 3 * Keep
)

// Range is a display cluster: the half-open range it occupies in the display
// sequence and the index of the source cluster it was produced from.
type Range struct {
	Start  int
	End    int
	Source int
	Folded bool
}

// Width returns the number of display columns in the range.
func (r Range) Width() int { return r.End - r.Start }

// Sequence is the display form of a matrix.
type Sequence struct {
	Columns     []matrix.Column
	Ordering    []int
	Clusters    []Range
	SourceIndex []int
}

// Width returns the number of display columns.
func (s *Sequence) Width() int { return len(s.Columns) }

// Resolve maps a display column to its item id. Placeholders and
// out-of-range indices do not resolve.
func (s *Sequence) Resolve(i int) (int, bool) {
	if i < 0 || i >= len(s.Ordering) {
		return 0, false
	}
	id := s.Ordering[i]
	if id == matrix.PlaceholderID {
		return 0, false
	}
	return id, true
}

// IsPlaceholder reports whether display column i is a placeholder.
func (s *Sequence) IsPlaceholder(i int) bool {
	return i >= 0 && i < len(s.Ordering) && s.Ordering[i] == matrix.PlaceholderID
}

// ClusterAt returns the display cluster containing display column i.
func (s *Sequence) ClusterAt(i int) (Range, bool) {
	lo, hi := 0, len(s.Clusters)
	for lo < hi {
		mid := (lo + hi) / 2
		r := s.Clusters[mid]
		switch {
		case i < r.Start:
			hi = mid
		case i >= r.End:
			lo = mid + 1
		default:
			return r, true
		}
	}
	return Range{}, false
}

// Compute builds the display sequence. Clusters are normalized with
// [matrix.Partition] first; flags may be nil, in which case every large
// cluster is folded and nothing is recorded.
func Compute(m *matrix.Matrix, clusters []matrix.Cluster, flags *Flags) *Sequence {
	clusters = matrix.Partition(clusters, m.Len())
	seq := &Sequence{}
	for ci, c := range clusters {
		start := len(seq.Columns)
		size := c.Size()
		folded := size > Threshold && flags.fold(ci)
		if folded {
			seq.appendSource(m, c.Start, c.Start+Keep)
			for range Keep {
				seq.Columns = append(seq.Columns, matrix.Column{ID: matrix.PlaceholderID})
				seq.Ordering = append(seq.Ordering, matrix.PlaceholderID)
				seq.SourceIndex = append(seq.SourceIndex, -1)
			}
			seq.appendSource(m, c.End-Keep, c.End)
		} else {
			seq.appendSource(m, c.Start, c.End)
		}
		seq.Clusters = append(seq.Clusters, Range{
			Start:  start,
			End:    len(seq.Columns),
			Source: ci,
			Folded: folded,
		})
	}
	return seq
}

// Identity returns the verbatim sequence, used when abstraction is turned
// off for a view.
func Identity(m *matrix.Matrix, clusters []matrix.Cluster) *Sequence {
	clusters = matrix.Partition(clusters, m.Len())
	seq := &Sequence{}
	for ci, c := range clusters {
		seq.appendSource(m, c.Start, c.End)
		seq.Clusters = append(seq.Clusters, Range{Start: c.Start, End: c.End, Source: ci})
	}
	return seq
}

func (s *Sequence) appendSource(m *matrix.Matrix, start, end int) {
	s.Columns = append(s.Columns, m.Slice(start, end)...)
	for i := start; i < end; i++ {
		s.Ordering = append(s.Ordering, m.Column(i).ID)
		s.SourceIndex = append(s.SourceIndex, i)
	}
}

// Affordance marks where an unfold control is drawn: the display index of
// the middle placeholder of a folded cluster, and the source cluster it
// toggles.
type Affordance struct {
	Index  int
	Source int
}

// Affordances returns one affordance per folded cluster, in display order.
func Affordances(seq *Sequence) []Affordance {
	var out []Affordance
	n := 0
	for i, id := range seq.Ordering {
		if id != matrix.PlaceholderID {
			continue
		}
		n++
		// The second of each run of Keep placeholders.
		if n%Keep != 2 {
			continue
		}
		r, ok := seq.ClusterAt(i)
		if !ok {
			continue
		}
		out = append(out, Affordance{Index: i, Source: r.Source})
	}
	return out
}
