package matrix

import (
	"github.com/matzehuels/motifscope/pkg/errors"
)

// PlaceholderID is the ordering id of a display column that stands for
// folded columns rather than a real item.
const PlaceholderID = -1

// Column is one pixel column: an item id and its row vector.
type Column struct {
	ID     int
	Scores []float64
}

// IsPlaceholder reports whether the column is a fold placeholder.
func (c Column) IsPlaceholder() bool { return c.ID == PlaceholderID }

// Matrix is an ordered, read-only sequence of columns.
type Matrix struct {
	columns []Column
	index   map[int]int
	rows    int
}

// New builds a matrix from row vectors and their item ids. A nil ordering
// assigns ids 0..n-1. The row vectors are not copied.
func New(vectors [][]float64, ordering []int) (*Matrix, error) {
	if ordering != nil && len(ordering) != len(vectors) {
		return nil, errors.New(errors.ErrCodeInvalidMatrix,
			"ordering has %d entries for %d columns", len(ordering), len(vectors))
	}
	cols := make([]Column, len(vectors))
	for i, v := range vectors {
		id := i
		if ordering != nil {
			id = ordering[i]
		}
		cols[i] = Column{ID: id, Scores: v}
	}
	m := &Matrix{columns: cols}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.buildIndex()
	return m, nil
}

func (m *Matrix) buildIndex() {
	m.index = make(map[int]int, len(m.columns))
	for i, c := range m.columns {
		if _, dup := m.index[c.ID]; !dup {
			m.index[c.ID] = i
		}
	}
	if len(m.columns) > 0 {
		m.rows = len(m.columns[0].Scores)
	}
}

// Validate checks that every column has the same row-vector length and that
// no column uses the placeholder id.
func (m *Matrix) Validate() error {
	if len(m.columns) == 0 {
		return nil
	}
	want := len(m.columns[0].Scores)
	for i, c := range m.columns {
		if len(c.Scores) != want {
			return errors.New(errors.ErrCodeInvalidMatrix,
				"column %d has %d rows, want %d", i, len(c.Scores), want)
		}
		if c.IsPlaceholder() {
			return errors.New(errors.ErrCodeInvalidMatrix,
				"column %d uses reserved id %d", i, PlaceholderID)
		}
	}
	return nil
}

// Len returns the number of columns.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.columns)
}

// Rows returns the row-vector length shared by all columns.
func (m *Matrix) Rows() int {
	if m == nil {
		return 0
	}
	return m.rows
}

// Column returns the column at position i.
func (m *Matrix) Column(i int) Column { return m.columns[i] }

// Slice returns the columns in [start, end). The returned slice aliases the
// matrix and must not be modified.
func (m *Matrix) Slice(start, end int) []Column { return m.columns[start:end:end] }

// IndexOf returns the position of the item id, if present.
func (m *Matrix) IndexOf(id int) (int, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.index[id]
	return i, ok
}

// Ordering returns the item ids in column order.
func (m *Matrix) Ordering() []int {
	ids := make([]int, m.Len())
	if m == nil {
		return ids
	}
	for i, c := range m.columns {
		ids[i] = c.ID
	}
	return ids
}
