package grid

import (
	"fmt"
	"iter"
)

// Matrix is a row-major grid of optional values that grows on out-of-bounds
// writes. The zero value is not usable; call New.
type Matrix[T any] struct {
	rows int
	cols int
	buf  *Buffer[T]
}

// New returns an empty 0x0 matrix.
func New[T any]() *Matrix[T] {
	return &Matrix[T]{buf: NewBuffer[T](0)}
}

// Rows returns the number of rows.
func (m *Matrix[T]) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix[T]) Cols() int { return m.cols }

// Size returns rows*cols.
func (m *Matrix[T]) Size() int { return m.buf.Len() }

// IndexOf maps (row, col) to the linear row-major index.
func (m *Matrix[T]) IndexOf(row, col int) int {
	return row*m.cols + col
}

// RowOf returns the row of a linear index. It is 0 for a column-less matrix.
func (m *Matrix[T]) RowOf(index int) int {
	if m.cols == 0 {
		return 0
	}
	return index / m.cols
}

// ColOf returns the column of a linear index. It is 0 for a column-less matrix.
func (m *Matrix[T]) ColOf(index int) int {
	if m.cols == 0 {
		return 0
	}
	return index % m.cols
}

// IsLastInRow reports whether index is in the last column.
func (m *Matrix[T]) IsLastInRow(index int) bool {
	if m.cols == 0 {
		return false
	}
	return (index+1)%m.cols == 0
}

// InBounds reports whether (row, col) lies within the matrix.
func (m *Matrix[T]) InBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// Get returns the value at (row, col). The boolean is false for an empty cell.
// Coordinates outside the matrix yield ErrOutOfBounds.
func (m *Matrix[T]) Get(row, col int) (T, bool, error) {
	if !m.InBounds(row, col) {
		var zero T
		return zero, false, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, row, col, m.rows, m.cols)
	}
	v, ok := m.buf.At(m.IndexOf(row, col))
	return v, ok, nil
}

// GetIfInBounds returns the value at (row, col), treating every coordinate
// outside the matrix as empty.
func (m *Matrix[T]) GetIfInBounds(row, col int) (T, bool) {
	if !m.InBounds(row, col) {
		var zero T
		return zero, false
	}
	return m.buf.At(m.IndexOf(row, col))
}

// At returns the value at a linear index; out-of-range indexes are empty.
func (m *Matrix[T]) At(index int) (T, bool) {
	return m.buf.At(index)
}

// Set overwrites the value at (row, col) without growing.
func (m *Matrix[T]) Set(row, col int, v T) error {
	if !m.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, row, col, m.rows, m.cols)
	}
	m.buf.Set(m.IndexOf(row, col), v)
	return nil
}

// GrowingSet writes v at (row, col), growing the matrix first when the
// coordinate lies outside it. It returns the shift applied to every existing
// coordinate; the value itself ends up at (row+dr, col+dc).
func (m *Matrix[T]) GrowingSet(row, col int, v T) (dr, dc int) {
	if m.InBounds(row, col) {
		m.buf.Set(m.IndexOf(row, col), v)
		return 0, 0
	}

	dr, dc = max(0, -row), max(0, -col)
	rows := grow(m.rows, row, dr)
	cols := grow(m.cols, col, dc)

	oldCols := m.cols
	m.buf.Relayout(rows*cols, func(old int) int {
		return (old/oldCols+dr)*cols + old%oldCols + dc
	})
	m.rows, m.cols = rows, cols
	m.buf.Set(m.IndexOf(row+dr, col+dc), v)
	return dr, dc
}

// grow computes the new length of one dimension for a write at idx.
func grow(n, idx, shift int) int {
	if shift == 0 {
		return max(n, idx+1)
	}
	if n == 0 {
		return shift + 1
	}
	return n + shift
}

// Count returns the number of occupied cells.
func (m *Matrix[T]) Count() int {
	return m.buf.Count()
}

// All yields occupied cells in ascending linear index order.
func (m *Matrix[T]) All() iter.Seq2[int, T] {
	return m.buf.All()
}

// Clone returns a deep copy of the matrix. Values are copied by assignment,
// so T should not hold shared references.
func (m *Matrix[T]) Clone() *Matrix[T] {
	return &Matrix[T]{rows: m.rows, cols: m.cols, buf: m.buf.Clone()}
}
