// Package grid provides the growable two-dimensional store the crossword
// builder places letters into.
//
// Storage is split in two layers. Buffer is a flat slice of optional values
// with no notion of rows or columns. Matrix wraps a Buffer and owns the
// row-major coordinate math: it maps (row, col) to a linear index and, when a
// write lands outside the current bounds, relayouts the buffer into larger
// dimensions.
//
// Growth may happen in any of the four directions. Writing at a negative row
// or column shifts every existing value towards the positive side, so callers
// that remembered coordinates from before the write must apply the shift
// returned by GrowingSet.
package grid
