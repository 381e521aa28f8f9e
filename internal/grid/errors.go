package grid

import "errors"

// ErrOutOfBounds indicates a bounds-checked access outside [0,rows) x [0,cols).
var ErrOutOfBounds = errors.New("grid: index out of bounds")
