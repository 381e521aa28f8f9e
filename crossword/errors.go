package crossword

import "errors"

// ErrInvalidInput is returned when a word, meaning or definition is empty.
var ErrInvalidInput = errors.New("crossword: invalid input")
