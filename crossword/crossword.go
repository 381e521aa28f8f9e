package crossword

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/bodul/crossgrow/internal/grid"
)

// Position addresses a cell by row and column.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Crossword is a finished puzzle produced by Builder.Build. Its layout,
// words and clue are fixed; only the guessed flag of a cell can change,
// through GuessLetter. It is not safe for concurrent use.
type Crossword struct {
	grid    *grid.Matrix[Cell]
	entries []WordEntry
	clue    *ClueAssignment
	elapsed time.Duration
}

// Rows returns the number of grid rows.
func (c *Crossword) Rows() int { return c.grid.Rows() }

// Cols returns the number of grid columns.
func (c *Crossword) Cols() int { return c.grid.Cols() }

// Size returns the number of addressable cells, rows*cols.
func (c *Crossword) Size() int { return c.grid.Size() }

// CellAt returns the cell at a row-major index. The boolean is false for an
// empty cell or an index outside the grid.
func (c *Crossword) CellAt(index int) (Cell, bool) {
	return c.grid.At(index)
}

// Cell returns the cell at (row, col). The boolean is false for an empty cell
// or a coordinate outside the grid.
func (c *Crossword) Cell(row, col int) (Cell, bool) {
	return c.grid.GetIfInBounds(row, col)
}

// Words returns the number of placed words.
func (c *Crossword) Words() int { return len(c.entries) }

// Entries returns the placed words in insertion order.
func (c *Crossword) Entries() []WordEntry {
	return slices.Clone(c.entries)
}

// Descriptions returns the meanings of the placed words in insertion order.
func (c *Crossword) Descriptions() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Meaning
	}
	return out
}

// Letters returns the number of occupied cells.
func (c *Crossword) Letters() int { return c.grid.Count() }

// GuessedLetters returns the number of cells guessed so far.
func (c *Crossword) GuessedLetters() int {
	n := 0
	for _, cell := range c.grid.All() {
		if cell.guessed {
			n++
		}
	}
	return n
}

// RemainingLetters returns the number of cells not guessed yet.
func (c *Crossword) RemainingLetters() int {
	return c.Letters() - c.GuessedLetters()
}

// ClueWord returns the overlaid clue word, if any.
func (c *Crossword) ClueWord() (string, bool) {
	if c.clue == nil {
		return "", false
	}
	return c.clue.Word, true
}

// ClueDefinition returns the definition of the clue word, if any.
func (c *Crossword) ClueDefinition() (string, bool) {
	if c.clue == nil {
		return "", false
	}
	return c.clue.Definition, true
}

// ClueLetters returns the positions of the clue letters ordered by their
// number within the clue word.
func (c *Crossword) ClueLetters() []Position {
	type numbered struct {
		pos    Position
		number int
	}
	var found []numbered
	for idx, cell := range c.grid.All() {
		if cell.clue {
			found = append(found, numbered{Position{c.grid.RowOf(idx), c.grid.ColOf(idx)}, cell.number})
		}
	}
	slices.SortStableFunc(found, func(a, b numbered) int { return a.number - b.number })

	out := make([]Position, len(found))
	for i, f := range found {
		out[i] = f.pos
	}
	return out
}

// Elapsed returns the time spent inside Insert and InsertClue.
func (c *Crossword) Elapsed() time.Duration { return c.elapsed }

// GuessLetter checks letter against the cell at (row, col) and marks the cell
// guessed on a match. It reports whether the letter was right; empty or
// out-of-range cells never match.
func (c *Crossword) GuessLetter(row, col int, letter rune) bool {
	cell, ok := c.grid.GetIfInBounds(row, col)
	if !ok || unicode.ToUpper(letter) != cell.letter {
		return false
	}
	cell.guessed = true
	_ = c.grid.Set(row, col, cell)
	return true
}

// Render writes the plain-text grid to w, one line per row.
func (c *Crossword) Render(w io.Writer) error {
	_, err := io.WriteString(w, c.String())
	return err
}

// String renders the grid: {X} for a first letter, (X) for a clue letter,
// [X] for any other letter and three spaces for an empty cell.
func (c *Crossword) String() string {
	var sb strings.Builder
	for i := range c.grid.Size() {
		cell, ok := c.grid.At(i)
		switch {
		case !ok:
			sb.WriteString("   ")
		case cell.first:
			fmt.Fprintf(&sb, "{%c}", cell.letter)
		case cell.clue:
			fmt.Fprintf(&sb, "(%c)", cell.letter)
		default:
			fmt.Fprintf(&sb, "[%c]", cell.letter)
		}
		if c.grid.IsLastInRow(i) {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

type placedJSON struct {
	Index int `json:"index"`
	Row   int `json:"row"`
	Col   int `json:"col"`
	cellJSON
}

// MarshalJSON encodes the crossword with its occupied cells listed in
// row-major order.
func (c *Crossword) MarshalJSON() ([]byte, error) {
	cells := make([]placedJSON, 0, c.grid.Count())
	for idx, cell := range c.grid.All() {
		cells = append(cells, placedJSON{
			Index:    idx,
			Row:      c.grid.RowOf(idx),
			Col:      c.grid.ColOf(idx),
			cellJSON: cell.toJSON(),
		})
	}
	return json.Marshal(struct {
		Rows        int             `json:"rows"`
		Cols        int             `json:"cols"`
		Cells       []placedJSON    `json:"cells"`
		Words       []WordEntry     `json:"words"`
		Clue        *ClueAssignment `json:"clue,omitempty"`
		ClueLetters []Position      `json:"clue_letters,omitempty"`
		Letters     int             `json:"letters"`
		Guessed     int             `json:"guessed"`
		Remaining   int             `json:"remaining"`
		ElapsedMS   float64         `json:"elapsed_ms"`
	}{
		Rows:        c.Rows(),
		Cols:        c.Cols(),
		Cells:       cells,
		Words:       c.entries,
		Clue:        c.clue,
		ClueLetters: c.ClueLetters(),
		Letters:     c.Letters(),
		Guessed:     c.GuessedLetters(),
		Remaining:   c.RemainingLetters(),
		ElapsedMS:   float64(c.elapsed) / float64(time.Millisecond),
	})
}
