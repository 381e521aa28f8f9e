package crossword

import "encoding/json"

// Direction is the orientation of a placed word.
type Direction int

const (
	Horizontal Direction = iota
	Vertical
)

// String returns "horizontal" or "vertical".
func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// step returns the (row, col) delta between consecutive letters.
func (d Direction) step() (int, int) {
	if d == Vertical {
		return 1, 0
	}
	return 0, 1
}

// Cell is one placed letter. The letter never changes once placed; the
// markings do. A cell is never both a first letter and a clue letter.
type Cell struct {
	letter  rune
	first   bool
	clue    bool
	number  int
	guessed bool
}

func newCell(letter rune) Cell {
	return Cell{letter: letter}
}

// Letter returns the uppercase letter held by the cell.
func (c Cell) Letter() rune { return c.letter }

// IsFirstLetter reports whether a word starts at this cell.
func (c Cell) IsFirstLetter() bool { return c.first }

// IsClueLetter reports whether the cell spells part of the clue word.
func (c Cell) IsClueLetter() bool { return c.clue }

// IsGuessed reports whether the letter has been guessed.
func (c Cell) IsGuessed() bool { return c.guessed }

// WordNumber returns the word number of a first-letter cell, or the 1-based
// position within the clue word of a clue-letter cell.
func (c Cell) WordNumber() (int, bool) {
	return c.number, c.first || c.clue
}

func (c *Cell) markFirst(number int) {
	c.first, c.clue = true, false
	c.number = number
}

func (c *Cell) markClue(number int) {
	c.clue = true
	c.number = number
}

func (c *Cell) clearClue() {
	if c.clue {
		c.clue = false
		c.number = 0
	}
}

type cellJSON struct {
	Letter  string `json:"letter"`
	First   bool   `json:"first,omitempty"`
	Clue    bool   `json:"clue,omitempty"`
	Number  int    `json:"number,omitempty"`
	Guessed bool   `json:"guessed,omitempty"`
}

func (c Cell) toJSON() cellJSON {
	return cellJSON{
		Letter:  string(c.letter),
		First:   c.first,
		Clue:    c.clue,
		Number:  c.number,
		Guessed: c.guessed,
	}
}

// MarshalJSON encodes the cell with its letter as a one-character string.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.toJSON())
}
