package crossword

import "github.com/bodul/crossgrow/internal/grid"

// Placement is a candidate position for a word. Row and Col address the
// word's first letter in the coordinates of the grid it was found on and may
// be negative when the word sticks out above or left of that grid.
type Placement struct {
	Row       int
	Col       int
	Direction Direction
	Word      string
}

// findPlacements returns every legal placement of word crossing at least one
// existing letter. Candidates are ordered by letter index, then by grid scan
// order, vertical before horizontal for the same anchor cell.
func findPlacements(g *grid.Matrix[Cell], word []rune) []Placement {
	var out []Placement
	for i, ch := range word {
		for idx, c := range g.All() {
			if c.letter != ch || (i == 0 && c.first) {
				continue
			}
			row, col := g.RowOf(idx), g.ColOf(idx)
			for _, d := range [...]Direction{Vertical, Horizontal} {
				if p, ok := fit(g, word, i, row, col, d); ok {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// fit anchors word[i] on (row, col) along d and validates every cell the word
// would cover.
func fit(g *grid.Matrix[Cell], word []rune, i, row, col int, d Direction) (Placement, bool) {
	dr, dc := d.step()
	r0, c0 := row-i*dr, col-i*dc
	n := len(word)

	// No end-to-end contact with another word.
	if occupied(g, r0-dr, c0-dc) || occupied(g, r0+n*dr, c0+n*dc) {
		return Placement{}, false
	}

	for k, ch := range word {
		r, c := r0+k*dr, c0+k*dc
		cell, ok := g.GetIfInBounds(r, c)
		if ok {
			if cell.letter != ch {
				return Placement{}, false
			}
			// A clue cell cannot become a first letter either: the two
			// markings share the cell number.
			if k == 0 && (cell.first || cell.clue) {
				return Placement{}, false
			}
			continue
		}
		// A new letter must not touch anything from the side.
		if occupied(g, r+dc, c+dr) || occupied(g, r-dc, c-dr) {
			return Placement{}, false
		}
	}

	return Placement{Row: r0, Col: c0, Direction: d, Word: string(word)}, true
}

func occupied(g *grid.Matrix[Cell], row, col int) bool {
	_, ok := g.GetIfInBounds(row, col)
	return ok
}

// apply writes the placement into g, growing it as needed, and marks the
// first letter with number. Cells the word shares with existing words keep
// their current state.
func (p Placement) apply(g *grid.Matrix[Cell], number int) {
	letters := []rune(p.Word)
	dr, dc := p.Direction.step()

	first, ok := g.GetIfInBounds(p.Row, p.Col)
	if !ok {
		first = newCell(letters[0])
	}
	first.markFirst(number)
	sr, sc := g.GrowingSet(p.Row, p.Col, first)

	// Every later letter lies after the first one, so no further shift occurs.
	row, col := p.Row+sr, p.Col+sc
	for k := 1; k < len(letters); k++ {
		r, c := row+k*dr, col+k*dc
		if occupied(g, r, c) {
			continue
		}
		g.GrowingSet(r, c, newCell(letters[k]))
	}
}
