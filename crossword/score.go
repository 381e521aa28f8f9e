package crossword

import "github.com/bodul/crossgrow/internal/grid"

const (
	aspectWeight  = 10
	densityWeight = 20
)

// score rates a layout: squarer and denser grids score higher.
//
//	aspect  = min(rows, cols) / max(rows, cols)
//	density = filled / empty
//	score   = aspect*10 + density*20
//
// A grid without empty cells divides by one instead of zero. An empty grid
// scores zero.
func score(g *grid.Matrix[Cell]) float64 {
	rows, cols := g.Rows(), g.Cols()
	if rows == 0 || cols == 0 {
		return 0
	}
	aspect := float64(min(rows, cols)) / float64(max(rows, cols))
	filled := g.Count()
	empty := max(g.Size()-filled, 1)
	density := float64(filled) / float64(empty)
	return aspect*aspectWeight + density*densityWeight
}

// best applies each candidate to its own clone of g and returns the clone
// with the strictly highest score. The first candidate wins ties. ok is false
// when no candidate scores above zero.
func best(g *grid.Matrix[Cell], candidates []Placement, number int) (winner *grid.Matrix[Cell], ok bool) {
	top := 0.0
	for _, p := range candidates {
		next := g.Clone()
		p.apply(next, number)
		if s := score(next); s > top {
			top, winner = s, next
		}
	}
	return winner, winner != nil
}
