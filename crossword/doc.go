// Package crossword builds crossword puzzles by placing words one at a time
// onto a grid that grows in any direction.
//
// A Builder places the first word horizontally at the origin. Every later word
// is tried against each existing letter it shares, in both orientations, and
// the candidate layout that keeps the grid most square and most dense wins.
// A word with no legal crossing is rejected and leaves the grid untouched.
//
// Once enough words are placed, InsertClue overlays a separate clue word by
// marking scattered letters that are not the start of any word.
//
//	b := crossword.NewBuilder()
//	if _, err := b.Insert("kot", "small domestic feline"); err != nil {
//	    return err
//	}
//	ok, err := b.Insert("tor", "track for trains")
//	...
//	cw := b.Build()
//	fmt.Print(cw)
//
// Cells render as {X} for a word's first letter, (X) for a clue letter and
// [X] for any other letter; empty cells are three spaces.
package crossword
