package crossword

// InsertClue overlays word onto letters already on the grid. Only letters
// that do not start a word are eligible; they are picked in random order so
// the clue spreads across the grid. Each matched cell is numbered with its
// 1-based position in the clue word.
//
// It returns false, leaving the grid unchanged, when the grid cannot supply
// every letter of the clue. A successful call replaces any previous clue.
func (b *Builder) InsertClue(word, definition string) (bool, error) {
	defer b.track()()

	w, err := normalize(word, definition, "definition")
	if err != nil {
		return false, err
	}
	letters := []rune(w)

	if len(letters) > b.grid.Count()-len(b.entries) {
		b.logger.Debug("clue too long", "clue", w, "letters", b.grid.Count(), "words", len(b.entries))
		return false, nil
	}

	remaining := make(map[rune]int, len(letters))
	positions := make(map[rune][]int, len(letters))
	for k, r := range letters {
		remaining[r]++
		positions[r] = append(positions[r], k+1)
	}

	var candidates []int
	for idx, c := range b.grid.All() {
		if !c.first && remaining[c.letter] > 0 {
			candidates = append(candidates, idx)
		}
	}
	b.rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	matched := make([]int, 0, len(letters))
	for _, idx := range candidates {
		c, _ := b.grid.At(idx)
		if remaining[c.letter] > 0 {
			remaining[c.letter]--
			matched = append(matched, idx)
		}
	}
	if len(matched) != len(letters) {
		b.logger.Debug("clue does not fit", "clue", w, "matched", len(matched))
		return false, nil
	}

	var previous []int
	for idx, c := range b.grid.All() {
		if c.clue {
			previous = append(previous, idx)
		}
	}
	for _, idx := range previous {
		b.update(idx, (*Cell).clearClue)
	}

	for _, idx := range matched {
		c, _ := b.grid.At(idx)
		number := positions[c.letter][0]
		positions[c.letter] = positions[c.letter][1:]
		b.update(idx, func(c *Cell) { c.markClue(number) })
	}

	b.clue = &ClueAssignment{Word: w, Definition: definition}
	b.logger.Debug("clue placed", "clue", w)
	return true, nil
}

// update rewrites the occupied cell at a linear index.
func (b *Builder) update(idx int, fn func(*Cell)) {
	c, _ := b.grid.At(idx)
	fn(&c)
	// idx comes from the grid itself, so it is always in bounds.
	_ = b.grid.Set(b.grid.RowOf(idx), b.grid.ColOf(idx), c)
}
