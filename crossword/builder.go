package crossword

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bodul/crossgrow/internal/grid"
)

// WordEntry is an accepted word with the meaning shown to players.
type WordEntry struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// ClueAssignment is the clue word currently overlaid on the grid.
type ClueAssignment struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// Builder accumulates words into a growing grid. It is not safe for
// concurrent use.
type Builder struct {
	grid    *grid.Matrix[Cell]
	entries []WordEntry
	clue    *ClueAssignment

	rand    *rand.Rand
	now     func() time.Time
	elapsed time.Duration
	logger  *log.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithRand sets the random source used to scatter clue letters.
func WithRand(r *rand.Rand) Option {
	return func(b *Builder) { b.rand = r }
}

// WithClock sets the clock used to measure construction time.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithLogger sets the logger for debug records about rejected words.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns a builder with an empty grid.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		grid:   grid.New[Cell](),
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Words returns the number of accepted words.
func (b *Builder) Words() int { return len(b.entries) }

// Letters returns the number of occupied cells.
func (b *Builder) Letters() int { return b.grid.Count() }

// Insert places word on the grid. The first word always goes horizontally at
// the origin; later words must cross an existing letter. It returns false,
// leaving the builder unchanged, when no legal placement exists. An empty word
// or meaning yields ErrInvalidInput.
func (b *Builder) Insert(word, meaning string) (bool, error) {
	defer b.track()()

	w, err := normalize(word, meaning, "meaning")
	if err != nil {
		return false, err
	}
	letters := []rune(w)
	number := len(b.entries) + 1

	if b.grid.Size() == 0 {
		Placement{Direction: Horizontal, Word: w}.apply(b.grid, number)
	} else {
		candidates := findPlacements(b.grid, letters)
		next, ok := best(b.grid, candidates, number)
		if !ok {
			b.logger.Debug("word rejected", "word", w, "candidates", len(candidates))
			return false, nil
		}
		b.grid = next
	}

	b.entries = append(b.entries, WordEntry{Word: w, Meaning: meaning})
	b.logger.Debug("word placed", "word", w, "number", number, "rows", b.grid.Rows(), "cols", b.grid.Cols())
	return true, nil
}

// Build returns a snapshot of the crossword. Later inserts do not affect it.
func (b *Builder) Build() *Crossword {
	cw := &Crossword{
		grid:    b.grid.Clone(),
		entries: append([]WordEntry(nil), b.entries...),
		elapsed: b.elapsed,
	}
	if b.clue != nil {
		clue := *b.clue
		cw.clue = &clue
	}
	return cw
}

// track starts the stopwatch and returns the func that stops it.
func (b *Builder) track() func() {
	start := b.now()
	return func() {
		b.elapsed += b.now().Sub(start)
	}
}

// normalize validates a word and its companion text and returns the word in
// upper case.
func normalize(word, text, field string) (string, error) {
	w := strings.TrimSpace(word)
	if w == "" {
		return "", fmt.Errorf("%w: empty word", ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty %s for %q", ErrInvalidInput, field, w)
	}
	return strings.ToUpper(w), nil
}
