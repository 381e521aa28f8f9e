package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/bodul/crossgrow/crossword"
)

// ErrAttemptsExhausted indicates the word source did not yield enough
// placeable words within the attempt budget.
var ErrAttemptsExhausted = errors.New("generation attempts exhausted")

// Event types reported while generating.
const (
	EventWordPlaced   = "word_placed"
	EventWordRejected = "word_rejected"
	EventClueSet      = "clue_set"
	EventDone         = "done"
	EventFailed       = "failed"
	EventGuess        = "guess"
)

// Event is a progress notification of a generation run or a guess.
type Event struct {
	Type    string `json:"type"`
	Word    string `json:"word,omitempty"`
	Words   int    `json:"words"`
	Letters int    `json:"letters"`
	Error   string `json:"error,omitempty"`
}

// Observer receives progress events. It is called synchronously.
type Observer func(Event)

// defaultClueAttempts bounds the clue phase when ClueAttempts is unset.
const defaultClueAttempts = 200

// GenerateOptions controls one generation run.
type GenerateOptions struct {
	Words        int    `json:"words"`
	Clue         bool   `json:"clue"`
	MaxAttempts  int    `json:"max_attempts,omitempty"`  // 0 means unbounded
	ClueAttempts int    `json:"clue_attempts,omitempty"` // 0 means defaultClueAttempts
	Seed         uint64 `json:"seed,omitempty"`          // 0 picks a random seed
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Generate pulls words from the source until opts.Words of them are placed,
// then, when opts.Clue is set, keeps pulling until one overlays as the clue
// word. Forbidden words and entries the builder refuses as invalid are
// skipped. Each pulled word counts against opts.MaxAttempts; the clue phase
// is also capped at opts.ClueAttempts pulls on its own.
func Generate(ctx context.Context, newSource SourceFunc, opts GenerateOptions, logger *log.Logger, observe Observer) (*crossword.Crossword, error) {
	if opts.Words < 1 {
		return nil, fmt.Errorf("%w: word count must be positive", crossword.ErrInvalidInput)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if observe == nil {
		observe = func(Event) {}
	}

	r := newRand(opts.Seed)
	src := newSource(r)
	b := crossword.NewBuilder(crossword.WithRand(r), crossword.WithLogger(logger))
	attempts := 0

	next := func() (Word, string, error) {
		for {
			if opts.MaxAttempts > 0 && attempts >= opts.MaxAttempts {
				return Word{}, "", fmt.Errorf("%w: %d attempts, %d of %d words placed",
					ErrAttemptsExhausted, attempts, b.Words(), opts.Words)
			}
			attempts++
			w, err := src.Next(ctx)
			if err != nil {
				return Word{}, "", fmt.Errorf("next word: %w", err)
			}
			if w.Forbidden {
				logger.Debug("skipping forbidden word", "word", w.Text)
				continue
			}
			meaning, ok := randomMeaning(r, w)
			if !ok {
				meaning = defaultMeaning
			}
			return w, meaning, nil
		}
	}

	for b.Words() < opts.Words {
		w, meaning, err := next()
		if err != nil {
			return nil, err
		}
		ok, err := b.Insert(w.Text, meaning)
		if errors.Is(err, crossword.ErrInvalidInput) {
			logger.Debug("skipping invalid word", "word", w.Text, "err", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		evt := Event{Type: EventWordRejected, Word: w.Text, Words: b.Words(), Letters: b.Letters()}
		if ok {
			evt.Type = EventWordPlaced
		}
		observe(evt)
	}

	clueLimit := opts.ClueAttempts
	if clueLimit <= 0 {
		clueLimit = defaultClueAttempts
	}
	for tries := 0; opts.Clue; tries++ {
		if tries >= clueLimit {
			return nil, fmt.Errorf("%w: no clue fitted in %d tries", ErrAttemptsExhausted, tries)
		}
		w, definition, err := next()
		if err != nil {
			return nil, err
		}
		ok, err := b.InsertClue(w.Text, definition)
		if errors.Is(err, crossword.ErrInvalidInput) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ok {
			observe(Event{Type: EventClueSet, Word: w.Text, Words: b.Words(), Letters: b.Letters()})
			break
		}
	}

	cw := b.Build()
	logger.Info("crossword generated", "words", cw.Words(), "rows", cw.Rows(), "cols", cw.Cols(),
		"attempts", attempts, "elapsed", cw.Elapsed())
	observe(Event{Type: EventDone, Words: cw.Words(), Letters: cw.Letters()})
	return cw, nil
}
