package main

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bodul/crossgrow/crossword"
)

// Job statuses.
const (
	StatusBuilding = "building"
	StatusReady    = "ready"
	StatusFailed   = "failed"
)

// ErrNotReady indicates the job's crossword is still being built or failed.
var ErrNotReady = errors.New("crossword not ready")

// Job is one crossword generation and the puzzle it produced. Guesses on the
// finished crossword go through the job so they are serialized.
type Job struct {
	ID        string
	Options   GenerateOptions
	CreatedAt time.Time

	mu        sync.Mutex
	status    string
	err       string
	crossword *crossword.Crossword
}

// Status returns the current job status.
func (j *Job) Status() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *Job) finish(cw *crossword.Crossword) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusReady
	j.crossword = cw
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = StatusFailed
	j.err = err.Error()
}

// GuessResult is the outcome of a single-letter guess.
type GuessResult struct {
	Correct   bool `json:"correct"`
	Guessed   int  `json:"guessed"`
	Remaining int  `json:"remaining"`
}

// Guess checks letter at (row, col) of the finished crossword.
func (j *Job) Guess(row, col int, letter rune) (GuessResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.crossword == nil {
		return GuessResult{}, ErrNotReady
	}
	ok := j.crossword.GuessLetter(row, col, letter)
	return GuessResult{
		Correct:   ok,
		Guessed:   j.crossword.GuessedLetters(),
		Remaining: j.crossword.RemainingLetters(),
	}, nil
}

// Render returns the plain-text rendering of the finished crossword.
func (j *Job) Render() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.crossword == nil {
		return "", ErrNotReady
	}
	return j.crossword.String(), nil
}

// MarshalJSON encodes the job and, once ready, its crossword.
func (j *Job) MarshalJSON() ([]byte, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return json.Marshal(struct {
		ID        string               `json:"id"`
		Status    string               `json:"status"`
		Options   GenerateOptions      `json:"options"`
		Error     string               `json:"error,omitempty"`
		CreatedAt time.Time            `json:"created_at"`
		Crossword *crossword.Crossword `json:"crossword,omitempty"`
	}{
		ID:        j.ID,
		Status:    j.status,
		Options:   j.Options,
		Error:     j.err,
		CreatedAt: j.CreatedAt,
		Crossword: j.crossword,
	})
}
