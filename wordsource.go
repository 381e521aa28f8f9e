package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed words.toml
var defaultWordList []byte

// defaultMeaning is used when a word comes without any meaning.
const defaultMeaning = "default"

// ErrNoWords indicates a word list without a single usable entry.
var ErrNoWords = errors.New("word list is empty")

// Word is one dictionary entry offered to the builder.
type Word struct {
	Text      string   `toml:"text" json:"text"`
	Meanings  []string `toml:"meanings" json:"meanings"`
	Forbidden bool     `toml:"forbidden" json:"forbidden"`
}

// WordSource yields candidate words one at a time.
type WordSource interface {
	Next(ctx context.Context) (Word, error)
}

// SourceFunc creates a word source for one generation run. r is the run's
// random source; sources that draw randomly should use it so a seeded run is
// reproducible.
type SourceFunc func(r *rand.Rand) WordSource

// randomMeaning picks one of w's meanings. The boolean is false when w has
// none.
func randomMeaning(r *rand.Rand, w Word) (string, bool) {
	if len(w.Meanings) == 0 {
		return "", false
	}
	return w.Meanings[r.IntN(len(w.Meanings))], true
}

type wordList struct {
	Words []Word `toml:"word"`
}

// ParseWordList decodes a TOML word list made of [[word]] tables.
func ParseWordList(data []byte) ([]Word, error) {
	var list wordList
	if err := toml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse word list: %w", err)
	}
	if len(list.Words) == 0 {
		return nil, ErrNoWords
	}
	return list.Words, nil
}

// LoadWordList reads a TOML word list from path.
func LoadWordList(path string) ([]Word, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	return ParseWordList(data)
}

// ListSource draws words at random, with replacement, from a fixed list.
type ListSource struct {
	words []Word
	rand  *rand.Rand
}

// NewListSource returns a source over words. It panics on an empty list.
func NewListSource(words []Word, r *rand.Rand) *ListSource {
	if len(words) == 0 {
		panic("wordsource: empty word list")
	}
	return &ListSource{words: words, rand: r}
}

// Next returns a random word from the list.
func (s *ListSource) Next(ctx context.Context) (Word, error) {
	if err := ctx.Err(); err != nil {
		return Word{}, err
	}
	return s.words[s.rand.IntN(len(s.words))], nil
}

// ListSourceFunc returns a SourceFunc drawing from words.
func ListSourceFunc(words []Word) SourceFunc {
	return func(r *rand.Rand) WordSource {
		return NewListSource(words, r)
	}
}
