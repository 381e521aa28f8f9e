package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"google.golang.org/genai"
)

const defaultBatchSize = 20

const wordsPrompt = `Propose %d distinct common nouns for a crossword puzzle.

Return a JSON array in the following format:
[
  {"text": "<word>", "meanings": ["<short definition>", ...], "forbidden": <true|false>},
  ...
]

Rules:
- Each word is a single word of 3 to 9 letters, without spaces, digits or hyphens.
- Give one to three short definitions per word, as a crossword clue would.
- Set "forbidden" to true for proper names, abbreviations and offensive words.
- Do not repeat any of these words: %s.
- Answer ONLY with the JSON, without comments or markdown.`

// GenerateWords asks Gemini for n crossword words with meanings. Words in
// exclude are listed in the prompt so the model does not repeat them.
func (g *GeminiClient) GenerateWords(ctx context.Context, n int, exclude []string) ([]Word, error) {
	avoid := "none"
	if len(exclude) > 0 {
		avoid = strings.Join(exclude, ", ")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: fmt.Sprintf(wordsPrompt, n, avoid)}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.9)),
			TopP:             genai.Ptr(float32(1)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	return parseWords(resp.Text())
}

// parseWords decodes the model's JSON answer and drops entries without text.
func parseWords(text string) ([]Word, error) {
	if text == "" {
		return nil, fmt.Errorf("empty gemini response")
	}

	var raw []Word
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse words JSON: %w\nraw response: %s", err, text)
	}

	words := raw[:0]
	for _, w := range raw {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" || strings.ContainsAny(w.Text, " -") {
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}

// geminiSource buffers batches of generated words for one generation run.
type geminiSource struct {
	client *GeminiClient
	batch  int
	queue  []Word
	seen   []string
}

// Next returns the next buffered word, asking Gemini for a fresh batch when
// the buffer runs dry.
func (s *geminiSource) Next(ctx context.Context) (Word, error) {
	if len(s.queue) == 0 {
		words, err := s.client.GenerateWords(ctx, s.batch, s.seen)
		if err != nil {
			return Word{}, err
		}
		s.queue = words
	}
	w := s.queue[0]
	s.queue = s.queue[1:]
	s.seen = append(s.seen, w.Text)
	return w, nil
}

// SourceFunc returns a SourceFunc backed by this client. Each run gets its
// own buffer; the random source is unused since the model picks the words.
func (g *GeminiClient) SourceFunc() SourceFunc {
	return func(*rand.Rand) WordSource {
		return &geminiSource{client: g, batch: g.batch}
	}
}
