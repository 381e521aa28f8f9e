package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.ProjectID)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, GenerateOptions{Words: 10, Clue: true, MaxAttempts: 500, ClueAttempts: 200}, cfg.GenerateOptions())
}

func TestConfigFromEnvironment(t *testing.T) {
	cfg, err := parseConfig(map[string]string{
		"PORT":                    "9000",
		"GCP_PROJECT_ID":          "demo",
		"CROSSWORD_WORDLIST":      "/tmp/words.toml",
		"CROSSWORD_WORDS":         "7",
		"CROSSWORD_CLUE":          "false",
		"CROSSWORD_MAX_ATTEMPTS":  "50",
		"CROSSWORD_SEED":          "99",
		"CROSSWORD_CLUE_ATTEMPTS": "30",
	})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "demo", cfg.ProjectID)
	assert.Equal(t, "/tmp/words.toml", cfg.WordList)
	assert.Equal(t, GenerateOptions{Words: 7, Clue: false, MaxAttempts: 50, ClueAttempts: 30, Seed: 99}, cfg.GenerateOptions())
}

func TestConfigInvalidValue(t *testing.T) {
	_, err := parseConfig(map[string]string{"CROSSWORD_WORDS": "many"})
	require.Error(t, err)
}
