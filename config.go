package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the service configuration, read from environment variables.
type Config struct {
	Port         string `env:"PORT"                    envDefault:"8080"`
	ProjectID    string `env:"GCP_PROJECT_ID"`
	Region       string `env:"GCP_REGION"`
	Model        string `env:"GEMINI_MODEL"`
	BatchSize    int    `env:"GEMINI_BATCH_SIZE"       envDefault:"20"`
	WordList     string `env:"CROSSWORD_WORDLIST"`
	Words        int    `env:"CROSSWORD_WORDS"         envDefault:"10"`
	Clue         bool   `env:"CROSSWORD_CLUE"          envDefault:"true"`
	MaxAttempts  int    `env:"CROSSWORD_MAX_ATTEMPTS"  envDefault:"500"`
	ClueAttempts int    `env:"CROSSWORD_CLUE_ATTEMPTS" envDefault:"200"`
	Seed         uint64 `env:"CROSSWORD_SEED"`
}

// LoadConfig parses the process environment into a Config.
func LoadConfig() (Config, error) {
	return parseConfig(nil)
}

// parseConfig reads the configuration from environ, or from the process
// environment when environ is nil.
func parseConfig(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// GenerateOptions returns the generation defaults of the configuration.
func (c Config) GenerateOptions() GenerateOptions {
	return GenerateOptions{
		Words:        c.Words,
		Clue:         c.Clue,
		MaxAttempts:  c.MaxAttempts,
		ClueAttempts: c.ClueAttempts,
		Seed:         c.Seed,
	}
}
