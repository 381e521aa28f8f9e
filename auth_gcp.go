package main

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Vertex AI location and model used when the configuration leaves them empty.
const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

// GeminiSettings selects the Vertex AI project and model that propose words.
type GeminiSettings struct {
	ProjectID string
	Region    string
	Model     string
	BatchSize int
}

// Gemini returns the word-generation settings of the configuration.
func (c Config) Gemini() GeminiSettings {
	return GeminiSettings{
		ProjectID: c.ProjectID,
		Region:    c.Region,
		Model:     c.Model,
		BatchSize: c.BatchSize,
	}
}

// GeminiClient asks a Gemini model for crossword words.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	batch     int
}

// NewGeminiClient connects to Vertex AI with Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS points at the service account key).
func NewGeminiClient(ctx context.Context, s GeminiSettings) (*GeminiClient, error) {
	if s.ProjectID == "" {
		return nil, errors.New("gemini: missing GCP project")
	}
	if s.Region == "" {
		s.Region = defaultRegion
	}
	if s.Model == "" {
		s.Model = defaultModel
	}
	if s.BatchSize <= 0 {
		s.BatchSize = defaultBatchSize
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  s.ProjectID,
		Location: s.Region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client, modelName: s.Model, batch: s.BatchSize}, nil
}
