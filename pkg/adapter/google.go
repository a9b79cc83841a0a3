package adapter

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GoogleAdapter implements the Adapter interface for Gemini models.
// Generation parameters are fixed when the adapter is built; Query only
// carries the prompt.
type GoogleAdapter struct {
	client   *genai.Client
	settings Settings
	config   *genai.GenerateContentConfig
	logger   *zap.Logger
}

// NewGoogleAdapter creates a new Google Gemini adapter.
func NewGoogleAdapter(s Settings, opts ...Option) (*GoogleAdapter, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}
	o := buildOptions(opts)

	cc := &genai.ClientConfig{
		APIKey:  s.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if s.BaseURL != "" {
		cc.HTTPOptions.BaseURL = s.BaseURL
	}
	if o.httpClient != nil {
		cc.HTTPClient = o.httpClient
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(s.Temperature)),
	}
	if s.MaxTokens > 0 {
		config.MaxOutputTokens = int32(s.MaxTokens)
	}

	return &GoogleAdapter{
		client:   client,
		settings: s,
		config:   config,
		logger:   o.logger,
	}, nil
}

// Name returns the adapter identifier.
func (a *GoogleAdapter) Name() string {
	return "gemini"
}

// Model returns the configured model.
func (a *GoogleAdapter) Model() string {
	return a.settings.Model
}

// Query sends a prompt to Gemini and returns the response text.
func (a *GoogleAdapter) Query(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.settings.Model, genai.Text(prompt), a.config)
	if err != nil {
		return "", classify(a.Name(), "Gemini", err, a.logger)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", emptyResponse(a.Name(), "Gemini", a.logger)
	}

	return resp.Text(), nil
}
