package adapter

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// AnthropicAdapter implements the Adapter interface for Claude models.
type AnthropicAdapter struct {
	client   anthropic.Client
	settings Settings
	logger   *zap.Logger
}

// NewAnthropicAdapter creates a new Anthropic adapter.
func NewAnthropicAdapter(s Settings, opts ...Option) (*AnthropicAdapter, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	o := buildOptions(opts)

	clientOpts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(s.BaseURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(o.httpClient))
	}

	return &AnthropicAdapter{
		client:   anthropic.NewClient(clientOpts...),
		settings: s,
		logger:   o.logger,
	}, nil
}

// Name returns the adapter identifier.
func (a *AnthropicAdapter) Name() string {
	return "claude"
}

// Model returns the configured model.
func (a *AnthropicAdapter) Model() string {
	return a.settings.Model
}

// Query sends a prompt to Claude and returns the first content block's text.
func (a *AnthropicAdapter) Query(ctx context.Context, prompt string) (string, error) {
	maxTokens := int64(a.settings.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.settings.Model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(a.settings.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(a.Name(), "Anthropic", err, a.logger)
	}

	if len(resp.Content) == 0 {
		return "", emptyResponse(a.Name(), "Anthropic", a.logger)
	}

	return resp.Content[0].Text, nil
}
