package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"go.uber.org/zap"

	"github.com/zen-systems/askcmd/pkg/config"
)

// DeepSeekAdapter implements the Adapter interface for DeepSeek models.
// DeepSeek uses an OpenAI-compatible API format, so it rides on the OpenAI
// SDK pointed at the DeepSeek base URL.
type DeepSeekAdapter struct {
	client   openai.Client
	settings Settings
	logger   *zap.Logger
}

// NewDeepSeekAdapter creates a new DeepSeek adapter.
func NewDeepSeekAdapter(s Settings, opts ...Option) (*DeepSeekAdapter, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}
	if s.BaseURL == "" {
		s.BaseURL = config.DefaultDeepSeekBaseURL
	}
	o := buildOptions(opts)

	return &DeepSeekAdapter{
		client:   openai.NewClient(clientOptions(s, o)...),
		settings: s,
		logger:   o.logger,
	}, nil
}

// Name returns the adapter identifier.
func (a *DeepSeekAdapter) Name() string {
	return "deepseek"
}

// Model returns the configured model.
func (a *DeepSeekAdapter) Model() string {
	return a.settings.Model
}

// Query sends a prompt to DeepSeek and returns the first choice with
// surrounding whitespace removed.
func (a *DeepSeekAdapter) Query(ctx context.Context, prompt string) (string, error) {
	content, err := chatCompletion(ctx, a.client, a.settings, prompt)
	if err != nil {
		if errors.Is(err, errNoChoices) {
			return "", emptyResponse(a.Name(), "DeepSeek", a.logger)
		}
		return "", classify(a.Name(), "DeepSeek", err, a.logger)
	}
	return strings.TrimSpace(content), nil
}
