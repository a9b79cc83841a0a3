package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// OpenAIAdapter implements the Adapter interface for OpenAI models.
type OpenAIAdapter struct {
	client   openai.Client
	settings Settings
	logger   *zap.Logger
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(s Settings, opts ...Option) (*OpenAIAdapter, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	o := buildOptions(opts)

	return &OpenAIAdapter{
		client:   openai.NewClient(clientOptions(s, o)...),
		settings: s,
		logger:   o.logger,
	}, nil
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Model returns the configured model.
func (a *OpenAIAdapter) Model() string {
	return a.settings.Model
}

// Query sends a prompt to OpenAI and returns the first choice untouched.
func (a *OpenAIAdapter) Query(ctx context.Context, prompt string) (string, error) {
	content, err := chatCompletion(ctx, a.client, a.settings, prompt)
	if err != nil {
		if errors.Is(err, errNoChoices) {
			return "", emptyResponse(a.Name(), "OpenAI", a.logger)
		}
		return "", classify(a.Name(), "OpenAI", err, a.logger)
	}
	return content, nil
}

// clientOptions builds openai-go options for both OpenAI and the
// OpenAI-compatible DeepSeek endpoint. SDK retries are disabled.
func clientOptions(s Settings, o options) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	if o.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(o.httpClient))
	}
	return opts
}

var errNoChoices = errors.New("no choices returned")

func chatCompletion(ctx context.Context, client openai.Client, s Settings, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(s.Temperature),
	}
	if s.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(s.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
