package adapter

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Adapter defines the interface for LLM provider adapters.
type Adapter interface {
	// Query sends a prompt to the model and returns its text reply.
	// One call is exactly one request to the vendor; there is no retry.
	Query(ctx context.Context, prompt string) (string, error)

	// Name returns the adapter's identifier.
	Name() string

	// Model returns the model the adapter was constructed for.
	Model() string
}

// Settings holds the construction-time parameters shared by all vendors.
type Settings struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Option configures optional adapter dependencies.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	httpClient *http.Client
}

// WithLogger sets the logger used for failure diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient overrides the HTTP client used by the vendor SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
