package adapter

import (
	"fmt"

	"github.com/zen-systems/askcmd/pkg/config"
)

// Overrides carries per-invocation values that win over configuration.
// Nil pointers and an empty model mean "use the configured default". Model
// may be an alias.
type Overrides struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// SettingsFor resolves the construction settings for an adapter.
func SettingsFor(name config.AdapterName, cfg *config.Config, ov Overrides) Settings {
	s := Settings{
		APIKey:      cfg.APIKey(name),
		BaseURL:     cfg.BaseURL(name),
		Model:       cfg.Model(name),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	if ov.Model != "" {
		s.Model = cfg.ResolveModel(name, ov.Model)
	}
	if ov.Temperature != nil {
		s.Temperature = *ov.Temperature
	}
	if ov.MaxTokens != nil {
		s.MaxTokens = *ov.MaxTokens
	}
	return s
}

// New constructs the adapter for name. It fails when the vendor's API key
// is missing or its client cannot be built.
func New(name config.AdapterName, cfg *config.Config, ov Overrides, opts ...Option) (Adapter, error) {
	s := SettingsFor(name, cfg, ov)

	switch name {
	case config.DeepSeek:
		return NewDeepSeekAdapter(s, opts...)
	case config.OpenAI:
		return NewOpenAIAdapter(s, opts...)
	case config.Gemini:
		return NewGoogleAdapter(s, opts...)
	case config.Claude:
		return NewAnthropicAdapter(s, opts...)
	default:
		return nil, fmt.Errorf("unknown adapter %q", name)
	}
}
