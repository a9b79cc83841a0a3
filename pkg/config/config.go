package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AdapterName identifies one of the supported LLM vendors.
type AdapterName string

const (
	DeepSeek AdapterName = "deepseek"
	OpenAI   AdapterName = "openai"
	Gemini   AdapterName = "gemini"
	Claude   AdapterName = "claude"
)

// AdapterNames lists every supported adapter in display order.
var AdapterNames = []AdapterName{DeepSeek, OpenAI, Gemini, Claude}

// ParseAdapterName converts user input to an AdapterName.
// Vendor names are accepted as aliases ("google", "anthropic").
func ParseAdapterName(s string) (AdapterName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deepseek":
		return DeepSeek, nil
	case "openai":
		return OpenAI, nil
	case "gemini", "google":
		return Gemini, nil
	case "claude", "anthropic":
		return Claude, nil
	default:
		return "", fmt.Errorf("unknown adapter %q (want one of deepseek, openai, gemini, claude)", s)
	}
}

const (
	DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	DefaultMaxTokens       = 2000
	DefaultTemperature     = 0.3
)

// Config holds the application configuration. It is built once at startup
// and passed to the components that need it; nothing mutates it afterwards.
type Config struct {
	DefaultAdapter  AdapterName
	FallbackAdapter AdapterName

	DeepSeekAPIKey  string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	AnthropicAPIKey string

	DeepSeekBaseURL  string
	OpenAIBaseURL    string
	GoogleBaseURL    string
	AnthropicBaseURL string

	DeepSeekModel string
	OpenAIModel   string
	GeminiModel   string
	ClaudeModel   string

	MaxTokens   int
	Temperature float64

	Aliases ModelAliases

	ConfigDir string
}

// FileConfig represents the structure of ~/.askcmd/config.yaml.
// API keys are deliberately absent: they are only read from the environment.
type FileConfig struct {
	DefaultAdapter  string                    `yaml:"default_adapter"`
	FallbackAdapter string                    `yaml:"fallback_adapter"`
	Generation      GenerationConfig          `yaml:"generation"`
	Providers       map[string]ProviderConfig `yaml:"providers"`
}

// GenerationConfig holds default generation parameters from file.
type GenerationConfig struct {
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
}

// ProviderConfig holds per-vendor overrides from file.
type ProviderConfig struct {
	Model   string            `yaml:"model"`
	BaseURL string            `yaml:"base_url"`
	Aliases map[string]string `yaml:"aliases"`
}

// Default returns the built-in configuration with no API keys.
func Default() *Config {
	return &Config{
		DefaultAdapter:  DeepSeek,
		FallbackAdapter: Gemini,
		DeepSeekBaseURL: DefaultDeepSeekBaseURL,
		DeepSeekModel:   "deepseek-chat",
		OpenAIModel:     "gpt-3.5-turbo",
		GeminiModel:     "gemini-pro",
		ClaudeModel:     "claude-3-haiku-20240307",
		MaxTokens:       DefaultMaxTokens,
		Temperature:     DefaultTemperature,
		Aliases:         DefaultAliases(),
	}
}

// Load reads configuration from ~/.askcmd/config.yaml and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	cfg, err := load(filepath.Join(configDir, "config.yaml"), false)
	if err != nil {
		return nil, err
	}
	cfg.ConfigDir = configDir
	return cfg, nil
}

// LoadFile loads config from a specific file. Unlike Load, the file must exist.
func LoadFile(path string) (*Config, error) {
	cfg, err := load(path, true)
	if err != nil {
		return nil, err
	}
	cfg.ConfigDir = filepath.Dir(path)
	return cfg, nil
}

// LoadDotEnv loads environment variables from path without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func load(path string, required bool) (*Config, error) {
	fileConfig, err := loadFileConfig(path, required)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := cfg.applyFile(fileConfig); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(fc *FileConfig) error {
	if fc.DefaultAdapter != "" {
		name, err := ParseAdapterName(fc.DefaultAdapter)
		if err != nil {
			return fmt.Errorf("default_adapter: %w", err)
		}
		c.DefaultAdapter = name
	}
	if fc.FallbackAdapter != "" {
		name, err := ParseAdapterName(fc.FallbackAdapter)
		if err != nil {
			return fmt.Errorf("fallback_adapter: %w", err)
		}
		c.FallbackAdapter = name
	}
	if fc.Generation.MaxTokens != 0 {
		c.MaxTokens = fc.Generation.MaxTokens
	}
	if fc.Generation.Temperature != nil {
		c.Temperature = *fc.Generation.Temperature
	}

	for key, p := range fc.Providers {
		name, err := ParseAdapterName(key)
		if err != nil {
			return fmt.Errorf("providers: %w", err)
		}
		if p.Model != "" {
			*c.modelField(name) = p.Model
		}
		if p.BaseURL != "" {
			*c.baseURLField(name) = p.BaseURL
		}
		c.Aliases.Merge(name, p.Aliases)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")

	c.DeepSeekBaseURL = getEnvOrDefault("DEEPSEEK_API_BASE", c.DeepSeekBaseURL)
	c.OpenAIBaseURL = getEnvOrDefault("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.GoogleBaseURL = getEnvOrDefault("GOOGLE_API_BASE", c.GoogleBaseURL)
	c.AnthropicBaseURL = getEnvOrDefault("ANTHROPIC_BASE_URL", c.AnthropicBaseURL)

	if v := os.Getenv("ASKCMD_DEFAULT_ADAPTER"); v != "" {
		name, err := ParseAdapterName(v)
		if err != nil {
			return fmt.Errorf("ASKCMD_DEFAULT_ADAPTER: %w", err)
		}
		c.DefaultAdapter = name
	}
	if v := os.Getenv("ASKCMD_FALLBACK_ADAPTER"); v != "" {
		name, err := ParseAdapterName(v)
		if err != nil {
			return fmt.Errorf("ASKCMD_FALLBACK_ADAPTER: %w", err)
		}
		c.FallbackAdapter = name
	}
	if v := os.Getenv("ASKCMD_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ASKCMD_MAX_TOKENS: %w", err)
		}
		c.MaxTokens = n
	}
	if v := os.Getenv("ASKCMD_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ASKCMD_TEMPERATURE: %w", err)
		}
		c.Temperature = f
	}
	return nil
}

// Validate checks generation parameters and adapter names.
func (c *Config) Validate() error {
	if _, err := ParseAdapterName(string(c.DefaultAdapter)); err != nil {
		return fmt.Errorf("default adapter: %w", err)
	}
	if _, err := ParseAdapterName(string(c.FallbackAdapter)); err != nil {
		return fmt.Errorf("fallback adapter: %w", err)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", c.Temperature)
	}
	return nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name AdapterName) bool {
	return c.APIKey(name) != ""
}

// APIKey returns the API key configured for the adapter.
func (c *Config) APIKey(name AdapterName) string {
	switch name {
	case DeepSeek:
		return c.DeepSeekAPIKey
	case OpenAI:
		return c.OpenAIAPIKey
	case Gemini:
		return c.GoogleAPIKey
	case Claude:
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

// Model returns the default model configured for the adapter, with aliases
// resolved.
func (c *Config) Model(name AdapterName) string {
	if p := c.modelField(name); p != nil {
		return c.ResolveModel(name, *p)
	}
	return ""
}

// ResolveModel maps an alias to the adapter's model identifier. Anything
// that is not an alias is returned unchanged.
func (c *Config) ResolveModel(name AdapterName, modelOrAlias string) string {
	return c.Aliases.Resolve(name, modelOrAlias)
}

// BaseURL returns the base URL override for the adapter, if any.
func (c *Config) BaseURL(name AdapterName) string {
	if p := c.baseURLField(name); p != nil {
		return *p
	}
	return ""
}

func (c *Config) modelField(name AdapterName) *string {
	switch name {
	case DeepSeek:
		return &c.DeepSeekModel
	case OpenAI:
		return &c.OpenAIModel
	case Gemini:
		return &c.GeminiModel
	case Claude:
		return &c.ClaudeModel
	default:
		return nil
	}
}

func (c *Config) baseURLField(name AdapterName) *string {
	switch name {
	case DeepSeek:
		return &c.DeepSeekBaseURL
	case OpenAI:
		return &c.OpenAIBaseURL
	case Gemini:
		return &c.GoogleBaseURL
	case Claude:
		return &c.AnthropicBaseURL
	default:
		return nil
	}
}

// loadFileConfig reads the config file, returning empty config if not found
// and the file is optional.
func loadFileConfig(path string, required bool) (*FileConfig, error) {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".askcmd"), nil
}
