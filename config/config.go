// Package config loads codelens configuration from a YAML file merged over
// built-in defaults, with environment-variable fallbacks for credentials
// handled by the llm registry.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/codelens-ai/codelens/llm"
)

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Model        string `yaml:"model,omitempty"`
	Organization string `yaml:"organization,omitempty"`
}

// OllamaConfig configures the Ollama provider.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"`
	Model string `yaml:"model,omitempty"`
}

// CacheConfig configures the completion result cache.
type CacheConfig struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	TTLHours int    `yaml:"ttl_hours,omitempty"`
	Path     string `yaml:"path,omitempty"` // relative to the analyzed project
}

// Config is the full codelens configuration.
type Config struct {
	Provider    string  `yaml:"provider,omitempty"` // default vendor when no --provider flag
	Model       string  `yaml:"model,omitempty"`
	MaxTokens   int64   `yaml:"max_tokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	Concurrency int     `yaml:"concurrency,omitempty"`
	DigestBytes int     `yaml:"digest_bytes,omitempty"` // prompt context budget

	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`

	Providers []string    `yaml:"providers,omitempty"` // enabled providers; empty enables all
	Cache     CacheConfig `yaml:"cache,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxTokens:   4096,
		Temperature: 0.2,
		Concurrency: 3,
		DigestBytes: 96 * 1024,
		Cache: CacheConfig{
			TTLHours: 24,
			Path:     filepath.Join(".codelens", "cache.db"),
		},
	}
}

// Load reads a YAML config file and merges it over the defaults. A missing
// file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("merge config defaults: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns the conventional config location, ~/.codelens.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".codelens.yaml")
}

// ProviderConfig projects the provider sections into the llm registry shape.
func (c *Config) ProviderConfig() *llm.ProviderConfig {
	return &llm.ProviderConfig{
		AnthropicAPIKey: c.Anthropic.APIKey,
		AnthropicModel:  c.Anthropic.Model,
		OpenAIAPIKey:    c.OpenAI.APIKey,
		OpenAIBaseURL:   c.OpenAI.BaseURL,
		OpenAIModel:     c.OpenAI.Model,
		OpenAIOrg:       c.OpenAI.Organization,
		OllamaHost:      c.Ollama.Host,
		OllamaModel:     c.Ollama.Model,
	}
}

// CacheTTL returns the configured cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Cache.TTLHours) * time.Hour
}
