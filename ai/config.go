// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"fmt"
	"strings"

	"github.com/poiesic/intellicourse/core"
)

// Supported language model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default endpoints applied by Normalize when no host is configured.
const (
	OllamaHost = "http://localhost:11434"
	OpenAIHost = "https://api.openai.com/v1"
	GroqHost   = "https://api.groq.com/openai/v1"
)

// defaultModels are the chat models used when none is configured.
var defaultModels = map[string]string{
	ProviderOllama:    "qwen2.5:3b",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGroq:      "llama-3.3-70b-versatile",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-1.5-pro",
}

// defaultEmbeddingModels are the embedding models used when none is configured.
var defaultEmbeddingModels = map[string]string{
	ProviderOllama: "embeddinggemma",
	ProviderOpenAI: "text-embedding-3-small",
	ProviderGemini: "text-embedding-004",
}

// apiKeyEnv names the conventional environment variable holding each provider's key.
var apiKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGroq:      "GROQ_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GOOGLE_API_KEY",
}

// APIKeyEnv returns the environment variable that conventionally holds the
// API key for provider, or "" when the provider needs no key.
func APIKeyEnv(provider string) string {
	return apiKeyEnv[strings.ToLower(strings.TrimSpace(provider))]
}

// Config holds configuration for AI service providers.
type Config struct {
	// Provider selects the chat model backend.
	// One of "openai", "ollama", "groq", "anthropic", "gemini".
	Provider string

	// Host is the base URL for the chat model API.
	// Empty uses the provider's public endpoint.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	Host string

	// Model is the chat model identifier used for routing and generation.
	// Example: "qwen2.5:3b", "llama-3.1-8b-instant", "gemini-1.5-flash"
	Model string

	// APIKey authenticates against hosted providers.
	APIKey string

	// Temperature is passed to every completion call.
	// Default: 0
	Temperature float64

	// EmbeddingProvider selects the embedding backend.
	// One of "openai", "ollama", "gemini".
	EmbeddingProvider string

	// EmbeddingHost is the base URL for the embedding service API.
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// EmbeddingAPIKey authenticates against hosted embedding providers.
	EmbeddingAPIKey string

	// QueryCacheSize bounds the number of cached query embeddings.
	// Zero disables the cache.
	// Default: 1024
	QueryCacheSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the chat model provider.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithHost sets the chat model host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the chat model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the API key for both chat and embedding providers.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
		c.EmbeddingAPIKey = key
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithEmbeddingProvider sets the embedding provider.
func WithEmbeddingProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingProvider = provider
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingAPIKey sets the API key for the embedding provider only.
func WithEmbeddingAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingAPIKey = key
	}
}

// WithQueryCacheSize sets the query embedding cache size.
func WithQueryCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.QueryCacheSize = size
	}
}

// DefaultConfig returns a Config with sensible defaults for a local Ollama server.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOllama,
		Host:              OllamaHost,
		Model:             defaultModels[ProviderOllama],
		EmbeddingProvider: ProviderOllama,
		EmbeddingHost:     OllamaHost,
		EmbeddingModel:    defaultEmbeddingModels[ProviderOllama],
		QueryCacheSize:    1024,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithProvider("groq"),
//       WithModel("llama-3.1-8b-instant"),
//       WithAPIKey(os.Getenv("GROQ_API_KEY")),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Provider names are lowercased. An empty host or model gets the provider's
// default, and OpenAI-compatible hosts get the /v1 suffix they require.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.EmbeddingProvider = strings.ToLower(strings.TrimSpace(c.EmbeddingProvider))

	if c.Host == "" {
		c.Host = defaultHost(c.Provider)
	}
	if c.EmbeddingHost == "" {
		c.EmbeddingHost = defaultHost(c.EmbeddingProvider)
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = defaultEmbeddingModels[c.EmbeddingProvider]
	}

	if c.Provider == ProviderOpenAI || c.Provider == ProviderGroq {
		c.Host = withV1(c.Host)
	}
	if c.EmbeddingProvider == ProviderOpenAI {
		c.EmbeddingHost = withV1(c.EmbeddingHost)
	}
}

// defaultHost returns the endpoint for providers reached by URL.
// Anthropic and Gemini clients use their SDK endpoints and get "".
func defaultHost(provider string) string {
	switch provider {
	case ProviderOllama:
		return OllamaHost
	case ProviderOpenAI:
		return OpenAIHost
	case ProviderGroq:
		return GroqHost
	}
	return ""
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	// Remove trailing slash if present before adding /v1
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// Unknown providers are reported as core.ErrConfiguration.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI, ProviderOllama:
	case ProviderGroq, ProviderAnthropic, ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("%w: ai config: APIKey is required for provider %q", core.ErrConfiguration, c.Provider)
		}
	default:
		return fmt.Errorf("%w: ai config: unknown llm provider %q", core.ErrConfiguration, c.Provider)
	}

	switch c.EmbeddingProvider {
	case ProviderOpenAI, ProviderOllama:
	case ProviderGemini:
		if c.EmbeddingAPIKey == "" {
			return fmt.Errorf("%w: ai config: EmbeddingAPIKey is required for provider %q", core.ErrConfiguration, c.EmbeddingProvider)
		}
	default:
		return fmt.Errorf("%w: ai config: unknown embedding provider %q", core.ErrConfiguration, c.EmbeddingProvider)
	}

	if c.Model == "" {
		return fmt.Errorf("%w: ai config: Model is required", core.ErrConfiguration)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: ai config: EmbeddingModel is required", core.ErrConfiguration)
	}
	if c.QueryCacheSize < 0 {
		return fmt.Errorf("%w: ai config: QueryCacheSize cannot be negative", core.ErrConfiguration)
	}
	return nil
}
