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


package langchain

import (
	"context"
	"log/slog"

	"github.com/poiesic/intellicourse/ai"
)

// Provider implements ai.AIProvider using langchaingo clients.
// It manages the chat model and embedder instances.
type Provider struct {
	config   *ai.Config
	model    *ChatModel
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider creates a new AI provider for the configured backends.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to langchaingo implementation details.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newChatClient(ctx, config)
	if err != nil {
		return nil, err
	}

	embedderClient, err := newEmbedderClient(ctx, config)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(embedderClient, config.QueryCacheSize)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "langchain-provider")
	logger.Debug("created AI provider",
		"provider", config.Provider,
		"model", config.Model,
		"embedding_provider", config.EmbeddingProvider,
		"embedding_model", config.EmbeddingModel)

	return &Provider{
		config:   config,
		model:    newChatModel(client, config.Temperature),
		embedder: embedder,
		logger:   logger,
	}, nil
}

// NewLanguageModel creates only the chat model for the configured provider.
func NewLanguageModel(ctx context.Context, config *ai.Config) (ai.LanguageModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := newChatClient(ctx, config)
	if err != nil {
		return nil, err
	}
	return newChatModel(client, config.Temperature), nil
}

// LanguageModel returns the chat completion service.
func (p *Provider) LanguageModel() ai.LanguageModel {
	return p.model
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	hits, misses := p.embedder.CacheStats()
	p.logger.Debug("closing AI provider", "cache_hits", hits, "cache_misses", misses)
	return nil
}
