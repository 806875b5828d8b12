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
	"fmt"

	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// noneToken is sent to local OpenAI-compatible services that don't require authentication.
const noneToken = "none"

// newChatClient creates the langchaingo model for the configured chat provider.
func newChatClient(ctx context.Context, config *ai.Config) (llms.Model, error) {
	switch config.Provider {
	case ai.ProviderOpenAI, ai.ProviderGroq:
		return openai.New(openAIOptions(config.Host, config.APIKey, openai.WithModel(config.Model))...)
	case ai.ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(config.Model)}
		if config.Host != "" {
			opts = append(opts, ollama.WithServerURL(config.Host))
		}
		return ollama.New(opts...)
	case ai.ProviderAnthropic:
		return anthropic.New(
			anthropic.WithModel(config.Model),
			anthropic.WithToken(config.APIKey),
		)
	case ai.ProviderGemini:
		return googleai.New(ctx,
			googleai.WithDefaultModel(config.Model),
			googleai.WithAPIKey(config.APIKey),
		)
	default:
		return nil, fmt.Errorf("%w: unsupported llm provider %q", core.ErrConfiguration, config.Provider)
	}
}

// newEmbedderClient creates the langchaingo embedder for the configured embedding provider.
func newEmbedderClient(ctx context.Context, config *ai.Config) (embeddings.Embedder, error) {
	var (
		client embeddings.EmbedderClient
		err    error
	)
	switch config.EmbeddingProvider {
	case ai.ProviderOpenAI:
		client, err = openai.New(openAIOptions(config.EmbeddingHost, config.EmbeddingAPIKey,
			openai.WithEmbeddingModel(config.EmbeddingModel))...)
	case ai.ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(config.EmbeddingModel)}
		if config.EmbeddingHost != "" {
			opts = append(opts, ollama.WithServerURL(config.EmbeddingHost))
		}
		client, err = ollama.New(opts...)
	case ai.ProviderGemini:
		client, err = googleai.New(ctx,
			googleai.WithDefaultEmbeddingModel(config.EmbeddingModel),
			googleai.WithAPIKey(config.EmbeddingAPIKey),
		)
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", core.ErrConfiguration, config.EmbeddingProvider)
	}
	if err != nil {
		return nil, err
	}

	return embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
}

func openAIOptions(host, apiKey string, extra ...openai.Option) []openai.Option {
	token := apiKey
	if token == "" {
		token = noneToken
	}
	opts := []openai.Option{openai.WithToken(token)}
	if host != "" {
		opts = append(opts, openai.WithBaseURL(host))
	}
	return append(opts, extra...)
}
