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
	"slices"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/intellicourse/ai"
	"github.com/tmc/langchaingo/embeddings"
)

// Embedder implements ai.Embedder using a langchaingo embedder.
// Query embeddings are kept in an LRU cache when one is configured.
type Embedder struct {
	embedder embeddings.Embedder
	cache    *lru.Cache[string, []float32]
	hits     atomic.Int64
	misses   atomic.Int64
	logger   *slog.Logger
}

// newEmbedder wraps an existing langchaingo embedder.
// A cacheSize of zero disables query caching.
func newEmbedder(embedder embeddings.Embedder, cacheSize int) (*Embedder, error) {
	e := &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "langchain-embedder"),
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, []float32](cacheSize)
		if err != nil {
			return nil, err
		}
		e.cache = cache
	}
	return e, nil
}

// NewEmbedder wraps an existing langchaingo embedder.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(embedder embeddings.Embedder, cacheSize int) (ai.Embedder, error) {
	return newEmbedder(embedder, cacheSize)
}

// EmbedText generates a vector embedding for a single query string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if e.cache != nil {
		if vector, ok := e.cache.Get(text); ok {
			e.hits.Add(1)
			return slices.Clone(vector), nil
		}
		e.misses.Add(1)
	}

	e.logger.Debug("generating embedding for query", "length", len(text))
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if e.cache != nil {
		e.cache.Add(text, slices.Clone(vector))
	}
	return vector, nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
// Document embeddings are never cached.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	return vectors, nil
}

// CacheStats reports query cache hits and misses.
func (e *Embedder) CacheStats() (hits, misses int64) {
	return e.hits.Load(), e.misses.Load()
}
