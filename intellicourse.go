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


// Package intellicourse answers student questions from a course catalog or
// the web.
//
// An Assistant wires the configured language model, catalog store and web
// search client into the agent pipeline. Clients are created on first use:
//
//	cfg := config.Default()
//	assistant, err := intellicourse.NewAssistant(cfg)
//	if err != nil {
//		return err
//	}
//	defer assistant.Close()
//
//	result, err := assistant.Ask(ctx, "What are the prerequisites for CS101?")
package intellicourse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/intellicourse/agent"
	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/ai/langchain"
	"github.com/poiesic/intellicourse/catalog"
	"github.com/poiesic/intellicourse/config"
	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/ingestion"
	"github.com/poiesic/intellicourse/storage"
	"github.com/poiesic/intellicourse/storage/badger"
	"github.com/poiesic/intellicourse/storage/pgvector"
	"github.com/poiesic/intellicourse/websearch"
	"github.com/poiesic/intellicourse/websearch/tavily"
)

// Assistant answers questions through the routing and synthesis pipeline.
// It is safe for concurrent use.
type Assistant struct {
	cfg       *config.Config
	resources *agent.Resources
	graph     *agent.Graph
	observer  agent.Observer
	logger    *slog.Logger

	mu       sync.Mutex
	provider ai.AIProvider
	catalog  storage.CatalogRepository
}

// Option configures an Assistant.
type Option func(*Assistant) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithObserver registers an observer for pipeline events.
func WithObserver(observer agent.Observer) Option {
	return func(a *Assistant) error {
		a.observer = observer
		return nil
	}
}

// WithResources replaces the configured clients.
func WithResources(resources *agent.Resources) Option {
	return func(a *Assistant) error {
		a.resources = resources
		return nil
	}
}

// NewAssistant validates cfg and builds the pipeline. No client is created
// until the first question; configuration errors are returned immediately.
func NewAssistant(cfg *config.Config, opts ...Option) (*Assistant, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Assistant{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if a.resources == nil {
		a.resources = agent.NewResources(a.newModel, a.newRetriever, a.newSearcher)
	}

	graphOpts := []agent.Option{agent.WithLogger(a.logger.With("component", "agent"))}
	if a.observer != nil {
		graphOpts = append(graphOpts, agent.WithObserver(a.observer))
	}
	graph, err := agent.NewGraph(a.resources, graphOpts...)
	if err != nil {
		return nil, err
	}
	a.graph = graph

	return a, nil
}

// Ask answers query.
func (a *Assistant) Ask(ctx context.Context, query string) (*core.ConversationResult, error) {
	return a.graph.Run(ctx, query)
}

// Catalog returns the catalog store, opening it on first use.
func (a *Assistant) Catalog(ctx context.Context) (storage.CatalogRepository, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.catalogLocked(ctx)
}

// NewIndexer returns an indexer that writes to the assistant's catalog.
// The caller must Release it.
func (a *Assistant) NewIndexer(ctx context.Context, opts ...ingestion.Option) (*ingestion.Indexer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	repo, err := a.catalogLocked(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := a.providerLocked(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]ingestion.Option{ingestion.WithLogger(a.logger.With("component", "indexer"))}, opts...)
	return ingestion.NewIndexer(repo, provider.Embedder(), opts...)
}

// Close releases every client that was created.
func (a *Assistant) Close() error {
	var errs []error
	if err := a.resources.Close(); err != nil {
		errs = append(errs, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
		a.provider = nil
	}
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			a.logger.Error("error closing catalog store", "err", err)
			errs = append(errs, err)
		}
		a.catalog = nil
	}
	return errors.Join(errs...)
}

func (a *Assistant) providerLocked(ctx context.Context) (ai.AIProvider, error) {
	if a.provider != nil {
		return a.provider, nil
	}
	provider, err := langchain.NewProvider(ctx, a.cfg.AI)
	if err != nil {
		return nil, err
	}
	a.provider = provider
	return provider, nil
}

func (a *Assistant) catalogLocked(ctx context.Context) (storage.CatalogRepository, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}
	repo, err := OpenCatalog(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	a.catalog = repo
	return repo, nil
}

// newModel reuses the provider's model when it exists. Otherwise only the
// chat client is built; web-routed questions never need the embedder.
func (a *Assistant) newModel(ctx context.Context) (ai.LanguageModel, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.provider != nil {
		return a.provider.LanguageModel(), nil
	}
	return langchain.NewLanguageModel(ctx, a.cfg.AI)
}

func (a *Assistant) newRetriever(ctx context.Context) (agent.CatalogRetriever, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	provider, err := a.providerLocked(ctx)
	if err != nil {
		return nil, err
	}
	repo, err := a.catalogLocked(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewRetriever(repo, provider.Embedder(),
		catalog.WithLogger(a.logger.With("component", "catalog")),
		catalog.WithTopK(a.cfg.TopK),
		catalog.WithFetchK(a.cfg.FetchK),
		catalog.WithLambda(a.cfg.Lambda),
	)
}

func (a *Assistant) newSearcher(ctx context.Context) (websearch.Searcher, error) {
	return tavily.NewClient(a.cfg.TavilyAPIKey,
		tavily.WithLogger(a.logger.With("component", "tavily")),
		tavily.WithBaseURL(a.cfg.TavilyBaseURL),
		tavily.WithMaxResults(a.cfg.WebMaxResults),
		tavily.WithTimeout(a.cfg.WebTimeout),
	)
}

// OpenCatalog opens the catalog store selected by cfg.VectorStore.
func OpenCatalog(ctx context.Context, cfg *config.Config) (storage.CatalogRepository, error) {
	switch cfg.VectorStore {
	case config.VectorStoreBadger:
		return badger.NewRepository(cfg.BadgerPath)
	case config.VectorStorePgvector:
		return pgvector.NewRepository(ctx, pgvector.Config{
			DSN:         cfg.PostgresDSN,
			Table:       cfg.PostgresTable,
			Dimension:   cfg.Dimension,
			EnsureIndex: true,
		})
	}
	return nil, fmt.Errorf("%w: unsupported vector store %q", core.ErrConfiguration, cfg.VectorStore)
}
