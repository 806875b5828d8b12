package catalog

import (
	"context"
	"log/slog"

	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/storage"
)

const (
	// DefaultTopK is the number of passages returned per query.
	DefaultTopK = 4
	// DefaultFetchK is the size of the candidate pool re-ranked by MMR.
	DefaultFetchK = 20
	// DefaultLambda weighs relevance against diversity.
	DefaultLambda = 0.5
)

// Retriever selects catalog passages for a query using MMR over a vector search.
type Retriever struct {
	searcher storage.VectorSearcher
	embedder ai.Embedder
	topK     int
	fetchK   int
	lambda   float32
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithTopK sets the number of passages returned.
func WithTopK(k int) Option {
	return func(r *Retriever) error {
		if k <= 0 {
			return ErrInvalidTopK
		}
		r.topK = k
		return nil
	}
}

// WithFetchK sets the candidate pool size.
func WithFetchK(k int) Option {
	return func(r *Retriever) error {
		if k <= 0 {
			return ErrInvalidFetchK
		}
		r.fetchK = k
		return nil
	}
}

// WithLambda sets the MMR diversity weight.
func WithLambda(lambda float64) Option {
	return func(r *Retriever) error {
		if lambda < 0 || lambda > 1 {
			return ErrInvalidLambda
		}
		r.lambda = float32(lambda)
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(searcher storage.VectorSearcher, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		searcher: searcher,
		embedder: embedder,
		topK:     DefaultTopK,
		fetchK:   DefaultFetchK,
		lambda:   DefaultLambda,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	// The candidate pool can never be smaller than the result
	if r.fetchK < r.topK {
		r.logger.Debug("raising fetch-k to top-k", "fetch_k", r.fetchK, "top_k", r.topK)
		r.fetchK = r.topK
	}

	return r, nil
}

// TopK returns the configured number of passages per query.
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve returns up to TopK passages for query, most relevant first.
// Passages keep the provenance stored in the index; missing provenance is
// left for the caller to default.
func (r *Retriever) Retrieve(ctx context.Context, query string) (core.CatalogEvidence, error) {
	return r.RetrieveWithMonitor(ctx, query, nil)
}

// RetrieveWithMonitor is Retrieve with callbacks at each stage.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, monitor RetrievalMonitor) (core.CatalogEvidence, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	candidates, err := r.searcher.FindSimilar(ctx, embedding, r.fetchK)
	if err != nil {
		r.logger.Error("error querying for similar passages", "err", err)
		return nil, err
	}
	monitor.AfterCandidateSearch(candidates)

	vectors := make([][]float32, len(candidates))
	for i, c := range candidates {
		vectors[i] = c.Passage.Vector
	}

	picks := maximalMarginalRelevance(embedding, vectors, r.topK, r.lambda)
	evidence := make(core.CatalogEvidence, 0, len(picks))
	for rank, pick := range picks {
		passage := candidates[pick.index].Passage
		monitor.Selected(rank, passage, pick.score)
		evidence = append(evidence, core.CatalogPassage{
			Content: passage.Content,
			Source:  passage.Source,
			Page:    passage.Page,
		})
	}

	r.logger.Debug("retrieved catalog passages", "candidates", len(candidates), "selected", len(evidence))
	monitor.Finish(evidence)
	return evidence, nil
}
