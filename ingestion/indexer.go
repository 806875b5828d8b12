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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/storage"
)

const (
	// DefaultBatchSize is the number of chunks embedded per call.
	DefaultBatchSize = 32
	// DefaultMaxAttempts bounds embedding retries per batch.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the first retry delay.
	DefaultBaseDelay = 500 * time.Millisecond
)

// Stats summarizes an indexing run.
type Stats struct {
	Documents int
	Chunks    int
	Passages  int
	Replaced  int
	Elapsed   time.Duration
}

// Indexer embeds chunks and stores them as catalog passages.
type Indexer struct {
	repository  storage.CatalogRepository
	embedder    ai.Embedder
	splitter    *Splitter
	pool        *ants.Pool
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	replace     bool
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the number of concurrent embedding workers.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if ix.pool != nil {
			ix.pool.Release()
		}
		ix.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per call.
func WithBatchSize(size int) Option {
	return func(ix *Indexer) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		ix.batchSize = size
		return nil
	}
}

// WithRetry sets the embedding retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(ix *Indexer) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		ix.maxAttempts = maxAttempts
		ix.baseDelay = baseDelay
		return nil
	}
}

// WithSplitter replaces the default 900/150 splitter.
func WithSplitter(splitter *Splitter) Option {
	return func(ix *Indexer) error {
		if splitter != nil {
			ix.splitter = splitter
		}
		return nil
	}
}

// WithReplace deletes each source's existing passages before indexing it.
func WithReplace(replace bool) Option {
	return func(ix *Indexer) error {
		ix.replace = replace
		return nil
	}
}

// WithProgress writes progress reports to w.
func WithProgress(w io.Writer) Option {
	return func(ix *Indexer) error {
		ix.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates an indexer. Call Release when done.
func NewIndexer(repository storage.CatalogRepository, embedder ai.Embedder, opts ...Option) (*Indexer, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	splitter, err := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		repository:  repository,
		embedder:    embedder,
		splitter:    splitter,
		batchSize:   DefaultBatchSize,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		logger:      slog.Default().With("component", "indexer"),
	}

	for _, opt := range opts {
		if err := opt(ix); err != nil {
			ix.Release()
			return nil, err
		}
	}

	if ix.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		ix.pool = pool
	}

	return ix, nil
}

// Release frees the worker pool. The indexer must not be used afterwards.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

// IndexDirectory loads every supported file under dir and indexes it.
func (ix *Indexer) IndexDirectory(ctx context.Context, dir string) (Stats, error) {
	ix.logger.Info("loading documents", "dir", dir)
	docs, err := LoadDirectory(dir)
	if err != nil {
		return Stats{}, fmt.Errorf("load %s: %w", dir, err)
	}
	ix.logger.Info("loaded documents", "documents", len(docs))
	return ix.Index(ctx, docs)
}

// Index splits, embeds and stores docs. Batches run concurrently on the
// worker pool; the first batch error is returned once all batches finish.
func (ix *Indexer) Index(ctx context.Context, docs []Document) (Stats, error) {
	start := time.Now()
	stats := Stats{Documents: len(docs)}

	chunks, err := ix.splitter.Split(docs)
	if err != nil {
		return stats, err
	}
	stats.Chunks = len(chunks)
	ix.logger.Info("split documents", "documents", len(docs), "chunks", len(chunks))

	if ix.replace {
		replaced, err := ix.deleteSources(ctx, chunks)
		stats.Replaced = replaced
		if err != nil {
			return stats, err
		}
	}

	var tracker *ProgressTracker
	if ix.progress != nil {
		tracker = NewProgressTracker(ix.progress, len(chunks), ix.batchSize)
		tracker.Start()
		defer tracker.Finish()
	}

	var (
		wg       sync.WaitGroup
		stored   atomic.Int64
		errMu    sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for offset := 0; offset < len(chunks); offset += ix.batchSize {
		batch := chunks[offset:min(offset+ix.batchSize, len(chunks))]

		wg.Add(1)
		submitErr := ix.pool.Submit(func() {
			defer wg.Done()
			n, err := ix.indexBatch(ctx, batch)
			if err != nil {
				ix.logger.Error("error indexing batch", "offset", offset, "size", len(batch), "err", err)
				setErr(err)
				return
			}
			stored.Add(int64(n))
			if tracker != nil {
				tracker.Increment(len(batch))
			}
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}
	wg.Wait()

	stats.Passages = int(stored.Load())
	stats.Elapsed = time.Since(start)
	if firstErr != nil {
		return stats, firstErr
	}

	ix.logger.Info("indexing complete", "chunks", stats.Chunks, "passages", stats.Passages, "elapsed", stats.Elapsed)
	return stats, nil
}

func (ix *Indexer) indexBatch(ctx context.Context, batch []Chunk) (int, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, ix.logger, func() error {
		var err error
		vectors, err = ix.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(texts), len(vectors))
		}
		return nil
	}, ix.maxAttempts, ix.baseDelay)
	if err != nil {
		return 0, fmt.Errorf("embed batch: %w", err)
	}

	passages := make([]*core.Passage, len(batch))
	for i, c := range batch {
		passages[i] = &core.Passage{
			Content: c.Content,
			Source:  c.Source,
			Page:    c.Page,
			Vector:  vectors[i],
		}
	}

	added, err := ix.repository.AddPassages(ctx, passages...)
	if err != nil {
		return 0, fmt.Errorf("store batch: %w", err)
	}
	return len(added), nil
}

func (ix *Indexer) deleteSources(ctx context.Context, chunks []Chunk) (int, error) {
	seen := make(map[string]struct{})
	var errs []error
	deleted := 0
	for _, c := range chunks {
		if _, ok := seen[c.Source]; ok {
			continue
		}
		seen[c.Source] = struct{}{}

		n, err := ix.repository.DeleteSource(ctx, c.Source)
		if err != nil {
			errs = append(errs, fmt.Errorf("delete source %s: %w", c.Source, err))
			continue
		}
		if n > 0 {
			ix.logger.Debug("replaced source", "source", c.Source, "deleted", n)
		}
		deleted += n
	}
	return deleted, errors.Join(errs...)
}
