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


package agent

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/websearch"
)

// ModelFactory creates the language model client.
type ModelFactory func(ctx context.Context) (ai.LanguageModel, error)

// RetrieverFactory creates the catalog retriever.
type RetrieverFactory func(ctx context.Context) (CatalogRetriever, error)

// SearcherFactory creates the web search client.
type SearcherFactory func(ctx context.Context) (websearch.Searcher, error)

// lazy holds a value created on first successful get. Concurrent first
// callers block on the same initialization. Failures are not memoized.
type lazy[T any] struct {
	mu    sync.Mutex
	init  func(ctx context.Context) (T, error)
	value T
	ready bool
}

func (l *lazy[T]) get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return l.value, nil
	}
	var zero T
	if l.init == nil {
		return zero, ErrFactoryRequired
	}
	v, err := l.init(ctx)
	if err != nil {
		return zero, err
	}
	l.value = v
	l.ready = true
	return v, nil
}

// peek returns the value if it has been initialized.
func (l *lazy[T]) peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.ready
}

// Resources holds the clients shared by every pipeline run.
// Each client is created once, on first use, and reused afterwards.
// Resources is safe for concurrent use.
type Resources struct {
	model     lazy[ai.LanguageModel]
	retriever lazy[CatalogRetriever]
	searcher  lazy[websearch.Searcher]
}

// NewResources creates Resources that build clients with the given factories.
// A nil factory makes the matching accessor return ErrFactoryRequired.
func NewResources(model ModelFactory, retriever RetrieverFactory, searcher SearcherFactory) *Resources {
	r := &Resources{}
	r.model.init = model
	r.retriever.init = retriever
	r.searcher.init = searcher
	return r
}

// StaticResources wraps clients that already exist.
func StaticResources(model ai.LanguageModel, retriever CatalogRetriever, searcher websearch.Searcher) *Resources {
	r := &Resources{}
	r.model.value, r.model.ready = model, model != nil
	r.retriever.value, r.retriever.ready = retriever, retriever != nil
	r.searcher.value, r.searcher.ready = searcher, searcher != nil
	return r
}

// Model returns the language model, creating it on first use.
func (r *Resources) Model(ctx context.Context) (ai.LanguageModel, error) {
	return r.model.get(ctx)
}

// Retriever returns the catalog retriever, creating it on first use.
func (r *Resources) Retriever(ctx context.Context) (CatalogRetriever, error) {
	return r.retriever.get(ctx)
}

// Searcher returns the web search client, creating it on first use.
func (r *Resources) Searcher(ctx context.Context) (websearch.Searcher, error) {
	return r.searcher.get(ctx)
}

// Close closes every initialized client that implements io.Closer.
func (r *Resources) Close() error {
	var errs []error
	closeIfReady := func(v any, ok bool) {
		if c, isCloser := v.(io.Closer); ok && isCloser {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	m, ok := r.model.peek()
	closeIfReady(m, ok)
	ret, ok := r.retriever.peek()
	closeIfReady(ret, ok)
	s, ok := r.searcher.peek()
	closeIfReady(s, ok)

	return errors.Join(errs...)
}
