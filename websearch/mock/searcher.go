// Package mock provides a test double for websearch.Searcher.
package mock

import (
	"context"
	"sync"

	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/websearch"
)

// MockSearcher is a test double for websearch.Searcher.
// It allows custom behavior injection via function fields.
type MockSearcher struct {
	// SearchFunc is called by Search if set.
	// If nil, Results is returned, capped at websearch.MaxResults.
	SearchFunc func(ctx context.Context, query string) ([]core.WebResult, error)

	// Results is the default response.
	Results []core.WebResult

	mu      sync.Mutex
	queries []string
}

var _ websearch.Searcher = (*MockSearcher)(nil)

// NewMockSearcher creates a mock searcher that returns results.
// Note: Returns concrete type to allow test assertions.
func NewMockSearcher(results ...core.WebResult) *MockSearcher {
	return &MockSearcher{Results: results}
}

// Search records the query and returns the configured results.
func (m *MockSearcher) Search(ctx context.Context, query string) ([]core.WebResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	fn := m.SearchFunc
	results := m.Results
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
	}
	if len(results) > websearch.MaxResults {
		results = results[:websearch.MaxResults]
	}
	return append([]core.WebResult(nil), results...), nil
}

// CallCount returns the number of times Search was called.
func (m *MockSearcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// Queries returns the queries received, in order.
func (m *MockSearcher) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Reset clears recorded queries and injected behavior.
func (m *MockSearcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = nil
	m.SearchFunc = nil
	m.Results = nil
}
