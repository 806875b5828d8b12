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


// Package websearch defines the web search capability used for questions
// outside the course catalog.
//
// Implementations:
//
//   - websearch/tavily: Tavily search API over HTTP
//   - websearch/mock: Test double with scripted results
package websearch

import (
	"context"
	"errors"

	"github.com/poiesic/intellicourse/core"
)

// MaxResults is the cap applied to every web search.
const MaxResults = 5

var (
	// ErrAPIKeyRequired is returned when a provider needs credentials that were not supplied.
	ErrAPIKeyRequired = errors.New("web search API key required")

	// ErrSearchFailed indicates the provider returned an error response.
	ErrSearchFailed = errors.New("web search failed")
)

// Searcher returns web results for a query in provider order.
// Implementations must be thread-safe for concurrent use.
type Searcher interface {
	// Search returns at most MaxResults results for query.
	Search(ctx context.Context, query string) ([]core.WebResult, error)
}
