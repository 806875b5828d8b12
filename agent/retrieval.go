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
	"fmt"

	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/websearch"
)

// retrieveCourse runs the catalog stage. Missing provenance is defaulted so
// citation formatting never sees an empty source.
func retrieveCourse(ctx context.Context, retriever CatalogRetriever, query string) (core.CatalogEvidence, error) {
	passages, err := retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: %w", core.ErrRetrieval, err)
	}

	evidence := make(core.CatalogEvidence, len(passages))
	for i, p := range passages {
		evidence[i] = p.WithDefaults()
	}
	return evidence, nil
}

// retrieveWeb runs the web stage, keeping provider order and at most
// websearch.MaxResults results.
func retrieveWeb(ctx context.Context, searcher websearch.Searcher, query string) (core.WebEvidence, error) {
	results, err := searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: web: %w", core.ErrRetrieval, err)
	}

	if len(results) > websearch.MaxResults {
		results = results[:websearch.MaxResults]
	}
	evidence := make(core.WebEvidence, len(results))
	for i, r := range results {
		evidence[i] = r.WithDefaults()
	}
	return evidence, nil
}
