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


// Package catalog retrieves course catalog passages for a query.
//
// The Retriever embeds the query, fetches a candidate pool from a
// storage.VectorSearcher and re-ranks it with maximal marginal relevance
// (MMR) so the returned passages balance relevance and diversity.
//
// # MMR
//
// The first pick is the candidate most similar to the query. Each later pick
// maximizes
//
//	lambda*sim(query, d) - (1-lambda)*max(sim(d, s) for s in selected)
//
// With lambda=1 the ranking is pure similarity; with lambda=0 it is pure
// diversity. Defaults follow common retriever settings: TopK=4, FetchK=20,
// Lambda=0.5.
//
// # Usage
//
//	retriever, err := catalog.NewRetriever(repo, provider.Embedder(),
//	    catalog.WithTopK(4),
//	    catalog.WithFetchK(20),
//	)
//	evidence, err := retriever.Retrieve(ctx, "prerequisites for CS101")
package catalog
