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


package core

import "errors"

var (
	// ErrConfiguration indicates an unsupported provider or backend selection.
	// It is fatal at initialization and never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrRouting indicates the classification call itself failed.
	// A malformed classification is not an error; it is resolved by fallback.
	ErrRouting = errors.New("routing failed")

	// ErrRetrieval indicates the catalog or web capability failed.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the answer synthesis call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrEmptyQuery indicates the query is empty or whitespace.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidPassage indicates a Passage failed validation.
	ErrInvalidPassage = errors.New("invalid passage")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrMissingVector indicates a passage has no embedding.
	ErrMissingVector = errors.New("vector cannot be empty")
)
