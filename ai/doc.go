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


// Package ai provides abstractions for AI services used in IntelliCourse.
//
// This package defines interfaces for the two model capabilities the
// assistant depends on: chat completion (used by the router and the answer
// generator) and text embeddings (used by catalog indexing and retrieval).
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - LanguageModel: Completes a system instruction plus user content into text
//   - Embedder: Generates vector embeddings from text
//   - AIProvider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
//   - ai/langchain: Production implementation backed by langchaingo
//     (OpenAI-compatible, Ollama, Groq, Anthropic and Gemini)
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (langchain.NewProvider) return INTERFACE types.
// Test constructors (mock.NewMockLanguageModel, mock.NewMockEmbedder) return
// CONCRETE types so tests can inject behavior and assert on call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithProvider("groq"), ai.WithAPIKey(key))
//	provider, err := langchain.NewProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	answer, err := provider.LanguageModel().Complete(ctx, system, "Question: ...")
//	vector, err := provider.Embedder().EmbedText(ctx, "prerequisites for CS101")
package ai
