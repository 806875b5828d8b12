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


// Package langchain provides AI service implementations backed by langchaingo.
//
// This package implements the ai.AIProvider interface for every provider
// the assistant supports. OpenAI and Groq share the OpenAI-compatible client
// (Groq through its /openai/v1 endpoint); Ollama, Anthropic and Gemini use
// their native langchaingo clients. Embeddings are available from OpenAI,
// Ollama and Gemini.
//
// # Usage
//
//	cfg := ai.NewConfig(
//	    ai.WithProvider("ollama"),
//	    ai.WithModel("qwen2.5:3b"),
//	)
//
//	provider, err := langchain.NewProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	text, err := provider.LanguageModel().Complete(ctx, system, user)
//	vec, err := provider.Embedder().EmbedText(ctx, "what is CS101 about?")
package langchain
