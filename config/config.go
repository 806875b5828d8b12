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


// Package config holds application settings for the assistant, the index
// builder and the HTTP server.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/catalog"
	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/websearch"
	"github.com/poiesic/intellicourse/websearch/tavily"
)

// Vector store backends.
const (
	VectorStoreBadger   = "badger"
	VectorStorePgvector = "pgvector"
)

// Config is the complete application configuration.
type Config struct {
	// AI configures the language model and embedder.
	AI *ai.Config

	// VectorStore selects the catalog backend: badger or pgvector.
	VectorStore string
	// BadgerPath is the catalog database directory for the badger backend.
	BadgerPath string
	// PostgresDSN is the connection string for the pgvector backend.
	PostgresDSN string
	// PostgresTable holds catalog passages for the pgvector backend.
	PostgresTable string
	// Dimension is the embedding size used to create the pgvector column.
	Dimension int

	// TopK is the number of catalog passages retrieved per query.
	TopK int
	// FetchK is the candidate pool re-ranked by MMR.
	FetchK int
	// Lambda weighs relevance against diversity in MMR.
	Lambda float64

	TavilyAPIKey  string
	TavilyBaseURL string
	// WebMaxResults is the number of web results requested, at most 5.
	WebMaxResults int
	WebTimeout    time.Duration

	// DataDir is the default directory of catalog documents to index.
	DataDir string
	// ListenAddr is the HTTP server address.
	ListenAddr string
}

// Default returns a Config with defaults for local development.
func Default() *Config {
	return &Config{
		AI:            ai.DefaultConfig(),
		VectorStore:   VectorStoreBadger,
		BadgerPath:    filepath.Join(".intellicourse", "catalog"),
		PostgresTable: "catalog_passages",
		Dimension:     768,
		TopK:          catalog.DefaultTopK,
		FetchK:        catalog.DefaultFetchK,
		Lambda:        catalog.DefaultLambda,
		TavilyBaseURL: tavily.DefaultBaseURL,
		WebMaxResults: websearch.MaxResults,
		WebTimeout:    tavily.DefaultTimeout,
		DataDir:       filepath.Join("data", "sample"),
		ListenAddr:    ":8000",
	}
}

// Normalize lowercases enumerated values and normalizes the AI config.
func (c *Config) Normalize() {
	c.VectorStore = strings.ToLower(strings.TrimSpace(c.VectorStore))
	if c.AI != nil {
		c.AI.Normalize()
	}
}

// Validate checks that the configuration is usable.
// Errors wrap core.ErrConfiguration.
func (c *Config) Validate() error {
	if c.AI == nil {
		return fmt.Errorf("%w: ai config is required", core.ErrConfiguration)
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}

	switch c.VectorStore {
	case VectorStoreBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("%w: badger path is required", core.ErrConfiguration)
		}
	case VectorStorePgvector:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres DSN is required for pgvector", core.ErrConfiguration)
		}
		if c.Dimension <= 0 {
			return fmt.Errorf("%w: embedding dimension must be positive for pgvector", core.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unsupported vector store %q", core.ErrConfiguration, c.VectorStore)
	}

	if c.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive", core.ErrConfiguration)
	}
	if c.FetchK <= 0 {
		return fmt.Errorf("%w: fetch-k must be positive", core.ErrConfiguration)
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("%w: lambda must be within [0, 1]", core.ErrConfiguration)
	}
	if c.WebMaxResults <= 0 || c.WebMaxResults > websearch.MaxResults {
		return fmt.Errorf("%w: web max results must be within [1, %d]", core.ErrConfiguration, websearch.MaxResults)
	}
	return nil
}
