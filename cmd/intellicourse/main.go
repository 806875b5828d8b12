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


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/intellicourse"
	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/config"
	"github.com/poiesic/intellicourse/ingestion"
	"github.com/poiesic/intellicourse/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

func main() {
	// Environment variables bound to flags are read during parsing, so the
	// .env file has to be loaded first.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	defaults := config.Default()

	return &cli.App{
		Name:  "intellicourse",
		Usage: "Answer course catalog and general questions with cited sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "llm-provider",
				Usage:   "Language model provider (openai, ollama, groq, anthropic, gemini)",
				Value:   defaults.AI.Provider,
				EnvVars: []string{"LLM_PROVIDER"},
			},
			&cli.StringFlag{
				Name:    "llm-host",
				Usage:   "Language model service host URL (empty uses the provider default)",
				EnvVars: []string{"LLM_HOST"},
			},
			&cli.StringFlag{
				Name:    "llm-model",
				Usage:   "Language model name (empty uses the provider default)",
				EnvVars: []string{"LLM_MODEL"},
			},
			&cli.StringFlag{
				Name:    "llm-api-key",
				Usage:   "Language model API key (defaults to the provider's own variable, e.g. GROQ_API_KEY)",
				EnvVars: []string{"LLM_API_KEY"},
			},
			&cli.Float64Flag{
				Name:    "temperature",
				Usage:   "Sampling temperature for both model calls",
				Value:   defaults.AI.Temperature,
				EnvVars: []string{"LLM_TEMPERATURE"},
			},
			&cli.StringFlag{
				Name:    "embedding-provider",
				Usage:   "Embedding provider (openai, ollama, gemini)",
				Value:   defaults.AI.EmbeddingProvider,
				EnvVars: []string{"EMBEDDING_PROVIDER"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL (empty uses the provider default)",
				EnvVars: []string{"EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name (empty uses the provider default)",
				EnvVars: []string{"EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "embedding-api-key",
				Usage:   "Embedding API key (defaults to the provider's own variable)",
				EnvVars: []string{"EMBEDDING_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "vector-store",
				Usage:   "Catalog store backend (badger, pgvector)",
				Value:   defaults.VectorStore,
				EnvVars: []string{"VECTOR_STORE"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the BadgerDB catalog directory",
				Value:   defaults.BadgerPath,
				EnvVars: []string{"CATALOG_DB"},
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Usage:   "PostgreSQL connection string for the pgvector store",
				EnvVars: []string{"POSTGRES_DSN", "DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "postgres-table",
				Usage:   "Table holding catalog passages",
				Value:   defaults.PostgresTable,
				EnvVars: []string{"POSTGRES_TABLE"},
			},
			&cli.IntFlag{
				Name:    "embedding-dimension",
				Usage:   "Embedding size for the pgvector column",
				Value:   defaults.Dimension,
				EnvVars: []string{"EMBEDDING_DIMENSION"},
			},
			&cli.IntFlag{
				Name:    "top-k",
				Usage:   "Catalog passages retrieved per query",
				Value:   defaults.TopK,
				EnvVars: []string{"TOP_K"},
			},
			&cli.IntFlag{
				Name:    "fetch-k",
				Usage:   "Candidate passages re-ranked by MMR",
				Value:   defaults.FetchK,
				EnvVars: []string{"FETCH_K"},
			},
			&cli.Float64Flag{
				Name:    "mmr-lambda",
				Usage:   "MMR relevance weight between 0 (diverse) and 1 (relevant)",
				Value:   defaults.Lambda,
				EnvVars: []string{"MMR_LAMBDA"},
			},
			&cli.StringFlag{
				Name:    "tavily-api-key",
				Usage:   "Tavily web search API key",
				EnvVars: []string{"TAVILY_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "tavily-url",
				Usage:   "Tavily API base URL",
				Value:   defaults.TavilyBaseURL,
				EnvVars: []string{"TAVILY_URL"},
			},
			&cli.DurationFlag{
				Name:    "web-timeout",
				Usage:   "Timeout for web search requests",
				Value:   defaults.WebTimeout,
				EnvVars: []string{"WEB_TIMEOUT"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the chat API over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Address to listen on",
						Value:   defaults.ListenAddr,
						EnvVars: []string{"LISTEN_ADDR"},
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer one question and print the result as JSON",
				ArgsUsage: "<question>",
				Action:    askCommand,
			},
			{
				Name:   "index",
				Usage:  "Index catalog documents (.pdf, .txt, .md) into the catalog store",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing catalog documents",
						Value:   defaults.DataDir,
						EnvVars: []string{"DATA_DIR"},
					},
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Delete existing passages of each indexed file first",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent embedding workers (0 = NumCPU/2)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts for each embedding batch",
						Value: ingestion.DefaultMaxAttempts,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: time.Second,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print the number of indexed catalog passages",
				Action: statsCommand,
			},
		},
	}
}

// buildConfig assembles the application config from flags.
func buildConfig(c *cli.Context) (*config.Config, error) {
	provider := strings.ToLower(strings.TrimSpace(c.String("llm-provider")))
	embeddingProvider := strings.ToLower(strings.TrimSpace(c.String("embedding-provider")))

	apiKey := resolveAPIKey(c.String("llm-api-key"), provider)
	embeddingKey := resolveAPIKey(c.String("embedding-api-key"), embeddingProvider)
	if embeddingKey == "" && embeddingProvider == provider {
		embeddingKey = apiKey
	}

	cfg := config.Default()
	cfg.AI = ai.NewConfig(
		ai.WithProvider(provider),
		ai.WithHost(c.String("llm-host")),
		ai.WithModel(c.String("llm-model")),
		ai.WithAPIKey(apiKey),
		ai.WithTemperature(c.Float64("temperature")),
		ai.WithEmbeddingProvider(embeddingProvider),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithEmbeddingAPIKey(embeddingKey),
	)
	cfg.VectorStore = c.String("vector-store")
	cfg.BadgerPath = c.String("db")
	cfg.PostgresDSN = c.String("postgres-dsn")
	cfg.PostgresTable = c.String("postgres-table")
	cfg.Dimension = c.Int("embedding-dimension")
	cfg.TopK = c.Int("top-k")
	cfg.FetchK = c.Int("fetch-k")
	cfg.Lambda = c.Float64("mmr-lambda")
	cfg.TavilyAPIKey = c.String("tavily-api-key")
	cfg.TavilyBaseURL = c.String("tavily-url")
	cfg.WebTimeout = c.Duration("web-timeout")

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveAPIKey prefers an explicit key and otherwise reads the provider's
// own environment variable, so one provider's key never reaches another.
func resolveAPIKey(explicit, provider string) string {
	if explicit != "" {
		return explicit
	}
	if env := ai.APIKeyEnv(provider); env != "" {
		return os.Getenv(env)
	}
	return ""
}

func serveCommand(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	cfg.ListenAddr = c.String("listen")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := server.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	assistant, err := intellicourse.NewAssistant(cfg, intellicourse.WithObserver(metrics))
	if err != nil {
		return err
	}
	defer assistant.Close()

	srv, err := server.New(assistant, server.WithMetrics(metrics, reg))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}

func askCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a question is required")
	}

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	assistant, err := intellicourse.NewAssistant(cfg)
	if err != nil {
		return err
	}
	defer assistant.Close()

	result, err := assistant.Ask(c.Context, query)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func indexCommand(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	dataDir := c.String("data-dir")
	if dataDir == "" {
		return fmt.Errorf("data-dir is required")
	}
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("max-retries") <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	assistant, err := intellicourse.NewAssistant(cfg)
	if err != nil {
		return err
	}
	defer assistant.Close()

	opts := []ingestion.Option{
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingestion.WithReplace(c.Bool("replace")),
		ingestion.WithProgress(c.App.ErrWriter),
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}

	indexer, err := assistant.NewIndexer(c.Context, opts...)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}
	defer indexer.Release()

	fmt.Fprintf(c.App.ErrWriter, "Data directory: %s\n", dataDir)
	fmt.Fprintf(c.App.ErrWriter, "Vector store: %s\n", cfg.VectorStore)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	stats, err := indexer.IndexDirectory(c.Context, dataDir)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Loaded %d documents, split into %d chunks, stored %d passages in %s\n",
		stats.Documents, stats.Chunks, stats.Passages, stats.Elapsed.Round(time.Millisecond))
	if stats.Replaced > 0 {
		fmt.Fprintf(c.App.Writer, "Replaced %d existing passages\n", stats.Replaced)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	repo, err := intellicourse.OpenCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer repo.Close()

	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Catalog passages: %d\n", count)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
