package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/config"
	"github.com/poiesic/intellicourse/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// configCaptureApp returns the real app with an extra command that captures the
// config built from global flags.
func configCaptureApp(out **config.Config, outErr *error) *cli.App {
	app := newApp()
	app.Commands = append(app.Commands, &cli.Command{
		Name: "capture-config",
		Action: func(c *cli.Context) error {
			*out, *outErr = buildConfig(c)
			return nil
		},
	})
	return app
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func TestAppCommands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"serve", "ask", "index", "stats"} {
		assert.NotNil(t, findCommand(t, app, name))
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "serve")

	var listen *cli.StringFlag
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == "listen" {
			listen = f
		}
	}
	require.NotNil(t, listen)
	assert.Equal(t, ":8000", listen.Value)
	assert.Equal(t, []string{"LISTEN_ADDR"}, listen.EnvVars)
}

func TestIndexCommandFlags(t *testing.T) {
	cmd := findCommand(t, newApp(), "index")

	values := map[string]any{}
	for _, flag := range cmd.Flags {
		switch f := flag.(type) {
		case *cli.StringFlag:
			values[f.Name] = f.Value
		case *cli.IntFlag:
			values[f.Name] = f.Value
		case *cli.BoolFlag:
			values[f.Name] = f.Value
		}
	}

	assert.Equal(t, filepath.Join("data", "sample"), values["data-dir"])
	assert.Equal(t, 32, values["batch-size"])
	assert.Equal(t, 3, values["max-retries"])
	assert.Equal(t, false, values["replace"])
}

func TestBuildConfig_Defaults(t *testing.T) {
	clearProviderEnv(t)
	var cfg *config.Config
	var err error
	app := configCaptureApp(&cfg, &err)

	require.NoError(t, app.Run([]string{"intellicourse", "capture-config"}))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, config.VectorStoreBadger, cfg.VectorStore)
	assert.Equal(t, "ollama", cfg.AI.Provider)
	assert.Equal(t, 4, cfg.TopK)
	assert.Equal(t, 20, cfg.FetchK)
	assert.InDelta(t, 0.5, cfg.Lambda, 1e-9)
}

func TestBuildConfig_FlagsAndEnv(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("TOP_K", "7")
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	var cfg *config.Config
	var err error
	app := configCaptureApp(&cfg, &err)

	require.NoError(t, app.Run([]string{"intellicourse", "--fetch-k", "30", "--tavily-api-key", "tvly", "capture-config"}))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.TopK)
	assert.Equal(t, 30, cfg.FetchK)
	assert.Equal(t, "groq", cfg.AI.Provider)
	assert.Equal(t, ai.GroqHost, cfg.AI.Host)
	assert.Equal(t, "gsk-test", cfg.AI.APIKey)
	assert.Empty(t, cfg.AI.EmbeddingAPIKey, "ollama embeddings need no key")
	assert.Equal(t, "tvly", cfg.TavilyAPIKey)
}

// clearProviderEnv blanks variables that would leak the developer's shell
// settings into provider resolution.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"LLM_HOST", "LLM_MODEL", "LLM_API_KEY",
		"EMBEDDING_HOST", "EMBEDDING_MODEL", "EMBEDDING_API_KEY",
		"GROQ_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("EMBEDDING_PROVIDER", "ollama")
}

func TestBuildConfig_ProviderResolution(t *testing.T) {
	tests := []struct {
		name              string
		env               map[string]string
		wantHost          string
		wantKey           string
		wantModel         string
		wantEmbeddingHost string
		wantEmbeddingKey  string
	}{
		{
			name:              "groq",
			env:               map[string]string{"LLM_PROVIDER": "groq", "GROQ_API_KEY": "gsk-groq", "GOOGLE_API_KEY": "g-key"},
			wantHost:          ai.GroqHost,
			wantKey:           "gsk-groq",
			wantModel:         "llama-3.3-70b-versatile",
			wantEmbeddingHost: ai.OllamaHost,
		},
		{
			name:              "gemini ignores the groq key",
			env:               map[string]string{"LLM_PROVIDER": "gemini", "GROQ_API_KEY": "gsk-groq", "GOOGLE_API_KEY": "g-key"},
			wantHost:          "",
			wantKey:           "g-key",
			wantModel:         "gemini-1.5-pro",
			wantEmbeddingHost: ai.OllamaHost,
		},
		{
			name:              "openai chat and embeddings",
			env:               map[string]string{"LLM_PROVIDER": "openai", "EMBEDDING_PROVIDER": "openai", "OPENAI_API_KEY": "sk-openai"},
			wantHost:          ai.OpenAIHost,
			wantKey:           "sk-openai",
			wantModel:         "gpt-4o-mini",
			wantEmbeddingHost: ai.OpenAIHost,
			wantEmbeddingKey:  "sk-openai",
		},
		{
			name:              "groq chat with openai embeddings",
			env:               map[string]string{"LLM_PROVIDER": "groq", "EMBEDDING_PROVIDER": "openai", "GROQ_API_KEY": "gsk-groq", "OPENAI_API_KEY": "sk-openai"},
			wantHost:          ai.GroqHost,
			wantKey:           "gsk-groq",
			wantModel:         "llama-3.3-70b-versatile",
			wantEmbeddingHost: ai.OpenAIHost,
			wantEmbeddingKey:  "sk-openai",
		},
		{
			name:              "ollama",
			env:               map[string]string{},
			wantHost:          ai.OllamaHost,
			wantModel:         "qwen2.5:3b",
			wantEmbeddingHost: ai.OllamaHost,
		},
		{
			name:              "explicit key and host override",
			env:               map[string]string{"LLM_PROVIDER": "groq", "LLM_API_KEY": "override", "GROQ_API_KEY": "gsk-groq", "LLM_HOST": "http://proxy:8080"},
			wantHost:          "http://proxy:8080/v1",
			wantKey:           "override",
			wantModel:         "llama-3.3-70b-versatile",
			wantEmbeddingHost: ai.OllamaHost,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearProviderEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var cfg *config.Config
			var err error
			app := configCaptureApp(&cfg, &err)

			require.NoError(t, app.Run([]string{"intellicourse", "capture-config"}))
			require.NoError(t, err)

			assert.Equal(t, tt.wantHost, cfg.AI.Host)
			assert.Equal(t, tt.wantKey, cfg.AI.APIKey)
			assert.Equal(t, tt.wantModel, cfg.AI.Model)
			assert.Equal(t, tt.wantEmbeddingHost, cfg.AI.EmbeddingHost)
			assert.Equal(t, tt.wantEmbeddingKey, cfg.AI.EmbeddingAPIKey)
		})
	}
}

func TestBuildConfig_Invalid(t *testing.T) {
	var cfg *config.Config
	var err error
	app := configCaptureApp(&cfg, &err)

	require.NoError(t, app.Run([]string{"intellicourse", "--vector-store", "chroma", "capture-config"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.Nil(t, cfg)
}

func TestAskCommand_RequiresQuestion(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"intellicourse", "ask", "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question is required")
}

func TestStatsCommand_EmptyCatalog(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	dbPath := filepath.Join(t.TempDir(), "catalog")
	err := app.Run([]string{"intellicourse", "--db", dbPath, "stats"})
	require.NoError(t, err)
	assert.Equal(t, "Catalog passages: 0\n", out.String())
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "info"},
		{level: "WARN"},
		{level: "error"},
		{level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			app := &cli.App{
				Name:   "intellicourse",
				Writer: os.Stdout,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "log-level", Value: "info"},
				},
				Before: setupLogger,
				Action: func(c *cli.Context) error { return nil },
			}

			err := app.Run([]string{"intellicourse", "--log-level", tt.level})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
		})
	}
}
