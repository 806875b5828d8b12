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
	"log/slog"
	"strings"

	"github.com/poiesic/intellicourse/ai"
	"github.com/poiesic/intellicourse/core"
)

// Generator synthesizes answers from evidence.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a generator. A nil logger uses slog.Default().
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// Generate renders evidence into context and asks model for an answer.
// The trimmed reply is returned unchanged.
func (g *Generator) Generate(ctx context.Context, model ai.LanguageModel, query string, evidence core.Evidence) (string, error) {
	userContent := fmt.Sprintf(userContentTemplate, query, BuildContext(evidence))

	answer, err := model.Complete(ctx, generationInstruction, userContent)
	if err != nil {
		g.logger.Error("answer generation failed", "err", err)
		return "", fmt.Errorf("%w: %w", core.ErrGeneration, err)
	}
	return strings.TrimSpace(answer), nil
}

// BuildContext renders evidence as one line per item, in order. Empty or
// nil evidence yields NoContext.
func BuildContext(evidence core.Evidence) string {
	var lines []string

	switch ev := evidence.(type) {
	case core.CatalogEvidence:
		lines = make([]string, 0, len(ev))
		for _, p := range ev {
			lines = append(lines, CatalogLine(p))
		}
	case core.WebEvidence:
		lines = make([]string, 0, len(ev))
		for _, r := range ev {
			lines = append(lines, WebLine(r))
		}
	}

	if len(lines) == 0 {
		return NoContext
	}
	return strings.Join(lines, "\n")
}

// CatalogLine formats a catalog passage as a context line.
func CatalogLine(p core.CatalogPassage) string {
	p = p.WithDefaults()
	return fmt.Sprintf("[source: %s, p.%s] %s", p.Source, p.Page, singleLine(p.Content))
}

// WebLine formats a web result as a context line.
func WebLine(r core.WebResult) string {
	r = r.WithDefaults()
	return fmt.Sprintf("[web: %s | %s] %s", r.Title, r.URL, singleLine(r.Content))
}

func singleLine(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}
