package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/intellicourse/ai/mock"
	"github.com/poiesic/intellicourse/core"
)

// fakeRetriever is a CatalogRetriever test double.
type fakeRetriever struct {
	RetrieveFunc func(ctx context.Context, query string) (core.CatalogEvidence, error)
	Passages     core.CatalogEvidence

	mu    sync.Mutex
	calls int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string) (core.CatalogEvidence, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.RetrieveFunc != nil {
		return f.RetrieveFunc(ctx, query)
	}
	return append(core.CatalogEvidence(nil), f.Passages...), nil
}

func (f *fakeRetriever) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// scriptedModel answers the router with route and the generator with answer.
func scriptedModel(route, answer string) *mock.MockLanguageModel {
	m := mock.NewMockLanguageModel()
	m.CompleteFunc = func(ctx context.Context, systemInstruction, userContent string) (string, error) {
		if systemInstruction == routerInstruction {
			return route, nil
		}
		return answer, nil
	}
	return m
}

// keywordModel routes with the keyword heuristic and echoes a fixed answer.
func keywordModel(answer string) *mock.MockLanguageModel {
	m := mock.NewMockLanguageModel()
	m.CompleteFunc = func(ctx context.Context, systemInstruction, userContent string) (string, error) {
		if systemInstruction == routerInstruction {
			return "  " + strings.ToUpper(FallbackRoute(userContent).String()) + "\n", nil
		}
		return answer, nil
	}
	return m
}

func catalogPassages(n int) core.CatalogEvidence {
	passages := make(core.CatalogEvidence, n)
	for i := range passages {
		passages[i] = core.CatalogPassage{
			Content: "CS101 requires MATH100.",
			Source:  "CS101.pdf",
			Page:    core.Page(i + 1),
		}
	}
	return passages
}

func webResults(n int) []core.WebResult {
	results := make([]core.WebResult, n)
	for i := range results {
		results[i] = core.WebResult{
			Title:   "Data science jobs",
			URL:     "https://example.com/jobs",
			Content: "Demand for data scientists keeps growing.",
		}
	}
	return results
}
