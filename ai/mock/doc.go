// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.LanguageModel, ai.Embedder,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
// All mocks are safe for concurrent use.
//
// # Usage in Tests
//
//	// Scripted replies: first the route token, then the answer
//	model := mock.NewMockLanguageModel("course", "CS101 requires MATH100 (source: CS101.pdf, p.3)")
//
//	// Custom behavior injection
//	model.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
//	    return "", errors.New("provider unavailable")
//	}
//
//	// Check calls
//	calls := model.Calls()
//
// # Default Behavior
//
//   - MockLanguageModel: Returns queued Responses, then DefaultResponse
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockProvider: Aggregates mock model and embedder
package mock
