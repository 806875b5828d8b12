package mock

import (
	"context"
	"sync"
)

// Call records the arguments of one Complete invocation.
type Call struct {
	SystemInstruction string
	UserContent       string
}

// MockLanguageModel is a test double for ai.LanguageModel.
// Responses are taken from CompleteFunc when set, otherwise from the
// Responses queue, otherwise DefaultResponse is returned.
type MockLanguageModel struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, systemInstruction, userContent string) (string, error)

	// Responses are returned in order, one per call, before DefaultResponse.
	Responses []string

	// DefaultResponse is returned once Responses is exhausted.
	DefaultResponse string

	mu    sync.Mutex
	calls []Call
}

// NewMockLanguageModel creates a mock model that replies with the given responses in order.
// Note: Returns concrete type to allow test assertions.
func NewMockLanguageModel(responses ...string) *MockLanguageModel {
	return &MockLanguageModel{Responses: responses}
}

// Complete records the call and returns the next configured response.
func (m *MockLanguageModel) Complete(ctx context.Context, systemInstruction, userContent string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{SystemInstruction: systemInstruction, UserContent: userContent})
	fn := m.CompleteFunc
	var next string
	if fn == nil {
		if len(m.Responses) > 0 {
			next = m.Responses[0]
			m.Responses = m.Responses[1:]
		} else {
			next = m.DefaultResponse
		}
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, systemInstruction, userContent)
	}
	return next, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockLanguageModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockLanguageModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls and injected behavior.
func (m *MockLanguageModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.Responses = nil
	m.DefaultResponse = ""
	m.CompleteFunc = nil
}
