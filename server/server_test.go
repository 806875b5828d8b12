package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/intellicourse/agent"
	"github.com/poiesic/intellicourse/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askerFunc func(ctx context.Context, query string) (*core.ConversationResult, error)

func (f askerFunc) Ask(ctx context.Context, query string) (*core.ConversationResult, error) {
	return f(ctx, query)
}

func courseResult(query string) *core.ConversationResult {
	return &core.ConversationResult{
		Query:      query,
		Route:      core.RouteCourse,
		SourceTool: core.SourceCourseDB,
		Answer:     "CS101 requires MATH100 (source: CS101.pdf, p.3).",
		Docs: []core.DocSnippet{
			{Source: "CS101.pdf", Page: 3, Snippet: "Requires MATH100."},
			{Source: "notes.md", Page: core.PageUnknown, Snippet: "Untagged."},
		},
	}
}

func newTestServer(t *testing.T, asker Asker) (*httptest.Server, *prometheus.Registry, *Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	srv, err := New(asker, WithMetrics(metrics, reg))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, reg, metrics
}

func postChat(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealth(t *testing.T) {
	ts, _, _ := newTestServer(t, askerFunc(func(ctx context.Context, q string) (*core.ConversationResult, error) {
		return nil, errors.New("unused")
	}))

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestChat_Course(t *testing.T) {
	var received string
	ts, _, _ := newTestServer(t, askerFunc(func(ctx context.Context, q string) (*core.ConversationResult, error) {
		received = q
		return courseResult(q), nil
	}))

	resp, body := postChat(t, ts, `{"query":"What are the prerequisites for CS101?"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "What are the prerequisites for CS101?", received)

	assert.Equal(t, "course_db", body["source_tool"])
	assert.Equal(t, "course", body["route"])
	assert.Contains(t, body["answer"], "MATH100")

	ctx, ok := body["retrieved_context"].([]any)
	require.True(t, ok)
	require.Len(t, ctx, 2)
	first := ctx[0].(map[string]any)
	assert.Equal(t, "CS101.pdf", first["source"])
	assert.Equal(t, float64(3), first["page"])
	assert.Nil(t, ctx[1].(map[string]any)["page"])
}

func TestChat_Web(t *testing.T) {
	ts, _, _ := newTestServer(t, askerFunc(func(ctx context.Context, q string) (*core.ConversationResult, error) {
		return &core.ConversationResult{
			Query:      q,
			Route:      core.RouteWeb,
			SourceTool: core.SourceWeb,
			Answer:     "Demand is growing.",
			WebResults: []core.WebResult{{Title: "Jobs", URL: "https://example.com", Content: "growing"}},
		}, nil
	}))

	resp, body := postChat(t, ts, `{"query":"job market for data scientists"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "web", body["source_tool"])
	assert.Nil(t, body["retrieved_context"])
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "malformed body", body: `{"query":`, status: http.StatusBadRequest},
		{name: "empty query", body: `{"query":""}`, err: core.ErrEmptyQuery, status: http.StatusBadRequest},
		{name: "configuration", body: `{"query":"q"}`, err: fmt.Errorf("%w: unknown provider", core.ErrConfiguration), status: http.StatusInternalServerError},
		{name: "retrieval", body: `{"query":"q"}`, err: fmt.Errorf("%w: timeout", core.ErrRetrieval), status: http.StatusBadGateway},
		{name: "generation", body: `{"query":"q"}`, err: fmt.Errorf("%w: 500", core.ErrGeneration), status: http.StatusBadGateway},
		{name: "routing", body: `{"query":"q"}`, err: fmt.Errorf("%w: down", core.ErrRouting), status: http.StatusBadGateway},
		{name: "unknown", body: `{"query":"q"}`, err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _, _ := newTestServer(t, askerFunc(func(ctx context.Context, q string) (*core.ConversationResult, error) {
				return nil, tt.err
			}))

			resp, body := postChat(t, ts, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestChat_BodyTooLarge(t *testing.T) {
	var calls int
	ts, _, _ := newTestServer(t, askerFunc(func(ctx context.Context, q string) (*core.ConversationResult, error) {
		calls++
		return courseResult(q), nil
	}))

	payload := `{"query":"` + strings.Repeat("a", MaxRequestBytes) + `"}`
	resp, body := postChat(t, ts, payload)

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "request body too large", body["error"])
	assert.Zero(t, calls)
}

func TestChat_MethodNotAllowed(t *testing.T) {
	ts, _, _ := newTestServer(t, askerFunc(func(ctx context.Context, q string) (*core.ConversationResult, error) {
		return courseResult(q), nil
	}))

	resp, err := http.Get(ts.URL + "/chat")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	ts, reg, metrics := newTestServer(t, askerFunc(func(ctx context.Context, q string) (*core.ConversationResult, error) {
		return courseResult(q), nil
	}))

	postChat(t, ts, `{"query":"CS101?"}`)
	metrics.Routed(agent.Decision{Route: core.RouteCourse, Fallback: true})
	metrics.StageFinished(agent.StageRetrieving, 10*time.Millisecond, errors.New("x"))
	metrics.Completed(courseResult("q"))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)

	assert.Contains(t, body, `intellicourse_http_requests_total{endpoint="/chat",method="POST",status="200"} 1`)
	assert.Contains(t, body, "intellicourse_route_fallbacks_total 1")
	assert.Contains(t, body, `intellicourse_stage_failures_total{stage="retrieving"} 1`)
	assert.Contains(t, body, `intellicourse_queries_total{route="course",source_tool="course_db"} 1`)

	_, err = NewMetrics(reg)
	assert.Error(t, err, "collectors cannot be registered twice")
}

func TestListenAndServe_Shutdown(t *testing.T) {
	srv, err := New(askerFunc(func(ctx context.Context, q string) (*core.ConversationResult, error) {
		return courseResult(q), nil
	}), WithShutdownTimeout(time.Second))
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNew_RequiresAsker(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
