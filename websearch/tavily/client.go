// Package tavily implements websearch.Searcher with the Tavily search API.
package tavily

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/poiesic/intellicourse/core"
	"github.com/poiesic/intellicourse/websearch"
)

const (
	// DefaultBaseURL is the public Tavily API endpoint.
	DefaultBaseURL = "https://api.tavily.com"
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultRetryCount is the number of retries on network errors and 5xx/429 responses.
	DefaultRetryCount = 2
)

// Client searches the web through Tavily.
type Client struct {
	http       *resty.Client
	apiKey     string
	baseURL    string
	timeout    time.Duration
	retries    int
	maxResults int
	depth      string
	logger     *slog.Logger
}

var _ websearch.Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) error {
		if url != "" {
			c.baseURL = url
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.timeout = d
		return nil
	}
}

// WithRetryCount sets how many times failed requests are retried.
func WithRetryCount(n int) Option {
	return func(c *Client) error {
		c.retries = max(n, 0)
		return nil
	}
}

// WithMaxResults sets the number of results requested, capped at websearch.MaxResults.
func WithMaxResults(n int) Option {
	return func(c *Client) error {
		if n <= 0 || n > websearch.MaxResults {
			n = websearch.MaxResults
		}
		c.maxResults = n
		return nil
	}
}

// WithSearchDepth sets the Tavily search depth ("basic" or "advanced").
func WithSearchDepth(depth string) Option {
	return func(c *Client) error {
		c.depth = depth
		return nil
	}
}

// NewClient creates a Tavily client. An API key is required.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, websearch.ErrAPIKeyRequired)
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		retries:    DefaultRetryCount,
		maxResults: websearch.MaxResults,
		depth:      "basic",
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.http = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetRetryCount(c.retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	c.http.AddRetryCondition(retryCondition)

	return c, nil
}

// retryCondition retries network errors, rate limiting and server errors.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == 429 || code == 408
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

// apiError is the error body Tavily returns.
type apiError struct {
	Detail any `json:"detail"`
}

// Search queries Tavily and returns up to the configured number of results in provider order.
func (c *Client) Search(ctx context.Context, query string) ([]core.WebResult, error) {
	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{
			APIKey:      c.apiKey,
			Query:       query,
			MaxResults:  c.maxResults,
			SearchDepth: c.depth,
		}).
		SetResult(&result).
		SetError(&apiError{}).
		Post("/search")
	if err != nil {
		c.logger.Error("web search request failed", "err", err)
		return nil, fmt.Errorf("tavily request: %w", err)
	}

	if resp.IsError() {
		detail := resp.String()
		if apiErr, ok := resp.Error().(*apiError); ok && apiErr != nil && apiErr.Detail != nil {
			detail = fmt.Sprint(apiErr.Detail)
		}
		c.logger.Error("web search returned error", "status", resp.StatusCode(), "detail", detail)
		return nil, fmt.Errorf("%w: status %d: %s", websearch.ErrSearchFailed, resp.StatusCode(), detail)
	}

	results := make([]core.WebResult, 0, min(len(result.Results), c.maxResults))
	for _, r := range result.Results {
		if len(results) == c.maxResults {
			break
		}
		results = append(results, core.WebResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}

	c.logger.Debug("web search complete", "results", len(results), "elapsed", resp.Time())
	return results, nil
}
