// Package dataforseo provides a client for the DataForSEO Labs ranked
// keywords API.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/content-gap/internal/resilience"
)

const (
	defaultBaseURL     = "https://api.dataforseo.com/v3"
	rankedKeywordsPath = "/dataforseo_labs/google/ranked_keywords/live"
)

// Client defines the DataForSEO operations.
type Client interface {
	// RankedKeywords runs a single ranked_keywords/live task.
	RankedKeywords(ctx context.Context, req RankedKeywordsRequest) (*RankedKeywordsResponse, error)
	// FetchItems returns the raw ranked keyword items for a domain using the
	// client's request defaults. An empty slice means the domain has no
	// ranked keywords; an error means the fetch could not complete.
	FetchItems(ctx context.Context, domain string) ([]json.RawMessage, error)
	// Cost returns the total cost reported by the provider so far.
	Cost() float64
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps requests per second. Zero or negative disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *httpClient) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithCircuitBreaker guards requests with cb.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *httpClient) {
		c.breaker = cb
	}
}

// WithDefaults sets the request defaults used by FetchItems.
func WithDefaults(d RequestDefaults) Option {
	return func(c *httpClient) {
		c.defaults = d
	}
}

type httpClient struct {
	login    string
	password string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker
	defaults RequestDefaults

	mu   sync.Mutex
	cost float64
}

// NewClient creates a DataForSEO client authenticating with HTTP Basic auth.
func NewClient(login, password string, opts ...Option) Client {
	c := &httpClient{
		login:    login,
		password: password,
		baseURL:  defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:  rate.NewLimiter(rate.Limit(2), 1),
		retry:    resilience.DefaultRetryConfig(),
		breaker:  resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
		defaults: DefaultRequestDefaults(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("dataforseo", "ranked_keywords")
	}
	return c
}

func (c *httpClient) Cost() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cost
}

func (c *httpClient) FetchItems(ctx context.Context, domain string) ([]json.RawMessage, error) {
	resp, err := c.RankedKeywords(ctx, c.defaults.apply(RankedKeywordsRequest{Target: domain}))
	if err != nil {
		return nil, err
	}
	items := resp.Items()
	zap.L().Debug("dataforseo: ranked keywords retrieved",
		zap.String("target", domain),
		zap.Int("items", len(items)),
		zap.Float64("cost", resp.Cost),
	)
	return items, nil
}

func (c *httpClient) RankedKeywords(ctx context.Context, req RankedKeywordsRequest) (*RankedKeywordsResponse, error) {
	if req.Target == "" {
		return nil, eris.New("dataforseo: target is required")
	}

	// The endpoint takes a list of tasks; one target is sent per call.
	body, err := json.Marshal([]RankedKeywordsRequest{req})
	if err != nil {
		return nil, eris.Wrap(err, "dataforseo: marshal request")
	}

	resp, err := resilience.ExecuteVal(ctx, c.breaker, func(ctx context.Context) (*RankedKeywordsResponse, error) {
		return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*RankedKeywordsResponse, error) {
			return c.do(ctx, body)
		})
	})
	if err != nil {
		return nil, eris.Wrapf(err, "dataforseo: ranked keywords for %s", req.Target)
	}

	c.mu.Lock()
	c.cost += resp.Cost
	c.mu.Unlock()

	return resp, nil
}

// do performs one rate-limited POST and classifies the outcome.
func (c *httpClient) do(ctx context.Context, body []byte) (*RankedKeywordsResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "dataforseo: rate limit wait")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rankedKeywordsPath, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "dataforseo: create request")
	}
	httpReq.SetBasicAuth(c.login, c.password)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "dataforseo: send request")
	}
	defer httpResp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "dataforseo: read response")
	}

	if httpResp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("dataforseo: unexpected status %d: %s", httpResp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(httpResp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, httpResp.StatusCode)
		}
		return nil, statusErr
	}

	var result RankedKeywordsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "dataforseo: unmarshal response")
	}

	if err := checkStatus(result.StatusCode, result.StatusMessage, "request"); err != nil {
		return nil, err
	}
	if len(result.Tasks) > 0 {
		task := result.Tasks[0]
		if task.StatusCode == StatusNoSearchResults {
			return &result, nil
		}
		if err := checkStatus(task.StatusCode, task.StatusMessage, "task "+task.ID); err != nil {
			return nil, err
		}
	}

	return &result, nil
}

// checkStatus converts an in-band provider status into a
// *resilience.StatusError.
func checkStatus(code int, message, scope string) error {
	if code == StatusOK {
		return nil
	}
	return &resilience.StatusError{Scope: "dataforseo: " + scope, Code: code, Message: message}
}
