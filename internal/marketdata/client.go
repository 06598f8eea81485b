// Package marketdata provides the Tradier market data client used by the
// analytics endpoints: option expirations, chains with greeks, quotes, and
// daily price history.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	liveBaseURL    = "https://api.tradier.com/v1"
	sandboxBaseURL = "https://sandbox.tradier.com/v1"

	defaultTimeout = 10 * time.Second
)

// APIError represents an API error with status code and response body
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Body)
}

// Client is the Tradier market data API client.
type Client struct {
	client  *http.Client
	apiKey  string
	baseURL string
	retry   RetryPolicy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client (tests, custom transport).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithTimeout sets the HTTP client timeout duration.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(cl *Client) {
		if timeout > 0 {
			cl.client.Timeout = timeout
		}
	}
}

// WithBaseURL overrides the API base URL (tests, proxies).
func WithBaseURL(baseURL string) ClientOption {
	return func(cl *Client) {
		if baseURL != "" {
			cl.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithRetryPolicy configures bounded retries for transient upstream failures.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(cl *Client) {
		cl.retry = p.normalized()
	}
}

// NewClient creates a Tradier market data client. sandbox selects the
// sandbox environment base URL.
func NewClient(apiKey string, sandbox bool, opts ...ClientOption) *Client {
	baseURL := liveBaseURL
	if sandbox {
		baseURL = sandboxBaseURL
	}

	c := &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		apiKey:  apiKey,
		baseURL: baseURL,
		retry:   DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetExpirations retrieves available expiration dates for options on a symbol.
func (c *Client) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("includeAllRoots", "true")
	params.Set("strikes", "false")
	endpoint := c.baseURL + "/markets/options/expirations?" + params.Encode()

	var response ExpirationsResponse
	if err := c.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return response.Expirations.Date, nil
}

// GetOptionChain retrieves the option chain for a symbol and expiration date.
// Greeks are always requested since exposure analysis depends on them.
func (c *Client) GetOptionChain(ctx context.Context, symbol, expiration string) (*ChainResponse, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("expiration", expiration)
	params.Set("greeks", "true")
	endpoint := c.baseURL + "/markets/options/chains?" + params.Encode()

	var response ChainResponse
	if err := c.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// GetQuotes retrieves quotes for one or more symbols.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) (*QuotesResponse, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("greeks", "false")
	endpoint := c.baseURL + "/markets/quotes?" + params.Encode()

	var response QuotesResponse
	if err := c.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// GetHistory retrieves daily price history for a symbol. interval defaults
// to "daily"; start defaults to 30 days ago and end to today.
func (c *Client) GetHistory(ctx context.Context, symbol, interval, startDate, endDate string) (*HistoryResponse, error) {
	if interval == "" {
		interval = "daily"
	}
	if startDate == "" {
		startDate = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02")
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("start", startDate)
	params.Set("end", endDate)
	endpoint := c.baseURL + "/markets/history?" + params.Encode()

	var response HistoryResponse
	if err := c.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// get performs a GET with bounded retries for transient failures.
func (c *Client) get(ctx context.Context, endpoint string, response interface{}) error {
	var lastErr error
	backoff := c.retry.InitialBackoff

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("request canceled: %w", err)
		}

		err := c.doRequest(ctx, endpoint, response)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransientError(err) || attempt == c.retry.MaxRetries {
			return lastErr
		}

		select {
		case <-time.After(backoff):
			backoff = c.retry.nextBackoff(backoff)
		case <-ctx.Done():
			return fmt.Errorf("request canceled during backoff: %w", ctx.Err())
		}
	}

	return lastErr
}

func (c *Client) doRequest(ctx context.Context, endpoint string, response interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}

	req.Header.Add("Authorization", "Bearer "+c.apiKey)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("User-Agent", "options-dashboard/1.0 (+tradier)")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)) // 64KB cap to avoid huge payloads
		if readErr != nil {
			return &APIError{Status: resp.StatusCode, Body: fmt.Sprintf("GET %s -> failed to read error body", endpoint)}
		}
		return &APIError{Status: resp.StatusCode, Body: fmt.Sprintf("GET %s -> %s", endpoint, string(body))}
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(response); err != nil && err != io.EOF {
		return err
	}
	return nil
}
