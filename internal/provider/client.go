package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of an error response is kept as the message.
const maxErrorBody = 4096

// Options configures a Client.
type Options struct {
	// Name identifies the provider in errors and logs, e.g. "openai" or "qdrant".
	Name    string
	BaseURL string
	Headers map[string]string
	// Timeout bounds each attempt; 0 disables the per-call timeout.
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64 // 0 means unlimited
	HTTPClient        *http.Client
	Logger            *zap.Logger
}

// Client sends JSON requests to one provider with throttling, per-call timeouts and bounded retry.
type Client struct {
	name    string
	baseURL string
	headers map[string]string
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	retry   RetryPolicy
	logger  *zap.Logger
}

// NewClient creates a client from opts.
func NewClient(opts Options) *Client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		name:    opts.Name,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		headers: opts.Headers,
		http:    hc,
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(limit, 1),
		retry:   DefaultRetryPolicy(opts.MaxRetries),
		logger:  logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// DoJSON sends in (if non-nil) as the JSON body of method path, and decodes a 2xx response into out (if non-nil).
// Failures are returned as *Error; transient ones are retried.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return &Error{Provider: c.name, Op: opName(method, path), Message: "encode request", Err: err}
		}
	}
	return Retry(ctx, c.retry, c.logger, func(ctx context.Context) error {
		return c.do(ctx, method, path, body, out)
	})
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	op := opName(method, path)
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Provider: c.name, Op: op, Err: err}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Provider: c.name, Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Cancellation is final; a per-call deadline or network failure is worth another try.
		return &Error{Provider: c.name, Op: op, Retryable: !errors.Is(err, context.Canceled), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Provider:   c.name,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data, resp.Status),
			Retryable:  retryableStatus(resp.StatusCode),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Provider: c.name, Op: op, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

func opName(method, path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return method + " " + path
}

// errorMessage extracts a readable message from common provider error shapes:
// {"error":{"message":...}} (OpenAI), {"status":{"error":...}} (Qdrant), {"error":"..."}.
func errorMessage(data []byte, status string) string {
	var shaped struct {
		Error  json.RawMessage `json:"error"`
		Status json.RawMessage `json:"status"`
	}
	if json.Unmarshal(data, &shaped) == nil {
		var nested struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		var flat string
		switch {
		case json.Unmarshal(shaped.Error, &nested) == nil && nested.Message != "":
			return nested.Message
		case json.Unmarshal(shaped.Error, &flat) == nil && flat != "":
			return flat
		case json.Unmarshal(shaped.Status, &nested) == nil && nested.Error != "":
			return nested.Error
		}
	}
	if s := strings.TrimSpace(string(data)); s != "" {
		return s
	}
	return status
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
