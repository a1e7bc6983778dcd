// ABOUTME: Executes compiled outbound requests against the upstream API
// ABOUTME: Maps non-2xx responses and decode failures to distinct error types

package invoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds outbound calls when the endpoint declares no
// timeout hint of its own.
const DefaultTimeout = 30 * time.Second

// ErrDecodeResponse wraps failures to read or parse an otherwise successful
// upstream response. Distinct from HTTP-level failures.
var ErrDecodeResponse = errors.New("decoding upstream response")

// UpstreamError is a non-2xx response from the target API.
type UpstreamError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.Status, e.StatusText, e.Body)
}

// Result is a successful upstream response.
type Result struct {
	Status  int
	Elapsed time.Duration
	IsJSON  bool
	Data    any    // decoded JSON when IsJSON
	Raw     string // response text when not JSON
}

// Text renders the result for an MCP text content block: pretty-printed
// JSON when the upstream spoke JSON, the raw body otherwise.
func (r *Result) Text() string {
	if !r.IsJSON {
		return r.Raw
	}
	pretty, err := json.MarshalIndent(r.Data, "", "  ")
	if err != nil {
		return r.Raw
	}
	return string(pretty)
}

// Caller executes compiled requests. Safe for concurrent use.
type Caller struct {
	client         *http.Client
	logger         *slog.Logger
	userAgent      string
	defaultTimeout time.Duration
}

// CallerConfig holds configuration for a Caller.
type CallerConfig struct {
	Client         *http.Client
	Logger         *slog.Logger
	UserAgent      string
	DefaultTimeout time.Duration
}

// NewCaller creates a Caller with the given configuration. Zero-value
// fields fall back to sensible defaults.
func NewCaller(cfg CallerConfig) *Caller {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Caller{
		client:         client,
		logger:         logger.With("component", "invoke"),
		userAgent:      cfg.UserAgent,
		defaultTimeout: timeout,
	}
}

// Do executes a compiled request. timeoutMs is the endpoint's declared
// timeout hint; zero means the caller default applies.
func (c *Caller) Do(ctx context.Context, compiled *Request, timeoutMs int) (*Result, error) {
	timeout := c.defaultTimeout
	if timeoutMs > 0 {
		timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if compiled.Body != nil {
		bodyReader = bytes.NewReader(compiled.Body)
	}

	req, err := http.NewRequestWithContext(ctx, compiled.Method, compiled.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	for key, value := range compiled.Headers {
		req.Header.Set(key, value)
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling upstream API: %w", err)
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, fmt.Errorf("%w: %v", ErrDecodeResponse, err)
		}
		body = nil
	}

	c.logger.Debug("upstream call",
		"method", compiled.Method,
		"url", compiled.URL,
		"status", resp.StatusCode,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	result := &Result{
		Status:  resp.StatusCode,
		Elapsed: elapsed,
		Raw:     string(body),
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") && len(body) > 0 {
		if err := json.Unmarshal(body, &result.Data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeResponse, err)
		}
		result.IsJSON = true
	}

	return result, nil
}
