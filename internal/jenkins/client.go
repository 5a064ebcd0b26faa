// Package jenkins wraps authenticated HTTP calls to the Jenkins REST surface:
// path normalization, timeout/cancellation, and tolerant coercion of the
// server's loosely-typed JSON responses.
package jenkins

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rendis/jenkgate/internal/config"
	"github.com/rendis/jenkgate/internal/credentials"
	"github.com/rendis/jenkgate/pkg/schema"
)

const maxResponseBody = 10 * 1024 * 1024 // 10MB

// apiErrorBodyLimit caps how much of a failing response body is carried in
// the error for diagnostics.
const apiErrorBodyLimit = 200

// Client issues authenticated, timeout-bounded requests against one Jenkins
// server. Immutable after construction; safe for concurrent use, each call
// opens its own bounded network operation.
type Client struct {
	baseURL    string
	authToken  string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	queries    *queryCache
}

// NewClient builds a Client from resolved settings and credentials.
// Fails with a configuration error when no server URL is present.
func NewClient(settings *config.Settings, creds credentials.Credentials, logger *slog.Logger) (*Client, error) {
	if settings == nil || settings.ServerURL == "" {
		return nil, schema.NewError(schema.ErrCodeConfiguration,
			"no Jenkins server URL configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	token := base64.StdEncoding.EncodeToString(
		[]byte(creds.Principal + ":" + creds.Secret))
	return &Client{
		baseURL:    strings.TrimRight(settings.ServerURL, "/"),
		authToken:  token,
		timeout:    settings.RequestTimeout,
		httpClient: &http.Client{},
		logger:     logger,
		queries:    newQueryCache(),
	}, nil
}

// apiResponse is the outcome of one request: status, headers, the JSON body
// coerced to a map (empty when the response declares a non-JSON content type
// or has no body), and the raw bytes for non-JSON endpoints like config.xml.
type apiResponse struct {
	status int
	header http.Header
	body   map[string]any
	raw    []byte
}

// request issues one HTTP call bounded by the configured timeout. The
// in-flight call is aborted at the deadline via context cancellation; abort
// and network failures surface as transport errors, non-2xx responses as API
// errors carrying the status and a body snippet. No automatic retries.
func (c *Client) request(ctx context.Context, method, path string, body io.Reader, contentType string) (*apiResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, body)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeTransport,
			"failed to build request for %s %s", method, path).WithCause(err)
	}
	req.Header.Set("Authorization", "Basic "+c.authToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return nil, schema.NewErrorf(schema.ErrCodeTransport,
				"request to %s timed out after %s", path, c.timeout).WithCause(err)
		}
		return nil, schema.NewErrorf(schema.ErrCodeTransport,
			"request to %s failed: %v", path, err).WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeTransport,
			"failed to read response from %s", path).WithCause(err)
	}

	c.logger.DebugContext(ctx, "jenkins request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(raw)
		if len(snippet) > apiErrorBodyLimit {
			snippet = snippet[:apiErrorBodyLimit]
		}
		return nil, schema.NewErrorf(schema.ErrCodeAPI,
			"jenkins returned status %d for %s %s: %s", resp.StatusCode, method, path, snippet).
			WithDetails(map[string]any{
				"status": resp.StatusCode,
				"body":   snippet,
			})
	}

	out := &apiResponse{
		status: resp.StatusCode,
		header: resp.Header,
		body:   map[string]any{},
		raw:    raw,
	}
	// Several endpoints return no body (or XML) on success; parse as JSON
	// only when the declared content type says so. Callers treat absent
	// fields as unset, never as errors.
	if strings.Contains(resp.Header.Get("Content-Type"), "json") && len(raw) > 0 {
		var parsed map[string]any
		if err := json.Unmarshal(raw, &parsed); err == nil && parsed != nil {
			out.body = parsed
		}
	}
	return out, nil
}

// get issues a GET for a JSON API path.
func (c *Client) get(ctx context.Context, path string) (*apiResponse, error) {
	return c.request(ctx, http.MethodGet, path, nil, "")
}
