// Authenticated request gateway for the Wrapped backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// TokenSource is read by the [Gateway] on every authenticated call.
type TokenSource interface {
	Get() (*models.Credentials, error)
}

// Gateway performs HTTP requests against the backend, attaching the bearer token and mapping failures uniformly.
//
// It never retries, never refreshes tokens and never writes to its [TokenSource].
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	logger     *log.Logger
}

// GatewayOption configures a [Gateway].
type GatewayOption func(*Gateway)

// WithHTTPClient replaces [http.DefaultClient].
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) {
		if c != nil {
			g.httpClient = c
		}
	}
}

// WithRateLimit paces requests to rps per second. Zero or less disables pacing.
func WithRateLimit(rps float64) GatewayOption {
	return func(g *Gateway) {
		if rps > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway creates a [Gateway] rooted at baseURL.
func NewGateway(baseURL string, tokens TokenSource, opts ...GatewayOption) *Gateway {
	if baseURL == "" {
		baseURL = "http://localhost:8000/api/"
	}

	g := &Gateway{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Inf, 0),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BaseURL returns the configured backend root.
func (g *Gateway) BaseURL() string { return g.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
	}
	return nil
}

// RequestError is returned for any non-2xx response.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Unwrap exposes [shared.ErrRequestFailed], plus [shared.ErrServiceUnavailable] for 503 responses.
func (e *RequestError) Unwrap() []error {
	if e.Status == http.StatusServiceUnavailable {
		return []error{shared.ErrRequestFailed, shared.ErrServiceUnavailable}
	}
	return []error{shared.ErrRequestFailed}
}

// NotFound reports a 404 response.
func (e *RequestError) NotFound() bool { return e.Status == http.StatusNotFound }

// Unauthorized reports a 401 or 403 response.
func (e *RequestError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// AsRequestError unwraps err into a [RequestError].
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// Call performs an authenticated request.
//
// When the token source holds no access token it returns [shared.ErrNotAuthenticated] without any network I/O.
// On a non-2xx status both the response and a [*RequestError] are returned.
func (g *Gateway) Call(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	creds, err := g.tokens.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read token store: %w", err)
	}
	if !creds.Valid() {
		return nil, shared.ErrNotAuthenticated
	}
	return g.do(ctx, method, path, body, creds.OAuth2())
}

// CallPublic performs a request without credentials.
func (g *Gateway) CallPublic(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	return g.do(ctx, method, path, body, nil)
}

func (g *Gateway) do(ctx context.Context, method, path string, body any, token *oauth2.Token) (*APIResponse, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reader, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	fullURL := JoinURL(g.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		token.SetAuthHeader(req)
	}

	g.logger.Debug("request", "method", method, "url", fullURL, "auth", token != nil)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrNetwork, err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	g.logger.Debug("response", "method", method, "url", fullURL, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiResp, &RequestError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(apiResp),
		}
	}
	return apiResp, nil
}

// encodeBody JSON-encodes v. Raw bytes and [json.RawMessage] are sent as-is.
func encodeBody(v any) (io.Reader, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request body: %v", shared.ErrInvalidInput, err)
	}
	return bytes.NewReader(data), nil
}

// errorMessage extracts a readable message from an error response.
func errorMessage(r *APIResponse) string {
	if obj, ok := r.JSONData.(map[string]any); ok {
		for _, k := range []string{"error", "detail", "message"} {
			if s, ok := obj[k].(string); ok && s != "" {
				return s
			}
		}

		// field validation errors: {"username": ["already exists"]}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := []string{}
		for _, k := range keys {
			switch v := obj[k].(type) {
			case []any:
				msgs := []string{}
				for _, m := range v {
					if s, ok := m.(string); ok {
						msgs = append(msgs, s)
					}
				}
				if len(msgs) > 0 {
					parts = append(parts, k+": "+strings.Join(msgs, " "))
				}
			case string:
				parts = append(parts, k+": "+v)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	if s := strings.TrimSpace(string(r.Body)); s != "" {
		return s
	}
	return http.StatusText(r.StatusCode)
}

// JoinURL joins path onto base with exactly one slash between them.
func JoinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
