package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
	"github.com/custodia-labs/caseflow-cli/internal/core/ports/driven"
	"github.com/custodia-labs/caseflow-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Gateway = (*Client)(nil)

// Header names understood by the service.
const (
	HeaderRequestID = "X-Request-Id"
	HeaderAPIKey    = "X-API-Key" //nolint:gosec // G101: header name, not a credential
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Config holds client configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	BearerToken    string
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// ConfigFromSettings maps gateway settings to client configuration.
func ConfigFromSettings(s domain.GatewaySettings) Config {
	return Config{
		BaseURL:        s.BaseURL,
		APIKey:         s.APIKey,
		BearerToken:    s.BearerToken,
		Timeout:        s.Timeout,
		RateLimitRPS:   s.RateLimitRPS,
		RateLimitBurst: s.RateLimitBurst,
	}
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithTransport sets the base round tripper. Auth and tracing wrap it.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.base = rt
	}
}

// WithRateLimiter replaces the limiter built from Config.
func WithRateLimiter(rl *RateLimiter) ClientOption {
	return func(c *Client) {
		c.limiter = rl
	}
}

// WithRequestIDGenerator overrides how X-Request-Id values are made.
func WithRequestIDGenerator(fn func() string) ClientOption {
	return func(c *Client) {
		c.newRequestID = fn
	}
}

// Client talks to the underwriting service.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	base         http.RoundTripper
	limiter      *RateLimiter
	newRequestID func() string
}

// NewClient creates a gateway client.
// Returns an error if the base URL is not absolute.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gateway base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultGatewayTimeout
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(u.String(), "/"),
		apiKey:       cfg.APIKey,
		base:         http.DefaultTransport,
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limiter == nil {
		c.limiter = NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	transport := c.base
	if cfg.BearerToken != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.BearerToken}),
			Base:   transport,
		}
	}
	c.httpClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(transport),
	}
	return c, nil
}

// BaseURL returns the normalised service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type extractRequest struct {
	CaseID   string          `json:"case_id"`
	Document domain.Document `json:"document"`
}

type documentRef struct {
	DocumentID string `json:"document_id"`
}

type indexRequest struct {
	Documents []documentRef `json:"documents"`
	Overwrite bool          `json:"overwrite"`
}

// Extract posts a document to /ocr/extract.
func (c *Client) Extract(ctx context.Context, caseID string, doc domain.Document) ([]byte, error) {
	return c.do(ctx, "extract", http.MethodPost, "/ocr/extract", nil, extractRequest{CaseID: caseID, Document: doc})
}

// Index posts document references to the case evidence index.
func (c *Client) Index(ctx context.Context, caseID string, documentIDs []string, overwrite bool) ([]byte, error) {
	refs := make([]documentRef, len(documentIDs))
	for i, id := range documentIDs {
		refs[i] = documentRef{DocumentID: id}
	}
	return c.do(ctx, "index", http.MethodPost, casePath(caseID, "evidence/index"), nil,
		indexRequest{Documents: refs, Overwrite: overwrite})
}

// Underwrite posts an underwrite request.
func (c *Client) Underwrite(ctx context.Context, caseID string, req domain.UnderwriteRequest) ([]byte, error) {
	return c.do(ctx, "underwrite", http.MethodPost, casePath(caseID, "underwrite"), nil, req)
}

// FetchTrace gets the trace of a prior request.
func (c *Client) FetchTrace(ctx context.Context, caseID, requestID string) ([]byte, error) {
	return c.do(ctx, "trace", http.MethodGet, casePath(caseID, "underwrite/trace"),
		url.Values{"request_id": {requestID}}, nil)
}

// Replay re-executes a prior request.
func (c *Client) Replay(ctx context.Context, caseID, requestID string) ([]byte, error) {
	return c.do(ctx, "replay", http.MethodPost, casePath(caseID, "underwrite/replay"),
		url.Values{"request_id": {requestID}}, nil)
}

// Ready checks GET /ready.
func (c *Client) Ready(ctx context.Context) error {
	_, err := c.do(ctx, "ready", http.MethodGet, "/ready", nil, nil)
	return err
}

func casePath(caseID, suffix string) string {
	return "/mortgage/" + url.PathEscape(caseID) + "/" + suffix
}

// do sends one request and returns the raw success body.
//
//nolint:gocyclo // Sequential request steps
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := c.newRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Event("gateway.call", "op", op, "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	serverID := resp.Header.Get(HeaderRequestID)
	if serverID == "" {
		serverID = requestID
	}
	logger.Event("gateway.call",
		"op", op, "method", method, "path", path,
		"status", resp.StatusCode, "request_id", serverID,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRetryAfter(resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.GatewayError{
			Op:        op,
			Status:    resp.StatusCode,
			Message:   ResolveErrorMessage(respBody, resp.StatusCode),
			RequestID: serverID,
		}
	}
	return respBody, nil
}
