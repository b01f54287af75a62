package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseflow-cli/internal/core/domain"
)

// capturedRequest records what the test server received.
type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type testServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ts.mu.Lock()
		ts.requests = append(ts.requests, capturedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		ts.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) last(t *testing.T) capturedRequest {
	t.Helper()
	ts.mu.Lock()
	defer ts.mu.Unlock()
	require.NotEmpty(t, ts.requests)
	return ts.requests[len(ts.requests)-1]
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newTestClient(t *testing.T, baseURL string, cfg Config) *Client {
	t.Helper()
	cfg.BaseURL = baseURL
	c, err := NewClient(cfg, WithRequestIDGenerator(func() string { return "cli-req-1" }))
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8000", "/api", "://bad"} {
		_, err := NewClient(Config{BaseURL: u})
		assert.Error(t, err, u)
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://uw.example.com/api/"})

	require.NoError(t, err)
	assert.Equal(t, "http://uw.example.com/api", c.BaseURL())
	assert.Equal(t, domain.DefaultGatewayTimeout, c.httpClient.Timeout)
}

func TestConfigFromSettings(t *testing.T) {
	s := domain.DefaultAppSettings().Gateway
	s.APIKey = "k"

	cfg := ConfigFromSettings(s)

	assert.Equal(t, s.BaseURL, cfg.BaseURL)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, s.RateLimitBurst, cfg.RateLimitBurst)
}

func TestClient_Extract(t *testing.T) {
	ts := newTestServer(t, jsonHandler(200, `{"case_id":"c1","document_id":"d1","request_id":"x1"}`))
	c := newTestClient(t, ts.URL, Config{APIKey: "secret"})

	doc := domain.Document{Filename: "a.txt", ContentType: "text/plain", ContentB64: "c3RhYmxl"}
	body, err := c.Extract(context.Background(), "c1", doc)

	require.NoError(t, err)
	assert.JSONEq(t, `{"case_id":"c1","document_id":"d1","request_id":"x1"}`, string(body))

	req := ts.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/ocr/extract", req.Path)
	assert.Equal(t, "secret", req.Header.Get(HeaderAPIKey))
	assert.Equal(t, "cli-req-1", req.Header.Get(HeaderRequestID))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t,
		`{"case_id":"c1","document":{"filename":"a.txt","content_type":"text/plain","content_b64":"c3RhYmxl"}}`,
		string(req.Body))
}

func TestClient_Index(t *testing.T) {
	ts := newTestServer(t, jsonHandler(200, `{"case_id":"c 1","indexed_chunks":2,"request_id":"x2"}`))
	c := newTestClient(t, ts.URL, Config{})

	_, err := c.Index(context.Background(), "c 1", []string{"d1"}, true)

	require.NoError(t, err)
	req := ts.last(t)
	assert.Equal(t, "/mortgage/c%201/evidence/index", req.Path)
	assert.JSONEq(t, `{"documents":[{"document_id":"d1"}],"overwrite":true}`, string(req.Body))
	assert.Empty(t, req.Header.Get(HeaderAPIKey))
}

func TestClient_Underwrite(t *testing.T) {
	ts := newTestServer(t, jsonHandler(200, `{"request_id":"r1"}`))
	c := newTestClient(t, ts.URL, Config{})

	_, err := c.Underwrite(context.Background(), "c1", domain.UnderwriteRequest{
		Payload:      domain.DefaultUnderwritePayload(),
		ModelVersion: "baseline_v1",
		TopK:         5,
	})

	require.NoError(t, err)
	req := ts.last(t)
	assert.Equal(t, "/mortgage/c1/underwrite", req.Path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, "baseline_v1", sent["model_version"])
	assert.EqualValues(t, 5, sent["top_k"])
	payload := sent["payload"].(map[string]any)
	assert.EqualValues(t, 710, payload["credit_score"])
	assert.Equal(t, "primary", payload["occupancy"])
}

func TestClient_FetchTraceAndReplay(t *testing.T) {
	ts := newTestServer(t, jsonHandler(200, `{}`))
	c := newTestClient(t, ts.URL, Config{})
	ctx := context.Background()

	_, err := c.FetchTrace(ctx, "c1", "r/1")
	require.NoError(t, err)
	req := ts.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/mortgage/c1/underwrite/trace", req.Path)
	assert.Equal(t, "request_id=r%2F1", req.Query)
	assert.Empty(t, req.Body)
	assert.Empty(t, req.Header.Get("Content-Type"))

	_, err = c.Replay(ctx, "c1", "r1")
	require.NoError(t, err)
	req = ts.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/mortgage/c1/underwrite/replay", req.Path)
	assert.Equal(t, "request_id=r1", req.Query)
}

func TestClient_BearerToken(t *testing.T) {
	ts := newTestServer(t, jsonHandler(200, `{"status":"ready"}`))
	c := newTestClient(t, ts.URL, Config{BearerToken: "tok-123"})

	require.NoError(t, c.Ready(context.Background()))

	req := ts.last(t)
	assert.Equal(t, "/ready", req.Path)
	assert.Equal(t, "Bearer tok-123", req.Header.Get("Authorization"))
}

func TestClient_ErrorEnvelope(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRequestID, "srv-9")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"trace not found"}`)
	})
	c := newTestClient(t, ts.URL, Config{})

	_, err := c.FetchTrace(context.Background(), "c1", "r1")

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "trace", gwErr.Op)
	assert.Equal(t, http.StatusNotFound, gwErr.Status)
	assert.Equal(t, "trace not found", gwErr.Message)
	assert.Equal(t, "srv-9", gwErr.RequestID)
	assert.ErrorIs(t, err, domain.ErrGateway)
	assert.Equal(t, "trace not found", err.Error())
}

func TestClient_ErrorWithoutEnvelope(t *testing.T) {
	ts := newTestServer(t, jsonHandler(http.StatusBadGateway, ``))
	c := newTestClient(t, ts.URL, Config{})

	_, err := c.Replay(context.Background(), "c1", "r1")

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "request failed (HTTP 502)", gwErr.Message)
	assert.Equal(t, "cli-req-1", gwErr.RequestID)
}

func TestClient_TooManyRequestsSetsBackoff(t *testing.T) {
	ts := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "45")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down"}}`)
	})
	rl := NewRateLimiter(100, 10)
	c, err := NewClient(Config{BaseURL: ts.URL}, WithRateLimiter(rl))
	require.NoError(t, err)

	before := time.Now()
	_, err = c.Underwrite(context.Background(), "c1", domain.UnderwriteRequest{})

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "slow down", gwErr.Message)
	assert.True(t, rl.BackoffUntil().After(before.Add(40*time.Second)))

	// The next call waits out the backoff; a short deadline aborts it before sending
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = c.Ready(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	ts.mu.Lock()
	assert.Len(t, ts.requests, 1)
	ts.mu.Unlock()
}

func TestClient_TransportError(t *testing.T) {
	ts := newTestServer(t, jsonHandler(200, `{}`))
	c := newTestClient(t, ts.URL, Config{})
	ts.Close()

	err := c.Ready(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrGateway)
	assert.Contains(t, err.Error(), "send request")
}

func TestClient_DefaultRequestIDIsUnique(t *testing.T) {
	ts := newTestServer(t, jsonHandler(200, `{}`))
	c, err := NewClient(Config{BaseURL: ts.URL})
	require.NoError(t, err)

	require.NoError(t, c.Ready(context.Background()))
	require.NoError(t, c.Ready(context.Background()))

	ts.mu.Lock()
	defer ts.mu.Unlock()
	first := ts.requests[0].Header.Get(HeaderRequestID)
	second := ts.requests[1].Header.Get(HeaderRequestID)
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
