package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khanhnv2901/secheaders/internal/checker"
	"github.com/khanhnv2901/secheaders/internal/headers"
	"github.com/khanhnv2901/secheaders/internal/scoring"
	"go.uber.org/zap/zaptest"
)

type stubChecker struct {
	result checker.CheckResult
	calls  int
}

func (s *stubChecker) Check(ctx context.Context, target string) checker.CheckResult {
	s.calls++
	r := s.result
	r.Target = target
	return r
}

func (s *stubChecker) Name() string { return "stub" }

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg.Logger = zaptest.NewLogger(t)
	if cfg.Catalog.Len() == 0 {
		cfg.Catalog = scoring.DefaultCatalog()
	}
	srv := NewServer(cfg)
	t.Cleanup(srv.Close)
	return srv
}

func okChecker() *stubChecker {
	analysis := scoring.Score(headers.HeaderMap{"x-frame-options": "DENY"}, scoring.DefaultCatalog())
	return &stubChecker{result: checker.CheckResult{Status: checker.StatusOK, Analysis: &analysis}}
}

func do(s *Server, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{})
	for _, path := range []string{"/api/v1/health", "/api/health"} {
		rr := do(s, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
			t.Fatalf("unexpected body: %s", rr.Body.String())
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatal("expected X-Request-ID header")
		}
	}
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t, Config{})
	rr := do(s, http.MethodGet, "/api/v1/catalog", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var payload struct {
		MaxScore int                          `json:"max_score"`
		Headers  []scoring.SecurityHeaderSpec `json:"headers"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.MaxScore != 100 || len(payload.Headers) != 6 {
		t.Fatalf("unexpected catalog payload: %+v", payload)
	}
}

func TestAnalyze(t *testing.T) {
	chk := okChecker()
	s := newTestServer(t, Config{Checker: chk})

	rr := do(s, http.MethodPost, "/api/v1/analyze", `{"url":"https://example.com"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result checker.CheckResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Analysis == nil || result.Analysis.Score != 15 || result.Analysis.Tier != scoring.TierCritical {
		t.Fatalf("unexpected analysis: %+v", result.Analysis)
	}
	if result.Target != "https://example.com" {
		t.Fatalf("unexpected target %q", result.Target)
	}
}

func TestAnalyzeBadRequests(t *testing.T) {
	chk := okChecker()
	s := newTestServer(t, Config{Checker: chk})

	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "missing url", body: `{}`},
		{name: "not json", body: `url=https://example.com`},
		{name: "unsupported scheme", body: `{"url":"ftp://example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(s, http.MethodPost, "/api/v1/analyze", tt.body, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
	if chk.calls != 0 {
		t.Fatalf("checker must not run for invalid requests, ran %d times", chk.calls)
	}
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	chk := &stubChecker{result: checker.CheckResult{Status: checker.StatusError, Error: "fetch headers: connection refused"}}
	s := newTestServer(t, Config{Checker: chk})

	rr := do(s, http.MethodPost, "/api/analyze", `{"url":"https://down.example"}`, nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "connection refused") {
		t.Fatalf("expected failure reason in body, got %s", rr.Body.String())
	}
}

func TestAnalyzeWithoutChecker(t *testing.T) {
	s := newTestServer(t, Config{})
	rr := do(s, http.MethodPost, "/api/v1/analyze", `{"url":"https://example.com"}`, nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal server error") {
		t.Fatalf("expected sanitized message, got %s", rr.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, Config{Checker: okChecker(), AuthToken: "s3cret"})

	if rr := do(s, http.MethodGet, "/api/v1/health", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
	if rr := do(s, http.MethodGet, "/api/v1/health", "", map[string]string{"X-Auth-Token": "wrong"}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rr.Code)
	}
	if rr := do(s, http.MethodGet, "/api/v1/health", "", map[string]string{"X-Auth-Token": "s3cret"}); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Config{RateLimit: 1, RateBurst: 1})

	if rr := do(s, http.MethodGet, "/api/v1/health", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rr.Code)
	}
	if rr := do(s, http.MethodGet, "/api/v1/health", "", nil); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, Config{CORSOrigins: []string{"https://dashboard.example"}})

	rr := do(s, http.MethodOptions, "/api/v1/analyze", "", map[string]string{"Origin": "https://dashboard.example"})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example" {
		t.Fatalf("unexpected allow-origin %q", got)
	}

	rr = do(s, http.MethodGet, "/api/v1/health", "", map[string]string{"Origin": "https://evil.example"})
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin for unlisted origin, got %q", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, Config{})
	rr := do(s, http.MethodGet, "/api/v1/analyze", "", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestCloseStopsLimiterCleanup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(Config{Catalog: scoring.DefaultCatalog()})

	done := make(chan struct{})
	go func() {
		s.Close()
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not stop the limiter cleanup loop")
	}
	select {
	case <-s.limiters.stopped:
	default:
		t.Fatal("cleanup loop still running after Close")
	}
}
