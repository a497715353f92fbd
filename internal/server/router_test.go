package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/db"
	"github.com/diewo77/go-crm/internal/db/dbtest"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/middleware"
	"github.com/diewo77/go-crm/logging"
)

func newTestServer(t *testing.T, limiter middleware.Limiter) http.Handler {
	t.Helper()
	clk := clock.NewMock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	gdb := dbtest.Open(t, clk)
	if err := db.Seed(gdb, "admin@example.com", "admin123"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return New(Options{
		DB: gdb, Config: cfg, Clock: clk, Logger: logging.Discard(),
		Metrics: metrics.New(nil), Limiter: limiter,
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil)
	for _, p := range []string{"/health", "/healthz"} {
		rr := serve(h, httptest.NewRequest(http.MethodGet, p, nil))
		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
			t.Fatalf("%s: expected 200 ok, got %d %s", p, rr.Code, rr.Body.String())
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s: missing request id", p)
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	if rr := serve(h, req); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if rr := serve(h, httptest.NewRequest(http.MethodGet, "/propuestas", nil)); rr.Code != http.StatusSeeOther {
		t.Fatalf("expected browser redirect, got %d", rr.Code)
	}
}

func TestLoginThenBearerDashboard(t *testing.T) {
	h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"admin@example.com","password":"admin123"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := serve(h, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &login); err != nil || login.Data.Token == "" {
		t.Fatalf("missing token: %v %s", err, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+login.Data.Token)
	rr = serve(h, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Content-Language") != "es" {
		t.Fatalf("expected es content language, got %q", rr.Header().Get("Content-Language"))
	}

	req = httptest.NewRequest(http.MethodGet, "/clients?search=x", nil)
	req.Header.Set("Authorization", "Bearer "+login.Data.Token)
	if rr := serve(h, req); rr.Code != http.StatusOK {
		t.Fatalf("clients: %d %s", rr.Code, rr.Body.String())
	}
}

func TestLeadsRateLimited(t *testing.T) {
	h := newTestServer(t, middleware.NewMemoryLimiter(1, time.Minute))
	post := func(email string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"email":"`+email+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.7:4000"
		return serve(h, req)
	}
	if rr := post("one@lead.io"); rr.Code != http.StatusCreated {
		t.Fatalf("first lead: %d %s", rr.Code, rr.Body.String())
	}
	rr := post("two@lead.io")
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d", rr.Code)
	}

	rr = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	for _, want := range []string{
		`crm_http_rate_limited_total{route="leads"} 1`,
		`crm_http_requests_total{method="POST",route="/leads",status="201"} 1`,
	} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}
