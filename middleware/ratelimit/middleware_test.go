package ratelimit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SmarterCL/api.smarterbot.cl/middleware/ratelimit/infra"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(epoch int64) *manualClock {
	return &manualClock{now: time.Unix(epoch, 0)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
}

func doRequest(h http.Handler, path, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "http://api.example"+path, nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestMiddleware_AdmitsUpToLimitThenRejects(t *testing.T) {
	clk := newManualClock(600)
	store := infra.NewWindowStore(3, infra.WithClock(clk))

	calls := 0
	h := Middleware(Options{Store: store})(okHandler(&calls))

	for i := 0; i < 3; i++ {
		w := doRequest(h, "/odoo/search_read", "tok-a")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	w := doRequest(h, "/odoo/search_read", "tok-a")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", w.Code)
	}
	if calls != 3 {
		t.Fatalf("expected handler called 3 times, got %d", calls)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected Remaining=0 on rejection, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "3" {
		t.Fatalf("expected Limit=3 on rejection, got %q", got)
	}
	if body := w.Body.String(); !strings.Contains(body, "Rate limit exceeded") {
		t.Fatalf("expected detail message in body, got %q", body)
	}
}

func TestMiddleware_WindowRolloverRestoresBudget(t *testing.T) {
	clk := newManualClock(630)
	store := infra.NewWindowStore(2, infra.WithClock(clk))

	calls := 0
	h := Middleware(Options{Store: store})(okHandler(&calls))

	doRequest(h, "/", "tok-a")
	doRequest(h, "/x", "tok-a")
	doRequest(h, "/x", "tok-a")
	if w := doRequest(h, "/x", "tok-a"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected exhaustion in window N, got %d", w.Code)
	}

	clk.Advance(60 * time.Second)
	if w := doRequest(h, "/x", "tok-a"); w.Code != http.StatusOK {
		t.Fatalf("expected admission in window N+1, got %d", w.Code)
	}
}

func TestMiddleware_ExemptPathsBypassCounters(t *testing.T) {
	clk := newManualClock(600)
	store := infra.NewWindowStore(1, infra.WithClock(clk))

	calls := 0
	h := Middleware(Options{
		Store:       store,
		ExemptPaths: []string{"/", "/health"},
	})(okHandler(&calls))

	// mesmo com bearer, caminhos isentos nunca tocam o contador
	for i := 0; i < 5; i++ {
		if w := doRequest(h, "/health", "tok-a"); w.Code != http.StatusOK {
			t.Fatalf("expected 200 for exempt path, got %d", w.Code)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("expected no counters after exempt traffic, got %d", store.Len())
	}

	// e não recebem headers de rate limit
	w := doRequest(h, "/", "tok-a")
	if got := w.Header().Get("X-RateLimit-Limit"); got != "" {
		t.Fatalf("expected no rate limit headers on exempt path, got %q", got)
	}
}

func TestMiddleware_MissingOrMalformedBearerBypasses(t *testing.T) {
	clk := newManualClock(600)
	store := infra.NewWindowStore(1, infra.WithClock(clk))

	calls := 0
	h := Middleware(Options{Store: store})(okHandler(&calls))

	// sem Authorization
	if w := doRequest(h, "/contact", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200 without credential, got %d", w.Code)
	}

	// Authorization que não é bearer
	r := httptest.NewRequest(http.MethodGet, "http://api.example/contact", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with non-bearer credential, got %d", w.Code)
	}

	if store.Len() != 0 {
		t.Fatalf("expected no counters for unauthenticated traffic, got %d", store.Len())
	}
	if calls != 2 {
		t.Fatalf("expected handler called twice, got %d", calls)
	}
}

func TestMiddleware_HeadersCountDown(t *testing.T) {
	clk := newManualClock(600)
	store := infra.NewWindowStore(3, infra.WithClock(clk))

	calls := 0
	h := Middleware(Options{Store: store})(okHandler(&calls))

	want := []string{"2", "1", "0"}
	for i, exp := range want {
		w := doRequest(h, "/x", "tok-a")
		if got := w.Header().Get("X-RateLimit-Remaining"); got != exp {
			t.Fatalf("request %d: expected Remaining=%s, got %q", i+1, exp, got)
		}
		if got := w.Header().Get("X-RateLimit-Limit"); got != "3" {
			t.Fatalf("request %d: expected Limit=3, got %q", i+1, got)
		}
		if got := w.Header().Get("X-RateLimit-Reset"); got != "660" {
			t.Fatalf("request %d: expected Reset=660, got %q", i+1, got)
		}
	}
}

func TestMiddleware_TenantsDoNotShareBudget(t *testing.T) {
	clk := newManualClock(600)
	store := infra.NewWindowStore(1, infra.WithClock(clk))

	calls := 0
	h := Middleware(Options{Store: store})(okHandler(&calls))

	if w := doRequest(h, "/x", "tenant-a-token-long"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for tenant a, got %d", w.Code)
	}
	if w := doRequest(h, "/x", "tenant-b-token-long"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for tenant b, got %d", w.Code)
	}
	if w := doRequest(h, "/x", "tenant-a-token-long"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for tenant a second request, got %d", w.Code)
	}
}

func TestMiddleware_RecordsStats(t *testing.T) {
	clk := newManualClock(600)
	store := infra.NewWindowStore(1, infra.WithClock(clk))
	stats := infra.NewMemoryStatsStore()

	calls := 0
	h := Middleware(Options{Store: store, Stats: stats})(okHandler(&calls))

	doRequest(h, "/x", "tok-a")
	doRequest(h, "/x", "tok-a")

	total := stats.Total()
	if total.Allowed != 1 || total.Denied != 1 {
		t.Fatalf("expected 1 allowed / 1 denied, got %+v", total)
	}
}

// Cenário do tenant "abc123": 300 requisições na mesma janela com limit=300,
// todas admitidas com Remaining decrescente (299→0); a 301ª é rejeitada.
func TestMiddleware_FullWindowScenario(t *testing.T) {
	clk := newManualClock(600)
	store := infra.NewWindowStore(300, infra.WithClock(clk))

	calls := 0
	h := Middleware(Options{Store: store})(okHandler(&calls))

	for i := 0; i < 300; i++ {
		w := doRequest(h, "/odoo/search_read", "abc123")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
		exp := strconv.Itoa(300 - i - 1)
		if got := w.Header().Get("X-RateLimit-Remaining"); got != exp {
			t.Fatalf("request %d: expected Remaining=%s, got %q", i+1, exp, got)
		}
	}

	w := doRequest(h, "/odoo/search_read", "abc123")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on request 301, got %d", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected Remaining=0, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "300" {
		t.Fatalf("expected Limit=300, got %q", got)
	}
}
