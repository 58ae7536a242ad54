package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tothemoon/internal/cache"
	"tothemoon/internal/domain"
	"tothemoon/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

type stubMarket struct {
	lastQuery domain.PageQuery
	listCalls int
	rows      []domain.CoinSummary
	listErr   error
	detail    *domain.CoinDetail
	detailErr error
	result    domain.SearchResult
	global    *domain.GlobalStats
	total     int
}

func (s *stubMarket) ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error) {
	s.listCalls++
	s.lastQuery = q
	return s.rows, s.listErr
}

func (s *stubMarket) GetCoin(ctx context.Context, id string) (*domain.CoinDetail, error) {
	return s.detail, s.detailErr
}

func (s *stubMarket) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	if query == "" {
		return domain.SearchResult{}, nil
	}
	return s.result, nil
}

func (s *stubMarket) Global(ctx context.Context) (*domain.GlobalStats, error) {
	return s.global, nil
}

func (s *stubMarket) TotalCoins(ctx context.Context) int { return s.total }
func (s *stubMarket) VsCurrency() string                 { return "usd" }
func (s *stubMarket) CacheStats() cache.Stats            { return cache.Stats{Entries: 3} }

func newTestRouter(m *stubMarket, apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	h := New(trace.NewNoopTracerProvider().Tracer("test"), m, nil)
	h.RegisterRoutes(r, apiKey)
	return r
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&stubMarket{}, "")

	w := do(r, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body struct {
		Status string      `json:"status"`
		Cache  cache.Stats `json:"cache"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.Cache.Entries != 3 {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	r := newTestRouter(&stubMarket{}, "")
	w := do(r, "GET", "/health", map[string]string{"X-Request-ID": "abc-123"})
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("expected caller request id, got %q", got)
	}
}

func TestListCoinsDefaults(t *testing.T) {
	rank := 1
	m := &stubMarket{
		total: 120,
		rows:  []domain.CoinSummary{{ID: "bitcoin", Rank: &rank, Price: decimal.NewFromInt(64000)}},
	}
	r := newTestRouter(m, "")

	w := do(r, "GET", "/api/coins", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var page CoinPage
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Page != 1 || page.PerPage != 50 || page.Order != "market_cap_desc" {
		t.Fatalf("unexpected defaults %+v", page)
	}
	if page.TotalPages != 3 || !page.HasNext || page.HasPrevious {
		t.Fatalf("unexpected paging flags %+v", page)
	}
	if len(page.Coins) != 1 || page.Coins[0].ID != "bitcoin" {
		t.Fatalf("unexpected coins %+v", page.Coins)
	}
}

func TestListCoinsPassesSortAndPage(t *testing.T) {
	m := &stubMarket{total: 1000}
	r := newTestRouter(m, "")

	w := do(r, "GET", "/api/coins?page=3&per_page=100&sort=volume&dir=asc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if m.lastQuery.Page != 3 || m.lastQuery.PageSize != 100 || m.lastQuery.Order() != "volume_asc" {
		t.Fatalf("unexpected upstream query %+v (%s)", m.lastQuery, m.lastQuery.Order())
	}
}

func TestListCoinsRejectsBadParams(t *testing.T) {
	m := &stubMarket{total: 100}
	r := newTestRouter(m, "")

	for _, path := range []string{
		"/api/coins?page=0",
		"/api/coins?page=abc",
		"/api/coins?per_page=75",
		"/api/coins?sort=name",
		"/api/coins?sort=volume&dir=sideways",
		"/api/coins?page=3",
	} {
		if w := do(r, "GET", path, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
	if m.listCalls != 0 {
		t.Fatalf("bad requests must not reach upstream, got %d calls", m.listCalls)
	}
}

func TestListCoinsUpstreamFailure(t *testing.T) {
	m := &stubMarket{total: 100, listErr: &provider.UpstreamError{Op: "list coins", StatusCode: 429, Body: "rate limited"}}
	r := newTestRouter(m, "")

	w := do(r, "GET", "/api/coins", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestGetCoin(t *testing.T) {
	m := &stubMarket{detail: &domain.CoinDetail{CoinSummary: domain.CoinSummary{ID: "bitcoin", Name: "Bitcoin"}}}
	r := newTestRouter(m, "")

	w := do(r, "GET", "/api/coins/bitcoin", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var detail domain.CoinDetail
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Name != "Bitcoin" {
		t.Fatalf("unexpected detail %+v", detail)
	}
}

func TestGetCoinNotFound(t *testing.T) {
	m := &stubMarket{detailErr: &provider.UpstreamError{Op: "coin detail", StatusCode: 404}}
	r := newTestRouter(m, "")

	w := do(r, "GET", "/api/coins/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetCoinTimeoutIsGatewayTimeout(t *testing.T) {
	m := &stubMarket{detailErr: &provider.UpstreamError{Op: "coin bitcoin", Err: context.DeadlineExceeded}}
	r := newTestRouter(m, "")

	w := do(r, "GET", "/api/coins/bitcoin", nil)
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "market data unavailable") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSearch(t *testing.T) {
	m := &stubMarket{result: domain.SearchResult{Coins: []domain.SearchCoin{{ID: "a"}, {ID: "b"}, {ID: "c"}}}}
	r := newTestRouter(m, "")

	w := do(r, "GET", "/api/search?q=bit&limit=2", nil)
	var res domain.SearchResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Coins) != 2 || res.Coins[0].ID != "a" || res.Query != "bit" {
		t.Fatalf("unexpected result %+v", res)
	}

	w = do(r, "GET", "/api/search?q=", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"query":"","coins":[]}` {
		t.Fatalf("expected empty result, got %d %s", w.Code, w.Body.String())
	}
}

func TestGlobal(t *testing.T) {
	m := &stubMarket{global: &domain.GlobalStats{ActiveCoins: 15000}}
	r := newTestRouter(m, "")

	w := do(r, "GET", "/api/global", nil)
	var stats domain.GlobalStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.ActiveCoins != 15000 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	m := &stubMarket{global: &domain.GlobalStats{}}
	r := newTestRouter(m, "secret")

	if w := do(r, "GET", "/api/global", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}
	if w := do(r, "GET", "/api/global", map[string]string{"X-API-Key": "wrong"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", w.Code)
	}
	if w := do(r, "GET", "/api/global", map[string]string{"X-API-Key": "secret"}); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", w.Code)
	}
	if w := do(r, "GET", "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health must stay open, got %d", w.Code)
	}
}
