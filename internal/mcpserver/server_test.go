package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tothemoon/internal/domain"
	"tothemoon/internal/provider"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

type stubMarket struct {
	lastQuery domain.PageQuery
	coins     []domain.CoinSummary
	detail    *domain.CoinDetail
	detailErr error
	result    domain.SearchResult
}

func (s *stubMarket) ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error) {
	s.lastQuery = q
	return s.coins, nil
}

func (s *stubMarket) GetCoin(ctx context.Context, id string) (*domain.CoinDetail, error) {
	return s.detail, s.detailErr
}

func (s *stubMarket) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	return s.result, nil
}

func (s *stubMarket) VsCurrency() string { return "usd" }

func newTools(m *stubMarket) *tools {
	return &tools{tracer: trace.NewNoopTracerProvider().Tracer("test"), market: m}
}

func TestListCoinsDefaultsAndFormatting(t *testing.T) {
	rank := 1
	m := &stubMarket{coins: []domain.CoinSummary{{
		ID: "bitcoin", Rank: &rank, Name: "Bitcoin", Symbol: "BTC",
		Price: decimal.NewFromFloat(64000.5),
	}}}

	_, out, err := newTools(m).listCoins(context.Background(), nil, ListCoinsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.lastQuery.Page != 1 || m.lastQuery.PageSize != domain.DefaultPageSize {
		t.Fatalf("unexpected upstream query %+v", m.lastQuery)
	}
	if out.Order != "market_cap_desc" || len(out.Coins) != 1 {
		t.Fatalf("unexpected output %+v", out)
	}
	row := out.Coins[0]
	if row.Rank != 1 || row.Price != "$64,000.50" || row.Change24h != "--" {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestListCoinsValidatesInput(t *testing.T) {
	tl := newTools(&stubMarket{})
	for _, in := range []ListCoinsInput{
		{Page: -1},
		{PerPage: 75},
		{Sort: "name"},
	} {
		if _, _, err := tl.listCoins(context.Background(), nil, in); err == nil {
			t.Fatalf("expected error for %+v", in)
		}
	}
}

func TestGetCoin(t *testing.T) {
	m := &stubMarket{detail: &domain.CoinDetail{
		CoinSummary: domain.CoinSummary{ID: "bitcoin", Name: "Bitcoin", Change7d: decimal.NewNullDecimal(decimal.NewFromFloat(3.5))},
		Description: "<p>Peer to peer</p><p>cash</p>",
		Links:       domain.Links{Homepage: []string{"https://bitcoin.org"}},
	}}

	_, out, err := newTools(m).getCoin(context.Background(), nil, GetCoinInput{ID: " Bitcoin "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Change7d != "+3.50%" || out.Homepage != "https://bitcoin.org" || len(out.About) != 2 {
		t.Fatalf("unexpected output %+v", out)
	}

	if _, _, err := newTools(m).getCoin(context.Background(), nil, GetCoinInput{}); err == nil {
		t.Fatal("expected error for missing id")
	}

	m.detailErr = &provider.UpstreamError{Op: "coin detail", StatusCode: 404}
	_, _, err = newTools(m).getCoin(context.Background(), nil, GetCoinInput{ID: "nope"})
	if !provider.IsNotFound(err) {
		t.Fatalf("expected wrapped not-found error, got %v", err)
	}
}

func TestSearchCoinsLimit(t *testing.T) {
	m := &stubMarket{result: domain.SearchResult{Coins: []domain.SearchCoin{{ID: "a"}, {ID: "b"}, {ID: "c"}}}}

	_, out, err := newTools(m).searchCoins(context.Background(), nil, SearchCoinsInput{Query: "x", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Coins) != 2 || out.Coins[1].ID != "b" {
		t.Fatalf("unexpected output %+v", out)
	}

	_, out, _ = newTools(&stubMarket{}).searchCoins(context.Background(), nil, SearchCoinsInput{})
	if out.Coins == nil || len(out.Coins) != 0 {
		t.Fatalf("expected empty non-nil coins, got %+v", out.Coins)
	}
}

func TestServerListsTools(t *testing.T) {
	ctx := context.Background()
	server := New(trace.NewNoopTracerProvider().Tracer("test"), &stubMarket{}, "test", time.Second)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"list_coins", "get_coin", "search_coins"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestRequireBearer(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireBearer("secret", ok)

	for header, want := range map[string]int{
		"":              http.StatusUnauthorized,
		"Bearer wrong":  http.StatusUnauthorized,
		"secret":        http.StatusUnauthorized,
		"Bearer secret": http.StatusNoContent,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		h.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("header %q: expected %d, got %d", header, want, w.Code)
		}
	}

	if RequireBearer("", ok) == nil {
		t.Fatal("expected passthrough handler")
	}
}
