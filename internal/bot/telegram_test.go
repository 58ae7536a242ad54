package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tothemoon/internal/domain"
	"tothemoon/internal/provider"

	"github.com/shopspring/decimal"
)

type stubMarket struct {
	coins     []domain.CoinSummary
	detail    *domain.CoinDetail
	detailErr error
	result    domain.SearchResult
	lastQuery string
}

func (s *stubMarket) ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error) {
	return s.coins, nil
}

func (s *stubMarket) GetCoin(ctx context.Context, id string) (*domain.CoinDetail, error) {
	return s.detail, s.detailErr
}

func (s *stubMarket) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	s.lastQuery = query
	return s.result, nil
}

func (s *stubMarket) VsCurrency() string { return "usd" }

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	StartTelegramBot("", nil)
}

func TestPriceReply(t *testing.T) {
	m := &stubMarket{detail: &domain.CoinDetail{CoinSummary: domain.CoinSummary{
		ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC",
		Price:     decimal.NewFromFloat(64250.5),
		Change24h: decimal.NewNullDecimal(decimal.NewFromFloat(-1.234)),
		Volume24h: decimal.NewFromInt(1000),
		MarketCap: decimal.NewFromInt(2000),
	}}}

	got := priceReply(m, []string{"Bitcoin"})
	for _, want := range []string{"Bitcoin (BTC)", "$64,250.50", "-1.23%", "$1,000.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in reply:\n%s", want, got)
		}
	}
}

func TestPriceReplyErrors(t *testing.T) {
	if got := priceReply(&stubMarket{}, nil); !strings.HasPrefix(got, "Usage") {
		t.Fatalf("expected usage, got %q", got)
	}

	m := &stubMarket{detailErr: &provider.UpstreamError{Op: "coin detail", StatusCode: 404}}
	if got := priceReply(m, []string{"nope"}); !strings.Contains(got, "Unknown coin: nope") {
		t.Fatalf("unexpected reply %q", got)
	}

	m = &stubMarket{detailErr: &provider.UpstreamError{Op: "coin detail", Err: errors.New("dial tcp")}}
	if got := priceReply(m, []string{"bitcoin"}); !strings.HasPrefix(got, "Error fetching price for bitcoin") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestTopReply(t *testing.T) {
	r1, r2, r3 := 1, 2, 3
	m := &stubMarket{coins: []domain.CoinSummary{
		{Rank: &r1, Symbol: "BTC", Price: decimal.NewFromInt(1)},
		{Rank: &r2, Symbol: "ETH", Price: decimal.NewFromInt(2)},
		{Rank: &r3, Symbol: "USDT", Price: decimal.NewFromInt(3)},
	}}

	lines := strings.Split(topReply(m, []string{"2"}), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "1. BTC") || !strings.HasPrefix(lines[1], "2. ETH") {
		t.Fatalf("unexpected lines %q", lines)
	}
	if got := strings.Split(topReply(m, nil), "\n"); len(got) != 3 {
		t.Fatalf("expected all three coins by default, got %q", got)
	}
	if got := topReply(m, []string{"zero"}); !strings.HasPrefix(got, "Usage") {
		t.Fatalf("expected usage, got %q", got)
	}
	if got := topReply(&stubMarket{}, nil); got != "No data available" {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestSearchReply(t *testing.T) {
	m := &stubMarket{result: domain.SearchResult{Coins: []domain.SearchCoin{
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH"},
	}}}

	got := searchReply(m, []string{"ether", "eum"})
	if m.lastQuery != "ether eum" || got != "Ethereum (ETH) id: ethereum" {
		t.Fatalf("unexpected reply %q for query %q", got, m.lastQuery)
	}

	if got := searchReply(&stubMarket{}, []string{"zzz"}); got != `No coins found for "zzz"` {
		t.Fatalf("unexpected reply %q", got)
	}
}
