package tui

import (
	"context"
	"time"

	"tothemoon/internal/domain"
)

// MarketQuerier is what the screens need from the market service.
type MarketQuerier interface {
	ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error)
	CachedListing(q domain.PageQuery) ([]domain.CoinSummary, bool)
	GetCoin(ctx context.Context, id string) (*domain.CoinDetail, error)
	Search(ctx context.Context, query string) (domain.SearchResult, error)
	TotalCoins(ctx context.Context) int
	VsCurrency() string
}

// Services bundles the dependencies of one dashboard session.
type Services struct {
	Market         MarketQuerier
	Username       string
	SearchDebounce time.Duration
	RequestTimeout time.Duration
}

func (s Services) requestContext() (context.Context, context.CancelFunc) {
	timeout := s.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
