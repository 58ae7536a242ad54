package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tothemoon/internal/cache"
	"tothemoon/internal/domain"
	"tothemoon/internal/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MarketProvider is the upstream market-data API.
type MarketProvider interface {
	ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error)
	GetCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error)
	SearchCoins(ctx context.Context, query string) (domain.SearchResult, error)
	FetchGlobal(ctx context.Context) (*domain.GlobalStats, error)
	VsCurrency() string
}

// Policies holds the cache windows for each kind of query.
type Policies struct {
	Listing cache.Policy
	Search  cache.Policy
	Detail  cache.Policy
	Global  cache.Policy
}

func DefaultPolicies() Policies {
	return Policies{
		Listing: cache.Policy{StaleAfter: 60 * time.Second, RetainFor: 5 * time.Minute},
		Search:  cache.Policy{StaleAfter: 30 * time.Second, RetainFor: 5 * time.Minute},
		Detail:  cache.Policy{StaleAfter: 60 * time.Second, RetainFor: 5 * time.Minute},
		Global:  cache.Policy{StaleAfter: 5 * time.Minute, RetainFor: 30 * time.Minute},
	}
}

// DefaultTotalCoins is used for pagination when the global stats call fails.
const DefaultTotalCoins = 10000

// MarketService serves every front end (TUI, HTTP, bot, MCP) through one query cache.
type MarketService struct {
	tracer        trace.Tracer
	provider      MarketProvider
	cache         *cache.QueryCache
	policies      Policies
	fallbackTotal int
}

func NewMarketService(
	tracer trace.Tracer,
	provider MarketProvider,
	qc *cache.QueryCache,
	policies Policies,
	fallbackTotal int,
) *MarketService {
	if fallbackTotal <= 0 {
		fallbackTotal = DefaultTotalCoins
	}
	return &MarketService{
		tracer:        tracer,
		provider:      provider,
		cache:         qc,
		policies:      policies,
		fallbackTotal: fallbackTotal,
	}
}

func listingKey(q domain.PageQuery) string { return "coins:" + q.Key() }
func detailKey(id string) string           { return "coin:" + strings.ToLower(id) }
func searchKey(query string) string        { return "search:" + strings.ToLower(query) }

const globalKey = "global"

// VsCurrency is the quote currency of every price the service returns.
func (s *MarketService) VsCurrency() string {
	return s.provider.VsCurrency()
}

// ListCoins returns one listing page, ordered by the upstream for q's sort.
func (s *MarketService) ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.list-coins")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", q.Page),
		attribute.Int("page_size", q.PageSize),
		attribute.String("order", q.Order()),
	)

	if q.Page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", q.Page)
	}
	if !domain.ValidPageSize(q.PageSize) {
		return nil, fmt.Errorf("unsupported page size %d", q.PageSize)
	}

	rows, err := cache.Resolve(ctx, s.cache, listingKey(q), s.policies.Listing, func(ctx context.Context) ([]domain.CoinSummary, error) {
		return s.provider.ListCoins(ctx, q)
	})
	return rows, asUpstream("list coins", err)
}

// CachedListing returns a retained page for q without calling upstream.
func (s *MarketService) CachedListing(q domain.PageQuery) ([]domain.CoinSummary, bool) {
	rows, _, ok := cache.Peek[[]domain.CoinSummary](s.cache, listingKey(q))
	return rows, ok
}

// RefreshListing drops the cached page and fetches it again.
func (s *MarketService) RefreshListing(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error) {
	s.cache.Invalidate(listingKey(q))
	return s.ListCoins(ctx, q)
}

// GetCoin returns the detail record for a coin id.
func (s *MarketService) GetCoin(ctx context.Context, id string) (*domain.CoinDetail, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-coin")
	defer span.End()
	span.SetAttributes(attribute.String("coin.id", id))

	id = strings.TrimSpace(id)
	detail, err := cache.Resolve(ctx, s.cache, detailKey(id), s.policies.Detail, func(ctx context.Context) (*domain.CoinDetail, error) {
		return s.provider.GetCoinDetail(ctx, id)
	})
	return detail, asUpstream("coin "+id, err)
}

// Search resolves a free-text query. A blank query yields an empty result
// without touching the cache or the network.
func (s *MarketService) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResult{}, nil
	}
	span.SetAttributes(attribute.String("query", query))

	result, err := cache.Resolve(ctx, s.cache, searchKey(query), s.policies.Search, func(ctx context.Context) (domain.SearchResult, error) {
		return s.provider.SearchCoins(ctx, query)
	})
	return result, asUpstream("search", err)
}

// Global returns market-wide totals.
func (s *MarketService) Global(ctx context.Context) (*domain.GlobalStats, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.global")
	defer span.End()

	stats, err := cache.Resolve(ctx, s.cache, globalKey, s.policies.Global, s.provider.FetchGlobal)
	return stats, asUpstream("global", err)
}

// asUpstream reports a caller that gave up waiting on a shared fetch as an
// upstream failure, so front ends see one error kind for market data.
func asUpstream(op string, err error) error {
	if err == nil || provider.IsUpstream(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &provider.UpstreamError{Op: op, Err: err}
	}
	return err
}

// TotalCoins is the record count pagination works against.
func (s *MarketService) TotalCoins(ctx context.Context) int {
	stats, err := s.Global(ctx)
	if err != nil {
		log.Printf("global stats unavailable, using fallback total %d: %v", s.fallbackTotal, err)
		return s.fallbackTotal
	}
	if stats.ActiveCoins <= 0 {
		return s.fallbackTotal
	}
	return stats.ActiveCoins
}

// CacheStats exposes the shared cache counters for health reporting.
func (s *MarketService) CacheStats() cache.Stats {
	return s.cache.Stats()
}
