package handler

import (
	"context"
	"net/http"

	"tothemoon/internal/cache"
	"tothemoon/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// MarketReader is the read side of the market service.
type MarketReader interface {
	ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error)
	GetCoin(ctx context.Context, id string) (*domain.CoinDetail, error)
	Search(ctx context.Context, query string) (domain.SearchResult, error)
	Global(ctx context.Context) (*domain.GlobalStats, error)
	TotalCoins(ctx context.Context) int
	VsCurrency() string
	CacheStats() cache.Stats
}

type Handler struct {
	tracer trace.Tracer
	market MarketReader
	feed   http.Handler
}

// New builds the HTTP handlers. feed serves the live WebSocket listing and may be nil.
func New(tracer trace.Tracer, market MarketReader, feed http.Handler) *Handler {
	return &Handler{
		tracer: tracer,
		market: market,
		feed:   feed,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/coins", h.ListCoins)
	api.GET("/coins/:id", h.GetCoin)
	api.GET("/search", h.Search)
	api.GET("/global", h.Global)

	if h.feed != nil {
		r.GET("/ws/top", gin.WrapH(h.feed))
	}
}
