package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tothemoon/internal/domain"
	"tothemoon/internal/pagination"
	"tothemoon/internal/provider"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// CoinPage is the response body of the listing endpoint.
type CoinPage struct {
	Page        int                  `json:"page"`
	PerPage     int                  `json:"per_page"`
	Order       string               `json:"order"`
	Currency    string               `json:"currency"`
	Total       int                  `json:"total"`
	TotalPages  int                  `json:"total_pages"`
	HasNext     bool                 `json:"has_next"`
	HasPrevious bool                 `json:"has_previous"`
	Coins       []domain.CoinSummary `json:"coins"`
}

// ListCoins godoc
// @Summary      List coins by market
// @Description  Returns one page of the market listing, ordered upstream
// @Tags         coins
// @Produce      json
// @Param        page      query  int     false  "1-based page number"  default(1)
// @Param        per_page  query  int     false  "Page size (50, 100, 150)"  default(50)
// @Param        sort      query  string  false  "Sort field (market_cap, volume, current_price, price_change_percentage_24h, ...)"
// @Param        dir       query  string  false  "Sort direction (asc, desc)"  default(desc)
// @Success      200  {object}  CoinPage
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/coins [get]
func (h *Handler) ListCoins(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-coins")
	defer span.End()

	page, err := intQuery(c, "page", 1)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return
	}
	perPage, err := intQuery(c, "per_page", domain.DefaultPageSize)
	if err != nil || !domain.ValidPageSize(perPage) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "unsupported per_page",
			"supported_page_size": domain.PageSizes,
		})
		return
	}
	sort, err := domain.ParseSort(c.Query("sort"), c.Query("dir"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            err.Error(),
			"supported_fields": domain.SortFields,
		})
		return
	}

	pager, err := pagination.New(perPage, h.market.TotalCoins(ctx))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := pager.GoToPage(page - 1); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "total_pages": pager.TotalPages()})
		return
	}

	q := pager.Query(sort)
	span.SetAttributes(attribute.Int("page", q.Page), attribute.Int("per_page", q.PageSize), attribute.String("order", q.Order()))

	coins, err := h.market.ListCoins(ctx, q)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, CoinPage{
		Page:        q.Page,
		PerPage:     q.PageSize,
		Order:       q.Order(),
		Currency:    h.market.VsCurrency(),
		Total:       pager.Total(),
		TotalPages:  pager.TotalPages(),
		HasNext:     pager.CanGoNext(),
		HasPrevious: pager.CanGoPrevious(),
		Coins:       coins,
	})
}

// GetCoin godoc
// @Summary      Get coin detail
// @Description  Returns description, multi-currency market data, supply and links for one coin
// @Tags         coins
// @Produce      json
// @Param        id  path  string  true  "Coin identifier (e.g., bitcoin)"
// @Success      200  {object}  domain.CoinDetail
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/coins/{id} [get]
func (h *Handler) GetCoin(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-coin")
	defer span.End()

	id := strings.ToLower(strings.TrimSpace(c.Param("id")))
	span.SetAttributes(attribute.String("coin.id", id))

	detail, err := h.market.GetCoin(ctx, id)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Search godoc
// @Summary      Search coins
// @Description  Free-text search by name or symbol; results keep upstream relevance order
// @Tags         coins
// @Produce      json
// @Param        q      query  string  true   "Search text"
// @Param        limit  query  int     false  "Maximum results (0 for all)"  default(0)
// @Success      200  {object}  domain.SearchResult
// @Failure      502  {object}  map[string]string
// @Router       /api/search [get]
func (h *Handler) Search(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.search")
	defer span.End()

	query := strings.TrimSpace(c.Query("q"))
	span.SetAttributes(attribute.String("query", query))

	res, err := h.market.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	if limit, err := intQuery(c, "limit", 0); err == nil && limit > 0 && len(res.Coins) > limit {
		res.Coins = res.Coins[:limit]
	}
	if res.Coins == nil {
		res.Coins = []domain.SearchCoin{}
	}
	res.Query = query
	c.JSON(http.StatusOK, res)
}

// Global godoc
// @Summary      Global market stats
// @Description  Returns active coin count, total market cap and volume
// @Tags         coins
// @Produce      json
// @Success      200  {object}  domain.GlobalStats
// @Failure      502  {object}  map[string]string
// @Router       /api/global [get]
func (h *Handler) Global(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.global")
	defer span.End()

	stats, err := h.market.Global(ctx)
	if err != nil {
		span.RecordError(err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// writeError maps upstream failures onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case provider.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": provider.Describe(err)})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": provider.Describe(err), "detail": err.Error()})
	case provider.IsUpstream(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": provider.Describe(err), "detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
