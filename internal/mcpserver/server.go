package mcpserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"tothemoon/internal/domain"
	"tothemoon/internal/provider"
	"tothemoon/internal/table"
	"tothemoon/internal/textutil"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxSearchResults = 10

// MarketReader is the slice of the market service exposed as tools.
type MarketReader interface {
	ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error)
	GetCoin(ctx context.Context, id string) (*domain.CoinDetail, error)
	Search(ctx context.Context, query string) (domain.SearchResult, error)
	VsCurrency() string
}

type ListCoinsInput struct {
	Page    int    `json:"page,omitempty" jsonschema:"1-based page number, defaults to 1"`
	PerPage int    `json:"per_page,omitempty" jsonschema:"page size: 50, 100 or 150"`
	Sort    string `json:"sort,omitempty" jsonschema:"sort field such as market_cap, volume or current_price"`
	Dir     string `json:"dir,omitempty" jsonschema:"sort direction: asc or desc"`
}

type CoinRow struct {
	ID        string `json:"id"`
	Rank      int    `json:"rank,omitempty"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	Volume24h string `json:"volume_24h"`
	MarketCap string `json:"market_cap"`
}

type ListCoinsOutput struct {
	Page     int       `json:"page"`
	PerPage  int       `json:"per_page"`
	Order    string    `json:"order"`
	Currency string    `json:"currency"`
	Coins    []CoinRow `json:"coins"`
}

type GetCoinInput struct {
	ID string `json:"id" jsonschema:"coin identifier, e.g. bitcoin"`
}

type GetCoinOutput struct {
	Coin              CoinRow  `json:"coin"`
	Change1h          string   `json:"change_1h"`
	Change7d          string   `json:"change_7d"`
	Change30d         string   `json:"change_30d"`
	CirculatingSupply string   `json:"circulating_supply"`
	TotalSupply       string   `json:"total_supply"`
	MaxSupply         string   `json:"max_supply"`
	Homepage          string   `json:"homepage,omitempty"`
	About             []string `json:"about,omitempty"`
}

type SearchCoinsInput struct {
	Query string `json:"query" jsonschema:"free text matched against coin names and symbols"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, defaults to 10"`
}

type SearchCoinsOutput struct {
	Query string              `json:"query"`
	Coins []domain.SearchCoin `json:"coins"`
}

type tools struct {
	tracer  trace.Tracer
	market  MarketReader
	timeout time.Duration
}

// New builds an MCP server exposing the market listing, coin detail and search.
// A positive timeout bounds every tool call.
func New(tracer trace.Tracer, market MarketReader, version string, timeout time.Duration) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "tothemoon", Version: version}, nil)
	t := &tools{tracer: tracer, market: market, timeout: timeout}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_coins",
		Description: "List one page of cryptocurrencies ordered by market cap or another sort field.",
	}, t.listCoins)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_coin",
		Description: "Get price, changes, supply and description for one coin by id.",
	}, t.getCoin)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_coins",
		Description: "Search coins by name or symbol. Results keep relevance order.",
	}, t.searchCoins)

	return server
}

func (t *tools) listCoins(ctx context.Context, _ *mcp.CallToolRequest, in ListCoinsInput) (*mcp.CallToolResult, ListCoinsOutput, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	ctx, span := t.tracer.Start(ctx, "mcp.list-coins")
	defer span.End()

	q := domain.PageQuery{Page: in.Page, PageSize: in.PerPage}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = domain.DefaultPageSize
	}
	if q.Page < 1 {
		return nil, ListCoinsOutput{}, errors.New("page must be a positive integer")
	}
	if !domain.ValidPageSize(q.PageSize) {
		return nil, ListCoinsOutput{}, fmt.Errorf("unsupported per_page %d, use one of %v", q.PageSize, domain.PageSizes)
	}
	sort, err := domain.ParseSort(in.Sort, in.Dir)
	if err != nil {
		return nil, ListCoinsOutput{}, err
	}
	q.Sort = sort
	span.SetAttributes(attribute.String("order", q.Order()), attribute.Int("page", q.Page))

	coins, err := t.market.ListCoins(ctx, q)
	if err != nil {
		span.RecordError(err)
		return nil, ListCoinsOutput{}, toolError(err)
	}

	f := table.NewFormatter(t.market.VsCurrency())
	out := ListCoinsOutput{
		Page:     q.Page,
		PerPage:  q.PageSize,
		Order:    q.Order(),
		Currency: t.market.VsCurrency(),
		Coins:    make([]CoinRow, 0, len(coins)),
	}
	for _, c := range coins {
		out.Coins = append(out.Coins, toRow(f, c))
	}
	return nil, out, nil
}

func (t *tools) getCoin(ctx context.Context, _ *mcp.CallToolRequest, in GetCoinInput) (*mcp.CallToolResult, GetCoinOutput, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	ctx, span := t.tracer.Start(ctx, "mcp.get-coin")
	defer span.End()

	id := strings.ToLower(strings.TrimSpace(in.ID))
	if id == "" {
		return nil, GetCoinOutput{}, errors.New("id is required")
	}
	span.SetAttributes(attribute.String("coin.id", id))

	d, err := t.market.GetCoin(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, GetCoinOutput{}, toolError(err)
	}

	f := table.NewFormatter(t.market.VsCurrency())
	out := GetCoinOutput{
		Coin:              toRow(f, d.CoinSummary),
		Change1h:          table.Percent(d.Change1h),
		Change7d:          table.Percent(d.Change7d),
		Change30d:         table.Percent(d.Change30d),
		CirculatingSupply: f.Amount(d.Supply.Circulating),
		TotalSupply:       f.Amount(d.Supply.Total),
		MaxSupply:         f.Amount(d.Supply.Max),
		About:             textutil.Paragraphs(d.Description, 3),
	}
	if len(d.Links.Homepage) > 0 {
		out.Homepage = d.Links.Homepage[0]
	}
	return nil, out, nil
}

func (t *tools) searchCoins(ctx context.Context, _ *mcp.CallToolRequest, in SearchCoinsInput) (*mcp.CallToolResult, SearchCoinsOutput, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	ctx, span := t.tracer.Start(ctx, "mcp.search-coins")
	defer span.End()

	query := strings.TrimSpace(in.Query)
	span.SetAttributes(attribute.String("query", query))

	res, err := t.market.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, SearchCoinsOutput{}, toolError(err)
	}
	limit := in.Limit
	if limit <= 0 {
		limit = maxSearchResults
	}
	coins := res.Coins
	if len(coins) > limit {
		coins = coins[:limit]
	}
	if coins == nil {
		coins = []domain.SearchCoin{}
	}
	return nil, SearchCoinsOutput{Query: query, Coins: coins}, nil
}

func (t *tools) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.timeout)
}

func toRow(f table.Formatter, c domain.CoinSummary) CoinRow {
	row := CoinRow{
		ID:        c.ID,
		Name:      c.Name,
		Symbol:    c.Symbol,
		Price:     f.Money(c.Price),
		Change24h: table.Percent(c.Change24h),
		Volume24h: f.Money(c.Volume24h),
		MarketCap: f.Money(c.MarketCap),
	}
	if c.Rank != nil {
		row.Rank = *c.Rank
	}
	return row
}

func toolError(err error) error {
	if provider.IsUpstream(err) {
		return fmt.Errorf("%s: %w", provider.Describe(err), err)
	}
	return err
}

// Options selects the transport. An empty HTTPAddr serves over stdio.
type Options struct {
	HTTPAddr    string
	BearerToken string
}

// Serve runs the server until ctx is cancelled or the transport closes.
func Serve(ctx context.Context, server *mcp.Server, opts Options) error {
	if opts.HTTPAddr == "" {
		log.Println("MCP server listening on stdio")
		return server.Run(ctx, &mcp.StdioTransport{})
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
	srv := &http.Server{
		Addr:              opts.HTTPAddr,
		Handler:           RequireBearer(opts.BearerToken, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("MCP server listening on %s", opts.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// RequireBearer rejects requests without the configured bearer token. An empty
// token leaves the handler open.
func RequireBearer(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="tothemoon"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
