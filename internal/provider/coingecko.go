package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tothemoon/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL       = "https://api.coingecko.com/api/v3"
	defaultAPIKeyHeader    = "x-cg-demo-api-key"
	defaultVsCurrency      = "usd"
	priceChangePercentages = "1h,24h,7d,30d"
	maxErrorBody           = 512
)

// CoinGeckoOptions configures the client. Zero values fall back to public API defaults.
type CoinGeckoOptions struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	VsCurrency   string
	Timeout      time.Duration
	RatePerMin   int
}

// CoinGeckoProvider talks to the CoinGecko REST API. It never retries; callers decide.
type CoinGeckoProvider struct {
	client       *http.Client
	baseURL      string
	apiKey       string
	apiKeyHeader string
	vsCurrency   string
	tracer       trace.Tracer
	limiter      *RateLimiter
}

// NewCoinGeckoProvider creates a provider with a shared rate limiter.
// The demo plan allows 30 calls per minute, which is the default budget.
func NewCoinGeckoProvider(tracer trace.Tracer, opts CoinGeckoOptions) *CoinGeckoProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = coingeckoBaseURL
	}
	if opts.APIKeyHeader == "" {
		opts.APIKeyHeader = defaultAPIKeyHeader
	}
	if opts.VsCurrency == "" {
		opts.VsCurrency = defaultVsCurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RatePerMin <= 0 {
		opts.RatePerMin = 30
	}
	return &CoinGeckoProvider{
		client:       &http.Client{Timeout: opts.Timeout},
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		apiKey:       opts.APIKey,
		apiKeyHeader: opts.APIKeyHeader,
		vsCurrency:   strings.ToLower(opts.VsCurrency),
		tracer:       tracer,
		limiter:      NewPerMinuteLimiter(opts.RatePerMin),
	}
}

// VsCurrency is the quote currency every price is expressed in.
func (p *CoinGeckoProvider) VsCurrency() string {
	return p.vsCurrency
}

// ListCoins fetches one page of the market listing in the requested order.
func (p *CoinGeckoProvider) ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.list-coins")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", q.Page),
		attribute.Int("per_page", q.PageSize),
		attribute.String("order", q.Order()),
	)

	params := url.Values{}
	params.Set("vs_currency", p.vsCurrency)
	params.Set("order", q.Order())
	params.Set("per_page", strconv.Itoa(q.PageSize))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", priceChangePercentages)

	var raw []marketCoin
	if err := p.getJSON(ctx, "list-coins", "/coins/markets", params, &raw); err != nil {
		span.RecordError(err)
		return nil, err
	}

	coins := make([]domain.CoinSummary, 0, len(raw))
	for _, c := range raw {
		coins = append(coins, c.toSummary())
	}
	return coins, nil
}

// GetCoinDetail fetches the detail document for one coin id.
func (p *CoinGeckoProvider) GetCoinDetail(ctx context.Context, id string) (*domain.CoinDetail, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.get-coin-detail")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", id))

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &UpstreamError{Op: "get-coin-detail", StatusCode: http.StatusNotFound, Body: "empty coin id"}
	}

	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")

	var raw coinDetail
	if err := p.getJSON(ctx, "get-coin-detail", "/coins/"+url.PathEscape(id), params, &raw); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return raw.toDetail(p.vsCurrency), nil
}

// SearchCoins looks up coins by name or symbol. A blank query resolves to an
// empty result without touching the network.
func (p *CoinGeckoProvider) SearchCoins(ctx context.Context, query string) (domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.SearchResult{Coins: []domain.SearchCoin{}}, nil
	}

	ctx, span := p.tracer.Start(ctx, "coingecko.search-coins")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	params := url.Values{}
	params.Set("query", query)

	var raw searchResponse
	if err := p.getJSON(ctx, "search-coins", "/search", params, &raw); err != nil {
		span.RecordError(err)
		return domain.SearchResult{}, err
	}
	return raw.toResult(query), nil
}

// FetchGlobal fetches market-wide totals, including the active coin count.
func (p *CoinGeckoProvider) FetchGlobal(ctx context.Context) (*domain.GlobalStats, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-global")
	defer span.End()

	var raw globalResponse
	if err := p.getJSON(ctx, "fetch-global", "/global", nil, &raw); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return raw.toStats(p.vsCurrency), nil
}

func (p *CoinGeckoProvider) getJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	endpoint := p.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	body, err := p.doRequest(ctx, op, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, op, endpoint string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set(p.apiKeyHeader, p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
