package provider

import (
	"strings"
	"time"

	"tothemoon/internal/domain"

	"github.com/shopspring/decimal"
)

// Raw response shapes. Only the fields the dashboard renders are decoded.

type marketCoin struct {
	ID                  string              `json:"id"`
	Symbol              string              `json:"symbol"`
	Name                string              `json:"name"`
	Image               string              `json:"image"`
	CurrentPrice        decimal.Decimal     `json:"current_price"`
	MarketCap           decimal.Decimal     `json:"market_cap"`
	MarketCapRank       *int                `json:"market_cap_rank"`
	TotalVolume         decimal.Decimal     `json:"total_volume"`
	Change24h           decimal.NullDecimal `json:"price_change_percentage_24h"`
	Change1hInCurrency  decimal.NullDecimal `json:"price_change_percentage_1h_in_currency"`
	Change24hInCurrency decimal.NullDecimal `json:"price_change_percentage_24h_in_currency"`
	Change7dInCurrency  decimal.NullDecimal `json:"price_change_percentage_7d_in_currency"`
	Change30dInCurrency decimal.NullDecimal `json:"price_change_percentage_30d_in_currency"`
}

func (m marketCoin) toSummary() domain.CoinSummary {
	change24h := m.Change24hInCurrency
	if !change24h.Valid {
		change24h = m.Change24h
	}
	return domain.CoinSummary{
		ID:        m.ID,
		Rank:      validRank(m.MarketCapRank),
		Name:      m.Name,
		Symbol:    strings.ToUpper(m.Symbol),
		ImageURL:  m.Image,
		Price:     nonNegative(m.CurrentPrice),
		Change1h:  m.Change1hInCurrency,
		Change24h: change24h,
		Change7d:  m.Change7dInCurrency,
		Change30d: m.Change30dInCurrency,
		Volume24h: nonNegative(m.TotalVolume),
		MarketCap: nonNegative(m.MarketCap),
	}
}

type coinDetail struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Image         struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage         []string `json:"homepage"`
		BlockchainSite   []string `json:"blockchain_site"`
		OfficialForumURL []string `json:"official_forum_url"`
		SubredditURL     string   `json:"subreddit_url"`
		ReposURL         struct {
			Github []string `json:"github"`
		} `json:"repos_url"`
	} `json:"links"`
	MarketData struct {
		CurrentPrice        map[string]decimal.Decimal     `json:"current_price"`
		MarketCap           map[string]decimal.Decimal     `json:"market_cap"`
		TotalVolume         map[string]decimal.Decimal     `json:"total_volume"`
		Change1hInCurrency  map[string]decimal.NullDecimal `json:"price_change_percentage_1h_in_currency"`
		Change24hInCurrency map[string]decimal.NullDecimal `json:"price_change_percentage_24h_in_currency"`
		Change7dInCurrency  map[string]decimal.NullDecimal `json:"price_change_percentage_7d_in_currency"`
		Change30dInCurrency map[string]decimal.NullDecimal `json:"price_change_percentage_30d_in_currency"`
		Change24h           decimal.NullDecimal            `json:"price_change_percentage_24h"`
		Change7d            decimal.NullDecimal            `json:"price_change_percentage_7d"`
		Change30d           decimal.NullDecimal            `json:"price_change_percentage_30d"`
		CirculatingSupply   decimal.NullDecimal            `json:"circulating_supply"`
		TotalSupply         decimal.NullDecimal            `json:"total_supply"`
		MaxSupply           decimal.NullDecimal            `json:"max_supply"`
		MarketCapRank       *int                           `json:"market_cap_rank"`
	} `json:"market_data"`
}

func (c coinDetail) toDetail(vs string) *domain.CoinDetail {
	md := c.MarketData
	rank := c.MarketCapRank
	if rank == nil {
		rank = md.MarketCapRank
	}
	image := c.Image.Small
	if image == "" {
		image = c.Image.Thumb
	}
	return &domain.CoinDetail{
		CoinSummary: domain.CoinSummary{
			ID:        c.ID,
			Rank:      validRank(rank),
			Name:      c.Name,
			Symbol:    strings.ToUpper(c.Symbol),
			ImageURL:  image,
			Price:     nonNegative(md.CurrentPrice[vs]),
			Change1h:  md.Change1hInCurrency[vs],
			Change24h: inCurrency(md.Change24hInCurrency, vs, md.Change24h),
			Change7d:  inCurrency(md.Change7dInCurrency, vs, md.Change7d),
			Change30d: inCurrency(md.Change30dInCurrency, vs, md.Change30d),
			Volume24h: nonNegative(md.TotalVolume[vs]),
			MarketCap: nonNegative(md.MarketCap[vs]),
		},
		Description:   strings.TrimSpace(c.Description.En),
		LargeImageURL: c.Image.Large,
		CurrentPrice:  md.CurrentPrice,
		MarketCaps:    md.MarketCap,
		Volumes:       md.TotalVolume,
		Supply: domain.Supply{
			Circulating: md.CirculatingSupply,
			Total:       md.TotalSupply,
			Max:         md.MaxSupply,
		},
		Links: domain.Links{
			Homepage:        compact(c.Links.Homepage),
			BlockchainSites: compact(c.Links.BlockchainSite),
			Forums:          compact(c.Links.OfficialForumURL),
			Subreddit:       strings.TrimSpace(c.Links.SubredditURL),
			Repos:           compact(c.Links.ReposURL.Github),
		},
	}
}

type searchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		MarketCapRank *int   `json:"market_cap_rank"`
		Thumb         string `json:"thumb"`
		Large         string `json:"large"`
	} `json:"coins"`
}

func (r searchResponse) toResult(query string) domain.SearchResult {
	coins := make([]domain.SearchCoin, 0, len(r.Coins))
	for _, c := range r.Coins {
		coins = append(coins, domain.SearchCoin{
			ID:     c.ID,
			Name:   c.Name,
			Symbol: strings.ToUpper(c.Symbol),
			Rank:   validRank(c.MarketCapRank),
			Thumb:  c.Thumb,
		})
	}
	return domain.SearchResult{Query: query, Coins: coins}
}

type globalResponse struct {
	Data struct {
		ActiveCryptocurrencies int                        `json:"active_cryptocurrencies"`
		TotalMarketCap         map[string]decimal.Decimal `json:"total_market_cap"`
		TotalVolume            map[string]decimal.Decimal `json:"total_volume"`
		MarketCapChange24hUSD  decimal.NullDecimal        `json:"market_cap_change_percentage_24h_usd"`
		UpdatedAt              int64                      `json:"updated_at"`
	} `json:"data"`
}

func (g globalResponse) toStats(vs string) *domain.GlobalStats {
	d := g.Data
	stats := &domain.GlobalStats{
		ActiveCoins:           d.ActiveCryptocurrencies,
		TotalMarketCap:        d.TotalMarketCap[vs],
		TotalVolume:           d.TotalVolume[vs],
		MarketCapChange24hUSD: d.MarketCapChange24hUSD,
	}
	if d.UpdatedAt > 0 {
		stats.UpdatedAt = time.Unix(d.UpdatedAt, 0).UTC()
	}
	return stats
}

// inCurrency picks the change quoted in vs, falling back to the flat USD
// based field when the per-currency entry is missing.
func inCurrency(byCurrency map[string]decimal.NullDecimal, vs string, flat decimal.NullDecimal) decimal.NullDecimal {
	if v, ok := byCurrency[vs]; ok && v.Valid {
		return v
	}
	return flat
}

func validRank(rank *int) *int {
	if rank == nil || *rank < 1 {
		return nil
	}
	r := *rank
	return &r
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
