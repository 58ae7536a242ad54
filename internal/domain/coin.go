package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoinSummary is one row of the market listing.
type CoinSummary struct {
	ID        string              `json:"id"`
	Rank      *int                `json:"rank,omitempty"`
	Name      string              `json:"name"`
	Symbol    string              `json:"symbol"`
	ImageURL  string              `json:"image_url,omitempty"`
	Price     decimal.Decimal     `json:"price"`
	Change1h  decimal.NullDecimal `json:"change_1h"`
	Change24h decimal.NullDecimal `json:"change_24h"`
	Change7d  decimal.NullDecimal `json:"change_7d"`
	Change30d decimal.NullDecimal `json:"change_30d"`
	Volume24h decimal.Decimal     `json:"volume_24h"`
	MarketCap decimal.Decimal     `json:"market_cap"`
}

// CoinDetail extends CoinSummary with the fields shown on the detail screen.
type CoinDetail struct {
	CoinSummary

	Description   string                     `json:"description"`
	LargeImageURL string                     `json:"large_image_url,omitempty"`
	CurrentPrice  map[string]decimal.Decimal `json:"current_price"`
	MarketCaps    map[string]decimal.Decimal `json:"market_caps"`
	Volumes       map[string]decimal.Decimal `json:"volumes"`
	Supply        Supply                     `json:"supply"`
	Links         Links                      `json:"links"`
}

// Supply holds the circulating/total/max supply figures. Any of them may be unreported.
type Supply struct {
	Circulating decimal.NullDecimal `json:"circulating"`
	Total       decimal.NullDecimal `json:"total"`
	Max         decimal.NullDecimal `json:"max"`
}

type Links struct {
	Homepage        []string `json:"homepage,omitempty"`
	BlockchainSites []string `json:"blockchain_sites,omitempty"`
	Forums          []string `json:"forums,omitempty"`
	Subreddit       string   `json:"subreddit,omitempty"`
	Repos           []string `json:"repos,omitempty"`
}

// SearchCoin is a lightweight stub returned by free-text search.
type SearchCoin struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Rank   *int   `json:"rank,omitempty"`
	Thumb  string `json:"thumb,omitempty"`
}

// SearchResult keeps upstream relevance order.
type SearchResult struct {
	Query string       `json:"query"`
	Coins []SearchCoin `json:"coins"`
}

// Empty reports whether the search resolved with no matches.
func (r SearchResult) Empty() bool {
	return len(r.Coins) == 0
}

// GlobalStats is the market-wide snapshot used to size pagination.
type GlobalStats struct {
	ActiveCoins    int             `json:"active_coins"`
	TotalMarketCap decimal.Decimal `json:"total_market_cap"`
	TotalVolume    decimal.Decimal `json:"total_volume"`
	// MarketCapChange24hUSD is computed upstream on USD market caps whatever
	// the configured quote currency.
	MarketCapChange24hUSD decimal.NullDecimal `json:"market_cap_change_24h_usd"`
	UpdatedAt             time.Time           `json:"updated_at"`
}
