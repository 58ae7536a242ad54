package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"tothemoon/internal/domain"
	"tothemoon/internal/provider"
	"tothemoon/internal/table"

	tele "gopkg.in/telebot.v3"
)

const (
	defaultTopCount = 10
	maxTopCount     = 25
	maxSearchLines  = 5
	replyTimeout    = 15 * time.Second
)

// MarketReader is the slice of the market service the bot needs.
type MarketReader interface {
	ListCoins(ctx context.Context, q domain.PageQuery) ([]domain.CoinSummary, error)
	GetCoin(ctx context.Context, id string) (*domain.CoinDetail, error)
	Search(ctx context.Context, query string) (domain.SearchResult, error)
	VsCurrency() string
}

func StartTelegramBot(token string, market MarketReader) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/price", func(c tele.Context) error {
		return c.Send(priceReply(market, c.Args()))
	})
	b.Handle("/top", func(c tele.Context) error {
		return c.Send(topReply(market, c.Args()))
	})
	b.Handle("/search", func(c tele.Context) error {
		return c.Send(searchReply(market, c.Args()))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func priceReply(market MarketReader, args []string) string {
	if len(args) == 0 {
		return "Usage: /price bitcoin\nUse /search to find a coin id."
	}
	id := strings.ToLower(args[0])

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	d, err := market.GetCoin(ctx, id)
	if err != nil {
		if provider.IsNotFound(err) {
			return fmt.Sprintf("Unknown coin: %s\nUse /search to find a coin id.", id)
		}
		return fmt.Sprintf("Error fetching price for %s: %s", id, provider.Describe(err))
	}

	f := table.NewFormatter(market.VsCurrency())
	return fmt.Sprintf(
		"%s (%s)\nPrice: %s\n24h Change: %s\n24h Volume: %s\nMarket Cap: %s",
		d.Name, d.Symbol, f.Money(d.Price), table.Percent(d.Change24h),
		f.Money(d.Volume24h), f.Money(d.MarketCap),
	)
}

func topReply(market MarketReader, args []string) string {
	n := defaultTopCount
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Sprintf("Usage: /top [1-%d]", maxTopCount)
		}
		n = min(v, maxTopCount)
	}

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	coins, err := market.ListCoins(ctx, domain.PageQuery{Page: 1, PageSize: domain.DefaultPageSize})
	if err != nil {
		return "Error fetching listing: " + provider.Describe(err)
	}
	if len(coins) == 0 {
		return "No data available"
	}

	f := table.NewFormatter(market.VsCurrency())
	var b strings.Builder
	for _, c := range coins[:min(n, len(coins))] {
		fmt.Fprintf(&b, "%s. %s %s  %s\n", table.Rank(c.Rank), c.Symbol, f.Money(c.Price), table.Percent(c.Change24h))
	}
	return strings.TrimRight(b.String(), "\n")
}

func searchReply(market MarketReader, args []string) string {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return "Usage: /search ethereum"
	}

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	res, err := market.Search(ctx, query)
	if err != nil {
		return "Error searching: " + provider.Describe(err)
	}
	if res.Empty() {
		return fmt.Sprintf("No coins found for %q", query)
	}

	var b strings.Builder
	for _, c := range res.Coins[:min(maxSearchLines, len(res.Coins))] {
		fmt.Fprintf(&b, "%s (%s) id: %s\n", c.Name, c.Symbol, c.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}
