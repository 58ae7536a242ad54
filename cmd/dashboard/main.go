package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/user"
	"time"

	"tothemoon/internal/cache"
	"tothemoon/internal/config"
	"tothemoon/internal/provider"
	"tothemoon/internal/service"
	"tothemoon/internal/tui"
	"tothemoon/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initRedisFunc         = cache.InitRedis
	initTracerFunc        = tracing.InitTracer
	newMarketProviderFunc = func(tracer trace.Tracer, cfg *config.Config) service.MarketProvider {
		return provider.NewCoinGeckoProvider(tracer, provider.CoinGeckoOptions{
			BaseURL:      cfg.CoinGeckoBaseURL,
			APIKey:       cfg.CoinGeckoAPIKey,
			APIKeyHeader: cfg.CoinGeckoAPIKeyHeader,
			VsCurrency:   cfg.VsCurrency,
			Timeout:      time.Duration(cfg.CoinGeckoTimeoutSecs) * time.Second,
			RatePerMin:   cfg.CoinGeckoRatePerMin,
		})
	}
	newMarketServiceFunc = service.NewMarketService
	runProgramFunc       = func(m tea.Model) error {
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
		return err
	}
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	// The alt screen owns the terminal; keep log output out of it.
	if path := os.Getenv("DASHBOARD_LOG_FILE"); path != "" {
		f, err := tea.LogToFile(path, "dashboard")
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	redisClient := initRedisFunc(ctx, cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}
	market := newMarketServiceFunc(
		tracer,
		newMarketProviderFunc(tracer, cfg),
		cache.NewQueryCache(tracer, cache.SharedLayer(redisClient)),
		service.DefaultPolicies(),
		cfg.FallbackTotalCoins,
	)

	model := tui.NewAppModel(tui.Services{
		Market:         market,
		Username:       currentUser(),
		SearchDebounce: time.Duration(cfg.SearchDebounceMS) * time.Millisecond,
		RequestTimeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second,
	})

	if err := runProgramFunc(model); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("dashboard exited with error: %v", err)
	}
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
