package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tothemoon/internal/cache"
	"tothemoon/internal/config"
	"tothemoon/internal/mcpserver"
	"tothemoon/internal/provider"
	"tothemoon/internal/service"
	"tothemoon/pkg/tracing"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

const version = "1.0.0"

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
	serveFunc            = mcpserver.Serve
	notifyContextFunc    = signal.NotifyContext
)

func main() {
	// stdout carries the stdio protocol
	log.SetOutput(os.Stderr)

	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, stop := notifyContextFunc(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
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

	server := mcpserver.New(tracer, market, version, time.Duration(cfg.MCPRequestTimeoutSecs)*time.Second)

	opts := mcpserver.Options{BearerToken: cfg.MCPAuthToken}
	if cfg.MCPTransport == "http" {
		opts.HTTPAddr = cfg.MCPHTTPAddr()
	}
	if err := serveFunc(ctx, server, opts); err != nil {
		log.Printf("MCP server stopped: %v", err)
		return
	}
	log.Println("MCP server exited")
}
