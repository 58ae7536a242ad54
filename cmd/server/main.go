package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tothemoon/internal/bot"
	"tothemoon/internal/cache"
	"tothemoon/internal/config"
	"tothemoon/internal/handler"
	"tothemoon/internal/job"
	"tothemoon/internal/provider"
	"tothemoon/internal/service"
	"tothemoon/internal/stream"
	"tothemoon/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "tothemoon/docs"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initRedisFunc         = cache.InitRedis
	initTracerFunc        = tracing.InitTracer
	newMarketProviderFunc = func(tracer trace.Tracer, cfg *config.Config) service.MarketProvider {
		return provider.NewCoinGeckoProvider(tracer, coinGeckoOptions(cfg))
	}
	newMarketServiceFunc   = service.NewMarketService
	newListingPollerFunc   = job.NewListingPoller
	startPollerFunc        = func(p *job.ListingPoller, ctx context.Context) { go p.Start(ctx) }
	startJanitorFunc       = func(j *job.CacheJanitor, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           To The Moon Market API
// @version         1.0
// @description     Cryptocurrency market listing, coin detail and search backed by CoinGecko.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Query cache with optional shared Redis layer
	redisClient := initRedisFunc(ctx, cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}
	queryCache := cache.NewQueryCache(tracer, cache.SharedLayer(redisClient))

	// Create provider and market service
	market := newMarketServiceFunc(
		tracer,
		newMarketProviderFunc(tracer, cfg),
		queryCache,
		service.DefaultPolicies(),
		cfg.FallbackTotalCoins,
	)

	// Live feed of the top listing page (background goroutines, stopped by ctx cancel)
	feed := stream.NewBroadcaster()
	defer feed.Close()
	poller := newListingPollerFunc(tracer, market, feed, cfg.FeedPageSize, cfg.CoinGeckoPollSecs)
	startPollerFunc(poller, ctx)
	startJanitorFunc(job.NewCacheJanitor(queryCache, time.Minute), ctx)

	// Start Telegram bot
	startTelegramBotFunc(cfg.TelegramBotToken, market)

	// Create handlers and routes
	h := newHandlerFunc(tracer, market, feed)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("tothemoon"))
	r.Use(handler.RequestID())

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		log.Printf("HTTP server listening on %s", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func coinGeckoOptions(cfg *config.Config) provider.CoinGeckoOptions {
	return provider.CoinGeckoOptions{
		BaseURL:      cfg.CoinGeckoBaseURL,
		APIKey:       cfg.CoinGeckoAPIKey,
		APIKeyHeader: cfg.CoinGeckoAPIKeyHeader,
		VsCurrency:   cfg.VsCurrency,
		Timeout:      time.Duration(cfg.CoinGeckoTimeoutSecs) * time.Second,
		RatePerMin:   cfg.CoinGeckoRatePerMin,
	}
}
