package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"tothemoon/internal/cache"
	"tothemoon/internal/config"
	"tothemoon/internal/job"
	"tothemoon/internal/provider"
	"tothemoon/internal/search"
	"tothemoon/internal/service"
	"tothemoon/internal/tui"
	"tothemoon/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	gossh "golang.org/x/crypto/ssh"
)

// ctxKey is a typed context key to avoid collisions.
type ctxKey string

const sshFingerprintKey ctxKey = "ssh_fingerprint"

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
	startJanitorFunc     = func(j *job.CacheJanitor, ctx context.Context) { go j.Start(ctx) }
	newWishServerFunc    = wish.NewServer
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

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

	// One query cache shared by every session
	redisClient := initRedisFunc(ctx, cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}
	queryCache := cache.NewQueryCache(tracer, cache.SharedLayer(redisClient))
	market := newMarketServiceFunc(
		tracer,
		newMarketProviderFunc(tracer, cfg),
		queryCache,
		service.DefaultPolicies(),
		cfg.FallbackTotalCoins,
	)
	startJanitorFunc(job.NewCacheJanitor(queryCache, time.Minute), ctx)

	allowed := newAllowList(cfg.SSHAllowedKeys)

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			if !allowed.permits(fingerprint) {
				log.Printf("SSH auth denied: user=%s fingerprint=%s", ctx.User(), fingerprint)
				return false
			}
			ctx.SetValue(sshFingerprintKey, fingerprint)
			log.Printf("SSH auth accepted: user=%s fingerprint=%s", ctx.User(), fingerprint)
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				username := s.User()
				if username == "" {
					username = "unknown"
				}
				fingerprint, _ := s.Context().Value(sshFingerprintKey).(string)
				log.Printf("SSH session started: user=%s fingerprint=%s", username, fingerprint)

				svc := tui.Services{
					Market:         market,
					Username:       username,
					SearchDebounce: time.Duration(cfg.SearchDebounceMS) * time.Millisecond,
					RequestTimeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second,
				}
				if svc.SearchDebounce <= 0 {
					svc.SearchDebounce = search.DefaultDebounce
				}

				model := tui.NewAppModel(svc)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}

// allowList holds SHA256 key fingerprints. An empty list admits any key.
type allowList map[string]struct{}

func newAllowList(fingerprints []string) allowList {
	list := allowList{}
	for _, fp := range fingerprints {
		fp = strings.TrimSpace(fp)
		if fp == "" {
			continue
		}
		if !strings.HasPrefix(fp, "SHA256:") {
			fp = "SHA256:" + fp
		}
		list[fp] = struct{}{}
	}
	if len(list) == 0 {
		log.Println("Warning: SSH_ALLOWED_KEYS not set, accepting any public key")
	}
	return list
}

func (l allowList) permits(fingerprint string) bool {
	if len(l) == 0 {
		return true
	}
	_, ok := l[fingerprint]
	return ok
}
