package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

var configEnv = []string{
	"DASHBOARD_CONFIG_FILE", "COINGECKO_BASE_URL", "COINGECKO_API_KEY", "VS_CURRENCY",
	"COINGECKO_POLL_SECS", "REDIS_URL", "TELEGRAM_BOT_TOKEN", "PORT", "SSH_ALLOWED_KEYS",
	"SEARCH_DEBOUNCE_MS", "FEED_PAGE_SIZE", "MCP_TRANSPORT", "MCP_AUTH_TOKEN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.RedisURL != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisURL)
	}
	if cfg.CoinGeckoPollSecs != 60 || cfg.Port != 8080 || cfg.SearchDebounceMS != 300 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.VsCurrency != "usd" || cfg.FallbackTotalCoins != 10000 {
		t.Fatalf("unexpected market defaults: %+v", cfg)
	}
	if cfg.MCPTransport != "stdio" || cfg.MCPHTTPAddr() != "127.0.0.1:8090" {
		t.Fatalf("unexpected mcp defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("COINGECKO_POLL_SECS", "120")
	t.Setenv("VS_CURRENCY", "EUR")
	t.Setenv("SSH_ALLOWED_KEYS", "SHA256:aaa, SHA256:bbb,")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.CoinGeckoPollSecs != 120 {
		t.Fatalf("expected poll secs 120, got %d", cfg.CoinGeckoPollSecs)
	}
	if cfg.VsCurrency != "eur" {
		t.Fatalf("expected lower-cased currency, got %s", cfg.VsCurrency)
	}
	if len(cfg.SSHAllowedKeys) != 2 || cfg.SSHAllowedKeys[1] != "SHA256:bbb" {
		t.Fatalf("unexpected allowed keys %q", cfg.SSHAllowedKeys)
	}

	t.Setenv("COINGECKO_POLL_SECS", "bad")
	cfg = Load()
	if cfg.CoinGeckoPollSecs != 60 {
		t.Fatalf("invalid poll secs should fall back to default, got %d", cfg.CoinGeckoPollSecs)
	}
}

func TestLoadInvalidChoicesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEED_PAGE_SIZE", "75")
	t.Setenv("MCP_TRANSPORT", "grpc")

	cfg := Load()
	if cfg.FeedPageSize != 50 || cfg.MCPTransport != "stdio" {
		t.Fatalf("expected fallbacks, got %+v", cfg)
	}
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	body := []byte("vs_currency: gbp\nport: 9000\nredis_url: cache:6379\nssh_allowed_keys:\n  - SHA256:file\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DASHBOARD_CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg := Load()
	if cfg.VsCurrency != "gbp" || cfg.RedisURL != "cache:6379" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Port != 9100 {
		t.Fatalf("env should override file, got port %d", cfg.Port)
	}
	if len(cfg.SSHAllowedKeys) != 1 || cfg.SSHAllowedKeys[0] != "SHA256:file" {
		t.Fatalf("unexpected allowed keys %q", cfg.SSHAllowedKeys)
	}
	if cfg.SearchDebounceMS != 300 {
		t.Fatalf("unset file keys keep defaults, got %d", cfg.SearchDebounceMS)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHBOARD_CONFIG_FILE", "/does/not/exist.yaml")

	orig := readFile
	defer func() { readFile = orig }()
	readFile = func(string) ([]byte, error) { return nil, errors.New("boom") }

	cfg := Load()
	if cfg.Port != 8080 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}
