package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting. Values come from an optional YAML file
// named by DASHBOARD_CONFIG_FILE; environment variables override the file.
type Config struct {
	CoinGeckoBaseURL      string `yaml:"coingecko_base_url"`
	CoinGeckoAPIKey       string `yaml:"coingecko_api_key"`
	CoinGeckoAPIKeyHeader string `yaml:"coingecko_api_key_header"`
	VsCurrency            string `yaml:"vs_currency"`
	CoinGeckoTimeoutSecs  int    `yaml:"coingecko_timeout_secs"`
	CoinGeckoRatePerMin   int    `yaml:"coingecko_rate_per_min"`
	CoinGeckoPollSecs     int    `yaml:"coingecko_poll_secs"`

	RedisURL           string `yaml:"redis_url"`
	FallbackTotalCoins int    `yaml:"fallback_total_coins"`
	SearchDebounceMS   int    `yaml:"search_debounce_ms"`
	FeedPageSize       int    `yaml:"feed_page_size"`

	Port             int    `yaml:"port"`
	APIKey           string `yaml:"api_key"`
	TelegramBotToken string `yaml:"telegram_bot_token"`

	SSHPort            int      `yaml:"ssh_port"`
	SSHHostKeyPath     string   `yaml:"ssh_host_key_path"`
	SSHAllowedKeys     []string `yaml:"ssh_allowed_keys"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs"`

	MCPTransport          string `yaml:"mcp_transport"`
	MCPHTTPBind           string `yaml:"mcp_http_bind"`
	MCPHTTPPort           int    `yaml:"mcp_http_port"`
	MCPAuthToken          string `yaml:"mcp_auth_token"`
	MCPRequestTimeoutSecs int    `yaml:"mcp_request_timeout_secs"`
}

var readFile = os.ReadFile

func Load() *Config {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("DASHBOARD_CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			log.Printf("Warning: %v, using environment only", err)
		}
	}

	cfg.applyEnv()
	cfg.validate()
	return cfg
}

func defaults() *Config {
	return &Config{
		CoinGeckoAPIKeyHeader: "x-cg-demo-api-key",
		VsCurrency:            "usd",
		CoinGeckoTimeoutSecs:  15,
		CoinGeckoRatePerMin:   30,
		CoinGeckoPollSecs:     60,
		FallbackTotalCoins:    10000,
		SearchDebounceMS:      300,
		FeedPageSize:          50,
		Port:                  8080,
		SSHPort:               2222,
		SSHHostKeyPath:        ".ssh/id_ed25519",
		RequestTimeoutSecs:    30,
		MCPTransport:          "stdio",
		MCPHTTPBind:           "127.0.0.1",
		MCPHTTPPort:           8090,
		MCPRequestTimeoutSecs: 15,
	}
}

func (c *Config) loadFile(path string) error {
	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	log.Printf("Loaded config file %s", path)
	return nil
}

func (c *Config) applyEnv() {
	envString("COINGECKO_BASE_URL", &c.CoinGeckoBaseURL)
	envString("COINGECKO_API_KEY", &c.CoinGeckoAPIKey)
	envString("COINGECKO_API_KEY_HEADER", &c.CoinGeckoAPIKeyHeader)
	envString("VS_CURRENCY", &c.VsCurrency)
	envPositiveInt("COINGECKO_TIMEOUT_SECS", &c.CoinGeckoTimeoutSecs)
	envPositiveInt("COINGECKO_RATE_PER_MIN", &c.CoinGeckoRatePerMin)
	envPositiveInt("COINGECKO_POLL_SECS", &c.CoinGeckoPollSecs)

	envString("REDIS_URL", &c.RedisURL)
	envPositiveInt("FALLBACK_TOTAL_COINS", &c.FallbackTotalCoins)
	envPositiveInt("SEARCH_DEBOUNCE_MS", &c.SearchDebounceMS)
	envPositiveInt("FEED_PAGE_SIZE", &c.FeedPageSize)

	envPositiveInt("PORT", &c.Port)
	envString("API_KEY", &c.APIKey)
	envString("TELEGRAM_BOT_TOKEN", &c.TelegramBotToken)

	envPositiveInt("SSH_PORT", &c.SSHPort)
	envString("SSH_HOST_KEY_PATH", &c.SSHHostKeyPath)
	if v := strings.TrimSpace(os.Getenv("SSH_ALLOWED_KEYS")); v != "" {
		c.SSHAllowedKeys = splitList(v)
	}
	envPositiveInt("REQUEST_TIMEOUT_SECS", &c.RequestTimeoutSecs)

	envString("MCP_TRANSPORT", &c.MCPTransport)
	envString("MCP_HTTP_BIND", &c.MCPHTTPBind)
	envPositiveInt("MCP_HTTP_PORT", &c.MCPHTTPPort)
	envString("MCP_AUTH_TOKEN", &c.MCPAuthToken)
	envPositiveInt("MCP_REQUEST_TIMEOUT_SECS", &c.MCPRequestTimeoutSecs)
}

func (c *Config) validate() {
	c.VsCurrency = strings.ToLower(c.VsCurrency)
	if c.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, shared query cache disabled")
	}
	if c.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if c.CoinGeckoAPIKey == "" {
		log.Println("Warning: COINGECKO_API_KEY not set, using the keyless public tier")
	}
	if c.FeedPageSize != 50 && c.FeedPageSize != 100 && c.FeedPageSize != 150 {
		log.Printf("Warning: unsupported FEED_PAGE_SIZE=%d, defaulting to 50", c.FeedPageSize)
		c.FeedPageSize = 50
	}

	c.MCPTransport = strings.ToLower(strings.TrimSpace(c.MCPTransport))
	if c.MCPTransport != "stdio" && c.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", c.MCPTransport)
		c.MCPTransport = "stdio"
	}
	if c.MCPTransport == "http" && c.MCPAuthToken == "" {
		log.Println("Warning: MCP_AUTH_TOKEN not set, MCP HTTP endpoint is unauthenticated")
	}
}

// MCPHTTPAddr is the listen address for the streamable HTTP transport.
func (c *Config) MCPHTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.MCPHTTPBind, c.MCPHTTPPort)
}

func envString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envPositiveInt(key string, dst *int) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, keeping %d", key, v, *dst)
		return
	}
	*dst = n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
