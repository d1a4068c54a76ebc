package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	CoinID           string
	CoinGeckoAPIKey  string
	CoinGeckoPro     bool
	CoinGeckoBaseURL string

	NewsAPIKey      string
	NewsAPIBaseURL  string
	NewsQuery       string
	NewsLanguage    string
	NewsLookbackHrs int

	DatabaseURL string
	DBPath      string
	RedisURL    string

	IngestIntervalSecs     int
	DashboardPollSecs      int
	UpstreamTimeoutSecs    int
	UpstreamRetryAttempts  int
	UpstreamRetryDelaySecs int

	HTTPPort   int
	LayoutFile string
	// APIKey guards POST /api/refresh; empty disables the check.
	APIKey string

	TelegramBotToken string

	OpenAIAPIKey string
	OpenAIModel  string

	SSHPort        int
	SSHHostKeyPath string
	// SSHAuthorizedKeys is an authorized_keys file; empty accepts any key.
	SSHAuthorizedKeys string

	MCPTransport       string
	MCPHTTPBind        string
	MCPHTTPPort        int
	MCPAuthToken       string
	MCPRateLimitPerMin int

	LogLevel  string
	LogFormat string

	// Warnings collects non-fatal problems found while loading; they are
	// logged once the logger exists.
	Warnings []string
}

// UsesPostgres reports whether DatabaseURL selects the Postgres store.
func (c *Config) UsesPostgres() bool {
	dsn := strings.ToLower(strings.TrimSpace(c.DatabaseURL))
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func Load() *Config {
	cfg := &Config{
		CoinGeckoAPIKey:  os.Getenv("COINGECKO_API_KEY"),
		CoinGeckoBaseURL: strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL")),
		NewsAPIKey:       os.Getenv("NEWS_API_KEY"),
		NewsAPIBaseURL:   strings.TrimSpace(os.Getenv("NEWS_API_BASE_URL")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		LayoutFile:       strings.TrimSpace(os.Getenv("DASHBOARD_LAYOUT_FILE")),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		LogLevel:         strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		LogFormat:        strings.TrimSpace(os.Getenv("LOG_FORMAT")),
	}

	cfg.CoinID = strings.ToLower(strings.TrimSpace(os.Getenv("COIN_ID")))
	if cfg.CoinID == "" {
		cfg.CoinID = "bitcoin"
	}
	cfg.CoinGeckoPro = strings.EqualFold(strings.TrimSpace(os.Getenv("COINGECKO_PRO")), "true")

	if cfg.CoinGeckoAPIKey == "" {
		cfg.warn("COINGECKO_API_KEY not set, using the keyless public tier")
	}
	if cfg.NewsAPIKey == "" {
		cfg.warn("NEWS_API_KEY not set, news requests will be rejected upstream")
	}

	cfg.NewsQuery = strings.TrimSpace(os.Getenv("NEWS_QUERY"))
	if cfg.NewsQuery == "" {
		cfg.NewsQuery = cfg.CoinID
	}
	cfg.NewsLanguage = strings.ToLower(strings.TrimSpace(os.Getenv("NEWS_LANGUAGE")))
	if cfg.NewsLanguage == "" {
		cfg.NewsLanguage = "en"
	}
	cfg.NewsLookbackHrs = positiveInt("NEWS_LOOKBACK_HOURS", 24)

	cfg.DBPath = strings.TrimSpace(os.Getenv("DB_PATH"))
	if cfg.DBPath == "" {
		cfg.DBPath = "daily-btc.db"
	}
	if cfg.DatabaseURL != "" && !cfg.UsesPostgres() {
		cfg.warn("DATABASE_URL is not a postgres DSN, falling back to SQLite at DB_PATH")
	}
	if cfg.RedisURL == "" {
		cfg.warn("REDIS_URL not set, report cache disabled")
	}

	cfg.IngestIntervalSecs = positiveInt("INGEST_INTERVAL_SECS", 3600)
	cfg.DashboardPollSecs = positiveInt("DASHBOARD_POLL_SECS", 60)
	cfg.UpstreamTimeoutSecs = positiveInt("UPSTREAM_TIMEOUT_SECS", 30)
	cfg.UpstreamRetryAttempts = positiveInt("UPSTREAM_RETRY_ATTEMPTS", 3)
	cfg.UpstreamRetryDelaySecs = positiveInt("UPSTREAM_RETRY_DELAY_SECS", 10)

	cfg.HTTPPort = positiveInt("HTTP_PORT", 8080)

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.warn("OPENAI_API_KEY not set, using heuristic sentiment classifier")
	}

	cfg.SSHPort = positiveInt("SSH_PORT", 2222)
	cfg.SSHAuthorizedKeys = strings.TrimSpace(os.Getenv("SSH_AUTHORIZED_KEYS"))
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/daily_btc_ed25519"
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		cfg.warn("unsupported MCP_TRANSPORT=" + strconv.Quote(cfg.MCPTransport) + ", defaulting to stdio")
		cfg.MCPTransport = "stdio"
	}
	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}
	cfg.MCPHTTPPort = positiveInt("MCP_HTTP_PORT", 8090)
	cfg.MCPAuthToken = strings.TrimSpace(os.Getenv("MCP_AUTH_TOKEN"))
	cfg.MCPRateLimitPerMin = positiveInt("MCP_RATE_LIMIT_PER_MIN", 60)

	return cfg
}

func (c *Config) warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

func positiveInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
