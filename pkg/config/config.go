package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Providers holds the upstream API credentials. A missing key degrades the
// matching capability, it never fails startup.
type Providers struct {
	FinnhubAPIKey      string
	AlphaVantageAPIKey string
	FMPAPIKey          string
	NewsAPIKey         string
	// CoinGecko's public endpoints are keyless; the key is optional (pro tier).
	CoinGeckoAPIKey string
}

// Limits are request-shaping policy constants. The reference values have no
// stated rationale, so they are configurable rather than hard-coded.
type Limits struct {
	MaxArticles        int // cap on the ranked article list
	PerProviderNews    int // fetch limit passed to each news provider
	HistoricalQuarters int // earnings history depth
	DedupePrefixLen    int // headline prefix length for duplicate detection
}

// Timeouts are per-capability upstream call budgets.
type Timeouts struct {
	Quote    time.Duration
	Profile  time.Duration
	News     time.Duration
	Earnings time.Duration
	Crypto   time.Duration
	Chart    time.Duration
}

type Config struct {
	HTTPPort    int
	MetricsPort int

	Providers Providers
	Limits    Limits
	Timeouts  Timeouts

	// RedisURL enables the short-TTL analysis cache when set.
	RedisURL string
	CacheTTL time.Duration

	// Per-client-IP token-bucket limiter at the transport boundary.
	RateLimitPerMinute int
}

// Load reads environment variables and application flags (via a local FlagSet),
// strips out any -test.* flags, and validates required fields.
func Load() (*Config, error) {
	// Fresh FlagSet so we don't collide with `go test` flags
	fs := flag.NewFlagSet("config", flag.ContinueOnError)

	var httpPort, metricsPort int
	var redisURL string
	fs.IntVar(&httpPort, "port", 8080, "HTTP listen port")
	fs.IntVar(&metricsPort, "metrics-port", 8082, "Metrics server port")
	fs.StringVar(&redisURL, "redis", os.Getenv("REDIS_URL"), "Redis URL for the short-TTL cache (optional)")

	var appArgs []string
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "-test.") {
			continue
		}
		appArgs = append(appArgs, arg)
	}
	if err := fs.Parse(appArgs); err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPPort:    httpPort,
		MetricsPort: metricsPort,
		RedisURL:    redisURL,
		CacheTTL:    getDurationEnvOrDefault("CACHE_TTL", 30*time.Second),
		Providers: Providers{
			FinnhubAPIKey:      os.Getenv("FINNHUB_API_KEY"),
			AlphaVantageAPIKey: os.Getenv("ALPHAVANTAGE_API_KEY"),
			FMPAPIKey:          os.Getenv("FMP_API_KEY"),
			NewsAPIKey:         os.Getenv("NEWSAPI_KEY"),
			CoinGeckoAPIKey:    os.Getenv("COINGECKO_API_KEY"),
		},
		Limits: Limits{
			MaxArticles:        getIntEnvOrDefault("MAX_ARTICLES", 25),
			PerProviderNews:    getIntEnvOrDefault("NEWS_FETCH_LIMIT", 20),
			HistoricalQuarters: getIntEnvOrDefault("EARNINGS_QUARTERS", 4),
			DedupePrefixLen:    getIntEnvOrDefault("DEDUPE_PREFIX_LEN", 50),
		},
		Timeouts: Timeouts{
			Quote:    getDurationEnvOrDefault("QUOTE_TIMEOUT", 10*time.Second),
			Profile:  getDurationEnvOrDefault("PROFILE_TIMEOUT", 10*time.Second),
			News:     getDurationEnvOrDefault("NEWS_TIMEOUT", 12*time.Second),
			Earnings: getDurationEnvOrDefault("EARNINGS_TIMEOUT", 8*time.Second),
			Crypto:   getDurationEnvOrDefault("CRYPTO_TIMEOUT", 8*time.Second),
			Chart:    getDurationEnvOrDefault("CHART_TIMEOUT", 15*time.Second),
		},
		RateLimitPerMinute: getIntEnvOrDefault("RATE_LIMIT_PER_MINUTE", 60),
	}

	// PORT env var overrides flag/default if set
	if portEnv := os.Getenv("PORT"); portEnv != "" {
		portVal, err := strconv.Atoi(portEnv)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT env var: %v", err)
		}
		cfg.HTTPPort = portVal
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.Limits.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive, got %d", c.Limits.MaxArticles)
	}
	if c.Limits.HistoricalQuarters <= 0 {
		return fmt.Errorf("EARNINGS_QUARTERS must be positive, got %d", c.Limits.HistoricalQuarters)
	}
	if c.Limits.DedupePrefixLen <= 0 {
		return fmt.Errorf("DEDUPE_PREFIX_LEN must be positive, got %d", c.Limits.DedupePrefixLen)
	}
	return nil
}

// getIntEnvOrDefault returns environment variable as int or default
func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getDurationEnvOrDefault returns environment variable as duration or default
func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
