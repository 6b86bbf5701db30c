package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress            string
	DatabaseURI           string
	UsersFile             string
	JWTSecret             string
	TokenTTL              time.Duration
	StartingBalance       decimal.Decimal
	PasswordHasher        string
	MarketAPIURL          string
	MarketAPIKey          string
	MarketSymbols         []string
	MarketCacheTTL        time.Duration
	MarketRefreshInterval time.Duration
	WorkerPoolSize        int
	ShutdownTimeout       time.Duration
	LogLevel              slog.Level
	LogFile               string
	StaticDir             string
	CORSOrigins           []string
}

const (
	defaultPort                  = "8000"
	defaultJWTSecret             = "change-me-in-production"
	defaultTokenTTL              = 24 * time.Hour
	defaultUsersFile             = "./data/users.json"
	defaultStartingBalance       = "50000"
	defaultPasswordHasher        = "argon2id"
	defaultMarketAPIURL          = "https://eodhd.com"
	defaultMarketAPIKey          = "demo"
	defaultMarketSymbols         = "AAPL.US,MSFT.US,TSLA.US,AMZN.US,NVDA.US"
	defaultMarketCacheTTL        = time.Minute
	defaultMarketRefreshInterval = 5 * time.Minute
	defaultWorkerPoolSize        = 4
	defaultShutdownTimeout       = 10 * time.Second
	defaultLogLevel              = "info"
	defaultCORSOrigins           = "*"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:     getString(lookup, "RUN_ADDRESS", ":"+getString(lookup, "PORT", defaultPort)),
		DatabaseURI:    getString(lookup, "DATABASE_URI", ""),
		UsersFile:      getString(lookup, "USERS_FILE", defaultUsersFile),
		JWTSecret:      getString(lookup, "JWT_SECRET", defaultJWTSecret),
		PasswordHasher: getString(lookup, "PASSWORD_HASHER", defaultPasswordHasher),
		MarketAPIURL:   getString(lookup, "MARKET_API_URL", defaultMarketAPIURL),
		MarketAPIKey:   getString(lookup, "MARKET_API_KEY", defaultMarketAPIKey),
		WorkerPoolSize: getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		LogFile:        getString(lookup, "LOG_FILE", ""),
		StaticDir:      getString(lookup, "STATIC_DIR", ""),
	}

	fs := flag.NewFlagSet("tradedesk", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		tokenTTLStr        = getDuration(lookup, "TOKEN_TTL", defaultTokenTTL).String()
		cacheTTLStr        = getDuration(lookup, "MARKET_CACHE_TTL", defaultMarketCacheTTL).String()
		refreshIntervalStr = getDuration(lookup, "MARKET_REFRESH_INTERVAL", defaultMarketRefreshInterval).String()
		shutdownTimeoutStr = getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout).String()
		startingBalanceStr = getString(lookup, "STARTING_BALANCE", defaultStartingBalance)
		symbolsStr         = getString(lookup, "MARKET_SYMBOLS", defaultMarketSymbols)
		logLevelStr        = getString(lookup, "LOG_LEVEL", defaultLogLevel)
		corsStr            = getString(lookup, "CORS_ORIGINS", defaultCORSOrigins)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN; selects the postgres user store")
	fs.StringVar(&cfg.UsersFile, "f", cfg.UsersFile, "Path of the JSON user store")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Lifetime of issued tokens")
	fs.StringVar(&startingBalanceStr, "starting-balance", startingBalanceStr, "Balance credited to new accounts")
	fs.StringVar(&cfg.PasswordHasher, "hasher", cfg.PasswordHasher, "Password hasher: argon2id or bcrypt")
	fs.StringVar(&cfg.MarketAPIURL, "m", cfg.MarketAPIURL, "Quote provider base URL")
	fs.StringVar(&cfg.MarketAPIKey, "market-key", cfg.MarketAPIKey, "Quote provider API token")
	fs.StringVar(&symbolsStr, "symbols", symbolsStr, "Comma separated market universe")
	fs.StringVar(&cacheTTLStr, "cache-ttl", cacheTTLStr, "Quote cache TTL")
	fs.StringVar(&refreshIntervalStr, "refresh-interval", refreshIntervalStr, "Interval between market refreshes")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent refresh workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&logLevelStr, "log-level", logLevelStr, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Rotate logs into this file instead of stdout")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Serve frontend pages from this directory")
	fs.StringVar(&corsStr, "cors", corsStr, "Comma separated allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.MarketCacheTTL, err = time.ParseDuration(cacheTTLStr); err != nil {
		return nil, fmt.Errorf("invalid cache ttl: %w", err)
	}

	if cfg.MarketRefreshInterval, err = time.ParseDuration(refreshIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid refresh interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.StartingBalance, err = decimal.NewFromString(startingBalanceStr); err != nil {
		return nil, fmt.Errorf("invalid starting balance: %w", err)
	}

	if err = cfg.LogLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	switch strings.ToLower(cfg.PasswordHasher) {
	case "argon2id", "bcrypt":
		cfg.PasswordHasher = strings.ToLower(cfg.PasswordHasher)
	default:
		return nil, fmt.Errorf("invalid password hasher %q", cfg.PasswordHasher)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	cfg.MarketSymbols = splitList(symbolsStr, strings.ToUpper)
	cfg.CORSOrigins = splitList(corsStr, nil)
	cfg.MarketAPIURL = strings.TrimRight(cfg.MarketAPIURL, "/")

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.MarketCacheTTL <= 0 {
		cfg.MarketCacheTTL = defaultMarketCacheTTL
	}

	if cfg.MarketRefreshInterval <= 0 {
		cfg.MarketRefreshInterval = defaultMarketRefreshInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if !cfg.StartingBalance.IsPositive() {
		cfg.StartingBalance = decimal.RequireFromString(defaultStartingBalance)
	}

	if cfg.UsersFile == "" {
		cfg.UsersFile = defaultUsersFile
	}

	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{defaultCORSOrigins}
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string, normalize func(string) string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if normalize != nil {
			item = normalize(item)
		}
		out = append(out, item)
	}
	return out
}
