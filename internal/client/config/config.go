package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// ErrInvalidConfig is returned when the merged configuration is unusable.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings for the priceopt CLI.
type Config struct {
	// ServerURL is the API base URL, without the /api suffix.
	ServerURL      string
	RequestTimeout time.Duration
	// SearchDebounce is the quiet period before a typed query is committed.
	SearchDebounce      time.Duration
	OnlineCheckInterval time.Duration

	StoreBackend string
	DBPath       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// RateLimit caps outbound requests per second; zero disables it.
	RateLimit float64
	RateBurst int

	LogBackend string
	LogLevel   string
	LogFile    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.SearchDebounce = time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.StoreBackend = StoreSQLite
	c.DBPath = "priceopt.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "priceopt:"
	c.RateLimit = 10
	c.RateBurst = 5
	c.LogBackend = "slog"
	c.LogLevel = "warn"
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server url %q", ErrInvalidConfig, c.ServerURL)
	}
	switch c.StoreBackend {
	case StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("%w: store backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("%w: negative search debounce", ErrInvalidConfig)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("%w: negative rate limit", ErrInvalidConfig)
	}
	return nil
}

// Load builds a Config from args (without the program name) and lookup,
// applying defaults, environment, config file and flags in that order.
func Load(args []string, lookup LookupFunc) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	env, err := envSource(args, lookup)
	if err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, env); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args and the process environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}
