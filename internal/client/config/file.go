package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pricetool/priceopt/internal/flagx"
	"github.com/pricetool/priceopt/internal/timex"
)

// fileConfig is a DTO used exclusively for config file decoding. Zero values
// and nil pointers mark fields the file leaves unset.
type fileConfig struct {
	ServerURL           string         `json:"server_url" yaml:"server_url"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SearchDebounce      timex.Duration `json:"search_debounce" yaml:"search_debounce"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	StoreBackend        string         `json:"store_backend" yaml:"store_backend"`
	DBPath              string         `json:"db_path" yaml:"db_path"`
	Redis               struct {
		Addr     string `json:"addr" yaml:"addr"`
		Password string `json:"password" yaml:"password"`
		DB       *int   `json:"db" yaml:"db"`
		Prefix   string `json:"prefix" yaml:"prefix"`
	} `json:"redis" yaml:"redis"`
	RateLimit *float64 `json:"rate_limit" yaml:"rate_limit"`
	RateBurst *int     `json:"rate_burst" yaml:"rate_burst"`
	Log       struct {
		Backend string `json:"backend" yaml:"backend"`
		Level   string `json:"level" yaml:"level"`
		File    string `json:"file" yaml:"file"`
	} `json:"log" yaml:"log"`
}

func decodeFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &fc, nil
}

// parseFile overlays cfg with the non-empty values of the file named by -c or
// -config. Without either flag it does nothing.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}
	fc, err := decodeFile(path)
	if err != nil {
		return err
	}

	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDur := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	setStr(&cfg.ServerURL, fc.ServerURL)
	setStr(&cfg.StoreBackend, fc.StoreBackend)
	setStr(&cfg.DBPath, fc.DBPath)
	setStr(&cfg.RedisAddr, fc.Redis.Addr)
	setStr(&cfg.RedisPassword, fc.Redis.Password)
	setStr(&cfg.RedisPrefix, fc.Redis.Prefix)
	setStr(&cfg.LogBackend, fc.Log.Backend)
	setStr(&cfg.LogLevel, fc.Log.Level)
	setStr(&cfg.LogFile, fc.Log.File)

	setDur(&cfg.RequestTimeout, fc.RequestTimeout)
	setDur(&cfg.SearchDebounce, fc.SearchDebounce)
	setDur(&cfg.OnlineCheckInterval, fc.OnlineCheckInterval)

	if fc.Redis.DB != nil {
		cfg.RedisDB = *fc.Redis.DB
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
	if fc.RateBurst != nil {
		cfg.RateBurst = *fc.RateBurst
	}
	return nil
}
