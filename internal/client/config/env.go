package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/pricetool/priceopt/internal/flagx"
)

// EnvPrefix prefixes every environment variable the client reads.
const EnvPrefix = "PRICEOPT_"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

const defaultEnvFile = ".env"

// envSource layers the dotenv file under lookup. A missing default .env is
// fine; a missing file named explicitly with -env is an error.
func envSource(args []string, lookup LookupFunc) (LookupFunc, error) {
	path := flagx.EnvFileFlag(args)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	file, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return lookup, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}, nil
}

func parseEnv(cfg *Config, lookup LookupFunc) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return v, ok && v != ""
	}

	str := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := get(name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}
	integer := func(name string, dst *int) error {
		v, ok := get(name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("SERVER_URL", &cfg.ServerURL)
	str("STORE_BACKEND", &cfg.StoreBackend)
	str("DB_PATH", &cfg.DBPath)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("REDIS_PREFIX", &cfg.RedisPrefix)
	str("LOG_BACKEND", &cfg.LogBackend)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)

	if v, ok := get("RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err)
		}
		cfg.RateLimit = f
	}

	return errors.Join(
		dur("REQUEST_TIMEOUT", &cfg.RequestTimeout),
		dur("SEARCH_DEBOUNCE", &cfg.SearchDebounce),
		dur("ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval),
		integer("REDIS_DB", &cfg.RedisDB),
		integer("RATE_BURST", &cfg.RateBurst),
	)
}
