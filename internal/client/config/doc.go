// Package config loads runtime configuration for the priceopt terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed PRICEOPT_, with a dotenv file (".env",
//     or the path given by -env) filling in anything the process environment
//     leaves unset.
//  3. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, everything else as JSON.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the Price Optimization API
//	-i int      online status check interval (seconds)
//	-d string   search quiet period, e.g. "1s" or "300ms"
//	-s string   credential store backend: sqlite or redis
//	-db string  path of the local SQLite database
//	-l string   log level
//
// # File schema
//
// Durations accept Go duration strings or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "search_debounce": "1s",
//	  "store_backend": "redis",
//	  "redis": {"addr": "127.0.0.1:6379", "prefix": "priceopt:"}
//	}
package config
