package config

import (
	"flag"
	"io"
	"time"

	"github.com/pricetool/priceopt/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// The args are filtered with flagx.FilterArgs first, so flags owned by other
// loaders (-c, -env) never reach this FlagSet.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-i", "-d", "-s", "-db", "-l"})

	fs := flag.NewFlagSet("priceopt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the API server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.DurationVar(&cfg.SearchDebounce, "d", cfg.SearchDebounce, "search quiet period")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "credential store backend (sqlite|redis)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
