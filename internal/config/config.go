// Package config loads the optional user configuration from
// ~/.config/tku/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/franzos/tku/internal/paths"
)

type Config struct {
	PricingSource string `toml:"pricing_source"`
	Currency      string `toml:"currency"`
	CacheBackend  string `toml:"cache_backend"`
}

func Default() Config {
	return Config{
		Currency:     "USD",
		CacheBackend: "blob",
	}
}

// Load reads the config file, falling back to defaults when it is absent
// or invalid. A broken config warns rather than aborts; the CLI should
// still answer with default settings.
func Load() Config {
	cfg := Default()

	dir := paths.ConfigDir()
	if dir == "" {
		return cfg
	}
	path := filepath.Join(dir, "config.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	var parsed Config
	if err := toml.Unmarshal(data, &parsed); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid config at %s: %v\n", path, err)
		return cfg
	}

	if parsed.PricingSource != "" {
		cfg.PricingSource = parsed.PricingSource
	}
	if parsed.Currency != "" {
		cfg.Currency = parsed.Currency
	}
	if parsed.CacheBackend != "" {
		cfg.CacheBackend = parsed.CacheBackend
	}
	return cfg
}
