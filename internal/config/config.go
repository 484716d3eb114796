// Package config loads runtime defaults from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds env-backed defaults. CLI flags override these.
type Config struct {
	DBPath           string `env:"RECOLLECT_DB"`
	SearchLimit      int    `env:"RECOLLECT_SEARCH_LIMIT" envDefault:"10"`
	SessionListLimit int    `env:"RECOLLECT_SESSION_LIST_LIMIT" envDefault:"20"`
	Format           string `env:"RECOLLECT_FORMAT" envDefault:"json"`
}

// Load parses the environment and fills in the default database location.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env config: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".recollect", "recollect.db")
	}
	return cfg, nil
}
