package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// APIURL is the base URL of the catalog service, including the version
	// prefix.
	APIURL string `env:"LIBCTL_API_URL, default=http://localhost:8080/api/v1"`
	// StateDir holds the persisted session. Empty means
	// $HOME/.config/libctl.
	StateDir    string        `env:"LIBCTL_STATE_DIR"`
	HTTPTimeout time.Duration `env:"LIBCTL_HTTP_TIMEOUT, default=15s"`
	LogLevel    string        `env:"LOG_LEVEL, default=warn"`
	LogPretty   bool          `env:"LOG_PRETTY, default=true"`
}

// Load reads configuration from environment variables using go-envconfig and
// resolves the state directory.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".config", "libctl")
	}

	return &cfg, nil
}
