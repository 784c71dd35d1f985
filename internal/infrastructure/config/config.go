// Package config loads process configuration from the environment, reading
// an optional .env file first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"go-catalog-live/internal/infrastructure/hub"
	"go-catalog-live/internal/infrastructure/logger"
	"go-catalog-live/internal/infrastructure/mongo"
)

var ErrParsingConfig = errors.New("failed to parse config")

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR"             envDefault:":3000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

type WebSocketConfig struct {
	LookupTimeout time.Duration `env:"WS_LOOKUP_TIMEOUT" envDefault:"10s"`
	AllowedOrigin string        `env:"WS_ALLOWED_ORIGIN" envDefault:"*"`
}

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	// Store selects the catalog backend: "mongo" or "memory".
	Store string `env:"CATALOG_STORE" envDefault:"mongo"`

	HTTP      HTTPConfig
	Logger    logger.Config
	Mongo     mongo.Config
	Hub       hub.Config
	WebSocket WebSocketConfig
}

// Load reads the given dotenv files (".env" when none are given) and parses
// the environment into a Config. A missing default .env is not an error;
// explicitly named files must exist. Variables already set in the
// environment win over file values.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrParsingConfig, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	if cfg.Store != StoreMongo && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("%w: unknown CATALOG_STORE %q", ErrParsingConfig, cfg.Store)
	}
	cfg.Logger.WithDefaultFields()
	return &cfg, nil
}
