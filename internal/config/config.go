// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"arena/internal/battle"
)

type Config struct {
	Addr         string `env:"ARENA_ADDR"          envDefault:":8080"`
	DataDir      string `env:"ARENA_DATA_DIR"      envDefault:"data"`
	TemplatesDir string `env:"ARENA_TEMPLATES_DIR" envDefault:"templates"`

	StoreDriver string `env:"ARENA_STORE_DRIVER" envDefault:"memory"`
	StoreDSN    string `env:"ARENA_STORE_DSN"`

	LeadTimeout        time.Duration `env:"ARENA_LEAD_TIMEOUT"        envDefault:"120s"`
	ActionTimeout      time.Duration `env:"ARENA_ACTION_TIMEOUT"      envDefault:"60s"`
	ReplacementTimeout time.Duration `env:"ARENA_REPLACEMENT_TIMEOUT" envDefault:"120s"`
	CancelTimeout      time.Duration `env:"ARENA_CANCEL_TIMEOUT"      envDefault:"30s"`
	MaxRounds          int           `env:"ARENA_MAX_ROUNDS"          envDefault:"200"`

	RPPerLevel int `env:"ARENA_RP_PER_LEVEL" envDefault:"20"`
	VictoryXP  int `env:"ARENA_VICTORY_XP"   envDefault:"150"`

	LadderThreshold int `env:"ARENA_LADDER_THRESHOLD"`
	LadderFloor     int `env:"ARENA_LADDER_FLOOR"`

	OTelEndpoint string `env:"ARENA_OTEL_ENDPOINT"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case "memory":
	case "sqlite", "postgres":
		if c.StoreDSN == "" {
			return fmt.Errorf("ARENA_STORE_DSN is required for driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown ARENA_STORE_DRIVER %q", c.StoreDriver)
	}
	for name, d := range map[string]time.Duration{
		"ARENA_LEAD_TIMEOUT":        c.LeadTimeout,
		"ARENA_ACTION_TIMEOUT":      c.ActionTimeout,
		"ARENA_REPLACEMENT_TIMEOUT": c.ReplacementTimeout,
		"ARENA_CANCEL_TIMEOUT":      c.CancelTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.MaxRounds <= 0 {
		return fmt.Errorf("ARENA_MAX_ROUNDS must be positive, got %d", c.MaxRounds)
	}
	return nil
}

// Battle returns the session settings derived from the config.
func (c Config) Battle() battle.Config {
	return battle.Config{
		Timeouts: battle.Timeouts{
			Lead:        c.LeadTimeout,
			Action:      c.ActionTimeout,
			Replacement: c.ReplacementTimeout,
			Cancel:      c.CancelTimeout,
		},
		MaxRounds: c.MaxRounds,
	}
}

func (c Config) CatalogPath() string { return filepath.Join(c.DataDir, "catalog.yaml") }
func (c Config) LadderPath() string  { return filepath.Join(c.DataDir, "ladder.yaml") }
