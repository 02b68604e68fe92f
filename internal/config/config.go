package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// TransportConfig tunes travel time, loss and reputation.
type TransportConfig struct {
	BaseTimePerCell       float64 `json:"base_time_per_cell"`
	BaseLossRate          float64 `json:"base_loss_rate"`
	ReputationPerDelivery float64 `json:"reputation_per_delivery"`
}

// Config holds the engine's runtime configuration.
type Config struct {
	DBDriver       string          `json:"db_driver"`
	DBPath         string          `json:"db_path"`
	DatabaseURL    string          `json:"database_url"`
	WorldFile      string          `json:"world_file"`
	ListenAddr     string          `json:"listen_addr"`
	TickIntervalMS int             `json:"tick_interval_ms"`
	TimeScale      float64         `json:"time_scale"`
	AutosaveSec    int             `json:"autosave_sec"`
	LogLevel       string          `json:"log_level"`
	Transport      TransportConfig `json:"transport"`
}

// Load reads a JSON config file, applies defaults, and validates.
// DATABASE_URL in the environment overrides database_url.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DBDriver == "" {
		c.DBDriver = "sqlite"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":9810"
	}
	if c.TickIntervalMS == 0 {
		c.TickIntervalMS = 100
	}
	if c.TimeScale == 0 {
		c.TimeScale = 1
	}
	if c.AutosaveSec == 0 {
		c.AutosaveSec = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Transport.BaseTimePerCell == 0 {
		c.Transport.BaseTimePerCell = 1
	}
}

func (c *Config) validate() error {
	var problems []string

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			problems = append(problems, "db_path is required for the sqlite driver")
		}
	case "pgx":
		if c.DatabaseURL == "" {
			problems = append(problems, "database_url is required for the pgx driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("db_driver %q is not sqlite or pgx", c.DBDriver))
	}
	if c.WorldFile == "" {
		problems = append(problems, "world_file is required")
	}
	if c.TickIntervalMS < 0 {
		problems = append(problems, "tick_interval_ms must not be negative")
	}
	if c.TimeScale < 0 {
		problems = append(problems, "time_scale must not be negative")
	}
	if c.AutosaveSec < 0 {
		problems = append(problems, "autosave_sec must not be negative")
	}
	if c.Transport.BaseTimePerCell < 0 {
		problems = append(problems, "transport.base_time_per_cell must not be negative")
	}
	if c.Transport.BaseLossRate < 0 || c.Transport.BaseLossRate > 1 {
		problems = append(problems, "transport.base_loss_rate must be within [0, 1]")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q is not debug, info, warn or error", c.LogLevel))
	}

	if len(problems) > 0 {
		return domain.NewEngineError(domain.ErrConfigInvalid.Code,
			fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems))
	}
	return nil
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "pgx" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// TickInterval is the wall time between ticks.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// AutosaveInterval is the wall time between autosaves.
func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.AutosaveSec) * time.Second
}
