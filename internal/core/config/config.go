package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Grid      GridConfig      `koanf:"grid"`
	Ingestion IngestionConfig `koanf:"ingestion"`
	Retention RetentionConfig `koanf:"retention"`
	Satellite SatelliteConfig `koanf:"satellite"`
	Database  DatabaseConfig  `koanf:"database"`
	Receivers ReceiversConfig `koanf:"receivers"`
	Feed      FeedConfig      `koanf:"feed"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeKB int    `koanf:"max_body_size_kb"`
	Mode          string `koanf:"mode"` // debug | release
}

// GridConfig is the size of a factor-1 cell in degrees.
type GridConfig struct {
	LatSize float64 `koanf:"lat_size"`
	LonSize float64 `koanf:"lon_size"`
}

type IngestionConfig struct {
	QueueCapacity       int           `koanf:"queue_capacity"`
	DedupCapacity       int           `koanf:"dedup_capacity"`
	Workers             int           `koanf:"workers"` // 0 = max(1, NumCPU/2)
	DrainTimeout        time.Duration `koanf:"drain_timeout"`
	OverflowLogInterval time.Duration `koanf:"overflow_log_interval"`
	StatsInterval       time.Duration `koanf:"stats_interval"` // 0 disables
}

type RetentionConfig struct {
	MaxWindowHours int           `koanf:"max_window_hours"`
	PollInterval   time.Duration `koanf:"poll_interval"`
}

type SatelliteConfig struct {
	TimeMargin time.Duration `koanf:"time_margin"`
}

type DatabaseConfig struct {
	Type                string        `koanf:"type"` // memoryonly | postgres | sqlite | pebble
	DSN                 string        `koanf:"dsn"`
	Path                string        `koanf:"path"`
	MaxOpenConns        int           `koanf:"max_open_conns"`
	MaxIdleConns        int           `koanf:"max_idle_conns"`
	AutoMigrate         bool          `koanf:"auto_migrate"`
	PersistenceInterval time.Duration `koanf:"persistence_interval"`
}

type ReceiversConfig struct {
	Path string `koanf:"path"`
}

type FeedConfig struct {
	NATS NATSConfig `koanf:"nats"`
}

// NATSConfig enables the NATS feed when URL is set.
type NATSConfig struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug | info | warn | error
	Format string `koanf:"format"` // text | json
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeKB <= 0 {
		return fmt.Errorf("server.max_body_size_kb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if c.Grid.LatSize <= 0 || c.Grid.LonSize <= 0 {
		return fmt.Errorf("grid.lat_size and grid.lon_size must be > 0")
	}

	if c.Ingestion.QueueCapacity <= 0 {
		return fmt.Errorf("ingestion.queue_capacity must be > 0")
	}
	if c.Ingestion.DedupCapacity <= 0 {
		return fmt.Errorf("ingestion.dedup_capacity must be > 0")
	}
	if c.Ingestion.Workers < 0 {
		return fmt.Errorf("ingestion.workers must be >= 0")
	}
	if c.Ingestion.DrainTimeout <= 0 {
		return fmt.Errorf("ingestion.drain_timeout must be > 0")
	}
	if c.Ingestion.OverflowLogInterval <= 0 {
		return fmt.Errorf("ingestion.overflow_log_interval must be > 0")
	}
	if c.Ingestion.StatsInterval < 0 {
		return fmt.Errorf("ingestion.stats_interval must be >= 0")
	}

	if c.Retention.MaxWindowHours <= 0 {
		return fmt.Errorf("retention.max_window_hours must be > 0")
	}
	if c.Retention.PollInterval <= 0 {
		return fmt.Errorf("retention.poll_interval must be > 0")
	}
	if c.Satellite.TimeMargin <= 0 {
		return fmt.Errorf("satellite.time_margin must be > 0")
	}

	switch strings.ToLower(c.Database.Type) {
	case "memoryonly":
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
		if c.Database.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be > 0")
		}
		if c.Database.MaxIdleConns <= 0 {
			return fmt.Errorf("database.max_idle_conns must be > 0")
		}
	case "sqlite", "pebble":
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("database.path is required for %s", strings.ToLower(c.Database.Type))
		}
	default:
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}
	if c.Database.PersistenceInterval <= 0 {
		return fmt.Errorf("database.persistence_interval must be > 0")
	}

	if c.Feed.NATS.URL != "" && strings.TrimSpace(c.Feed.NATS.Subject) == "" {
		return fmt.Errorf("feed.nats.subject is required when feed.nats.url is set")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format %q (must be text or json)", c.Log.Format)
	}

	return nil
}

// Load parses config from defaults, file and env, then validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                     8090,
		"server.host":                     "0.0.0.0",
		"server.max_body_size_kb":         64,
		"server.mode":                     "release",
		"grid.lat_size":                   0.0225,
		"grid.lon_size":                   0.0225,
		"ingestion.queue_capacity":        10000,
		"ingestion.dedup_capacity":        10000,
		"ingestion.workers":               0,
		"ingestion.drain_timeout":         "60s",
		"ingestion.overflow_log_interval": "10s",
		"ingestion.stats_interval":        "0s",
		"retention.max_window_hours":      720,
		"retention.poll_interval":         "5s",
		"satellite.time_margin":           "10m",
		"database.type":                   "memoryonly",
		"database.dsn":                    "",
		"database.path":                   "coverage-data",
		"database.max_open_conns":         5,
		"database.max_idle_conns":         5,
		"database.auto_migrate":           true,
		"database.persistence_interval":   "60m",
		"receivers.path":                  "",
		"feed.nats.url":                   "",
		"feed.nats.subject":               "ais.packets",
		"log.level":                       "info",
		"log.format":                      "text",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("COVERAGE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "COVERAGE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
