package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      LoggingConfig  `yaml:"log"`
	Session  SessionConfig  `yaml:"session"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Venue    VenueConfig    `yaml:"venue"`
	Strategy StrategyConfig `yaml:"strategy"`
	Journal  JournalConfig  `yaml:"journal"`
	Record   RecordConfig   `yaml:"record"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type SessionConfig struct {
	URL            string        `yaml:"url"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	TeamName       string        `yaml:"team_name"`
	SecretEnv      string        `yaml:"secret_env"`
}

type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// VenueConfig carries the constants fixed by the venue contract. The
// defaults match the exchange simulator and should not normally change.
type VenueConfig struct {
	TickSize      int64 `yaml:"tick_size"`
	PositionLimit int64 `yaml:"position_limit"`
	LotSize       int64 `yaml:"lot_size"`
	TopLevels     int   `yaml:"top_levels"`
	MinimumBid    int64 `yaml:"minimum_bid"`
	MaximumAsk    int64 `yaml:"maximum_ask"`
}

type StrategyConfig struct {
	// SkewTicks is the gamma term of the quoting threshold, in ticks.
	SkewTicks float64 `yaml:"skew_ticks"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type RecordConfig struct {
	Enabled         bool          `yaml:"enabled"`
	DSN             string        `yaml:"dsn"`
	Schema          string        `yaml:"schema"`
	QueueSize       int           `yaml:"queue_size"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// MinBidNearestTick is the floor hedge price: the lowest valid bid rounded
// up to the tick grid.
func (v VenueConfig) MinBidNearestTick() int64 {
	return (v.MinimumBid + v.TickSize) / v.TickSize * v.TickSize
}

// MaxAskNearestTick is the ceiling hedge price: the highest valid ask rounded
// down to the tick grid.
func (v VenueConfig) MaxAskNearestTick() int64 {
	return v.MaximumAsk / v.TickSize * v.TickSize
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Session.URL == "" {
		cfg.Session.URL = "ws://127.0.0.1:8222/session"
	}
	if cfg.Session.ReconnectDelay == 0 {
		cfg.Session.ReconnectDelay = 3 * time.Second
	}
	if cfg.Session.SecretEnv == "" {
		cfg.Session.SecretEnv = "EXCHANGE_SECRET"
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9102"
	}
	if cfg.Venue.TickSize == 0 {
		cfg.Venue.TickSize = 100
	}
	if cfg.Venue.PositionLimit == 0 {
		cfg.Venue.PositionLimit = 100
	}
	if cfg.Venue.LotSize == 0 {
		cfg.Venue.LotSize = 10
	}
	if cfg.Venue.TopLevels == 0 {
		cfg.Venue.TopLevels = 5
	}
	if cfg.Venue.MinimumBid == 0 {
		cfg.Venue.MinimumBid = 1
	}
	if cfg.Venue.MaximumAsk == 0 {
		cfg.Venue.MaximumAsk = 1<<31 - 1
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "data/events.db"
	}
	if cfg.Record.Schema == "" {
		cfg.Record.Schema = "public"
	}
	if cfg.Record.QueueSize == 0 {
		cfg.Record.QueueSize = 256
	}
}

func validate(cfg *Config) error {
	if cfg.Session.TeamName == "" {
		return errors.New("session.team_name is required")
	}
	if cfg.Venue.TickSize <= 0 {
		return errors.New("venue.tick_size must be > 0")
	}
	if cfg.Venue.PositionLimit <= 0 {
		return errors.New("venue.position_limit must be > 0")
	}
	if cfg.Venue.MinimumBid <= 0 || cfg.Venue.MaximumAsk <= cfg.Venue.MinimumBid {
		return errors.New("venue bid/ask bounds are invalid")
	}
	if cfg.Record.Enabled && cfg.Record.DSN == "" {
		return errors.New("record.dsn is required when record.enabled")
	}
	return nil
}
