package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Auction  AuctionConfig  `koanf:"auction"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL          string        `koanf:"url"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// AuctionConfig carries the reverse-auction tunables. BiddingWindow is
// the fixed duration a request accepts bids after entering bidding.
type AuctionConfig struct {
	BiddingWindow  time.Duration `koanf:"bidding_window"`
	SweepInterval  time.Duration `koanf:"sweep_interval"`
	Currency       string        `koanf:"currency"`
	VendorCacheTTL time.Duration `koanf:"vendor_cache_ttl"`
}

// Load builds configuration from defaults, then an optional YAML file,
// then WPE_-prefixed environment variables. Env vars nest on a double
// underscore so single underscores stay part of the key:
// WPE_AUCTION__BIDDING_WINDOW overrides auction.bidding_window.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL:             "postgres://localhost:5432/pickup_exchange?sslmode=disable",
			MaxConns:        25,
			MinConns:        5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          "localhost:6379",
			DB:           0,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Auction: AuctionConfig{
			BiddingWindow:  5 * time.Minute,
			SweepInterval:  time.Minute,
			Currency:       "USD",
			VendorCacheTTL: 10 * time.Minute,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = "configs/config.yaml"
	}
	// Config file is optional.
	_ = k.Load(file.Provider(path), yaml.Parser())

	if err := k.Load(env.Provider("WPE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "WPE_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Auction.BiddingWindow <= 0 {
		return nil, fmt.Errorf("auction.bidding_window must be positive")
	}
	if cfg.Auction.SweepInterval <= 0 {
		return nil, fmt.Errorf("auction.sweep_interval must be positive")
	}

	return &cfg, nil
}
