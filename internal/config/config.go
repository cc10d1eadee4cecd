package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for geohashd.
type Config struct {
	// Stock mirror
	StockBaseURL        string `mapstructure:"stock_base_url"`
	RequestTimeoutSec   int    `mapstructure:"request_timeout_sec"`
	MaxFetchesPerMinute int    `mapstructure:"max_fetches_per_minute"`
	FetchBurst          int    `mapstructure:"fetch_burst"`
	MinFetchIntervalSec int    `mapstructure:"min_fetch_interval_sec"`

	// Cache
	CachePath string `mapstructure:"cache_path"`

	// Server
	Port string `mapstructure:"port"`

	// Tracker
	TrackIntervalSec    int     `mapstructure:"track_interval_sec"`
	ArrivalRadiusMeters float64 `mapstructure:"arrival_radius_m"`
}

// RequestTimeout is the HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// TrackInterval is the tracker poll interval as a duration.
func (c *Config) TrackInterval() time.Duration {
	return time.Duration(c.TrackIntervalSec) * time.Second
}

// Load reads configuration from environment variables and an optional
// config file (config.yaml in the working directory or
// $HOME/.geohashd). Environment variables take precedence.
//
// Recognized environment variables:
//   - STOCK_BASE_URL
//   - REQUEST_TIMEOUT_SEC
//   - MAX_FETCHES_PER_MINUTE / FETCH_BURST / MIN_FETCH_INTERVAL_SEC
//   - CACHE_PATH
//   - PORT
//   - TRACK_INTERVAL_SEC / ARRIVAL_RADIUS_M
func Load() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.SetDefault("stock_base_url", "http://irc.peeron.com/xkcd/map/data")
	v.SetDefault("request_timeout_sec", 15)
	v.SetDefault("max_fetches_per_minute", 30)
	v.SetDefault("fetch_burst", 5)
	v.SetDefault("min_fetch_interval_sec", 0)
	v.SetDefault("cache_path", "geohashd.db")
	v.SetDefault("port", "8080")
	// 0 means fixes are processed as fast as they arrive.
	v.SetDefault("track_interval_sec", 0)
	v.SetDefault("arrival_radius_m", 30.0)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.geohashd")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	v.BindEnv("stock_base_url", "STOCK_BASE_URL")
	v.BindEnv("request_timeout_sec", "REQUEST_TIMEOUT_SEC")
	v.BindEnv("max_fetches_per_minute", "MAX_FETCHES_PER_MINUTE")
	v.BindEnv("fetch_burst", "FETCH_BURST")
	v.BindEnv("min_fetch_interval_sec", "MIN_FETCH_INTERVAL_SEC")
	v.BindEnv("cache_path", "CACHE_PATH")
	v.BindEnv("port", "PORT")
	v.BindEnv("track_interval_sec", "TRACK_INTERVAL_SEC")
	v.BindEnv("arrival_radius_m", "ARRIVAL_RADIUS_M")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.StockBaseURL == "" {
		return nil, fmt.Errorf("stock_base_url cannot be empty")
	}

	return config, nil
}
