package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Platform PlatformConfig `mapstructure:"platform"`
	Network  NetworkConfig  `mapstructure:"network"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PlatformConfig holds the API connection details
type PlatformConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	SessionToken string        `mapstructure:"session_token"`
	SDKVersion   string        `mapstructure:"sdk_version"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PinnedKeys   []string      `mapstructure:"pinned_keys"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// NetworkConfig tunes the request queue and reachability probing
type NetworkConfig struct {
	MaxPending    int           `mapstructure:"max_pending"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
}

// CacheConfig controls the in-memory and on-disk caches
type CacheConfig struct {
	Dir string        `mapstructure:"dir"`
	TTL time.Duration `mapstructure:"ttl"`
}

// FilterConfig contains named transaction filter presets
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
