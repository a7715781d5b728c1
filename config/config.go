package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/spf13/viper"

	"github.com/s0up4200/cardctl/filter"
	"github.com/s0up4200/cardctl/platform"
)

// EnvPrefix prefixes environment overrides, e.g. CARDCTL_PLATFORM_API_KEY
const EnvPrefix = "CARDCTL"

const placeholderAPIKey = "your-api-key-here"

// Load loads the configuration from configPath, or from the standard
// locations when configPath is empty. Without a file in the standard
// locations the configuration comes from defaults and the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".cardctl"))
		}
		v.AddConfigPath("/etc/cardctl/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("platform.base_url", "")
	v.SetDefault("platform.api_key", "")
	v.SetDefault("platform.session_token", "")
	v.SetDefault("platform.sdk_version", "")
	v.SetDefault("platform.timeout", 180*time.Second)
	v.SetDefault("platform.pinned_keys", []string{})
	v.SetDefault("platform.rate_limit", 0)
	v.SetDefault("platform.rate_burst", 1)

	v.SetDefault("network.max_pending", 0)
	v.SetDefault("network.probe_interval", platform.DefaultProbeInterval)

	cacheDir := ""
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "cardctl")
	}
	v.SetDefault("cache.dir", cacheDir)
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Platform.BaseURL == "" {
		return fmt.Errorf("platform.base_url is required")
	}
	u, err := url.Parse(cfg.Platform.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("platform.base_url must be an absolute http(s) URL: %s", cfg.Platform.BaseURL)
	}

	if cfg.Platform.APIKey == "" || cfg.Platform.APIKey == placeholderAPIKey {
		return fmt.Errorf("platform.api_key must be set to a valid API key")
	}

	if cfg.Platform.SDKVersion != "" {
		if _, err := semver.Parse(cfg.Platform.SDKVersion); err != nil {
			return fmt.Errorf("invalid platform.sdk_version %q: %w", cfg.Platform.SDKVersion, err)
		}
	}

	if cfg.Platform.Timeout < 0 {
		return fmt.Errorf("platform.timeout cannot be negative")
	}
	if cfg.Platform.RateLimit < 0 {
		return fmt.Errorf("platform.rate_limit cannot be negative")
	}
	if cfg.Network.MaxPending < 0 {
		return fmt.Errorf("network.max_pending cannot be negative")
	}
	if cfg.Network.ProbeInterval < 0 {
		return fmt.Errorf("network.probe_interval cannot be negative")
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative")
	}

	for name, expression := range cfg.Filter.Presets {
		if _, err := filter.CompileFilter(expression); err != nil {
			return fmt.Errorf("filter.presets.%s: %w", name, err)
		}
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// PlatformOptions maps the configuration onto platform.Options
func (c *Config) PlatformOptions() platform.Options {
	return platform.Options{
		BaseURL:       c.Platform.BaseURL,
		APIKey:        c.Platform.APIKey,
		SessionToken:  c.Platform.SessionToken,
		SDKVersion:    c.Platform.SDKVersion,
		Timeout:       c.Platform.Timeout,
		PinnedKeys:    c.Platform.PinnedKeys,
		RateLimit:     c.Platform.RateLimit,
		RateBurst:     c.Platform.RateBurst,
		MaxPending:    c.Network.MaxPending,
		ProbeInterval: c.Network.ProbeInterval,
		CacheDir:      c.Cache.Dir,
		CacheTTL:      c.Cache.TTL,
	}
}
