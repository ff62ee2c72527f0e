package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/lead-triage/")
	v.AddConfigPath("$HOME/.lead-triage")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit config file
func NewFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return &Config{v: v}, nil
}

// newViper returns a Viper instance with defaults and environment overrides
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvPrefix("LEAD_TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Mailbox provider defaults
	v.SetDefault("mailbox.base_url", "https://api.instantly.ai/api/v2")
	v.SetDefault("mailbox.api_key", "")
	v.SetDefault("mailbox.request_timeout", "30s")

	// Crawler defaults
	v.SetDefault("crawler.page_size", 50)
	v.SetDefault("crawler.max_runtime", "1h")
	v.SetDefault("crawler.max_attempts", 5)
	v.SetDefault("crawler.initial_retry_delay", "5s")
	v.SetDefault("crawler.page_delay", "1s")
	v.SetDefault("crawler.error_pause", "10s")

	// Classifier defaults
	v.SetDefault("classifier.locales", []string{"it"})
	v.SetDefault("classifier.rules_file", "")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")

	// Triage defaults
	v.SetDefault("triage.poll_interval", "15m")

	// Output defaults
	v.SetDefault("output.format", "log")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
