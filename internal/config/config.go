// Package config wraps viper with a small read-only accessor type so modules
// don't depend on viper directly.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is a read-only view over a viper instance.
type Config struct {
	v *viper.Viper
}

// New wraps an existing viper instance.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// Load reads configuration from the given YAML file path. An empty path
// falls back to oltwatch.yaml in the working directory; a missing file is
// not an error, defaults apply.
func Load(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "oltwatch.db")
	v.SetDefault("modules.oltsync.enabled", true)
	v.SetDefault("modules.oltsync.interval", "5m")
	v.SetDefault("modules.oltsync.collector_timeout", "30s")
	v.SetDefault("modules.oltsync.concurrency", 4)
	v.SetDefault("modules.probe.enabled", true)
	v.SetDefault("modules.probe.interval", "1m")
	v.SetDefault("modules.probe.timeout", "5s")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("oltwatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file at all is fine when none was asked for.
		if path == "" {
			return v, nil
		}
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	return v, nil
}

// GetString returns the string value for key.
func (c *Config) GetString(key string) string { return c.v.GetString(key) }

// GetInt returns the int value for key.
func (c *Config) GetInt(key string) int { return c.v.GetInt(key) }

// GetBool returns the bool value for key.
func (c *Config) GetBool(key string) bool { return c.v.GetBool(key) }

// GetDuration returns the duration value for key.
func (c *Config) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }

// IsSet reports whether key has a value.
func (c *Config) IsSet(key string) bool { return c.v.IsSet(key) }

// Sub returns a Config scoped to the given key, or nil if unset.
func (c *Config) Sub(key string) *Config {
	sub := c.v.Sub(key)
	if sub == nil {
		return nil
	}
	return &Config{v: sub}
}
