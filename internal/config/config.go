// Package config loads server configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Results ResultsConfig `mapstructure:"results"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release/test
}

// StorageConfig holds filesystem paths for persistent state.
type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	BlobDir      string `mapstructure:"blob_dir"`
}

// ResultsConfig tunes the shared results link.
type ResultsConfig struct {
	LinkTTL time.Duration `mapstructure:"link_ttl"`
}

// Load reads configuration from path (optional; "" skips the file and uses
// defaults) and applies PHOTODUEL_* environment overrides, e.g.
// PHOTODUEL_SERVER_PORT=9090.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("storage.database_path", "photoduel.db")
	v.SetDefault("storage.blob_dir", "blobs")
	v.SetDefault("results.link_ttl", 30*24*time.Hour)

	v.SetEnvPrefix("PHOTODUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path must not be empty")
	}
	if c.Results.LinkTTL <= 0 {
		return fmt.Errorf("results.link_ttl must be positive, got %s", c.Results.LinkTTL)
	}
	return nil
}
