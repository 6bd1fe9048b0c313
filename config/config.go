// Package config loads topo's settings from config files, TOPO_* environment
// variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting topo reads.
type Config struct {
	SyntaxDirs   []string           `mapstructure:"syntax_dirs"`
	Skip         []string           `mapstructure:"skip"`
	Limit        int                `mapstructure:"limit"`
	ParseTimeout time.Duration      `mapstructure:"parse_timeout"`
	Log          LogConfig          `mapstructure:"log"`
	PatternCache PatternCacheConfig `mapstructure:"pattern_cache"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type PatternCacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Limit:        1000,
		ParseTimeout: 5 * time.Second,
		Log: LogConfig{
			Level:  "warn",
			Format: "json",
		},
		PatternCache: PatternCacheConfig{TTL: 30 * time.Minute},
	}
}

// New returns a viper instance with defaults and the environment binding set
// up. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("syntax_dirs", []string{})
	v.SetDefault("skip", []string{})
	v.SetDefault("limit", defaults.Limit)
	v.SetDefault("parse_timeout", defaults.ParseTimeout)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("pattern_cache.ttl", defaults.PatternCache.TTL)

	v.SetEnvPrefix("topo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. An explicit file must exist. Otherwise
// ./.topo.yaml is preferred over ~/.topo/config.yaml, and having neither is
// fine.
func Load(v *viper.Viper, file string) (Config, error) {
	switch {
	case file != "":
		v.SetConfigFile(file)
	case fileExists(".topo.yaml"):
		v.SetConfigFile(".topo.yaml")
	default:
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".topo"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot be applied.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
	}
	if c.ParseTimeout < 0 {
		return fmt.Errorf("parse_timeout must not be negative, got %s", c.ParseTimeout)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
