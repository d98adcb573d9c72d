// Package config loads tool settings for stockdump. Settings come from an
// optional YAML file, STOCKDUMP_* environment variables and built-in
// defaults, in that precedence order. The legacy YAHOO_CRUMB and
// YAHOO_COOKIE variables from the original tooling are honored as well.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/quantfold/stockdump/pkg/errors"
)

// Config holds all tool settings.
type Config struct {
	// DumpsDir is the default directory the fetcher writes dumps into
	DumpsDir string `mapstructure:"dumps_dir"`
	// OutputDir is the default directory for columnar artifacts
	OutputDir string `mapstructure:"output_dir"`
	// LogLevel controls the global logger (debug, info, warn, error)
	LogLevel string `mapstructure:"log_level"`

	Fetcher FetcherConfig `mapstructure:"fetcher"`
	Yahoo   YahooConfig   `mapstructure:"yahoo"`
}

// FetcherConfig configures the external fetcher process. The fetcher does
// the actual network work; this tool only launches it.
type FetcherConfig struct {
	// Binary is the fetcher executable path or name resolved via PATH
	Binary string `mapstructure:"binary"`
	// Concurrency is the fetcher's maximum concurrent downloads
	Concurrency int `mapstructure:"concurrency"`
	// Retries is the fetcher's per-URL retry budget
	Retries int `mapstructure:"retries"`
	// TimeoutSecs is the fetcher's per-request timeout
	TimeoutSecs int `mapstructure:"timeout_secs"`
	// Level is the zstd level the fetcher compresses dumps with
	Level int `mapstructure:"level"`
}

// YahooConfig carries the Yahoo Finance auth parameters used when
// building manifests. Both are passed through to manifest records; this
// tool never talks to Yahoo itself.
type YahooConfig struct {
	Crumb  string `mapstructure:"crumb"`
	Cookie string `mapstructure:"cookie"`
}

// Load reads configuration from the given file (optional; empty path
// means defaults plus environment only).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("dumps_dir", "dumps/raw")
	v.SetDefault("output_dir", "dumps/arrow")
	v.SetDefault("log_level", "info")
	v.SetDefault("fetcher.binary", "dump-core")
	v.SetDefault("fetcher.concurrency", 8)
	v.SetDefault("fetcher.retries", 2)
	v.SetDefault("fetcher.timeout_secs", 15)
	v.SetDefault("fetcher.level", 3)

	v.SetEnvPrefix("STOCKDUMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy variable names used by the original tooling.
	_ = v.BindEnv("yahoo.crumb", "STOCKDUMP_YAHOO_CRUMB", "YAHOO_CRUMB")
	_ = v.BindEnv("yahoo.cookie", "STOCKDUMP_YAHOO_COOKIE", "YAHOO_COOKIE")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to decode configuration")
	}
	return &cfg, nil
}
