// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads application configuration with viper. Settings come
// from pubscope.yaml, PUBSCOPE_* environment variables and built-in defaults,
// in decreasing precedence after explicit flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/pubscope/pkg/types"
)

const (
	// Name is the config file base name and the home config directory name.
	Name = "pubscope"

	// EnvPrefix prefixes every environment override, e.g. PUBSCOPE_ORACLE_MODEL.
	EnvPrefix = "PUBSCOPE"

	defaultUserAgent = "pubscope/0.1"
)

// Setup points v at cfgFile, or at pubscope.yaml in the working directory
// and ~/.config/pubscope, and enables environment overrides. It returns the
// config file used, or "" when none was found. Only an explicitly named
// file is required to exist.
func Setup(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// SetDefaults registers a default for every configuration key. Environment
// overrides only reach Unmarshal for keys viper knows about.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("corpus.path", "")
	v.SetDefault("corpus.url", "")
	v.SetDefault("corpus.format", string(types.FormatAuto))
	v.SetDefault("corpus.sheet", "")
	v.SetDefault("corpus.max_topics", 10)
	v.SetDefault("corpus.vocabulary_file", "")
	v.SetDefault("corpus.timeout", 30*time.Second)
	v.SetDefault("corpus.user_agent", defaultUserAgent)

	v.SetDefault("oracle.model", "gemini-1.5-flash")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("oracle.temperature", 0.7)
	v.SetDefault("oracle.max_output_tokens", 2048)
	v.SetDefault("oracle.requests_per_second", 2.0)
	v.SetDefault("oracle.max_retries", 3)
	v.SetDefault("oracle.concurrency", 4)
	v.SetDefault("oracle.timeout", 20*time.Second)
	v.SetDefault("oracle.user_agent", defaultUserAgent)

	v.SetDefault("analysis.low_coverage_threshold", 5)
	v.SetDefault("analysis.max_low_coverage", 10)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.page_size", 12)

	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.history_size", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func defaultStorePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", Name, Name+".db")
	}
	return Name + ".db"
}

// Load unmarshals v into an AppConfig and validates it. Call Setup or
// SetDefaults first.
func Load(v *viper.Viper) (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.AppConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.AppConfig{}, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func Validate(cfg types.AppConfig) error {
	var errs []error
	switch cfg.Corpus.Format {
	case "", types.FormatAuto, types.FormatXLSX, types.FormatCSV, types.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("corpus.format: unknown format %q", cfg.Corpus.Format))
	}
	if cfg.Corpus.MaxTopics < 0 {
		errs = append(errs, fmt.Errorf("corpus.max_topics: must not be negative"))
	}
	if cfg.Oracle.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("oracle.concurrency: must be at least 1"))
	}
	if cfg.Oracle.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("oracle.requests_per_second: must not be negative"))
	}
	if cfg.Analysis.LowCoverageThreshold < 1 {
		errs = append(errs, fmt.Errorf("analysis.low_coverage_threshold: must be at least 1"))
	}
	if cfg.Analysis.MaxLowCoverage < 0 {
		errs = append(errs, fmt.Errorf("analysis.max_low_coverage: must not be negative"))
	}
	if cfg.Server.PageSize < 1 {
		errs = append(errs, fmt.Errorf("server.page_size: must be at least 1"))
	}
	if cfg.Store.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("store.history_size: must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
