// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubscope CLI.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/config"
	"github.com/pdiddy/pubscope/internal/logging"
	"github.com/pdiddy/pubscope/internal/metrics"
	"github.com/pdiddy/pubscope/internal/secrets"
	"github.com/pdiddy/pubscope/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state prepared by the root command before any subcommand runs.
var (
	appConfig  types.AppConfig
	logger     = zap.NewNop()
	appMetrics = metrics.New()
)

// rootCmd is the base command for the pubscope CLI.
var rootCmd = &cobra.Command{
	Use:   "pubscope",
	Short: "Explore a corpus of research publications",
	Long: `pubscope loads a publication spreadsheet or JSON export, normalizes it,
and lets you search, filter, and analyze it from the command line, a terminal
browser, or an HTTP API. AI summaries, relevance ranking, and gap analysis use
a generative-language API when a key is configured and fall back to local
heuristics otherwise.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./pubscope.yaml or ~/.config/pubscope/pubscope.yaml)")
	flags.String("corpus", "", "publication file (.xlsx, .csv, .json)")
	flags.String("corpus-url", "", "HTTP endpoint returning publications as JSON")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console, json")
	flags.String("secrets-dir", ".secrets", "directory of secret files")
	flags.String("env-file", ".env", "dotenv file with API keys")

	_ = viper.BindPFlag("corpus.path", flags.Lookup("corpus"))
	_ = viper.BindPFlag("corpus.url", flags.Lookup("corpus-url"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

// setup loads configuration, secrets, and the logger.
func setup(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	used, err := config.Setup(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	l, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	logger = l
	if used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}

	secretsDir, _ := cmd.Flags().GetString("secrets-dir")
	fileSecrets, err := secrets.Load(secretsDir, logger)
	if err != nil {
		return err
	}
	envFile, _ := cmd.Flags().GetString("env-file")
	envSecrets, err := secrets.LoadEnv(envFile)
	if err != nil {
		return err
	}
	if names := secretNames(fileSecrets, envSecrets); len(names) > 0 {
		logger.Debug("loaded secrets", zap.Strings("names", names))
	}

	cfg.Oracle.APIKey = secrets.Lookup(secrets.GeminiAPIKey, cfg.Oracle.APIKey,
		fileSecrets, secrets.FromEnviron(), envSecrets)
	appConfig = cfg
	return nil
}

func secretNames(sources ...map[string]string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range sources {
		for k := range s {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
