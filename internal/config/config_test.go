// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubscope/pkg/types"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, types.FormatAuto, cfg.Corpus.Format)
	assert.Equal(t, 10, cfg.Corpus.MaxTopics)
	assert.Equal(t, 30*time.Second, cfg.Corpus.Timeout)
	assert.Equal(t, "pubscope/0.1", cfg.Corpus.UserAgent)
	assert.Equal(t, "gemini-1.5-flash", cfg.Oracle.Model)
	assert.Equal(t, 20*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 4, cfg.Oracle.Concurrency)
	assert.Equal(t, 5, cfg.Analysis.LowCoverageThreshold)
	assert.Equal(t, 10, cfg.Analysis.MaxLowCoverage)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 12, cfg.Server.PageSize)
	assert.Equal(t, 5, cfg.Store.HistorySize)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
corpus:
  path: data/publications.xlsx
  timeout: 5s
oracle:
  model: gemini-test
analysis:
  max_low_coverage: 0
server:
  page_size: 24
`), 0o644))

	v := viper.New()
	used, err := Setup(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "data/publications.xlsx", cfg.Corpus.Path)
	assert.Equal(t, 5*time.Second, cfg.Corpus.Timeout)
	assert.Equal(t, "gemini-test", cfg.Oracle.Model)
	assert.Equal(t, 0, cfg.Analysis.MaxLowCoverage)
	assert.Equal(t, 24, cfg.Server.PageSize)
	assert.Equal(t, 5, cfg.Analysis.LowCoverageThreshold)
}

func TestSetup_EnvOverride(t *testing.T) {
	t.Setenv("PUBSCOPE_ORACLE_API_KEY", "from-env")
	t.Setenv("PUBSCOPE_SERVER_ADDR", ":9090")

	v := viper.New()
	_, err := Setup(v, filepath.Join(t.TempDir(), "missing-ok.yaml"))
	assert.Error(t, err, "an explicit config file must exist")

	v = viper.New()
	t.Chdir(t.TempDir())
	used, err := Setup(v, "")
	require.NoError(t, err)
	assert.Empty(t, used)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Oracle.APIKey)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	valid := func() types.AppConfig {
		v := viper.New()
		SetDefaults(v)
		cfg, err := Load(v)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*types.AppConfig)
		errMsg string
	}{
		{"unknown format", func(c *types.AppConfig) { c.Corpus.Format = "parquet" }, "corpus.format"},
		{"zero page size", func(c *types.AppConfig) { c.Server.PageSize = 0 }, "server.page_size"},
		{"zero concurrency", func(c *types.AppConfig) { c.Oracle.Concurrency = 0 }, "oracle.concurrency"},
		{"zero history", func(c *types.AppConfig) { c.Store.HistorySize = 0 }, "store.history_size"},
		{"zero threshold", func(c *types.AppConfig) { c.Analysis.LowCoverageThreshold = 0 }, "analysis.low_coverage_threshold"},
		{"negative cap", func(c *types.AppConfig) { c.Analysis.MaxLowCoverage = -1 }, "analysis.max_low_coverage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
