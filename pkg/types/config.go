// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout bounds a single request, including retries.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubscope/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourceFormat identifies how raw records are read.
type SourceFormat string

const (
	FormatAuto SourceFormat = "auto"
	FormatXLSX SourceFormat = "xlsx"
	FormatCSV  SourceFormat = "csv"
	FormatJSON SourceFormat = "json"
)

// CorpusConfig holds settings for loading and normalizing the corpus.
type CorpusConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Path is the spreadsheet, CSV, or JSON file with raw records.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// URL is an HTTP endpoint returning raw records as JSON. Used when Path is empty.
	URL string `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`

	// Format forces a reader; "auto" picks one from the file extension.
	Format SourceFormat `json:"format" yaml:"format" mapstructure:"format"`

	// Sheet names the spreadsheet sheet to read (default: first sheet).
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty" mapstructure:"sheet"`

	// MaxTopics bounds the topics kept per publication (default 10).
	MaxTopics int `json:"max_topics" yaml:"max_topics" mapstructure:"max_topics"`

	// VocabularyFile is an optional YAML file replacing the built-in topic vocabulary.
	VocabularyFile string `json:"vocabulary_file,omitempty" yaml:"vocabulary_file,omitempty" mapstructure:"vocabulary_file"`
}

// OracleConfig holds settings for the external generative-language API.
type OracleConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Model is the model identifier (e.g. "gemini-1.5-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates requests. Empty disables the oracle.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the API root (default https://generativelanguage.googleapis.com/v1beta).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	Temperature     float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens" yaml:"max_output_tokens" mapstructure:"max_output_tokens"`

	// RequestsPerSecond throttles outgoing calls (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// MaxRetries is the number of retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Concurrency bounds parallel calls in batch summarization (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
}

// AnalysisConfig tunes the gap heuristics.
type AnalysisConfig struct {
	// LowCoverageThreshold flags topics with fewer publications (default 5).
	LowCoverageThreshold int `json:"low_coverage_threshold" yaml:"low_coverage_threshold" mapstructure:"low_coverage_threshold"`

	// MaxLowCoverage caps the low-coverage gaps reported (default 10, 0 = no cap).
	MaxLowCoverage int `json:"max_low_coverage" yaml:"max_low_coverage" mapstructure:"max_low_coverage"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr     string `json:"addr" yaml:"addr" mapstructure:"addr"`
	PageSize int    `json:"page_size" yaml:"page_size" mapstructure:"page_size"`
}

// StoreConfig locates the bookmark and search history database.
type StoreConfig struct {
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// HistorySize is the number of recent searches kept (default 5).
	HistorySize int `json:"history_size" yaml:"history_size" mapstructure:"history_size"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	Corpus   CorpusConfig   `json:"corpus" yaml:"corpus" mapstructure:"corpus"`
	Oracle   OracleConfig   `json:"oracle" yaml:"oracle" mapstructure:"oracle"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
