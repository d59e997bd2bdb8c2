// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/pdiddy/pubscope/internal/analytics"
	"github.com/pdiddy/pubscope/internal/corpus"
	"github.com/pdiddy/pubscope/internal/insight"
	"github.com/pdiddy/pubscope/internal/normalize"
	"github.com/pdiddy/pubscope/internal/oracle"
	"github.com/pdiddy/pubscope/internal/source"
	"github.com/pdiddy/pubscope/internal/store"
	"github.com/pdiddy/pubscope/internal/topics"
)

// newCorpus wires the configured source and normalizer into a corpus
// without loading it.
func newCorpus() (*corpus.Corpus, error) {
	src, err := source.Open(appConfig.Corpus, logger)
	if err != nil {
		return nil, err
	}
	opts := []normalize.Option{
		normalize.WithLogger(logger),
		normalize.WithMaxTopics(appConfig.Corpus.MaxTopics),
	}
	if path := appConfig.Corpus.VocabularyFile; path != "" {
		ex, err := topics.NewFromFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, normalize.WithExtractor(ex))
	}
	return corpus.New(src, normalize.New(opts...),
		corpus.WithLogger(logger), corpus.WithMetrics(appMetrics)), nil
}

// loadCorpus builds and loads the corpus.
func loadCorpus(ctx context.Context) (*corpus.Snapshot, error) {
	c, err := newCorpus()
	if err != nil {
		return nil, err
	}
	return c.Reload(ctx)
}

// newAdapter returns the insight adapter. Without an API key every
// operation uses its local heuristic.
func newAdapter() *insight.Adapter {
	opts := []insight.Option{
		insight.WithLogger(logger),
		insight.WithMetrics(appMetrics),
		insight.WithTimeout(appConfig.Oracle.Timeout),
		insight.WithConcurrency(appConfig.Oracle.Concurrency),
	}
	if appConfig.Oracle.APIKey == "" {
		return insight.New(nil, opts...)
	}
	return insight.New(oracle.FromConfig(appConfig.Oracle, logger), opts...)
}

func openStore() (*store.Store, error) {
	st, err := store.Open(appConfig.Store)
	if err != nil {
		return nil, fmt.Errorf("opening bookmark store: %w", err)
	}
	return st, nil
}

// gapOptions applies the configured thresholds to the default analysis.
func gapOptions() analytics.GapOptions {
	opts := analytics.DefaultGapOptions()
	if n := appConfig.Analysis.LowCoverageThreshold; n > 0 {
		opts.LowCoverageThreshold = n
	}
	opts.MaxLowCoverage = appConfig.Analysis.MaxLowCoverage
	return opts
}
