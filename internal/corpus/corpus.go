// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus runs the load cycle: read raw rows, normalize them, and
// build the search index. The result is published as an immutable snapshot
// that replaces the previous one atomically.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/index"
	"github.com/pdiddy/pubscope/internal/metrics"
	"github.com/pdiddy/pubscope/internal/normalize"
	"github.com/pdiddy/pubscope/internal/source"
	"github.com/pdiddy/pubscope/pkg/types"
)

var (
	// ErrEmptyCorpus is returned when a load yields no publications.
	ErrEmptyCorpus = errors.New("corpus has no publications")

	// ErrNotLoaded is returned when no load has succeeded yet.
	ErrNotLoaded = errors.New("corpus not loaded")
)

// Snapshot is one loaded corpus. It is never modified after publication.
type Snapshot struct {
	Publications []types.Publication
	Index        *index.Index
	Report       normalize.Report
	Source       string
	LoadedAt     time.Time
}

// Corpus holds the current snapshot.
type Corpus struct {
	src        source.Source
	normalizer *normalize.Normalizer
	logger     *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	current    atomic.Pointer[Snapshot]
}

// Option configures a Corpus.
type Option func(*Corpus)

// WithLogger sets the logger for load diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Corpus) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records reloads and corpus size.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Corpus) { c.metrics = m }
}

// WithClock sets the time source for LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Corpus) { c.now = now }
}

// New creates a corpus reading from src. Nothing is loaded until Reload.
func New(src source.Source, n *normalize.Normalizer, opts ...Option) *Corpus {
	if n == nil {
		n = normalize.New()
	}
	c := &Corpus{
		src:        src,
		normalizer: n,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reload runs the load cycle and publishes the new snapshot. On failure the
// previous snapshot stays current and the error is returned.
func (c *Corpus) Reload(ctx context.Context) (*Snapshot, error) {
	snap, err := c.load(ctx)
	if err != nil {
		c.metrics.Reload(0, 0, err)
		c.logger.Error("corpus load failed", zap.String("source", c.src.Name()), zap.Error(err))
		return nil, err
	}
	c.current.Store(snap)
	c.metrics.Reload(len(snap.Publications), len(snap.Report.Duplicates), nil)
	c.logger.Info("corpus loaded",
		zap.String("source", snap.Source),
		zap.Int("rows", snap.Report.Input),
		zap.Int("publications", len(snap.Publications)),
		zap.Int("duplicates", len(snap.Report.Duplicates)),
		zap.Int("no_identity", len(snap.Report.NoIdentity)),
		zap.Int("terms", snap.Index.Terms()),
	)
	return snap, nil
}

func (c *Corpus) load(ctx context.Context) (*Snapshot, error) {
	rows, err := c.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", c.src.Name(), err)
	}
	pubs, report := c.normalizer.Normalize(rows)
	if len(pubs) == 0 {
		return nil, fmt.Errorf("loading %s: %w", c.src.Name(), ErrEmptyCorpus)
	}
	return &Snapshot{
		Publications: pubs,
		Index:        index.Build(pubs),
		Report:       report,
		Source:       c.src.Name(),
		LoadedAt:     c.now(),
	}, nil
}

// ReloadAsync runs Reload in the background. The channel receives the
// result and is then closed.
func (c *Corpus) ReloadAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := c.Reload(ctx)
		done <- err
	}()
	return done
}

// Snapshot returns the current snapshot.
func (c *Corpus) Snapshot() (*Snapshot, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Loaded reports whether a snapshot is available.
func (c *Corpus) Loaded() bool { return c.current.Load() != nil }

// Find returns the publication with id.
func (s *Snapshot) Find(id string) (types.Publication, bool) {
	for _, p := range s.Publications {
		if p.ID == id {
			return p, true
		}
	}
	return types.Publication{}, false
}
