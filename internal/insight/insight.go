// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package insight produces summaries, relevance rankings and research gaps.
// Every operation asks the oracle first and degrades to a deterministic
// local heuristic on any failure, so callers always receive a result.
package insight

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pubscope/internal/metrics"
	"github.com/pdiddy/pubscope/internal/oracle"
	"github.com/pdiddy/pubscope/pkg/types"
)

const (
	// DefaultTimeout bounds a single oracle call.
	DefaultTimeout = 20 * time.Second

	// DefaultConcurrency bounds parallel calls in SummarizeAll.
	DefaultConcurrency = 4

	// GapSampleSize is the number of publications shown to the oracle when
	// looking for gaps.
	GapSampleSize = 20
)

// Summary sources.
const (
	SourceOracle = "oracle"
	SourceLocal  = "local"
)

// Operation names used in logs and metrics.
const (
	OpSummarize  = "summarize"
	OpRank       = "rank"
	OpGaps       = "gaps"
	OpIllustrate = "illustrate"
)

// Adapter answers insight requests through an oracle.Generator.
type Adapter struct {
	gen         oracle.Generator
	logger      *zap.Logger
	metrics     *metrics.Metrics
	timeout     time.Duration
	concurrency int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used to report degradations.
func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics records oracle calls and fallbacks.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithTimeout bounds each oracle call. Non-positive keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithConcurrency bounds parallel oracle calls in SummarizeAll.
func WithConcurrency(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// New creates an adapter. A nil gen makes every operation local.
func New(gen oracle.Generator, opts ...Option) *Adapter {
	a := &Adapter{
		gen:         gen,
		logger:      zap.NewNop(),
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize returns a structured summary of abstract.
func (a *Adapter) Summarize(ctx context.Context, abstract string) types.AISummary {
	s, err := a.oracleSummary(ctx, abstract)
	if err != nil {
		a.degrade(OpSummarize, err)
		return LocalSummary(abstract)
	}
	return s
}

func (a *Adapter) oracleSummary(ctx context.Context, abstract string) (types.AISummary, error) {
	prompt, err := summaryPrompt(abstract)
	if err != nil {
		return types.AISummary{}, fmt.Errorf("rendering prompt: %w", err)
	}
	text, err := a.generate(ctx, OpSummarize, oracle.Request{Prompt: prompt})
	if err != nil {
		return types.AISummary{}, err
	}
	return ParseSummary(text)
}

// Rank reorders pubs by relevance to query. The local fallback keeps only
// publications that match the query. A blank query returns pubs unchanged.
func (a *Adapter) Rank(ctx context.Context, query string, pubs []types.Publication) []types.Publication {
	if strings.TrimSpace(query) == "" || len(pubs) == 0 {
		return append([]types.Publication(nil), pubs...)
	}
	ranked, err := a.oracleRank(ctx, query, pubs)
	if err != nil {
		a.degrade(OpRank, err)
		return LocalRank(query, pubs)
	}
	return ranked
}

func (a *Adapter) oracleRank(ctx context.Context, query string, pubs []types.Publication) ([]types.Publication, error) {
	prompt, err := rankPrompt(query, pubs)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}
	text, err := a.generate(ctx, OpRank, oracle.Request{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	return ParseRanking(text, pubs)
}

// FindGaps identifies under-researched topics in pubs.
func (a *Adapter) FindGaps(ctx context.Context, pubs []types.Publication) []types.ResearchGap {
	if len(pubs) == 0 {
		return []types.ResearchGap{}
	}
	gaps, err := a.oracleGaps(ctx, pubs)
	if err != nil {
		a.degrade(OpGaps, err)
		return LocalGaps(pubs)
	}
	return gaps
}

func (a *Adapter) oracleGaps(ctx context.Context, pubs []types.Publication) ([]types.ResearchGap, error) {
	sample := pubs
	if len(sample) > GapSampleSize {
		sample = sample[:GapSampleSize]
	}
	prompt, err := gapsPrompt(sample)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}
	text, err := a.generate(ctx, OpGaps, oracle.Request{Prompt: prompt})
	if err != nil {
		return nil, err
	}
	return ParseGaps(text)
}

// SummarizeAll summarizes every publication's abstract with bounded
// concurrency. Results are in input order. It fails only when ctx is done
// before every summary was produced.
func (a *Adapter) SummarizeAll(ctx context.Context, pubs []types.Publication) ([]types.AISummary, error) {
	out := make([]types.AISummary, len(pubs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range pubs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = a.Summarize(gctx, pubs[i].Abstract)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summarizing publications: %w", err)
	}
	return out, nil
}

// Illustrate asks the oracle for an image and returns it as a data URL.
// The boolean is false when no image could be produced; there is no local
// fallback.
func (a *Adapter) Illustrate(ctx context.Context, prompt string) (string, bool) {
	if a.gen == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.gen.Generate(ctx, oracle.Request{
		Prompt:             prompt,
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	a.metrics.OracleCall(OpIllustrate, err)
	if err != nil {
		a.degrade(OpIllustrate, err)
		return "", false
	}
	for _, p := range resp.Parts {
		if len(p.Data) > 0 {
			return "data:" + p.MimeType + ";base64," + base64.StdEncoding.EncodeToString(p.Data), true
		}
	}
	a.degrade(OpIllustrate, oracle.ErrEmptyResponse)
	return "", false
}

// generate sends one prompt under the adapter timeout.
func (a *Adapter) generate(ctx context.Context, op string, req oracle.Request) (string, error) {
	if a.gen == nil {
		return "", oracle.ErrNoCredentials
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.gen.Generate(ctx, req)
	a.metrics.OracleCall(op, err)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", oracle.ErrEmptyResponse
	}
	return resp.Text, nil
}

func (a *Adapter) degrade(op string, err error) {
	a.logger.Warn("oracle unavailable, using local heuristic",
		zap.String("operation", op),
		zap.Error(err),
	)
	a.metrics.Fallback(op)
}
