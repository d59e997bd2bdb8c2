// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves the publication dashboard as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/analytics"
	"github.com/pdiddy/pubscope/internal/corpus"
	"github.com/pdiddy/pubscope/internal/insight"
	"github.com/pdiddy/pubscope/internal/metrics"
	"github.com/pdiddy/pubscope/internal/search"
	"github.com/pdiddy/pubscope/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Server holds the dependencies of every route.
type Server struct {
	corpus   *corpus.Corpus
	insight  *insight.Adapter
	store    *store.Store
	metrics  *metrics.Metrics
	logger   *zap.Logger
	gaps     analytics.GapOptions
	pageSize int
}

// Option configures a Server.
type Option func(*Server)

// WithInsight sets the adapter behind the /api/ai routes. Without one the
// routes answer with local heuristics.
func WithInsight(a *insight.Adapter) Option {
	return func(s *Server) { s.insight = a }
}

// WithStore enables the bookmark and history routes.
func WithStore(st *store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGapOptions overrides the gap analysis settings of /api/gaps.
func WithGapOptions(o analytics.GapOptions) Option {
	return func(s *Server) { s.gaps = o }
}

// WithPageSize sets the default page size.
func WithPageSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// New returns a server over c.
func New(c *corpus.Corpus, opts ...Option) *Server {
	s := &Server{
		corpus:   c,
		logger:   zap.NewNop(),
		gaps:     analytics.DefaultGapOptions(),
		pageSize: search.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.insight == nil {
		s.insight = insight.New(nil, insight.WithLogger(s.logger), insight.WithMetrics(s.metrics))
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/publications", s.listPublications)
		api.GET("/publications/:id", s.getPublication)
		api.GET("/publications/:id/summary", s.summarizePublication)
		api.GET("/filters", s.filterOptions)
		api.GET("/filters/defaults", s.filterDefaults)
		api.GET("/stats/topics", s.topicDistribution)
		api.GET("/stats/timeline", s.timeline)
		api.GET("/insights", s.insights)
		api.GET("/gaps", s.researchGaps)
		api.POST("/reload", s.reload)
	}

	ai := api.Group("/ai")
	{
		ai.POST("/summarize", s.aiSummarize)
		ai.POST("/rank", s.aiRank)
		ai.GET("/gaps", s.aiGaps)
		ai.POST("/illustrate", s.aiIllustrate)
	}

	user := api.Group("", s.requireStore)
	{
		user.GET("/bookmarks", s.listBookmarks)
		user.PUT("/bookmarks/:id", s.putBookmark)
		user.DELETE("/bookmarks/:id", s.deleteBookmark)
		user.GET("/history", s.listHistory)
		user.DELETE("/history", s.clearHistory)
		user.DELETE("/history/:query", s.deleteHistory)
	}
	return r
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
