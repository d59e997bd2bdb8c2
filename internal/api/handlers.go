// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/analytics"
	"github.com/pdiddy/pubscope/internal/browse"
	"github.com/pdiddy/pubscope/internal/corpus"
	"github.com/pdiddy/pubscope/internal/export"
	"github.com/pdiddy/pubscope/internal/filter"
	"github.com/pdiddy/pubscope/internal/search"
	"github.com/pdiddy/pubscope/internal/store"
	"github.com/pdiddy/pubscope/pkg/types"
)

var (
	errStoreDisabled = errors.New("bookmarks and history are not configured")
	errNotFound      = errors.New("publication not found")
	errNoImage       = errors.New("no image generated")
)

// summaryPage is a result page rendered as display summaries.
type summaryPage struct {
	Items      []types.PublicationSummary `json:"items"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	Total      int                        `json:"total"`
	TotalPages int                        `json:"total_pages"`
}

type reloadResponse struct {
	Source       string    `json:"source"`
	Publications int       `json:"publications"`
	Duplicates   int       `json:"duplicates"`
	LoadedAt     time.Time `json:"loaded_at"`
}

type summarizeRequest struct {
	ID       string `json:"id"`
	Abstract string `json:"abstract"`
}

type illustrateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type bookmarkRequest struct {
	Note string `json:"note"`
}

// snapshot returns the loaded corpus or answers 503.
func (s *Server) snapshot(c *gin.Context) (*corpus.Snapshot, bool) {
	snap, err := s.corpus.Snapshot()
	if err != nil {
		abort(c, http.StatusServiceUnavailable, err)
		return nil, false
	}
	return snap, true
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "loaded": s.corpus.Loaded()})
}

func (s *Server) listPublications(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	q, err := parseQuery(c, snap.Publications, s.pageSize)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	page, err := browse.Run(snap.Publications, snap.Index, q)
	if err != nil {
		abort(c, queryStatus(err), err)
		return
	}
	s.recordSearch(c, q.Text)

	if c.Query("view") == "summary" {
		c.JSON(http.StatusOK, summaryPage{
			Items:      export.Summaries(page.Items),
			Page:       page.Page,
			PageSize:   page.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		})
		return
	}
	c.JSON(http.StatusOK, page)
}

// recordSearch adds a non-blank query to the history. Failures only log.
func (s *Server) recordSearch(c *gin.Context, text string) {
	if s.store == nil || strings.TrimSpace(text) == "" {
		return
	}
	if err := s.store.RecordSearch(c.Request.Context(), text); err != nil {
		s.logger.Warn("recording search failed", zap.String("query", text), zap.Error(err))
	}
}

func queryStatus(err error) int {
	if errors.Is(err, filter.ErrInvalidYearRange) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) getPublication(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	p, found := snap.Find(c.Param("id"))
	if !found {
		abort(c, http.StatusNotFound, errNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) summarizePublication(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	p, found := snap.Find(c.Param("id"))
	if !found {
		abort(c, http.StatusNotFound, errNotFound)
		return
	}
	c.JSON(http.StatusOK, s.insight.Summarize(c.Request.Context(), p.Abstract))
}

func (s *Server) filterOptions(c *gin.Context) {
	if snap, ok := s.snapshot(c); ok {
		c.JSON(http.StatusOK, filter.Options(snap.Publications))
	}
}

func (s *Server) filterDefaults(c *gin.Context) {
	if snap, ok := s.snapshot(c); ok {
		c.JSON(http.StatusOK, filter.Defaults(snap.Publications))
	}
}

func (s *Server) topicDistribution(c *gin.Context) {
	if snap, ok := s.snapshot(c); ok {
		c.JSON(http.StatusOK, analytics.TopicDistribution(snap.Publications))
	}
}

func (s *Server) timeline(c *gin.Context) {
	if snap, ok := s.snapshot(c); ok {
		c.JSON(http.StatusOK, analytics.YearlyStats(snap.Publications))
	}
}

func (s *Server) insights(c *gin.Context) {
	if snap, ok := s.snapshot(c); ok {
		c.JSON(http.StatusOK, analytics.Insights(snap.Publications))
	}
}

func (s *Server) researchGaps(c *gin.Context) {
	if snap, ok := s.snapshot(c); ok {
		c.JSON(http.StatusOK, analytics.ResearchGaps(snap.Publications, s.gaps))
	}
}

func (s *Server) reload(c *gin.Context) {
	snap, err := s.corpus.Reload(c.Request.Context())
	if err != nil {
		abort(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, reloadResponse{
		Source:       snap.Source,
		Publications: len(snap.Publications),
		Duplicates:   len(snap.Report.Duplicates),
		LoadedAt:     snap.LoadedAt,
	})
}

func (s *Server) aiSummarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	abstract := req.Abstract
	if req.ID != "" {
		snap, ok := s.snapshot(c)
		if !ok {
			return
		}
		p, found := snap.Find(req.ID)
		if !found {
			abort(c, http.StatusNotFound, errNotFound)
			return
		}
		abstract = p.Abstract
	}
	if strings.TrimSpace(abstract) == "" {
		abort(c, http.StatusBadRequest, errors.New("id or abstract is required"))
		return
	}
	c.JSON(http.StatusOK, s.insight.Summarize(c.Request.Context(), abstract))
}

// aiRank ranks the filtered corpus against the query text. The text does
// not preselect candidates so the oracle can match on meaning.
func (s *Server) aiRank(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	var q browse.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	text := strings.TrimSpace(q.Text)
	if text == "" {
		abort(c, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	if err := checkQuery(q); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	q.Text = ""
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	candidates, err := browse.Results(snap.Publications, snap.Index, q)
	if err != nil {
		abort(c, queryStatus(err), err)
		return
	}
	ranked := s.insight.Rank(c.Request.Context(), text, candidates)
	s.recordSearch(c, text)
	c.JSON(http.StatusOK, search.Paginate(ranked, q.Page, q.PageSize))
}

func (s *Server) aiGaps(c *gin.Context) {
	if snap, ok := s.snapshot(c); ok {
		c.JSON(http.StatusOK, s.insight.FindGaps(c.Request.Context(), snap.Publications))
	}
}

func (s *Server) aiIllustrate(c *gin.Context) {
	var req illustrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	image, ok := s.insight.Illustrate(c.Request.Context(), req.Prompt)
	if !ok {
		abort(c, http.StatusBadGateway, errNoImage)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": image})
}

func (s *Server) listBookmarks(c *gin.Context) {
	marks, err := s.store.Bookmarks(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, marks)
}

func (s *Server) putBookmark(c *gin.Context) {
	snap, ok := s.snapshot(c)
	if !ok {
		return
	}
	p, found := snap.Find(c.Param("id"))
	if !found {
		abort(c, http.StatusNotFound, errNotFound)
		return
	}
	var req bookmarkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
	}
	b := store.Bookmark{PublicationID: p.ID, Title: p.Title, Note: req.Note}
	if err := s.store.AddBookmark(c.Request.Context(), b); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteBookmark(c *gin.Context) {
	s.deleted(c, s.store.RemoveBookmark(c.Request.Context(), c.Param("id")))
}

func (s *Server) listHistory(c *gin.Context) {
	recent, err := s.store.RecentSearches(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": recent})
}

func (s *Server) clearHistory(c *gin.Context) {
	s.deleted(c, s.store.ClearSearches(c.Request.Context()))
}

func (s *Server) deleteHistory(c *gin.Context) {
	s.deleted(c, s.store.RemoveSearch(c.Request.Context(), c.Param("query")))
}

func (s *Server) deleted(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		abort(c, http.StatusNotFound, err)
	case err != nil:
		abort(c, http.StatusInternalServerError, err)
	default:
		c.Status(http.StatusNoContent)
	}
}
