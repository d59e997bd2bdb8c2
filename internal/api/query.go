// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/pubscope/internal/browse"
	"github.com/pdiddy/pubscope/internal/filter"
	"github.com/pdiddy/pubscope/pkg/types"
)

// parseQuery reads a browse query from URL parameters:
//
//	q, mode, sort, page, page_size, year_from, year_to,
//	topic, organism, experiment_type, mission, platform (repeatable)
//
// A missing year bound takes the corpus bound. A value is also split on
// commas unless it names a known option of its dimension as a whole.
func parseQuery(c *gin.Context, pubs []types.Publication, pageSize int) (browse.Query, error) {
	opts := filter.Options(pubs)
	q := browse.Query{
		Text:     c.Query("q"),
		Mode:     types.SearchMode(c.Query("mode")),
		Sort:     types.SortOption(c.Query("sort")),
		PageSize: pageSize,
		Filters: types.SearchFilters{
			Topics:          list(c, "topic", opts.Topics),
			Organisms:       list(c, "organism", opts.Organisms),
			ExperimentTypes: list(c, "experiment_type", opts.ExperimentTypes),
			Missions:        list(c, "mission", opts.Missions),
			Platforms:       list(c, "platform", opts.Platforms),
		},
	}
	if err := checkQuery(q); err != nil {
		return browse.Query{}, err
	}

	var err error
	if q.Page, err = intParam(c, "page", 1); err != nil {
		return browse.Query{}, err
	}
	if q.PageSize, err = intParam(c, "page_size", pageSize); err != nil {
		return browse.Query{}, err
	}

	bounds := filter.Defaults(pubs).Years
	if q.Filters.Years[0], err = intParam(c, "year_from", bounds[0]); err != nil {
		return browse.Query{}, err
	}
	if q.Filters.Years[1], err = intParam(c, "year_to", bounds[1]); err != nil {
		return browse.Query{}, err
	}
	return q, nil
}

// checkQuery rejects unknown modes and sort options before any work is done.
func checkQuery(q browse.Query) error {
	switch q.Mode {
	case "", types.ModeIndexed, types.ModeWeighted, types.ModeFullText:
	default:
		return fmt.Errorf("unknown search mode %q", q.Mode)
	}
	switch q.Sort {
	case "", types.SortYearDesc, types.SortYearAsc, types.SortCitations, types.SortRelevance:
	default:
		return fmt.Errorf("unknown sort option %q", q.Sort)
	}
	return nil
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %q is not a number", name, v)
	}
	return n, nil
}

// list accepts repeated parameters and comma-separated values. A value
// equal to one of known is kept whole even when it contains a comma.
func list(c *gin.Context, name string, known []types.FilterOption) []string {
	var out []string
	for _, v := range c.QueryArray(name) {
		v = strings.TrimSpace(v)
		if hasOption(known, v) {
			out = append(out, v)
			continue
		}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func hasOption(known []types.FilterOption, v string) bool {
	for _, o := range known {
		if o.Value == v {
			return true
		}
	}
	return false
}
