// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/browse"
	"github.com/pdiddy/pubscope/internal/export"
	"github.com/pdiddy/pubscope/internal/search"
	"github.com/pdiddy/pubscope/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search and filter publications",
	Long: `Search matches the query against the corpus, applies the filters, sorts,
and prints one page of results. Without a query every publication matches.

Search modes: indexed (default, token index), weighted (title, abstract,
keyword and author weights), fulltext (every term must appear).
Sort options: year-desc (default), year-asc, citations, relevance.

With --ai the filtered corpus is ranked against the query by the
generative-language API, or by a local keyword score when it is unavailable.`,
	RunE: runSearch,
}

func init() {
	addQueryFlags(searchCmd)
	searchCmd.Flags().Int("page", 1, "result page (1-based)")
	searchCmd.Flags().Int("page-size", 0, "results per page (default from config, 12)")
	searchCmd.Flags().String("format", "table", "output format: table, json, yaml, csl")
	searchCmd.Flags().Bool("ai", false, "rank results with the AI adapter")
	searchCmd.Flags().String("save", "", "write the query and result ids to a YAML file")
	searchCmd.Flags().String("replay", "", "run the query stored in a YAML file")

	rootCmd.AddCommand(searchCmd)
}

// addQueryFlags registers the search and filter flags shared by search and export.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", string(types.ModeIndexed), "search mode: indexed, weighted, fulltext")
	cmd.Flags().String("sort", string(types.SortYearDesc), "sort: year-desc, year-asc, citations, relevance")
	cmd.Flags().Int("year-from", 0, "earliest publication year (default: corpus minimum)")
	cmd.Flags().Int("year-to", 0, "latest publication year (default: corpus maximum)")
	cmd.Flags().StringArray("topic", nil, "topic filter (repeatable, no comma splitting)")
	cmd.Flags().StringArray("organism", nil, "organism filter (repeatable, no comma splitting)")
	cmd.Flags().StringArray("experiment-type", nil, "experiment type filter (repeatable, no comma splitting)")
	cmd.Flags().StringArray("mission", nil, "mission filter (repeatable, no comma splitting)")
	cmd.Flags().StringArray("platform", nil, "platform filter (repeatable, no comma splitting)")
}

// queryFromFlags builds a browse query. Unset year bounds take the corpus bounds.
func queryFromFlags(cmd *cobra.Command, args []string, pubs []types.Publication) browse.Query {
	mode, _ := cmd.Flags().GetString("mode")
	sortBy, _ := cmd.Flags().GetString("sort")
	q := browse.Query{
		Text: strings.Join(args, " "),
		Mode: types.SearchMode(mode),
		Sort: types.SortOption(sortBy),
	}
	q.Filters.Topics, _ = cmd.Flags().GetStringArray("topic")
	q.Filters.Organisms, _ = cmd.Flags().GetStringArray("organism")
	q.Filters.ExperimentTypes, _ = cmd.Flags().GetStringArray("experiment-type")
	q.Filters.Missions, _ = cmd.Flags().GetStringArray("mission")
	q.Filters.Platforms, _ = cmd.Flags().GetStringArray("platform")

	q = q.WithDefaults(pubs)
	if from, _ := cmd.Flags().GetInt("year-from"); cmd.Flags().Changed("year-from") {
		q.Filters.Years[0] = from
	}
	if to, _ := cmd.Flags().GetInt("year-to"); cmd.Flags().Changed("year-to") {
		q.Filters.Years[1] = to
	}
	return q
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	snap, err := loadCorpus(ctx)
	if err != nil {
		return err
	}

	q := queryFromFlags(cmd, args, snap.Publications)
	if path, _ := cmd.Flags().GetString("replay"); path != "" {
		qf, err := search.ReadQueryFile(path)
		if err != nil {
			return err
		}
		q.Text, q.Mode, q.Sort, q.Filters = qf.Query.Text, qf.Query.Mode, qf.Query.Sort, qf.Query.Filters
		q = q.WithDefaults(snap.Publications)
	}
	q.Page, _ = cmd.Flags().GetInt("page")
	q.PageSize, _ = cmd.Flags().GetInt("page-size")
	if q.PageSize <= 0 {
		q.PageSize = appConfig.Server.PageSize
	}

	var results []types.Publication
	if ai, _ := cmd.Flags().GetBool("ai"); ai && q.Text != "" {
		text := q.Text
		q.Text = ""
		candidates, err := browse.Results(snap.Publications, snap.Index, q)
		if err != nil {
			return err
		}
		results = newAdapter().Rank(ctx, text, candidates)
		q.Text = text
	} else {
		results, err = browse.Results(snap.Publications, snap.Index, q)
		if err != nil {
			return err
		}
	}

	recordSearch(cmd, q.Text)
	if path, _ := cmd.Flags().GetString("save"); path != "" {
		params := search.QueryParams{Text: q.Text, Mode: q.Mode, Sort: q.Sort, Filters: q.Filters}
		if err := search.WriteQueryFile(path, params, results, time.Now()); err != nil {
			return err
		}
		logger.Info("saved query", zap.String("path", path), zap.Int("results", len(results)))
	}

	format, _ := cmd.Flags().GetString("format")
	return export.WritePage(search.Paginate(results, q.Page, q.PageSize), export.Format(format), cmd.OutOrStdout())
}

// recordSearch adds text to the recent search history. Failures only log.
func recordSearch(cmd *cobra.Command, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	st, err := openStore()
	if err != nil {
		logger.Warn("search history unavailable", zap.Error(err))
		return
	}
	defer st.Close()
	if err := st.RecordSearch(cmd.Context(), text); err != nil {
		logger.Warn("recording search failed", zap.Error(err))
	}
}

func formatFlag(cmd *cobra.Command) (export.Format, error) {
	f, _ := cmd.Flags().GetString("format")
	switch format := export.Format(f); format {
	case export.FormatTable, export.FormatJSON, export.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q (table, json, yaml)", f)
	}
}
