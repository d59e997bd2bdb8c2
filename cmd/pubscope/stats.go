// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubscope/internal/analytics"
	"github.com/pdiddy/pubscope/internal/export"
	"github.com/pdiddy/pubscope/internal/filter"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus analytics",
	Long: `Stats prints one analytics view of the whole corpus:

  topics     publications per topic, most frequent first
  timeline   publications per year with each year's top topics
  insights   dataset-level observations
  filters    every filter value with its publication count`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().String("view", "topics", "view: topics, timeline, insights, filters")
	statsCmd.Flags().String("format", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	view, _ := cmd.Flags().GetString("view")
	snap, err := loadCorpus(cmd.Context())
	if err != nil {
		return err
	}

	var data any
	var table func()
	out := cmd.OutOrStdout()
	switch view {
	case "topics":
		dist := analytics.TopicDistribution(snap.Publications)
		data, table = dist, func() { export.DistributionTable(dist, out) }
	case "timeline":
		stats := analytics.YearlyStats(snap.Publications)
		data, table = stats, func() { export.TimelineTable(stats, out) }
	case "insights":
		in := analytics.Insights(snap.Publications)
		data, table = in, func() { export.InsightsText(in, out) }
	case "filters":
		data = filter.Options(snap.Publications)
		if format == export.FormatTable {
			format = export.FormatYAML
		}
	default:
		return fmt.Errorf("unknown view %q", view)
	}

	switch format {
	case export.FormatJSON:
		return export.WriteJSON(data, out)
	case export.FormatYAML:
		return export.WriteYAML(data, out)
	}
	table()
	return nil
}
