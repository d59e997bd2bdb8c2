// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pubscope/internal/analytics"
	"github.com/pdiddy/pubscope/internal/export"
	"github.com/pdiddy/pubscope/pkg/types"
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Identify under-researched topics",
	Long: `Gaps flags low-coverage topics and topics whose publication count has
declined in recent years, ordered by severity. With --ai a sample of the
corpus is analyzed by the generative-language API instead, falling back to
the local heuristic when it is unavailable.`,
	RunE: runGaps,
}

func init() {
	gapsCmd.Flags().Bool("ai", false, "ask the AI adapter for gaps")
	gapsCmd.Flags().String("format", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(gapsCmd)
}

func runGaps(cmd *cobra.Command, _ []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	snap, err := loadCorpus(cmd.Context())
	if err != nil {
		return err
	}

	var gaps []types.ResearchGap
	if ai, _ := cmd.Flags().GetBool("ai"); ai {
		gaps = newAdapter().FindGaps(cmd.Context(), snap.Publications)
	} else {
		gaps = analytics.ResearchGaps(snap.Publications, gapOptions())
	}

	out := cmd.OutOrStdout()
	switch format {
	case export.FormatJSON:
		return export.WriteJSON(gaps, out)
	case export.FormatYAML:
		return export.WriteYAML(gaps, out)
	}
	export.GapTable(gaps, out)
	return nil
}
