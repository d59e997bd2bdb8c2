// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubscope/internal/export"
	"github.com/pdiddy/pubscope/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [id...]",
	Short: "Summarize publication abstracts",
	Long: `Summarize produces a one-line summary, key findings, and mission relevance
for each named publication, or for the text given with --abstract. Several
publications are summarized concurrently.`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("abstract", "", "summarize this text instead of corpus publications")
	summarizeCmd.Flags().String("format", "table", "output format: table, json, yaml")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	adapter := newAdapter()
	out := cmd.OutOrStdout()

	if text, _ := cmd.Flags().GetString("abstract"); strings.TrimSpace(text) != "" {
		return writeSummaries(out, format, nil, []types.AISummary{adapter.Summarize(cmd.Context(), text)})
	}
	if len(args) == 0 {
		return fmt.Errorf("provide publication ids or --abstract")
	}

	snap, err := loadCorpus(cmd.Context())
	if err != nil {
		return err
	}
	pubs := make([]types.Publication, 0, len(args))
	for _, id := range args {
		p, ok := snap.Find(id)
		if !ok {
			return fmt.Errorf("publication %q not found", id)
		}
		pubs = append(pubs, p)
	}
	summaries, err := adapter.SummarizeAll(cmd.Context(), pubs)
	if err != nil {
		return err
	}
	return writeSummaries(out, format, pubs, summaries)
}

type namedSummary struct {
	ID      string          `json:"id,omitempty" yaml:"id,omitempty"`
	Title   string          `json:"title,omitempty" yaml:"title,omitempty"`
	Summary types.AISummary `json:"summary" yaml:"summary"`
}

func writeSummaries(out io.Writer, format export.Format, pubs []types.Publication, summaries []types.AISummary) error {
	named := make([]namedSummary, len(summaries))
	for i, s := range summaries {
		named[i].Summary = s
		if i < len(pubs) {
			named[i].ID, named[i].Title = pubs[i].ID, pubs[i].Title
		}
	}
	switch format {
	case export.FormatJSON:
		return export.WriteJSON(named, out)
	case export.FormatYAML:
		return export.WriteYAML(named, out)
	}
	for i, n := range named {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if n.ID != "" {
			fmt.Fprintf(out, "%s  %s\n\n", n.ID, n.Title)
		}
		export.SummaryText(n.Summary, out)
	}
	return nil
}
