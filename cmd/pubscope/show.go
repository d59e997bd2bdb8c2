// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubscope/internal/export"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one publication",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().String("format", "table", "output format: table, json, yaml")
	showCmd.Flags().Bool("summary", false, "append an AI summary of the abstract")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	snap, err := loadCorpus(cmd.Context())
	if err != nil {
		return err
	}
	p, ok := snap.Find(args[0])
	if !ok {
		return fmt.Errorf("publication %q not found", args[0])
	}

	out := cmd.OutOrStdout()
	switch format {
	case export.FormatJSON:
		return export.WriteJSON(p, out)
	case export.FormatYAML:
		return export.WriteYAML(p, out)
	}
	export.PublicationDetail(p, out)
	if withSummary, _ := cmd.Flags().GetBool("summary"); withSummary {
		fmt.Fprintln(out)
		export.SummaryText(newAdapter().Summarize(cmd.Context(), p.Abstract), out)
	}
	return nil
}
