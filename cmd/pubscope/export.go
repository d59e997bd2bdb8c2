// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/browse"
	"github.com/pdiddy/pubscope/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export [query...]",
	Short: "Export every matching publication",
	Long: `Export writes all publications matching the query and filters, unpaged,
as CSL-YAML (for Pandoc and reference managers), JSON, or YAML.`,
	RunE: runExport,
}

func init() {
	addQueryFlags(exportCmd)
	exportCmd.Flags().String("format", string(export.FormatCSL), "output format: csl, json, yaml")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	snap, err := loadCorpus(cmd.Context())
	if err != nil {
		return err
	}
	results, err := browse.Results(snap.Publications, snap.Index, queryFromFlags(cmd, args, snap.Publications))
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		out = f
		logger.Info("exporting", zap.String("path", path), zap.Int("publications", len(results)))
	}

	format, _ := cmd.Flags().GetString("format")
	switch export.Format(format) {
	case export.FormatCSL:
		return export.WriteCSL(results, out)
	case export.FormatJSON:
		return export.WriteJSON(results, out)
	case export.FormatYAML:
		return export.WriteYAML(results, out)
	default:
		return fmt.Errorf("unsupported format %q (csl, json, yaml)", format)
	}
}
