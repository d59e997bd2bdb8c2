// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse publications in the terminal",
	Long: `Tui opens an interactive browser. Type a query and press Enter; use the
arrow keys to select, PgUp/PgDn to page, Tab to change the search mode,
Ctrl+S to change the sort, and Ctrl+A to summarize the selected publication.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	snap, err := loadCorpus(cmd.Context())
	if err != nil {
		return err
	}

	var history tui.SearchRecorder
	st, err := openStore()
	if err != nil {
		logger.Warn("search history unavailable", zap.Error(err))
	} else {
		defer st.Close()
		history = st
	}

	_, err = tea.NewProgram(tui.New(snap, newAdapter(), history), tea.WithAltScreen()).Run()
	return err
}
