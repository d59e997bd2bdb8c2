// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubscope/internal/export"
	"github.com/pdiddy/pubscope/internal/store"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List bookmarked publications",
	RunE:  runBookmarks,
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Bookmark a publication",
	Args:  cobra.ExactArgs(1),
	RunE:  runBookmarkAdd,
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return st.RemoveBookmark(cmd.Context(), args[0])
	},
}

func init() {
	bookmarksCmd.Flags().String("format", "table", "output format: table, json, yaml")
	bookmarkAddCmd.Flags().String("note", "", "free-text note")

	bookmarksCmd.AddCommand(bookmarkAddCmd, bookmarkRemoveCmd)
	rootCmd.AddCommand(bookmarksCmd)
}

func runBookmarks(cmd *cobra.Command, _ []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	marks, err := st.Bookmarks(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch format {
	case export.FormatJSON:
		return export.WriteJSON(marks, out)
	case export.FormatYAML:
		return export.WriteYAML(marks, out)
	}
	if len(marks) == 0 {
		fmt.Fprintln(out, "No bookmarks.")
		return nil
	}
	for _, b := range marks {
		fmt.Fprintf(out, "%-14s  %-56s  %s\n", b.PublicationID, export.Ellipsize(b.Title, 53), b.CreatedAt.Format("2006-01-02"))
		if b.Note != "" {
			fmt.Fprintf(out, "%14s  %s\n", "", b.Note)
		}
	}
	return nil
}

func runBookmarkAdd(cmd *cobra.Command, args []string) error {
	snap, err := loadCorpus(cmd.Context())
	if err != nil {
		return err
	}
	p, ok := snap.Find(args[0])
	if !ok {
		return fmt.Errorf("publication %q not found", args[0])
	}
	note, _ := cmd.Flags().GetString("note")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.AddBookmark(cmd.Context(), store.Bookmark{PublicationID: p.ID, Title: p.Title, Note: note}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked %s\n", p.ID)
	return nil
}
