// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches, most recent first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		recent, err := st.RecentSearches(cmd.Context())
		if err != nil {
			return err
		}
		for _, q := range recent {
			fmt.Fprintln(cmd.OutOrStdout(), q)
		}
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <query>",
	Short: "Remove one recent search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return st.RemoveSearch(cmd.Context(), args[0])
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every recent search",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		return st.ClearSearches(cmd.Context())
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
