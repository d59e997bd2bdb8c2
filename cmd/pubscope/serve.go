// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	Long: `Serve loads the corpus in the background and exposes it over HTTP:
publications with search, filters, sorting and paging; statistics; gaps;
AI summaries and ranking; bookmarks; search history; and Prometheus
metrics at /metrics. POST /api/reload reloads the corpus.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := newCorpus()
	if err != nil {
		return err
	}
	go func() {
		if err := <-c.ReloadAsync(ctx); err != nil {
			logger.Error("initial corpus load failed", zap.Error(err))
		}
	}()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	srv := api.New(c,
		api.WithInsight(newAdapter()),
		api.WithStore(st),
		api.WithMetrics(appMetrics),
		api.WithLogger(logger),
		api.WithGapOptions(gapOptions()),
		api.WithPageSize(appConfig.Server.PageSize),
	)
	return srv.Serve(ctx, appConfig.Server.Addr)
}
