package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/weiihann/sheetbench/report"
)

func newServeCmd(logger *slog.Logger, gf *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an HTML viewer for the results dir",
		Long: `Serve the results files of the results dir as HTML tables and charts.
Query parameters: file=NAME.jsonl, hide_missing=1, hide_fail=1.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}

			viewer := &report.Viewer{
				Dir:     cfg.ResultsDir,
				Options: reportOptions(cfg),
				Logger:  logger,
			}

			return serve(cmd.Context(), logger, addr, viewer)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Listen address")

	return cmd
}

func serve(ctx context.Context, logger *slog.Logger, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		errc <- srv.ListenAndServe()
	}()

	logger.InfoContext(ctx, "serving results", slog.String("addr", "http://"+addr))

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
