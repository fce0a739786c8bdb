package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/geomichelon/vtsdk/internal/server"
	"github.com/geomichelon/vtsdk/internal/store"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var addr, dataDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP comparison server",
		Long: `Serve exposes compare, search and locate over HTTP. With --data-dir every
comparison run is stored on disk together with its diff image.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := global.newEngine()
			if err != nil {
				return err
			}

			var runStore *store.FSStore
			if dataDir != "" {
				runStore, err = store.NewFSStore(dataDir)
				if err != nil {
					return fmt.Errorf("failed to create run store: %w", err)
				}
			}

			srv := server.NewServer(addr, e, runStore)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("Shutdown failed", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Directory for run records (empty keeps runs in memory)")
	return cmd
}
