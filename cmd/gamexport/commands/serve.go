package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/gamexport/api"
	"github.com/use-agent/gamexport/cache"
	"github.com/use-agent/gamexport/engine"
	"github.com/use-agent/gamexport/exporter"
)

var serveFlags struct {
	host string
	port int
}

var serveCmd = &cobra.Command{
	Use:   "serve [--host <addr>] [--port <n>]",
	Short: "Serves exports over HTTP at /api/v1/users/:username/games.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Listen address (default 0.0.0.0).")
	serveCmd.Flags().IntVar(&serveFlags.port, "port", 0, "Listen port (default 8080).")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ── 1. Load configuration + logging ─────────────────────────────
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveFlags.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serveFlags.port
	}
	cmd.SilenceUsage = true

	slog.Info("gamexport server starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"engine", cfg.Fetch.Engine,
		"auth", cfg.Auth.Enabled && len(cfg.Auth.APIKeys) > 0,
	)

	// ── 2. Fetch engine + runner ────────────────────────────────────
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	runner, err := exporter.NewRunner(cfg, eng)
	if err != nil {
		return err
	}

	// ── 3. Cache + router ───────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	defer cc.Close()
	router := api.NewRouter(runner, cfg, cc, time.Now())

	// ── 4. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// ── 5. Graceful shutdown ────────────────────────────────────────
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
		slog.Info("shutdown signal received")
	}

	// Give in-flight exports 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
	slog.Info("gamexport stopped")
	return nil
}
