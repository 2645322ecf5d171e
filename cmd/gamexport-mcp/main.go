package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/gamexport/config"
	"github.com/use-agent/gamexport/engine"
	"github.com/use-agent/gamexport/exporter"
	"github.com/use-agent/gamexport/logging"
	"github.com/use-agent/gamexport/models"
)

func main() {
	cfg, err := config.Load(os.Getenv("GAMEXPORT_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// stdout carries the protocol; logs go to stderr.
	if cfg.Log.Format == "pretty" {
		cfg.Log.Format = "text"
	}
	logging.Init(cfg.Log, os.Stderr)

	eng, err := engine.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer eng.Close()

	runner, err := exporter.NewRunner(cfg, eng)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"gamexport",
		models.Version,
		server.WithToolCapabilities(false),
	)
	s.AddTool(exportGamesTool, handleExportGames(runner))

	slog.Info("gamexport MCP server starting", "engine", eng.Name(), "site", cfg.Fetch.Site)
	if err := server.ServeStdio(s); err != nil {
		slog.Error("MCP server error", "error", err)
	}
}
