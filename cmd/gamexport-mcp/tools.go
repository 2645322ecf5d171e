package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/gamexport/csvout"
	"github.com/use-agent/gamexport/exporter"
	"github.com/use-agent/gamexport/models"
	"github.com/use-agent/gamexport/profile"
)

var exportGamesTool = mcp.NewTool("export_games",
	mcp.WithDescription("Export a Backloggd user's rated game library. Walks every page of the profile and returns each game's title and 0-5 star rating."),
	mcp.WithString("profile",
		mcp.Required(),
		mcp.Description("A profile URL containing /u/<username>/ or a bare username"),
	),
	mcp.WithString("format",
		mcp.Description("Output format: 'csv' (default, header Title,Rating) or 'json'"),
		mcp.Enum("csv", "json"),
	),
)

// exportRunner is the part of *exporter.Runner the tool needs.
type exportRunner interface {
	Resolve(arg string) (profile.Target, error)
	Run(ctx context.Context, t profile.Target, rep exporter.Reporter) (*models.ExportResult, error)
}

func handleExportGames(runner exportRunner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arg, err := request.RequireString("profile")
		if err != nil {
			return mcp.NewToolResultError("profile is required"), nil
		}
		format := request.GetString("format", "csv")
		if format != "csv" && format != "json" {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", format)), nil
		}

		target, err := runner.Resolve(arg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		logger := slog.Default().With("username", target.Username, "tool", "export_games")
		res, err := runner.Run(ctx, target, exporter.NewLogReporter(logger))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if format == "json" {
			out, err := json.MarshalIndent(models.NewExportResponse(res), "", "  ")
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
			}
			return mcp.NewToolResultText(string(out)), nil
		}

		var buf bytes.Buffer
		if err := csvout.Write(&buf, res.Records); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode csv: %v", err)), nil
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}
