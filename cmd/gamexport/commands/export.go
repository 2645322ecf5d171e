package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/gamexport/config"
	"github.com/use-agent/gamexport/csvout"
	"github.com/use-agent/gamexport/engine"
	"github.com/use-agent/gamexport/exporter"
	"github.com/use-agent/gamexport/models"
	"github.com/use-agent/gamexport/webhook"
)

var exportFlags struct {
	outputDir string
	strict    bool
	maxPages  int
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&exportFlags.outputDir, "output-dir", "o", "", "Directory for <username>_games.csv (default current directory).")
	f.BoolVar(&exportFlags.strict, "strict", false, "Fail (exit 1) on fetch errors or entries with missing fields.")
	f.IntVar(&exportFlags.maxPages, "max-pages", 0, "Stop after this many pages. 0 means no limit.")
	f.Bool("progress", false, "Show a progress spinner on stderr.")
	f.Bool("table", false, "Print the exported records as a table on stdout.")
}

func applyExportFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.Export.OutputDir = exportFlags.outputDir
	}
	if flags.Changed("strict") {
		cfg.Fetch.Strict = exportFlags.strict
	}
	if flags.Changed("max-pages") {
		cfg.Fetch.MaxPages = exportFlags.maxPages
	}
}

// runExport resolves the profile, collects every page and saves the CSV.
// Fetch and write failures are logged and leave the exit code at 0; bad
// input, bad config and strict-mode violations return an error.
func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			slog.Debug("engine close", "error", err)
		}
	}()

	runner, err := exporter.NewRunner(cfg, eng)
	if err != nil {
		return err
	}
	target, err := runner.Resolve(args[0])
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	slog.Info("exporting games",
		"username", target.Username,
		"profile", target.ProfileURL,
		"engine", eng.Name(),
	)

	var rep exporter.Reporter = exporter.NewLogReporter(slog.Default())
	flags := cmd.Flags()
	if progress, _ := flags.GetBool("progress"); progress {
		sp := newSpinnerReporter(rep, os.Stderr)
		defer sp.Stop()
		rep = sp
	}

	hook := webhook.New(cfg.Webhook)
	start := time.Now()

	res, err := runner.Run(cmd.Context(), target, rep)
	if err != nil {
		notify(hook, webhook.Failed(target.Username, target.ProfileURL, err))
		return err
	}
	if res.StopReason == models.StopCanceled {
		slog.Warn("saving partial export", "records", len(res.Records))
	}

	path, err := csvout.Save(cfg.Export.OutputDir, res.Username, res.Records)
	if err != nil {
		rep.SaveFailed(path, err)
		notify(hook, webhook.Failed(res.Username, res.ProfileURL, err))
		return nil
	}
	rep.Saved(path, len(res.Records))
	if res.Issues > 0 {
		slog.Warn("some fields fell back to defaults", "count", res.Issues)
	}
	slog.Info("export finished",
		"records", len(res.Records),
		"pages", res.PagesFetched,
		"stop_reason", res.StopReason,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	notify(hook, webhook.Completed(res, path))

	if table, _ := flags.GetBool("table"); table {
		renderTable(os.Stdout, res)
	}
	return nil
}

// notify delivers ev when a webhook is configured. Failures are logged.
func notify(hook *webhook.Client, ev *webhook.Event) {
	if hook == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := hook.Deliver(ctx, ev); err != nil {
		slog.Warn("webhook delivery failed", "event", ev.Type, "error", err)
		return
	}
	slog.Debug("webhook delivered", "event", ev.Type)
}
