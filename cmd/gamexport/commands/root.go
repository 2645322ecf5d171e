package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/use-agent/gamexport/config"
	"github.com/use-agent/gamexport/logging"
	"github.com/use-agent/gamexport/models"
)

// globalFlags are shared by every command.
var globalFlags struct {
	configPath string
	site       string
	engine     string
	timeout    time.Duration
	logLevel   string
	logFormat  string
}

var rootCmd = &cobra.Command{
	Use:   "gamexport <profile-url-or-username>",
	Short: "gamexport exports a Backloggd game library to a CSV of titles and ratings.",
	Long: `gamexport walks every page of a Backloggd games profile, reads each
entry's title and star rating, and writes <username>_games.csv.

The argument is either a profile URL containing /u/<username>/ or a bare
username, which is looked up on the configured site.`,
	Version:       models.Version,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE:          runExport,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalFlags.configPath, "config", "gamexport.json5", "Config file; <name>.local.<ext> is merged over it. Missing files are ignored.")
	pf.StringVar(&globalFlags.site, "site", "", "Profile site for bare usernames (default backloggd.com).")
	pf.StringVar(&globalFlags.engine, "engine", "", `Fetch engine: "http" or "browser".`)
	pf.DurationVar(&globalFlags.timeout, "timeout", 0, "Per-request timeout, e.g. 30s. 0 keeps the configured value.")
	pf.StringVar(&globalFlags.logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	pf.StringVar(&globalFlags.logFormat, "log-format", "", "Log format: pretty, text or json.")
}

// loadConfig reads the config file and environment, then applies the
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(globalFlags.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("site") {
		cfg.Fetch.Site = globalFlags.site
	}
	if flags.Changed("engine") {
		cfg.Fetch.Engine = globalFlags.engine
	}
	if flags.Changed("timeout") {
		cfg.Fetch.Timeout = globalFlags.timeout
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = globalFlags.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = globalFlags.logFormat
	}
	applyExportFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Init(cfg.Log, os.Stderr)
	return cfg, nil
}

// ExecuteContext runs the CLI and returns the process exit code. Flag
// values start from their defaults on every call.
func ExecuteContext(ctx context.Context) int {
	resetFlags(rootCmd)
	rootCmd.SilenceUsage = false
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// resetFlags restores every flag of cmd and its subcommands to its default
// and clears Changed.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
