// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for afterhash.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "afterhash",
		Short: "Rename emitted build assets after their final content",
		Long: TitleStyle.Render("afterhash") + SubtitleStyle.Render(" - post-build fingerprint reconciliation") + `

Bundlers name output files with a fingerprint computed before the final
content is known. afterhash re-fingerprints every emitted file, renames the
stale ones, and patches the runtime manifest script, its source map, and the
JSON manifest so every reference points at the final names.

` + SubtitleStyle.Render("Examples:") + `
  afterhash run                        Reconcile using ./afterhash-stats.json
  afterhash plan --stats build.yaml    Show what would change
  afterhash watch                      Re-run whenever the stats file changes
  afterhash config show                Show the effective configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is ./afterhash.cue, then the user config directory)")

	rootCmd.AddCommand(
		newRunCommand(app, flags),
		newPlanCommand(app, flags),
		newWatchCommand(app, flags),
		newConfigCommand(app, flags),
		newVersionCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the root command.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(exitFailure)
	}

	// fang overrides rootCmd.Version, so the version goes through fang.WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitFailure)
	}
}
