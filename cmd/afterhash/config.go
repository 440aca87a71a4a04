// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afterhash/afterhash/internal/config"
	"github.com/afterhash/afterhash/internal/issue"
)

// newConfigCommand creates the `afterhash config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage afterhash configuration",
		Long: `Manage afterhash configuration.

Configuration is read from the first of:
  - the file given with --config
  - ./afterhash.cue
  - the user config file:
      Linux: ~/.config/afterhash/config.cue
      macOS: ~/Library/Application Support/afterhash/config.cue
      Windows: %APPDATA%\afterhash\config.cue

AFTERHASH_* environment variables override file values
(for example AFTERHASH_HASH_FUNCTION=sha256).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: silenceOnExit(func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return s.showConfig(flags)
		}),
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default values",
		Long: `Write a configuration file with the default values.

The file goes to --config when given, otherwise to the user config file.
An existing file is only replaced with --force.`,
		Args: cobra.NoArgs,
		RunE: silenceOnExit(func(cmd *cobra.Command, args []string) error {
			return app.initConfig(flags, force)
		}),
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show which configuration file is used",
		Args:  cobra.NoArgs,
		RunE: silenceOnExit(func(cmd *cobra.Command, args []string) error {
			return app.showConfigPath(flags)
		}),
	})

	return cfgCmd
}

func (s *session) showConfig(flags *rootFlagValues) error {
	path, err := s.app.Config.Path(flags.loadOptions())
	if err != nil {
		return s.fail(newServiceError(err, issue.ConfigLoadFailedId))
	}
	if path == "" {
		path = "(defaults)"
	}

	fmt.Fprintln(s.app.stdout, s.out.paint(SubtitleStyle, "// source: "+path))
	fmt.Fprint(s.app.stdout, config.GenerateCUE(s.cfg))
	return nil
}

func (app *App) initConfig(flags *rootFlagValues, force bool) error {
	out := newPainter(app.stdout, config.ColorAuto)
	errOut := newPainter(app.stderr, config.ColorAuto)

	path := flags.configPath
	if path == "" {
		var err error
		if path, err = config.UserConfigPath(); err != nil {
			fmt.Fprintln(app.stderr, errOut.paint(ErrorStyle, "Error: ")+err.Error())
			return &ExitError{Code: exitFailure, Err: err}
		}
	}

	if err := config.Init(path, config.DefaultConfig(), force); err != nil {
		msg := err.Error()
		code := exitFailure
		if errors.Is(err, config.ErrConfigExists) {
			msg = issue.NewErrorContext().
				WithOperation("create configuration").
				WithResource(path).
				WithSuggestions(
					"Use --force to overwrite it",
					"Run 'afterhash config show' to see what it holds",
				).
				Wrap(config.ErrConfigExists).
				Build().
				Format(flags.verbose)
			code = exitUsage
		}
		fmt.Fprintln(app.stderr, errOut.paint(ErrorStyle, "Error: ")+msg)
		return &ExitError{Code: code, Err: err}
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", out.paint(SuccessStyle, "✓"), path)
	return nil
}

func (app *App) showConfigPath(flags *rootFlagValues) error {
	out := newPainter(app.stdout, config.ColorAuto)

	path, err := app.Config.Path(flags.loadOptions())
	if err != nil {
		errOut := newPainter(app.stderr, config.ColorAuto)
		fmt.Fprintln(app.stderr, errOut.paint(ErrorStyle, "Error: ")+formatErrorForDisplay(err, flags.verbose))
		return &ExitError{Code: exitUsage, Err: err}
	}

	if path == "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", out.paint(CmdStyle, "Config file"), out.paint(SubtitleStyle, "(none, using defaults)"))
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", out.paint(CmdStyle, "Config file"), path)
	}

	if user, err := config.UserConfigPath(); err == nil {
		fmt.Fprintf(app.stdout, "%s: %s\n", out.paint(CmdStyle, "User config"), user)
	}
	return nil
}
