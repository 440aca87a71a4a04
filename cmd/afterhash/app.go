// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/afterhash/afterhash/internal/config"
	"github.com/afterhash/afterhash/internal/issue"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every command handler receives an App.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Path(opts config.LoadOptions) (string, error)
	}

	// session is the per-invocation state derived from the root flags and
	// the loaded configuration.
	session struct {
		app     *App
		cfg     *config.Config
		logger  *log.Logger
		out     *painter
		errOut  *painter
		verbose bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// loadOptions maps the root flags onto config lookup options.
func (flags *rootFlagValues) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: flags.configPath}
}

// newSession loads configuration and builds the logger and painters. A
// configuration failure is rendered to stderr and returned as an ExitError.
func (app *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := app.Config.Load(ctx, flags.loadOptions())
	if err != nil {
		s := &session{
			app:     app,
			cfg:     config.DefaultConfig(),
			logger:  newLogger(app.stderr, config.DefaultConfig(), flags.verbose),
			out:     newPainter(app.stdout, config.ColorAuto),
			errOut:  newPainter(app.stderr, config.ColorAuto),
			verbose: flags.verbose,
		}
		return nil, s.fail(newServiceError(err, issue.ConfigLoadFailedId))
	}

	verbose := flags.verbose || cfg.UI.Verbose
	return &session{
		app:     app,
		cfg:     cfg,
		logger:  newLogger(app.stderr, cfg, verbose),
		out:     newPainter(app.stdout, cfg.UI.Color),
		errOut:  newPainter(app.stderr, cfg.UI.Color),
		verbose: verbose,
	}, nil
}
