// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/afterhash/afterhash/internal/config"
)

// newLogger creates the stderr logger for one invocation. verbose forces
// the debug level; color follows the configured UI mode.
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel.String())
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix: "afterhash",
		Level:  level,
	})
	if !colorEnabled(cfg.UI.Color, w) {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}
