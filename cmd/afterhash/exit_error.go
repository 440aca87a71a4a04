// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// exitFailure is the generic failure code.
	exitFailure = 1
	// exitUsage reports bad input: configuration, build description or flags.
	exitUsage = 2
	// exitCollision reports a rename that would overwrite another asset.
	exitCollision = 3
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// silenceOnExit wraps a RunE handler so that an ExitError, whose message has
// already been rendered, is not printed again together with the usage text.
func silenceOnExit(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
		}
		return err
	}
}
