// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/afterhash/afterhash/internal/issue"
	"github.com/afterhash/afterhash/internal/manifestjson"
	"github.com/afterhash/afterhash/internal/reconcile"
	"github.com/afterhash/afterhash/pkg/build"
	"github.com/afterhash/afterhash/pkg/fingerprint"
)

// ServiceError is an error that carries the issue catalog entry the CLI
// renders below the error message. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError picks the catalog entry for a pipeline failure.
func classifyError(err error) issue.Id {
	switch {
	case errors.Is(err, reconcile.ErrRenameCollision):
		return issue.RenameCollisionId
	case errors.Is(err, manifestjson.ErrMalformed):
		return issue.MalformedManifestId
	case errors.Is(err, fingerprint.ErrUnknownAlgorithm):
		return issue.UnknownAlgorithmId
	case errors.Is(err, build.ErrUnsupportedFormat), errors.Is(err, build.ErrInvalidUnitID):
		return issue.DescriptionParseErrorId
	case errors.Is(err, doublestar.ErrBadPattern):
		return issue.WatchFailedId
	}
	return 0
}

// exitCodeFor maps a catalog entry onto the process exit code.
func exitCodeFor(id issue.Id) int {
	switch id {
	case issue.RenameCollisionId:
		return exitCollision
	case issue.ConfigLoadFailedId, issue.DescriptionNotFoundId, issue.DescriptionParseErrorId,
		issue.OutputDirNotFoundId, issue.UnknownAlgorithmId:
		return exitUsage
	default:
		return exitFailure
	}
}

// fail renders err to stderr and converts it into an ExitError. Errors that
// are not ServiceErrors are classified by their sentinel.
func (s *session) fail(err error) error {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = newServiceError(err, classifyError(err))
	}

	fmt.Fprintln(s.app.stderr, s.errOut.paint(ErrorStyle, "Error: ")+formatErrorForDisplay(svcErr.Err, s.verbose))
	s.renderIssue(s.app.stderr, svcErr.IssueID)

	return &ExitError{Code: exitCodeFor(svcErr.IssueID), Err: err}
}

// renderIssue prints the catalog help for id, if any.
func (s *session) renderIssue(w io.Writer, id issue.Id) {
	if id == 0 {
		return
	}
	catalogEntry := issue.Get(id)
	if catalogEntry == nil {
		return
	}

	style := "dark"
	if !s.errOut.color {
		style = "notty"
	}
	rendered, err := catalogEntry.Render(style)
	if err != nil {
		s.logger.Warn("failed to render issue catalog entry", "issueID", id, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their Format method, which includes the error chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// isNotExist reports whether err is a missing-file error.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
