// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/afterhash/afterhash/internal/issue"
	"github.com/afterhash/afterhash/internal/watch"
)

// newWatchCommand creates the `afterhash watch` command.
func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var req pipelineRequest

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconcile again whenever the build description is rewritten",
		Long: `Reconcile once, then again whenever the build description is rewritten.

Bursts of file events are coalesced using watch.debounce from the
configuration. A failing run is reported and the watcher keeps going.
Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: silenceOnExit(func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return s.watch(cmd.Context(), req)
		}),
	}

	bindPipelineFlags(cmd, &req)
	return cmd
}

func (s *session) watch(ctx context.Context, req pipelineRequest) error {
	if req.StatsPath == "" {
		req.StatsPath = defaultStatsPath
	}
	statsPath, err := filepath.Abs(req.StatsPath)
	if err != nil {
		return s.fail(newServiceError(err, issue.WatchFailedId))
	}
	req.StatsPath = statsPath

	w, err := watch.New(watch.Config{
		BaseDir:  filepath.Dir(statsPath),
		Targets:  []string{escapeGlob(filepath.Base(statsPath))},
		Ignore:   s.cfg.Watch.Ignore,
		Debounce: s.cfg.Watch.Debounce,
		Logger:   s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Debug("build description changed", "files", changed)
			s.runReported(ctx, req)
			return nil
		},
	})
	if err != nil {
		return s.fail(newServiceError(issue.WrapWithContext(err, "start watcher", filepath.Dir(statsPath)), issue.WatchFailedId))
	}

	s.runReported(ctx, req)
	fmt.Fprintf(s.app.stdout, "%s %s %s\n",
		s.out.paint(SubtitleStyle, "Watching"),
		s.out.paint(CmdStyle, statsPath),
		s.out.paint(SubtitleStyle, "(Ctrl+C to stop)"))

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return s.fail(newServiceError(issue.WrapWithContext(err, "watch", filepath.Dir(statsPath)), issue.WatchFailedId))
	}
	return nil
}

// runReported runs one reconciliation and renders its outcome or failure.
// Failures do not stop the watcher.
func (s *session) runReported(ctx context.Context, req pipelineRequest) {
	outcome, err := s.reconcileBuild(ctx, req)
	if err != nil {
		_ = s.fail(err)
		return
	}
	s.printOutcome(outcome, false)
}

// escapeGlob quotes doublestar metacharacters so name matches literally.
func escapeGlob(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch r {
		case '\\', '*', '?', '[', ']', '{', '}':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
