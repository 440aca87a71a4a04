// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// bindPipelineFlags registers the flags shared by run, plan and watch.
func bindPipelineFlags(cmd *cobra.Command, req *pipelineRequest) {
	cmd.Flags().StringVarP(&req.StatsPath, "stats", "s", defaultStatsPath, "build description (JSON, JSONC or YAML)")
	cmd.Flags().StringVarP(&req.OutputPath, "output", "o", "", "output directory (overrides the description's outputPath)")
	cmd.Flags().StringVar(&req.Hash, "hash", "", "fingerprint algorithm: md5, sha256 or blake3 (overrides hash_function)")
}

// newRunCommand creates the `afterhash run` command.
func newRunCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var req pipelineRequest

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile emitted assets with their final content",
		Long: `Reconcile emitted assets with their final content.

Every script whose naming template contains [chunkhash] is re-fingerprinted.
Stale files are renamed together with their source maps, and the runtime
manifest script, its source map and the JSON manifest are patched to the
new names.`,
		Args: cobra.NoArgs,
		RunE: silenceOnExit(func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return s.run(cmd.Context(), req)
		}),
	}

	bindPipelineFlags(cmd, &req)
	return cmd
}

// run performs one reconciliation and prints its summary.
func (s *session) run(ctx context.Context, req pipelineRequest) error {
	outcome, err := s.reconcileBuild(ctx, req)
	if err != nil {
		return s.fail(err)
	}
	s.printOutcome(outcome, false)
	return nil
}
