// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afterhash/afterhash/internal/outfs"
)

// newPlanCommand creates the `afterhash plan` command.
func newPlanCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var req pipelineRequest

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what run would change without touching the output directory",
		Long: `Show what run would change without touching the output directory.

The full reconciliation runs against an in-memory overlay of the output
directory. The renames, the file operations and a diff of the JSON manifest
are printed; nothing is written.`,
		Args: cobra.NoArgs,
		RunE: silenceOnExit(func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return s.plan(cmd.Context(), req)
		}),
	}

	bindPipelineFlags(cmd, &req)
	return cmd
}

func (s *session) plan(ctx context.Context, req pipelineRequest) error {
	req.DryRun = true
	outcome, err := s.reconcileBuild(ctx, req)
	if err != nil {
		return s.fail(err)
	}

	s.printOutcome(outcome, true)
	w := s.app.stdout

	if len(outcome.Ops) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.out.paint(SubtitleStyle, "File operations:"))
		for _, op := range outcome.Ops {
			switch op.Kind {
			case outfs.OpWrite:
				fmt.Fprintf(w, "  %s %s %s\n", s.out.paint(SuccessStyle, "write "), op.Name, s.out.paint(VerboseStyle, fmt.Sprintf("(%d bytes)", op.Size)))
			case outfs.OpRemove:
				fmt.Fprintf(w, "  %s %s\n", s.out.paint(WarningStyle, "remove"), op.Name)
			}
		}
	}

	res := outcome.Result
	if res.ManifestJSONWritten {
		fmt.Fprintln(w)
		fmt.Fprint(w, renderManifestDiff(s.out, s.cfg.ManifestJSONName, res.ManifestJSONBefore, res.ManifestJSONAfter))
	}
	return nil
}
