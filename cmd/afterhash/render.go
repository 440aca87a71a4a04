// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/afterhash/afterhash/internal/reconcile"
)

// printOutcome writes the rename table and a one-line summary to stdout.
func (s *session) printOutcome(outcome *pipelineOutcome, dryRun bool) {
	w := s.app.stdout
	res := outcome.Result

	header := "Reconciled " + outcome.OutputPath
	if dryRun {
		header = "Plan for " + outcome.OutputPath + " (dry run)"
	}
	fmt.Fprintln(w, s.out.paint(TitleStyle, header))

	plans := append([]reconcile.RenamePlan(nil), res.Plans...)
	if res.Manifest != nil {
		plans = append(plans, *res.Manifest)
	}
	if len(plans) == 0 {
		fmt.Fprintln(w, s.out.paint(SubtitleStyle, "All fingerprints are current; nothing to rename."))
	} else {
		fmt.Fprintln(w, renderPlanTable(plans))
	}

	verb := "renamed"
	if dryRun {
		verb = "to rename"
	}
	summary := fmt.Sprintf("%d file(s) %s", len(plans), verb)
	if res.SkippedUnits > 0 {
		summary += fmt.Sprintf(", %d unit(s) without a content fingerprint left as emitted", res.SkippedUnits)
	}
	if res.ManifestJSONWritten {
		summary += ", " + s.cfg.ManifestJSONName + " updated"
	}
	fmt.Fprintf(w, "%s %s\n", s.out.paint(SuccessStyle, "✓"), summary)
}

// renderPlanTable renders one row per rename.
func renderPlanTable(plans []reconcile.RenamePlan) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("UNIT", "FROM", "TO", "MAP")

	for _, p := range plans {
		unit := p.UnitName
		if unit == "" {
			unit = "#" + p.UnitID.String()
		}
		mapCell := "-"
		if p.NewMap != "" {
			mapCell = p.NewMap
		}
		t.Row(unit, p.OldFilename, p.NewFilename, mapCell)
	}
	return t.Render()
}

// renderManifestDiff renders a line diff of the JSON manifest before and
// after reconciliation. Unchanged lines are kept for context.
func renderManifestDiff(p *painter, name string, before, after []byte) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	sb.WriteString(p.paint(diffDelStyle, "--- "+name) + "\n")
	sb.WriteString(p.paint(diffAddStyle, "+++ "+name) + "\n")
	for _, d := range diffs {
		prefix, style := "  ", VerboseStyle
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, style = "+ ", diffAddStyle
		case diffmatchpatch.DiffDelete:
			prefix, style = "- ", diffDelStyle
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(p.paint(style, prefix+strings.TrimSuffix(line, "\n")))
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
