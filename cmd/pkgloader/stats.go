// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/pkgloader/pkgloader/pkg/loader"
)

type statsReport struct {
	Packages []loader.ImportRecord `json:"packages"`
	Units    []loader.LoadRecord   `json:"units"`
	Styles   []string              `json:"styles"`
	Scripts  []string              `json:"scripts"`
}

func newStatsCommand(app *App) *cobra.Command {
	var (
		markdown bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "stats [package...]",
		Short: "Import packages, load their code units and report statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, cfg, err := app.newLoader(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			if err := importAll(cmd.Context(), app.stderr, l, packageRefs(args, cfg)); err != nil {
				return app.fail(err)
			}
			if err := resolveAll(cmd.Context(), l); err != nil {
				return app.fail(err)
			}

			report := statsReport{
				Packages: l.ImportStats(),
				Units:    l.LoadStats(),
				Styles:   l.StyleFiles(),
				Scripts:  l.ScriptFiles(),
			}
			switch {
			case asJSON:
				enc := json.NewEncoder(app.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case markdown:
				out, err := glamour.Render(report.markdown(), glamourStyle())
				if err != nil {
					return fmt.Errorf("failed to render report: %w", err)
				}
				fmt.Fprint(app.stdout, out)
				return nil
			default:
				printStats(app.stdout, l)
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the report as Markdown")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.MarkFlagsMutuallyExclusive("markdown", "json")
	return cmd
}

// markdown renders the report as Markdown tables.
func (r statsReport) markdown() string {
	var sb strings.Builder
	sb.WriteString("# Load report\n\n## Packages\n\n")
	if len(r.Packages) == 0 {
		sb.WriteString("_none_\n")
	} else {
		sb.WriteString("| Package | Time | Manifest |\n|---|---|---|\n")
		for _, rec := range r.Packages {
			fmt.Fprintf(&sb, "| %s | %s | `%s` |\n", rec.Package, formatElapsed(rec.Elapsed), rec.Path)
		}
	}

	sb.WriteString("\n## Code units\n\n")
	if len(r.Units) == 0 {
		sb.WriteString("_none_\n")
	} else {
		sb.WriteString("| Unit | Time | File |\n|---|---|---|\n")
		for _, rec := range r.Units {
			fmt.Fprintf(&sb, "| %s | %s | `%s` |\n", rec.Unit, formatElapsed(rec.Elapsed), rec.Path)
		}
	}

	for _, section := range []struct {
		title string
		files []string
	}{{"Styles", r.Styles}, {"Scripts", r.Scripts}} {
		if len(section.files) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", section.title)
		for _, f := range section.files {
			fmt.Fprintf(&sb, "- `%s`\n", f)
		}
	}
	return sb.String()
}
