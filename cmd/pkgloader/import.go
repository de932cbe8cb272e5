// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkgloader/pkgloader/internal/config"
	"github.com/pkgloader/pkgloader/pkg/loader"
)

func newImportCommand(app *App) *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "import [package...]",
		Short: "Import packages and print load statistics",
		Long: `Import packages by name (under the packages path) or by directory.
Without arguments the packages listed under imports in the configuration
are imported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, cfg, err := app.newLoader(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			if err := importAll(cmd.Context(), app.stdout, l, packageRefs(args, cfg)); err != nil {
				return app.fail(err)
			}
			if resolve {
				if err := resolveAll(cmd.Context(), l); err != nil {
					return app.fail(err)
				}
			}
			printStats(app.stdout, l)
			return nil
		},
	}
	cmd.Flags().BoolVar(&resolve, "resolve", false, "load every registered code unit after importing")
	return cmd
}

// packageRefs returns args, or the configured imports when args is empty.
func packageRefs(args []string, cfg *config.Config) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.Imports
}

// importAll imports refs in order, reporting each on w.
func importAll(ctx context.Context, w io.Writer, l *loader.Loader, refs []string) error {
	if len(refs) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("no packages to import"))
		return nil
	}
	for _, ref := range refs {
		imported, err := l.Import(ctx, ref)
		if err != nil {
			return err
		}
		if imported {
			fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), KeyStyle.Render(ref))
		} else {
			fmt.Fprintf(w, "%s %s %s\n", SubtitleStyle.Render("·"), KeyStyle.Render(ref), SubtitleStyle.Render("(already imported)"))
		}
	}
	return nil
}

// resolveAll loads every registered code unit in name order.
func resolveAll(ctx context.Context, l *loader.Loader) error {
	for _, name := range sortedKeys(l.CodeUnits()) {
		if _, err := l.Resolve(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// printStats writes the import and load tables.
func printStats(w io.Writer, l *loader.Loader) {
	imports := l.ImportStats()
	loads := l.LoadStats()

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Imported packages"))
	if len(imports) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
	}
	for _, rec := range imports {
		fmt.Fprintf(w, "  %-24s %10s  %s\n", rec.Package, formatElapsed(rec.Elapsed), SubtitleStyle.Render(rec.Path))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Loaded code units"))
	if len(loads) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
	}
	for _, rec := range loads {
		fmt.Fprintf(w, "  %-24s %10s  %s\n", rec.Unit, formatElapsed(rec.Elapsed), SubtitleStyle.Render(rec.Path))
	}
}

func formatElapsed(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
