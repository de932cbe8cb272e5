// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkgloader/pkgloader/internal/config"
	"github.com/pkgloader/pkgloader/internal/issue"
)

// newConfigCommand creates the `pkgloader config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pkgloader configuration",
		Long: `Manage pkgloader configuration.

Configuration is read from pkgloader.cue in:
  - Linux: ~/.config/pkgloader/
  - macOS: ~/Library/Application Support/pkgloader/
  - Windows: %APPDATA%\pkgloader\
or, when absent there, the current directory. PKGLOADER_* environment
variables override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("create configuration").
					WithSuggestion("Check that the config directory is writable").
					WithIssue(issue.ConfigLoadFailedId).
					Wrap(err).
					BuildError()
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Configuration file:"), path)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(err)
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	value := func(s string) string {
		if s == "" {
			return SubtitleStyle.Render("(not set)")
		}
		return SuccessStyle.Render(s)
	}
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("packages_path"), value(cfg.PackagesPath))
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("project_path"), value(cfg.ProjectPath))
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("compile_dir"), value(cfg.CompileDir))
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("eager_units"), value(strconv.FormatBool(cfg.EagerUnits)))
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("log_level"), value(cfg.LogLevel.String()))

	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("imports"), value(strings.Join(cfg.Imports, ", ")))
	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("modes"))
	if len(cfg.Modes) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
	}
	for _, name := range sortedKeys(cfg.Modes) {
		fmt.Fprintf(w, "  %s: %s\n", name, value(strconv.FormatBool(cfg.Modes[name])))
	}
	return nil
}
