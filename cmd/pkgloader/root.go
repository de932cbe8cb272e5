// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pkgloader.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/pkgloader/pkgloader/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgloader",
		Short: "Import packages of code units and web assets",
		Long: TitleStyle.Render("pkgloader") + SubtitleStyle.Render(" - import packages of code units and web assets") + `

A package is a directory with an include.cue (or include.toml) manifest
listing code units, stylesheets, scripts and inline asset data. Importing
a package registers all of them; inline data can be compiled to
content-addressed files.

` + SubtitleStyle.Render("Examples:") + `
  pkgloader import Blog           Import the Blog package and print statistics
  pkgloader assets css Blog       Print the aggregated CSS of Blog
  pkgloader stats --markdown      Import configured packages, render a report
  pkgloader config show           Show the effective configuration`,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	flags.StringVar(&app.flags.configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/pkgloader/pkgloader.cue)")
	flags.StringVarP(&app.flags.packagesPath, "packages-path", "p", "", "directory holding one subdirectory per package")
	flags.StringVar(&app.flags.projectPath, "project-path", "", "project root stripped from absolute asset paths")
	flags.StringVar(&app.flags.compileDir, "compile-dir", "", "directory for compiled asset data")
	flags.BoolVar(&app.flags.eager, "eager", false, "load code units when they are registered")
	flags.StringSliceVar(&app.flags.modes, "mode", nil, "set a mode flag, as name or name=false (repeatable)")

	rootCmd.AddCommand(newImportCommand(app))
	rootCmd.AddCommand(newAssetsCommand(app))
	rootCmd.AddCommand(newStatsCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// include their suggestions, and the full chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
