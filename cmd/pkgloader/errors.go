// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pkgloader/pkgloader/internal/issue"
	"github.com/pkgloader/pkgloader/pkg/loader"
	"github.com/pkgloader/pkgloader/pkg/manifest"
)

// classifyLoaderError maps a loader failure to an ActionableError linked to a
// catalog entry. Errors that are already actionable pass through.
func classifyLoaderError(err error) error {
	if err == nil {
		return nil
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ec := issue.NewErrorContext().WithOperation("run loader").Wrap(err)
	outer, le := loaderErrors(err)
	if outer != nil {
		ec = issue.NewErrorContext().WithOperation(outer.Op).WithResource(outer.Path).Wrap(outer.Err)
	}

	switch {
	case errors.Is(err, manifest.ErrNotFound):
		ec.WithIssue(issue.ManifestNotFoundId).
			WithSuggestion("Add an include.cue file to the package directory")
	case errors.Is(err, loader.ErrInvalidManifest):
		ec.WithIssue(issue.ManifestInvalidId).
			WithSuggestion("Fix the manifest fields reported above")
	case errors.Is(err, loader.ErrNotDirectory):
		ec.WithIssue(issue.PathNotDirectoryId).
			WithSuggestion("Pass an existing directory to --packages-path or --project-path")
	case errors.Is(err, loader.ErrUnknownKind):
		ec.WithIssue(issue.UnknownAssetKindId).
			WithSuggestion("Use css or js")
	case le != nil && le.Op == "load code unit":
		ec.WithIssue(issue.CodeUnitLoadFailedId).
			WithSuggestion("Run with --verbose to see the interpreter error")
	case le != nil && le.Op == "register asset data" && !errors.Is(err, loader.ErrEmptyData):
		ec.WithIssue(issue.AssetCompileFailedId).
			WithSuggestion("Check that the compile directory is writable")
	case errors.Is(err, loader.ErrNotFound) && le != nil && (le.Op == "register code unit" || le.Op == "register code unit directory"):
		ec.WithIssue(issue.CodeUnitNotFoundId).
			WithSuggestion("Check the units and unit_dirs entries of the manifest")
	case errors.Is(err, loader.ErrNotFound) && le != nil && le.Op == "register asset file":
		ec.WithIssue(issue.AssetFileNotFoundId).
			WithSuggestion("Check the styles and scripts paths of the manifest; they are relative to the package directory")
	case errors.Is(err, loader.ErrNotFound):
		ec.WithIssue(issue.PackageNotFoundId).
			WithSuggestion("Check the package name and --packages-path")
	}
	return ec.BuildError()
}

// loaderErrors returns the outermost and innermost *loader.Error in the chain
// of err. Import failures wrap the error of the step that failed.
func loaderErrors(err error) (outer, inner *loader.Error) {
	var cur *loader.Error
	for errors.As(err, &cur) {
		if outer == nil {
			outer = cur
		}
		inner = cur
		err = cur.Err
	}
	return outer, inner
}

// renderIssueHelp writes the catalog guidance linked to err, if any.
func renderIssueHelp(w io.Writer, err error) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return
	}
	entry := ae.Issue()
	if entry == nil {
		return
	}
	rendered, renderErr := entry.Render(glamourStyle())
	if renderErr != nil {
		fmt.Fprintln(w, string(entry.MarkdownMsg()))
		return
	}
	fmt.Fprint(w, rendered)
}

// fail classifies err and, in verbose mode, prints its catalog guidance
// before returning it to cobra.
func (a *App) fail(err error) error {
	err = classifyLoaderError(err)
	if a.flags.verbose {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, true))
		renderIssueHelp(a.stderr, err)
	}
	return err
}

// glamourStyle picks a Markdown style for the terminal.
func glamourStyle() string {
	if os.Getenv("NO_COLOR") != "" {
		return "notty"
	}
	return "dark"
}
