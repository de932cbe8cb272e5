// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry.
type Id int //nolint:revive // matches the catalog's exported names

const (
	PackageNotFoundId Id = iota + 1
	ManifestNotFoundId
	ManifestInvalidId
	CodeUnitNotFoundId
	CodeUnitLoadFailedId
	AssetCompileFailedId
	UnknownAssetKindId
	ConfigLoadFailedId
	PathNotDirectoryId
	AssetFileNotFoundId
)

type (
	// MarkdownMsg is catalog guidance in Markdown.
	MarkdownMsg string

	// Renderer renders Markdown for a terminal.
	Renderer func(in string, stylePath string) (string, error)

	// Issue is a catalog entry: longer guidance shown for a class of failures.
	Issue struct {
		id    Id
		title string
		mdMsg MarkdownMsg
	}
)

// Id returns the entry's identifier.
func (i *Issue) Id() Id { //nolint:revive // see Id
	return i.id
}

// Title returns a one-line summary.
func (i *Issue) Title() string {
	return i.title
}

// MarkdownMsg returns the raw Markdown guidance.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the guidance with a glamour style ("dark", "light",
// "notty", or a style file path).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render Renderer = glamour.Render

	packageNotFoundIssue = &Issue{
		id:    PackageNotFoundId,
		title: "package not found",
		mdMsg: `
# Package not found

A bare package name is looked up as a directory under the packages path.

## Things you can try
- Check the spelling; package names are case-sensitive.
- Point the loader at the right root:
~~~
$ pkgloader --packages-path ./packages import Blog
~~~
- Or import the package by directory:
~~~
$ pkgloader import ./vendor/Blog
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id:    ManifestNotFoundId,
		title: "package has no manifest",
		mdMsg: `
# Package has no manifest

Every package directory needs an ` + "`include.cue`" + ` (or ` + "`include.toml`" + `) file.

## Minimal manifest
~~~cue
units: ["Post.class.go"]
styles: [{path: "css/blog.css"}]
~~~`,
	}

	manifestInvalidIssue = &Issue{
		id:    ManifestInvalidId,
		title: "invalid package manifest",
		mdMsg: `
# Invalid package manifest

The manifest did not match the schema, or one of its paths leaves the package directory.

## Accepted fields
- ` + "`name`" + `: must equal the directory name when set
- ` + "`initializer`" + `: name of a registered initializer
- ` + "`imports`" + `: bare package names or package-relative paths
- ` + "`modes`" + `: ` + "`{debug: true}`" + `
- ` + "`units`" + `, ` + "`unit_dirs`" + `: package-relative paths
- ` + "`styles`" + `, ` + "`scripts`" + `: ` + "`[{path: \"x.css\", absolute: true}]`" + `
- ` + "`style_data`" + `, ` + "`script_data`" + `: ` + "`[{data: \"...\", compile: false}]`",
	}

	codeUnitNotFoundIssue = &Issue{
		id:    CodeUnitNotFoundId,
		title: "code unit file not found",
		mdMsg: `
# Code unit file not found

A manifest or initializer registered a code unit whose file does not exist.

## Things you can try
- Unit paths in ` + "`units`" + ` are relative to the package directory.
- Directory scans only pick up ` + "`*.class.go`" + ` and ` + "`*.interface.go`" + ` files.`,
	}

	codeUnitLoadFailedIssue = &Issue{
		id:    CodeUnitLoadFailedId,
		title: "code unit failed to load",
		mdMsg: `
# Code unit failed to load

The unit host could not evaluate the unit's source.

## Things you can try
- Units share one interpreter; a unit may use declarations of units loaded before it.
- Only the standard library can be imported from a unit.
- Run with ` + "`--verbose`" + ` to see the full error chain.`,
	}

	assetCompileFailedIssue = &Issue{
		id:    AssetCompileFailedId,
		title: "asset data could not be compiled",
		mdMsg: `
# Asset data could not be compiled

Compiled asset data is written to the compile directory
(` + "`<packages path>/.compile`" + ` unless configured).

## Things you can try
- Check that the directory is writable.
- Set another directory with ` + "`compile_dir`" + ` in ` + "`pkgloader.cue`" + `.`,
	}

	unknownAssetKindIssue = &Issue{
		id:    UnknownAssetKindId,
		title: "unknown asset kind",
		mdMsg: `
# Unknown asset kind

Asset kinds are ` + "`css`" + ` and ` + "`js`" + `.`,
	}

	configLoadFailedIssue = &Issue{
		id:    ConfigLoadFailedId,
		title: "configuration could not be loaded",
		mdMsg: `
# Configuration could not be loaded

## Things you can try
- Show the effective configuration:
~~~
$ pkgloader config show
~~~
- Write a default file and edit it:
~~~
$ pkgloader config init
~~~`,
	}

	pathNotDirectoryIssue = &Issue{
		id:    PathNotDirectoryId,
		title: "path is not a directory",
		mdMsg: `
# Path is not a directory

The packages path and the project path must be existing directories.`,
	}

	assetFileNotFoundIssue = &Issue{
		id:    AssetFileNotFoundId,
		title: "asset file not found",
		mdMsg: `
# Asset file not found

A package-relative entry in ` + "`styles`" + ` or ` + "`scripts`" + ` names a file that does not exist.

## Things you can try
- Paths are relative to the package directory, e.g. ` + "`css/blog.css`" + `.
- For a URL or a path served from elsewhere, mark the entry as not package-relative:
~~~cue
scripts: [{path: "https://cdn.example.com/lib.js", absolute: false}]
~~~`,
	}

	issues = map[Id]*Issue{
		packageNotFoundIssue.Id():    packageNotFoundIssue,
		manifestNotFoundIssue.Id():   manifestNotFoundIssue,
		manifestInvalidIssue.Id():    manifestInvalidIssue,
		codeUnitNotFoundIssue.Id():   codeUnitNotFoundIssue,
		codeUnitLoadFailedIssue.Id(): codeUnitLoadFailedIssue,
		assetCompileFailedIssue.Id(): assetCompileFailedIssue,
		unknownAssetKindIssue.Id():   unknownAssetKindIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		pathNotDirectoryIssue.Id():   pathNotDirectoryIssue,
		assetFileNotFoundIssue.Id():  assetFileNotFoundIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := maps.Values(issues)
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
