// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// Package describes a package directory to write under a packages root.
// Files maps package-relative paths to contents; Manifest is written as
// include.cue when non-empty.
type Package struct {
	Name     string
	Manifest string
	Files    map[string]string
}

// NewPackage starts a fixture for the package name with the given manifest.
func NewPackage(name, manifest string) *Package {
	return &Package{Name: name, Manifest: manifest, Files: map[string]string{}}
}

// With adds a package-relative file.
func (p *Package) With(rel, content string) *Package {
	p.Files[rel] = content
	return p
}

// Write creates the package under root on fs and returns its directory.
func (p *Package) Write(t testing.TB, fs afero.Fs, root string) string {
	t.Helper()
	dir := filepath.Join(root, p.Name)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create package %s: %v", p.Name, err)
	}
	if p.Manifest != "" {
		MustWriteFile(t, fs, filepath.Join(dir, "include.cue"), p.Manifest)
	}
	for rel, content := range p.Files {
		MustWriteFile(t, fs, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	return dir
}
