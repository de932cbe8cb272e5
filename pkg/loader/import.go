// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkgloader/pkgloader/pkg/manifest"
)

// InitializerFunc runs after a package's manifest has been applied. It
// receives the loader so it can register further units and assets, and the
// parameters passed to Import.
type InitializerFunc func(ctx context.Context, l *Loader, params []any) error

// RegisterInitializer binds fn to a package name. A manifest may point at a
// different name with its initializer field. Registering a name again
// replaces the previous function.
func (l *Loader) RegisterInitializer(name string, fn InitializerFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initializers[name] = fn
}

// Import loads a package once. ref is a package directory, a file inside a
// package directory, or a bare package name resolved under the packages root.
// It returns false without error when the package is already imported or is
// being imported by another call. On failure no import is recorded, so the
// package may be imported again.
//
// params are handed to the package initializer; a single []any argument is
// unpacked.
func (l *Loader) Import(ctx context.Context, ref string, params ...any) (bool, error) {
	const op = "import package"
	if err := ctx.Err(); err != nil {
		return false, newError(op, ref, err)
	}

	dir, name := l.resolvePackage(ref)

	l.mu.Lock()
	if l.stats.imported(name) {
		l.mu.Unlock()
		return false, nil
	}
	if _, busy := l.importing[name]; busy {
		l.mu.Unlock()
		return false, nil
	}
	l.importing[name] = struct{}{}
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.importing, name)
		l.mu.Unlock()
	}()

	if err := l.checkDir(dir); err != nil {
		return false, newError(op, dir, err)
	}

	start := time.Now()
	m, err := manifest.Load(l.fs, dir)
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return false, newError(op, dir, fmt.Errorf("%w: %w: no %s or %s", ErrNotFound, err, manifest.CUEFileName, manifest.TOMLFileName))
		}
		return false, newError(op, dir, fmt.Errorf("%w: %w", ErrInvalidManifest, err))
	}

	if err := l.apply(ctx, m); err != nil {
		return false, newError(op, m.FilePath, err)
	}
	if err := l.initialize(ctx, name, m, normalizeParams(params)); err != nil {
		return false, newError(op, m.FilePath, err)
	}
	elapsed := time.Since(start)

	l.mu.Lock()
	l.stats.recordImport(ImportRecord{Package: name, Elapsed: elapsed, Path: m.FilePath})
	l.mu.Unlock()
	l.logger.Info("imported package", "package", name, "elapsed", elapsed, "manifest", m.FilePath)
	return true, nil
}

// resolvePackage maps an import reference to its package directory and name.
func (l *Loader) resolvePackage(ref string) (dir, name string) {
	clean := filepath.Clean(ref)
	switch {
	case l.isDir(clean):
		dir = clean
	case l.isFile(clean):
		dir = filepath.Dir(clean)
	default:
		dir = filepath.Join(l.PackagesPath(), clean)
	}
	return dir, filepath.Base(dir)
}

// apply registers everything a manifest declares, in declaration-group order:
// modes, nested imports, code units, unit directories, asset files, then
// inline asset data.
func (l *Loader) apply(ctx context.Context, m *manifest.Manifest) error {
	for mode, value := range m.Modes {
		if err := l.SetMode(mode, value); err != nil {
			return err
		}
	}

	for _, imp := range m.Imports {
		ref := imp
		if strings.ContainsAny(imp, `/\`) {
			ref = m.Resolve(imp)
		}
		if _, err := l.Import(ctx, ref); err != nil {
			return fmt.Errorf("nested import %q: %w", imp, err)
		}
	}

	for _, unit := range m.Units {
		if err := l.RegisterCodeUnit(ctx, m.Resolve(unit)); err != nil {
			return err
		}
	}
	for _, dir := range m.UnitDirs {
		if err := l.RegisterCodeUnitDirectory(ctx, m.Resolve(dir)); err != nil {
			return err
		}
	}

	files := []struct {
		kind  Kind
		files []manifest.File
	}{{KindStyle, m.Styles}, {KindScript, m.Scripts}}
	for _, group := range files {
		for _, f := range group.files {
			path := f.Path
			if f.IsAbsolute() {
				path = m.Resolve(f.Path)
			}
			if err := l.RegisterAssetFile(group.kind, path, f.IsAbsolute()); err != nil {
				return err
			}
		}
	}

	data := []struct {
		kind Kind
		data []manifest.Data
	}{{KindStyle, m.StyleData}, {KindScript, m.ScriptData}}
	for _, group := range data {
		for _, d := range group.data {
			if err := l.RegisterAssetData(ctx, group.kind, d.Data, d.Compile); err != nil {
				return err
			}
		}
	}
	return nil
}

// initialize calls the initializer registered for the package, if any.
func (l *Loader) initialize(ctx context.Context, name string, m *manifest.Manifest, params []any) error {
	key := name
	if m.Initializer != "" {
		key = m.Initializer
	}

	l.mu.Lock()
	fn, ok := l.initializers[key]
	l.mu.Unlock()
	if !ok {
		if m.Initializer != "" {
			l.logger.Warn("manifest names an unregistered initializer", "package", name, "initializer", key)
		}
		return nil
	}

	if err := fn(ctx, l, params); err != nil {
		return fmt.Errorf("initializer %q: %w", key, err)
	}
	l.logger.Debug("ran package initializer", "package", name, "initializer", key)
	return nil
}

// normalizeParams unpacks a single []any argument.
func normalizeParams(params []any) []any {
	if len(params) == 1 {
		if list, ok := params[0].([]any); ok {
			return list
		}
	}
	if params == nil {
		return []any{}
	}
	return params
}
