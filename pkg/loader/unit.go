// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/exp/maps"
)

// Host brings a code unit into the running process. Load must be idempotent:
// loading the same path twice has the effect of loading it once.
type Host interface {
	Load(ctx context.Context, name, path string) error
}

// RegisterCodeUnit registers the code unit at path under a name derived from
// its filename. A later registration with the same name replaces the earlier
// one. In eager mode the unit is loaded immediately.
func (l *Loader) RegisterCodeUnit(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	if !l.isFile(path) {
		return newError("register code unit", path, ErrNotFound)
	}

	name := l.unitName(path)
	l.mu.Lock()
	if prev, ok := l.units[name]; ok && prev != path {
		l.logger.Debug("code unit replaced", "unit", name, "previous", prev, "path", path)
		delete(l.loaded, name)
	}
	l.units[name] = path
	l.mu.Unlock()
	l.logger.Debug("registered code unit", "unit", name, "path", path)

	if l.eager {
		if _, err := l.Resolve(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCodeUnitDirectory registers every *.class.go and *.interface.go file
// in dir. Registration follows directory listing order, which is not a
// portable guarantee; use RegisterCodeUnit for units that must load in a
// specific order.
func (l *Loader) RegisterCodeUnitDirectory(ctx context.Context, dir string) error {
	dir = filepath.Clean(dir)
	if !l.isDir(dir) {
		return newError("register code unit directory", dir, ErrNotFound)
	}

	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return newError("register code unit directory", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !hasAnySuffix(entry.Name(), directoryUnitSuffixes) {
			continue
		}
		if err := l.RegisterCodeUnit(ctx, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Resolve is the deferred resolution hook: the host calls it with the name of
// an unresolved symbol. Unknown names return false so resolution can fail
// upward. Known units are loaded through the Host and recorded in the load
// statistics. A unit already loaded from its registered path is reported as
// resolved without loading or recording it again.
func (l *Loader) Resolve(ctx context.Context, name string) (bool, error) {
	l.mu.Lock()
	path, ok := l.units[name]
	done := ok && l.loaded[name] == path
	l.mu.Unlock()
	if !ok {
		return false, nil
	}
	if done {
		return true, nil
	}

	start := time.Now()
	if err := l.host.Load(ctx, name, path); err != nil {
		return false, newError("load code unit", path, err)
	}
	elapsed := time.Since(start)

	l.mu.Lock()
	if l.loaded[name] == path {
		// A concurrent Resolve recorded it first.
		l.mu.Unlock()
		return true, nil
	}
	l.loaded[name] = path
	l.stats.recordLoad(LoadRecord{Unit: name, Elapsed: elapsed, Path: path})
	l.mu.Unlock()
	l.logger.Debug("loaded code unit", "unit", name, "elapsed", elapsed)
	return true, nil
}

// CodeUnits returns a snapshot of the code unit registry (name -> path).
func (l *Loader) CodeUnits() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.units)
}

// unitName strips the first matching unit suffix from the base name.
func (l *Loader) unitName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range l.unitSuffixes {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
