// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

// RegisterAssetFile registers an asset file of the given kind, keyed by its
// base name. Relative references are stored verbatim. Absolute ones must exist;
// they are normalized to forward slashes and, when a project path is set, the
// project prefix is replaced by "/" so consumers get a project-relative path.
func (l *Loader) RegisterAssetFile(kind Kind, file string, absolute bool) error {
	if ok, errs := kind.IsValid(); !ok {
		return newError("register asset file", file, errs[0])
	}

	if absolute {
		file = filepath.Clean(file)
		if !l.isFile(file) {
			return newError("register asset file", file, ErrNotFound)
		}
		file = strings.ReplaceAll(file, `\`, "/")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if absolute && l.projectPath != "" && strings.HasPrefix(file, l.projectPath) {
		file = "/" + strings.TrimPrefix(file, l.projectPath)
	}
	l.files[kind].put(nameFingerprint(file), file)
	l.logger.Debug("registered asset file", "kind", kind, "file", file)
	return nil
}

// AssetFiles returns the registered files of kind in registry order. It
// returns an empty slice for an unknown kind or when nothing was registered.
func (l *Loader) AssetFiles(kind Kind) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	reg, ok := l.files[kind]
	if !ok {
		return []string{}
	}
	return reg.list()
}

// RegisterStyleFile registers a CSS file.
func (l *Loader) RegisterStyleFile(file string, absolute bool) error {
	return l.RegisterAssetFile(KindStyle, file, absolute)
}

// RegisterScriptFile registers a JavaScript file.
func (l *Loader) RegisterScriptFile(file string, absolute bool) error {
	return l.RegisterAssetFile(KindScript, file, absolute)
}

// StyleFiles returns the registered CSS files.
func (l *Loader) StyleFiles() []string { return l.AssetFiles(KindStyle) }

// ScriptFiles returns the registered JavaScript files.
func (l *Loader) ScriptFiles() []string { return l.AssetFiles(KindScript) }

// RegisterAssetData registers inline asset data. The data is trimmed and
// double spaces are collapsed; data whose fingerprint was already registered
// for this kind is ignored. The pre-processors of the kind run in order, then
// the result is either appended to the in-memory buffer or, with compile set,
// written to a content-addressed cache file that is registered as an absolute
// asset file.
func (l *Loader) RegisterAssetData(ctx context.Context, kind Kind, data string, compile bool) error {
	const op = "register asset data"
	if ok, errs := kind.IsValid(); !ok {
		return newError(op, "", errs[0])
	}

	data = normalizeData(data)
	if data == "" {
		return newError(op, string(kind), ErrEmptyData)
	}
	hash := contentFingerprint(data)

	l.mu.Lock()
	if _, seen := l.seen[kind][hash]; seen {
		l.mu.Unlock()
		l.logger.Debug("asset data already registered", "kind", kind, "hash", hash)
		return nil
	}
	chain := slices.Clone(l.processors[kind])
	l.mu.Unlock()

	processed, err := runBefore(chain, data)
	if err != nil {
		return newError(op, string(kind), err)
	}

	if compile {
		l.mu.Lock()
		cache := l.compileCache()
		l.mu.Unlock()

		path, err := cache.Put(ctx, hash, string(kind), processed)
		if err != nil {
			return newError(op, string(kind), err)
		}
		if err := l.RegisterAssetFile(kind, path, true); err != nil {
			return err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, seen := l.seen[kind][hash]; seen {
		return nil
	}
	l.seen[kind][hash] = struct{}{}
	if !compile {
		l.buffers[kind] += "\n\n" + processed
	}
	l.logger.Debug("registered asset data", "kind", kind, "hash", hash, "compiled", compile)
	return nil
}

// AssetData returns the aggregated in-memory data of kind, trimmed and passed
// through every post-processor of the kind in registration order.
func (l *Loader) AssetData(kind Kind) (string, error) {
	if ok, errs := kind.IsValid(); !ok {
		return "", newError("get asset data", "", errs[0])
	}

	l.mu.Lock()
	data := strings.TrimSpace(l.buffers[kind])
	chain := slices.Clone(l.processors[kind])
	l.mu.Unlock()

	out, err := runAfter(chain, data)
	if err != nil {
		return "", newError("get asset data", string(kind), err)
	}
	return out, nil
}

// RegisterStyleData registers inline CSS.
func (l *Loader) RegisterStyleData(ctx context.Context, data string, compile bool) error {
	return l.RegisterAssetData(ctx, KindStyle, data, compile)
}

// RegisterScriptData registers inline JavaScript.
func (l *Loader) RegisterScriptData(ctx context.Context, data string, compile bool) error {
	return l.RegisterAssetData(ctx, KindScript, data, compile)
}

// StyleData returns the aggregated CSS.
func (l *Loader) StyleData() (string, error) { return l.AssetData(KindStyle) }

// ScriptData returns the aggregated JavaScript.
func (l *Loader) ScriptData() (string, error) { return l.AssetData(KindScript) }
