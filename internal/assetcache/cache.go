// SPDX-License-Identifier: MPL-2.0

// Package assetcache stores compiled asset data as content-addressed files.
//
// A file is named "<fingerprint>.<ext>" and written at most once: writers
// create it only when it is absent, under an exclusive lock, through a
// temporary file that is renamed into place. Readers never see a partial file
// and take no lock.
package assetcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	// LockFileName is the advisory lock file shared by all writers of a cache directory.
	LockFileName = ".lock"

	lockRetryDelay = 10 * time.Millisecond
)

// Cache is a compiled asset directory.
type Cache struct {
	fs  afero.Fs
	dir string

	// mu serializes writers in this process; the file lock covers other processes.
	mu sync.Mutex
}

// New returns a cache rooted at dir. The directory is created on first write.
func New(fs afero.Fs, dir string) *Cache {
	return &Cache{fs: fs, dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Path returns the file path for a fingerprint and extension.
func (c *Cache) Path(fingerprint, ext string) string {
	return filepath.Join(c.dir, fingerprint+"."+ext)
}

// Get returns the path of an existing cache file.
func (c *Cache) Get(fingerprint, ext string) (string, bool) {
	path := c.Path(fingerprint, ext)
	if exists, err := afero.Exists(c.fs, path); err != nil || !exists {
		return "", false
	}
	return path, true
}

// Put writes data under fingerprint unless a file for it already exists, and
// returns the file path. Identical concurrent writes race harmlessly.
func (c *Cache) Put(ctx context.Context, fingerprint, ext, data string) (string, error) {
	if path, ok := c.Get(fingerprint, ext); ok {
		return path, nil
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("compile asset canceled: %w", err)
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create compile directory: %w", err)
	}

	unlock, err := c.lock(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	path := c.Path(fingerprint, ext)
	if exists, _ := afero.Exists(c.fs, path); exists {
		return path, nil
	}
	if err := c.write(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Cache) write(path, data string) error {
	tmp, err := afero.TempFile(c.fs, c.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(data); err != nil {
		// Best-effort cleanup on error
		_ = tmp.Close()
		_ = c.fs.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = c.fs.Remove(tmpName) // Best-effort cleanup on error
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := c.fs.Rename(tmpName, path); err != nil {
		_ = c.fs.Remove(tmpName) // Best-effort cleanup on error
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}

// lock takes the in-process mutex and, on the OS filesystem, an exclusive
// advisory file lock on the cache directory.
func (c *Cache) lock(ctx context.Context) (func(), error) {
	c.mu.Lock()
	if _, ok := c.fs.(*afero.OsFs); !ok {
		return c.mu.Unlock, nil
	}

	fl := flock.New(filepath.Join(c.dir, LockFileName))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		c.mu.Unlock()
		if err == nil {
			err = os.ErrDeadlineExceeded
		}
		return nil, fmt.Errorf("failed to lock compile directory: %w", err)
	}
	return func() {
		_ = fl.Unlock()
		c.mu.Unlock()
	}, nil
}
