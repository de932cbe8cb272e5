// SPDX-License-Identifier: MPL-2.0

package assetcache

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

func TestPutMemFs(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	c := New(fs, "/cache")

	if _, ok := c.Get("abc", "css"); ok {
		t.Fatal("Get() on an empty cache should miss")
	}

	path, err := c.Put(context.Background(), "abc", "css", "a{}")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if want := filepath.Join("/cache", "abc.css"); path != want {
		t.Errorf("Put() path = %q, want %q", path, want)
	}

	// Write-once: a second Put with other data keeps the first content.
	if _, err := c.Put(context.Background(), "abc", "css", "changed"); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil || string(data) != "a{}" {
		t.Errorf("content = %q, %v; want a{}", data, err)
	}
	if got, ok := c.Get("abc", "css"); !ok || got != path {
		t.Errorf("Get() = %q, %v", got, ok)
	}
}

func TestPutOsFs(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "compile")
	c := New(afero.NewOsFs(), dir)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Put(context.Background(), "deadbeef", "js", "run()"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Put() error = %v", err)
	}

	entries, err := afero.ReadDir(afero.NewOsFs(), dir)
	if err != nil {
		t.Fatal(err)
	}
	var files []string
	for _, e := range entries {
		if e.Name() == LockFileName {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) != 1 || files[0] != "deadbeef.js" {
		t.Errorf("cache files = %v, want [deadbeef.js]", files)
	}
	for _, name := range files {
		if strings.HasSuffix(name, ".tmp") {
			t.Errorf("temporary file left behind: %s", name)
		}
	}
}

func TestPutCanceled(t *testing.T) {
	t.Parallel()

	c := New(afero.NewMemMapFs(), "/cache")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Put(ctx, "abc", "css", "x"); err == nil {
		t.Error("Put() with a canceled context should fail")
	}
}

func TestDir(t *testing.T) {
	t.Parallel()

	if got := New(afero.NewMemMapFs(), "/x").Dir(); got != "/x" {
		t.Errorf("Dir() = %q", got)
	}
}
