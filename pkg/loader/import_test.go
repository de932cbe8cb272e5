// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pkgloader/pkgloader/pkg/manifest"
)

func TestImport(t *testing.T) {
	t.Parallel()

	l, host, _ := newTestLoader(t, map[string]string{
		"/pkgs/Blog/include.cue": `
modes: blog: true
units: ["Post.class.go"]
unit_dirs: ["models"]
styles: [{path: "css/blog.css"}, {path: "https://cdn.example.com/font.css", absolute: false}]
scripts: [{path: "blog.js"}]
style_data: [{data: ".post {  margin: 0 }"}]
script_data: [{data: "init()", compile: true}]
`,
		"/pkgs/Blog/Post.class.go":           "",
		"/pkgs/Blog/models/Comment.class.go": "",
		"/pkgs/Blog/css/blog.css":            "",
		"/pkgs/Blog/blog.js":                 "",
	})
	ctx := context.Background()

	ok, err := l.Import(ctx, "Blog")
	if err != nil || !ok {
		t.Fatalf("Import(Blog) = %v, %v", ok, err)
	}

	if v, _ := l.Mode("blog"); !v {
		t.Error("manifest mode should be set")
	}
	wantUnits := map[string]string{
		"Post":    "/pkgs/Blog/Post.class.go",
		"Comment": "/pkgs/Blog/models/Comment.class.go",
	}
	if diff := cmp.Diff(wantUnits, l.CodeUnits()); diff != "" {
		t.Errorf("CodeUnits() mismatch (-want +got):\n%s", diff)
	}
	if len(host.loaded()) != 0 {
		t.Errorf("import should not load units, host saw %v", host.loaded())
	}
	wantStyles := []string{"/pkgs/Blog/css/blog.css", "https://cdn.example.com/font.css"}
	if diff := cmp.Diff(wantStyles, l.StyleFiles()); diff != "" {
		t.Errorf("StyleFiles() mismatch (-want +got):\n%s", diff)
	}
	wantScripts := []string{"/pkgs/Blog/blog.js", "/pkgs/.compile/" + contentFingerprint("init()") + ".js"}
	if diff := cmp.Diff(wantScripts, l.ScriptFiles()); diff != "" {
		t.Errorf("ScriptFiles() mismatch (-want +got):\n%s", diff)
	}
	if css, _ := l.StyleData(); css != ".post { margin: 0 }" {
		t.Errorf("StyleData() = %q", css)
	}

	stats := l.ImportStats()
	if len(stats) != 1 || stats[0].Package != "Blog" || stats[0].Path != "/pkgs/Blog/include.cue" {
		t.Errorf("ImportStats() = %+v", stats)
	}
	if !l.IsImported("Blog") {
		t.Error("IsImported(Blog) = false")
	}
}

func TestImportOnce(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLoader(t, map[string]string{"/pkgs/Core/include.cue": `name: "Core"`})
	var calls atomic.Int32
	l.RegisterInitializer("Core", func(context.Context, *Loader, []any) error {
		calls.Add(1)
		return nil
	})
	ctx := context.Background()

	refs := []string{"Core", "/pkgs/Core", "/pkgs/Core/include.cue"}
	for i, ref := range refs {
		ok, err := l.Import(ctx, ref)
		if err != nil {
			t.Fatalf("Import(%q) error = %v", ref, err)
		}
		if ok != (i == 0) {
			t.Errorf("Import(%q) = %v, want %v", ref, ok, i == 0)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("initializer ran %d times, want 1", calls.Load())
	}
	if diff := cmp.Diff([]string{"Core"}, l.ImportedPackages()); diff != "" {
		t.Errorf("ImportedPackages() mismatch (-want +got):\n%s", diff)
	}
}

func TestImportReferenceForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  string
	}{
		{name: "absolute directory", ref: "/vendor/MyPkg"},
		{name: "file inside the package", ref: "/vendor/MyPkg/include.toml"},
		{name: "trailing slash", ref: "/vendor/MyPkg/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, _, _ := newTestLoader(t, map[string]string{"/vendor/MyPkg/include.toml": `name = "MyPkg"`})
			ok, err := l.Import(context.Background(), tt.ref)
			if err != nil || !ok {
				t.Fatalf("Import(%q) = %v, %v", tt.ref, ok, err)
			}
			if diff := cmp.Diff([]string{"MyPkg"}, l.ImportedPackages()); diff != "" {
				t.Errorf("ImportedPackages() mismatch (-want +got):\n%s", diff)
			}
			if got := l.ImportStats()[0].Path; got != "/vendor/MyPkg/include.toml" {
				t.Errorf("ImportStats()[0].Path = %q", got)
			}
		})
	}
}

func TestImportErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		ref     string
		wantErr error
	}{
		{name: "unknown package", ref: "Nope", wantErr: ErrNotFound},
		{name: "no manifest", files: map[string]string{"/pkgs/Bare/x.txt": ""}, ref: "Bare", wantErr: ErrNotFound},
		{name: "no manifest sentinel", files: map[string]string{"/pkgs/Bare/x.txt": ""}, ref: "Bare", wantErr: manifest.ErrNotFound},
		{name: "invalid manifest", files: map[string]string{"/pkgs/Bad/include.cue": `units: 3`}, ref: "Bad", wantErr: ErrInvalidManifest},
		{name: "name mismatch", files: map[string]string{"/pkgs/Mis/include.cue": `name: "Other"`}, ref: "Mis", wantErr: ErrInvalidManifest},
		{name: "missing unit", files: map[string]string{"/pkgs/Gap/include.cue": `units: ["Gone.class.go"]`}, ref: "Gap", wantErr: ErrNotFound},
		{name: "empty data", files: map[string]string{"/pkgs/Blank/include.cue": `style_data: [{data: "  "}]`}, ref: "Blank", wantErr: ErrEmptyData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, _, _ := newTestLoader(t, tt.files)
			ok, err := l.Import(context.Background(), tt.ref)
			if ok || !errors.Is(err, tt.wantErr) {
				t.Fatalf("Import(%q) = %v, %v; want false, %v", tt.ref, ok, err, tt.wantErr)
			}
			var lerr *Error
			if !errors.As(err, &lerr) {
				t.Errorf("error should be a *Error, got %T", err)
			}
			if l.IsImported(tt.ref) || len(l.ImportStats()) != 0 {
				t.Error("a failed import should not be recorded")
			}
		})
	}
}

func TestImportRetryAfterFailure(t *testing.T) {
	t.Parallel()

	l, _, fs := newTestLoader(t, map[string]string{"/pkgs/Late/include.cue": `units: ["Late.class.go"]`})
	ctx := context.Background()

	if ok, err := l.Import(ctx, "Late"); ok || err == nil {
		t.Fatalf("first Import() = %v, %v; want failure", ok, err)
	}
	writeFiles(t, fs, map[string]string{"/pkgs/Late/Late.class.go": ""})
	if ok, err := l.Import(ctx, "Late"); !ok || err != nil {
		t.Fatalf("second Import() = %v, %v; want success", ok, err)
	}
}

func TestImportNested(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLoader(t, map[string]string{
		"/pkgs/App/include.cue":              `imports: ["Core", "vendor/Theme"]`,
		"/pkgs/App/vendor/Theme/include.cue": `imports: ["App"]`,
		"/pkgs/Core/include.toml":            `imports = ["App"]`,
	})

	ok, err := l.Import(context.Background(), "App")
	if err != nil || !ok {
		t.Fatalf("Import(App) = %v, %v", ok, err)
	}
	// Nested imports finish first; the cycle back to App is a no-op.
	if diff := cmp.Diff([]string{"Core", "Theme", "App"}, l.ImportedPackages()); diff != "" {
		t.Errorf("ImportedPackages() mismatch (-want +got):\n%s", diff)
	}
}

func TestImportNestedFailure(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLoader(t, map[string]string{"/pkgs/App/include.cue": `imports: ["Missing"]`})
	if _, err := l.Import(context.Background(), "App"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Import(App) error = %v, want ErrNotFound", err)
	}
	if l.IsImported("App") {
		t.Error("App should not be recorded when a nested import fails")
	}
}

func TestImportInitializer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		params     []any
		wantParams []any
	}{
		{name: "no params", params: nil, wantParams: []any{}},
		{name: "variadic", params: []any{"a", 2}, wantParams: []any{"a", 2}},
		{name: "single list unpacked", params: []any{[]any{"x", "y"}}, wantParams: []any{"x", "y"}},
		{name: "single scalar", params: []any{true}, wantParams: []any{true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, _, _ := newTestLoader(t, map[string]string{
				"/pkgs/Shop/include.cue":   `initializer: "shop-setup"`,
				"/pkgs/Shop/Cart.class.go": "",
			})
			var got []any
			l.RegisterInitializer("shop-setup", func(ctx context.Context, l *Loader, params []any) error {
				got = params
				return l.RegisterCodeUnit(ctx, "/pkgs/Shop/Cart.class.go")
			})

			if _, err := l.Import(context.Background(), "Shop", tt.params...); err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if diff := cmp.Diff(tt.wantParams, got); diff != "" {
				t.Errorf("initializer params mismatch (-want +got):\n%s", diff)
			}
			if _, ok := l.CodeUnits()["Cart"]; !ok {
				t.Error("initializer registration should be visible")
			}
		})
	}
}

func TestImportInitializerFailure(t *testing.T) {
	t.Parallel()

	errSetup := errors.New("setup failed")
	l, _, _ := newTestLoader(t, map[string]string{"/pkgs/Core/include.cue": ""}, func(o *Options) {
		o.Initializers = map[string]InitializerFunc{
			"Core": func(context.Context, *Loader, []any) error { return errSetup },
		}
	})

	ok, err := l.Import(context.Background(), "Core")
	if ok || !errors.Is(err, errSetup) {
		t.Errorf("Import() = %v, %v; want false, %v", ok, err, errSetup)
	}
	if l.IsImported("Core") {
		t.Error("Core should not be recorded")
	}
}

func TestImportConcurrent(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLoader(t, map[string]string{"/pkgs/Core/include.cue": `style_data: [{data: "a{}"}]`})
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Import(context.Background(), "Core")
			if err != nil {
				t.Errorf("Import() error = %v", err)
			}
			if ok {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("%d imports reported success, want 1", successes.Load())
	}
	if css, _ := l.StyleData(); css != "a{}" {
		t.Errorf("StyleData() = %q, want a{}", css)
	}
}

func TestImportCanceled(t *testing.T) {
	t.Parallel()

	l, _, _ := newTestLoader(t, map[string]string{"/pkgs/Core/include.cue": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Import(ctx, "Core"); !errors.Is(err, context.Canceled) {
		t.Errorf("Import() error = %v, want context.Canceled", err)
	}
}
