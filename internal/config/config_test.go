// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pkgloader/pkgloader/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.LogLevel != LogLevelWarn {
		t.Errorf("default log level = %q, want warn", cfg.LogLevel)
	}
	if cfg.EagerUnits {
		t.Error("eager_units should default to false")
	}
	if cfg.Imports == nil || cfg.Modes == nil {
		t.Error("collections should default to empty, not nil")
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig() is invalid: %v", errs)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := LoadWithSource(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
		WorkDir:       t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("source = %q, want none", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, `
packages_path: "/srv/packages"
project_path:  "/srv"
eager_units:   true
imports: ["Core", "Blog"]
modes: {debug: true, legacy: false}
log_level: "debug"
`)

	cfg, path, err := LoadWithSource(context.Background(), LoadOptions{ConfigDirPath: dir, WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != want {
		t.Errorf("source = %q, want %q", path, want)
	}

	expected := &Config{
		PackagesPath: "/srv/packages",
		ProjectPath:  "/srv",
		EagerUnits:   true,
		Imports:      []string{"Core", "Blog"},
		Modes:        map[string]bool{"debug": true, "legacy": false},
		LogLevel:     LogLevelDebug,
	}
	if diff := cmp.Diff(expected, cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFallsBackToWorkDir(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	want := writeConfig(t, work, `compile_dir: "/tmp/compiled"`)

	cfg, path, err := LoadWithSource(context.Background(), LoadOptions{ConfigDirPath: t.TempDir(), WorkDir: work})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != want || cfg.CompileDir != "/tmp/compiled" {
		t.Errorf("Load() = %q from %q", cfg.CompileDir, path)
	}
	if cfg.LogLevel != LogLevelWarn {
		t.Errorf("unset fields should keep defaults, log_level = %q", cfg.LogLevel)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `log_level: "info"`)
	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("log_level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{name: "unknown field", content: `colour: "red"`, wantSub: "colour"},
		{name: "bad log level", content: `log_level: "loud"`, wantSub: "log_level"},
		{name: "wrong type", content: `eager_units: "yes"`, wantSub: "eager_units"},
		{name: "syntax error", content: `imports: [`, wantSub: ConfigFileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be *issue.ActionableError, got %T", err)
			}
			if len(ae.Suggestions) == 0 {
				t.Error("error should carry suggestions")
			}
			if !strings.Contains(ae.Format(true), tt.wantSub) {
				t.Errorf("error %q should mention %q", ae.Format(true), tt.wantSub)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *issue.ActionableError", err)
	}
	if ae.Operation != "load configuration" {
		t.Errorf("Operation = %q", ae.Operation)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

//nolint:paralleltest // t.Setenv
func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `log_level: "info"
packages_path: "/from/file"`)

	t.Setenv("PKGLOADER_LOG_LEVEL", "error")
	t.Setenv("PKGLOADER_EAGER_UNITS", "true")
	t.Setenv("PKGLOADER_IMPORTS", "Core,Blog")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != LogLevelError {
		t.Errorf("log_level = %q, want env override error", cfg.LogLevel)
	}
	if !cfg.EagerUnits {
		t.Error("eager_units should come from the environment")
	}
	if cfg.PackagesPath != "/from/file" {
		t.Errorf("packages_path = %q, want file value", cfg.PackagesPath)
	}
	if diff := cmp.Diff([]string{"Core", "Blog"}, cfg.Imports); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}
}

//nolint:paralleltest // mutates the package-level override
func TestConfigDir(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/custom/dir")
	got, err := ConfigDir()
	if err != nil || got != "/custom/dir" {
		t.Errorf("ConfigDir() with override = %q, %v", got, err)
	}

	Reset()
	if runtime.GOOS != "linux" {
		return
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	got, err = ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg", AppName); got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		PackagesPath: "/srv/pkgs",
		CompileDir:   "/srv/cache",
		EagerUnits:   true,
		Imports:      []string{"Core"},
		Modes:        map[string]bool{"b": false, "a": true},
		LogLevel:     LogLevelInfo,
	}
	src := GenerateCUE(cfg)
	if strings.Index(src, `"a": true`) > strings.Index(src, `"b": false`) {
		t.Errorf("modes should be sorted:\n%s", src)
	}

	path := writeConfig(t, t.TempDir(), src)
	got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load(generated) error = %v\n%s", err, src)
	}
	if diff := cmp.Diff(cfg, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	cfg.Modes = map[string]bool{" ": true}

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("IsValid() = true, want false")
	}
	var ce *InvalidConfigError
	if !errors.As(errs[0], &ce) {
		t.Fatalf("error should be *InvalidConfigError, got %T", errs[0])
	}
	if len(ce.FieldErrors) != 2 {
		t.Errorf("FieldErrors = %v, want 2", ce.FieldErrors)
	}
	if !errors.Is(ce.FieldErrors[0], ErrInvalidLogLevel) || !errors.Is(ce.FieldErrors[1], ErrInvalidModeName) {
		t.Errorf("unexpected field errors: %v", ce.FieldErrors)
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level LogLevel
		want  log.Level
	}{
		{level: LogLevelDebug, want: log.DebugLevel},
		{level: LogLevelInfo, want: log.InfoLevel},
		{level: LogLevelWarn, want: log.WarnLevel},
		{level: LogLevelError, want: log.ErrorLevel},
		{level: "bogus", want: log.WarnLevel},
	}
	for _, tt := range tests {
		if got := tt.level.Level(); got != tt.want {
			t.Errorf("LogLevel(%q).Level() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLoaderOptions(t *testing.T) {
	t.Parallel()

	cfg := &Config{PackagesPath: "/p", ProjectPath: "/q", CompileDir: "/c", EagerUnits: true, Modes: map[string]bool{"x": true}}
	opts := cfg.LoaderOptions()
	if opts.PackagesPath != "/p" || opts.ProjectPath != "/q" || opts.CompileDir != "/c" || !opts.Eager {
		t.Errorf("LoaderOptions() = %+v", opts)
	}
	opts.Modes["y"] = true
	if _, ok := cfg.Modes["y"]; ok {
		t.Error("LoaderOptions() should copy modes")
	}
}
