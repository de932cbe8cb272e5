// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/pkgloader/pkgloader/internal/assetcache"
	"github.com/pkgloader/pkgloader/pkg/unithost"
)

const (
	// DefaultCompileDirName is the compile cache directory created under the
	// packages root when Options.CompileDir is empty.
	DefaultCompileDirName = ".compile"
)

// DefaultUnitSuffixes are the filename suffixes stripped to derive a code unit
// name. The first matching suffix wins.
var DefaultUnitSuffixes = []string{".class.go", ".interface.go", ".go"}

// directoryUnitSuffixes select the files picked up by RegisterCodeUnitDirectory.
var directoryUnitSuffixes = []string{".class.go", ".interface.go"}

type (
	// Options configures a Loader. Zero values are replaced with defaults by New.
	Options struct {
		// PackagesPath is the directory holding one subdirectory per package.
		// Defaults to the current working directory.
		PackagesPath string
		// ProjectPath is the optional project root stripped from absolute asset paths.
		ProjectPath string
		// CompileDir receives compiled asset files. Defaults to <PackagesPath>/.compile.
		CompileDir string
		// Host loads code units into the running process. Defaults to a yaegi interpreter.
		Host Host
		// Eager loads code units at registration time instead of on first Resolve.
		// Set it when the host has no deferred resolution hook.
		Eager bool
		// UnitSuffixes overrides DefaultUnitSuffixes.
		UnitSuffixes []string
		// Initializers seeds the package initializer table.
		Initializers map[string]InitializerFunc
		// Modes seeds the mode flags.
		Modes map[string]bool
		// Fs is the filesystem everything is read from and compiled to. Defaults to the OS.
		Fs afero.Fs
		// Logger receives debug and info lines. Defaults to a discarding logger.
		Logger *log.Logger
	}

	// Loader is the coordinator: it owns the package, code unit and asset
	// registries and the load statistics. Construct one per process (or per
	// worker) with New and pass it to every call site.
	Loader struct {
		mu sync.Mutex

		fs           afero.Fs
		host         Host
		logger       *log.Logger
		eager        bool
		unitSuffixes []string

		packagesPath string
		projectPath  string
		compileDir   string
		cache        *assetcache.Cache

		modes        map[string]bool
		units        map[string]string
		loaded       map[string]string
		files        map[Kind]*fileRegistry
		buffers      map[Kind]string
		seen         map[Kind]map[string]struct{}
		processors   map[Kind][]Processor
		initializers map[string]InitializerFunc
		importing    map[string]struct{}

		stats ledger
	}
)

// New creates a Loader from opts. It fails when the packages or project path
// is not an existing directory.
func New(opts Options) (*Loader, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "pkgloader"})
	}
	host := opts.Host
	if host == nil {
		host = unithost.New(unithost.WithFs(fs))
	}
	suffixes := opts.UnitSuffixes
	if len(suffixes) == 0 {
		suffixes = DefaultUnitSuffixes
	}

	l := &Loader{
		fs:           fs,
		host:         host,
		logger:       logger,
		eager:        opts.Eager,
		unitSuffixes: suffixes,
		compileDir:   opts.CompileDir,
		modes:        make(map[string]bool),
		units:        make(map[string]string),
		loaded:       make(map[string]string),
		files:        make(map[Kind]*fileRegistry),
		buffers:      make(map[Kind]string),
		seen:         make(map[Kind]map[string]struct{}),
		processors:   make(map[Kind][]Processor),
		initializers: make(map[string]InitializerFunc),
		importing:    make(map[string]struct{}),
	}
	for _, k := range Kinds() {
		l.files[k] = newFileRegistry()
		l.seen[k] = make(map[string]struct{})
	}
	for name, fn := range opts.Initializers {
		l.initializers[name] = fn
	}

	packagesPath := opts.PackagesPath
	if packagesPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, newError("set packages path", "", err)
		}
		packagesPath = wd
	}
	if err := l.SetPackagesPath(packagesPath); err != nil {
		return nil, err
	}
	if opts.ProjectPath != "" {
		if err := l.SetProjectPath(opts.ProjectPath); err != nil {
			return nil, err
		}
	}
	for mode, value := range opts.Modes {
		if err := l.SetMode(mode, value); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Logger returns the loader's logger.
func (l *Loader) Logger() *log.Logger { return l.logger }

// SetPackagesPath changes the root that bare package names resolve under.
// It may be changed while the loader is in use.
func (l *Loader) SetPackagesPath(path string) error {
	path = filepath.Clean(path)
	if err := l.checkDir(path); err != nil {
		return newError("set packages path", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.packagesPath = path
	return nil
}

// PackagesPath returns the current packages root.
func (l *Loader) PackagesPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.packagesPath
}

// SetProjectPath sets the project root. Backslashes are normalized to forward
// slashes, the path is cleaned, and the stored value always ends with exactly
// one slash. Calling it again replaces the previous value.
func (l *Loader) SetProjectPath(dir string) error {
	dir = path.Clean(strings.ReplaceAll(dir, `\`, "/"))
	if err := l.checkDir(dir); err != nil {
		return newError("set project path", dir, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.projectPath = strings.TrimRight(dir, "/") + "/"
	return nil
}

// ProjectPath returns the project root, or ErrNoProjectPath if none was set.
func (l *Loader) ProjectPath() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.projectPath == "" {
		return "", newError("get project path", "", ErrNoProjectPath)
	}
	return l.projectPath, nil
}

// SetMode sets a named mode flag.
func (l *Loader) SetMode(mode string, value bool) error {
	if mode == "" {
		return newError("set mode", "", ErrEmptyMode)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.modes[mode] = value
	return nil
}

// Mode reports a named mode flag. Modes never set read as false.
func (l *Loader) Mode(mode string) (bool, error) {
	if mode == "" {
		return false, newError("get mode", "", ErrEmptyMode)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.modes[mode], nil
}

// compileCache returns the asset cache, creating it on first use.
// Callers must hold l.mu.
func (l *Loader) compileCache() *assetcache.Cache {
	if l.cache == nil {
		dir := l.compileDir
		if dir == "" {
			dir = filepath.Join(l.packagesPath, DefaultCompileDirName)
		}
		l.cache = assetcache.New(l.fs, dir)
	}
	return l.cache
}

func (l *Loader) checkDir(path string) error {
	info, err := l.fs.Stat(path)
	if err != nil {
		return ErrNotFound
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

func (l *Loader) isDir(path string) bool {
	info, err := l.fs.Stat(path)
	return err == nil && info.IsDir()
}

func (l *Loader) isFile(path string) bool {
	info, err := l.fs.Stat(path)
	return err == nil && !info.IsDir()
}
