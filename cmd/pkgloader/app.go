// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/pkgloader/pkgloader/internal/config"
	"github.com/pkgloader/pkgloader/pkg/loader"
	"github.com/pkgloader/pkgloader/pkg/unithost"
)

type (
	// App wires CLI services. Every command handler receives an App and
	// builds its loader through it.
	App struct {
		Config ConfigProvider
		fs     afero.Fs
		flags  globalFlags
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies are the injection points for NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config ConfigProvider
		Fs     afero.Fs
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	globalFlags struct {
		verbose      bool
		configFile   string
		packagesPath string
		projectPath  string
		compileDir   string
		eager        bool
		modes        []string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config: deps.Config,
		fs:     deps.Fs,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// loadConfig loads the configuration and applies command-line overrides.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	wd, _ := os.Getwd()
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configFile, WorkDir: wd})
	if err != nil {
		return nil, err
	}

	if a.flags.packagesPath != "" {
		cfg.PackagesPath = a.flags.packagesPath
	}
	if a.flags.projectPath != "" {
		cfg.ProjectPath = a.flags.projectPath
	}
	if a.flags.compileDir != "" {
		cfg.CompileDir = a.flags.compileDir
	}
	if a.flags.eager {
		cfg.EagerUnits = true
	}
	modes, err := parseModeFlags(a.flags.modes)
	if err != nil {
		return nil, err
	}
	if cfg.Modes == nil {
		cfg.Modes = make(map[string]bool, len(modes))
	}
	for name, value := range modes {
		cfg.Modes[name] = value
	}
	return cfg, nil
}

// newLoader builds a loader from the effective configuration.
func (a *App) newLoader(ctx context.Context) (*loader.Loader, *config.Config, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := cfg.LoaderOptions()
	opts.Fs = a.fs
	opts.Host = unithost.New(unithost.WithFs(a.fs))
	opts.Logger = a.logger(cfg)

	l, err := loader.New(opts)
	if err != nil {
		return nil, nil, classifyLoaderError(err)
	}
	return l, cfg, nil
}

// logger returns a stderr logger at the configured level, or debug with --verbose.
func (a *App) logger(cfg *config.Config) *log.Logger {
	level := cfg.LogLevel.Level()
	if a.flags.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{Prefix: "pkgloader", Level: level})
}
