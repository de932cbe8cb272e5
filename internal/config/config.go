// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	"github.com/pkgloader/pkgloader/internal/issue"
	"github.com/pkgloader/pkgloader/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "pkgloader"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "pkgloader"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. PKGLOADER_PACKAGES_PATH.
	EnvPrefix = "PKGLOADER"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the pkgloader configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("packages_path", defaults.PackagesPath)
	v.SetDefault("project_path", defaults.ProjectPath)
	v.SetDefault("compile_dir", defaults.CompileDir)
	v.SetDefault("eager_units", defaults.EagerUnits)
	v.SetDefault("imports", defaults.Imports)
	v.SetDefault("modes", defaults.Modes)
	v.SetDefault("log_level", string(defaults.LogLevel))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := resolveConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'pkgloader config show' to see the effective configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	// PKGLOADER_IMPORTS arrives as one string.
	if len(cfg.Imports) == 1 && strings.ContainsAny(cfg.Imports[0], ", ") {
		cfg.Imports = strings.FieldsFunc(cfg.Imports[0], func(r rune) bool { return r == ',' || r == ' ' })
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("log_level must be one of debug, info, warn, error").
			WithSuggestion("Mode names must not be blank").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// resolveConfigFile picks the config file: the explicit path, then the
// config directory, then the working directory. It returns "" when none
// exists.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Run 'pkgloader config init' to create a default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	fileName := ConfigFileName + "." + ConfigFileExt
	candidates := []string{
		filepath.Join(cfgDir, fileName),
		filepath.Join(opts.WorkDir, fileName),
	}
	if i := slices.IndexFunc(candidates, fileExists); i >= 0 {
		return candidates[i], nil
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. Fields are optional, so the document is
// decoded non-concrete into a map that Viper layers over its defaults.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file to the config directory
// unless one exists, and returns its path.
func CreateDefaultConfig() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, nil // File exists
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// pkgloader configuration\n\n")

	if cfg.PackagesPath != "" {
		sb.WriteString(fmt.Sprintf("packages_path: %q\n", cfg.PackagesPath))
	}
	if cfg.ProjectPath != "" {
		sb.WriteString(fmt.Sprintf("project_path: %q\n", cfg.ProjectPath))
	}
	if cfg.CompileDir != "" {
		sb.WriteString(fmt.Sprintf("compile_dir: %q\n", cfg.CompileDir))
	}
	sb.WriteString(fmt.Sprintf("eager_units: %v\n", cfg.EagerUnits))
	sb.WriteString(fmt.Sprintf("log_level: %q\n", cfg.LogLevel))

	if len(cfg.Imports) > 0 {
		sb.WriteString("\nimports: [\n")
		for _, name := range cfg.Imports {
			sb.WriteString(fmt.Sprintf("\t%q,\n", name))
		}
		sb.WriteString("]\n")
	}

	if len(cfg.Modes) > 0 {
		names := make([]string, 0, len(cfg.Modes))
		for name := range cfg.Modes {
			names = append(names, name)
		}
		slices.Sort(names)

		sb.WriteString("\nmodes: {\n")
		for _, name := range names {
			sb.WriteString(fmt.Sprintf("\t%q: %v\n", name, cfg.Modes[name]))
		}
		sb.WriteString("}\n")
	}

	return sb.String()
}
