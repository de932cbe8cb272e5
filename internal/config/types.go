// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/maps"

	"github.com/pkgloader/pkgloader/pkg/loader"
)

const (
	// LogLevelDebug logs every registration and load.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs package imports.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only problems. This is the default.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only failures.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidModeName is returned for an empty or blank mode name.
	ErrInvalidModeName = errors.New("invalid mode name")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level written by the loader's logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidModeNameError is returned for a blank key in Config.Modes.
	InvalidModeNameError struct {
		Value string
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// PackagesPath is the directory bare package names resolve under.
		// Empty means the current directory.
		PackagesPath string `json:"packages_path" mapstructure:"packages_path"`
		// ProjectPath is stripped from absolute asset paths when set.
		ProjectPath string `json:"project_path" mapstructure:"project_path"`
		// CompileDir receives compiled asset data. Empty means <packages_path>/.compile.
		CompileDir string `json:"compile_dir" mapstructure:"compile_dir"`
		// EagerUnits loads code units when they are registered.
		EagerUnits bool `json:"eager_units" mapstructure:"eager_units"`
		// Imports lists packages imported when a command names none.
		Imports []string `json:"imports" mapstructure:"imports"`
		// Modes seeds the loader's mode flags.
		Modes map[string]bool `json:"modes" mapstructure:"modes"`
		// LogLevel is the loader's log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Level converts the value to a charmbracelet/log level. Invalid values map
// to warn.
func (l LogLevel) Level() log.Level {
	lvl, err := log.ParseLevel(string(l))
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface for InvalidModeNameError.
func (e *InvalidModeNameError) Error() string {
	return fmt.Sprintf("invalid mode name %q", e.Value)
}

// Unwrap returns ErrInvalidModeName for errors.Is() compatibility.
func (e *InvalidModeNameError) Unwrap() error { return ErrInvalidModeName }

// IsValid returns whether the Config has valid fields.
// Paths are not checked here; the loader reports missing directories when
// the options are applied.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for name := range c.Modes {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, &InvalidModeNameError{Value: name})
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// LoaderOptions maps the configuration onto loader options. The caller
// supplies the filesystem, host and logger.
func (c *Config) LoaderOptions() loader.Options {
	return loader.Options{
		PackagesPath: c.PackagesPath,
		ProjectPath:  c.ProjectPath,
		CompileDir:   c.CompileDir,
		Eager:        c.EagerUnits,
		Modes:        maps.Clone(c.Modes),
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PackagesPath: "",
		ProjectPath:  "",
		CompileDir:   "",
		EagerUnits:   false,
		Imports:      []string{},
		Modes:        map[string]bool{},
		LogLevel:     LogLevelWarn,
	}
}
