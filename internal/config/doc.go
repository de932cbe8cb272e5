// SPDX-License-Identifier: MPL-2.0

// Package config handles pkgloader configuration using Viper with CUE as the file format.
//
// Configuration is read from pkgloader.cue in the user config directory
// (~/.config/pkgloader on Linux, ~/Library/Application Support/pkgloader on
// macOS, %APPDATA%\pkgloader on Windows) or, failing that, the current
// directory. Values are validated against the embedded #Config schema and
// layered over DefaultConfig; PKGLOADER_* environment variables override both.
package config
