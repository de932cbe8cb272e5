// SPDX-License-Identifier: MPL-2.0

// Package issue holds the CLI's user-facing error vocabulary: ActionableError,
// which pairs a failure with remediation hints, and a catalog of longer
// Markdown guidance rendered with glamour.
package issue
