// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on error instead
// of returning it: working directory changes, file writes, and a builder for
// on-disk package fixtures.
package testutil
