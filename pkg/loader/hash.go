// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// normalizeData trims data and collapses each double space into one space.
// The replacement is a single non-overlapping pass, so four spaces become two.
func normalizeData(data string) string {
	return strings.ReplaceAll(strings.TrimSpace(data), "  ", " ")
}

// contentFingerprint returns the hex SHA-1 digest of data. The digest also
// names compiled cache files.
func contentFingerprint(data string) string {
	sum := sha1.Sum([]byte(data)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// nameFingerprint keys asset files by their base name, so two files sharing a
// base name collide and the later registration wins.
func nameFingerprint(file string) uint64 {
	return xxhash.Sum64String(path.Base(file))
}
