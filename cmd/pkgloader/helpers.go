// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/pkgloader/pkgloader/internal/config"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// parseModeFlags parses --mode values of the form "name" or "name=bool".
func parseModeFlags(values []string) (map[string]bool, error) {
	modes := make(map[string]bool, len(values))
	for _, v := range values {
		name, raw, hasValue := strings.Cut(v, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: --mode %q", config.ErrInvalidModeName, v)
		}
		value := true
		if hasValue {
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("--mode %s: %w", name, err)
			}
			value = b
		}
		modes[name] = value
	}
	return modes, nil
}
