// SPDX-License-Identifier: MPL-2.0

package loader

// fileRegistry is an insertion-ordered map of asset files. Overwriting an
// existing key replaces the path but keeps the key's original position.
type fileRegistry struct {
	order []uint64
	paths map[uint64]string
}

func newFileRegistry() *fileRegistry {
	return &fileRegistry{paths: make(map[uint64]string)}
}

func (r *fileRegistry) put(key uint64, path string) {
	if _, ok := r.paths[key]; !ok {
		r.order = append(r.order, key)
	}
	r.paths[key] = path
}

// list returns the registered paths in registry order; never nil.
func (r *fileRegistry) list() []string {
	out := make([]string, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.paths[key])
	}
	return out
}
