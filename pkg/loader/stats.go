// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"time"

	"golang.org/x/exp/slices"
)

type (
	// LoadRecord describes one code unit load.
	LoadRecord struct {
		Unit    string        `json:"unit"`
		Elapsed time.Duration `json:"elapsed"`
		Path    string        `json:"path"`
	}

	// ImportRecord describes one package import.
	ImportRecord struct {
		Package string        `json:"package"`
		Elapsed time.Duration `json:"elapsed"`
		Path    string        `json:"path"`
	}

	// ledger is the load statistics tracker. Loads are appended without
	// deduplication; imports are keyed by package name and keep import order.
	ledger struct {
		loads   []LoadRecord
		imports []ImportRecord
		index   map[string]int
	}
)

func (s *ledger) recordLoad(rec LoadRecord) {
	s.loads = append(s.loads, rec)
}

// recordImport stores rec unless the package already has a record.
func (s *ledger) recordImport(rec ImportRecord) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[rec.Package]; ok {
		return
	}
	s.index[rec.Package] = len(s.imports)
	s.imports = append(s.imports, rec)
}

func (s *ledger) imported(name string) bool {
	_, ok := s.index[name]
	return ok
}

// LoadedUnits returns the names of loaded code units in load order.
func (l *Loader) LoadedUnits() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.stats.loads))
	for _, rec := range l.stats.loads {
		names = append(names, rec.Unit)
	}
	return names
}

// LoadStats returns a copy of every load record.
func (l *Loader) LoadStats() []LoadRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.stats.loads)
}

// ImportedPackages returns the names of imported packages in import order.
func (l *Loader) ImportedPackages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.stats.imports))
	for _, rec := range l.stats.imports {
		names = append(names, rec.Package)
	}
	return names
}

// ImportStats returns a copy of every import record.
func (l *Loader) ImportStats() []ImportRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.stats.imports)
}

// IsImported reports whether a package of that name has been imported.
func (l *Loader) IsImported(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.imported(name)
}
