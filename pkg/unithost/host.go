// SPDX-License-Identifier: MPL-2.0

package unithost

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/spf13/afero"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"golang.org/x/exp/slices"
)

type (
	// Interpreter loads code units by evaluating their source with yaegi.
	// Each path is evaluated at most once; Load is safe for concurrent use.
	Interpreter struct {
		mu      sync.Mutex
		fs      afero.Fs
		interp  *interp.Interpreter
		initErr error
		loaded  map[string]string
		order   []string
	}

	// Option configures an Interpreter.
	Option func(*config)

	config struct {
		fs      afero.Fs
		stdlib  bool
		exports []interp.Exports
	}

	// Func adapts a function to the loader's Host interface.
	Func func(ctx context.Context, name, path string) error
)

// WithFs sets the filesystem unit sources are read from. Defaults to the OS.
func WithFs(fs afero.Fs) Option {
	return func(c *config) { c.fs = fs }
}

// WithStdlib controls whether units may import the standard library.
// Enabled by default.
func WithStdlib(enabled bool) Option {
	return func(c *config) { c.stdlib = enabled }
}

// WithSymbols makes additional packages importable by units.
func WithSymbols(exports interp.Exports) Option {
	return func(c *config) { c.exports = append(c.exports, exports) }
}

// New returns an interpreter host.
func New(opts ...Option) *Interpreter {
	c := config{stdlib: true}
	for _, opt := range opts {
		opt(&c)
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}

	h := &Interpreter{
		fs:     c.fs,
		interp: interp.New(interp.Options{}),
		loaded: make(map[string]string),
	}
	if c.stdlib {
		c.exports = append([]interp.Exports{stdlib.Symbols}, c.exports...)
	}
	for _, exports := range c.exports {
		if err := h.interp.Use(exports); err != nil {
			h.initErr = fmt.Errorf("failed to load interpreter symbols: %w", err)
			break
		}
	}
	return h
}

// Load evaluates the unit source at path. A path that was already evaluated
// is skipped.
func (h *Interpreter) Load(ctx context.Context, name, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initErr != nil {
		return h.initErr
	}
	if _, ok := h.loaded[path]; ok {
		return nil
	}

	src, err := afero.ReadFile(h.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read code unit %s: %w", name, err)
	}
	if _, err := h.interp.EvalWithContext(ctx, string(src)); err != nil {
		return fmt.Errorf("failed to evaluate code unit %s: %w", name, err)
	}

	h.loaded[path] = name
	h.order = append(h.order, name)
	return nil
}

// Lookup evaluates a qualified symbol such as "main.NewPost" against the
// units loaded so far.
func (h *Interpreter) Lookup(symbol string) (reflect.Value, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initErr != nil {
		return reflect.Value{}, h.initErr
	}
	v, err := h.interp.Eval(symbol)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("symbol %s not found: %w", symbol, err)
	}
	return v, nil
}

// Loaded returns the names of evaluated units in load order.
func (h *Interpreter) Loaded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.order)
}

// Load calls f.
func (f Func) Load(ctx context.Context, name, path string) error {
	return f(ctx, name, path)
}
