// SPDX-License-Identifier: MPL-2.0

package loader

import "fmt"

type (
	// Processor transforms asset data. ProcessBefore runs on each piece of data
	// as it is registered (before buffering or compiling); ProcessAfter runs on
	// the aggregated buffer when it is read back. Processors of one kind run in
	// registration order, each consuming the previous output.
	Processor interface {
		ProcessBefore(data string) (string, error)
		ProcessAfter(data string) (string, error)
	}

	// BeforeFunc adapts a function to a Processor that only acts before
	// buffering and passes aggregated data through unchanged.
	BeforeFunc func(data string) (string, error)

	// AfterFunc adapts a function to a Processor that only acts on the
	// aggregated data and passes registered data through unchanged.
	AfterFunc func(data string) (string, error)
)

// ProcessBefore calls f.
func (f BeforeFunc) ProcessBefore(data string) (string, error) { return f(data) }

// ProcessAfter returns data unchanged.
func (f BeforeFunc) ProcessAfter(data string) (string, error) { return data, nil }

// ProcessBefore returns data unchanged.
func (f AfterFunc) ProcessBefore(data string) (string, error) { return data, nil }

// ProcessAfter calls f.
func (f AfterFunc) ProcessAfter(data string) (string, error) { return f(data) }

// RegisterProcessor appends p to the chain of the given kind. The kind is
// matched case-insensitively after trimming.
func (l *Loader) RegisterProcessor(kind string, p Processor) error {
	k, err := ParseKind(kind)
	if err != nil {
		return newError("register processor", kind, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.processors[k] = append(l.processors[k], p)
	l.logger.Debug("registered processor", "kind", k, "position", len(l.processors[k]))
	return nil
}

// RegisterStyleProcessor registers p for CSS data.
func (l *Loader) RegisterStyleProcessor(p Processor) error {
	return l.RegisterProcessor(string(KindStyle), p)
}

// RegisterScriptProcessor registers p for JavaScript data.
func (l *Loader) RegisterScriptProcessor(p Processor) error {
	return l.RegisterProcessor(string(KindScript), p)
}

// runBefore feeds data through every pre-processor of the chain in order.
func runBefore(chain []Processor, data string) (string, error) {
	for i, p := range chain {
		out, err := p.ProcessBefore(data)
		if err != nil {
			return "", fmt.Errorf("processor %d: %w", i, err)
		}
		data = out
	}
	return data, nil
}

// runAfter feeds data through every post-processor of the chain in order.
func runAfter(chain []Processor, data string) (string, error) {
	for i, p := range chain {
		out, err := p.ProcessAfter(data)
		if err != nil {
			return "", fmt.Errorf("processor %d: %w", i, err)
		}
		data = out
	}
	return data, nil
}
