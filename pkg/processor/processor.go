// SPDX-License-Identifier: MPL-2.0

// Package processor provides asset processors for the loader's CSS and
// JavaScript chains.
package processor

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/parser"

	"github.com/pkgloader/pkgloader/pkg/loader"
)

var (
	_ loader.Processor = CSSNormalizer{}
	_ loader.Processor = Banner{}
	_ loader.Processor = Chain{}
)

type (
	// CSSNormalizer re-serializes aggregated CSS through the douceur parser:
	// one declaration per line, consistent spacing, comments dropped.
	// Registered data passes through unchanged.
	CSSNormalizer struct{}

	// Banner prefixes aggregated data with a block comment. Empty data stays
	// empty.
	Banner struct {
		Text string
	}

	// Chain runs processors in order as a single processor.
	Chain []loader.Processor
)

// ProcessBefore returns data unchanged.
func (CSSNormalizer) ProcessBefore(data string) (string, error) { return data, nil }

// ProcessAfter parses data as a stylesheet and prints it back.
func (CSSNormalizer) ProcessAfter(data string) (string, error) {
	if strings.TrimSpace(data) == "" {
		return data, nil
	}
	sheet, err := parser.Parse(data)
	if err != nil {
		return "", fmt.Errorf("failed to parse stylesheet: %w", err)
	}
	return sheet.String(), nil
}

// ProcessBefore returns data unchanged.
func (Banner) ProcessBefore(data string) (string, error) { return data, nil }

// ProcessAfter prepends the banner comment.
func (b Banner) ProcessAfter(data string) (string, error) {
	if data == "" || b.Text == "" {
		return data, nil
	}
	text := strings.ReplaceAll(b.Text, "*/", "* /")
	return "/* " + text + " */\n" + data, nil
}

// ProcessBefore runs every ProcessBefore in order.
func (c Chain) ProcessBefore(data string) (string, error) {
	for i, p := range c {
		out, err := p.ProcessBefore(data)
		if err != nil {
			return "", fmt.Errorf("chain step %d: %w", i, err)
		}
		data = out
	}
	return data, nil
}

// ProcessAfter runs every ProcessAfter in order.
func (c Chain) ProcessAfter(data string) (string, error) {
	for i, p := range c {
		out, err := p.ProcessAfter(data)
		if err != nil {
			return "", fmt.Errorf("chain step %d: %w", i, err)
		}
		data = out
	}
	return data, nil
}
