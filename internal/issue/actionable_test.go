// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestActionableErrorError(t *testing.T) {
	t.Parallel()

	cause := errors.New("no such directory")
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "import package"},
			want: "failed to import package",
		},
		{
			name: "with resource",
			err:  &ActionableError{Operation: "import package", Resource: "Blog"},
			want: "failed to import package: Blog",
		},
		{
			name: "with cause",
			err:  &ActionableError{Operation: "import package", Cause: cause},
			want: "failed to import package: no such directory",
		},
		{
			name: "full",
			err:  &ActionableError{Operation: "import package", Resource: "Blog", Cause: cause},
			want: "failed to import package: Blog: no such directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableErrorUnwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().WithOperation("compile asset").Wrap(fmt.Errorf("write: %w", sentinel)).BuildError()
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should reach the wrapped sentinel")
	}
}

func TestActionableErrorFormat(t *testing.T) {
	t.Parallel()

	inner := errors.New("permission denied")
	err := &ActionableError{
		Operation:   "compile asset",
		Resource:    "/pkgs/.compile",
		Suggestions: []string{"Check permissions", "Set compile_dir"},
		Cause:       fmt.Errorf("create file: %w", inner),
	}

	short := err.Format(false)
	if !strings.Contains(short, "  • Check permissions\n  • Set compile_dir") {
		t.Errorf("Format(false) missing suggestions:\n%s", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) should not include the chain:\n%s", short)
	}

	long := err.Format(true)
	for _, want := range []string{"Error chain:", "1. create file: permission denied", "2. permission denied"} {
		if !strings.Contains(long, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, long)
		}
	}
}

func TestErrorContextBuild(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}

	got := NewErrorContext().
		WithOperation("load unit").
		WithResource("Post.class.go").
		WithSuggestion("a").
		WithSuggestions("b", "c").
		WithIssue(CodeUnitLoadFailedId).
		Build()
	want := &ActionableError{
		Operation:   "load unit",
		Resource:    "Post.class.go",
		Suggestions: []string{"a", "b", "c"},
		IssueID:     CodeUnitLoadFailedId,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
	if got.Issue() != Get(CodeUnitLoadFailedId) {
		t.Error("Issue() should return the linked catalog entry")
	}
	if (&ActionableError{Operation: "x"}).Issue() != nil {
		t.Error("Issue() without an id should be nil")
	}
	if !got.HasSuggestions() || (&ActionableError{Operation: "x"}).HasSuggestions() {
		t.Error("HasSuggestions() should follow Suggestions")
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should be nil")
	}
	err := WrapWithContext(errors.New("boom"), "resolve unit", "Post")
	if err.Error() != "failed to resolve unit: Post: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}
