package cmd

import (
	"context"
	"testing"
)

// TestEval checks expression evaluation against current symbol values.
func TestEval(t *testing.T) {
	src := `
config FOO
	bool "foo"
	default y

config BAR
	bool "bar"
`

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"symbol", "FOO", "y\n"},
		{"negation", "!FOO", "n\n"},
		{"and", "FOO && BAR", "n\n"},
		{"or", "FOO || BAR", "y\n"},
		{"comparison", "FOO = y", "y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGlobals(t, src)

			out := captureStdout(t, func() {
				cmd := &Eval{Expr: tt.expr}
				if err := cmd.Run(context.Background(), g); err != nil {
					t.Errorf("Run(%q) error: %v", tt.expr, err)
				}
			})

			if out != tt.want {
				t.Errorf("Run(%q) printed %q, want %q", tt.expr, out, tt.want)
			}
		})
	}
}

// TestEvalMalformed checks that a syntax error in the expression is
// reported instead of printing a value.
func TestEvalMalformed(t *testing.T) {
	g := newGlobals(t, `
config FOO
	bool "foo"
`)

	cmd := &Eval{Expr: "FOO &&"}
	if err := cmd.Run(context.Background(), g); err == nil {
		t.Fatal("expected error for malformed expression")
	}
}
