package kconfig

import (
	"errors"
	"testing"
)

func TestConfig_EvalString(t *testing.T) {
	tests := []struct {
		name string
		src  string
		expr string
		want Tri
	}{
		{
			name: "constant y",
			src:  "",
			expr: "y",
			want: Y,
		},
		{
			name: "constant n",
			src:  "",
			expr: "n",
			want: N,
		},
		{
			name: "m without modules",
			src:  "",
			expr: "m",
			want: N,
		},
		{
			name: "m with modules",
			src:  "config MODULES\n\tbool \"mods\"\n\tdefault y\n",
			expr: "m",
			want: M,
		},
		{
			name: "symbol reference",
			src:  "config FOO\n\tbool \"foo\"\n\tdefault y\n",
			expr: "FOO",
			want: Y,
		},
		{
			name: "negation",
			src:  "config FOO\n\tbool \"foo\"\n\tdefault y\n",
			expr: "!FOO",
			want: N,
		},
		{
			name: "conjunction",
			src:  "config FOO\n\tbool \"foo\"\n\tdefault y\n",
			expr: "FOO && n",
			want: N,
		},
		{
			name: "disjunction",
			src:  "config FOO\n\tbool \"foo\"\n\tdefault y\n",
			expr: "FOO || n",
			want: Y,
		},
		{
			name: "parenthesized",
			src:  "config FOO\n\tbool \"foo\"\n\tdefault y\n",
			expr: "!(FOO && n)",
			want: Y,
		},
		{
			name: "string equality",
			src:  "config NAME\n\tstring\n\tdefault \"hello\"\n",
			expr: `NAME = "hello"`,
			want: Y,
		},
		{
			name: "string inequality",
			src:  "config NAME\n\tstring\n\tdefault \"hello\"\n",
			expr: `NAME != "hello"`,
			want: N,
		},
		{
			name: "undefined symbol compares as its name",
			src:  "",
			expr: `UNDEF = "UNDEF"`,
			want: Y,
		},
		{
			name: "numeric less than",
			src:  "config N9\n\tint\n\tdefault 9\n\nconfig N10\n\tint\n\tdefault 10\n",
			expr: "N9 < N10",
			want: Y,
		},
		{
			name: "numeric against literal",
			src:  "config N9\n\tint\n\tdefault 9\n",
			expr: "N9 > 10",
			want: N,
		},
		{
			name: "string symbols compare lexicographically",
			src: "config SA\n\tstring\n\tdefault \"10\"\n\n" +
				"config SB\n\tstring\n\tdefault \"9\"\n",
			expr: "SA < SB",
			want: Y,
		},
		{
			name: "tristate comparison",
			src:  "config FOO\n\tbool \"foo\"\n\tdefault y\n",
			expr: "FOO = y",
			want: Y,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadString(t, tt.src)

			got, err := cfg.EvalString(tt.expr)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if got != tt.want {
				t.Errorf("EvalString(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestConfig_EvalString_Errors(t *testing.T) {
	cfg := loadString(t, "config FOO\n\tbool \"foo\"\n")

	for _, expr := range []string{"", "&&", "FOO &&", "(FOO", "!"} {
		if _, err := cfg.EvalString(expr); !errors.Is(err, ErrMalformedExpr) {
			t.Errorf("EvalString(%q): expected ErrMalformedExpr, got %v", expr, err)
		}
	}
}

func TestExpr_String(t *testing.T) {
	tests := []struct {
		name string
		dep  string
		want string
	}{
		{
			name: "leaf",
			dep:  "A",
			want: "A",
		},
		{
			name: "negated leaf",
			dep:  "!A",
			want: "!A",
		},
		{
			name: "negated subexpression",
			dep:  "!(A && B)",
			want: "!(A && B)",
		},
		{
			name: "or inside and",
			dep:  "(A || B) && C",
			want: "(A || B) && C",
		},
		{
			name: "and inside or",
			dep:  "A && B || C",
			want: "(A && B) || C",
		},
		{
			name: "relation",
			dep:  `A = "hello"`,
			want: `A = "hello"`,
		},
		{
			name: "constant operand quoted",
			dep:  "A = y",
			want: `A = "y"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadString(t,
				"config A\n\tbool \"a\"\n\nconfig B\n\tbool \"b\"\n\nconfig C\n\tbool \"c\"\n\n"+
					"config X\n\tbool \"x\"\n\tdepends on "+tt.dep+"\n")

			if got := sym(t, cfg, "X").DirectDep().String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExpr_Split(t *testing.T) {
	cfg := loadString(t,
		"config A\n\tbool \"a\"\n\nconfig B\n\tbool \"b\"\n\nconfig C\n\tbool \"c\"\n\n"+
			"config X\n\tbool \"x\"\n\tdepends on A || B && C || !A\n")

	dep := sym(t, cfg, "X").DirectDep()

	ors := dep.SplitOr()
	if len(ors) != 3 {
		t.Fatalf("expected 3 OR operands, got %d", len(ors))
	}

	if got := ors[1].String(); got != "B && C" {
		t.Errorf("unexpected middle operand %q", got)
	}

	ands := ors[1].SplitAnd()
	if len(ands) != 2 {
		t.Fatalf("expected 2 AND operands, got %d", len(ands))
	}

	// Splitting on the wrong operator returns the expression unchanged.
	if single := dep.SplitAnd(); len(single) != 1 {
		t.Errorf("expected 1 operand, got %d", len(single))
	}
}

func TestExpr_Symbols(t *testing.T) {
	cfg := loadString(t,
		"config A\n\tbool \"a\"\n\nconfig B\n\tbool \"b\"\n\n"+
			"config X\n\tbool \"x\"\n\tdepends on A && (B || A)\n")

	syms := sym(t, cfg, "X").DirectDep().Symbols()
	if len(syms) != 2 {
		t.Fatalf("expected 2 distinct symbols, got %d", len(syms))
	}

	if syms[0].Name() != "A" || syms[1].Name() != "B" {
		t.Errorf("unexpected order: %s, %s", syms[0].Name(), syms[1].Name())
	}
}

func TestExpr_Value(t *testing.T) {
	cfg := loadString(t,
		"config A\n\tbool \"a\"\n\tdefault y\n\n"+
			"config X\n\tbool \"x\"\n\tdepends on A\n")

	if got := sym(t, cfg, "X").DirectDep().Value(); got != Y {
		t.Errorf("expected y, got %v", got)
	}

	sym(t, cfg, "A").SetTri(N)

	if got := sym(t, cfg, "X").DirectDep().Value(); got != N {
		t.Errorf("expected n after assignment, got %v", got)
	}
}

func TestConfig_LogicalContextWarning(t *testing.T) {
	cfg := loadString(t,
		"config SIZE\n\tint\n\tdefault 5\n\n"+
			"config X\n\tbool \"x\"\n\tdepends on SIZE\n")

	// The warning is recorded lazily, on the first evaluation.
	if hasWarning(cfg, "logical context") {
		t.Fatal("warning recorded before any evaluation")
	}

	_ = sym(t, cfg, "X").TriValue()

	if !hasWarning(cfg, "is being evaluated in a logical context") {
		t.Errorf("expected logical context warning, got %v", cfg.Warnings())
	}
}
