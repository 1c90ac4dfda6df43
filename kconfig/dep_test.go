package kconfig

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadString_DependencyLoop(t *testing.T) {
	tests := []struct {
		name  string
		input string
		wants []string
	}{
		{
			name: "mutual depends",
			input: `
config A
	bool "a"
	depends on B

config B
	bool "b"
	depends on A
`,
			wants: []string{
				"Dependency loop\n===============",
				"A (defined at Kconfig:2), with definition...",
				"...depends on B (defined at Kconfig:6), with definition...",
				"...depends again on A (defined at Kconfig:2)",
			},
		},
		{
			name: "select conditional on target",
			input: `
config A
	bool "a"
	select B if B

config B
	bool "b"
`,
			wants: []string{
				"Dependency loop\n===============",
				"B (defined at Kconfig:6), with definition...",
				"(select-related dependencies: A && B)",
				"...depends again on B (defined at Kconfig:6)",
			},
		},
		{
			name: "through a choice",
			input: `
config OUT
	bool "out"
	depends on M1

choice
	prompt "pick"
	depends on OUT

config M1
	bool "m1"

config M2
	bool "m2"

endchoice
`,
			wants: []string{
				"Dependency loop\n===============",
				"OUT (defined at Kconfig:2), with definition...",
				"...depends on the choice symbol M1 (defined at Kconfig:10)",
				"...depends on <choice> (defined at Kconfig:6)",
				"...depends again on OUT (defined at Kconfig:2)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadString(tt.input, WithEnv([]string{}))
			if !errors.Is(err, ErrDependencyLoop) {
				t.Fatalf("expected ErrDependencyLoop, got %v", err)
			}

			for _, want := range tt.wants {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("message missing %q:\n%s", want, err)
				}
			}
		})
	}
}

func TestConfig_InvalidationChain(t *testing.T) {
	cfg := loadString(t, `
config A
	bool "a"

config B
	bool "b"
	default A

config C
	bool "c"
	default B

config D
	bool "d"
	default C
`)

	d := sym(t, cfg, "D")

	// Prime the caches before changing anything.
	if d.TriValue() != N {
		t.Fatalf("expected D=n, got %v", d.TriValue())
	}

	sym(t, cfg, "A").SetTri(Y)

	if got := sym(t, cfg, "C").TriValue(); got != Y {
		t.Errorf("expected C=y after A=y, got %v", got)
	}

	if got := d.TriValue(); got != Y {
		t.Errorf("expected D=y after A=y, got %v", got)
	}

	sym(t, cfg, "A").SetTri(N)

	if got := d.TriValue(); got != N {
		t.Errorf("expected D=n after A=n, got %v", got)
	}
}

func TestConfig_InvalidationRange(t *testing.T) {
	cfg := loadString(t, `
config LIMIT
	int "limit"
	default 10

config COUNT
	int "count"
	default 100
	range 1 LIMIT
`)

	count := sym(t, cfg, "COUNT")

	if got := count.StrValue(); got != "10" {
		t.Fatalf("expected default clamped to 10, got %q", got)
	}

	sym(t, cfg, "LIMIT").SetValue("50")

	if got := count.StrValue(); got != "50" {
		t.Errorf("expected clamp to follow LIMIT=50, got %q", got)
	}
}

func TestConfig_ModulesInvalidateAll(t *testing.T) {
	cfg := loadString(t, `
config MODULES
	bool "modules"
	default y

config X
	tristate "x"
`)

	x := sym(t, cfg, "X")

	if !x.SetTri(M) {
		t.Fatal("expected m accepted for tristate")
	}

	if got := x.TriValue(); got != M {
		t.Fatalf("expected X=m, got %v", got)
	}

	// Disabling modules does not appear in X's dependencies, but it still
	// demotes every tristate in the configuration to bool.
	sym(t, cfg, "MODULES").SetTri(N)

	if got := x.Type(); got != TypeBool {
		t.Errorf("expected effective type bool, got %v", got)
	}

	if got := x.OrigType(); got != TypeTristate {
		t.Errorf("expected original type tristate, got %v", got)
	}

	if got := x.TriValue(); got != Y {
		t.Errorf("expected m promoted to y, got %v", got)
	}
}
