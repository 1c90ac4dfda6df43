package kconfig

import (
	"slices"
	"testing"
)

// choiceOf returns the choice a symbol is a member of.
func choiceOf(t *testing.T, cfg *Config, name string) Choice {
	t.Helper()

	ch, ok := sym(t, cfg, name).Choice()
	if !ok {
		t.Fatalf("symbol %s is not a choice member", name)
	}

	return ch
}

func TestChoice_Exclusivity(t *testing.T) {
	cfg := loadString(t, `
choice
	prompt "compiler"

config GCC
	bool "gcc"

config CLANG
	bool "clang"

endchoice
`)

	ch := choiceOf(t, cfg, "GCC")

	// A visible non-optional bool choice is always in y mode.
	if got := ch.TriValue(); got != Y {
		t.Fatalf("expected y mode, got %v", got)
	}

	// Without a default the first visible member is selected.
	sel, ok := ch.Selection()
	if !ok || sel.Name() != "GCC" {
		t.Fatalf("expected GCC selected, got %v, %v", sel, ok)
	}

	gcc, clang := sym(t, cfg, "GCC"), sym(t, cfg, "CLANG")

	if gcc.TriValue() != Y || clang.TriValue() != N {
		t.Errorf("expected exclusive selection, got %v/%v",
			gcc.TriValue(), clang.TriValue())
	}

	// Setting another member to y moves the selection.
	clang.SetTri(Y)

	if gcc.TriValue() != N || clang.TriValue() != Y {
		t.Errorf("expected selection to move, got %v/%v",
			gcc.TriValue(), clang.TriValue())
	}

	user, ok := ch.UserSelection()
	if !ok || user.Name() != "CLANG" {
		t.Error("expected recorded user selection")
	}

	// In y mode members only take y, and the choice itself is pinned.
	if got := gcc.Assignable(); !slices.Equal(got, []Tri{Y}) {
		t.Errorf("expected member assignable [y], got %v", got)
	}

	if got := ch.Assignable(); !slices.Equal(got, []Tri{Y}) {
		t.Errorf("expected choice assignable [y], got %v", got)
	}
}

func TestChoice_DefaultSelection(t *testing.T) {
	cfg := loadString(t, `
config HAVE_GCC
	bool "have gcc"

choice
	prompt "compiler"
	default CLANG

config GCC
	bool "gcc"
	depends on HAVE_GCC

config CLANG
	bool "clang"

endchoice
`)

	ch := choiceOf(t, cfg, "CLANG")

	sel, _ := ch.Selection()
	if sel.Name() != "CLANG" {
		t.Fatalf("expected default selection CLANG, got %s", sel.Name())
	}

	// An explicit user selection wins while its member stays visible.
	sym(t, cfg, "HAVE_GCC").SetTri(Y)
	sym(t, cfg, "GCC").SetTri(Y)

	if sel, _ = ch.Selection(); sel.Name() != "GCC" {
		t.Errorf("expected user selection GCC, got %s", sel.Name())
	}

	// Once the selected member goes invisible the default takes over
	// again, but the user selection is remembered.
	sym(t, cfg, "HAVE_GCC").SetTri(N)

	if sel, _ = ch.Selection(); sel.Name() != "CLANG" {
		t.Errorf("expected fallback to CLANG, got %s", sel.Name())
	}

	user, _ := ch.UserSelection()
	if user.Name() != "GCC" {
		t.Errorf("expected remembered user selection GCC, got %s", user.Name())
	}

	sym(t, cfg, "HAVE_GCC").SetTri(Y)

	if sel, _ = ch.Selection(); sel.Name() != "GCC" {
		t.Errorf("expected user selection restored, got %s", sel.Name())
	}
}

func TestChoice_Optional(t *testing.T) {
	cfg := loadString(t, `
choice
	prompt "opt"
	optional

config O1
	bool "o1"

config O2
	bool "o2"

endchoice
`)

	ch := choiceOf(t, cfg, "O1")

	if !ch.IsOptional() {
		t.Fatal("expected optional choice")
	}

	if got := ch.TriValue(); got != N {
		t.Fatalf("expected n mode, got %v", got)
	}

	if _, ok := ch.Selection(); ok {
		t.Error("expected no selection in n mode")
	}

	// Setting a member records the user selection but does not activate
	// the choice by itself.
	sym(t, cfg, "O1").SetTri(Y)

	if got := sym(t, cfg, "O1").TriValue(); got != N {
		t.Errorf("expected member to stay n while the choice is off, got %v", got)
	}

	ch.SetTri(Y)

	if got := sym(t, cfg, "O1").TriValue(); got != Y {
		t.Errorf("expected member selected, got %v", got)
	}

	// Optional choices can be switched back off.
	if got := ch.Assignable(); !slices.Equal(got, []Tri{N, Y}) {
		t.Errorf("expected [n y], got %v", got)
	}

	ch.SetTri(N)

	if got := sym(t, cfg, "O1").TriValue(); got != N {
		t.Errorf("expected member off again, got %v", got)
	}
}

func TestChoice_TristateModes(t *testing.T) {
	cfg := loadString(t, `
config MODULES
	bool "modules"
	default y

choice
	tristate "units"

config U1
	tristate "u1"

config U2
	tristate "u2"

endchoice
`)

	ch := choiceOf(t, cfg, "U1")
	u1, u2 := sym(t, cfg, "U1"), sym(t, cfg, "U2")

	// With modules enabled a tristate choice starts out in m mode, where
	// every member can be m independently.
	if got := ch.TriValue(); got != M {
		t.Fatalf("expected m mode, got %v", got)
	}

	if got := u1.Assignable(); !slices.Equal(got, []Tri{N, M}) {
		t.Fatalf("expected member assignable [n m], got %v", got)
	}

	u1.SetTri(M)
	u2.SetTri(M)

	if u1.TriValue() != M || u2.TriValue() != M {
		t.Errorf("expected both members m, got %v/%v",
			u1.TriValue(), u2.TriValue())
	}

	if got := ch.Assignable(); !slices.Equal(got, []Tri{M, Y}) {
		t.Errorf("expected choice assignable [m y], got %v", got)
	}

	// Switching to y mode reverts to exclusive selection.
	ch.SetTri(Y)

	if got := ch.TriValue(); got != Y {
		t.Fatalf("expected y mode, got %v", got)
	}

	if u1.TriValue() != Y || u2.TriValue() != N {
		t.Errorf("expected exclusive selection in y mode, got %v/%v",
			u1.TriValue(), u2.TriValue())
	}
}

func TestChoice_SetValue(t *testing.T) {
	cfg := loadString(t, `
choice
	prompt "compiler"

config GCC
	bool "gcc"

endchoice
`)

	ch := choiceOf(t, cfg, "GCC")

	if ch.SetValue("m") {
		t.Error("expected m to be rejected for a bool choice")
	}

	if !hasWarning(cfg, "is invalid for <choice>") {
		t.Errorf("expected invalid assignment warning, got %v", cfg.Warnings())
	}

	if ch.SetValue("bogus") {
		t.Error("expected malformed value to be rejected")
	}

	if !ch.SetValue("y") {
		t.Error("expected y to be accepted")
	}

	if v, ok := ch.UserValue(); !ok || v != Y {
		t.Errorf("expected recorded user mode y, got %v, %v", v, ok)
	}
}

func TestChoice_UnsetValue(t *testing.T) {
	cfg := loadString(t, `
choice
	prompt "compiler"
	default CLANG

config GCC
	bool "gcc"

config CLANG
	bool "clang"

endchoice
`)

	ch := choiceOf(t, cfg, "GCC")

	sym(t, cfg, "GCC").SetTri(Y)

	if sel, _ := ch.Selection(); sel.Name() != "GCC" {
		t.Fatalf("expected GCC selected, got %s", sel.Name())
	}

	ch.UnsetValue()

	if _, ok := ch.UserSelection(); ok {
		t.Error("expected user selection cleared")
	}

	if sel, _ := ch.Selection(); sel.Name() != "CLANG" {
		t.Errorf("expected default selection after unset, got %s", sel.Name())
	}
}

func TestChoice_Defaults(t *testing.T) {
	cfg := loadString(t, `
config COND
	bool "cond"

choice
	prompt "pick"
	default B if COND
	default A

config A
	bool "a"

config B
	bool "b"

endchoice
`)

	ch := choiceOf(t, cfg, "A")

	defs := ch.Defaults()
	if len(defs) != 2 {
		t.Fatalf("expected 2 defaults, got %d", len(defs))
	}

	first, _ := defs[0].Value.Symbol()
	if first.Name() != "B" {
		t.Errorf("unexpected first default %s", first.Name())
	}

	// The first default whose condition holds picks the selection.
	if sel, _ := ch.Selection(); sel.Name() != "A" {
		t.Errorf("expected A selected, got %s", sel.Name())
	}

	sym(t, cfg, "COND").SetTri(Y)

	if sel, _ := ch.Selection(); sel.Name() != "B" {
		t.Errorf("expected B selected once the condition holds, got %s", sel.Name())
	}
}
