package cmd

import (
	"fmt"
	"slices"
	"testing"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/kconf/kconfig"
)

// TestSearchText checks the text fuzzy matching runs against: the name
// with the prompt appended when the symbol has one.
func TestSearchText(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "enable foo support"

config QUIET
	bool
`)

	foo, _ := cfg.Sym("FOO")
	if got, want := searchText(foo), `FOO "enable foo support"`; got != want {
		t.Errorf("searchText(FOO) = %q, want %q", got, want)
	}

	quiet, _ := cfg.Sym("QUIET")
	if got, want := searchText(quiet), "QUIET"; got != want {
		t.Errorf("searchText(QUIET) = %q, want %q", got, want)
	}
}

// TestSymbolEnv checks the variables a symbol exposes to filter
// expressions.
func TestSymbolEnv(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
	default y

choice
	prompt "pick one"

config A
	bool "a"

config B
	bool "b"

endchoice
`)

	foo, _ := cfg.Sym("FOO")
	env := symbolEnv(foo, true)

	want := map[string]any{
		"name":       "FOO",
		"type":       "bool",
		"value":      "y",
		"tri":        "y",
		"visibility": "y",
		"prompt":     "foo",
		"file":       "Kconfig",
		"assignable": 2,
		"defined":    true,
		"constant":   false,
		"choice":     false,
	}

	for key, val := range want {
		if env[key] != val {
			t.Errorf("env[%q] = %v, want %v", key, env[key], val)
		}
	}

	if line, ok := env["line"].(int); !ok || line == 0 {
		t.Errorf("env[\"line\"] = %v, want a line number", env["line"])
	}

	a, _ := cfg.Sym("A")
	if env := symbolEnv(a, true); env["choice"] != true {
		t.Error("choice membership not reported")
	}
}

// TestSymbolEnvStatic checks that the compile-time environment has the
// same keys and value types as a live one, so filters that compile also
// run.
func TestSymbolEnvStatic(t *testing.T) {
	static := symbolEnv(kconfig.Symbol{}, false)

	cfg := loadString(t, `
config FOO
	bool "foo"
`)

	foo, _ := cfg.Sym("FOO")
	live := symbolEnv(foo, true)

	if len(static) != len(live) {
		t.Fatalf("static env has %d keys, live has %d", len(static), len(live))
	}

	for key, val := range live {
		sv, ok := static[key]
		if !ok {
			t.Errorf("static env lacks %q", key)

			continue
		}

		if fmt.Sprintf("%T", sv) != fmt.Sprintf("%T", val) {
			t.Errorf("env[%q] static type %T, live type %T", key, sv, val)
		}
	}
}

// TestFilterExpression compiles and runs a filter over every symbol the
// way the search command does.
func TestFilterExpression(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
	default y

config BAR
	bool "bar"

config NUM
	int "num"
	default 4
`)

	program, err := expr.Compile(`type == "bool" && tri == "y"`,
		expr.Env(symbolEnv(kconfig.Symbol{}, false)),
		expr.AsBool())
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	var names []string

	for _, sym := range cfg.Symbols() {
		out, err := vm.Run(program, symbolEnv(sym, true))
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}

		if keep, ok := out.(bool); ok && keep {
			names = append(names, sym.Name())
		}
	}

	if !slices.Equal(names, []string{"FOO"}) {
		t.Errorf("filter kept %v, want [FOO]", names)
	}
}

// TestRenderMatch checks that matched characters are highlighted while the
// rest pass through unchanged.
func TestRenderMatch(t *testing.T) {
	match := fuzzy.Match{Str: "FOO", MatchedIndexes: []int{0, 2}}

	want := matchStyle.Render("F") + "O" + matchStyle.Render("O")
	if got := renderMatch(match); got != want {
		t.Errorf("renderMatch = %q, want %q", got, want)
	}
}
