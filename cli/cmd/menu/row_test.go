package menu

import (
	"testing"

	"github.com/ardnew/kconf/kconfig"
)

// loadString parses a standalone Kconfig source without touching the
// filesystem or the process environment.
func loadString(t *testing.T, src string) *kconfig.Config {
	t.Helper()

	cfg, err := kconfig.LoadString(src, kconfig.WithEnv([]string{}))
	if err != nil {
		t.Fatalf("LoadString() error: %v", err)
	}

	return cfg
}

// sym looks up a defined symbol, failing the test when it does not exist.
func sym(t *testing.T, cfg *kconfig.Config, name string) kconfig.Symbol {
	t.Helper()

	s, ok := cfg.Sym(name)
	if !ok {
		t.Fatalf("symbol %s not defined", name)
	}

	return s
}

// TestVisibleRows checks which nodes produce rows and at what depth: menus
// and choices nest their children, symbol children stay at the symbol's
// depth, and children of hidden nodes attach to the nearest visible
// ancestor.
func TestVisibleRows(t *testing.T) {
	cfg := loadString(t, `
menu "System"

config FOO
	bool "foo"
	default y

config SUB
	bool "sub"
	depends on FOO

config GATED
	bool "gated"
	depends on !FOO

endmenu

config HIDDEN
	bool
	default y

config CHILD
	bool "child"
	depends on HIDDEN

choice
	prompt "pick one"

config A
	bool "a"

config B
	bool "b"

endchoice

comment "done"
`)

	rows := visibleRows(cfg)

	want := []struct {
		kind  rowKind
		depth int
		text  string
		name  string
	}{
		{rowMenu, 0, "System", ""},
		{rowSymbol, 1, "foo", "FOO"},
		{rowSymbol, 1, "sub", "SUB"},
		{rowSymbol, 0, "child", "CHILD"},
		{rowChoice, 0, "pick one", ""},
		{rowSymbol, 1, "a", "A"},
		{rowSymbol, 1, "b", "B"},
		{rowComment, 0, "done", ""},
	}

	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(rows), len(want), rows)
	}

	for i, w := range want {
		r := rows[i]
		if r.kind != w.kind || r.depth != w.depth ||
			r.text != w.text || r.name != w.name {
			t.Errorf("row %d = kind %v depth %d text %q name %q, want %+v",
				i, r.kind, r.depth, r.text, r.name, w)
		}
	}
}

func TestMarker(t *testing.T) {
	cfg := loadString(t, `
config MODULES
	bool "modules"
	default y

config FOO
	bool "foo"
	default y

config TRI
	tristate "tri"
	default m

config PIN
	bool "pin"

config SEL
	bool "sel"
	default y
	select PIN

config LIMITED
	tristate "limited"

config FORCE
	tristate "force"
	default m
	select LIMITED

config MSG
	string "msg"
	default "hello"

config NUM
	int "num"
	default 4

choice
	prompt "pick one"

config A
	bool "a"

config B
	bool "b"

endchoice
`)

	tests := []struct {
		name string
		want string
	}{
		{"FOO", "[y]"},
		{"TRI", "<M>"},
		{"PIN", "-y-"},
		{"LIMITED", "{M}"},
		{"MSG", "(hello)"},
		{"NUM", "(4)"},
		{"A", "<--"},
		{"B", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := marker(sym(t, cfg, tt.name)); got != tt.want {
				t.Errorf("marker(%s) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

// TestToggle checks the browse-mode value cycle: bools flip, m-capable
// tristates cycle through y, m, and n, and pinned symbols reject the
// assignment.
func TestToggle(t *testing.T) {
	cfg := loadString(t, `
config MODULES
	bool "modules"
	default y

config FOO
	bool "foo"
	default y

config TRI
	tristate "tri"

config PIN
	bool "pin"

config SEL
	bool "sel"
	default y
	select PIN
`)

	foo := sym(t, cfg, "FOO")

	for _, want := range []kconfig.Tri{kconfig.N, kconfig.Y} {
		if !toggle(foo) {
			t.Fatal("toggle(FOO) rejected")
		}

		if got := foo.TriValue(); got != want {
			t.Errorf("FOO = %v, want %v", got, want)
		}
	}

	tri := sym(t, cfg, "TRI")

	for _, want := range []kconfig.Tri{kconfig.Y, kconfig.M, kconfig.N} {
		if !toggle(tri) {
			t.Fatal("toggle(TRI) rejected")
		}

		if got := tri.TriValue(); got != want {
			t.Errorf("TRI = %v, want %v", got, want)
		}
	}

	pin := sym(t, cfg, "PIN")

	if toggle(pin) {
		t.Error("toggle(PIN) accepted an unassignable value")
	}

	if got := pin.TriValue(); got != kconfig.Y {
		t.Errorf("PIN = %v, want y", got)
	}
}

// TestToggleWithoutModules checks that a tristate behaves like a bool when
// m is not available.
func TestToggleWithoutModules(t *testing.T) {
	cfg := loadString(t, `
config TRI
	tristate "tri"
`)

	tri := sym(t, cfg, "TRI")

	for _, want := range []kconfig.Tri{kconfig.Y, kconfig.N} {
		if !toggle(tri) {
			t.Fatal("toggle(TRI) rejected")
		}

		if got := tri.TriValue(); got != want {
			t.Errorf("TRI = %v, want %v", got, want)
		}
	}
}
