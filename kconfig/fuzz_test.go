package kconfig

import (
	"testing"
	"unicode/utf8"
)

// FuzzLoadString tests the Kconfig parser with random inputs to find edge
// cases.
func FuzzLoadString(f *testing.F) {
	// Seed corpus with known valid inputs
	f.Add("config A\n\tbool \"a\"\n")
	f.Add("config A\n\tbool \"a\"\n\tdefault y\n")
	f.Add("config A\n\ttristate \"a\"\n\tselect B\n\nconfig B\n\ttristate \"b\"\n")
	f.Add("config A\n\tbool \"a\"\n\tdepends on B || !C\n")
	f.Add("mainmenu \"Top\"\n\nconfig A\n\tbool \"a\"\n")
	f.Add("menu \"m\"\nvisible if y\n\nconfig A\n\tbool \"a\"\n\nendmenu\n")
	f.Add("if y\n\nconfig A\n\tbool \"a\"\n\nendif\n")
	f.Add("choice\n\tprompt \"pick\"\n\nconfig X\n\tbool \"x\"\n\nendchoice\n")
	f.Add("comment \"note\"\n")
	f.Add("config S\n\tstring \"s\"\n\tdefault \"say \\\"hi\\\"\"\n")
	f.Add("config I\n\tint \"i\"\n\tdefault 10\n\trange 1 100\n")
	f.Add("config H\n\thex \"h\"\n\tdefault 0x1F\n")
	f.Add("config A\n\tbool \"a\"\n\thelp\n\t  First line.\n\n\t  More.\n")
	f.Add("source \"no/such/file\"\n")

	// And with known malformed ones
	f.Add("")
	f.Add("bogus\n")
	f.Add("config\n")
	f.Add("config A\n\tbool \"a\" extra\n")
	f.Add("config A\n\tbool \"a\"\n\tdepends on (B\n")
	f.Add("config A\n\tbool \"unterminated\n")
	f.Add("menu \"m\"\n")
	f.Add("endif\n")

	f.Fuzz(func(t *testing.T, input string) {
		// Skip invalid UTF-8
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		// The parser should not panic on any input
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parser panicked on input %q: %v", input, r)
			}
		}()

		cfg, err := LoadString(input, WithEnv([]string{}))

		// It's OK for parsing to fail, but it shouldn't panic
		if err != nil {
			if err.Error() == "" {
				t.Errorf("empty error message for input %q", input)
			}

			return
		}

		// If parsing succeeded, value calculation must hold up too
		for _, s := range cfg.Symbols() {
			_ = s.StrValue()
			_ = s.Visibility()
		}
	})
}

const evalFuzzSrc = `
config MODULES
	bool "modules"
	default y

config FOO
	bool "foo"
	default y

config BAR
	tristate "bar"
	default m

config NAME
	string "name"
	default "hello"

config COUNT
	int "count"
	default 10
`

// FuzzEvalString tests expression parsing and evaluation with random
// inputs to find edge cases.
func FuzzEvalString(f *testing.F) {
	// Seed corpus with known valid expressions
	f.Add("y")
	f.Add("n")
	f.Add("m")
	f.Add("FOO")
	f.Add("!FOO")
	f.Add("FOO && BAR")
	f.Add("FOO || !BAR")
	f.Add("(FOO)")
	f.Add(`NAME = "hello"`)
	f.Add(`NAME != "x"`)
	f.Add("COUNT < 20")
	f.Add("COUNT >= 10")
	f.Add("FOO = y")
	f.Add("UNDEF")

	// And with known malformed ones
	f.Add("")
	f.Add("&&")
	f.Add("(FOO")
	f.Add("!")
	f.Add("FOO BAR")

	f.Fuzz(func(t *testing.T, input string) {
		// Skip invalid UTF-8
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		// Evaluation should not panic on any input
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("evaluation panicked on input %q: %v", input, r)
			}
		}()

		cfg, err := LoadString(evalFuzzSrc, WithEnv([]string{}))
		if err != nil {
			t.Fatalf("load error: %v", err)
		}

		v, err := cfg.EvalString(input)
		if err != nil {
			return
		}

		if v != N && v != M && v != Y {
			t.Errorf("EvalString(%q) returned invalid tri %d", input, v)
		}
	})
}

const dotconfigFuzzSrc = `
config MODULES
	bool "modules"
	default y

config A
	bool "a"

config T
	tristate "t"

config NAME
	string "name"

config COUNT
	int "count"
	default 5

config ADDR
	hex "addr"

choice
	prompt "pick"

config U1
	bool "u1"

config U2
	bool "u2"

endchoice
`

// FuzzLoadConfig tests .config parsing with random inputs to find edge
// cases.
func FuzzLoadConfig(f *testing.F) {
	// Seed corpus with known valid inputs
	f.Add("CONFIG_A=y\n")
	f.Add("CONFIG_T=m\n")
	f.Add("CONFIG_NAME=\"hello\"\n")
	f.Add("CONFIG_NAME=\"say \\\"hi\\\"\"\n")
	f.Add("CONFIG_COUNT=42\n")
	f.Add("CONFIG_ADDR=0x1F\n")
	f.Add("# CONFIG_A is not set\n")
	f.Add("CONFIG_U2=y\n")
	f.Add("# plain comment\n")
	f.Add("")

	// And with inputs that only warn
	f.Add("CONFIG_A=q\n")
	f.Add("CONFIG_NAME=unquoted\n")
	f.Add("garbage line\n")
	f.Add("CONFIG_A=y\nCONFIG_A=n\n")
	f.Add("CONFIG_UNDEFINED=y\n")
	f.Add("CONFIG_U1=y\nCONFIG_U2=m\n")

	f.Fuzz(func(t *testing.T, input string) {
		// Skip invalid UTF-8
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		// Loading should not panic on any input
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("config loading panicked on input %q: %v", input, r)
			}
		}()

		cfg, err := LoadString(dotconfigFuzzSrc,
			WithEnv([]string{}),
			WithOverlay(map[string]string{".config": input}))
		if err != nil {
			t.Fatalf("load error: %v", err)
		}

		if err := cfg.LoadConfig(".config", true); err != nil {
			return
		}

		// Malformed content warns rather than fails, and the resulting
		// values must still render
		for _, s := range cfg.Symbols() {
			_ = s.ConfigString()
		}
	})
}
