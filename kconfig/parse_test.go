package kconfig

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadString_ParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
		line  int
	}{
		{
			name:  "unrecognized construct",
			input: "bogus\n",
			msg:   "unrecognized construct",
			line:  1,
		},
		{
			name:  "stray endif",
			input: "endif\n",
			msg:   "unrecognized construct",
			line:  1,
		},
		{
			name:  "config without symbol",
			input: "config\n",
			msg:   "expected nonconstant symbol",
			line:  1,
		},
		{
			name:  "config with constant",
			input: "config y\n",
			msg:   "expected nonconstant symbol",
			line:  1,
		},
		{
			name:  "trailing tokens",
			input: "config A extra\n",
			msg:   "extra tokens at end of line",
			line:  1,
		},
		{
			name:  "mainmenu without title",
			input: "mainmenu\n",
			msg:   "expected string",
			line:  1,
		},
		{
			name:  "unterminated string",
			input: "config A\n\tbool \"oops\n",
			msg:   "unterminated string",
			line:  2,
		},
		{
			name:  "depends without on",
			input: "config A\n\tbool\n\tdepends B\n",
			msg:   `expected "on" after "depends"`,
			line:  3,
		},
		{
			name:  "malformed expression",
			input: "config A\n\tbool\n\tdepends on &&\n",
			msg:   "malformed expression",
			line:  3,
		},
		{
			name:  "unbalanced parenthesis",
			input: "config A\n\tbool\n\tdepends on (FOO\n",
			msg:   "malformed expression",
			line:  3,
		},
		{
			name:  "unrecognized option",
			input: "config A\n\tbool\n\toption bogus\n",
			msg:   "unrecognized option",
			line:  3,
		},
		{
			name:  "env without equals",
			input: "config A\n\tstring\n\toption env \"X\"\n",
			msg:   `expected "=" after "env"`,
			line:  3,
		},
		{
			name:  "env on menu",
			input: "menu \"m\"\n\toption env=\"X\"\nendmenu\n",
			msg:   "the 'env' option is only valid for symbols",
			line:  2,
		},
		{
			name:  "type on menu",
			input: "menu \"m\"\n\tbool \"b\"\nendmenu\n",
			msg:   "only symbols and choices can be given a type",
			line:  2,
		},
		{
			name:  "prompt on menu",
			input: "menu \"m\"\n\tprompt \"p\"\nendmenu\n",
			msg:   `"prompt" is only valid for symbols and choices`,
			line:  2,
		},
		{
			name:  "visible if on config",
			input: "config A\n\tbool\n\tvisible if y\n",
			msg:   `'visible if' is only valid for menus`,
			line:  3,
		},
		{
			name:  "optional on config",
			input: "config A\n\tbool\n\toptional\n",
			msg:   `"optional" is only valid for choices`,
			line:  3,
		},
		{
			name:  "select on choice",
			input: "choice\n\tprompt \"c\"\n\tselect FOO\nendchoice\n",
			msg:   "only symbols can select",
			line:  3,
		},
		{
			name:  "imply on choice",
			input: "choice\n\tprompt \"c\"\n\timply FOO\nendchoice\n",
			msg:   "only symbols can imply",
			line:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadString(tt.input, WithEnv([]string{}))
			if err == nil {
				t.Fatal("expected error")
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %T: %v", err, err)
			}

			if pe.Msg != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, pe.Msg)
			}

			if pe.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, pe.Line)
			}

			if !errors.Is(err, ErrSyntax) && !errors.Is(err, ErrMalformedExpr) {
				t.Errorf("expected a syntax category, got %v", err)
			}
		})
	}
}

func TestLoadString_MissingEndToken(t *testing.T) {
	for _, input := range []string{
		"menu \"m\"\nconfig A\n\tbool\n",
		"if FOO\nconfig A\n\tbool\n",
		"choice\n\tprompt \"c\"\nconfig A\n\tbool \"a\"\n",
	} {
		_, err := LoadString(input, WithEnv([]string{}))
		if !errors.Is(err, ErrMissingEndToken) {
			t.Fatalf("expected ErrMissingEndToken, got %v", err)
		}

		if !strings.Contains(err.Error(), "Unexpected end of file") {
			t.Errorf("unexpected message: %v", err)
		}
	}
}

func TestLoadString_HelpText(t *testing.T) {
	cfg := loadString(t,
		"config FOO\n"+
			"\tbool \"foo\"\n"+
			"\thelp\n"+
			"\t  First line.\n"+
			"\n"+
			"\t  Second paragraph:\n"+
			"\t    indented detail\n"+
			"\tdefault y\n")

	foo := sym(t, cfg, "FOO")

	help, ok := foo.Nodes()[0].Help()
	if !ok {
		t.Fatal("expected help text")
	}

	want := "First line.\n\nSecond paragraph:\n  indented detail"
	if help != want {
		t.Errorf("expected %q, got %q", want, help)
	}

	// The line terminating the help text is parsed as a regular property.
	if foo.TriValue() != Y {
		t.Errorf("expected default applied after help, got %v", foo.TriValue())
	}
}

func TestLoadString_HelpAtEOF(t *testing.T) {
	cfg := loadString(t, "config FOO\n\tbool \"foo\"\n\thelp\n")

	if !hasWarning(cfg, "has 'help' but empty help text") {
		t.Errorf("expected empty help warning, got %v", cfg.Warnings())
	}

	help, ok := sym(t, cfg, "FOO").Nodes()[0].Help()
	if !ok || help != "" {
		t.Errorf("expected recorded empty help, got %q, %v", help, ok)
	}
}

func TestLoadString_PromptWarnings(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "first"
	prompt "second"

config BAR
	bool " padded "
`)

	if !hasWarning(cfg, "defined with multiple prompts in single location") {
		t.Errorf("expected multiple prompt warning, got %v", cfg.Warnings())
	}

	if !hasWarning(cfg, "has leading or trailing whitespace in its prompt") {
		t.Errorf("expected whitespace warning, got %v", cfg.Warnings())
	}

	text, _, ok := sym(t, cfg, "BAR").Nodes()[0].Prompt()
	if !ok || text != "padded" {
		t.Errorf("expected trimmed prompt, got %q", text)
	}
}

func TestLoadString_MultipleTypesWarning(t *testing.T) {
	cfg := loadString(t, `
config DUAL
	bool "b"
	int "i"
`)

	if !hasWarning(cfg, "defined with multiple types") {
		t.Errorf("expected type mismatch warning, got %v", cfg.Warnings())
	}

	if got := sym(t, cfg, "DUAL").OrigType(); got != TypeInt {
		t.Errorf("expected the last type to win, got %v", got)
	}
}

func TestLoadString_MenuconfigWithoutPrompt(t *testing.T) {
	cfg := loadString(t, "menuconfig MC\n\tbool\n")

	if !hasWarning(cfg, "has no prompt") {
		t.Errorf("expected menuconfig prompt warning, got %v", cfg.Warnings())
	}
}

func TestLoadString_MenuStructure(t *testing.T) {
	cfg := loadString(t, `
config NET
	bool "networking"

menu "Networking options"
	depends on NET

config WIFI
	bool "wifi"

endmenu

comment "end of networking"
`)

	menus := cfg.Menus()
	if len(menus) != 1 {
		t.Fatalf("expected one menu, got %d", len(menus))
	}

	text, _, _ := menus[0].Prompt()
	if text != "Networking options" {
		t.Errorf("unexpected menu prompt %q", text)
	}

	child, ok := menus[0].FirstChild()
	if !ok {
		t.Fatal("expected menu child")
	}

	ws, _ := child.Symbol()
	if ws.Name() != "WIFI" {
		t.Errorf("expected WIFI under menu, got %s", ws.Name())
	}

	if got := ws.DirectDep().String(); got != "NET" {
		t.Errorf("expected direct dep NET, got %q", got)
	}

	parent, ok := child.Parent()
	if !ok || parent.Kind() != ItemMenu {
		t.Error("expected menu parent")
	}

	comments := cfg.Comments()
	if len(comments) != 1 {
		t.Fatalf("expected one comment, got %d", len(comments))
	}

	text, _, _ = comments[0].Prompt()
	if text != "end of networking" {
		t.Errorf("unexpected comment prompt %q", text)
	}
}

func TestLoadString_IfBlockDissolved(t *testing.T) {
	cfg := loadString(t, `
config A
	bool "a"

if A

config B
	bool "b"

endif

config C
	bool "c"
`)

	var names []string

	for _, n := range cfg.Nodes(false) {
		if n.Kind() != ItemSymbol {
			t.Fatalf("unexpected node kind %v in finalized tree", n.Kind())
		}

		s, _ := n.Symbol()
		names = append(names, s.Name())
	}

	if len(names) != 3 || names[0] != "A" || names[1] != "B" || names[2] != "C" {
		t.Errorf("expected [A B C], got %v", names)
	}

	if got := sym(t, cfg, "B").DirectDep().String(); got != "A" {
		t.Errorf("expected if condition as direct dep, got %q", got)
	}

	// Constant symbols render quoted, like the C tools print them.
	if got := sym(t, cfg, "C").DirectDep().String(); got != `"y"` {
		t.Errorf("expected unconditional direct dep, got %q", got)
	}
}

func TestLoadString_PromptlessMenuFlattened(t *testing.T) {
	cfg := loadString(t, `
menu "shown"

config A
	bool "a"

endmenu
`)

	// The menu keeps its prompt and so survives; its child stays below it.
	top := cfg.Top()

	first, ok := top.FirstChild()
	if !ok || first.Kind() != ItemMenu {
		t.Fatal("expected menu as first child")
	}

	if _, ok := first.Next(); ok {
		t.Error("expected menu to be the only top-level node")
	}
}

func TestLoadString_MenuconfigAdoption(t *testing.T) {
	cfg := loadString(t, `
menuconfig MC
	bool "subsystem"

config CHILD
	bool "child"
	depends on MC

config OUTSIDE
	bool "outside"
`)

	mcNode := sym(t, cfg, "MC").Nodes()[0]

	child, ok := mcNode.FirstChild()
	if !ok {
		t.Fatal("expected adopted child under menuconfig")
	}

	cs, _ := child.Symbol()
	if cs.Name() != "CHILD" {
		t.Errorf("expected CHILD adopted, got %s", cs.Name())
	}

	parent, _ := child.Parent()
	ps, _ := parent.Symbol()

	if ps.Name() != "MC" {
		t.Errorf("expected CHILD's parent MC, got %s", ps.Name())
	}

	// OUTSIDE does not depend on MC and stays a sibling.
	next, ok := mcNode.Next()
	if !ok {
		t.Fatal("expected sibling after menuconfig")
	}

	os, _ := next.Symbol()
	if os.Name() != "OUTSIDE" {
		t.Errorf("expected OUTSIDE after MC, got %s", os.Name())
	}
}

func TestLoadString_NamedChoiceReuse(t *testing.T) {
	cfg := loadString(t, `
choice LOGGING
	prompt "log level"

config LOG_ERROR
	bool "error"

endchoice

choice LOGGING

config LOG_DEBUG
	bool "debug"

endchoice
`)

	choices := cfg.Choices()
	if len(choices) != 1 {
		t.Fatalf("expected one merged choice, got %d", len(choices))
	}

	ch := choices[0]
	if ch.Name() != "LOGGING" {
		t.Errorf("unexpected choice name %q", ch.Name())
	}

	members := ch.Symbols()
	if len(members) != 2 {
		t.Fatalf("expected two members, got %d", len(members))
	}

	if members[0].Name() != "LOG_ERROR" || members[1].Name() != "LOG_DEBUG" {
		t.Errorf("unexpected members %s, %s", members[0].Name(), members[1].Name())
	}

	if len(ch.Nodes()) != 2 {
		t.Errorf("expected two definition locations, got %d", len(ch.Nodes()))
	}
}

func TestLoadString_OptionEnv(t *testing.T) {
	cfg, err := LoadString(`
config SRCARCH
	string
	option env="SRCARCH"
`,
		WithEnv([]string{"SRCARCH=x86"}))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	s := sym(t, cfg, "SRCARCH")
	if got := s.StrValue(); got != "x86" {
		t.Errorf("expected x86, got %q", got)
	}

	if env, ok := s.EnvVar(); !ok || env != "SRCARCH" {
		t.Errorf("expected recorded env var, got %q, %v", env, ok)
	}

	// Environment-backed symbols never reach configuration files.
	if got := s.ConfigString(); got != "" {
		t.Errorf("expected empty config string, got %q", got)
	}

	// And user assignments to them are rejected.
	if s.SetValue("arm") {
		t.Error("expected assignment to env-backed symbol to fail")
	}

	if !hasWarning(cfg, "which is set from the environment") {
		t.Errorf("expected env assignment warning, got %v", cfg.Warnings())
	}
}

func TestLoadString_OptionEnvUnset(t *testing.T) {
	cfg := loadString(t, `
config MISSING
	string
	option env="MISSING"
`)

	if !hasWarning(cfg, "the environment variable MISSING is not set") {
		t.Errorf("expected unset env warning, got %v", cfg.Warnings())
	}

	if got := sym(t, cfg, "MISSING").StrValue(); got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
}

func TestLoadString_OptionModulesElsewhere(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
	option modules
`)

	if !hasWarning(cfg, "the 'modules' option is not supported") {
		t.Errorf("expected modules option warning, got %v", cfg.Warnings())
	}
}

func TestLoadString_OptionModulesOnModules(t *testing.T) {
	cfg := loadString(t, `
config MODULES
	bool "modules"
	option modules
`)

	if hasWarning(cfg, "the 'modules' option is not supported") {
		t.Errorf("unexpected modules warning: %v", cfg.Warnings())
	}
}

func TestLoadString_DefconfigListDuplicate(t *testing.T) {
	cfg := loadString(t, `
config LIST_A
	string
	option defconfig_list
	default "a_defconfig"

config LIST_B
	string
	option defconfig_list
	default "b_defconfig"
`)

	if !hasWarning(cfg, "'option defconfig_list' set on multiple symbols") {
		t.Errorf("expected duplicate defconfig_list warning, got %v", cfg.Warnings())
	}

	list, ok := cfg.DefconfigList()
	if !ok || list.Name() != "LIST_A" {
		t.Error("expected the first defconfig_list symbol to win")
	}
}
