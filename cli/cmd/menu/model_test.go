package menu

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/kconf/kconfig"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// TestModelActivateToggle checks that activating a bool row toggles the
// symbol and marks the configuration modified.
func TestModelActivateToggle(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
`)

	m := newModel(context.Background(), cfg, "unused", "")

	if len(m.rows) != 1 || m.rows[0].name != "FOO" {
		t.Fatalf("rows = %+v, want one FOO row", m.rows)
	}

	m, _ = m.activate()

	if !m.modified {
		t.Error("toggle did not mark the model modified")
	}

	if got := sym(t, cfg, "FOO").TriValue(); got != kconfig.Y {
		t.Errorf("FOO = %v, want y", got)
	}

	m, _ = m.activate()

	if got := sym(t, cfg, "FOO").TriValue(); got != kconfig.N {
		t.Errorf("FOO = %v, want n after second toggle", got)
	}
}

// TestModelRebuildKeepsCursor checks that the cursor follows its node when
// a value change hides rows above it.
func TestModelRebuildKeepsCursor(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
	default y

config GATED
	bool "gated"
	depends on FOO

config BAR
	bool "bar"
`)

	m := newModel(context.Background(), cfg, "unused", "")

	if len(m.rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(m.rows))
	}

	m.cursor = 2

	if m.rows[m.cursor].name != "BAR" {
		t.Fatalf("cursor row = %q, want BAR", m.rows[m.cursor].name)
	}

	sym(t, cfg, "FOO").SetTri(kconfig.N)
	m.rebuild()

	if len(m.rows) != 2 {
		t.Fatalf("got %d rows after hiding GATED, want 2", len(m.rows))
	}

	if m.cursor != 1 || m.rows[m.cursor].name != "BAR" {
		t.Errorf("cursor = %d on %q, want 1 on BAR",
			m.cursor, m.rows[m.cursor].name)
	}
}

// TestModelSave checks that saving writes the configuration file and
// clears the modified flag.
func TestModelSave(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
`)

	file := filepath.Join(t.TempDir(), ".config")
	m := newModel(context.Background(), cfg, file, "")

	m, _ = m.activate()

	m, _ = m.save()

	if m.modified {
		t.Error("save did not clear the modified flag")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	want := kconfig.DefaultConfigHeader + "CONFIG_FOO=y\n"
	if got := string(data); got != want {
		t.Errorf("config = %q, want %q", got, want)
	}
}

// TestModelSaveCustomHeader checks that a custom header replaces the
// default one verbatim.
func TestModelSaveCustomHeader(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
	default y
`)

	file := filepath.Join(t.TempDir(), ".config")
	m := newModel(context.Background(), cfg, file, "# custom header\n")

	m, _ = m.save()

	if m.status == "" {
		t.Error("save left no status message")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	want := "# custom header\nCONFIG_FOO=y\n"
	if got := string(data); got != want {
		t.Errorf("config = %q, want %q", got, want)
	}
}

// TestModelEditFlow checks the inline editor: activating a string row
// opens edit mode seeded with the current value, and enter applies it.
func TestModelEditFlow(t *testing.T) {
	cfg := loadString(t, `
config MSG
	string "msg"
	default "hello"
`)

	m := newModel(context.Background(), cfg, "unused", "")

	m, _ = m.activate()

	if m.mode != modeEdit {
		t.Fatalf("mode = %v, want edit", m.mode)
	}

	if got := m.input.Value(); got != "hello" {
		t.Errorf("editor seeded with %q, want %q", got, "hello")
	}

	m.input.SetValue("world")

	m, _ = m.handleEditKey(tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeBrowse {
		t.Errorf("mode = %v, want browse after apply", m.mode)
	}

	if !m.modified {
		t.Error("apply did not mark the model modified")
	}

	if got := sym(t, cfg, "MSG").StrValue(); got != "world" {
		t.Errorf("MSG = %q, want %q", got, "world")
	}
}

// TestModelEditRejectsInvalid checks that an invalid value is reported on
// the status line and leaves the symbol alone.
func TestModelEditRejectsInvalid(t *testing.T) {
	cfg := loadString(t, `
config NUM
	int "num"
	default 4
`)

	m := newModel(context.Background(), cfg, "unused", "")

	m, _ = m.activate()
	m.input.SetValue("abc")

	m, _ = m.handleEditKey(tea.KeyMsg{Type: tea.KeyEnter})

	if m.modified {
		t.Error("invalid value marked the model modified")
	}

	if m.status == "" {
		t.Error("invalid value left no status message")
	}

	if got := sym(t, cfg, "NUM").StrValue(); got != "4" {
		t.Errorf("NUM = %q, want unchanged 4", got)
	}
}

// TestModelFind checks that typing in find mode narrows the matches and
// enter jumps to the selected one.
func TestModelFind(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"

config BAR
	bool "bar"

config BAZ
	bool "baz"
`)

	m := newModel(context.Background(), cfg, "unused", "")

	m, _ = m.handleBrowseKey(keyRune('/'))

	if m.mode != modeFind {
		t.Fatalf("mode = %v, want find", m.mode)
	}

	m, _ = m.handleFindKey(keyRune('b'))

	if len(m.matches) != 2 {
		t.Fatalf("got %d matches for 'b', want 2", len(m.matches))
	}

	m, _ = m.handleFindKey(tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeBrowse {
		t.Errorf("mode = %v, want browse after jump", m.mode)
	}

	if got := m.rows[m.cursor].name; got != "BAR" {
		t.Errorf("cursor on %q, want BAR", got)
	}
}

// TestModelQuitConfirm checks that quitting with unsaved changes takes a
// second keypress.
func TestModelQuitConfirm(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
`)

	m := newModel(context.Background(), cfg, "unused", "")
	m.modified = true

	m, cmd := m.handleBrowseKey(keyRune('q'))

	if cmd != nil || m.quitting {
		t.Fatal("first quit keypress quit without confirming")
	}

	if m.status == "" {
		t.Error("confirmation left no status message")
	}

	m, cmd = m.handleBrowseKey(keyRune('q'))

	if cmd == nil || !m.quitting {
		t.Error("second quit keypress did not quit")
	}
}

// TestModelHelp checks the help view contents for symbols with and
// without help text.
func TestModelHelp(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
	help
	  Help for foo.

config BARE
	bool "bare"
`)

	m := newModel(context.Background(), cfg, "unused", "")

	m, _ = m.showHelp()

	if m.mode != modeHelp {
		t.Fatalf("mode = %v, want help", m.mode)
	}

	if !strings.Contains(m.help, "Help for foo.") {
		t.Errorf("help = %q, want the symbol's help text", m.help)
	}

	m, _ = m.handleHelpKey(tea.KeyMsg{Type: tea.KeyEscape})

	if m.mode != modeBrowse {
		t.Errorf("mode = %v, want browse after closing help", m.mode)
	}

	m.cursor = 1

	m, _ = m.showHelp()

	if !strings.Contains(m.help, "No help defined") {
		t.Errorf("help = %q, want the no-help placeholder", m.help)
	}
}

// TestModelWindowSize checks that resize messages reach the layout.
func TestModelWindowSize(t *testing.T) {
	cfg := loadString(t, `
config FOO
	bool "foo"
`)

	m := newModel(context.Background(), cfg, "unused", "")

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	resized, ok := updated.(model)
	if !ok {
		t.Fatalf("Update returned %T, want model", updated)
	}

	if resized.width != 100 || resized.height != 40 {
		t.Errorf("size = %dx%d, want 100x40", resized.width, resized.height)
	}
}
