package menu

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/kconf/kconfig"
	"github.com/ardnew/kconf/log"
)

// viewMode selects which surface has input focus.
type viewMode int

const (
	modeBrowse viewMode = iota
	modeEdit
	modeFind
	modeHelp
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// model is the Bubble Tea model for the configuration browser.
type model struct {
	ctxFunc  func() context.Context
	cfg      *kconfig.Config
	file     string // configuration file saved to and reloaded from
	header   string // custom file header, empty for the default
	rows     []row
	texts    []string // per-row fuzzy search text
	cursor   int
	top      int // first row in the viewport
	width    int
	height   int
	mode     viewMode
	input    textinput.Model // shared by edit and find modes
	matches  fuzzy.Matches   // find-mode results over texts
	findIdx  int             // selected find match
	help     string          // rendered help view content
	status   string          // transient status line, already styled
	modified bool
	confirm  bool // quit pressed with unsaved changes
	quitting bool
}

func newModel(ctx context.Context, cfg *kconfig.Config, file, header string) model {
	// Symbol assignments from inside the browser can be clamped or
	// rejected, which the status line already reports. Logged warnings
	// would tear the alternate screen mid-frame.
	cfg.DisableWarnings()

	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	m := model{
		ctxFunc: func() context.Context { return ctx },
		cfg:     cfg,
		file:    file,
		header:  header,
		input:   ti,
		width:   defaultWidth,
		height:  defaultHeight,
	}

	m.rebuild()

	return m
}

// rebuild recomputes the visible rows after a value change, keeping the
// cursor on the same node when it is still visible.
func (m *model) rebuild() {
	var keep kconfig.MenuNode

	held := false
	if m.cursor < len(m.rows) {
		keep, held = m.rows[m.cursor].node, true
	}

	m.rows = visibleRows(m.cfg)
	m.texts = make([]string, len(m.rows))

	for i, r := range m.rows {
		if r.name != "" {
			m.texts[i] = r.name + " " + r.text
		} else {
			m.texts[i] = r.text
		}
	}

	if held {
		for i, r := range m.rows {
			if r.node == keep {
				m.cursor = i
				m.scroll()

				return
			}
		}
	}

	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}

	m.scroll()
}

// viewport is the number of rows the list area can show.
func (m model) viewport() int {
	// One header line above the list, status and hint lines below it.
	v := m.height - 4
	if v < 1 {
		v = 1
	}

	return v
}

// scroll moves the viewport to keep the cursor visible.
func (m *model) scroll() {
	visible := m.viewport()

	if m.cursor < m.top {
		m.top = m.cursor
	}

	if m.cursor >= m.top+visible {
		m.top = m.cursor - visible + 1
	}

	if m.top < 0 {
		m.top = 0
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		m.scroll()

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	log.TraceContext(
		m.ctxFunc(),
		"menu keypress",
		slog.String("key", msg.String()),
		slog.Int("mode", int(m.mode)),
	)

	switch m.mode {
	case modeEdit:
		return m.handleEditKey(msg)

	case modeFind:
		return m.handleFindKey(msg)

	case modeHelp:
		return m.handleHelpKey(msg)
	}

	return m.handleBrowseKey(msg)
}

func (m model) handleBrowseKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if m.modified && !m.confirm {
			m.confirm = true
			m.status = errorStyle.Render(
				"unsaved changes: press q again to quit, or s to save first")

			return m, nil
		}

		m.quitting = true

		return m, tea.Quit

	case "up", "k":
		m.confirm, m.status = false, ""
		if m.cursor > 0 {
			m.cursor--
		}

		m.scroll()

		return m, nil

	case "down", "j":
		m.confirm, m.status = false, ""
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

		m.scroll()

		return m, nil

	case "pgup":
		m.confirm, m.status = false, ""
		m.cursor = max(0, m.cursor-m.viewport())
		m.scroll()

		return m, nil

	case "pgdown":
		m.confirm, m.status = false, ""
		m.cursor = min(len(m.rows)-1, m.cursor+m.viewport())
		if m.cursor < 0 {
			m.cursor = 0
		}

		m.scroll()

		return m, nil

	case "home", "g":
		m.confirm, m.status = false, ""
		m.cursor = 0
		m.scroll()

		return m, nil

	case "end", "G":
		m.confirm, m.status = false, ""
		m.cursor = max(0, len(m.rows)-1)
		m.scroll()

		return m, nil

	case "enter", " ":
		m.confirm = false

		return m.activate()

	case "s":
		m.confirm = false

		return m.save()

	case "r":
		m.confirm = false

		return m.reload()

	case "h", "?":
		m.confirm = false

		return m.showHelp()

	case "/":
		m.confirm, m.status = false, ""
		m.mode = modeFind
		m.matches = nil
		m.findIdx = 0
		m.input.SetValue("")
		m.input.Focus()

		return m, textinput.Blink
	}

	return m, nil
}

// activate applies the selection action to the cursor row: toggling bool
// and tristate symbols in place and opening the inline editor for string,
// int, and hex symbols.
func (m model) activate() (model, tea.Cmd) {
	if m.cursor >= len(m.rows) {
		return m, nil
	}

	r := m.rows[m.cursor]
	if r.kind != rowSymbol {
		return m, nil
	}

	sym, _ := r.node.Symbol()

	switch sym.Type() {
	case kconfig.TypeString, kconfig.TypeInt, kconfig.TypeHex:
		if sym.Visibility() == kconfig.N {
			m.status = errorStyle.Render(sym.Name() + " cannot be changed here")

			return m, nil
		}

		m.mode = modeEdit
		m.status = ""
		m.input.SetValue(sym.StrValue())
		m.input.CursorEnd()
		m.input.Focus()

		return m, textinput.Blink
	}

	if toggle(sym) {
		m.modified = true
		m.status = ""
	} else {
		m.status = errorStyle.Render(sym.Name() + " cannot be changed here")
	}

	m.rebuild()

	return m, nil
}

// save writes the configuration file.
func (m model) save() (model, tea.Cmd) {
	header := m.header
	if header == "" {
		header = kconfig.DefaultConfigHeader
	}

	if err := m.cfg.WriteConfig(m.file, header); err != nil {
		m.status = errorStyle.Render("save failed: " + err.Error())

		return m, nil
	}

	log.DebugContext(
		m.ctxFunc(),
		"menu saved",
		slog.String("file", m.file),
	)

	m.modified = false
	m.status = statusStyle.Render("configuration saved to " + m.file)

	return m, nil
}

// reload discards in-memory values and loads the configuration file again.
func (m model) reload() (model, tea.Cmd) {
	if _, err := os.Stat(m.file); err != nil {
		m.status = errorStyle.Render("cannot reload: " + err.Error())

		return m, nil
	}

	if err := m.cfg.LoadConfig(m.file, true); err != nil {
		m.status = errorStyle.Render("reload failed: " + err.Error())

		return m, nil
	}

	m.modified = false
	m.status = statusStyle.Render("configuration reloaded from " + m.file)
	m.rebuild()

	return m, nil
}

// showHelp opens the help view for the cursor row's symbol.
func (m model) showHelp() (model, tea.Cmd) {
	if m.cursor >= len(m.rows) || m.rows[m.cursor].kind != rowSymbol {
		return m, nil
	}

	sym, _ := m.rows[m.cursor].node.Symbol()

	var b strings.Builder

	b.WriteString(titleStyle.Render(sym.Name()))
	b.WriteString("\n\n")

	help := "No help defined"
	for _, node := range sym.Nodes() {
		if h, ok := node.Help(); ok {
			help = strings.TrimRight(h, "\n")

			break
		}
	}

	b.WriteString(help)
	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render(strings.TrimRight(sym.String(), "\n")))

	m.help = b.String()
	m.mode = modeHelp

	return m, nil
}

func (m model) handleEditKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = modeBrowse
		m.input.Blur()

		return m, nil

	case "enter":
		sym, _ := m.rows[m.cursor].node.Symbol()

		if sym.SetValue(m.input.Value()) {
			m.modified = true
			m.status = ""
		} else {
			m.status = errorStyle.Render(fmt.Sprintf(
				"invalid %s value %q for %s",
				sym.Type(), m.input.Value(), sym.Name()))
		}

		m.mode = modeBrowse
		m.input.Blur()
		m.rebuild()

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleFindKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = modeBrowse
		m.input.Blur()
		m.matches = nil

		return m, nil

	case "enter":
		if len(m.matches) > 0 {
			m.cursor = m.matches[m.findIdx].Index
			m.scroll()
		}

		m.mode = modeBrowse
		m.input.Blur()
		m.matches = nil

		return m, nil

	case "up", "shift+tab":
		if len(m.matches) > 0 {
			m.findIdx--
			if m.findIdx < 0 {
				m.findIdx = len(m.matches) - 1
			}
		}

		return m, nil

	case "down", "tab":
		if len(m.matches) > 0 {
			m.findIdx = (m.findIdx + 1) % len(m.matches)
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.matches = fuzzy.Find(m.input.Value(), m.texts)
	m.findIdx = 0

	return m, cmd
}

func (m model) handleHelpKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "h", "?", "enter", "ctrl+c":
		m.mode = modeBrowse
		m.help = ""
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.mode == modeHelp {
		b.WriteString(m.help)
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("esc back"))

		return b.String()
	}

	visible := m.viewport()
	for i := m.top; i < m.top+visible && i < len(m.rows); i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m model) renderHeader() string {
	title := m.cfg.MainmenuText()
	if title == "" {
		title = "Configuration"
	}

	name := m.file
	if m.modified {
		name += " *"
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(name)
	if gap < 1 {
		gap = 1
	}

	return titleStyle.Render(title) +
		strings.Repeat(" ", gap) +
		hintStyle.Render(name)
}

func (m model) renderRow(i int) string {
	if i == m.cursor {
		return selectedStyle.Render(m.rowText(i, false))
	}

	return m.rowText(i, true)
}

// rowText renders one row, plain when the selection bar will restyle it.
func (m model) rowText(i int, styled bool) string {
	r := m.rows[i]
	indent := strings.Repeat("  ", r.depth)

	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}

		return s.Render(text)
	}

	switch r.kind {
	case rowMenu:
		return indent + style(menuStyle, r.text)

	case rowChoice:
		return indent + style(choiceStyle, r.text)

	case rowComment:
		return indent + style(commentStyle, "-> "+r.text+" <-")
	}

	sym, _ := r.node.Symbol()

	line := indent + style(valueStyle, marker(sym)) + " " + r.text
	if r.name != "" {
		line += style(hintStyle, " ("+r.name+")")
	}

	return line
}

func (m model) renderFooter() string {
	switch m.mode {
	case modeEdit:
		return fmt.Sprintf("%s %s\n%s",
			titleStyle.Render(m.rows[m.cursor].name+" ="),
			m.input.View(),
			hintStyle.Render("enter apply  esc cancel"))

	case modeFind:
		return fmt.Sprintf("%s %s\n%s",
			titleStyle.Render("find:"),
			m.input.View(),
			m.renderFindBar())
	}

	var b strings.Builder

	if m.status != "" {
		b.WriteString(m.status)
	}

	b.WriteString("\n")
	b.WriteString(hintStyle.Render(
		"enter toggle/edit  / find  s save  r reload  h help  q quit"))

	return b.String()
}

// renderFindBar builds the single-line match bar, ellipsized to fit the
// terminal width. The selected match uses the selection style.
func (m model) renderFindBar() string {
	if len(m.matches) == 0 {
		return hintStyle.Render("no matches")
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range m.matches {
		text := m.rows[match.Index].name
		if text == "" {
			text = m.rows[match.Index].text
		}

		var rendered string
		if i == m.findIdx {
			rendered = selectedStyle.Render(text)
		} else {
			rendered = hintStyle.Render(text)
		}

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > m.width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)
		used += entryWidth
	}

	return b.String()
}
