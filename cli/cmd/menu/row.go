package menu

import "github.com/ardnew/kconf/kconfig"

// rowKind discriminates what a browser row displays.
type rowKind int

const (
	rowSymbol rowKind = iota
	rowChoice
	rowMenu
	rowComment
)

// row is one line of the browser, a menu node that currently has a
// visible prompt.
type row struct {
	node  kconfig.MenuNode
	kind  rowKind
	depth int
	text  string // prompt text
	name  string // symbol or choice name, empty otherwise
}

// visibleRows collects the rows the browser shows, depth-first in menu
// order. Nodes without a prompt and nodes whose prompt condition evaluates
// to n produce no row, but their children are still walked and attach to
// the nearest visible ancestor. Untyped symbols are skipped the same way.
func visibleRows(cfg *kconfig.Config) []row {
	var rows []row

	for node, ok := cfg.Top().FirstChild(); ok; node, ok = node.Next() {
		rows = walkRows(rows, node, 0)
	}

	return rows
}

func walkRows(rows []row, node kconfig.MenuNode, depth int) []row {
	childDepth := depth

	if r, ok := nodeRow(node, depth); ok {
		rows = append(rows, r)

		// Only menus and choices nest their children. Children of symbol
		// nodes (implied submenus) stay at the symbol's own depth.
		if r.kind == rowMenu || r.kind == rowChoice {
			childDepth = depth + 1
		}
	}

	for child, ok := node.FirstChild(); ok; child, ok = child.Next() {
		rows = walkRows(rows, child, childDepth)
	}

	return rows
}

// nodeRow builds the row for one node, reporting false for nodes the
// browser hides.
func nodeRow(node kconfig.MenuNode, depth int) (row, bool) {
	text, cond, ok := node.Prompt()
	if !ok || cond.Value() == kconfig.N {
		return row{}, false
	}

	r := row{node: node, depth: depth, text: text}

	switch node.Kind() {
	case kconfig.ItemMenu:
		r.kind = rowMenu

	case kconfig.ItemComment:
		r.kind = rowComment

	case kconfig.ItemChoice:
		r.kind = rowChoice

		choice, _ := node.Choice()
		r.name = choice.Name()

	case kconfig.ItemSymbol:
		sym, _ := node.Symbol()
		if sym.Type() == kconfig.TypeUnknown {
			return row{}, false
		}

		r.kind = rowSymbol
		r.name = sym.Name()

	default:
		return row{}, false
	}

	return r, true
}

// marker renders the value column for a symbol row, using the bracket
// shapes of the C menuconfig: [ ] for bool, < > for tristate, { } for
// tristates limited to m and y, - - for symbols pinned to their only
// assignable value, and (value) for string, int, and hex symbols. Symbols
// in choices in y mode show <-- when selected.
func marker(sym kconfig.Symbol) string {
	switch sym.Type() {
	case kconfig.TypeString, kconfig.TypeInt, kconfig.TypeHex:
		return "(" + sym.StrValue() + ")"
	}

	// The choice mode is an upper bound on the visibility of its symbols,
	// so a choice symbol's own visibility tells whether the choice is in
	// y mode.
	if choice, ok := sym.Choice(); ok && sym.Visibility() == kconfig.Y {
		if sel, selOK := choice.Selection(); selOK && sel == sym {
			return "<--"
		}

		return "   "
	}

	tri := [...]string{"n", "M", "y"}[sym.TriValue()]

	assignable := sym.Assignable()
	if len(assignable) == 1 {
		return "-" + tri + "-"
	}

	if sym.Type() == kconfig.TypeBool {
		return "[" + tri + "]"
	}

	if len(assignable) == 2 && assignable[0] == kconfig.M {
		return "{" + tri + "}"
	}

	return "<" + tri + ">"
}

// toggle advances a bool or tristate symbol to its next value and reports
// whether the assignment was accepted. Bools flip between y and n, and
// tristates cycle y, m, n, behaving like bools when m is not assignable.
func toggle(sym kconfig.Symbol) bool {
	hasM := false

	for _, v := range sym.Assignable() {
		if v == kconfig.M {
			hasM = true
		}
	}

	if sym.Type() == kconfig.TypeTristate && hasM {
		switch sym.TriValue() {
		case kconfig.Y:
			return sym.SetTri(kconfig.M)
		case kconfig.M:
			return sym.SetTri(kconfig.N)
		default:
			return sym.SetTri(kconfig.Y)
		}
	}

	if sym.TriValue() == kconfig.Y {
		return sym.SetTri(kconfig.N)
	}

	return sym.SetTri(kconfig.Y)
}
