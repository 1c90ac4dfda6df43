package kconfig

import (
	"fmt"
	"strings"
)

// ItemKind says what a menu node carries. If nodes exist only while parsing;
// finalization collapses them, so they never appear in the final tree.
type ItemKind int8

const (
	ItemNone ItemKind = iota
	ItemSymbol
	ItemChoice
	ItemMenu
	ItemComment
)

// String returns a short lowercase name for the item kind.
func (k ItemKind) String() string {
	switch k {
	case ItemNone:
		return "if"
	case ItemSymbol:
		return "symbol"
	case ItemChoice:
		return "choice"
	case ItemMenu:
		return "menu"
	case ItemComment:
		return "comment"
	default:
		return "unknown"
	}
}

// nodeRec is the arena record backing one menu node. Symbols and choices
// defined in several locations get one node per location; menus and
// comments are nodes with no backing item.
//
// The defaults, selects, implies, and ranges lists hold the properties
// written at this location only. Finalization copies them onto the backing
// symbol or choice, which accumulates properties across locations.
type nodeRec struct {
	kind   ItemKind
	sym    symID
	choice choiceID

	isMenuconfig bool

	hasPrompt  bool
	prompt     string
	promptCond exprID

	defaults []defaultProp
	selects  []targetProp
	implies  []targetProp
	ranges   []rangeProp

	// help holds the node's help text without a trailing newline. hasHelp
	// distinguishes an empty text from no help statement at all.
	hasHelp bool
	help    string

	// dep carries the node's 'depends on' dependencies, with parent
	// dependencies propagated in during finalization. visibility carries
	// 'visible if' and only applies to menus.
	dep        exprID
	visibility exprID

	parent nodeID
	next   nodeID
	list   nodeID

	filename string
	linenr   int
}

// nodeWalk iterates the menu tree depth first, excluding the top node. The
// explicit parent climb keeps the traversal flat no matter how deep the
// tree nests or how long sibling chains run.
type nodeWalk struct {
	cfg *Config
	cur nodeID
}

func (c *Config) startWalk() nodeWalk {
	return nodeWalk{cfg: c, cur: c.topNode}
}

// next advances to the following node in depth-first order, returning
// noNode once the tree is exhausted. Further calls keep returning noNode.
func (w *nodeWalk) next() nodeID {
	c := w.cfg

	if w.cur == noNode {
		return noNode
	}

	if w.cur == c.topNode {
		w.cur = c.nodes[w.cur].list

		return w.cur
	}

	nd := &c.nodes[w.cur]

	switch {
	case nd.list != noNode:
		w.cur = nd.list

	case nd.next != noNode:
		w.cur = nd.next

	default:
		// Climb until an unvisited sibling turns up. Running out of
		// parents means the walk is done; the top node has no next.
		n := w.cur

		for {
			n = c.nodes[n].parent
			if n == noNode {
				w.cur = noNode

				return noNode
			}

			if next := c.nodes[n].next; next != noNode {
				w.cur = next

				break
			}
		}
	}

	return w.cur
}

// nodeRefs appends every symbol and choice referenced by the node's
// properties and their conditions to the given lists, skipping duplicates.
func (c *Config) nodeRefs(id nodeID, syms []symID, chs []choiceID) ([]symID, []choiceID) {
	nd := &c.nodes[id]

	// The node dependencies catch a lone 'depends on' with no properties
	// to propagate it to.
	syms = c.exprSyms(nd.dep, syms)
	chs = c.exprChoices(nd.dep, chs)

	if nd.hasPrompt {
		syms = c.exprSyms(nd.promptCond, syms)
		chs = c.exprChoices(nd.promptCond, chs)
	}

	if nd.kind == ItemMenu {
		syms = c.exprSyms(nd.visibility, syms)
		chs = c.exprChoices(nd.visibility, chs)
	}

	for _, d := range nd.defaults {
		syms = c.exprSyms(d.val, syms)
		chs = c.exprChoices(d.val, chs)
		syms = c.exprSyms(d.cond, syms)
		chs = c.exprChoices(d.cond, chs)
	}

	for _, t := range nd.selects {
		syms = appendSym(syms, t.target)
		syms = c.exprSyms(t.cond, syms)
		chs = c.exprChoices(t.cond, chs)
	}

	for _, t := range nd.implies {
		syms = appendSym(syms, t.target)
		syms = c.exprSyms(t.cond, syms)
		chs = c.exprChoices(t.cond, chs)
	}

	for _, r := range nd.ranges {
		syms = appendSym(syms, r.low)
		syms = appendSym(syms, r.high)
		syms = c.exprSyms(r.cond, syms)
		chs = c.exprChoices(r.cond, chs)
	}

	return syms, chs
}

func appendSym(dst []symID, id symID) []symID {
	for _, have := range dst {
		if have == id {
			return dst
		}
	}

	return append(dst, id)
}

// nodeString renders the node in Kconfig syntax. Symbol and choice nodes
// show the properties written at this location, plus the options that live
// on the symbol itself.
func (c *Config) nodeString(id nodeID) string {
	if kind := c.nodes[id].kind; kind == ItemMenu || kind == ItemComment {
		return c.menuCommentNodeString(id)
	}

	return c.symChoiceNodeString(id)
}

func (c *Config) menuCommentNodeString(id nodeID) string {
	nd := &c.nodes[id]

	var b strings.Builder

	kw := "menu"
	if nd.kind == ItemComment {
		kw = "comment"
	}

	fmt.Fprintf(&b, "%s \"%s\"\n", kw, nd.prompt)

	if nd.dep != c.yExpr {
		fmt.Fprintf(&b, "\tdepends on %s\n", c.exprString(nd.dep))
	}

	if nd.kind == ItemMenu && nd.visibility != c.yExpr {
		fmt.Fprintf(&b, "\tvisible if %s\n", c.exprString(nd.visibility))
	}

	return b.String()
}

func (c *Config) symChoiceNodeString(id nodeID) string {
	nd := &c.nodes[id]

	var lines []string

	add := func(s string) { lines = append(lines, "\t"+s) }

	addCond := func(s string, cond exprID) {
		if cond != c.yExpr {
			s += " if " + c.exprString(cond)
		}

		add(s)
	}

	isSym := nd.kind == ItemSymbol

	var origType Type

	if isSym {
		rec := &c.syms[nd.sym]
		origType = rec.origType

		if nd.isMenuconfig {
			lines = append(lines, "menuconfig "+rec.name)
		} else {
			lines = append(lines, "config "+rec.name)
		}
	} else {
		rec := &c.choices[nd.choice]
		origType = rec.origType

		if rec.name != "" {
			lines = append(lines, "choice "+rec.name)
		} else {
			lines = append(lines, "choice")
		}
	}

	if origType != TypeUnknown {
		add(origType.String())
	}

	if nd.hasPrompt {
		addCond(`prompt "`+escapeString(nd.prompt)+`"`, nd.promptCond)
	}

	if isSym {
		rec := &c.syms[nd.sym]

		if rec.isAllnoconfigY {
			add("option allnoconfig_y")
		}

		if nd.sym == c.defconfigList {
			add("option defconfig_list")
		}

		if rec.hasEnvVar {
			add(`option env="` + rec.envVar + `"`)
		}

		if nd.sym == c.modules {
			add("option modules")
		}

		for _, r := range nd.ranges {
			addCond(fmt.Sprintf("range %s %s",
				c.symString(r.low), c.symString(r.high)), r.cond)
		}
	}

	for _, d := range nd.defaults {
		addCond("default "+c.exprString(d.val), d.cond)
	}

	if !isSym && c.choices[nd.choice].isOptional {
		add("optional")
	}

	if isSym {
		for _, t := range nd.selects {
			addCond("select "+c.symString(t.target), t.cond)
		}

		for _, t := range nd.implies {
			addCond("imply "+c.symString(t.target), t.cond)
		}
	}

	if nd.dep != c.yExpr {
		add("depends on " + c.exprString(nd.dep))
	}

	if nd.hasHelp {
		add("help")

		if nd.help != "" {
			for _, line := range strings.Split(nd.help, "\n") {
				add("  " + line)
			}
		}
	}

	return strings.Join(lines, "\n") + "\n"
}

// MenuNode is a handle on one node of the menu tree. Every definition
// location of a symbol or choice gets its own node, as do menus and
// comments. The zero value is not a valid node.
type MenuNode struct {
	cfg *Config
	id  nodeID
}

// Kind returns what the node carries.
func (n MenuNode) Kind() ItemKind { return n.cfg.nodes[n.id].kind }

// Symbol returns the symbol behind a symbol node.
func (n MenuNode) Symbol() (Symbol, bool) {
	id := n.cfg.nodes[n.id].sym
	if n.Kind() != ItemSymbol || id == noSym {
		return Symbol{}, false
	}

	return Symbol{cfg: n.cfg, id: id}, true
}

// Choice returns the choice behind a choice node.
func (n MenuNode) Choice() (Choice, bool) {
	id := n.cfg.nodes[n.id].choice
	if n.Kind() != ItemChoice || id == noChoice {
		return Choice{}, false
	}

	return Choice{cfg: n.cfg, id: id}, true
}

// Parent returns the parent node, with ok false at the top of the tree.
func (n MenuNode) Parent() (MenuNode, bool) {
	id := n.cfg.nodes[n.id].parent
	if id == noNode {
		return MenuNode{}, false
	}

	return MenuNode{cfg: n.cfg, id: id}, true
}

// Next returns the following sibling node.
func (n MenuNode) Next() (MenuNode, bool) {
	id := n.cfg.nodes[n.id].next
	if id == noNode {
		return MenuNode{}, false
	}

	return MenuNode{cfg: n.cfg, id: id}, true
}

// FirstChild returns the first child node. Menus and choices naturally have
// children; symbols gain them through automatic submenu creation.
func (n MenuNode) FirstChild() (MenuNode, bool) {
	id := n.cfg.nodes[n.id].list
	if id == noNode {
		return MenuNode{}, false
	}

	return MenuNode{cfg: n.cfg, id: id}, true
}

// IsMenuconfig reports whether the node's children should be shown as a
// separate menu. It is a display hint, true for menus, choices, and
// menuconfig symbols.
func (n MenuNode) IsMenuconfig() bool { return n.cfg.nodes[n.id].isMenuconfig }

// Prompt returns the node's prompt text and condition. For menus and
// comments the text is the displayed title.
func (n MenuNode) Prompt() (text string, cond Expr, ok bool) {
	nd := &n.cfg.nodes[n.id]
	if !nd.hasPrompt {
		return "", Expr{}, false
	}

	return nd.prompt, Expr{cfg: n.cfg, id: nd.promptCond}, true
}

// Help returns the help text written at this location, without a trailing
// newline.
func (n MenuNode) Help() (string, bool) {
	nd := &n.cfg.nodes[n.id]

	return nd.help, nd.hasHelp
}

// Dep returns the node's dependencies, with dependencies from surrounding
// menus and ifs rolled in.
func (n MenuNode) Dep() Expr {
	return Expr{cfg: n.cfg, id: n.cfg.nodes[n.id].dep}
}

// Visibility returns the 'visible if' dependencies of a menu node, y when
// there are none. Only menus carry them.
func (n MenuNode) Visibility() Expr {
	return Expr{cfg: n.cfg, id: n.cfg.nodes[n.id].visibility}
}

// Location returns the file and line the node was defined at. The filename
// is as written in the source statement, relative to the srctree root it
// resolved against.
func (n MenuNode) Location() (file string, line int) {
	nd := &n.cfg.nodes[n.id]

	return nd.filename, nd.linenr
}

// Defaults returns the default properties written at this location only.
// For evaluation, use the symbol or choice Defaults, which span locations.
func (n MenuNode) Defaults() []Default {
	return n.cfg.defaultHandles(n.cfg.nodes[n.id].defaults)
}

// Selects returns the select properties written at this location only.
func (n MenuNode) Selects() []Target {
	return n.cfg.targetHandles(n.cfg.nodes[n.id].selects)
}

// Implies returns the imply properties written at this location only.
func (n MenuNode) Implies() []Target {
	return n.cfg.targetHandles(n.cfg.nodes[n.id].implies)
}

// Ranges returns the range properties written at this location only.
func (n MenuNode) Ranges() []Range {
	return n.cfg.rangeHandles(n.cfg.nodes[n.id].ranges)
}

// Referenced returns every symbol and choice appearing in the node's
// properties and conditions, inherited dependencies included.
func (n MenuNode) Referenced() ([]Symbol, []Choice) {
	syms, chs := n.cfg.nodeRefs(n.id, nil, nil)

	return n.cfg.symbolHandles(syms), n.cfg.choiceHandles(chs)
}

// String renders the node in Kconfig syntax, including the properties
// written at this location.
func (n MenuNode) String() string { return n.cfg.nodeString(n.id) }
