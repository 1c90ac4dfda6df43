package kconfig

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Phases of the menu tree finalization. The tree walk runs on an explicit
// stack of frames rather than the call stack, so sibling chains and deep
// nesting cannot overflow it.
const (
	phaseEnter int8 = iota
	phaseChild
	phaseChildDone
	phaseAdopt
	phaseAdoptDone
	phaseFinish
)

type finalizeFrame struct {
	node      nodeID
	cur       nodeID
	visibleIf exprID
	phase     int8
}

// finalizeTree propagates properties and dependencies down the menu tree,
// creates implicit menus, removes if nodes, and finalizes choices.
//
// visibleIf accumulates 'visible if' conditions from parent menus, which
// are added to the prompts of symbols and choices.
func (c *Config) finalizeTree(root nodeID, visibleIf exprID) {
	stack := []finalizeFrame{{
		node:      root,
		cur:       noNode,
		visibleIf: visibleIf,
		phase:     phaseEnter,
	}}

	for len(stack) > 0 {
		// The frame pointer is only good until the next push. Frames
		// finish their own writes before pushing a child frame.
		f := &stack[len(stack)-1]

		switch f.phase {
		case phaseEnter:
			switch {
			case c.nodes[f.node].list != noNode:
				// A choice, menu, or if. Propagate dependencies to the
				// children first: implicit submenu creation below needs
				// to look ahead at finished conditions.
				if c.nodes[f.node].kind == ItemMenu {
					f.visibleIf = c.makeAnd(f.visibleIf, c.nodes[f.node].visibility)
				}

				c.propagateDeps(f.node, f.visibleIf)

				f.cur = c.nodes[f.node].list
				f.phase = phaseChild

			case c.nodes[f.node].kind == ItemSymbol:
				c.addPropsToSC(f.node)

				// Following nodes that depend on this symbol become an
				// implicit submenu rooted at it.
				f.cur = f.node
				f.phase = phaseAdopt

			default:
				f.phase = phaseFinish
			}

		case phaseChild:
			if f.cur == noNode {
				f.phase = phaseFinish

				continue
			}

			child, vis := f.cur, f.visibleIf
			f.phase = phaseChildDone

			stack = append(stack, finalizeFrame{
				node:      child,
				cur:       noNode,
				visibleIf: vis,
				phase:     phaseEnter,
			})

		case phaseChildDone:
			// The child may have tilted adopted siblings under itself,
			// so its next pointer is read only now.
			f.cur = c.nodes[f.cur].next
			f.phase = phaseChild

		case phaseAdopt:
			next := c.nodes[f.cur].next

			if next != noNode && c.autoMenuDep(f.node, next) {
				vis := f.visibleIf
				f.phase = phaseAdoptDone

				stack = append(stack, finalizeFrame{
					node:      next,
					cur:       noNode,
					visibleIf: vis,
					phase:     phaseEnter,
				})

				continue
			}

			if f.cur != f.node {
				// Dependent nodes found after the symbol. Tilt them up
				// above it to form the implicit submenu.
				c.nodes[f.node].list = c.nodes[f.node].next
				c.nodes[f.node].next = c.nodes[f.cur].next
				c.nodes[f.cur].next = noNode
			}

			f.phase = phaseFinish

		case phaseAdoptDone:
			adopted := c.nodes[f.cur].next
			c.nodes[adopted].parent = f.node
			f.cur = adopted
			f.phase = phaseAdopt

		case phaseFinish:
			if c.nodes[f.node].list != noNode {
				c.flatten(c.nodes[f.node].list)
				c.removeIfs(f.node)
			}

			// Empty choices have no list, so this runs outside the list
			// check.
			if c.nodes[f.node].kind == ItemChoice {
				c.addPropsToSC(f.node)
				c.finalizeChoice(f.node)
			}

			stack = stack[:len(stack)-1]
		}
	}
}

// propagateDeps propagates the node's dependencies to its child menu
// nodes.
func (c *Config) propagateDeps(nid nodeID, visibleIf exprID) {
	// For a choice, the choice item itself is the parent dependency: the
	// mode of the choice limits the visibility of the contained symbols.
	basedep := c.nodes[nid].dep
	if c.nodes[nid].kind == ItemChoice {
		basedep = c.choiceExpr(c.nodes[nid].choice)
	}

	for cur := c.nodes[nid].list; cur != noNode; cur = c.nodes[cur].next {
		dep := c.makeAnd(c.nodes[cur].dep, basedep)
		c.nodes[cur].dep = dep

		if c.nodes[cur].hasPrompt {
			c.nodes[cur].promptCond = c.makeAnd(c.nodes[cur].promptCond, dep)
		}

		if kind := c.nodes[cur].kind; kind != ItemSymbol && kind != ItemChoice {
			continue
		}

		if c.nodes[cur].hasPrompt {
			c.nodes[cur].promptCond = c.makeAnd(c.nodes[cur].promptCond, visibleIf)
		}

		for i := range c.nodes[cur].defaults {
			d := &c.nodes[cur].defaults[i]
			d.cond = c.makeAnd(d.cond, dep)
		}

		for i := range c.nodes[cur].ranges {
			r := &c.nodes[cur].ranges[i]
			r.cond = c.makeAnd(r.cond, dep)
		}

		for i := range c.nodes[cur].selects {
			t := &c.nodes[cur].selects[i]
			t.cond = c.makeAnd(t.cond, dep)
		}

		for i := range c.nodes[cur].implies {
			t := &c.nodes[cur].implies[i]
			t.cond = c.makeAnd(t.cond, dep)
		}
	}
}

// addPropsToSC copies properties from a menu node up to the symbol or
// choice it belongs to. This runs separately from propagateDeps so that
// properties of items defined in several locations keep their source
// order.
func (c *Config) addPropsToSC(nid nodeID) {
	nd := &c.nodes[nid]

	if nd.kind == ItemChoice {
		rec := &c.choices[nd.choice]
		rec.directDep = c.makeOr(rec.directDep, nd.dep)
		rec.defaults = append(rec.defaults, nd.defaults...)

		return
	}

	s := nd.sym
	rec := &c.syms[s]

	rec.directDep = c.makeOr(rec.directDep, nd.dep)
	rec.defaults = append(rec.defaults, nd.defaults...)
	rec.ranges = append(rec.ranges, nd.ranges...)

	for _, sel := range nd.selects {
		rec.selects = append(rec.selects, sel)

		target := &c.syms[sel.target]
		target.revDep = c.makeOr(target.revDep,
			c.makeAnd(c.symExpr(s), sel.cond))
	}

	for _, imp := range nd.implies {
		rec.implies = append(rec.implies, imp)

		target := &c.syms[imp.target]
		target.weakRevDep = c.makeOr(target.weakRevDep,
			c.makeAnd(c.symExpr(s), imp.cond))
	}
}

// exprDependsOn reports whether e depends directly on sym, for deciding
// whether an implicit submenu should be created. Besides a bare
// reference, equality against m or y and inequality against n or y
// count.
func (c *Config) exprDependsOn(e exprID, sym symID) bool {
	n := &c.exprs[e]

	switch n.op {
	case opSym:
		return n.sym == sym

	case opEqual, opUnequal:
		left := c.exprs[n.lhs].sym
		right := c.exprs[n.rhs].sym

		if right == sym {
			right = left
		} else if left != sym {
			return false
		}

		return (n.op == opEqual && right == c.triSym[M]) ||
			right == c.triSym[Y] ||
			(n.op == opUnequal && right == c.triSym[N])

	case opAnd:
		return c.exprDependsOn(n.lhs, sym) || c.exprDependsOn(n.rhs, sym)
	}

	return false
}

// autoMenuDep reports whether n2 has an automatic menu dependency on the
// symbol of n1. With a prompt on n2 its condition is checked, and
// otherwise the node dependencies.
func (c *Config) autoMenuDep(n1, n2 nodeID) bool {
	e := c.nodes[n2].dep
	if c.nodes[n2].hasPrompt {
		e = c.nodes[n2].promptCond
	}

	return c.exprDependsOn(e, c.nodes[n1].sym)
}

// flatten pulls the children of promptless nodes (if nodes and invisible
// symbols with implicit submenus) up after them, giving the menu a clean
// structure without indentation jumps.
func (c *Config) flatten(id nodeID) {
	for id != noNode {
		nd := &c.nodes[id]

		if nd.list != noNode && !nd.hasPrompt {
			last := nd.list

			for {
				c.nodes[last].parent = nd.parent

				if c.nodes[last].next == noNode {
					break
				}

				last = c.nodes[last].next
			}

			c.nodes[last].next = nd.next
			nd.next = nd.list
			nd.list = noNode
		}

		id = c.nodes[id].next
	}
}

// removeIfs unlinks if nodes from the node's child list. They are assumed
// to have been flattened already, leaving them childless.
func (c *Config) removeIfs(nid nodeID) {
	first := c.nodes[nid].list
	for first != noNode && c.nodes[first].kind == ItemNone {
		first = c.nodes[first].next
	}

	for cur := first; cur != noNode; cur = c.nodes[cur].next {
		if next := c.nodes[cur].next; next != noNode && c.nodes[next].kind == ItemNone {
			c.nodes[cur].next = c.nodes[next].next
		}
	}

	c.nodes[nid].list = first
}

// finalizeChoice marks the symbols whose nodes sit under the choice node
// as members of the choice, and infers missing types between the choice
// and its members.
func (c *Config) finalizeChoice(nid nodeID) {
	ch := c.nodes[nid].choice

	for cur := c.nodes[nid].list; cur != noNode; cur = c.nodes[cur].next {
		if c.nodes[cur].kind == ItemSymbol {
			c.syms[c.nodes[cur].sym].choice = ch
			c.choices[ch].syms = append(c.choices[ch].syms, c.nodes[cur].sym)
		}
	}

	rec := &c.choices[ch]

	// An untyped choice takes the type of its first typed member.
	if rec.origType == TypeUnknown {
		for _, s := range rec.syms {
			if t := c.syms[s].origType; t != TypeUnknown {
				rec.origType = t

				break
			}
		}
	}

	// Untyped members take the type of the choice.
	for _, s := range rec.syms {
		if c.syms[s].origType == TypeUnknown {
			c.syms[s].origType = rec.origType
		}
	}
}

// checkSymSanity warns about or rejects symbol property combinations that
// are easiest to check after parsing.
func (c *Config) checkSymSanity(s symID) error {
	switch t := c.syms[s].origType; t {
	case TypeBool, TypeTristate:
		for _, sel := range c.syms[s].selects {
			if tt := c.syms[sel.target].origType; tt != TypeBool && tt != TypeTristate && tt != TypeUnknown {
				c.warn(fmt.Sprintf(
					"%s selects the %s symbol %s, which is not bool or tristate",
					c.symNameAndLoc(s), tt, c.symNameAndLoc(sel.target)))
			}
		}

		for _, imp := range c.syms[s].implies {
			if tt := c.syms[imp.target].origType; tt != TypeBool && tt != TypeTristate && tt != TypeUnknown {
				c.warn(fmt.Sprintf(
					"%s implies the %s symbol %s, which is not bool or tristate",
					c.symNameAndLoc(s), tt, c.symNameAndLoc(imp.target)))
			}
		}

	case TypeString, TypeInt, TypeHex:
		for _, def := range c.syms[s].defaults {
			if c.exprs[def.val].op != opSym {
				return &loadError{
					err: ErrMalformedExpr,
					detail: fmt.Sprintf(
						"the %s symbol %s has a malformed default %s -- expected a single symbol",
						t, c.symNameAndLoc(s), c.exprString(def.val)),
				}
			}

			defSym := c.exprs[def.val].sym

			if t == TypeString {
				// 'default foo' on a string symbol is either a symbol
				// reference or missing quotes. Guess missing quotes when
				// foo is not all uppercase and no such symbol exists.
				if !c.syms[defSym].isConstant && len(c.syms[defSym].nodes) == 0 &&
					!isUpper(c.syms[defSym].name) {
					c.warn("style: quotes recommended around default value for string symbol " +
						c.symNameAndLoc(s))
				}
			} else if !c.intHexOK(defSym, t) {
				c.warn(fmt.Sprintf("the %s symbol %s has a non-%s default %s",
					t, c.symNameAndLoc(s), t, c.symNameAndLoc(defSym)))
			}
		}

		if len(c.syms[s].selects) > 0 || len(c.syms[s].implies) > 0 {
			c.warn(fmt.Sprintf("the %s symbol %s has selects or implies",
				t, c.symNameAndLoc(s)))
		}

	default:
		c.warn(c.symNameAndLoc(s) + " defined without a type")
	}

	if ranges := c.syms[s].ranges; len(ranges) > 0 {
		t := c.syms[s].origType

		if t != TypeInt && t != TypeHex {
			c.warn(fmt.Sprintf("the %s symbol %s has ranges, but is not int or hex",
				t, c.symNameAndLoc(s)))
		} else {
			for _, r := range ranges {
				if !c.intHexOK(r.low, t) || !c.intHexOK(r.high, t) {
					c.warn(fmt.Sprintf("the %s symbol %s has a non-%s range [%s, %s]",
						t, c.symNameAndLoc(s), t,
						c.symNameAndLoc(r.low), c.symNameAndLoc(r.high)))
				}
			}
		}
	}

	return nil
}

// intHexOK reports whether the symbol is valid as a value for an int or
// hex symbol. An undefined symbol stands for a literal number.
func (c *Config) intHexOK(s symID, t Type) bool {
	if len(c.syms[s].nodes) == 0 {
		return isBaseN(c.syms[s].name, typeBase(t))
	}

	return c.syms[s].origType == t
}

// isUpper reports whether s contains at least one cased character and no
// lowercase ones.
func isUpper(s string) bool {
	hasUpper := false

	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}

		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}

	return hasUpper
}

// checkChoiceSanity warns about or rejects suspect choice constructs.
func (c *Config) checkChoiceSanity(ch choiceID) error {
	if t := c.choices[ch].origType; t != TypeBool && t != TypeTristate {
		c.warn(fmt.Sprintf("%s defined with type %s", c.choiceNameAndLoc(ch), t))
	}

	hasPrompt := false

	for _, nid := range c.choices[ch].nodes {
		if c.nodes[nid].hasPrompt {
			hasPrompt = true

			break
		}
	}

	if !hasPrompt {
		c.warn(c.choiceNameAndLoc(ch) + " defined without a prompt")
	}

	for _, def := range c.choices[ch].defaults {
		if c.exprs[def.val].op != opSym {
			return &loadError{
				err: ErrMalformedExpr,
				detail: fmt.Sprintf("%s has a malformed default %s",
					c.choiceNameAndLoc(ch), c.exprString(def.val)),
			}
		}

		if defSym := c.exprs[def.val].sym; c.syms[defSym].choice != ch {
			c.warn(fmt.Sprintf(
				"the default selection %s of %s is not contained in the choice",
				c.symNameAndLoc(defSym), c.choiceNameAndLoc(ch)))
		}
	}

	for _, s := range c.choices[ch].syms {
		if len(c.syms[s].defaults) > 0 {
			c.warn(fmt.Sprintf("default on the choice symbol %s will have no effect",
				c.symNameAndLoc(s)))
		}

		if c.syms[s].revDep != c.nExpr {
			c.warnChoiceSelectImply(s, c.syms[s].revDep, "selected")
		}

		if c.syms[s].weakRevDep != c.nExpr {
			c.warnChoiceSelectImply(s, c.syms[s].weakRevDep, "implied")
		}

		for _, nid := range c.syms[s].nodes {
			parent := c.nodes[nid].parent

			switch {
			case c.nodes[parent].kind == ItemChoice && c.nodes[parent].choice == ch:
				if !c.nodes[nid].hasPrompt {
					c.warn(fmt.Sprintf("the choice symbol %s has no prompt",
						c.symNameAndLoc(s)))
				}

			case c.nodes[nid].hasPrompt:
				c.warn(fmt.Sprintf(
					"the choice symbol %s is defined with a prompt outside the choice",
					c.symNameAndLoc(s)))
			}
		}
	}

	return nil
}

func (c *Config) warnChoiceSelectImply(s symID, e exprID, what string) {
	var sb strings.Builder

	fmt.Fprintf(&sb,
		"the choice symbol %s is %s by the following symbols, which has no effect: ",
		c.symNameAndLoc(s), what)

	for _, term := range c.splitExpr(e, opOr) {
		first := c.splitExpr(term, opAnd)[0]

		sb.WriteString("\n - " + c.symNameAndLoc(c.exprs[first].sym))
	}

	c.warn(sb.String())
}

// checkUndefinedSyms warns for each reference to an undefined symbol.
// Numbers show up as undefined symbols and are skipped, as is MODULES,
// which always exists.
func (c *Config) checkUndefinedSyms() {
	for i := range c.syms {
		s := symID(i)

		if c.syms[s].isConstant || len(c.syms[s].nodes) > 0 ||
			isNum(c.syms[s].name) || c.syms[s].name == "MODULES" {
			continue
		}

		c.warnUndefinedSym(s)
	}
}

// warnUndefinedSym generates a warning listing each location referencing
// the undefined symbol, with the referencing nodes rendered in Kconfig
// format.
func (c *Config) warnUndefinedSym(s symID) {
	var sb strings.Builder

	sb.WriteString("undefined symbol " + c.syms[s].name + ":")

	var refs []symID

	walk := c.startWalk()
	for nid := walk.next(); nid != noNode; nid = walk.next() {
		refs, _ = c.nodeRefs(nid, refs[:0], nil)

		if slices.Contains(refs, s) {
			fmt.Fprintf(&sb, "\n\n- Referenced at %s:%d:\n\n%s",
				c.nodes[nid].filename, c.nodes[nid].linenr, c.nodeString(nid))
		}
	}

	c.warn(sb.String())
}
