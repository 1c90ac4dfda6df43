package kconfig

import (
	"fmt"
	"strings"
)

// choiceRec is the arena record backing one choice.
type choiceRec struct {
	name     string // "" for unnamed choices
	origType Type

	isOptional bool

	syms  []symID
	nodes []nodeID

	defaults []defaultProp

	directDep exprID

	// expr interns the leaf expression wrapping this choice.
	expr exprID

	dependents []scID

	// User mode and user-selected member. The selection is recorded when
	// a member is set to y, not by assigning the choice itself.
	userVal Tri
	hasUser bool
	userSel symID
	wasSet  bool

	cachedVis    Tri
	cachedAssign triSet

	// The cached selection needs its own flag since noSym is a valid
	// cached result.
	cachedSel symID
	visOK     bool
	assignOK  bool
	selOK     bool

	checked int32
}

func (c *Config) addChoice(rec choiceRec) choiceID {
	c.choices = append(c.choices, rec)

	return choiceID(len(c.choices) - 1)
}

// choiceType returns the effective type of the choice, degrading tristate
// to bool when the modules symbol is n.
func (c *Config) choiceType(ch choiceID) Type {
	rec := &c.choices[ch]

	if rec.origType == TypeTristate && c.symTriValue(c.modules) == N {
		return TypeBool
	}

	return rec.origType
}

// choiceTriValue returns the mode of the choice: n for inactive, m for
// member-modules mode, y for exactly-one-member mode. Unlike symbol values
// it is cheap enough to compute on every call.
func (c *Config) choiceTriValue(ch choiceID) Tri {
	rec := &c.choices[ch]

	// Non-optional choices behave as if reverse-depended on to m, which
	// is how the C tools keep them from dropping to n.
	val := M
	if rec.isOptional {
		val = N
	}

	if rec.hasUser {
		val = max(val, rec.userVal)
	}

	val = min(val, c.choiceVisibility(ch))

	// Promote m to y for bool choices.
	if val == M && c.choiceType(ch) == TypeBool {
		return Y
	}

	return val
}

func (c *Config) choiceVisibility(ch choiceID) Tri {
	rec := &c.choices[ch]

	if !rec.visOK {
		rec.cachedVis = c.choiceVisCalc(ch)
		rec.visOK = true
	}

	return rec.cachedVis
}

func (c *Config) choiceVisCalc(ch choiceID) Tri {
	rec := &c.choices[ch]

	vis := N

	for _, n := range rec.nodes {
		nd := &c.nodes[n]
		if nd.hasPrompt {
			vis = max(vis, c.exprValue(nd.promptCond))
		}
	}

	if vis == M && c.choiceType(ch) != TypeTristate {
		return Y
	}

	return vis
}

func (c *Config) choiceAssignable(ch choiceID) triSet {
	rec := &c.choices[ch]

	if !rec.assignOK {
		rec.cachedAssign = c.choiceAssignCalc(ch)
		rec.assignOK = true
	}

	return rec.cachedAssign
}

func (c *Config) choiceAssignCalc(ch choiceID) triSet {
	rec := &c.choices[ch]

	vis := c.choiceVisibility(ch)
	if vis == N {
		return triSet{}
	}

	if vis == Y {
		if !rec.isOptional {
			if c.choiceType(ch) == TypeBool {
				return triVals(Y)
			}

			return triVals(M, Y)
		}

		if c.choiceType(ch) == TypeBool {
			return triVals(N, Y)
		}

		return triVals(N, M, Y)
	}

	// vis == M.
	if rec.isOptional {
		return triVals(N, M)
	}

	return triVals(M)
}

// choiceSelection returns the selected member, or noSym when the choice is
// not in y mode or nothing is eligible.
func (c *Config) choiceSelection(ch choiceID) symID {
	rec := &c.choices[ch]

	if !rec.selOK {
		rec.cachedSel = c.choiceSelCalc(ch)
		rec.selOK = true
	}

	return rec.cachedSel
}

func (c *Config) choiceSelCalc(ch choiceID) symID {
	rec := &c.choices[ch]

	if c.choiceTriValue(ch) != Y {
		return noSym
	}

	// The user selection wins while it is still visible.
	if rec.userSel != noSym && c.symVisibility(rec.userSel) != N {
		return rec.userSel
	}

	return c.choiceDefaultSelection(ch)
}

func (c *Config) choiceDefaultSelection(ch choiceID) symID {
	rec := &c.choices[ch]

	for _, d := range rec.defaults {
		// The defaulted member must be visible too.
		if c.exprValue(d.cond) != N && c.symVisibility(c.exprs[d.val].sym) != N {
			return c.exprs[d.val].sym
		}
	}

	// Otherwise the first visible member.
	for _, s := range rec.syms {
		if c.symVisibility(s) != N {
			return s
		}
	}

	return noSym
}

// choiceSetTri assigns a user mode to the choice. Like symbol assignment,
// visibility may truncate the stored mode at evaluation.
func (c *Config) choiceSetTri(ch choiceID, v Tri) bool {
	rec := &c.choices[ch]

	if rec.hasUser && rec.userVal == v {
		rec.wasSet = true

		return true
	}

	return c.choiceAssignTri(ch, v, v.String())
}

// choiceSetString assigns a user mode given as one of the names n, m, y.
func (c *Config) choiceSetString(ch choiceID, val string) bool {
	if t, ok := ParseTri(val); ok {
		return c.choiceAssignTri(ch, t, "'"+val+"'")
	}

	c.warnInvalidAssign(c.choiceNameAndLoc(ch), "'"+val+"'", c.choices[ch].origType)

	return false
}

func (c *Config) choiceAssignTri(ch choiceID, v Tri, display string) bool {
	rec := &c.choices[ch]

	valid := rec.origType == TypeTristate ||
		(rec.origType == TypeBool && v != M)

	if !valid {
		c.warnInvalidAssign(c.choiceNameAndLoc(ch), display, rec.origType)

		return false
	}

	rec.userVal = v
	rec.hasUser = true
	rec.wasSet = true

	c.choiceRecInvalidate(ch)

	return true
}

// choiceUnsetValue resets the user mode and the user selection, as if the
// user had never touched the choice or any of its members.
func (c *Config) choiceUnsetValue(ch choiceID) {
	rec := &c.choices[ch]

	if rec.hasUser || rec.userSel != noSym {
		rec.hasUser = false
		rec.userVal = N
		rec.userSel = noSym

		c.choiceRecInvalidate(ch)
	}
}

func (c *Config) choiceInvalidate(ch choiceID) {
	rec := &c.choices[ch]
	rec.visOK, rec.assignOK, rec.selOK = false, false, false
}

func (c *Config) choiceRecInvalidate(ch choiceID) {
	c.choiceInvalidate(ch)

	for _, dep := range c.choices[ch].dependents {
		if dep.choice != noChoice {
			if c.choices[dep.choice].visOK {
				c.choiceRecInvalidate(dep.choice)
			}
		} else if c.syms[dep.sym].visOK {
			c.symRecInvalidate(dep.sym)
		}
	}
}

func (c *Config) choiceNameAndLoc(ch choiceID) string {
	rec := &c.choices[ch]

	name := rec.name
	if name == "" {
		name = "<choice>"
	}

	if len(rec.nodes) == 0 {
		return name + " (undefined)"
	}

	locs := make([]string, len(rec.nodes))
	for i, n := range rec.nodes {
		locs[i] = fmt.Sprintf("%s:%d", c.nodes[n].filename, c.nodes[n].linenr)
	}

	return fmt.Sprintf("%s (defined at %s)", name, strings.Join(locs, ", "))
}

func (c *Config) choiceHandles(ids []choiceID) []Choice {
	res := make([]Choice, len(ids))
	for i, id := range ids {
		res[i] = Choice{cfg: c, id: id}
	}

	return res
}

// Choice is a handle on one choice statement. A choice has a mode, assigned
// like a tristate symbol value, and in y mode exactly one selected member.
// The zero value is not a valid choice.
type Choice struct {
	cfg *Config
	id  choiceID
}

// Name returns the choice's name, or "" for the common unnamed form.
func (ch Choice) Name() string { return ch.cfg.choices[ch.id].name }

// Type returns the effective type of the choice, degrading tristate to bool
// when the modules symbol is n.
func (ch Choice) Type() Type { return ch.cfg.choiceType(ch.id) }

// OrigType returns the type the choice was declared with.
func (ch Choice) OrigType() Type { return ch.cfg.choices[ch.id].origType }

// TriValue returns the mode of the choice: n for inactive, m for modules
// mode, and y for exactly-one-member mode.
func (ch Choice) TriValue() Tri { return ch.cfg.choiceTriValue(ch.id) }

// StrValue returns the mode's tri name.
func (ch Choice) StrValue() string { return ch.cfg.choiceTriValue(ch.id).String() }

// Visibility returns the choice's visibility.
func (ch Choice) Visibility() Tri { return ch.cfg.choiceVisibility(ch.id) }

// Assignable returns the modes that can currently be assigned with effect,
// in ascending order.
func (ch Choice) Assignable() []Tri { return ch.cfg.choiceAssignable(ch.id).slice() }

// Selection returns the selected member, with ok false when the choice is
// not in y mode or no member is eligible.
func (ch Choice) Selection() (Symbol, bool) {
	id := ch.cfg.choiceSelection(ch.id)
	if id == noSym {
		return Symbol{}, false
	}

	return Symbol{cfg: ch.cfg, id: id}, true
}

// UserSelection returns the member most recently set to y by the user,
// which need not match the actual selection once dependencies weigh in.
func (ch Choice) UserSelection() (Symbol, bool) {
	id := ch.cfg.choices[ch.id].userSel
	if id == noSym {
		return Symbol{}, false
	}

	return Symbol{cfg: ch.cfg, id: id}, true
}

// UserValue returns the mode last assigned by the user and whether one is
// set at all.
func (ch Choice) UserValue() (Tri, bool) {
	rec := &ch.cfg.choices[ch.id]

	return rec.userVal, rec.hasUser
}

// SetValue assigns a user mode given as one of the names n, m, y. Members
// are selected by setting the member symbol to y, not through the choice.
func (ch Choice) SetValue(val string) bool { return ch.cfg.choiceSetString(ch.id, val) }

// SetTri assigns a user mode. See SetValue.
func (ch Choice) SetTri(v Tri) bool { return ch.cfg.choiceSetTri(ch.id, v) }

// UnsetValue resets the user mode and user selection.
func (ch Choice) UnsetValue() { ch.cfg.choiceUnsetValue(ch.id) }

// IsOptional reports whether the choice carries the 'optional' flag and so
// can be n even when visible.
func (ch Choice) IsOptional() bool { return ch.cfg.choices[ch.id].isOptional }

// Symbols returns the member symbols in declaration order.
func (ch Choice) Symbols() []Symbol { return ch.cfg.symbolHandles(ch.cfg.choices[ch.id].syms) }

// Nodes returns the choice's menu nodes, one per definition location.
func (ch Choice) Nodes() []MenuNode { return ch.cfg.nodeHandles(ch.cfg.choices[ch.id].nodes) }

// Defaults returns the choice's default properties, naming preferred
// members, in declaration order.
func (ch Choice) Defaults() []Default {
	return ch.cfg.defaultHandles(ch.cfg.choices[ch.id].defaults)
}

// Referenced returns every symbol and choice referenced in any of the
// choice's definition locations, inherited dependencies included.
func (ch Choice) Referenced() ([]Symbol, []Choice) {
	var (
		syms []symID
		chs  []choiceID
	)

	for _, n := range ch.cfg.choices[ch.id].nodes {
		syms, chs = ch.cfg.nodeRefs(n, syms, chs)
	}

	return ch.cfg.symbolHandles(syms), ch.cfg.choiceHandles(chs)
}

// String returns the choice rendered in Kconfig syntax, without its
// members, one block per definition location.
func (ch Choice) String() string {
	nodes := ch.cfg.choices[ch.id].nodes

	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = ch.cfg.nodeString(n)
	}

	return strings.Join(parts, "\n")
}
