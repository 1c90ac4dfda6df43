package kconfig

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// symRec is the arena record backing one symbol. Records live in the
// Config's syms slice and refer to each other by id; the public Symbol
// handle wraps an id together with its owning Config.
type symRec struct {
	name     string
	origType Type

	isConstant     bool
	isAllnoconfigY bool
	hasEnvVar      bool
	envVar         string

	choice choiceID
	nodes  []nodeID
	refs   []loc

	defaults []defaultProp
	selects  []targetProp
	implies  []targetProp
	ranges   []rangeProp

	directDep  exprID
	revDep     exprID
	weakRevDep exprID

	// expr interns the leaf expression wrapping this symbol.
	expr exprID

	dependents []scID

	// User value. userTri holds it for bool and tristate symbols, userVal
	// for everything else. hasUser reports whether one is set at all.
	userVal string
	userTri Tri
	hasUser bool

	cachedStr    string
	cachedTri    Tri
	cachedVis    Tri
	cachedAssign triSet
	strOK        bool
	triOK        bool
	visOK        bool
	assignOK     bool

	// writeToConf is recomputed as a side effect of the value calculation
	// and decides whether the symbol gets a .config entry.
	writeToConf bool

	// Value recorded by the last SyncDeps run. hasOldVal distinguishes a
	// symbol missing from auto.conf from one recorded as empty.
	oldVal    string
	hasOldVal bool

	wasSet  bool
	visited bool
	checked int32
}

// defaultProp is one 'default' property: the value expression and the
// property's condition.
type defaultProp struct {
	val  exprID
	cond exprID
}

// targetProp is one 'select' or 'imply' property.
type targetProp struct {
	target symID
	cond   exprID
}

// rangeProp is one 'range' property. The bounds are symbols, as in the
// source language.
type rangeProp struct {
	low  symID
	high symID
	cond exprID
}

// scID names either a symbol or a choice in contexts that serve both, such
// as dependents sets. Exactly one field is valid.
type scID struct {
	sym    symID
	choice choiceID
}

func symSC(id symID) scID       { return scID{sym: id, choice: noChoice} }
func choiceSC(id choiceID) scID { return scID{sym: noSym, choice: id} }

// triSet is a small ordered set of tri values, used for assignable lists.
type triSet struct {
	vals [3]Tri
	n    int8
}

func triVals(vals ...Tri) triSet {
	var ts triSet

	for _, v := range vals {
		ts.vals[ts.n] = v
		ts.n++
	}

	return ts
}

func (ts triSet) slice() []Tri {
	if ts.n == 0 {
		return nil
	}

	out := make([]Tri, ts.n)
	copy(out, ts.vals[:ts.n])

	return out
}

func (ts triSet) has(v Tri) bool {
	for i := int8(0); i < ts.n; i++ {
		if ts.vals[i] == v {
			return true
		}
	}

	return false
}

// symType returns the effective type of the symbol. Tristate symbols
// degrade to bool inside y-mode choices and when the modules symbol is n.
func (c *Config) symType(s symID) Type {
	rec := &c.syms[s]

	if rec.origType == TypeTristate &&
		((rec.choice != noChoice && c.choiceTriValue(rec.choice) == Y) ||
			c.symTriValue(c.modules) == N) {
		return TypeBool
	}

	return rec.origType
}

// symStrValue returns the symbol's value as a string, calculating it first
// if no cached value exists.
func (c *Config) symStrValue(s symID) string {
	rec := &c.syms[s]

	if rec.strOK {
		return rec.cachedStr
	}

	if rec.origType == TypeBool || rec.origType == TypeTristate {
		rec.cachedStr = c.symTriValue(s).String()
		rec.strOK = true

		return rec.cachedStr
	}

	// Undefined symbols get their name as their string value. This is why
	// things like "FOO = bar" work for testing whether FOO has the value
	// "bar".
	if rec.origType == TypeUnknown {
		rec.cachedStr = rec.name
		rec.strOK = true

		return rec.name
	}

	val := ""
	vis := c.symVisibility(s)

	rec.writeToConf = vis != N

	switch rec.origType {
	case TypeInt, TypeHex:
		base := typeBase(rec.origType)

		// The value is checked against the active range here rather
		// than in a separate pass after loading a .config, which is
		// what the C tools do. It requires finding the range first.
		var low, high int64

		hasActiveRange := false

		for _, r := range rec.ranges {
			if c.exprValue(r.cond) != N {
				hasActiveRange = true

				// The zero fallbacks mirror strtoll() running
				// on a malformed or empty string.
				if v, ok := parseBase(c.symStrValue(r.low), base); ok {
					low = v
				}

				if v, ok := parseBase(c.symStrValue(r.high), base); ok {
					high = v
				}

				break
			}
		}

		// Defaults are used if the symbol is invisible, lacks a user
		// value, or has an out-of-range user value.
		useDefaults := true

		if vis != N && rec.hasUser && rec.userVal != "" {
			userNum, _ := parseBase(rec.userVal, base)

			if hasActiveRange && (userNum < low || userNum > high) {
				c.warn(fmt.Sprintf(
					"user value %s on the %s symbol %s ignored due to "+
						"being outside the active range ([%s, %s]) -- "+
						"falling back on defaults",
					numString(userNum, base), rec.origType,
					c.symNameAndLoc(s),
					numString(low, base), numString(high, base)))
			} else {
				// An in-range, well-formed user value is kept in
				// exactly the form it was assigned in, with or
				// without a 0x prefix.
				val = rec.userVal
				useDefaults = false
			}
		}

		if useDefaults {
			hasDefault := false

			var valNum int64

			for _, d := range rec.defaults {
				if c.exprValue(d.cond) != N {
					hasDefault = true
					rec.writeToConf = true

					val = c.symStrValue(c.exprs[d.val].sym)

					if isBaseN(val, base) {
						valNum, _ = parseBase(val, base)
					}

					break
				}
			}

			// Clamping runs even when there is no default.
			if hasActiveRange {
				clamp, clamped := valNum, false

				if valNum < low {
					clamp, clamped = low, true
				} else if valNum > high {
					clamp, clamped = high, true
				}

				if clamped {
					// Clamped values are rewritten to a
					// canonical form.
					if rec.origType == TypeInt {
						val = strconv.FormatInt(clamp, 10)
					} else {
						val = hexString(clamp)
					}

					if hasDefault {
						c.warn(fmt.Sprintf(
							"default value %d on %s clamped to %s due to "+
								"being outside the active range ([%s, %s])",
							valNum, c.symNameAndLoc(s),
							numString(clamp, base),
							numString(low, base), numString(high, base)))
					}
				}
			}
		}

	case TypeString:
		if vis != N && rec.hasUser {
			val = rec.userVal
		} else {
			for _, d := range rec.defaults {
				if c.exprValue(d.cond) != N {
					val = c.symStrValue(c.exprs[d.val].sym)
					rec.writeToConf = true

					break
				}
			}
		}
	}

	// Symbols backed by the environment and the defconfig_list symbol
	// never end up in written configurations.
	if rec.hasEnvVar || s == c.defconfigList {
		rec.writeToConf = false
	}

	rec.cachedStr = val
	rec.strOK = true

	return val
}

// symTriValue returns the symbol's tri value, calculating it first if no
// cached value exists. Non-bool/tristate symbols evaluate to n in logical
// contexts, with a warning for typed ones.
func (c *Config) symTriValue(s symID) Tri {
	rec := &c.syms[s]

	if rec.triOK {
		return rec.cachedTri
	}

	if rec.origType != TypeBool && rec.origType != TypeTristate {
		if rec.origType != TypeUnknown {
			c.warn(fmt.Sprintf(
				"The %s symbol %s is being evaluated in a logical context "+
					"somewhere. It will always evaluate to n.",
				rec.origType, c.symNameAndLoc(s)))
		}

		rec.cachedTri = N
		rec.triOK = true

		return N
	}

	vis := c.symVisibility(s)

	rec.writeToConf = vis != N

	val := N

	switch {
	case rec.choice == noChoice:
		if vis != N && rec.hasUser {
			val = min(rec.userTri, vis)
		} else {
			// No visible user value. Defaults and implies apply.
			for _, d := range rec.defaults {
				condVal := c.exprValue(d.cond)
				if condVal != N {
					val = min(c.exprValue(d.val), condVal)
					if val != N {
						rec.writeToConf = true
					}

					break
				}
			}

			// Implies only take effect when the direct
			// dependencies are met.
			weakRev := c.exprValue(rec.weakRevDep)
			if weakRev != N && c.exprValue(rec.directDep) != N {
				val = max(weakRev, val)
				rec.writeToConf = true
			}
		}

		// Selects take precedence, including over user values.
		revDep := c.exprValue(rec.revDep)
		if revDep != N {
			if c.exprValue(rec.directDep) < revDep {
				c.warnSelectUnsatisfiedDeps(s)
			}

			val = max(revDep, val)
			rec.writeToConf = true
		}

		// m is promoted to y for bool symbols and for symbols implied
		// to y.
		if val == M && (c.symType(s) == TypeBool || c.exprValue(rec.weakRevDep) == Y) {
			val = Y
		}

	case vis == Y:
		// Visible member of a y-mode choice. The choice mode already
		// limits member visibility, so the selection decides.
		if c.choiceSelection(rec.choice) == s {
			val = Y
		}

	case vis != N && rec.hasUser && rec.userTri != N:
		// Visible member of an m-mode choice with a non-n user value.
		val = M
	}

	rec.cachedTri = val
	rec.triOK = true

	return val
}

// symVisibility returns the symbol's visibility, the upper bound on values
// the user can assign.
func (c *Config) symVisibility(s symID) Tri {
	rec := &c.syms[s]

	if !rec.visOK {
		rec.cachedVis = c.symVisCalc(s)
		rec.visOK = true
	}

	return rec.cachedVis
}

func (c *Config) symVisCalc(s symID) Tri {
	rec := &c.syms[s]

	vis := N

	for _, n := range rec.nodes {
		nd := &c.nodes[n]
		if nd.hasPrompt {
			vis = max(vis, c.exprValue(nd.promptCond))
		}
	}

	if rec.choice != noChoice {
		ch := &c.choices[rec.choice]

		// Non-tristate members are only visible in y mode.
		if ch.origType == TypeTristate && rec.origType != TypeTristate &&
			c.choiceTriValue(rec.choice) != Y {
			return N
		}

		// Members with m visibility are not visible in y mode.
		if rec.origType == TypeTristate && vis == M &&
			c.choiceTriValue(rec.choice) == Y {
			return N
		}
	}

	// Promote m to y for non-tristates, which covers modules being
	// disabled.
	if vis == M && c.symType(s) != TypeTristate {
		return Y
	}

	return vis
}

// symAssignable returns the tri values that can currently be assigned with
// effect, calculating them first if no cached set exists.
func (c *Config) symAssignable(s symID) triSet {
	rec := &c.syms[s]

	if !rec.assignOK {
		rec.cachedAssign = c.symAssignCalc(s)
		rec.assignOK = true
	}

	return rec.cachedAssign
}

func (c *Config) symAssignCalc(s symID) triSet {
	rec := &c.syms[s]

	if rec.origType != TypeBool && rec.origType != TypeTristate {
		return triSet{}
	}

	vis := c.symVisibility(s)
	if vis == N {
		return triSet{}
	}

	revDep := c.exprValue(rec.revDep)

	if vis == Y {
		switch {
		case rec.choice != noChoice:
			return triVals(Y)

		case revDep == N:
			if c.symType(s) == TypeBool || c.exprValue(rec.weakRevDep) == Y {
				return triVals(N, Y)
			}

			return triVals(N, M, Y)

		case revDep == Y:
			return triVals(Y)
		}

		// Selected to m.
		if c.symType(s) == TypeBool || c.exprValue(rec.weakRevDep) == Y {
			return triVals(Y)
		}

		return triVals(M, Y)
	}

	// vis == M. Only tristates get m visibility, since bool visibility is
	// promoted to y.
	switch {
	case revDep == N:
		if c.exprValue(rec.weakRevDep) != Y {
			return triVals(N, M)
		}

		return triVals(N, Y)

	case revDep == Y:
		return triVals(Y)
	}

	return triVals(M)
}

// symSetTri assigns a tri user value to the symbol. It returns false, with
// a warning, when the value is invalid for the symbol's type.
func (c *Config) symSetTri(s symID, v Tri) bool {
	rec := &c.syms[s]

	// A repeated identical value changes nothing, except for choice
	// members, where a repeated y can still move the choice selection.
	if (rec.origType == TypeBool || rec.origType == TypeTristate) &&
		rec.hasUser && rec.userTri == v && rec.choice == noChoice {
		rec.wasSet = true

		return true
	}

	return c.symAssignTri(s, v, v.String())
}

// symSetString assigns a user value given in its textual form, as found in
// configuration files. Bool and tristate symbols accept the names n, m,
// and y.
func (c *Config) symSetString(s symID, val string) bool {
	rec := &c.syms[s]

	if rec.origType == TypeBool || rec.origType == TypeTristate {
		if t, ok := ParseTri(val); ok {
			return c.symAssignTri(s, t, "'"+val+"'")
		}

		c.warnInvalidAssign(c.symNameAndLoc(s), "'"+val+"'", rec.origType)

		return false
	}

	if rec.hasUser && rec.userVal == val && rec.choice == noChoice {
		rec.wasSet = true

		return true
	}

	valid := rec.origType == TypeString ||
		(rec.origType == TypeInt && isBaseN(val, 10))

	if rec.origType == TypeHex {
		v, ok := parseBase(val, 16)
		valid = ok && v >= 0
	}

	if !valid {
		c.warnInvalidAssign(c.symNameAndLoc(s), "'"+val+"'", rec.origType)

		return false
	}

	if rec.hasEnvVar {
		c.warn(fmt.Sprintf(
			"ignored attempt to assign user value to %s, which is set "+
				"from the environment", c.symNameAndLoc(s)))

		return false
	}

	rec.userVal = val
	rec.hasUser = true
	rec.wasSet = true

	c.symRecInvalidateIfHasPrompt(s)

	return true
}

// symAssignTri validates and stores a tri user value. display carries the
// value's spelling for the invalid-assignment warning.
func (c *Config) symAssignTri(s symID, v Tri, display string) bool {
	rec := &c.syms[s]

	valid := rec.origType == TypeTristate ||
		(rec.origType == TypeBool && v != M)

	if !valid {
		c.warnInvalidAssign(c.symNameAndLoc(s), display, rec.origType)

		return false
	}

	if rec.hasEnvVar {
		c.warn(fmt.Sprintf(
			"ignored attempt to assign user value to %s, which is set "+
				"from the environment", c.symNameAndLoc(s)))

		return false
	}

	rec.userTri = v
	rec.hasUser = true
	rec.wasSet = true

	if rec.choice != noChoice && v == Y {
		// Setting a choice member to y records it as the user
		// selection of the choice. Like symbol user values, the user
		// selection need not match the actual selection, since
		// dependencies come into play.
		ch := &c.choices[rec.choice]
		ch.userSel = s
		ch.wasSet = true

		c.choiceRecInvalidate(rec.choice)
	} else {
		c.symRecInvalidateIfHasPrompt(s)
	}

	return true
}

func (c *Config) warnInvalidAssign(what, display string, t Type) {
	c.warn(fmt.Sprintf(
		"the value %s is invalid for %s, which has type %s -- "+
			"assignment ignored", display, what, t))
}

// symUnsetValue resets the symbol's user value, as if it had never been
// assigned.
func (c *Config) symUnsetValue(s symID) {
	rec := &c.syms[s]

	if rec.hasUser {
		rec.hasUser = false
		rec.userVal = ""
		rec.userTri = N

		c.symRecInvalidateIfHasPrompt(s)
	}
}

func (c *Config) symInvalidate(s symID) {
	rec := &c.syms[s]
	rec.strOK, rec.triOK, rec.visOK, rec.assignOK = false, false, false, false
}

// symRecInvalidate invalidates the symbol and everything that might depend
// on it. Because the modules symbol changes how every tristate evaluates,
// assigning it invalidates the whole configuration.
func (c *Config) symRecInvalidate(s symID) {
	if s == c.modules {
		c.invalidateAll()

		return
	}

	c.symInvalidate(s)

	for _, dep := range c.syms[s].dependents {
		// The visibility cache doubles as a dirty flag. It is filled
		// as a side effect of calculating any other cached value, so
		// an item without it cannot have live caches anywhere beneath
		// it, and the recursion can stop there. That also bounds the
		// recursion on cyclic dependents sets, which choices create.
		if dep.choice != noChoice {
			if c.choices[dep.choice].visOK {
				c.choiceRecInvalidate(dep.choice)
			}
		} else if c.syms[dep.sym].visOK {
			c.symRecInvalidate(dep.sym)
		}
	}
}

// symRecInvalidateIfHasPrompt invalidates like symRecInvalidate, but only
// when some definition location has a prompt. User values never affect
// promptless symbols, and skipping them also keeps assignments to constant
// symbols from wiping their pinned values.
func (c *Config) symRecInvalidateIfHasPrompt(s symID) {
	for _, n := range c.syms[s].nodes {
		if c.nodes[n].hasPrompt {
			c.symRecInvalidate(s)

			return
		}
	}

	if c.warnNoPrompt {
		c.warn(c.symNameAndLoc(s) +
			" has no prompt, meaning user values have no effect on it")
	}
}

// symStrDefault returns the value the symbol would get from defaults alone,
// ignoring any user value. It mirrors the algorithm the C tools use when
// writing minimal configurations.
func (c *Config) symStrDefault(s symID) string {
	rec := &c.syms[s]

	switch rec.origType {
	case TypeBool, TypeTristate:
		val := N

		// Defaults, selects, and implies do not affect choice members.
		if rec.choice == noChoice {
			for _, d := range rec.defaults {
				condVal := c.exprValue(d.cond)
				if condVal != N {
					val = min(c.exprValue(d.val), condVal)

					break
				}
			}

			val = max(c.exprValue(rec.revDep), c.exprValue(rec.weakRevDep), val)

			if val == M && c.symType(s) == TypeBool {
				val = Y
			}
		}

		return val.String()

	case TypeString, TypeInt, TypeHex:
		for _, d := range rec.defaults {
			if c.exprValue(d.cond) != N {
				return c.symStrValue(c.exprs[d.val].sym)
			}
		}
	}

	return ""
}

// warnSelectUnsatisfiedDeps warns when a symbol is selected above its direct
// dependencies, naming every selecting symbol that exceeds them.
func (c *Config) warnSelectUnsatisfiedDeps(s symID) {
	rec := &c.syms[s]

	var b strings.Builder

	fmt.Fprintf(&b,
		"%s has direct dependencies %s with value %s, but is currently "+
			"being %s-selected by the following symbols:",
		c.symNameAndLoc(s), c.exprString(rec.directDep),
		c.exprValue(rec.directDep), c.exprValue(rec.revDep))

	// The reverse dependencies from each select are ORed together.
	for _, sel := range c.splitExpr(rec.revDep, opOr) {
		if c.exprValue(sel) <= c.exprValue(rec.directDep) {
			// Only selects that exceed the direct dependencies are
			// interesting.
			continue
		}

		// 'select A if B' contributes S && B and a plain 'select A'
		// contributes S, so in both cases the selecting symbol is the
		// first AND operand.
		selSym := c.exprs[c.splitExpr(sel, opAnd)[0]].sym
		selRec := &c.syms[selSym]

		fmt.Fprintf(&b,
			"\n - %s, with value %s, direct dependencies %s (value: %s)",
			c.symNameAndLoc(selSym), c.symStrValue(selSym),
			c.exprString(selRec.directDep), c.exprValue(selRec.directDep))

		if c.exprs[sel].op == opAnd {
			cond := c.exprs[sel].rhs

			fmt.Fprintf(&b, ", and select condition %s (value: %s)",
				c.exprString(cond), c.exprValue(cond))
		}
	}

	c.warn(b.String())
}

// symNameAndLoc renders the symbol's name and definition locations for
// warnings.
func (c *Config) symNameAndLoc(s symID) string {
	rec := &c.syms[s]

	if len(rec.nodes) == 0 {
		return rec.name + " (undefined)"
	}

	locs := make([]string, len(rec.nodes))
	for i, n := range rec.nodes {
		locs[i] = fmt.Sprintf("%s:%d", c.nodes[n].filename, c.nodes[n].linenr)
	}

	return fmt.Sprintf("%s (defined at %s)", rec.name, strings.Join(locs, ", "))
}

// numString renders v the way the C tools print it for the base, decimal or
// 0x-prefixed lowercase hex.
func numString(v int64, base int) string {
	if base == 16 {
		return hexString(v)
	}

	return strconv.FormatInt(v, 10)
}

// symConfigString returns the symbol's .config line, or "" for symbols that
// do not get one.
func (c *Config) symConfigString(s symID) string {
	val := c.symStrValue(s)
	rec := &c.syms[s]

	if !rec.writeToConf {
		return ""
	}

	switch rec.origType {
	case TypeBool, TypeTristate:
		if val == "n" {
			return fmt.Sprintf("# %s%s is not set\n", c.prefix, rec.name)
		}

		return fmt.Sprintf("%s%s=%s\n", c.prefix, rec.name, val)

	case TypeInt, TypeHex:
		return fmt.Sprintf("%s%s=%s\n", c.prefix, rec.name, val)

	case TypeString:
		return fmt.Sprintf("%s%s=\"%s\"\n", c.prefix, rec.name, escapeString(val))
	}

	panic(ErrInternal.With(
		slog.String("symbol", rec.name),
		slog.String("type", rec.origType.String())))
}

// Symbol is a handle on one configuration symbol. The zero value is not a
// valid symbol; handles come from the owning Config.
type Symbol struct {
	cfg *Config
	id  symID
}

// Name returns the symbol's name without the configuration prefix.
func (s Symbol) Name() string { return s.cfg.syms[s.id].name }

// Type returns the symbol's effective type, with tristate degrading to bool
// inside y-mode choices and when the modules symbol is n.
func (s Symbol) Type() Type { return s.cfg.symType(s.id) }

// OrigType returns the type the symbol was declared with.
func (s Symbol) OrigType() Type { return s.cfg.syms[s.id].origType }

// TriValue returns the symbol's tri value. Non-bool/tristate symbols
// evaluate to n.
func (s Symbol) TriValue() Tri { return s.cfg.symTriValue(s.id) }

// StrValue returns the symbol's value as a string. Bool and tristate
// symbols render their tri value's name.
func (s Symbol) StrValue() string { return s.cfg.symStrValue(s.id) }

// Visibility returns the symbol's visibility, the upper bound on the values
// a user can assign with effect.
func (s Symbol) Visibility() Tri { return s.cfg.symVisibility(s.id) }

// Assignable returns the tri values that can currently be assigned with
// effect, in ascending order. It is empty for invisible symbols and for
// symbols that are not bool or tristate.
func (s Symbol) Assignable() []Tri { return s.cfg.symAssignable(s.id).slice() }

// SetValue assigns a user value given in its textual .config form. Bool and
// tristate symbols take the names n, m, and y. SetValue reports whether the
// value was valid for the symbol's type; validity does not imply effect,
// which visibility decides.
func (s Symbol) SetValue(val string) bool { return s.cfg.symSetString(s.id, val) }

// SetTri assigns a tri user value. See SetValue.
func (s Symbol) SetTri(v Tri) bool { return s.cfg.symSetTri(s.id, v) }

// UnsetValue resets the user value, as if none had ever been assigned.
func (s Symbol) UnsetValue() { s.cfg.symUnsetValue(s.id) }

// UserValue returns the value last assigned by the user and whether one is
// set at all. Bool and tristate values render as their tri name.
func (s Symbol) UserValue() (string, bool) {
	rec := &s.cfg.syms[s.id]

	if !rec.hasUser {
		return "", false
	}

	if rec.origType == TypeBool || rec.origType == TypeTristate {
		return rec.userTri.String(), true
	}

	return rec.userVal, true
}

// ConfigString returns the symbol's .config line, terminated by a newline,
// or "" for symbols that do not belong in written configurations.
func (s Symbol) ConfigString() string { return s.cfg.symConfigString(s.id) }

// Defined reports whether the symbol has at least one definition location,
// as opposed to being merely referenced.
func (s Symbol) Defined() bool { return len(s.cfg.syms[s.id].nodes) > 0 }

// IsConstant reports whether the symbol is a constant (quoted) symbol.
func (s Symbol) IsConstant() bool { return s.cfg.syms[s.id].isConstant }

// IsAllnoconfigY reports whether the symbol asked to be set to y in
// all-no configurations via 'option allnoconfig_y'.
func (s Symbol) IsAllnoconfigY() bool { return s.cfg.syms[s.id].isAllnoconfigY }

// EnvVar returns the environment variable backing the symbol via
// 'option env=' and whether there is one. Such symbols are invisible to the
// user and never written out.
func (s Symbol) EnvVar() (string, bool) {
	rec := &s.cfg.syms[s.id]

	return rec.envVar, rec.hasEnvVar
}

// Choice returns the choice the symbol is a member of, if any.
func (s Symbol) Choice() (Choice, bool) {
	id := s.cfg.syms[s.id].choice
	if id == noChoice {
		return Choice{}, false
	}

	return Choice{cfg: s.cfg, id: id}, true
}

// Nodes returns the symbol's menu nodes, one per definition location.
func (s Symbol) Nodes() []MenuNode { return s.cfg.nodeHandles(s.cfg.syms[s.id].nodes) }

// DirectDep returns the dependencies from depends on lines and enclosing
// menus and ifs, with y for symbols without any.
func (s Symbol) DirectDep() Expr { return Expr{cfg: s.cfg, id: s.cfg.syms[s.id].directDep} }

// RevDep returns the reverse dependency, the OR of all selects of this
// symbol, with n for symbols never selected.
func (s Symbol) RevDep() Expr { return Expr{cfg: s.cfg, id: s.cfg.syms[s.id].revDep} }

// WeakRevDep returns the weak reverse dependency, the OR of all implies of
// this symbol, with n for symbols never implied.
func (s Symbol) WeakRevDep() Expr { return Expr{cfg: s.cfg, id: s.cfg.syms[s.id].weakRevDep} }

// Default is one 'default' property of a symbol or choice.
type Default struct {
	Value     Expr
	Condition Expr
}

// Target is one 'select' or 'imply' property.
type Target struct {
	Symbol    Symbol
	Condition Expr
}

// Range is one 'range' property, with inclusive symbol bounds.
type Range struct {
	Low       Symbol
	High      Symbol
	Condition Expr
}

// Defaults returns the symbol's default properties in declaration order,
// conditions included.
func (s Symbol) Defaults() []Default {
	return s.cfg.defaultHandles(s.cfg.syms[s.id].defaults)
}

func (c *Config) defaultHandles(recs []defaultProp) []Default {
	res := make([]Default, len(recs))
	for i, d := range recs {
		res[i] = Default{
			Value:     Expr{cfg: c, id: d.val},
			Condition: Expr{cfg: c, id: d.cond},
		}
	}

	return res
}

// Selects returns the symbol's select properties in declaration order.
func (s Symbol) Selects() []Target { return s.cfg.targetHandles(s.cfg.syms[s.id].selects) }

// Implies returns the symbol's imply properties in declaration order.
func (s Symbol) Implies() []Target { return s.cfg.targetHandles(s.cfg.syms[s.id].implies) }

func (c *Config) targetHandles(recs []targetProp) []Target {
	res := make([]Target, len(recs))
	for i, t := range recs {
		res[i] = Target{
			Symbol:    Symbol{cfg: c, id: t.target},
			Condition: Expr{cfg: c, id: t.cond},
		}
	}

	return res
}

// Ranges returns the symbol's range properties in declaration order.
func (s Symbol) Ranges() []Range {
	return s.cfg.rangeHandles(s.cfg.syms[s.id].ranges)
}

func (c *Config) rangeHandles(recs []rangeProp) []Range {
	res := make([]Range, len(recs))
	for i, r := range recs {
		res[i] = Range{
			Low:       Symbol{cfg: c, id: r.low},
			High:      Symbol{cfg: c, id: r.high},
			Condition: Expr{cfg: c, id: r.cond},
		}
	}

	return res
}

// Referenced returns every symbol and choice referenced in any of the
// symbol's definition locations, inherited dependencies included.
func (s Symbol) Referenced() ([]Symbol, []Choice) {
	var (
		syms []symID
		chs  []choiceID
	)

	for _, n := range s.cfg.syms[s.id].nodes {
		syms, chs = s.cfg.nodeRefs(n, syms, chs)
	}

	return s.cfg.symbolHandles(syms), s.cfg.choiceHandles(chs)
}

// References returns the file:line locations where the symbol appears in
// the Kconfig sources, in scan order.
func (s Symbol) References() []string {
	refs := s.cfg.syms[s.id].refs

	res := make([]string, len(refs))
	for i, ref := range refs {
		res[i] = fmt.Sprintf("%s:%d", ref.file, ref.line)
	}

	return res
}

// String returns the symbol's definitions rendered in Kconfig syntax, one
// per definition location. Undefined and constant symbols render as "".
func (s Symbol) String() string {
	nodes := s.cfg.syms[s.id].nodes

	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = s.cfg.nodeString(n)
	}

	return strings.Join(parts, "\n")
}
