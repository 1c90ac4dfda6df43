package kconfig

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// exprOp tags a node in the expression arena. Leaves reference a symbol or
// choice; interior nodes combine operands with boolean or relational
// operators.
type exprOp int8

const (
	opNone exprOp = iota
	opSym
	opChoice
	opNot
	opAnd
	opOr
	opEqual
	opUnequal
	opLess
	opLessEqual
	opGreater
	opGreaterEqual
)

// isRelation reports whether the operator compares two symbol operands.
func (op exprOp) isRelation() bool {
	return op >= opEqual && op <= opGreaterEqual
}

// String returns the Kconfig operator spelling for relational operators.
func (op exprOp) String() string {
	switch op {
	case opEqual:
		return "="
	case opUnequal:
		return "!="
	case opLess:
		return "<"
	case opLessEqual:
		return "<="
	case opGreater:
		return ">"
	case opGreaterEqual:
		return ">="
	case opNot:
		return "!"
	case opAnd:
		return "&&"
	case opOr:
		return "||"
	default:
		return "?"
	}
}

// exprNode is one arena record of an expression tree. For opSym and opChoice
// the sym/choice field identifies the leaf. For opNot only lhs is used. For
// relations lhs and rhs are always symbol leaves.
type exprNode struct {
	lhs    exprID
	rhs    exprID
	sym    symID
	choice choiceID
	op     exprOp
}

// newExpr appends a node to the expression arena and returns its ID.
func (c *Config) newExpr(n exprNode) exprID {
	c.exprs = append(c.exprs, n)

	return exprID(len(c.exprs) - 1)
}

// symExpr returns the interned leaf expression for a symbol, creating it on
// first use. Every reference to the same symbol shares one leaf, so leaf
// identity can be tested by comparing IDs.
func (c *Config) symExpr(id symID) exprID {
	if e := c.syms[id].expr; e != noExpr {
		return e
	}

	e := c.newExpr(exprNode{op: opSym, sym: id, lhs: noExpr, rhs: noExpr, choice: noChoice})
	c.syms[id].expr = e

	return e
}

// choiceExpr returns the interned leaf expression for a choice.
func (c *Config) choiceExpr(id choiceID) exprID {
	if e := c.choices[id].expr; e != noExpr {
		return e
	}

	e := c.newExpr(exprNode{op: opChoice, choice: id, lhs: noExpr, rhs: noExpr, sym: noSym})
	c.choices[id].expr = e

	return e
}

// makeAnd constructs e1 && e2, with trivial simplification against the
// constant y and n leaves.
func (c *Config) makeAnd(e1, e2 exprID) exprID {
	switch {
	case e1 == c.yExpr:
		return e2
	case e2 == c.yExpr:
		return e1
	case e1 == c.nExpr || e2 == c.nExpr:
		return c.nExpr
	}

	return c.newExpr(exprNode{op: opAnd, lhs: e1, rhs: e2, sym: noSym, choice: noChoice})
}

// makeOr constructs e1 || e2, with trivial simplification against the
// constant y and n leaves.
func (c *Config) makeOr(e1, e2 exprID) exprID {
	switch {
	case e1 == c.nExpr:
		return e2
	case e2 == c.nExpr:
		return e1
	case e1 == c.yExpr || e2 == c.yExpr:
		return c.yExpr
	}

	return c.newExpr(exprNode{op: opOr, lhs: e1, rhs: e2, sym: noSym, choice: noChoice})
}

// makeNot constructs !e.
func (c *Config) makeNot(e exprID) exprID {
	return c.newExpr(exprNode{op: opNot, lhs: e, rhs: noExpr, sym: noSym, choice: noChoice})
}

// makeRelation constructs a comparison of two symbol leaves.
func (c *Config) makeRelation(op exprOp, lhs, rhs symID) exprID {
	return c.newExpr(exprNode{
		op:     op,
		lhs:    c.symExpr(lhs),
		rhs:    c.symExpr(rhs),
		sym:    noSym,
		choice: noChoice,
	})
}

// exprValue evaluates an expression to a tri value. AND short-circuits on a
// left n and otherwise takes the minimum; OR short-circuits on a left y and
// otherwise takes the maximum; NOT maps v to y-v. Relations compare the
// operands' string values lexicographically when both are string-typed, and
// numerically otherwise, falling back to a lexicographic comparison when
// either operand fails to parse as a number. Relations never yield m.
func (c *Config) exprValue(e exprID) Tri {
	n := &c.exprs[e]

	switch n.op {
	case opSym:
		return c.symTriValue(n.sym)

	case opChoice:
		return c.choiceTriValue(n.choice)

	case opAnd:
		v1 := c.exprValue(n.lhs)
		if v1 == N {
			return N
		}

		return min(v1, c.exprValue(n.rhs))

	case opOr:
		v1 := c.exprValue(n.lhs)
		if v1 == Y {
			return Y
		}

		return max(v1, c.exprValue(n.rhs))

	case opNot:
		return Y - c.exprValue(n.lhs)
	}

	if !n.op.isRelation() {
		panic(ErrInternal.With(slog.Int("op", int(n.op))))
	}

	lhs, rhs := c.exprs[n.lhs].sym, c.exprs[n.rhs].sym

	var comp int

	if c.syms[lhs].origType == TypeString && c.syms[rhs].origType == TypeString {
		comp = strings.Compare(c.symStrValue(lhs), c.symStrValue(rhs))
	} else {
		lv, lok := c.symToNum(lhs)
		rv, rok := c.symToNum(rhs)

		switch {
		case lok && rok && lv < rv:
			comp = -1
		case lok && rok && lv > rv:
			comp = 1
		case lok && rok:
			comp = 0
		default:
			comp = strings.Compare(c.symStrValue(lhs), c.symStrValue(rhs))
		}
	}

	var res bool

	switch n.op {
	case opEqual:
		res = comp == 0
	case opUnequal:
		res = comp != 0
	case opLess:
		res = comp < 0
	case opLessEqual:
		res = comp <= 0
	case opGreater:
		res = comp > 0
	case opGreaterEqual:
		res = comp >= 0
	}

	if res {
		return Y
	}

	return N
}

// symToNum converts a symbol to a number for relational comparison. Bool and
// tristate symbols count as their tri ordinal. Other symbols parse their
// string value in the base implied by their type.
func (c *Config) symToNum(id symID) (int64, bool) {
	rec := &c.syms[id]
	if rec.origType == TypeBool || rec.origType == TypeTristate {
		return int64(c.symTriValue(id)), true
	}

	return parseBase(c.symStrValue(id), typeBase(rec.origType))
}

// typeBase returns the numeric base used when interpreting values of the
// given type, with 0 meaning the base is inferred from the literal.
func typeBase(t Type) int {
	switch t {
	case TypeInt:
		return 10
	case TypeHex:
		return 16
	default:
		return 0
	}
}

// parseBase parses s as an integer in the given base. Base 16 accepts an
// optional 0x prefix. Base 0 infers the base from a 0x, 0o, or 0b prefix and
// rejects bare leading zeros as ambiguous.
func parseBase(s string, base int) (int64, bool) {
	s = strings.TrimSpace(s)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	switch base {
	case 0:
		switch {
		case len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'):
			base, s = 16, s[2:]
		case len(s) > 1 && s[0] == '0' && (s[1] == 'o' || s[1] == 'O'):
			base, s = 8, s[2:]
		case len(s) > 1 && s[0] == '0' && (s[1] == 'b' || s[1] == 'B'):
			base, s = 2, s[2:]
		case len(s) > 1 && s[0] == '0':
			return 0, false
		default:
			base = 10
		}
	case 16:
		if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			s = s[2:]
		}
	}

	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, false
	}

	if neg {
		v = -v
	}

	return v, true
}

// isBaseN reports whether s parses as a number in the given base.
func isBaseN(s string, base int) bool {
	_, ok := parseBase(s, base)

	return ok
}

// isNum reports whether s looks like a number. Hex literals must carry a
// 0x prefix here, so that undefined symbols whose names happen to contain
// only the letters A-F are not misclassified.
func isNum(s string) bool {
	if _, ok := parseBase(s, 10); ok {
		return true
	}

	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}

	return isBaseN(s, 16)
}

// hexString renders v the way the C tools print hex symbols, with a
// lowercase 0x prefix.
func hexString(v int64) string {
	return fmt.Sprintf("%#x", v)
}

// escapeString escapes a string for display in Kconfig format and for
// writing to a configuration file. Backslash must be escaped before the
// quote to avoid double escaping.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)

	return strings.ReplaceAll(s, `"`, `\"`)
}

// unescapeString replaces each backslash-prefixed character with the
// character itself.
func unescapeString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var buf strings.Builder

	buf.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}

		buf.WriteByte(s[i])
	}

	return buf.String()
}

// symString renders one symbol the way expression leaves render, quoting
// constant symbols.
func (c *Config) symString(id symID) string {
	rec := &c.syms[id]
	if rec.isConstant {
		return `"` + escapeString(rec.name) + `"`
	}

	return rec.name
}

// scString renders a symbol or choice leaf in standard Kconfig syntax.
// Constant symbols are quoted; choices render as <choice> or <choice NAME>.
func (c *Config) scString(e exprID) string {
	n := &c.exprs[e]

	switch n.op {
	case opSym:
		return c.symString(n.sym)

	case opChoice:
		if name := c.choices[n.choice].name; name != "" {
			return "<choice " + name + ">"
		}

		return "<choice>"
	}

	panic(ErrInternal.With(slog.Int("op", int(n.op))))
}

// exprString renders an expression in Kconfig syntax. Operands of mixed
// precedence are parenthesized so the output can be fed back to the parser.
func (c *Config) exprString(e exprID) string {
	n := &c.exprs[e]

	switch n.op {
	case opSym, opChoice:
		return c.scString(e)

	case opNot:
		operand := &c.exprs[n.lhs]
		if operand.op == opSym || operand.op == opChoice {
			return "!" + c.scString(n.lhs)
		}

		return "!(" + c.exprString(n.lhs) + ")"

	case opAnd:
		return c.parenthesize(n.lhs, opOr) + " && " + c.parenthesize(n.rhs, opOr)

	case opOr:
		// Also parenthesize AND expressions in OR expressions. The result is
		// a bit more readable even though it is not strictly necessary.
		return c.parenthesize(n.lhs, opAnd) + " || " + c.parenthesize(n.rhs, opAnd)
	}

	if !n.op.isRelation() {
		panic(ErrInternal.With(slog.Int("op", int(n.op))))
	}

	return c.scString(n.lhs) + " " + n.op.String() + " " + c.scString(n.rhs)
}

// parenthesize renders a subexpression, wrapping it in parentheses when its
// operator matches wrap.
func (c *Config) parenthesize(e exprID, wrap exprOp) string {
	if c.exprs[e].op == wrap {
		return "(" + c.exprString(e) + ")"
	}

	return c.exprString(e)
}

// splitExpr collects the top-level operands joined by op, in left to right
// order. Splitting A || B || (C && D) on opOr yields A, B, and C && D.
func (c *Config) splitExpr(e exprID, op exprOp) []exprID {
	var res []exprID

	var rec func(exprID)

	rec = func(e exprID) {
		if n := &c.exprs[e]; n.op == op {
			rec(n.lhs)
			rec(n.rhs)

			return
		}

		res = append(res, e)
	}

	rec(e)

	return res
}

// exprSyms appends every distinct symbol leaf in the expression to dst, in
// order of first appearance.
func (c *Config) exprSyms(e exprID, dst []symID) []symID {
	var rec func(exprID)

	rec = func(e exprID) {
		n := &c.exprs[e]

		switch n.op {
		case opSym:
			for _, id := range dst {
				if id == n.sym {
					return
				}
			}

			dst = append(dst, n.sym)

		case opChoice:

		case opNot:
			rec(n.lhs)

		default:
			rec(n.lhs)
			rec(n.rhs)
		}
	}

	rec(e)

	return dst
}

// exprChoices appends every distinct choice leaf in the expression to dst.
func (c *Config) exprChoices(e exprID, dst []choiceID) []choiceID {
	var rec func(exprID)

	rec = func(e exprID) {
		n := &c.exprs[e]

		switch n.op {
		case opChoice:
			for _, id := range dst {
				if id == n.choice {
					return
				}
			}

			dst = append(dst, n.choice)

		case opSym:

		case opNot:
			rec(n.lhs)

		default:
			rec(n.lhs)
			rec(n.rhs)
		}
	}

	rec(e)

	return dst
}

// Expr is a handle on one expression owned by a Config. The zero value is
// not a valid expression.
type Expr struct {
	cfg *Config
	id  exprID
}

// Value evaluates the expression to a tri value.
func (e Expr) Value() Tri { return e.cfg.exprValue(e.id) }

// String renders the expression in Kconfig syntax.
func (e Expr) String() string { return e.cfg.exprString(e.id) }

// SplitAnd returns the top-level operands of an AND expression, or the
// expression itself when its operator is not AND.
func (e Expr) SplitAnd() []Expr { return e.split(opAnd) }

// SplitOr returns the top-level operands of an OR expression, or the
// expression itself when its operator is not OR.
func (e Expr) SplitOr() []Expr { return e.split(opOr) }

func (e Expr) split(op exprOp) []Expr {
	ids := e.cfg.splitExpr(e.id, op)

	res := make([]Expr, len(ids))
	for i, id := range ids {
		res[i] = Expr{cfg: e.cfg, id: id}
	}

	return res
}

// Symbol returns the symbol of a symbol leaf expression.
func (e Expr) Symbol() (Symbol, bool) {
	if n := &e.cfg.exprs[e.id]; n.op == opSym {
		return Symbol{cfg: e.cfg, id: n.sym}, true
	}

	return Symbol{}, false
}

// Choice returns the choice of a choice leaf expression.
func (e Expr) Choice() (Choice, bool) {
	if n := &e.cfg.exprs[e.id]; n.op == opChoice {
		return Choice{cfg: e.cfg, id: n.choice}, true
	}

	return Choice{}, false
}

// Symbols returns every distinct symbol referenced by the expression, in
// order of first appearance.
func (e Expr) Symbols() []Symbol {
	ids := e.cfg.exprSyms(e.id, nil)

	res := make([]Symbol, len(ids))
	for i, id := range ids {
		res[i] = Symbol{cfg: e.cfg, id: id}
	}

	return res
}

// Choices returns every distinct choice referenced by the expression.
func (e Expr) Choices() []Choice {
	ids := e.cfg.exprChoices(e.id, nil)

	res := make([]Choice, len(ids))
	for i, id := range ids {
		res[i] = Choice{cfg: e.cfg, id: id}
	}

	return res
}
