package kconfig

import (
	"fmt"
	"path/filepath"
	"strings"
)

// parseError renders a syntax error at the current position. The offending
// line is included so the message is useful without the file at hand.
func (p *parser) parseError(msg string) error {
	return &ParseError{
		Err:  ErrSyntax,
		File: p.filename,
		Src:  p.line,
		Msg:  msg,
		Line: p.linenr,
	}
}

// exprError is parseError for expressions that do not parse.
func (p *parser) exprError() error {
	return &ParseError{
		Err:  ErrMalformedExpr,
		File: p.filename,
		Src:  p.line,
		Msg:  "malformed expression",
		Line: p.linenr,
	}
}

// parseBlock parses the contents of a file or of an if, menu, or choice
// statement, appending the nodes it creates after prev. endToken is the
// token that ends the block, with tEOL standing in for end of file. It
// returns the final node in the block, or prev if the block is empty, so
// calls chain.
func (p *parser) parseBlock(endToken tokenKind, parent, prev nodeID) (nodeID, error) {
	c := p.cfg

	for {
		// A line may already be pending: property parsing ungets the
		// tokens of the first line that is not a property.
		if !p.hasTokens {
			ok, err := p.nextLine()
			if err != nil {
				return noNode, err
			}

			if !ok {
				break
			}
		}

		p.hasTokens = false

		t0 := p.nextToken()

		switch t0.kind {
		case tEOL:
			continue

		case tConfig, tMenuconfig:
			sym, err := p.expectNonconstSymEOL()
			if err != nil {
				return noNode, err
			}

			c.definedSyms = append(c.definedSyms, sym)

			nid := c.addNode(nodeRec{
				kind:         ItemSymbol,
				sym:          sym,
				choice:       noChoice,
				isMenuconfig: t0.kind == tMenuconfig,
				promptCond:   noExpr,
				dep:          c.yExpr,
				visibility:   c.yExpr,
				parent:       parent,
				next:         noNode,
				list:         noNode,
				filename:     p.filename,
				linenr:       p.linenr,
			})

			c.syms[sym].nodes = append(c.syms[sym].nodes, nid)

			if err := p.parseProperties(nid); err != nil {
				return noNode, err
			}

			if c.nodes[nid].isMenuconfig && !c.nodes[nid].hasPrompt {
				c.warn(fmt.Sprintf("the menuconfig symbol %s has no prompt",
					c.symNameAndLoc(sym)))
			}

			c.nodes[prev].next = nid
			prev = nid

		case tSource, tRsource, tOsource, tOrsource:
			pattern, err := p.expectStrEOL()
			if err != nil {
				return noNode, err
			}

			// Absolute patterns skip the srctree stripping below. Checked
			// before joining, since a root may itself be absolute.
			isAbs := filepath.IsAbs(pattern)

			if t0.kind == tRsource || t0.kind == tOrsource {
				pattern = filepath.Join(filepath.Dir(p.filename), pattern)
			}

			files := p.resolveSource(pattern, isAbs)

			if len(files) == 0 && (t0.kind == tSource || t0.kind == tRsource) {
				return noNode, &loadError{
					err: ErrOpenFile,
					detail: "\n" + fill(fmt.Sprintf(
						"%s:%d: '%s' does not exist%s",
						p.filename, p.linenr, pattern, c.srctreeHint()), 80),
				}
			}

			for _, f := range files {
				if err := p.enterFile(f.full, f.rel); err != nil {
					return noNode, err
				}

				if prev, err = p.parseBlock(tEOL, parent, prev); err != nil {
					return noNode, err
				}

				p.leaveFile()
			}

		case endToken:
			// End of block. Terminate the final node and hand it back.
			c.nodes[prev].next = noNode

			return prev, nil

		case tIf:
			nid := c.addNode(nodeRec{
				kind:       ItemNone,
				sym:        noSym,
				choice:     noChoice,
				promptCond: noExpr,
				dep:        c.yExpr,
				visibility: c.yExpr,
				parent:     parent,
				next:       noNode,
				list:       noNode,
				filename:   p.filename,
				linenr:     p.linenr,
			})

			dep, err := p.parseExpr(true)
			if err != nil {
				return noNode, err
			}

			c.nodes[nid].dep = dep

			if _, err := p.parseBlock(tEndif, nid, nid); err != nil {
				return noNode, err
			}

			c.nodes[nid].list = c.nodes[nid].next

			c.nodes[prev].next = nid
			prev = nid

		case tMenu:
			prompt, err := p.expectStrEOL()
			if err != nil {
				return noNode, err
			}

			nid := c.addNode(nodeRec{
				kind:         ItemMenu,
				sym:          noSym,
				choice:       noChoice,
				isMenuconfig: true,
				hasPrompt:    true,
				prompt:       prompt,
				promptCond:   c.yExpr,
				dep:          c.yExpr,
				visibility:   c.yExpr,
				parent:       parent,
				next:         noNode,
				list:         noNode,
				filename:     p.filename,
				linenr:       p.linenr,
			})

			c.menus = append(c.menus, nid)

			if err := p.parseProperties(nid); err != nil {
				return noNode, err
			}

			if _, err := p.parseBlock(tEndmenu, nid, nid); err != nil {
				return noNode, err
			}

			c.nodes[nid].list = c.nodes[nid].next

			c.nodes[prev].next = nid
			prev = nid

		case tComment:
			prompt, err := p.expectStrEOL()
			if err != nil {
				return noNode, err
			}

			nid := c.addNode(nodeRec{
				kind:       ItemComment,
				sym:        noSym,
				choice:     noChoice,
				hasPrompt:  true,
				prompt:     prompt,
				promptCond: c.yExpr,
				dep:        c.yExpr,
				visibility: c.yExpr,
				parent:     parent,
				next:       noNode,
				list:       noNode,
				filename:   p.filename,
				linenr:     p.linenr,
			})

			c.comments = append(c.comments, nid)

			if err := p.parseProperties(nid); err != nil {
				return noNode, err
			}

			c.nodes[prev].next = nid
			prev = nid

		case tChoice:
			var ch choiceID

			if p.peekToken().kind == tEOL {
				ch = c.addChoice(choiceRec{
					directDep: c.nExpr,
					expr:      noExpr,
					userSel:   noSym,
					cachedSel: noSym,
				})
			} else {
				// Named choices may pick up members across locations.
				name, err := p.expectStrEOL()
				if err != nil {
					return noNode, err
				}

				var ok bool
				if ch, ok = c.namedChoices[name]; !ok {
					ch = c.addChoice(choiceRec{
						name:      name,
						directDep: c.nExpr,
						expr:      noExpr,
						userSel:   noSym,
						cachedSel: noSym,
					})
					c.namedChoices[name] = ch
				}
			}

			nid := c.addNode(nodeRec{
				kind:         ItemChoice,
				sym:          noSym,
				choice:       ch,
				isMenuconfig: true,
				promptCond:   noExpr,
				dep:          c.yExpr,
				visibility:   c.yExpr,
				parent:       parent,
				next:         noNode,
				list:         noNode,
				filename:     p.filename,
				linenr:       p.linenr,
			})

			c.choices[ch].nodes = append(c.choices[ch].nodes, nid)

			if err := p.parseProperties(nid); err != nil {
				return noNode, err
			}

			if _, err := p.parseBlock(tEndchoice, nid, nid); err != nil {
				return noNode, err
			}

			c.nodes[nid].list = c.nodes[nid].next

			c.nodes[prev].next = nid
			prev = nid

		case tMainmenu:
			prompt, err := p.expectStrEOL()
			if err != nil {
				return noNode, err
			}

			top := &c.nodes[c.topNode]
			top.prompt = prompt
			top.filename = p.filename
			top.linenr = p.linenr

		default:
			return noNode, p.parseError("unrecognized construct")
		}
	}

	// End of file. Every block other than the file itself needs its end
	// token.
	if endToken != tEOL {
		return noNode, &loadError{
			err:    ErrMissingEndToken,
			detail: "Unexpected end of file " + p.filename,
		}
	}

	c.nodes[prev].next = noNode

	return prev, nil
}

// parseCond parses an optional 'if <expr>' trailer and returns the parsed
// condition, or y when there is none.
func (p *parser) parseCond() (exprID, error) {
	cond := p.cfg.yExpr

	if p.checkToken(tIf) {
		e, err := p.parseExpr(true)
		if err != nil {
			return noExpr, err
		}

		cond = e
	}

	if p.peekToken().kind != tEOL {
		return noExpr, p.parseError("extra tokens at end of line")
	}

	return cond, nil
}

// parseProperties parses the properties of the item backing nid: type,
// prompt, defaults, and so on. Properties are recorded on the menu node
// and copied to symbols and choices in a separate pass after parsing,
// which preserves where each property was written for items defined in
// several locations.
func (p *parser) parseProperties(nid nodeID) error {
	c := p.cfg

	// Dependencies from 'depends on', propagated to the other properties
	// during finalization.
	c.nodes[nid].dep = c.yExpr

	for {
		ok, err := p.nextLine()
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		t0 := p.nextToken()

		switch {
		case t0.kind == tEOL:
			continue

		case typeTokens[t0.kind]:
			if err := p.setType(nid, tokenType[t0.kind]); err != nil {
				return err
			}

			if p.peekToken().kind != tEOL {
				if err := p.parsePrompt(nid); err != nil {
					return err
				}
			}

		case t0.kind == tDepends:
			if !p.checkToken(tOn) {
				return p.parseError(`expected "on" after "depends"`)
			}

			e, err := p.parseExpr(true)
			if err != nil {
				return err
			}

			c.nodes[nid].dep = c.makeAnd(c.nodes[nid].dep, e)

		case t0.kind == tHelp:
			p.parseHelp(nid)

		case t0.kind == tSelect:
			if c.nodes[nid].kind != ItemSymbol {
				return p.parseError("only symbols can select")
			}

			target, err := p.expectNonconstSym()
			if err != nil {
				return err
			}

			cond, err := p.parseCond()
			if err != nil {
				return err
			}

			c.nodes[nid].selects = append(c.nodes[nid].selects,
				targetProp{target: target, cond: cond})

		case t0.kind == tImply:
			if c.nodes[nid].kind != ItemSymbol {
				return p.parseError("only symbols can imply")
			}

			target, err := p.expectNonconstSym()
			if err != nil {
				return err
			}

			cond, err := p.parseCond()
			if err != nil {
				return err
			}

			c.nodes[nid].implies = append(c.nodes[nid].implies,
				targetProp{target: target, cond: cond})

		case t0.kind == tDefault:
			val, err := p.parseExpr(false)
			if err != nil {
				return err
			}

			cond, err := p.parseCond()
			if err != nil {
				return err
			}

			c.nodes[nid].defaults = append(c.nodes[nid].defaults,
				defaultProp{val: val, cond: cond})

		case defTypeTokens[t0.kind]:
			if err := p.setType(nid, tokenType[t0.kind]); err != nil {
				return err
			}

			val, err := p.parseExpr(false)
			if err != nil {
				return err
			}

			cond, err := p.parseCond()
			if err != nil {
				return err
			}

			c.nodes[nid].defaults = append(c.nodes[nid].defaults,
				defaultProp{val: val, cond: cond})

		case t0.kind == tPrompt:
			if err := p.parsePrompt(nid); err != nil {
				return err
			}

		case t0.kind == tRange:
			low, err := p.expectSym()
			if err != nil {
				return err
			}

			high, err := p.expectSym()
			if err != nil {
				return err
			}

			cond, err := p.parseCond()
			if err != nil {
				return err
			}

			c.nodes[nid].ranges = append(c.nodes[nid].ranges,
				rangeProp{low: low, high: high, cond: cond})

		case t0.kind == tOption:
			if err := p.parseOption(nid); err != nil {
				return err
			}

		case t0.kind == tVisible:
			if !p.checkToken(tIf) {
				return p.parseError(`expected "if" after "visible"`)
			}

			if c.nodes[nid].kind != ItemMenu {
				return p.parseError(`'visible if' is only valid for menus`)
			}

			e, err := p.parseExpr(true)
			if err != nil {
				return err
			}

			c.nodes[nid].visibility = c.makeAnd(c.nodes[nid].visibility, e)

		case t0.kind == tOptional:
			if c.nodes[nid].kind != ItemChoice {
				return p.parseError(`"optional" is only valid for choices`)
			}

			c.choices[c.nodes[nid].choice].isOptional = true

		default:
			// Not a property. Unget the tokens so the caller sees the
			// line.
			p.hasTokens = true
			p.toki = -1

			return nil
		}
	}
}

// parseOption parses one 'option' property.
func (p *parser) parseOption(nid nodeID) error {
	c := p.cfg

	switch {
	case p.checkToken(tEnv):
		if !p.checkToken(tEqual) {
			return p.parseError(`expected "=" after "env"`)
		}

		if c.nodes[nid].kind != ItemSymbol {
			return p.parseError("the 'env' option is only valid for symbols")
		}

		envVar, err := p.expectStrEOL()
		if err != nil {
			return err
		}

		sym := c.nodes[nid].sym
		c.syms[sym].hasEnvVar = true
		c.syms[sym].envVar = envVar

		if val, ok := c.env[envVar]; ok {
			c.nodes[nid].defaults = append(c.nodes[nid].defaults,
				defaultProp{val: c.symExpr(c.lookupConstSym(val)), cond: c.yExpr})
		} else {
			c.warnAt(fmt.Sprintf("%s has 'option env=\"%s\"', but the "+
				"environment variable %s is not set",
				envVar, c.syms[sym].name, c.syms[sym].name),
				p.filename, p.linenr)
		}

		if envVar != c.syms[sym].name {
			c.warnAt(fmt.Sprintf("environment variables are expanded "+
				"directly in strings, meaning you do not need "+
				"'option env=...' \"bounce\" symbols. For compatibility "+
				"with the C tools, rename %s to %s (so that the symbol "+
				"name matches the environment variable name).",
				c.syms[sym].name, envVar),
				p.filename, p.linenr)
		}

	case p.checkToken(tDefconfigList):
		if c.nodes[nid].kind != ItemSymbol {
			return p.parseError(
				"the 'defconfig_list' option is only valid for symbols")
		}

		if c.defconfigList == noSym {
			c.defconfigList = c.nodes[nid].sym
		} else {
			c.warnAt(fmt.Sprintf("'option defconfig_list' set on multiple "+
				"symbols (%s and %s). Only %s will be used.",
				c.syms[c.defconfigList].name, c.syms[c.nodes[nid].sym].name,
				c.syms[c.defconfigList].name),
				p.filename, p.linenr)
		}

	case p.checkToken(tModules):
		// Only warn when 'option modules' appears on some symbol other
		// than MODULES, which the modules handling assumes.
		if c.nodes[nid].kind != ItemSymbol || c.nodes[nid].sym != c.modules {
			c.warnAt("the 'modules' option is not supported. Modules are "+
				"still supported, with the symbol assumed to be named "+
				"MODULES, like older versions of the C implementation "+
				"assumed when 'option modules' wasn't used.",
				p.filename, p.linenr)
		}

	case p.checkToken(tAllnoconfigY):
		if c.nodes[nid].kind != ItemSymbol {
			return p.parseError(
				"the 'allnoconfig_y' option is only valid for symbols")
		}

		c.syms[c.nodes[nid].sym].isAllnoconfigY = true

	default:
		return p.parseError("unrecognized option")
	}

	return nil
}

// setType records a type on the item backing nid, warning when the item
// was already given a different type.
func (p *parser) setType(nid nodeID, newType Type) error {
	c := p.cfg

	var orig *Type

	switch nd := &c.nodes[nid]; nd.kind {
	case ItemSymbol:
		orig = &c.syms[nd.sym].origType

	case ItemChoice:
		orig = &c.choices[nd.choice].origType

	default:
		return p.parseError("only symbols and choices can be given a type")
	}

	if *orig != TypeUnknown && *orig != newType {
		c.warn(fmt.Sprintf("%s defined with multiple types, %s will be used",
			p.itemNameAndLoc(nid), newType))
	}

	*orig = newType

	return nil
}

// parsePrompt parses a prompt. Prompts override each other within a
// single definition location, while each location can contribute its own.
func (p *parser) parsePrompt(nid nodeID) error {
	c := p.cfg

	if kind := c.nodes[nid].kind; kind != ItemSymbol && kind != ItemChoice {
		return p.parseError(`"prompt" is only valid for symbols and choices`)
	}

	if c.nodes[nid].hasPrompt {
		c.warn(p.itemNameAndLoc(nid) +
			" defined with multiple prompts in single location")
	}

	prompt, err := p.expectStr()
	if err != nil {
		return err
	}

	if prompt != strings.TrimSpace(prompt) {
		c.warn(p.itemNameAndLoc(nid) +
			" has leading or trailing whitespace in its prompt")

		prompt = strings.TrimSpace(prompt)
	}

	cond, err := p.parseCond()
	if err != nil {
		return err
	}

	nd := &c.nodes[nid]
	nd.hasPrompt = true
	nd.prompt = prompt
	nd.promptCond = cond

	return nil
}

// parseHelp reads a help text. Help bypasses the tokenizer: the text runs
// from the first non-blank line after the keyword to the first non-blank
// line with less indentation than that one.
func (p *parser) parseHelp(nid nodeID) {
	c := p.cfg

	if c.nodes[nid].hasHelp {
		c.warn(p.itemNameAndLoc(nid) +
			" defined with more than one help text -- only the last one " +
			"will be used")
	}

	var line string

	for {
		line = p.file.readLine()
		p.linenr++

		if line == "" || strings.TrimSpace(line) != "" {
			break
		}
	}

	if line == "" {
		c.warn(p.itemNameAndLoc(nid) + " has 'help' but empty help text")

		c.nodes[nid].hasHelp = true
		c.nodes[nid].help = ""

		return
	}

	indent := indentation(line)
	if indent == 0 {
		// A first non-blank line at column zero means there is no help
		// text at all.
		c.warn(p.itemNameAndLoc(nid) + " has 'help' but empty help text")

		c.nodes[nid].hasHelp = true
		c.nodes[nid].help = ""
		p.saved = line
		p.hasSaved = true

		return
	}

	var lines []string

	for line != "" && (strings.TrimSpace(line) == "" || indentation(line) >= indent) {
		expanded := expandTabs(line)

		var text string
		if len(expanded) > indent {
			text = expanded[indent:]
		}

		lines = append(lines, strings.TrimRight(text, " \t\n"))

		line = p.file.readLine()
	}

	p.linenr += len(lines)

	c.nodes[nid].hasHelp = true
	c.nodes[nid].help = strings.TrimRight(strings.Join(lines, "\n"), " \t\n")

	// The terminating line is not part of the help text. Unget it.
	p.saved = line
	p.hasSaved = true
}

// itemNameAndLoc names the node's backing symbol or choice along with its
// definition locations, for messages.
func (p *parser) itemNameAndLoc(nid nodeID) string {
	nd := &p.cfg.nodes[nid]

	if nd.kind == ItemChoice {
		return p.cfg.choiceNameAndLoc(nd.choice)
	}

	return p.cfg.symNameAndLoc(nd.sym)
}

// indentation measures a line's leading whitespace in columns, with tabs
// expanded.
func indentation(line string) int {
	expanded := expandTabs(line)

	return len(expanded) - len(strings.TrimLeft(expanded, " \t\n\v\f\r"))
}

// expandTabs replaces tabs with spaces out to the next 8-column stop,
// which is how help text indentation is measured.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}

	var buf strings.Builder

	buf.Grow(len(s) + 16)

	col := 0

	for _, r := range s {
		switch r {
		case '\t':
			n := 8 - col%8
			col += n

			for ; n > 0; n-- {
				buf.WriteByte(' ')
			}

		case '\n', '\r':
			buf.WriteRune(r)

			col = 0

		default:
			buf.WriteRune(r)

			col++
		}
	}

	return buf.String()
}

// parseExpr parses an expression from the current token list.
//
// Grammar:
//
//	expr:     andExpr ['||' expr]
//	andExpr:  factor ['&&' andExpr]
//	factor:   <symbol> ['='/'!='/'<'/... <symbol>]
//	          '!' factor
//	          '(' expr ')'
//
// Operator precedence falls out of the grammar, with ! binding tightest.
// A || B || C parses right leaning. Parsing builds the trees as written,
// without simplification, so rendering an expression gives back its
// source form.
//
// transformM rewrites a bare m to m && MODULES, the way conditional
// expressions treat m.
func (p *parser) parseExpr(transformM bool) (exprID, error) {
	lhs, err := p.parseAndExpr(transformM)
	if err != nil {
		return noExpr, err
	}

	if !p.checkToken(tOr) {
		return lhs, nil
	}

	rhs, err := p.parseExpr(transformM)
	if err != nil {
		return noExpr, err
	}

	return p.cfg.newExpr(exprNode{
		op:     opOr,
		lhs:    lhs,
		rhs:    rhs,
		sym:    noSym,
		choice: noChoice,
	}), nil
}

func (p *parser) parseAndExpr(transformM bool) (exprID, error) {
	lhs, err := p.parseFactor(transformM)
	if err != nil {
		return noExpr, err
	}

	if !p.checkToken(tAnd) {
		return lhs, nil
	}

	rhs, err := p.parseAndExpr(transformM)
	if err != nil {
		return noExpr, err
	}

	return p.cfg.newExpr(exprNode{
		op:     opAnd,
		lhs:    lhs,
		rhs:    rhs,
		sym:    noSym,
		choice: noChoice,
	}), nil
}

func (p *parser) parseFactor(transformM bool) (exprID, error) {
	c := p.cfg

	switch tok := p.nextToken(); tok.kind {
	case tSymRef:
		op, isRel := relOp(p.peekToken().kind)
		if !isRel {
			// Plain symbol
			if transformM && tok.sym == c.triSym[M] {
				return c.newExpr(exprNode{
					op:     opAnd,
					lhs:    c.mExpr,
					rhs:    c.symExpr(c.modules),
					sym:    noSym,
					choice: noChoice,
				}), nil
			}

			return c.symExpr(tok.sym), nil
		}

		// Relation
		p.nextToken()

		rhs, err := p.expectSym()
		if err != nil {
			return noExpr, err
		}

		return c.makeRelation(op, tok.sym, rhs), nil

	case tNot:
		e, err := p.parseFactor(transformM)
		if err != nil {
			return noExpr, err
		}

		return c.makeNot(e), nil

	case tOpenParen:
		e, err := p.parseExpr(transformM)
		if err != nil {
			return noExpr, err
		}

		if p.checkToken(tCloseParen) {
			return e, nil
		}
	}

	return noExpr, p.exprError()
}

// EvalString parses and evaluates s as a conditional expression, the way
// 'if' conditions are evaluated, and returns its tri value. References to
// undefined symbols are warned about and evaluate to n. A bare m is
// rewritten to m && MODULES, so "m" evaluates to n unless modules are
// enabled.
func (c *Config) EvalString(s string) (Tri, error) {
	p := &parser{cfg: c}

	p.line = s

	tokens, err := p.tokenize("if " + s)
	if err != nil {
		return N, err
	}

	// Drop the leading if token, which only primes the tokenizer.
	p.tokens = tokens[1:]
	p.toki = -1

	e, err := p.parseExpr(true)
	if err != nil {
		return N, err
	}

	return c.exprValue(e), nil
}
