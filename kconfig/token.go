package kconfig

import "strings"

// tokenKind identifies one lexical token of the Kconfig language. The zero
// value tEOL doubles as the end-of-line terminator appended to every token
// list, which keeps the fetch helpers branch-free.
type tokenKind int8

const (
	tEOL tokenKind = iota
	tSymRef
	tStrLit
	tAllnoconfigY
	tAnd
	tBool
	tChoice
	tCloseParen
	tComment
	tConfig
	tDefBool
	tDefHex
	tDefInt
	tDefString
	tDefTristate
	tDefault
	tDefconfigList
	tDepends
	tEndchoice
	tEndif
	tEndmenu
	tEnv
	tEqual
	tGreater
	tGreaterEqual
	tHelp
	tHex
	tIf
	tImply
	tInt
	tLess
	tLessEqual
	tMainmenu
	tMenu
	tMenuconfig
	tModules
	tNot
	tOn
	tOpenParen
	tOption
	tOptional
	tOr
	tOrsource
	tOsource
	tPrompt
	tRange
	tRsource
	tSelect
	tSource
	tString
	tTristate
	tUnequal
	tVisible

	tokenKindCount
)

// token is one lexed token. tSymRef tokens carry the symbol in sym, tStrLit
// tokens carry the text in str, and every other kind is self-describing.
type token struct {
	str  string
	sym  symID
	kind tokenKind
}

// keywords maps Kconfig keyword spellings to token kinds. boolean is an old
// alias for bool, ---help--- for help, and gsource/grsource are compatibility
// aliases for osource/orsource.
var keywords = map[string]tokenKind{
	"---help---":     tHelp,
	"allnoconfig_y":  tAllnoconfigY,
	"bool":           tBool,
	"boolean":        tBool,
	"choice":         tChoice,
	"comment":        tComment,
	"config":         tConfig,
	"def_bool":       tDefBool,
	"def_hex":        tDefHex,
	"def_int":        tDefInt,
	"def_string":     tDefString,
	"def_tristate":   tDefTristate,
	"default":        tDefault,
	"defconfig_list": tDefconfigList,
	"depends":        tDepends,
	"endchoice":      tEndchoice,
	"endif":          tEndif,
	"endmenu":        tEndmenu,
	"env":            tEnv,
	"grsource":       tOrsource,
	"gsource":        tOsource,
	"help":           tHelp,
	"hex":            tHex,
	"if":             tIf,
	"imply":          tImply,
	"int":            tInt,
	"mainmenu":       tMainmenu,
	"menu":           tMenu,
	"menuconfig":     tMenuconfig,
	"modules":        tModules,
	"on":             tOn,
	"option":         tOption,
	"optional":       tOptional,
	"orsource":       tOrsource,
	"osource":        tOsource,
	"prompt":         tPrompt,
	"range":          tRange,
	"rsource":        tRsource,
	"select":         tSelect,
	"source":         tSource,
	"string":         tString,
	"tristate":       tTristate,
	"visible":        tVisible,
}

// stringLex holds the keywords after which an unquoted word or a quoted
// string lexes as plain text rather than as a symbol reference. This is why
// the tokenizer tracks one token of lookback.
var stringLex = kindSet(
	tBool, tChoice, tComment, tHex, tInt, tMainmenu, tMenu, tOrsource,
	tOsource, tPrompt, tRsource, tSource, tString, tTristate,
)

// typeTokens holds the plain type keywords, which also introduce an optional
// inline prompt.
var typeTokens = kindSet(tBool, tTristate, tInt, tHex, tString)

// defTypeTokens holds the def_* keywords, which declare a type and a default
// in one property.
var defTypeTokens = kindSet(tDefBool, tDefTristate, tDefInt, tDefHex, tDefString)

func kindSet(kinds ...tokenKind) [tokenKindCount]bool {
	var set [tokenKindCount]bool

	for _, k := range kinds {
		set[k] = true
	}

	return set
}

// tokenType maps type and def_* keywords to the symbol type they declare.
var tokenType = [tokenKindCount]Type{
	tBool:        TypeBool,
	tDefBool:     TypeBool,
	tDefHex:      TypeHex,
	tDefInt:      TypeInt,
	tDefString:   TypeString,
	tDefTristate: TypeTristate,
	tHex:         TypeHex,
	tInt:         TypeInt,
	tString:      TypeString,
	tTristate:    TypeTristate,
}

// relOp maps a relational token to the expression operator it denotes.
func relOp(k tokenKind) (exprOp, bool) {
	switch k {
	case tEqual:
		return opEqual, true
	case tUnequal:
		return opUnequal, true
	case tLess:
		return opLess, true
	case tLessEqual:
		return opLessEqual, true
	case tGreater:
		return opGreater, true
	case tGreaterEqual:
		return opGreaterEqual, true
	}

	return opNone, false
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}

	return false
}

// isCommandByte matches the characters allowed in the first word on a line.
func isCommandByte(b byte) bool {
	return b == '$' || b == '-' || b == '_' ||
		'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || '0' <= b && b <= '9'
}

// isNameByte matches the characters allowed in identifiers and keywords past
// the first word. Paths in source statements are the reason for / and .
func isNameByte(b byte) bool {
	return b == '/' || b == '.' || b == '-' || b == '_' ||
		'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || '0' <= b && b <= '9'
}

func isWordByte(b byte) bool {
	return b == '_' ||
		'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || '0' <= b && b <= '9'
}

// tokenize lexes one logical line into a tEOL-terminated token list,
// registering any new symbols it encounters. The caller keeps p.line
// current, so error messages show the line being lexed. This is the
// hottest spot during parsing.
func (p *parser) tokenize(s string) ([]token, error) {
	// The first word determines how the rest of the line lexes, so it gets
	// special treatment.
	i := 0
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}

	start := i
	for i < len(s) && isCommandByte(s[i]) {
		i++
	}

	if i == start {
		// Blank lines and comment lines yield an empty token list.
		if strings.TrimSpace(s) == "" || strings.HasPrefix(strings.TrimLeft(s, " \t\n\v\f\r"), "#") {
			return []token{{kind: tEOL}}, nil
		}

		return nil, p.parseError("unknown token at start of line")
	}

	word := s[start:i]

	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}

	kind, ok := keywords[word]
	if !ok {
		// Old versions of the C tools accepted sloppy spellings like
		// --help-- and -help---, and some Kconfig files still carry them.
		if strings.Trim(s, " \t\n-") == "help" {
			return []token{{kind: tHelp}, {kind: tEOL}}, nil
		}

		return nil, p.parseError("unknown token at start of line")
	}

	tokens := make([]token, 0, 8)
	tokens = append(tokens, token{kind: kind})

	// prev is the kind of the previous token, which decides whether a word
	// or quoted string is text or a symbol reference.
	prev := kind

	for i < len(s) {
		if isNameByte(s[i]) {
			// An identifier or keyword, the most common case.
			start := i
			for i < len(s) && isNameByte(s[i]) {
				i++
			}

			name := s[start:i]

			for i < len(s) && isSpaceByte(s[i]) {
				i++
			}

			switch kw, ok := keywords[name]; {
			case ok:
				prev = kw
				tokens = append(tokens, token{kind: kw})

			case !stringLex[prev]:
				// A symbol reference, except that bare n, m, and y denote
				// the constants, like in the C implementation.
				var id symID
				if tri, isTri := ParseTri(name); isTri {
					id = p.cfg.triSym[tri]
				} else {
					id = p.cfg.lookupSym(name)
					p.noteRef(id)
				}

				prev = tSymRef
				tokens = append(tokens, token{kind: tSymRef, sym: id})

			default:
				// Missing quotes, as in "menu unquoted_title". Accepted for
				// compatibility; named choices also land here.
				prev = tStrLit
				tokens = append(tokens, token{kind: tStrLit, str: name})
			}

			continue
		}

		var tok token

		switch c := s[i]; {
		case c == '"' || c == '\'':
			val, end, err := p.scanString(s, i)
			if err != nil {
				return nil, err
			}

			i = end
			val = expandVars(val, p.cfg.env)

			// The one spot where a single token of lookback is not enough:
			// the value in 'option env="FOO"' is text, not a constant
			// symbol named FOO.
			if stringLex[prev] || tokens[0].kind == tOption {
				tok = token{kind: tStrLit, str: val}
			} else {
				tok = token{kind: tSymRef, sym: p.cfg.lookupConstSym(val)}
			}

		case strings.HasPrefix(s[i:], "&&"):
			tok = token{kind: tAnd}
			i += 2

		case strings.HasPrefix(s[i:], "||"):
			tok = token{kind: tOr}
			i += 2

		case c == '=':
			tok = token{kind: tEqual}
			i++

		case strings.HasPrefix(s[i:], "!="):
			tok = token{kind: tUnequal}
			i += 2

		case c == '!':
			tok = token{kind: tNot}
			i++

		case c == '(':
			tok = token{kind: tOpenParen}
			i++

		case c == ')':
			tok = token{kind: tCloseParen}
			i++

		case c == '#':
			// Trailing comment
			tokens = append(tokens, token{kind: tEOL})

			return tokens, nil

		case strings.HasPrefix(s[i:], "<="):
			tok = token{kind: tLessEqual}
			i += 2

		case c == '<':
			tok = token{kind: tLess}
			i++

		case strings.HasPrefix(s[i:], ">="):
			tok = token{kind: tGreaterEqual}
			i += 2

		case c == '>':
			tok = token{kind: tGreater}
			i++

		default:
			return nil, p.parseError("unknown tokens in line")
		}

		for i < len(s) && isSpaceByte(s[i]) {
			i++
		}

		prev = tok.kind
		tokens = append(tokens, tok)
	}

	tokens = append(tokens, token{kind: tEOL})

	return tokens, nil
}

// scanString lexes the quoted string starting at s[i]. It returns the string
// contents with escape backslashes removed and the index just past the
// closing quote. A quote character of the other kind passes through as a
// regular character.
func (p *parser) scanString(s string, i int) (string, int, error) {
	quote := s[i]

	var buf strings.Builder

	for i++; i < len(s); i++ {
		switch c := s[i]; c {
		case quote:
			return buf.String(), i + 1, nil

		case '\\':
			if i+1 == len(s) {
				return "", 0, p.parseError("unterminated string")
			}

			i++

			buf.WriteByte(s[i])

		default:
			buf.WriteByte(c)
		}
	}

	return "", 0, p.parseError("unterminated string")
}

// expandVars substitutes $NAME and ${NAME} environment references in s,
// leaving references to unset variables and stray dollar signs as is.
// Substituted values are not rescanned.
func expandVars(s string, env map[string]string) string {
	i := strings.IndexByte(s, '$')
	if i < 0 {
		return s
	}

	var buf strings.Builder

	buf.Grow(len(s) + 16)
	buf.WriteString(s[:i])

	for i < len(s) {
		if s[i] != '$' {
			buf.WriteByte(s[i])
			i++

			continue
		}

		start := i
		i++

		var name string

		if i < len(s) && s[i] == '{' {
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				buf.WriteByte('$')

				continue
			}

			name = s[i+1 : i+1+end]
			i += end + 2
		} else {
			j := i
			for j < len(s) && isWordByte(s[j]) {
				j++
			}

			if j == i {
				buf.WriteByte('$')

				continue
			}

			name = s[i:j]
			i = j
		}

		if val, ok := env[name]; ok {
			buf.WriteString(val)
		} else {
			buf.WriteString(s[start:i])
		}
	}

	return buf.String()
}

// noteRef records the current source location in the symbol's reference
// list. Transient tokenization for EvalString is not recorded.
func (p *parser) noteRef(id symID) {
	if !p.cfg.parsingKconfigs {
		return
	}

	refs := p.cfg.syms[id].refs
	if n := len(refs); n > 0 && refs[n-1].file == p.filename && refs[n-1].line == p.linenr {
		return
	}

	p.cfg.syms[id].refs = append(refs, loc{file: p.filename, line: p.linenr})
}

// nextToken consumes and returns the next token on the current line. Past
// the end of the line it keeps returning the tEOL terminator.
func (p *parser) nextToken() token {
	if p.toki+1 < len(p.tokens) {
		p.toki++
	}

	return p.tokens[p.toki]
}

// peekToken returns the next token without consuming it.
func (p *parser) peekToken() token {
	if i := p.toki + 1; i < len(p.tokens) {
		return p.tokens[i]
	}

	return p.tokens[len(p.tokens)-1]
}

// checkToken consumes the next token and reports true if it is of the given
// kind, and otherwise leaves it in place.
func (p *parser) checkToken(kind tokenKind) bool {
	if p.peekToken().kind == kind {
		p.toki++

		return true
	}

	return false
}

// The helpers below are nextToken with extra syntax checking.

func (p *parser) expectSym() (symID, error) {
	tok := p.nextToken()
	if tok.kind != tSymRef {
		return noSym, p.parseError("expected symbol")
	}

	return tok.sym, nil
}

func (p *parser) expectNonconstSym() (symID, error) {
	tok := p.nextToken()
	if tok.kind != tSymRef || p.cfg.syms[tok.sym].isConstant {
		return noSym, p.parseError("expected nonconstant symbol")
	}

	return tok.sym, nil
}

func (p *parser) expectNonconstSymEOL() (symID, error) {
	id, err := p.expectNonconstSym()
	if err != nil {
		return noSym, err
	}

	if p.peekToken().kind != tEOL {
		return noSym, p.parseError("extra tokens at end of line")
	}

	return id, nil
}

func (p *parser) expectStr() (string, error) {
	tok := p.nextToken()
	if tok.kind != tStrLit {
		return "", p.parseError("expected string")
	}

	return tok.str, nil
}

func (p *parser) expectStrEOL() (string, error) {
	s, err := p.expectStr()
	if err != nil {
		return "", err
	}

	if p.peekToken().kind != tEOL {
		return "", p.parseError("extra tokens at end of line")
	}

	return s, nil
}
