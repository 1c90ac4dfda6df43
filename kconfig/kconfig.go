package kconfig

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/ardnew/kconf/log"
)

// Arena handles. All symbols, choices, menu nodes, and expressions live in
// flat slices owned by their Config, and refer to each other by index.
type (
	symID    int32
	choiceID int32
	nodeID   int32
	exprID   int32
)

const (
	noSym    symID    = -1
	noChoice choiceID = -1
	noNode   nodeID   = -1
	noExpr   exprID   = -1
)

// loc is a source position used for diagnostics.
type loc struct {
	file string
	line int
}

// Config is a parsed Kconfig configuration: the menu tree rooted at the top
// node together with every symbol and choice it defines or references.
//
// A Config is built with Load or LoadString and is not safe for concurrent
// mutation. All state lives on the Config itself, so independent Configs
// with different environments can coexist in one process.
type Config struct {
	syms    []symRec
	choices []choiceRec
	nodes   []nodeRec
	exprs   []exprNode

	symNames   map[string]symID
	constNames map[string]symID

	triSym [3]symID
	nExpr  exprID
	mExpr  exprID
	yExpr  exprID

	definedSyms   []symID
	uniqueDefined []symID
	namedChoices  map[string]choiceID
	menus         []nodeID
	comments      []nodeID

	topNode       nodeID
	modules       symID
	defconfigList symID

	srctree []string
	env     map[string]string
	overlay map[string]string
	prefix  string

	logger   log.Logger
	warnings []string

	warnEnabled      bool
	warnUndefEnabled bool
	warnRedunEnabled bool
	warnNoPrompt     bool

	parsingKconfigs bool
}

// options carries the knobs applied before parsing starts.
type options struct {
	env       []string
	srctree   []string
	overlay   map[string]string
	prefix    string
	logger    log.Logger
	hasPrefix bool
	warn      bool
	warnUndef bool
	warnRedun bool
}

// Option applies a configuration option before loading.
type Option func(options) options

func apply(opt options, opts ...Option) options {
	for _, o := range opts {
		opt = o(opt)
	}

	return opt
}

// WithEnv supplies the environment used for $VAR expansion and for the
// srctree, CONFIG_, and KCONFIG_STRICT lookups, as KEY=VALUE pairs. The
// process environment is used when this option is absent.
func WithEnv(pairs []string) Option {
	return func(o options) options {
		o.env = pairs

		return o
	}
}

// WithSrctree supplies the roots that Kconfig files are resolved against, in
// decreasing priority. Without this option the single root comes from the
// srctree environment variable, defaulting to the current directory.
func WithSrctree(roots ...string) Option {
	return func(o options) options {
		o.srctree = roots

		return o
	}
}

// WithPrefix overrides the symbol prefix used in configuration files.
// Without this option the prefix comes from the CONFIG_ environment
// variable, defaulting to "CONFIG_".
func WithPrefix(prefix string) Option {
	return func(o options) options {
		o.prefix = prefix
		o.hasPrefix = true

		return o
	}
}

// WithLogger routes warnings and trace output to the given logger.
func WithLogger(logger log.Logger) Option {
	return func(o options) options {
		o.logger = logger

		return o
	}
}

// WithOverlay supplies in-memory file contents consulted before the
// filesystem, keyed by path. Multiple overlays merge, later entries winning.
func WithOverlay(files map[string]string) Option {
	return func(o options) options {
		if o.overlay == nil {
			o.overlay = make(map[string]string, len(files))
		}

		maps.Copy(o.overlay, files)

		return o
	}
}

// WithWarnings enables or disables warning collection. Warnings generated
// during parsing are only seen when enabled up front.
func WithWarnings(enable bool) Option {
	return func(o options) options {
		o.warn = enable

		return o
	}
}

// WithUndefWarnings enables warnings for assignments to undefined symbols
// when loading configuration files.
func WithUndefWarnings(enable bool) Option {
	return func(o options) options {
		o.warnUndef = enable

		return o
	}
}

// WithRedunWarnings enables warnings for redundant assignments when loading
// configuration files.
func WithRedunWarnings(enable bool) Option {
	return func(o options) options {
		o.warnRedun = enable

		return o
	}
}

// Load parses the Kconfig file tree rooted at filename and returns the
// finalized configuration. The filename is resolved against the srctree
// roots, as are files pulled in with source statements.
func Load(filename string, opts ...Option) (*Config, error) {
	opt := apply(options{warn: true, warnRedun: true}, opts...)

	if opt.env == nil {
		opt.env = os.Environ()
	}

	if opt.logger.Logger == nil {
		opt.logger = log.Default()
	}

	c := &Config{
		symNames:         make(map[string]symID, 512),
		constNames:       make(map[string]symID, 64),
		namedChoices:     make(map[string]choiceID),
		env:              environMap(opt.env),
		overlay:          opt.overlay,
		logger:           opt.logger,
		warnEnabled:      opt.warn,
		warnUndefEnabled: opt.warnUndef,
		warnRedunEnabled: opt.warnRedun,
		topNode:          noNode,
		modules:          noSym,
		defconfigList:    noSym,
	}

	if c.srctree = opt.srctree; c.srctree == nil {
		if root := c.env["srctree"]; root != "" {
			c.srctree = []string{root}
		} else {
			c.srctree = []string{""}
		}
	}

	if opt.hasPrefix {
		c.prefix = opt.prefix
	} else if prefix, ok := c.env["CONFIG_"]; ok {
		c.prefix = prefix
	} else {
		c.prefix = "CONFIG_"
	}

	// The n, m, and y constants, with their tri values pinned. Every
	// symbol's dependency fields point at the n leaf until properties are
	// attached, which also makes the constants themselves well-formed.
	for t := N; t <= Y; t++ {
		id := c.addSym(t.String())
		rec := &c.syms[id]
		rec.isConstant = true
		rec.origType = TypeTristate
		rec.cachedTri, rec.triOK = t, true

		c.constNames[t.String()] = id
		c.triSym[t] = id
	}

	c.nExpr = c.symExpr(c.triSym[N])
	c.mExpr = c.symExpr(c.triSym[M])
	c.yExpr = c.symExpr(c.triSym[Y])

	for t := N; t <= Y; t++ {
		rec := &c.syms[c.triSym[t]]
		rec.directDep, rec.revDep, rec.weakRevDep = c.nExpr, c.nExpr, c.nExpr
	}

	c.parsingKconfigs = true
	c.modules = c.lookupSym("MODULES")

	c.topNode = c.addNode(nodeRec{
		kind:         ItemMenu,
		sym:          noSym,
		choice:       noChoice,
		isMenuconfig: true,
		hasPrompt:    true,
		prompt:       "Main menu",
		promptCond:   c.yExpr,
		visibility:   c.yExpr,
		dep:          c.yExpr,
		parent:       noNode,
		next:         noNode,
		list:         noNode,
		filename:     filename,
		linenr:       1,
	})

	p := &parser{cfg: c, filename: filename}
	if err := p.openTop(filename); err != nil {
		return nil, err
	}

	if _, err := p.parseBlock(tEOL, c.topNode, c.topNode); err != nil {
		return nil, err
	}

	top := &c.nodes[c.topNode]
	top.list = top.next
	top.next = noNode

	// Symbols defined in several locations appear once per location in
	// definedSyms. Most passes below only want each symbol once.
	c.uniqueDefined = dedupSyms(c.definedSyms)

	c.parsingKconfigs = false

	c.finalizeTree(c.topNode, c.yExpr)

	for _, id := range c.uniqueDefined {
		if err := c.checkSymSanity(id); err != nil {
			return nil, err
		}
	}

	for id := range c.choices {
		if err := c.checkChoiceSanity(choiceID(id)); err != nil {
			return nil, err
		}
	}

	if c.env["KCONFIG_STRICT"] == "y" {
		c.checkUndefinedSyms()
	}

	c.buildDep()

	if err := c.checkDepLoops(); err != nil {
		return nil, err
	}

	c.addChoiceDeps()

	c.warnNoPrompt = true

	c.logger.Debug("loaded configuration",
		slog.String("file", filename),
		slog.Int("symbols", len(c.uniqueDefined)),
		slog.Int("choices", len(c.choices)))

	return c, nil
}

// LoadString parses a configuration from an in-memory Kconfig text. Files
// sourced by the text still resolve against the srctree roots.
func LoadString(content string, opts ...Option) (*Config, error) {
	opts = append(opts, WithOverlay(map[string]string{"Kconfig": content}))

	return Load("Kconfig", opts...)
}

func environMap(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		if k, v, ok := strings.Cut(pair, "="); ok {
			env[k] = v
		}
	}

	return env
}

func dedupSyms(ids []symID) []symID {
	seen := make(map[symID]struct{}, len(ids))
	unique := make([]symID, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	return unique
}

func (c *Config) addSym(name string) symID {
	c.syms = append(c.syms, symRec{
		name:       name,
		expr:       noExpr,
		choice:     noChoice,
		directDep:  c.nExpr,
		revDep:     c.nExpr,
		weakRevDep: c.nExpr,
	})

	return symID(len(c.syms) - 1)
}

// lookupSym fetches the named symbol, creating and registering it if it does
// not exist. Outside of parsing, which is to say from EvalString, new names
// are not registered and produce a warning instead.
func (c *Config) lookupSym(name string) symID {
	if id, ok := c.symNames[name]; ok {
		return id
	}

	id := c.addSym(name)

	if c.parsingKconfigs {
		c.symNames[name] = id
	} else {
		c.warn(fmt.Sprintf("no symbol %s in configuration", name))
	}

	return id
}

// lookupConstSym is lookupSym for constant (quoted) symbols.
func (c *Config) lookupConstSym(name string) symID {
	if id, ok := c.constNames[name]; ok {
		return id
	}

	id := c.addSym(name)
	c.syms[id].isConstant = true

	if c.parsingKconfigs {
		c.constNames[name] = id
	}

	return id
}

func (c *Config) addNode(rec nodeRec) nodeID {
	c.nodes = append(c.nodes, rec)

	return nodeID(len(c.nodes) - 1)
}

// warnAt records a warning, prefixed with its source position when one is
// known. All warnings accumulate in the Warnings list; the logger gets the
// structured form.
func (c *Config) warnAt(msg, file string, line int) {
	if !c.warnEnabled {
		return
	}

	full := "warning: " + msg
	if file != "" {
		full = fmt.Sprintf("%s:%d: %s", file, line, full)
	}

	c.warnings = append(c.warnings, full)

	if file != "" {
		c.logger.Warn(msg, slog.String("file", file), slog.Int("line", line))
	} else {
		c.logger.Warn(msg)
	}
}

func (c *Config) warn(msg string) {
	c.warnAt(msg, "", 0)
}

func (c *Config) warnUndefAt(msg, file string, line int) {
	if c.warnUndefEnabled {
		c.warnAt(msg, file, line)
	}
}

func (c *Config) warnRedunAt(msg, file string, line int) {
	if c.warnRedunEnabled {
		c.warnAt(msg, file, line)
	}
}

// Warnings returns every warning generated so far, oldest first.
func (c *Config) Warnings() []string {
	return slices.Clone(c.warnings)
}

// EnableWarnings enables warning collection.
func (c *Config) EnableWarnings() { c.warnEnabled = true }

// DisableWarnings disables warning collection.
func (c *Config) DisableWarnings() { c.warnEnabled = false }

// EnableUndefWarnings enables warnings for assignments to undefined symbols
// in loaded configuration files.
func (c *Config) EnableUndefWarnings() { c.warnUndefEnabled = true }

// DisableUndefWarnings disables warnings for assignments to undefined
// symbols in loaded configuration files.
func (c *Config) DisableUndefWarnings() { c.warnUndefEnabled = false }

// EnableRedunWarnings enables warnings for redundant assignments in loaded
// configuration files.
func (c *Config) EnableRedunWarnings() { c.warnRedunEnabled = true }

// DisableRedunWarnings disables warnings for redundant assignments in loaded
// configuration files.
func (c *Config) DisableRedunWarnings() { c.warnRedunEnabled = false }

// MainmenuText returns the prompt of the top menu node, which a mainmenu
// statement overrides.
func (c *Config) MainmenuText() string {
	return c.nodes[c.topNode].prompt
}

// ConfigPrefix returns the symbol name prefix used in configuration files
// and C headers, CONFIG_ unless overridden.
func (c *Config) ConfigPrefix() string {
	return c.prefix
}

// Top returns the top node of the menu tree.
func (c *Config) Top() MenuNode {
	return MenuNode{cfg: c, id: c.topNode}
}

// Modules returns the symbol designated as the modules symbol, named
// MODULES. It is undefined in configurations without modules support.
func (c *Config) Modules() Symbol {
	return Symbol{cfg: c, id: c.modules}
}

// DefconfigList returns the symbol carrying 'option defconfig_list', if any.
func (c *Config) DefconfigList() (Symbol, bool) {
	if c.defconfigList == noSym {
		return Symbol{}, false
	}

	return Symbol{cfg: c, id: c.defconfigList}, true
}

// Sym returns the named non-constant symbol. Symbols that are merely
// referenced, without a definition, are included.
func (c *Config) Sym(name string) (Symbol, bool) {
	id, ok := c.symNames[name]
	if !ok {
		return Symbol{}, false
	}

	return Symbol{cfg: c, id: id}, true
}

// Symbols returns every defined symbol once, in definition order.
func (c *Config) Symbols() []Symbol {
	return c.symbolHandles(c.uniqueDefined)
}

// DefinedSymbols returns defined symbols in definition order, with one entry
// per definition location for symbols defined more than once.
func (c *Config) DefinedSymbols() []Symbol {
	return c.symbolHandles(c.definedSyms)
}

// AllSymbols returns every known non-constant symbol, defined or not, in
// name order.
func (c *Config) AllSymbols() []Symbol {
	names := slices.Sorted(maps.Keys(c.symNames))

	res := make([]Symbol, len(names))
	for i, name := range names {
		res[i] = Symbol{cfg: c, id: c.symNames[name]}
	}

	return res
}

func (c *Config) symbolHandles(ids []symID) []Symbol {
	res := make([]Symbol, len(ids))
	for i, id := range ids {
		res[i] = Symbol{cfg: c, id: id}
	}

	return res
}

// Choices returns every choice, named or not, in definition order.
func (c *Config) Choices() []Choice {
	res := make([]Choice, len(c.choices))
	for i := range c.choices {
		res[i] = Choice{cfg: c, id: choiceID(i)}
	}

	return res
}

// Menus returns every menu node in definition order.
func (c *Config) Menus() []MenuNode {
	return c.nodeHandles(c.menus)
}

// Comments returns every comment node in definition order.
func (c *Config) Comments() []MenuNode {
	return c.nodeHandles(c.comments)
}

func (c *Config) nodeHandles(ids []nodeID) []MenuNode {
	res := make([]MenuNode, len(ids))
	for i, id := range ids {
		res[i] = MenuNode{cfg: c, id: id}
	}

	return res
}

// Nodes returns the menu nodes of the tree in depth-first order, excluding
// the top node. With skipDuplicates, only the first node of each symbol is
// included, so each symbol appears once.
func (c *Config) Nodes(skipDuplicates bool) []MenuNode {
	var res []MenuNode

	if skipDuplicates {
		for _, id := range c.uniqueDefined {
			c.syms[id].visited = false
		}
	}

	w := c.startWalk()
	for id := w.next(); id != noNode; id = w.next() {
		if skipDuplicates && c.nodes[id].kind == ItemSymbol {
			rec := &c.syms[c.nodes[id].sym]
			if rec.visited {
				continue
			}

			rec.visited = true
		}

		res = append(res, MenuNode{cfg: c, id: id})
	}

	return res
}

// UnsetValues resets the user values of all symbols and choices, as if no
// values had ever been assigned.
func (c *Config) UnsetValues() {
	c.warnNoPrompt = false
	defer func() { c.warnNoPrompt = true }()

	for _, id := range c.uniqueDefined {
		c.symUnsetValue(id)
	}

	for id := range c.choices {
		c.choiceUnsetValue(choiceID(id))
	}
}
