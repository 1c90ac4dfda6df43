package kconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
)

// Default headers written at the top of generated configuration files.
// WriteConfig and friends write the header they are given verbatim, so
// callers wanting the conventional first line pass these.
const (
	DefaultConfigHeader   = "# Generated by kconf (https://github.com/ardnew/kconf)\n"
	DefaultAutoconfHeader = "/* Generated by kconf (https://github.com/ardnew/kconf) */\n"
)

// DefconfigFilename returns the first existing configuration file named by
// the defconfig_list symbol's defaults whose conditions are satisfied, or
// "" when no default configuration exists. Candidates are resolved against
// the source roots, like filenames passed to LoadConfig.
func (c *Config) DefconfigFilename() string {
	if c.defconfigList == noSym {
		return ""
	}

	for _, d := range c.syms[c.defconfigList].defaults {
		if c.exprValue(d.cond) == N || c.exprs[d.val].op != opSym {
			continue
		}

		if _, path, err := c.openConfig(c.symStrValue(c.exprs[d.val].sym)); err == nil {
			return path
		}
	}

	return ""
}

// LoadConfig assigns symbol values from a file in the .config format,
// equivalent to calling Symbol.SetValue for each entry. A line of the form
// "# PREFIX<NAME> is not set" assigns n, like the C tools. With replace,
// user values the file does not mention are cleared afterwards; without it
// the file is merged over the current values. An empty filename loads the
// file DefconfigFilename reports.
//
// The user value recorded for a symbol can differ from its visible value
// when the symbol has unsatisfied dependencies.
func (c *Config) LoadConfig(filename string, replace bool) error {
	// Assigning to symbols without prompts is normal and expected within
	// a configuration file.
	c.warnNoPrompt = false
	defer func() { c.warnNoPrompt = true }()

	if filename == "" {
		filename = c.DefconfigFilename()
		if filename == "" {
			return &loadError{
				err:    ErrLoadConfig,
				detail: "no configuration file given and no defconfig file exists",
			}
		}
	}

	content, _, err := c.openConfig(filename)
	if err != nil {
		return err
	}

	c.loadConfig(content, filename, replace)

	return nil
}

func (c *Config) loadConfig(content, filename string, replace bool) {
	if replace {
		// Track which symbols and choices get set so that the rest can
		// be unset afterwards. That avoids invalidating everything,
		// which would be slower.
		for _, s := range c.uniqueDefined {
			c.syms[s].wasSet = false
		}

		for ch := range c.choices {
			c.choices[ch].wasSet = false
		}
	}

	file := &srcFile{data: content}

	for linenr := 1; ; linenr++ {
		line := file.readLine()
		if line == "" {
			break
		}

		// The C tools ignore trailing whitespace.
		line = strings.TrimRight(line, " \t\r\n\v\f")

		var (
			s   symID
			val string
		)

		if name, v, ok := c.matchAssign(line); ok {
			s, ok = c.symNames[name]
			if !ok || len(c.syms[s].nodes) == 0 {
				c.warnUndefAssign(name, v, filename, linenr)

				continue
			}

			val = v
			rec := &c.syms[s]

			switch rec.origType {
			case TypeBool, TypeTristate:
				// The C implementation only checks the first character
				// to the right of '=', for whatever reason.
				ok := len(val) > 0 && (val[0] == 'n' || val[0] == 'y' ||
					(rec.origType == TypeTristate && val[0] == 'm'))
				if !ok {
					c.warnAt(fmt.Sprintf(
						"'%s' is not a valid value for the %s symbol %s. "+
							"Assignment ignored.",
						val, rec.origType, c.symNameAndLoc(s)),
						filename, linenr)

					continue
				}

				val = val[:1]

				if rec.choice != noChoice && val != "n" {
					// The mode of the choice is inferred from the kind
					// of values assigned to the choice symbols.
					ch := &c.choices[rec.choice]
					if ch.hasUser && ch.userVal.String() != val {
						c.warnAt("both m and y assigned to symbols "+
							"within the same choice", filename, linenr)
					}

					c.choiceSetString(rec.choice, val)
				}

			case TypeString:
				v, ok := matchConfString(val)
				if !ok {
					c.warnAt(fmt.Sprintf(
						"malformed string literal in assignment to %s. "+
							"Assignment ignored.", c.symNameAndLoc(s)),
						filename, linenr)

					continue
				}

				val = v
			}
		} else if name, ok := c.matchUnset(line); ok {
			s, ok = c.symNames[name]
			if !ok {
				c.warnUndefAssign(name, "n", filename, linenr)

				continue
			}

			if c.syms[s].origType != TypeBool && c.syms[s].origType != TypeTristate {
				continue
			}

			val = "n"
		} else {
			// Neither an assignment nor an unset comment. Warn for
			// lines that are not blank or comments.
			if line != "" && !strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
				c.warnAt(fmt.Sprintf("ignoring malformed line '%s'", line),
					filename, linenr)
			}

			continue
		}

		rec := &c.syms[s]
		if rec.wasSet {
			// Bool and tristate user values display as strings in the
			// warning.
			display := rec.userVal
			if rec.origType == TypeBool || rec.origType == TypeTristate {
				display = rec.userTri.String()
			}

			msg := fmt.Sprintf(
				"%s set more than once. Old value: \"%s\", new value: \"%s\".",
				c.symNameAndLoc(s), display, val)

			if display == val {
				c.warnRedunAt(msg, filename, linenr)
			} else {
				c.warnAt(msg, filename, linenr)
			}
		}

		c.symSetString(s, val)
	}

	if replace {
		// Unset the symbols and choices the file did not set, so values
		// from an earlier configuration do not leak through.
		for _, s := range c.uniqueDefined {
			if !c.syms[s].wasSet {
				c.symUnsetValue(s)
			}
		}

		for ch := range c.choices {
			if !c.choices[ch].wasSet {
				c.choiceUnsetValue(choiceID(ch))
			}
		}
	}
}

func (c *Config) warnUndefAssign(name, val, file string, line int) {
	c.warnUndefAt(fmt.Sprintf(
		"attempt to assign the value \"%s\" to the undefined symbol %s",
		val, name), file, line)
}

// matchAssign matches a 'PREFIX<NAME>=<value>' assignment. The value is
// everything after the first '='.
func (c *Config) matchAssign(line string) (name, val string, ok bool) {
	rest, found := strings.CutPrefix(line, c.prefix)
	if !found {
		return "", "", false
	}

	name, val, found = strings.Cut(rest, "=")
	if !found || name == "" {
		return "", "", false
	}

	return name, val, true
}

// matchUnset matches a '# PREFIX<NAME> is not set' comment. Text after the
// matched part is ignored, as in the C tools.
func (c *Config) matchUnset(line string) (string, bool) {
	rest, found := strings.CutPrefix(line, "# ")
	if found {
		rest, found = strings.CutPrefix(rest, c.prefix)
	}

	if !found {
		return "", false
	}

	i := strings.IndexByte(rest, ' ')
	if i < 1 || !strings.HasPrefix(rest[i:], " is not set") {
		return "", false
	}

	return rest[:i], true
}

// matchConfString matches a leading double-quoted string with backslash
// escapes, returning its contents with the backslashes removed. Text after
// the closing quote is ignored.
func matchConfString(s string) (string, bool) {
	if len(s) == 0 || s[0] != '"' {
		return "", false
	}

	var buf strings.Builder

	for i := 1; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			return buf.String(), true

		case '\\':
			if i+1 == len(s) {
				return "", false
			}

			i++

			buf.WriteByte(s[i])

		default:
			buf.WriteByte(ch)
		}
	}

	return "", false
}

// WriteConfig writes the configuration to path in the .config format,
// preceded by the header, written verbatim. Symbols appear in Kconfig
// definition order, one entry per symbol, matching the C implementation.
// The file is left untouched when it already holds the wanted contents.
func (c *Config) WriteConfig(path, header string) error {
	return c.writeIfChanged(path, c.renderConfig(header, c.symConfigString))
}

// WriteMinConfig writes a minimal configuration to path, omitting symbols
// whose value matches the value they would have without a user value. The
// format matches 'make savedefconfig'. Loading the resulting file restores
// the full configuration.
func (c *Config) WriteMinConfig(path, header string) error {
	return c.writeIfChanged(path, c.renderConfig(header, c.minSymLine))
}

func (c *Config) minSymLine(s symID) string {
	rec := &c.syms[s]

	// Skip symbols that cannot be changed. Only check non-choice symbols,
	// since selects do not affect choice symbols.
	if rec.choice == noChoice && c.symVisibility(s) <= c.exprValue(rec.revDep) {
		return ""
	}

	// Skip symbols whose value matches their default.
	if c.symStrValue(s) == c.symStrDefault(s) {
		return ""
	}

	// Skip symbols that would be selected by default in a choice, unless
	// the choice is optional or the symbol type is not bool (the choice
	// mode could be n, or the symbol could be m, in those cases).
	if rec.choice != noChoice &&
		!c.choices[rec.choice].isOptional &&
		c.choiceDefaultSelection(rec.choice) == s &&
		rec.origType == TypeBool &&
		c.symTriValue(s) == Y {
		return ""
	}

	return c.symConfigString(s)
}

// renderConfig renders the .config text: the header, then one symLine per
// unique symbol in menu-tree order, with banner comments for the menus and
// comments whose dependencies are satisfied.
func (c *Config) renderConfig(header string, symLine func(symID) string) string {
	var buf strings.Builder

	buf.WriteString(header)

	for _, mn := range c.Nodes(true) {
		nd := &c.nodes[mn.id]

		switch {
		case nd.kind == ItemSymbol:
			buf.WriteString(symLine(nd.sym))

		case c.exprValue(nd.dep) != N &&
			((nd.kind == ItemMenu && c.exprValue(nd.visibility) != N) ||
				nd.kind == ItemComment):
			fmt.Fprintf(&buf, "\n#\n# %s\n#\n", nd.prompt)
		}
	}

	return buf.String()
}

// WriteAutoconf writes symbol values to path as a C header, matching the
// format of include/generated/autoconf.h in the kernel. The #define order
// matches WriteConfig's entry order.
func (c *Config) WriteAutoconf(path, header string) error {
	var buf strings.Builder

	buf.WriteString(header)

	for _, mn := range c.Nodes(true) {
		nd := &c.nodes[mn.id]

		switch {
		case nd.kind == ItemSymbol:
			// writeToConf is recomputed as a side effect of the value
			// lookup.
			val := c.symStrValue(nd.sym)
			rec := &c.syms[nd.sym]

			if !rec.writeToConf {
				continue
			}

			switch rec.origType {
			case TypeBool, TypeTristate:
				if val != "n" {
					suffix := ""
					if val == "m" {
						suffix = "_MODULE"
					}

					fmt.Fprintf(&buf, "#define %s%s%s 1\n",
						c.prefix, rec.name, suffix)
				}

			case TypeString:
				fmt.Fprintf(&buf, "#define %s%s \"%s\"\n",
					c.prefix, rec.name, escapeString(val))

			case TypeInt, TypeHex:
				if rec.origType == TypeHex &&
					!strings.HasPrefix(val, "0x") && !strings.HasPrefix(val, "0X") {
					val = "0x" + val
				}

				fmt.Fprintf(&buf, "#define %s%s %s\n", c.prefix, rec.name, val)

			default:
				panic(ErrInternal.With(
					slog.String("symbol", rec.name),
					slog.String("type", rec.origType.String())))
			}

		case c.exprValue(nd.dep) != N &&
			((nd.kind == ItemMenu && c.exprValue(nd.visibility) != N) ||
				nd.kind == ItemComment):
			fmt.Fprintf(&buf, "\n/*\n * %s\n */\n", nd.prompt)
		}
	}

	return c.writeIfChanged(path, buf.String())
}

// SyncDeps creates or updates dir so that incremental builds can depend on
// individual symbol values instead of the whole configuration, mirroring
// include/config/ in the kernel. Old values are loaded from dir/auto.conf
// when it exists; every symbol that would produce different autoconf output
// than before gets its flag file truncated or created, and a fresh
// auto.conf is written back afterwards.
//
// A symbol's flag file is derived from its name by lowercasing it and
// turning '_' into a directory separator, with ".h" appended: FOO_BAR_BAZ
// maps to dir/foo/bar/baz.h. The scheme matches the C tools, and keeps any
// one directory from accumulating a huge number of files. Build rules make
// source files depend on the flag files of the symbols they use, so a value
// change recompiles exactly the files that care.
func (c *Config) SyncDeps(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &loadError{
			err:    ErrWriteConfig,
			detail: fmt.Sprintf("Could not create '%s' (%s)", dir, sysErrText(err)),
		}
	}

	c.loadOldVals(dir)

	for _, s := range c.uniqueDefined {
		// writeToConf is recomputed as a side effect of the value
		// lookup.
		val := c.symStrValue(s)
		rec := &c.syms[s]

		// n-valued bool/tristate symbols are not written to auto.conf or
		// autoconf.h, making a missing symbol logically n.

		if rec.writeToConf {
			if !rec.hasOldVal &&
				(rec.origType == TypeBool || rec.origType == TypeTristate) &&
				val == "n" {
				// No old value (the symbol was missing or n) and the
				// new value is n. No change.
				continue
			}

			if rec.hasOldVal && val == rec.oldVal {
				// New value matches the old. No change.
				continue
			}
		} else if !rec.hasOldVal {
			// The symbol does not appear in autoconf.h now, and did not
			// appear before either. No change.
			continue
		}

		// The symbol has a new value. Flag it with a truncating touch,
		// mirroring the C tools.
		rel := strings.ReplaceAll(strings.ToLower(rec.name), "_", "/") + ".h"
		flag := filepath.Join(dir, filepath.FromSlash(rel))

		if err := os.MkdirAll(filepath.Dir(flag), 0o755); err != nil {
			return &loadError{
				err: ErrWriteConfig,
				detail: fmt.Sprintf("Could not create '%s' (%s)",
					filepath.Dir(flag), sysErrText(err)),
			}
		}

		if err := os.WriteFile(flag, nil, 0o644); err != nil {
			return &loadError{
				err:    ErrWriteConfig,
				detail: fmt.Sprintf("Could not write '%s' (%s)", flag, sysErrText(err)),
			}
		}
	}

	// Remember the current values as the new old values. Writing last
	// means a failed run can safely be rerun.
	return c.writeOldVals(dir)
}

// writeOldVals writes auto.conf: a stripped-down WriteConfig without any
// comments, including the '# PREFIX<NAME> is not set' kind. The format
// matches the C implementation.
func (c *Config) writeOldVals(dir string) error {
	var buf strings.Builder

	for _, mn := range c.Nodes(true) {
		nd := &c.nodes[mn.id]
		if nd.kind != ItemSymbol {
			continue
		}

		rec := &c.syms[nd.sym]
		if (rec.origType == TypeBool || rec.origType == TypeTristate) &&
			c.symTriValue(nd.sym) == N {
			continue
		}

		buf.WriteString(c.symConfigString(nd.sym))
	}

	return c.writeIfChanged(filepath.Join(dir, "auto.conf"), buf.String())
}

// loadOldVals loads the values from the previous SyncDeps run out of
// auto.conf into the symbols' old-value slots. A missing auto.conf means no
// old values, which has the same effect as every symbol having changed.
func (c *Config) loadOldVals(dir string) {
	for _, s := range c.uniqueDefined {
		c.syms[s].oldVal = ""
		c.syms[s].hasOldVal = false
	}

	content, err := os.ReadFile(filepath.Join(dir, "auto.conf"))
	if err != nil {
		return
	}

	file := &srcFile{data: string(content)}

	for {
		line := file.readLine()
		if line == "" {
			break
		}

		// Only assignments, and possibly a header comment, are expected
		// in auto.conf.
		name, val, ok := c.matchAssign(strings.TrimRight(line, "\r\n"))
		if !ok {
			continue
		}

		s, found := c.symNames[name]
		if !found {
			continue
		}

		rec := &c.syms[s]

		if rec.origType == TypeString {
			v, ok := matchConfString(val)
			if !ok {
				continue
			}

			val = v
		}

		rec.oldVal = val
		rec.hasOldVal = true
	}
}

// writeIfChanged writes content to path, leaving the file alone when it
// already holds identical contents so that timestamp-based build tools do
// not see a phantom change.
func (c *Config) writeIfChanged(path, content string) error {
	if old, err := os.ReadFile(path); err == nil &&
		len(old) == len(content) && xxh3.Hash(old) == xxh3.HashString(content) {
		return nil
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &loadError{
			err:    ErrWriteConfig,
			detail: fmt.Sprintf("Could not write '%s' (%s)", path, sysErrText(err)),
		}
	}

	return nil
}
