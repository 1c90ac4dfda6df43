package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/kconf/kconfig"
)

// Styles.
var (
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Search lists defined symbols whose name or prompt fuzzy-matches a
// pattern, ranked best match first. With no pattern, all defined symbols
// are listed in definition order.
//
// The --filter expression is evaluated per symbol with these variables in
// scope: name, type, value, tri, visibility, prompt, file (strings),
// assignable, line (ints), and defined, constant, choice (bools). Symbols
// for which the expression is not true are excluded before matching, so
// for example --filter 'tri == "y" && type == "tristate"' restricts the
// search to tristate symbols currently at y.
type Search struct {
	Pattern string `arg:"" help:"Pattern matched against symbol names and prompts" name:"pattern" optional:""`
	Filter  string `       help:"Boolean expression evaluated against each symbol" placeholder:"EXPR"`
	Long    bool   `       help:"Print the full definition of each match"          short:"l"`
}

// Run executes the search command.
func (s *Search) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.LoadWithConfig(ctx, false)
	if err != nil {
		return err
	}

	var program *vm.Program

	if s.Filter != "" {
		program, err = expr.Compile(s.Filter,
			expr.Env(symbolEnv(kconfig.Symbol{}, false)),
			expr.AsBool())
		if err != nil {
			return ErrBadFilter.
				With(slog.String("filter", s.Filter)).
				Wrap(err)
		}
	}

	var syms []kconfig.Symbol

	for _, sym := range cfg.Symbols() {
		if program != nil {
			out, err := vm.Run(program, symbolEnv(sym, true))
			if err != nil {
				return ErrRunFilter.
					With(
						slog.String("filter", s.Filter),
						slog.String("symbol", sym.Name()),
					).
					Wrap(err)
			}

			if keep, ok := out.(bool); !ok || !keep {
				continue
			}
		}

		syms = append(syms, sym)
	}

	texts := make([]string, len(syms))
	for i, sym := range syms {
		texts[i] = searchText(sym)
	}

	if s.Pattern == "" {
		for i, sym := range syms {
			s.print(texts[i], sym)
		}

		return nil
	}

	for _, match := range fuzzy.Find(s.Pattern, texts) {
		s.print(renderMatch(match), syms[match.Index])
	}

	return nil
}

// print writes one result line, followed by the full definition when the
// long format was requested.
func (s *Search) print(text string, sym kconfig.Symbol) {
	detail := fmt.Sprintf("%s =%s", sym.Type(), symValue(sym))
	if nodes := sym.Nodes(); len(nodes) > 0 {
		file, line := nodes[0].Location()
		detail = fmt.Sprintf("%s  %s:%d", detail, file, line)
	}

	fmt.Printf("%s  %s\n", text, detailStyle.Render(detail))

	if s.Long {
		for line := range strings.SplitSeq(strings.TrimRight(sym.String(), "\n"), "\n") {
			fmt.Printf("    %s\n", line)
		}
	}
}

// searchText is the string fuzzy matching runs against, the symbol name
// followed by its prompt when it has one.
func searchText(sym kconfig.Symbol) string {
	for _, node := range sym.Nodes() {
		if text, _, ok := node.Prompt(); ok {
			return fmt.Sprintf("%s %q", sym.Name(), text)
		}
	}

	return sym.Name()
}

// renderMatch renders one match with its matched characters highlighted.
func renderMatch(match fuzzy.Match) string {
	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		ch := string(r)
		if matchSet[i] {
			b.WriteString(matchStyle.Render(ch))
		} else {
			b.WriteString(ch)
		}
	}

	return b.String()
}

// symbolEnv builds the variable environment one symbol exposes to filter
// expressions. The zero Symbol yields a type-complete environment for
// compilation without touching any live configuration.
func symbolEnv(sym kconfig.Symbol, live bool) map[string]any {
	env := map[string]any{
		"name":       "",
		"type":       "",
		"value":      "",
		"tri":        "",
		"visibility": "",
		"prompt":     "",
		"file":       "",
		"line":       0,
		"assignable": 0,
		"defined":    false,
		"constant":   false,
		"choice":     false,
	}

	if !live {
		return env
	}

	env["name"] = sym.Name()
	env["type"] = sym.Type().String()
	env["value"] = sym.StrValue()
	env["tri"] = sym.TriValue().String()
	env["visibility"] = sym.Visibility().String()
	env["assignable"] = len(sym.Assignable())
	env["defined"] = sym.Defined()
	env["constant"] = sym.IsConstant()

	if _, ok := sym.Choice(); ok {
		env["choice"] = true
	}

	for _, node := range sym.Nodes() {
		if text, _, ok := node.Prompt(); ok {
			env["prompt"] = text

			break
		}
	}

	if nodes := sym.Nodes(); len(nodes) > 0 {
		env["file"], env["line"] = nodes[0].Location()
	}

	return env
}
