package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/kconf/kconfig"
)

// Dump writes a representation of the loaded configuration to stdout.
//
// The tree format prints the menu structure with current values, one item
// per line, indented by nesting depth. The json and yaml formats marshal
// one record per defined symbol and choice, suitable for scripting.
type Dump struct {
	Format string `default:"tree" enum:"tree,json,yaml" help:"Output format"                       short:"o"`
	Indent int    `default:"2"    help:"Indent width for json and yaml output" short:"i"`
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context, g *Globals) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg, err := g.LoadWithConfig(ctx, false)
	if err != nil {
		return err
	}

	switch d.Format {
	case "json":
		doc := buildDoc(g.File, cfg)

		var jsonData []byte
		if d.Indent > 0 {
			jsonData, err = json.MarshalIndent(doc, "", strings.Repeat(" ", d.Indent))
		} else {
			jsonData, err = json.Marshal(doc)
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		fmt.Println(string(jsonData))

	case "yaml":
		doc := buildDoc(g.File, cfg)

		var opts []yaml.EncodeOption
		if d.Indent > 0 {
			opts = append(opts, yaml.Indent(d.Indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		yamlData, err := yaml.MarshalContext(ctx, doc, opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		fmt.Print(string(yamlData))

	default:
		if text := cfg.MainmenuText(); text != "" {
			fmt.Fprintf(os.Stdout, "mainmenu %q\n", text)
		}

		for node, ok := cfg.Top().FirstChild(); ok; node, ok = node.Next() {
			dumpTree(os.Stdout, node, 0)
		}
	}

	return nil
}

// dumpTree prints one menu node and its descendants, indented by depth.
func dumpTree(w io.Writer, node kconfig.MenuNode, depth int) {
	indent := strings.Repeat("  ", depth)

	switch node.Kind() {
	case kconfig.ItemSymbol:
		sym, _ := node.Symbol()
		fmt.Fprintf(w, "%sconfig %s =%s\n", indent, sym.Name(), symValue(sym))

	case kconfig.ItemChoice:
		choice, _ := node.Choice()
		if name := choice.Name(); name != "" {
			fmt.Fprintf(w, "%schoice %s =%s\n", indent, name, choice.TriValue())
		} else {
			fmt.Fprintf(w, "%schoice =%s\n", indent, choice.TriValue())
		}

	case kconfig.ItemMenu:
		text, _, _ := node.Prompt()
		fmt.Fprintf(w, "%smenu %q\n", indent, text)

	case kconfig.ItemComment:
		text, _, _ := node.Prompt()
		fmt.Fprintf(w, "%scomment %q\n", indent, text)
	}

	for child, ok := node.FirstChild(); ok; child, ok = child.Next() {
		dumpTree(w, child, depth+1)
	}
}

// symValue renders a symbol's current value, quoting string symbols.
func symValue(sym kconfig.Symbol) string {
	if sym.Type() == kconfig.TypeString {
		return fmt.Sprintf("%q", sym.StrValue())
	}

	return sym.StrValue()
}

// isConstY reports whether the expression is the constant y, the
// representation of an absent property condition.
func isConstY(e kconfig.Expr) bool {
	sym, ok := e.Symbol()

	return ok && sym.IsConstant() && sym.Name() == "y"
}

// condSuffix renders a property condition as an ' if COND' suffix, empty
// for unconditional properties.
func condSuffix(cond kconfig.Expr) string {
	if isConstY(cond) {
		return ""
	}

	return " if " + cond.String()
}

// configDoc is the marshaled form of a loaded configuration.
type configDoc struct {
	Kconfig  string         `json:"kconfig"            yaml:"kconfig"`
	Mainmenu string         `json:"mainmenu,omitempty" yaml:"mainmenu,omitempty"`
	Symbols  []symbolRecord `json:"symbols"            yaml:"symbols"`
	Choices  []choiceRecord `json:"choices,omitempty"  yaml:"choices,omitempty"`
}

type symbolRecord struct {
	Name       string   `json:"name"               yaml:"name"`
	Type       string   `json:"type"               yaml:"type"`
	Value      string   `json:"value"              yaml:"value"`
	Visibility string   `json:"visibility"         yaml:"visibility"`
	Prompt     string   `json:"prompt,omitempty"   yaml:"prompt,omitempty"`
	File       string   `json:"file,omitempty"     yaml:"file,omitempty"`
	Line       int      `json:"line,omitempty"     yaml:"line,omitempty"`
	Depends    string   `json:"depends,omitempty"  yaml:"depends,omitempty"`
	Defaults   []string `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Selects    []string `json:"selects,omitempty"  yaml:"selects,omitempty"`
	Implies    []string `json:"implies,omitempty"  yaml:"implies,omitempty"`
	Ranges     []string `json:"ranges,omitempty"   yaml:"ranges,omitempty"`
	Help       string   `json:"help,omitempty"     yaml:"help,omitempty"`
}

type choiceRecord struct {
	Name      string   `json:"name,omitempty"      yaml:"name,omitempty"`
	Type      string   `json:"type"                yaml:"type"`
	Mode      string   `json:"mode"                yaml:"mode"`
	Selection string   `json:"selection,omitempty" yaml:"selection,omitempty"`
	Optional  bool     `json:"optional,omitempty"  yaml:"optional,omitempty"`
	Symbols   []string `json:"symbols"             yaml:"symbols"`
	File      string   `json:"file,omitempty"      yaml:"file,omitempty"`
	Line      int      `json:"line,omitempty"      yaml:"line,omitempty"`
}

// buildDoc collects per-symbol and per-choice records for marshaling.
func buildDoc(file string, cfg *kconfig.Config) configDoc {
	doc := configDoc{
		Kconfig:  file,
		Mainmenu: cfg.MainmenuText(),
	}

	syms := cfg.Symbols()
	doc.Symbols = make([]symbolRecord, 0, len(syms))

	for _, sym := range syms {
		rec := symbolRecord{
			Name:       sym.Name(),
			Type:       sym.Type().String(),
			Value:      sym.StrValue(),
			Visibility: sym.Visibility().String(),
		}

		nodes := sym.Nodes()
		if len(nodes) > 0 {
			rec.File, rec.Line = nodes[0].Location()
		}

		for _, node := range nodes {
			if text, _, ok := node.Prompt(); ok {
				rec.Prompt = text

				break
			}
		}

		for _, node := range nodes {
			if help, ok := node.Help(); ok {
				rec.Help = help

				break
			}
		}

		if dep := sym.DirectDep(); !isConstY(dep) {
			rec.Depends = dep.String()
		}

		for _, def := range sym.Defaults() {
			rec.Defaults = append(rec.Defaults,
				def.Value.String()+condSuffix(def.Condition))
		}

		for _, sel := range sym.Selects() {
			rec.Selects = append(rec.Selects,
				sel.Symbol.Name()+condSuffix(sel.Condition))
		}

		for _, imp := range sym.Implies() {
			rec.Implies = append(rec.Implies,
				imp.Symbol.Name()+condSuffix(imp.Condition))
		}

		for _, rng := range sym.Ranges() {
			rec.Ranges = append(rec.Ranges, fmt.Sprintf("%s %s%s",
				rng.Low.Name(), rng.High.Name(), condSuffix(rng.Condition)))
		}

		doc.Symbols = append(doc.Symbols, rec)
	}

	for _, choice := range cfg.Choices() {
		rec := choiceRecord{
			Name:     choice.Name(),
			Type:     choice.Type().String(),
			Mode:     choice.TriValue().String(),
			Optional: choice.IsOptional(),
		}

		if sel, ok := choice.Selection(); ok {
			rec.Selection = sel.Name()
		}

		for _, sym := range choice.Symbols() {
			rec.Symbols = append(rec.Symbols, sym.Name())
		}

		if nodes := choice.Nodes(); len(nodes) > 0 {
			rec.File, rec.Line = nodes[0].Location()
		}

		doc.Choices = append(doc.Choices, rec)
	}

	return doc
}
