package kconfig

import (
	"fmt"
	"strings"
)

// makeDependOn registers sc as a dependent of every non-constant symbol
// and every choice appearing in e. The dependents sets drive value cache
// invalidation: they may be larger than strictly needed, since no deep
// analysis of the expressions is done.
func (c *Config) makeDependOn(sc scID, e exprID) {
	switch n := &c.exprs[e]; n.op {
	case opSym:
		if !c.syms[n.sym].isConstant {
			c.syms[n.sym].dependents = appendSC(c.syms[n.sym].dependents, sc)
		}

	case opChoice:
		c.choices[n.choice].dependents = appendSC(c.choices[n.choice].dependents, sc)

	case opNot:
		c.makeDependOn(sc, n.lhs)

	default:
		c.makeDependOn(sc, n.lhs)
		c.makeDependOn(sc, n.rhs)
	}
}

func appendSC(dst []scID, sc scID) []scID {
	for _, have := range dst {
		if have == sc {
			return dst
		}
	}

	return append(dst, sc)
}

// buildDep populates the dependents sets of all defined symbols and all
// choices, holding every item whose value might change when the item
// itself changes.
func (c *Config) buildDep() {
	// Only defined symbols get dependents. Constant and undefined symbols
	// could be selected or implied, but their value never changes.
	for _, s := range c.uniqueDefined {
		sc := symSC(s)

		for _, nid := range c.syms[s].nodes {
			if c.nodes[nid].hasPrompt {
				c.makeDependOn(sc, c.nodes[nid].promptCond)
			}
		}

		for _, def := range c.syms[s].defaults {
			c.makeDependOn(sc, def.val)
			c.makeDependOn(sc, def.cond)
		}

		c.makeDependOn(sc, c.syms[s].revDep)
		c.makeDependOn(sc, c.syms[s].weakRevDep)

		for _, r := range c.syms[s].ranges {
			c.makeDependOn(sc, c.symExpr(r.low))
			c.makeDependOn(sc, c.symExpr(r.high))
			c.makeDependOn(sc, r.cond)
		}

		// Usually redundant next to the propagated conditions above, but
		// imply looks at the direct dependencies even when there is no
		// property to propagate them to.
		c.makeDependOn(sc, c.syms[s].directDep)
	}

	for i := range c.choices {
		ch := choiceID(i)
		sc := choiceSC(ch)

		for _, nid := range c.choices[ch].nodes {
			if c.nodes[nid].hasPrompt {
				c.makeDependOn(sc, c.nodes[nid].promptCond)
			}
		}

		for _, def := range c.choices[ch].defaults {
			c.makeDependOn(sc, def.cond)
		}
	}
}

// addChoiceDeps makes each choice depend on its member symbols, since the
// y mode selection can change when a member's visibility changes. These
// edges go in after dependency loop detection: the invalidation walk
// handles the resulting member/choice cycles, but loop detection would
// trip over them.
func (c *Config) addChoiceDeps() {
	for i := range c.choices {
		ch := choiceID(i)

		for _, s := range c.choices[ch].syms {
			c.syms[s].dependents = appendSC(c.syms[s].dependents, choiceSC(ch))
		}
	}
}

// invalidateAll drops the cached values of all defined symbols and all
// choices. Undefined symbols never change value and constant symbols
// must keep theirs.
func (c *Config) invalidateAll() {
	for _, s := range c.uniqueDefined {
		c.symInvalidate(s)
	}

	for i := range c.choices {
		c.choiceInvalidate(choiceID(i))
	}
}

// depLoop records the items of a dependency cycle, collected on the way
// back out of the depth first search.
type depLoop []scID

// checkDepLoops rejects configurations whose dependency graph contains a
// cycle.
func (c *Config) checkDepLoops() error {
	for _, s := range c.uniqueDefined {
		if _, err := c.depLoopSym(s, false); err != nil {
			return err
		}
	}

	return nil
}

// depLoopSym runs a depth first search for dependency cycles from the
// symbol. Items start with checked 0; 1 marks an item on the current
// search path, and 2 an item already cleared. Hitting a 1 means the path
// closed into a loop, which is then recorded while the search unwinds.
//
// Choices complicate things, since every member of a choice depends on
// every other member. A choice entered through one of its symbols visits
// all members except that one, and ignoreChoice keeps the symbol from
// immediately re-entering the choice it came from.
func (c *Config) depLoopSym(s symID, ignoreChoice bool) (depLoop, error) {
	switch c.syms[s].checked {
	case 0:
		c.syms[s].checked = 1

		for _, dep := range c.syms[s].dependents {
			var (
				loop depLoop
				err  error
			)

			// Choices land in a symbol's dependents when the symbol
			// appears in a prompt or default condition of the choice.
			// That entry is not through a member, so every member gets
			// checked.
			if dep.choice != noChoice {
				loop, err = c.depLoopChoice(dep.choice, noSym)
			} else {
				loop, err = c.depLoopSym(dep.sym, false)
			}

			if err != nil {
				return nil, err
			}

			if loop != nil {
				return c.foundDepLoop(loop, symSC(s))
			}
		}

		if ch := c.syms[s].choice; ch != noChoice && !ignoreChoice {
			loop, err := c.depLoopChoice(ch, s)
			if err != nil {
				return nil, err
			}

			if loop != nil {
				return c.foundDepLoop(loop, symSC(s))
			}
		}

		c.syms[s].checked = 2

		return nil, nil

	case 2:
		return nil, nil
	}

	// checked == 1, so the search path came back around. The symbol opens
	// the loop.
	return depLoop{symSC(s)}, nil
}

func (c *Config) depLoopChoice(ch choiceID, skip symID) (depLoop, error) {
	switch c.choices[ch].checked {
	case 0:
		c.choices[ch].checked = 1

		// Entering through a member symbol skips that member, which
		// would otherwise read as a member/choice/member loop.
		for _, s := range c.choices[ch].syms {
			if s == skip {
				continue
			}

			loop, err := c.depLoopSym(s, true)
			if err != nil {
				return nil, err
			}

			if loop != nil {
				return c.foundDepLoop(loop, choiceSC(ch))
			}
		}

		c.choices[ch].checked = 2

		return nil, nil

	case 2:
		return nil, nil
	}

	return depLoop{choiceSC(ch)}, nil
}

// foundDepLoop extends the loop with cur while the search unwinds. Once
// cur is the item the loop started at, the whole cycle is known and is
// rendered into the returned error.
func (c *Config) foundDepLoop(loop depLoop, cur scID) (depLoop, error) {
	if cur != loop[0] {
		return append(loop, cur), nil
	}

	var sb strings.Builder

	sb.WriteString("\nDependency loop\n===============\n\n")

	for i, item := range loop {
		if i > 0 {
			sb.WriteString("...depends on ")

			if item.choice == noChoice && c.syms[item.sym].choice != noChoice {
				sb.WriteString("the choice symbol ")
			}
		}

		fmt.Fprintf(&sb, "%s, with definition...\n\n%s\n",
			c.scNameAndLoc(item), c.scDefinition(item))

		// The dependents sets do not record whether an edge came from a
		// select or imply condition, so the reverse dependencies are
		// spelled out to keep that information visible.
		if item.choice == noChoice {
			if rev := c.syms[item.sym].revDep; rev != c.nExpr {
				fmt.Fprintf(&sb, "(select-related dependencies: %s)\n\n",
					c.exprString(rev))
			}

			if c.syms[item.sym].weakRevDep != c.nExpr {
				fmt.Fprintf(&sb, "(imply-related dependencies: %s)\n\n",
					c.exprString(c.syms[item.sym].revDep))
			}
		}
	}

	fmt.Fprintf(&sb, "...depends again on %s", c.scNameAndLoc(loop[0]))

	return nil, &loadError{err: ErrDependencyLoop, detail: sb.String()}
}

func (c *Config) scNameAndLoc(sc scID) string {
	if sc.choice != noChoice {
		return c.choiceNameAndLoc(sc.choice)
	}

	return c.symNameAndLoc(sc.sym)
}

func (c *Config) scDefinition(sc scID) string {
	if sc.choice != noChoice {
		return Choice{cfg: c, id: sc.choice}.String()
	}

	return Symbol{cfg: c, id: sc.sym}.String()
}
