// Package kconfig loads, evaluates, and writes configurations in the
// Kconfig language used by the Linux kernel and adopted by many other
// projects. A Config holds the complete symbol table and menu tree for one
// Kconfig file hierarchy; symbol values respond to user assignments the way
// the C tools respond to editing a .config file.
//
// # Model
//
// Configuration state is tri-valued. The values n, m, and y order as
// n < m < y, AND takes the minimum, OR the maximum, and NOT reflects
// through m. String, int, and hex symbols carry text values instead, but
// their visibility is still tri-valued.
//
// A symbol's effective value is derived, never stored: user assignments
// only take effect within the symbol's current visibility, defaults fill in
// where the user value cannot reach, select forces a floor on bool and
// tristate symbols, and range clamps numeric ones. Assigning one symbol can
// therefore change many, and unsatisfied dependencies can make an
// assignment silently inert. Assignable reports which tri values an
// assignment would actually produce.
//
// Symbols, choices, menus, and comments are defined by menu nodes. Most
// items have one node; symbols and choices defined in several places have
// one node per definition location. The tree that remains after loading has
// dependencies propagated, menus inferred from dependency chains, and
// if/menu structure resolved, so walking it visits exactly what a
// configuration interface would display.
//
// # Loading
//
// Load parses a Kconfig hierarchy:
//
//	cfg, err := kconfig.Load("Kconfig",
//		kconfig.WithEnv(environ),
//		kconfig.WithSrctree(root),
//	)
//
// The environment is threaded, not ambient: $VAR references inside strings,
// the srctree and CONFIG_ settings, and option env= symbols all read the
// supplied environment, and independent Configs with different environments
// coexist in one process. Values come from .config files via LoadConfig,
// from code via Symbol.SetValue, or both; WriteConfig, WriteMinConfig, and
// WriteAutoconf persist the result.
//
// No locking is performed. A Config and every handle derived from it
// belong to one goroutine at a time; value reads fill caches and so count
// as writes.
//
// # Grammar
//
// Informal summary of the accepted language:
//
//	file      → block EOF
//	block     → (entry)*
//	entry     → 'config' SYMBOL props
//	          | 'menuconfig' SYMBOL props
//	          | 'choice' [SYMBOL] props block 'endchoice'
//	          | 'menu' STRING props block 'endmenu'
//	          | 'comment' STRING props
//	          | 'if' expr block 'endif'
//	          | 'source' STRING          (also rsource/osource/orsource)
//	          | 'mainmenu' STRING
//	props     → (type [prompt] | 'prompt' | 'default' | def_type
//	          | 'depends' 'on' expr | 'select' | 'imply' | 'range'
//	          | 'visible' 'if' expr | 'option' | 'optional' | 'help')*
//	expr      → and_expr ('||' and_expr)*
//	and_expr  → factor ('&&' factor)*
//	factor    → SYMBOL [relop SYMBOL] | '!' factor | '(' expr ')'
//	relop     → '=' | '!=' | '<' | '<=' | '>' | '>='
//
// source accepts glob patterns; rsource resolves relative to the sourcing
// file, and the o-variants tolerate zero matches. Properties attach to the
// preceding entry, conditions combine with &&, and expressions follow the
// tri-valued semantics above.
//
// # Warnings
//
// Malformed input that the C tools tolerate is tolerated here and reported
// through warnings rather than errors: assignments to undefined symbols,
// values out of range, duplicate or redundant assignments, suspicious
// select targets, and so on. Warnings accumulate on the Config and flow
// through the configured logger; the classes can be toggled independently.
// Syntax errors, unresolvable source statements, and dependency loops abort
// the load with an error.
package kconfig
