// Package cmd implements the kconf subcommands: the allnoconfig family of
// configuration writers, olddefconfig, listnewconfig, genconfig, eval, dump,
// search, and the interactive menu browser.
//
// Each command receives the shared [Globals] through kong's bindings, loads
// the Kconfig tree with [Globals.Load] or [Globals.LoadWithConfig], and
// operates on the resulting [kconfig.Config].
package cmd
