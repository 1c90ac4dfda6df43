// Package cli contains the command line interface for kconf.
//
// # Usage
//
// Every command loads the top-level Kconfig file named with --file (default
// "Kconfig") and operates on the configuration file named with --config
// (default ".config", or the KCONFIG_CONFIG environment variable):
//
//	kconf allnoconfig
//	kconf --file drivers/Kconfig olddefconfig
//	kconf eval 'FOO && !BAR'
//
// Files sourced with relative paths are resolved against the roots given
// with --srctree and the PATH-like KCONFIG_SRCTREE environment variable,
// falling back to the $srctree variable and then the current directory,
// supporting out-of-tree builds the way the C tools do.
//
// # Commands
//
//   - allnoconfig, allyesconfig, allmodconfig, alldefconfig: write a
//     configuration with every symbol pinned to a policy value
//   - olddefconfig: update an existing configuration, filling in defaults
//     for symbols the file does not assign
//   - listnewconfig: print the modifiable symbols an existing configuration
//     leaves unset
//   - genconfig: generate a C header (and optionally dependency stamp files)
//     from the configuration
//   - eval: evaluate a Kconfig expression against the loaded configuration
//   - dump: print the menu tree or symbol table as text, JSON, or YAML
//   - search: find symbols by fuzzy name/prompt match, with an optional
//     attribute filter expression
//   - menu: browse and edit the configuration in an interactive terminal UI
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//
// Warnings from the Kconfig interpreter (undefined symbols in .config files,
// malformed defaults, and so on) are reported through the logger at warn
// level.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/kconf/pprof)
//
// # Examples
//
//	# Produce a minimal defconfig-style file from the current .config
//	kconf --config .config genconfig --config-out build/.config
//
//	# Debug logging while hunting a dependency problem
//	kconf --log-level=debug dump --format tree
//
//	# Profile parsing of a large tree
//	kconf --pprof-mode=cpu alldefconfig
package cli
