// Package profile provides optional runtime profiling for the kconf
// command.
//
// Profiling is backed by [github.com/pkg/profile] and compiled in only when
// the "pprof" build tag is set. The default build compiles every operation
// in this package to a no-op with no runtime overhead, so callers never
// need their own build tags.
//
// # Modes
//
// The following modes are supported when built with the pprof tag:
//
//   - allocs:    memory allocations (all)
//   - block:     blocking on synchronization primitives
//   - clock:     wall-clock
//   - cpu:       CPU time
//   - goroutine: goroutine snapshots
//   - heap:      live heap allocations
//   - mem:       general memory
//   - mutex:     mutex contention
//   - thread:    OS thread creation
//   - trace:     execution trace
//
// [Modes] returns this list programmatically; the kconf CLI uses it to
// build the --pprof-mode flag's enum.
//
// # Usage
//
// Fill in a [Config] and start it:
//
//	stop := profile.Config{Mode: "cpu", Path: "/tmp/profiles"}.Start()
//	defer stop.Stop()
//
// Profile files are named after the mode (cpu.pprof, heap.pprof, and so
// on). From the command line:
//
//	# profile parsing of a large Kconfig tree
//	kconf --pprof-mode cpu dump
//
//	# heap profile with a custom output directory
//	kconf --pprof-mode heap --pprof-dir ./profiles dump
//
// The default output directory sits under the user cache directory, for
// example $XDG_CACHE_HOME/kconf/pprof on Linux.
//
// Analyze the results with the standard tooling:
//
//	go tool pprof ./kconf /tmp/profiles/cpu.pprof
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// When built with the pprof tag this package also imports [net/http/pprof],
// registering the /debug/pprof/ handlers for any HTTP server the process
// chooses to run.
//
// Block and mutex profiling can slow the program considerably at high
// sampling rates; adjust them with [runtime.SetBlockProfileRate] and
// [runtime.SetMutexProfileFraction].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
