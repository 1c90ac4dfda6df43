// Package pkg defines the identity of the kconf module shared by the CLI,
// documentation, and build tooling.
//
//nolint:gochecknoglobals
package pkg

import (
	"strings"

	_ "embed"
)

//go:embed VERSION
var version string

const (
	// Name is the canonical command and module identifier. Help text,
	// default config paths, and cache paths all derive from it.
	Name = "kconf"

	// Description is the one-line project summary shown in help output.
	Description = "Kconfig configuration language interpreter"
)

// Version returns the semantic version embedded at build time, without
// surrounding whitespace.
func Version() string {
	return strings.TrimSpace(version)
}

// AuthorInfo identifies one project author.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{Name: "ardnew", Email: "andrew@ardnew.com"},
}
