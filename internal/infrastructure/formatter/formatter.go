// Package formatter renders a loaded tree, a branch of it, or a single
// value in an output format.
package formatter

import (
	"github.com/ctree-dev/ctree/internal/core/registry"
	"github.com/ctree-dev/ctree/internal/core/tree"
)

// Quoting styles for the shell formatter.
const (
	QuotingLegacy = "legacy"
	QuotingPOSIX  = "posix"
)

// Options tune the output. Each formatter reads the fields that apply to it.
type Options struct {
	// Rare nests dotted keys (json, yaml).
	Rare bool
	// Sort orders keys alphabetically instead of by insertion.
	Sort bool
	// Indent is the indentation width; 0 means compact json.
	Indent int
	// Prefix is written before each shell line.
	Prefix string
	// SeqSep joins list items in shell values.
	SeqSep string
	// Capitalize upper-cases shell variable names.
	Capitalize bool
	// CapsBool upper-cases shell booleans.
	CapsBool bool
	// Quoting selects how shell values escape single quotes.
	Quoting string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{SeqSep: " ", Quoting: QuotingLegacy}
}

// Formatter renders value, which is a tree.Mapping or a leaf value.
type Formatter func(value any, opts Options) (string, error)

// Formatters maps format names to formatters.
type Formatters = registry.Registry[Formatter]

// NewFormatters returns a table with the built-in formats.
func NewFormatters() *Formatters {
	f := registry.New[Formatter]("format")
	f.Register("json", JSON)
	f.Register("shell", Shell)
	f.Register("yaml", YAML)
	f.Register("toml", TOML)
	f.Register("dump", Dump)
	return f
}

// pairs returns the entries of m, nested if rare, sorted if requested.
func pairs(m tree.Mapping, opts Options) tree.Pairs {
	p := m.Items()
	if opts.Rare {
		p = tree.Rarefy(m)
	}
	if opts.Sort {
		p = p.Sorted()
	}
	return p
}
