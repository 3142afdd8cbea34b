// Package source provides the parsers for configuration source files.
// Each parser keeps the key order of the document.
package source

import (
	"github.com/ctree-dev/ctree/internal/core/loader"
)

// Register adds the built-in parsers to p, keyed by extension.
func Register(p *loader.Parsers) {
	p.Register(".json", JSON)
	p.Register(".yaml", YAML)
	p.Register(".yml", YAML)
	p.Register(".toml", TOML)
}

// NewParsers returns a table holding the built-in parsers.
func NewParsers() *loader.Parsers {
	p := loader.NewParsers()
	Register(p)
	return p
}

// normalize converts decoder-specific scalar and container types to the
// ones used across the tree: int for integers, []any for lists and
// map[string]any for mappings nested in lists.
func normalize(v any) any {
	switch val := v.(type) {
	case int64:
		return int(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	default:
		return v
	}
}
