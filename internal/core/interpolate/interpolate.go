// Package interpolate evaluates the three value languages of the loader:
// brace templates, keyed printf templates and sandboxed expressions.
//
// Tree data reaches them through Getter bindings; nothing else from the host
// process is visible unless the caller puts it in the environment.
package interpolate

import (
	"errors"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

var (
	// ErrUndefined is returned for names missing from the bindings.
	ErrUndefined = errors.New("undefined name")
	// ErrTemplate is returned for malformed templates.
	ErrTemplate = errors.New("malformed template")
)

// Getter resolves keys against tree data.
type Getter interface {
	Get(key string) (any, error)
}

// Lister is a Getter that can enumerate its keys, such as a branch.
type Lister interface {
	Getter
	Keys() []string
	Separator() string
}

// Materialize converts a Lister into nested maps, resolving every key.
// Other values are returned unchanged.
func Materialize(v any) (any, error) {
	l, ok := v.(Lister)
	if !ok {
		return v, nil
	}
	flat := make(map[string]any)
	for _, k := range l.Keys() {
		item, err := l.Get(k)
		if err != nil {
			return nil, err
		}
		if item, err = Materialize(item); err != nil {
			return nil, err
		}
		flat[k] = item
	}
	return tree.RarefyMap(flat, l.Separator()), nil
}
