package loader

import (
	"path/filepath"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

const (
	fileKey = "__file__"
	dirKey  = "__dir__"
)

// Resolver is a read view used inside value templates and expressions.
// Promises are resolved on read and branches come back as Resolvers.
// __file__ and __dir__ fall back to the source of the current update.
type Resolver struct {
	mapping tree.Mapping
	source  string
}

// NewResolver creates a Resolver over m for an update read from source.
func NewResolver(m tree.Mapping, source string) *Resolver {
	return &Resolver{mapping: m, source: source}
}

func (r *Resolver) Get(key string) (any, error) {
	v, err := r.mapping.Get(key)
	if err != nil {
		switch key {
		case fileKey:
			return r.source, nil
		case dirKey:
			return filepath.Dir(r.source), nil
		}
		return nil, err
	}
	if b, ok := v.(*tree.BranchProxy); ok {
		return NewResolver(b, r.source), nil
	}
	return Resolve(v)
}

func (r *Resolver) Keys() []string {
	return r.mapping.Keys()
}

func (r *Resolver) Separator() string {
	return r.mapping.Separator()
}
