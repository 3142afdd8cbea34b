package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

// CommitFunc writes an action into its tree.
type CommitFunc func(a *Action) error

// Action is a single pending key update. Workers rewrite Key, Value and
// Commit before the action is applied.
type Action struct {
	Tree   *tree.Tree
	Key    string
	Value  any
	Source string
	Commit CommitFunc
}

// NewAction creates an action that sets the value as is.
func NewAction(t *tree.Tree, key string, value any, source string) *Action {
	return &Action{
		Tree:   t,
		Key:    key,
		Value:  value,
		Source: source,
		Commit: SetValue,
	}
}

// SetValue is the default commit strategy.
func SetValue(a *Action) error {
	a.Tree.Set(a.Key, a.Value)
	return nil
}

// SetDefault commits only when the key is absent.
func SetDefault(a *Action) error {
	if !a.Tree.Contains(a.Key) {
		a.Tree.Set(a.Key, a.Value)
	}
	return nil
}

// Apply runs the commit strategy.
func (a *Action) Apply() error {
	return a.Commit(a)
}

// Branch returns the branch that holds Key, or the whole tree for a
// top-level key.
func (a *Action) Branch() tree.Mapping {
	i := strings.LastIndex(a.Key, a.Tree.Separator())
	if i < 0 {
		return a.Tree
	}
	return a.Tree.Branch(a.Key[:i])
}

// Promise defers fn, attributing its failures to this action.
func (a *Action) Promise(fn func() (any, error)) *Promise {
	return &Promise{action: a, fn: fn}
}

func (a *Action) String() string {
	return fmt.Sprintf("<tree[%q] = %s from %q>", a.Key, repr(a.Value), a.Source)
}

func repr(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(v)
}
