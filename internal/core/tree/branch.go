package tree

import (
	"fmt"
	"sort"
)

// BranchProxy is a non-owning view of the keys under a prefix. Every
// operation is translated into an operation on the owning Tree.
type BranchProxy struct {
	key   string
	owner *Tree
}

// Key returns the branch prefix.
func (b *BranchProxy) Key() string {
	return b.key
}

// Owner returns the Tree the view reads from.
func (b *BranchProxy) Owner() *Tree {
	return b.owner
}

// Separator returns the owner's separator.
func (b *BranchProxy) Separator() string {
	return b.owner.sep
}

func (b *BranchProxy) full(key string) string {
	return b.key + b.owner.sep + key
}

func (b *BranchProxy) Set(key string, value any) {
	b.owner.Set(b.full(key), value)
}

func (b *BranchProxy) Get(key string) (any, error) {
	v, err := b.owner.Get(b.full(key))
	if err != nil {
		return nil, notFound(key)
	}
	return v, nil
}

func (b *BranchProxy) Lookup(key string) (any, bool) {
	return b.owner.Lookup(b.full(key))
}

func (b *BranchProxy) Delete(key string) error {
	if err := b.owner.Delete(b.full(key)); err != nil {
		return notFound(key)
	}
	return nil
}

func (b *BranchProxy) Contains(key string) bool {
	return b.owner.Contains(b.full(key))
}

// Keys returns the suffixes under the prefix in the owner's insertion order.
func (b *BranchProxy) Keys() []string {
	suffixes := b.owner.branches[b.key]
	keys := make([]string, 0, len(suffixes))
	for s := range suffixes {
		keys = append(keys, s)
	}
	sort.Slice(keys, func(i, j int) bool {
		return b.owner.orderOf(b.full(keys[i])) < b.owner.orderOf(b.full(keys[j]))
	})
	return keys
}

func (b *BranchProxy) Items() Pairs {
	keys := b.Keys()
	pairs := make(Pairs, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Key: k, Value: b.owner.items[b.full(k)]})
	}
	return pairs
}

func (b *BranchProxy) Len() int {
	return len(b.owner.branches[b.key])
}

func (b *BranchProxy) Branch(key string) *BranchProxy {
	return b.owner.Branch(b.full(key))
}

func (b *BranchProxy) SetDefault(key string, value any) any {
	return b.owner.SetDefault(b.full(key), value)
}

func (b *BranchProxy) Pop(key string) (any, error) {
	v, err := b.owner.Pop(b.full(key))
	if err != nil {
		return nil, notFound(key)
	}
	return v, nil
}

func (b *BranchProxy) RareKeys() []string {
	return rareKeys(b.Keys(), b.owner.sep)
}

func (b *BranchProxy) RareItems() Pairs {
	return rareItems(b, b.RareKeys())
}

// AsTree detaches the view into a new Tree with relative keys.
func (b *BranchProxy) AsTree() *Tree {
	t := New(WithSeparator(b.owner.sep))
	t.Update(b.Items())
	return t
}

// Copy is AsTree.
func (b *BranchProxy) Copy() *Tree {
	return b.AsTree()
}

// Map returns a flat snapshot with relative keys.
func (b *BranchProxy) Map() map[string]any {
	m := make(map[string]any, b.Len())
	for _, p := range b.Items() {
		m[p.Key] = p.Value
	}
	return m
}

func (b *BranchProxy) String() string {
	return fmt.Sprintf("BranchProxy(%q)(%v)", b.key, b.Items())
}
