// Package tree implements a flat key-value store addressed by dotted keys
// with nested branch views over key prefixes.
package tree

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSeparator joins key segments.
const DefaultSeparator = "."

// Mapping is implemented by Tree and BranchProxy.
type Mapping interface {
	Get(key string) (any, error)
	Lookup(key string) (any, bool)
	Set(key string, value any)
	Delete(key string) error
	Contains(key string) bool
	Keys() []string
	Items() Pairs
	Len() int
	Branch(key string) *BranchProxy
	Separator() string
}

var (
	_ Mapping = (*Tree)(nil)
	_ Mapping = (*BranchProxy)(nil)
)

// Tree stores leaf values under dotted keys. A key is either a leaf or a
// branch (a proper prefix of other keys), never both.
//
// Tree is not safe for concurrent mutation.
type Tree struct {
	sep      string
	items    map[string]any
	order    map[string]uint64
	seq      uint64
	branches map[string]map[string]struct{}
}

// Option configures a Tree.
type Option func(*Tree)

// WithSeparator sets the key separator.
func WithSeparator(sep string) Option {
	return func(t *Tree) {
		if sep != "" {
			t.sep = sep
		}
	}
}

// New creates an empty Tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		sep:      DefaultSeparator,
		items:    make(map[string]any),
		order:    make(map[string]uint64),
		branches: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FromPairs creates a Tree holding the flattened pairs.
func FromPairs(pairs Pairs, opts ...Option) *Tree {
	t := New(opts...)
	t.Update(Flatten(pairs, t.sep))
	return t
}

// Separator returns the key separator.
func (t *Tree) Separator() string {
	return t.sep
}

// Set stores a leaf value. Any branch rooted at key is removed together with
// its subtree, and any leaf sitting on a proper prefix of key is removed.
func (t *Tree) Set(key string, value any) {
	if _, ok := t.branches[key]; ok {
		t.deleteBranch(key)
	}
	if _, ok := t.items[key]; !ok {
		t.order[key] = t.seq
		t.seq++
	}
	t.items[key] = value

	if !strings.Contains(key, t.sep) {
		return
	}
	segments := strings.Split(key, t.sep)
	for i := 1; i < len(segments); i++ {
		lead := strings.Join(segments[:i], t.sep)
		tail := strings.Join(segments[i:], t.sep)
		if _, ok := t.items[lead]; ok {
			t.deleteLeaf(lead)
		}
		suffixes, ok := t.branches[lead]
		if !ok {
			suffixes = make(map[string]struct{})
			t.branches[lead] = suffixes
		}
		suffixes[tail] = struct{}{}
	}
}

// Get returns the leaf value at key, a *BranchProxy if key is a branch,
// or an error wrapping ErrKeyNotFound.
func (t *Tree) Get(key string) (any, error) {
	if v, ok := t.items[key]; ok {
		return v, nil
	}
	if _, ok := t.branches[key]; ok {
		return t.Branch(key), nil
	}
	return nil, notFound(key)
}

// Lookup is Get with a boolean result.
func (t *Tree) Lookup(key string) (any, bool) {
	v, err := t.Get(key)
	return v, err == nil
}

// Delete removes a leaf, or a whole branch with every key under it.
func (t *Tree) Delete(key string) error {
	if _, ok := t.items[key]; ok {
		t.deleteLeaf(key)
		return nil
	}
	if _, ok := t.branches[key]; ok {
		t.deleteBranch(key)
		return nil
	}
	return notFound(key)
}

// Contains reports whether key is a leaf or a branch.
func (t *Tree) Contains(key string) bool {
	if _, ok := t.items[key]; ok {
		return true
	}
	_, ok := t.branches[key]
	return ok
}

// Keys returns the leaf keys in insertion order.
func (t *Tree) Keys() []string {
	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return t.order[keys[i]] < t.order[keys[j]]
	})
	return keys
}

// Items returns the leaf pairs in insertion order.
func (t *Tree) Items() Pairs {
	keys := t.Keys()
	pairs := make(Pairs, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Key: k, Value: t.items[k]})
	}
	return pairs
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.items)
}

// Branch returns a view rooted at key. It succeeds even if nothing lives
// under key yet.
func (t *Tree) Branch(key string) *BranchProxy {
	return &BranchProxy{key: key, owner: t}
}

// Update sets every pair in order.
func (t *Tree) Update(pairs Pairs) {
	for _, p := range pairs {
		t.Set(p.Key, p.Value)
	}
}

// SetDefault stores value if key is absent and returns what key holds.
func (t *Tree) SetDefault(key string, value any) any {
	if v, ok := t.Lookup(key); ok {
		return v
	}
	t.Set(key, value)
	return value
}

// Pop removes key and returns its value. A branch pops as a detached Tree.
func (t *Tree) Pop(key string) (any, error) {
	v, err := t.Get(key)
	if err != nil {
		return nil, err
	}
	if b, ok := v.(*BranchProxy); ok {
		v = b.AsTree()
	}
	if err := t.Delete(key); err != nil {
		return nil, err
	}
	return v, nil
}

// RareKeys returns the distinct first-level key segments in order.
func (t *Tree) RareKeys() []string {
	return rareKeys(t.Keys(), t.sep)
}

// RareItems returns the first-level pairs. Branch heads map to *BranchProxy.
func (t *Tree) RareItems() Pairs {
	return rareItems(t, t.RareKeys())
}

// Copy returns a shallow copy.
func (t *Tree) Copy() *Tree {
	c := New(WithSeparator(t.sep))
	c.Update(t.Items())
	return c
}

// Map returns a flat snapshot of the leaves.
func (t *Tree) Map() map[string]any {
	m := make(map[string]any, len(t.items))
	for k, v := range t.items {
		m[k] = v
	}
	return m
}

func (t *Tree) String() string {
	return fmt.Sprintf("Tree(%v)", t.Items())
}

func (t *Tree) deleteLeaf(key string) {
	delete(t.items, key)
	delete(t.order, key)
	if !strings.Contains(key, t.sep) {
		return
	}
	segments := strings.Split(key, t.sep)
	for i := 1; i < len(segments); i++ {
		lead := strings.Join(segments[:i], t.sep)
		tail := strings.Join(segments[i:], t.sep)
		suffixes, ok := t.branches[lead]
		if !ok {
			continue
		}
		delete(suffixes, tail)
		if len(suffixes) == 0 {
			delete(t.branches, lead)
		}
	}
}

func (t *Tree) deleteBranch(key string) {
	suffixes := t.branches[key]
	full := make([]string, 0, len(suffixes))
	for s := range suffixes {
		full = append(full, key+t.sep+s)
	}
	for _, k := range full {
		t.deleteLeaf(k)
	}
}

func (t *Tree) orderOf(key string) uint64 {
	return t.order[key]
}

func rareKeys(keys []string, sep string) []string {
	seen := make(map[string]struct{}, len(keys))
	heads := make([]string, 0, len(keys))
	for _, k := range keys {
		head, _, _ := strings.Cut(k, sep)
		if _, ok := seen[head]; ok {
			continue
		}
		seen[head] = struct{}{}
		heads = append(heads, head)
	}
	return heads
}

func rareItems(m Mapping, heads []string) Pairs {
	pairs := make(Pairs, 0, len(heads))
	for _, h := range heads {
		v, err := m.Get(h)
		if err != nil {
			continue
		}
		pairs = append(pairs, Pair{Key: h, Value: v})
	}
	return pairs
}
