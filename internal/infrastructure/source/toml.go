package source

import (
	"io"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

// TOML parses a TOML document. Key order follows the document as reported
// by the decoder metadata.
func TOML(r io.Reader) (tree.Pairs, error) {
	var data map[string]any
	md, err := toml.NewDecoder(r).Decode(&data)
	if err != nil {
		return nil, err
	}

	pairs := tree.Pairs{}
	for _, key := range md.Keys() {
		v, ok := lookupPath(data, key)
		if !ok {
			continue
		}
		if _, isTable := v.(map[string]any); isTable {
			ensureTable(&pairs, key)
			continue
		}
		setPath(&pairs, key, normalize(v))
	}
	fillMissing(&pairs, data)
	return pairs, nil
}

func lookupPath(data map[string]any, path []string) (any, bool) {
	var cur any = data
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func ensureTable(dst *tree.Pairs, path []string) {
	child, _ := dst.Get(path[0])
	nested, ok := child.(tree.Pairs)
	if !ok {
		nested = tree.Pairs{}
	}
	if len(path) > 1 {
		ensureTable(&nested, path[1:])
	}
	dst.Set(path[0], nested)
}

func setPath(dst *tree.Pairs, path []string, value any) {
	if len(path) == 1 {
		dst.Set(path[0], value)
		return
	}
	child, _ := dst.Get(path[0])
	nested, ok := child.(tree.Pairs)
	if !ok {
		nested = tree.Pairs{}
	}
	setPath(&nested, path[1:], value)
	dst.Set(path[0], nested)
}

// fillMissing appends keys the metadata did not list, such as the members
// of inline tables, in sorted order.
func fillMissing(dst *tree.Pairs, data map[string]any) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := data[k]
		existing, found := dst.Get(k)
		table, isTable := v.(map[string]any)
		switch {
		case isTable:
			nested, _ := existing.(tree.Pairs)
			if nested == nil {
				nested = tree.Pairs{}
			}
			fillMissing(&nested, table)
			dst.Set(k, nested)
		case !found:
			dst.Set(k, normalize(v))
		}
	}
}
