package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Pair is a key and its value.
type Pair struct {
	Key   string
	Value any
}

// Pairs is an ordered mapping. Nested mappings are nested Pairs.
type Pairs []Pair

// Get returns the value stored under key.
func (p Pairs) Get(key string) (any, bool) {
	for _, pair := range p {
		if pair.Key == key {
			return pair.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key in place or appends a new pair.
func (p *Pairs) Set(key string, value any) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Pair{Key: key, Value: value})
}

// Keys returns the keys in order.
func (p Pairs) Keys() []string {
	keys := make([]string, len(p))
	for i, pair := range p {
		keys[i] = pair.Key
	}
	return keys
}

// Sorted returns a copy ordered by key, nested Pairs included.
func (p Pairs) Sorted() Pairs {
	out := make(Pairs, len(p))
	for i, pair := range p {
		if nested, ok := pair.Value.(Pairs); ok {
			pair.Value = nested.Sorted()
		}
		out[i] = pair
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Map converts to nested map[string]any, recursing into lists.
func (p Pairs) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, pair := range p {
		m[pair.Key] = plain(pair.Value)
	}
	return m
}

func plain(v any) any {
	switch val := v.(type) {
	case Pairs:
		return val.Map()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the pairs as a JSON object in order.
func (p Pairs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pair := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeJSON(&buf, pair.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, pair.Value); err != nil {
			return nil, fmt.Errorf("encode %q: %w", pair.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeJSON writes v without HTML escaping and without the encoder's
// trailing newline.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Flatten turns nested mappings into dotted keys. It accepts Pairs,
// map[string]any (visited in key order) and any Mapping. Empty nested
// mappings produce no keys.
func Flatten(value any, sep string) Pairs {
	var out Pairs
	flattenInto(&out, "", value, sep)
	return out
}

func flattenInto(out *Pairs, prefix string, value any, sep string) {
	nested, ok := asPairs(value)
	if !ok {
		*out = append(*out, Pair{Key: prefix, Value: value})
		return
	}
	for _, pair := range nested {
		key := pair.Key
		if prefix != "" {
			key = prefix + sep + key
		}
		if _, ok := asPairs(pair.Value); ok {
			flattenInto(out, key, pair.Value, sep)
			continue
		}
		*out = append(*out, Pair{Key: key, Value: pair.Value})
	}
}

func asPairs(value any) (Pairs, bool) {
	switch v := value.(type) {
	case Pairs:
		return v, true
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make(Pairs, len(keys))
		for i, k := range keys {
			pairs[i] = Pair{Key: k, Value: v[k]}
		}
		return pairs, true
	case Mapping:
		return v.Items(), true
	default:
		return nil, false
	}
}

// Rarefy converts a flat mapping into ordered nested Pairs.
func Rarefy(m Mapping) Pairs {
	return RarefyPairs(m.Items(), m.Separator())
}

// RarefyPairs expands dotted keys into nested Pairs, recursing into nested
// mappings. A later leaf replaces an earlier nested mapping and vice versa.
func RarefyPairs(pairs Pairs, sep string) Pairs {
	var out Pairs
	for _, pair := range pairs {
		value := pair.Value
		if nested, ok := asPairs(value); ok {
			value = RarefyPairs(nested, sep)
		}
		insert(&out, strings.Split(pair.Key, sep), value)
	}
	return out
}

func insert(dst *Pairs, path []string, value any) {
	if len(path) == 1 {
		if existing, ok := dst.Get(path[0]); ok {
			if a, aok := existing.(Pairs); aok {
				if b, bok := value.(Pairs); bok {
					for _, p := range b {
						insert(&a, []string{p.Key}, p.Value)
					}
					dst.Set(path[0], a)
					return
				}
			}
		}
		dst.Set(path[0], value)
		return
	}
	child, _ := dst.Get(path[0])
	nested, ok := child.(Pairs)
	if !ok {
		nested = Pairs{}
	}
	insert(&nested, path[1:], value)
	dst.Set(path[0], nested)
}

// RarefyMap expands dotted keys of a plain map into nested maps.
func RarefyMap(m map[string]any, sep string) map[string]any {
	pairs, _ := asPairs(m)
	return RarefyPairs(pairs, sep).Map()
}
