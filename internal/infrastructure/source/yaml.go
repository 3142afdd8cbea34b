package source

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

const mergeTag = "!!merge"

// YAML parses a YAML mapping document. An empty document yields no pairs.
// Merge keys (<<) are expanded; explicit keys win over merged ones.
func YAML(r io.Reader) (tree.Pairs, error) {
	var doc yaml.Node
	err := yaml.NewDecoder(r).Decode(&doc)
	if errors.Is(err, io.EOF) {
		return tree.Pairs{}, nil
	}
	if err != nil {
		return nil, err
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return tree.Pairs{}, nil
		}
		root = root.Content[0]
	}
	root = deref(root)
	if root.Kind == yaml.ScalarNode && root.ShortTag() == "!!null" {
		return tree.Pairs{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top-level value must be a mapping", root.Line)
	}
	return mappingPairs(root)
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func mappingPairs(n *yaml.Node) (tree.Pairs, error) {
	var pairs, merged tree.Pairs
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], deref(n.Content[i+1])

		if key.ShortTag() == mergeTag {
			sources := []*yaml.Node{value}
			if value.Kind == yaml.SequenceNode {
				sources = value.Content
			}
			for _, src := range sources {
				src = deref(src)
				if src.Kind != yaml.MappingNode {
					return nil, fmt.Errorf("line %d: merge value must be a mapping", src.Line)
				}
				inner, err := mappingPairs(src)
				if err != nil {
					return nil, err
				}
				for _, p := range inner {
					if _, ok := merged.Get(p.Key); !ok {
						merged = append(merged, p)
					}
				}
			}
			continue
		}

		var v any
		if value.Kind == yaml.MappingNode {
			nested, err := mappingPairs(value)
			if err != nil {
				return nil, err
			}
			v = nested
		} else if err := value.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", value.Line, err)
		}
		pairs.Set(key.Value, normalize(v))
	}

	for _, p := range merged {
		if _, ok := pairs.Get(p.Key); !ok {
			pairs = append(pairs, p)
		}
	}
	if pairs == nil {
		pairs = tree.Pairs{}
	}
	return pairs, nil
}
