package formatter

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

// YAML renders a YAML document. Mappings keep their key order.
func YAML(value any, opts Options) (string, error) {
	node := &yaml.Node{}
	if m, ok := value.(tree.Mapping); ok {
		var err error
		if node, err = mappingNode(pairs(m, opts)); err != nil {
			return "", err
		}
	} else if err := node.Encode(value); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if opts.Indent > 0 {
		enc.SetIndent(opts.Indent)
	}
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func mappingNode(p tree.Pairs) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, pair := range p {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key}
		value := &yaml.Node{}
		if nested, ok := pair.Value.(tree.Pairs); ok {
			var err error
			if value, err = mappingNode(nested); err != nil {
				return nil, err
			}
		} else if err := value.Encode(pair.Value); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, key, value)
	}
	return n, nil
}
