package formatter

import (
	"bytes"
	"errors"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

// ErrNotMapping is returned by formats that can only render mappings.
var ErrNotMapping = errors.New("value is not a mapping")

// TOML renders the nested form of a mapping as a TOML document.
func TOML(value any, _ Options) (string, error) {
	m, ok := value.(tree.Mapping)
	if !ok {
		return "", ErrNotMapping
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tree.Rarefy(m).Map()); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
