package formatter

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

// JSON renders a JSON document. Mappings keep their key order.
func JSON(value any, opts Options) (string, error) {
	if m, ok := value.(tree.Mapping); ok {
		value = pairs(m, opts)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if opts.Indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", opts.Indent))
	}
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
