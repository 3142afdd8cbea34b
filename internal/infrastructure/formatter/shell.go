package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

// Shell renders NAME=value lines. Key separators become underscores.
// A leaf value renders as a single Prefix+value line.
func Shell(value any, opts Options) (string, error) {
	if opts.SeqSep == "" {
		opts.SeqSep = " "
	}
	m, ok := value.(tree.Mapping)
	if !ok {
		return opts.Prefix + shellValue(value, opts), nil
	}

	keys := m.Keys()
	if opts.Sort {
		sort.Strings(keys)
	}
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		v, err := m.Get(key)
		if err != nil {
			return "", err
		}
		name := strings.ReplaceAll(key, m.Separator(), "_")
		if opts.Capitalize {
			name = strings.ToUpper(name)
		}
		lines = append(lines, fmt.Sprintf("%s%s=%s", opts.Prefix, name, shellValue(v, opts)))
	}
	return strings.Join(lines, "\n"), nil
}

func shellValue(v any, opts Options) string {
	switch val := v.(type) {
	case nil:
		return "''"
	case bool:
		s := fmt.Sprint(val)
		if opts.CapsBool {
			s = strings.ToUpper(s)
		}
		return s
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(val)
	case []any:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = fmt.Sprint(item)
		}
		return quote(strings.Join(items, opts.SeqSep), opts.Quoting)
	default:
		return quote(fmt.Sprint(val), opts.Quoting)
	}
}

func quote(s, style string) string {
	if style == QuotingPOSIX {
		return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
