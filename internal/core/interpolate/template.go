package interpolate

import (
	"fmt"
	"strings"
)

// Format substitutes brace fields in tmpl. A field is a binding name
// optionally followed by bracketed keys: {name}, {self[a.b]},
// {branch[x][y]}. Doubled braces produce literal braces.
func Format(tmpl string, bindings map[string]any) (string, error) {
	var out strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			out.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			out.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed field at offset %d", ErrTemplate, i)
			}
			v, err := field(tmpl[i+1:i+end], bindings)
			if err != nil {
				return "", err
			}
			fmt.Fprint(&out, v)
			i += end
		case c == '}':
			return "", fmt.Errorf("%w: single '}' at offset %d", ErrTemplate, i)
		default:
			out.WriteByte(c)
		}
	}
	return out.String(), nil
}

func field(expr string, bindings map[string]any) (any, error) {
	name, rest, _ := strings.Cut(expr, "[")
	v, ok := bindings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndefined, name)
	}
	if rest != "" {
		rest = "[" + rest
	}
	for rest != "" {
		if rest[0] != '[' {
			return nil, fmt.Errorf("%w: unexpected %q in field %q", ErrTemplate, rest, expr)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("%w: unclosed index in field %q", ErrTemplate, expr)
		}
		key := rest[1:end]
		rest = rest[end+1:]

		var err error
		switch g := v.(type) {
		case Getter:
			v, err = g.Get(key)
		case map[string]any:
			var found bool
			if v, found = g[key]; !found {
				err = fmt.Errorf("%w: %q", ErrUndefined, key)
			}
		default:
			err = fmt.Errorf("%w: %T is not indexable", ErrTemplate, v)
		}
		if err != nil {
			return nil, err
		}
	}
	return Materialize(v)
}
