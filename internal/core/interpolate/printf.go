package interpolate

import (
	"fmt"
	"strconv"
	"strings"
)

// Printf substitutes keyed conversions %(key)[flags][width][.prec]verb
// with values resolved from g. %% is a literal percent sign.
//
// Verbs: s and v print any value, r prints strings in single quotes
// (double quotes when the text holds only single quotes), q prints the
// Go quoted form,
// d and i print integers, x X o print integers in other bases,
// e E f F g G print floats.
func Printf(tmpl string, g Getter) (string, error) {
	var out strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			out.WriteByte(tmpl[i])
			continue
		}
		i++
		if i >= len(tmpl) {
			return "", fmt.Errorf("%w: trailing '%%'", ErrTemplate)
		}
		if tmpl[i] == '%' {
			out.WriteByte('%')
			continue
		}
		if tmpl[i] != '(' {
			return "", fmt.Errorf("%w: conversion at offset %d has no key", ErrTemplate, i-1)
		}
		end := strings.IndexByte(tmpl[i:], ')')
		if end < 0 {
			return "", fmt.Errorf("%w: unclosed key at offset %d", ErrTemplate, i)
		}
		key := tmpl[i+1 : i+end]
		i += end + 1

		start := i
		for i < len(tmpl) && strings.IndexByte("-+ #0123456789.", tmpl[i]) >= 0 {
			i++
		}
		if i >= len(tmpl) {
			return "", fmt.Errorf("%w: missing verb for key %q", ErrTemplate, key)
		}
		spec, verb := tmpl[start:i], tmpl[i]

		v, err := g.Get(key)
		if err != nil {
			return "", err
		}
		if v, err = Materialize(v); err != nil {
			return "", err
		}
		s, err := convert(spec, verb, v)
		if err != nil {
			return "", fmt.Errorf("key %q: %w", key, err)
		}
		out.WriteString(s)
	}
	return out.String(), nil
}

func convert(spec string, verb byte, v any) (string, error) {
	switch verb {
	case 's', 'v':
		return fmt.Sprintf("%"+spec+"v", v), nil
	case 'r':
		if s, ok := v.(string); ok {
			return fmt.Sprintf("%"+spec+"s", repr(s)), nil
		}
		return fmt.Sprintf("%"+spec+"v", v), nil
	case 'q':
		if s, ok := v.(string); ok {
			return fmt.Sprintf("%"+spec+"s", strconv.Quote(s)), nil
		}
		return fmt.Sprintf("%"+spec+"v", v), nil
	case 'd', 'i', 'x', 'X', 'o':
		n, err := toInt(v)
		if err != nil {
			return "", err
		}
		if verb == 'i' {
			verb = 'd'
		}
		return fmt.Sprintf("%"+spec+string(verb), n), nil
	case 'e', 'E', 'f', 'F', 'g', 'G':
		f, err := toFloat(v)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%"+spec+string(verb), f), nil
	default:
		return "", fmt.Errorf("%w: unsupported verb %q", ErrTemplate, verb)
	}
}

func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("%T is not a number", v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("%T is not a number", v)
	}
}

// repr quotes s with single quotes, switching to double quotes when s
// contains a single quote and no double quote.
func repr(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteRune('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}
