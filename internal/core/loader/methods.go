package loader

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"dario.cat/mergo"

	"github.com/ctree-dev/ctree/internal/core/registry"
)

// Method implements a #name key suffix. It receives the current value and
// the update value and returns the new value.
type Method func(receiver, arg any) (any, error)

// Methods is the table consulted by the call-method worker.
type Methods = registry.Registry[Method]

// DefaultMethods returns the built-in methods: append, extend and remove
// on lists, update on maps.
func DefaultMethods() *Methods {
	m := registry.New[Method]("method")
	m.Register("append", appendMethod)
	m.Register("extend", extendMethod)
	m.Register("remove", removeMethod)
	m.Register("update", updateMethod)
	return m
}

func asList(receiver any, method string) ([]any, error) {
	switch l := receiver.(type) {
	case []any:
		return l, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s on %T", ErrUnsupportedOperand, method, receiver)
	}
}

func appendMethod(receiver, arg any) (any, error) {
	list, err := asList(receiver, "append")
	if err != nil {
		return nil, err
	}
	return append(slices.Clone(list), arg), nil
}

func extendMethod(receiver, arg any) (any, error) {
	list, err := asList(receiver, "extend")
	if err != nil {
		return nil, err
	}
	items, ok := arg.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: extend with %T", ErrUnsupportedOperand, arg)
	}
	return append(slices.Clone(list), items...), nil
}

func removeMethod(receiver, arg any) (any, error) {
	list, err := asList(receiver, "remove")
	if err != nil {
		return nil, err
	}
	for i, item := range list {
		if reflect.DeepEqual(item, arg) {
			out := make([]any, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), nil
		}
	}
	return nil, fmt.Errorf("%w: %v is not in list", ErrUnsupportedOperand, arg)
}

func updateMethod(receiver, arg any) (any, error) {
	dst, ok := receiver.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: update on %T", ErrUnsupportedOperand, receiver)
	}
	src, ok := arg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: update with %T", ErrUnsupportedOperand, arg)
	}
	merged := maps.Clone(dst)
	if err := mergo.Merge(&merged, src, mergo.WithOverride); err != nil {
		return nil, err
	}
	return merged, nil
}

// add implements the key+ suffix. Lists grow, numbers sum, strings are
// joined with a space and an empty or nil current value is replaced.
func add(current, value any) (any, error) {
	switch cur := current.(type) {
	case nil:
		return value, nil
	case []any:
		out := slices.Clone(cur)
		if items, ok := value.([]any); ok {
			return append(out, items...), nil
		}
		return append(out, value), nil
	case string:
		if cur == "" {
			return value, nil
		}
		return cur + " " + fmt.Sprint(value), nil
	case int:
		switch v := value.(type) {
		case int:
			return cur + v, nil
		case float64:
			return float64(cur) + v, nil
		}
		return fmt.Sprintf("%v %v", cur, value), nil
	case float64:
		switch v := value.(type) {
		case int:
			return cur + float64(v), nil
		case float64:
			return cur + v, nil
		}
		return fmt.Sprintf("%v %v", cur, value), nil
	default:
		return nil, fmt.Errorf("%w: add to %T", ErrUnsupportedOperand, current)
	}
}
