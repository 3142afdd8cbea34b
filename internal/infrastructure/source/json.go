package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

// JSON parses a JSON object. An empty document yields no pairs.
func JSON(r io.Reader) (tree.Pairs, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return tree.Pairs{}, nil
	}
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top-level value must be an object, got %v", tok)
	}
	pairs, err := decodeObject(dec, true)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}
	return pairs.(tree.Pairs), nil
}

// decodeObject reads the members of an object whose '{' was consumed.
// Objects reachable through objects only are ordered Pairs; objects inside
// arrays become plain maps.
func decodeObject(dec *json.Decoder, ordered bool) (any, error) {
	pairs := tree.Pairs{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		v, err := decodeValue(dec, ordered)
		if err != nil {
			return nil, err
		}
		pairs.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if ordered {
		return pairs, nil
	}
	return pairs.Map(), nil
}

func decodeValue(dec *json.Decoder, ordered bool) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t == '{' {
			return decodeObject(dec, ordered)
		}
		list := []any{}
		for dec.More() {
			item, err := decodeValue(dec, false)
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), nil
		}
		return t.Float64()
	default:
		return t, nil
	}
}
