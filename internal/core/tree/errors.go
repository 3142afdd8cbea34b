package tree

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned when a key is neither a leaf nor a branch.
var ErrKeyNotFound = errors.New("key not found")

// KeyError reports the key a lookup failed on.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s: %q", ErrKeyNotFound, e.Key)
}

// Unwrap lets errors.Is match ErrKeyNotFound.
func (e *KeyError) Unwrap() error {
	return ErrKeyNotFound
}

func notFound(key string) error {
	return &KeyError{Key: key}
}
