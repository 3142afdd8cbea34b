package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistry tests registration and lookup
func TestRegistry(t *testing.T) {
	r := New[int]("number")
	r.Register("two", 2)
	r.Register("one", 1)

	v, ok := r.Lookup("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	r.Register("one", 11)
	v, err := r.Get("one")
	require.NoError(t, err)
	assert.Equal(t, 11, v)

	_, err = r.Get("three")
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Contains(t, err.Error(), `number "three"`)

	assert.True(t, r.Has("two"))
	assert.Equal(t, []string{"one", "two"}, r.Names())
}
