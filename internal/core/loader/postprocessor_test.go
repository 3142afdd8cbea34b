package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostProcessor_ResolvePromise tests that promises are replaced by values
func TestPostProcessor_ResolvePromise(t *testing.T) {
	tr := treeOf("foo", NewPromise(func() (any, error) { return 42, nil }), "bar", "baz")

	require.NoError(t, NewPostProcessor().Finalize(tr))
	assert.Equal(t, map[string]any{"foo": 42, "bar": "baz"}, tr.Map())
}

// TestPostProcessor_CheckRequired tests aggregated, sorted violations
func TestPostProcessor_CheckRequired(t *testing.T) {
	foo := &Required{Key: "foo"}
	bar := &Required{Key: "bar", Comment: "Update me"}
	tr := treeOf("foo", foo, "bar", bar)

	err := NewPostProcessor().Finalize(tr)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []*Required{bar, foo}, ve.Violations)
	assert.Equal(t, "Undefined required key <bar>: Update me\nUndefined required key <foo>", ve.Error())
}

// TestPostProcessor_FailFast tests that a promise failure wins over violations
func TestPostProcessor_FailFast(t *testing.T) {
	boom := errors.New("boom")
	tr := treeOf(
		"a", &Required{Key: "a"},
		"b", NewPromise(func() (any, error) { return nil, boom }),
		"c", &Required{Key: "c"},
	)

	err := NewPostProcessor().Finalize(tr)
	assert.ErrorIs(t, err, boom)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}

// TestPostProcessor_PromiseToRequired tests that resolved values are validated
func TestPostProcessor_PromiseToRequired(t *testing.T) {
	marker := &Required{Key: "late"}
	tr := treeOf("late", NewPromise(func() (any, error) { return marker, nil }))

	err := NewPostProcessor().Finalize(tr)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []*Required{marker}, ve.Violations)
}

// TestPostProcessor_ExtraWorker tests custom finalization steps
func TestPostProcessor_ExtraWorker(t *testing.T) {
	exclaim := NewPostWorker("tag", 40, func(it *Item) error {
		if s, ok := it.Value.(string); ok {
			it.Replace(s + "!")
		}
		return nil
	})
	tr := treeOf("greeting", NewPromise(func() (any, error) { return "hi", nil }))

	require.NoError(t, NewPostProcessor(exclaim).Finalize(tr))
	assert.Equal(t, map[string]any{"greeting": "hi!"}, tr.Map())
}
