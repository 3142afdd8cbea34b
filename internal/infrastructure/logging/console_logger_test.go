package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConsoleLogger tests the level tags and verbosity filter
func TestConsoleLogger(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		expected []string
		absent   []string
	}{
		{
			name:     "verbose",
			verbose:  true,
			expected: []string{"[INFO]: Loading tree", "[ERROR]: boom", "[DEBUG]: Loading file"},
		},
		{
			name:     "quiet",
			verbose:  false,
			expected: []string{"[ERROR]: boom"},
			absent:   []string{"[INFO]", "[DEBUG]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewConsoleLogger(&buf, tt.verbose)

			log.Info().Msg("Loading tree")
			log.Debug().Str("file", "a.yaml").Msg("Loading file")
			log.Error().Msg("boom")

			for _, s := range tt.expected {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

// TestContextLogger tests logger propagation through context
func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, true)

	ctx := log.WithContext(context.Background())
	FromContext(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "[INFO]: from context")

	Nop().Error().Msg("ignored")
	FromContext(context.Background()).Error().Msg("ignored")
	assert.NotContains(t, buf.String(), "ignored")
}

// TestSetVerbose tests switching the level after construction
func TestSetVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleLogger(&buf, false)

	log.Info().Msg("hidden")
	log.SetVerbose(true)
	log.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[INFO]: shown")
}
