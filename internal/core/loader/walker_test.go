package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates each path under root with the given content.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func walkFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"default/a.json":           "{}",
		"default/b.yaml":           "",
		"default/empty.yaml":       "",
		"default/subsystem/a.yaml": "",
		"default/subsystem/b.yaml": "",
		"default/_hidden.yaml":     "",
		"default/.dotfile.yaml":    "",
		"default/notes.txt":        "",
		"env-x/a.yaml":             "",
		"env-x/env-xx/b.yaml":      "",
		"env-x/env-xy/b.yaml":      "",
		"env-y.yaml":               "",
		"env-xx.yaml":              "",
		"final-common/c.yaml":      "",
		"final-common.yaml":        "",
		"_loaderconf.yaml":         "",
	})
	return root
}

func supportedExt(ext string) bool {
	return ext == ".json" || ext == ".yaml"
}

func relative(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

// TestWalker_Enumerate tests load ordering under environment selectors
func TestWalker_Enumerate(t *testing.T) {
	root := walkFixture(t)

	tests := []struct {
		name     string
		env      string
		expected []string
	}{
		{
			name: "no_env",
			env:  "",
			expected: []string{
				"default/a.json",
				"default/b.yaml",
				"default/empty.yaml",
				"default/subsystem/a.yaml",
				"default/subsystem/b.yaml",
				"final-common/c.yaml",
				"final-common.yaml",
			},
		},
		{
			name: "nested_env",
			env:  "x.xx",
			expected: []string{
				"default/a.json",
				"default/b.yaml",
				"default/empty.yaml",
				"default/subsystem/a.yaml",
				"default/subsystem/b.yaml",
				"env-x/a.yaml",
				"env-x/env-xx/b.yaml",
				"final-common/c.yaml",
				"final-common.yaml",
			},
		},
		{
			name: "top_level_env_file",
			env:  "xx",
			expected: []string{
				"default/a.json",
				"default/b.yaml",
				"default/empty.yaml",
				"default/subsystem/a.yaml",
				"default/subsystem/b.yaml",
				"env-xx.yaml",
				"final-common/c.yaml",
				"final-common.yaml",
			},
		},
		{
			name: "env_head_only",
			env:  "x",
			expected: []string{
				"default/a.json",
				"default/b.yaml",
				"default/empty.yaml",
				"default/subsystem/a.yaml",
				"default/subsystem/b.yaml",
				"env-x/a.yaml",
				"final-common/c.yaml",
				"final-common.yaml",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWalker(WithEnv(tt.env), WithExtensions(supportedExt))
			files, err := w.Enumerate(root)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, relative(t, root, files))
		})
	}
}

// TestWalker_Restartable tests that enumeration is repeatable
func TestWalker_Restartable(t *testing.T) {
	root := walkFixture(t)
	w := NewWalker(WithEnv("x.xx"), WithExtensions(supportedExt))

	first, err := w.Enumerate(root)
	require.NoError(t, err)
	second, err := w.Enumerate(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "x.xx", w.Env())
}

// TestWalker_SingleFile tests a root that is a file
func TestWalker_SingleFile(t *testing.T) {
	root := walkFixture(t)
	w := NewWalker(WithExtensions(supportedExt))

	path := filepath.Join(root, "env-y.yaml")
	files, err := w.Enumerate(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)

	_, err = w.Enumerate(filepath.Join(root, "default", "notes.txt"))
	assert.ErrorIs(t, err, ErrNoParser)

	_, err = w.Enumerate(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

// TestFile tests directory entry attributes
func TestFile(t *testing.T) {
	tests := []struct {
		name      string
		file      File
		cleanName string
		ext       string
	}{
		{name: "directory", file: File{Dir: "/data", Name: "default", IsDir: true}, cleanName: "default", ext: ""},
		{name: "env_file", file: File{Dir: "/data", Name: "env-y.yaml"}, cleanName: "env-y", ext: ".yaml"},
		{name: "dotted_directory", file: File{Dir: "/data", Name: "env-a.b", IsDir: true}, cleanName: "env-a.b", ext: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cleanName, tt.file.CleanName())
			assert.Equal(t, tt.ext, tt.file.Ext())
			assert.Equal(t, filepath.Join(tt.file.Dir, tt.file.Name), tt.file.FullPath())
			assert.Equal(t, !tt.file.IsDir, tt.file.IsFile())
		})
	}
}
