package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctree-dev/ctree/internal/application/services"
	"github.com/ctree-dev/ctree/internal/core/tree"
	"github.com/ctree-dev/ctree/internal/infrastructure/formatter"
	"github.com/ctree-dev/ctree/internal/infrastructure/logging"
	"github.com/ctree-dev/ctree/internal/infrastructure/source"
)

func setupRoot(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func newTestContainer(logs *bytes.Buffer) *CLIContainer {
	log := logging.NewConsoleLogger(logs, false)
	svc := services.NewTreeService(source.NewParsers(), formatter.NewFormatters(), nil, log)
	return &CLIContainer{TreeService: svc, Logger: log}
}

func execute(t *testing.T, container *CLIContainer, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(container)
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

var sampleFiles = map[string]string{
	"app.yaml":          "db:\n  host: localhost\n  port: 5432\nname: demo\n",
	"env-prod/app.yaml": "db.host: db.internal\n",
}

// TestDumpCommand tests format selection, branch narrowing and flags
func TestDumpCommand(t *testing.T) {
	root := setupRoot(t, sampleFiles)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "default_json",
			args:     []string{"dump", "-p", root, "--sort"},
			expected: `{"db.host":"localhost","db.port":5432,"name":"demo"}` + "\n",
		},
		{
			name:     "env_branch_shell",
			args:     []string{"dump", "shell", "-p", root, "-e", "prod", "-b", "db", "--capitalize"},
			expected: "HOST='db.internal'\nPORT=5432\n",
		},
		{
			name:     "leaf",
			args:     []string{"dump", "-p", root, "-b", "name"},
			expected: `"demo"` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			out, err := execute(t, newTestContainer(&logs), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

// TestDumpCommand_EnvOptions tests that CTREE_* variables supply defaults and flags win
func TestDumpCommand_EnvOptions(t *testing.T) {
	root := setupRoot(t, sampleFiles)
	t.Setenv("CTREE_PATH", root)
	t.Setenv("CTREE_ENV", "prod")
	t.Setenv("CTREE_BRANCH", "db.host")

	var logs bytes.Buffer
	container := newTestContainer(&logs)

	out, err := execute(t, container, "dump")
	require.NoError(t, err)
	assert.Equal(t, `"db.internal"`+"\n", out)

	out, err = execute(t, container, "dump", "-e", "dev")
	require.NoError(t, err)
	assert.Equal(t, `"localhost"`+"\n", out)
}

// TestRun_Errors tests the diagnostics written for failed loads
func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		args     []string
		expected []string
	}{
		{
			name:     "missing_branch",
			files:    sampleFiles,
			args:     []string{"dump", "-b", "invalid"},
			expected: []string{"[ERROR]: Branch <invalid> does not exist"},
		},
		{
			name:  "required",
			files: map[string]string{"a.yaml": "b: \"!!!\"\na: \"!!! Set a\"\n"},
			args:  []string{"dump"},
			expected: []string{
				"[ERROR]: Undefined required key <a>: Set a",
				"[ERROR]: Undefined required key <b>",
			},
		},
		{
			name:     "expression",
			files:    map[string]string{"a.yaml": "x: \">>> missing_name\"\n"},
			args:     []string{"dump"},
			expected: []string{"[ERROR]:", `tree["x"]`, "source="},
		},
		{
			name:     "unknown_format",
			files:    sampleFiles,
			args:     []string{"dump", "xml"},
			expected: []string{"[ERROR]:", `"xml"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupRoot(t, tt.files)
			var logs bytes.Buffer
			container := newTestContainer(&logs)

			code := Run(context.Background(), container, append(tt.args, "-p", root))
			assert.Equal(t, 1, code)
			for _, s := range tt.expected {
				assert.Contains(t, logs.String(), s)
			}
		})
	}
}

// TestFilesCommand tests the listing of sources
func TestFilesCommand(t *testing.T) {
	root := setupRoot(t, sampleFiles)
	var logs bytes.Buffer

	out, err := execute(t, newTestContainer(&logs), "files", "-p", root, "-e", "prod", "-v")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "app.yaml")+"\n"+filepath.Join(root, "env-prod", "app.yaml")+"\n", out)
	assert.Contains(t, logs.String(), "[DEBUG]")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestExploreModel tests navigation through branches
func TestExploreModel(t *testing.T) {
	tr := tree.New()
	tr.Set("name", "demo")
	tr.Set("db.host", "localhost")
	tr.Set("db.pool.size", 4)

	var m tea.Model = newExploreModel(tr)
	assert.Equal(t, []string{"name", "db"}, entryKeys(m))

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("enter"))
	assert.Equal(t, []string{"host", "pool"}, entryKeys(m))
	assert.Contains(t, m.View(), "db")

	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("l"))
	assert.Equal(t, []string{"size"}, entryKeys(m))
	assert.Contains(t, m.View(), "size = 4")

	m, _ = m.Update(key("enter"))
	assert.Equal(t, []string{"size"}, entryKeys(m))

	m, _ = m.Update(key("backspace"))
	m, _ = m.Update(key("h"))
	assert.Equal(t, []string{"name", "db"}, entryKeys(m))
	assert.Equal(t, 1, m.(exploreModel).cursor)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func entryKeys(m tea.Model) []string {
	var keys []string
	for _, e := range m.(exploreModel).entries {
		keys = append(keys, e.Key)
	}
	return keys
}
