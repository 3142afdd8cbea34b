package integration_test

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCLI_DumpWorkflow_WorksCorrectly runs the built binary against a layered tree
func TestCLI_DumpWorkflow_WorksCorrectly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}

	ctx, cancel := setupTestContext(TestTimeout)
	defer cancel()

	cliPath := buildCLIBinary(t)
	root := createConfigTree(t, map[string]string{
		"_loaderconf.yaml": "namespace:\n  product: ctree\n",
		"app.yaml": `
app:
  name: ">>> product"
  port: 8080
  url: "$>> http://{branch[host]}:{branch[port]}"
  host: localhost
`,
		"env-prod/app.toml": "[app]\nhost = \"ctree.example\"\nport = 443\n",
		"final-local.json":  `{"app.debug?": false}`,
	})

	t.Run("files_lists_sources_in_order", func(t *testing.T) {
		cmd := exec.CommandContext(ctx, cliPath, "files", "-p", root, "-e", "prod")
		output, err := cmd.Output()
		require.NoError(t, err)

		expected := []string{
			filepath.Join(root, "app.yaml"),
			filepath.Join(root, "env-prod", "app.toml"),
			filepath.Join(root, "final-local.json"),
		}
		assert.Equal(t, expected, strings.Fields(string(output)))
	})

	t.Run("dump_json_for_environment", func(t *testing.T) {
		cmd := exec.CommandContext(ctx, cliPath, "dump", "json", "-p", root, "-e", "prod", "-b", "app", "--sort")
		output, err := cmd.Output()
		require.NoError(t, err)

		assert.Equal(t, `{"debug":false,"host":"ctree.example","name":"ctree","port":443,"url":"http://ctree.example:443"}`,
			strings.TrimSpace(string(output)))
	})

	t.Run("dump_shell_from_environment_variables", func(t *testing.T) {
		cmd := exec.CommandContext(ctx, cliPath, "dump", "shell", "-b", "app", "--capitalize", "--prefix", "export ")
		cmd.Env = append(os.Environ(), "CTREE_PATH="+root)
		output, err := cmd.Output()
		require.NoError(t, err)

		assert.Contains(t, string(output), "export HOST='localhost'\n")
		assert.Contains(t, string(output), "export PORT=8080\n")
		assert.Contains(t, string(output), "export DEBUG=false\n")
	})

	t.Run("verbose_logs_to_stderr", func(t *testing.T) {
		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, cliPath, "dump", "-p", root, "-v")
		cmd.Stderr = &stderr
		require.NoError(t, cmd.Run())

		assert.Contains(t, stderr.String(), "[INFO]: Loading tree")
	})
}

// TestCLI_LoadFailures_ExitNonZero checks diagnostics and exit codes
func TestCLI_LoadFailures_ExitNonZero(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in short mode")
	}

	ctx, cancel := setupTestContext(TestTimeout)
	defer cancel()

	cliPath := buildCLIBinary(t)

	tests := []struct {
		name     string
		files    map[string]string
		args     []string
		expected []string
	}{
		{
			name:  "required_keys_are_aggregated",
			files: map[string]string{"a.yaml": "db.user: \"!!!\"\ndb.password: \"!!! Use a secret store\"\n"},
			args:  []string{"dump"},
			expected: []string{
				"[ERROR]: Undefined required key <db.password>: Use a secret store",
				"[ERROR]: Undefined required key <db.user>",
			},
		},
		{
			name:     "missing_branch",
			files:    map[string]string{"a.yaml": "x: 1\n"},
			args:     []string{"dump", "-b", "y"},
			expected: []string{"[ERROR]: Branch <y> does not exist"},
		},
		{
			name:     "malformed_source",
			files:    map[string]string{"a.json": "{"},
			args:     []string{"dump"},
			expected: []string{"[ERROR]: failed to parse", "a.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := createConfigTree(t, tt.files)

			var stdout, stderr bytes.Buffer
			cmd := exec.CommandContext(ctx, cliPath, append(tt.args, "-p", root)...)
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			err := cmd.Run()

			var exitErr *exec.ExitError
			require.True(t, errors.As(err, &exitErr), "expected non-zero exit, got %v", err)
			assert.Equal(t, 1, exitErr.ExitCode())
			assert.Empty(t, stdout.String())
			last := -1
			for _, s := range tt.expected {
				idx := strings.Index(stderr.String(), s)
				assert.Greater(t, idx, last, "expected %q after previous lines in:\n%s", s, stderr.String())
				last = idx
			}
		})
	}
}
