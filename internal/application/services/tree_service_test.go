package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctree-dev/ctree/internal/core/registry"
	"github.com/ctree-dev/ctree/internal/infrastructure/formatter"
	"github.com/ctree-dev/ctree/internal/infrastructure/logging"
	"github.com/ctree-dev/ctree/internal/infrastructure/source"
)

func setupRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"app.yaml":          "app:\n  name: demo\n  port: 8080\n  home: \">>> join(self['__dir__'], 'home')\"\n",
		"env-prod/app.yaml": "app.port: 443\n",
	}
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func newService() *TreeService {
	ns := map[string]any{"join": filepath.Join}
	return NewTreeService(source.NewParsers(), formatter.NewFormatters(), ns, logging.Nop())
}

// TestTreeService_Dump tests loading, branch selection and formatting
func TestTreeService_Dump(t *testing.T) {
	root := setupRoot(t)
	svc := newService()

	tests := []struct {
		name     string
		req      DumpRequest
		expected string
	}{
		{
			name:     "branch_json",
			req:      DumpRequest{LoadRequest: LoadRequest{Path: root, Env: "prod"}, Format: "json", Branch: "app", Options: formatter.Options{Sort: true}},
			expected: `{"home":"` + filepath.Join(root, "home") + `","name":"demo","port":443}`,
		},
		{
			name:     "leaf_shell",
			req:      DumpRequest{LoadRequest: LoadRequest{Path: root}, Format: "shell", Branch: "app.port", Options: formatter.Options{Prefix: "PORT="}},
			expected: "PORT=8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.Dump(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

// TestTreeService_Errors tests missing branches and unknown formats
func TestTreeService_Errors(t *testing.T) {
	root := setupRoot(t)
	svc := newService()

	_, err := svc.Dump(context.Background(), DumpRequest{LoadRequest: LoadRequest{Path: root}, Format: "json", Branch: "invalid"})
	assert.ErrorIs(t, err, ErrBranchNotFound)
	assert.EqualError(t, err, "Branch <invalid> does not exist")

	_, err = svc.Dump(context.Background(), DumpRequest{LoadRequest: LoadRequest{Path: root}, Format: "xml"})
	assert.ErrorIs(t, err, registry.ErrNotRegistered)

	_, err = svc.Load(context.Background(), LoadRequest{Path: filepath.Join(root, "missing")})
	assert.Error(t, err)
}

// TestTreeService_Files tests the listing of sources
func TestTreeService_Files(t *testing.T) {
	root := setupRoot(t)
	svc := newService()

	files, err := svc.Files(LoadRequest{Path: root, Env: "prod"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "app.yaml"), filepath.Join(root, "env-prod", "app.yaml")}, files)

	assert.Contains(t, svc.Formats(), "json")
}
