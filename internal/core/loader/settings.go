package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/ctree-dev/ctree/internal/core/tree"
)

// SettingsFile is the per-root loader configuration. Its leading underscore
// keeps the walker from loading it as a source.
const SettingsFile = "_loaderconf.yaml"

// Settings customizes the loader for one configuration root.
type Settings struct {
	// Env is the environment selector. ${VAR} references are expanded.
	Env string `yaml:"env"`
	// Namespace adds names visible to templates and expressions.
	Namespace map[string]any `yaml:"namespace"`
	// Tree holds initial values, nested or dotted.
	Tree map[string]any `yaml:"tree"`
	// Disable lists update workers to turn off.
	Disable []string `yaml:"disable"`
	// Separator overrides the key separator.
	Separator string `yaml:"separator"`
}

// ReadSettings reads the settings file of root. A missing file yields
// empty settings. When root is a file its directory is used.
func ReadSettings(root string) (Settings, error) {
	var s Settings

	dir := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		dir = filepath.Dir(root)
	}
	data, err := os.ReadFile(filepath.Join(dir, SettingsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", SettingsFile, err)
	}
	s.Env = os.ExpandEnv(s.Env)
	return s, nil
}

// Options converts the settings into loader options.
func (s Settings) Options() []Option {
	opts := []Option{
		WithEnvironment(s.Env),
		WithUpdaterOptions(WithNamespace(s.Namespace), WithoutWorkers(s.Disable...)),
	}
	if len(s.Tree) > 0 || s.Separator != "" {
		t := tree.New(tree.WithSeparator(s.Separator))
		t.Update(tree.Flatten(s.Tree, t.Separator()))
		opts = append(opts, WithTree(t))
	}
	return opts
}

// FromConf creates a Loader for root from its settings file. Non-zero
// fields of explicit override the file, and opts are applied last.
func FromConf(root string, explicit Settings, opts ...Option) (*Loader, error) {
	s, err := ReadSettings(root)
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&s, explicit, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge loader settings: %w", err)
	}
	return New(append(s.Options(), opts...)...), nil
}
