package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	envPrefix   = "env-"
	finalPrefix = "final-"
)

// File is a directory entry seen by the Walker.
type File struct {
	Dir   string
	Name  string
	IsDir bool
}

// FullPath joins Dir and Name.
func (f File) FullPath() string {
	return filepath.Join(f.Dir, f.Name)
}

// IsFile reports whether the entry is not a directory.
func (f File) IsFile() bool {
	return !f.IsDir
}

// Ext returns the file extension including the dot. Directories have none.
func (f File) Ext() string {
	if f.IsDir {
		return ""
	}
	return filepath.Ext(f.Name)
}

// CleanName returns the name without extension.
func (f File) CleanName() string {
	return strings.TrimSuffix(f.Name, f.Ext())
}

// Walker enumerates source files under a root in load order.
//
// Within a directory the order is: plain files, plain directories,
// env-<name> files, the env-<name> directory, final-<name> directories,
// final-<name> files. Names starting with "_" or "." are skipped, as are
// files whose extension is not supported.
type Walker struct {
	env       []string
	supported func(ext string) bool
	hidden    []string
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithEnv sets the dotted environment selector, e.g. "prod.eu".
func WithEnv(env string) WalkerOption {
	return func(w *Walker) {
		w.env = nil
		if env != "" {
			w.env = strings.Split(env, ".")
		}
	}
}

// WithExtensions restricts files to those accepted by supported.
func WithExtensions(supported func(ext string) bool) WalkerOption {
	return func(w *Walker) {
		w.supported = supported
	}
}

// NewWalker creates a Walker. Without WithExtensions every file is accepted.
func NewWalker(opts ...WalkerOption) *Walker {
	w := &Walker{
		supported: func(string) bool { return true },
		hidden:    []string{"_", "."},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Env returns the selector the walker was built with.
func (w *Walker) Env() string {
	return strings.Join(w.env, ".")
}

// Enumerate returns the files to load, in order. A root that is itself a
// file yields only that file.
func (w *Walker) Enumerate(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		f := File{Dir: filepath.Dir(root), Name: filepath.Base(root)}
		if !w.supported(f.Ext()) {
			return nil, fmt.Errorf("%w %q: %s", ErrNoParser, f.Ext(), root)
		}
		return []string{root}, nil
	}
	var out []string
	if err := w.walk(root, w.env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *Walker) walk(dir string, env []string, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var plainFiles, plainDirs, envFiles, envDirs, finalFiles, finalDirs []File
	for _, e := range entries {
		if w.isHidden(e.Name()) {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		f := File{Dir: dir, Name: e.Name(), IsDir: info.IsDir()}
		if f.IsFile() && !w.supported(f.Ext()) {
			continue
		}

		name := f.CleanName()
		switch {
		case strings.HasPrefix(name, envPrefix):
			if len(env) == 0 || strings.TrimPrefix(name, envPrefix) != env[0] {
				continue
			}
			if f.IsDir {
				envDirs = append(envDirs, f)
			} else {
				envFiles = append(envFiles, f)
			}
		case strings.HasPrefix(name, finalPrefix):
			if f.IsDir {
				finalDirs = append(finalDirs, f)
			} else {
				finalFiles = append(finalFiles, f)
			}
		case f.IsDir:
			plainDirs = append(plainDirs, f)
		default:
			plainFiles = append(plainFiles, f)
		}
	}

	var tail []string
	if len(env) > 0 {
		tail = env[1:]
	}
	steps := []struct {
		files   []File
		recurse bool
		env     []string
	}{
		{files: plainFiles},
		{files: plainDirs, recurse: true, env: env},
		{files: envFiles},
		{files: envDirs, recurse: true, env: tail},
		{files: finalDirs, recurse: true, env: env},
		{files: finalFiles},
	}
	for _, step := range steps {
		sortFiles(step.files)
		for _, f := range step.files {
			if !step.recurse {
				*out = append(*out, f.FullPath())
				continue
			}
			if err := w.walk(f.FullPath(), step.env, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Walker) isHidden(name string) bool {
	for _, p := range w.hidden {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func sortFiles(files []File) {
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
}
