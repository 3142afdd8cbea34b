// Package loader builds a Tree from a directory of configuration sources.
//
// Loading runs in stages: the Walker lists source files in override order,
// each file is parsed and flattened, every key goes through the Updater
// pipeline, and the PostProcessor resolves deferred values and reports
// required keys left undefined.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ctree-dev/ctree/internal/core/registry"
	"github.com/ctree-dev/ctree/internal/core/tree"
)

// Parser decodes one source document into ordered pairs.
type Parser func(r io.Reader) (tree.Pairs, error)

// Parsers maps file extensions, dot included, to parsers.
type Parsers = registry.Registry[Parser]

// NewParsers creates an empty parser table.
func NewParsers() *Parsers {
	return registry.New[Parser]("parser")
}

// Enumerator lists source files under a root.
type Enumerator interface {
	Enumerate(root string) ([]string, error)
}

// Applier applies one raw key/value pair to a tree.
type Applier interface {
	Apply(t *tree.Tree, key string, value any, source string) error
}

// Finalizer completes a tree once every source was applied.
type Finalizer interface {
	Finalize(t *tree.Tree) error
}

var (
	_ Enumerator = (*Walker)(nil)
	_ Applier    = (*Updater)(nil)
	_ Finalizer  = (*PostProcessor)(nil)
)

// Loader runs the load pipeline.
type Loader struct {
	env         string
	walker      Enumerator
	updater     Applier
	updaterOpts []UpdaterOption
	post        Finalizer
	initial     *tree.Tree
	parsers     *Parsers
	log         zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvironment sets the selector of the default walker.
func WithEnvironment(env string) Option {
	return func(l *Loader) { l.env = env }
}

// WithWalker replaces the file enumerator.
func WithWalker(e Enumerator) Option {
	return func(l *Loader) { l.walker = e }
}

// WithUpdater replaces the update pipeline.
func WithUpdater(a Applier) Option {
	return func(l *Loader) { l.updater = a }
}

// WithUpdaterOptions configures the default updater.
func WithUpdaterOptions(opts ...UpdaterOption) Option {
	return func(l *Loader) { l.updaterOpts = append(l.updaterOpts, opts...) }
}

// WithPostProcessor replaces the finalization step.
func WithPostProcessor(f Finalizer) Option {
	return func(l *Loader) { l.post = f }
}

// WithTree sets the initial values. Each load starts from a copy.
func WithTree(t *tree.Tree) Option {
	return func(l *Loader) { l.initial = t }
}

// WithParsers sets the parser table.
func WithParsers(p *Parsers) Option {
	return func(l *Loader) { l.parsers = p }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// New creates a Loader. Components not set through options get defaults.
func New(opts ...Option) *Loader {
	l := &Loader{
		initial: tree.New(),
		parsers: NewParsers(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.walker == nil {
		l.walker = NewWalker(WithEnv(l.env), WithExtensions(l.parsers.Has))
	}
	if l.updater == nil {
		l.updater = NewUpdater(l.updaterOpts...)
	}
	if l.post == nil {
		l.post = NewPostProcessor()
	}
	return l
}

// Env returns the environment selector of the default walker.
func (l *Loader) Env() string {
	return l.env
}

// Files returns the sources Load would read, in order.
func (l *Loader) Files(root string) ([]string, error) {
	l.log.Debug().Str("path", root).Str("env", l.env).Msg("Listing files")
	return l.walker.Enumerate(root)
}

// Load builds a finalized tree from the sources under root.
func (l *Loader) Load(ctx context.Context, root string) (*tree.Tree, error) {
	l.log.Info().Str("path", root).Str("env", l.env).Msg("Loading tree")

	files, err := l.walker.Enumerate(root)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s: %w", root, err)
	}

	t := l.initial.Copy()
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.log.Debug().Str("file", path).Msg("Loading file")

		pairs, err := l.parse(path)
		if err != nil {
			return nil, err
		}
		for _, p := range tree.Flatten(pairs, t.Separator()) {
			if err := l.updater.Apply(t, p.Key, p.Value, path); err != nil {
				return nil, err
			}
		}
	}

	l.log.Debug().Int("keys", t.Len()).Msg("Finalizing tree")
	if err := l.post.Finalize(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (l *Loader) parse(path string) (tree.Pairs, error) {
	parser, err := l.parsers.Get(filepath.Ext(path))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	pairs, err := parser(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return pairs, nil
}
