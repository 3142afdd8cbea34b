package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ctree-dev/ctree/internal/core/loader"
	"github.com/ctree-dev/ctree/internal/core/tree"
	"github.com/ctree-dev/ctree/internal/infrastructure/formatter"
	"github.com/ctree-dev/ctree/internal/infrastructure/logging"
)

// ErrBranchNotFound is returned when the requested branch is absent.
var ErrBranchNotFound = errors.New("branch does not exist")

// BranchError names the missing branch.
type BranchError struct {
	Branch string
}

func (e *BranchError) Error() string {
	return fmt.Sprintf("Branch <%s> does not exist", e.Branch)
}

func (e *BranchError) Unwrap() error {
	return ErrBranchNotFound
}

// LoadRequest selects a configuration root and environment.
type LoadRequest struct {
	Path string
	Env  string
}

// DumpRequest is a load followed by branch selection and formatting.
type DumpRequest struct {
	LoadRequest
	Format  string
	Branch  string
	Options formatter.Options
}

// TreeService orchestrates loading, branch selection and formatting
type TreeService struct {
	parsers    *loader.Parsers
	formatters *formatter.Formatters
	namespace  map[string]any
	log        *logging.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(parsers *loader.Parsers, formatters *formatter.Formatters, namespace map[string]any, log *logging.Logger) *TreeService {
	if log == nil {
		log = logging.Nop()
	}
	return &TreeService{
		parsers:    parsers,
		formatters: formatters,
		namespace:  namespace,
		log:        log,
	}
}

// Formats returns the available output formats
func (s *TreeService) Formats() []string {
	return s.formatters.Names()
}

func (s *TreeService) loader(req LoadRequest) (*loader.Loader, error) {
	explicit := loader.Settings{Env: req.Env, Namespace: s.namespace}
	return loader.FromConf(req.Path, explicit,
		loader.WithParsers(s.parsers),
		loader.WithLogger(s.log.Logger),
	)
}

// Load builds the finalized tree for the request
func (s *TreeService) Load(ctx context.Context, req LoadRequest) (*tree.Tree, error) {
	l, err := s.loader(req)
	if err != nil {
		return nil, fmt.Errorf("failed to configure loader: %w", err)
	}
	return l.Load(ctx, req.Path)
}

// Files lists the sources the request would load, in order
func (s *TreeService) Files(req LoadRequest) ([]string, error) {
	l, err := s.loader(req)
	if err != nil {
		return nil, fmt.Errorf("failed to configure loader: %w", err)
	}
	return l.Files(req.Path)
}

// Select returns the whole tree, a branch view or a leaf value
func (s *TreeService) Select(t *tree.Tree, branch string) (any, error) {
	if branch == "" {
		return t, nil
	}
	v, err := t.Get(branch)
	if err != nil {
		return nil, &BranchError{Branch: branch}
	}
	return v, nil
}

// Dump loads, selects and formats in one step
func (s *TreeService) Dump(ctx context.Context, req DumpRequest) (string, error) {
	format, err := s.formatters.Get(req.Format)
	if err != nil {
		return "", err
	}

	t, err := s.Load(ctx, req.LoadRequest)
	if err != nil {
		return "", err
	}
	value, err := s.Select(t, req.Branch)
	if err != nil {
		return "", err
	}
	return format(value, req.Options)
}
