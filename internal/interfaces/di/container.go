package di

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ctree-dev/ctree/internal/application/services"
	"github.com/ctree-dev/ctree/internal/core/loader"
	"github.com/ctree-dev/ctree/internal/infrastructure/formatter"
	"github.com/ctree-dev/ctree/internal/infrastructure/logging"
	"github.com/ctree-dev/ctree/internal/infrastructure/source"
	"github.com/ctree-dev/ctree/internal/interfaces/cli"
)

// Container holds all application dependencies
type Container struct {
	// Registries
	Parsers    *loader.Parsers
	Formatters *formatter.Formatters

	// Names available to template and expression values
	Namespace map[string]any

	// Application services
	TreeService *services.TreeService

	// CLI
	CLIContainer *cli.CLIContainer

	// Logger
	Logger *logging.Logger
}

// NewContainer creates a container logging to stderr
func NewContainer() (*Container, error) {
	return NewContainerWithOutput(os.Stderr)
}

// NewContainerWithOutput creates a container logging to w
func NewContainerWithOutput(w io.Writer) (*Container, error) {
	container := &Container{
		Logger: logging.NewConsoleLogger(w, false),
	}

	if err := container.initializeComponents(); err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return container, nil
}

// initializeComponents wires the registries, service and CLI together
func (c *Container) initializeComponents() error {
	// 1. Source parsers and output formats
	c.Parsers = source.NewParsers()
	c.Formatters = formatter.NewFormatters()

	// 2. Helpers exposed to expressions
	c.Namespace = DefaultNamespace()

	// 3. Application services
	c.TreeService = services.NewTreeService(c.Parsers, c.Formatters, c.Namespace, c.Logger)

	// 4. CLI container
	c.CLIContainer = &cli.CLIContainer{
		TreeService: c.TreeService,
		Logger:      c.Logger,
	}

	c.Logger.Debug().
		Strs("parsers", c.Parsers.Names()).
		Strs("formats", c.Formatters.Names()).
		Msg("Container initialized")
	return nil
}

// DefaultNamespace returns the helpers the command line makes available
func DefaultNamespace() map[string]any {
	return map[string]any{
		"getenv": os.Getenv,
		"join":   filepath.Join,
	}
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// GetVersion returns version information
func (c *Container) GetVersion() map[string]string {
	return map[string]string{
		"version":    cli.Version,
		"build_time": cli.BuildTime,
	}
}
