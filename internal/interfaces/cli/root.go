package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ctree-dev/ctree/internal/application/services"
	"github.com/ctree-dev/ctree/internal/core/loader"
	"github.com/ctree-dev/ctree/internal/infrastructure/logging"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	TreeService *services.TreeService
	Logger      *logging.Logger
}

// NewRootCommand creates the ctree command with all subcommands
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "ctree",
		Short: "ctree - layered configuration tree loader",
		Long: `ctree loads a directory of JSON, YAML and TOML files into a single
configuration tree. Files are applied in a deterministic order, environment
directories (env-<name>) narrow the set of sources, and values can be
computed from other keys with format templates and expressions.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().StringP("path", "p", "", "Configuration root directory or file (env CTREE_PATH, default \".\")")
	rootCmd.PersistentFlags().StringP("env", "e", "", "Environment selector, dot separated (env CTREE_ENV)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log loading progress (env CTREE_VERBOSE)")

	rootCmd.AddCommand(NewDumpCommand(container))
	rootCmd.AddCommand(NewFilesCommand(container))
	rootCmd.AddCommand(NewExploreCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// prepare resolves the options for cmd and applies the verbosity flag
func prepare(cmd *cobra.Command, container *CLIContainer) (Options, error) {
	opts, err := resolveOptions(cmd.Flags())
	if err != nil {
		return opts, err
	}
	container.Logger.SetVerbose(opts.Verbose)
	return opts, nil
}

// reportError writes err as one or more [ERROR] lines
func reportError(log *logging.Logger, err error) {
	var ve *loader.ValidationError
	if errors.As(err, &ve) {
		for _, v := range ve.Violations {
			log.Error().Msg(v.String())
		}
		return
	}

	var ae *loader.ActionError
	if errors.As(err, &ae) {
		log.Error().Str("source", ae.Action.Source).Msg(ae.Error())
		return
	}

	log.Error().Msg(err.Error())
}

// Run executes the root command with args and returns the process exit code
func Run(ctx context.Context, container *CLIContainer, args []string) int {
	rootCmd := NewRootCommand(container)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(container.Logger, err)
		return 1
	}
	return 0
}

// Execute runs the CLI with the process arguments and exits on failure.
func Execute(ctx context.Context, container *CLIContainer) {
	if code := Run(ctx, container, os.Args[1:]); code != 0 {
		os.Exit(code)
	}
}
