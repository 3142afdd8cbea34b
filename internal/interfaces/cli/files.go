package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctree-dev/ctree/internal/application/services"
)

// NewFilesCommand creates the files command
func NewFilesCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the source files in the order they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := prepare(cmd, container)
			if err != nil {
				return err
			}

			files, err := container.TreeService.Files(services.LoadRequest{Path: opts.Path, Env: opts.Env})
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}
