package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ctree-dev/ctree/internal/application/services"
	"github.com/ctree-dev/ctree/internal/infrastructure/formatter"
)

// NewDumpCommand creates the dump command
func NewDumpCommand(container *CLIContainer) *cobra.Command {
	format := formatter.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "dump [format]",
		Short: "Load a configuration tree and print it",
		Long: fmt.Sprintf(`Load the configuration tree under --path and print it in the given format.

Available formats: %s

Examples:
  ctree dump                          # JSON of the whole tree
  ctree dump yaml -e prod             # YAML for the prod environment
  ctree dump shell -b db --capitalize # DB_HOST='...' lines for a branch`,
			strings.Join(container.TreeService.Formats(), ", ")),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := prepare(cmd, container)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				opts.Format = args[0]
			}

			out, err := container.TreeService.Dump(cmd.Context(), services.DumpRequest{
				LoadRequest: services.LoadRequest{Path: opts.Path, Env: opts.Env},
				Format:      opts.Format,
				Branch:      opts.Branch,
				Options:     format,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringP("branch", "b", "", "Only print this branch or key (env CTREE_BRANCH)")
	cmd.Flags().BoolVar(&format.Rare, "rare", false, "Nest branches instead of printing flat dotted keys")
	cmd.Flags().BoolVar(&format.Sort, "sort", false, "Sort keys")
	cmd.Flags().IntVar(&format.Indent, "indent", 0, "Indentation width for json and yaml")
	cmd.Flags().StringVar(&format.Prefix, "prefix", "", "Prefix for every shell line")
	cmd.Flags().StringVar(&format.SeqSep, "seq-sep", format.SeqSep, "Separator for shell list values")
	cmd.Flags().BoolVar(&format.Capitalize, "capitalize", false, "Upper-case shell variable names")
	cmd.Flags().BoolVar(&format.CapsBool, "caps-bool", false, "Upper-case shell booleans")
	cmd.Flags().StringVar(&format.Quoting, "quoting", format.Quoting, "Shell quoting style (legacy, posix)")

	return cmd
}
