package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskdaemon/taskstore/internal/config"
)

// NewInitCommand creates the `init` command: scaffold a taskstore.yaml
// with default values in the current directory.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Write a default taskstore.yaml in the current directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if err := config.WriteDefault("."); err != nil {
		return WrapExitError(ExitCommandError, "writing taskstore.yaml", err)
	}

	return formatter.Success(fmt.Sprintf("wrote %s", "taskstore.yaml"))
}
