package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskdaemon/taskstore/internal/store"
)

// NewCompactCommand creates the `compact <collection>` command.
func NewCompactCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "compact <collection>",
		Short:         "Rewrite a collection's log to one line per identity",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCompact(opts *RootOptions, collection string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := store.Open(opts.StorePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer s.Close()

	if err := s.Compact(collection); err != nil {
		return WrapExitError(ExitCommandError, "compacting collection", err)
	}

	return formatter.Success(fmt.Sprintf("compacted %s", collection))
}
