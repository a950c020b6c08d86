package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskdaemon/taskstore/internal/store"
)

// NewSyncCommand creates the `sync` command: force a cache rebuild from
// the log files, the operation hooks installed by `hooks install` call
// after VCS events that may have changed a log file underneath the
// process.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sync",
		Short:         "Rebuild the cache from the log files",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}
	return cmd
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
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

	if err := s.Sync(cmd.Context()); err != nil {
		return WrapExitError(ExitCommandError, "syncing store", err)
	}

	return formatter.Success(fmt.Sprintf("synced %s", opts.StorePath))
}
