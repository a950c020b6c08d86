package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskdaemon/taskstore/internal/cache"
	"github.com/taskdaemon/taskstore/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Limit int
}

// NewListCommand creates the `list` command: every cached record in a
// collection, raw body and all (no type registration available to the
// CLI, so bodies are shown as opaque JSON).
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list <collection>",
		Short:         "List cached records in a collection",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows to return (0 = unlimited)")
	return cmd
}

func runList(opts *ListOptions, collection string, cmd *cobra.Command) error {
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

	rows, err := s.RawList(cmd.Context(), cache.Query{Collection: collection, OrderByUpdatedAt: true, Limit: opts.Limit})
	if err != nil {
		return WrapExitError(ExitCommandError, "listing records", err)
	}

	if opts.Format == "json" {
		return formatter.Success(rows)
	}
	for _, r := range rows {
		fmt.Fprintf(formatter.Writer, "%s\t%s\n", r.ID, r.Body)
	}
	return nil
}
