package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskdaemon/taskstore/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
}

// NewShowCommand creates the `show <collection> <id>` command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "show <collection> <id>",
		Short:         "Show one record's cached body",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runShow(opts *ShowOptions, collection, id string, cmd *cobra.Command) error {
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

	body, ok, err := s.RawGet(cmd.Context(), collection, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading record", err)
	}
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("%s/%s not found", collection, id))
	}

	if opts.Format == "json" {
		return formatter.Success(rawJSON(body))
	}
	fmt.Fprintln(formatter.Writer, body)
	return nil
}

// rawJSON marks body as already-encoded JSON so json.Marshal embeds it
// verbatim instead of escaping it as a string.
type rawJSON string

func (r rawJSON) MarshalJSON() ([]byte, error) {
	return []byte(r), nil
}
