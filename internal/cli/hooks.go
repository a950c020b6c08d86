package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taskdaemon/taskstore/internal/hooks"
)

// NewHooksCommand creates the `hooks` command group.
func NewHooksCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage version-control integration",
	}
	cmd.AddCommand(newHooksInstallCommand(rootOpts))
	return cmd
}

func newHooksInstallCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "install",
		Short:         "Install the merge driver and sync hooks into the current git repository",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksInstall(rootOpts, cmd)
		},
	}
}

func runHooksInstall(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	worktree, err := os.Getwd()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolving working directory", err)
	}
	gitDir := filepath.Join(worktree, ".git")
	if _, err := os.Stat(gitDir); err != nil {
		return WrapExitError(ExitCommandError, "not a git repository (no .git directory found)", err)
	}

	if err := hooks.Install(worktree, gitDir); err != nil {
		return WrapExitError(ExitCommandError, "installing hooks", err)
	}

	return formatter.Success("installed taskstore merge driver and sync hooks")
}
