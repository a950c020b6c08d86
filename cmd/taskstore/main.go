// Command taskstore inspects and maintains a record store directory:
// listing and showing cached records, forcing a resync, compacting log
// files, and installing the git merge driver and sync hooks.
package main

import (
	"os"

	"github.com/taskdaemon/taskstore/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
