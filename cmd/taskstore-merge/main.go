// Command taskstore-merge is the git merge driver contract for
// *.jsonl record logs: `taskstore-merge <ancestor> <ours> <theirs>`,
// writing the resolved log over <ours> in place.
//
// Exit codes: 0 merged cleanly, 1 conflict (conflict markers left in
// <ours>), 2 a usage or I/O error prevented the merge from running at
// all.
package main

import (
	"fmt"
	"os"

	"github.com/taskdaemon/taskstore/internal/merge"
)

const (
	exitMerged   = 0
	exitConflict = 1
	exitError    = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: taskstore-merge <ancestor> <ours> <theirs>")
		return exitError
	}
	ancestorPath, oursPath, theirsPath := args[0], args[1], args[2]

	ancestor, err := os.Open(ancestorPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskstore-merge: open ancestor: %v\n", err)
		return exitError
	}
	defer ancestor.Close()

	ours, err := os.Open(oursPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskstore-merge: open ours: %v\n", err)
		return exitError
	}
	defer ours.Close()

	theirs, err := os.Open(theirsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskstore-merge: open theirs: %v\n", err)
		return exitError
	}
	defer theirs.Close()

	result, err := merge.ThreeWay(ancestor, ours, theirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskstore-merge: %v\n", err)
		return exitError
	}

	ancestor.Close()
	ours.Close()
	theirs.Close()

	if err := os.WriteFile(oursPath, result.Merged, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "taskstore-merge: write merged output: %v\n", err)
		return exitError
	}

	if len(result.Conflicts) > 0 {
		fmt.Fprintf(os.Stderr, "taskstore-merge: %d conflict(s)\n", len(result.Conflicts))
		return exitConflict
	}
	return exitMerged
}
