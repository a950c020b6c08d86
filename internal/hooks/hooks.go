// Package hooks installs the version-control glue that makes taskstore
// logs mergeable and kept in sync: a merge driver registration plus
// shell hooks that call `taskstore sync` at the points the log files on
// disk might have just changed underneath the process. VCS is treated
// as an external collaborator, never a dependency of the core design.
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// syncHooks are the git hook names that should trigger a sync, in the
// order a checkout/rebase/commit cycle fires them.
var syncHooks = []string{"pre-commit", "post-merge", "post-rebase", "pre-push", "post-checkout"}

const mergeDriverName = "taskstore"

const gitattributesEntry = "*.jsonl merge=" + mergeDriverName + "\n"

const gitconfigSection = "[merge \"" + mergeDriverName + "\"]\n" +
	"\tname = taskstore record log merge driver\n" +
	"\tdriver = taskstore-merge %O %A %B\n"

const hookScriptTemplate = "#!/bin/sh\n" +
	"# Installed by `taskstore hooks install`.\n" +
	"exec taskstore sync\n"

// Install wires a git repository rooted at gitDir (the ".git" directory,
// not the worktree) for taskstore: it appends the attribute entry and
// merge-driver section if not already present, and writes a sync hook
// script for each entry in syncHooks, without clobbering an existing
// hook that doesn't already call taskstore.
func Install(worktreeDir, gitDir string) error {
	if err := ensureGitattributes(worktreeDir); err != nil {
		return err
	}
	if err := ensureMergeDriverConfig(gitDir); err != nil {
		return err
	}
	return installSyncHooks(filepath.Join(gitDir, "hooks"))
}

func ensureGitattributes(worktreeDir string) error {
	path := filepath.Join(worktreeDir, ".gitattributes")
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read .gitattributes: %w", err)
	}
	if strings.Contains(string(existing), gitattributesEntry) {
		return nil
	}
	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += gitattributesEntry
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write .gitattributes: %w", err)
	}
	return nil
}

func ensureMergeDriverConfig(gitDir string) error {
	path := filepath.Join(gitDir, "config")
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read git config: %w", err)
	}
	if strings.Contains(string(existing), "[merge \""+mergeDriverName+"\"]") {
		return nil
	}
	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += gitconfigSection
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write git config: %w", err)
	}
	return nil
}

func installSyncHooks(hooksDir string) error {
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return fmt.Errorf("create hooks dir: %w", err)
	}

	for _, name := range syncHooks {
		path := filepath.Join(hooksDir, name)
		existing, err := os.ReadFile(path)
		if err == nil && !strings.Contains(string(existing), "taskstore sync") {
			// A hook already exists and isn't ours: leave it alone rather
			// than overwrite whatever the repository already relies on.
			continue
		}
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read hook %s: %w", name, err)
		}
		if err := os.WriteFile(path, []byte(hookScriptTemplate), 0o755); err != nil {
			return fmt.Errorf("write hook %s: %w", name, err)
		}
	}
	return nil
}
