// Package git resolves the low-level git directory layout (worktree-aware)
// underneath a Session's root, the way the teacher's internal/git package
// does for its hooks/refs tooling — trimmed here to the handful of queries
// Roadmap actually needs: confirming a root is really git-backed, and
// resolving the main repository root when that root is a linked worktree,
// since the Verification Runner's hygiene gate (spec.md §4.6) only means
// anything inside an actual git working tree.
package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Dir returns the .git directory for the repository rooted at dir. In a
// normal repo this is "<dir>/.git"; in a linked worktree, .git is a file
// pointing elsewhere, so this shells out to git rather than assuming the
// plain join.
func Dir(dir string) (string, error) {
	out, err := run(dir, "rev-parse", "--git-dir")
	if err != nil {
		return "", fmt.Errorf("%s: not a git repository: %w", dir, err)
	}
	if filepath.IsAbs(out) {
		return out, nil
	}
	return filepath.Join(dir, out), nil
}

// IsWorktree reports whether dir is a linked worktree rather than the main
// checkout, by comparing --git-dir against --git-common-dir.
func IsWorktree(dir string) bool {
	gitDir, err := run(dir, "rev-parse", "--git-dir")
	if err != nil {
		return false
	}
	commonDir, err := run(dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return false
	}
	absGit, err1 := filepath.Abs(filepath.Join(dir, gitDir))
	absCommon, err2 := filepath.Abs(filepath.Join(dir, commonDir))
	if err1 != nil || err2 != nil {
		return false
	}
	return absGit != absCommon
}

// MainRepoRoot returns the main repository's working tree root for dir. If
// dir is not a linked worktree, it returns dir's own root unchanged.
func MainRepoRoot(dir string) (string, error) {
	if !IsWorktree(dir) {
		return run(dir, "rev-parse", "--show-toplevel")
	}
	commonDir, err := run(dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("resolve main repo root: %w", err)
	}
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(dir, commonDir)
	}
	absCommon, err := filepath.Abs(commonDir)
	if err != nil {
		return "", err
	}
	return filepath.Dir(absCommon), nil
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
