package git_test

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/roadmap/roadmap/internal/git"
)

func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	return dir
}

func TestDirResolvesGitDirectory(t *testing.T) {
	repo := setupRepo(t)
	gitDir, err := git.Dir(repo)
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	want, _ := filepath.Abs(filepath.Join(repo, ".git"))
	got, _ := filepath.Abs(gitDir)
	if got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}

func TestDirRejectsNonRepo(t *testing.T) {
	if _, err := git.Dir(t.TempDir()); err == nil {
		t.Fatal("expected error for a directory with no .git")
	}
}

func TestIsWorktreeFalseForMainCheckout(t *testing.T) {
	repo := setupRepo(t)
	if git.IsWorktree(repo) {
		t.Error("main checkout reported as a worktree")
	}
}

func TestMainRepoRootReturnsSelfWhenNotAWorktree(t *testing.T) {
	repo := setupRepo(t)
	root, err := git.MainRepoRoot(repo)
	if err != nil {
		t.Fatalf("MainRepoRoot: %v", err)
	}
	want, _ := filepath.EvalSymlinks(repo)
	got, _ := filepath.EvalSymlinks(root)
	if got != want {
		t.Errorf("MainRepoRoot() = %q, want %q", root, want)
	}
}
