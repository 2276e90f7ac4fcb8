// Package session owns the per-invocation Store connection, RepoContext,
// and active-claim pointer as a single scoped value (spec.md §9: "model
// them as a scoped Session value that owns both and releases them on
// exit"), rather than as package-level globals.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roadmap/roadmap/internal/config"
	"github.com/roadmap/roadmap/internal/git"
	"github.com/roadmap/roadmap/internal/repocontext"
	"github.com/roadmap/roadmap/internal/store"
	"github.com/roadmap/roadmap/internal/store/sqlite"
)

// stateDirName is the on-disk layout root (spec.md §6).
const stateDirName = ".roadmap"
const stateFileName = "state.db"

// Session is the live handle a single CLI invocation works through: one
// open Store connection and one RepoContext snapshot, both closed/released
// when the command finishes.
type Session struct {
	Store  store.Store
	Repo   *repocontext.Context
	Config *config.Config
	Root   string // repository root (parent of .roadmap/)
}

// Open walks upward from cwd to find .roadmap/, opens its Store, and loads
// the repo-local config (spec.md §6: "must be detectable by walking upward
// from cwd"). startDir is typically the process's working directory.
func Open(startDir string) (*Session, error) {
	root, err := findRoot(startDir)
	if err != nil {
		return nil, err
	}
	if _, err := git.Dir(root); err != nil {
		return nil, fmt.Errorf("roadmap requires a git working tree: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, stateDirName, "config.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	busyTimeout := time.Duration(cfg.StoreBusyTimeoutMS) * time.Millisecond
	s, err := sqlite.Open(filepath.Join(root, stateDirName, stateFileName), busyTimeout)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &Session{
		Store:  s,
		Repo:   repocontext.New(root),
		Config: cfg,
		Root:   root,
	}, nil
}

// Init creates .roadmap/ under root and opens a fresh Session there,
// backing the external `init` collaborator (spec.md §6).
func Init(root string) (*Session, error) {
	dir := filepath.Join(root, stateDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return Open(root)
}

func findRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, stateDirName)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s directory found above %s (run `roadmap init` first)", stateDirName, startDir)
		}
		dir = parent
	}
}

// Close releases the Store connection. The RepoContext holds no resources
// of its own (every operation is a fresh git invocation).
func (s *Session) Close() error {
	return s.Store.Close()
}

// Active returns the claim id the active pointer currently refers to.
func (s *Session) Active(ctx context.Context) (int64, bool, error) {
	return s.Store.GetActive(ctx)
}
