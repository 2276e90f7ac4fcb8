// Package runner is the Verification Runner (spec.md §4.6): it turns a
// claim into a new proof record, enforcing the Law of Hygiene (proofs are
// properties of a commit, never a dirty worktree).
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roadmap/roadmap/internal/apperr"
	"github.com/roadmap/roadmap/internal/store"
	"github.com/roadmap/roadmap/internal/types"
)

// ringBufferLimit is the bounded tail retained per stream (spec.md §4.6:
// "≤4 KiB tail retained; a truncation marker is appended if exceeded").
const ringBufferLimit = 4 * 1024

const truncationMarker = "\n...[truncated]"

// gracePeriod is how long the Runner waits after sending a termination
// signal before escalating to a kill (spec.md §4.6).
const gracePeriod = 5 * time.Second

// ErrTerminated is returned when the caller's context was canceled (SIGINT/
// SIGTERM forwarded from the CLI, spec.md §5) before prove_cmd produced an
// exit status. No proof row is appended for this outcome.
var ErrTerminated = errors.New("prove_cmd terminated before producing a result")

// Repo is the subset of repocontext.Context the Runner needs.
type Repo interface {
	Head() (string, bool, error)
	IsClean() (bool, error)
}

// Runner executes a single check attempt against a claim and appends its
// result to the Store.
type Runner struct {
	Store   store.Store
	Repo    Repo
	Root    string // working directory prove_cmd runs in (the repository root)
	OnSpan  func(ctx context.Context, claimSlug string) (context.Context, func(exitCode int))
}

// Result is the outcome of one check attempt, used by the CLI to render
// PROVEN/BROKEN and decide its exit code.
type Result struct {
	Proof *types.Proof
}

// Check runs claim.ProveCmd under the Law of Hygiene and appends a
// VERIFIED proof. timeout of zero means no timeout.
func (r *Runner) Check(ctx context.Context, claim *types.Claim, timeout time.Duration) (*Result, error) {
	if !claim.HasProveCmd() {
		return nil, apperr.New(apperr.NoProveCommand, "claim %s has no prove_cmd", claim.Slug)
	}

	clean, err := r.Repo.IsClean()
	if err != nil {
		return nil, fmt.Errorf("check hygiene: %w", err)
	}
	if !clean {
		return nil, apperr.New(apperr.DirtyWorkingTree, "working tree is dirty; proofs must be properties of a commit")
	}

	head, ok, err := r.Repo.Head()
	if err != nil {
		return nil, fmt.Errorf("read head: %w", err)
	}
	if !ok {
		return nil, apperr.New(apperr.NoCommits, "repository has no commits to pin a proof to")
	}

	var span func(exitCode int)
	if r.OnSpan != nil {
		ctx, span = r.OnSpan(ctx, claim.Slug)
	}

	start := time.Now()
	exitCode, stdoutTail, stderrTail, timedOut, runErr := r.execute(ctx, claim.ProveCmd, timeout)
	duration := time.Since(start)
	if span != nil {
		span(exitCode)
	}
	if runErr != nil {
		return nil, fmt.Errorf("execute prove_cmd: %w", runErr)
	}

	proof := &types.Proof{
		ClaimID:    claim.ID,
		Cmd:        claim.ProveCmd,
		ExitCode:   exitCode,
		CommitID:   head,
		DurationMS: duration.Milliseconds(),
		StdoutTail: stdoutTail,
		StderrTail: stderrTail,
		Kind:       types.ProofVerified,
		TimedOut:   timedOut,
	}
	if timedOut {
		proof.Reason = "timeout"
		proof.StderrTail += "\n[timeout]"
	}

	recorded, err := r.Store.AppendProof(ctx, proof)
	if err != nil {
		return nil, fmt.Errorf("append proof: %w", err)
	}

	result := &Result{Proof: recorded}
	if exitCode != 0 {
		return result, apperr.New(apperr.ExecutionFailed, "prove_cmd exited %d", exitCode)
	}
	return result, nil
}

// Attest records an ATTESTED proof, bypassing prove_cmd execution but
// still requiring hygiene (spec.md §4.6): the tree must be clean and
// pinned to a commit, and reason must be non-empty.
func (r *Runner) Attest(ctx context.Context, claim *types.Claim, reason string) (*Result, error) {
	if reason == "" {
		return nil, apperr.New(apperr.ExecutionFailed, "attestation requires a non-empty reason")
	}

	clean, err := r.Repo.IsClean()
	if err != nil {
		return nil, fmt.Errorf("check hygiene: %w", err)
	}
	if !clean {
		return nil, apperr.New(apperr.DirtyWorkingTree, "working tree is dirty; attestations are pinned to a commit")
	}

	head, ok, err := r.Repo.Head()
	if err != nil {
		return nil, fmt.Errorf("read head: %w", err)
	}
	if !ok {
		return nil, apperr.New(apperr.NoCommits, "repository has no commits to pin an attestation to")
	}

	proof := &types.Proof{
		ClaimID:  claim.ID,
		Cmd:      "",
		ExitCode: 0,
		CommitID: head,
		Kind:     types.ProofAttested,
		Reason:   reason,
	}
	recorded, err := r.Store.AppendProof(ctx, proof)
	if err != nil {
		return nil, fmt.Errorf("append proof: %w", err)
	}
	return &Result{Proof: recorded}, nil
}

// execute runs cmd in the platform default shell, capturing bounded tails
// of stdout/stderr concurrently (via errgroup, the same lifecycle-managed
// goroutine idiom the pack's semantic classifier uses for concurrent
// searches, here draining two pipes instead of racing two stores) so
// neither pipe's buffer can deadlock the child. On timeout expiry, or on the
// caller's ctx being canceled (SIGINT/SIGTERM forwarded by the CLI), it
// sends SIGTERM, waits gracePeriod, then SIGKILL.
func (r *Runner) execute(ctx context.Context, shellCmd string, timeout time.Duration) (exitCode int, stdoutTail, stderrTail string, timedOut bool, err error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, "sh", "-c", shellCmd)
	cmd.Dir = r.Root
	cmd.Cancel = func() error { return terminate(cmd) }
	cmd.WaitDelay = gracePeriod

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return 0, "", "", false, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return 0, "", "", false, err
	}

	if err := cmd.Start(); err != nil {
		return 0, "", "", false, err
	}

	var stdoutBuf, stderrBuf ringBuffer
	g, _ := errgroup.WithContext(runCtx)
	g.Go(func() error { return stdoutBuf.drain(stdoutPipe) })
	g.Go(func() error { return stderrBuf.drain(stderrPipe) })
	_ = g.Wait()

	waitErr := cmd.Wait()

	// ctx (the caller's context, forwarding SIGINT/SIGTERM per spec.md §5) is
	// distinct from runCtx (which also trips on the internal --timeout
	// deadline): only the latter gets a recorded, timed-out proof. If ctx
	// itself was canceled, the child was terminated on our behalf before it
	// produced its own exit status, so no proof may be written at all.
	if ctx.Err() != nil {
		return 0, "", "", false, ErrTerminated
	}
	timedOut = runCtx.Err() == context.DeadlineExceeded

	code := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else if timedOut {
			code = -1
		} else {
			return 0, "", "", timedOut, waitErr
		}
	}

	return code, stdoutBuf.tail(), stderrBuf.tail(), timedOut, nil
}

// ringBuffer retains only the last ringBufferLimit bytes written to it,
// regardless of total stream length, so a runaway prove_cmd cannot grow the
// Runner's memory use (spec.md §4.6: "bounded ring buffer").
type ringBuffer struct {
	buf       bytes.Buffer
	truncated bool
}

func (rb *ringBuffer) drain(r interface{ Read([]byte) (int, error) }) error {
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			rb.write(chunk[:n])
		}
		if err != nil {
			return nil
		}
	}
}

func (rb *ringBuffer) write(p []byte) {
	rb.buf.Write(p)
	if rb.buf.Len() > ringBufferLimit {
		excess := rb.buf.Len() - ringBufferLimit
		rb.buf.Next(excess)
		rb.truncated = true
	}
}

func (rb *ringBuffer) tail() string {
	if !rb.truncated {
		return rb.buf.String()
	}
	return rb.buf.String() + truncationMarker
}

// terminate sends the platform's graceful-termination signal to cmd's own
// process (the shell); processes the shell spawned are not signalled
// directly.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		return cmd.Process.Kill()
	}
	return cmd.Process.Signal(syscall.SIGTERM)
}
