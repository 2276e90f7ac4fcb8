// Package apperr defines the error taxonomy shared by every core package and
// the CLI's exit-code mapping for it (spec.md §6, §7). It plays the role the
// teacher's storage/sqlite/errors.go sentinel-error block plays for the
// Store, generalized to the whole core instead of just SQL errors.
package apperr

import (
	"errors"
	"fmt"

	"github.com/roadmap/roadmap/internal/types"
)

// Kind is a stable error classification. The CLI maps a Kind to an exit code
// and, in --json mode, to the "kind" field of the Error JSON shape.
type Kind string

const (
	NotFound          Kind = "NotFound"
	Ambiguous         Kind = "Ambiguous"
	AlreadyExists     Kind = "AlreadyExists"
	WouldCycle        Kind = "WouldCycle"
	BlockedByUnproven Kind = "BlockedByUnproven"
	DirtyWorkingTree  Kind = "DirtyWorkingTree"
	NoCommits         Kind = "NoCommits"
	NoProveCommand    Kind = "NoProveCommand"
	ExecutionFailed   Kind = "ExecutionFailed"
	Timeout           Kind = "Timeout"
	StoreBusy         Kind = "StoreBusy"
	StoreCorrupt      Kind = "StoreCorrupt"
	ScopeSyntax       Kind = "ScopeSyntax"
)

// Error is the core's uniform error type. It always carries a Kind so the
// CLI can map it to exactly one exit code and one human message, per
// spec.md §7.
type Error struct {
	Kind       Kind
	Message    string
	Candidates []types.Candidate
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a bare Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind to an underlying cause, preserving it for errors.Is/As.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// AmbiguousErr builds the Ambiguous error carrying ranked candidates, per
// spec.md §4.4 ("the Resolver returns the top candidates ... so callers can
// show a disambiguation prompt").
func AmbiguousErr(ref string, candidates []types.Candidate) *Error {
	return &Error{
		Kind:       Ambiguous,
		Message:    fmt.Sprintf("%q matches multiple claims", ref),
		Candidates: candidates,
	}
}

// KindOf extracts the Kind from err, walking the wrap chain. Returns ("", false)
// if err does not wrap an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// ExitCode maps a Kind to the process exit code of spec.md §6.
func ExitCode(kind Kind) int {
	switch kind {
	case "":
		return 0
	case NotFound, Ambiguous:
		return 2
	case WouldCycle, BlockedByUnproven:
		return 3
	case DirtyWorkingTree, NoCommits:
		return 4
	case NoProveCommand, ExecutionFailed, Timeout:
		return 5
	case StoreBusy, StoreCorrupt, ScopeSyntax, AlreadyExists:
		return 6
	default:
		return 1
	}
}

// ExitCodeForErr maps any error to its exit code: 0 for nil, ExitCode(kind)
// for a classified *Error, 1 (generic failure) for anything else.
func ExitCodeForErr(err error) int {
	if err == nil {
		return 0
	}
	if kind, ok := KindOf(err); ok {
		return ExitCode(kind)
	}
	return 1
}

// JSON renders err as the stable Error JSON shape of spec.md §6.
func JSON(err error) types.ErrorJSON {
	if err == nil {
		return types.ErrorJSON{}
	}
	var e *Error
	if errors.As(err, &e) {
		return types.ErrorJSON{Kind: string(e.Kind), Message: e.Message, Candidates: e.Candidates}
	}
	return types.ErrorJSON{Kind: "Internal", Message: err.Error()}
}
