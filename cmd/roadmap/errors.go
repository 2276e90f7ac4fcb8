package main

import (
	"errors"

	"github.com/roadmap/roadmap/internal/apperr"
	"github.com/roadmap/roadmap/internal/store"
)

// classifyStore adapts the Store's plain sentinel errors (spec.md §4.1) to
// the apperr taxonomy the rest of the CLI's error handling (fail, exit code
// mapping, --json Error shape) is built around. Errors that already carry
// an apperr.Kind (from the Graph Kernel, Resolver, Runner) pass through
// unchanged.
func classifyStore(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.KindOf(err); ok {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.Wrap(apperr.NotFound, err, "not found")
	case errors.Is(err, store.ErrAlreadyExists):
		return apperr.Wrap(apperr.AlreadyExists, err, "already exists")
	case errors.Is(err, store.ErrCycle):
		return apperr.Wrap(apperr.WouldCycle, err, "dependency cycle")
	case errors.Is(err, store.ErrBusy):
		return apperr.Wrap(apperr.StoreBusy, err, "store busy")
	case errors.Is(err, store.ErrCorrupt), errors.Is(err, store.ErrSchemaMismatch):
		return apperr.Wrap(apperr.StoreCorrupt, err, "store corrupt")
	default:
		return err
	}
}
