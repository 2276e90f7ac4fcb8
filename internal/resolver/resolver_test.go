package resolver_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadmap/roadmap/internal/apperr"
	"github.com/roadmap/roadmap/internal/resolver"
	"github.com/roadmap/roadmap/internal/types"
)

func claims() []*types.Claim {
	return []*types.Claim{
		{ID: 1, Slug: "setup-db", Statement: "Database schema is migrated"},
		{ID: 2, Slug: "auth-login", Statement: "Login flow rejects expired tokens"},
		{ID: 3, Slug: "auth-logout", Statement: "Logout clears the session cookie"},
	}
}

func TestStrictExactID(t *testing.T) {
	c, err := resolver.Strict("2", claims())
	require.NoError(t, err)
	assert.Equal(t, "auth-login", c.Slug)
}

func TestStrictExactSlug(t *testing.T) {
	c, err := resolver.Strict("setup-db", claims())
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
}

func TestStrictRejectsSubstring(t *testing.T) {
	_, err := resolver.Strict("auth", claims())
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.NotFound, appErr.Kind)
}

func TestLenientNumericID(t *testing.T) {
	c, err := resolver.Lenient("3", claims(), resolver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "auth-logout", c.Slug)
}

func TestLenientExactSlug(t *testing.T) {
	c, err := resolver.Lenient("setup-db", claims(), resolver.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
}

func TestLenientUniqueSubstring(t *testing.T) {
	c, err := resolver.Lenient("setup", claims(), resolver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "setup-db", c.Slug)
}

func TestLenientAmbiguousSubstring(t *testing.T) {
	_, err := resolver.Lenient("auth", claims(), resolver.Options{})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.Ambiguous, appErr.Kind)
	assert.Len(t, appErr.Candidates, 2)
}

func TestLenientFuzzyFallback(t *testing.T) {
	c, err := resolver.Lenient("logut", claims(), resolver.Options{})
	require.NoError(t, err)
	assert.Equal(t, "auth-logout", c.Slug)
}

func TestLenientNotFound(t *testing.T) {
	_, err := resolver.Lenient("zzz nothing like this exists", claims(), resolver.Options{})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.NotFound, appErr.Kind)
}

func TestLenientMinScoreFiltersOutWeakMatch(t *testing.T) {
	// "logut" fuzzy-matches auth-logout at a blended score of 0.6 under the
	// package defaults (TestLenientFuzzyFallback). A configured MinFuzzyScore
	// above that should turn the same ref into a NotFound instead of a
	// silent accept, proving the threshold is actually threaded through.
	_, err := resolver.Lenient("logut", claims(), resolver.Options{MinFuzzyScore: 0.9})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.NotFound, appErr.Kind)
}
