// Package idgen derives claim slugs from statements (spec.md §3: "short,
// URL-safe, unique, derived from title at creation").
package idgen

import (
	"regexp"
	"strconv"
	"strings"
)

// nonAlphanumericRegex matches any run of non-alphanumeric characters.
var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// multipleHyphenRegex collapses consecutive hyphens left behind once
// adjacent non-alphanumeric runs are joined.
var multipleHyphenRegex = regexp.MustCompile(`-+`)

const maxSlugLength = 46

// Slugify lowercases statement, collapses non-alphanumeric runs to a single
// hyphen, and trims the result, per spec.md §3's slug derivation rule. It
// does not disambiguate collisions; callers handle that separately
// (internal/store/sqlite/claims.go's uniqueSlug does it inside the
// creating transaction, Disambiguate below does it outside one).
func Slugify(statement string) string {
	slug := strings.ToLower(statement)
	slug = nonAlphanumericRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	slug = multipleHyphenRegex.ReplaceAllString(slug, "-")

	if slug == "" {
		slug = "claim"
	}
	if len(slug) > maxSlugLength {
		truncated := slug[:maxSlugLength]
		if lastHyphen := strings.LastIndex(truncated, "-"); lastHyphen > maxSlugLength/2 {
			truncated = truncated[:lastHyphen]
		}
		slug = strings.Trim(truncated, "-")
	}
	return slug
}

// Disambiguate appends a numeric suffix (-2, -3, ...) to base until exists
// reports false, per spec.md §3's "collisions disambiguated by numeric
// suffix" rule, for callers that need a unique slug outside of a creating
// transaction.
func Disambiguate(base string, exists func(candidate string) bool) string {
	candidate := base
	for n := 2; exists(candidate); n++ {
		candidate = base + "-" + strconv.Itoa(n)
	}
	return candidate
}
