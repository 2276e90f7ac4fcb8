// Package resolver maps a user-supplied reference ("42", "setup-db",
// "auth") to exactly one claim (spec.md §4.4).
package resolver

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/roadmap/roadmap/internal/apperr"
	"github.com/roadmap/roadmap/internal/types"
)

// defaultAmbiguityMargin is the minimum score gap required between the top
// two lenient candidates for the top one to be accepted outright; within the
// margin, the near-tied candidates are reported as ambiguous (spec.md §4.4).
// Matches config.DefaultResolverMargin, used when the caller passes a zero
// Options.
const defaultAmbiguityMargin = 0.08

// defaultMinFuzzyScore discards candidates whose combined fuzzy/token-overlap
// score falls below this floor rather than ever treating them as a match.
// Matches config.DefaultResolverMinScore.
const defaultMinFuzzyScore = 0.2

// Options configures the lenient Resolver's ambiguity threshold, sourced
// from .roadmap/config.yaml's resolver-ambiguity-margin/resolver-min-score
// (SPEC_FULL.md §10.3). A zero Options falls back to the package defaults.
type Options struct {
	AmbiguityMargin float64
	MinFuzzyScore   float64
}

func (o Options) margin() float64 {
	if o.AmbiguityMargin == 0 {
		return defaultAmbiguityMargin
	}
	return o.AmbiguityMargin
}

func (o Options) minScore() float64 {
	if o.MinFuzzyScore == 0 {
		return defaultMinFuzzyScore
	}
	return o.MinFuzzyScore
}

// Strict resolves ref against claims accepting only an exact id or exact
// slug, for agent/JSON call paths (spec.md §4.4). It performs no substring
// or similarity matching, so ambiguity cannot arise under it.
func Strict(ref string, claims []*types.Claim) (*types.Claim, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, c := range claims {
			if c.ID == id {
				return c, nil
			}
		}
		return nil, apperr.New(apperr.NotFound, "no claim with id %d", id)
	}
	for _, c := range claims {
		if c.Slug == ref {
			return c, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "no claim with slug %q", ref)
}

// Lenient resolves ref for interactive call paths, trying in order: numeric
// id, exact slug, case-insensitive substring against slug then statement,
// and finally token-overlap/fuzzy ranking (spec.md §4.4). On ambiguity it
// returns an apperr.Ambiguous error carrying ranked candidates so the
// caller can render a disambiguation prompt. opts tunes the fuzzy stage's
// ambiguity margin and score floor; the zero Options uses the defaults.
func Lenient(ref string, claims []*types.Claim, opts Options) (*types.Claim, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, c := range claims {
			if c.ID == id {
				return c, nil
			}
		}
		return nil, apperr.New(apperr.NotFound, "no claim with id %d", id)
	}

	for _, c := range claims {
		if c.Slug == ref {
			return c, nil
		}
	}

	lowerRef := strings.ToLower(ref)
	var substringHits []*types.Claim
	for _, c := range claims {
		if strings.Contains(strings.ToLower(c.Slug), lowerRef) {
			substringHits = append(substringHits, c)
		}
	}
	if len(substringHits) == 0 {
		for _, c := range claims {
			if strings.Contains(strings.ToLower(c.Statement), lowerRef) {
				substringHits = append(substringHits, c)
			}
		}
	}
	if len(substringHits) == 1 {
		return substringHits[0], nil
	}
	if len(substringHits) > 1 {
		return nil, apperr.AmbiguousErr(ref, candidatesFor(substringHits, scoreSubstring(ref, substringHits)))
	}

	return rankFuzzy(ref, claims, opts)
}

func scoreSubstring(ref string, hits []*types.Claim) map[int64]float64 {
	out := make(map[int64]float64, len(hits))
	for _, c := range hits {
		// Tighter containment (ref closer in length to the slug) scores higher.
		out[c.ID] = float64(len(ref)) / float64(len(c.Slug)+1)
	}
	return out
}

// rankFuzzy scores every claim by sahilm/fuzzy against the slug, blended
// with Jaccard token overlap against the statement, and either returns the
// single claim clearing opts.minScore() by at least opts.margin() over its
// runner-up, or an Ambiguous error over the near-tied top candidates.
func rankFuzzy(ref string, claims []*types.Claim, opts Options) (*types.Claim, error) {
	slugs := make([]string, len(claims))
	for i, c := range claims {
		slugs[i] = c.Slug
	}
	fuzzyMatches := fuzzy.Find(ref, slugs)
	maxFuzzy := 1
	for _, m := range fuzzyMatches {
		if m.Score > maxFuzzy {
			maxFuzzy = m.Score
		}
	}
	fuzzyScore := make(map[int64]float64, len(fuzzyMatches))
	for _, m := range fuzzyMatches {
		fuzzyScore[claims[m.Index].ID] = float64(m.Score) / float64(maxFuzzy)
	}

	refTokens := tokenize(ref)
	type scored struct {
		claim *types.Claim
		score float64
	}
	var candidates []scored
	minScore := opts.minScore()
	for _, c := range claims {
		score := 0.6*fuzzyScore[c.ID] + 0.4*jaccard(refTokens, tokenize(c.Statement))
		if score < minScore {
			continue
		}
		candidates = append(candidates, scored{c, score})
	}
	if len(candidates) == 0 {
		return nil, apperr.New(apperr.NotFound, "no claim matches %q", ref)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if len(candidates) == 1 || candidates[0].score-candidates[1].score >= opts.margin() {
		return candidates[0].claim, nil
	}

	top := candidates
	if len(top) > 5 {
		top = top[:5]
	}
	hits := make([]*types.Claim, len(top))
	scores := make(map[int64]float64, len(top))
	for i, s := range top {
		hits[i] = s.claim
		scores[s.claim.ID] = s.score
	}
	return nil, apperr.AmbiguousErr(ref, candidatesFor(hits, scores))
}

func candidatesFor(hits []*types.Claim, scores map[int64]float64) []types.Candidate {
	out := make([]types.Candidate, len(hits))
	for i, c := range hits {
		out[i] = types.Candidate{ID: c.ID, Slug: c.Slug, Score: scores[c.ID]}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func tokenize(s string) map[string]struct{} {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(' ')
	}
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) >= 2 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
