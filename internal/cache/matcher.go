package cache

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// MatchResult is the outcome of a cache lookup.
type MatchResult struct {
	Entry   *Entry
	Partial bool
}

// Matcher performs exact and partial lookups against the suggestion
// cache. The partial path intersects the reverse ingredient index and
// filters candidates through strict compatibility rules, so a match is
// only returned when the cached entry could legitimately answer the
// request as if it had been generated for it.
type Matcher struct {
	store Store
}

// NewMatcher creates a matcher over the given suggestion store.
func NewMatcher(store Store) *Matcher {
	return &Matcher{store: store}
}

// Match resolves a request against the cache. It tries the exact key
// first, then the partial path. A nil Entry in the result means an
// overall cache miss.
func (m *Matcher) Match(ctx context.Context, ingredients []string, settings RequestSettings) (*MatchResult, error) {
	q := Quantize(settings)
	key := GenerateKey(ingredients, q)

	entry, err := m.store.GetExact(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return &MatchResult{Entry: entry}, nil
	}

	entry, err = m.matchPartial(ctx, ingredients, settings, q)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return &MatchResult{Entry: entry, Partial: true}, nil
	}
	return &MatchResult{}, nil
}

// matchPartial finds cached entries whose ingredient set is a superset
// of the request's and whose settings are compatible, returning the
// highest-scoring survivor.
func (m *Matcher) matchPartial(ctx context.Context, ingredients []string, settings RequestSettings, q QuantizedSettings) (*Entry, error) {
	if len(ingredients) == 0 {
		return nil, nil
	}

	candidates, err := m.intersectIndex(ctx, ingredients)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Index rows are unordered sets; sort so that scoring ties resolve
	// the same way on every lookup.
	sort.Strings(candidates)

	var (
		best      *Entry
		bestScore int
	)
	for _, key := range candidates {
		entry, err := m.store.GetExact(ctx, key)
		if err != nil {
			slog.Warn("Skipping unreadable partial-match candidate", "cache_key", key, "error", err)
			continue
		}
		if entry == nil {
			// Stale index row, entry already expired.
			continue
		}
		if !compatible(settings, q, entry.Settings) {
			continue
		}
		if score := scoreCandidate(q, settings, entry.Settings); score > bestScore {
			best = entry
			bestScore = score
		}
	}
	return best, nil
}

// intersectIndex returns the cache keys present in every requested
// ingredient's index set.
func (m *Matcher) intersectIndex(ctx context.Context, ingredients []string) ([]string, error) {
	counts := make(map[string]int)
	for _, ing := range ingredients {
		keys, err := m.store.KeysContaining(ctx, ing)
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			return nil, nil
		}
		seen := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			counts[k]++
		}
	}

	var out []string
	for k, n := range counts {
		if n == len(ingredients) {
			out = append(out, k)
		}
	}
	return out, nil
}

// compatible applies the strict settings rules a candidate must pass
// before it may answer a request it was not generated for.
func compatible(req RequestSettings, q QuantizedSettings, cand RequestSettings) bool {
	cq := Quantize(cand)

	// Servings must match exactly, no rounding between neighbours.
	if cq.Servings != q.Servings {
		return false
	}

	// A concrete meal type can only be satisfied by the same concrete
	// type; "none" on the candidate is not a wildcard.
	if q.MealType != MealTypeNone && cq.MealType != q.MealType {
		return false
	}

	// The candidate's configured ceiling must cover the request's.
	if cq.MaxCookingTime < q.MaxCookingTime {
		return false
	}

	// The candidate must already exclude everything the request wants
	// excluded. A request with no dislikes only accepts candidates with
	// none, since a candidate generated under exclusions may have
	// dropped ingredients the requester wanted.
	if len(req.DislikedIngredients) == 0 {
		if len(cand.DislikedIngredients) != 0 {
			return false
		}
	} else if !containsAll(cand.DislikedIngredients, req.DislikedIngredients) {
		return false
	}

	if len(req.PreferredCookingMethods) > 0 &&
		!containsAll(cand.PreferredCookingMethods, req.PreferredCookingMethods) {
		return false
	}

	return true
}

// scoreCandidate ranks a surviving candidate. Every survivor starts at
// 100; exact agreement on the looser rules earns a bonus each.
func scoreCandidate(q QuantizedSettings, req RequestSettings, cand RequestSettings) int {
	cq := Quantize(cand)
	score := 100
	if cq.MaxCookingTime == q.MaxCookingTime {
		score += 10
	}
	if cq.MealType == q.MealType {
		score += 10
	}
	if sameMethodSet(req.PreferredCookingMethods, cand.PreferredCookingMethods) {
		score += 10
	}
	return score
}

func containsAll(haystack, needles []string) bool {
	set := make(map[string]struct{}, len(haystack))
	for _, h := range haystack {
		set[strings.ToLower(h)] = struct{}{}
	}
	for _, n := range needles {
		if _, ok := set[strings.ToLower(n)]; !ok {
			return false
		}
	}
	return true
}

func sameMethodSet(a, b []string) bool {
	return containsAll(a, b) && containsAll(b, a)
}
