package resolution

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// MatchType classifies how a candidate was resolved against the registry.
type MatchType int

const (
	MatchNone MatchType = iota
	MatchExactTicker
	MatchExactName
	MatchNormalized
	MatchAlias
	MatchFuzzy
)

func (t MatchType) String() string {
	switch t {
	case MatchNone:
		return "NO_MATCH"
	case MatchExactTicker:
		return "EXACT_TICKER"
	case MatchExactName:
		return "EXACT_NAME"
	case MatchNormalized:
		return "NORMALIZED"
	case MatchAlias:
		return "ALIAS"
	case MatchFuzzy:
		return "FUZZY"
	default:
		return fmt.Sprintf("MatchType(%d)", int(t))
	}
}

// MatchResult is the outcome of resolving one candidate against the registry.
// When Matched is false, Type is MatchNone and BaseConfidence is zero.
type MatchResult struct {
	Matched        bool
	Company        Company
	Type           MatchType
	BaseConfidence float64
	MatcherName    string
}

func noMatch() MatchResult {
	return MatchResult{Matched: false, Type: MatchNone}
}

// Matcher is one registry-resolution strategy.  Lower Priority values run
// first; the first strategy to match wins.
type Matcher interface {
	Match(c Candidate, lookup *CompanyLookup) MatchResult
	Name() string
	Priority() int
}

// ─────────────────────────────────────────────────────────────────────────────
// Matching strategies, in priority order
// ─────────────────────────────────────────────────────────────────────────────

// ExactTickerMatcher matches the uppercased candidate text against the ticker
// index.  Base confidence 1.0.
type ExactTickerMatcher struct{}

func (ExactTickerMatcher) Name() string  { return "exact_ticker" }
func (ExactTickerMatcher) Priority() int { return 1 }

func (m ExactTickerMatcher) Match(c Candidate, lookup *CompanyLookup) MatchResult {
	company, ok := lookup.TickerToCompany[strings.ToUpper(strings.TrimSpace(c.Text))]
	if !ok {
		return noMatch()
	}
	return MatchResult{
		Matched:        true,
		Company:        company,
		Type:           MatchExactTicker,
		BaseConfidence: 1.0,
		MatcherName:    m.Name(),
	}
}

// ExactNameMatcher matches the lowercased candidate text against the name
// index.  Base confidence 1.0.
type ExactNameMatcher struct{}

func (ExactNameMatcher) Name() string  { return "exact_name" }
func (ExactNameMatcher) Priority() int { return 2 }

func (m ExactNameMatcher) Match(c Candidate, lookup *CompanyLookup) MatchResult {
	company, ok := lookup.NameToCompany[strings.ToLower(strings.TrimSpace(c.Text))]
	if !ok {
		return noMatch()
	}
	return MatchResult{
		Matched:        true,
		Company:        company,
		Type:           MatchExactName,
		BaseConfidence: 1.0,
		MatcherName:    m.Name(),
	}
}

// NormalizedNameMatcher strips corporate suffixes from the candidate before
// probing the name index.  Base confidence 0.95.
type NormalizedNameMatcher struct{}

func (NormalizedNameMatcher) Name() string  { return "normalized_name" }
func (NormalizedNameMatcher) Priority() int { return 3 }

func (m NormalizedNameMatcher) Match(c Candidate, lookup *CompanyLookup) MatchResult {
	norm := NormalizeCompanyName(c.Text)
	if norm == "" {
		return noMatch()
	}
	company, ok := lookup.NameToCompany[norm]
	if !ok {
		return noMatch()
	}
	return MatchResult{
		Matched:        true,
		Company:        company,
		Type:           MatchNormalized,
		BaseConfidence: 0.95,
		MatcherName:    m.Name(),
	}
}

// FuzzyNameMatcher compares the candidate to every registry name by token-set
// Jaccard similarity and accepts the best score at or above MinSimilarity.
// Base confidence is similarity × 0.9.  Registry names are scanned in sorted
// key order so ties resolve deterministically.
type FuzzyNameMatcher struct {
	MinSimilarity float64
}

func NewFuzzyNameMatcher(minSimilarity float64) FuzzyNameMatcher {
	return FuzzyNameMatcher{MinSimilarity: minSimilarity}
}

func (FuzzyNameMatcher) Name() string  { return "fuzzy_name" }
func (FuzzyNameMatcher) Priority() int { return 4 }

func (m FuzzyNameMatcher) Match(c Candidate, lookup *CompanyLookup) MatchResult {
	candTokens := tokenSet(c.Text)
	if candTokens.Cardinality() == 0 {
		return noMatch()
	}

	names := make([]string, 0, len(lookup.NameToCompany))
	for name := range lookup.NameToCompany {
		names = append(names, name)
	}
	sort.Strings(names)

	bestSim := 0.0
	var bestCompany Company
	found := false
	for _, name := range names {
		sim := jaccard(candTokens, tokenSet(name))
		if sim > bestSim {
			bestSim = sim
			bestCompany = lookup.NameToCompany[name]
			found = true
		}
	}

	if !found || bestSim < m.MinSimilarity {
		return noMatch()
	}
	return MatchResult{
		Matched:        true,
		Company:        bestCompany,
		Type:           MatchFuzzy,
		BaseConfidence: bestSim * 0.9,
		MatcherName:    m.Name(),
	}
}

// tokenSet lowercases s and splits on whitespace into a set.
func tokenSet(s string) mapset.Set[string] {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set.Add(tok)
	}
	return set
}

// jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func jaccard(a, b mapset.Set[string]) float64 {
	union := a.Union(b).Cardinality()
	if union == 0 {
		return 0
	}
	return float64(a.Intersect(b).Cardinality()) / float64(union)
}

// ─────────────────────────────────────────────────────────────────────────────
// Match orchestration
// ─────────────────────────────────────────────────────────────────────────────

// StandardMatchers returns the exact and normalized strategies in priority
// order.  The fuzzy matcher is opt-in through StandardMatchersWithFuzzy since
// it scans the whole registry per candidate.
func StandardMatchers() []Matcher {
	return []Matcher{ExactTickerMatcher{}, ExactNameMatcher{}, NormalizedNameMatcher{}}
}

// StandardMatchersWithFuzzy appends a fuzzy matcher with the given minimum
// similarity to the standard chain.
func StandardMatchersWithFuzzy(minSimilarity float64) []Matcher {
	return append(StandardMatchers(), NewFuzzyNameMatcher(minSimilarity))
}

// MatchCandidate tries matchers in ascending priority order and returns the
// first successful result, or a no-match result when every strategy misses.
func MatchCandidate(c Candidate, lookup *CompanyLookup, matchers []Matcher) MatchResult {
	ordered := make([]Matcher, len(matchers))
	copy(ordered, matchers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority() < ordered[j].Priority() })

	for _, m := range ordered {
		if res := m.Match(c, lookup); res.Matched {
			return res
		}
	}
	return noMatch()
}

// MatchCandidatesWithStats matches a batch and aggregates a per-matcher
// success histogram; misses count under "no_match".
func MatchCandidatesWithStats(candidates []Candidate, lookup *CompanyLookup, matchers []Matcher) ([]MatchResult, map[string]int) {
	results := make([]MatchResult, 0, len(candidates))
	stats := make(map[string]int)
	for _, c := range candidates {
		res := MatchCandidate(c, lookup, matchers)
		results = append(results, res)
		if res.Matched {
			stats[res.MatcherName]++
		} else {
			stats["no_match"]++
		}
	}
	return results, stats
}
