package resolution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/resolution"
)

func testLookup() *resolution.CompanyLookup {
	l := resolution.NewCompanyLookup()
	l.Add("0000320193", "AAPL", "Apple Inc.")
	l.Add("0000789019", "MSFT", "Microsoft Corporation")
	l.Add("0001018724", "AMZN", "Amazon.com, Inc.")
	l.Add("0001045810", "NVDA", "NVIDIA Corporation")
	return l
}

func TestNormalizeCompanyName(t *testing.T) {
	t.Parallel()
	cases := []struct{ in, want string }{
		{"Apple Inc.", "apple"},
		{"Microsoft Corporation", "microsoft"},
		{"Tencent Holdings Ltd", "tencent"},
		{"Alphabet Inc /DE/", "alphabet inc"},
		{"  Foo Co.  ", "foo"},
		{"Plain Name", "plain name"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, resolution.NormalizeCompanyName(tc.in), "input %q", tc.in)
	}
}

func TestCompanyLookup_AddIndexesVariants(t *testing.T) {
	t.Parallel()
	l := testLookup()

	// Lowercased name, normalized variant, uppercased ticker.
	assert.Contains(t, l.NameToCompany, "apple inc.")
	assert.Contains(t, l.NameToCompany, "apple")
	assert.Contains(t, l.TickerToCompany, "AAPL")
	assert.True(t, l.AllNames.Contains("microsoft"))
	assert.True(t, l.AllTickers.Contains("MSFT"))
}

func TestCompanyLookup_SkipsIncompleteRows(t *testing.T) {
	t.Parallel()
	l := resolution.NewCompanyLookup()
	l.Add("", "AAA", "Acme Corp")
	l.Add("123", "BBB", "  ")
	assert.Equal(t, 0, l.Size())
	assert.Equal(t, 0, l.AllTickers.Cardinality())
}

func TestCompanyLookup_FirstWriterWinsOnCollision(t *testing.T) {
	t.Parallel()
	l := resolution.NewCompanyLookup()
	l.Add("1", "AAA", "Acme Corp")
	l.Add("2", "AAA", "Acme Corporation")

	assert.Equal(t, "1", l.TickerToCompany["AAA"].CIK)
	// Both names normalize to "acme"; the first entry keeps the key.
	assert.Equal(t, "1", l.NameToCompany["acme"].CIK)
	assert.Equal(t, "2", l.NameToCompany["acme corporation"].CIK)
}

func TestExactTickerMatcher(t *testing.T) {
	t.Parallel()
	res := resolution.ExactTickerMatcher{}.Match(candidate("msft", ""), testLookup())

	require.True(t, res.Matched)
	assert.Equal(t, "0000789019", res.Company.CIK)
	assert.Equal(t, resolution.MatchExactTicker, res.Type)
	assert.Equal(t, 1.0, res.BaseConfidence)
	assert.Equal(t, "exact_ticker", res.MatcherName)
}

func TestExactNameMatcher(t *testing.T) {
	t.Parallel()
	res := resolution.ExactNameMatcher{}.Match(candidate("Apple Inc.", ""), testLookup())

	require.True(t, res.Matched)
	assert.Equal(t, "0000320193", res.Company.CIK)
	assert.Equal(t, resolution.MatchExactName, res.Type)
	assert.Equal(t, 1.0, res.BaseConfidence)
}

func TestNormalizedNameMatcher(t *testing.T) {
	t.Parallel()
	res := resolution.NormalizedNameMatcher{}.Match(candidate("NVIDIA Corp.", ""), testLookup())

	require.True(t, res.Matched)
	assert.Equal(t, "0001045810", res.Company.CIK)
	assert.Equal(t, resolution.MatchNormalized, res.Type)
	assert.Equal(t, 0.95, res.BaseConfidence)
}

func TestFuzzyNameMatcher_ThresholdGate(t *testing.T) {
	t.Parallel()
	lookup := testLookup()
	// {microsoft, company} vs {microsoft} → Jaccard 0.5.
	c := candidate("Microsoft Company", "")

	res := resolution.NewFuzzyNameMatcher(0.45).Match(c, lookup)
	require.True(t, res.Matched)
	assert.Equal(t, "0000789019", res.Company.CIK)
	assert.Equal(t, resolution.MatchFuzzy, res.Type)
	assert.InDelta(t, 0.45, res.BaseConfidence, 1e-9) // 0.5 × 0.9

	res = resolution.NewFuzzyNameMatcher(0.60).Match(c, lookup)
	assert.False(t, res.Matched)
}

func TestMatchCandidate_PriorityOrderFirstWins(t *testing.T) {
	t.Parallel()
	lookup := testLookup()
	matchers := resolution.StandardMatchersWithFuzzy(0.3)

	// "MSFT" resolves through the ticker index even though fuzzy would also
	// find something.
	res := resolution.MatchCandidate(candidate("MSFT", ""), lookup, matchers)
	require.True(t, res.Matched)
	assert.Equal(t, "exact_ticker", res.MatcherName)

	// Pass matchers out of order; priority sorting restores precedence.
	shuffled := []resolution.Matcher{
		resolution.NewFuzzyNameMatcher(0.3),
		resolution.NormalizedNameMatcher{},
		resolution.ExactNameMatcher{},
		resolution.ExactTickerMatcher{},
	}
	res = resolution.MatchCandidate(candidate("Apple Inc.", ""), lookup, shuffled)
	require.True(t, res.Matched)
	assert.Equal(t, "exact_name", res.MatcherName)
}

func TestMatchCandidate_NoMatch(t *testing.T) {
	t.Parallel()
	res := resolution.MatchCandidate(candidate("Zzzz Widgets", ""), testLookup(), resolution.StandardMatchers())

	assert.False(t, res.Matched)
	assert.Equal(t, resolution.MatchNone, res.Type)
	assert.Zero(t, res.BaseConfidence)
}

func TestMatchCandidatesWithStats_Histogram(t *testing.T) {
	t.Parallel()
	candidates := []resolution.Candidate{
		candidate("MSFT", ""),
		candidate("Apple Inc.", ""),
		candidate("Zzzz Widgets", ""),
	}

	results, stats := resolution.MatchCandidatesWithStats(candidates, testLookup(), resolution.StandardMatchers())

	require.Len(t, results, 3)
	assert.Equal(t, 1, stats["exact_ticker"])
	assert.Equal(t, 1, stats["exact_name"])
	assert.Equal(t, 1, stats["no_match"])
}

func TestMatchType_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "NO_MATCH", resolution.MatchNone.String())
	assert.Equal(t, "EXACT_TICKER", resolution.MatchExactTicker.String())
	assert.Equal(t, "NORMALIZED", resolution.MatchNormalized.String())
	assert.Equal(t, "FUZZY", resolution.MatchFuzzy.String())
}
