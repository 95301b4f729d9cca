package resolution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/resolution"
)

func candidate(text, sentence string) resolution.Candidate {
	return resolution.Candidate{Text: text, Sentence: sentence, SourcePattern: "capitalized"}
}

func TestTickerBlocklistFilter(t *testing.T) {
	t.Parallel()
	f := resolution.NewTickerBlocklistFilter([]string{"THE", "AND", "FOR"})

	res := f.Apply(candidate("THE", ""))
	assert.False(t, res.Passed)
	assert.Equal(t, resolution.ReasonTickerBlocklist, res.Reason)

	// Only all-caps spans are subject to the ticker blocklist.
	assert.True(t, f.Apply(candidate("The", "")).Passed)
	assert.True(t, f.Apply(candidate("MSFT", "")).Passed)
}

func TestNameBlocklistFilter(t *testing.T) {
	t.Parallel()
	f := resolution.NewNameBlocklistFilter([]string{"target", "solutions"})

	res := f.Apply(candidate("Target", ""))
	assert.False(t, res.Passed)
	assert.Equal(t, resolution.ReasonNameBlocklist, res.Reason)

	assert.True(t, f.Apply(candidate("Target Corporation", "")).Passed)
}

func TestLengthFilter(t *testing.T) {
	t.Parallel()
	f := resolution.NewLengthFilter(3)

	res := f.Apply(candidate("HP", ""))
	assert.False(t, res.Passed)
	assert.Equal(t, resolution.ReasonTooShort, res.Reason)

	assert.True(t, f.Apply(candidate("IBM", "")).Passed)
}

func TestBiographicalContextFilter(t *testing.T) {
	t.Parallel()
	f := resolution.BiographicalContextFilter{}

	cases := []struct {
		name     string
		sentence string
		rejected bool
	}{
		{"served as director", "Mr. Smith has served as a director of Oracle Corporation since 2015.", true},
		{"officer of", "She was an officer of Intel Corporation before joining us.", true},
		{"joined the board", "Dr. Lee joined the board of Cisco Systems in 2020.", true},
		{"business relationship", "We purchase components from Intel Corporation under a supply agreement.", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := f.Apply(candidate("Intel Corporation", tc.sentence))
			if tc.rejected {
				assert.False(t, res.Passed)
				assert.Equal(t, resolution.ReasonBiographicalContext, res.Reason)
			} else {
				assert.True(t, res.Passed)
			}
		})
	}
}

func TestExchangeReferenceFilter(t *testing.T) {
	t.Parallel()
	f := resolution.ExchangeReferenceFilter{}

	res := f.Apply(candidate("NYSE", "Our common stock is listed on the New York Stock Exchange under the symbol XYZ."))
	assert.False(t, res.Passed)
	assert.Equal(t, resolution.ReasonExchangeReference, res.Reason)

	assert.True(t, f.Apply(candidate("Apple Inc", "Apple Inc is one of our largest customers.")).Passed)
}

func TestCorporateStructureFilter(t *testing.T) {
	t.Parallel()
	f := resolution.CorporateStructureFilter{}

	res := f.Apply(candidate("Acme Holdings", "Acme Holdings is a wholly-owned subsidiary of the registrant."))
	assert.False(t, res.Passed)
	assert.Equal(t, resolution.ReasonCorporateStructure, res.Reason)

	assert.True(t, f.Apply(candidate("Acme Holdings", "Acme Holdings supplies raw materials to us.")).Passed)
}

func TestFilterCandidate_FirstFailureShortCircuits(t *testing.T) {
	t.Parallel()
	filters := resolution.StandardFilters([]string{"THE"}, []string{"the"}, 5)

	// "THE" trips both blocklists and the length rule; the first filter in
	// chain order reports the reason.
	res := resolution.FilterCandidate(candidate("THE", ""), filters)
	assert.False(t, res.Passed)
	assert.Equal(t, resolution.ReasonTickerBlocklist, res.Reason)
}

func TestFilterCandidate_EmptyChainPasses(t *testing.T) {
	t.Parallel()
	res := resolution.FilterCandidate(candidate("Anything", ""), nil)
	assert.True(t, res.Passed)
	assert.Equal(t, resolution.ReasonPassed, res.Reason)
}

func TestFilterReason_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "passed", resolution.ReasonPassed.String())
	assert.Equal(t, "ticker_blocklist", resolution.ReasonTickerBlocklist.String())
	assert.Equal(t, "biographical_context", resolution.ReasonBiographicalContext.String())
}
