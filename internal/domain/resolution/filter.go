package resolution

import (
	"fmt"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// FilterReason classifies why a candidate was rejected (or that it passed).
type FilterReason int

const (
	ReasonPassed FilterReason = iota
	ReasonTickerBlocklist
	ReasonNameBlocklist
	ReasonTooShort
	ReasonBiographicalContext
	ReasonExchangeReference
	ReasonCorporateStructure
)

func (r FilterReason) String() string {
	switch r {
	case ReasonPassed:
		return "passed"
	case ReasonTickerBlocklist:
		return "ticker_blocklist"
	case ReasonNameBlocklist:
		return "name_blocklist"
	case ReasonTooShort:
		return "too_short"
	case ReasonBiographicalContext:
		return "biographical_context"
	case ReasonExchangeReference:
		return "exchange_reference"
	case ReasonCorporateStructure:
		return "corporate_structure"
	default:
		return fmt.Sprintf("FilterReason(%d)", int(r))
	}
}

// FilterResult reports a single filter's verdict on a candidate.
type FilterResult struct {
	Passed bool
	Reason FilterReason
}

func pass() FilterResult               { return FilterResult{Passed: true, Reason: ReasonPassed} }
func fail(r FilterReason) FilterResult { return FilterResult{Passed: false, Reason: r} }

// Filter is a candidate rejection rule.  Filters are pure: they read the
// candidate (text plus sentence context) and decide.
type Filter interface {
	Apply(c Candidate) FilterResult
	Name() string
}

// ─────────────────────────────────────────────────────────────────────────────
// Blocklist and length filters
// ─────────────────────────────────────────────────────────────────────────────

// TickerBlocklistFilter rejects all-caps spans that are on the configured
// ticker blocklist (common words, acronyms, single letters).
type TickerBlocklistFilter struct {
	blocked mapset.Set[string]
}

func NewTickerBlocklistFilter(blocklist []string) *TickerBlocklistFilter {
	s := mapset.NewSet[string]()
	for _, t := range blocklist {
		s.Add(strings.ToUpper(strings.TrimSpace(t)))
	}
	return &TickerBlocklistFilter{blocked: s}
}

func (f *TickerBlocklistFilter) Name() string { return "ticker_blocklist" }

func (f *TickerBlocklistFilter) Apply(c Candidate) FilterResult {
	text := strings.TrimSpace(c.Text)
	if text != "" && text == strings.ToUpper(text) && f.blocked.Contains(text) {
		return fail(ReasonTickerBlocklist)
	}
	return pass()
}

// NameBlocklistFilter rejects spans whose lowercased text is generic business
// vocabulary rather than a company name.
type NameBlocklistFilter struct {
	blocked mapset.Set[string]
}

func NewNameBlocklistFilter(blocklist []string) *NameBlocklistFilter {
	s := mapset.NewSet[string]()
	for _, n := range blocklist {
		s.Add(strings.ToLower(strings.TrimSpace(n)))
	}
	return &NameBlocklistFilter{blocked: s}
}

func (f *NameBlocklistFilter) Name() string { return "name_blocklist" }

func (f *NameBlocklistFilter) Apply(c Candidate) FilterResult {
	if f.blocked.Contains(strings.ToLower(strings.TrimSpace(c.Text))) {
		return fail(ReasonNameBlocklist)
	}
	return pass()
}

// LengthFilter rejects spans shorter than the configured minimum.
type LengthFilter struct {
	minLength int
}

func NewLengthFilter(minLength int) *LengthFilter {
	return &LengthFilter{minLength: minLength}
}

func (f *LengthFilter) Name() string { return "length" }

func (f *LengthFilter) Apply(c Candidate) FilterResult {
	if len(strings.TrimSpace(c.Text)) < f.minLength {
		return fail(ReasonTooShort)
	}
	return pass()
}

// ─────────────────────────────────────────────────────────────────────────────
// Sentence-context filters
// ─────────────────────────────────────────────────────────────────────────────

var (
	// A person "serving as director/officer of X" — the X is an employer
	// reference inside a biography, not a business relationship.
	reBiographical = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:served|serves|serving|service)\s+as\s+(?:a\s+|an\s+|the\s+)?(?:director|officer|chairman|chairwoman|president|chief\s+\w+\s+officer|executive|trustee|member\s+of\s+the\s+board)\b`),
		regexp.MustCompile(`(?i)\b(?:is|was|as)\s+(?:a\s+|an\s+|the\s+)?(?:director|officer|chairman|chairwoman|president|chief\s+\w+\s+officer)\s+of\b`),
		regexp.MustCompile(`(?i)\b(?:joined|retired\s+from)\s+the\s+board\s+of\b`),
		regexp.MustCompile(`(?i)\bprior\s+to\s+joining\b`),
	}

	// The sentence talks about a stock listing, not a counterparty.
	reExchange = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:listed|trades?|traded|trading)\s+on\s+the\b`),
		regexp.MustCompile(`(?i)\b(?:new\s+york\s+stock\s+exchange|nasdaq(?:\s+(?:global|stock))?\s*(?:select\s+)?(?:market|exchange)?|nyse)\b`),
		regexp.MustCompile(`(?i)\bunder\s+the\s+(?:ticker\s+)?symbol\b`),
		regexp.MustCompile(`(?i)\bcommon\s+stock\s+is\s+(?:listed|traded)\b`),
	}

	// The sentence describes the filer's own corporate structure.
	reCorporateStructure = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bwholly[\s-]owned\s+subsidiar(?:y|ies)\b`),
		regexp.MustCompile(`(?i)\b(?:direct|indirect)\s+subsidiar(?:y|ies)\b`),
		regexp.MustCompile(`(?i)\bsubsidiar(?:y|ies)\s+of\b`),
		regexp.MustCompile(`(?i)\b(?:our|its)\s+subsidiar(?:y|ies)\b`),
		regexp.MustCompile(`(?i)\bparent\s+(?:company|corporation|holding)\b`),
		regexp.MustCompile(`(?i)\b(?:merged\s+(?:with|into)|was\s+incorporated\s+in|reincorporated)\b`),
	}
)

// BiographicalContextFilter rejects mentions inside director/officer
// biography sentences.
type BiographicalContextFilter struct{}

func (BiographicalContextFilter) Name() string { return "biographical_context" }

func (BiographicalContextFilter) Apply(c Candidate) FilterResult {
	for _, re := range reBiographical {
		if re.MatchString(c.Sentence) {
			return fail(ReasonBiographicalContext)
		}
	}
	return pass()
}

// ExchangeReferenceFilter rejects mentions inside stock-exchange listing
// boilerplate.
type ExchangeReferenceFilter struct{}

func (ExchangeReferenceFilter) Name() string { return "exchange_reference" }

func (ExchangeReferenceFilter) Apply(c Candidate) FilterResult {
	for _, re := range reExchange {
		if re.MatchString(c.Sentence) {
			return fail(ReasonExchangeReference)
		}
	}
	return pass()
}

// CorporateStructureFilter rejects mentions inside sentences about the
// filer's own subsidiaries, parents, and reorganizations.
type CorporateStructureFilter struct{}

func (CorporateStructureFilter) Name() string { return "corporate_structure" }

func (CorporateStructureFilter) Apply(c Candidate) FilterResult {
	for _, re := range reCorporateStructure {
		if re.MatchString(c.Sentence) {
			return fail(ReasonCorporateStructure)
		}
	}
	return pass()
}

// ─────────────────────────────────────────────────────────────────────────────
// Filter orchestration
// ─────────────────────────────────────────────────────────────────────────────

// StandardFilters returns the default filter chain in evaluation order.
func StandardFilters(tickerBlocklist, nameBlocklist []string, minLength int) []Filter {
	return []Filter{
		NewTickerBlocklistFilter(tickerBlocklist),
		NewNameBlocklistFilter(nameBlocklist),
		NewLengthFilter(minLength),
		BiographicalContextFilter{},
		ExchangeReferenceFilter{},
		CorporateStructureFilter{},
	}
}

// FilterCandidate runs filters in list order and short-circuits on the first
// rejection.
func FilterCandidate(c Candidate, filters []Filter) FilterResult {
	for _, f := range filters {
		if res := f.Apply(c); !res.Passed {
			return res
		}
	}
	return pass()
}
