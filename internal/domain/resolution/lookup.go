package resolution

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Company is the registry tuple a candidate can resolve to.
type Company struct {
	CIK    string
	Ticker string
	Name   string
}

// CompanyLookup is the in-memory registry index used by the matchers.  Keys
// are pre-normalized at build time: names lowercased (plus a suffix-stripped
// variant), tickers uppercased.  The mapset views exist for fast membership
// probes and set algebra in callers; they mirror the map keys exactly.
type CompanyLookup struct {
	NameToCompany   map[string]Company
	TickerToCompany map[string]Company
	AllNames        mapset.Set[string]
	AllTickers      mapset.Set[string]
}

// NewCompanyLookup returns an empty lookup ready for Add calls.
func NewCompanyLookup() *CompanyLookup {
	return &CompanyLookup{
		NameToCompany:   make(map[string]Company),
		TickerToCompany: make(map[string]Company),
		AllNames:        mapset.NewSet[string](),
		AllTickers:      mapset.NewSet[string](),
	}
}

// Add indexes one registry company.  Rows without a CIK or name are skipped.
// For each company three keys are written: the lowercased name, the
// normalized (suffix-stripped) name when it differs, and the uppercased
// ticker.  On key collision the first writer wins, matching first-wins
// semantics elsewhere in the pipeline.
func (l *CompanyLookup) Add(cik, ticker, name string) {
	cik = strings.TrimSpace(cik)
	name = strings.TrimSpace(name)
	if cik == "" || name == "" {
		return
	}

	c := Company{CIK: cik, Ticker: strings.ToUpper(strings.TrimSpace(ticker)), Name: name}

	lower := strings.ToLower(name)
	l.addName(lower, c)
	if norm := NormalizeCompanyName(name); norm != "" && norm != lower {
		l.addName(norm, c)
	}
	if c.Ticker != "" {
		if _, exists := l.TickerToCompany[c.Ticker]; !exists {
			l.TickerToCompany[c.Ticker] = c
			l.AllTickers.Add(c.Ticker)
		}
	}
}

func (l *CompanyLookup) addName(key string, c Company) {
	if _, exists := l.NameToCompany[key]; exists {
		return
	}
	l.NameToCompany[key] = c
	l.AllNames.Add(key)
}

// Size returns the number of distinct name keys in the lookup.
func (l *CompanyLookup) Size() int {
	return len(l.NameToCompany)
}

// companySuffixes is checked in order against the lowercased name; the list
// runs longest-form-first so "holdings ltd" strips before "holdings".  Each
// suffix is removed at most once per pass over the list.
var companySuffixes = []string{
	" corporation", " incorporated",
	" holdings ltd", " holding ltd",
	" holdings", " holding",
	" technologies", " technology",
	" solutions", " platforms", " services", " systems",
	" group",
	" corp.", " corp", " inc.", " inc", " ltd.", " ltd",
	" llc", " plc", " co.", " co",
	"/de/", "/md/", "/nv/",
}

// NormalizeCompanyName lowercases name and strips well-known corporate
// suffixes and state-of-incorporation markers, then trims residual
// punctuation.  Used both when building the lookup and when matching.
func NormalizeCompanyName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range companySuffixes {
		if strings.HasSuffix(n, suffix) {
			n = n[:len(n)-len(suffix)]
		}
	}
	return strings.Trim(n, " \t\n,.-")
}
