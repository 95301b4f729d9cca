// Package extraction runs the relationship-extraction pipeline over filing
// text: keyword-windowed sentence scan, entity resolution, tiered decision,
// and graph edge writes.
package extraction

import (
	"regexp"
	"sort"
	"strings"
)

// Graph relationship types produced by this pipeline.
const (
	RelCompetitor = "HAS_COMPETITOR"
	RelCustomer   = "HAS_CUSTOMER"
	RelSupplier   = "HAS_SUPPLIER"
	RelPartner    = "HAS_PARTNER"
)

// relationshipKeywords selects the sentences worth resolving for each
// relationship type.  Matching is lowercase substring containment, so
// multi-word phrases like "supply agreement" count too.
var relationshipKeywords = map[string][]string{
	RelCompetitor: {
		"competitor", "competitors", "compete", "competes", "competing",
		"competition", "competitive", "rival", "rivals",
	},
	RelCustomer: {
		"customer", "customers", "client", "clients",
		"significant customer", "major customer", "largest customer",
		"key customer", "principal customer",
		"revenue concentration", "customer concentration",
		"accounts for", "accounted for", "represents", "represented",
		"% of revenue", "percent of revenue", "% of sales", "percent of sales",
		"% of net revenue", "% of total revenue",
	},
	RelSupplier: {
		"supplier", "suppliers", "vendor", "vendors",
		"supply chain", "supply agreement", "purchase agreement",
		"source", "sources", "sourcing", "procure", "procurement",
		"key supplier", "principal supplier", "sole supplier",
		"single source", "sole source", "depend on", "reliance on",
		"raw material", "raw materials", "component", "components",
		"manufacturer", "manufacturers", "contract manufacturer",
	},
	RelPartner: {
		"partner", "partners", "partnership", "partnerships",
		"alliance", "alliances", "strategic alliance",
		"joint venture", "joint ventures",
		"collaboration", "collaborate", "collaborates", "collaborating",
		"agreement with", "arrangement with", "relationship with",
		"licensing agreement", "distribution agreement",
		"strategic relationship", "business relationship",
	},
}

// RelationshipTypes returns the supported types in stable order.
func RelationshipTypes() []string {
	types := make([]string, 0, len(relationshipKeywords))
	for t := range relationshipKeywords {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsRelationshipType reports whether relType has a keyword set.
func IsRelationshipType(relType string) bool {
	_, ok := relationshipKeywords[relType]
	return ok
}

var reSentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// Sentence is one keyword-bearing sentence with its offset in the source
// text.
type Sentence struct {
	Text   string
	Offset int
}

// RelationshipSentences returns the sentences of text that contain at least
// one keyword for relType, in document order.  Unknown types yield nothing.
func RelationshipSentences(text, relType string) []Sentence {
	keywords, ok := relationshipKeywords[relType]
	if !ok || text == "" {
		return nil
	}

	var out []Sentence
	start := 0
	boundaries := reSentenceBoundary.FindAllStringIndex(text, -1)
	for _, b := range boundaries {
		if s := keywordSentence(text[start:b[0]+1], start, keywords); s != nil {
			out = append(out, *s)
		}
		start = b[1]
	}
	if s := keywordSentence(text[start:], start, keywords); s != nil {
		out = append(out, *s)
	}
	return out
}

func keywordSentence(sentence string, offset int, keywords []string) *Sentence {
	trimmed := strings.TrimSpace(sentence)
	if trimmed == "" {
		return nil
	}
	offset += strings.Index(sentence, trimmed[:1])
	lower := strings.ToLower(trimmed)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return &Sentence{Text: trimmed, Offset: offset}
		}
	}
	return nil
}
