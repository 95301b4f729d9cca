package resolution

import (
	"strings"

	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// ResolvedEntity is one company mention that survived the full pipeline.
type ResolvedEntity struct {
	Candidate  Candidate      `json:"candidate"`
	Company    Company        `json:"company"`
	MatchType  MatchType      `json:"match_type"`
	Matcher    string         `json:"matcher"`
	Confidence float64        `json:"confidence"`
	Factors    ScoringFactors `json:"factors"`
}

// ResolutionStats summarizes one Resolve run stage by stage.
type ResolutionStats struct {
	CandidatesExtracted int            `json:"candidates_extracted"`
	CandidatesFiltered  int            `json:"candidates_filtered"`
	CandidatesMatched   int            `json:"candidates_matched"`
	BelowConfidence     int            `json:"below_confidence"`
	FinalResults        int            `json:"final_results"`
	FilterReasons       map[string]int `json:"filter_reasons"`
	MatchTypes          map[string]int `json:"match_types"`
}

// ResolverConfig assembles an EntityResolver.  Nil component slices fall back
// to the standard chains; Scorer is required.
type ResolverConfig struct {
	Extractors    []Extractor
	Filters       []Filter
	Matchers      []Matcher
	Scorer        Scorer
	MinConfidence float64
}

// EntityResolver runs the extract → filter → match → score pipeline over raw
// text.  It holds no mutable state and is safe for concurrent use.
type EntityResolver struct {
	extractors    []Extractor
	filters       []Filter
	matchers      []Matcher
	scorer        Scorer
	minConfidence float64
}

// NewEntityResolver validates cfg and returns a ready resolver.
func NewEntityResolver(cfg ResolverConfig) (*EntityResolver, error) {
	if cfg.Scorer == nil {
		return nil, errors.New(errors.ErrCodeResolutionConfig, "resolver requires a scorer")
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return nil, errors.Newf(errors.ErrCodeResolutionConfig,
			"min confidence must be in [0,1], got %v", cfg.MinConfidence)
	}

	r := &EntityResolver{
		extractors:    cfg.Extractors,
		filters:       cfg.Filters,
		matchers:      cfg.Matchers,
		scorer:        cfg.Scorer,
		minConfidence: cfg.MinConfidence,
	}
	if len(r.extractors) == 0 {
		r.extractors = StandardExtractors()
	}
	if len(r.matchers) == 0 {
		r.matchers = StandardMatchers()
	}
	return r, nil
}

// Resolve extracts, filters, matches, and scores every candidate in text.
// selfCIK, when non-empty, drops mentions of the filing company itself.
// Each company appears at most once in the output: the first mention that
// clears the confidence floor wins.
func (r *EntityResolver) Resolve(text string, lookup *CompanyLookup, selfCIK string) ([]ResolvedEntity, error) {
	out, _, err := r.resolve(text, lookup, selfCIK, nil)
	return out, err
}

// ResolveWithStats is Resolve plus stage-by-stage counters for pipeline
// observability.
func (r *EntityResolver) ResolveWithStats(text string, lookup *CompanyLookup, selfCIK string) ([]ResolvedEntity, *ResolutionStats, error) {
	stats := &ResolutionStats{
		FilterReasons: make(map[string]int),
		MatchTypes:    make(map[string]int),
	}
	out, stats, err := r.resolve(text, lookup, selfCIK, stats)
	return out, stats, err
}

func (r *EntityResolver) resolve(text string, lookup *CompanyLookup, selfCIK string, stats *ResolutionStats) ([]ResolvedEntity, *ResolutionStats, error) {
	if lookup == nil {
		return nil, stats, errors.New(errors.ErrCodeLookupUnavailable, "company lookup is nil")
	}

	selfCIK = strings.TrimSpace(selfCIK)
	candidates := ExtractCandidates(text, r.extractors)
	if stats != nil {
		stats.CandidatesExtracted = len(candidates)
	}

	seenCIKs := make(map[string]struct{})
	var results []ResolvedEntity
	for _, c := range candidates {
		if fr := FilterCandidate(c, r.filters); !fr.Passed {
			if stats != nil {
				stats.CandidatesFiltered++
				stats.FilterReasons[fr.Reason.String()]++
			}
			continue
		}

		m := MatchCandidate(c, lookup, r.matchers)
		if !m.Matched {
			continue
		}
		if stats != nil {
			stats.CandidatesMatched++
			stats.MatchTypes[m.Type.String()]++
		}

		if selfCIK != "" && m.Company.CIK == selfCIK {
			continue
		}
		if _, seen := seenCIKs[m.Company.CIK]; seen {
			continue
		}

		scored := r.scorer.Score(c, m)
		if scored.Confidence < r.minConfidence {
			if stats != nil {
				stats.BelowConfidence++
			}
			continue
		}

		// A company claims its CIK only once it clears the floor, so a weak
		// early mention cannot shadow a strong later one.
		seenCIKs[m.Company.CIK] = struct{}{}
		results = append(results, ResolvedEntity{
			Candidate:  c,
			Company:    m.Company,
			MatchType:  m.Type,
			Matcher:    m.MatcherName,
			Confidence: scored.Confidence,
			Factors:    scored.Factors,
		})
	}

	if stats != nil {
		stats.FinalResults = len(results)
	}
	return results, stats, nil
}
