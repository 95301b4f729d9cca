package resolution

import (
	"math"
	"strings"

	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// ScorerWeights are the factor weights of the rule-based scorer.  They must
// sum to 1.0.
type ScorerWeights struct {
	MatchQuality       float64
	LengthPenalty      float64
	ContextQuality     float64
	HighValueBonus     float64
	SemanticSimilarity float64
}

// Sum returns the total of all five weights.
func (w ScorerWeights) Sum() float64 {
	return w.MatchQuality + w.LengthPenalty + w.ContextQuality + w.HighValueBonus + w.SemanticSimilarity
}

const weightSumTolerance = 1e-6

// ScoringFactors are the individual factor values behind a confidence score,
// each in [0,1].  Exposed so callers can explain why a mention scored the way
// it did.
type ScoringFactors struct {
	MatchQuality       float64 `json:"match_quality"`
	LengthPenalty      float64 `json:"length_penalty"`
	ContextQuality     float64 `json:"context_quality"`
	HighValueBonus     float64 `json:"high_value_bonus"`
	SemanticSimilarity float64 `json:"semantic_similarity"`
}

// ConfidenceResult is a final confidence with its factor breakdown.
type ConfidenceResult struct {
	Confidence float64        `json:"confidence"`
	Factors    ScoringFactors `json:"factors"`
}

// Scorer computes the confidence of a matched candidate.
type Scorer interface {
	Score(c Candidate, m MatchResult) ConfidenceResult
}

// ScorerOptions configure a RuleBasedScorer.
type ScorerOptions struct {
	Weights ScorerWeights
	// HighValueNames are canonical-name fragments that earn the full
	// high-value bonus (compared lowercased, substring containment).
	HighValueNames []string
	// RelationshipKeywords are the context-quality indicators counted in the
	// candidate's sentence.
	RelationshipKeywords []string
}

// RuleBasedScorer blends five deterministic factors into one confidence value
// with fixed weights.  It performs no I/O.
type RuleBasedScorer struct {
	weights        ScorerWeights
	highValueNames []string
	keywords       []string
}

// NewRuleBasedScorer validates opts eagerly: weights not summing to 1.0 are a
// configuration error, reported at construction rather than discovered per
// score.
func NewRuleBasedScorer(opts ScorerOptions) (*RuleBasedScorer, error) {
	if math.Abs(opts.Weights.Sum()-1.0) > weightSumTolerance {
		return nil, errors.Newf(errors.ErrCodeResolutionConfig,
			"scorer weights must sum to 1.0, got %.6f", opts.Weights.Sum())
	}

	s := &RuleBasedScorer{weights: opts.Weights}
	for _, n := range opts.HighValueNames {
		s.highValueNames = append(s.highValueNames, strings.ToLower(strings.TrimSpace(n)))
	}
	for _, k := range opts.RelationshipKeywords {
		s.keywords = append(s.keywords, strings.ToLower(strings.TrimSpace(k)))
	}
	return s, nil
}

// Score computes the weighted confidence of a matched candidate.  Unmatched
// candidates score zero with all factors zero.
func (s *RuleBasedScorer) Score(c Candidate, m MatchResult) ConfidenceResult {
	if !m.Matched {
		return ConfidenceResult{}
	}

	f := ScoringFactors{
		MatchQuality:       matchQuality(m.Type),
		LengthPenalty:      lengthPenalty(c.Text),
		ContextQuality:     s.contextQuality(c.Sentence),
		HighValueBonus:     s.highValueBonus(m.Company.Name),
		SemanticSimilarity: semanticSimilarity(c.Text, m.Company.Name),
	}

	conf := f.MatchQuality*s.weights.MatchQuality +
		f.LengthPenalty*s.weights.LengthPenalty +
		f.ContextQuality*s.weights.ContextQuality +
		f.HighValueBonus*s.weights.HighValueBonus +
		f.SemanticSimilarity*s.weights.SemanticSimilarity

	return ConfidenceResult{Confidence: clamp01(conf), Factors: f}
}

// matchQuality maps the match type to its quality factor.
func matchQuality(t MatchType) float64 {
	switch t {
	case MatchExactTicker, MatchExactName:
		return 1.0
	case MatchNormalized:
		return 0.95
	case MatchAlias:
		return 0.85
	case MatchFuzzy:
		return 0.80
	default:
		return 0.0
	}
}

// lengthPenalty discounts short spans, which are far more likely to be false
// positives.
func lengthPenalty(text string) float64 {
	switch n := len(strings.TrimSpace(text)); {
	case n <= 2:
		return 0.3
	case n <= 4:
		return 0.6
	case n <= 6:
		return 0.8
	default:
		return 1.0
	}
}

// contextQuality counts relationship keywords present in the sentence.
func (s *RuleBasedScorer) contextQuality(sentence string) float64 {
	lower := strings.ToLower(sentence)
	count := 0
	for _, kw := range s.keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	switch {
	case count >= 3:
		return 1.0
	case count >= 2:
		return 0.9
	case count >= 1:
		return 0.8
	default:
		return 0.6
	}
}

// highValueBonus grants the full bonus when the matched canonical name
// contains a high-value fragment.
func (s *RuleBasedScorer) highValueBonus(companyName string) float64 {
	lower := strings.ToLower(companyName)
	for _, hv := range s.highValueNames {
		if hv != "" && strings.Contains(lower, hv) {
			return 1.0
		}
	}
	return 0.5
}

// semanticSimilarity is a cheap lexical proxy: exact (case-insensitive) match
// scores 1.0, substring containment either way 0.9, otherwise the token
// Jaccard overlap rescaled into [0.5, 1.0].  A missing canonical name scores
// the neutral 0.5.
func semanticSimilarity(candidateText, companyName string) float64 {
	cand := strings.ToLower(strings.TrimSpace(candidateText))
	name := strings.ToLower(strings.TrimSpace(companyName))
	if name == "" {
		return 0.5
	}
	if cand == name {
		return 1.0
	}
	if strings.Contains(name, cand) || strings.Contains(cand, name) {
		return 0.9
	}
	return 0.5 + 0.5*jaccard(tokenSet(cand), tokenSet(name))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
