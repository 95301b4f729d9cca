package decision

import (
	"context"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/resolution"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// Outcome is the verdict on one relationship mention.
type Outcome int

const (
	Reject Outcome = iota
	Accept
	// Hold parks the mention as a candidate edge for later review.
	Hold
)

func (o Outcome) String() string {
	switch o {
	case Accept:
		return "ACCEPT"
	case Hold:
		return "CANDIDATE"
	case Reject:
		return "REJECT"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// DecisionTier identifies which tier produced a decision.
type DecisionTier int

const (
	Tier1Rules DecisionTier = iota + 1
	Tier2Patterns
	Tier3Embeddings
	Tier4LLM
)

func (t DecisionTier) String() string {
	switch t {
	case Tier1Rules:
		return "tier1_rules"
	case Tier2Patterns:
		return "tier2_patterns"
	case Tier3Embeddings:
		return "tier3_embeddings"
	case Tier4LLM:
		return "tier4_llm"
	default:
		return fmt.Sprintf("DecisionTier(%d)", int(t))
	}
}

// Request carries one mention through the tiers.
type Request struct {
	// Mention is the raw extracted span.
	Mention string
	// Sentence is the mention's sentence context.
	Sentence string
	// RelationshipType selects the policy, e.g. "HAS_SUPPLIER".
	RelationshipType string
	// CompanyName is the resolved canonical name, empty when unresolved.
	CompanyName string
	// Similarity is the embedding similarity between mention context and
	// company description; nil when no embedding is available.
	Similarity *float64
}

// Decision is the verdict plus its provenance and spend.
type Decision struct {
	Outcome    Outcome      `json:"outcome"`
	Tier       DecisionTier `json:"tier"`
	Confidence float64      `json:"confidence"`
	Reason     string       `json:"reason"`
	Cost       float64      `json:"cost"`
	// Default marks the conservative fallback produced when no tier could
	// decide; Tier is then nominal and must not be attributed tier spend.
	Default bool `json:"default,omitempty"`
}

// VerificationRequest is what a tier-4 verifier sees.
type VerificationRequest struct {
	Mention          string
	Sentence         string
	RelationshipType string
	CompanyName      string
}

// VerificationResult is a verifier's judgment.
type VerificationResult struct {
	Verified   bool
	Confidence float64
	Reasoning  string
}

// Verifier is the LLM-backed tier-4 collaborator.
type Verifier interface {
	Verify(ctx context.Context, req VerificationRequest) (VerificationResult, error)
}

// Options toggle the tiers and set their per-call spend.
type Options struct {
	UseTier1 bool
	UseTier2 bool
	UseTier3 bool
	UseTier4 bool

	// Tier3Cost and Tier4Cost are the accounted dollar cost of one
	// embedding comparison and one LLM verification.
	Tier3Cost float64
	Tier4Cost float64

	// GenericWords are mentions that are usually common nouns; they are
	// rejected at tier 1 unless context proves a company is meant.
	GenericWords []string
	// ShortAllowlist lists ≤2-character mentions exempt from the tier-1
	// length rule.
	ShortAllowlist []string
}

const (
	genericRejectConfidence = 0.95
	shortRejectConfidence   = 0.90

	bioRejectConfidence       = 0.90
	exchangeRejectConfidence  = 0.90
	corporateRejectConfidence = 0.85

	maxReasonRunes = 50
)

// TieredDecisionSystem walks a mention through up to four tiers, cheapest
// first, and returns the first tier's verdict.  Safe for concurrent use.
type TieredDecisionSystem struct {
	policies *PolicyTable
	opts     Options

	genericWords   mapset.Set[string]
	shortAllowlist mapset.Set[string]

	verifier Verifier
	metrics  *Metrics
	logger   logging.Logger
}

// NewTieredDecisionSystem wires the system.  verifier may be nil, which
// disables tier 4; metrics may be nil to skip recording.
func NewTieredDecisionSystem(policies *PolicyTable, opts Options, verifier Verifier, metrics *Metrics, logger logging.Logger) (*TieredDecisionSystem, error) {
	if policies == nil {
		return nil, errors.New(errors.ErrCodePolicyInvalid, "policy table is required")
	}
	if opts.Tier3Cost < 0 || opts.Tier4Cost < 0 {
		return nil, errors.New(errors.ErrCodePolicyInvalid, "tier costs must be non-negative")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	s := &TieredDecisionSystem{
		policies:       policies,
		opts:           opts,
		genericWords:   mapset.NewSet[string](),
		shortAllowlist: mapset.NewSet[string](),
		verifier:       verifier,
		metrics:        metrics,
		logger:         logger,
	}
	for _, w := range opts.GenericWords {
		s.genericWords.Add(strings.ToLower(strings.TrimSpace(w)))
	}
	for _, w := range opts.ShortAllowlist {
		s.shortAllowlist.Add(strings.ToLower(strings.TrimSpace(w)))
	}
	return s, nil
}

// Metrics exposes the system's counters.
func (s *TieredDecisionSystem) Metrics() *Metrics { return s.metrics }

// Decide walks req through the enabled tiers and returns the first verdict.
// When no tier can decide, the mention is rejected conservatively.  The only
// error condition is an unknown relationship type.
func (s *TieredDecisionSystem) Decide(ctx context.Context, req Request) (Decision, error) {
	if s.opts.UseTier1 {
		if d, decided := s.decideTier1(req); decided {
			return s.record(d), nil
		}
	}

	if s.opts.UseTier2 {
		if d, decided := s.decideTier2(req); decided {
			return s.record(d), nil
		}
	}

	if s.opts.UseTier3 && req.Similarity != nil {
		policy, err := s.policies.Get(req.RelationshipType)
		if err != nil {
			return Decision{}, err
		}
		if policy.Enabled {
			return s.record(s.decideTier3(policy, *req.Similarity)), nil
		}
	}

	if s.opts.UseTier4 && s.verifier != nil {
		policy, err := s.policies.Get(req.RelationshipType)
		if err != nil {
			return Decision{}, err
		}
		if policy.Enabled && policy.LLMEligible {
			d, err := s.decideTier4(ctx, req)
			if err == nil {
				return s.record(d), nil
			}
			// A failed verification declines to decide rather than deciding
			// wrongly; the mention falls through to the conservative default.
			s.logger.Warn("llm verification failed, declining tier4 decision",
				logging.String("mention", req.Mention),
				logging.String("relationship_type", req.RelationshipType),
				logging.Err(err))
		}
	}

	return s.record(Decision{
		Outcome:    Reject,
		Tier:       Tier3Embeddings,
		Confidence: 0,
		Reason:     "no tier decided",
		Cost:       0,
		Default:    true,
	}), nil
}

func (s *TieredDecisionSystem) record(d Decision) Decision {
	s.metrics.Record(d)
	return d
}

// ─────────────────────────────────────────────────────────────────────────────
// Tier 1: free rules
// ─────────────────────────────────────────────────────────────────────────────

func (s *TieredDecisionSystem) decideTier1(req Request) (Decision, bool) {
	mention := strings.ToLower(strings.TrimSpace(req.Mention))

	if s.genericWords.Contains(mention) {
		// A resolved canonical name or a company-list context rescues a
		// generic word; otherwise it is almost certainly a common noun.
		if req.CompanyName == "" && !hasListContext(req.Sentence, mention) {
			return Decision{
				Outcome:    Reject,
				Tier:       Tier1Rules,
				Confidence: genericRejectConfidence,
				Reason:     "generic word without company context",
			}, true
		}
	}

	if len(mention) <= 2 {
		if !s.shortAllowlist.Contains(mention) && !hasListContext(req.Sentence, mention) {
			return Decision{
				Outcome:    Reject,
				Tier:       Tier1Rules,
				Confidence: shortRejectConfidence,
				Reason:     "mention too short",
			}, true
		}
	}

	return Decision{}, false
}

// hasListContext matches enumerations like "..., Apple, and other vendors"
// or "such as Apple" where a generic word really is a company.  Matching is
// case-insensitive over whitespace-collapsed text, so line breaks inside a
// sentence do not hide a list.
func hasListContext(sentence, mention string) bool {
	if sentence == "" || mention == "" {
		return false
	}
	s := strings.Join(strings.Fields(strings.ToLower(sentence)), " ")
	m := strings.ToLower(mention)

	// "m and other" is subsumed by "m and".
	return strings.Contains(s, m+",") ||
		strings.Contains(s, m+" and") ||
		strings.Contains(s, "such as "+m) ||
		strings.Contains(s, "including "+m)
}

// ─────────────────────────────────────────────────────────────────────────────
// Tier 2: cheap sentence-pattern checks
// ─────────────────────────────────────────────────────────────────────────────

// tier2Checks reuses the resolution package's context filters: the same
// boilerplate that disqualifies a candidate disqualifies a relationship
// mention.
var tier2Checks = []struct {
	filter     resolution.Filter
	confidence float64
	reason     string
}{
	{resolution.BiographicalContextFilter{}, bioRejectConfidence, "biographical context"},
	{resolution.ExchangeReferenceFilter{}, exchangeRejectConfidence, "exchange listing reference"},
	{resolution.CorporateStructureFilter{}, corporateRejectConfidence, "corporate structure boilerplate"},
}

func (s *TieredDecisionSystem) decideTier2(req Request) (Decision, bool) {
	c := resolution.Candidate{Text: req.Mention, Sentence: req.Sentence}
	for _, check := range tier2Checks {
		if res := check.filter.Apply(c); !res.Passed {
			return Decision{
				Outcome:    Reject,
				Tier:       Tier2Patterns,
				Confidence: check.confidence,
				Reason:     check.reason,
			}, true
		}
	}
	return Decision{}, false
}

// ─────────────────────────────────────────────────────────────────────────────
// Tier 3: embedding similarity against policy thresholds
// ─────────────────────────────────────────────────────────────────────────────

func (s *TieredDecisionSystem) decideTier3(policy RelationshipPolicy, similarity float64) Decision {
	d := Decision{
		Tier:       Tier3Embeddings,
		Confidence: similarity,
		Cost:       s.opts.Tier3Cost,
	}
	switch {
	case similarity >= policy.HighThreshold:
		d.Outcome = Accept
		d.Reason = fmt.Sprintf("embedding similarity %.3f above high threshold %.2f", similarity, policy.HighThreshold)
	case similarity >= policy.MediumThreshold:
		d.Outcome = Hold
		d.Reason = fmt.Sprintf("embedding similarity %.3f in candidate band [%.2f, %.2f)", similarity, policy.MediumThreshold, policy.HighThreshold)
	default:
		d.Outcome = Reject
		d.Reason = fmt.Sprintf("embedding similarity %.3f below medium threshold %.2f", similarity, policy.MediumThreshold)
	}
	return d
}

// ─────────────────────────────────────────────────────────────────────────────
// Tier 4: LLM verification
// ─────────────────────────────────────────────────────────────────────────────

func (s *TieredDecisionSystem) decideTier4(ctx context.Context, req Request) (Decision, error) {
	result, err := s.verifier.Verify(ctx, VerificationRequest{
		Mention:          req.Mention,
		Sentence:         req.Sentence,
		RelationshipType: req.RelationshipType,
		CompanyName:      req.CompanyName,
	})
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Tier:       Tier4LLM,
		Confidence: result.Confidence,
		Reason:     truncateReason(result.Reasoning),
		Cost:       s.opts.Tier4Cost,
	}
	if result.Verified {
		d.Outcome = Accept
	} else {
		d.Outcome = Reject
	}
	return d, nil
}

func truncateReason(reason string) string {
	runes := []rune(reason)
	if len(runes) <= maxReasonRunes {
		return reason
	}
	return string(runes[:maxReasonRunes])
}
