// Package decision implements the tiered decision system that accepts,
// rejects, or holds relationship mentions while spending as little as
// possible: free rules first, cheap pattern checks second, embedding
// similarity third, LLM verification last.
package decision

import (
	"fmt"
	"sort"

	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// ConfidenceTier buckets an embedding similarity against a relationship
// policy's thresholds.
type ConfidenceTier int

const (
	TierLow ConfidenceTier = iota
	TierMedium
	TierHigh
)

func (t ConfidenceTier) String() string {
	switch t {
	case TierHigh:
		return "HIGH"
	case TierMedium:
		return "MEDIUM"
	case TierLow:
		return "LOW"
	default:
		return fmt.Sprintf("ConfidenceTier(%d)", int(t))
	}
}

// RelationshipPolicy holds the per-relationship-type decision thresholds.
type RelationshipPolicy struct {
	// HighThreshold and MediumThreshold split similarity into
	// HIGH / MEDIUM / LOW tiers.  Medium must not exceed high.
	HighThreshold   float64
	MediumThreshold float64
	// LLMEligible marks relationship types ambiguous enough to justify LLM
	// verification spend.
	LLMEligible bool
	// CandidateType is the edge label used when a mention is held rather
	// than accepted.
	CandidateType string
	Enabled       bool
}

// PolicyTable maps relationship types to their policies.  Built once at
// startup and read-only afterwards.
type PolicyTable struct {
	policies map[string]RelationshipPolicy
}

// NewPolicyTable validates each policy eagerly: thresholds outside [0,1] or
// medium above high are configuration errors surfaced at construction.
// An empty CandidateType defaults to "<TYPE>_CANDIDATE".
func NewPolicyTable(policies map[string]RelationshipPolicy) (*PolicyTable, error) {
	if len(policies) == 0 {
		return nil, errors.New(errors.ErrCodePolicyInvalid, "policy table must not be empty")
	}

	table := make(map[string]RelationshipPolicy, len(policies))
	for relType, p := range policies {
		if relType == "" {
			return nil, errors.New(errors.ErrCodePolicyInvalid, "relationship type must not be empty")
		}
		if p.HighThreshold < 0 || p.HighThreshold > 1 || p.MediumThreshold < 0 || p.MediumThreshold > 1 {
			return nil, errors.Newf(errors.ErrCodePolicyInvalid,
				"policy %s: thresholds must be in [0,1]", relType)
		}
		if p.MediumThreshold > p.HighThreshold {
			return nil, errors.Newf(errors.ErrCodePolicyInvalid,
				"policy %s: medium threshold %.2f exceeds high threshold %.2f",
				relType, p.MediumThreshold, p.HighThreshold)
		}
		if p.CandidateType == "" {
			p.CandidateType = relType + "_CANDIDATE"
		}
		table[relType] = p
	}
	return &PolicyTable{policies: table}, nil
}

// DefaultPolicyTable returns the standard four-relationship policy set.
// Supplier and customer mentions read ambiguously in filings, so they carry
// higher thresholds and may escalate to LLM verification.
func DefaultPolicyTable() *PolicyTable {
	t, err := NewPolicyTable(map[string]RelationshipPolicy{
		"HAS_COMPETITOR": {HighThreshold: 0.35, MediumThreshold: 0.25, Enabled: true},
		"HAS_PARTNER":    {HighThreshold: 0.35, MediumThreshold: 0.25, Enabled: true},
		"HAS_CUSTOMER":   {HighThreshold: 0.40, MediumThreshold: 0.30, LLMEligible: true, Enabled: true},
		"HAS_SUPPLIER":   {HighThreshold: 0.40, MediumThreshold: 0.30, LLMEligible: true, Enabled: true},
	})
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return t
}

// Get returns the policy for relType, or a typed error for unknown types.
func (t *PolicyTable) Get(relType string) (RelationshipPolicy, error) {
	p, ok := t.policies[relType]
	if !ok {
		return RelationshipPolicy{}, errors.Newf(errors.ErrCodePolicyUnknownType,
			"unknown relationship type %q", relType)
	}
	return p, nil
}

// Classify buckets similarity against relType's thresholds.
func (t *PolicyTable) Classify(relType string, similarity float64) (ConfidenceTier, error) {
	p, err := t.Get(relType)
	if err != nil {
		return TierLow, err
	}
	switch {
	case similarity >= p.HighThreshold:
		return TierHigh, nil
	case similarity >= p.MediumThreshold:
		return TierMedium, nil
	default:
		return TierLow, nil
	}
}

// Types returns the known relationship types in sorted order.
func (t *PolicyTable) Types() []string {
	types := make([]string, 0, len(t.policies))
	for relType := range t.policies {
		types = append(types, relType)
	}
	sort.Strings(types)
	return types
}
