package decision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/decision"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

func TestNewPolicyTable_RejectsEmpty(t *testing.T) {
	t.Parallel()
	_, err := decision.NewPolicyTable(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePolicyInvalid))
}

func TestNewPolicyTable_RejectsInvertedThresholds(t *testing.T) {
	t.Parallel()
	_, err := decision.NewPolicyTable(map[string]decision.RelationshipPolicy{
		"HAS_CUSTOMER": {HighThreshold: 0.30, MediumThreshold: 0.40},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HAS_CUSTOMER")
}

func TestNewPolicyTable_RejectsOutOfRangeThresholds(t *testing.T) {
	t.Parallel()
	_, err := decision.NewPolicyTable(map[string]decision.RelationshipPolicy{
		"HAS_PARTNER": {HighThreshold: 1.5, MediumThreshold: 0.2},
	})
	require.Error(t, err)
}

func TestNewPolicyTable_DefaultsCandidateType(t *testing.T) {
	t.Parallel()
	table, err := decision.NewPolicyTable(map[string]decision.RelationshipPolicy{
		"HAS_SUPPLIER": {HighThreshold: 0.4, MediumThreshold: 0.3, Enabled: true},
	})
	require.NoError(t, err)

	p, err := table.Get("HAS_SUPPLIER")
	require.NoError(t, err)
	assert.Equal(t, "HAS_SUPPLIER_CANDIDATE", p.CandidateType)
}

func TestPolicyTable_GetUnknownType(t *testing.T) {
	t.Parallel()
	_, err := decision.DefaultPolicyTable().Get("HAS_RIVAL")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodePolicyUnknownType))
}

func TestPolicyTable_Classify(t *testing.T) {
	t.Parallel()
	table := decision.DefaultPolicyTable()

	cases := []struct {
		relType    string
		similarity float64
		want       decision.ConfidenceTier
	}{
		{"HAS_COMPETITOR", 0.50, decision.TierHigh},
		{"HAS_COMPETITOR", 0.35, decision.TierHigh}, // boundary is inclusive
		{"HAS_COMPETITOR", 0.30, decision.TierMedium},
		{"HAS_COMPETITOR", 0.20, decision.TierLow},
		{"HAS_SUPPLIER", 0.35, decision.TierMedium}, // supplier thresholds sit higher
		{"HAS_SUPPLIER", 0.45, decision.TierHigh},
	}
	for _, tc := range cases {
		got, err := table.Classify(tc.relType, tc.similarity)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s @ %.2f", tc.relType, tc.similarity)
	}
}

func TestDefaultPolicyTable_Shape(t *testing.T) {
	t.Parallel()
	table := decision.DefaultPolicyTable()

	assert.Equal(t, []string{"HAS_COMPETITOR", "HAS_CUSTOMER", "HAS_PARTNER", "HAS_SUPPLIER"}, table.Types())

	supplier, err := table.Get("HAS_SUPPLIER")
	require.NoError(t, err)
	assert.True(t, supplier.LLMEligible)

	competitor, err := table.Get("HAS_COMPETITOR")
	require.NoError(t, err)
	assert.False(t, competitor.LLMEligible)
}

func TestConfidenceTier_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "HIGH", decision.TierHigh.String())
	assert.Equal(t, "MEDIUM", decision.TierMedium.String())
	assert.Equal(t, "LOW", decision.TierLow.String())
}
