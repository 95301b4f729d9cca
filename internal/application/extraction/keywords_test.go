package extraction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/extraction"
)

func TestRelationshipTypes_SortedAndComplete(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{
		"HAS_COMPETITOR", "HAS_CUSTOMER", "HAS_PARTNER", "HAS_SUPPLIER",
	}, extraction.RelationshipTypes())
}

func TestIsRelationshipType(t *testing.T) {
	t.Parallel()
	assert.True(t, extraction.IsRelationshipType(extraction.RelSupplier))
	assert.False(t, extraction.IsRelationshipType("HAS_LANDLORD"))
	assert.False(t, extraction.IsRelationshipType(""))
}

func TestRelationshipSentences_SelectsByKeyword(t *testing.T) {
	t.Parallel()
	text := "We compete with Acme. Our suppliers are diverse. Nothing relevant here."

	competitors := extraction.RelationshipSentences(text, extraction.RelCompetitor)
	require.Len(t, competitors, 1)
	assert.Equal(t, "We compete with Acme.", competitors[0].Text)
	assert.Equal(t, 0, competitors[0].Offset)

	suppliers := extraction.RelationshipSentences(text, extraction.RelSupplier)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "Our suppliers are diverse.", suppliers[0].Text)
	assert.Equal(t, 22, suppliers[0].Offset)
}

func TestRelationshipSentences_KeepsTerminatorAndOrder(t *testing.T) {
	t.Parallel()
	text := "Is Acme a competitor? Absolutely. We also face competition from Globex"

	got := extraction.RelationshipSentences(text, extraction.RelCompetitor)

	require.Len(t, got, 2)
	assert.Equal(t, "Is Acme a competitor?", got[0].Text)
	// The final sentence has no trailing terminator and still counts.
	assert.Equal(t, "We also face competition from Globex", got[1].Text)
	assert.Greater(t, got[1].Offset, got[0].Offset)
}

func TestRelationshipSentences_CaseInsensitive(t *testing.T) {
	t.Parallel()
	got := extraction.RelationshipSentences("Our COMPETITORS include Acme.", extraction.RelCompetitor)
	require.Len(t, got, 1)
}

func TestRelationshipSentences_MultiWordPhrases(t *testing.T) {
	t.Parallel()
	text := "We entered a joint venture with Acme. A supply agreement covers raw materials."

	partners := extraction.RelationshipSentences(text, extraction.RelPartner)
	require.Len(t, partners, 1)
	assert.Contains(t, partners[0].Text, "joint venture")

	suppliers := extraction.RelationshipSentences(text, extraction.RelSupplier)
	require.Len(t, suppliers, 1)
	assert.Contains(t, suppliers[0].Text, "supply agreement")
}

func TestRelationshipSentences_OffsetSkipsLeadingWhitespace(t *testing.T) {
	t.Parallel()
	text := "  We rely on suppliers."

	got := extraction.RelationshipSentences(text, extraction.RelSupplier)

	require.Len(t, got, 1)
	assert.Equal(t, "We rely on suppliers.", got[0].Text)
	assert.Equal(t, 2, got[0].Offset)
}

func TestRelationshipSentences_UnknownTypeAndEmptyText(t *testing.T) {
	t.Parallel()
	assert.Nil(t, extraction.RelationshipSentences("We have suppliers.", "HAS_LANDLORD"))
	assert.Nil(t, extraction.RelationshipSentences("", extraction.RelSupplier))
	assert.Nil(t, extraction.RelationshipSentences("No keywords in this text.", extraction.RelSupplier))
}
