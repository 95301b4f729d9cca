package neo4j

import (
	"context"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

type fakeResult struct {
	records []*neo4j.Record
	idx     int
}

func (f *fakeResult) Next(context.Context) bool {
	if f.idx >= len(f.records) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeResult) Record() *neo4j.Record { return f.records[f.idx-1] }
func (f *fakeResult) Err() error            { return nil }
func (f *fakeResult) Consume(context.Context) (neo4j.ResultSummary, error) {
	return nil, nil
}

type fakeTransaction struct {
	records []*neo4j.Record
	runErr  error

	gotCypher string
	gotParams map[string]any
}

func (f *fakeTransaction) Run(_ context.Context, cypher string, params map[string]any) (Result, error) {
	f.gotCypher = cypher
	f.gotParams = params
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &fakeResult{records: f.records}, nil
}

type fakeExecutor struct {
	tx *fakeTransaction
}

func (f *fakeExecutor) ExecuteRead(_ context.Context, work func(Transaction) (any, error)) (any, error) {
	return work(f.tx)
}

func (f *fakeExecutor) ExecuteWrite(_ context.Context, work func(Transaction) (any, error)) (any, error) {
	return work(f.tx)
}

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func TestCompanyRepository_BuildCompanyLookup(t *testing.T) {
	t.Parallel()
	keys := []string{"cik", "ticker", "name"}
	exec := &fakeExecutor{tx: &fakeTransaction{records: []*neo4j.Record{
		record(keys, "0000320193", "AAPL", "Apple Inc."),
		record(keys, "0000789019", nil, "Microsoft Corporation"), // no ticker
	}}}
	repo := NewCompanyRepository(exec, logging.NewNopLogger())

	lookup, err := repo.BuildCompanyLookup(context.Background())

	require.NoError(t, err)
	assert.Contains(t, exec.tx.gotCypher, "c.cik IS NOT NULL")
	assert.Equal(t, "0000320193", lookup.TickerToCompany["AAPL"].CIK)
	assert.Equal(t, "0000789019", lookup.NameToCompany["microsoft"].CIK)
	assert.False(t, lookup.AllTickers.Contains(""))
}

func TestCompanyRepository_CompanyDescription(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{tx: &fakeTransaction{records: []*neo4j.Record{
		record([]string{"description"}, "Designs and sells consumer electronics."),
	}}}
	repo := NewCompanyRepository(exec, logging.NewNopLogger())

	desc, err := repo.CompanyDescription(context.Background(), "0000320193")

	require.NoError(t, err)
	assert.Equal(t, "Designs and sells consumer electronics.", desc)
	assert.Equal(t, "0000320193", exec.tx.gotParams["cik"])
}

func TestCompanyRepository_CompanyDescription_Unknown(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{tx: &fakeTransaction{}}
	repo := NewCompanyRepository(exec, logging.NewNopLogger())

	desc, err := repo.CompanyDescription(context.Background(), "999")

	require.NoError(t, err)
	assert.Empty(t, desc)
}

func TestCompanyRepository_UpsertRelationship(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{tx: &fakeTransaction{}}
	repo := NewCompanyRepository(exec, logging.NewNopLogger())
	sim := 0.42

	err := repo.UpsertRelationship(context.Background(), RelationshipEdge{
		FromCIK:    "1",
		ToCIK:      "2",
		Type:       "HAS_SUPPLIER",
		Confidence: 0.9,
		Similarity: &sim,
		Sentence:   "Acme supplies widgets.",
		Mention:    "Acme",
		DecidedBy:  "tier3_embeddings",
	})

	require.NoError(t, err)
	assert.Contains(t, exec.tx.gotCypher, "MERGE (a)-[rel:HAS_SUPPLIER]->(b)")
	assert.Equal(t, "1", exec.tx.gotParams["from_cik"])
	assert.Equal(t, 0.42, exec.tx.gotParams["similarity"])
	assert.Equal(t, "tier3_embeddings", exec.tx.gotParams["decided_by"])
}

func TestCompanyRepository_UpsertRejectsUnsafeType(t *testing.T) {
	t.Parallel()
	repo := NewCompanyRepository(&fakeExecutor{tx: &fakeTransaction{}}, logging.NewNopLogger())

	err := repo.UpsertRelationship(context.Background(), RelationshipEdge{
		FromCIK: "1", ToCIK: "2", Type: "HAS_SUPPLIER]->(b) DELETE b //",
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestCompanyRepository_ListRelationships(t *testing.T) {
	t.Parallel()
	keys := []string{"from_cik", "to_cik", "similarity"}
	exec := &fakeExecutor{tx: &fakeTransaction{records: []*neo4j.Record{
		record(keys, "1", "2", 0.5),
		record(keys, "1", "3", nil), // legacy edge without similarity
	}}}
	repo := NewCompanyRepository(exec, logging.NewNopLogger())

	edges, err := repo.ListRelationships(context.Background(), "HAS_CUSTOMER")

	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, "HAS_CUSTOMER", edges[0].Type)
	require.NotNil(t, edges[0].Similarity)
	assert.Equal(t, 0.5, *edges[0].Similarity)
	assert.Nil(t, edges[1].Similarity)
}

func TestCompanyRepository_ConvertToCandidate(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{tx: &fakeTransaction{}}
	repo := NewCompanyRepository(exec, logging.NewNopLogger())

	err := repo.ConvertToCandidate(context.Background(), "1", "2", "HAS_CUSTOMER", "HAS_CUSTOMER_CANDIDATE")

	require.NoError(t, err)
	assert.Contains(t, exec.tx.gotCypher, "MERGE (a)-[cand:HAS_CUSTOMER_CANDIDATE]->(b)")
	assert.Contains(t, exec.tx.gotCypher, "DELETE rel")
}

func TestCompanyRepository_DeleteRelationship(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{tx: &fakeTransaction{}}
	repo := NewCompanyRepository(exec, logging.NewNopLogger())

	err := repo.DeleteRelationship(context.Background(), "1", "2", "HAS_PARTNER")

	require.NoError(t, err)
	assert.Contains(t, exec.tx.gotCypher, "[rel:HAS_PARTNER]")
	assert.Contains(t, exec.tx.gotCypher, "DELETE rel")
}
