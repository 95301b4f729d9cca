package neo4j

import (
	"context"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/resolution"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// RelationshipEdge is one directed company-to-company edge with its decision
// provenance.
type RelationshipEdge struct {
	FromCIK    string
	ToCIK      string
	Type       string
	Confidence float64
	Similarity *float64
	Sentence   string
	Mention    string
	DecidedBy  string
}

// EdgeRecord is a stored edge as read back for cleanup.
type EdgeRecord struct {
	FromCIK    string
	ToCIK      string
	Type       string
	Similarity *float64
}

// Relationship types are spliced into Cypher (labels cannot be parameters),
// so they are restricted to a safe shape.
var reRelType = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// CompanyRepository reads the company registry and maintains relationship
// edges in the graph.
type CompanyRepository struct {
	exec   Executor
	logger logging.Logger
}

func NewCompanyRepository(exec Executor, log logging.Logger) *CompanyRepository {
	return &CompanyRepository{exec: exec, logger: log}
}

// BuildCompanyLookup loads every company with a CIK and name and indexes it
// for the entity resolver.
func (r *CompanyRepository) BuildCompanyLookup(ctx context.Context) (*resolution.CompanyLookup, error) {
	const query = `
		MATCH (c:Company)
		WHERE c.cik IS NOT NULL AND c.name IS NOT NULL
		RETURN c.cik AS cik, c.ticker AS ticker, c.name AS name`

	res, err := r.exec.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		lookup := resolution.NewCompanyLookup()
		for result.Next(ctx) {
			rec := result.Record()
			lookup.Add(recordString(rec, "cik"), recordString(rec, "ticker"), recordString(rec, "name"))
		}
		if err := result.Err(); err != nil {
			return nil, err
		}
		return lookup, nil
	})
	if err != nil {
		return nil, err
	}

	lookup := res.(*resolution.CompanyLookup)
	r.logger.Info("Built company lookup", logging.Int("name_keys", lookup.Size()))
	return lookup, nil
}

// CompanyDescription returns the stored business description for cik, or ""
// when the company is unknown or has none.
func (r *CompanyRepository) CompanyDescription(ctx context.Context, cik string) (string, error) {
	const query = `
		MATCH (c:Company {cik: $cik})
		RETURN c.business_description AS description`

	res, err := r.exec.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"cik": cik})
		if err != nil {
			return nil, err
		}
		if !result.Next(ctx) {
			return "", result.Err()
		}
		return recordString(result.Record(), "description"), result.Err()
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// UpsertRelationship merges the edge and overwrites its decision properties.
func (r *CompanyRepository) UpsertRelationship(ctx context.Context, edge RelationshipEdge) error {
	if err := validateRelType(edge.Type); err != nil {
		return err
	}

	query := `
		MATCH (a:Company {cik: $from_cik})
		MATCH (b:Company {cik: $to_cik})
		MERGE (a)-[rel:` + edge.Type + `]->(b)
		SET rel.confidence = $confidence,
		    rel.similarity = $similarity,
		    rel.sentence = $sentence,
		    rel.mention = $mention,
		    rel.decided_by = $decided_by,
		    rel.updated_at = datetime()`

	params := map[string]any{
		"from_cik":   edge.FromCIK,
		"to_cik":     edge.ToCIK,
		"confidence": edge.Confidence,
		"similarity": similarityParam(edge.Similarity),
		"sentence":   edge.Sentence,
		"mention":    edge.Mention,
		"decided_by": edge.DecidedBy,
	}

	_, err := r.exec.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	return err
}

// ListRelationships returns every edge of relType with the fields cleanup
// needs.
func (r *CompanyRepository) ListRelationships(ctx context.Context, relType string) ([]EdgeRecord, error) {
	if err := validateRelType(relType); err != nil {
		return nil, err
	}

	query := `
		MATCH (a:Company)-[rel:` + relType + `]->(b:Company)
		RETURN a.cik AS from_cik, b.cik AS to_cik, rel.similarity AS similarity`

	res, err := r.exec.ExecuteRead(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return CollectRecords(ctx, result, func(rec *neo4j.Record) (EdgeRecord, error) {
			return EdgeRecord{
				FromCIK:    recordString(rec, "from_cik"),
				ToCIK:      recordString(rec, "to_cik"),
				Type:       relType,
				Similarity: recordFloat(rec, "similarity"),
			}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]EdgeRecord), nil
}

// ConvertToCandidate re-labels an edge to its candidate type, carrying all
// properties over.
func (r *CompanyRepository) ConvertToCandidate(ctx context.Context, fromCIK, toCIK, relType, candidateType string) error {
	if err := validateRelType(relType); err != nil {
		return err
	}
	if err := validateRelType(candidateType); err != nil {
		return err
	}

	query := `
		MATCH (a:Company {cik: $from_cik})-[rel:` + relType + `]->(b:Company {cik: $to_cik})
		MERGE (a)-[cand:` + candidateType + `]->(b)
		SET cand = properties(rel)
		DELETE rel`

	_, err := r.exec.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"from_cik": fromCIK, "to_cik": toCIK})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	return err
}

// DeleteRelationship removes a single edge.
func (r *CompanyRepository) DeleteRelationship(ctx context.Context, fromCIK, toCIK, relType string) error {
	if err := validateRelType(relType); err != nil {
		return err
	}

	query := `
		MATCH (a:Company {cik: $from_cik})-[rel:` + relType + `]->(b:Company {cik: $to_cik})
		DELETE rel`

	_, err := r.exec.ExecuteWrite(ctx, func(tx Transaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"from_cik": fromCIK, "to_cik": toCIK})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	return err
}

func validateRelType(relType string) error {
	if !reRelType.MatchString(relType) {
		return errors.Newf(errors.ErrCodeValidation, "invalid relationship type %q", relType)
	}
	return nil
}

func similarityParam(s *float64) any {
	if s == nil {
		return nil
	}
	return *s
}

func recordString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func recordFloat(rec *neo4j.Record, key string) *float64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}
