// Package cleanup re-audits persisted relationship edges against the current
// decision policies: edges that would no longer be accepted are demoted to
// candidates or deleted.
package cleanup

import (
	"context"
	"time"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/decision"
	graphdb "github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// EdgeStore is the graph surface cleanup needs.
type EdgeStore interface {
	ListRelationships(ctx context.Context, relType string) ([]graphdb.EdgeRecord, error)
	ConvertToCandidate(ctx context.Context, fromCIK, toCIK, relType, candidateType string) error
	DeleteRelationship(ctx context.Context, fromCIK, toCIK, relType string) error
}

// Request selects what to clean.  DryRun audits without mutating the graph;
// callers must opt in to destructive mode explicitly.
type Request struct {
	// Types restricts cleanup; nil means every policy-known type.
	Types  []string `json:"types,omitempty"`
	DryRun bool     `json:"dry_run"`
}

// TypeResult counts one relationship type's audit outcomes.
type TypeResult struct {
	Examined  int `json:"examined"`
	Kept      int `json:"kept"`
	Converted int `json:"converted"`
	Deleted   int `json:"deleted"`
}

// Result summarizes one cleanup run.
type Result struct {
	DryRun   bool                   `json:"dry_run"`
	Types    map[string]*TypeResult `json:"types"`
	Duration time.Duration          `json:"duration"`
}

// Service walks edges type by type and applies the policy verdicts.
type Service struct {
	store    EdgeStore
	policies *decision.PolicyTable
	metrics  *prometheus.AppMetrics
	logger   logging.Logger
}

// NewService wires a cleanup service.  metrics may be nil.
func NewService(store EdgeStore, policies *decision.PolicyTable, metrics *prometheus.AppMetrics, logger logging.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New(errors.ErrCodeValidation, "edge store is required")
	}
	if policies == nil {
		return nil, errors.New(errors.ErrCodeValidation, "policy table is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{store: store, policies: policies, metrics: metrics, logger: logger}, nil
}

// Run audits every selected edge.  Edges with no recorded similarity predate
// the embedding tier and are deleted; the rest keep, demote, or delete by
// their policy's confidence tier.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	types := req.Types
	if len(types) == 0 {
		types = s.policies.Types()
	}

	start := time.Now()
	result := &Result{DryRun: req.DryRun, Types: make(map[string]*TypeResult)}

	for _, relType := range types {
		policy, err := s.policies.Get(relType)
		if err != nil {
			return nil, err
		}

		edges, err := s.store.ListRelationships(ctx, relType)
		if err != nil {
			return nil, err
		}

		counts := &TypeResult{}
		result.Types[relType] = counts
		for _, edge := range edges {
			counts.Examined++
			if err := s.auditEdge(ctx, edge, policy, req.DryRun, counts); err != nil {
				return nil, err
			}
		}

		s.logger.Info("cleaned relationship type",
			logging.String("type", relType),
			logging.Bool("dry_run", req.DryRun),
			logging.Int("examined", counts.Examined),
			logging.Int("kept", counts.Kept),
			logging.Int("converted", counts.Converted),
			logging.Int("deleted", counts.Deleted))
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (s *Service) auditEdge(ctx context.Context, edge graphdb.EdgeRecord, policy decision.RelationshipPolicy, dryRun bool, counts *TypeResult) error {
	if edge.Similarity == nil {
		return s.deleteEdge(ctx, edge, dryRun, counts)
	}

	tier, err := s.policies.Classify(edge.Type, *edge.Similarity)
	if err != nil {
		return err
	}

	switch tier {
	case decision.TierHigh:
		counts.Kept++
		return nil
	case decision.TierMedium:
		counts.Converted++
		if dryRun {
			return nil
		}
		if err := s.store.ConvertToCandidate(ctx, edge.FromCIK, edge.ToCIK, edge.Type, policy.CandidateType); err != nil {
			return err
		}
		prometheus.RecordEdgeOperation(s.metrics, "convert", edge.Type)
		return nil
	default:
		return s.deleteEdge(ctx, edge, dryRun, counts)
	}
}

func (s *Service) deleteEdge(ctx context.Context, edge graphdb.EdgeRecord, dryRun bool, counts *TypeResult) error {
	counts.Deleted++
	if dryRun {
		return nil
	}
	if err := s.store.DeleteRelationship(ctx, edge.FromCIK, edge.ToCIK, edge.Type); err != nil {
		return err
	}
	prometheus.RecordEdgeOperation(s.metrics, "delete", edge.Type)
	return nil
}
