package extraction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/decision"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/resolution"
	graphdb "github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// Registry loads the known-company lookup used for resolution.
type Registry interface {
	BuildCompanyLookup(ctx context.Context) (*resolution.CompanyLookup, error)
}

// EdgeWriter persists fact and candidate edges.
type EdgeWriter interface {
	UpsertRelationship(ctx context.Context, edge graphdb.RelationshipEdge) error
}

// SimilarityProvider supplies the optional embedding similarity between a
// mention's sentence and the resolved company.  A nil provider (or a nil
// result) leaves tier 3 out of the decision.
type SimilarityProvider interface {
	SimilarityFor(ctx context.Context, sentence string, company resolution.Company) (*float64, error)
}

// Locker serializes batch runs across processes.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// Document is one filing's extractable text.
type Document struct {
	SelfCIK             string `json:"self_cik"`
	BusinessDescription string `json:"business_description"`
	RiskFactors         string `json:"risk_factors"`

	// RelationshipTypes restricts extraction; nil means all supported types.
	RelationshipTypes []string `json:"relationship_types,omitempty"`
}

// TypeStats counts pipeline outcomes for one relationship type.
type TypeStats struct {
	Sentences    int `json:"sentences"`
	Resolved     int `json:"resolved"`
	Accepted     int `json:"accepted"`
	Held         int `json:"held"`
	Rejected     int `json:"rejected"`
	EdgesWritten int `json:"edges_written"`
}

// Report summarizes one document run.
type Report struct {
	RunID    string                `json:"run_id"`
	SelfCIK  string                `json:"self_cik"`
	Stats    map[string]*TypeStats `json:"stats"`
	Duration time.Duration         `json:"duration"`
}

// ServiceConfig assembles a Service.
type ServiceConfig struct {
	Resolver   *resolution.EntityResolver
	Decider    *decision.TieredDecisionSystem
	Policies   *decision.PolicyTable
	Registry   Registry
	Writer     EdgeWriter
	Similarity SimilarityProvider // optional
	Lock       Locker             // optional, batch runs only
	Metrics    *prometheus.AppMetrics
	Logger     logging.Logger

	// Concurrency bounds ProcessBatch workers; <=0 means 1.
	Concurrency int
}

// Service drives text through resolution, tiered decision, and edge writes.
type Service struct {
	resolver    *resolution.EntityResolver
	decider     *decision.TieredDecisionSystem
	policies    *decision.PolicyTable
	registry    Registry
	writer      EdgeWriter
	similarity  SimilarityProvider
	lock        Locker
	metrics     *prometheus.AppMetrics
	logger      logging.Logger
	concurrency int
}

// NewService validates cfg and returns a ready service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Resolver == nil {
		return nil, errors.New(errors.ErrCodeValidation, "resolver is required")
	}
	if cfg.Decider == nil {
		return nil, errors.New(errors.ErrCodeValidation, "decision system is required")
	}
	if cfg.Policies == nil {
		return nil, errors.New(errors.ErrCodeValidation, "policy table is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New(errors.ErrCodeValidation, "company registry is required")
	}
	if cfg.Writer == nil {
		return nil, errors.New(errors.ErrCodeValidation, "edge writer is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{
		resolver:    cfg.Resolver,
		decider:     cfg.Decider,
		policies:    cfg.Policies,
		registry:    cfg.Registry,
		writer:      cfg.Writer,
		similarity:  cfg.Similarity,
		lock:        cfg.Lock,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		concurrency: cfg.Concurrency,
	}, nil
}

// ProcessDocument extracts relationships from one document against a
// prebuilt lookup and writes the surviving edges.
func (s *Service) ProcessDocument(ctx context.Context, doc Document, lookup *resolution.CompanyLookup) (*Report, error) {
	if lookup == nil {
		return nil, errors.New(errors.ErrCodeLookupUnavailable, "company lookup is nil")
	}

	start := time.Now()
	report := &Report{
		RunID:   uuid.NewString(),
		SelfCIK: doc.SelfCIK,
		Stats:   make(map[string]*TypeStats),
	}

	relTypes := doc.RelationshipTypes
	if len(relTypes) == 0 {
		relTypes = RelationshipTypes()
	}

	texts := []string{doc.BusinessDescription, doc.RiskFactors}

	for _, relType := range relTypes {
		if !IsRelationshipType(relType) {
			return nil, errors.Newf(errors.ErrCodeValidation, "unsupported relationship type %q", relType)
		}
		stats := &TypeStats{}
		report.Stats[relType] = stats

		// One edge per (type, target company) per document.
		seen := make(map[string]bool)

		for _, text := range texts {
			for _, sentence := range RelationshipSentences(text, relType) {
				stats.Sentences++
				if err := s.processSentence(ctx, relType, sentence.Text, doc.SelfCIK, lookup, seen, stats); err != nil {
					return nil, err
				}
			}
		}
	}

	report.Duration = time.Since(start)
	s.logger.Info("processed document",
		logging.String("run_id", report.RunID),
		logging.String("self_cik", doc.SelfCIK),
		logging.Duration("duration", report.Duration))
	return report, nil
}

func (s *Service) processSentence(ctx context.Context, relType, sentence, selfCIK string, lookup *resolution.CompanyLookup, seen map[string]bool, stats *TypeStats) error {
	entities, err := s.resolver.Resolve(sentence, lookup, selfCIK)
	if err != nil {
		return err
	}

	for _, entity := range entities {
		if seen[entity.Company.CIK] {
			continue
		}
		seen[entity.Company.CIK] = true
		stats.Resolved++

		sim := s.similarityFor(ctx, sentence, entity.Company)

		verdict, err := s.decider.Decide(ctx, decision.Request{
			Mention:          entity.Candidate.Text,
			Sentence:         sentence,
			RelationshipType: relType,
			CompanyName:      entity.Company.Name,
			Similarity:       sim,
		})
		if err != nil {
			return err
		}
		tierLabel := verdict.Tier.String()
		if verdict.Default {
			tierLabel = "none"
		}
		prometheus.RecordDecision(s.metrics, tierLabel, verdict.Outcome.String(), verdict.Cost)

		switch verdict.Outcome {
		case decision.Accept:
			stats.Accepted++
			if err := s.writeEdge(ctx, relType, selfCIK, entity, verdict, sim); err != nil {
				return err
			}
			stats.EdgesWritten++
		case decision.Hold:
			stats.Held++
			policy, err := s.policies.Get(relType)
			if err != nil {
				return err
			}
			if err := s.writeEdge(ctx, policy.CandidateType, selfCIK, entity, verdict, sim); err != nil {
				return err
			}
			stats.EdgesWritten++
		default:
			stats.Rejected++
		}
	}
	return nil
}

// similarityFor degrades to nil on provider failure so a flaky embedding
// backend cannot abort extraction.
func (s *Service) similarityFor(ctx context.Context, sentence string, company resolution.Company) *float64 {
	if s.similarity == nil {
		return nil
	}
	sim, err := s.similarity.SimilarityFor(ctx, sentence, company)
	if err != nil {
		s.logger.Warn("similarity lookup failed, deciding without it",
			logging.String("company", company.Name), logging.Err(err))
		return nil
	}
	return sim
}

func (s *Service) writeEdge(ctx context.Context, edgeType, selfCIK string, entity resolution.ResolvedEntity, verdict decision.Decision, sim *float64) error {
	edge := graphdb.RelationshipEdge{
		FromCIK:    selfCIK,
		ToCIK:      entity.Company.CIK,
		Type:       edgeType,
		Confidence: verdict.Confidence,
		Similarity: sim,
		Sentence:   entity.Candidate.Sentence,
		Mention:    entity.Candidate.Text,
		DecidedBy:  verdict.Tier.String(),
	}
	if err := s.writer.UpsertRelationship(ctx, edge); err != nil {
		return err
	}
	prometheus.RecordEdgeOperation(s.metrics, "upsert", edgeType)
	return nil
}

// ProcessBatch builds the lookup once and runs documents through bounded
// workers.  When a Locker is configured the whole batch holds it, so two
// processes never interleave writes for the same corpus.
func (s *Service) ProcessBatch(ctx context.Context, docs []Document) ([]*Report, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	if s.lock != nil {
		ok, err := s.lock.TryLock(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New(errors.ErrCodeConflict, "another extraction batch is running")
		}
		defer func() {
			if err := s.lock.Unlock(ctx); err != nil {
				s.logger.Warn("failed to release batch lock", logging.Err(err))
			}
		}()
	}

	lookup, err := s.registry.BuildCompanyLookup(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("starting extraction batch",
		logging.Int("documents", len(docs)),
		logging.Int("companies", lookup.Size()),
		logging.Int("concurrency", s.concurrency))

	reports := make([]*Report, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			report, err := s.ProcessDocument(gctx, doc, lookup)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
