// Package bootstrap assembles the pipeline from configuration: graph,
// cache, vector store, embedding and LLM backends, domain components, and the
// application services on top of them.
package bootstrap

import (
	"context"
	"time"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/cleanup"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/extraction"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/config"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/decision"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/resolution"
	graphdb "github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/embedding"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/llm"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/search/milvus"
)

const (
	metricsNamespace = "cgi"
	batchLockKey     = "extraction:batch:lock"
	batchLockTTL     = 10 * time.Minute
)

// App holds every wired component.  Optional backends (OpenAI, Milvus) are
// nil when unconfigured; dependents degrade accordingly.
type App struct {
	Config *config.Config
	Logger logging.Logger

	Graph     *graphdb.Driver
	Companies *graphdb.CompanyRepository

	Redis *redis.Client
	Cache redis.Cache

	Milvus       *milvus.Client
	Descriptions *milvus.DescriptionStore

	Embedder embedding.Provider
	Verifier decision.Verifier

	Resolver *resolution.EntityResolver
	Policies *decision.PolicyTable
	Decider  *decision.TieredDecisionSystem

	Extraction *extraction.Service
	Cleanup    *cleanup.Service

	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
}

// New wires the full application.  Neo4j and Redis are required; OpenAI and
// Milvus are attached only when configured.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            metricsNamespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Collector: collector,
		Metrics:   prometheus.NewAppMetrics(collector),
	}

	app.Graph, err = graphdb.NewDriver(cfg.Neo4j, logger)
	if err != nil {
		return nil, err
	}
	app.Companies = graphdb.NewCompanyRepository(app.Graph, logger)

	app.Redis, err = redis.NewClient(cfg.Redis, logger)
	if err != nil {
		app.close()
		return nil, err
	}
	app.Cache = redis.NewCache(app.Redis, logger, redis.WithPrefix(metricsNamespace+":"))

	if cfg.OpenAI.APIKey != "" {
		app.Embedder = embedding.NewOpenAIProvider(cfg.OpenAI, app.Cache, logger)
		app.Verifier = llm.NewOpenAIVerifier(cfg.OpenAI, logger)
	}

	if cfg.Milvus.Addr != "" {
		app.Milvus, err = milvus.NewClient(cfg.Milvus, logger)
		if err != nil {
			app.close()
			return nil, err
		}
		app.Descriptions = milvus.NewDescriptionStore(app.Milvus, cfg.Milvus, logger)
		if err := app.Descriptions.EnsureCollection(ctx); err != nil {
			app.close()
			return nil, err
		}
	}

	app.Resolver, err = NewResolver(cfg.Resolution)
	if err != nil {
		app.close()
		return nil, err
	}
	app.Policies, err = NewPolicyTable(cfg.Decision)
	if err != nil {
		app.close()
		return nil, err
	}
	app.Decider, err = NewDecider(cfg.Decision, app.Policies, app.Verifier, logger)
	if err != nil {
		app.close()
		return nil, err
	}

	var similarity extraction.SimilarityProvider
	if app.Embedder != nil {
		scorer := embedding.NewSimilarityScorer(app.Embedder, 0, logger)
		similarity, err = extraction.NewGraphSimilarityProvider(app.Companies, scorer, logger)
		if err != nil {
			app.close()
			return nil, err
		}
	}

	app.Extraction, err = extraction.NewService(extraction.ServiceConfig{
		Resolver:    app.Resolver,
		Decider:     app.Decider,
		Policies:    app.Policies,
		Registry:    app.Companies,
		Writer:      app.Companies,
		Similarity:  similarity,
		Lock:        redis.NewMutex(app.Redis, batchLockKey, batchLockTTL),
		Metrics:     app.Metrics,
		Logger:      logger,
		Concurrency: cfg.Worker.Concurrency,
	})
	if err != nil {
		app.close()
		return nil, err
	}

	app.Cleanup, err = cleanup.NewService(app.Companies, app.Policies, app.Metrics, logger)
	if err != nil {
		app.close()
		return nil, err
	}

	return app, nil
}

// ReadyChecks returns the dependency probes for the readiness endpoint.
func (a *App) ReadyChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{
		"neo4j": a.Graph.HealthCheck,
		"redis": a.Redis.Ping,
	}
	if a.Milvus != nil {
		checks["milvus"] = a.Milvus.CheckHealth
	}
	return checks
}

// Close releases every connection in reverse construction order.
func (a *App) Close() { a.close() }

func (a *App) close() {
	if a.Milvus != nil {
		_ = a.Milvus.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Graph != nil {
		_ = a.Graph.Close()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Config → domain converters
// ─────────────────────────────────────────────────────────────────────────────

// NewResolver builds the resolution pipeline from configuration.
func NewResolver(cfg config.ResolutionConfig) (*resolution.EntityResolver, error) {
	scorer, err := resolution.NewRuleBasedScorer(resolution.ScorerOptions{
		Weights: resolution.ScorerWeights{
			MatchQuality:       cfg.Weights.MatchQuality,
			LengthPenalty:      cfg.Weights.LengthPenalty,
			ContextQuality:     cfg.Weights.ContextQuality,
			HighValueBonus:     cfg.Weights.HighValueBonus,
			SemanticSimilarity: cfg.Weights.SemanticSimilarity,
		},
		HighValueNames:       cfg.HighValueNames,
		RelationshipKeywords: cfg.RelationshipKeywords,
	})
	if err != nil {
		return nil, err
	}

	var matchers []resolution.Matcher
	if cfg.EnableFuzzyMatcher {
		matchers = resolution.StandardMatchersWithFuzzy(cfg.FuzzyMinSimilarity)
	}

	return resolution.NewEntityResolver(resolution.ResolverConfig{
		Filters:       resolution.StandardFilters(cfg.TickerBlocklist, cfg.NameBlocklist, cfg.MinCandidateLength),
		Matchers:      matchers,
		Scorer:        scorer,
		MinConfidence: cfg.MinConfidence,
	})
}

// NewPolicyTable builds the policy table from configuration, falling back to
// the standard four-relationship set when none is configured.
func NewPolicyTable(cfg config.DecisionConfig) (*decision.PolicyTable, error) {
	if len(cfg.Policies) == 0 {
		return decision.DefaultPolicyTable(), nil
	}

	policies := make(map[string]decision.RelationshipPolicy, len(cfg.Policies))
	for relType, p := range cfg.Policies {
		policies[relType] = decision.RelationshipPolicy{
			HighThreshold:   p.HighThreshold,
			MediumThreshold: p.MediumThreshold,
			LLMEligible:     p.LLMEligible,
			CandidateType:   p.CandidateType,
			Enabled:         p.Enabled,
		}
	}
	return decision.NewPolicyTable(policies)
}

// NewDecider builds the tiered decision system from configuration.  Tier 4
// enabled without a verifier is a degraded setup, not a fatal one: the tier
// declines every mention and the conservative default applies, so keyless
// deployments still boot.
func NewDecider(cfg config.DecisionConfig, policies *decision.PolicyTable, verifier decision.Verifier, logger logging.Logger) (*decision.TieredDecisionSystem, error) {
	if cfg.UseTier4 && verifier == nil && logger != nil {
		logger.Warn("tier 4 enabled without an llm verifier; tier 4 will decline every mention")
	}
	return decision.NewTieredDecisionSystem(policies, decision.Options{
		UseTier1:       cfg.UseTier1,
		UseTier2:       cfg.UseTier2,
		UseTier3:       cfg.UseTier3,
		UseTier4:       cfg.UseTier4,
		Tier3Cost:      cfg.Tier3Cost,
		Tier4Cost:      cfg.Tier4Cost,
		GenericWords:   cfg.GenericWords,
		ShortAllowlist: cfg.ShortAllowlist,
	}, verifier, decision.NewMetrics(), logger)
}
