// Package config defines all configuration structures for the
// CompanyGraph-Intelligence platform.  No I/O or parsing logic lives here —
// only plain data types and validation.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Infrastructure sub-configurations
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Neo4jConfig holds company-graph connection parameters.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
}

// RedisConfig holds cache connection parameters.
type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	PoolSize   int           `mapstructure:"pool_size"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// MilvusConfig holds vector-store connection parameters for the
// company-description collection.
type MilvusConfig struct {
	Addr         string `mapstructure:"addr"`
	DBName       string `mapstructure:"db_name"`
	Collection   string `mapstructure:"collection"`
	EmbeddingDim int    `mapstructure:"embedding_dim"`
	DefaultTopK  int    `mapstructure:"default_top_k"`
}

// OpenAIConfig holds parameters for the embedding and verification
// collaborators.
type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	ChatModel      string        `mapstructure:"chat_model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// WorkerConfig holds batch-processing parameters for document workers.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	BatchSize   int `mapstructure:"batch_size"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Domain sub-configurations
// ─────────────────────────────────────────────────────────────────────────────

// ScorerWeights are the factor weights of the rule-based confidence scorer.
// They must sum to 1.0; Validate enforces this at startup.
type ScorerWeights struct {
	MatchQuality       float64 `mapstructure:"match_quality"`
	LengthPenalty      float64 `mapstructure:"length_penalty"`
	ContextQuality     float64 `mapstructure:"context_quality"`
	HighValueBonus     float64 `mapstructure:"high_value_bonus"`
	SemanticSimilarity float64 `mapstructure:"semantic_similarity"`
}

// Sum returns the total of all weights.
func (w ScorerWeights) Sum() float64 {
	return w.MatchQuality + w.LengthPenalty + w.ContextQuality + w.HighValueBonus + w.SemanticSimilarity
}

// ResolutionConfig holds entity-resolution pipeline tunables.  The blocklists
// and keyword sets are injected here rather than living as package globals so
// deployments can tune them without a rebuild.
type ResolutionConfig struct {
	MinConfidence        float64  `mapstructure:"min_confidence"`
	MinCandidateLength   int      `mapstructure:"min_candidate_length"`
	EnableFuzzyMatcher   bool     `mapstructure:"enable_fuzzy_matcher"`
	FuzzyMinSimilarity   float64  `mapstructure:"fuzzy_min_similarity"`
	TickerBlocklist      []string `mapstructure:"ticker_blocklist"`
	NameBlocklist        []string `mapstructure:"name_blocklist"`
	HighValueNames       []string `mapstructure:"high_value_names"`
	RelationshipKeywords []string `mapstructure:"relationship_keywords"`
	Weights              ScorerWeights `mapstructure:"weights"`
}

// RelationshipPolicy is one row of the relationship-type policy table consumed
// by decision tiers 3 and 4.
type RelationshipPolicy struct {
	HighThreshold   float64 `mapstructure:"high_threshold"`
	MediumThreshold float64 `mapstructure:"medium_threshold"`
	LLMEligible     bool    `mapstructure:"llm_eligible"`
	CandidateType   string  `mapstructure:"candidate_type"`
	Enabled         bool    `mapstructure:"enabled"`
}

// DecisionConfig holds tiered-decision-system tunables.
type DecisionConfig struct {
	UseTier1 bool `mapstructure:"use_tier1"`
	UseTier2 bool `mapstructure:"use_tier2"`
	UseTier3 bool `mapstructure:"use_tier3"`
	UseTier4 bool `mapstructure:"use_tier4"`

	// Per-decision external API costs in dollars.  Tiers 1 and 2 are free.
	Tier3Cost float64 `mapstructure:"tier3_cost"`
	Tier4Cost float64 `mapstructure:"tier4_cost"`

	GenericWords   []string `mapstructure:"generic_words"`
	ShortAllowlist []string `mapstructure:"short_allowlist"`

	Policies map[string]RelationshipPolicy `mapstructure:"policies"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Milvus     MilvusConfig     `mapstructure:"milvus"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Log        logging.Config   `mapstructure:"log"`
	Resolution ResolutionConfig `mapstructure:"resolution"`
	Decision   DecisionConfig   `mapstructure:"decision"`
}

// weightSumTolerance is the absolute tolerance applied when checking that
// scorer weights sum to 1.0, absorbing float literal rounding in YAML.
const weightSumTolerance = 1e-6

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Neo4j.URI == "" {
		return fmt.Errorf("config: neo4j.uri is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Resolution
	if c.Resolution.MinConfidence < 0 || c.Resolution.MinConfidence > 1 {
		return fmt.Errorf("config: resolution.min_confidence %v is out of range [0, 1]", c.Resolution.MinConfidence)
	}
	if c.Resolution.FuzzyMinSimilarity < 0 || c.Resolution.FuzzyMinSimilarity > 1 {
		return fmt.Errorf("config: resolution.fuzzy_min_similarity %v is out of range [0, 1]", c.Resolution.FuzzyMinSimilarity)
	}
	if sum := c.Resolution.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("config: resolution.weights must sum to 1.0, got %v", sum)
	}

	// Decision
	if c.Decision.Tier3Cost < 0 || c.Decision.Tier4Cost < 0 {
		return fmt.Errorf("config: decision tier costs must be ≥ 0")
	}
	for relType, p := range c.Decision.Policies {
		if p.MediumThreshold < 0 || p.HighThreshold > 1 || p.MediumThreshold > p.HighThreshold {
			return fmt.Errorf("config: decision.policies[%s] thresholds invalid: medium=%v high=%v",
				relType, p.MediumThreshold, p.HighThreshold)
		}
	}

	return nil
}
