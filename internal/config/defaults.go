// Package config provides configuration loading, defaults, and validation for
// the CompanyGraph-Intelligence platform.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultNeo4jURI      = "neo4j://localhost:7687"
	DefaultNeo4jDatabase = "neo4j"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "cgi:"

	DefaultMilvusAddr       = "localhost:19530"
	DefaultMilvusCollection = "company_descriptions"
	DefaultEmbeddingDim     = 1536

	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultChatModel      = "gpt-4o-mini"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 8

	DefaultMinConfidence      = 0.5
	DefaultMinCandidateLength = 2
	DefaultFuzzyMinSimilarity = 0.85

	DefaultTier3Cost = 0.001
	DefaultTier4Cost = 0.01
)

// Default blocklists and keyword sets, seeded from the SEC-filings extraction
// corpus.  They are defaults only: deployments override them through the
// resolution/decision config sections.
var (
	// defaultTickerBlocklist rejects all-caps tokens that collide with common
	// English words, regulatory acronyms, and single letters.
	defaultTickerBlocklist = []string{
		// 2-letter words
		"AN", "BY", "ON", "OR", "SO", "BE", "DO", "GO", "IN", "AT", "IS", "UP",
		"WE", "AB", "SA", "AS", "EU", "UK",
		// 3-4 letter common words
		"FOR", "ALL", "ANY", "ARE", "CAN", "HAS", "NOW", "ONE", "OUT", "SEE",
		"TWO", "BIG", "NEW", "OLD", "OUR", "THE", "AND", "ACT", "YOU", "CAR",
		"NET", "BDC", "HHS", "ACA", "ESG", "DMA",
		"WHEN", "MOST", "ALSO", "ONLY", "VERY", "WELL", "EVEN", "JUST", "SOME",
		"SUCH", "MANY", "BOTH", "EACH", "MORE", "MUST", "WILL", "BEEN", "REAL",
		"DRUG", "FORM",
		// Technical acronyms
		"IT", "PC", "AI", "IP", "HR", "PR", "AG", "EC",
		"ASIC", "DSP", "GPU", "CPU", "SOC",
		// Geographic
		"US", "USA", "EEA",
		// Single letters
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
		"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	}

	// defaultNameBlocklist rejects company-name candidates that are also
	// generic business vocabulary.
	defaultNameBlocklist = []string{
		"reliance", "alliance", "target", "focus", "insight", "advantage",
		"premier", "progress", "catalyst", "service", "services", "system",
		"systems", "technology", "technologies", "solution", "solutions",
		"platform", "platforms", "group", "holdings", "partners", "associates",
		"ventures", "industries", "enterprises", "management", "investment",
		"investments", "financial", "securities", "resources", "capital",
	}

	// defaultHighValueNames marks canonical names whose presence earns the
	// high-value scoring bonus.
	defaultHighValueNames = []string{
		"apple", "microsoft", "amazon", "alphabet", "google", "nvidia", "meta",
		"tesla", "intel", "oracle", "salesforce", "adobe", "qualcomm", "broadcom",
	}

	// defaultRelationshipKeywords are the context-quality indicators counted
	// by the rule-based scorer.
	defaultRelationshipKeywords = []string{
		"competitor", "customer", "supplier", "partner", "vendor", "client",
		"collaboration", "agreement", "contract", "relationship",
	}

	// defaultGenericWords is the tier-1 blocklist: mentions that are usually
	// common nouns rather than companies unless context proves otherwise.
	defaultGenericWords = []string{
		"target", "master", "apple", "amazon", "google", "microsoft",
	}

	// defaultShortAllowlist is the set of ≤2-character mentions that are
	// well-known tickers and bypass the tier-1 length rule.
	defaultShortAllowlist = []string{"ibm", "hp", "ge", "at", "ma"}
)

// DefaultScorerWeights returns the fixed factor weights of the rule-based
// confidence scorer.  They sum to 1.0.
func DefaultScorerWeights() ScorerWeights {
	return ScorerWeights{
		MatchQuality:       0.40,
		LengthPenalty:      0.20,
		ContextQuality:     0.20,
		HighValueBonus:     0.10,
		SemanticSimilarity: 0.10,
	}
}

// DefaultPolicies returns the per-relationship-type threshold table.
// Supplier/customer edges are the ambiguous ones that may escalate to LLM
// verification; competitor/partner edges never do.
func DefaultPolicies() map[string]RelationshipPolicy {
	return map[string]RelationshipPolicy{
		"HAS_COMPETITOR": {HighThreshold: 0.35, MediumThreshold: 0.25, LLMEligible: false, CandidateType: "HAS_COMPETITOR_CANDIDATE", Enabled: true},
		"HAS_PARTNER":    {HighThreshold: 0.35, MediumThreshold: 0.25, LLMEligible: false, CandidateType: "HAS_PARTNER_CANDIDATE", Enabled: true},
		"HAS_CUSTOMER":   {HighThreshold: 0.40, MediumThreshold: 0.30, LLMEligible: true, CandidateType: "HAS_CUSTOMER_CANDIDATE", Enabled: true},
		"HAS_SUPPLIER":   {HighThreshold: 0.40, MediumThreshold: 0.30, LLMEligible: true, CandidateType: "HAS_SUPPLIER_CANDIDATE", Enabled: true},
	}
}

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields already set by the caller are left unchanged so explicit
// configuration always wins.  Must be called after unmarshalling and before
// Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// ── Neo4j ─────────────────────────────────────────────────────────────────
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.Database == "" {
		cfg.Neo4j.Database = DefaultNeo4jDatabase
	}
	if cfg.Neo4j.MaxConnectionPoolSize == 0 {
		cfg.Neo4j.MaxConnectionPoolSize = 50
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = 30 * time.Second
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 24 * time.Hour
	}

	// ── Milvus ────────────────────────────────────────────────────────────────
	if cfg.Milvus.Addr == "" {
		cfg.Milvus.Addr = DefaultMilvusAddr
	}
	if cfg.Milvus.Collection == "" {
		cfg.Milvus.Collection = DefaultMilvusCollection
	}
	if cfg.Milvus.EmbeddingDim == 0 {
		cfg.Milvus.EmbeddingDim = DefaultEmbeddingDim
	}
	if cfg.Milvus.DefaultTopK == 0 {
		cfg.Milvus.DefaultTopK = 10
	}

	// ── OpenAI ────────────────────────────────────────────────────────────────
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = DefaultChatModel
	}
	if cfg.OpenAI.RequestTimeout == 0 {
		cfg.OpenAI.RequestTimeout = 30 * time.Second
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = 100
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Resolution ────────────────────────────────────────────────────────────
	if cfg.Resolution.MinConfidence == 0 {
		cfg.Resolution.MinConfidence = DefaultMinConfidence
	}
	if cfg.Resolution.MinCandidateLength == 0 {
		cfg.Resolution.MinCandidateLength = DefaultMinCandidateLength
	}
	if cfg.Resolution.FuzzyMinSimilarity == 0 {
		cfg.Resolution.FuzzyMinSimilarity = DefaultFuzzyMinSimilarity
	}
	if len(cfg.Resolution.TickerBlocklist) == 0 {
		cfg.Resolution.TickerBlocklist = append([]string(nil), defaultTickerBlocklist...)
	}
	if len(cfg.Resolution.NameBlocklist) == 0 {
		cfg.Resolution.NameBlocklist = append([]string(nil), defaultNameBlocklist...)
	}
	if len(cfg.Resolution.HighValueNames) == 0 {
		cfg.Resolution.HighValueNames = append([]string(nil), defaultHighValueNames...)
	}
	if len(cfg.Resolution.RelationshipKeywords) == 0 {
		cfg.Resolution.RelationshipKeywords = append([]string(nil), defaultRelationshipKeywords...)
	}
	if cfg.Resolution.Weights == (ScorerWeights{}) {
		cfg.Resolution.Weights = DefaultScorerWeights()
	}

	// ── Decision ──────────────────────────────────────────────────────────────
	// Tier toggles default to enabled only when the whole section is zero;
	// an explicitly configured section keeps its toggles as given.
	if cfg.Decision.Policies == nil && !cfg.Decision.UseTier1 && !cfg.Decision.UseTier2 &&
		!cfg.Decision.UseTier3 && !cfg.Decision.UseTier4 {
		cfg.Decision.UseTier1 = true
		cfg.Decision.UseTier2 = true
		cfg.Decision.UseTier3 = true
		cfg.Decision.UseTier4 = true
	}
	if cfg.Decision.Tier3Cost == 0 {
		cfg.Decision.Tier3Cost = DefaultTier3Cost
	}
	if cfg.Decision.Tier4Cost == 0 {
		cfg.Decision.Tier4Cost = DefaultTier4Cost
	}
	if len(cfg.Decision.GenericWords) == 0 {
		cfg.Decision.GenericWords = append([]string(nil), defaultGenericWords...)
	}
	if len(cfg.Decision.ShortAllowlist) == 0 {
		cfg.Decision.ShortAllowlist = append([]string(nil), defaultShortAllowlist...)
	}
	if cfg.Decision.Policies == nil {
		cfg.Decision.Policies = DefaultPolicies()
	}
}
