package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/cleanup"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/extraction"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/decision"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/resolution"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/embedding"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/search/milvus"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// lookupTTL bounds how stale the cached company lookup may get; the registry
// changes on ingest cadence, not per request.
const lookupTTL = 5 * time.Minute

// Decider is the decision surface the API needs.
type Decider interface {
	Decide(ctx context.Context, req decision.Request) (decision.Decision, error)
}

// Extractor runs the full pipeline over one document.
type Extractor interface {
	ProcessDocument(ctx context.Context, doc extraction.Document, lookup *resolution.CompanyLookup) (*extraction.Report, error)
}

// Cleaner audits persisted edges.
type Cleaner interface {
	Run(ctx context.Context, req cleanup.Request) (*cleanup.Result, error)
}

// DescriptionSearcher finds companies by description vector.
type DescriptionSearcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]milvus.DescriptionHit, error)
}

// ReadyCheck probes one dependency for the readiness endpoint.
type ReadyCheck func(ctx context.Context) error

// Handlers holds every API dependency.  Optional collaborators may be nil;
// their endpoints then answer 503.
type Handlers struct {
	Resolver    *resolution.EntityResolver
	Registry    extraction.Registry
	Decider     Decider
	Extractor   Extractor
	Cleaner     Cleaner
	Embedder    embedding.Provider
	Searcher    DescriptionSearcher
	ReadyChecks map[string]ReadyCheck
	Logger      logging.Logger

	mu           sync.Mutex
	lookup       *resolution.CompanyLookup
	lookupExpiry time.Time
}

func (h *Handlers) logger() logging.Logger {
	if h.Logger == nil {
		return logging.NewNopLogger()
	}
	return h.Logger
}

// companyLookup serves the cached lookup, rebuilding it at most once per TTL.
func (h *Handlers) companyLookup(ctx context.Context) (*resolution.CompanyLookup, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.lookup != nil && time.Now().Before(h.lookupExpiry) {
		return h.lookup, nil
	}
	lookup, err := h.Registry.BuildCompanyLookup(ctx)
	if err != nil {
		return nil, err
	}
	h.lookup = lookup
	h.lookupExpiry = time.Now().Add(lookupTTL)
	return lookup, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Request / response shapes
// ─────────────────────────────────────────────────────────────────────────────

type resolveRequest struct {
	Text    string `json:"text" binding:"required"`
	SelfCIK string `json:"self_cik"`
}

type resolveResponse struct {
	Entities []resolution.ResolvedEntity `json:"entities"`
	Stats    *resolution.ResolutionStats `json:"stats"`
}

type decideRequest struct {
	Mention          string   `json:"mention" binding:"required"`
	Sentence         string   `json:"sentence" binding:"required"`
	RelationshipType string   `json:"relationship_type" binding:"required"`
	CompanyName      string   `json:"company_name"`
	Similarity       *float64 `json:"similarity"`
}

type decideResponse struct {
	Outcome    string  `json:"outcome"`
	Tier       string  `json:"tier"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Cost       float64 `json:"cost"`
}

type cleanupRequest struct {
	Types []string `json:"types"`
	// DryRun defaults to true: destructive cleanup is opt-in.
	DryRun *bool `json:"dry_run"`
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Hits []milvus.DescriptionHit `json:"hits"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Endpoints
// ─────────────────────────────────────────────────────────────────────────────

// Resolve runs entity resolution over raw text.
func (h *Handlers) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	lookup, err := h.companyLookup(c.Request.Context())
	if err != nil {
		writeAppError(c, h.logger(), err)
		return
	}

	entities, stats, err := h.Resolver.ResolveWithStats(req.Text, lookup, req.SelfCIK)
	if err != nil {
		writeAppError(c, h.logger(), err)
		return
	}
	if entities == nil {
		entities = []resolution.ResolvedEntity{}
	}
	c.JSON(http.StatusOK, resolveResponse{Entities: entities, Stats: stats})
}

// Decide runs one mention through the tiered decision system.
func (h *Handlers) Decide(c *gin.Context) {
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if req.Similarity != nil && (*req.Similarity < 0 || *req.Similarity > 1) {
		writeError(c, http.StatusBadRequest, string(errors.ErrCodeValidation), "similarity must be in [0, 1]")
		return
	}

	d, err := h.Decider.Decide(c.Request.Context(), decision.Request{
		Mention:          req.Mention,
		Sentence:         req.Sentence,
		RelationshipType: req.RelationshipType,
		CompanyName:      req.CompanyName,
		Similarity:       req.Similarity,
	})
	if err != nil {
		writeAppError(c, h.logger(), err)
		return
	}
	c.JSON(http.StatusOK, decideResponse{
		Outcome:    d.Outcome.String(),
		Tier:       d.Tier.String(),
		Confidence: d.Confidence,
		Reason:     d.Reason,
		Cost:       d.Cost,
	})
}

// Extract runs the full pipeline over one document and writes edges.
func (h *Handlers) Extract(c *gin.Context) {
	var doc extraction.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		writeBindError(c, err)
		return
	}
	if strings.TrimSpace(doc.SelfCIK) == "" {
		writeError(c, http.StatusBadRequest, string(errors.ErrCodeValidation), "self_cik is required")
		return
	}

	lookup, err := h.companyLookup(c.Request.Context())
	if err != nil {
		writeAppError(c, h.logger(), err)
		return
	}

	report, err := h.Extractor.ProcessDocument(c.Request.Context(), doc, lookup)
	if err != nil {
		writeAppError(c, h.logger(), err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Cleanup audits persisted edges against current policies.
func (h *Handlers) Cleanup(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	dryRun := true
	if req.DryRun != nil {
		dryRun = *req.DryRun
	}

	result, err := h.Cleaner.Run(c.Request.Context(), cleanup.Request{Types: req.Types, DryRun: dryRun})
	if err != nil {
		writeAppError(c, h.logger(), err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchDescriptions embeds the query and searches the description index.
func (h *Handlers) SearchDescriptions(c *gin.Context) {
	if h.Embedder == nil || h.Searcher == nil {
		writeError(c, http.StatusServiceUnavailable, string(errors.ErrCodeServiceUnavailable), "description search is not configured")
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	vector, err := h.Embedder.EmbedText(c.Request.Context(), req.Query)
	if err != nil {
		writeAppError(c, h.logger(), err)
		return
	}
	hits, err := h.Searcher.Search(c.Request.Context(), vector, req.TopK)
	if err != nil {
		writeAppError(c, h.logger(), err)
		return
	}
	if hits == nil {
		hits = []milvus.DescriptionHit{}
	}
	c.JSON(http.StatusOK, searchResponse{Hits: hits})
}

// Liveness answers as long as the process serves requests.
func (h *Handlers) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness probes every registered dependency check.
func (h *Handlers) Readiness(c *gin.Context) {
	failed := make(map[string]string)
	for name, check := range h.ReadyChecks {
		if err := check(c.Request.Context()); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// ─────────────────────────────────────────────────────────────────────────────
// Error mapping
// ─────────────────────────────────────────────────────────────────────────────

func writeBindError(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, string(errors.ErrCodeBadRequest), err.Error())
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}

// writeAppError maps typed application errors onto HTTP statuses, masking
// internal detail on 500s.
func writeAppError(c *gin.Context, logger logging.Logger, err error) {
	code := errors.CodeOf(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", logging.String("path", c.Request.URL.Path), logging.Err(err))
		writeError(c, status, string(errors.ErrCodeInternal), "internal server error")
		return
	}
	writeError(c, status, string(code), err.Error())
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest, errors.ErrCodePolicyUnknownType:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeConflict:
		return http.StatusConflict
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeServiceUnavailable, errors.ErrCodeLookupUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
