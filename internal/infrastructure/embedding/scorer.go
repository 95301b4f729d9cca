package embedding

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// maxContextRunes caps how much sentence context is embedded; more adds cost
// without signal.
const maxContextRunes = 500

// DefaultSimilarityThreshold is the floor below which a mention context and
// company description are considered unrelated.
const DefaultSimilarityThreshold = 0.30

// CompanyProfile is the company side of a similarity comparison.
type CompanyProfile struct {
	Ticker      string
	Description string
}

// SimilarityScorer compares a mention's sentence context against a company's
// business description in embedding space.  Description vectors are memoized
// per ticker: descriptions change rarely, contexts constantly.
type SimilarityScorer struct {
	provider  Provider
	threshold float64
	logger    logging.Logger

	mu        sync.RWMutex
	descByTkr map[string][]float32
}

func NewSimilarityScorer(provider Provider, threshold float64, log logging.Logger) *SimilarityScorer {
	if threshold == 0 {
		threshold = DefaultSimilarityThreshold
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SimilarityScorer{
		provider:  provider,
		threshold: threshold,
		logger:    log,
		descByTkr: make(map[string][]float32),
	}
}

// Threshold returns the configured similarity floor.
func (s *SimilarityScorer) Threshold() float64 { return s.threshold }

// Meets reports whether similarity clears the floor.
func (s *SimilarityScorer) Meets(similarity float64) bool { return similarity >= s.threshold }

// Score embeds contextText (truncated to 500 runes) and the company
// description and returns their cosine similarity.
func (s *SimilarityScorer) Score(ctx context.Context, contextText string, company CompanyProfile) (float64, error) {
	contextText = strings.TrimSpace(contextText)
	if contextText == "" {
		return 0, errors.New(errors.ErrCodeValidation, "context text is empty")
	}
	if company.Description == "" {
		return 0, errors.New(errors.ErrCodeValidation, "company description is empty")
	}

	if runes := []rune(contextText); len(runes) > maxContextRunes {
		contextText = string(runes[:maxContextRunes])
	}

	ctxVec, err := s.provider.EmbedText(ctx, contextText)
	if err != nil {
		return 0, err
	}

	descVec, err := s.descriptionVector(ctx, company)
	if err != nil {
		return 0, err
	}

	sim, err := CosineSimilarity(ctxVec, descVec)
	if err != nil {
		return 0, err
	}
	// Raw cosine lands in [-1, 1]; every downstream consumer (policy
	// thresholds, decision confidence, persisted edges) expects [0, 1].
	sim = math.Max(0, math.Min(1, sim))

	s.logger.Debug("scored context against company description",
		logging.String("ticker", company.Ticker),
		logging.Float64("similarity", sim))
	return sim, nil
}

func (s *SimilarityScorer) descriptionVector(ctx context.Context, company CompanyProfile) ([]float32, error) {
	key := strings.ToUpper(strings.TrimSpace(company.Ticker))
	if key != "" {
		s.mu.RLock()
		vec, ok := s.descByTkr[key]
		s.mu.RUnlock()
		if ok {
			return vec, nil
		}
	}

	vec, err := s.provider.EmbedText(ctx, company.Description)
	if err != nil {
		return nil, err
	}

	if key != "" {
		s.mu.Lock()
		s.descByTkr[key] = vec
		s.mu.Unlock()
	}
	return vec, nil
}
