package extraction

import (
	"context"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/resolution"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/embedding"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// DescriptionSource resolves a company's stored business description.
type DescriptionSource interface {
	CompanyDescription(ctx context.Context, cik string) (string, error)
}

// GraphSimilarityProvider scores a mention's sentence against the resolved
// company's business description from the graph.  Companies without a stored
// description yield a nil similarity, which skips the embedding tier rather
// than comparing against nothing.
type GraphSimilarityProvider struct {
	source DescriptionSource
	scorer *embedding.SimilarityScorer
	logger logging.Logger
}

func NewGraphSimilarityProvider(source DescriptionSource, scorer *embedding.SimilarityScorer, logger logging.Logger) (*GraphSimilarityProvider, error) {
	if source == nil {
		return nil, errors.New(errors.ErrCodeValidation, "description source is required")
	}
	if scorer == nil {
		return nil, errors.New(errors.ErrCodeValidation, "similarity scorer is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GraphSimilarityProvider{source: source, scorer: scorer, logger: logger}, nil
}

var _ SimilarityProvider = (*GraphSimilarityProvider)(nil)

// SimilarityFor implements SimilarityProvider.
func (p *GraphSimilarityProvider) SimilarityFor(ctx context.Context, sentence string, company resolution.Company) (*float64, error) {
	description, err := p.source.CompanyDescription(ctx, company.CIK)
	if err != nil {
		return nil, err
	}
	if description == "" {
		p.logger.Debug("no business description stored, skipping similarity",
			logging.String("cik", company.CIK))
		return nil, nil
	}

	sim, err := p.scorer.Score(ctx, sentence, embedding.CompanyProfile{
		Ticker:      company.Ticker,
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	return &sim, nil
}
