package extraction_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/application/extraction"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/resolution"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/embedding"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

type fakeDescriptions struct {
	byCIK map[string]string
	err   error
}

func (f *fakeDescriptions) CompanyDescription(_ context.Context, cik string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.byCIK[cik], nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0}, nil
}

func newSimilarityProvider(t *testing.T, source extraction.DescriptionSource, embedder embedding.Provider) *extraction.GraphSimilarityProvider {
	t.Helper()
	scorer := embedding.NewSimilarityScorer(embedder, 0, nil)
	p, err := extraction.NewGraphSimilarityProvider(source, scorer, nil)
	require.NoError(t, err)
	return p
}

func TestNewGraphSimilarityProvider_Validation(t *testing.T) {
	t.Parallel()
	scorer := embedding.NewSimilarityScorer(&fakeEmbedder{}, 0, nil)

	_, err := extraction.NewGraphSimilarityProvider(nil, scorer, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = extraction.NewGraphSimilarityProvider(&fakeDescriptions{}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestGraphSimilarityProvider_ScoresAgainstDescription(t *testing.T) {
	t.Parallel()
	source := &fakeDescriptions{byCIK: map[string]string{
		microsoftCIK: "Develops and licenses software and cloud services.",
	}}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"We rely on their cloud platform.":                    {1, 0},
		"Develops and licenses software and cloud services.": {1, 0},
	}}
	p := newSimilarityProvider(t, source, embedder)

	sim, err := p.SimilarityFor(context.Background(), "We rely on their cloud platform.",
		resolution.Company{CIK: microsoftCIK, Ticker: "MSFT", Name: "Microsoft Corporation"})

	require.NoError(t, err)
	require.NotNil(t, sim)
	assert.InDelta(t, 1.0, *sim, 1e-6)
}

func TestGraphSimilarityProvider_NoDescriptionYieldsNil(t *testing.T) {
	t.Parallel()
	p := newSimilarityProvider(t, &fakeDescriptions{}, &fakeEmbedder{})

	sim, err := p.SimilarityFor(context.Background(), "Some sentence.",
		resolution.Company{CIK: "12345", Ticker: "ACME"})

	require.NoError(t, err)
	assert.Nil(t, sim)
}

func TestGraphSimilarityProvider_SourceError(t *testing.T) {
	t.Parallel()
	source := &fakeDescriptions{err: errors.New(errors.ErrCodeGraphError, "neo4j unavailable")}
	p := newSimilarityProvider(t, source, &fakeEmbedder{})

	_, err := p.SimilarityFor(context.Background(), "Some sentence.",
		resolution.Company{CIK: "12345"})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraphError))
}
