package embedding

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/config"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := CosineSimilarity(tc.a, tc.b)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	t.Parallel()
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

// fakeEmbedder maps input text to canned vectors and counts API calls.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (f *fakeEmbedder) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.EmbeddingResponse{}, f.err
	}
	req := conv.Convert()
	input := req.Input.([]string)[0]
	vec, ok := f.vectors[input]
	if !ok {
		vec = []float32{1, 0, 0}
	}
	return openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: vec}},
	}, nil
}

func newFakeProvider(f *fakeEmbedder, cache redis.Cache) *OpenAIProvider {
	return &OpenAIProvider{
		client:   f,
		model:    "text-embedding-3-small",
		cache:    cache,
		cacheTTL: time.Minute,
		logger:   logging.NewNopLogger(),
	}
}

func TestOpenAIProvider_EmbedText(t *testing.T) {
	t.Parallel()
	fake := &fakeEmbedder{vectors: map[string][]float32{"hello": {0.1, 0.2, 0.3}}}
	p := newFakeProvider(fake, nil)

	vec, err := p.EmbedText(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, 1, fake.calls)
}

func TestOpenAIProvider_EmptyTextRejected(t *testing.T) {
	t.Parallel()
	p := newFakeProvider(&fakeEmbedder{}, nil)
	_, err := p.EmbedText(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestOpenAIProvider_CacheAvoidsRepeatCalls(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	cache := redis.NewCache(client, logging.NewNopLogger(), redis.WithPrefix("test:"))

	fake := &fakeEmbedder{vectors: map[string][]float32{"repeated context": {0.5, 0.5}}}
	p := newFakeProvider(fake, cache)

	for i := 0; i < 3; i++ {
		vec, err := p.EmbedText(context.Background(), "repeated context")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, 0.5}, vec)
	}
	assert.Equal(t, 1, fake.calls)
}

func TestOpenAIProvider_APIErrorWrapped(t *testing.T) {
	t.Parallel()
	fake := &fakeEmbedder{err: assert.AnError}
	p := newFakeProvider(fake, nil)

	_, err := p.EmbedText(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingError))
}

type recordingProvider struct {
	vectors map[string][]float32
	inputs  []string
}

func (r *recordingProvider) EmbedText(_ context.Context, text string) ([]float32, error) {
	r.inputs = append(r.inputs, text)
	if vec, ok := r.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0}, nil
}

func TestSimilarityScorer_Score(t *testing.T) {
	t.Parallel()
	provider := &recordingProvider{vectors: map[string][]float32{
		"Apple supplies chips to us.": {1, 0},
		"Designs and sells consumer electronics.": {1, 0},
	}}
	s := NewSimilarityScorer(provider, 0.30, logging.NewNopLogger())

	sim, err := s.Score(context.Background(), "Apple supplies chips to us.", CompanyProfile{
		Ticker:      "AAPL",
		Description: "Designs and sells consumer electronics.",
	})

	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
	assert.True(t, s.Meets(sim))
}

func TestSimilarityScorer_ClampsNegativeCosine(t *testing.T) {
	t.Parallel()
	provider := &recordingProvider{vectors: map[string][]float32{
		"context with opposite signal": {1, 0},
		"Description pointing the other way.": {-1, 0},
	}}
	s := NewSimilarityScorer(provider, 0.30, logging.NewNopLogger())

	sim, err := s.Score(context.Background(), "context with opposite signal", CompanyProfile{
		Ticker:      "OPP",
		Description: "Description pointing the other way.",
	})

	require.NoError(t, err)
	assert.Zero(t, sim)
	assert.False(t, s.Meets(sim))
}

func TestSimilarityScorer_DescriptionVectorMemoized(t *testing.T) {
	t.Parallel()
	provider := &recordingProvider{}
	s := NewSimilarityScorer(provider, 0, logging.NewNopLogger())
	company := CompanyProfile{Ticker: "MSFT", Description: "Cloud and productivity software."}

	for i := 0; i < 3; i++ {
		_, err := s.Score(context.Background(), "some context", company)
		require.NoError(t, err)
	}

	// Three context embeddings, one description embedding.
	descCalls := 0
	for _, in := range provider.inputs {
		if in == company.Description {
			descCalls++
		}
	}
	assert.Equal(t, 1, descCalls)
	assert.Len(t, provider.inputs, 4)
}

func TestSimilarityScorer_TruncatesLongContext(t *testing.T) {
	t.Parallel()
	provider := &recordingProvider{}
	s := NewSimilarityScorer(provider, 0, logging.NewNopLogger())

	long := strings.Repeat("x", 900)
	_, err := s.Score(context.Background(), long, CompanyProfile{Description: "desc"})
	require.NoError(t, err)

	require.NotEmpty(t, provider.inputs)
	assert.Len(t, []rune(provider.inputs[0]), 500)
}

func TestSimilarityScorer_DefaultThreshold(t *testing.T) {
	t.Parallel()
	s := NewSimilarityScorer(&recordingProvider{}, 0, logging.NewNopLogger())
	assert.Equal(t, DefaultSimilarityThreshold, s.Threshold())
	assert.False(t, s.Meets(0.29))
	assert.True(t, s.Meets(0.30))
}

func TestSimilarityScorer_EmptyInputs(t *testing.T) {
	t.Parallel()
	s := NewSimilarityScorer(&recordingProvider{}, 0, logging.NewNopLogger())

	_, err := s.Score(context.Background(), "", CompanyProfile{Description: "desc"})
	require.Error(t, err)

	_, err = s.Score(context.Background(), "context", CompanyProfile{})
	require.Error(t, err)
}
