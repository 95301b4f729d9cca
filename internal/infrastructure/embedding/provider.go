package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/config"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// Provider turns text into an embedding vector.
type Provider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// embeddingClient is the slice of the OpenAI client the provider needs.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIProvider embeds text through the OpenAI embeddings API, with an
// optional Redis cache keyed by a content hash so repeated contexts are
// embedded once.
type OpenAIProvider struct {
	client   embeddingClient
	model    string
	cache    redis.Cache
	cacheTTL time.Duration
	logger   logging.Logger
}

// NewOpenAIProvider builds a provider from the platform OpenAI config.
// cache may be nil to disable caching.
func NewOpenAIProvider(cfg config.OpenAIConfig, cache redis.Cache, log logging.Logger) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.EmbeddingModel,
		cache:    cache,
		cacheTTL: 7 * 24 * time.Hour,
		logger:   log,
	}
}

// EmbedText returns the embedding for text, served from cache when possible.
func (p *OpenAIProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New(errors.ErrCodeValidation, "cannot embed empty text")
	}

	if p.cache == nil {
		return p.embed(ctx, text)
	}

	var vector []float32
	err := p.cache.GetOrSet(ctx, p.cacheKey(text), &vector, p.cacheTTL,
		func(ctx context.Context) (interface{}, error) {
			return p.embed(ctx, text)
		})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func (p *OpenAIProvider) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingError, "embedding request failed")
	}
	if len(resp.Data) == 0 {
		return nil, errors.New(errors.ErrCodeEmbeddingError, "embedding response contained no data")
	}

	p.logger.Debug("embedded text",
		logging.String("model", p.model),
		logging.Int("dimensions", len(resp.Data[0].Embedding)))
	return resp.Data[0].Embedding, nil
}

func (p *OpenAIProvider) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(p.model + "\x00" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}
