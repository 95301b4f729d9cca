package milvus

import (
	"context"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/config"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

const (
	fieldTicker      = "ticker"
	fieldDescription = "description"
	fieldEmbedding   = "embedding"

	tickerMaxLength      = "16"
	descriptionMaxLength = "4096"

	hnswM              = 16
	hnswEfConstruction = 200
	hnswEfSearch       = 64
)

// vectorAPI is the slice of the SDK client the description store uses.
type vectorAPI interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	CreateCollection(ctx context.Context, collSchema *entity.Schema, shardNum int32, opts ...client.CreateCollectionOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	Upsert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	Delete(ctx context.Context, collName string, partitionName string, expr string) error
}

// DescriptionEntry is one company description with its embedding.
type DescriptionEntry struct {
	Ticker      string
	Description string
	Vector      []float32
}

// DescriptionHit is a nearest-neighbor match from Search.
type DescriptionHit struct {
	Ticker      string
	Description string
	Score       float32
}

// DescriptionStore persists company-description embeddings keyed by ticker
// and answers nearest-neighbor queries against them.
type DescriptionStore struct {
	api    vectorAPI
	cfg    config.MilvusConfig
	logger logging.Logger
}

// NewDescriptionStore builds a store over an established client.
func NewDescriptionStore(c *Client, cfg config.MilvusConfig, logger logging.Logger) *DescriptionStore {
	return &DescriptionStore{api: c.GetMilvusClient(), cfg: cfg, logger: logger}
}

// EnsureCollection creates the collection and its index if missing, then
// loads it.  Safe to call on every startup.
func (s *DescriptionStore) EnsureCollection(ctx context.Context) error {
	has, err := s.api.HasCollection(ctx, s.cfg.Collection)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorStore, "failed to check collection existence")
	}

	if !has {
		schema := &entity.Schema{
			CollectionName: s.cfg.Collection,
			Description:    "company business descriptions",
			Fields: []*entity.Field{
				{Name: fieldTicker, DataType: entity.FieldTypeVarChar, PrimaryKey: true,
					TypeParams: map[string]string{"max_length": tickerMaxLength}},
				{Name: fieldDescription, DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": descriptionMaxLength}},
				{Name: fieldEmbedding, DataType: entity.FieldTypeFloatVector,
					TypeParams: map[string]string{"dim": strconv.Itoa(s.cfg.EmbeddingDim)}},
			},
		}
		if err := s.api.CreateCollection(ctx, schema, 1); err != nil {
			return errors.Wrap(err, errors.ErrCodeVectorStore, "failed to create collection")
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, hnswM, hnswEfConstruction)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeVectorStore, "failed to build index definition")
		}
		if err := s.api.CreateIndex(ctx, s.cfg.Collection, fieldEmbedding, idx, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeVectorStore, "failed to create index")
		}
		s.logger.Info("created description collection",
			logging.String("collection", s.cfg.Collection),
			logging.Int("dim", s.cfg.EmbeddingDim))
	}

	if err := s.api.LoadCollection(ctx, s.cfg.Collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorStore, "failed to load collection")
	}
	return nil
}

// Upsert writes entries, replacing any existing row with the same ticker.
func (s *DescriptionStore) Upsert(ctx context.Context, entries []DescriptionEntry) error {
	if len(entries) == 0 {
		return errors.New(errors.ErrCodeValidation, "no entries to upsert")
	}

	tickers := make([]string, len(entries))
	descriptions := make([]string, len(entries))
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		if e.Ticker == "" {
			return errors.Newf(errors.ErrCodeValidation, "entry %d has empty ticker", i)
		}
		if len(e.Vector) != s.cfg.EmbeddingDim {
			return errors.Newf(errors.ErrCodeValidation,
				"entry %s has dimension %d, collection expects %d", e.Ticker, len(e.Vector), s.cfg.EmbeddingDim)
		}
		tickers[i] = strings.ToUpper(e.Ticker)
		descriptions[i] = e.Description
		vectors[i] = e.Vector
	}

	_, err := s.api.Upsert(ctx, s.cfg.Collection, "",
		entity.NewColumnVarChar(fieldTicker, tickers),
		entity.NewColumnVarChar(fieldDescription, descriptions),
		entity.NewColumnFloatVector(fieldEmbedding, s.cfg.EmbeddingDim, vectors),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorStore, "failed to upsert descriptions")
	}

	s.logger.Debug("upserted company descriptions", logging.Int("count", len(entries)))
	return nil
}

// Search returns the topK companies whose descriptions are closest to the
// query vector, best first.  topK <= 0 uses the configured default.
func (s *DescriptionStore) Search(ctx context.Context, vector []float32, topK int) ([]DescriptionHit, error) {
	if len(vector) != s.cfg.EmbeddingDim {
		return nil, errors.Newf(errors.ErrCodeValidation,
			"query vector has dimension %d, collection expects %d", len(vector), s.cfg.EmbeddingDim)
	}
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}

	sp, err := entity.NewIndexHNSWSearchParam(hnswEfSearch)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVectorStore, "failed to build search params")
	}

	results, err := s.api.Search(ctx, s.cfg.Collection, nil, "",
		[]string{fieldTicker, fieldDescription},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding, entity.COSINE, topK, sp)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVectorStore, "description search failed")
	}
	if len(results) == 0 {
		return nil, nil
	}

	return s.convertHits(results[0])
}

// Delete removes the rows for the given tickers.
func (s *DescriptionStore) Delete(ctx context.Context, tickers []string) error {
	if len(tickers) == 0 {
		return errors.New(errors.ErrCodeValidation, "no tickers to delete")
	}

	quoted := make([]string, len(tickers))
	for i, tkr := range tickers {
		quoted[i] = `"` + strings.ToUpper(tkr) + `"`
	}
	expr := fieldTicker + " in [" + strings.Join(quoted, ",") + "]"

	if err := s.api.Delete(ctx, s.cfg.Collection, "", expr); err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorStore, "failed to delete descriptions")
	}
	return nil
}

func (s *DescriptionStore) convertHits(res client.SearchResult) ([]DescriptionHit, error) {
	tickerCol, ok := res.Fields.GetColumn(fieldTicker).(*entity.ColumnVarChar)
	if !ok {
		return nil, errors.New(errors.ErrCodeVectorStore, "ticker column missing from search result")
	}
	descCol, _ := res.Fields.GetColumn(fieldDescription).(*entity.ColumnVarChar)

	hits := make([]DescriptionHit, 0, res.ResultCount)
	for i := 0; i < res.ResultCount; i++ {
		hit := DescriptionHit{
			Ticker: tickerCol.Data()[i],
			Score:  res.Scores[i],
		}
		if descCol != nil {
			hit.Description = descCol.Data()[i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

