package milvus

import (
	"context"
	"errors"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/config"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
)

// healthyMilvus embeds the SDK interface and overrides only what the wrapper
// touches.
type healthyMilvus struct {
	client.Client
	healthErr error
}

func (m *healthyMilvus) CheckHealth(context.Context) (*entity.MilvusState, error) {
	if m.healthErr != nil {
		return nil, m.healthErr
	}
	return &entity.MilvusState{}, nil
}

func (m *healthyMilvus) Close() error { return nil }

func swapFactory(t *testing.T, f clientFactory) {
	t.Helper()
	original := milvusNewClient
	milvusNewClient = f
	t.Cleanup(func() { milvusNewClient = original })
}

func milvusConfig() config.MilvusConfig {
	return config.MilvusConfig{
		Addr:         "localhost:19530",
		Collection:   "company_descriptions",
		EmbeddingDim: 4,
		DefaultTopK:  10,
	}
}

func TestNewClient(t *testing.T) {
	swapFactory(t, func(context.Context, client.Config) (client.Client, error) {
		return &healthyMilvus{}, nil
	})

	c, err := NewClient(milvusConfig(), logging.NewNopLogger())

	require.NoError(t, err)
	assert.True(t, c.IsHealthy())
	require.NoError(t, c.Close())
}

func TestNewClient_EmptyAddr(t *testing.T) {
	_, err := NewClient(config.MilvusConfig{}, logging.NewNopLogger())
	require.Error(t, err)
}

func TestNewClient_DialFailure(t *testing.T) {
	swapFactory(t, func(context.Context, client.Config) (client.Client, error) {
		return nil, errors.New("dial failed")
	})

	_, err := NewClient(milvusConfig(), logging.NewNopLogger())
	require.Error(t, err)
}

func TestNewClient_UnhealthyCluster(t *testing.T) {
	swapFactory(t, func(context.Context, client.Config) (client.Client, error) {
		return &healthyMilvus{healthErr: errors.New("degraded")}, nil
	})

	_, err := NewClient(milvusConfig(), logging.NewNopLogger())
	require.ErrorIs(t, err, ErrConnectionFailed)
}

func TestClient_CheckHealthTransitions(t *testing.T) {
	t.Parallel()
	mc := &healthyMilvus{}
	c := &Client{milvusClient: mc, logger: logging.NewNopLogger()}

	require.NoError(t, c.CheckHealth(context.Background()))
	assert.True(t, c.IsHealthy())

	mc.healthErr = errors.New("down")
	require.ErrorIs(t, c.CheckHealth(context.Background()), ErrUnhealthy)
	assert.False(t, c.IsHealthy())
}

func TestClient_CloseIdempotent(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{milvusClient: &healthyMilvus{}, logger: logging.NewNopLogger(), cancel: cancel}

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Error(t, ctx.Err())
}
