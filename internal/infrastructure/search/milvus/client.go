// Package milvus manages the vector store holding company business
// descriptions used for semantic similarity checks.
package milvus

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/config"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

// clientFactory matches client.NewClient; a variable so tests can swap it.
type clientFactory func(ctx context.Context, conf client.Config) (client.Client, error)

var milvusNewClient clientFactory = client.NewClient

var (
	ErrConnectionFailed = errors.New(errors.ErrCodeVectorStore, "milvus connection failed")
	ErrUnhealthy        = errors.New(errors.ErrCodeServiceUnavailable, "milvus unhealthy")
)

const (
	connectTimeout      = 10 * time.Second
	healthCheckInterval = 30 * time.Second
	reconnectAfter      = 3 // consecutive failed checks
)

// Client wraps the Milvus SDK client with health checking and reconnect.
type Client struct {
	cfg     config.MilvusConfig
	logger  logging.Logger
	healthy atomic.Bool
	cancel  context.CancelFunc

	mu           sync.RWMutex
	milvusClient client.Client
}

// NewClient connects to Milvus and starts the background health loop.
func NewClient(cfg config.MilvusConfig, logger logging.Logger) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeValidation, "milvus address is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	mc, err := connect(ctx, cfg)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, errors.ErrCodeVectorStore, "failed to create milvus client")
	}

	c := &Client{
		cfg:          cfg,
		logger:       logger,
		cancel:       cancel,
		milvusClient: mc,
	}

	if err := c.CheckHealth(ctx); err != nil {
		_ = c.Close()
		return nil, ErrConnectionFailed
	}

	go c.healthLoop(ctx)

	logger.Info("milvus client connected", logging.String("addr", cfg.Addr))
	return c, nil
}

func connect(ctx context.Context, cfg config.MilvusConfig) (client.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	return milvusNewClient(connectCtx, client.Config{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
	})
}

// CheckHealth pings the cluster and updates the cached health flag.
func (c *Client) CheckHealth(ctx context.Context) error {
	c.mu.RLock()
	mc := c.milvusClient
	c.mu.RUnlock()

	if mc == nil {
		return ErrConnectionFailed
	}
	if _, err := mc.CheckHealth(ctx); err != nil {
		c.healthy.Store(false)
		c.logger.Warn("milvus health check failed", logging.Err(err))
		return ErrUnhealthy
	}
	c.healthy.Store(true)
	return nil
}

// IsHealthy reports the result of the most recent health check.
func (c *Client) IsHealthy() bool { return c.healthy.Load() }

// GetMilvusClient returns the underlying SDK client.
func (c *Client) GetMilvusClient() client.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.milvusClient
}

// Close stops the health loop and releases the connection.
func (c *Client) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.milvusClient != nil {
		c.milvusClient.Close()
	}
	c.logger.Info("milvus client closed")
	return nil
}

func (c *Client) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.CheckHealth(ctx); err != nil {
				failures++
			} else {
				failures = 0
			}

			if failures >= reconnectAfter {
				c.logger.Warn("milvus unhealthy, reconnecting",
					logging.Int("consecutive_failures", failures))
				if err := c.reconnect(ctx); err != nil {
					c.logger.Error("milvus reconnect failed", logging.Err(err))
				} else {
					failures = 0
				}
			}
		}
	}
}

func (c *Client) reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.milvusClient != nil {
		c.milvusClient.Close()
	}
	mc, err := connect(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.milvusClient = mc
	c.logger.Info("milvus client reconnected")
	return nil
}
