// Package milvus implements the semantic-similarity collaborator over a
// Milvus vector collection of embedded catalog descriptions.
package milvus

import (
	"context"
	"sync"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

const defaultConnectTimeout = 10 * time.Second

// newMilvusClient is swapped out in tests.
var newMilvusClient = client.NewClient

// Client manages the Milvus connection.
type Client struct {
	milvus client.Client
	cfg    config.MilvusConfig
	logger logging.Logger

	closeOnce sync.Once
}

// NewClient connects to Milvus.
func NewClient(ctx context.Context, cfg config.MilvusConfig, logger logging.Logger) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeValidation, "milvus address not configured")
	}

	connectCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	milvusClient, err := newMilvusClient(connectCtx, client.Config{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSemanticSearchUnavailable, "milvus connection failed")
	}

	logger.Info("Connected to Milvus",
		logging.String("addr", cfg.Addr),
		logging.String("collection", cfg.Collection),
	)
	return &Client{milvus: milvusClient, cfg: cfg, logger: logger}, nil
}

// Raw exposes the underlying SDK client.
func (c *Client) Raw() client.Client {
	return c.milvus
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if err := c.milvus.Close(); err != nil {
			c.logger.Warn("Milvus close failed", logging.Err(err))
		}
		c.logger.Info("Milvus client closed")
	})
}
