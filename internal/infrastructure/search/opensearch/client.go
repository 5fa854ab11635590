// Package opensearch backs catalog keyword search with a full-text index.
// The searcher decorates the PostgreSQL catalog repository: keyword queries
// go to the index, everything else passes through, and index failures fall
// back to the repository's own search.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// DefaultIndex is the catalog index name when none is configured.
const DefaultIndex = "hts-catalog"

// Client manages the OpenSearch connection.
type Client struct {
	os     *opensearch.Client
	index  string
	logger logging.Logger
}

// NewClient creates a client and verifies cluster reachability.
func NewClient(ctx context.Context, cfg config.OpenSearchConfig, logger logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "opensearch addresses not configured")
	}

	transport := &http.Transport{MaxIdleConnsPerHost: 10}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.User,
		Password:     cfg.Password,
		MaxRetries:   3,
		RetryBackoff: func(int) time.Duration { return 100 * time.Millisecond },
		Transport:    transport,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to create opensearch client")
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}

	client := &Client{os: osClient, index: index, logger: logger}
	if err := client.HealthCheck(ctx); err != nil {
		return nil, err
	}

	logger.Info("Connected to OpenSearch",
		logging.Strings("addresses", cfg.Addresses),
		logging.String("index", index),
	)
	return client, nil
}

// Index returns the configured catalog index name.
func (c *Client) Index() string {
	return c.index
}

// HealthCheck pings the cluster.
func (c *Client) HealthCheck(ctx context.Context) error {
	req := opensearchapi.PingRequest{}
	resp, err := req.Do(ctx, c.os)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "opensearch ping failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeExternalService, "opensearch ping returned %s", resp.Status())
	}
	return nil
}
