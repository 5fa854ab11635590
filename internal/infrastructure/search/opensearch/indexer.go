package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

const defaultBulkBatchSize = 500

// catalogMapping is the index mapping for catalog documents.  The code is a
// keyword so prefix filters work; the description is analyzed for full-text
// match.
const catalogMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 1
	},
	"mappings": {
		"properties": {
			"code":             {"type": "keyword"},
			"level":            {"type": "keyword"},
			"description":      {"type": "text", "analyzer": "english"},
			"parent_code":      {"type": "keyword"},
			"parent_groupings": {"type": "text", "analyzer": "english"},
			"base_rate":        {"type": "keyword"},
			"unit_of_quantity": {"type": "keyword"},
			"keywords":         {"type": "keyword"}
		}
	}
}`

// Indexer loads catalog entries into the full-text index.
type Indexer struct {
	client    *Client
	batchSize int
	logger    logging.Logger
}

// NewIndexer constructs an indexer.  A non-positive batch size falls back to
// the default.
func NewIndexer(client *Client, batchSize int, logger logging.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = defaultBulkBatchSize
	}
	return &Indexer{client: client, batchSize: batchSize, logger: logger.Named("indexer")}
}

// EnsureIndex creates the catalog index when it does not exist.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	exists := opensearchapi.IndicesExistsRequest{Index: []string{i.client.Index()}}
	resp, err := exists.Do(ctx, i.client.os)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "index existence check failed")
	}
	resp.Body.Close()
	if resp.StatusCode == 200 {
		return nil
	}

	create := opensearchapi.IndicesCreateRequest{
		Index: i.client.Index(),
		Body:  strings.NewReader(catalogMapping),
	}
	resp, err = create.Do(ctx, i.client.os)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexingFailed, "index creation failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeIndexingFailed, "index creation returned %s", resp.Status())
	}

	i.logger.Info("Catalog index created", logging.String("index", i.client.Index()))
	return nil
}

// IndexEntries bulk-loads catalog entries, replacing documents that share a
// code.  Returns the number of documents indexed.
func (i *Indexer) IndexEntries(ctx context.Context, entries []*catalog.CodeEntry) (int, error) {
	indexed := 0
	for start := 0; start < len(entries); start += i.batchSize {
		end := start + i.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		n, err := i.bulkIndex(ctx, entries[start:end])
		indexed += n
		if err != nil {
			return indexed, err
		}
	}
	i.logger.Info("Catalog entries indexed", logging.Int("count", indexed))
	return indexed, nil
}

func (i *Indexer) bulkIndex(ctx context.Context, entries []*catalog.CodeEntry) (int, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		action := fmt.Sprintf(`{"index":{"_index":%q,"_id":%q}}`, i.client.Index(), e.Code)
		buf.WriteString(action)
		buf.WriteByte('\n')

		doc, err := json.Marshal(documentFromEntry(e))
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode catalog document")
		}
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	req := opensearchapi.BulkRequest{Body: bytes.NewReader(buf.Bytes())}
	resp, err := req.Do(ctx, i.client.os)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeIndexingFailed, "bulk index request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return 0, errors.Newf(errors.ErrCodeIndexingFailed, "bulk index returned %s", resp.Status())
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode bulk response")
	}

	indexed := len(entries)
	if parsed.Errors {
		for _, item := range parsed.Items {
			for _, result := range item {
				if result.Error != nil {
					indexed--
					i.logger.Warn("Document rejected by index",
						logging.Int("status", result.Status),
						logging.String("reason", result.Error.Reason),
					)
				}
			}
		}
	}
	return indexed, nil
}
