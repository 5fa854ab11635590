package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

const (
	fieldCode      = "code"
	fieldEmbedding = "embedding"

	defaultCollection   = "hts_descriptions"
	defaultEmbeddingDim = 768
)

// EnsureCollection creates the catalog embedding collection and its index
// when they do not exist, then loads the collection for search.
func (c *Client) EnsureCollection(ctx context.Context) error {
	name := c.collectionName()

	has, err := c.milvus.HasCollection(ctx, name)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSemanticSearchUnavailable, "collection check failed")
	}

	if !has {
		dim := c.cfg.EmbeddingDim
		if dim <= 0 {
			dim = defaultEmbeddingDim
		}
		schema := entity.NewSchema().
			WithName(name).
			WithDescription("Embedded HTS catalog descriptions").
			WithField(entity.NewField().
				WithName(fieldCode).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(10).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().
				WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(dim)))

		if err := c.milvus.CreateCollection(ctx, schema, 1); err != nil {
			return errors.Wrap(err, errors.ErrCodeSemanticSearchUnavailable, "collection creation failed")
		}

		index, err := entity.NewIndexHNSW(entity.COSINE, 16, 200)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSemanticSearchUnavailable, "index construction failed")
		}
		if err := c.milvus.CreateIndex(ctx, name, fieldEmbedding, index, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeSemanticSearchUnavailable, "index creation failed")
		}
		c.logger.Info("Embedding collection created", logging.String("collection", name))
	}

	if err := c.milvus.LoadCollection(ctx, name, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeSemanticSearchUnavailable, "collection load failed")
	}
	return nil
}

// InsertEmbeddings upserts code/vector pairs into the collection.
func (c *Client) InsertEmbeddings(ctx context.Context, codes []string, vectors [][]float32) error {
	if len(codes) != len(vectors) {
		return errors.New(errors.ErrCodeValidation, "codes and vectors length mismatch")
	}
	if len(codes) == 0 {
		return nil
	}

	dim := c.cfg.EmbeddingDim
	if dim <= 0 {
		dim = defaultEmbeddingDim
	}

	codeCol := entity.NewColumnVarChar(fieldCode, codes)
	vecCol := entity.NewColumnFloatVector(fieldEmbedding, dim, vectors)
	if _, err := c.milvus.Upsert(ctx, c.collectionName(), "", codeCol, vecCol); err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexingFailed, "embedding upsert failed")
	}
	return nil
}

func (c *Client) collectionName() string {
	if c.cfg.Collection != "" {
		return c.cfg.Collection
	}
	return defaultCollection
}
