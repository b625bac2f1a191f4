package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-radar/pkg/errors"
)

const (
	// DefaultCollection is the patent vector collection name.
	DefaultCollection = "patent_vectors"

	// DefaultVectorDim matches the embedding service's output width.
	DefaultVectorDim = 768

	fieldPatentNumber = "patent_number"
	fieldEmbedding    = "embedding"

	maxNumberLength = "64"
	hnswM           = 16
	hnswEfBuild     = 200
)

// EnsureCollection creates the patent vector collection, its HNSW index, and
// loads it into memory.  Existing collections are loaded as-is.
func EnsureCollection(ctx context.Context, c client.Client, collection string, dim int, log logging.Logger) error {
	if collection == "" {
		collection = DefaultCollection
	}
	if dim <= 0 {
		dim = DefaultVectorDim
	}

	has, err := c.HasCollection(ctx, collection)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorUnavailable, "failed to check collection")
	}

	if !has {
		schema := entity.NewSchema().
			WithName(collection).
			WithDescription("patent semantic vectors keyed by normalized number").
			WithField(entity.NewField().
				WithName(fieldPatentNumber).
				WithDataType(entity.FieldTypeVarChar).
				WithTypeParams(entity.TypeParamMaxLength, maxNumberLength).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().
				WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(dim)))

		if err := c.CreateCollection(ctx, schema, 1); err != nil {
			return errors.Wrap(err, errors.ErrCodeVectorUnavailable, "failed to create collection")
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, hnswM, hnswEfBuild)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeVectorUnavailable, "failed to build index definition")
		}
		if err := c.CreateIndex(ctx, collection, fieldEmbedding, idx, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeVectorUnavailable, "failed to create vector index")
		}
		log.Info("created milvus collection",
			logging.String("collection", collection), logging.Int("dim", dim))
	}

	if err := c.LoadCollection(ctx, collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeVectorUnavailable, "failed to load collection")
	}
	return nil
}
