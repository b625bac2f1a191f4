package milvus

import (
	"context"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	patentapp "github.com/turtacn/patent-radar/internal/application/patent"
	"github.com/turtacn/patent-radar/internal/application/search"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

const searchEf = 64

// VectorStore runs nearest-neighbor queries and upserts over the patent
// vector collection.  The collection only holds numbers and vectors, so
// provider filters are left for the full-text leg.
type VectorStore struct {
	client     client.Client
	collection string
	logger     logging.Logger
}

// NewVectorStore constructs a ready-to-use VectorStore.
func NewVectorStore(c client.Client, collection string, logger logging.Logger) *VectorStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &VectorStore{client: c, collection: collection, logger: logger.Named("milvus")}
}

var (
	_ search.VectorProvider   = (*VectorStore)(nil)
	_ patentapp.VectorIndexer = (*VectorStore)(nil)
)

// Search returns up to limit patent numbers ordered by cosine similarity.
func (s *VectorStore) Search(ctx context.Context, vector []float32, _ search.ProviderFilter, limit int) ([]string, error) {
	sp, err := entity.NewIndexHNSWSearchParam(searchEf)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeVectorUnavailable, "failed to build search params")
	}

	results, err := s.client.Search(ctx, s.collection, nil, "",
		[]string{fieldPatentNumber},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding, entity.COSINE, limit, sp)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeVectorUnavailable, "vector search failed")
	}

	var numbers []string
	for _, result := range results {
		col, ok := result.IDs.(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		numbers = append(numbers, col.Data()...)
	}
	return numbers, nil
}

// Upsert stores the vector keyed by patent number.
func (s *VectorStore) Upsert(ctx context.Context, patentNumber string, vector []float32) error {
	numberCol := entity.NewColumnVarChar(fieldPatentNumber, []string{patentNumber})
	vectorCol := entity.NewColumnFloatVector(fieldEmbedding, len(vector), [][]float32{vector})

	if _, err := s.client.Upsert(ctx, s.collection, "", numberCol, vectorCol); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeVectorUnavailable, "vector upsert failed")
	}
	return nil
}
