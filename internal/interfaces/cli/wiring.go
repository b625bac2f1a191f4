package cli

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	miniosdk "github.com/minio/minio-go/v7"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"
	redissdk "github.com/redis/go-redis/v9"

	"github.com/turtacn/patent-radar/internal/application/analytics"
	"github.com/turtacn/patent-radar/internal/application/citation"
	"github.com/turtacn/patent-radar/internal/application/lifecycle"
	"github.com/turtacn/patent-radar/internal/application/patent"
	"github.com/turtacn/patent-radar/internal/application/search"
	"github.com/turtacn/patent-radar/internal/config"
	"github.com/turtacn/patent-radar/internal/infrastructure/database/neo4j"
	neo4jrepos "github.com/turtacn/patent-radar/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/patent-radar/internal/infrastructure/database/postgres"
	pgrepos "github.com/turtacn/patent-radar/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/patent-radar/internal/infrastructure/database/redis"
	"github.com/turtacn/patent-radar/internal/infrastructure/embedding"
	"github.com/turtacn/patent-radar/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-radar/internal/infrastructure/search/milvus"
	"github.com/turtacn/patent-radar/internal/infrastructure/search/opensearch"
	"github.com/turtacn/patent-radar/internal/infrastructure/storage/minio"
)

// backends aggregates every live infrastructure connection.
type backends struct {
	pool       *pgxpool.Pool
	redis      *redissdk.Client
	graph      *neo4j.Driver
	opensearch *opensearchapi.Client
	milvus     milvusclient.Client
	minio      *miniosdk.Client
	producer   *kafka.Producer
	embedder   *embedding.Client
	cfg        *config.Config
	logger     logging.Logger
	closers    []func()
}

// close releases connections in reverse acquisition order.
func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends connects every backing store and bootstraps the search index
// and vector collection.  On error the connections opened so far are closed.
func openBackends(ctx context.Context, cfg *config.Config, logger logging.Logger) (*backends, error) {
	b := &backends{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			b.close()
		}
	}()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.Config, logger)
	if err != nil {
		return nil, err
	}
	b.pool = pool
	b.closers = append(b.closers, pool.Close)

	redisClient, err := redis.NewClient(ctx, cfg.Redis.Config, logger)
	if err != nil {
		return nil, err
	}
	b.redis = redisClient
	b.closers = append(b.closers, func() { _ = redisClient.Close() })

	graphDriver, err := neo4j.NewDriver(ctx, cfg.Neo4j, logger)
	if err != nil {
		return nil, err
	}
	b.graph = graphDriver
	b.closers = append(b.closers, func() { _ = graphDriver.Close(context.Background()) })

	osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
	if err != nil {
		return nil, err
	}
	if err := opensearch.EnsureIndex(ctx, osClient, cfg.OpenSearch.Index, logger); err != nil {
		return nil, err
	}
	b.opensearch = osClient

	milvusClient, err := milvus.NewClient(ctx, cfg.Milvus, logger)
	if err != nil {
		return nil, err
	}
	b.milvus = milvusClient
	b.closers = append(b.closers, func() { _ = milvusClient.Close() })
	if err := milvus.EnsureCollection(ctx, milvusClient, cfg.Milvus.Collection, cfg.Milvus.VectorDim, logger); err != nil {
		return nil, err
	}

	minioClient, err := minio.NewClient(ctx, cfg.MinIO, logger)
	if err != nil {
		return nil, err
	}
	b.minio = minioClient

	producer := kafka.NewProducer(cfg.Kafka.Producer, logger)
	b.producer = producer
	b.closers = append(b.closers, func() { _ = producer.Close() })

	b.embedder = embedding.NewClient(cfg.Embedding, logger)

	ok = true
	return b, nil
}

// services aggregates the application layer built over a backends set.
type services struct {
	patents   patent.Service
	search    search.Service
	lifecycle lifecycle.Service
	analytics analytics.Service
	citations citation.Service
}

// buildServices wires the repositories, providers, and application services.
func buildServices(b *backends) (*services, error) {
	cfg, logger := b.cfg, b.logger

	patentRepo := pgrepos.NewPatentRepository(b.pool, logger)
	feeRepo := pgrepos.NewFeeRepository(b.pool, logger)
	statsProvider := pgrepos.NewStatsProvider(b.pool, logger)
	aggregateProvider := pgrepos.NewAggregateProvider(b.pool, logger)
	fieldAverages := pgrepos.NewFieldAverages(b.pool)
	citationRepo := neo4jrepos.NewCitationRepository(b.graph, logger)

	fulltextSearcher := opensearch.NewSearcher(b.opensearch, cfg.OpenSearch.Index, logger)
	fulltextIndexer := opensearch.NewIndexer(b.opensearch, cfg.OpenSearch.Index, logger)
	vectorStore := milvus.NewVectorStore(b.milvus, cfg.Milvus.Collection, logger)
	cache := redis.NewCache(b.redis, logger, cfg.Redis.KeyPrefix)
	archive := minio.NewArchive(b.minio, cfg.MinIO.Bucket, logger)

	lifecycleSvc, err := lifecycle.NewService(lifecycle.Deps{
		Patents: patentRepo,
		Fees:    feeRepo,
		Events:  b.producer,
		StatsP:  statsProvider,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	citationSvc, err := citation.NewService(citation.Deps{
		Patents: patentRepo,
		Graph:   citationRepo,
		Fields:  fieldAverages,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	searchSvc, err := search.NewService(search.Deps{
		Patents:  patentRepo,
		Fulltext: fulltextSearcher,
		Vector:   vectorStore,
		Embedder: b.embedder,
		Cache:    cache,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	analyticsSvc, err := analytics.NewService(analytics.Deps{
		Provider: aggregateProvider,
		Archive:  archive,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	patentSvc, err := patent.NewService(patent.Deps{
		Patents:   patentRepo,
		Lifecycle: lifecycleSvc,
		Citations: citationSvc,
		Fulltext:  fulltextIndexer,
		Vector:    vectorStore,
		Embedder:  b.embedder,
		Events:    b.producer,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &services{
		patents:   patentSvc,
		search:    searchSvc,
		lifecycle: lifecycleSvc,
		analytics: analyticsSvc,
		citations: citationSvc,
	}, nil
}
