package config

import (
	"time"

	"github.com/turtacn/patent-radar/internal/infrastructure/search/milvus"
	"github.com/turtacn/patent-radar/internal/infrastructure/search/opensearch"
	"github.com/turtacn/patent-radar/internal/infrastructure/storage/minio"
)

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultPostgresHost     = "localhost"
	DefaultPostgresPort     = 5432
	DefaultPostgresDatabase = "patradar"
	DefaultPostgresUsername = "patradar"
	DefaultMigrationsPath   = "migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "patradar:"

	DefaultNeo4jURI = "bolt://localhost:7687"

	DefaultOpenSearchAddress = "http://localhost:9200"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "patent-radar"

	DefaultEmbeddingBaseURL = "http://localhost:8100"

	DefaultMetricsNamespace = "patradar"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills unset fields in place.  It runs after unmarshal
// and before Validate, so a zero-value Config validates cleanly.
func ApplyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.Mode == "" {
		c.Server.Mode = DefaultServerMode
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Postgres.Host == "" {
		c.Postgres.Host = DefaultPostgresHost
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = DefaultPostgresPort
	}
	if c.Postgres.Database == "" {
		c.Postgres.Database = DefaultPostgresDatabase
	}
	if c.Postgres.Username == "" {
		c.Postgres.Username = DefaultPostgresUsername
	}
	if c.Postgres.MigrationsPath == "" {
		c.Postgres.MigrationsPath = DefaultMigrationsPath
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if c.Neo4j.URI == "" {
		c.Neo4j.URI = DefaultNeo4jURI
	}

	if len(c.OpenSearch.Addresses) == 0 {
		c.OpenSearch.Addresses = []string{DefaultOpenSearchAddress}
	}
	if c.OpenSearch.Index == "" {
		c.OpenSearch.Index = opensearch.DefaultIndex
	}

	if c.Milvus.Address == "" {
		c.Milvus.Address = "localhost:19530"
	}
	if c.Milvus.Collection == "" {
		c.Milvus.Collection = milvus.DefaultCollection
	}
	if c.Milvus.VectorDim == 0 {
		c.Milvus.VectorDim = milvus.DefaultVectorDim
	}

	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if len(c.Kafka.Producer.Brokers) == 0 {
		c.Kafka.Producer.Brokers = c.Kafka.Brokers
	}
	if len(c.Kafka.Consumer.Brokers) == 0 {
		c.Kafka.Consumer.Brokers = c.Kafka.Brokers
	}
	if c.Kafka.Consumer.GroupID == "" {
		c.Kafka.Consumer.GroupID = DefaultKafkaGroupID
	}

	if c.MinIO.Endpoint == "" {
		c.MinIO.Endpoint = "localhost:9000"
	}
	if c.MinIO.Bucket == "" {
		c.MinIO.Bucket = minio.DefaultBucket
	}

	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = DefaultEmbeddingBaseURL
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
