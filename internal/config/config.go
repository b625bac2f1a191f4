// Package config defines the configuration structures for the
// patent-radar service.  No I/O or parsing logic lives here, only plain
// data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/patent-radar/internal/infrastructure/database/neo4j"
	"github.com/turtacn/patent-radar/internal/infrastructure/database/postgres"
	"github.com/turtacn/patent-radar/internal/infrastructure/database/redis"
	"github.com/turtacn/patent-radar/internal/infrastructure/embedding"
	"github.com/turtacn/patent-radar/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent-radar/internal/infrastructure/search/milvus"
	"github.com/turtacn/patent-radar/internal/infrastructure/search/opensearch"
	"github.com/turtacn/patent-radar/internal/infrastructure/storage/minio"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PostgresConfig extends the pool settings with the migrations location.
type PostgresConfig struct {
	postgres.Config `mapstructure:",squash"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

// RedisConfig extends the client settings with the cache key prefix.
type RedisConfig struct {
	redis.Config `mapstructure:",squash"`
	KeyPrefix    string `mapstructure:"key_prefix"`
}

// KafkaConfig groups producer and consumer settings.  Brokers set at
// this level are propagated to both sides by ApplyDefaults.
type KafkaConfig struct {
	Brokers  []string             `mapstructure:"brokers"`
	Producer kafka.Config         `mapstructure:"producer"`
	Consumer kafka.ConsumerConfig `mapstructure:"consumer"`
}

// Config is the root configuration for the service.  Infrastructure
// sections reuse the adapter packages' own config types so the wiring
// in main stays a straight pass-through.
type Config struct {
	Server     ServerConfig               `mapstructure:"server"`
	Postgres   PostgresConfig             `mapstructure:"postgres"`
	Redis      RedisConfig                `mapstructure:"redis"`
	Neo4j      neo4j.Config               `mapstructure:"neo4j"`
	OpenSearch opensearch.Config          `mapstructure:"opensearch"`
	Milvus     milvus.Config              `mapstructure:"milvus"`
	Kafka      KafkaConfig                `mapstructure:"kafka"`
	MinIO      minio.Config               `mapstructure:"minio"`
	Embedding  embedding.Config           `mapstructure:"embedding"`
	Metrics    prometheus.CollectorConfig `mapstructure:"metrics"`
	Log        logging.LogConfig          `mapstructure:"log"`
}

// Validate checks the fully-populated Config.  It returns the first
// error encountered; callers should treat any error as fatal.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Postgres.Host == "" {
		return fmt.Errorf("config: postgres.host is required")
	}
	if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
		return fmt.Errorf("config: postgres.port %d is out of range [1, 65535]", c.Postgres.Port)
	}
	if c.Postgres.Database == "" {
		return fmt.Errorf("config: postgres.database is required")
	}
	if c.Postgres.Username == "" {
		return fmt.Errorf("config: postgres.username is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if c.Neo4j.URI == "" {
		return fmt.Errorf("config: neo4j.uri is required")
	}
	if len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}
	if c.Milvus.Address == "" {
		return fmt.Errorf("config: milvus.address is required")
	}
	if c.Milvus.VectorDim < 1 {
		return fmt.Errorf("config: milvus.vector_dim must be >= 1, got %d", c.Milvus.VectorDim)
	}

	if len(c.Kafka.Producer.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.Consumer.GroupID == "" {
		return fmt.Errorf("config: kafka.consumer.group_id is required")
	}

	if c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required")
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("config: embedding.base_url is required")
	}
	if c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
