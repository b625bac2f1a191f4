package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "PATRADAR"

// newViper builds a pre-configured viper instance: YAML files, the
// PATRADAR_ env prefix, automatic env binding, and a key replacer that
// maps "." to "_" so nested keys like "postgres.host" resolve to
// PATRADAR_POSTGRES_HOST.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// envKeys are the settings that can be supplied purely through the
// environment.  Viper's Unmarshal only sees env values for keys it
// already knows about, so each one is bound explicitly.
var envKeys = []string{
	"server.port", "server.mode",
	"postgres.host", "postgres.port", "postgres.database",
	"postgres.username", "postgres.password", "postgres.ssl_mode",
	"postgres.migrations_path",
	"redis.addr", "redis.password", "redis.db", "redis.key_prefix",
	"neo4j.uri", "neo4j.username", "neo4j.password", "neo4j.database",
	"opensearch.username", "opensearch.password", "opensearch.index",
	"milvus.address", "milvus.username", "milvus.password",
	"milvus.collection", "milvus.vector_dim",
	"kafka.consumer.group_id",
	"minio.endpoint", "minio.access_key", "minio.secret_key", "minio.bucket",
	"embedding.base_url", "embedding.model",
	"metrics.namespace",
	"log.level", "log.format",
}

// Load reads the YAML file at configPath, merges PATRADAR_* environment
// overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from PATRADAR_* environment
// variables with no config file required.  Preferred for containerised
// deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed
// Config whenever the file changes on disk.  Intended for hot-reloading
// non-critical settings such as log level; callers apply only the safe
// subset at runtime.  A change that fails to parse or validate is
// dropped without invoking the callback.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Callers are expected to have called Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad panics on any load error.  For use in main where a config
// failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
