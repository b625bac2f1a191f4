// Package opensearch implements the BM25 full-text retrieval ports on an
// OpenSearch cluster.
package opensearch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v3"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-radar/pkg/errors"
)

// DefaultIndex is the patents full-text index name.
const DefaultIndex = "patents"

// patentMapping is the index schema.  Patent numbers double as document IDs;
// text fields use the english analyzer so stemming matches the corpus.
const patentMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 1
  },
  "mappings": {
    "properties": {
      "patent_number": {"type": "keyword"},
      "title":         {"type": "text", "analyzer": "english"},
      "abstract":      {"type": "text", "analyzer": "english"},
      "claims_text":   {"type": "text", "analyzer": "english"},
      "assignee":      {"type": "keyword"},
      "status":        {"type": "keyword"},
      "cpc_codes":     {"type": "keyword"}
    }
  }
}`

// Config holds the OpenSearch connection settings.
type Config struct {
	Addresses      []string      `mapstructure:"addresses"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	Index          string        `mapstructure:"index"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

// NewClient opens an OpenSearch API client and verifies the cluster responds.
func NewClient(ctx context.Context, cfg Config, log logging.Logger) (*opensearchapi.Client, error) {
	if len(cfg.Addresses) == 0 {
		cfg.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	client, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses:  cfg.Addresses,
			Username:   cfg.Username,
			Password:   cfg.Password,
			MaxRetries: cfg.MaxRetries,
			Transport: &http.Transport{
				ResponseHeaderTimeout: cfg.RequestTimeout,
			},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFulltextUnavailable, "failed to create opensearch client")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx, nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFulltextUnavailable, "opensearch connection failed")
	}

	log.Info("connected to opensearch",
		logging.String("addresses", strings.Join(cfg.Addresses, ",")))
	return client, nil
}

// EnsureIndex creates the patents index with its mapping when missing.
func EnsureIndex(ctx context.Context, client *opensearchapi.Client, index string, log logging.Logger) error {
	if index == "" {
		index = DefaultIndex
	}

	existsResp, err := client.Indices.Exists(ctx, opensearchapi.IndicesExistsReq{Indices: []string{index}})
	if err == nil && existsResp != nil && existsResp.StatusCode == http.StatusOK {
		return nil
	}

	if _, err := client.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: index,
		Body:  strings.NewReader(patentMapping),
	}); err != nil {
		return errors.Wrap(err, errors.ErrCodeFulltextUnavailable, "failed to create patents index")
	}

	log.Info("created opensearch index", logging.String("index", index))
	return nil
}
