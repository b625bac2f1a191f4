package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/patent-radar/internal/application/search"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

// Searcher runs BM25 queries over the patents index.  Document IDs are
// normalized patent numbers, so hits come back without source parsing.
type Searcher struct {
	client *opensearchapi.Client
	index  string
	logger logging.Logger
}

// NewSearcher constructs a ready-to-use Searcher.
func NewSearcher(client *opensearchapi.Client, index string, logger logging.Logger) *Searcher {
	if index == "" {
		index = DefaultIndex
	}
	return &Searcher{client: client, index: index, logger: logger.Named("opensearch")}
}

var _ search.FulltextProvider = (*Searcher)(nil)

// Search returns up to limit patent numbers ranked by BM25 relevance.
func (s *Searcher) Search(ctx context.Context, query string, filter search.ProviderFilter, limit int) ([]string, error) {
	body, err := json.Marshal(buildQuery(query, filter, limit))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal search query")
	}

	resp, err := s.client.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{s.index},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeFulltextUnavailable, "fulltext search failed")
	}

	numbers := make([]string, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		numbers = append(numbers, hit.ID)
	}
	return numbers, nil
}

// buildQuery assembles the bool query: a multi_match over the text fields
// plus keyword filters.  Title matches weigh double.
func buildQuery(query string, filter search.ProviderFilter, limit int) map[string]interface{} {
	must := map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":  query,
			"fields": []string{"title^2", "abstract", "claims_text"},
		},
	}

	var filters []map[string]interface{}
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, st := range filter.Status {
			statuses[i] = string(st)
		}
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"status": statuses},
		})
	}
	if filter.CPCPrefix != "" {
		filters = append(filters, map[string]interface{}{
			"prefix": map[string]interface{}{"cpc_codes": filter.CPCPrefix},
		})
	}
	if len(filter.Assignees) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"assignee": filter.Assignees},
		})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	return map[string]interface{}{
		"size":    limit,
		"_source": false,
		"query":   map[string]interface{}{"bool": boolQuery},
	}
}
