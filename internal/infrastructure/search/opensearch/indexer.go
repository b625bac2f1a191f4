package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	patentapp "github.com/turtacn/patent-radar/internal/application/patent"
	domain "github.com/turtacn/patent-radar/internal/domain/patent"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

// patentDocument is the indexed projection of a patent record.
type patentDocument struct {
	PatentNumber string   `json:"patent_number"`
	Title        string   `json:"title"`
	Abstract     string   `json:"abstract,omitempty"`
	ClaimsText   string   `json:"claims_text,omitempty"`
	Assignee     string   `json:"assignee,omitempty"`
	Status       string   `json:"status"`
	CPCCodes     []string `json:"cpc_codes,omitempty"`
}

// Indexer writes patent documents into the full-text index.
type Indexer struct {
	client *opensearchapi.Client
	index  string
	logger logging.Logger
}

// NewIndexer constructs a ready-to-use Indexer.
func NewIndexer(client *opensearchapi.Client, index string, logger logging.Logger) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	return &Indexer{client: client, index: index, logger: logger.Named("opensearch_indexer")}
}

var _ patentapp.FulltextIndexer = (*Indexer)(nil)

// Index upserts the patent document keyed by its number.
func (i *Indexer) Index(ctx context.Context, p *domain.Patent) error {
	doc := patentDocument{
		PatentNumber: p.PatentNumber,
		Title:        p.Title,
		Abstract:     p.Abstract,
		ClaimsText:   p.ClaimsText,
		Assignee:     p.Assignee,
		Status:       string(p.Status),
		CPCCodes:     p.CPCCodes,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "failed to marshal patent document")
	}

	if _, err := i.client.Index(ctx, opensearchapi.IndexReq{
		Index:      i.index,
		DocumentID: p.PatentNumber,
		Body:       bytes.NewReader(body),
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeFulltextUnavailable, "failed to index patent")
	}
	return nil
}

// Remove deletes the patent document; a missing document is not an error.
func (i *Indexer) Remove(ctx context.Context, patentNumber string) error {
	resp, err := i.client.Document.Delete(ctx, opensearchapi.DocumentDeleteReq{
		Index:      i.index,
		DocumentID: patentNumber,
	})
	if err != nil {
		if resp != nil && resp.Inspect().Response.StatusCode == 404 {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrCodeFulltextUnavailable, "failed to remove patent document")
	}
	return nil
}
