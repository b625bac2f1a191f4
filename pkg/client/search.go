package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// SearchClient covers the search endpoint.
type SearchClient struct {
	client *Client
}

// SearchOptions parametrizes a query.  Mode is one of "fulltext",
// "semantic", or "hybrid" (the default).
type SearchOptions struct {
	Query     string
	Mode      string
	Status    []string
	CPCPrefix string
	Assignees []string
	Page      int
	PageSize  int
}

// SearchResult is one ranked hit.
type SearchResult struct {
	PatentNumber    string  `json:"patent_number"`
	Title           string  `json:"title,omitempty"`
	Abstract        string  `json:"abstract,omitempty"`
	Assignee        string  `json:"assignee,omitempty"`
	Status          string  `json:"status,omitempty"`
	Score           float64 `json:"score"`
	MatchedSemantic bool    `json:"matched_semantic"`
	MatchedFulltext bool    `json:"matched_fulltext"`
}

// SearchResponse is a ranked result page.
type SearchResponse struct {
	Items    []SearchResult `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Mode     string         `json:"mode"`
}

// Query runs a search.
func (sc *SearchClient) Query(ctx context.Context, opts SearchOptions) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("q", opts.Query)
	if opts.Mode != "" {
		q.Set("mode", opts.Mode)
	}
	if len(opts.Status) > 0 {
		q.Set("status", strings.Join(opts.Status, ","))
	}
	if opts.CPCPrefix != "" {
		q.Set("cpc_prefix", opts.CPCPrefix)
	}
	if len(opts.Assignees) > 0 {
		q.Set("assignee", strings.Join(opts.Assignees, ","))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}

	var out SearchResponse
	if err := sc.client.get(ctx, "/api/v1/search?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
