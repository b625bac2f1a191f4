package client

import (
	"context"
	"net/url"
	"strconv"
)

// CitationsClient covers the citation graph endpoints.
type CitationsClient struct {
	client *Client
}

// NetworkOptions parametrizes a citation network walk.
type NetworkOptions struct {
	Depth     int
	MaxNodes  int
	Direction string
}

// NetworkNode is one patent in a citation network.
type NetworkNode struct {
	PatentNumber string `json:"patent_number"`
	Title        string `json:"title,omitempty"`
	Level        int    `json:"level"`
	Resolved     bool   `json:"resolved"`
}

// NetworkEdge is one directed citation in a network.  Type is "cites"
// or "cited_by" relative to the walk root.
type NetworkEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// CitationNetwork is a bounded breadth-first citation neighborhood.
// Truncated reports whether the node budget cut the walk short.
type CitationNetwork struct {
	Root      string        `json:"root"`
	Nodes     []NetworkNode `json:"nodes"`
	Edges     []NetworkEdge `json:"edges"`
	Depth     int           `json:"depth"`
	Truncated bool          `json:"truncated"`
}

// CitationStats is the per-patent citation summary.
type CitationStats struct {
	PatentNumber  string  `json:"patent_number"`
	CitedCount    int64   `json:"cited_count"`
	CitedByCount  int64   `json:"cited_by_count"`
	FieldAverage  float64 `json:"field_average"`
	CitationIndex float64 `json:"citation_index"`
}

// RankedPatent is one row of the most-cited ranking.
type RankedPatent struct {
	PatentNumber string `json:"patent_number"`
	CitedByCount int64  `json:"cited_by_count"`
}

// Network walks the citation graph around a patent.
func (cc *CitationsClient) Network(ctx context.Context, patentNumber string, opts NetworkOptions) (*CitationNetwork, error) {
	q := url.Values{}
	if opts.Depth > 0 {
		q.Set("depth", strconv.Itoa(opts.Depth))
	}
	if opts.MaxNodes > 0 {
		q.Set("max_nodes", strconv.Itoa(opts.MaxNodes))
	}
	if opts.Direction != "" {
		q.Set("direction", opts.Direction)
	}

	path := "/api/v1/patents/" + url.PathEscape(patentNumber) + "/citations/network"
	var out CitationNetwork
	if err := cc.client.get(ctx, withQuery(path, q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches the citation summary for one patent.
func (cc *CitationsClient) Stats(ctx context.Context, patentNumber string) (*CitationStats, error) {
	path := "/api/v1/patents/" + url.PathEscape(patentNumber) + "/citations/stats"
	var out CitationStats
	if err := cc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MostCited fetches the top patents by inbound citation count.
func (cc *CitationsClient) MostCited(ctx context.Context, limit int) ([]RankedPatent, error) {
	path := "/api/v1/citations/most-cited"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var out struct {
		Items []RankedPatent `json:"items"`
	}
	if err := cc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
