// Package citation defines the citation graph value objects and the
// persistence port for the patent citation network.
package citation

import "time"

// Citation is a directed edge: the citing patent references the cited one.
// CitedNumber may refer to a patent that is not in the corpus; such numbers
// appear in traversal output as unresolved nodes.
type Citation struct {
	CitingNumber string    `json:"citing_number"`
	CitedNumber  string    `json:"cited_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// EdgeType records which direction of a walk produced an edge.
type EdgeType string

const (
	// EdgeCites points from a patent to a reference it cites.
	EdgeCites EdgeType = "cites"
	// EdgeCitedBy points from a later patent back to the one it cites.
	EdgeCitedBy EdgeType = "cited_by"
)

// GraphNode is a patent in a traversal result.  Level is the BFS distance
// from the root; Resolved is false when the number was only ever seen on the
// cited side of an edge.
type GraphNode struct {
	PatentNumber string `json:"patent_number"`
	Title        string `json:"title,omitempty"`
	Level        int    `json:"level"`
	Resolved     bool   `json:"resolved"`
}

// GraphEdge is a directed edge in a traversal result.
type GraphEdge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
}

// Key returns the dedup key for the edge.
func (e GraphEdge) Key() string {
	return e.Source + "->" + e.Target + ":" + string(e.Type)
}

// Network is the result of a bounded BFS over the citation graph.
type Network struct {
	Root      string      `json:"root"`
	Nodes     []GraphNode `json:"nodes"`
	Edges     []GraphEdge `json:"edges"`
	Depth     int         `json:"depth"`
	Truncated bool        `json:"truncated"`
}

// Stats summarizes a patent's citation position.  CitationIndex is the
// patent's cited-by count relative to the average of its technology field;
// zero when the field average is unavailable.
type Stats struct {
	PatentNumber  string  `json:"patent_number"`
	CitedCount    int64   `json:"cited_count"`
	CitedByCount  int64   `json:"cited_by_count"`
	FieldAverage  float64 `json:"field_average"`
	CitationIndex float64 `json:"citation_index"`
}

// RankedPatent pairs a patent number with its cited-by count, for most-cited
// listings.
type RankedPatent struct {
	PatentNumber string `json:"patent_number"`
	CitedByCount int64  `json:"cited_by_count"`
}
