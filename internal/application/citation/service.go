// Package citation implements the citation graph application service: the
// bounded breadth-first network walker, per-patent citation statistics, and
// most-cited rankings.
package citation

import (
	"context"
	"fmt"
	"sort"

	domain "github.com/turtacn/patent-radar/internal/domain/citation"
	"github.com/turtacn/patent-radar/internal/domain/patent"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

const (
	defaultDepth    = 2
	maxDepth        = 5
	defaultMaxNodes = 100
	maxNodeBudget   = 500
	// fanOut caps how many neighbors each node contributes per direction.
	fanOut = 20

	defaultMostCitedLimit = 10
	maxMostCitedLimit     = 100

	// fieldPrefixLen truncates the root's classification code for the field
	// average used by the citation index.
	fieldPrefixLen = 4
)

// NetworkRequest parametrizes a graph walk.
type NetworkRequest struct {
	PatentNumber string
	Depth        int
	MaxNodes     int
	Direction    ptypes.CitationDirection
}

// FieldAverageProvider supplies the mean cited-by count across patents
// sharing a classification prefix, implemented by the postgres adapter.
type FieldAverageProvider interface {
	AverageCitedBy(ctx context.Context, cpcPrefix string) (float64, error)
}

// Service is the citation application service.
type Service interface {
	Network(ctx context.Context, req NetworkRequest) (*domain.Network, error)
	Stats(ctx context.Context, patentNumber string) (*domain.Stats, error)
	MostCited(ctx context.Context, limit int) ([]domain.RankedPatent, error)

	// RecordCitations ingests a patent's reference list into the graph,
	// dropping self-references and duplicates.
	RecordCitations(ctx context.Context, citingNumber string, citedNumbers []string) error
}

// Deps carries the constructor dependencies for the citation service.
// Fields is optional; without it the citation index reports zero.
type Deps struct {
	Patents patent.Repository
	Graph   domain.Repository
	Fields  FieldAverageProvider
	Logger  logging.Logger
}

type serviceImpl struct {
	patents patent.Repository
	graph   domain.Repository
	fields  FieldAverageProvider
	logger  logging.Logger
}

var _ Service = (*serviceImpl)(nil)

// NewService constructs the citation service.
func NewService(d Deps) (Service, error) {
	if d.Patents == nil || d.Graph == nil {
		return nil, appErrors.Internal("citation service requires patent repository and graph repository")
	}
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		patents: d.Patents,
		graph:   d.Graph,
		fields:  d.Fields,
		logger:  d.Logger.Named("citation"),
	}, nil
}

func (s *serviceImpl) Network(ctx context.Context, req NetworkRequest) (*domain.Network, error) {
	number := patent.NormalizePatentNumber(req.PatentNumber)
	if number == "" {
		return nil, appErrors.InvalidParam("patent number must not be empty")
	}
	if req.Depth == 0 {
		req.Depth = defaultDepth
	}
	if req.Depth < 1 || req.Depth > maxDepth {
		return nil, appErrors.New(appErrors.ErrCodeCitationDepthInvalid,
			fmt.Sprintf("depth must be between 1 and %d", maxDepth))
	}
	if req.MaxNodes == 0 {
		req.MaxNodes = defaultMaxNodes
	}
	if req.MaxNodes < 1 || req.MaxNodes > maxNodeBudget {
		return nil, appErrors.InvalidParam(fmt.Sprintf("max nodes must be between 1 and %d", maxNodeBudget))
	}
	if req.Direction == "" {
		req.Direction = ptypes.CitationBoth
	}
	if !req.Direction.IsValid() {
		return nil, appErrors.InvalidParam("invalid citation direction")
	}

	root, err := s.patents.FindByNumber(ctx, number)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil, appErrors.New(appErrors.ErrCodeCitationRootNotFound, "patent not found in citation graph").
				WithDetail("patent_number=" + number)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to load root patent")
	}
	if root == nil {
		return nil, appErrors.New(appErrors.ErrCodeCitationRootNotFound, "patent not found in citation graph").
			WithDetail("patent_number=" + number)
	}

	return s.walk(ctx, root, req)
}

// walk runs the bounded BFS.  The node budget is checked before expanding
// each level and again before admitting each discovered node; unresolved
// numbers become terminal nodes that are never enqueued.
func (s *serviceImpl) walk(ctx context.Context, root *patent.Patent, req NetworkRequest) (*domain.Network, error) {
	nodes := map[string]domain.GraphNode{
		root.PatentNumber: {PatentNumber: root.PatentNumber, Title: root.Title, Level: 0, Resolved: true},
	}
	edges := map[string]domain.GraphEdge{}
	frontier := []string{root.PatentNumber}
	truncated := false

levels:
	for level := 0; level < req.Depth && len(frontier) > 0; level++ {
		if len(nodes) >= req.MaxNodes {
			truncated = true
			break
		}

		var candidateEdges []domain.GraphEdge
		for _, number := range frontier {
			if req.Direction != ptypes.CitationBackward {
				cited, err := s.graph.Cited(ctx, number, fanOut)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to expand cited references")
				}
				for _, c := range cited {
					candidateEdges = append(candidateEdges, domain.GraphEdge{Source: number, Target: c, Type: domain.EdgeCites})
				}
			}
			if req.Direction != ptypes.CitationForward {
				citers, err := s.graph.CitedBy(ctx, number, fanOut)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to expand citing patents")
				}
				for _, c := range citers {
					candidateEdges = append(candidateEdges, domain.GraphEdge{Source: c, Target: number, Type: domain.EdgeCitedBy})
				}
			}
		}

		var discovered []string
		seen := map[string]bool{}
		for _, e := range candidateEdges {
			for _, endpoint := range []string{e.Source, e.Target} {
				if _, known := nodes[endpoint]; !known && !seen[endpoint] {
					seen[endpoint] = true
					discovered = append(discovered, endpoint)
				}
			}
		}

		records, err := s.patents.FindByNumbers(ctx, discovered)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to resolve discovered patents")
		}
		resolved := make(map[string]*patent.Patent, len(records))
		for _, r := range records {
			resolved[r.PatentNumber] = r
		}

		var next []string
		for _, number := range discovered {
			if len(nodes) >= req.MaxNodes {
				truncated = true
				break levels
			}
			node := domain.GraphNode{PatentNumber: number, Level: level + 1}
			if r, ok := resolved[number]; ok {
				node.Title = r.Title
				node.Resolved = true
				next = append(next, number)
			}
			nodes[number] = node
		}

		// Keep only edges whose endpoints made it into the node set.
		for _, e := range candidateEdges {
			if _, ok := nodes[e.Source]; !ok {
				continue
			}
			if _, ok := nodes[e.Target]; !ok {
				continue
			}
			edges[e.Key()] = e
		}

		frontier = next
	}

	network := &domain.Network{
		Root:      root.PatentNumber,
		Depth:     req.Depth,
		Truncated: truncated,
		Nodes:     make([]domain.GraphNode, 0, len(nodes)),
		Edges:     make([]domain.GraphEdge, 0, len(edges)),
	}
	for _, n := range nodes {
		network.Nodes = append(network.Nodes, n)
	}
	sort.Slice(network.Nodes, func(i, j int) bool {
		if network.Nodes[i].Level != network.Nodes[j].Level {
			return network.Nodes[i].Level < network.Nodes[j].Level
		}
		return network.Nodes[i].PatentNumber < network.Nodes[j].PatentNumber
	})
	for _, e := range edges {
		network.Edges = append(network.Edges, e)
	}
	sort.Slice(network.Edges, func(i, j int) bool {
		return network.Edges[i].Key() < network.Edges[j].Key()
	})
	return network, nil
}

func (s *serviceImpl) Stats(ctx context.Context, patentNumber string) (*domain.Stats, error) {
	number := patent.NormalizePatentNumber(patentNumber)
	if number == "" {
		return nil, appErrors.InvalidParam("patent number must not be empty")
	}

	p, err := s.patents.FindByNumber(ctx, number)
	if err != nil {
		if appErrors.IsNotFound(err) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to load patent")
	}
	if p == nil {
		return nil, appErrors.New(appErrors.CodePatentNotFound, "patent not found").
			WithDetail("patent_number=" + number)
	}

	cited, citedBy, err := s.graph.Counts(ctx, number)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to count citations")
	}

	stats := &domain.Stats{
		PatentNumber: number,
		CitedCount:   cited,
		CitedByCount: citedBy,
	}
	if prefix := fieldPrefix(p); prefix != "" && s.fields != nil {
		avg, err := s.fields.AverageCitedBy(ctx, prefix)
		if err != nil {
			s.logger.Warn("field average unavailable",
				logging.String("patent_number", number),
				logging.String("cpc_prefix", prefix),
				logging.Err(err),
			)
		} else if avg > 0 {
			stats.FieldAverage = avg
			stats.CitationIndex = float64(citedBy) / avg
		}
	}
	return stats, nil
}

func (s *serviceImpl) MostCited(ctx context.Context, limit int) ([]domain.RankedPatent, error) {
	if limit == 0 {
		limit = defaultMostCitedLimit
	}
	if limit < 1 || limit > maxMostCitedLimit {
		return nil, appErrors.InvalidParam(fmt.Sprintf("limit must be between 1 and %d", maxMostCitedLimit))
	}
	ranked, err := s.graph.MostCited(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "most-cited query failed")
	}
	return ranked, nil
}

func (s *serviceImpl) RecordCitations(ctx context.Context, citingNumber string, citedNumbers []string) error {
	citing := patent.NormalizePatentNumber(citingNumber)
	if citing == "" {
		return appErrors.InvalidParam("citing patent number must not be empty")
	}

	unique := map[string]bool{}
	citations := make([]domain.Citation, 0, len(citedNumbers))
	nodeNumbers := []string{citing}
	for _, raw := range citedNumbers {
		cited := patent.NormalizePatentNumber(raw)
		if cited == "" || cited == citing || unique[cited] {
			continue
		}
		unique[cited] = true
		nodeNumbers = append(nodeNumbers, cited)
		citations = append(citations, domain.Citation{CitingNumber: citing, CitedNumber: cited})
	}
	if len(citations) == 0 {
		return s.graph.EnsureNode(ctx, citing)
	}

	if err := s.graph.BatchEnsureNodes(ctx, nodeNumbers); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to ensure citation nodes")
	}
	if err := s.graph.BatchCreateCitations(ctx, citations); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCitationGraphFailed, "failed to record citations")
	}
	return nil
}

// fieldPrefix derives the technology-field prefix from the patent's first
// classification code.
func fieldPrefix(p *patent.Patent) string {
	if len(p.CPCCodes) == 0 {
		return ""
	}
	code := p.CPCCodes[0]
	if len(code) <= fieldPrefixLen {
		return code
	}
	return code[:fieldPrefixLen]
}
