package citation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/patent-radar/internal/domain/citation"
	"github.com/turtacn/patent-radar/internal/domain/patent"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// stubGraph is an in-memory citation.Repository.
type stubGraph struct {
	citedOf  map[string][]string
	citersOf map[string][]string
	ranked   []domain.RankedPatent

	ensured   []string
	citations []domain.Citation
}

func (g *stubGraph) EnsureNode(_ context.Context, number string) error {
	g.ensured = append(g.ensured, number)
	return nil
}

func (g *stubGraph) BatchEnsureNodes(_ context.Context, numbers []string) error {
	g.ensured = append(g.ensured, numbers...)
	return nil
}

func (g *stubGraph) CreateCitation(_ context.Context, citing, cited string) error {
	g.citations = append(g.citations, domain.Citation{CitingNumber: citing, CitedNumber: cited})
	return nil
}

func (g *stubGraph) BatchCreateCitations(_ context.Context, citations []domain.Citation) error {
	g.citations = append(g.citations, citations...)
	return nil
}

func (g *stubGraph) Cited(_ context.Context, number string, limit int) ([]string, error) {
	return capList(g.citedOf[number], limit), nil
}

func (g *stubGraph) CitedBy(_ context.Context, number string, limit int) ([]string, error) {
	return capList(g.citersOf[number], limit), nil
}

func (g *stubGraph) Counts(_ context.Context, number string) (int64, int64, error) {
	return int64(len(g.citedOf[number])), int64(len(g.citersOf[number])), nil
}

func (g *stubGraph) MostCited(_ context.Context, limit int) ([]domain.RankedPatent, error) {
	return capList(g.ranked, limit), nil
}

func capList[T any](list []T, limit int) []T {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}

// stubPatents is an in-memory patent.Repository covering the methods the
// citation service uses.
type stubPatents struct {
	byNumber map[string]*patent.Patent
}

func newStubPatents(numbers ...string) *stubPatents {
	s := &stubPatents{byNumber: map[string]*patent.Patent{}}
	for _, n := range numbers {
		s.byNumber[n] = &patent.Patent{PatentNumber: n, Title: "Patent " + n}
	}
	return s
}

func (s *stubPatents) Save(_ context.Context, p *patent.Patent) error {
	s.byNumber[p.PatentNumber] = p
	return nil
}

func (s *stubPatents) FindByNumber(_ context.Context, number string) (*patent.Patent, error) {
	if p, ok := s.byNumber[number]; ok {
		return p, nil
	}
	return nil, appErrors.New(appErrors.CodePatentNotFound, "patent not found")
}

func (s *stubPatents) FindByNumbers(_ context.Context, numbers []string) ([]*patent.Patent, error) {
	var out []*patent.Patent
	for _, n := range numbers {
		if p, ok := s.byNumber[n]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPatents) List(_ context.Context, _ patent.ListFilter) ([]*patent.Patent, int64, error) {
	return nil, 0, nil
}

func (s *stubPatents) UpdateLifecycle(_ context.Context, _ string, _ *time.Time, _ ptypes.PatentStatus) error {
	return nil
}

func (s *stubPatents) ListWithoutEmbedding(_ context.Context, _ int) ([]*patent.Patent, error) {
	return nil, nil
}

func (s *stubPatents) CountEmbedded(_ context.Context) (int64, error) {
	return 0, nil
}

func (s *stubPatents) SaveEmbedding(_ context.Context, _ string, _ []float32) error {
	return nil
}

type stubFields struct {
	avg    float64
	prefix string
}

func (f *stubFields) AverageCitedBy(_ context.Context, prefix string) (float64, error) {
	f.prefix = prefix
	return f.avg, nil
}

func newTestService(t *testing.T, d Deps) Service {
	t.Helper()
	svc, err := NewService(d)
	require.NoError(t, err)
	return svc
}

func TestNetworkWalk(t *testing.T) {
	t.Parallel()

	graph := &stubGraph{
		citedOf: map[string][]string{
			"US1000001A": {"US1000002A", "US9999999A"},
			"US1000002A": {"US1000004A"},
		},
		citersOf: map[string][]string{
			"US1000001A": {"US1000003A"},
		},
	}
	patents := newStubPatents("US1000001A", "US1000002A", "US1000003A", "US1000004A")
	svc := newTestService(t, Deps{Patents: patents, Graph: graph})

	network, err := svc.Network(context.Background(), NetworkRequest{PatentNumber: "US1000001A", Depth: 2})
	require.NoError(t, err)

	assert.Equal(t, "US1000001A", network.Root)
	assert.False(t, network.Truncated)

	byNumber := map[string]domain.GraphNode{}
	for _, n := range network.Nodes {
		byNumber[n.PatentNumber] = n
	}
	require.Len(t, byNumber, 5)

	assert.Equal(t, 0, byNumber["US1000001A"].Level)
	assert.Equal(t, 1, byNumber["US1000002A"].Level)
	assert.Equal(t, 1, byNumber["US1000003A"].Level)
	assert.Equal(t, 2, byNumber["US1000004A"].Level)

	// The unindexed reference shows up as a terminal, unresolved node.
	unresolved := byNumber["US9999999A"]
	assert.False(t, unresolved.Resolved)
	assert.Empty(t, unresolved.Title)

	wantEdges := []domain.GraphEdge{
		{Source: "US1000001A", Target: "US1000002A", Type: domain.EdgeCites},
		{Source: "US1000001A", Target: "US9999999A", Type: domain.EdgeCites},
		{Source: "US1000002A", Target: "US1000004A", Type: domain.EdgeCites},
		{Source: "US1000003A", Target: "US1000001A", Type: domain.EdgeCitedBy},
	}
	assert.ElementsMatch(t, wantEdges, network.Edges)
}

func TestNetworkDepthOne(t *testing.T) {
	t.Parallel()

	graph := &stubGraph{
		citedOf: map[string][]string{
			"US1000001A": {"US1000002A"},
			"US1000002A": {"US1000004A"},
		},
	}
	patents := newStubPatents("US1000001A", "US1000002A", "US1000004A")
	svc := newTestService(t, Deps{Patents: patents, Graph: graph})

	network, err := svc.Network(context.Background(), NetworkRequest{PatentNumber: "US1000001A", Depth: 1})
	require.NoError(t, err)
	require.Len(t, network.Nodes, 2)
	for _, n := range network.Nodes {
		assert.NotEqual(t, "US1000004A", n.PatentNumber)
	}
}

func TestNetworkNodeBudget(t *testing.T) {
	t.Parallel()

	graph := &stubGraph{
		citedOf: map[string][]string{
			"US1000001A": {"US1000002A", "US1000003A", "US1000004A", "US1000005A"},
		},
	}
	patents := newStubPatents("US1000001A", "US1000002A", "US1000003A", "US1000004A", "US1000005A")
	svc := newTestService(t, Deps{Patents: patents, Graph: graph})

	network, err := svc.Network(context.Background(), NetworkRequest{
		PatentNumber: "US1000001A",
		Depth:        2,
		MaxNodes:     3,
	})
	require.NoError(t, err)
	assert.True(t, network.Truncated)
	assert.Len(t, network.Nodes, 3)
}

func TestNetworkDirectionFilter(t *testing.T) {
	t.Parallel()

	graph := &stubGraph{
		citedOf:  map[string][]string{"US1000001A": {"US1000002A"}},
		citersOf: map[string][]string{"US1000001A": {"US1000003A"}},
	}
	patents := newStubPatents("US1000001A", "US1000002A", "US1000003A")
	svc := newTestService(t, Deps{Patents: patents, Graph: graph})

	network, err := svc.Network(context.Background(), NetworkRequest{
		PatentNumber: "US1000001A",
		Depth:        1,
		Direction:    ptypes.CitationForward,
	})
	require.NoError(t, err)
	require.Len(t, network.Edges, 1)
	assert.Equal(t, domain.EdgeCites, network.Edges[0].Type)
}

func TestNetworkValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, Deps{Patents: newStubPatents(), Graph: &stubGraph{}})

	t.Run("root not found", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Network(context.Background(), NetworkRequest{PatentNumber: "US7777777A"})
		require.Error(t, err)
		assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeCitationRootNotFound))
	})

	t.Run("depth out of range", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Network(context.Background(), NetworkRequest{PatentNumber: "US1000001A", Depth: 9})
		require.Error(t, err)
		assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeCitationDepthInvalid))
	})

	t.Run("empty number", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Network(context.Background(), NetworkRequest{})
		require.Error(t, err)
		assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidParam))
	})
}

func TestStats(t *testing.T) {
	t.Parallel()

	graph := &stubGraph{
		citedOf:  map[string][]string{"US1000001A": {"US1", "US2", "US3"}},
		citersOf: map[string][]string{"US1000001A": {"US4", "US5", "US6", "US7", "US8", "US9"}},
	}
	patents := newStubPatents("US1000001A")
	patents.byNumber["US1000001A"].CPCCodes = []string{"H01M10/0525"}
	fields := &stubFields{avg: 3.0}
	svc := newTestService(t, Deps{Patents: patents, Graph: graph, Fields: fields})

	stats, err := svc.Stats(context.Background(), "us 1000001 a")
	require.NoError(t, err)

	assert.Equal(t, "US1000001A", stats.PatentNumber)
	assert.Equal(t, int64(3), stats.CitedCount)
	assert.Equal(t, int64(6), stats.CitedByCount)
	assert.Equal(t, "H01M", fields.prefix)
	assert.InDelta(t, 3.0, stats.FieldAverage, 1e-12)
	// Cited six times against a field average of three.
	assert.InDelta(t, 2.0, stats.CitationIndex, 1e-12)
}

func TestStatsWithoutFieldProvider(t *testing.T) {
	t.Parallel()

	graph := &stubGraph{citersOf: map[string][]string{"US1000001A": {"US2"}}}
	svc := newTestService(t, Deps{Patents: newStubPatents("US1000001A"), Graph: graph})

	stats, err := svc.Stats(context.Background(), "US1000001A")
	require.NoError(t, err)
	assert.Zero(t, stats.FieldAverage)
	assert.Zero(t, stats.CitationIndex)
}

func TestStatsNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, Deps{Patents: newStubPatents(), Graph: &stubGraph{}})

	_, err := svc.Stats(context.Background(), "US7777777A")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestMostCited(t *testing.T) {
	t.Parallel()

	graph := &stubGraph{ranked: []domain.RankedPatent{
		{PatentNumber: "US1000001A", CitedByCount: 40},
		{PatentNumber: "US1000002A", CitedByCount: 12},
	}}
	svc := newTestService(t, Deps{Patents: newStubPatents(), Graph: graph})

	ranked, err := svc.MostCited(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(40), ranked[0].CitedByCount)

	_, err = svc.MostCited(context.Background(), 500)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidParam))
}

func TestRecordCitations(t *testing.T) {
	t.Parallel()

	graph := &stubGraph{}
	svc := newTestService(t, Deps{Patents: newStubPatents(), Graph: graph})

	err := svc.RecordCitations(context.Background(), "us 1000001 a", []string{
		"US1000002A",
		"us1000002a", // duplicate after normalization
		"US1000001A", // self reference
		"US1000003A",
		"",
	})
	require.NoError(t, err)

	require.Len(t, graph.citations, 2)
	assert.Equal(t, "US1000001A", graph.citations[0].CitingNumber)
	assert.Equal(t, "US1000002A", graph.citations[0].CitedNumber)
	assert.Equal(t, "US1000003A", graph.citations[1].CitedNumber)
	assert.ElementsMatch(t, []string{"US1000001A", "US1000002A", "US1000003A"}, graph.ensured)
}

func TestRecordCitationsEmptyList(t *testing.T) {
	t.Parallel()

	graph := &stubGraph{}
	svc := newTestService(t, Deps{Patents: newStubPatents(), Graph: graph})

	require.NoError(t, svc.RecordCitations(context.Background(), "US1000001A", nil))
	assert.Equal(t, []string{"US1000001A"}, graph.ensured)
	assert.Empty(t, graph.citations)
}
