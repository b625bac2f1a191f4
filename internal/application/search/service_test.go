package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-radar/internal/domain/patent"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	"github.com/turtacn/patent-radar/pkg/types/common"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

func mustPatent(t *testing.T, number, title string) *patent.Patent {
	t.Helper()
	p, err := patent.NewPatent(number, title, patent.TypeUtility)
	require.NoError(t, err)
	return p
}

func newTestService(t *testing.T, d Deps) Service {
	t.Helper()
	svc, err := NewService(d)
	require.NoError(t, err)
	return svc
}

func TestServiceSearchHybrid(t *testing.T) {
	t.Parallel()

	repo := newStubPatentRepo(
		mustPatent(t, "US1000001A", "Battery separator"),
		mustPatent(t, "US1000002A", "Electrolyte additive"),
		mustPatent(t, "US1000003A", "Anode coating"),
	)
	embedder := &stubEmbedder{fn: func(context.Context, string) ([]float32, error) {
		return []float32{0.1, 0.2, 0.3}, nil
	}}
	vector := &stubVector{fn: func(_ context.Context, _ []float32, _ ProviderFilter, _ int) ([]string, error) {
		return []string{"US1000001A", "US1000002A"}, nil
	}}
	fulltext := &stubFulltext{fn: func(_ context.Context, _ string, _ ProviderFilter, _ int) ([]string, error) {
		return []string{"US1000002A", "US1000003A"}, nil
	}}

	svc := newTestService(t, Deps{
		Patents:  repo,
		Fulltext: fulltext,
		Vector:   vector,
		Embedder: embedder,
	})

	resp, err := svc.Search(context.Background(), ptypes.NewPatentSearchRequest("battery electrolyte"))
	require.NoError(t, err)

	assert.Equal(t, ptypes.SearchHybrid, resp.Mode)
	assert.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Items, 3)

	// The dual-leg hit fuses to the top and normalizes to 1.
	top := resp.Items[0]
	assert.Equal(t, "US1000002A", top.PatentNumber)
	assert.Equal(t, "Electrolyte additive", top.Title)
	assert.InDelta(t, 1.0, top.Score, 1e-12)
	assert.True(t, top.MatchedSemantic)
	assert.True(t, top.MatchedFulltext)

	assert.Equal(t, "US1000001A", resp.Items[1].PatentNumber)
	assert.Equal(t, "US1000003A", resp.Items[2].PatentNumber)
	assert.Greater(t, resp.Items[1].Score, resp.Items[2].Score)
}

func TestServiceSearchOversamplesLegs(t *testing.T) {
	t.Parallel()

	var fulltextLimit, vectorLimit int
	vector := &stubVector{fn: func(_ context.Context, _ []float32, _ ProviderFilter, limit int) ([]string, error) {
		vectorLimit = limit
		return nil, nil
	}}
	fulltext := &stubFulltext{fn: func(_ context.Context, _ string, _ ProviderFilter, limit int) ([]string, error) {
		fulltextLimit = limit
		return nil, nil
	}}
	embedder := &stubEmbedder{fn: func(context.Context, string) ([]float32, error) {
		return []float32{1}, nil
	}}

	svc := newTestService(t, Deps{
		Patents:  newStubPatentRepo(),
		Fulltext: fulltext,
		Vector:   vector,
		Embedder: embedder,
	})

	req := ptypes.NewPatentSearchRequest("solid state")
	req.Pagination = common.Pagination{Page: 2, PageSize: 10}
	_, err := svc.Search(context.Background(), req)
	require.NoError(t, err)

	// The fusion window is three times the page size, independent of the
	// page number.
	assert.Equal(t, 30, fulltextLimit)
	assert.Equal(t, 30, vectorLimit)
}

func TestServiceSearchHybridLegFailure(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{fn: func(context.Context, string) ([]float32, error) {
		return []float32{0.5}, nil
	}}
	vector := &stubVector{fn: func(context.Context, []float32, ProviderFilter, int) ([]string, error) {
		return nil, assert.AnError
	}}
	fulltext := &stubFulltext{fn: func(context.Context, string, ProviderFilter, int) ([]string, error) {
		return []string{"US1000001A"}, nil
	}}

	svc := newTestService(t, Deps{
		Patents:  newStubPatentRepo(),
		Fulltext: fulltext,
		Vector:   vector,
		Embedder: embedder,
	})

	_, err := svc.Search(context.Background(), ptypes.NewPatentSearchRequest("battery"))
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeSearchFailed))
}

func TestServiceSearchHybridDegradesToFulltext(t *testing.T) {
	t.Parallel()

	fulltext := &stubFulltext{fn: func(_ context.Context, _ string, _ ProviderFilter, _ int) ([]string, error) {
		return []string{"US1000003A"}, nil
	}}

	tests := []struct {
		name        string
		embedder    *stubEmbedder
		vector      *stubVector
		emptyCorpus bool
	}{
		{
			name: "embedder error",
			embedder: &stubEmbedder{fn: func(context.Context, string) ([]float32, error) {
				return nil, assert.AnError
			}},
			vector: &stubVector{fn: func(context.Context, []float32, ProviderFilter, int) ([]string, error) {
				t.Fatal("vector leg must not run")
				return nil, nil
			}},
		},
		{
			name: "zero vector",
			embedder: &stubEmbedder{fn: func(context.Context, string) ([]float32, error) {
				return []float32{0, 0, 0}, nil
			}},
			vector: &stubVector{fn: func(context.Context, []float32, ProviderFilter, int) ([]string, error) {
				t.Fatal("vector leg must not run")
				return nil, nil
			}},
		},
		{
			name:     "semantic leg not configured",
			embedder: nil,
			vector:   nil,
		},
		{
			name: "empty embedded corpus",
			embedder: &stubEmbedder{fn: func(context.Context, string) ([]float32, error) {
				t.Fatal("embedder must not run against an empty corpus")
				return nil, nil
			}},
			vector: &stubVector{fn: func(context.Context, []float32, ProviderFilter, int) ([]string, error) {
				t.Fatal("vector leg must not run")
				return nil, nil
			}},
			emptyCorpus: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := newStubPatentRepo(mustPatent(t, "US1000003A", "Anode coating"))
			if tt.emptyCorpus {
				repo.embedded = 0
			}
			deps := Deps{
				Patents:  repo,
				Fulltext: fulltext,
			}
			if tt.embedder != nil {
				deps.Embedder = tt.embedder
			}
			if tt.vector != nil {
				deps.Vector = tt.vector
			}
			svc := newTestService(t, deps)

			resp, err := svc.Search(context.Background(), ptypes.NewPatentSearchRequest("coating"))
			require.NoError(t, err)
			assert.Equal(t, ptypes.SearchFulltext, resp.Mode)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, "US1000003A", resp.Items[0].PatentNumber)
			assert.False(t, resp.Items[0].MatchedSemantic)
		})
	}
}

func TestServiceSearchSemanticModeDoesNotDegrade(t *testing.T) {
	t.Parallel()

	embedder := &stubEmbedder{fn: func(context.Context, string) ([]float32, error) {
		return nil, assert.AnError
	}}
	vector := &stubVector{fn: func(context.Context, []float32, ProviderFilter, int) ([]string, error) {
		return nil, nil
	}}
	svc := newTestService(t, Deps{
		Patents:  newStubPatentRepo(),
		Fulltext: &stubFulltext{fn: func(context.Context, string, ProviderFilter, int) ([]string, error) {
			t.Fatal("fulltext leg must not run in semantic mode")
			return nil, nil
		}},
		Vector:   vector,
		Embedder: embedder,
	})

	req := ptypes.NewPatentSearchRequest("query")
	req.Mode = ptypes.SearchSemantic
	_, err := svc.Search(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeEmbeddingFailed))
}

func TestServiceSearchValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, Deps{
		Patents: newStubPatentRepo(),
		Fulltext: &stubFulltext{fn: func(context.Context, string, ProviderFilter, int) ([]string, error) {
			return nil, nil
		}},
	})

	t.Run("empty query", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Search(context.Background(), ptypes.PatentSearchRequest{})
		require.Error(t, err)
		assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeSearchQueryEmpty))
	})

	t.Run("bad mode", func(t *testing.T) {
		t.Parallel()
		req := ptypes.NewPatentSearchRequest("x")
		req.Mode = ptypes.SearchMode("fuzzy")
		_, err := svc.Search(context.Background(), req)
		require.Error(t, err)
		assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeSearchModeUnsupported))
	})
}

func TestServiceSearchFiltersReachProviders(t *testing.T) {
	t.Parallel()

	var seen ProviderFilter
	fulltext := &stubFulltext{fn: func(_ context.Context, _ string, filter ProviderFilter, _ int) ([]string, error) {
		seen = filter
		return nil, nil
	}}
	svc := newTestService(t, Deps{Patents: newStubPatentRepo(), Fulltext: fulltext})

	req := ptypes.NewPatentSearchRequest("membrane")
	req.Mode = ptypes.SearchFulltext
	req.Status = []ptypes.PatentStatus{ptypes.StatusActive}
	req.CPCPrefix = "H01M"
	req.Assignees = []string{"Acme Corp"}
	_, err := svc.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []ptypes.PatentStatus{ptypes.StatusActive}, seen.Status)
	assert.Equal(t, "H01M", seen.CPCPrefix)
	assert.Equal(t, []string{"Acme Corp"}, seen.Assignees)
}

func TestServiceSearchCache(t *testing.T) {
	t.Parallel()

	calls := 0
	fulltext := &stubFulltext{fn: func(context.Context, string, ProviderFilter, int) ([]string, error) {
		calls++
		return []string{"US1000001A"}, nil
	}}
	cache := newMemoryCache()
	svc := newTestService(t, Deps{
		Patents:  newStubPatentRepo(mustPatent(t, "US1000001A", "Battery separator")),
		Fulltext: fulltext,
		Cache:    cache,
	})

	req := ptypes.NewPatentSearchRequest("separator")
	req.Mode = ptypes.SearchFulltext

	first, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Total, second.Total)
}

func TestServiceSearchPaginationWindow(t *testing.T) {
	t.Parallel()

	fulltext := &stubFulltext{fn: func(context.Context, string, ProviderFilter, int) ([]string, error) {
		return []string{"US1A", "US2A", "US3A", "US4A", "US5A"}, nil
	}}
	svc := newTestService(t, Deps{Patents: newStubPatentRepo(), Fulltext: fulltext})

	req := ptypes.NewPatentSearchRequest("anything")
	req.Mode = ptypes.SearchFulltext
	req.Pagination = common.Pagination{Page: 2, PageSize: 2}

	resp, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.Total)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "US3A", resp.Items[0].PatentNumber)
	assert.Equal(t, "US4A", resp.Items[1].PatentNumber)
}
