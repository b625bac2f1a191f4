package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

// stubProvider implements AggregateProvider with per-method hooks; unset
// hooks return empty results.
type stubProvider struct {
	coverage func(ctx context.Context, level int, since, recentSince time.Time, minPatents int) ([]CoverageRow, error)
	gaps     func(ctx context.Context, prefix string, histFrom, histTo, recentFrom time.Time, minHistorical, highImpact int) ([]GapRow, error)
	combos   func(ctx context.Context, sourcePrefix string, level int) ([]ComboRow, error)
	active   func(ctx context.Context, level int, since time.Time, minCount int64, excludeSection string) ([]ActivityRow, error)
	sections func(ctx context.Context, since, recentSince time.Time) ([]SectionRow, error)
}

func (s *stubProvider) CoverageBuckets(ctx context.Context, level int, since, recentSince time.Time, minPatents int) ([]CoverageRow, error) {
	if s.coverage == nil {
		return nil, nil
	}
	return s.coverage(ctx, level, since, recentSince, minPatents)
}

func (s *stubProvider) GapBuckets(ctx context.Context, prefix string, histFrom, histTo, recentFrom time.Time, minHistorical, highImpact int) ([]GapRow, error) {
	if s.gaps == nil {
		return nil, nil
	}
	return s.gaps(ctx, prefix, histFrom, histTo, recentFrom, minHistorical, highImpact)
}

func (s *stubProvider) CoOccurringPrefixes(ctx context.Context, sourcePrefix string, level int) ([]ComboRow, error) {
	if s.combos == nil {
		return nil, nil
	}
	return s.combos(ctx, sourcePrefix, level)
}

func (s *stubProvider) ActivePrefixes(ctx context.Context, level int, since time.Time, minCount int64, excludeSection string) ([]ActivityRow, error) {
	if s.active == nil {
		return nil, nil
	}
	return s.active(ctx, level, since, minCount, excludeSection)
}

func (s *stubProvider) SectionTotals(ctx context.Context, since, recentSince time.Time) ([]SectionRow, error) {
	if s.sections == nil {
		return nil, nil
	}
	return s.sections(ctx, since, recentSince)
}

// stubArchive records stored reports.
type stubArchive struct {
	names []string
	err   error
}

func (a *stubArchive) Store(_ context.Context, name, _ string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.names = append(a.names, name)
	return "analytics-bucket/" + name, nil
}

func newTestService(t *testing.T, d Deps) *serviceImpl {
	t.Helper()
	svc, err := NewService(d)
	require.NoError(t, err)
	impl := svc.(*serviceImpl)
	impl.now = func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	}
	return impl
}

func TestCoverage(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		coverage: func(_ context.Context, level int, since, recentSince time.Time, minPatents int) ([]CoverageRow, error) {
			assert.Equal(t, 4, level)
			assert.Equal(t, 10, minPatents)
			assert.Equal(t, time.Date(2021, 9, 1, 12, 0, 0, 0, time.UTC), since)
			assert.Equal(t, time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC), recentSince)
			return []CoverageRow{
				{Prefix: "G06F", Count: 300, AvgCitations: 4.2, RecentCount: 120},
				{Prefix: "H01M", Count: 100, AvgCitations: 8.0, RecentCount: 20},
			}, nil
		},
	}
	svc := newTestService(t, Deps{Provider: provider})

	report, err := svc.Coverage(context.Background(), CoverageRequest{})
	require.NoError(t, err)
	require.Len(t, report.Buckets, 2)

	top := report.Buckets[0]
	assert.Equal(t, "G06F", top.Prefix)
	assert.Equal(t, "Physics", top.SectionTitle)
	// Mean count is 200, so the 300-patent bucket lands at density 1.5.
	assert.InDelta(t, 1.5, top.DensityScore, 1e-12)
	assert.GreaterOrEqual(t, top.DensityScore, 1.0)
	// Older pace 180/3 = 60/yr, recent pace 120/2 = 60/yr.
	assert.InDelta(t, 0.0, top.GrowthRate, 1e-12)

	second := report.Buckets[1]
	assert.Equal(t, "H01M", second.Prefix)
	assert.Equal(t, "Electricity", second.SectionTitle)
	assert.InDelta(t, 0.5, second.DensityScore, 1e-12)
}

func TestCoverageTruncatesBeforeDensity(t *testing.T) {
	t.Parallel()

	// 101 buckets: counts 1000, 120, 120, ... so the smallest falls off and
	// the mean is taken over the kept 100 only.
	rows := make([]CoverageRow, 0, 101)
	rows = append(rows, CoverageRow{Prefix: "G06F", Count: 1000})
	for i := 0; i < 99; i++ {
		rows = append(rows, CoverageRow{Prefix: "H01M", Count: 120})
	}
	rows = append(rows, CoverageRow{Prefix: "A61K", Count: 10})

	provider := &stubProvider{
		coverage: func(context.Context, int, time.Time, time.Time, int) ([]CoverageRow, error) {
			return rows, nil
		},
	}
	svc := newTestService(t, Deps{Provider: provider})

	report, err := svc.Coverage(context.Background(), CoverageRequest{})
	require.NoError(t, err)
	require.Len(t, report.Buckets, 100)
	for _, b := range report.Buckets {
		assert.NotEqual(t, "A61K", b.Prefix)
	}
	mean := float64(1000+99*120) / 100.0
	assert.InDelta(t, 1000.0/mean, report.Buckets[0].DensityScore, 1e-12)
}

func TestCoverageValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, Deps{Provider: &stubProvider{}})

	_, err := svc.Coverage(context.Background(), CoverageRequest{CPCLevel: 9})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeCPCLevelInvalid))

	_, err = svc.Coverage(context.Background(), CoverageRequest{Years: -1})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeDateRangeInvalid))
}

func TestWhiteSpaces(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		gaps: func(_ context.Context, prefix string, histFrom, histTo, recentFrom time.Time, minHistorical, highImpact int) ([]GapRow, error) {
			assert.Equal(t, "H01M10/05", prefix)
			assert.Equal(t, time.Date(2019, 9, 1, 12, 0, 0, 0, time.UTC), histFrom)
			assert.Equal(t, time.Date(2021, 9, 1, 12, 0, 0, 0, time.UTC), histTo)
			assert.Equal(t, time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC), recentFrom)
			assert.Equal(t, 5, minHistorical)
			assert.Equal(t, 10, highImpact)
			return []GapRow{
				// decline 0.8, impact 0.8 => gap 0.8; goldmine.
				{Prefix: "H01M10/05", HistoricalCount: 50, RecentCount: 4, HighImpactCount: 4},
				// decline 0, impact 0.2 => gap 0.08; filtered out.
				{Prefix: "H01M10/06", HistoricalCount: 20, RecentCount: 10, HighImpactCount: 1},
				// Below the historical floor; filtered out.
				{Prefix: "H01M10/44", HistoricalCount: 3, RecentCount: 0, HighImpactCount: 3},
			}, nil
		},
	}
	svc := newTestService(t, Deps{Provider: provider})

	report, err := svc.WhiteSpaces(context.Background(), WhiteSpaceRequest{CPCPrefix: "h01m 10/05"})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)

	gap := report.Items[0]
	assert.Equal(t, "H01M10/05", gap.Prefix)
	assert.InDelta(t, 0.8, gap.DeclineRatio, 1e-12)
	assert.InDelta(t, 0.8, gap.ImpactFactor, 1e-12)
	assert.InDelta(t, 0.8, gap.GapScore, 1e-12)
	assert.Equal(t, OpportunityAbandonedGoldmine, gap.Opportunity)
}

func TestWhiteSpacesLimit(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		gaps: func(context.Context, string, time.Time, time.Time, time.Time, int, int) ([]GapRow, error) {
			return []GapRow{
				{Prefix: "G06F16/21", HistoricalCount: 40, RecentCount: 0, HighImpactCount: 5},
				{Prefix: "G06F16/22", HistoricalCount: 40, RecentCount: 8, HighImpactCount: 0},
				{Prefix: "G06F16/23", HistoricalCount: 40, RecentCount: 4, HighImpactCount: 2},
			}, nil
		},
	}
	svc := newTestService(t, Deps{Provider: provider})

	report, err := svc.WhiteSpaces(context.Background(), WhiteSpaceRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, report.Items, 2)
	assert.Equal(t, "G06F16/21", report.Items[0].Prefix)
	assert.GreaterOrEqual(t, report.Items[0].GapScore, report.Items[1].GapScore)
}

func TestCrossDomain(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		combos: func(_ context.Context, source string, level int) ([]ComboRow, error) {
			assert.Equal(t, "H01M", source)
			assert.Equal(t, 4, level)
			return []ComboRow{{Prefix: "G06N", Count: 12, AvgCitations: 9.0}}, nil
		},
		active: func(_ context.Context, level int, _ time.Time, minCount int64, excludeSection string) ([]ActivityRow, error) {
			assert.Equal(t, 4, level)
			assert.Equal(t, int64(50), minCount)
			assert.Equal(t, "H", excludeSection)
			return []ActivityRow{
				{Prefix: "G06N", Count: 400, AvgCitations: 6.0},
				{Prefix: "A61K", Count: 300, AvgCitations: 2.0},
			}, nil
		},
	}
	svc := newTestService(t, Deps{Provider: provider})

	report, err := svc.CrossDomain(context.Background(), CrossDomainRequest{SourceCPC: "h01m"})
	require.NoError(t, err)
	assert.Equal(t, "H01M", report.SourceCPC)
	require.Len(t, report.Items, 2)

	// Untapped A61K: 0.5 + 300/1000 = 0.8 beats the emerging combo at
	// min(1, 9/6 * 0.5) = 0.75.
	assert.Equal(t, "A61K", report.Items[0].Prefix)
	assert.Equal(t, ComboUntapped, report.Items[0].Status)
	assert.InDelta(t, 0.8, report.Items[0].Score, 1e-12)

	assert.Equal(t, "G06N", report.Items[1].Prefix)
	assert.Equal(t, ComboEmerging, report.Items[1].Status)
	assert.InDelta(t, 0.75, report.Items[1].Score, 1e-12)
	assert.Equal(t, int64(12), report.Items[1].ComboCount)
}

func TestCrossDomainValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, Deps{Provider: &stubProvider{}})

	_, err := svc.CrossDomain(context.Background(), CrossDomainRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidParam))

	_, err = svc.CrossDomain(context.Background(), CrossDomainRequest{SourceCPC: "Z99X"})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeSectionUnknown))
}

func TestSectionOverview(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		sections: func(context.Context, time.Time, time.Time) ([]SectionRow, error) {
			return []SectionRow{
				{Section: "G", Count: 600, RecentCount: 100},
				{Section: "H", Count: 200, RecentCount: 80},
				{Section: "A", Count: 150, RecentCount: 15},
				{Section: "F", Count: 50, RecentCount: 5},
			}, nil
		},
	}
	svc := newTestService(t, Deps{Provider: provider})

	report, err := svc.SectionOverview(context.Background(), SectionOverviewRequest{})
	require.NoError(t, err)
	require.Len(t, report.Sections, 4)

	g := report.Sections[0]
	assert.Equal(t, "G", g.Section)
	assert.Equal(t, "Physics", g.Title)
	assert.InDelta(t, 0.6, g.Share, 1e-12)
	// Share of recent 100/200 = 0.5 against total share 0.6.
	assert.InDelta(t, 0.5/0.6, g.Momentum, 1e-12)
	assert.Equal(t, "declining", g.Trend)

	h := report.Sections[1]
	assert.Equal(t, "H", h.Section)
	// 0.4 recent share against 0.2 total share.
	assert.InDelta(t, 2.0, h.Momentum, 1e-12)
	assert.Equal(t, "growing", h.Trend)

	assert.Equal(t, "A", report.Sections[2].Section)
	assert.Equal(t, "F", report.Sections[3].Section)
}

func TestSectionOverviewTieBreaksAlphabetically(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		sections: func(context.Context, time.Time, time.Time) ([]SectionRow, error) {
			return []SectionRow{
				{Section: "H", Count: 200, RecentCount: 80},
				{Section: "A", Count: 200, RecentCount: 20},
			}, nil
		},
	}
	svc := newTestService(t, Deps{Provider: provider})

	report, err := svc.SectionOverview(context.Background(), SectionOverviewRequest{})
	require.NoError(t, err)
	require.Len(t, report.Sections, 2)
	assert.Equal(t, "A", report.Sections[0].Section)
	assert.Equal(t, "H", report.Sections[1].Section)
}

func TestReportArchiving(t *testing.T) {
	t.Parallel()

	t.Run("stores rendered report", func(t *testing.T) {
		t.Parallel()
		archive := &stubArchive{}
		svc := newTestService(t, Deps{Provider: &stubProvider{}, Archive: archive})

		report, err := svc.Coverage(context.Background(), CoverageRequest{Archive: true})
		require.NoError(t, err)
		require.Len(t, archive.names, 1)
		assert.Contains(t, archive.names[0], "reports/coverage/")
		assert.Equal(t, "analytics-bucket/"+archive.names[0], report.ArchivePath)
	})

	t.Run("archive failure does not fail the analysis", func(t *testing.T) {
		t.Parallel()
		archive := &stubArchive{err: assert.AnError}
		svc := newTestService(t, Deps{Provider: &stubProvider{}, Archive: archive})

		report, err := svc.Coverage(context.Background(), CoverageRequest{Archive: true})
		require.NoError(t, err)
		assert.Empty(t, report.ArchivePath)
	})
}
