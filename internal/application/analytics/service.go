// Package analytics implements cohort analytics over classification-code
// buckets: coverage density, white-space discovery, cross-domain opportunity
// scoring, and the per-section overview.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/turtacn/patent-radar/internal/domain/patent"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

const (
	defaultCoverageLevel   = 4
	defaultWindowYears     = 5
	defaultMinPatents      = 10
	maxCoverageBuckets     = 100
	gapPrefixLevel         = 8
	defaultMinGapScore     = 0.3
	defaultGapLimit        = 20
	minHistoricalFilings   = 5
	crossDomainLevel       = 4
	crossDomainMinActivity = int64(50)
	defaultCrossDomainMax  = 20
)

// CoverageRequest parametrizes the coverage analysis.
type CoverageRequest struct {
	CPCLevel   int  `json:"cpc_level,omitempty"`
	MinPatents int  `json:"min_patents,omitempty"`
	Years      int  `json:"years,omitempty"`
	Archive    bool `json:"archive,omitempty"`
}

// CoverageBucket is one prefix cohort in the coverage report.
type CoverageBucket struct {
	Prefix       string  `json:"prefix"`
	SectionTitle string  `json:"section_title"`
	Count        int64   `json:"count"`
	AvgCitations float64 `json:"avg_citations"`
	RecentCount  int64   `json:"recent_count"`
	GrowthRate   float64 `json:"growth_rate"`
	DensityScore float64 `json:"density_score"`
}

// CoverageReport is the coverage analysis result.
type CoverageReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	CPCLevel    int              `json:"cpc_level"`
	Years       int              `json:"years"`
	Buckets     []CoverageBucket `json:"buckets"`
	ArchivePath string           `json:"archive_path,omitempty"`
}

// WhiteSpaceRequest parametrizes white-space discovery.
type WhiteSpaceRequest struct {
	CPCPrefix   string  `json:"cpc_prefix,omitempty"`
	MinGapScore float64 `json:"min_gap_score,omitempty"`
	Limit       int     `json:"limit,omitempty"`
	Archive     bool    `json:"archive,omitempty"`
}

// WhiteSpace is one gap candidate.
type WhiteSpace struct {
	Prefix          string  `json:"prefix"`
	SectionTitle    string  `json:"section_title"`
	HistoricalCount int64   `json:"historical_count"`
	RecentCount     int64   `json:"recent_count"`
	HighImpactCount int64   `json:"high_impact_count"`
	DeclineRatio    float64 `json:"decline_ratio"`
	ImpactFactor    float64 `json:"impact_factor"`
	GapScore        float64 `json:"gap_score"`
	Opportunity     string  `json:"opportunity"`
}

// WhiteSpaceReport is the white-space discovery result.
type WhiteSpaceReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Items       []WhiteSpace `json:"items"`
	ArchivePath string       `json:"archive_path,omitempty"`
}

// CrossDomainRequest parametrizes cross-domain opportunity discovery.
type CrossDomainRequest struct {
	SourceCPC  string `json:"source_cpc"`
	MaxResults int    `json:"max_results,omitempty"`
	Archive    bool   `json:"archive,omitempty"`
}

// CrossDomainOpportunity is one candidate prefix outside the source section.
type CrossDomainOpportunity struct {
	Prefix            string  `json:"prefix"`
	SectionTitle      string  `json:"section_title"`
	PatentCount       int64   `json:"patent_count"`
	AvgCitations      float64 `json:"avg_citations"`
	ComboCount        int64   `json:"combo_count,omitempty"`
	ComboAvgCitations float64 `json:"combo_avg_citations,omitempty"`
	Score             float64 `json:"score"`
	Status            string  `json:"status"`
}

// CrossDomainReport is the cross-domain discovery result.
type CrossDomainReport struct {
	GeneratedAt time.Time                `json:"generated_at"`
	SourceCPC   string                   `json:"source_cpc"`
	Items       []CrossDomainOpportunity `json:"items"`
	ArchivePath string                   `json:"archive_path,omitempty"`
}

// SectionOverviewRequest parametrizes the section overview.
type SectionOverviewRequest struct {
	Years   int  `json:"years,omitempty"`
	Archive bool `json:"archive,omitempty"`
}

// SectionOverview is one top-level CPC section in the overview.
type SectionOverview struct {
	Section     string  `json:"section"`
	Title       string  `json:"title"`
	Count       int64   `json:"count"`
	RecentCount int64   `json:"recent_count"`
	Share       float64 `json:"share"`
	Momentum    float64 `json:"momentum"`
	Trend       string  `json:"trend"`
}

// SectionOverviewReport is the section overview result.
type SectionOverviewReport struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Years       int               `json:"years"`
	Sections    []SectionOverview `json:"sections"`
	ArchivePath string            `json:"archive_path,omitempty"`
}

// Service is the cohort analytics application service.
type Service interface {
	Coverage(ctx context.Context, req CoverageRequest) (*CoverageReport, error)
	WhiteSpaces(ctx context.Context, req WhiteSpaceRequest) (*WhiteSpaceReport, error)
	CrossDomain(ctx context.Context, req CrossDomainRequest) (*CrossDomainReport, error)
	SectionOverview(ctx context.Context, req SectionOverviewRequest) (*SectionOverviewReport, error)
}

// Deps carries the constructor dependencies for the analytics service.
// Archive is optional.
type Deps struct {
	Provider AggregateProvider
	Archive  ReportArchive
	Logger   logging.Logger
}

type serviceImpl struct {
	provider AggregateProvider
	archive  ReportArchive
	logger   logging.Logger
	now      func() time.Time
}

var _ Service = (*serviceImpl)(nil)

// NewService constructs the analytics service.
func NewService(d Deps) (Service, error) {
	if d.Provider == nil {
		return nil, appErrors.Internal("analytics service requires an aggregate provider")
	}
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		provider: d.Provider,
		archive:  d.Archive,
		logger:   d.Logger.Named("analytics"),
		now:      time.Now,
	}, nil
}

func (s *serviceImpl) Coverage(ctx context.Context, req CoverageRequest) (*CoverageReport, error) {
	if req.CPCLevel == 0 {
		req.CPCLevel = defaultCoverageLevel
	}
	if req.CPCLevel < 1 || req.CPCLevel > 8 {
		return nil, appErrors.New(appErrors.ErrCodeCPCLevelInvalid, "cpc level must be between 1 and 8").
			WithDetail(fmt.Sprintf("cpc_level=%d", req.CPCLevel))
	}
	if req.Years == 0 {
		req.Years = defaultWindowYears
	}
	if req.Years < 1 {
		return nil, appErrors.New(appErrors.ErrCodeDateRangeInvalid, "window must cover at least one year")
	}
	if req.MinPatents == 0 {
		req.MinPatents = defaultMinPatents
	}

	now := s.now()
	since := now.AddDate(-req.Years, 0, 0)
	recentSince := now.AddDate(-2, 0, 0)

	rows, err := s.provider.CoverageBuckets(ctx, req.CPCLevel, since, recentSince, req.MinPatents)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "coverage aggregation failed")
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Prefix < rows[j].Prefix
	})
	if len(rows) > maxCoverageBuckets {
		rows = rows[:maxCoverageBuckets]
	}

	// Density is relative to the mean of the displayed buckets only.
	var sum int64
	for _, r := range rows {
		sum += r.Count
	}
	mean := 0.0
	if len(rows) > 0 {
		mean = float64(sum) / float64(len(rows))
	}

	buckets := make([]CoverageBucket, 0, len(rows))
	for _, r := range rows {
		b := CoverageBucket{
			Prefix:       r.Prefix,
			SectionTitle: sectionTitleOf(r.Prefix),
			Count:        r.Count,
			AvgCitations: r.AvgCitations,
			RecentCount:  r.RecentCount,
			GrowthRate:   growthRate(r.Count, r.RecentCount, req.Years),
		}
		if mean > 0 {
			b.DensityScore = float64(r.Count) / mean
		}
		buckets = append(buckets, b)
	}

	report := &CoverageReport{
		GeneratedAt: now.UTC(),
		CPCLevel:    req.CPCLevel,
		Years:       req.Years,
		Buckets:     buckets,
	}
	if req.Archive {
		report.ArchivePath = s.archiveReport(ctx, "coverage", report)
	}
	return report, nil
}

func (s *serviceImpl) WhiteSpaces(ctx context.Context, req WhiteSpaceRequest) (*WhiteSpaceReport, error) {
	if req.MinGapScore == 0 {
		req.MinGapScore = defaultMinGapScore
	}
	if req.MinGapScore < 0 || req.MinGapScore > 1 {
		return nil, appErrors.InvalidParam("min gap score must be within [0, 1]")
	}
	if req.Limit == 0 {
		req.Limit = defaultGapLimit
	}
	if req.Limit < 1 {
		return nil, appErrors.InvalidParam("limit must be positive")
	}
	prefix := ""
	if req.CPCPrefix != "" {
		prefix = patent.NormalizeCPCCode(req.CPCPrefix)
	}

	// The gap windows sit inside a seven-year lookback: filings made five to
	// seven years ago versus filings in the last two years.
	now := s.now()
	histFrom := now.AddDate(-7, 0, 0)
	histTo := now.AddDate(-5, 0, 0)
	recentFrom := now.AddDate(-2, 0, 0)

	rows, err := s.provider.GapBuckets(ctx, prefix, histFrom, histTo, recentFrom, minHistoricalFilings, highImpactCitations)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "white-space aggregation failed")
	}

	items := make([]WhiteSpace, 0, len(rows))
	for _, r := range rows {
		if r.HistoricalCount < minHistoricalFilings {
			continue
		}
		decline := declineRatio(r.HistoricalCount, r.RecentCount)
		impact := impactFactor(r.HighImpactCount)
		score := gapScore(decline, impact)
		if score < req.MinGapScore {
			continue
		}
		items = append(items, WhiteSpace{
			Prefix:          r.Prefix,
			SectionTitle:    sectionTitleOf(r.Prefix),
			HistoricalCount: r.HistoricalCount,
			RecentCount:     r.RecentCount,
			HighImpactCount: r.HighImpactCount,
			DeclineRatio:    decline,
			ImpactFactor:    impact,
			GapScore:        score,
			Opportunity:     classifyOpportunity(decline, r.HighImpactCount, r.RecentCount),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].GapScore != items[j].GapScore {
			return items[i].GapScore > items[j].GapScore
		}
		return items[i].Prefix < items[j].Prefix
	})
	if len(items) > req.Limit {
		items = items[:req.Limit]
	}

	report := &WhiteSpaceReport{GeneratedAt: now.UTC(), Items: items}
	if req.Archive {
		report.ArchivePath = s.archiveReport(ctx, "white-spaces", report)
	}
	return report, nil
}

func (s *serviceImpl) CrossDomain(ctx context.Context, req CrossDomainRequest) (*CrossDomainReport, error) {
	if req.SourceCPC == "" {
		return nil, appErrors.InvalidParam("source cpc prefix must not be empty")
	}
	source := patent.NormalizeCPCCode(req.SourceCPC)
	if source == "" {
		return nil, appErrors.InvalidParam("source cpc prefix must not be empty")
	}
	section := strings.ToUpper(source[:1])
	if _, ok := ptypes.CPCSections[section]; !ok {
		return nil, appErrors.New(appErrors.ErrCodeSectionUnknown, "unknown cpc section").
			WithDetail("section=" + section)
	}
	if req.MaxResults == 0 {
		req.MaxResults = defaultCrossDomainMax
	}
	if req.MaxResults < 1 {
		return nil, appErrors.InvalidParam("max results must be positive")
	}

	now := s.now()
	since := now.AddDate(-defaultWindowYears, 0, 0)

	combosRows, err := s.provider.CoOccurringPrefixes(ctx, source, crossDomainLevel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "co-occurrence aggregation failed")
	}
	combos := make(map[string]ComboRow, len(combosRows))
	for _, c := range combosRows {
		combos[c.Prefix] = c
	}

	candidates, err := s.provider.ActivePrefixes(ctx, crossDomainLevel, since, crossDomainMinActivity, section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "candidate aggregation failed")
	}

	items := make([]CrossDomainOpportunity, 0, len(candidates))
	for _, c := range candidates {
		item := CrossDomainOpportunity{
			Prefix:       c.Prefix,
			SectionTitle: sectionTitleOf(c.Prefix),
			PatentCount:  c.Count,
			AvgCitations: c.AvgCitations,
		}
		if combo, ok := combos[c.Prefix]; ok {
			item.ComboCount = combo.Count
			item.ComboAvgCitations = combo.AvgCitations
			item.Score = existingComboScore(combo.AvgCitations, c.AvgCitations)
			item.Status = ComboEmerging
		} else {
			item.Score = untappedComboScore(c.Count)
			item.Status = ComboUntapped
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Prefix < items[j].Prefix
	})
	if len(items) > req.MaxResults {
		items = items[:req.MaxResults]
	}

	report := &CrossDomainReport{GeneratedAt: now.UTC(), SourceCPC: source, Items: items}
	if req.Archive {
		report.ArchivePath = s.archiveReport(ctx, "cross-domain", report)
	}
	return report, nil
}

func (s *serviceImpl) SectionOverview(ctx context.Context, req SectionOverviewRequest) (*SectionOverviewReport, error) {
	if req.Years == 0 {
		req.Years = defaultWindowYears
	}
	if req.Years < 1 {
		return nil, appErrors.New(appErrors.ErrCodeDateRangeInvalid, "window must cover at least one year")
	}

	now := s.now()
	since := now.AddDate(-req.Years, 0, 0)
	recentSince := now.AddDate(-2, 0, 0)

	rows, err := s.provider.SectionTotals(ctx, since, recentSince)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "section aggregation failed")
	}

	var grandTotal, grandRecent int64
	for _, r := range rows {
		grandTotal += r.Count
		grandRecent += r.RecentCount
	}

	sections := make([]SectionOverview, 0, len(rows))
	for _, r := range rows {
		m := momentum(r.Count, grandTotal, r.RecentCount, grandRecent)
		sec := SectionOverview{
			Section:     r.Section,
			Title:       ptypes.SectionTitle(r.Section),
			Count:       r.Count,
			RecentCount: r.RecentCount,
			Momentum:    m,
			Trend:       trendLabel(m),
		}
		if grandTotal > 0 {
			sec.Share = float64(r.Count) / float64(grandTotal)
		}
		sections = append(sections, sec)
	}
	sort.Slice(sections, func(i, j int) bool {
		if sections[i].Count != sections[j].Count {
			return sections[i].Count > sections[j].Count
		}
		return sections[i].Section < sections[j].Section
	})

	report := &SectionOverviewReport{GeneratedAt: now.UTC(), Years: req.Years, Sections: sections}
	if req.Archive {
		report.ArchivePath = s.archiveReport(ctx, "sections", report)
	}
	return report, nil
}

// archiveReport stores the rendered report, returning its object path.  The
// analysis result stands on its own, so archive failures only log a warning.
func (s *serviceImpl) archiveReport(ctx context.Context, kind string, report interface{}) string {
	if s.archive == nil {
		return ""
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("failed to render report for archiving",
			logging.String("kind", kind), logging.Err(err))
		return ""
	}
	name := fmt.Sprintf("reports/%s/%s.json", kind, s.now().UTC().Format("20060102T150405Z"))
	path, err := s.archive.Store(ctx, name, "application/json", payload)
	if err != nil {
		wrapped := appErrors.Wrap(err, appErrors.ErrCodeReportArchiveFailed, "report archive failed")
		s.logger.Warn("failed to archive report",
			logging.String("kind", kind), logging.Err(wrapped))
		return ""
	}
	return path
}

func sectionTitleOf(prefix string) string {
	if prefix == "" {
		return ptypes.SectionTitle("")
	}
	return ptypes.SectionTitle(strings.ToUpper(prefix[:1]))
}
