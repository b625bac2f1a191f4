package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// AnalyticsClient covers the cohort analytics and discovery endpoints.
type AnalyticsClient struct {
	client *Client
}

// CoverageOptions parametrizes a coverage report request.
type CoverageOptions struct {
	CPCLevel   int
	MinPatents int
	Years      int
	Archive    bool
}

// CoverageBucket is one classification cohort in a coverage report.
type CoverageBucket struct {
	Prefix       string  `json:"prefix"`
	SectionTitle string  `json:"section_title"`
	Count        int64   `json:"count"`
	AvgCitations float64 `json:"avg_citations"`
	RecentCount  int64   `json:"recent_count"`
	GrowthRate   float64 `json:"growth_rate"`
	DensityScore float64 `json:"density_score"`
}

// CoverageReport maps patenting density across classification cohorts.
type CoverageReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	CPCLevel    int              `json:"cpc_level"`
	Years       int              `json:"years"`
	Buckets     []CoverageBucket `json:"buckets"`
	ArchivePath string           `json:"archive_path,omitempty"`
}

// WhiteSpaceOptions parametrizes a white-space discovery request.
type WhiteSpaceOptions struct {
	CPCPrefix   string
	MinGapScore float64
	Limit       int
	Archive     bool
}

// WhiteSpace is one under-patented area candidate.
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

// WhiteSpaceReport ranks under-patented areas by gap score.
type WhiteSpaceReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Items       []WhiteSpace `json:"items"`
	ArchivePath string       `json:"archive_path,omitempty"`
}

// CrossDomainOptions parametrizes a cross-domain opportunity request.
type CrossDomainOptions struct {
	SourceCPC  string
	MaxResults int
	Archive    bool
}

// CrossDomainOpportunity is one candidate target domain for a source
// classification.
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

// CrossDomainReport ranks adjacent domains for a source classification.
type CrossDomainReport struct {
	GeneratedAt time.Time                `json:"generated_at"`
	SourceCPC   string                   `json:"source_cpc"`
	Items       []CrossDomainOpportunity `json:"items"`
	ArchivePath string                   `json:"archive_path,omitempty"`
}

// SectionOverview summarizes one top-level classification section.
type SectionOverview struct {
	Section     string  `json:"section"`
	Title       string  `json:"title"`
	Count       int64   `json:"count"`
	RecentCount int64   `json:"recent_count"`
	Share       float64 `json:"share"`
	Momentum    float64 `json:"momentum"`
	Trend       string  `json:"trend"`
}

// SectionReport is the per-section corpus overview.
type SectionReport struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Years       int               `json:"years"`
	Sections    []SectionOverview `json:"sections"`
	ArchivePath string            `json:"archive_path,omitempty"`
}

// Coverage fetches patenting density across classification cohorts.
func (ac *AnalyticsClient) Coverage(ctx context.Context, opts CoverageOptions) (*CoverageReport, error) {
	q := url.Values{}
	if opts.CPCLevel > 0 {
		q.Set("cpc_level", strconv.Itoa(opts.CPCLevel))
	}
	if opts.MinPatents > 0 {
		q.Set("min_patents", strconv.Itoa(opts.MinPatents))
	}
	if opts.Years > 0 {
		q.Set("years", strconv.Itoa(opts.Years))
	}
	if opts.Archive {
		q.Set("archive", "true")
	}

	var out CoverageReport
	if err := ac.client.get(ctx, withQuery("/api/v1/analytics/coverage", q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WhiteSpaces fetches the ranked under-patented area candidates.
func (ac *AnalyticsClient) WhiteSpaces(ctx context.Context, opts WhiteSpaceOptions) (*WhiteSpaceReport, error) {
	q := url.Values{}
	if opts.CPCPrefix != "" {
		q.Set("cpc_prefix", opts.CPCPrefix)
	}
	if opts.MinGapScore > 0 {
		q.Set("min_gap_score", strconv.FormatFloat(opts.MinGapScore, 'f', -1, 64))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Archive {
		q.Set("archive", "true")
	}

	var out WhiteSpaceReport
	if err := ac.client.get(ctx, withQuery("/api/v1/analytics/white-spaces", q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CrossDomain ranks adjacent technology domains for a source classification.
func (ac *AnalyticsClient) CrossDomain(ctx context.Context, opts CrossDomainOptions) (*CrossDomainReport, error) {
	q := url.Values{}
	if opts.SourceCPC != "" {
		q.Set("source_cpc", opts.SourceCPC)
	}
	if opts.MaxResults > 0 {
		q.Set("max_results", strconv.Itoa(opts.MaxResults))
	}
	if opts.Archive {
		q.Set("archive", "true")
	}

	var out CrossDomainReport
	if err := ac.client.get(ctx, withQuery("/api/v1/analytics/cross-domain", q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sections fetches the per-section corpus overview.
func (ac *AnalyticsClient) Sections(ctx context.Context, years int, archive bool) (*SectionReport, error) {
	q := url.Values{}
	if years > 0 {
		q.Set("years", strconv.Itoa(years))
	}
	if archive {
		q.Set("archive", "true")
	}

	var out SectionReport
	if err := ac.client.get(ctx, withQuery("/api/v1/analytics/sections", q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func withQuery(path string, q url.Values) string {
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}
