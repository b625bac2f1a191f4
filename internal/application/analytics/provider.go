package analytics

import (
	"context"
	"time"
)

// CoverageRow is one classification-prefix bucket from the coverage
// aggregation query.
type CoverageRow struct {
	Prefix       string
	Count        int64
	AvgCitations float64
	// RecentCount is the number of bucket patents filed in the last two
	// years of the window.
	RecentCount int64
}

// GapRow is one 8-character-prefix bucket from the white-space aggregation:
// filing counts in a historical and a recent window plus the number of
// highly cited historical patents.
type GapRow struct {
	Prefix          string
	HistoricalCount int64
	RecentCount     int64
	HighImpactCount int64
}

// ComboRow describes a prefix that co-occurs with the source prefix on the
// same patents.
type ComboRow struct {
	Prefix       string
	Count        int64
	AvgCitations float64
}

// ActivityRow describes a candidate prefix's standalone activity.
type ActivityRow struct {
	Prefix       string
	Count        int64
	AvgCitations float64
}

// SectionRow is one top-level CPC section bucket.
type SectionRow struct {
	Section     string
	Count       int64
	RecentCount int64
}

// AggregateProvider is the read-only aggregation port backing the cohort
// analytics, implemented by the postgres adapter.  Every method returns raw
// rows; all scoring happens in this package.
type AggregateProvider interface {
	// CoverageBuckets groups patents filed since the window start by
	// classification prefix truncated to level characters, dropping buckets
	// with fewer than minPatents rows.  recentSince marks the last-two-years
	// boundary used for RecentCount.
	CoverageBuckets(ctx context.Context, level int, since, recentSince time.Time, minPatents int) ([]CoverageRow, error)

	// GapBuckets groups patents by 8-character prefix, counting filings in
	// [histFrom, histTo) and [recentFrom, now], plus historical patents whose
	// cited-by count is at least highImpactThreshold.  An optional prefix
	// restricts the buckets.  Buckets with fewer than minHistorical
	// historical filings are dropped.
	GapBuckets(ctx context.Context, prefix string, histFrom, histTo, recentFrom time.Time, minHistorical int, highImpactThreshold int) ([]GapRow, error)

	// CoOccurringPrefixes returns prefixes at the given truncation level that
	// appear on patents also bearing sourcePrefix, excluding prefixes in the
	// source's own section.
	CoOccurringPrefixes(ctx context.Context, sourcePrefix string, level int) ([]ComboRow, error)

	// ActivePrefixes returns prefixes at the given level with at least
	// minCount patents filed since the window start, excluding the named
	// section.
	ActivePrefixes(ctx context.Context, level int, since time.Time, minCount int64, excludeSection string) ([]ActivityRow, error)

	// SectionTotals returns per-section filing counts since the window start
	// along with counts for the recent sub-window.
	SectionTotals(ctx context.Context, since, recentSince time.Time) ([]SectionRow, error)
}

// ReportArchive stores rendered analytics reports, implemented by the minio
// adapter.  Store returns the object path of the archived report.
type ReportArchive interface {
	Store(ctx context.Context, name string, contentType string, payload []byte) (string, error)
}
