package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/patent-radar/internal/application/analytics"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
)

// AggregateProvider answers the cohort aggregation queries behind the
// analytics service.  Buckets come from unnesting each patent's CPC codes and
// truncating the symbol to the requested prefix length, so a patent carrying
// codes in two buckets counts in both.
type AggregateProvider struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewAggregateProvider constructs a ready-to-use AggregateProvider.
func NewAggregateProvider(pool *pgxpool.Pool, logger logging.Logger) *AggregateProvider {
	return &AggregateProvider{pool: pool, logger: logger.Named("aggregate_provider")}
}

var _ analytics.AggregateProvider = (*AggregateProvider)(nil)

// CoverageBuckets groups patents filed since the window start by truncated
// CPC prefix.
func (p *AggregateProvider) CoverageBuckets(ctx context.Context, level int, since, recentSince time.Time, minPatents int) ([]analytics.CoverageRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT left(c.code, $1) AS prefix,
		       COUNT(DISTINCT pt.patent_number) AS cnt,
		       AVG(pt.citation_count) AS avg_citations,
		       COUNT(DISTINCT pt.patent_number) FILTER (WHERE pt.filing_date >= $3) AS recent_cnt
		FROM patents pt
		CROSS JOIN LATERAL unnest(pt.cpc_codes) AS c(code)
		WHERE pt.filing_date >= $2 AND length(c.code) >= $1
		GROUP BY prefix
		HAVING COUNT(DISTINCT pt.patent_number) >= $4
		ORDER BY cnt DESC, prefix ASC`,
		level, since, recentSince, minPatents)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "coverage aggregation failed")
	}
	defer rows.Close()

	var out []analytics.CoverageRow
	for rows.Next() {
		var r analytics.CoverageRow
		if err := rows.Scan(&r.Prefix, &r.Count, &r.AvgCitations, &r.RecentCount); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "failed to scan coverage row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "coverage row iteration failed")
	}
	return out, nil
}

// GapBuckets groups patents by 8-character prefix across a historical and a
// recent filing window.
func (p *AggregateProvider) GapBuckets(ctx context.Context, prefix string, histFrom, histTo, recentFrom time.Time, minHistorical, highImpactThreshold int) ([]analytics.GapRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT left(c.code, 8) AS prefix,
		       COUNT(DISTINCT pt.patent_number) FILTER (WHERE pt.filing_date >= $2 AND pt.filing_date < $3) AS hist_cnt,
		       COUNT(DISTINCT pt.patent_number) FILTER (WHERE pt.filing_date >= $4) AS recent_cnt,
		       COUNT(DISTINCT pt.patent_number) FILTER (
		           WHERE pt.filing_date >= $2 AND pt.filing_date < $3 AND pt.citation_count >= $5
		       ) AS high_impact_cnt
		FROM patents pt
		CROSS JOIN LATERAL unnest(pt.cpc_codes) AS c(code)
		WHERE length(c.code) >= 8 AND ($1 = '' OR c.code LIKE $1 || '%')
		GROUP BY prefix
		HAVING COUNT(DISTINCT pt.patent_number) FILTER (WHERE pt.filing_date >= $2 AND pt.filing_date < $3) >= $6
		ORDER BY prefix ASC`,
		prefix, histFrom, histTo, recentFrom, highImpactThreshold, minHistorical)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "gap aggregation failed")
	}
	defer rows.Close()

	var out []analytics.GapRow
	for rows.Next() {
		var r analytics.GapRow
		if err := rows.Scan(&r.Prefix, &r.HistoricalCount, &r.RecentCount, &r.HighImpactCount); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "failed to scan gap row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "gap row iteration failed")
	}
	return out, nil
}

// CoOccurringPrefixes returns prefixes appearing on patents that also bear
// the source prefix, excluding the source's own section.
func (p *AggregateProvider) CoOccurringPrefixes(ctx context.Context, sourcePrefix string, level int) ([]analytics.ComboRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT left(c.code, $2) AS prefix,
		       COUNT(DISTINCT pt.patent_number) AS cnt,
		       AVG(pt.citation_count) AS avg_citations
		FROM patents pt
		CROSS JOIN LATERAL unnest(pt.cpc_codes) AS c(code)
		WHERE length(c.code) >= $2
		  AND left(c.code, 1) <> left($1, 1)
		  AND EXISTS (
		      SELECT 1 FROM unnest(pt.cpc_codes) AS s(code) WHERE s.code LIKE $1 || '%'
		  )
		GROUP BY prefix
		ORDER BY cnt DESC, prefix ASC`,
		sourcePrefix, level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "co-occurrence aggregation failed")
	}
	defer rows.Close()

	var out []analytics.ComboRow
	for rows.Next() {
		var r analytics.ComboRow
		if err := rows.Scan(&r.Prefix, &r.Count, &r.AvgCitations); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "failed to scan combo row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "combo row iteration failed")
	}
	return out, nil
}

// ActivePrefixes returns prefixes with at least minCount patents filed since
// the window start, excluding the named section.
func (p *AggregateProvider) ActivePrefixes(ctx context.Context, level int, since time.Time, minCount int64, excludeSection string) ([]analytics.ActivityRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT left(c.code, $1) AS prefix,
		       COUNT(DISTINCT pt.patent_number) AS cnt,
		       AVG(pt.citation_count) AS avg_citations
		FROM patents pt
		CROSS JOIN LATERAL unnest(pt.cpc_codes) AS c(code)
		WHERE pt.filing_date >= $2
		  AND length(c.code) >= $1
		  AND ($4 = '' OR left(c.code, 1) <> $4)
		GROUP BY prefix
		HAVING COUNT(DISTINCT pt.patent_number) >= $3
		ORDER BY cnt DESC, prefix ASC`,
		level, since, minCount, excludeSection)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "activity aggregation failed")
	}
	defer rows.Close()

	var out []analytics.ActivityRow
	for rows.Next() {
		var r analytics.ActivityRow
		if err := rows.Scan(&r.Prefix, &r.Count, &r.AvgCitations); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "failed to scan activity row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "activity row iteration failed")
	}
	return out, nil
}

// SectionTotals returns per-section filing counts since the window start.
func (p *AggregateProvider) SectionTotals(ctx context.Context, since, recentSince time.Time) ([]analytics.SectionRow, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT left(c.code, 1) AS section,
		       COUNT(DISTINCT pt.patent_number) AS cnt,
		       COUNT(DISTINCT pt.patent_number) FILTER (WHERE pt.filing_date >= $2) AS recent_cnt
		FROM patents pt
		CROSS JOIN LATERAL unnest(pt.cpc_codes) AS c(code)
		WHERE pt.filing_date >= $1 AND c.code <> ''
		GROUP BY section
		ORDER BY cnt DESC, section ASC`,
		since, recentSince)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "section aggregation failed")
	}
	defer rows.Close()

	var out []analytics.SectionRow
	for rows.Next() {
		var r analytics.SectionRow
		if err := rows.Scan(&r.Section, &r.Count, &r.RecentCount); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "failed to scan section row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeAnalyticsQueryFailed, "section row iteration failed")
	}
	return out, nil
}
