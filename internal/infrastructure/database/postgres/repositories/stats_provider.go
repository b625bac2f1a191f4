package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/patent-radar/internal/application/citation"
	"github.com/turtacn/patent-radar/internal/application/lifecycle"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// StatsProvider answers the expiration statistics queries behind the
// lifecycle dashboard and the field-average query behind citation stats.
type StatsProvider struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewStatsProvider constructs a ready-to-use StatsProvider.
func NewStatsProvider(pool *pgxpool.Pool, logger logging.Logger) *StatsProvider {
	return &StatsProvider{pool: pool, logger: logger.Named("stats_provider")}
}

var _ lifecycle.StatsProvider = (*StatsProvider)(nil)

// CountExpiringBetween counts active patents expiring in [from, to].
func (p *StatsProvider) CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM patents
		WHERE status = $1 AND expiration_date >= $2 AND expiration_date <= $3`,
		ptypes.StatusActive, from, to).Scan(&count)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "expiring count query failed")
	}
	return count, nil
}

// TopCPCExpiring returns the subclass prefixes with the most active patents
// expiring in the window.
func (p *StatsProvider) TopCPCExpiring(ctx context.Context, from, to time.Time, limit int) ([]lifecycle.CPCCount, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT left(c.code, 4) AS prefix, COUNT(DISTINCT pt.patent_number) AS cnt
		FROM patents pt
		CROSS JOIN LATERAL unnest(pt.cpc_codes) AS c(code)
		WHERE pt.status = $1
		  AND pt.expiration_date >= $2 AND pt.expiration_date <= $3
		  AND length(c.code) >= 4
		GROUP BY prefix
		ORDER BY cnt DESC, prefix ASC
		LIMIT $4`,
		ptypes.StatusActive, from, to, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "top CPC query failed")
	}
	defer rows.Close()

	var out []lifecycle.CPCCount
	for rows.Next() {
		var c lifecycle.CPCCount
		if err := rows.Scan(&c.Prefix, &c.Count); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "failed to scan CPC row")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "CPC row iteration failed")
	}
	return out, nil
}

// ExpirationTimeline buckets active-patent expirations by calendar month for
// the given number of months starting at from.
func (p *StatsProvider) ExpirationTimeline(ctx context.Context, from time.Time, months int) ([]lifecycle.MonthCount, error) {
	to := from.AddDate(0, months, 0)
	rows, err := p.pool.Query(ctx, `
		SELECT to_char(expiration_date, 'YYYY-MM') AS month, COUNT(*) AS cnt
		FROM patents
		WHERE status = $1 AND expiration_date >= $2 AND expiration_date < $3
		GROUP BY month
		ORDER BY month ASC`,
		ptypes.StatusActive, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "timeline query failed")
	}
	defer rows.Close()

	var out []lifecycle.MonthCount
	for rows.Next() {
		var m lifecycle.MonthCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "failed to scan month row")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "month row iteration failed")
	}
	return out, nil
}

// FieldAverages answers the mean cited-by count for a classification prefix,
// used to compute citation indexes.
type FieldAverages struct {
	pool *pgxpool.Pool
}

// NewFieldAverages constructs a ready-to-use FieldAverages provider.
func NewFieldAverages(pool *pgxpool.Pool) *FieldAverages {
	return &FieldAverages{pool: pool}
}

var _ citation.FieldAverageProvider = (*FieldAverages)(nil)

// AverageCitedBy returns the mean citation count across patents bearing a
// code with the given prefix.  An empty field yields zero.
func (f *FieldAverages) AverageCitedBy(ctx context.Context, cpcPrefix string) (float64, error) {
	var avg *float64
	err := f.pool.QueryRow(ctx, `
		SELECT AVG(citation_count) FROM patents
		WHERE EXISTS (SELECT 1 FROM unnest(cpc_codes) AS c(code) WHERE c.code LIKE $1 || '%')`,
		cpcPrefix).Scan(&avg)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "field average query failed")
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
