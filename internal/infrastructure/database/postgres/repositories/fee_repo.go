package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/turtacn/patent-radar/internal/domain/patent"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	"github.com/turtacn/patent-radar/pkg/types/common"
)

const feeColumns = `id, patent_number, fee_year, due_date, window_open, grace_end, paid, paid_date`

// FeeRepository is the PostgreSQL implementation of the maintenance fee
// schedule port.
type FeeRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewFeeRepository constructs a ready-to-use FeeRepository.
func NewFeeRepository(pool *pgxpool.Pool, logger logging.Logger) *FeeRepository {
	return &FeeRepository{pool: pool, logger: logger.Named("fee_repo")}
}

var _ domain.FeeRepository = (*FeeRepository)(nil)

// ReplaceSchedule swaps a patent's fee schedule inside one transaction.
// Payment state carries over for fee years present in both the old and the
// new schedule.
func (r *FeeRepository) ReplaceSchedule(ctx context.Context, patentNumber string, fees []domain.MaintenanceFee) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Collect existing payment state before wiping the schedule.
	type payment struct {
		paid     bool
		paidDate *time.Time
	}
	paidByYear := map[int]payment{}
	rows, err := tx.Query(ctx,
		`SELECT fee_year, paid, paid_date FROM maintenance_fees WHERE patent_number = $1`,
		patentNumber)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to read fee schedule")
	}
	for rows.Next() {
		var year int
		var pay payment
		if err := rows.Scan(&year, &pay.paid, &pay.paidDate); err != nil {
			rows.Close()
			return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan fee row")
		}
		paidByYear[year] = pay
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "fee row iteration failed")
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM maintenance_fees WHERE patent_number = $1`, patentNumber); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to clear fee schedule")
	}

	for _, fee := range fees {
		id := fee.ID
		if id == "" {
			id = common.NewID()
		}
		paid := fee.Paid
		paidDate := fee.PaidDate
		if prev, ok := paidByYear[fee.FeeYear]; ok && prev.paid {
			paid = true
			paidDate = prev.paidDate
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO maintenance_fees (id, patent_number, fee_year, due_date, window_open, grace_end, paid, paid_date)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			id, patentNumber, fee.FeeYear, fee.DueDate, fee.WindowOpen, fee.GraceEnd, paid, paidDate,
		); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert fee")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to commit fee schedule")
	}
	return nil
}

// ListByPatent returns the schedule ordered by fee year.
func (r *FeeRepository) ListByPatent(ctx context.Context, patentNumber string) ([]domain.MaintenanceFee, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+feeColumns+` FROM maintenance_fees
		 WHERE patent_number = $1 ORDER BY fee_year ASC`, patentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list fees")
	}
	defer rows.Close()
	return scanFees(rows)
}

// MarkPaid records payment of a specific fee year.
func (r *FeeRepository) MarkPaid(ctx context.Context, patentNumber string, feeYear int, when time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE maintenance_fees SET paid = TRUE, paid_date = $3
		WHERE patent_number = $1 AND fee_year = $2`,
		patentNumber, feeYear, when.UTC())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to mark fee paid")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodeFeeYearInvalid, "no such fee year for patent").
			WithDetail("patent_number=" + patentNumber)
	}
	return nil
}

// ListDueBetween returns unpaid fees with due dates in [from, to].
func (r *FeeRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]domain.MaintenanceFee, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+feeColumns+` FROM maintenance_fees
		 WHERE NOT paid AND due_date >= $1 AND due_date <= $2
		 ORDER BY due_date ASC`, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list due fees")
	}
	defer rows.Close()
	return scanFees(rows)
}

func scanFees(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]domain.MaintenanceFee, error) {
	var out []domain.MaintenanceFee
	for rows.Next() {
		var f domain.MaintenanceFee
		if err := rows.Scan(&f.ID, &f.PatentNumber, &f.FeeYear, &f.DueDate,
			&f.WindowOpen, &f.GraceEnd, &f.Paid, &f.PaidDate); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan fee row")
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "fee row iteration failed")
	}
	return out, nil
}
