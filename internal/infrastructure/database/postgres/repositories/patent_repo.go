package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/turtacn/patent-radar/internal/domain/patent"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

const patentColumns = `id, patent_number, title, abstract, claims_text, patent_type,
	assignee, inventors, filing_date, grant_date, publication_date,
	expiration_date, pta_days, pte_days, terminal_disclaimer, status,
	cpc_codes, citation_count, embedding, created_at, updated_at`

// PatentRepository is the PostgreSQL implementation of the patent domain's
// Repository port.  All queries are parameterised.
type PatentRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPatentRepository constructs a ready-to-use PatentRepository.
func NewPatentRepository(pool *pgxpool.Pool, logger logging.Logger) *PatentRepository {
	return &PatentRepository{pool: pool, logger: logger.Named("patent_repo")}
}

var _ domain.Repository = (*PatentRepository)(nil)

// Save upserts the record keyed by its normalized patent number.
func (r *PatentRepository) Save(ctx context.Context, p *domain.Patent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patents (
			id, patent_number, title, abstract, claims_text, patent_type,
			assignee, inventors, filing_date, grant_date, publication_date,
			expiration_date, pta_days, pte_days, terminal_disclaimer, status,
			cpc_codes, citation_count, embedding, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10,$11,
			$12,$13,$14,$15,$16,
			$17,$18,$19,$20,$21
		)
		ON CONFLICT (patent_number) DO UPDATE SET
			title = EXCLUDED.title,
			abstract = EXCLUDED.abstract,
			claims_text = EXCLUDED.claims_text,
			patent_type = EXCLUDED.patent_type,
			assignee = EXCLUDED.assignee,
			inventors = EXCLUDED.inventors,
			filing_date = EXCLUDED.filing_date,
			grant_date = EXCLUDED.grant_date,
			publication_date = EXCLUDED.publication_date,
			expiration_date = EXCLUDED.expiration_date,
			pta_days = EXCLUDED.pta_days,
			pte_days = EXCLUDED.pte_days,
			terminal_disclaimer = EXCLUDED.terminal_disclaimer,
			status = EXCLUDED.status,
			cpc_codes = EXCLUDED.cpc_codes,
			citation_count = EXCLUDED.citation_count,
			updated_at = NOW()`,
		p.ID, p.PatentNumber, p.Title, p.Abstract, p.ClaimsText, p.Type,
		p.Assignee, p.Inventors, p.FilingDate, p.GrantDate, p.PublicationDate,
		p.ExpirationDate, p.PTADays, p.PTEDays, p.TerminalDisclaimer, p.Status,
		p.CPCCodes, p.CitationCount, p.Embedding, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("patent upsert failed",
			logging.String("patent_number", p.PatentNumber), logging.Err(err))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to upsert patent")
	}
	return nil
}

// FindByNumber returns the patent or a CodePatentNotFound error.
func (r *PatentRepository) FindByNumber(ctx context.Context, number string) (*domain.Patent, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+patentColumns+` FROM patents WHERE patent_number = $1`, number)
	p, err := scanPatent(row)
	if isNoRows(err) {
		return nil, appErrors.New(appErrors.CodePatentNotFound, "patent not found").
			WithDetail("patent_number=" + number)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load patent")
	}
	return p, nil
}

// FindByNumbers returns the patents that exist; missing numbers are dropped.
func (r *PatentRepository) FindByNumbers(ctx context.Context, numbers []string) ([]*domain.Patent, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+patentColumns+` FROM patents WHERE patent_number = ANY($1)`, numbers)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to load patents")
	}
	defer rows.Close()
	return scanPatents(rows)
}

// List returns a page of patents matching the filter plus the total count.
func (r *PatentRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Patent, int64, error) {
	var (
		conditions []string
		args       []interface{}
	)
	nextArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		conditions = append(conditions, fmt.Sprintf("status = ANY(%s)", nextArg(statuses)))
	}
	if filter.CPCPrefix != "" {
		ph := nextArg(filter.CPCPrefix + "%")
		conditions = append(conditions,
			fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(cpc_codes) AS c WHERE c LIKE %s)", ph))
	}
	if filter.Assignee != "" {
		ph := nextArg("%" + filter.Assignee + "%")
		conditions = append(conditions, fmt.Sprintf("assignee ILIKE %s", ph))
	}
	if filter.ExpiringFrom != nil {
		ph := nextArg(*filter.ExpiringFrom)
		conditions = append(conditions, fmt.Sprintf("expiration_date >= %s", ph))
	}
	if filter.ExpiringTo != nil {
		ph := nextArg(*filter.ExpiringTo)
		conditions = append(conditions, fmt.Sprintf("expiration_date <= %s", ph))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM patents %s", whereClause)
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count patents")
	}

	orderBy := "updated_at DESC, patent_number ASC"
	if filter.OrderByExpiring {
		orderBy = "expiration_date ASC NULLS LAST, patent_number ASC"
	}

	page := filter.Pagination.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	phLimit := nextArg(pageSize)
	phOffset := nextArg((page - 1) * pageSize)

	dataSQL := fmt.Sprintf(`SELECT %s FROM patents %s ORDER BY %s LIMIT %s OFFSET %s`,
		patentColumns, whereClause, orderBy, phLimit, phOffset)

	rows, err := r.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list patents")
	}
	defer rows.Close()

	patents, err := scanPatents(rows)
	if err != nil {
		return nil, 0, err
	}
	return patents, total, nil
}

// UpdateLifecycle persists a recomputed expiration date and status.
func (r *PatentRepository) UpdateLifecycle(ctx context.Context, number string, expiration *time.Time, status ptypes.PatentStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patents SET expiration_date = $2, status = $3, updated_at = NOW()
		WHERE patent_number = $1`,
		number, expiration, status)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to update patent lifecycle")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.CodePatentNotFound, "patent not found").
			WithDetail("patent_number=" + number)
	}
	return nil
}

// ListWithoutEmbedding returns up to limit patents with no semantic vector.
func (r *PatentRepository) ListWithoutEmbedding(ctx context.Context, limit int) ([]*domain.Patent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+patentColumns+` FROM patents
		 WHERE embedding IS NULL ORDER BY created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list unembedded patents")
	}
	defer rows.Close()
	return scanPatents(rows)
}

// CountEmbedded returns the number of patents with a stored semantic vector.
func (r *PatentRepository) CountEmbedded(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patents WHERE embedding IS NOT NULL`).Scan(&count)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count embedded patents")
	}
	return count, nil
}

// SaveEmbedding stores the semantic vector for a patent.
func (r *PatentRepository) SaveEmbedding(ctx context.Context, number string, vector []float32) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patents SET embedding = $2, updated_at = NOW()
		WHERE patent_number = $1`, number, vector)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to store embedding")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.CodePatentNotFound, "patent not found").
			WithDetail("patent_number=" + number)
	}
	return nil
}

func scanPatent(row rowScanner) (*domain.Patent, error) {
	var p domain.Patent
	err := row.Scan(
		&p.ID, &p.PatentNumber, &p.Title, &p.Abstract, &p.ClaimsText, &p.Type,
		&p.Assignee, &p.Inventors, &p.FilingDate, &p.GrantDate, &p.PublicationDate,
		&p.ExpirationDate, &p.PTADays, &p.PTEDays, &p.TerminalDisclaimer, &p.Status,
		&p.CPCCodes, &p.CitationCount, &p.Embedding, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPatents(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*domain.Patent, error) {
	var out []*domain.Patent
	for rows.Next() {
		p, err := scanPatent(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan patent row")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "patent row iteration failed")
	}
	return out, nil
}
