package patent

import (
	"context"
	"time"

	"github.com/turtacn/patent-radar/pkg/types/common"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// ListFilter narrows List queries.  Zero values mean "no constraint".
type ListFilter struct {
	Status          []ptypes.PatentStatus
	CPCPrefix       string
	Assignee        string
	ExpiringFrom    *time.Time
	ExpiringTo      *time.Time
	Pagination      common.Pagination
	OrderByExpiring bool
}

// Repository is the persistence port for the Patent aggregate.
type Repository interface {
	// Save upserts the patent record keyed by its normalized number.
	Save(ctx context.Context, p *Patent) error

	// FindByNumber returns the patent or a CodePatentNotFound error.
	FindByNumber(ctx context.Context, number string) (*Patent, error)

	// FindByNumbers returns the patents that exist; missing numbers are
	// silently dropped.
	FindByNumbers(ctx context.Context, numbers []string) ([]*Patent, error)

	// List returns a page of patents matching the filter plus the total
	// number of matching rows.
	List(ctx context.Context, filter ListFilter) ([]*Patent, int64, error)

	// UpdateLifecycle persists a recomputed expiration date and status.
	UpdateLifecycle(ctx context.Context, number string, expiration *time.Time, status ptypes.PatentStatus) error

	// ListWithoutEmbedding returns up to limit patents that have no semantic
	// vector yet, for the backfill worker.
	ListWithoutEmbedding(ctx context.Context, limit int) ([]*Patent, error)

	// CountEmbedded returns the number of patents with a stored semantic
	// vector.  Zero means the semantic retrieval leg has nothing to search.
	CountEmbedded(ctx context.Context) (int64, error)

	// SaveEmbedding stores the semantic vector for a patent.
	SaveEmbedding(ctx context.Context, number string, vector []float32) error
}

// FeeRepository is the persistence port for maintenance fee schedules.
type FeeRepository interface {
	// ReplaceSchedule atomically replaces a patent's fee schedule, retaining
	// payment state for fee years present in both the old and new schedules.
	ReplaceSchedule(ctx context.Context, patentNumber string, fees []MaintenanceFee) error

	// ListByPatent returns the schedule ordered by fee year.
	ListByPatent(ctx context.Context, patentNumber string) ([]MaintenanceFee, error)

	// MarkPaid records payment of a specific fee year.
	MarkPaid(ctx context.Context, patentNumber string, feeYear int, when time.Time) error

	// ListDueBetween returns unpaid fees with due dates in [from, to],
	// ordered by due date.
	ListDueBetween(ctx context.Context, from, to time.Time) ([]MaintenanceFee, error)
}
