// Package lifecycle implements the expiration tracking service: recomputing
// term and status when a record changes, listing expiring and lapsed
// patents, surfacing upcoming maintenance fees, and expiration statistics.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	domlc "github.com/turtacn/patent-radar/internal/domain/lifecycle"
	"github.com/turtacn/patent-radar/internal/domain/patent"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/patent-radar/pkg/errors"
	"github.com/turtacn/patent-radar/pkg/types/common"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

const (
	defaultExpiringDays = 365
	defaultLapsedDays   = 90
	defaultFeeDays      = 180
	maxWindowDays       = 3650

	topCPCLimit    = 10
	timelineMonths = 12
)

// statWindows are the fixed lookahead windows of the stats report, in days.
var statWindows = []int{30, 90, 180, 365}

// EventPublisher is the messaging port, implemented by the kafka producer.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, event common.DomainEvent) error
}

// CPCCount pairs a classification prefix with a patent count.
type CPCCount struct {
	Prefix string `json:"prefix"`
	Count  int64  `json:"count"`
}

// MonthCount is one month of the expiration timeline.
type MonthCount struct {
	Month string `json:"month"` // "2026-09"
	Count int64  `json:"count"`
}

// StatsProvider supplies the aggregate queries behind the stats report,
// implemented by the postgres adapter.
type StatsProvider interface {
	CountExpiringBetween(ctx context.Context, from, to time.Time) (int64, error)
	TopCPCExpiring(ctx context.Context, from, to time.Time, limit int) ([]CPCCount, error)
	ExpirationTimeline(ctx context.Context, from time.Time, months int) ([]MonthCount, error)
}

// ExpiringRequest parametrizes the expiring-patents listing.
type ExpiringRequest struct {
	WithinDays int
	CPCPrefix  string
	Assignee   string
	Pagination common.Pagination
}

// ExpiringPatent is one row of the expiring listing.
type ExpiringPatent struct {
	PatentNumber   string                      `json:"patent_number"`
	Title          string                      `json:"title"`
	Assignee       string                      `json:"assignee,omitempty"`
	ExpirationDate *time.Time                  `json:"expiration_date"`
	DaysRemaining  int                         `json:"days_remaining"`
	Status         ptypes.PatentStatus         `json:"status"`
	FeeStatus      ptypes.MaintenanceFeeStatus `json:"fee_status"`
}

// ExpiringResponse is a page of expiring patents.
type ExpiringResponse struct {
	Items    []ExpiringPatent `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// UpcomingFee is one maintenance fee approaching its due date.
type UpcomingFee struct {
	PatentNumber string                      `json:"patent_number"`
	FeeYear      int                         `json:"fee_year"`
	DueDate      time.Time                   `json:"due_date"`
	WindowOpen   time.Time                   `json:"window_open"`
	GraceEnd     time.Time                   `json:"grace_end"`
	Status       ptypes.MaintenanceFeeStatus `json:"status"`
}

// TermFee is one maintenance fee window in a term report.
type TermFee struct {
	FeeYear    int                         `json:"fee_year"`
	DueDate    time.Time                   `json:"due_date"`
	WindowOpen time.Time                   `json:"window_open"`
	GraceEnd   time.Time                   `json:"grace_end"`
	Paid       bool                        `json:"paid"`
	Status     ptypes.MaintenanceFeeStatus `json:"status"`
}

// TermReport is the full term breakdown for one patent.
type TermReport struct {
	PatentNumber       string              `json:"patent_number"`
	PatentType         patent.PatentType   `json:"patent_type"`
	FilingDate         *time.Time          `json:"filing_date,omitempty"`
	GrantDate          *time.Time          `json:"grant_date,omitempty"`
	PTADays            int                 `json:"pta_days,omitempty"`
	PTEDays            int                 `json:"pte_days,omitempty"`
	TerminalDisclaimer *time.Time          `json:"terminal_disclaimer,omitempty"`
	ExpirationDate     *time.Time          `json:"expiration_date,omitempty"`
	DaysRemaining      *int                `json:"days_remaining,omitempty"`
	Status             ptypes.PatentStatus `json:"status"`
	Fees               []TermFee           `json:"fees,omitempty"`
}

// StatsWindow is one lookahead window of the stats report.
type StatsWindow struct {
	Days  int   `json:"days"`
	Count int64 `json:"count"`
}

// StatsReport is the expiration statistics report.
type StatsReport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Windows     []StatsWindow `json:"windows"`
	TopCPC      []CPCCount    `json:"top_cpc"`
	Timeline    []MonthCount  `json:"timeline"`
}

// Service is the lifecycle tracking application service.
type Service interface {
	// Recompute derives expiration, status, and the fee schedule for a stored
	// patent, persists them, and publishes a status-change event when the
	// computed status moved.
	Recompute(ctx context.Context, patentNumber string) (*patent.Patent, error)

	Term(ctx context.Context, patentNumber string) (*TermReport, error)
	Expiring(ctx context.Context, req ExpiringRequest) (*ExpiringResponse, error)
	RecentlyLapsed(ctx context.Context, withinDays int, p common.Pagination) (*ExpiringResponse, error)
	UpcomingFees(ctx context.Context, withinDays int) ([]UpcomingFee, error)
	Stats(ctx context.Context) (*StatsReport, error)

	// MarkFeePaid records payment of a fee year and recomputes the patent.
	MarkFeePaid(ctx context.Context, patentNumber string, feeYear int, when time.Time) error
}

// Deps carries the constructor dependencies.  Events and StatsP are optional;
// without Events no messages are published, without StatsP Stats fails.
type Deps struct {
	Patents patent.Repository
	Fees    patent.FeeRepository
	Events  EventPublisher
	StatsP  StatsProvider
	Logger  logging.Logger
}

type serviceImpl struct {
	patents patent.Repository
	fees    patent.FeeRepository
	events  EventPublisher
	stats   StatsProvider
	logger  logging.Logger
	now     func() time.Time
}

var _ Service = (*serviceImpl)(nil)

// NewService constructs the lifecycle tracking service.
func NewService(d Deps) (Service, error) {
	if d.Patents == nil || d.Fees == nil {
		return nil, appErrors.Internal("lifecycle service requires patent and fee repositories")
	}
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		patents: d.Patents,
		fees:    d.Fees,
		events:  d.Events,
		stats:   d.StatsP,
		logger:  d.Logger.Named("lifecycle"),
		now:     time.Now,
	}, nil
}

func (s *serviceImpl) Recompute(ctx context.Context, patentNumber string) (*patent.Patent, error) {
	p, err := s.loadPatent(ctx, patentNumber)
	if err != nil {
		return nil, err
	}

	expiration := domlc.CalculateExpirationDate(p)
	schedule := domlc.CalculateMaintenanceFeeSchedule(p)
	if err := s.fees.ReplaceSchedule(ctx, p.PatentNumber, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "failed to store fee schedule")
	}

	// Payment state survives ReplaceSchedule, so status is determined from
	// the stored schedule.
	stored, err := s.fees.ListByPatent(ctx, p.PatentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "failed to load fee schedule")
	}

	oldStatus := p.Status
	if err := p.ApplyLifecycle(expiration, s.statusAt(p, expiration, stored)); err != nil {
		return nil, err
	}
	if err := s.patents.UpdateLifecycle(ctx, p.PatentNumber, p.ExpirationDate, p.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "failed to persist lifecycle")
	}

	if oldStatus != p.Status {
		s.publish(ctx, patent.EventTypeStatusChanged,
			patent.NewStatusChangedEvent(p.PatentNumber, oldStatus, p.Status))
	}
	return p, nil
}

func (s *serviceImpl) Term(ctx context.Context, patentNumber string) (*TermReport, error) {
	p, err := s.loadPatent(ctx, patentNumber)
	if err != nil {
		return nil, err
	}
	stored, err := s.fees.ListByPatent(ctx, p.PatentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "failed to load fee schedule")
	}

	now := s.now()
	expiration := domlc.CalculateExpirationDate(p)
	report := &TermReport{
		PatentNumber:       p.PatentNumber,
		PatentType:         p.Type,
		FilingDate:         p.FilingDate,
		GrantDate:          p.GrantDate,
		PTADays:            p.PTADays,
		PTEDays:            p.PTEDays,
		TerminalDisclaimer: p.TerminalDisclaimer,
		ExpirationDate:     expiration,
		Status:             s.statusAt(p, expiration, stored),
	}
	snapshot := *p
	snapshot.ExpirationDate = expiration
	if days, ok := domlc.DaysUntilExpiration(&snapshot, now); ok {
		report.DaysRemaining = &days
	}
	for _, f := range stored {
		report.Fees = append(report.Fees, TermFee{
			FeeYear:    f.FeeYear,
			DueDate:    f.DueDate,
			WindowOpen: f.WindowOpen,
			GraceEnd:   f.GraceEnd,
			Paid:       f.Paid,
			Status:     f.StatusAt(now),
		})
	}
	return report, nil
}

func (s *serviceImpl) Expiring(ctx context.Context, req ExpiringRequest) (*ExpiringResponse, error) {
	if req.WithinDays == 0 {
		req.WithinDays = defaultExpiringDays
	}
	if req.WithinDays < 1 || req.WithinDays > maxWindowDays {
		return nil, appErrors.InvalidParam(fmt.Sprintf("window must be between 1 and %d days", maxWindowDays))
	}
	if req.Pagination.Page == 0 {
		req.Pagination.Page = 1
	}
	if req.Pagination.PageSize == 0 {
		req.Pagination.PageSize = 20
	}
	if err := req.Pagination.Validate(); err != nil {
		return nil, appErrors.InvalidParam(err.Error())
	}

	now := s.now()
	to := now.AddDate(0, 0, req.WithinDays)
	filter := patent.ListFilter{
		Status:          []ptypes.PatentStatus{ptypes.StatusActive},
		CPCPrefix:       req.CPCPrefix,
		Assignee:        req.Assignee,
		ExpiringFrom:    &now,
		ExpiringTo:      &to,
		Pagination:      req.Pagination,
		OrderByExpiring: true,
	}
	return s.listPage(ctx, filter, now, req.Pagination)
}

func (s *serviceImpl) RecentlyLapsed(ctx context.Context, withinDays int, p common.Pagination) (*ExpiringResponse, error) {
	if withinDays == 0 {
		withinDays = defaultLapsedDays
	}
	if withinDays < 1 || withinDays > maxWindowDays {
		return nil, appErrors.InvalidParam(fmt.Sprintf("window must be between 1 and %d days", maxWindowDays))
	}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = 20
	}
	if err := p.Validate(); err != nil {
		return nil, appErrors.InvalidParam(err.Error())
	}

	now := s.now()
	from := now.AddDate(0, 0, -withinDays)
	filter := patent.ListFilter{
		Status:          []ptypes.PatentStatus{ptypes.StatusLapsed, ptypes.StatusExpired},
		ExpiringFrom:    &from,
		ExpiringTo:      &now,
		Pagination:      p,
		OrderByExpiring: true,
	}
	return s.listPage(ctx, filter, now, p)
}

func (s *serviceImpl) UpcomingFees(ctx context.Context, withinDays int) ([]UpcomingFee, error) {
	if withinDays == 0 {
		withinDays = defaultFeeDays
	}
	if withinDays < 1 || withinDays > maxWindowDays {
		return nil, appErrors.InvalidParam(fmt.Sprintf("window must be between 1 and %d days", maxWindowDays))
	}

	now := s.now()
	fees, err := s.fees.ListDueBetween(ctx, now, now.AddDate(0, 0, withinDays))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "failed to list upcoming fees")
	}

	out := make([]UpcomingFee, 0, len(fees))
	for _, f := range fees {
		out = append(out, UpcomingFee{
			PatentNumber: f.PatentNumber,
			FeeYear:      f.FeeYear,
			DueDate:      f.DueDate,
			WindowOpen:   f.WindowOpen,
			GraceEnd:     f.GraceEnd,
			Status:       f.StatusAt(now),
		})
	}
	return out, nil
}

func (s *serviceImpl) Stats(ctx context.Context) (*StatsReport, error) {
	if s.stats == nil {
		return nil, appErrors.Internal("lifecycle stats provider not configured")
	}

	now := s.now()
	report := &StatsReport{GeneratedAt: now.UTC()}
	for _, days := range statWindows {
		count, err := s.stats.CountExpiringBetween(ctx, now, now.AddDate(0, 0, days))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "expiring count failed")
		}
		report.Windows = append(report.Windows, StatsWindow{Days: days, Count: count})
	}

	topCPC, err := s.stats.TopCPCExpiring(ctx, now, now.AddDate(1, 0, 0), topCPCLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "top cpc query failed")
	}
	report.TopCPC = topCPC

	timeline, err := s.stats.ExpirationTimeline(ctx, now, timelineMonths)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "timeline query failed")
	}
	report.Timeline = timeline
	return report, nil
}

func (s *serviceImpl) MarkFeePaid(ctx context.Context, patentNumber string, feeYear int, when time.Time) error {
	number := patent.NormalizePatentNumber(patentNumber)
	if number == "" {
		return appErrors.InvalidParam("patent number must not be empty")
	}
	if feeYear != 3 && feeYear != 7 && feeYear != 11 {
		return appErrors.New(appErrors.ErrCodeFeeYearInvalid, "fee year must be 3, 7, or 11").
			WithDetail(fmt.Sprintf("fee_year=%d", feeYear))
	}
	if when.IsZero() {
		when = s.now()
	}

	if err := s.fees.MarkPaid(ctx, number, feeYear, when); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "failed to record fee payment")
	}

	// A payment can move a lapsed patent back to active.
	if _, err := s.Recompute(ctx, number); err != nil {
		return err
	}
	return nil
}

func (s *serviceImpl) listPage(ctx context.Context, filter patent.ListFilter, now time.Time, p common.Pagination) (*ExpiringResponse, error) {
	patents, total, err := s.patents.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeLifecycleQueryFailed, "patent listing failed")
	}

	items := make([]ExpiringPatent, 0, len(patents))
	for _, rec := range patents {
		item := ExpiringPatent{
			PatentNumber:   rec.PatentNumber,
			Title:          rec.Title,
			Assignee:       rec.Assignee,
			ExpirationDate: rec.ExpirationDate,
			Status:         rec.Status,
			FeeStatus:      s.feeStatus(ctx, rec, now),
		}
		if days, ok := domlc.DaysUntilExpiration(rec, now); ok {
			item.DaysRemaining = days
		}
		items = append(items, item)
	}
	return &ExpiringResponse{
		Items:    items,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}, nil
}

// feeStatus derives the listing's fee column from the stored schedule: the
// first window that is not current wins; paid-out schedules report all_paid.
func (s *serviceImpl) feeStatus(ctx context.Context, p *patent.Patent, now time.Time) ptypes.MaintenanceFeeStatus {
	schedule, err := s.fees.ListByPatent(ctx, p.PatentNumber)
	if err != nil {
		s.logger.Debug("fee schedule unavailable",
			logging.String("patent_number", p.PatentNumber), logging.Err(err))
		return ptypes.FeeStatusNoFees
	}
	if len(schedule) == 0 {
		return ptypes.FeeStatusNoFees
	}

	allPaid := true
	for _, f := range schedule {
		if f.Paid {
			continue
		}
		allPaid = false
		switch f.StatusAt(now) {
		case ptypes.FeeStatusOverdue:
			return ptypes.FeeStatusOverdue
		case ptypes.FeeStatusDueSoon:
			return ptypes.FeeStatusDueSoon
		}
	}
	if allPaid {
		return ptypes.FeeStatusAllPaid
	}
	return ptypes.FeeStatusCurrent
}

func (s *serviceImpl) statusAt(p *patent.Patent, expiration *time.Time, fees []patent.MaintenanceFee) ptypes.PatentStatus {
	snapshot := *p
	snapshot.ExpirationDate = expiration
	return domlc.DeterminePatentStatusAt(&snapshot, fees, s.now())
}

func (s *serviceImpl) loadPatent(ctx context.Context, patentNumber string) (*patent.Patent, error) {
	number := patent.NormalizePatentNumber(patentNumber)
	if number == "" {
		return nil, appErrors.InvalidParam("patent number must not be empty")
	}
	p, err := s.patents.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, appErrors.New(appErrors.CodePatentNotFound, "patent not found").
			WithDetail("patent_number=" + number)
	}
	return p, nil
}

func (s *serviceImpl) publish(ctx context.Context, eventType string, event common.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, event); err != nil {
		wrapped := appErrors.Wrap(err, appErrors.ErrCodeEventPublishFailed, "event publish failed")
		s.logger.Warn("lifecycle event not published",
			logging.String("event_type", eventType), logging.Err(wrapped))
	}
}
