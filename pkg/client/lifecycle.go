package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// LifecycleClient covers the term, expiration, and fee endpoints.
type LifecycleClient struct {
	client *Client
}

// TermFee is one maintenance fee window in a term report.
type TermFee struct {
	FeeYear    int       `json:"fee_year"`
	DueDate    time.Time `json:"due_date"`
	WindowOpen time.Time `json:"window_open"`
	GraceEnd   time.Time `json:"grace_end"`
	Paid       bool      `json:"paid"`
	Status     string    `json:"status"`
}

// TermReport is the expiration breakdown for one patent.
type TermReport struct {
	PatentNumber       string     `json:"patent_number"`
	PatentType         string     `json:"patent_type"`
	FilingDate         *time.Time `json:"filing_date,omitempty"`
	GrantDate          *time.Time `json:"grant_date,omitempty"`
	PTADays            int        `json:"pta_days,omitempty"`
	PTEDays            int        `json:"pte_days,omitempty"`
	TerminalDisclaimer *time.Time `json:"terminal_disclaimer,omitempty"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty"`
	DaysRemaining      *int       `json:"days_remaining,omitempty"`
	Status             string     `json:"status"`
	Fees               []TermFee  `json:"fees,omitempty"`
}

// ExpiringOptions narrows the expiring listing.
type ExpiringOptions struct {
	WithinDays int
	CPCPrefix  string
	Assignee   string
	Page       int
	PageSize   int
}

// ExpiringPatent is one row of the expiring listing.
type ExpiringPatent struct {
	PatentNumber   string     `json:"patent_number"`
	Title          string     `json:"title"`
	Assignee       string     `json:"assignee,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date"`
	DaysRemaining  int        `json:"days_remaining"`
	Status         string     `json:"status"`
	FeeStatus      string     `json:"fee_status"`
}

// ExpiringPage is a page of expiring or lapsed patents.
type ExpiringPage struct {
	Items    []ExpiringPatent `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// UpcomingFee is one maintenance fee approaching its due date.
type UpcomingFee struct {
	PatentNumber string    `json:"patent_number"`
	FeeYear      int       `json:"fee_year"`
	DueDate      time.Time `json:"due_date"`
	WindowOpen   time.Time `json:"window_open"`
	GraceEnd     time.Time `json:"grace_end"`
	Status       string    `json:"status"`
}

// StatsWindow counts active patents expiring within a horizon in days.
type StatsWindow struct {
	Days  int   `json:"days"`
	Count int64 `json:"count"`
}

// CPCCount pairs a classification prefix with an expiring-patent count.
type CPCCount struct {
	Prefix string `json:"prefix"`
	Count  int64  `json:"count"`
}

// MonthCount is an expiration timeline bucket, keyed "2006-01".
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// LifecycleStats is the aggregate expiration dashboard.
type LifecycleStats struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Windows     []StatsWindow `json:"windows"`
	TopCPC      []CPCCount    `json:"top_cpc"`
	Timeline    []MonthCount  `json:"timeline"`
}

// Term fetches the expiration breakdown and fee schedule for a patent.
func (lc *LifecycleClient) Term(ctx context.Context, patentNumber string) (*TermReport, error) {
	var out TermReport
	path := "/api/v1/patents/" + url.PathEscape(patentNumber) + "/term"
	if err := lc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recompute re-derives a patent's lifecycle state on the server.
func (lc *LifecycleClient) Recompute(ctx context.Context, patentNumber string) (*Patent, error) {
	var out Patent
	path := "/api/v1/patents/" + url.PathEscape(patentNumber) + "/term/recompute"
	if err := lc.client.post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Expiring lists active patents expiring inside the window.
func (lc *LifecycleClient) Expiring(ctx context.Context, opts ExpiringOptions) (*ExpiringPage, error) {
	q := url.Values{}
	if opts.WithinDays > 0 {
		q.Set("within_days", strconv.Itoa(opts.WithinDays))
	}
	if opts.CPCPrefix != "" {
		q.Set("cpc_prefix", opts.CPCPrefix)
	}
	if opts.Assignee != "" {
		q.Set("assignee", opts.Assignee)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}

	var out ExpiringPage
	if err := lc.client.get(ctx, withQuery("/api/v1/lifecycle/expiring", q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecentlyLapsed lists patents that lapsed inside the window.
func (lc *LifecycleClient) RecentlyLapsed(ctx context.Context, withinDays int) (*ExpiringPage, error) {
	path := "/api/v1/lifecycle/lapsed"
	if withinDays > 0 {
		path = fmt.Sprintf("%s?within_days=%d", path, withinDays)
	}

	var out ExpiringPage
	if err := lc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpcomingFees lists unpaid maintenance fees due inside the window.
func (lc *LifecycleClient) UpcomingFees(ctx context.Context, withinDays int) ([]UpcomingFee, error) {
	path := "/api/v1/lifecycle/fees/upcoming"
	if withinDays > 0 {
		path = fmt.Sprintf("%s?within_days=%d", path, withinDays)
	}

	var out struct {
		Items []UpcomingFee `json:"items"`
	}
	if err := lc.client.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Stats fetches the aggregate expiration dashboard.
func (lc *LifecycleClient) Stats(ctx context.Context) (*LifecycleStats, error) {
	var out LifecycleStats
	if err := lc.client.get(ctx, "/api/v1/lifecycle/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkFeePaid records a maintenance fee payment.  A zero paidDate
// defaults to the server's current date.
func (lc *LifecycleClient) MarkFeePaid(ctx context.Context, patentNumber string, feeYear int, paidDate time.Time) error {
	path := fmt.Sprintf("/api/v1/patents/%s/fees/%d/payments", url.PathEscape(patentNumber), feeYear)

	var body interface{}
	if !paidDate.IsZero() {
		body = map[string]string{"paid_date": paidDate.Format("2006-01-02")}
	}
	return lc.client.post(ctx, path, body, nil)
}
