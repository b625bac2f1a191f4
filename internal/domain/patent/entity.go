// Package patent implements the Patent bounded context aggregate root, value
// objects, and invariant enforcement for the patent-radar platform.  All
// business rules that concern patent documents live here; infrastructure
// concerns (persistence, search) are handled by separate repository and
// adapter layers.
package patent

import (
	"regexp"
	"time"

	"github.com/turtacn/patent-radar/pkg/errors"
	"github.com/turtacn/patent-radar/pkg/types/common"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

var (
	// rePatentUS matches US application and granted patent numbers:
	//   US1234567, US20230012345A1, US10123456B2, USD0891234S1, USRE48123E1 …
	rePatentUS = regexp.MustCompile(`^US(?:RE|D)?\d{6,}[A-Z]?\d?$`)

	// rePatentEP matches EP publication numbers: EP1234567, EP1234567B1 …
	rePatentEP = regexp.MustCompile(`^EP\d{6,}[A-Z]?\d?$`)

	// rePatentWO matches PCT/WIPO numbers: WO2023123456
	rePatentWO = regexp.MustCompile(`^WO\d{10,}$`)
)

// PatentType distinguishes the statutory categories that carry different
// term rules and fee schedules.
type PatentType string

const (
	TypeUtility PatentType = "utility"
	TypeDesign  PatentType = "design"
	TypePlant   PatentType = "plant"
)

// IsValid checks if the PatentType is a recognized category.
func (t PatentType) IsValid() bool {
	switch t {
	case TypeUtility, TypeDesign, TypePlant:
		return true
	default:
		return false
	}
}

// Patent is the aggregate root of the Patent bounded context.  It carries the
// bibliographic record plus the term-adjustment inputs the lifecycle engine
// needs: PTA/PTE day counts and an optional terminal disclaimer date.
//
// Consumers must not modify fields that participate in invariants directly;
// mutations go through the exported methods so invariants hold.
type Patent struct {
	ID common.ID `json:"id"`

	// PatentNumber is the normalized publication number (see NormalizePatentNumber).
	PatentNumber string     `json:"patent_number"`
	Title        string     `json:"title"`
	Abstract     string     `json:"abstract,omitempty"`
	ClaimsText   string     `json:"claims_text,omitempty"`
	Type         PatentType `json:"type"`

	Assignee  string   `json:"assignee,omitempty"`
	Inventors []string `json:"inventors,omitempty"`

	FilingDate      *time.Time `json:"filing_date,omitempty"`
	GrantDate       *time.Time `json:"grant_date,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`

	// ExpirationDate is computed by the lifecycle engine, never entered by hand.
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`

	// PTADays and PTEDays are term adjustment/extension day counts granted by
	// the patent office.  Negative values are stored as-is but ignored by the
	// term calculation.
	PTADays int `json:"pta_days"`
	PTEDays int `json:"pte_days"`

	// TerminalDisclaimer caps the term at the expiration of a referenced
	// earlier patent when set.
	TerminalDisclaimer *time.Time `json:"terminal_disclaimer,omitempty"`

	Status ptypes.PatentStatus `json:"status"`

	CPCCodes []string `json:"cpc_codes,omitempty"`

	// CitationCount is the number of backward citations recorded for this
	// patent, denormalized for analytics queries.
	CitationCount int `json:"citation_count"`

	// Embedding is the dense vector for semantic search.  Empty until the
	// backfill worker has processed the patent.
	Embedding []float32 `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPatent constructs a Patent with a normalized number and validated type.
// The raw number is normalized before validation so callers can pass numbers
// in any of the common notations ("US 10,123,456 B2", "10123456b2", ...).
func NewPatent(rawNumber, title string, patentType PatentType) (*Patent, error) {
	number := NormalizePatentNumber(rawNumber)
	if number == "" {
		return nil, errors.New(errors.ErrCodePatentNumberInvalid, "patent number must not be empty")
	}
	if !validPatentNumber(number) {
		return nil, errors.New(errors.ErrCodePatentNumberInvalid, "unrecognized patent number format").
			WithDetail("number=" + number)
	}
	if title == "" {
		return nil, errors.InvalidParam("title must not be empty")
	}
	if patentType == "" {
		patentType = TypeUtility
	}
	if !patentType.IsValid() {
		return nil, errors.InvalidParam("invalid patent type: " + string(patentType))
	}

	now := time.Now().UTC()
	return &Patent{
		ID:           common.NewID(),
		PatentNumber: number,
		Title:        title,
		Type:         patentType,
		Status:       ptypes.StatusUnknown,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func validPatentNumber(number string) bool {
	return rePatentUS.MatchString(number) ||
		rePatentEP.MatchString(number) ||
		rePatentWO.MatchString(number)
}

// SetDates records the prosecution dates.  Grant before filing is rejected.
func (p *Patent) SetDates(filing, grant, publication *time.Time) error {
	if filing != nil && grant != nil && grant.Before(*filing) {
		return errors.New(errors.ErrCodePatentDateInvalid, "grant date precedes filing date")
	}
	p.FilingDate = filing
	p.GrantDate = grant
	p.PublicationDate = publication
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// SetClassification replaces the CPC codes after normalizing each symbol.
// Codes that normalize to the empty string are dropped.
func (p *Patent) SetClassification(cpcCodes []string) {
	normalized := make([]string, 0, len(cpcCodes))
	for _, code := range cpcCodes {
		if c := NormalizeCPCCode(code); c != "" {
			normalized = append(normalized, c)
		}
	}
	p.CPCCodes = normalized
	p.UpdatedAt = time.Now().UTC()
}

// ApplyLifecycle records the computed expiration date and status.
func (p *Patent) ApplyLifecycle(expiration *time.Time, status ptypes.PatentStatus) error {
	if !status.IsValid() {
		return errors.New(errors.ErrCodePatentStatusInvalid, "invalid patent status: "+string(status))
	}
	p.ExpirationDate = expiration
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// CPCSection returns the one-letter section of the patent's first CPC code,
// or "" when the patent carries no classification.
func (p *Patent) CPCSection() string {
	if len(p.CPCCodes) == 0 || p.CPCCodes[0] == "" {
		return ""
	}
	return p.CPCCodes[0][:1]
}

// HasEmbedding reports whether the semantic vector has been populated.
func (p *Patent) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

// MaintenanceFee is a single entry of a patent's fee schedule.  The window
// opens before the due date and a grace period follows it; a window whose
// grace period ends unpaid lapses the patent.
type MaintenanceFee struct {
	ID           common.ID  `json:"id"`
	PatentNumber string     `json:"patent_number"`
	FeeYear      int        `json:"fee_year"`
	DueDate      time.Time  `json:"due_date"`
	WindowOpen   time.Time  `json:"window_open"`
	GraceEnd     time.Time  `json:"grace_end"`
	Paid         bool       `json:"paid"`
	PaidDate     *time.Time `json:"paid_date,omitempty"`
}

// MarkPaid records payment of the fee.
func (f *MaintenanceFee) MarkPaid(when time.Time) {
	f.Paid = true
	t := when.UTC()
	f.PaidDate = &t
}

// StatusAt classifies the fee relative to asOf using the window boundaries.
func (f *MaintenanceFee) StatusAt(asOf time.Time) ptypes.MaintenanceFeeStatus {
	if f.Paid {
		return ptypes.FeeStatusCurrent
	}
	switch {
	case asOf.After(f.GraceEnd):
		return ptypes.FeeStatusOverdue
	case !asOf.Before(f.WindowOpen):
		return ptypes.FeeStatusDueSoon
	default:
		return ptypes.FeeStatusCurrent
	}
}
