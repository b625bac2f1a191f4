package patent

import (
	"fmt"

	"github.com/turtacn/patent-radar/pkg/types/common"
)

// PatentStatus represents the computed lifecycle state of a patent.
type PatentStatus string

const (
	// StatusActive means the patent is in force: not past its expiration
	// date and no maintenance fee window has lapsed.
	StatusActive PatentStatus = "active"
	// StatusExpired means the statutory term has run out.
	StatusExpired PatentStatus = "expired"
	// StatusLapsed means a maintenance fee window closed unpaid before the
	// term ran out.
	StatusLapsed PatentStatus = "lapsed"
	// StatusUnknown means no expiration date could be computed.
	StatusUnknown PatentStatus = "unknown"
)

// IsValid checks if the PatentStatus is valid.
func (s PatentStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusLapsed, StatusUnknown:
		return true
	default:
		return false
	}
}

// InForce reports whether the patent can still be asserted.
func (s PatentStatus) InForce() bool {
	return s == StatusActive
}

// PatentOffice identifies a patent office.
type PatentOffice string

const (
	OfficeUSPTO PatentOffice = "USPTO"
	OfficeEPO   PatentOffice = "EPO"
	OfficeWIPO  PatentOffice = "WIPO"
	OfficeOther PatentOffice = "OTHER"
)

// IsValid checks if the PatentOffice is supported.
func (o PatentOffice) IsValid() bool {
	switch o {
	case OfficeUSPTO, OfficeEPO, OfficeWIPO, OfficeOther:
		return true
	default:
		return false
	}
}

// CPCSections maps single-letter CPC section symbols to their titles.
var CPCSections = map[string]string{
	"A": "Human Necessities",
	"B": "Performing Operations; Transporting",
	"C": "Chemistry; Metallurgy",
	"D": "Textiles; Paper",
	"E": "Fixed Constructions",
	"F": "Mechanical Engineering; Lighting; Heating",
	"G": "Physics",
	"H": "Electricity",
	"Y": "General Tagging of New Technological Developments",
}

// SectionTitle returns the human-readable title for a CPC section symbol,
// or "Unknown" when the symbol is not a recognized section.
func SectionTitle(section string) string {
	if title, ok := CPCSections[section]; ok {
		return title
	}
	return "Unknown"
}

// SearchMode selects which retrieval legs a search request runs.
type SearchMode string

const (
	SearchFulltext SearchMode = "fulltext"
	SearchSemantic SearchMode = "semantic"
	SearchHybrid   SearchMode = "hybrid"
)

// IsValid checks if the SearchMode is supported.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchFulltext, SearchSemantic, SearchHybrid:
		return true
	default:
		return false
	}
}

// CitationDirection selects which edges a citation traversal follows.
type CitationDirection string

const (
	CitationBackward CitationDirection = "backward"
	CitationForward  CitationDirection = "forward"
	CitationBoth     CitationDirection = "both"
)

// IsValid checks if the CitationDirection is supported.
func (d CitationDirection) IsValid() bool {
	switch d {
	case CitationBackward, CitationForward, CitationBoth:
		return true
	default:
		return false
	}
}

// MaintenanceFeeStatus summarizes where a patent stands against its fee schedule.
type MaintenanceFeeStatus string

const (
	FeeStatusOverdue MaintenanceFeeStatus = "overdue"
	FeeStatusDueSoon MaintenanceFeeStatus = "due_soon"
	FeeStatusCurrent MaintenanceFeeStatus = "current"
	FeeStatusAllPaid MaintenanceFeeStatus = "all_paid"
	FeeStatusNoFees  MaintenanceFeeStatus = "no_fees"
)

// PatentSearchRequest carries parameters for searching patents.
type PatentSearchRequest struct {
	Query      string            `json:"query"`
	Mode       SearchMode        `json:"mode,omitempty"`
	Status     []PatentStatus    `json:"status,omitempty"`
	CPCPrefix  string            `json:"cpc_prefix,omitempty"`
	Assignees  []string          `json:"assignees,omitempty"`
	DateRange  *common.DateRange `json:"date_range,omitempty"`
	Pagination common.Pagination `json:"pagination"`
}

// Validate checks if the PatentSearchRequest is valid.
func (r PatentSearchRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if r.Mode != "" && !r.Mode.IsValid() {
		return fmt.Errorf("invalid search mode: %s", r.Mode)
	}
	if err := r.Pagination.Validate(); err != nil {
		return err
	}
	if r.DateRange != nil {
		if err := r.DateRange.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// NewPatentSearchRequest creates a PatentSearchRequest with default
// hybrid mode and pagination.
func NewPatentSearchRequest(query string) PatentSearchRequest {
	return PatentSearchRequest{
		Query: query,
		Mode:  SearchHybrid,
		Pagination: common.Pagination{
			Page:     1,
			PageSize: 20,
		},
	}
}
