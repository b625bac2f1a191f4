package patent

import (
	"time"

	"github.com/turtacn/patent-radar/pkg/types/common"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// Event type discriminators, used as the Kafka message key prefix.
const (
	EventTypeIngested      = "patent.ingested"
	EventTypeStatusChanged = "patent.status_changed"
	EventTypeFeeDue        = "patent.fee_due"
)

// IngestedEvent is emitted when a patent record is stored or re-ingested.
type IngestedEvent struct {
	common.BaseEvent
	PatentNumber string     `json:"patent_number"`
	Expiration   *time.Time `json:"expiration,omitempty"`
}

// NewIngestedEvent builds an IngestedEvent for the given patent.
func NewIngestedEvent(p *Patent) IngestedEvent {
	return IngestedEvent{
		BaseEvent:    common.NewBaseEvent(p.PatentNumber),
		PatentNumber: p.PatentNumber,
		Expiration:   p.ExpirationDate,
	}
}

// StatusChangedEvent is emitted when the lifecycle engine moves a patent to a
// new computed status.
type StatusChangedEvent struct {
	common.BaseEvent
	PatentNumber string              `json:"patent_number"`
	OldStatus    ptypes.PatentStatus `json:"old_status"`
	NewStatus    ptypes.PatentStatus `json:"new_status"`
}

// NewStatusChangedEvent builds a StatusChangedEvent.
func NewStatusChangedEvent(number string, oldStatus, newStatus ptypes.PatentStatus) StatusChangedEvent {
	return StatusChangedEvent{
		BaseEvent:    common.NewBaseEvent(number),
		PatentNumber: number,
		OldStatus:    oldStatus,
		NewStatus:    newStatus,
	}
}

// FeeDueEvent is emitted when a maintenance fee window opens.
type FeeDueEvent struct {
	common.BaseEvent
	PatentNumber string    `json:"patent_number"`
	FeeYear      int       `json:"fee_year"`
	DueDate      time.Time `json:"due_date"`
	GraceEnd     time.Time `json:"grace_end"`
}

// NewFeeDueEvent builds a FeeDueEvent from a fee schedule entry.
func NewFeeDueEvent(fee MaintenanceFee) FeeDueEvent {
	return FeeDueEvent{
		BaseEvent:    common.NewBaseEvent(fee.PatentNumber),
		PatentNumber: fee.PatentNumber,
		FeeYear:      fee.FeeYear,
		DueDate:      fee.DueDate,
		GraceEnd:     fee.GraceEnd,
	}
}
