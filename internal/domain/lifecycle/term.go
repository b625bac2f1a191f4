// Package lifecycle implements the patent term engine: expiration date
// calculation, maintenance fee scheduling, and computed status derivation.
// Everything here is a pure function of the patent record so that results are
// reproducible and trivially testable; persistence and event publication live
// in the application layer.
package lifecycle

import (
	"time"

	"github.com/turtacn/patent-radar/internal/domain/patent"
	ptypes "github.com/turtacn/patent-radar/pkg/types/patent"
)

// Term arithmetic is done in whole days, not calendar years, to reproduce the
// exact dates the reference pipeline produces.
const (
	// utilityTermDays is 20 years of 365 days from the filing date.
	utilityTermDays = 20 * 365

	// designTermDays is 15 years of 365 days from the grant date.
	designTermDays = 15 * 365

	// filingEstimateDays approximates the prosecution gap when a record has
	// a grant date but no filing date: filing ~= grant - 3 years.
	filingEstimateDays = 3 * 365

	// graceDays is the statutory six month surcharge period after a fee due
	// date, as int(6 * 30.44) days.
	graceDays = 182

	// windowLeadDays is how far before the due date a fee window opens.
	windowLeadDays = 180
)

// feeSchedulePoints are the USPTO maintenance fee checkpoints.  Offsets are
// int(y * 365.25) days after grant for y in {3.5, 7.5, 11.5}; Label is the
// conventional "year 3 / 7 / 11" fee name.
var feeSchedulePoints = []struct {
	Label      int
	OffsetDays int
}{
	{Label: 3, OffsetDays: 1278},
	{Label: 7, OffsetDays: 2739},
	{Label: 11, OffsetDays: 4200},
}

// CalculateExpirationDate computes the statutory expiration date of a patent.
//
// Design patents expire designTermDays after grant and earn no adjustments.
// Utility and plant patents expire utilityTermDays after filing; when the
// filing date is missing it is estimated as grant minus filingEstimateDays.
// Positive PTA and PTE day counts extend the date, and a terminal disclaimer
// caps it when earlier.  Returns nil when no anchor date is available.
func CalculateExpirationDate(p *patent.Patent) *time.Time {
	if p == nil {
		return nil
	}

	var base *time.Time
	switch p.Type {
	case patent.TypeDesign:
		if p.GrantDate == nil {
			return nil
		}
		d := p.GrantDate.AddDate(0, 0, designTermDays)
		return &d
	default:
		base = p.FilingDate
		if base == nil && p.GrantDate != nil {
			est := p.GrantDate.AddDate(0, 0, -filingEstimateDays)
			base = &est
		}
	}
	if base == nil {
		return nil
	}

	exp := base.AddDate(0, 0, utilityTermDays)
	if p.PTADays > 0 {
		exp = exp.AddDate(0, 0, p.PTADays)
	}
	if p.PTEDays > 0 {
		exp = exp.AddDate(0, 0, p.PTEDays)
	}
	if p.TerminalDisclaimer != nil && p.TerminalDisclaimer.Before(exp) {
		exp = *p.TerminalDisclaimer
	}
	return &exp
}

// CalculateMaintenanceFeeSchedule builds the three-window fee schedule for a
// utility patent.  Design and plant patents owe no maintenance fees, and a
// patent without a grant date has no schedule to anchor.
func CalculateMaintenanceFeeSchedule(p *patent.Patent) []patent.MaintenanceFee {
	if p == nil || p.GrantDate == nil {
		return nil
	}
	if p.Type == patent.TypeDesign || p.Type == patent.TypePlant {
		return nil
	}

	fees := make([]patent.MaintenanceFee, 0, len(feeSchedulePoints))
	for _, point := range feeSchedulePoints {
		due := p.GrantDate.AddDate(0, 0, point.OffsetDays)
		fees = append(fees, patent.MaintenanceFee{
			PatentNumber: p.PatentNumber,
			FeeYear:      point.Label,
			DueDate:      due,
			WindowOpen:   due.AddDate(0, 0, -windowLeadDays),
			GraceEnd:     due.AddDate(0, 0, graceDays),
		})
	}
	return fees
}

// DeterminePatentStatus derives the current lifecycle status.  See
// DeterminePatentStatusAt for the rules.
func DeterminePatentStatus(p *patent.Patent, fees []patent.MaintenanceFee) ptypes.PatentStatus {
	return DeterminePatentStatusAt(p, fees, time.Now().UTC())
}

// DeterminePatentStatusAt derives the lifecycle status as of a reference
// instant:
//
//   - unknown when no expiration date can be computed
//   - expired when asOf is past the expiration date; expiry dominates any
//     unpaid fee state
//   - lapsed when any unpaid fee window's grace period has ended
//   - active otherwise
func DeterminePatentStatusAt(p *patent.Patent, fees []patent.MaintenanceFee, asOf time.Time) ptypes.PatentStatus {
	exp := p.ExpirationDate
	if exp == nil {
		exp = CalculateExpirationDate(p)
	}
	if exp == nil {
		return ptypes.StatusUnknown
	}
	if asOf.After(*exp) {
		return ptypes.StatusExpired
	}
	for _, fee := range fees {
		if !fee.Paid && asOf.After(fee.GraceEnd) {
			return ptypes.StatusLapsed
		}
	}
	return ptypes.StatusActive
}

// DaysUntilExpiration returns the number of whole days from asOf to the
// patent's expiration date, negative when the patent has already expired.
// The second return value is false when no expiration date is available.
func DaysUntilExpiration(p *patent.Patent, asOf time.Time) (int, bool) {
	exp := p.ExpirationDate
	if exp == nil {
		exp = CalculateExpirationDate(p)
	}
	if exp == nil {
		return 0, false
	}
	from := midnightUTC(asOf)
	to := midnightUTC(*exp)
	return int(to.Sub(from).Hours() / 24), true
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
