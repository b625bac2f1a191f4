package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domain "github.com/turtacn/patent-radar/internal/domain/lifecycle"
	"github.com/turtacn/patent-radar/internal/domain/patent"
	"github.com/turtacn/patent-radar/pkg/errors"
)

// termResult is the offline calculator output.
type termResult struct {
	PatentType     string     `json:"patent_type"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	DaysRemaining  *int       `json:"days_remaining,omitempty"`
	Status         string     `json:"status"`
	Fees           []termFee  `json:"fees,omitempty"`
}

type termFee struct {
	FeeYear    int       `json:"fee_year"`
	DueDate    time.Time `json:"due_date"`
	WindowOpen time.Time `json:"window_open"`
	GraceEnd   time.Time `json:"grace_end"`
}

// TableHeaders implements table output for termResult.
func (r termResult) TableHeaders() []string {
	return []string{"FIELD", "VALUE"}
}

func (r termResult) TableRows() [][]string {
	rows := [][]string{
		{"type", r.PatentType},
		{"expiration", formatDate(r.ExpirationDate)},
		{"status", r.Status},
	}
	if r.DaysRemaining != nil {
		rows = append(rows, []string{"days_remaining", fmt.Sprintf("%d", *r.DaysRemaining)})
	}
	for _, fee := range r.Fees {
		rows = append(rows, []string{
			fmt.Sprintf("fee_year_%d", fee.FeeYear),
			fmt.Sprintf("due %s (window %s, grace %s)",
				fee.DueDate.Format("2006-01-02"),
				fee.WindowOpen.Format("2006-01-02"),
				fee.GraceEnd.Format("2006-01-02")),
		})
	}
	return rows
}

// NewTermCmd builds the offline term calculator.  It runs the statutory
// term rules locally, without a server or any backing store.
func NewTermCmd() *cobra.Command {
	var (
		patentType         string
		filingDate         string
		grantDate          string
		ptaDays            int
		pteDays            int
		terminalDisclaimer string
	)

	cmd := &cobra.Command{
		Use:   "term",
		Short: "Calculate a patent term offline",
		Long: "term computes the expiration date, lifecycle status, and maintenance\n" +
			"fee schedule from the statutory rules, entirely offline.",
		Example: `  patradar term --type utility --filing 2010-06-01 --pta 120
  patradar term --type design --grant 2020-03-15
  patradar term --type utility --filing 2010-06-01 --disclaimer 2028-01-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := &patent.Patent{Type: patent.PatentType(patentType)}
			if !p.Type.IsValid() {
				return errors.InvalidParam("type must be utility, design, or plant")
			}

			var err error
			if p.FilingDate, err = parseDateFlag("filing", filingDate); err != nil {
				return err
			}
			if p.GrantDate, err = parseDateFlag("grant", grantDate); err != nil {
				return err
			}
			if p.TerminalDisclaimer, err = parseDateFlag("disclaimer", terminalDisclaimer); err != nil {
				return err
			}
			if p.FilingDate == nil && p.GrantDate == nil {
				return errors.InvalidParam("at least one of --filing or --grant is required")
			}
			p.PTADays = ptaDays
			p.PTEDays = pteDays

			expiration := domain.CalculateExpirationDate(p)
			p.ExpirationDate = expiration
			fees := domain.CalculateMaintenanceFeeSchedule(p)
			status := domain.DeterminePatentStatus(p, fees)

			result := termResult{
				PatentType:     string(p.Type),
				ExpirationDate: expiration,
				Status:         string(status),
			}
			if days, ok := domain.DaysUntilExpiration(p, time.Now().UTC()); ok {
				result.DaysRemaining = &days
			}
			for _, fee := range fees {
				result.Fees = append(result.Fees, termFee{
					FeeYear:    fee.FeeYear,
					DueDate:    fee.DueDate,
					WindowOpen: fee.WindowOpen,
					GraceEnd:   fee.GraceEnd,
				})
			}

			return PrintResult(cmd, result)
		},
	}

	cmd.Flags().StringVar(&patentType, "type", "utility", "patent type (utility, design, plant)")
	cmd.Flags().StringVar(&filingDate, "filing", "", "filing date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&grantDate, "grant", "", "grant date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&ptaDays, "pta", 0, "patent term adjustment in days")
	cmd.Flags().IntVar(&pteDays, "pte", 0, "patent term extension in days")
	cmd.Flags().StringVar(&terminalDisclaimer, "disclaimer", "", "terminal disclaimer date (YYYY-MM-DD)")
	return cmd
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, errors.InvalidParam("--" + name + " must be a YYYY-MM-DD date")
	}
	t = t.UTC()
	return &t, nil
}
