package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/patent-radar/pkg/client"
	"github.com/turtacn/patent-radar/pkg/errors"
)

// expiringPageView wraps an expiring or lapsed listing for table output.
type expiringPageView struct {
	*client.ExpiringPage
}

func (v expiringPageView) TableHeaders() []string {
	return []string{"PATENT", "EXPIRES", "DAYS", "STATUS", "FEES", "ASSIGNEE"}
}

func (v expiringPageView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Items))
	for _, p := range v.Items {
		rows = append(rows, []string{
			p.PatentNumber,
			formatDate(p.ExpirationDate),
			strconv.Itoa(p.DaysRemaining),
			p.Status,
			p.FeeStatus,
			truncate(p.Assignee, 30),
		})
	}
	return rows
}

type upcomingFeesView []client.UpcomingFee

func (v upcomingFeesView) TableHeaders() []string {
	return []string{"PATENT", "YEAR", "DUE", "WINDOW OPEN", "GRACE END", "STATUS"}
}

func (v upcomingFeesView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, fee := range v {
		rows = append(rows, []string{
			fee.PatentNumber,
			strconv.Itoa(fee.FeeYear),
			fee.DueDate.Format("2006-01-02"),
			fee.WindowOpen.Format("2006-01-02"),
			fee.GraceEnd.Format("2006-01-02"),
			fee.Status,
		})
	}
	return rows
}

// NewLifecycleCmd builds the lifecycle command group.
func NewLifecycleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifecycle",
		Short: "Patent term, expiration, and maintenance fee tracking",
	}
	cmd.AddCommand(
		newLifecycleTermCmd(),
		newLifecycleRecomputeCmd(),
		newLifecycleExpiringCmd(),
		newLifecycleLapsedCmd(),
		newLifecycleFeesCmd(),
		newLifecyclePayCmd(),
		newLifecycleStatsCmd(),
	)
	return cmd
}

func newLifecycleTermCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "term <patent-number>",
		Short: "Show the term breakdown and fee schedule for a patent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			report, err := cliCtx.Client.Lifecycle().Term(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, report)
		},
	}
}

func newLifecycleRecomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <patent-number>",
		Short: "Re-derive a patent's expiration, status, and fee schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			p, err := cliCtx.Client.Lifecycle().Recompute(ctx, args[0])
			if err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("recomputed %s: status=%s expiration=%s",
				p.PatentNumber, p.Status, formatDate(p.ExpirationDate)))
			return nil
		},
	}
}

func newLifecycleExpiringCmd() *cobra.Command {
	var opts client.ExpiringOptions

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List active patents approaching expiration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			page, err := cliCtx.Client.Lifecycle().Expiring(ctx, opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, expiringPageView{page})
		},
	}

	cmd.Flags().IntVar(&opts.WithinDays, "within", 365, "window in days")
	cmd.Flags().StringVar(&opts.CPCPrefix, "cpc", "", "filter by CPC classification prefix")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "filter by assignee")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "result page")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "results per page")
	return cmd
}

func newLifecycleLapsedCmd() *cobra.Command {
	var withinDays int

	cmd := &cobra.Command{
		Use:   "lapsed",
		Short: "List patents that recently lapsed or expired",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			page, err := cliCtx.Client.Lifecycle().RecentlyLapsed(ctx, withinDays)
			if err != nil {
				return err
			}
			return PrintResult(cmd, expiringPageView{page})
		},
	}

	cmd.Flags().IntVar(&withinDays, "within", 90, "window in days")
	return cmd
}

func newLifecycleFeesCmd() *cobra.Command {
	var withinDays int

	cmd := &cobra.Command{
		Use:   "fees",
		Short: "List upcoming maintenance fee deadlines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			fees, err := cliCtx.Client.Lifecycle().UpcomingFees(ctx, withinDays)
			if err != nil {
				return err
			}
			return PrintResult(cmd, upcomingFeesView(fees))
		},
	}

	cmd.Flags().IntVar(&withinDays, "within", 180, "window in days")
	return cmd
}

func newLifecyclePayCmd() *cobra.Command {
	var paidDate string

	cmd := &cobra.Command{
		Use:     "pay <patent-number> <fee-year>",
		Short:   "Record a maintenance fee payment",
		Example: `  patradar lifecycle pay US1234567B2 7 --date 2026-06-15`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			feeYear, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.InvalidParam("fee year must be a number")
			}

			var when time.Time
			if paidDate != "" {
				when, err = time.Parse("2006-01-02", paidDate)
				if err != nil {
					return errors.InvalidParam("--date must be a YYYY-MM-DD date")
				}
			}

			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			if err := cliCtx.Client.Lifecycle().MarkFeePaid(ctx, args[0], feeYear, when); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("fee year %d paid for %s", feeYear, args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&paidDate, "date", "", "payment date (YYYY-MM-DD, default today)")
	return cmd
}

func newLifecycleStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the aggregate expiration dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			stats, err := cliCtx.Client.Lifecycle().Stats(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, stats)
		},
	}
}
