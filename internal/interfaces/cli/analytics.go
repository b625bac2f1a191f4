package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/patent-radar/pkg/client"
)

type coverageView struct {
	*client.CoverageReport
}

func (v coverageView) TableHeaders() []string {
	return []string{"PREFIX", "SECTION", "COUNT", "RECENT", "GROWTH", "DENSITY"}
}

func (v coverageView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Buckets))
	for _, b := range v.Buckets {
		rows = append(rows, []string{
			b.Prefix,
			truncate(b.SectionTitle, 40),
			strconv.FormatInt(b.Count, 10),
			strconv.FormatInt(b.RecentCount, 10),
			fmt.Sprintf("%.2f", b.GrowthRate),
			fmt.Sprintf("%.3f", b.DensityScore),
		})
	}
	return rows
}

type whiteSpaceView struct {
	*client.WhiteSpaceReport
}

func (v whiteSpaceView) TableHeaders() []string {
	return []string{"PREFIX", "SECTION", "GAP", "DECLINE", "IMPACT", "OPPORTUNITY"}
}

func (v whiteSpaceView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Items))
	for _, ws := range v.Items {
		rows = append(rows, []string{
			ws.Prefix,
			truncate(ws.SectionTitle, 40),
			fmt.Sprintf("%.3f", ws.GapScore),
			fmt.Sprintf("%.2f", ws.DeclineRatio),
			fmt.Sprintf("%.2f", ws.ImpactFactor),
			ws.Opportunity,
		})
	}
	return rows
}

type crossDomainView struct {
	*client.CrossDomainReport
}

func (v crossDomainView) TableHeaders() []string {
	return []string{"PREFIX", "SECTION", "PATENTS", "AVG CITES", "SCORE", "STATUS"}
}

func (v crossDomainView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Items))
	for _, item := range v.Items {
		rows = append(rows, []string{
			item.Prefix,
			truncate(item.SectionTitle, 40),
			strconv.FormatInt(item.PatentCount, 10),
			fmt.Sprintf("%.2f", item.AvgCitations),
			fmt.Sprintf("%.3f", item.Score),
			item.Status,
		})
	}
	return rows
}

type sectionsView struct {
	*client.SectionReport
}

func (v sectionsView) TableHeaders() []string {
	return []string{"SECTION", "TITLE", "COUNT", "SHARE", "MOMENTUM", "TREND"}
}

func (v sectionsView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Sections))
	for _, s := range v.Sections {
		rows = append(rows, []string{
			s.Section,
			truncate(s.Title, 40),
			strconv.FormatInt(s.Count, 10),
			fmt.Sprintf("%.1f%%", s.Share*100),
			fmt.Sprintf("%.2f", s.Momentum),
			s.Trend,
		})
	}
	return rows
}

// NewAnalyticsCmd builds the analytics command group.
func NewAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Cohort coverage, white-space, and cross-domain discovery",
	}
	cmd.AddCommand(
		newAnalyticsCoverageCmd(),
		newAnalyticsWhiteSpacesCmd(),
		newAnalyticsCrossDomainCmd(),
		newAnalyticsSectionsCmd(),
	)
	return cmd
}

func newAnalyticsCoverageCmd() *cobra.Command {
	var opts client.CoverageOptions

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Map patenting density across classification cohorts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			report, err := cliCtx.Client.Analytics().Coverage(ctx, opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, coverageView{report})
		},
	}

	cmd.Flags().IntVar(&opts.CPCLevel, "level", 0, "CPC aggregation level")
	cmd.Flags().IntVar(&opts.MinPatents, "min-patents", 0, "minimum cohort size")
	cmd.Flags().IntVar(&opts.Years, "years", 0, "recent window in years")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "archive the report to object storage")
	return cmd
}

func newAnalyticsWhiteSpacesCmd() *cobra.Command {
	var opts client.WhiteSpaceOptions

	cmd := &cobra.Command{
		Use:   "white-spaces",
		Short: "Rank under-patented areas by gap score",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			report, err := cliCtx.Client.Analytics().WhiteSpaces(ctx, opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, whiteSpaceView{report})
		},
	}

	cmd.Flags().StringVar(&opts.CPCPrefix, "cpc", "", "restrict to a CPC classification prefix")
	cmd.Flags().Float64Var(&opts.MinGapScore, "min-gap", 0, "minimum gap score")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "archive the report to object storage")
	return cmd
}

func newAnalyticsCrossDomainCmd() *cobra.Command {
	var opts client.CrossDomainOptions

	cmd := &cobra.Command{
		Use:     "cross-domain",
		Short:   "Rank adjacent domains for a source classification",
		Example: `  patradar analytics cross-domain --source H01M`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			report, err := cliCtx.Client.Analytics().CrossDomain(ctx, opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, crossDomainView{report})
		},
	}

	cmd.Flags().StringVar(&opts.SourceCPC, "source", "", "source CPC classification")
	cmd.Flags().IntVar(&opts.MaxResults, "limit", 0, "maximum results")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "archive the report to object storage")
	return cmd
}

func newAnalyticsSectionsCmd() *cobra.Command {
	var (
		years   int
		archive bool
	)

	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Show the per-section corpus overview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			report, err := cliCtx.Client.Analytics().Sections(ctx, years, archive)
			if err != nil {
				return err
			}
			return PrintResult(cmd, sectionsView{report})
		},
	}

	cmd.Flags().IntVar(&years, "years", 0, "recent window in years")
	cmd.Flags().BoolVar(&archive, "archive", false, "archive the report to object storage")
	return cmd
}
