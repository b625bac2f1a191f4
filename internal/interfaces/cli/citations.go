package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/patent-radar/pkg/client"
)

type rankedView []client.RankedPatent

func (v rankedView) TableHeaders() []string {
	return []string{"PATENT", "CITED BY"}
}

func (v rankedView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, r := range v {
		rows = append(rows, []string{r.PatentNumber, strconv.FormatInt(r.CitedByCount, 10)})
	}
	return rows
}

// NewCitationsCmd builds the citations command group.
func NewCitationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "citations",
		Short: "Citation graph walks, statistics, and rankings",
	}
	cmd.AddCommand(
		newCitationsNetworkCmd(),
		newCitationsStatsCmd(),
		newCitationsMostCitedCmd(),
	)
	return cmd
}

func newCitationsNetworkCmd() *cobra.Command {
	var opts client.NetworkOptions

	cmd := &cobra.Command{
		Use:     "network <patent-number>",
		Short:   "Walk the citation neighborhood of a patent",
		Example: `  patradar citations network US1234567B2 --depth 3 --direction backward`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			network, err := cliCtx.Client.Citations().Network(ctx, args[0], opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, network)
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "walk depth (max 5)")
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", 0, "node budget (max 500)")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "walk direction (forward, backward, both)")
	return cmd
}

func newCitationsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <patent-number>",
		Short: "Show citation counts and the field-relative citation index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			stats, err := cliCtx.Client.Citations().Stats(ctx, args[0])
			if err != nil {
				return err
			}
			if cliCtx.Options.OutputFormat == "text" {
				fmt.Fprintf(cmd.OutOrStdout(),
					"%s: cites %d, cited by %d, field average %.2f, citation index %.2f\n",
					stats.PatentNumber, stats.CitedCount, stats.CitedByCount,
					stats.FieldAverage, stats.CitationIndex)
				return nil
			}
			return PrintResult(cmd, stats)
		},
	}
}

func newCitationsMostCitedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "most-cited",
		Short: "Rank patents by inbound citation count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			ranked, err := cliCtx.Client.Citations().MostCited(ctx, limit)
			if err != nil {
				return err
			}
			return PrintResult(cmd, rankedView(ranked))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "how many patents to rank")
	return cmd
}
