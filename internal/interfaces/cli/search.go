package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/patent-radar/pkg/client"
)

// searchResultView wraps the response for table output.
type searchResultView struct {
	*client.SearchResponse
}

func (v searchResultView) TableHeaders() []string {
	return []string{"PATENT", "SCORE", "STATUS", "ASSIGNEE", "TITLE"}
}

func (v searchResultView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Items))
	for _, item := range v.Items {
		rows = append(rows, []string{
			item.PatentNumber,
			fmt.Sprintf("%.4f", item.Score),
			item.Status,
			truncate(item.Assignee, 30),
			truncate(item.Title, 60),
		})
	}
	return rows
}

// NewSearchCmd builds the search command.
func NewSearchCmd() *cobra.Command {
	var (
		mode      string
		status    []string
		cpcPrefix string
		assignees []string
		page      int
		pageSize  int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the patent corpus",
		Long: "search runs a full-text, semantic, or hybrid query against the corpus\n" +
			"and prints the ranked results.",
		Example: `  patradar search "solid state battery electrolyte"
  patradar search -o table --mode fulltext --cpc H01M "separator membrane"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			resp, err := cliCtx.Client.Search().Query(ctx, client.SearchOptions{
				Query:     strings.TrimSpace(args[0]),
				Mode:      mode,
				Status:    status,
				CPCPrefix: cpcPrefix,
				Assignees: assignees,
				Page:      page,
				PageSize:  pageSize,
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, searchResultView{resp})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "hybrid", "search mode (fulltext, semantic, hybrid)")
	cmd.Flags().StringSliceVar(&status, "status", nil, "filter by lifecycle status")
	cmd.Flags().StringVar(&cpcPrefix, "cpc", "", "filter by CPC classification prefix")
	cmd.Flags().StringSliceVar(&assignees, "assignee", nil, "filter by assignee")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "results per page")
	return cmd
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
