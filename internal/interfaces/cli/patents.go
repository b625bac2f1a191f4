package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/patent-radar/pkg/client"
	"github.com/turtacn/patent-radar/pkg/errors"
)

// patentPageView wraps a listing for table output.
type patentPageView struct {
	*client.PatentPage
}

func (v patentPageView) TableHeaders() []string {
	return []string{"PATENT", "TYPE", "STATUS", "EXPIRES", "ASSIGNEE", "TITLE"}
}

func (v patentPageView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Items))
	for _, p := range v.Items {
		rows = append(rows, []string{
			p.PatentNumber,
			p.Type,
			p.Status,
			formatDate(p.ExpirationDate),
			truncate(p.Assignee, 30),
			truncate(p.Title, 50),
		})
	}
	return rows
}

// NewPatentsCmd builds the patents command group.
func NewPatentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patents",
		Short: "Ingest, inspect, and list patents",
	}
	cmd.AddCommand(
		newPatentsIngestCmd(),
		newPatentsGetCmd(),
		newPatentsListCmd(),
		newPatentsBackfillCmd(),
	)
	return cmd
}

func newPatentsIngestCmd() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a patent record from a JSON file",
		Example: `  patradar patents ingest -f patent.json
  cat patent.json | patradar patents ingest -f -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fromFile == "" {
				return errors.InvalidParam("--file is required")
			}

			var raw []byte
			var err error
			if fromFile == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(fromFile)
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", fromFile, err)
			}

			var req client.IngestRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return errors.InvalidParam("file is not a valid patent JSON document")
			}

			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			p, err := cliCtx.Client.Patents().Ingest(ctx, req)
			if err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("ingested %s (%s)", p.PatentNumber, p.Status))
			return nil
		},
	}

	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "patent JSON file, or - for stdin")
	return cmd
}

func newPatentsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <patent-number>",
		Short: "Fetch one patent record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			p, err := cliCtx.Client.Patents().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, p)
		},
	}
}

func newPatentsListCmd() *cobra.Command {
	var opts client.ListPatentsOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			page, err := cliCtx.Client.Patents().List(ctx, opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, patentPageView{page})
		},
	}

	cmd.Flags().StringSliceVar(&opts.Status, "status", nil, "filter by lifecycle status")
	cmd.Flags().StringVar(&opts.CPCPrefix, "cpc", "", "filter by CPC classification prefix")
	cmd.Flags().StringVar(&opts.Assignee, "assignee", "", "filter by assignee")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "result page")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 20, "results per page")
	return cmd
}

func newPatentsBackfillCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "backfill-embeddings",
		Short: "Embed patents that have no vector yet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, ctx, cancel, err := apiContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			embedded, err := cliCtx.Client.Patents().BackfillEmbeddings(ctx, batchSize)
			if err != nil {
				return err
			}
			PrintSuccess(cmd, "embedded "+strconv.Itoa(embedded)+" patents")
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "how many patents to embed")
	return cmd
}
