package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"grantwatch/internal/app"
	"grantwatch/internal/observability"
)

func newSeenCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "seen",
		Short: "Show ledger size and the most recently recorded links",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ledger, err := app.OpenLedger(ctx, cfg, observability.NewNop())
			if err != nil {
				return err
			}
			defer ledger.Close()

			count, err := ledger.Count(ctx)
			if err != nil {
				return err
			}
			records, err := ledger.Recent(ctx, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ledger (%s): %d links\n", cfg.Storage.Driver, count)

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Recorded (UTC)", "Source", "Title", "URL"})
			for _, r := range records {
				t.AppendRow(table.Row{r.CreatedAt.Format("2006-01-02 15:04"), r.Source, r.Title, r.URL})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of recent records to show")
	return cmd
}
