package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"go-sales-analytics/internal/report"
	"go-sales-analytics/internal/store"
	"go-sales-analytics/pkg/utils"
)

func newRunsCmd() *cobra.Command {
	var dbFile, runID string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List report runs stored in a results database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbFile == "" {
				return errors.New("--db is required")
			}
			s, err := store.Open(dbFile)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer s.Close()

			p := report.NewPrinter(cmd.OutOrStdout())
			ctx := cmd.Context()

			if runID == "" {
				runs, err := s.ListRuns(ctx)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					p.Info("No runs stored in %s", dbFile)
					return nil
				}
				p.Section("Runs")
				rows := make([][]string, len(runs))
				for i, r := range runs {
					rows[i] = []string{r.ID, r.Source, r.Status, strconv.Itoa(r.RowsAnalyzed), strconv.Itoa(r.DuplicatesRemoved), elapsed(r.CreatedAt)}
				}
				p.Table([]string{"Run", "Source", "Status", "Rows", "Duplicates", "Stored"}, rows, 3, 4)
				return nil
			}

			results, err := s.GetResults(ctx, runID)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no results stored for run %s", runID)
			}
			p.Section("Run " + runID)
			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{r.Query, strconv.Itoa(r.Rank), r.GroupKey, utils.FormatNumber(r.Value), strconv.Itoa(r.RowCount)}
			}
			p.Table([]string{"Query", "Rank", "Key", "Value", "Count"}, rows, 1, 3, 4)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbFile, "db", "", "SQLite results database")
	cmd.Flags().StringVar(&runID, "run-id", "", "show the stored results of this run")
	return cmd
}

func elapsed(t time.Time) string {
	d := time.Since(t).Round(time.Second)
	if d < time.Minute {
		return "just now"
	}
	return d.String() + " ago"
}
