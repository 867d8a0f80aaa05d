package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"go-sales-analytics/internal/config"
	"go-sales-analytics/internal/logging"
)

const version = "0.1.0"

var logLevel string

// NewRootCmd builds the sales-report command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "sales-report",
		Short:   "Retail sales analytics report",
		Version: version,
		Long: `Loads a retail sales CSV or XLSX file (local path or http(s) URL), derives
calendar features, removes duplicate rows and prints descriptive statistics,
yearly, monthly, category, region and product aggregations.`,
		Example: `  # Standard report
  $ sales-report analyze superstore.csv

  # Only 2016 and 2017 furniture, exported to Excel and SQLite
  $ sales-report analyze superstore.csv --year 2016,2017 --category Furniture \
      --export results.xlsx --db results.db

  # Custom queries from a report spec
  $ sales-report analyze --spec report.yaml

  # Runs stored in a results database
  $ sales-report runs --db results.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := logging.Setup(config.LoggingConfig{Level: logLevel, Format: "text", Output: "stderr"})
			return err
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newRunsCmd())
	return root
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, color.RedString("Error: %v", err))
		return 1
	}
	return 0
}
