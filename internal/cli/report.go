package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crossframe-dev/reroute/internal/config"
	"github.com/crossframe-dev/reroute/internal/report"
)

var reportLimit int

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List recent conversion runs",
	Long: `Report lists recent conversion runs from the report database
configured under report.database.

Example:
  reroute report --limit 5`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVar(&reportLimit, "limit", 10, "Maximum number of runs to list")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Report.Database == "" {
		fmt.Fprintln(os.Stderr, "No report database configured (set report.database in .reroute/config.yml)")
		return nil
	}

	store, err := report.Open(cfg.Report.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.RecentRuns(reportLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No conversion runs recorded yet")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  %d/%d files converted (%.0f%%)\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.ID, run.ModifiedCount, run.TotalFiles, run.Rate*100)
	}
	return nil
}
