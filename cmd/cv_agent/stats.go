package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-pipeline/internal/metrics"
	"github.com/jonathan/cv-pipeline/internal/observability"
)

var (
	statsConfigPath string
	statsLimit      int
	statsJSON       bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recent quality metrics",
	Long: `Summarize the quality metrics log: pass rates, average error and
warning counts, auto-correction rate, and generation time, broken down
by profile size.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfigFile(statsConfigPath)
		if err != nil {
			return err
		}
		logger, err := buildLogger(false)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		tracker, err := metrics.NewTracker(cfg.MetricsPath, logger)
		if err != nil {
			return err
		}
		summary, err := tracker.SummaryStats(statsLimit)
		if err != nil {
			return err
		}
		if statsJSON {
			return writeJSON("", summary)
		}
		observability.NewPrinter(os.Stdout).PrintSummaryStats(summary)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsConfigPath, "config", "", "Path to config.json (optional)")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 100, "Number of recent records to summarize")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Emit the summary as JSON")
	rootCmd.AddCommand(statsCmd)
}
