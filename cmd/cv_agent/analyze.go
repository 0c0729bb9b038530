package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-pipeline/internal/chunking"
	"github.com/jonathan/cv-pipeline/internal/observability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a profile and show the chunking strategy it would get",
	RunE:  runAnalyze,
}

var (
	analyzeConfigPath  string
	analyzeProfilePath string
	analyzeJSON        bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json (optional)")
	analyzeCmd.Flags().StringVarP(&analyzeProfilePath, "profile", "p", "", "Path to profile JSON file (required)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output the analysis and plan as JSON")

	analyzeCmd.MarkFlagRequired("profile") //nolint:errcheck

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfigFile(analyzeConfigPath)
	if err != nil {
		return err
	}

	profile, err := readProfileFile(analyzeProfilePath)
	if err != nil {
		return err
	}

	analysis, err := chunking.Analyze(profile)
	if err != nil {
		return err
	}
	plan := chunking.SelectStrategy(analysis, cfg)

	if analyzeJSON {
		return writeJSON("", map[string]any{"analysis": analysis, "plan": plan})
	}

	observability.NewPrinter(os.Stdout).PrintAnalysis(analysis, plan)
	return nil
}
