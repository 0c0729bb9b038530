package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-pipeline/internal/observability"
	"github.com/jonathan/cv-pipeline/internal/repair"
	"github.com/jonathan/cv-pipeline/internal/validation"
)

var correctCmd = &cobra.Command{
	Use:   "correct",
	Short: "Auto-correct a generated result against its source profile",
	Long: `Validate a generated result, apply the deterministic profile-driven
repairs (restore missing roles, top up thin bullet lists, fix ordering), and
re-validate. The corrected result is written to --out or stdout.`,
	RunE: runCorrect,
}

var (
	correctConfigPath  string
	correctProfilePath string
	correctResultPath  string
	correctOutPath     string
)

func init() {
	correctCmd.Flags().StringVar(&correctConfigPath, "config", "", "Path to config.json (optional)")
	correctCmd.Flags().StringVarP(&correctProfilePath, "profile", "p", "", "Path to profile JSON file (required)")
	correctCmd.Flags().StringVarP(&correctResultPath, "result", "r", "", "Path to generated result JSON file (required)")
	correctCmd.Flags().StringVarP(&correctOutPath, "out", "o", "", "Write the corrected result JSON to this path (default: stdout)")

	correctCmd.MarkFlagRequired("profile") //nolint:errcheck
	correctCmd.MarkFlagRequired("result")  //nolint:errcheck

	rootCmd.AddCommand(correctCmd)
}

func runCorrect(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfigFile(correctConfigPath)
	if err != nil {
		return err
	}

	profile, err := readProfileFile(correctProfilePath)
	if err != nil {
		return err
	}
	result, err := readResultFile(correctResultPath)
	if err != nil {
		return err
	}

	validator := validation.NewValidator(cfg, nil)
	report := validator.Validate(result, profile, "")

	corrected, modified := repair.NewCorrector(cfg, nil).Correct(result, profile, report)
	if modified {
		report = validator.Validate(corrected, profile, "")
		fmt.Fprintln(os.Stdout, "Applied corrections; re-validated.")
	} else {
		fmt.Fprintln(os.Stdout, "No corrections needed.")
	}

	observability.NewPrinter(os.Stdout).PrintQualityReport(report)
	return writeJSON(correctOutPath, corrected)
}
