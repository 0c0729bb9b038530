package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-pipeline/internal/observability"
	"github.com/jonathan/cv-pipeline/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a generated result against its source profile",
	RunE:  runValidate,
}

var (
	validateConfigPath  string
	validateProfilePath string
	validateResultPath  string
	validateJSON        bool
)

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "", "Path to config.json (optional)")
	validateCmd.Flags().StringVarP(&validateProfilePath, "profile", "p", "", "Path to profile JSON file (required)")
	validateCmd.Flags().StringVarP(&validateResultPath, "result", "r", "", "Path to generated result JSON file (required)")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output the quality report as JSON")

	validateCmd.MarkFlagRequired("profile") //nolint:errcheck
	validateCmd.MarkFlagRequired("result")  //nolint:errcheck

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfigFile(validateConfigPath)
	if err != nil {
		return err
	}

	profile, err := readProfileFile(validateProfilePath)
	if err != nil {
		return err
	}
	result, err := readResultFile(validateResultPath)
	if err != nil {
		return err
	}

	report := validation.NewValidator(cfg, nil).Validate(result, profile, "")

	if validateJSON {
		if err := writeJSON("", report); err != nil {
			return err
		}
	} else {
		observability.NewPrinter(os.Stdout).PrintQualityReport(report)
	}

	if !report.Passed {
		return fmt.Errorf("quality validation failed with %d error(s)", len(report.Errors))
	}
	return nil
}
