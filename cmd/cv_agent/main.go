// Package main provides the cv_agent command line interface for the adaptive
// CV generation pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_agent",
	Short: "Adaptive CV generation pipeline",
	Long:  "cv_agent generates tailored CVs and cover letters from a career profile, adapting its strategy (single-shot, chunked, or batched retrieval) to the profile's size.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
