package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-pipeline/internal/observability"
	"github.com/jonathan/cv-pipeline/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a tailored CV and cover letter",
	Long: `Generate a tailored CV from a profile and a job description.

The mode defaults to auto: small profiles go through a single grounded call,
larger ones are chunked and assembled. Batched retrieval must be requested
explicitly with --mode batched.`,
	RunE: runGenerate,
}

var (
	genConfigPath  string
	genProfilePath string
	genJobPath     string
	genJobText     string
	genMode        string
	genOwnerID     string
	genSessionID   string
	genKeepSession bool
	genOutPath     string
	genAPIKey      string
	genDatabaseURL string
	genVerbose     bool
)

func init() {
	generateCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json (optional)")
	generateCmd.Flags().StringVarP(&genProfilePath, "profile", "p", "", "Path to profile JSON file")
	generateCmd.Flags().StringVarP(&genJobPath, "job", "j", "", "Path to job description text file (mutually exclusive with --job-text)")
	generateCmd.Flags().StringVar(&genJobText, "job-text", "", "Job description passed inline")
	generateCmd.Flags().StringVarP(&genMode, "mode", "m", "auto", "Generation mode: auto, single_shot, chunked, or batched")
	generateCmd.Flags().StringVar(&genOwnerID, "owner", "", "Owner ID for persistence and session attribution")
	generateCmd.Flags().StringVar(&genSessionID, "session", "", "Reuse an existing session instead of uploading the profile")
	generateCmd.Flags().BoolVar(&genKeepSession, "keep-session", false, "Keep the session this call creates for later reuse")
	generateCmd.Flags().StringVarP(&genOutPath, "out", "o", "", "Write the generated result JSON to this path (default: stdout)")
	generateCmd.Flags().StringVar(&genAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	generateCmd.Flags().StringVar(&genDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfigFile(genConfigPath)
	if err != nil {
		return err
	}

	target, err := readTargetContext(genJobPath, genJobText)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		OwnerID:       genOwnerID,
		SessionID:     genSessionID,
		TargetContext: target,
		Mode:          pipeline.Mode(genMode),
		KeepSession:   genKeepSession,
	}
	if genProfilePath != "" {
		profile, err := readProfileFile(genProfilePath)
		if err != nil {
			return err
		}
		req.Profile = profile
	}
	if req.Profile == nil && req.SessionID == "" {
		return fmt.Errorf("either --profile or --session must be provided")
	}

	logger, err := buildLogger(genVerbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	client, err := newBackendClient(ctx, cfg, genAPIKey)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	mgr, database, cleanup, err := newSessionManager(ctx, cfg, resolveDatabaseURL(genDatabaseURL), client, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// Sweep expired sessions in the background for as long as the
	// invocation runs
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go mgr.Run(sweepCtx)

	tracker, err := newTracker(cfg, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, client, mgr, tracker, logger)
	if database != nil {
		p.Results = database
	}

	resp, err := p.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	if genVerbose {
		printer.PrintAnalysis(resp.Analysis, resp.Plan)
	}
	printer.PrintQualityReport(resp.Report)

	fmt.Fprintf(os.Stdout, "Mode: %s  Duration: %s  Auto-corrected: %t\n", resp.Mode, resp.Duration.Round(time.Millisecond), resp.WasAutoCorrected)
	if resp.SessionID != "" {
		fmt.Fprintf(os.Stdout, "Session retained: %s\n", resp.SessionID)
	}

	return writeJSON(genOutPath, resp.Result)
}
