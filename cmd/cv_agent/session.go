package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-pipeline/internal/observability"
	"github.com/jonathan/cv-pipeline/internal/session"
	"github.com/jonathan/cv-pipeline/internal/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage uploaded-profile sessions",
	Long: `Manage the lifecycle of uploaded-profile sessions.

Session handles must outlive the process, so these commands require a
PostgreSQL store: pass --db-url or set DATABASE_URL.`,
}

var (
	sessionConfigPath  string
	sessionAPIKey      string
	sessionDatabaseURL string
	sessionProfilePath string
	sessionOwnerID     string
	sessionHours       int
	sessionWatch       bool
)

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Upload a sanitized profile and create a session",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withSessionManager(func(ctx context.Context, mgr *session.Manager) error {
			profile, err := readProfileFile(sessionProfilePath)
			if err != nil {
				return err
			}
			id, err := mgr.StartSession(ctx, profile, sessionOwnerID)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Session started: %s\n", id)
			return nil
		})
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end <session-id>",
	Short: "Release a session's uploaded context and remove its handle",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withSessionManager(func(ctx context.Context, mgr *session.Manager) error {
			removed, err := mgr.EndSession(ctx, args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(os.Stdout, "Session not found: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(os.Stdout, "Session ended: %s\n", args[0])
			return nil
		})
	},
}

var sessionExtendCmd = &cobra.Command{
	Use:   "extend <session-id>",
	Short: "Push a session's expiry forward",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withSessionManager(func(ctx context.Context, mgr *session.Manager) error {
			cfg, err := loadConfigFile(sessionConfigPath)
			if err != nil {
				return err
			}
			if sessionHours <= 0 {
				return fmt.Errorf("--hours must be positive")
			}
			if sessionHours > cfg.MaxExtensionHours {
				return fmt.Errorf("extension of %dh exceeds the %dh per-call cap", sessionHours, cfg.MaxExtensionHours)
			}
			if err := mgr.ExtendSession(ctx, args[0], time.Duration(sessionHours)*time.Hour); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Session %s extended by %dh\n", args[0], sessionHours)
			return nil
		})
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sessions",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withSessionManager(func(ctx context.Context, mgr *session.Manager) error {
			sessions, err := mgr.ListActive(ctx, sessionOwnerID)
			if err != nil {
				return err
			}
			out := make([]types.Session, 0, len(sessions))
			for _, s := range sessions {
				out = append(out, *s)
			}
			observability.NewPrinter(os.Stdout).PrintSessions(out)
			return nil
		})
	},
}

var sessionSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired sessions and release their uploaded contexts",
	Long: `Delete expired sessions and release their uploaded contexts.

With --watch the sweep keeps running on the configured interval until
interrupted, as a standalone janitor for a shared session store.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withSessionManager(func(ctx context.Context, mgr *session.Manager) error {
			removed, err := mgr.SweepExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Swept %d expired session(s)\n", removed)
			if !sessionWatch {
				return nil
			}

			watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintln(os.Stdout, "Watching for expired sessions (Ctrl-C to stop)")
			mgr.Run(watchCtx)
			return nil
		})
	},
}

func init() {
	sessionCmd.PersistentFlags().StringVar(&sessionConfigPath, "config", "", "Path to config.json (optional)")
	sessionCmd.PersistentFlags().StringVar(&sessionAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	sessionCmd.PersistentFlags().StringVar(&sessionDatabaseURL, "db-url", "", "PostgreSQL connection URL (required, defaults to DATABASE_URL env var)")

	sessionStartCmd.Flags().StringVarP(&sessionProfilePath, "profile", "p", "", "Path to profile JSON file (required)")
	sessionStartCmd.Flags().StringVar(&sessionOwnerID, "owner", "", "Owner ID to attribute the session to")
	sessionStartCmd.MarkFlagRequired("profile") //nolint:errcheck

	sessionExtendCmd.Flags().IntVar(&sessionHours, "hours", 24, "Hours to extend the session by")
	sessionListCmd.Flags().StringVar(&sessionOwnerID, "owner", "", "Only list sessions for this owner")
	sessionSweepCmd.Flags().BoolVar(&sessionWatch, "watch", false, "Keep sweeping on the configured interval until interrupted")

	sessionCmd.AddCommand(sessionStartCmd, sessionEndCmd, sessionExtendCmd, sessionListCmd, sessionSweepCmd)
	rootCmd.AddCommand(sessionCmd)
}

// withSessionManager wires the shared session command dependencies: config,
// backend client, and a database-backed store.
func withSessionManager(fn func(ctx context.Context, mgr *session.Manager) error) error {
	ctx := context.Background()

	cfg, err := loadConfigFile(sessionConfigPath)
	if err != nil {
		return err
	}

	dbURL := resolveDatabaseURL(sessionDatabaseURL)
	if dbURL == "" {
		return fmt.Errorf("session commands need a persistent store: pass --db-url or set DATABASE_URL")
	}

	logger, err := buildLogger(false)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	client, err := newBackendClient(ctx, cfg, sessionAPIKey)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	mgr, _, cleanup, err := newSessionManager(ctx, cfg, dbURL, client, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(ctx, mgr)
}
