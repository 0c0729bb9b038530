// Package pipeline composes session management, chunking, generation,
// validation, auto-correction and metrics into the three supported
// generation modes.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/cv-pipeline/internal/batched"
	"github.com/jonathan/cv-pipeline/internal/chunking"
	"github.com/jonathan/cv-pipeline/internal/config"
	"github.com/jonathan/cv-pipeline/internal/generation"
	"github.com/jonathan/cv-pipeline/internal/llm"
	"github.com/jonathan/cv-pipeline/internal/metrics"
	"github.com/jonathan/cv-pipeline/internal/repair"
	"github.com/jonathan/cv-pipeline/internal/session"
	"github.com/jonathan/cv-pipeline/internal/types"
	qualityvalidation "github.com/jonathan/cv-pipeline/internal/validation"
)

// Mode selects how the profile reaches the generation backend
type Mode string

// Generation modes
const (
	// ModeAuto picks single-shot or chunked from the payload analysis
	ModeAuto Mode = "auto"
	// ModeSingleShot uploads the sanitized profile once and generates in a
	// single grounded call
	ModeSingleShot Mode = "single_shot"
	// ModeChunked splits the role list, processes chunks in parallel, and
	// assembles the results
	ModeChunked Mode = "chunked"
	// ModeBatched lets the backend pull bounded role batches on demand
	ModeBatched Mode = "batched"
)

// ProfileFetcher resolves a profile from an external profile service
type ProfileFetcher interface {
	GetProfile(ctx context.Context, ownerID string) (*types.Profile, error)
}

// ResultStore persists finished results. *db.DB satisfies this.
type ResultStore interface {
	SaveResult(ctx context.Context, ownerID, mode, model string, result *types.GeneratedResult, report *types.QualityReport) (uuid.UUID, error)
}

// Request describes one end-to-end generation call. Exactly one profile
// source is needed: an inline profile, an existing session, or an owner ID
// resolvable through the configured ProfileFetcher.
type Request struct {
	Profile       *types.Profile `validate:"required_without_all=SessionID OwnerID"`
	OwnerID       string         `validate:"omitempty,max=128"`
	SessionID     string         `validate:"omitempty,max=128"`
	TargetContext string         `validate:"required"`
	Mode          Mode           `validate:"omitempty,oneof=auto single_shot chunked batched"`
	// KeepSession retains a session this call created instead of releasing
	// it, so the caller can reuse the uploaded context
	KeepSession bool
}

// Response is the outcome of one generation call
type Response struct {
	Result           *types.GeneratedResult `json:"result"`
	Report           *types.QualityReport   `json:"report"`
	Mode             Mode                   `json:"mode"`
	SessionID        string                 `json:"session_id,omitempty"`
	WasAutoCorrected bool                   `json:"was_auto_corrected"`
	Duration         time.Duration          `json:"duration"`
	Analysis         types.PayloadAnalysis  `json:"analysis"`
	Plan             types.ChunkPlan        `json:"plan"`
}

// Pipeline is the facade over the whole generation flow
type Pipeline struct {
	cfg       *config.Config
	sessions  *session.Manager
	generator *generation.Generator
	retriever *batched.Orchestrator
	validator *qualityvalidation.Validator
	corrector *repair.Corrector
	tracker   *metrics.Tracker
	model     string
	logger    *zap.Logger
	checker   *validator.Validate

	// Profiles and Results are optional collaborators owned by external
	// services; nil disables owner-based profile resolution and persistence
	Profiles ProfileFetcher
	Results  ResultStore

	now func() time.Time
}

// New wires a Pipeline from its components. The session manager doubles as
// the batched orchestrator's profile source.
func New(cfg *config.Config, client llm.Client, sessions *session.Manager, tracker *metrics.Tracker, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:       cfg,
		sessions:  sessions,
		generator: generation.NewGenerator(client, logger),
		retriever: batched.NewOrchestrator(client, sessions, cfg.RoleBatchSize, cfg.MaxIterations, logger),
		validator: qualityvalidation.NewValidator(cfg, logger),
		corrector: repair.NewCorrector(cfg, logger),
		tracker:   tracker,
		model:     client.GetModel(llm.TierAdvanced),
		logger:    logger,
		checker:   validator.New(),
		now:       time.Now,
	}
}

// Sessions exposes the session manager for lifecycle commands
func (p *Pipeline) Sessions() *session.Manager {
	return p.sessions
}

// Generate runs one full pipeline invocation: resolve the profile, pick a
// mode, generate, validate, auto-correct if needed, log metrics, and persist.
// A failing quality report is data, not an error; the caller decides policy.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := p.checker.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	profile, err := p.resolveProfile(ctx, req)
	if err != nil {
		return nil, err
	}

	analysis, err := chunking.Analyze(profile)
	if err != nil {
		return nil, fmt.Errorf("payload analysis failed: %w", err)
	}
	plan := chunking.SelectStrategy(analysis, p.cfg)

	mode := req.Mode
	if mode == "" || mode == ModeAuto {
		mode = ModeSingleShot
		if plan.ChunkCount > 1 {
			mode = ModeChunked
		}
	}
	p.logger.Info("generation starting",
		zap.String("mode", string(mode)),
		zap.Int("roles", analysis.RoleCount),
		zap.Int("size_kb", analysis.SizeKB),
		zap.String("strategy", plan.Strategy))

	started := p.now()
	result, sessionID, err := p.runMode(ctx, mode, req, profile, plan)
	if err != nil {
		return nil, err
	}

	mergeProfileSections(result, profile)

	report := p.validator.Validate(result, profile, req.TargetContext)
	corrected := false
	if !report.Passed {
		var fixed *types.GeneratedResult
		fixed, corrected = p.corrector.Correct(result, profile, report)
		if corrected {
			result = fixed
			report = p.validator.Validate(result, profile, req.TargetContext)
		}
	}

	duration := p.now().Sub(started)
	p.logMetrics(sessionID, report, duration, analysis.RoleCount, corrected)

	if p.Results != nil && req.OwnerID != "" {
		if _, err := p.Results.SaveResult(ctx, req.OwnerID, string(mode), p.model, result, report); err != nil {
			p.logger.Warn("failed to persist result", zap.Error(err))
		}
	}

	return &Response{
		Result:           result,
		Report:           report,
		Mode:             mode,
		SessionID:        sessionID,
		WasAutoCorrected: corrected,
		Duration:         duration,
		Analysis:         analysis,
		Plan:             plan,
	}, nil
}

// runMode executes the selected generation mode and returns the result plus
// the session the response should report (empty when no session survives the
// call).
func (p *Pipeline) runMode(ctx context.Context, mode Mode, req Request, profile *types.Profile, plan types.ChunkPlan) (*types.GeneratedResult, string, error) {
	switch mode {
	case ModeChunked:
		chunks := chunking.CreateChunks(profile, plan)
		results, err := p.generator.ProcessChunks(ctx, chunks, req.TargetContext)
		if err != nil {
			return nil, "", err
		}
		result, err := p.generator.Assemble(ctx, results, profile, req.TargetContext)
		if err != nil {
			return nil, "", err
		}
		return result, req.SessionID, nil

	case ModeSingleShot:
		sessionID, created, err := p.ensureSession(ctx, req, profile)
		if err != nil {
			// The grounded path needs an uploaded context; fall back to
			// sending the profile inline rather than failing the call.
			p.logger.Warn("context upload unavailable, generating inline", zap.Error(err))
			result, inlineErr := p.generator.GenerateInline(ctx, profile, req.TargetContext)
			return result, "", inlineErr
		}
		defer p.releaseIfCreated(ctx, sessionID, created, req.KeepSession)

		ref, err := p.sessions.ContextRef(ctx, sessionID)
		if err != nil {
			return nil, "", err
		}
		result, err := p.generator.GenerateSingleShot(ctx, ref, req.TargetContext)
		if err != nil {
			return nil, "", err
		}
		return result, p.retainedSession(sessionID, created, req.KeepSession), nil

	case ModeBatched:
		sessionID, created, err := p.ensureSession(ctx, req, profile)
		if err != nil {
			return nil, "", fmt.Errorf("batched mode requires a session: %w", err)
		}
		defer p.releaseIfCreated(ctx, sessionID, created, req.KeepSession)

		result, err := p.retriever.Generate(ctx, sessionID, req.TargetContext)
		if err != nil {
			return nil, "", err
		}
		return result, p.retainedSession(sessionID, created, req.KeepSession), nil

	default:
		return nil, "", fmt.Errorf("unknown generation mode: %q", mode)
	}
}

// resolveProfile picks the profile source: explicit profile, then session,
// then the external profile service.
func (p *Pipeline) resolveProfile(ctx context.Context, req Request) (*types.Profile, error) {
	if req.Profile != nil {
		return req.Profile, nil
	}
	if req.SessionID != "" {
		profile, err := p.sessions.Profile(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session profile: %w", err)
		}
		return profile, nil
	}
	if p.Profiles == nil {
		return nil, fmt.Errorf("no profile source: provide a profile, a session, or configure a profile fetcher")
	}
	profile, err := p.Profiles.GetProfile(ctx, req.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for owner %s: %w", req.OwnerID, err)
	}
	return profile, nil
}

// ensureSession reuses the request's session or starts a new one. The second
// return value reports whether this call created the session and therefore
// owns its release.
func (p *Pipeline) ensureSession(ctx context.Context, req Request, profile *types.Profile) (string, bool, error) {
	if req.SessionID != "" {
		return req.SessionID, false, nil
	}
	sessionID, err := p.sessions.StartSession(ctx, profile, req.OwnerID)
	if err != nil {
		return "", false, err
	}
	return sessionID, true, nil
}

// releaseIfCreated ends a session this call created unless the caller asked
// to keep it. Sessions supplied by the caller are never released here.
func (p *Pipeline) releaseIfCreated(ctx context.Context, sessionID string, created, keep bool) {
	if !created || keep {
		return
	}
	if _, err := p.sessions.EndSession(ctx, sessionID); err != nil {
		p.logger.Warn("failed to release session", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (p *Pipeline) retainedSession(sessionID string, created, keep bool) string {
	if created && !keep {
		return ""
	}
	return sessionID
}

// ExtendSession pushes a session's expiry forward, rejecting extensions past
// the configured per-call cap.
func (p *Pipeline) ExtendSession(ctx context.Context, sessionID string, hours int) error {
	if hours <= 0 {
		return fmt.Errorf("extension hours must be positive")
	}
	if hours > p.cfg.MaxExtensionHours {
		return fmt.Errorf("extension of %dh exceeds the %dh per-call cap", hours, p.cfg.MaxExtensionHours)
	}
	return p.sessions.ExtendSession(ctx, sessionID, time.Duration(hours)*time.Hour)
}

// logMetrics records the generation outcome; metrics failures never fail the
// pipeline call.
func (p *Pipeline) logMetrics(sessionID string, report *types.QualityReport, duration time.Duration, roleCount int, corrected bool) {
	if p.tracker == nil {
		return
	}
	sizeCategory := qualityvalidation.CategorizeProfileSize(roleCount)
	if err := p.tracker.LogGeneration(sessionID, report, duration.Seconds(), p.model, sizeCategory, corrected); err != nil {
		p.logger.Warn("failed to log generation metrics", zap.Error(err))
	}
}

// mergeProfileSections copies education and certifications from the source
// profile when the backend omitted them. The profile is authoritative for
// both; the backend only reorders or trims them.
func mergeProfileSections(result *types.GeneratedResult, profile *types.Profile) {
	if len(result.CV.Education) == 0 && len(profile.Education) > 0 {
		result.CV.Education = append([]types.Education(nil), profile.Education...)
	}
	if len(result.CV.Certifications) == 0 && len(profile.Certifications) > 0 {
		result.CV.Certifications = append([]types.Certification(nil), profile.Certifications...)
	}
}
