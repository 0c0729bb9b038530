// Package session owns the lifecycle of uploaded-profile context handles:
// creation, reuse across pipeline invocations, expiry, and deletion. A
// background sweep reclaims backend resources for sessions nobody ended.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/cv-pipeline/internal/types"
)

// ContextBackend is the slice of the generation client the manager needs:
// upload a shared-context resource and release it.
type ContextBackend interface {
	UploadContext(ctx context.Context, name string, data []byte) (string, error)
	DeleteContext(ctx context.Context, ref string) error
}

// Stats summarizes the current session population.
type Stats struct {
	TotalSessions      int     `json:"total_sessions"`
	ActiveSessions     int     `json:"active_sessions"`
	ExpiredSessions    int     `json:"expired_sessions"`
	TotalRequests      int     `json:"total_requests_served"`
	RequestsPerSession float64 `json:"average_requests_per_session"`
}

// Manager creates and tracks sessions. It exclusively owns each session's
// backend resource reference; nothing else may delete it.
type Manager struct {
	backend       ContextBackend
	store         Store
	ttl           time.Duration
	sweepInterval time.Duration
	logger        *zap.Logger

	now func() time.Time
}

// NewManager creates a session manager with the given TTL and sweep interval.
func NewManager(backend ContextBackend, store Store, ttl, sweepInterval time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		backend:       backend,
		store:         store,
		ttl:           ttl,
		sweepInterval: sweepInterval,
		logger:        logger,
		now:           time.Now,
	}
}

// StartSession sanitizes the profile, uploads it to the backend's
// shared-context facility, and returns the new session ID. The raw sanitized
// profile is kept on the handle so batched retrieval can serve role batches
// without a second upload.
func (m *Manager) StartSession(ctx context.Context, profile *types.Profile, ownerID string) (string, error) {
	sessionID := uuid.NewString()

	sanitized := Sanitize(profile)
	data, err := json.Marshal(sanitized)
	if err != nil {
		return "", fmt.Errorf("failed to serialize profile: %w", err)
	}

	hash, err := Fingerprint(sanitized)
	if err != nil {
		return "", err
	}

	ref, err := m.backend.UploadContext(ctx, fmt.Sprintf("profile_%s.json", sessionID), data)
	if err != nil {
		return "", err
	}

	now := m.now()
	s := &types.Session{
		ID:             sessionID,
		ContextRef:     ref,
		OwnerID:        ownerID,
		ProfileHash:    hash,
		Profile:        sanitized,
		CreatedAt:      now,
		ExpiresAt:      now.Add(m.ttl),
		LastAccessedAt: now,
		Status:         types.SessionActive,
	}
	if err := m.store.Put(ctx, s); err != nil {
		// The backend resource exists but the handle cannot be stored;
		// release the resource so it does not leak.
		if delErr := m.backend.DeleteContext(ctx, ref); delErr != nil {
			m.logger.Error("failed to release context after store failure",
				zap.String("session_id", sessionID), zap.Error(delErr))
		}
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	m.logger.Info("session started",
		zap.String("session_id", sessionID),
		zap.String("context_ref", ref),
		zap.Time("expires_at", s.ExpiresAt))
	return sessionID, nil
}

// ContextRef returns the backend reference for an active, unexpired session,
// refreshing its access metadata. An expired session is swept on this access
// and reported as ExpiredError.
func (m *Manager) ContextRef(ctx context.Context, sessionID string) (string, error) {
	s, err := m.touch(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return s.ContextRef, nil
}

// Profile returns the sanitized profile stored on an active session,
// refreshing its access metadata the same way ContextRef does.
func (m *Manager) Profile(ctx context.Context, sessionID string) (*types.Profile, error) {
	s, err := m.touch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Profile == nil {
		return nil, &NotFoundError{SessionID: sessionID}
	}
	return s.Profile, nil
}

func (m *Manager) touch(ctx context.Context, sessionID string) (*types.Session, error) {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.Expired(m.now()) {
		m.logger.Warn("session expired on access", zap.String("session_id", sessionID))
		m.cleanupSession(ctx, s)
		return nil, &ExpiredError{SessionID: sessionID}
	}
	if s.Status != types.SessionActive {
		return nil, &NotFoundError{SessionID: sessionID}
	}

	s.LastAccessedAt = m.now()
	s.RequestCount++
	if err := m.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return s, nil
}

// EndSession deletes the backend resource and removes the handle. Returns
// false when the session is unknown.
func (m *Manager) EndSession(ctx context.Context, sessionID string) (bool, error) {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return false, nil
	}
	m.cleanupSession(ctx, s)
	m.logger.Info("session ended", zap.String("session_id", sessionID))
	return true, nil
}

// ExtendSession pushes the expiry forward from now by the given duration.
// Only active sessions can be extended.
func (m *Manager) ExtendSession(ctx context.Context, sessionID string, d time.Duration) error {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.Status != types.SessionActive || s.Expired(m.now()) {
		return &ExpiredError{SessionID: sessionID}
	}

	s.ExpiresAt = m.now().Add(d)
	if err := m.store.Put(ctx, s); err != nil {
		return fmt.Errorf("failed to extend session: %w", err)
	}
	m.logger.Info("session extended",
		zap.String("session_id", sessionID), zap.Time("expires_at", s.ExpiresAt))
	return nil
}

// cleanupSession releases the backend resource, then drops the handle. The
// order matters: a leaked handle is recoverable on restart, a leaked backend
// resource is not.
func (m *Manager) cleanupSession(ctx context.Context, s *types.Session) {
	s.Status = types.SessionExpiring
	if err := m.store.Put(ctx, s); err != nil {
		m.logger.Error("failed to mark session expiring",
			zap.String("session_id", s.ID), zap.Error(err))
	}

	if err := m.backend.DeleteContext(ctx, s.ContextRef); err != nil {
		m.logger.Error("failed to delete backend context",
			zap.String("session_id", s.ID),
			zap.String("context_ref", s.ContextRef),
			zap.Error(err))
	}

	if err := m.store.Delete(ctx, s.ID); err != nil {
		m.logger.Error("failed to remove session handle",
			zap.String("session_id", s.ID), zap.Error(err))
	}
}

// SweepExpired deletes every session past its TTL and returns how many were
// cleaned up. Individual failures are logged and skipped; one stuck backend
// deletion must not leave every other expired resource alive.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	expired, err := m.store.Expired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired sessions: %w", err)
	}

	for _, s := range expired {
		m.cleanupSession(ctx, s)
	}

	if len(expired) > 0 {
		m.logger.Info("swept expired sessions", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

// Run executes the periodic sweep until the context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.SweepExpired(ctx); err != nil {
				m.logger.Error("session sweep failed", zap.Error(err))
			}
		}
	}
}

// Info returns the handle for a session without refreshing access metadata.
func (m *Manager) Info(ctx context.Context, sessionID string) (*types.Session, error) {
	return m.store.Get(ctx, sessionID)
}

// ListActive returns all active, unexpired sessions, optionally filtered to
// one owner.
func (m *Manager) ListActive(ctx context.Context, ownerID string) ([]*types.Session, error) {
	all, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now()
	var active []*types.Session
	for _, s := range all {
		if s.Status != types.SessionActive || s.Expired(now) {
			continue
		}
		if ownerID != "" && s.OwnerID != ownerID {
			continue
		}
		active = append(active, s)
	}
	return active, nil
}

// StatsSnapshot summarizes the current session population.
func (m *Manager) StatsSnapshot(ctx context.Context) (Stats, error) {
	all, err := m.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	now := m.now()
	stats := Stats{TotalSessions: len(all)}
	for _, s := range all {
		if s.Expired(now) {
			stats.ExpiredSessions++
		} else if s.Status == types.SessionActive {
			stats.ActiveSessions++
		}
		stats.TotalRequests += s.RequestCount
	}
	if len(all) > 0 {
		stats.RequestsPerSession = float64(stats.TotalRequests) / float64(len(all))
	}
	return stats, nil
}
