package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-pipeline/internal/session"
	"github.com/jonathan/cv-pipeline/internal/types"
)

// SessionStore is a PostgreSQL-backed session.Store. Handles survive process
// restarts, so the expiry sweep can release backend resources uploaded by a
// previous run.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a session store over db
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Put inserts or replaces a session handle
func (s *SessionStore) Put(ctx context.Context, sess *types.Session) error {
	var profileJSON []byte
	if sess.Profile != nil {
		var err error
		profileJSON, err = json.Marshal(sess.Profile)
		if err != nil {
			return fmt.Errorf("failed to marshal session profile: %w", err)
		}
	}

	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO cv_sessions (id, context_ref, owner_id, profile_hash, profile,
		        created_at, expires_at, last_accessed_at, request_count, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		        context_ref = $2, owner_id = $3, profile_hash = $4, profile = $5,
		        expires_at = $7, last_accessed_at = $8, request_count = $9, status = $10`,
		sess.ID, sess.ContextRef, sess.OwnerID, sess.ProfileHash, profileJSON,
		sess.CreatedAt, sess.ExpiresAt, sess.LastAccessedAt, sess.RequestCount, string(sess.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns the handle for id, or session.NotFoundError
func (s *SessionStore) Get(ctx context.Context, id string) (*types.Session, error) {
	sess, err := scanSession(s.db.pool.QueryRow(ctx,
		`SELECT id, context_ref, owner_id, profile_hash, profile,
		        created_at, expires_at, last_accessed_at, request_count, status
		 FROM cv_sessions WHERE id = $1`,
		id,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &session.NotFoundError{SessionID: id}
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// Delete removes the handle for id. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.pool.Exec(ctx, `DELETE FROM cv_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns all handles in the store
func (s *SessionStore) List(ctx context.Context) ([]*types.Session, error) {
	return s.query(ctx,
		`SELECT id, context_ref, owner_id, profile_hash, profile,
		        created_at, expires_at, last_accessed_at, request_count, status
		 FROM cv_sessions ORDER BY created_at`)
}

// Expired returns handles past their TTL without removing them
func (s *SessionStore) Expired(ctx context.Context, now time.Time) ([]*types.Session, error) {
	return s.query(ctx,
		`SELECT id, context_ref, owner_id, profile_hash, profile,
		        created_at, expires_at, last_accessed_at, request_count, status
		 FROM cv_sessions WHERE expires_at < $1 ORDER BY created_at`, now)
}

func (s *SessionStore) query(ctx context.Context, sql string, args ...any) ([]*types.Session, error) {
	rows, err := s.db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*types.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*types.Session, error) {
	var sess types.Session
	var ownerID *string
	var profileJSON []byte
	var status string

	err := row.Scan(&sess.ID, &sess.ContextRef, &ownerID, &sess.ProfileHash, &profileJSON,
		&sess.CreatedAt, &sess.ExpiresAt, &sess.LastAccessedAt, &sess.RequestCount, &status)
	if err != nil {
		return nil, err
	}

	if ownerID != nil {
		sess.OwnerID = *ownerID
	}
	sess.Status = types.SessionStatus(status)
	if len(profileJSON) > 0 {
		var profile types.Profile
		if err := json.Unmarshal(profileJSON, &profile); err != nil {
			return nil, fmt.Errorf("failed to decode session profile: %w", err)
		}
		sess.Profile = &profile
	}
	return &sess, nil
}
