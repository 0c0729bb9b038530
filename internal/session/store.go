package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/cv-pipeline/internal/types"
)

// Store persists session handles. Implementations must be safe for
// concurrent use; the manager calls them from request paths and from the
// background sweep simultaneously.
type Store interface {
	// Put inserts or replaces a session handle
	Put(ctx context.Context, s *types.Session) error
	// Get returns the handle for id, or NotFoundError
	Get(ctx context.Context, id string) (*types.Session, error)
	// Delete removes the handle for id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// List returns all handles in the store
	List(ctx context.Context) ([]*types.Session, error)
	// Expired returns handles whose TTL elapsed before now, without removing
	// them; removal is the manager's job after backend resource release
	Expired(ctx context.Context, now time.Time) ([]*types.Session, error)
}

// MemoryStore is the in-process Store used by default. Handles are copied on
// the way in and out so callers can mutate their copies freely.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]types.Session
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]types.Session)}
}

// Put inserts or replaces a session handle
func (m *MemoryStore) Put(_ context.Context, s *types.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

// Get returns a copy of the handle for id
func (m *MemoryStore) Get(_ context.Context, id string) (*types.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, &NotFoundError{SessionID: id}
	}
	return &s, nil
}

// Delete removes the handle for id
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// List returns copies of all handles
func (m *MemoryStore) List(_ context.Context) ([]*types.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*types.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		s := s
		out = append(out, &s)
	}
	return out, nil
}

// Expired returns copies of all handles past their TTL
func (m *MemoryStore) Expired(_ context.Context, now time.Time) ([]*types.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*types.Session
	for _, s := range m.sessions {
		if s.Expired(now) {
			s := s
			out = append(out, &s)
		}
	}
	return out, nil
}
