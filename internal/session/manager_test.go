package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-pipeline/internal/types"
)

// fakeBackend records upload/delete calls and can be told to fail.
type fakeBackend struct {
	mu        sync.Mutex
	uploads   int
	deleted   []string
	uploadErr error
	deleteErr error
}

func (f *fakeBackend) UploadContext(_ context.Context, name string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	return fmt.Sprintf("files/ref-%d", f.uploads), nil
}

func (f *fakeBackend) DeleteContext(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func testProfile() *types.Profile {
	return &types.Profile{
		Name:  "Jane Smith",
		Email: "jane@example.com",
		Phone: "555-0100",
		WorkExperience: []types.Role{
			{Company: "Acme", Title: "Engineer", StartDate: "2020", EndDate: "Present"},
		},
	}
}

func newTestManager(backend *fakeBackend) *Manager {
	return NewManager(backend, NewMemoryStore(), 24*time.Hour, time.Hour, nil)
}

func TestStartSession_UploadsSanitizedProfile(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	id, err := mgr.StartSession(context.Background(), testProfile(), "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, backend.uploads)

	info, err := mgr.Info(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, types.SessionActive, info.Status)
	assert.Equal(t, "user-1", info.OwnerID)
	assert.NotEmpty(t, info.ProfileHash)
	// Contact fields never leave the pipeline boundary
	require.NotNil(t, info.Profile)
	assert.Equal(t, PlaceholderName, info.Profile.Name)
	assert.Equal(t, PlaceholderEmail, info.Profile.Email)
	assert.Empty(t, info.Profile.Phone)
	// Work history is intact
	assert.Equal(t, "Acme", info.Profile.WorkExperience[0].Company)
}

func TestStartSession_UploadFailure(t *testing.T) {
	backend := &fakeBackend{uploadErr: errors.New("payload rejected")}
	mgr := newTestManager(backend)

	_, err := mgr.StartSession(context.Background(), testProfile(), "")
	assert.Error(t, err)
}

func TestContextRef_RefreshesAccessMetadata(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	id, err := mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)

	ref, err := mgr.ContextRef(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "files/ref-1", ref)

	_, err = mgr.ContextRef(context.Background(), id)
	require.NoError(t, err)

	info, err := mgr.Info(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, info.RequestCount)
}

func TestContextRef_UnknownSession(t *testing.T) {
	mgr := newTestManager(&fakeBackend{})

	_, err := mgr.ContextRef(context.Background(), "no-such-session")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestContextRef_LazyExpiry(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	id, err := mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)

	// Jump past the TTL without running the sweep
	mgr.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = mgr.ContextRef(context.Background(), id)
	var expired *ExpiredError
	require.ErrorAs(t, err, &expired)

	// The access itself swept the session: backend resource released,
	// handle gone
	assert.Equal(t, []string{"files/ref-1"}, backend.deleted)
	_, err = mgr.Info(context.Background(), id)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEndSession(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	id, err := mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)

	ended, err := mgr.EndSession(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ended)
	assert.Equal(t, []string{"files/ref-1"}, backend.deleted)

	ended, err = mgr.EndSession(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, ended)
}

func TestExtendSession(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	id, err := mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)

	before, err := mgr.Info(context.Background(), id)
	require.NoError(t, err)

	require.NoError(t, mgr.ExtendSession(context.Background(), id, 48*time.Hour))

	after, err := mgr.Info(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, after.ExpiresAt.After(before.ExpiresAt))
}

func TestExtendSession_ExpiredSession(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	id, err := mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)

	mgr.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	err = mgr.ExtendSession(context.Background(), id, time.Hour)
	var expired *ExpiredError
	assert.ErrorAs(t, err, &expired)
}

func TestSweepExpired_ResourceThenHandle(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	id1, err := mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)
	_, err = mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)

	// Expire only the first session
	s, err := mgr.Info(context.Background(), id1)
	require.NoError(t, err)
	s.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, mgr.store.Put(context.Background(), s))

	swept, err := mgr.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)
	assert.Equal(t, []string{"files/ref-1"}, backend.deleted)

	// The live session is untouched
	active, err := mgr.ListActive(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestSweepExpired_ContinuesPastDeleteFailure(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	id, err := mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)

	s, err := mgr.Info(context.Background(), id)
	require.NoError(t, err)
	s.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, mgr.store.Put(context.Background(), s))

	backend.deleteErr = errors.New("backend unavailable")

	swept, err := mgr.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	// The handle is still dropped; a stuck backend must not pin it forever
	_, err = mgr.Info(context.Background(), id)
	assert.Error(t, err)
}

func TestRun_SweepsOnInterval(t *testing.T) {
	backend := &fakeBackend{}
	mgr := NewManager(backend, NewMemoryStore(), 24*time.Hour, 5*time.Millisecond, nil)

	id, err := mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)

	s, err := mgr.Info(context.Background(), id)
	require.NoError(t, err)
	s.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, mgr.store.Put(context.Background(), s))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mgr.Run(ctx)

	assert.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return len(backend.deleted) == 1
	}, time.Second, 5*time.Millisecond)

	_, err = mgr.Info(context.Background(), id)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRun_StopsOnCancel(t *testing.T) {
	mgr := NewManager(&fakeBackend{}, NewMemoryStore(), 24*time.Hour, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mgr.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep loop kept running after cancellation")
	}
}

func TestListActive_FilterByOwner(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	_, err := mgr.StartSession(context.Background(), testProfile(), "alice")
	require.NoError(t, err)
	_, err = mgr.StartSession(context.Background(), testProfile(), "bob")
	require.NoError(t, err)

	sessions, err := mgr.ListActive(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "alice", sessions[0].OwnerID)

	all, err := mgr.ListActive(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStatsSnapshot(t *testing.T) {
	backend := &fakeBackend{}
	mgr := newTestManager(backend)

	id, err := mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)
	_, err = mgr.StartSession(context.Background(), testProfile(), "")
	require.NoError(t, err)

	_, err = mgr.ContextRef(context.Background(), id)
	require.NoError(t, err)
	_, err = mgr.ContextRef(context.Background(), id)
	require.NoError(t, err)

	stats, err := mgr.StatsSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 2, stats.ActiveSessions)
	assert.Equal(t, 0, stats.ExpiredSessions)
	assert.Equal(t, 2, stats.TotalRequests)
	assert.InDelta(t, 1.0, stats.RequestsPerSession, 0.001)
}

func TestStatsSnapshot_Empty(t *testing.T) {
	mgr := newTestManager(&fakeBackend{})

	stats, err := mgr.StatsSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}
