package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photokeepapp/photokeep-server/internal/config"
	"github.com/photokeepapp/photokeep-server/internal/domain"
	domainerrors "github.com/photokeepapp/photokeep-server/internal/errors"
	"github.com/photokeepapp/photokeep-server/internal/gallery"
	"github.com/photokeepapp/photokeep-server/internal/media/images"
	"github.com/photokeepapp/photokeep-server/internal/store"
	"github.com/photokeepapp/photokeep-server/internal/telemetry"
	"github.com/photokeepapp/photokeep-server/internal/validation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupServices(t *testing.T) (*SessionService, *UploadService, *store.Store) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	s, err := store.Open(filepath.Join(tmpDir, "photos.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	logger := testLogger()
	g := gallery.NewCache(s, nil)
	relay := telemetry.NewClient(config.TelemetryConfig{Enabled: false}, nil)
	transcoder := images.NewTranscoder(config.ThumbnailConfig{
		MaxBound:        600,
		RetryBound:      500,
		MaxEncodedBytes: 100000,
		Quality:         80,
	}, nil)

	sessions := NewSessionService(s, g, relay, validation.New(), logger)
	uploads := NewUploadService(s, g, relay, transcoder, logger)
	return sessions, uploads, s
}

func TestLogin_CreatesSession(t *testing.T) {
	sessions, _, s := setupServices(t)
	ctx := context.Background()

	session, err := sessions.Login(ctx, "Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", session.OwnerEmail)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.LoggedInAt.IsZero())

	// The marker is persisted.
	stored, err := s.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.OwnerEmail)
}

func TestLogin_InvalidEmail(t *testing.T) {
	sessions, _, _ := setupServices(t)

	_, err := sessions.Login(context.Background(), "not-an-email")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	sessions, _, _ := setupServices(t)
	ctx := context.Background()

	_, err := sessions.Login(ctx, "alice@example.com")
	require.NoError(t, err)
	_, err = sessions.Login(ctx, "bob@example.com")
	require.NoError(t, err)

	current, err := sessions.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", current.OwnerEmail)
}

func TestLogout_Idempotent(t *testing.T) {
	sessions, _, _ := setupServices(t)
	ctx := context.Background()

	_, err := sessions.Login(ctx, "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, sessions.Logout(ctx))
	require.NoError(t, sessions.Logout(ctx))

	_, err = sessions.Current(ctx)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestLogout_ClearsSelection(t *testing.T) {
	sessions, _, _ := setupServices(t)
	ctx := context.Background()

	_, err := sessions.Login(ctx, "alice@example.com")
	require.NoError(t, err)

	sessions.Select("p1")
	sessions.Select("p2")
	require.Len(t, sessions.Selection(), 2)

	require.NoError(t, sessions.Logout(ctx))
	assert.Empty(t, sessions.Selection())
}

func TestRestore_LoadsPersistedSession(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "service-restore-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "photos.db")
	s, err := store.Open(dbPath, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.SaveSession(ctx, &domain.Session{
		ID:         "session-1",
		OwnerEmail: "alice@example.com",
		LoggedInAt: time.Now(),
	}))
	require.NoError(t, s.Close())

	s, err = store.Open(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	g := gallery.NewCache(s, nil)
	relay := telemetry.NewClient(config.TelemetryConfig{Enabled: false}, nil)
	sessions := NewSessionService(s, g, relay, validation.New(), testLogger())

	session, err := sessions.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "alice@example.com", session.OwnerEmail)
	assert.Equal(t, "alice@example.com", g.Owner())
}

func TestRestore_NoSession(t *testing.T) {
	sessions, _, _ := setupServices(t)

	session, err := sessions.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSync_RequiresSession(t *testing.T) {
	sessions, _, _ := setupServices(t)
	ctx := context.Background()

	err := sessions.Sync(ctx)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	_, err = sessions.Login(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NoError(t, sessions.Sync(ctx))
}

func TestSelection_StableOrder(t *testing.T) {
	sessions, _, _ := setupServices(t)

	sessions.Select("p3")
	sessions.Select("p1")
	sessions.Select("p2")
	assert.Equal(t, []string{"p1", "p2", "p3"}, sessions.Selection())

	sessions.Deselect("p2")
	assert.Equal(t, []string{"p1", "p3"}, sessions.Selection())

	sessions.ClearSelection()
	assert.Empty(t, sessions.Selection())
}
