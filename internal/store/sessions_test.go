package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/photokeepapp/photokeep-server/internal/domain"
	"github.com/photokeepapp/photokeep-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSession_RoundTrip(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	session := &domain.Session{
		ID:         "sess-1",
		OwnerEmail: "user@example.com",
		LoggedInAt: time.Now(),
	}

	require.NoError(t, s.SaveSession(ctx, session))

	got, err := s.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got.OwnerEmail)
	assert.Equal(t, "sess-1", got.ID)
}

func TestSaveSession_ReplacesPrevious(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.SaveSession(ctx, &domain.Session{ID: "s1", OwnerEmail: "alice@example.com"}))
	require.NoError(t, s.SaveSession(ctx, &domain.Session{ID: "s2", OwnerEmail: "bob@example.com"}))

	got, err := s.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.OwnerEmail)
}

func TestSaveSession_RequiresOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.SaveSession(context.Background(), &domain.Session{ID: "s1"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestGetSession_NoneActive(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetSession(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteSession_Idempotent(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.SaveSession(ctx, &domain.Session{ID: "s1", OwnerEmail: "alice@example.com"}))

	require.NoError(t, s.DeleteSession(ctx))
	_, err := s.GetSession(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteSession(ctx))
}
