package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/photokeepapp/photokeep-server/internal/domain"
)

// sessionKey is the fixed key for the active session marker. There is at
// most one logged-in owner; a new login overwrites the previous marker.
const sessionKey = "session:current"

// SaveSession persists the active session marker, replacing any previous one.
func (s *Store) SaveSession(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session.OwnerEmail == "" {
		return ErrInvalidInput.WithMessage("session owner email is required")
	}

	if err := s.set([]byte(sessionKey), session); err != nil {
		return ErrIO.WithCause(err)
	}

	if s.logger != nil {
		s.logger.Info("session saved", "owner", session.OwnerEmail)
	}
	return nil
}

// GetSession retrieves the active session marker.
// Returns ErrNotFound when no one is logged in.
func (s *Store) GetSession(ctx context.Context) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session domain.Session
	err := s.get([]byte(sessionKey), &session)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound.WithMessage("no active session")
	}
	if err != nil {
		return nil, ErrIO.WithCause(err)
	}
	return &session, nil
}

// DeleteSession removes the active session marker.
// Idempotent: succeeds when no session exists.
func (s *Store) DeleteSession(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.delete([]byte(sessionKey)); err != nil {
		return ErrIO.WithCause(err)
	}
	return nil
}
