// Package service orchestrates the photo gallery use cases on top of the
// store, the gallery projection, and the outbound relays.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	domainerrors "github.com/photokeepapp/photokeep-server/internal/errors"

	"github.com/photokeepapp/photokeep-server/internal/domain"
	"github.com/photokeepapp/photokeep-server/internal/gallery"
	"github.com/photokeepapp/photokeep-server/internal/id"
	"github.com/photokeepapp/photokeep-server/internal/normalize"
	"github.com/photokeepapp/photokeep-server/internal/store"
	"github.com/photokeepapp/photokeep-server/internal/telemetry"
	"github.com/photokeepapp/photokeep-server/internal/validation"
)

// SessionService manages the single active identity and the UI's
// multi-select state.
type SessionService struct {
	store     *store.Store
	gallery   *gallery.Cache
	telemetry *telemetry.Client
	validator *validation.Validator
	logger    *slog.Logger

	mu       sync.Mutex
	selected map[string]bool
}

// NewSessionService creates a session service.
func NewSessionService(
	s *store.Store,
	g *gallery.Cache,
	t *telemetry.Client,
	v *validation.Validator,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		store:     s,
		gallery:   g,
		telemetry: t,
		validator: v,
		logger:    logger,
		selected:  make(map[string]bool),
	}
}

// Restore loads a persisted session at startup so a restart doesn't log
// the owner out. Returns the session, or nil when no one was logged in.
func (s *SessionService) Restore(ctx context.Context) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.gallery.SetOwner(session.OwnerEmail)
	if err := s.gallery.Refresh(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("session restored", "owner", session.OwnerEmail)
	return session, nil
}

// Login starts a session for the given email, replacing any previous one.
// The email is validated and normalized; the gallery projection switches
// to the new owner before the call returns.
func (s *SessionService) Login(ctx context.Context, email string) (*domain.Session, error) {
	email = normalize.Email(email)
	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, err
	}

	sessionID, err := id.Generate("session")
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate session id")
	}

	session := &domain.Session{
		ID:         sessionID,
		OwnerEmail: email,
		LoggedInAt: time.Now(),
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.clearSelection()
	s.gallery.SetOwner(email)
	if err := s.gallery.Refresh(ctx); err != nil {
		return nil, err
	}

	s.telemetry.RecordActivityAsync(email, domain.ActivityLogin)
	s.logger.Info("user logged in", "owner", email)

	return session, nil
}

// Logout tears down the active session. Idempotent: logging out while
// logged out succeeds.
func (s *SessionService) Logout(ctx context.Context) error {
	session, err := s.store.GetSession(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.store.DeleteSession(ctx); err != nil {
		return err
	}

	s.clearSelection()
	s.gallery.SetOwner("")

	s.telemetry.RecordActivityAsync(session.OwnerEmail, domain.ActivityLogout)
	s.logger.Info("user logged out", "owner", session.OwnerEmail)

	return nil
}

// Current returns the active session.
// Returns a NOT_FOUND domain error when no one is logged in.
func (s *SessionService) Current(ctx context.Context) (*domain.Session, error) {
	session, err := s.store.GetSession(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("no active session")
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Sync re-reports the active identity to telemetry. The local side always
// succeeds; relay failures are logged and dropped like any other event.
func (s *SessionService) Sync(ctx context.Context) error {
	session, err := s.Current(ctx)
	if err != nil {
		return err
	}

	s.telemetry.RecordActivityAsync(session.OwnerEmail, domain.ActivitySync)
	s.logger.Info("sync requested", "owner", session.OwnerEmail)
	return nil
}

// Select adds a photo ID to the multi-select set.
func (s *SessionService) Select(photoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[photoID] = true
}

// Deselect removes a photo ID from the multi-select set.
func (s *SessionService) Deselect(photoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, photoID)
}

// Selection returns the selected photo IDs in stable order.
func (s *SessionService) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.selected))
	for photoID := range s.selected {
		ids = append(ids, photoID)
	}
	sort.Strings(ids)
	return ids
}

// ClearSelection empties the multi-select set.
func (s *SessionService) ClearSelection() {
	s.clearSelection()
}

func (s *SessionService) clearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]bool)
}
