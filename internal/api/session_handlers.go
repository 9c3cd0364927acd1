package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/photokeepapp/photokeep-server/internal/color"
	"github.com/photokeepapp/photokeep-server/internal/domain"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/login",
		Summary:     "Log in",
		Description: "Starts a session for the given email, replacing any previous one",
		Tags:        []string{"Session"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/logout",
		Summary:     "Log out",
		Description: "Ends the active session",
		Tags:        []string{"Session"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/session",
		Summary:     "Get session",
		Description: "Returns the active session identity",
		Tags:        []string{"Session"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "sync",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync",
		Summary:     "Sync",
		Description: "Re-reports the active identity to the activity log",
		Tags:        []string{"Session"},
	}, s.handleSync)
}

// === DTOs ===

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email string `json:"email" doc:"Owner email address"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// SessionResponse contains session data in API responses.
type SessionResponse struct {
	ID          string    `json:"id" doc:"Session ID"`
	OwnerEmail  string    `json:"owner_email" doc:"Logged-in owner email"`
	LoggedInAt  time.Time `json:"logged_in_at" doc:"Login time"`
	AvatarColor string    `json:"avatar_color" doc:"Stable hex color derived from the owner email"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

func sessionResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		ID:          session.ID,
		OwnerEmail:  session.OwnerEmail,
		LoggedInAt:  session.LoggedInAt,
		AvatarColor: color.ForOwner(session.OwnerEmail),
	}
}

// === Handlers ===

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
	session, err := s.services.Session.Login(ctx, input.Body.Email)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sessionResponse(session)}, nil
}

func (s *Server) handleLogout(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	if err := s.services.Session.Logout(ctx); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Logged out"}}, nil
}

func (s *Server) handleGetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	session, err := s.services.Session.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sessionResponse(session)}, nil
}

func (s *Server) handleSync(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	if err := s.services.Session.Sync(ctx); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Synced"}}, nil
}
