package authn

import (
	"context"
	"errors"
	"net/http"

	"github.com/RunjeethNikam/braintrain/internal/api"
	"github.com/RunjeethNikam/braintrain/internal/logging"
	"github.com/RunjeethNikam/braintrain/internal/models"
)

// Service is the thin auth facade over the API client.
type Service struct {
	client *api.Client
	log    *logging.Logger
}

// NewService creates the auth service.
func NewService(client *api.Client, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Default()
	}
	return &Service{client: client, log: log}
}

// GoogleSignIn exchanges a Google ID token for a backend session.
func (s *Service) GoogleSignIn(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := s.client.Post(ctx, "/auth/google-signin", map[string]string{"idToken": idToken}, &resp)
	if err != nil {
		return nil, normalize(err, "Authentication failed")
	}

	// A success flag without token or user is a malformed response.
	if !resp.Success || resp.Token == "" || resp.User == nil {
		return nil, &api.APIError{Message: "Invalid response from server", Status: http.StatusInternalServerError}
	}
	return &resp, nil
}

// ValidateToken checks the stored bearer token against the backend.
func (s *Service) ValidateToken(ctx context.Context) (*models.ValidateResponse, error) {
	var resp models.ValidateResponse
	if err := s.client.Post(ctx, "/auth/validate", nil, &resp); err != nil {
		return nil, normalize(err, "Token validation failed")
	}
	return &resp, nil
}

// CurrentUser fetches the authenticated user's profile.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.Get(ctx, "/auth/me", &user); err != nil {
		return nil, normalize(err, "Failed to get user profile")
	}
	return &user, nil
}

// Logout tells the backend to end the session. Best-effort: sign-out must
// always succeed locally, so failures are logged and swallowed.
func (s *Service) Logout(ctx context.Context) {
	if err := s.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		s.log.Warnf("logout request failed: %v", err)
	}
}

// normalize guarantees callers receive an *api.APIError with a
// capability-specific default message.
func normalize(err error, fallback string) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &api.APIError{Message: fallback, Status: http.StatusInternalServerError}
}
