package game

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/RunjeethNikam/braintrain/internal/api"
	"github.com/RunjeethNikam/braintrain/internal/logging"
	"github.com/RunjeethNikam/braintrain/internal/models"
)

// Service is the thin game facade over the API client.
type Service struct {
	client *api.Client
	log    *logging.Logger
}

// NewService creates the game service.
func NewService(client *api.Client, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Default()
	}
	return &Service{client: client, log: log}
}

// CompleteRequest is the completion payload for one session.
type CompleteRequest struct {
	SessionID         string `json:"sessionId"`
	CorrectAnswers    int    `json:"correctAnswers"`
	TotalQuestions    int    `json:"totalQuestions"`
	DurationInSeconds int    `json:"durationInSeconds"`
}

// Start opens a new game session of the given type.
func (s *Service) Start(ctx context.Context, gameType models.GameType) (*models.GameStartResponse, error) {
	var resp models.GameStartResponse
	err := s.client.Post(ctx, "/game/start", map[string]models.GameType{"gameType": gameType}, &resp)
	if err != nil {
		return nil, normalize(err, "Failed to start game session")
	}
	if !resp.Success {
		return nil, &api.APIError{Message: "Failed to start game", Status: http.StatusInternalServerError}
	}
	return &resp, nil
}

// Complete submits the outcome of a session. The backend is the sole
// authority for score, accuracy, rank and personal-best determination.
func (s *Service) Complete(ctx context.Context, req CompleteRequest) (*models.GameCompleteResponse, error) {
	var resp models.GameCompleteResponse
	if err := s.client.Post(ctx, "/game/complete", req, &resp); err != nil {
		return nil, normalize(err, "Failed to complete game session")
	}
	if !resp.Success {
		return nil, &api.APIError{Message: "Failed to complete game", Status: http.StatusInternalServerError}
	}
	return &resp, nil
}

// Abandon reports a walked-away-from session. Best-effort cleanup: failures
// are logged and swallowed, never propagated.
func (s *Service) Abandon(ctx context.Context, sessionID string) {
	err := s.client.Post(ctx, "/game/abandon", map[string]string{"sessionId": sessionID}, nil)
	if err != nil {
		s.log.Warnf("failed to abandon game session %s: %v", sessionID, err)
	}
}

// RemainingGames reports the free-game quota for one game type.
func (s *Service) RemainingGames(ctx context.Context, gameType models.GameType) (*models.RemainingGamesResponse, error) {
	var resp models.RemainingGamesResponse
	path := fmt.Sprintf("/game/remaining-games/%s", gameType)
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, normalize(err, "Failed to get remaining games")
	}
	return &resp, nil
}

// CanPlay reports whether the user may start the given game type.
func (s *Service) CanPlay(ctx context.Context, gameType models.GameType) bool {
	resp, err := s.RemainingGames(ctx, gameType)
	if err != nil {
		s.log.Warnf("failed to check play quota for %s: %v", gameType, err)
		return false
	}
	return resp.CanPlay
}

// LeaderboardStats fetches the per-game leaderboard summary.
func (s *Service) LeaderboardStats(ctx context.Context, gameType models.GameType) (*models.LeaderboardStats, error) {
	var resp models.LeaderboardStats
	path := fmt.Sprintf("/leaderboard/stats/%s", gameType)
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, normalize(err, "Failed to get leaderboard stats")
	}
	return &resp, nil
}

func normalize(err error, fallback string) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &api.APIError{Message: fallback, Status: http.StatusInternalServerError}
}
