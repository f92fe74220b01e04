package models

import (
	"encoding/json"
	"fmt"
)

// GameType identifies one of the mini-games offered by the backend.
type GameType string

const (
	MemoryFlash GameType = "MEMORY_FLASH"
	QuickMath   GameType = "QUICK_MATH"
)

// GameInfo carries display metadata for a game type.
type GameInfo struct {
	Name string
	Icon string
}

// Games maps each game type to its display metadata.
var Games = map[GameType]GameInfo{
	MemoryFlash: {Name: "Memory Flash", Icon: "🧠"},
	QuickMath:   {Name: "Quick Math", Icon: "🔢"},
}

// User represents a user from the backend API
type User struct {
	ID           string                  `json:"id"`
	Email        string                  `json:"email"`
	DisplayName  string                  `json:"displayName"`
	PhotoURL     string                  `json:"photoURL"`
	IsSubscribed bool                    `json:"isSubscribed"`
	CreatedAt    string                  `json:"createdAt,omitempty"`
	LastLoginAt  string                  `json:"lastLoginAt,omitempty"`
	GameProgress map[string]GameProgress `json:"gameProgress,omitempty"`
}

// GameProgress tracks a user's standing in one game type.
type GameProgress struct {
	Difficulty    int     `json:"difficulty"`
	TotalGames    int     `json:"totalGames"`
	FreeGamesUsed int     `json:"freeGamesUsed"`
	BestScore     float64 `json:"bestScore"`
}

// MemoryFlashParams are the round parameters for the memory game.
type MemoryFlashParams struct {
	ItemCount          int `json:"itemCount"`
	DisplayTimeSeconds int `json:"displayTimeSeconds"`
	ChoiceCount        int `json:"choiceCount"`
}

// QuickMathParams are the round parameters for the math game.
type QuickMathParams struct {
	QuestionCount          int `json:"questionCount"`
	TimePerQuestionSeconds int `json:"timePerQuestionSeconds"`
	MinNumber              int `json:"minNumber"`
	MaxNumber              int `json:"maxNumber"`
}

// GameParams is the per-game-type parameter variant. Exactly one of the
// pointers is set, matching Type.
type GameParams struct {
	Type        GameType
	MemoryFlash *MemoryFlashParams
	QuickMath   *QuickMathParams
}

// AuthResponse is the backend response to a Google sign-in.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// ValidateResponse is the backend response to a token validation call.
type ValidateResponse struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user,omitempty"`
}

// GameStartResponse is the backend response to starting a game session.
type GameStartResponse struct {
	Success               bool       `json:"success"`
	SessionID             string     `json:"sessionId"`
	GameType              GameType   `json:"gameType"`
	Difficulty            int        `json:"difficulty"`
	DifficultyDescription string     `json:"difficultyDescription"`
	GameParams            GameParams `json:"-"`
	RemainingFreeGames    int        `json:"remainingFreeGames"`
	IsSubscribed          bool       `json:"isSubscribed"`
}

// UnmarshalJSON decodes the gameParams variant according to gameType.
func (r *GameStartResponse) UnmarshalJSON(data []byte) error {
	type alias GameStartResponse
	aux := struct {
		*alias
		RawParams json.RawMessage `json:"gameParams"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.GameParams.Type = r.GameType
	if len(aux.RawParams) == 0 {
		return nil
	}

	switch r.GameType {
	case MemoryFlash:
		var p MemoryFlashParams
		if err := json.Unmarshal(aux.RawParams, &p); err != nil {
			return err
		}
		r.GameParams.MemoryFlash = &p
	case QuickMath:
		var p QuickMathParams
		if err := json.Unmarshal(aux.RawParams, &p); err != nil {
			return err
		}
		r.GameParams.QuickMath = &p
	default:
		return fmt.Errorf("unknown game type: %q", r.GameType)
	}
	return nil
}

// GameResult is the authoritative result computed by the backend.
type GameResult struct {
	Score             float64 `json:"score"`
	Accuracy          float64 `json:"accuracy"`
	CorrectAnswers    int     `json:"correctAnswers"`
	TotalQuestions    int     `json:"totalQuestions"`
	DurationInSeconds int     `json:"durationInSeconds"`
	Difficulty        int     `json:"difficulty"`
	IsNewPersonalBest bool    `json:"isNewPersonalBest"`
	GlobalRank        int     `json:"globalRank"`
}

// GameCompleteResponse is the backend response to completing a session.
type GameCompleteResponse struct {
	Success              bool       `json:"success"`
	Result               GameResult `json:"result"`
	RemainingFreeGames   int        `json:"remainingFreeGames"`
	RequiresSubscription bool       `json:"requiresSubscription"`
}

// RemainingGamesResponse reports the free-game quota for one game type.
type RemainingGamesResponse struct {
	RemainingGames int  `json:"remainingGames"`
	IsSubscribed   bool `json:"isSubscribed"`
	CanPlay        bool `json:"canPlay"`
}

// SubscriptionPlan describes one purchasable plan.
type SubscriptionPlan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Interval string   `json:"interval"`
	Features []string `json:"features"`
	Savings  string   `json:"savings,omitempty"`
}

// SubscriptionPlans holds the two well-known plans.
type SubscriptionPlans struct {
	Monthly SubscriptionPlan `json:"monthly"`
	Yearly  SubscriptionPlan `json:"yearly"`
}

// PlansResponse is the backend response to a plans fetch.
type PlansResponse struct {
	Success bool              `json:"success"`
	Plans   SubscriptionPlans `json:"plans"`
}

// UserSubscription is the user's current subscription record.
type UserSubscription struct {
	ID              string  `json:"id"`
	Plan            string  `json:"plan"`
	PlanName        string  `json:"planName"`
	Status          string  `json:"status"`
	IsActive        bool    `json:"isActive"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	NextBillingDate string  `json:"nextBillingDate"`
}

// SubscriptionStatusResponse is the backend response to a status fetch.
type SubscriptionStatusResponse struct {
	Success         bool              `json:"success"`
	HasSubscription bool              `json:"hasSubscription"`
	Subscription    *UserSubscription `json:"subscription"`
}

// CheckoutResponse is the backend response to checkout creation.
type CheckoutResponse struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkoutUrl"`
}

// CancelResponse is the backend response to a cancellation.
type CancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LeaderboardStats is the per-game leaderboard summary.
type LeaderboardStats struct {
	GameType     GameType `json:"gameType"`
	TotalPlayers int      `json:"totalPlayers"`
	TopScore     float64  `json:"topScore"`
	AverageScore float64  `json:"averageScore"`
}

// PingResponse is the backend connectivity check payload.
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
