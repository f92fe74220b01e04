package game

import (
	"math"

	"github.com/RunjeethNikam/braintrain/internal/models"
)

// ScoreInput carries the performance figures a score is computed from.
type ScoreInput struct {
	CorrectAnswers    int
	TotalQuestions    int
	DurationInSeconds int
	Difficulty        int
	GameType          models.GameType

	// MaxTimeAllowed enables the speed bonus when positive.
	MaxTimeAllowed int
}

// ScoreBreakdown itemizes the score terms.
type ScoreBreakdown struct {
	BaseScore       int
	DifficultyBonus int
	SpeedBonus      int
	PerfectBonus    int
}

// ScoreResult is the locally computed score. Presentation only: the backend
// remains authoritative for anything persisted.
type ScoreResult struct {
	Score     float64
	Accuracy  float64
	Breakdown ScoreBreakdown
}

// CalculateScore computes the 200-point-scale score: accuracy base, a
// difficulty bonus capped at 50, a speed bonus up to 30 and a 20-point
// perfect bonus.
func CalculateScore(in ScoreInput) ScoreResult {
	accuracy := 0.0
	if in.TotalQuestions > 0 {
		accuracy = float64(in.CorrectAnswers) / float64(in.TotalQuestions) * 100
	}
	baseScore := accuracy

	difficultyBonus := math.Min(50, float64(in.Difficulty)*5)

	speedBonus := 0.0
	if in.MaxTimeAllowed > 0 && in.DurationInSeconds < in.MaxTimeAllowed {
		timeEfficiency := 1 - float64(in.DurationInSeconds)/float64(in.MaxTimeAllowed)
		speedBonus = timeEfficiency * 30
	}

	perfectBonus := 0.0
	if accuracy == 100 {
		perfectBonus = 20
	}

	raw := baseScore + difficultyBonus + speedBonus + perfectBonus
	final := math.Min(200, math.Max(0, raw))

	return ScoreResult{
		Score:    round2(final),
		Accuracy: round2(accuracy),
		Breakdown: ScoreBreakdown{
			BaseScore:       int(math.Round(baseScore)),
			DifficultyBonus: int(math.Round(difficultyBonus)),
			SpeedBonus:      int(math.Round(speedBonus)),
			PerfectBonus:    int(perfectBonus),
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Grade is a letter grade with its display trimmings.
type Grade struct {
	Grade   string
	Emoji   string
	Message string
}

// ServiceGrade maps a 200-point-scale score to its letter grade. Distinct
// from DisplayGrade, which works on the 100-point results scale.
func ServiceGrade(score float64) Grade {
	switch {
	case score >= 180:
		return Grade{"S+", "👑", "Legendary Performance!"}
	case score >= 150:
		return Grade{"S", "🌟", "Outstanding!"}
	case score >= 120:
		return Grade{"A+", "⭐", "Excellent!"}
	case score >= 100:
		return Grade{"A", "🎉", "Great Job!"}
	case score >= 80:
		return Grade{"B+", "👍", "Well Done!"}
	case score >= 70:
		return Grade{"B", "👌", "Good Work!"}
	case score >= 60:
		return Grade{"C+", "💪", "Keep Practicing!"}
	case score >= 50:
		return Grade{"C", "📈", "You're Improving!"}
	default:
		return Grade{"D", "🎯", "Try Again!"}
	}
}

// DisplayGrade maps a backend score to the letter grade shown on the results
// view. Works on the 100-point scale.
func DisplayGrade(score float64) Grade {
	switch {
	case score >= 90:
		return Grade{"A+", "🌟", ""}
	case score >= 80:
		return Grade{"A", "⭐", ""}
	case score >= 70:
		return Grade{"B+", "👍", ""}
	case score >= 60:
		return Grade{"B", "👌", ""}
	case score >= 50:
		return Grade{"C", "💪", ""}
	default:
		return Grade{"D", "💪", ""}
	}
}

// IsNewPersonalBest reports whether current strictly beats previous. Equal
// scores are not a new best.
func IsNewPersonalBest(current, previous float64) bool {
	return current > previous
}

// PerformanceTips suggests at most three improvements based on the score
// breakdown and game type.
func PerformanceTips(result ScoreResult, gameType models.GameType) []string {
	var tips []string

	if result.Accuracy < 80 {
		tips = append(tips, "Focus on accuracy - take your time to memorize the items carefully")
	}
	if result.Breakdown.SpeedBonus < 15 {
		tips = append(tips, "Try to complete the challenge faster for bonus points")
	}
	if result.Breakdown.DifficultyBonus < 20 {
		tips = append(tips, "As you improve, you'll unlock higher difficulties for more points")
	}

	switch gameType {
	case models.MemoryFlash:
		tips = append(tips,
			"Try to create mental associations with the item positions",
			"Focus on one item at a time rather than trying to memorize everything at once")
	case models.QuickMath:
		tips = append(tips,
			"Practice mental math techniques to improve your speed",
			"Look for patterns and shortcuts in calculations")
	}

	if len(tips) > 3 {
		tips = tips[:3]
	}
	return tips
}
