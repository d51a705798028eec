package progression

import (
	"math"

	"github.com/phrazzld/studykit/internal/domain"
)

// LevelThreshold is the XP needed per level.
const LevelThreshold = 1000

// XP awarded per user action.
const (
	CreateClassXP      = 100
	UploadDocumentXP   = 50
	GenerateMaterialXP = 30
	CompleteQuizXP     = 150
	PerfectQuizBonusXP = 100
	StudyDeckXP        = 75
	// AssignmentXPPerPoint multiplies the grade; the product is floored.
	AssignmentXPPerPoint = 5
)

// AssignmentXP returns floor(grade * AssignmentXPPerPoint).
func AssignmentXP(grade float64) int {
	return int(math.Floor(grade * AssignmentXPPerPoint))
}

// QuizXP returns the completion XP plus the perfect-score bonus when earned.
func QuizXP(perfect bool) int {
	if perfect {
		return CompleteQuizXP + PerfectQuizBonusXP
	}
	return CompleteQuizXP
}

// AddXP returns state with amount added to TotalXP. Negative amounts are
// rejected so TotalXP never decreases.
func AddXP(state domain.ProgressState, amount int) (domain.ProgressState, error) {
	if amount < 0 {
		return state, domain.NewValidationError("amount", "xp amount cannot be negative")
	}
	state = state.Clone()
	state.TotalXP += amount
	return state, nil
}

// LevelOf returns floor(xp / LevelThreshold) + 1.
func LevelOf(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/LevelThreshold + 1
}

// XPIntoLevel returns xp mod LevelThreshold.
func XPIntoLevel(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % LevelThreshold
}

// XPToNextLevel returns the XP still needed to reach the next level.
func XPToNextLevel(xp int) int {
	return LevelThreshold - XPIntoLevel(xp)
}
