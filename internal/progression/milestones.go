package progression

import "github.com/phrazzld/studykit/internal/domain"

// QuizPassScore is the minimum score that counts a quiz as passed.
const QuizPassScore = 80

// Milestone is a one-time achievement with an XP reward.
type Milestone struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XPReward    int    `json:"xp_reward"`

	predicate func(domain.Snapshot) bool
}

// Reached reports whether the milestone predicate holds for s.
func (m Milestone) Reached(s domain.Snapshot) bool {
	return m.predicate != nil && m.predicate(s)
}

var catalog = []Milestone{
	{
		ID:          "first_class",
		Title:       "First Steps",
		Description: "Create your first class.",
		XPReward:    200,
		predicate:   func(s domain.Snapshot) bool { return s.ClassCount >= 1 },
	},
	{
		ID:          "study_bug",
		Title:       "Study Bug",
		Description: "Upload 5 documents.",
		XPReward:    500,
		predicate:   func(s domain.Snapshot) bool { return s.DocumentCount >= 5 },
	},
	{
		ID:          "quiz_master",
		Title:       "Quiz Master",
		Description: "Score 80% or higher on 3 quizzes.",
		XPReward:    1000,
		predicate: func(s domain.Snapshot) bool {
			passed := 0
			for _, score := range s.QuizScores {
				if score >= QuizPassScore {
					passed++
				}
			}
			return passed >= 3
		},
	},
	{
		ID:          "high_achiever",
		Title:       "High Achiever",
		Description: "Log an assignment grade of 90 or above.",
		XPReward:    750,
		predicate: func(s domain.Snapshot) bool {
			for _, g := range s.AssignmentGrades {
				if g >= 90 {
					return true
				}
			}
			return false
		},
	},
}

// Catalog returns a copy of the static milestone catalog in display order.
func Catalog() []Milestone {
	return append([]Milestone(nil), catalog...)
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (Milestone, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

// EvaluateMilestones returns the milestones not yet unlocked in state whose
// predicate holds for snapshot. All milestones are evaluated against the same
// inputs, so XP granted by one does not influence another in the same batch.
func EvaluateMilestones(snapshot domain.Snapshot, state domain.ProgressState) []Milestone {
	var out []Milestone
	for _, m := range catalog {
		if state.Has(m.ID) {
			continue
		}
		if m.Reached(snapshot) {
			out = append(out, m)
		}
	}
	return out
}

// Unlock records each milestone id and grants its reward. Milestones already
// present in state are skipped.
func Unlock(state domain.ProgressState, milestones []Milestone) domain.ProgressState {
	state = state.Clone()
	for _, m := range milestones {
		if state.Has(m.ID) {
			continue
		}
		state.Unlocked = append(state.Unlocked, m.ID)
		// Rewards are catalog constants and never negative.
		state, _ = AddXP(state, m.XPReward)
	}
	return state
}
