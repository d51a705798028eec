package session

import (
	"math"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
)

// Phase is the coarse state of a session.
type Phase string

// Session phases.
const (
	PhaseQuestion  Phase = "question"
	PhaseCardFront Phase = "card_front"
	PhaseCardBack  Phase = "card_back"
	PhaseScored    Phase = "scored"
)

// Outcome is the result of a finished session, handed to the progression engine.
type Outcome struct {
	MaterialID uuid.UUID           `json:"material_id"`
	Kind       domain.MaterialKind `json:"kind"`
	Score      int                 `json:"score"`
	Correct    int                 `json:"correct"`
	Total      int                 `json:"total"`
}

// Perfect reports whether every item was answered correctly or known.
func (o Outcome) Perfect() bool {
	return o.Total > 0 && o.Correct == o.Total
}

// Session is the behaviour shared by quiz and flashcard sessions.
type Session interface {
	MaterialID() uuid.UUID
	Kind() domain.MaterialKind
	State() State
	Outcome() (Outcome, bool)
}

// State is a read-only view of a session for presentation.
type State struct {
	Phase    Phase               `json:"phase"`
	Kind     domain.MaterialKind `json:"kind"`
	Index    int                 `json:"index"`
	Total    int                 `json:"total"`
	Correct  int                 `json:"correct"`
	Question *QuestionView       `json:"question,omitempty"`
	Card     *CardView           `json:"card,omitempty"`
	Score    *int                `json:"score,omitempty"`
}

// QuestionView shows the current question without its answer. The correct
// option is only revealed by the AnswerResult.
type QuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// CardView shows the current card. Back is empty until revealed.
type CardView struct {
	Front    string `json:"front"`
	Back     string `json:"back,omitempty"`
	Revealed bool   `json:"revealed"`
}

// Score returns round(100*correct/total). A zero total scores zero.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
