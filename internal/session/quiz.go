package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
)

// AnswerResult reports the effect of one answer.
type AnswerResult struct {
	Correct      bool `json:"correct"`
	CorrectIndex int  `json:"correct_index"`
	Finished     bool `json:"finished"`
	// Score is only meaningful once Finished is true.
	Score int `json:"score"`
}

// Quiz walks through the questions of a quiz material in order. Answered
// questions cannot be revisited.
type Quiz struct {
	materialID uuid.UUID
	questions  []domain.Question
	index      int
	correct    int
	score      int
	finished   bool
}

var _ Session = (*Quiz)(nil)

// NewQuiz starts a quiz session over m.
func NewQuiz(m *domain.Material) (*Quiz, error) {
	if m == nil || m.Kind != domain.MaterialQuiz || m.Quiz == nil {
		return nil, domain.NewValidationError("material", "is not a quiz")
	}
	if len(m.Quiz.Questions) == 0 {
		return nil, domain.NewValidationError("questions", "quiz has no questions")
	}
	return &Quiz{
		materialID: m.ID,
		questions:  m.Clone().Quiz.Questions,
	}, nil
}

// Answer records option as the answer to the current question and advances.
// After the last question the quiz is scored.
func (q *Quiz) Answer(option int) (AnswerResult, error) {
	if q.finished {
		return AnswerResult{}, ErrSessionFinished
	}
	cur := q.questions[q.index]
	if option < 0 || option >= len(cur.Options) {
		return AnswerResult{}, domain.NewValidationError("option",
			fmt.Sprintf("must be between 0 and %d", len(cur.Options)-1))
	}

	res := AnswerResult{
		Correct:      option == cur.CorrectIndex,
		CorrectIndex: cur.CorrectIndex,
	}
	if res.Correct {
		q.correct++
	}
	q.index++
	if q.index == len(q.questions) {
		q.finished = true
		q.score = Score(q.correct, len(q.questions))
		res.Finished = true
		res.Score = q.score
	}
	return res, nil
}

// MaterialID returns the quiz material id.
func (q *Quiz) MaterialID() uuid.UUID { return q.materialID }

// Kind returns domain.MaterialQuiz.
func (q *Quiz) Kind() domain.MaterialKind { return domain.MaterialQuiz }

// State returns the current question or the final score.
func (q *Quiz) State() State {
	st := State{
		Kind:    domain.MaterialQuiz,
		Index:   q.index,
		Total:   len(q.questions),
		Correct: q.correct,
	}
	if q.finished {
		score := q.score
		st.Phase = PhaseScored
		st.Score = &score
		return st
	}
	cur := q.questions[q.index]
	st.Phase = PhaseQuestion
	st.Question = &QuestionView{
		Text:    cur.Text,
		Options: append([]string(nil), cur.Options...),
	}
	return st
}

// Outcome returns the result once the quiz is scored.
func (q *Quiz) Outcome() (Outcome, bool) {
	if !q.finished {
		return Outcome{}, false
	}
	return Outcome{
		MaterialID: q.materialID,
		Kind:       domain.MaterialQuiz,
		Score:      q.score,
		Correct:    q.correct,
		Total:      len(q.questions),
	}, true
}
