package domain

import (
	"time"

	"github.com/google/uuid"
)

// StudyResult records a finished study session.
type StudyResult struct {
	ID          uuid.UUID    `json:"id"`
	MaterialID  uuid.UUID    `json:"material_id"`
	Kind        MaterialKind `json:"kind"`
	Score       int          `json:"score"`
	Correct     int          `json:"correct"`
	Total       int          `json:"total"`
	CompletedAt time.Time    `json:"completed_at"`
}

// NewStudyResult validates and creates a result.
func NewStudyResult(materialID uuid.UUID, kind MaterialKind, score, correct, total int) (*StudyResult, error) {
	r := &StudyResult{
		ID:          NewID(),
		MaterialID:  materialID,
		Kind:        kind,
		Score:       score,
		Correct:     correct,
		Total:       total,
		CompletedAt: time.Now().UTC(),
	}
	var errs []FieldError
	if materialID == uuid.Nil {
		errs = append(errs, FieldError{Field: "material_id", Message: "must not be empty"})
	}
	if kind != MaterialQuiz && kind != MaterialFlashcards {
		errs = append(errs, FieldError{Field: "kind", Message: "must be quiz or flashcards"})
	}
	if score < 0 || score > 100 {
		errs = append(errs, FieldError{Field: "score", Message: "must be between 0 and 100"})
	}
	if total <= 0 || correct < 0 || correct > total {
		errs = append(errs, FieldError{Field: "correct", Message: "must be between 0 and total"})
	}
	if len(errs) > 0 {
		return nil, NewValidationErrors(errs)
	}
	return r, nil
}
