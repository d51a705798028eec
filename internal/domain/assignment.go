package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Grade bounds, in percent.
const (
	MinGrade = 0.0
	MaxGrade = 100.0
)

// Assignment is a graded piece of coursework. Assignments are immutable once
// logged.
type Assignment struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Grade    float64   `json:"grade"`
	LoggedAt time.Time `json:"logged_at"`
}

// NewAssignment validates the grade and creates the assignment.
func NewAssignment(name string, grade float64) (*Assignment, error) {
	a := &Assignment{
		ID:       NewID(),
		Name:     strings.TrimSpace(name),
		Grade:    grade,
		LoggedAt: time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the name and the [0,100] grade range.
func (a *Assignment) Validate() error {
	var errs []FieldError
	if a.ID == uuid.Nil {
		errs = append(errs, FieldError{Field: "id", Message: "must not be empty"})
	}
	if a.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "must not be empty"})
	}
	if math.IsNaN(a.Grade) || a.Grade < MinGrade || a.Grade > MaxGrade {
		errs = append(errs, FieldError{Field: "grade", Message: "must be between 0 and 100"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}
