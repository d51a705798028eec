package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaterialKind selects which payload a Material carries.
type MaterialKind string

// Supported material kinds.
const (
	MaterialQuiz       MaterialKind = "quiz"
	MaterialFlashcards MaterialKind = "flashcards"
)

// OptionsPerQuestion is the fixed number of answer options on a quiz question.
const OptionsPerQuestion = 4

// ParseMaterialKind converts user input into a MaterialKind.
func ParseMaterialKind(s string) (MaterialKind, error) {
	switch k := MaterialKind(strings.ToLower(strings.TrimSpace(s))); k {
	case MaterialQuiz, MaterialFlashcards:
		return k, nil
	}
	return "", NewValidationError("kind", "must be quiz or flashcards")
}

// Question is a single multiple choice question.
type Question struct {
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// Quiz is an ordered list of questions.
type Quiz struct {
	Questions []Question `json:"questions"`
}

// Card is a single flashcard.
type Card struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardDeck is an ordered list of cards.
type FlashcardDeck struct {
	Cards []Card `json:"cards"`
}

// Material is generated study content. Exactly one of Quiz and Deck is set,
// matching Kind.
type Material struct {
	ID               uuid.UUID      `json:"id"`
	Kind             MaterialKind   `json:"kind"`
	Title            string         `json:"title"`
	SourceDocumentID uuid.UUID      `json:"source_document_id"`
	CreatedAt        time.Time      `json:"created_at"`
	Quiz             *Quiz          `json:"quiz,omitempty"`
	Deck             *FlashcardDeck `json:"deck,omitempty"`
}

// NewQuizMaterial builds a quiz material from already-parsed questions.
func NewQuizMaterial(title string, sourceDocumentID uuid.UUID, questions []Question) (*Material, error) {
	m := &Material{
		ID:               NewID(),
		Kind:             MaterialQuiz,
		Title:            strings.TrimSpace(title),
		SourceDocumentID: sourceDocumentID,
		CreatedAt:        time.Now().UTC(),
		Quiz:             &Quiz{Questions: questions},
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewDeckMaterial builds a flashcard material from already-parsed cards.
func NewDeckMaterial(title string, sourceDocumentID uuid.UUID, cards []Card) (*Material, error) {
	m := &Material{
		ID:               NewID(),
		Kind:             MaterialFlashcards,
		Title:            strings.TrimSpace(title),
		SourceDocumentID: sourceDocumentID,
		CreatedAt:        time.Now().UTC(),
		Deck:             &FlashcardDeck{Cards: cards},
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate enforces the tagged-variant shape and the per-question invariants.
func (m *Material) Validate() error {
	var errs []FieldError
	if m.ID == uuid.Nil {
		errs = append(errs, FieldError{Field: "id", Message: "must not be empty"})
	}
	if m.SourceDocumentID == uuid.Nil {
		errs = append(errs, FieldError{Field: "source_document_id", Message: "must not be empty"})
	}
	if m.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "must not be empty"})
	}

	switch m.Kind {
	case MaterialQuiz:
		if m.Deck != nil {
			errs = append(errs, FieldError{Field: "deck", Message: "must be empty for a quiz"})
		}
		if m.Quiz == nil || len(m.Quiz.Questions) == 0 {
			errs = append(errs, FieldError{Field: "questions", Message: "quiz needs at least one question"})
			break
		}
		for _, q := range m.Quiz.Questions {
			errs = append(errs, q.validate()...)
		}
	case MaterialFlashcards:
		if m.Quiz != nil {
			errs = append(errs, FieldError{Field: "quiz", Message: "must be empty for a deck"})
		}
		if m.Deck == nil || len(m.Deck.Cards) == 0 {
			errs = append(errs, FieldError{Field: "cards", Message: "deck needs at least one card"})
			break
		}
		for _, c := range m.Deck.Cards {
			if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
				errs = append(errs, FieldError{Field: "cards", Message: "front and back must not be empty"})
				break
			}
		}
	default:
		errs = append(errs, FieldError{Field: "kind", Message: "must be quiz or flashcards"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

func (q Question) validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, FieldError{Field: "question", Message: "must not be empty"})
	}
	if len(q.Options) != OptionsPerQuestion {
		errs = append(errs, FieldError{Field: "options", Message: "must have exactly 4 options"})
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		errs = append(errs, FieldError{Field: "correct_index", Message: "must reference an option"})
	}
	return errs
}

// ItemCount is the number of questions or cards.
func (m *Material) ItemCount() int {
	switch {
	case m.Quiz != nil:
		return len(m.Quiz.Questions)
	case m.Deck != nil:
		return len(m.Deck.Cards)
	}
	return 0
}

// Clone returns a deep copy of the material.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	out := *m
	if m.Quiz != nil {
		qs := make([]Question, len(m.Quiz.Questions))
		for i, q := range m.Quiz.Questions {
			q.Options = append([]string(nil), q.Options...)
			qs[i] = q
		}
		out.Quiz = &Quiz{Questions: qs}
	}
	if m.Deck != nil {
		out.Deck = &FlashcardDeck{Cards: append([]Card(nil), m.Deck.Cards...)}
	}
	return &out
}
