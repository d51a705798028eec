package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func sampleQuestions() []Question {
	return []Question{
		{Text: "2+2?", Options: []string{"3", "4", "5", "6"}, CorrectIndex: 1},
		{Text: "Capital of France?", Options: []string{"Paris", "Rome", "Berlin", "Madrid"}, CorrectIndex: 0},
	}
}

func TestNewQuizMaterial(t *testing.T) {
	t.Parallel()
	src := uuid.New()

	m, err := NewQuizMaterial("Basics", src, sampleQuestions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Kind != MaterialQuiz || m.Deck != nil || m.Quiz == nil {
		t.Errorf("Expected quiz variant, got %+v", m)
	}
	if m.SourceDocumentID != src {
		t.Errorf("Expected source %s, got %s", src, m.SourceDocumentID)
	}
	if m.ItemCount() != 2 {
		t.Errorf("Expected 2 items, got %d", m.ItemCount())
	}

	tests := []struct {
		name      string
		questions []Question
	}{
		{"no questions", nil},
		{"three options", []Question{{Text: "q", Options: []string{"a", "b", "c"}, CorrectIndex: 0}}},
		{"index too large", []Question{{Text: "q", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 4}}},
		{"negative index", []Question{{Text: "q", Options: []string{"a", "b", "c", "d"}, CorrectIndex: -1}}},
		{"blank text", []Question{{Text: " ", Options: []string{"a", "b", "c", "d"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewQuizMaterial("t", src, tc.questions); !errors.Is(err, ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestNewDeckMaterial(t *testing.T) {
	t.Parallel()
	src := uuid.New()

	m, err := NewDeckMaterial("Terms", src, []Card{{Front: "ATP", Back: "energy currency"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Kind != MaterialFlashcards || m.Quiz != nil {
		t.Errorf("Expected deck variant, got %+v", m)
	}

	if _, err := NewDeckMaterial("Terms", src, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for empty deck, got %v", err)
	}
	if _, err := NewDeckMaterial("Terms", uuid.Nil, []Card{{Front: "a", Back: "b"}}); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for missing source, got %v", err)
	}
}

func TestMaterialClone(t *testing.T) {
	t.Parallel()

	m, err := NewQuizMaterial("Basics", uuid.New(), sampleQuestions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	c := m.Clone()
	c.Quiz.Questions[0].Options[0] = "changed"
	if m.Quiz.Questions[0].Options[0] == "changed" {
		t.Error("Clone must not share option slices")
	}
}

func TestParseMaterialKind(t *testing.T) {
	t.Parallel()

	if k, err := ParseMaterialKind(" Quiz "); err != nil || k != MaterialQuiz {
		t.Errorf("Expected quiz, got %q %v", k, err)
	}
	if _, err := ParseMaterialKind("essay"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
