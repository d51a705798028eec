package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/generation"
)

// ErrNotConfigured is returned by MockSynthesizer methods with no function set.
var ErrNotConfigured = errors.New("mock method not configured")

// MockSynthesizer implements the study service's Synthesizer.
type MockSynthesizer struct {
	SynthesizeFn     func(ctx context.Context, doc *domain.Document, kind domain.MaterialKind) (*domain.Material, error)
	SummarizeTextFn  func(ctx context.Context, text string) (string, error)
	SummarizeImageFn func(ctx context.Context, img *generation.Image) (string, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockSynthesizer) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how many times the named method was called.
func (m *MockSynthesizer) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// Synthesize delegates to SynthesizeFn.
func (m *MockSynthesizer) Synthesize(ctx context.Context, doc *domain.Document, kind domain.MaterialKind) (*domain.Material, error) {
	m.record("Synthesize")
	if m.SynthesizeFn == nil {
		return nil, ErrNotConfigured
	}
	return m.SynthesizeFn(ctx, doc, kind)
}

// SummarizeText delegates to SummarizeTextFn.
func (m *MockSynthesizer) SummarizeText(ctx context.Context, text string) (string, error) {
	m.record("SummarizeText")
	if m.SummarizeTextFn == nil {
		return "", ErrNotConfigured
	}
	return m.SummarizeTextFn(ctx, text)
}

// SummarizeImage delegates to SummarizeImageFn.
func (m *MockSynthesizer) SummarizeImage(ctx context.Context, img *generation.Image) (string, error) {
	m.record("SummarizeImage")
	if m.SummarizeImageFn == nil {
		return "", ErrNotConfigured
	}
	return m.SummarizeImageFn(ctx, img)
}

// NewStudySynthesizer returns a MockSynthesizer with a fixed summary, a
// two-question quiz whose answers are options 2 then 3, and a two-card deck.
// Material titles are the document title plus " Quiz" or " Flashcards".
func NewStudySynthesizer() *MockSynthesizer {
	return &MockSynthesizer{
		SynthesizeFn: func(_ context.Context, doc *domain.Document, kind domain.MaterialKind) (*domain.Material, error) {
			if kind == domain.MaterialFlashcards {
				return domain.NewDeckMaterial(doc.Title+" Flashcards", doc.ID, []domain.Card{
					{Front: "Cell", Back: "Unit of life"},
					{Front: "ATP", Back: "Energy currency"},
				})
			}
			return domain.NewQuizMaterial(doc.Title+" Quiz", doc.ID, []domain.Question{
				{Text: "Unit of life?", Options: []string{"Atom", "Cell", "Organ", "Tissue"}, CorrectIndex: 1},
				{Text: "Powerhouse?", Options: []string{"Nucleus", "Ribosome", "Mitochondria", "Wall"}, CorrectIndex: 2},
			})
		},
		SummarizeTextFn: func(context.Context, string) (string, error) {
			return "Cells are the unit of life.", nil
		},
		SummarizeImageFn: func(_ context.Context, img *generation.Image) (string, error) {
			return "An image of type " + img.MIMEType + ".", nil
		},
	}
}
