package session

import (
	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/domain"
)

// MarkResult reports the effect of marking a card.
type MarkResult struct {
	Finished bool `json:"finished"`
	Score    int  `json:"score"`
}

// Flashcards is a mastery-gated deck review. Each card must be flipped to its
// back before it can be marked known or unknown; marking advances to the next
// card showing its front.
type Flashcards struct {
	materialID uuid.UUID
	cards      []domain.Card
	index      int
	revealed   bool
	known      int
	score      int
	finished   bool
}

var _ Session = (*Flashcards)(nil)

// NewFlashcards starts a review of the deck material m.
func NewFlashcards(m *domain.Material) (*Flashcards, error) {
	if m == nil || m.Kind != domain.MaterialFlashcards || m.Deck == nil {
		return nil, domain.NewValidationError("material", "is not a flashcard deck")
	}
	if len(m.Deck.Cards) == 0 {
		return nil, domain.NewValidationError("cards", "deck has no cards")
	}
	return &Flashcards{
		materialID: m.ID,
		cards:      append([]domain.Card(nil), m.Deck.Cards...),
	}, nil
}

// Flip toggles the current card between front and back.
func (f *Flashcards) Flip() error {
	if f.finished {
		return ErrSessionFinished
	}
	f.revealed = !f.revealed
	return nil
}

// MarkKnown records the current card as mastered and advances.
func (f *Flashcards) MarkKnown() (MarkResult, error) {
	return f.mark(true)
}

// MarkUnknown records the current card as not yet mastered and advances.
func (f *Flashcards) MarkUnknown() (MarkResult, error) {
	return f.mark(false)
}

func (f *Flashcards) mark(known bool) (MarkResult, error) {
	if f.finished {
		return MarkResult{}, ErrSessionFinished
	}
	if !f.revealed {
		return MarkResult{}, ErrNotRevealed
	}
	if known {
		f.known++
	}
	f.index++
	f.revealed = false
	if f.index == len(f.cards) {
		f.finished = true
		f.score = Score(f.known, len(f.cards))
		return MarkResult{Finished: true, Score: f.score}, nil
	}
	return MarkResult{}, nil
}

// MaterialID returns the deck material id.
func (f *Flashcards) MaterialID() uuid.UUID { return f.materialID }

// Kind returns domain.MaterialFlashcards.
func (f *Flashcards) Kind() domain.MaterialKind { return domain.MaterialFlashcards }

// State returns the current card face or the final score.
func (f *Flashcards) State() State {
	st := State{
		Kind:    domain.MaterialFlashcards,
		Index:   f.index,
		Total:   len(f.cards),
		Correct: f.known,
	}
	if f.finished {
		score := f.score
		st.Phase = PhaseScored
		st.Score = &score
		return st
	}
	cur := f.cards[f.index]
	view := &CardView{Front: cur.Front, Revealed: f.revealed}
	st.Phase = PhaseCardFront
	if f.revealed {
		view.Back = cur.Back
		st.Phase = PhaseCardBack
	}
	st.Card = view
	return st
}

// Outcome returns the result once every card has been marked.
func (f *Flashcards) Outcome() (Outcome, bool) {
	if !f.finished {
		return Outcome{}, false
	}
	return Outcome{
		MaterialID: f.materialID,
		Kind:       domain.MaterialFlashcards,
		Score:      f.score,
		Correct:    f.known,
		Total:      len(f.cards),
	}, true
}
