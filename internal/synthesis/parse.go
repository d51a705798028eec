package synthesis

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studykit/internal/domain"
)

// quizSchema is the JSON shape the quiz prompt asks for.
type quizSchema struct {
	Title     string           `json:"title"`
	Questions []questionSchema `json:"questions" validate:"required,min=1,dive"`
}

type questionSchema struct {
	Question     string   `json:"question" validate:"required"`
	Options      []string `json:"options" validate:"len=4,dive,required"`
	CorrectIndex *int     `json:"correctIndex" validate:"required,gte=0,lte=3"`
}

// deckSchema is the JSON shape the flashcard prompt asks for.
type deckSchema struct {
	Title string       `json:"title"`
	Cards []cardSchema `json:"cards" validate:"required,min=1,dive"`
}

type cardSchema struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

var errEmptyPayload = errors.New("response contains no JSON payload")

// StripCodeFences removes a surrounding ```json or ``` fence and whitespace.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parser decodes and validates model output against the material schemas.
type parser struct {
	validate *validator.Validate
}

func newParser() *parser {
	return &parser{validate: validator.New()}
}

func (p *parser) decode(raw string, kind domain.MaterialKind, dst any) error {
	payload := StripCodeFences(raw)
	if payload == "" {
		return &SynthesisError{Kind: kind, Cause: errEmptyPayload}
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return &SynthesisError{Kind: kind, Cause: err}
	}
	if err := p.validate.Struct(dst); err != nil {
		return &SynthesisError{Kind: kind, Cause: err}
	}
	return nil
}

// parseQuiz returns the title and questions of a quiz reply.
func (p *parser) parseQuiz(raw string) (string, []domain.Question, error) {
	var s quizSchema
	if err := p.decode(raw, domain.MaterialQuiz, &s); err != nil {
		return "", nil, err
	}
	questions := make([]domain.Question, len(s.Questions))
	for i, q := range s.Questions {
		questions[i] = domain.Question{
			Text:         strings.TrimSpace(q.Question),
			Options:      q.Options,
			CorrectIndex: *q.CorrectIndex,
		}
	}
	return strings.TrimSpace(s.Title), questions, nil
}

// parseDeck returns the title and cards of a flashcard reply.
func (p *parser) parseDeck(raw string) (string, []domain.Card, error) {
	var s deckSchema
	if err := p.decode(raw, domain.MaterialFlashcards, &s); err != nil {
		return "", nil, err
	}
	cards := make([]domain.Card, len(s.Cards))
	for i, c := range s.Cards {
		cards[i] = domain.Card{Front: strings.TrimSpace(c.Front), Back: strings.TrimSpace(c.Back)}
	}
	return strings.TrimSpace(s.Title), cards, nil
}
