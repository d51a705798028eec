package synthesis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/platform/logger"
)

// Synthesizer produces summaries and study materials through a generator.
type Synthesizer struct {
	gen    generation.Generator
	parser *parser
	logger *slog.Logger
}

// New creates a Synthesizer. A nil logger falls back to slog.Default().
func New(gen generation.Generator, log *slog.Logger) (*Synthesizer, error) {
	if gen == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Synthesizer{
		gen:    gen,
		parser: newParser(),
		logger: log.With("component", "synthesizer"),
	}, nil
}

// Synthesize generates a quiz or flashcard deck from doc. The prompt embeds
// the document summary, or its content when no summary exists.
//
// Errors:
//   - *generation.GenerationError when the endpoint could not answer
//   - *SynthesisError when the reply is not valid JSON for the schema
//   - *domain.ValidationError for an unsupported kind or empty source
func (s *Synthesizer) Synthesize(ctx context.Context, doc *domain.Document, kind domain.MaterialKind) (*domain.Material, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if doc == nil {
		return nil, domain.NewValidationError("document", "must not be nil")
	}
	source := doc.SourceText()
	if strings.TrimSpace(source) == "" {
		return nil, domain.NewValidationError("document", "has no summary or content to synthesize from")
	}

	prompt, err := BuildMaterialPrompt(kind, source)
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "synthesizing material",
		"document_id", doc.ID.String(),
		"kind", string(kind),
		"prompt_length", len(prompt))

	raw, err := s.gen.Generate(ctx, prompt, true, nil)
	if err != nil {
		return nil, err
	}

	var material *domain.Material
	switch kind {
	case domain.MaterialQuiz:
		title, questions, perr := s.parser.parseQuiz(raw)
		if perr != nil {
			log.WarnContext(ctx, "discarding malformed quiz response", "error", perr, "response_length", len(raw))
			return nil, perr
		}
		material, err = domain.NewQuizMaterial(titleOr(title, doc.Title, "Quiz"), doc.ID, questions)
	case domain.MaterialFlashcards:
		title, cards, perr := s.parser.parseDeck(raw)
		if perr != nil {
			log.WarnContext(ctx, "discarding malformed flashcard response", "error", perr, "response_length", len(raw))
			return nil, perr
		}
		material, err = domain.NewDeckMaterial(titleOr(title, doc.Title, "Flashcards"), doc.ID, cards)
	}
	if err != nil {
		return nil, &SynthesisError{Kind: kind, Cause: err}
	}

	log.InfoContext(ctx, "material synthesized",
		"material_id", material.ID.String(),
		"items", material.ItemCount())
	return material, nil
}

// SummarizeText produces a short prose overview of text.
func (s *Synthesizer) SummarizeText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.NewValidationError("content", "must not be empty")
	}
	prompt, err := BuildSummaryPrompt(text)
	if err != nil {
		return "", err
	}
	summary, err := s.gen.Generate(ctx, prompt, false, nil)
	if err != nil {
		return "", fmt.Errorf("summarize text: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// SummarizeImage asks the model for a study summary of an image.
func (s *Synthesizer) SummarizeImage(ctx context.Context, img *generation.Image) (string, error) {
	if img == nil || len(img.Data) == 0 {
		return "", domain.NewValidationError("image", "must not be empty")
	}
	summary, err := s.gen.Generate(ctx, ImageSummaryPrompt, false, img)
	if err != nil {
		return "", fmt.Errorf("summarize image: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

func titleOr(title, docTitle, suffix string) string {
	if title != "" {
		return title
	}
	return strings.TrimSpace(docTitle + " " + suffix)
}
