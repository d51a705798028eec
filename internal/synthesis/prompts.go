package synthesis

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/phrazzld/studykit/internal/domain"
)

// Prompt sizes and limits.
const (
	QuizQuestionCount = 5
	DeckCardCount     = 6
	// MaxSummaryInput caps the text handed to the summary prompt, in runes.
	MaxSummaryInput = 4000
)

// ImageSummaryPrompt is sent together with the image bytes.
const ImageSummaryPrompt = "Identify the key educational concepts in this image and provide a 4-sentence study summary."

var (
	quizTemplate = template.Must(template.New("quiz").Parse(
		`Generate {{.Count}} challenging multiple choice questions based on the following content. ` +
			`Return ONLY a JSON object with this structure: ` +
			`{ "title": "Quiz Name", "questions": [{ "question": "text", "options": ["A","B","C","D"], "correctIndex": 0 }] }. ` +
			`Each question must have exactly 4 options and correctIndex must be between 0 and 3. ` +
			`Content: {{.Content}}`))

	deckTemplate = template.Must(template.New("flashcards").Parse(
		`Generate {{.Count}} study flashcards. ` +
			`Return ONLY a JSON object with this structure: ` +
			`{ "title": "Deck Name", "cards": [{ "front": "term/question", "back": "definition/answer" }] }. ` +
			`Content: {{.Content}}`))

	summaryTemplate = template.Must(template.New("summary").Parse(
		`Summarize these student notes into a concise, high-level overview for a study guide ` +
			`in 3-4 sentences: {{.Content}}`))
)

type promptData struct {
	Count   int
	Content string
}

// BuildMaterialPrompt renders the prompt for the given kind. The same inputs
// always produce the same prompt.
func BuildMaterialPrompt(kind domain.MaterialKind, content string) (string, error) {
	switch kind {
	case domain.MaterialQuiz:
		return render(quizTemplate, promptData{Count: QuizQuestionCount, Content: content})
	case domain.MaterialFlashcards:
		return render(deckTemplate, promptData{Count: DeckCardCount, Content: content})
	}
	return "", domain.NewValidationError("kind", fmt.Sprintf("unsupported material kind %q", kind))
}

// BuildSummaryPrompt renders the summary prompt over text truncated to
// MaxSummaryInput runes.
func BuildSummaryPrompt(text string) (string, error) {
	return render(summaryTemplate, promptData{Content: TruncateRunes(text, MaxSummaryInput)})
}

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func render(t *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
