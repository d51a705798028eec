// Package synthesis turns documents into study material. It builds
// deterministic prompts, asks the generation client for strict JSON, and
// validates the reply against explicit schemas before constructing domain
// quizzes and flashcard decks. It also produces the prose summaries that make
// a document ready for synthesis.
package synthesis
