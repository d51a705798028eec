package gemini

import "github.com/phrazzld/studykit/internal/generation"

// Error definitions for the gemini package.
var (
	// ErrContentBlocked is returned when the model stops for safety reasons.
	// The generation client does not retry it.
	ErrContentBlocked = generation.ErrContentBlocked
)
