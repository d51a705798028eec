package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrEmptyCompletion is returned when the endpoint answers but carries no
	// text. It is terminal and never retried.
	ErrEmptyCompletion = errors.New("empty completion from language model")

	// ErrContentBlocked is returned when the model refuses the request for
	// safety reasons. It is terminal and never retried.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrEmptyPrompt is returned when Generate is called without a prompt
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidConfig is returned when the client or endpoint configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// GenerationError reports that text generation failed after Attempts tries.
// Cause is the error from the final attempt, or the context error when the
// caller gave up during a backoff wait.
type GenerationError struct {
	Attempts int
	Cause    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// isTerminal reports whether a failed attempt must not be retried.
func isTerminal(err error) bool {
	return errors.Is(err, ErrEmptyCompletion) || errors.Is(err, ErrContentBlocked)
}
