package synthesis

import (
	"errors"
	"fmt"

	"github.com/phrazzld/studykit/internal/domain"
)

// ErrMalformedResponse is matched by every SynthesisError.
var ErrMalformedResponse = errors.New("malformed AI response")

// SynthesisError reports model output that could not be parsed or did not
// satisfy the material schema. No partial material is ever produced.
type SynthesisError struct {
	Kind  domain.MaterialKind
	Cause error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s for %s: %v", ErrMalformedResponse, e.Kind, e.Cause)
}

// Unwrap exposes both ErrMalformedResponse and the underlying cause.
func (e *SynthesisError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Cause}
}
