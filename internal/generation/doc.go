// Package generation wraps an unreliable text-generation endpoint (Gemini in
// production) in a retrying Client. An Endpoint performs exactly one attempt;
// the Client owns the bounded retry loop with exponential backoff and turns
// exhaustion into a GenerationError.
package generation
