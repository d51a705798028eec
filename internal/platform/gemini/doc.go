// Package gemini provides a generation.Endpoint backed by Google's Gemini API
// through the google.golang.org/genai SDK. Each call is a single
// generateContent request; retries belong to the generation.Client.
package gemini
