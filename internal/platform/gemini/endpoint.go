package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/studykit/internal/config"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"google.golang.org/genai"
)

// jsonMIMEType is requested from the model when the caller expects JSON.
const jsonMIMEType = "application/json"

// contentGenerator is the subset of *genai.Models the endpoint uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Endpoint implements generation.Endpoint over the Gemini API.
type Endpoint struct {
	models contentGenerator
	model  string
	logger *slog.Logger
}

var _ generation.Endpoint = (*Endpoint)(nil)

// NewEndpoint creates a Gemini client from the LLM configuration.
//
// Parameters:
//   - ctx: Context for client construction
//   - log: A structured logger for operation logging
//   - cfg: LLM configuration containing the API key and model name
//
// Returns:
//   - A ready Endpoint, or an error wrapping generation.ErrInvalidConfig
func NewEndpoint(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*Endpoint, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newEndpoint(client.Models, cfg.ModelName, log), nil
}

func newEndpoint(models contentGenerator, model string, log *slog.Logger) *Endpoint {
	if log == nil {
		log = slog.Default()
	}
	return &Endpoint{
		models: models,
		model:  model,
		logger: log.With("component", "gemini_endpoint", "model", model),
	}
}

// Complete performs one generateContent call and returns the first text part
// of the first candidate.
func (e *Endpoint) Complete(ctx context.Context, req generation.Request) (string, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	var cfg *genai.GenerateContentConfig
	if req.ExpectJSON {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: jsonMIMEType}
	}

	resp, err := e.models.GenerateContent(ctx, e.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			log.DebugContext(ctx, "gemini API error", "code", apiErr.Code, "status", apiErr.Status)
		}
		return "", fmt.Errorf("gemini generateContent: %w", err)
	}

	return firstText(resp)
}

// firstText extracts candidates[0].content.parts[0].text.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", generation.ErrEmptyCompletion
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
		return "", generation.ErrEmptyCompletion
	}
	text := cand.Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", generation.ErrEmptyCompletion
	}
	return text, nil
}
