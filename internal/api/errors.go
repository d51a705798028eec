package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/service"
	"github.com/phrazzld/studykit/internal/session"
	"github.com/phrazzld/studykit/internal/store"
	"github.com/phrazzld/studykit/internal/synthesis"
)

// MapErrorToStatusCode maps service, store and domain errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	var genErr *generation.GenerationError
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, synthesis.ErrMalformedResponse):
		return http.StatusUnprocessableEntity

	case errors.As(err, &genErr):
		return http.StatusBadGateway

	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrSourceDocumentMissing),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrBusy),
		errors.Is(err, service.ErrDocumentNotReady),
		errors.Is(err, session.ErrSessionFinished),
		errors.Is(err, session.ErrNotRevealed),
		errors.Is(err, domain.ErrDocumentNotPending),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message that never includes
// raw error text.
func GetSafeErrorMessage(err error) string {
	var genErr *generation.GenerationError
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, synthesis.ErrMalformedResponse):
		return "The AI response could not be used, please try again"

	case errors.As(err, &genErr):
		return "The AI service is unavailable, please try again later"

	case errors.Is(err, store.ErrClassNotFound):
		return "Class not found"

	case errors.Is(err, store.ErrDocumentNotFound),
		errors.Is(err, store.ErrSourceDocumentMissing):
		return "Document not found"

	case errors.Is(err, store.ErrMaterialNotFound):
		return "Material not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, service.ErrSessionNotFound):
		return "Study session not found"

	case errors.Is(err, service.ErrBusy):
		return "This request is already in progress"

	case errors.Is(err, service.ErrDocumentNotReady):
		return "Document summary is not ready"

	case errors.Is(err, session.ErrSessionFinished):
		return "Study session already finished"

	case errors.Is(err, session.ErrNotRevealed):
		return "Flip the card before marking it"

	case errors.Is(err, domain.ErrDocumentNotPending):
		return "Document summary already recorded"

	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"

	case errors.Is(err, domain.ErrValidation):
		return SanitizeValidationError(err)

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError renders request and domain validation failures as
// "Invalid <field>: <reason>" without echoing rejected values.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}

	var domainErr *domain.ValidationError
	if errors.As(err, &domainErr) && len(domainErr.Errors) > 0 {
		fe := domainErr.Errors[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field, fe.Message)
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required", "required_without":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte", "lte":
		return "out of range"
	case "oneof":
		return "invalid value"
	case "base64":
		return "invalid base64"
	case "excluded_with":
		return "conflicts with another field"
	default:
		return "validation failed"
	}
}
