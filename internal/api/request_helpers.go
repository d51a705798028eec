package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/api/shared"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/redact"
)

func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required")
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format")
	}
	return id, nil
}

// pathUUIDs parses the named path parameters in order, writing a 400 response
// and returning false on the first invalid one.
func pathUUIDs(w http.ResponseWriter, r *http.Request, log *slog.Logger, names ...string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		id, err := getPathUUID(r, name)
		if err != nil {
			log.Warn("invalid path parameter",
				slog.String("param_name", name),
				slog.String("value", chi.URLParam(r, name)))
			shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// decodeAndValidate decodes the JSON body into req and validates it, writing
// a 400 response and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, log *slog.Logger, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// handleServiceError maps err to a status code and writes a sanitized response.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
