package api

import (
	"net/http"

	"github.com/phrazzld/studykit/internal/api/shared"
)

// StartSession handles POST /api/classes/{classID}/materials/{materialID}/sessions.
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, h.log(r), "classID", "materialID")
	if !ok {
		return
	}

	view, err := h.study.StartSession(r.Context(), ids[0], ids[1])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, view)
}

// GetSession handles GET /api/sessions/{sessionID}.
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, h.log(r), "sessionID")
	if !ok {
		return
	}

	view, err := h.study.GetSession(r.Context(), ids[0])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// Answer handles POST /api/sessions/{sessionID}/answer. The answer that
// finishes a quiz carries its outcome and award.
func (h *StudyHandler) Answer(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ids, ok := pathUUIDs(w, r, log, "sessionID")
	if !ok {
		return
	}

	var req AnswerRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	step, err := h.study.Answer(r.Context(), ids[0], *req.Option)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, step)
}

// Flip handles POST /api/sessions/{sessionID}/flip.
func (h *StudyHandler) Flip(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, h.log(r), "sessionID")
	if !ok {
		return
	}

	view, err := h.study.Flip(r.Context(), ids[0])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// Mark handles POST /api/sessions/{sessionID}/mark.
func (h *StudyHandler) Mark(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ids, ok := pathUUIDs(w, r, log, "sessionID")
	if !ok {
		return
	}

	var req MarkRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	step, err := h.study.Mark(r.Context(), ids[0], *req.Known)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, step)
}
