package api

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/phrazzld/studykit/internal/api/shared"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/service"
)

// ListClasses handles GET /api/classes.
func (h *StudyHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.study.ListClasses(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if classes == nil {
		classes = []*domain.ClassModule{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, classes)
}

// CreateClass handles POST /api/classes.
func (h *StudyHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	var req CreateClassRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	class, award, err := h.study.CreateClass(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	log.Debug("class created", slog.String("class_id", class.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, ClassResponse{Class: class, Award: award})
}

// GetClass handles GET /api/classes/{classID}.
func (h *StudyHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, h.log(r), "classID")
	if !ok {
		return
	}

	class, err := h.study.GetClass(r.Context(), ids[0])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, class)
}

// DeleteClass handles DELETE /api/classes/{classID}.
func (h *StudyHandler) DeleteClass(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ids, ok := pathUUIDs(w, r, log, "classID")
	if !ok {
		return
	}

	if err := h.study.DeleteClass(r.Context(), ids[0]); err != nil {
		handleServiceError(w, r, err)
		return
	}

	log.Debug("class deleted", slog.String("class_id", ids[0].String()))
	w.WriteHeader(http.StatusNoContent)
}

// LogAssignment handles POST /api/classes/{classID}/assignments.
func (h *StudyHandler) LogAssignment(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ids, ok := pathUUIDs(w, r, log, "classID")
	if !ok {
		return
	}

	var req LogAssignmentRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	assignment, award, err := h.study.LogAssignment(r.Context(), ids[0], req.Name, *req.Grade)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, AssignmentResponse{Assignment: assignment, Award: award})
}

// UploadDocument handles POST /api/classes/{classID}/documents. The summary
// is produced asynchronously, so the response is 202 with the document still
// pending unless summarizing is turned off.
func (h *StudyHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ids, ok := pathUUIDs(w, r, log, "classID")
	if !ok {
		return
	}

	var req UploadDocumentRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	in := service.UploadInput{Title: req.Title, Text: req.Text}
	if req.Image != "" {
		data, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid image: invalid base64")
			return
		}
		mimeType := req.MIMEType
		if mimeType == "" {
			mimeType = DefaultImageMIMEType
		}
		in.Image = &generation.Image{MIMEType: mimeType, Data: data}
	}

	doc, award, err := h.study.UploadDocument(r.Context(), ids[0], in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	log.Debug("document uploaded",
		slog.String("class_id", ids[0].String()),
		slog.String("document_id", doc.ID.String()),
		slog.String("status", string(doc.Status)))
	shared.RespondWithJSON(w, r, http.StatusAccepted, DocumentResponse{Document: doc, Award: award})
}

// GetDocument handles GET /api/classes/{classID}/documents/{documentID}.
func (h *StudyHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, h.log(r), "classID", "documentID")
	if !ok {
		return
	}

	doc, err := h.study.GetDocument(r.Context(), ids[0], ids[1])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DocumentView{
		Document:   doc,
		Generating: h.study.GeneratingKinds(doc.ID),
	})
}

// GenerateMaterial handles POST /api/classes/{classID}/documents/{documentID}/materials.
func (h *StudyHandler) GenerateMaterial(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ids, ok := pathUUIDs(w, r, log, "classID", "documentID")
	if !ok {
		return
	}

	var req GenerateMaterialRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	material, award, err := h.study.GenerateMaterial(r.Context(), ids[0], ids[1], domain.MaterialKind(req.Kind))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	log.Debug("material generated",
		slog.String("material_id", material.ID.String()),
		slog.String("kind", req.Kind))
	shared.RespondWithJSON(w, r, http.StatusCreated, MaterialResponse{Material: material, Award: award})
}

// GetMaterial handles GET /api/classes/{classID}/materials/{materialID}.
func (h *StudyHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, h.log(r), "classID", "materialID")
	if !ok {
		return
	}

	material, err := h.study.GetMaterial(r.Context(), ids[0], ids[1])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, material)
}
