package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/api/shared"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/progression"
	"github.com/phrazzld/studykit/internal/service"
)

// StudyService is the subset of service.StudyService the handlers call.
type StudyService interface {
	Dashboard(ctx context.Context) (*service.DashboardView, error)

	CreateClass(ctx context.Context, name string) (*domain.ClassModule, progression.Award, error)
	ListClasses(ctx context.Context) ([]*domain.ClassModule, error)
	GetClass(ctx context.Context, classID uuid.UUID) (*domain.ClassModule, error)
	DeleteClass(ctx context.Context, classID uuid.UUID) error
	LogAssignment(ctx context.Context, classID uuid.UUID, name string, grade float64) (*domain.Assignment, progression.Award, error)

	UploadDocument(ctx context.Context, classID uuid.UUID, in service.UploadInput) (*domain.Document, progression.Award, error)
	GetDocument(ctx context.Context, classID, documentID uuid.UUID) (*domain.Document, error)
	GeneratingKinds(documentID uuid.UUID) []domain.MaterialKind

	GenerateMaterial(ctx context.Context, classID, documentID uuid.UUID, kind domain.MaterialKind) (*domain.Material, progression.Award, error)
	GetMaterial(ctx context.Context, classID, materialID uuid.UUID) (*domain.Material, error)

	StartSession(ctx context.Context, classID, materialID uuid.UUID) (*service.SessionView, error)
	GetSession(ctx context.Context, sessionID uuid.UUID) (*service.SessionView, error)
	Answer(ctx context.Context, sessionID uuid.UUID, option int) (*service.StepResult, error)
	Flip(ctx context.Context, sessionID uuid.UUID) (*service.SessionView, error)
	Mark(ctx context.Context, sessionID uuid.UUID, known bool) (*service.StepResult, error)
}

// StudyHandler serves the class, document, material and session endpoints.
type StudyHandler struct {
	study  StudyService
	logger *slog.Logger
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(study StudyService, logger *slog.Logger) *StudyHandler {
	if study == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("study service cannot be nil for StudyHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}
	return &StudyHandler{
		study:  study,
		logger: logger.With(slog.String("component", "study_handler")),
	}
}

// Routes registers the handler's endpoints on r, which is mounted at /api.
func (h *StudyHandler) Routes(r chi.Router) {
	r.Get("/progress", h.GetProgress)

	r.Route("/classes", func(r chi.Router) {
		r.Get("/", h.ListClasses)
		r.Post("/", h.CreateClass)
		r.Route("/{classID}", func(r chi.Router) {
			r.Get("/", h.GetClass)
			r.Delete("/", h.DeleteClass)
			r.Post("/documents", h.UploadDocument)
			r.Get("/documents/{documentID}", h.GetDocument)
			r.Post("/documents/{documentID}/materials", h.GenerateMaterial)
			r.Post("/assignments", h.LogAssignment)
			r.Get("/materials/{materialID}", h.GetMaterial)
			r.Post("/materials/{materialID}/sessions", h.StartSession)
		})
	})

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/answer", h.Answer)
		r.Post("/flip", h.Flip)
		r.Post("/mark", h.Mark)
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// GetProgress handles GET /api/progress.
func (h *StudyHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	view, err := h.study.Dashboard(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

func (h *StudyHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}
