package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/api/middleware"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/progression"
	"github.com/phrazzld/studykit/internal/service"
	"github.com/stretchr/testify/require"
)

// mockStudyService implements StudyService with function fields. Unset
// functions fail the test when called.
type mockStudyService struct {
	t *testing.T

	DashboardFn        func(ctx context.Context) (*service.DashboardView, error)
	CreateClassFn      func(ctx context.Context, name string) (*domain.ClassModule, progression.Award, error)
	ListClassesFn      func(ctx context.Context) ([]*domain.ClassModule, error)
	GetClassFn         func(ctx context.Context, classID uuid.UUID) (*domain.ClassModule, error)
	DeleteClassFn      func(ctx context.Context, classID uuid.UUID) error
	LogAssignmentFn    func(ctx context.Context, classID uuid.UUID, name string, grade float64) (*domain.Assignment, progression.Award, error)
	UploadDocumentFn   func(ctx context.Context, classID uuid.UUID, in service.UploadInput) (*domain.Document, progression.Award, error)
	GetDocumentFn      func(ctx context.Context, classID, documentID uuid.UUID) (*domain.Document, error)
	GeneratingKindsFn  func(documentID uuid.UUID) []domain.MaterialKind
	GenerateMaterialFn func(ctx context.Context, classID, documentID uuid.UUID, kind domain.MaterialKind) (*domain.Material, progression.Award, error)
	GetMaterialFn      func(ctx context.Context, classID, materialID uuid.UUID) (*domain.Material, error)
	StartSessionFn     func(ctx context.Context, classID, materialID uuid.UUID) (*service.SessionView, error)
	GetSessionFn       func(ctx context.Context, sessionID uuid.UUID) (*service.SessionView, error)
	AnswerFn           func(ctx context.Context, sessionID uuid.UUID, option int) (*service.StepResult, error)
	FlipFn             func(ctx context.Context, sessionID uuid.UUID) (*service.SessionView, error)
	MarkFn             func(ctx context.Context, sessionID uuid.UUID, known bool) (*service.StepResult, error)
}

func (m *mockStudyService) unexpected(name string) {
	m.t.Helper()
	m.t.Fatalf("unexpected call to %s", name)
}

func (m *mockStudyService) Dashboard(ctx context.Context) (*service.DashboardView, error) {
	if m.DashboardFn == nil {
		m.unexpected("Dashboard")
	}
	return m.DashboardFn(ctx)
}

func (m *mockStudyService) CreateClass(ctx context.Context, name string) (*domain.ClassModule, progression.Award, error) {
	if m.CreateClassFn == nil {
		m.unexpected("CreateClass")
	}
	return m.CreateClassFn(ctx, name)
}

func (m *mockStudyService) ListClasses(ctx context.Context) ([]*domain.ClassModule, error) {
	if m.ListClassesFn == nil {
		m.unexpected("ListClasses")
	}
	return m.ListClassesFn(ctx)
}

func (m *mockStudyService) GetClass(ctx context.Context, classID uuid.UUID) (*domain.ClassModule, error) {
	if m.GetClassFn == nil {
		m.unexpected("GetClass")
	}
	return m.GetClassFn(ctx, classID)
}

func (m *mockStudyService) DeleteClass(ctx context.Context, classID uuid.UUID) error {
	if m.DeleteClassFn == nil {
		m.unexpected("DeleteClass")
	}
	return m.DeleteClassFn(ctx, classID)
}

func (m *mockStudyService) LogAssignment(
	ctx context.Context,
	classID uuid.UUID,
	name string,
	grade float64,
) (*domain.Assignment, progression.Award, error) {
	if m.LogAssignmentFn == nil {
		m.unexpected("LogAssignment")
	}
	return m.LogAssignmentFn(ctx, classID, name, grade)
}

func (m *mockStudyService) UploadDocument(
	ctx context.Context,
	classID uuid.UUID,
	in service.UploadInput,
) (*domain.Document, progression.Award, error) {
	if m.UploadDocumentFn == nil {
		m.unexpected("UploadDocument")
	}
	return m.UploadDocumentFn(ctx, classID, in)
}

func (m *mockStudyService) GetDocument(ctx context.Context, classID, documentID uuid.UUID) (*domain.Document, error) {
	if m.GetDocumentFn == nil {
		m.unexpected("GetDocument")
	}
	return m.GetDocumentFn(ctx, classID, documentID)
}

func (m *mockStudyService) GeneratingKinds(documentID uuid.UUID) []domain.MaterialKind {
	if m.GeneratingKindsFn == nil {
		m.unexpected("GeneratingKinds")
	}
	return m.GeneratingKindsFn(documentID)
}

func (m *mockStudyService) GenerateMaterial(
	ctx context.Context,
	classID, documentID uuid.UUID,
	kind domain.MaterialKind,
) (*domain.Material, progression.Award, error) {
	if m.GenerateMaterialFn == nil {
		m.unexpected("GenerateMaterial")
	}
	return m.GenerateMaterialFn(ctx, classID, documentID, kind)
}

func (m *mockStudyService) GetMaterial(ctx context.Context, classID, materialID uuid.UUID) (*domain.Material, error) {
	if m.GetMaterialFn == nil {
		m.unexpected("GetMaterial")
	}
	return m.GetMaterialFn(ctx, classID, materialID)
}

func (m *mockStudyService) StartSession(ctx context.Context, classID, materialID uuid.UUID) (*service.SessionView, error) {
	if m.StartSessionFn == nil {
		m.unexpected("StartSession")
	}
	return m.StartSessionFn(ctx, classID, materialID)
}

func (m *mockStudyService) GetSession(ctx context.Context, sessionID uuid.UUID) (*service.SessionView, error) {
	if m.GetSessionFn == nil {
		m.unexpected("GetSession")
	}
	return m.GetSessionFn(ctx, sessionID)
}

func (m *mockStudyService) Answer(ctx context.Context, sessionID uuid.UUID, option int) (*service.StepResult, error) {
	if m.AnswerFn == nil {
		m.unexpected("Answer")
	}
	return m.AnswerFn(ctx, sessionID, option)
}

func (m *mockStudyService) Flip(ctx context.Context, sessionID uuid.UUID) (*service.SessionView, error) {
	if m.FlipFn == nil {
		m.unexpected("Flip")
	}
	return m.FlipFn(ctx, sessionID)
}

func (m *mockStudyService) Mark(ctx context.Context, sessionID uuid.UUID, known bool) (*service.StepResult, error) {
	if m.MarkFn == nil {
		m.unexpected("Mark")
	}
	return m.MarkFn(ctx, sessionID, known)
}

// newTestRouter mounts the handler the way the server does.
func newTestRouter(t *testing.T, svc *mockStudyService) (http.Handler, *logger.TestLogBuffer) {
	t.Helper()
	svc.t = t
	log, buf := logger.NewTestLogger()
	h := NewStudyHandler(svc, log)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Get("/health", Health)
	r.Route("/api", h.Routes)
	return r, buf
}

// doRequest sends body (marshalled unless it is a string) and returns the recorder.
func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}
