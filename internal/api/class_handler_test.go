package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/studykit/internal/api/shared"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/generation"
	"github.com/phrazzld/studykit/internal/progression"
	"github.com/phrazzld/studykit/internal/service"
	"github.com/phrazzld/studykit/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateForTest(v interface{}) error {
	return shared.ValidateRequest(v)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, &mockStudyService{})

	w := doRequest(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body HealthResponse
	decodeBody(t, w, &body)
	assert.Equal(t, "ok", body.Status)
}

func TestGetProgress(t *testing.T) {
	svc := &mockStudyService{
		DashboardFn: func(ctx context.Context) (*service.DashboardView, error) {
			return &service.DashboardView{
				Dashboard: progression.BuildDashboard(domain.ProgressState{TotalXP: 1200}),
				Classes:   []service.ClassSummary{{Name: "Biology", Documents: 2}},
			}, nil
		},
	}
	router, _ := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodGet, "/api/progress", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decodeBody(t, w, &body)
	assert.Equal(t, float64(1200), body["total_xp"])
	assert.Equal(t, float64(2), body["level"])
	assert.Len(t, body["classes"], 1)
}

func TestCreateClass(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		var gotName string
		svc := &mockStudyService{
			CreateClassFn: func(ctx context.Context, name string) (*domain.ClassModule, progression.Award, error) {
				gotName = name
				class, err := domain.NewClassModule(name, domain.ColorBlue)
				return class, progression.Award{XPGained: 150, LevelBefore: 1, LevelAfter: 1}, err
			},
		}
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, http.MethodPost, "/api/classes", CreateClassRequest{Name: "Biology"})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Biology", gotName)
		var body ClassResponse
		decodeBody(t, w, &body)
		assert.Equal(t, "Biology", body.Class.Name)
		assert.Equal(t, domain.ColorBlue, body.Class.Color)
		assert.Equal(t, 150, body.Award.XPGained)
	})

	t.Run("missing name", func(t *testing.T) {
		router, _ := newTestRouter(t, &mockStudyService{})

		w := doRequest(t, router, http.MethodPost, "/api/classes", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body shared.ErrorResponse
		decodeBody(t, w, &body)
		assert.Equal(t, "Invalid name: required field", body.Error)
		assert.Len(t, body.TraceID, 32)
	})

	t.Run("malformed body", func(t *testing.T) {
		router, _ := newTestRouter(t, &mockStudyService{})

		w := doRequest(t, router, http.MethodPost, "/api/classes", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request format")
	})
}

func TestListClassesEmpty(t *testing.T) {
	svc := &mockStudyService{
		ListClassesFn: func(ctx context.Context) ([]*domain.ClassModule, error) { return nil, nil },
	}
	router, _ := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodGet, "/api/classes", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetClass(t *testing.T) {
	classID := uuid.New()

	t.Run("invalid id", func(t *testing.T) {
		router, _ := newTestRouter(t, &mockStudyService{})

		w := doRequest(t, router, http.MethodGet, "/api/classes/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid classID: has invalid format")
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockStudyService{
			GetClassFn: func(ctx context.Context, id uuid.UUID) (*domain.ClassModule, error) {
				assert.Equal(t, classID, id)
				return nil, service.NewServiceError("get_class", store.ErrClassNotFound)
			},
		}
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, http.MethodGet, "/api/classes/"+classID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Class not found")
	})
}

func TestDeleteClass(t *testing.T) {
	classID := uuid.New()
	var deleted uuid.UUID
	svc := &mockStudyService{
		DeleteClassFn: func(ctx context.Context, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	router, _ := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodDelete, "/api/classes/"+classID.String(), nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, classID, deleted)
}

func TestLogAssignment(t *testing.T) {
	classID := uuid.New()

	t.Run("zero grade is accepted", func(t *testing.T) {
		var gotGrade float64 = -1
		svc := &mockStudyService{
			LogAssignmentFn: func(ctx context.Context, id uuid.UUID, name string, grade float64) (*domain.Assignment, progression.Award, error) {
				gotGrade = grade
				a, err := domain.NewAssignment(name, grade)
				return a, progression.Award{}, err
			},
		}
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, http.MethodPost, "/api/classes/"+classID.String()+"/assignments",
			`{"name":"Lab 1","grade":0}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 0.0, gotGrade)
	})

	t.Run("missing grade", func(t *testing.T) {
		router, _ := newTestRouter(t, &mockStudyService{})

		w := doRequest(t, router, http.MethodPost, "/api/classes/"+classID.String()+"/assignments",
			`{"name":"Lab 1"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid grade: required field")
	})
}

func TestUploadDocument(t *testing.T) {
	classID := uuid.New()
	path := "/api/classes/" + classID.String() + "/documents"

	t.Run("text upload is accepted", func(t *testing.T) {
		var got service.UploadInput
		svc := &mockStudyService{
			UploadDocumentFn: func(ctx context.Context, id uuid.UUID, in service.UploadInput) (*domain.Document, progression.Award, error) {
				got = in
				doc, err := domain.NewDocument(in.Title, domain.ContentText, in.Text)
				return doc, progression.Award{XPGained: 50}, err
			},
		}
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, http.MethodPost, path, UploadDocumentRequest{Title: "Cells", Text: "Mitochondria."})

		require.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "Mitochondria.", got.Text)
		assert.Nil(t, got.Image)
		var body DocumentResponse
		decodeBody(t, w, &body)
		assert.Equal(t, domain.DocumentPendingSummary, body.Document.Status)
		assert.Equal(t, 50, body.Award.XPGained)
	})

	t.Run("image upload defaults the mime type", func(t *testing.T) {
		var got *generation.Image
		svc := &mockStudyService{
			UploadDocumentFn: func(ctx context.Context, id uuid.UUID, in service.UploadInput) (*domain.Document, progression.Award, error) {
				got = in.Image
				doc, err := domain.NewDocument(in.Title, domain.ContentImage, "")
				return doc, progression.Award{}, err
			},
		}
		router, _ := newTestRouter(t, svc)

		w := doRequest(t, router, http.MethodPost, path, UploadDocumentRequest{
			Title: "Diagram",
			Image: base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}),
		})

		require.Equal(t, http.StatusAccepted, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, DefaultImageMIMEType, got.MIMEType)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got.Data)
	})

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "no content", body: `{"title":"x"}`, wantMsg: "Invalid text: required field"},
		{name: "text and image", body: `{"title":"x","text":"a","image":"aGk="}`, wantMsg: "Invalid text: conflicts with another field"},
		{name: "bad base64", body: `{"title":"x","image":"%%%"}`, wantMsg: "Invalid image: invalid base64"},
		{name: "unsupported mime type", body: `{"title":"x","image":"aGk=","mime_type":"image/tiff"}`, wantMsg: "Invalid mimetype: invalid value"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &mockStudyService{})

			w := doRequest(t, router, http.MethodPost, path, tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body shared.ErrorResponse
			decodeBody(t, w, &body)
			assert.Equal(t, tc.wantMsg, body.Error)
		})
	}
}

func TestGenerateMaterialErrors(t *testing.T) {
	classID, docID := uuid.New(), uuid.New()
	path := "/api/classes/" + classID.String() + "/documents/" + docID.String() + "/materials"

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "busy", err: service.ErrBusy, wantStatus: http.StatusConflict},
		{name: "not ready", err: service.ErrDocumentNotReady, wantStatus: http.StatusConflict},
		{
			name:       "generation failure",
			err:        service.NewServiceError("generate_material", &generation.GenerationError{Attempts: 5, Cause: assert.AnError}),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockStudyService{
				GenerateMaterialFn: func(ctx context.Context, c, d uuid.UUID, kind domain.MaterialKind) (*domain.Material, progression.Award, error) {
					assert.Equal(t, domain.MaterialQuiz, kind)
					return nil, progression.Award{}, tc.err
				},
			}
			router, buf := newTestRouter(t, svc)

			w := doRequest(t, router, http.MethodPost, path, GenerateMaterialRequest{Kind: "quiz"})

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.True(t, strings.Contains(buf.String(), "API error response"))
		})
	}
}

func TestGenerateMaterialCreated(t *testing.T) {
	classID, docID := uuid.New(), uuid.New()
	svc := &mockStudyService{
		GenerateMaterialFn: func(ctx context.Context, c, d uuid.UUID, kind domain.MaterialKind) (*domain.Material, progression.Award, error) {
			m, err := domain.NewDeckMaterial("Cells", d, []domain.Card{{Front: "ATP", Back: "energy"}})
			return m, progression.Award{XPGained: 100}, err
		},
	}
	router, _ := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodPost,
		"/api/classes/"+classID.String()+"/documents/"+docID.String()+"/materials",
		GenerateMaterialRequest{Kind: "flashcards"})

	require.Equal(t, http.StatusCreated, w.Code)
	var body MaterialResponse
	decodeBody(t, w, &body)
	assert.Equal(t, domain.MaterialFlashcards, body.Material.Kind)
	assert.Equal(t, docID, body.Material.SourceDocumentID)
	assert.Equal(t, 100, body.Award.XPGained)
}

func TestGetDocumentReportsGeneratingKinds(t *testing.T) {
	classID := uuid.New()
	doc, err := domain.NewDocument("Cells", domain.ContentText, "The cell is the unit of life.")
	require.NoError(t, err)

	svc := &mockStudyService{
		GetDocumentFn: func(ctx context.Context, c, d uuid.UUID) (*domain.Document, error) {
			assert.Equal(t, classID, c)
			assert.Equal(t, doc.ID, d)
			return doc, nil
		},
		GeneratingKindsFn: func(d uuid.UUID) []domain.MaterialKind {
			assert.Equal(t, doc.ID, d)
			return []domain.MaterialKind{domain.MaterialQuiz}
		},
	}
	router, _ := newTestRouter(t, svc)

	w := doRequest(t, router, http.MethodGet,
		"/api/classes/"+classID.String()+"/documents/"+doc.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		ID         uuid.UUID             `json:"id"`
		Title      string                `json:"title"`
		Generating []domain.MaterialKind `json:"generating"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, doc.ID, body.ID)
	assert.Equal(t, "Cells", body.Title)
	assert.Equal(t, []domain.MaterialKind{domain.MaterialQuiz}, body.Generating)
}
