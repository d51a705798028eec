package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/studykit/internal/config"
	"github.com/phrazzld/studykit/internal/domain"
	"github.com/phrazzld/studykit/internal/mocks"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/phrazzld/studykit/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 0, LogLevel: "debug"},
		LLM:    config.LLMConfig{AutoSummarize: true},
		Task:   config.TaskConfig{WorkerCount: 1, QueueSize: 10},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*application, *httptest.Server) {
	t.Helper()
	log, _ := logger.NewTestLogger()
	app, err := newApplication(context.Background(), cfg, log, mocks.NewStudySynthesizer())
	require.NoError(t, err)
	app.runner.Start()

	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(func() {
		srv.Close()
		app.cleanup()
	})
	return app, srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode, "%s %s", method, path)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func TestStudyFlowOverHTTP(t *testing.T) {
	_, srv := newTestApp(t, testConfig())

	call(t, srv, http.MethodGet, "/health", nil, http.StatusOK, nil)

	var created struct {
		Class *domain.ClassModule `json:"class"`
	}
	call(t, srv, http.MethodPost, "/api/classes", map[string]string{"name": "Biology"}, http.StatusCreated, &created)
	classPath := "/api/classes/" + created.Class.ID.String()

	var uploaded struct {
		Document *domain.Document `json:"document"`
	}
	call(t, srv, http.MethodPost, classPath+"/documents",
		map[string]string{"title": "Cells", "text": "The cell is the basic unit of life."},
		http.StatusAccepted, &uploaded)
	docPath := classPath + "/documents/" + uploaded.Document.ID.String()

	// The summary runs on the worker pool.
	require.Eventually(t, func() bool {
		resp, err := srv.Client().Get(srv.URL + docPath)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var doc domain.Document
		return json.NewDecoder(resp.Body).Decode(&doc) == nil && doc.Ready()
	}, 2*time.Second, 10*time.Millisecond)

	var material struct {
		Material *domain.Material `json:"material"`
	}
	call(t, srv, http.MethodPost, docPath+"/materials", map[string]string{"kind": "quiz"}, http.StatusCreated, &material)
	assert.Equal(t, "Cells Quiz", material.Material.Title)

	var view service.SessionView
	call(t, srv, http.MethodPost, classPath+"/materials/"+material.Material.ID.String()+"/sessions",
		nil, http.StatusCreated, &view)
	sessionPath := "/api/sessions/" + view.ID.String()

	var step service.StepResult
	call(t, srv, http.MethodPost, sessionPath+"/answer", map[string]int{"option": 1}, http.StatusOK, &step)
	assert.Nil(t, step.Outcome)
	call(t, srv, http.MethodPost, sessionPath+"/answer", map[string]int{"option": 2}, http.StatusOK, &step)
	require.NotNil(t, step.Outcome)
	require.NotNil(t, step.Award)
	assert.Equal(t, 100, step.Outcome.Score)

	call(t, srv, http.MethodGet, sessionPath, nil, http.StatusNotFound, nil)

	var dash service.DashboardView
	call(t, srv, http.MethodGet, "/api/progress", nil, http.StatusOK, &dash)
	require.Len(t, dash.Classes, 1)
	assert.Equal(t, 1, dash.Classes[0].Results)
	assert.NotEmpty(t, dash.Earned)
}

func TestGenerateMaterialBeforeSummary(t *testing.T) {
	cfg := testConfig()
	log, _ := logger.NewTestLogger()
	app, err := newApplication(context.Background(), cfg, log, mocks.NewStudySynthesizer())
	require.NoError(t, err)
	// Runner never started: the summary stays queued.
	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(func() {
		srv.Close()
		app.cleanup()
	})

	var created struct {
		Class *domain.ClassModule `json:"class"`
	}
	call(t, srv, http.MethodPost, "/api/classes", map[string]string{"name": "History"}, http.StatusCreated, &created)
	classPath := "/api/classes/" + created.Class.ID.String()

	var uploaded struct {
		Document *domain.Document `json:"document"`
	}
	call(t, srv, http.MethodPost, classPath+"/documents",
		map[string]string{"title": "Rome", "text": "Rome was founded in 753 BC."},
		http.StatusAccepted, &uploaded)
	assert.Equal(t, domain.DocumentPendingSummary, uploaded.Document.Status)

	call(t, srv, http.MethodPost, classPath+"/documents/"+uploaded.Document.ID.String()+"/materials",
		map[string]string{"kind": "flashcards"}, http.StatusConflict, nil)
}

func TestApplySeedOnRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classes:\n  - name: Chemistry\n    documents:\n      - title: Bonds\n        text: Atoms share electrons.\n"), 0o600))

	cfg := testConfig()
	cfg.LLM.AutoSummarize = false
	cfg.Seed.Path = path
	app, srv := newTestApp(t, cfg)

	require.NoError(t, app.applySeed(context.Background()))

	var classes []*domain.ClassModule
	call(t, srv, http.MethodGet, "/api/classes", nil, http.StatusOK, &classes)
	require.Len(t, classes, 1)
	assert.Equal(t, "Chemistry", classes[0].Name)
	require.Len(t, classes[0].Documents, 1)
	assert.True(t, classes[0].Documents[0].Ready(), "Seeded text is ready when auto-summarize is off")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	log, _ := logger.NewTestLogger()
	app, err := newApplication(context.Background(), testConfig(), log, mocks.NewStudySynthesizer())
	require.NoError(t, err)
	defer app.cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
