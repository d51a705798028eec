package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/studykit/internal/api/shared"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	log, buf := logger.NewTestLogger()

	var seenTrace string
	handler := NewTraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTrace = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/classes", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, seenTrace, 32)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "request started", entries[0]["msg"])
	assert.Equal(t, "/api/classes", entries[0]["path"])
	for _, e := range entries {
		assert.Equal(t, seenTrace, e["trace_id"], "Every request log line carries the trace ID")
	}
}
