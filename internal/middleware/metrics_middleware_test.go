package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusWriterRecordsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	sw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, sw.status)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestStatusWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	// Handler writes a body without an explicit WriteHeader
	sw.Write([]byte("ok"))

	assert.Equal(t, http.StatusOK, sw.status)
}

func TestStatusWriterHijackUnsupported(t *testing.T) {
	// httptest.ResponseRecorder is not a Hijacker; the wrapper must
	// surface that as an error, not a panic.
	sw := &statusWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	_, _, err := sw.Hijack()
	assert.Error(t, err)
}

func TestMetricsMiddlewarePassesThrough(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/store/checkout", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
}
