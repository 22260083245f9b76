package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carejournal/carejournal/internal/api/middleware"
	"github.com/carejournal/carejournal/internal/api/models"
)

func requireJSONHandler(reached *bool) http.Handler {
	return middleware.RequestID(middleware.RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*reached = true
		w.WriteHeader(http.StatusNoContent)
	})))
}

func TestRequireJSON_RejectsOtherMediaTypesWithProblem(t *testing.T) {
	var reached bool
	req := httptest.NewRequest(http.MethodPost, "/medicines", strings.NewReader("title=Panodil"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	requireJSONHandler(&reached).ServeHTTP(w, req)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeUnsupportedBody, problem.Type)
	assert.Equal(t, "Unsupported media type", problem.Title)
	assert.Equal(t, http.StatusUnsupportedMediaType, problem.Status)
	assert.Contains(t, problem.Detail, "application/x-www-form-urlencoded")
	assert.Equal(t, "/medicines", problem.Instance)
	assert.NotEmpty(t, problem.TraceID)
	assert.Equal(t, w.Header().Get("X-Request-Id"), problem.TraceID)
}

func TestRequireJSON_LetsThrough(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
	}{
		{"json", http.MethodPost, "application/json"},
		{"json with charset", http.MethodPut, "application/json; charset=utf-8"},
		{"mixed case", http.MethodPatch, "Application/JSON"},
		{"no content type", http.MethodPost, ""},
		{"get ignores header", http.MethodGet, "text/html"},
		{"delete ignores header", http.MethodDelete, "text/html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached bool
			req := httptest.NewRequest(tt.method, "/medicines", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			requireJSONHandler(&reached).ServeHTTP(w, req)

			assert.True(t, reached)
			assert.Equal(t, http.StatusNoContent, w.Code)
		})
	}
}

func TestContentTypeJSON_KeepsHandlerHeader(t *testing.T) {
	handler := middleware.ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/problem" {
			w.Header().Set("Content-Type", "application/problem+json")
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/patients", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/problem", nil))
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}
