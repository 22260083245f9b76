package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carejournal/carejournal/internal/api/middleware"
	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/api/response"
)

// withRequestID runs req through the RequestID middleware so the context
// carries an id, the way every API request does.
func withRequestID(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	var processed *http.Request
	middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		processed = r
	})).ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, processed)
	return processed
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestJSON(t *testing.T) {
	t.Run("with request id", func(t *testing.T) {
		req := withRequestID(t, httptest.NewRequest(http.MethodGet, "/api/medicines", http.NoBody))
		rec := httptest.NewRecorder()

		response.JSON(rec, req, http.StatusOK, map[string]string{"title": "Panodil"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		assert.JSONEq(t, `{"title":"Panodil"}`, rec.Body.String())
	})

	t.Run("without request id", func(t *testing.T) {
		rec := httptest.NewRecorder()

		response.JSON(rec, httptest.NewRequest(http.MethodGet, "/api/medicines", http.NoBody), http.StatusOK, []int{})

		assert.Empty(t, rec.Header().Get("X-Request-Id"))
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("nil data writes no body", func(t *testing.T) {
		rec := httptest.NewRecorder()

		response.JSON(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody), http.StatusOK, nil)

		assert.Zero(t, rec.Body.Len())
	})
}

func TestCreated(t *testing.T) {
	req := withRequestID(t, httptest.NewRequest(http.MethodPost, "/api/patients", http.NoBody))
	rec := httptest.NewRecorder()

	response.Created(rec, req, "/api/patients/7", map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/patients/7", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	req := withRequestID(t, httptest.NewRequest(http.MethodPost, "/api/signOut", http.NoBody))
	rec := httptest.NewRecorder()

	response.NoContent(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Zero(t, rec.Body.Len())
}

func TestProblemResponses(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter, r *http.Request)
		wantStatus int
		wantType   string
	}{
		{
			name: "bad request",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.BadRequest(w, r, "validation error", []models.FieldError{{Field: "ssn", Message: "is required"}})
			},
			wantStatus: http.StatusBadRequest,
			wantType:   models.ProblemTypeValidation,
		},
		{
			name:       "unauthorized",
			write:      func(w http.ResponseWriter, r *http.Request) { response.Unauthorized(w, r, "missing token") },
			wantStatus: http.StatusUnauthorized,
			wantType:   models.ProblemTypeUnauthorized,
		},
		{
			name:       "not found",
			write:      func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "patient not found") },
			wantStatus: http.StatusNotFound,
			wantType:   models.ProblemTypeNotFound,
		},
		{
			name:       "conflict",
			write:      func(w http.ResponseWriter, r *http.Request) { response.Conflict(w, r, "ssn taken") },
			wantStatus: http.StatusConflict,
			wantType:   models.ProblemTypeConflict,
		},
		{
			name:       "internal error",
			write:      func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "db down") },
			wantStatus: http.StatusInternalServerError,
			wantType:   models.ProblemTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withRequestID(t, httptest.NewRequest(http.MethodGet, "/api/patients/3", http.NoBody))
			rec := httptest.NewRecorder()

			tt.write(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			p := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, "/api/patients/3", p.Instance)
			assert.Equal(t, middleware.GetRequestID(req.Context()), p.TraceID)
		})
	}
}

func TestTooManyRequests(t *testing.T) {
	t.Run("with rate limit info", func(t *testing.T) {
		req := withRequestID(t, httptest.NewRequest(http.MethodPost, "/api/login", http.NoBody))
		rec := httptest.NewRecorder()

		response.TooManyRequestsWithInfo(rec, req, "too many failed logins", &response.RateLimitInfo{
			Limit:      10,
			Remaining:  0,
			ResetAt:    1767225600,
			RetryAfter: 60,
		})

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "1767225600", rec.Header().Get("X-RateLimit-Reset"))
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		assert.Equal(t, models.ProblemTypeTooManyRequests, decodeProblem(t, rec).Type)
	})

	t.Run("without info", func(t *testing.T) {
		rec := httptest.NewRecorder()

		response.TooManyRequests(rec, httptest.NewRequest(http.MethodPost, "/api/login", http.NoBody), "slow down")

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		assert.Empty(t, rec.Header().Get("Retry-After"))
	})
}

func TestRequestIDIsPreserved(t *testing.T) {
	in := httptest.NewRequest(http.MethodGet, "/api/users/current", http.NoBody)
	in.Header.Set("X-Request-Id", "client-request-123")
	req := withRequestID(t, in)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, "client-request-123", rec.Header().Get("X-Request-Id"))
}
