package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carejournal/carejournal/internal/api/handler"
	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/department"
	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/metrics"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/user"
)

func TestErrors_Write(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "malformed filter",
			err:        &filter.Error{Property: "colour", Value: "red", Err: filter.ErrUnknownProperty},
			wantStatus: http.StatusBadRequest,
			wantType:   models.ProblemTypeBadFilter,
		},
		{
			name:       "validation",
			err:        &models.ValidationError{Errors: []models.FieldError{{Field: "email", Message: "is required"}}},
			wantStatus: http.StatusBadRequest,
			wantType:   models.ProblemTypeValidation,
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("load: %w", department.ErrDepartmentNotFound),
			wantStatus: http.StatusNotFound,
			wantType:   models.ProblemTypeNotFound,
		},
		{
			name:       "missing department on patient",
			err:        patient.ErrDepartmentNotFound,
			wantStatus: http.StatusBadRequest,
			wantType:   models.ProblemTypeValidation,
		},
		{
			name:       "conflict",
			err:        user.ErrEmailTaken,
			wantStatus: http.StatusConflict,
			wantType:   models.ProblemTypeConflict,
		},
		{
			name:       "unexpected",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantType:   models.ProblemTypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := handler.NewErrors(zerolog.Nop(), nil)
			req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
			rec := httptest.NewRecorder()

			errs.Write(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var problem models.Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.wantStatus, problem.Status)
		})
	}
}

func TestErrors_WriteHidesUnexpectedDetail(t *testing.T) {
	var logs bytes.Buffer
	errs := handler.NewErrors(zerolog.New(&logs), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/medicines", nil)
	rec := httptest.NewRecorder()

	errs.Write(rec, req, errors.New("pq: relation medicines does not exist"))

	assert.NotContains(t, rec.Body.String(), "relation medicines")
	assert.Contains(t, logs.String(), "relation medicines")
}

func TestErrors_WriteCountsFilterRejections(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	errs := handler.NewErrors(zerolog.Nop(), m)
	req := httptest.NewRequest(http.MethodGet, "/api/users?role=owner", nil)

	errs.Write(httptest.NewRecorder(), req, &filter.Error{Property: "role", Value: "owner", Err: filter.ErrInvalidValue})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilterRejections))
}
