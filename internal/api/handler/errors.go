package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/api/middleware"
	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/api/response"
	"github.com/carejournal/carejournal/internal/department"
	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/metrics"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/patientjournal"
	"github.com/carejournal/carejournal/internal/patientmedicine"
	"github.com/carejournal/carejournal/internal/patienttodo"
	"github.com/carejournal/carejournal/internal/user"
)

var notFoundErrors = []error{
	user.ErrUserNotFound,
	department.ErrDepartmentNotFound,
	medicine.ErrMedicineNotFound,
	patient.ErrPatientNotFound,
	patientmedicine.ErrPatientMedicineNotFound,
	patienttodo.ErrPatientTodoNotFound,
	patientjournal.ErrJournalNotFound,
}

var conflictErrors = []error{
	user.ErrEmailTaken,
	user.ErrUsersExist,
	patient.ErrSSNTaken,
	department.ErrDepartmentInUse,
	medicine.ErrMedicineInUse,
}

// Errors writes service errors as problem responses.
type Errors struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewErrors creates an error writer. m may be nil.
func NewErrors(logger zerolog.Logger, m *metrics.Metrics) *Errors {
	return &Errors{logger: logger, metrics: m}
}

// Write maps err to its problem response. Errors outside the known taxonomy
// are logged and answered with a generic 500.
func (e *Errors) Write(w http.ResponseWriter, r *http.Request, err error) {
	traceID := middleware.GetRequestID(r.Context())

	if filter.IsMalformed(err) {
		e.metrics.FilterRejected()
		response.Error(w, r, models.NewBadFilter(traceID, err.Error()))
		return
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		response.BadRequest(w, r, "validation error", verr.Errors)
		return
	}

	if errors.Is(err, patient.ErrDepartmentNotFound) {
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "departmentId", Message: "does not exist", Code: "NOT_FOUND"},
		})
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			response.NotFound(w, r, target.Error())
			return
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			response.Conflict(w, r, target.Error())
			return
		}
	}

	e.logger.Error().Err(err).
		Str("request_id", traceID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	response.InternalError(w, r, "an unexpected error occurred")
}

// filters parses the request query string for the filter engine.
func (e *Errors) filters(w http.ResponseWriter, r *http.Request) ([]filter.Filter, bool) {
	filters, err := filter.Parse(r.URL.RawQuery)
	if err != nil {
		e.Write(w, r, err)
		return nil, false
	}
	return filters, true
}
