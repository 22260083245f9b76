package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/api/response"
	"github.com/carejournal/carejournal/internal/department"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/patientjournal"
	"github.com/carejournal/carejournal/internal/patientmedicine"
	"github.com/carejournal/carejournal/internal/patienttodo"
)

// DepartmentHandler handles /api/departments. Departments are listed and
// fetched with their users and patients.
type DepartmentHandler = DetailHandler[department.Department, models.DepartmentRequest, models.DepartmentRequest, department.Detail]

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(svc *department.Service, errs *Errors) *DepartmentHandler {
	return NewDetailHandler[department.Department, models.DepartmentRequest, models.DepartmentRequest, department.Detail](
		"/api/departments", svc, func(d *department.Department) int64 { return d.ID }, errs)
}

// MedicineHandler handles /api/medicines.
type MedicineHandler = ResourceHandler[medicine.Medicine, models.MedicineCreateRequest, models.MedicineUpdateRequest]

// NewMedicineHandler creates a new MedicineHandler.
func NewMedicineHandler(svc *medicine.Service, errs *Errors) *MedicineHandler {
	return NewResourceHandler[medicine.Medicine, models.MedicineCreateRequest, models.MedicineUpdateRequest](
		"/api/medicines", svc, func(m *medicine.Medicine) int64 { return m.ID }, errs)
}

// PatientHandler handles /api/patients.
type PatientHandler struct {
	*ResourceHandler[patient.Patient, models.PatientCreateRequest, models.PatientUpdateRequest]
	patients *patient.Service
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(svc *patient.Service, errs *Errors) *PatientHandler {
	return &PatientHandler{
		ResourceHandler: NewResourceHandler[patient.Patient, models.PatientCreateRequest, models.PatientUpdateRequest](
			"/api/patients", svc, func(p *patient.Patient) int64 { return p.ID }, errs),
		patients: svc,
	}
}

// GetBySSN handles GET /api/patients/ssn/{ssn}.
func (h *PatientHandler) GetBySSN(w http.ResponseWriter, r *http.Request) {
	ssn := strings.TrimSpace(chi.URLParam(r, "ssn"))
	if ssn == "" {
		response.BadRequest(w, r, "ssn is required", nil)
		return
	}
	p, err := h.patients.GetBySSN(r.Context(), ssn)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, p)
}

// PatientMedicineHandler handles /api/patient-medicines. Assignments are
// listed and fetched with their patient and medicine.
type PatientMedicineHandler = DetailHandler[patientmedicine.PatientMedicine, models.PatientMedicineCreateRequest, models.PatientMedicineUpdateRequest, patientmedicine.Detail]

// NewPatientMedicineHandler creates a new PatientMedicineHandler.
func NewPatientMedicineHandler(svc *patientmedicine.Service, errs *Errors) *PatientMedicineHandler {
	return NewDetailHandler[patientmedicine.PatientMedicine, models.PatientMedicineCreateRequest, models.PatientMedicineUpdateRequest, patientmedicine.Detail](
		"/api/patient-medicines", svc, func(pm *patientmedicine.PatientMedicine) int64 { return pm.ID }, errs)
}

// PatientTodoHandler handles /api/patient-todos. Todos are listed and
// fetched with their assignment.
type PatientTodoHandler = DetailHandler[patienttodo.PatientTodo, models.PatientTodoCreateRequest, models.PatientTodoUpdateRequest, patienttodo.Detail]

// NewPatientTodoHandler creates a new PatientTodoHandler.
func NewPatientTodoHandler(svc *patienttodo.Service, errs *Errors) *PatientTodoHandler {
	return NewDetailHandler[patienttodo.PatientTodo, models.PatientTodoCreateRequest, models.PatientTodoUpdateRequest, patienttodo.Detail](
		"/api/patient-todos", svc, func(t *patienttodo.PatientTodo) int64 { return t.ID }, errs)
}

// PatientJournalHandler handles /api/patient-journals.
type PatientJournalHandler = ResourceHandler[patientjournal.PatientJournal, models.PatientJournalCreateRequest, models.PatientJournalUpdateRequest]

// NewPatientJournalHandler creates a new PatientJournalHandler.
func NewPatientJournalHandler(svc *patientjournal.Service, errs *Errors) *PatientJournalHandler {
	return NewResourceHandler[patientjournal.PatientJournal, models.PatientJournalCreateRequest, models.PatientJournalUpdateRequest](
		"/api/patient-journals", svc, func(j *patientjournal.PatientJournal) int64 { return j.ID }, errs)
}
