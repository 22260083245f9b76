package patienttodo_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/patientmedicine"
	"github.com/carejournal/carejournal/internal/patienttodo"
)

func newService(t *testing.T) (*patienttodo.Service, *patientmedicine.PatientMedicine) {
	t.Helper()
	ctx := context.Background()

	patients := patient.NewInMemoryRepository()
	require.NoError(t, patients.Create(ctx, &patient.Patient{Name: "Karen Hansen", SocialSecurityNumber: "1", DepartmentID: 1}))
	medicines := medicine.NewInMemoryRepository()
	require.NoError(t, medicines.Create(ctx, &medicine.Medicine{Title: "Panodil", ActiveSubstance: "Paracetamol"}))

	assignments := patientmedicine.NewService(patientmedicine.ServiceConfig{
		Repo:      patientmedicine.NewInMemoryRepository(),
		Patients:  patients,
		Medicines: medicines,
	})
	pm, err := assignments.Create(ctx, &models.PatientMedicineCreateRequest{PatientID: 1, MedicineID: 1, Amount: 1, Unit: "mg"})
	require.NoError(t, err)

	svc := patienttodo.NewService(patienttodo.ServiceConfig{
		Repo:        patienttodo.NewInMemoryRepository(),
		Assignments: assignments,
	})
	return svc, pm
}

func TestService_CreateAndFilter(t *testing.T) {
	svc, pm := newService(t)
	ctx := context.Background()
	morning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, &models.PatientTodoCreateRequest{
		PatientMedicineID: pm.ID, PatientID: pm.PatientID, PlannedTimeAtDay: morning,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &models.PatientTodoCreateRequest{
		PatientMedicineID: pm.ID, PatientID: pm.PatientID, PlannedTimeAtDay: evening, Done: true,
	})
	require.NoError(t, err)

	open, err := svc.List(ctx, []filter.Filter{
		{Property: "patientId", Value: strconv.FormatInt(pm.PatientID, 10)},
		{Property: "done", Value: "false"},
	})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.True(t, open[0].PlannedTimeAtDay.Equal(morning))

	atEvening, err := svc.List(ctx, []filter.Filter{{Property: "plannedTimeAtDay", Value: "2026-03-01T21:00:00+01:00"}})
	require.NoError(t, err)
	require.Len(t, atEvening, 1)
	assert.True(t, atEvening[0].Done)
}

func TestService_Create_Rejects(t *testing.T) {
	svc, pm := newService(t)
	ctx := context.Background()
	when := time.Now()

	_, err := svc.Create(ctx, &models.PatientTodoCreateRequest{PatientMedicineID: 404, PatientID: pm.PatientID, PlannedTimeAtDay: when})
	assert.ErrorIs(t, err, patientmedicine.ErrPatientMedicineNotFound)

	_, err = svc.Create(ctx, &models.PatientTodoCreateRequest{PatientMedicineID: pm.ID, PatientID: pm.PatientID + 1, PlannedTimeAtDay: when})
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "patientId", verr.Errors[0].Field)

	_, err = svc.Create(ctx, &models.PatientTodoCreateRequest{PatientMedicineID: pm.ID, PatientID: pm.PatientID})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "plannedTimeAtDay", verr.Errors[0].Field)
}

func TestService_Update(t *testing.T) {
	svc, pm := newService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, &models.PatientTodoCreateRequest{
		PatientMedicineID: pm.ID, PatientID: pm.PatientID, PlannedTimeAtDay: time.Now(),
	})
	require.NoError(t, err)

	done := true
	later := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	updated, err := svc.Update(ctx, todo.ID, &models.PatientTodoUpdateRequest{Done: &done, PlannedTimeAtDay: &later})
	require.NoError(t, err)
	assert.True(t, updated.Done)
	assert.True(t, updated.PlannedTimeAtDay.Equal(later))
	assert.Equal(t, pm.ID, updated.PatientMedicineID)

	_, err = svc.Update(ctx, 999, &models.PatientTodoUpdateRequest{Done: &done})
	assert.ErrorIs(t, err, patienttodo.ErrPatientTodoNotFound)
}

func TestService_Details(t *testing.T) {
	svc, pm := newService(t)
	ctx := context.Background()

	morning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	todo, err := svc.Create(ctx, &models.PatientTodoCreateRequest{
		PatientMedicineID: pm.ID, PatientID: pm.PatientID, PlannedTimeAtDay: morning,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &models.PatientTodoCreateRequest{
		PatientMedicineID: pm.ID, PatientID: pm.PatientID, PlannedTimeAtDay: morning, Done: true,
	})
	require.NoError(t, err)

	open, err := svc.ListDetails(ctx, []filter.Filter{{Property: "done", Value: "false"}})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, todo.ID, open[0].ID)
	require.NotNil(t, open[0].PatientMedicine)
	assert.Equal(t, "Karen Hansen", open[0].PatientMedicine.Patient.Name)
	assert.Equal(t, "Panodil", open[0].PatientMedicine.Medicine.Title)

	// Related records are not filterable through the todo.
	_, err = svc.ListDetails(ctx, []filter.Filter{{Property: "patientMedicine", Value: "1"}})
	assert.ErrorIs(t, err, filter.ErrUnknownProperty)

	detail, err := svc.GetDetail(ctx, todo.ID)
	require.NoError(t, err)
	data, err := json.Marshal(detail)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(todo.ID), body["id"])
	nested, ok := body["patientMedicine"].(map[string]any)
	require.True(t, ok, "patientMedicine is an object")
	assert.Equal(t, float64(pm.ID), nested["id"])
	assert.Equal(t, "Karen Hansen", nested["patient"].(map[string]any)["name"])
	assert.Equal(t, "Panodil", nested["medicine"].(map[string]any)["title"])

	_, err = svc.GetDetail(ctx, 999)
	assert.ErrorIs(t, err, patienttodo.ErrPatientTodoNotFound)
}
