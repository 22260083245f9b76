package patientjournal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/patientjournal"
)

func TestService_JournalLifecycle(t *testing.T) {
	ctx := context.Background()
	patients := patient.NewInMemoryRepository()
	first := &patient.Patient{Name: "A", SocialSecurityNumber: "1", DepartmentID: 1}
	second := &patient.Patient{Name: "B", SocialSecurityNumber: "2", DepartmentID: 1}
	require.NoError(t, patients.Create(ctx, first))
	require.NoError(t, patients.Create(ctx, second))

	svc := patientjournal.NewService(patientjournal.ServiceConfig{
		Repo:     patientjournal.NewInMemoryRepository(),
		Patients: patients,
	})

	j, err := svc.Create(ctx, &models.PatientJournalCreateRequest{PatientID: first.ID, Description: "Slept well"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &models.PatientJournalCreateRequest{PatientID: 77, Description: "Nobody"})
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)

	text := "Moved to B by mistake"
	moved, err := svc.Update(ctx, j.ID, &models.PatientJournalUpdateRequest{PatientID: &second.ID, Description: &text})
	require.NoError(t, err)
	assert.Equal(t, second.ID, moved.PatientID)
	assert.Equal(t, text, moved.Description)

	forSecond, err := svc.List(ctx, []filter.Filter{{Property: "patientId", Value: "2"}})
	require.NoError(t, err)
	assert.Len(t, forSecond, 1)

	_, err = svc.Delete(ctx, j.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, j.ID)
	assert.ErrorIs(t, err, patientjournal.ErrJournalNotFound)
}
