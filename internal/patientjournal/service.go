package patientjournal

import (
	"context"
	"time"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/patient"
)

// PatientGetter looks up patients.
type PatientGetter interface {
	Get(ctx context.Context, id int64) (*patient.Patient, error)
}

// ServiceConfig holds configuration for the journal service.
type ServiceConfig struct {
	Repo     Repository
	Patients PatientGetter
}

// Service provides journal operations.
type Service struct {
	repo     Repository
	patients PatientGetter
	now      func() time.Time
}

// NewService creates a new journal service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{repo: cfg.Repo, patients: cfg.Patients, now: time.Now}
}

// List returns the journal entries matching filters.
func (s *Service) List(ctx context.Context, filters []filter.Filter) ([]*PatientJournal, error) {
	return s.repo.List(ctx, filters)
}

// Get retrieves a journal entry by ID.
func (s *Service) Get(ctx context.Context, id int64) (*PatientJournal, error) {
	return s.repo.Get(ctx, id)
}

// Create writes a journal entry for an existing patient.
func (s *Service) Create(ctx context.Context, input *models.PatientJournalCreateRequest) (*PatientJournal, error) {
	var v models.Validator
	v.Positive("patientId", input.PatientID)
	v.Required("description", input.Description)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if _, err := s.patients.Get(ctx, input.PatientID); err != nil {
		return nil, err
	}

	now := s.now()
	j := &PatientJournal{
		PatientID:   input.PatientID,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Update changes the description or the patient of a journal entry.
func (s *Service) Update(ctx context.Context, id int64, input *models.PatientJournalUpdateRequest) (*PatientJournal, error) {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var v models.Validator
	if input.PatientID != nil {
		v.Positive("patientId", *input.PatientID)
	}
	if input.Description != nil {
		v.Required("description", *input.Description)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if input.PatientID != nil && *input.PatientID != j.PatientID {
		if _, err := s.patients.Get(ctx, *input.PatientID); err != nil {
			return nil, err
		}
		j.PatientID = *input.PatientID
	}
	if input.Description != nil {
		j.Description = *input.Description
	}
	j.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Delete removes a journal entry and returns it.
func (s *Service) Delete(ctx context.Context, id int64) (*PatientJournal, error) {
	return s.repo.Delete(ctx, id)
}
