package patienttodo

import (
	"context"
	"time"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/patientmedicine"
)

// AssignmentGetter looks up patient medicine assignments, plain or with
// their patient and medicine.
type AssignmentGetter interface {
	Get(ctx context.Context, id int64) (*patientmedicine.PatientMedicine, error)
	GetDetail(ctx context.Context, id int64) (*patientmedicine.Detail, error)
}

// ServiceConfig holds configuration for the todo service.
type ServiceConfig struct {
	Repo        Repository
	Assignments AssignmentGetter
}

// Service provides todo operations.
type Service struct {
	repo        Repository
	assignments AssignmentGetter
	now         func() time.Time
}

// NewService creates a new todo service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{repo: cfg.Repo, assignments: cfg.Assignments, now: time.Now}
}

// List returns the todos matching filters.
func (s *Service) List(ctx context.Context, filters []filter.Filter) ([]*PatientTodo, error) {
	return s.repo.List(ctx, filters)
}

// Get retrieves a todo by ID.
func (s *Service) Get(ctx context.Context, id int64) (*PatientTodo, error) {
	return s.repo.Get(ctx, id)
}

// Create plans an administration. The referenced assignment must exist and
// belong to the given patient.
func (s *Service) Create(ctx context.Context, input *models.PatientTodoCreateRequest) (*PatientTodo, error) {
	var v models.Validator
	v.Positive("patientMedicineId", input.PatientMedicineID)
	v.Positive("patientId", input.PatientID)
	v.Check(!input.PlannedTimeAtDay.IsZero(), "plannedTimeAtDay", "REQUIRED", "is required")
	if input.UserID != nil {
		v.Positive("userId", *input.UserID)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	pm, err := s.assignments.Get(ctx, input.PatientMedicineID)
	if err != nil {
		return nil, err
	}
	if pm.PatientID != input.PatientID {
		v.Add("patientId", "MISMATCH", "does not match the patient of the patient medicine")
		return nil, v.Err()
	}

	now := s.now()
	todo := &PatientTodo{
		PatientMedicineID: input.PatientMedicineID,
		PatientID:         input.PatientID,
		UserID:            input.UserID,
		Done:              input.Done,
		PlannedTimeAtDay:  input.PlannedTimeAtDay,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Update changes the done flag and planned time of a todo.
func (s *Service) Update(ctx context.Context, id int64, input *models.PatientTodoUpdateRequest) (*PatientTodo, error) {
	todo, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.PlannedTimeAtDay != nil && input.PlannedTimeAtDay.IsZero() {
		var v models.Validator
		v.Add("plannedTimeAtDay", "REQUIRED", "is required")
		return nil, v.Err()
	}

	if input.Done != nil {
		todo.Done = *input.Done
	}
	if input.PlannedTimeAtDay != nil {
		todo.PlannedTimeAtDay = *input.PlannedTimeAtDay
	}
	todo.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

// Delete removes a todo and returns it.
func (s *Service) Delete(ctx context.Context, id int64) (*PatientTodo, error) {
	return s.repo.Delete(ctx, id)
}
