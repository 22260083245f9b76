package patient

import (
	"context"
	"time"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/filter"
)

// Validation constants.
const (
	MaxNameLength = 200
	MaxSSNLength  = 64
)

// DepartmentChecker reports whether a department exists.
type DepartmentChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ServiceConfig holds configuration for the patient service.
type ServiceConfig struct {
	Repo Repository

	// Departments is consulted before a patient is placed in a department.
	// When nil the storage layer is trusted to enforce the reference.
	Departments DepartmentChecker
}

// Service provides patient operations.
type Service struct {
	repo        Repository
	departments DepartmentChecker
	now         func() time.Time
}

// NewService creates a new patient service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{repo: cfg.Repo, departments: cfg.Departments, now: time.Now}
}

// List returns the patients matching filters.
func (s *Service) List(ctx context.Context, filters []filter.Filter) ([]*Patient, error) {
	return s.repo.List(ctx, filters)
}

// Get retrieves a patient by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.Get(ctx, id)
}

// GetBySSN retrieves a patient by social security number.
func (s *Service) GetBySSN(ctx context.Context, ssn string) (*Patient, error) {
	return s.repo.GetBySSN(ctx, ssn)
}

// Create registers a new patient.
func (s *Service) Create(ctx context.Context, input *models.PatientCreateRequest) (*Patient, error) {
	var v models.Validator
	if v.Required("name", input.Name) {
		v.MaxLen("name", input.Name, MaxNameLength)
	}
	if v.Required("socialSecurityNumber", input.SocialSecurityNumber) {
		v.MaxLen("socialSecurityNumber", input.SocialSecurityNumber, MaxSSNLength)
	}
	v.Positive("departmentId", input.DepartmentID)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, input.DepartmentID); err != nil {
		return nil, err
	}

	now := s.now()
	p := &Patient{
		Name:                 input.Name,
		SocialSecurityNumber: input.SocialSecurityNumber,
		DepartmentID:         input.DepartmentID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial update to a patient.
func (s *Service) Update(ctx context.Context, id int64, input *models.PatientUpdateRequest) (*Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var v models.Validator
	if input.Name != nil && v.Required("name", *input.Name) {
		v.MaxLen("name", *input.Name, MaxNameLength)
	}
	if input.SocialSecurityNumber != nil && v.Required("socialSecurityNumber", *input.SocialSecurityNumber) {
		v.MaxLen("socialSecurityNumber", *input.SocialSecurityNumber, MaxSSNLength)
	}
	if input.DepartmentID != nil {
		v.Positive("departmentId", *input.DepartmentID)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.SocialSecurityNumber != nil {
		p.SocialSecurityNumber = *input.SocialSecurityNumber
	}
	if input.DepartmentID != nil && *input.DepartmentID != p.DepartmentID {
		if err := s.checkDepartment(ctx, *input.DepartmentID); err != nil {
			return nil, err
		}
		p.DepartmentID = *input.DepartmentID
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a patient and returns it.
func (s *Service) Delete(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service) checkDepartment(ctx context.Context, id int64) error {
	if s.departments == nil {
		return nil
	}
	ok, err := s.departments.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDepartmentNotFound
	}
	return nil
}
