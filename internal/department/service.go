package department

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/user"
)

// MaxTitleLength is the longest accepted department title.
const MaxTitleLength = 64

// UserLister lists users by filter.
type UserLister interface {
	List(ctx context.Context, filters []filter.Filter) ([]*user.User, error)
}

// PatientLister lists patients by filter.
type PatientLister interface {
	List(ctx context.Context, filters []filter.Filter) ([]*patient.Patient, error)
}

// Detail is a department together with its members.
type Detail struct {
	Department
	Users    []*user.User       `json:"users"`
	Patients []*patient.Patient `json:"patients"`
}

// ServiceConfig holds configuration for the department service.
type ServiceConfig struct {
	Repo     Repository
	Users    UserLister
	Patients PatientLister
}

// Service provides department operations.
type Service struct {
	repo     Repository
	users    UserLister
	patients PatientLister
	now      func() time.Time
}

// NewService creates a new department service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{repo: cfg.Repo, users: cfg.Users, patients: cfg.Patients, now: time.Now}
}

// List returns the departments matching filters.
func (s *Service) List(ctx context.Context, filters []filter.Filter) ([]*Department, error) {
	return s.repo.List(ctx, filters)
}

// Get retrieves a department by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Department, error) {
	return s.repo.Get(ctx, id)
}

// Exists reports whether a department exists.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrDepartmentNotFound):
		return false, nil
	default:
		return false, err
	}
}

// ListDetails returns the departments matching filters, each with its users
// and patients.
func (s *Service) ListDetails(ctx context.Context, filters []filter.Filter) ([]*Detail, error) {
	departments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	details := make([]*Detail, 0, len(departments))
	for _, d := range departments {
		detail, err := s.detail(ctx, d)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// GetDetail retrieves a department with its users and patients.
func (s *Service) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, d)
}

func (s *Service) detail(ctx context.Context, d *Department) (*Detail, error) {
	members := memberFilter(d.ID)
	users, err := s.users.List(ctx, members)
	if err != nil {
		return nil, err
	}
	patients, err := s.patients.List(ctx, members)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*user.User{}
	}
	if patients == nil {
		patients = []*patient.Patient{}
	}
	return &Detail{Department: *d, Users: users, Patients: patients}, nil
}

// Create creates a department.
func (s *Service) Create(ctx context.Context, input *models.DepartmentRequest) (*Department, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	now := s.now()
	d := &Department{Title: input.Title, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update renames a department.
func (s *Service) Update(ctx context.Context, id int64, input *models.DepartmentRequest) (*Department, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validate(input); err != nil {
		return nil, err
	}
	d.Title = input.Title
	d.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a department. A department that still has patients is
// rejected with ErrDepartmentInUse.
func (s *Service) Delete(ctx context.Context, id int64) (*Department, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	patients, err := s.patients.List(ctx, memberFilter(id))
	if err != nil {
		return nil, err
	}
	if len(patients) > 0 {
		return nil, ErrDepartmentInUse
	}
	return s.repo.Delete(ctx, id)
}

func memberFilter(id int64) []filter.Filter {
	return []filter.Filter{{Property: "departmentId", Value: strconv.FormatInt(id, 10)}}
}

func validate(input *models.DepartmentRequest) error {
	var v models.Validator
	if v.Required("title", input.Title) {
		v.MaxLen("title", input.Title, MaxTitleLength)
	}
	return v.Err()
}
