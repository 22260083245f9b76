package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/filter"
)

// Validation constants.
const (
	MaxNameLength     = 200
	MaxEmailLength    = 200
	MinPasswordLength = 8
	MaxPasswordLength = 200
)

// PasswordHasher turns a plaintext password into a storable hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// ServiceConfig holds configuration for the user service.
type ServiceConfig struct {
	Repo   Repository
	Hasher PasswordHasher
}

// Service provides user account operations.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	now    func() time.Time
}

// NewService creates a new user service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repo,
		hasher: cfg.Hasher,
		now:    time.Now,
	}
}

// List returns the users matching filters.
func (s *Service) List(ctx context.Context, filters []filter.Filter) ([]*User, error) {
	return s.repo.List(ctx, filters)
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// GetByEmail retrieves a user by email, ignoring case.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Create creates a new user. Returns ErrEmailTaken if the email is in use.
func (s *Service) Create(ctx context.Context, input *models.UserCreateRequest) (*User, error) {
	u, err := s.newUser(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateFirst creates the bootstrap administrator. It succeeds only while no
// user exists; the requested role is ignored.
func (s *Service) CreateFirst(ctx context.Context, input *models.UserCreateRequest) (*User, error) {
	u, err := s.newUser(input)
	if err != nil {
		return nil, err
	}
	u.Role = RoleAdmin
	if err := s.repo.CreateFirst(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) newUser(input *models.UserCreateRequest) (*User, error) {
	var v models.Validator
	if v.Required("name", input.Name) {
		v.MaxLen("name", input.Name, MaxNameLength)
	}
	if v.Required("email", input.Email) {
		v.MaxLen("email", input.Email, MaxEmailLength)
		v.Email("email", input.Email)
	}
	validatePassword(&v, input.Password)
	v.MaxLen("jobTitle", input.JobTitle, MaxNameLength)

	role := RoleUser
	if input.Role != "" {
		parsed, err := ParseRole(input.Role)
		if err != nil {
			v.Add("role", "INVALID_ROLE", "must be one of admin, user")
		}
		role = parsed
	}
	if input.DepartmentID != nil {
		v.Positive("departmentId", *input.DepartmentID)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	return &User{
		Name:         input.Name,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		JobTitle:     input.JobTitle,
		Role:         role,
		DepartmentID: input.DepartmentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Update applies a partial update. An absent password keeps the stored hash.
func (s *Service) Update(ctx context.Context, id int64, input *models.UserUpdateRequest) (*User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var v models.Validator
	if input.Name != nil && v.Required("name", *input.Name) {
		v.MaxLen("name", *input.Name, MaxNameLength)
	}
	if input.Email != nil && v.Required("email", *input.Email) {
		v.MaxLen("email", *input.Email, MaxEmailLength)
		v.Email("email", *input.Email)
	}
	if input.Password != nil {
		validatePassword(&v, *input.Password)
	}
	if input.JobTitle != nil {
		v.MaxLen("jobTitle", *input.JobTitle, MaxNameLength)
	}
	var role Role
	if input.Role != nil {
		role, err = ParseRole(*input.Role)
		if err != nil {
			v.Add("role", "INVALID_ROLE", "must be one of admin, user")
		}
	}
	if input.DepartmentID != nil {
		v.Positive("departmentId", *input.DepartmentID)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	// Apply updates
	if input.Name != nil {
		u.Name = *input.Name
	}
	if input.Email != nil {
		u.Email = strings.TrimSpace(*input.Email)
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if input.JobTitle != nil {
		u.JobTitle = *input.JobTitle
	}
	if input.Role != nil {
		u.Role = role
	}
	if input.DepartmentID != nil {
		u.DepartmentID = input.DepartmentID
	}
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete deletes a user and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id int64) (*User, error) {
	return s.repo.Delete(ctx, id)
}

func validatePassword(v *models.Validator, password string) {
	if !v.Required("password", password) {
		return
	}
	v.MinLen("password", password, MinPasswordLength)
	v.MaxLen("password", password, MaxPasswordLength)
}
