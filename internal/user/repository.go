package user

import (
	"context"
	"errors"
	"strings"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/store"
)

// Repository defines the interface for user persistence.
type Repository interface {
	// List returns the users matching filters, ordered by ID.
	List(ctx context.Context, filters []filter.Filter) ([]*User, error)

	// Get retrieves a user by ID.
	Get(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email, ignoring case.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int, error)

	// Create stores a new user and sets its ID.
	// Returns ErrEmailTaken if the email is already in use.
	Create(ctx context.Context, user *User) error

	// CreateFirst stores the user only if no user exists yet.
	// Returns ErrUsersExist otherwise.
	CreateFirst(ctx context.Context, user *User) error

	// Update updates an existing user.
	Update(ctx context.Context, user *User) error

	// Delete deletes a user and returns the deleted record.
	Delete(ctx context.Context, id int64) (*User, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL implementation.
type InMemoryRepository struct {
	users *store.Table[User]
	hooks store.DeleteHooks
}

// NewInMemoryRepository creates a new in-memory user repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users: store.NewTable(func(u *User) *int64 { return &u.ID }),
	}
}

// List returns the users matching filters.
func (r *InMemoryRepository) List(_ context.Context, filters []filter.Filter) ([]*User, error) {
	rows, err := r.users.List(filters)
	if err != nil {
		return nil, err
	}
	return store.Pointers(rows), nil
}

// Get retrieves a user by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*User, error) {
	u, ok := r.users.Get(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.users.Find(func(u User) bool {
		return strings.EqualFold(u.Email, email)
	})
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// Count returns the number of users.
func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	return r.users.Count(), nil
}

// Create stores a new user.
func (r *InMemoryRepository) Create(_ context.Context, user *User) error {
	stored, err := r.users.InsertIf(*user, func(rows []User) error {
		return checkEmailFree(rows, user.Email)
	})
	if err != nil {
		return err
	}
	user.ID = stored.ID
	return nil
}

// CreateFirst stores the user only if the repository is empty.
func (r *InMemoryRepository) CreateFirst(_ context.Context, user *User) error {
	stored, err := r.users.InsertIf(*user, func(rows []User) error {
		if len(rows) > 0 {
			return ErrUsersExist
		}
		return nil
	})
	if err != nil {
		return err
	}
	user.ID = stored.ID
	return nil
}

// Update updates an existing user.
func (r *InMemoryRepository) Update(_ context.Context, user *User) error {
	_, err := r.users.Update(user.ID, func(row *User, others []User) error {
		if err := checkEmailFree(others, user.Email); err != nil {
			return err
		}
		*row = *user
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// OnDelete registers a hook that runs before a user is deleted.
func (r *InMemoryRepository) OnDelete(hook store.DeleteHook) {
	r.hooks.Add(hook)
}

// Delete deletes a user.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) (*User, error) {
	if err := r.hooks.Run(ctx, id); err != nil {
		return nil, err
	}
	u, ok := r.users.Delete(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// DetachDepartment clears the department of every user in departmentID.
func (r *InMemoryRepository) DetachDepartment(_ context.Context, departmentID int64) error {
	r.users.UpdateWhere(
		func(u User) bool { return u.DepartmentID != nil && *u.DepartmentID == departmentID },
		func(u *User) { u.DepartmentID = nil },
	)
	return nil
}

func checkEmailFree(rows []User, email string) error {
	for _, row := range rows {
		if strings.EqualFold(row.Email, email) {
			return ErrEmailTaken
		}
	}
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
