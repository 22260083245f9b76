package department

import (
	"context"
	"errors"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/store"
)

// Repository defines the interface for department persistence.
type Repository interface {
	List(ctx context.Context, filters []filter.Filter) ([]*Department, error)
	Get(ctx context.Context, id int64) (*Department, error)
	Create(ctx context.Context, d *Department) error
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id int64) (*Department, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	rows  *store.Table[Department]
	hooks store.DeleteHooks
}

// NewInMemoryRepository creates a new in-memory department repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: store.NewTable(func(d *Department) *int64 { return &d.ID }),
	}
}

// List returns the departments matching filters.
func (r *InMemoryRepository) List(_ context.Context, filters []filter.Filter) ([]*Department, error) {
	rows, err := r.rows.List(filters)
	if err != nil {
		return nil, err
	}
	return store.Pointers(rows), nil
}

// Get retrieves a department by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Department, error) {
	d, ok := r.rows.Get(id)
	if !ok {
		return nil, ErrDepartmentNotFound
	}
	return &d, nil
}

// Create stores a new department and sets its ID.
func (r *InMemoryRepository) Create(_ context.Context, d *Department) error {
	*d = r.rows.Insert(*d)
	return nil
}

// Update replaces a stored department.
func (r *InMemoryRepository) Update(_ context.Context, d *Department) error {
	_, err := r.rows.Update(d.ID, func(row *Department, _ []Department) error {
		*row = *d
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrDepartmentNotFound
	}
	return err
}

// OnDelete registers a hook that runs before a department is deleted.
func (r *InMemoryRepository) OnDelete(hook store.DeleteHook) {
	r.hooks.Add(hook)
}

// Delete removes a department and returns it.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) (*Department, error) {
	if err := r.hooks.Run(ctx, id); err != nil {
		return nil, err
	}
	d, ok := r.rows.Delete(id)
	if !ok {
		return nil, ErrDepartmentNotFound
	}
	return &d, nil
}

var _ Repository = (*InMemoryRepository)(nil)
