package medicine

import (
	"context"
	"errors"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/store"
)

// Repository defines the interface for medicine persistence.
type Repository interface {
	List(ctx context.Context, filters []filter.Filter) ([]*Medicine, error)
	Get(ctx context.Context, id int64) (*Medicine, error)
	Create(ctx context.Context, m *Medicine) error
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id int64) (*Medicine, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	rows  *store.Table[Medicine]
	hooks store.DeleteHooks
}

// NewInMemoryRepository creates a new in-memory medicine repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: store.NewTable(func(m *Medicine) *int64 { return &m.ID }),
	}
}

// List returns the medicines matching filters.
func (r *InMemoryRepository) List(_ context.Context, filters []filter.Filter) ([]*Medicine, error) {
	rows, err := r.rows.List(filters)
	if err != nil {
		return nil, err
	}
	return store.Pointers(rows), nil
}

// Get retrieves a medicine by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Medicine, error) {
	m, ok := r.rows.Get(id)
	if !ok {
		return nil, ErrMedicineNotFound
	}
	return &m, nil
}

// Create stores a new medicine and sets its ID.
func (r *InMemoryRepository) Create(_ context.Context, m *Medicine) error {
	*m = r.rows.Insert(*m)
	return nil
}

// Update replaces a stored medicine.
func (r *InMemoryRepository) Update(_ context.Context, m *Medicine) error {
	_, err := r.rows.Update(m.ID, func(row *Medicine, _ []Medicine) error {
		*row = *m
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrMedicineNotFound
	}
	return err
}

// OnDelete registers a hook that runs before a medicine is deleted.
func (r *InMemoryRepository) OnDelete(hook store.DeleteHook) {
	r.hooks.Add(hook)
}

// Delete removes a medicine and returns it.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) (*Medicine, error) {
	if err := r.hooks.Run(ctx, id); err != nil {
		return nil, err
	}
	m, ok := r.rows.Delete(id)
	if !ok {
		return nil, ErrMedicineNotFound
	}
	return &m, nil
}

var _ Repository = (*InMemoryRepository)(nil)
