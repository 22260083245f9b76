package patient

import (
	"context"
	"errors"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/store"
)

// Repository defines the interface for patient persistence.
type Repository interface {
	List(ctx context.Context, filters []filter.Filter) ([]*Patient, error)
	Get(ctx context.Context, id int64) (*Patient, error)

	// GetBySSN retrieves a patient by social security number.
	GetBySSN(ctx context.Context, ssn string) (*Patient, error)

	// Create stores a new patient and sets its ID.
	// Returns ErrSSNTaken if the social security number is registered.
	Create(ctx context.Context, p *Patient) error

	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) (*Patient, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	rows  *store.Table[Patient]
	hooks store.DeleteHooks
}

// NewInMemoryRepository creates a new in-memory patient repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: store.NewTable(func(p *Patient) *int64 { return &p.ID }),
	}
}

// List returns the patients matching filters.
func (r *InMemoryRepository) List(_ context.Context, filters []filter.Filter) ([]*Patient, error) {
	rows, err := r.rows.List(filters)
	if err != nil {
		return nil, err
	}
	return store.Pointers(rows), nil
}

// Get retrieves a patient by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*Patient, error) {
	p, ok := r.rows.Get(id)
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

// GetBySSN retrieves a patient by social security number.
func (r *InMemoryRepository) GetBySSN(_ context.Context, ssn string) (*Patient, error) {
	p, ok := r.rows.Find(func(p Patient) bool { return p.SocialSecurityNumber == ssn })
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

// Create stores a new patient.
func (r *InMemoryRepository) Create(_ context.Context, p *Patient) error {
	stored, err := r.rows.InsertIf(*p, func(rows []Patient) error {
		return checkSSNFree(rows, p.SocialSecurityNumber)
	})
	if err != nil {
		return err
	}
	p.ID = stored.ID
	return nil
}

// Update replaces a stored patient.
func (r *InMemoryRepository) Update(_ context.Context, p *Patient) error {
	_, err := r.rows.Update(p.ID, func(row *Patient, others []Patient) error {
		if err := checkSSNFree(others, p.SocialSecurityNumber); err != nil {
			return err
		}
		*row = *p
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrPatientNotFound
	}
	return err
}

// OnDelete registers a hook that runs before a patient is deleted.
func (r *InMemoryRepository) OnDelete(hook store.DeleteHook) {
	r.hooks.Add(hook)
}

// Delete removes a patient and returns it.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) (*Patient, error) {
	if err := r.hooks.Run(ctx, id); err != nil {
		return nil, err
	}
	p, ok := r.rows.Delete(id)
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func checkSSNFree(rows []Patient, ssn string) error {
	for _, row := range rows {
		if row.SocialSecurityNumber == ssn {
			return ErrSSNTaken
		}
	}
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
