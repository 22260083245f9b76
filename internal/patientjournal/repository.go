package patientjournal

import (
	"context"
	"errors"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/store"
)

// Repository defines the interface for journal persistence.
type Repository interface {
	List(ctx context.Context, filters []filter.Filter) ([]*PatientJournal, error)
	Get(ctx context.Context, id int64) (*PatientJournal, error)
	Create(ctx context.Context, j *PatientJournal) error
	Update(ctx context.Context, j *PatientJournal) error
	Delete(ctx context.Context, id int64) (*PatientJournal, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	rows *store.Table[PatientJournal]
}

// NewInMemoryRepository creates a new in-memory journal repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: store.NewTable(func(j *PatientJournal) *int64 { return &j.ID }),
	}
}

// List returns the journal entries matching filters.
func (r *InMemoryRepository) List(_ context.Context, filters []filter.Filter) ([]*PatientJournal, error) {
	rows, err := r.rows.List(filters)
	if err != nil {
		return nil, err
	}
	return store.Pointers(rows), nil
}

// Get retrieves a journal entry by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*PatientJournal, error) {
	j, ok := r.rows.Get(id)
	if !ok {
		return nil, ErrJournalNotFound
	}
	return &j, nil
}

// Create stores a new journal entry and sets its ID.
func (r *InMemoryRepository) Create(_ context.Context, j *PatientJournal) error {
	*j = r.rows.Insert(*j)
	return nil
}

// Update replaces a stored journal entry.
func (r *InMemoryRepository) Update(_ context.Context, j *PatientJournal) error {
	_, err := r.rows.Update(j.ID, func(row *PatientJournal, _ []PatientJournal) error {
		*row = *j
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrJournalNotFound
	}
	return err
}

// Delete removes a journal entry and returns it.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) (*PatientJournal, error) {
	j, ok := r.rows.Delete(id)
	if !ok {
		return nil, ErrJournalNotFound
	}
	return &j, nil
}

// CascadePatient deletes the journal entries of a patient.
func (r *InMemoryRepository) CascadePatient(_ context.Context, patientID int64) error {
	r.rows.DeleteWhere(func(j PatientJournal) bool { return j.PatientID == patientID })
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
