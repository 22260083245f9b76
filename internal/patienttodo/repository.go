package patienttodo

import (
	"context"
	"errors"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/store"
)

// Repository defines the interface for todo persistence.
type Repository interface {
	List(ctx context.Context, filters []filter.Filter) ([]*PatientTodo, error)
	Get(ctx context.Context, id int64) (*PatientTodo, error)
	Create(ctx context.Context, todo *PatientTodo) error
	Update(ctx context.Context, todo *PatientTodo) error
	Delete(ctx context.Context, id int64) (*PatientTodo, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	rows *store.Table[PatientTodo]
}

// NewInMemoryRepository creates a new in-memory todo repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: store.NewTable(func(t *PatientTodo) *int64 { return &t.ID }),
	}
}

// List returns the todos matching filters.
func (r *InMemoryRepository) List(_ context.Context, filters []filter.Filter) ([]*PatientTodo, error) {
	rows, err := r.rows.List(filters)
	if err != nil {
		return nil, err
	}
	return store.Pointers(rows), nil
}

// Get retrieves a todo by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*PatientTodo, error) {
	t, ok := r.rows.Get(id)
	if !ok {
		return nil, ErrPatientTodoNotFound
	}
	return &t, nil
}

// Create stores a new todo and sets its ID.
func (r *InMemoryRepository) Create(_ context.Context, todo *PatientTodo) error {
	*todo = r.rows.Insert(*todo)
	return nil
}

// Update replaces a stored todo.
func (r *InMemoryRepository) Update(_ context.Context, todo *PatientTodo) error {
	_, err := r.rows.Update(todo.ID, func(row *PatientTodo, _ []PatientTodo) error {
		*row = *todo
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrPatientTodoNotFound
	}
	return err
}

// Delete removes a todo and returns it.
func (r *InMemoryRepository) Delete(_ context.Context, id int64) (*PatientTodo, error) {
	t, ok := r.rows.Delete(id)
	if !ok {
		return nil, ErrPatientTodoNotFound
	}
	return &t, nil
}

// CascadePatientMedicine deletes the todos of an assignment.
func (r *InMemoryRepository) CascadePatientMedicine(_ context.Context, patientMedicineID int64) error {
	r.rows.DeleteWhere(func(t PatientTodo) bool { return t.PatientMedicineID == patientMedicineID })
	return nil
}

// CascadePatient deletes the todos of a patient.
func (r *InMemoryRepository) CascadePatient(_ context.Context, patientID int64) error {
	r.rows.DeleteWhere(func(t PatientTodo) bool { return t.PatientID == patientID })
	return nil
}

// DetachUser clears the responsible user on every todo assigned to userID.
func (r *InMemoryRepository) DetachUser(_ context.Context, userID int64) error {
	r.rows.UpdateWhere(
		func(t PatientTodo) bool { return t.UserID != nil && *t.UserID == userID },
		func(t *PatientTodo) { t.UserID = nil },
	)
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
