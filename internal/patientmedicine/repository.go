package patientmedicine

import (
	"context"
	"errors"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/store"
)

// Repository defines the interface for patient medicine persistence.
type Repository interface {
	List(ctx context.Context, filters []filter.Filter) ([]*PatientMedicine, error)
	Get(ctx context.Context, id int64) (*PatientMedicine, error)
	Create(ctx context.Context, pm *PatientMedicine) error
	Update(ctx context.Context, pm *PatientMedicine) error
	Delete(ctx context.Context, id int64) (*PatientMedicine, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	rows  *store.Table[PatientMedicine]
	hooks store.DeleteHooks
}

// NewInMemoryRepository creates a new in-memory patient medicine repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: store.NewTable(func(pm *PatientMedicine) *int64 { return &pm.ID }),
	}
}

// List returns the assignments matching filters.
func (r *InMemoryRepository) List(_ context.Context, filters []filter.Filter) ([]*PatientMedicine, error) {
	rows, err := r.rows.List(filters)
	if err != nil {
		return nil, err
	}
	return store.Pointers(rows), nil
}

// Get retrieves an assignment by ID.
func (r *InMemoryRepository) Get(_ context.Context, id int64) (*PatientMedicine, error) {
	pm, ok := r.rows.Get(id)
	if !ok {
		return nil, ErrPatientMedicineNotFound
	}
	return &pm, nil
}

// Create stores a new assignment and sets its ID.
func (r *InMemoryRepository) Create(_ context.Context, pm *PatientMedicine) error {
	*pm = r.rows.Insert(*pm)
	return nil
}

// Update replaces a stored assignment.
func (r *InMemoryRepository) Update(_ context.Context, pm *PatientMedicine) error {
	_, err := r.rows.Update(pm.ID, func(row *PatientMedicine, _ []PatientMedicine) error {
		*row = *pm
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrPatientMedicineNotFound
	}
	return err
}

// OnDelete registers a hook that runs before an assignment is deleted.
func (r *InMemoryRepository) OnDelete(hook store.DeleteHook) {
	r.hooks.Add(hook)
}

// Delete removes an assignment and returns it.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) (*PatientMedicine, error) {
	if err := r.hooks.Run(ctx, id); err != nil {
		return nil, err
	}
	pm, ok := r.rows.Delete(id)
	if !ok {
		return nil, ErrPatientMedicineNotFound
	}
	return &pm, nil
}

// RestrictMedicine refuses to let a medicine go while assignments still
// reference it.
func (r *InMemoryRepository) RestrictMedicine(_ context.Context, medicineID int64) error {
	if len(r.rows.IDs(func(pm PatientMedicine) bool { return pm.MedicineID == medicineID })) > 0 {
		return medicine.ErrMedicineInUse
	}
	return nil
}

// CascadePatient deletes the assignments of a patient, running their own
// delete hooks.
func (r *InMemoryRepository) CascadePatient(ctx context.Context, patientID int64) error {
	for _, id := range r.rows.IDs(func(pm PatientMedicine) bool { return pm.PatientID == patientID }) {
		if _, err := r.Delete(ctx, id); err != nil && !errors.Is(err, ErrPatientMedicineNotFound) {
			return err
		}
	}
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
