package patientmedicine

import (
	"context"
	"errors"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/patient"
)

// Detail is an assignment together with its patient and medicine. Filters
// apply to the assignment's own fields.
type Detail struct {
	PatientMedicine
	Patient  *patient.Patient   `json:"patient"`
	Medicine *medicine.Medicine `json:"medicine"`
}

// ListDetails returns the assignments matching filters with their patient
// and medicine.
func (s *Service) ListDetails(ctx context.Context, filters []filter.Filter) ([]*Detail, error) {
	items, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, items)
}

// GetDetail retrieves an assignment with its patient and medicine.
func (s *Service) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	pm, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.expand(ctx, []*PatientMedicine{pm})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// expand looks each patient and medicine up once. A related row removed
// since the assignment was read is left nil.
func (s *Service) expand(ctx context.Context, items []*PatientMedicine) ([]*Detail, error) {
	patients := make(map[int64]*patient.Patient)
	medicines := make(map[int64]*medicine.Medicine)

	details := make([]*Detail, 0, len(items))
	for _, pm := range items {
		p, ok := patients[pm.PatientID]
		if !ok {
			var err error
			p, err = s.patients.Get(ctx, pm.PatientID)
			if err != nil && !errors.Is(err, patient.ErrPatientNotFound) {
				return nil, err
			}
			patients[pm.PatientID] = p
		}

		m, ok := medicines[pm.MedicineID]
		if !ok {
			var err error
			m, err = s.medicines.Get(ctx, pm.MedicineID)
			if err != nil && !errors.Is(err, medicine.ErrMedicineNotFound) {
				return nil, err
			}
			medicines[pm.MedicineID] = m
		}

		details = append(details, &Detail{PatientMedicine: *pm, Patient: p, Medicine: m})
	}
	return details, nil
}
