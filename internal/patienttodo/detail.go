package patienttodo

import (
	"context"
	"errors"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/patientmedicine"
)

// Detail is a todo together with its assignment, which carries the patient
// and the medicine. Filters apply to the todo's own fields.
type Detail struct {
	PatientTodo
	PatientMedicine *patientmedicine.Detail `json:"patientMedicine"`
}

// ListDetails returns the todos matching filters with their assignment.
func (s *Service) ListDetails(ctx context.Context, filters []filter.Filter) ([]*Detail, error) {
	todos, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, todos)
}

// GetDetail retrieves a todo with its assignment.
func (s *Service) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	todo, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.expand(ctx, []*PatientTodo{todo})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *Service) expand(ctx context.Context, todos []*PatientTodo) ([]*Detail, error) {
	assignments := make(map[int64]*patientmedicine.Detail)

	details := make([]*Detail, 0, len(todos))
	for _, todo := range todos {
		pm, ok := assignments[todo.PatientMedicineID]
		if !ok {
			var err error
			pm, err = s.assignments.GetDetail(ctx, todo.PatientMedicineID)
			if err != nil && !errors.Is(err, patientmedicine.ErrPatientMedicineNotFound) {
				return nil, err
			}
			assignments[todo.PatientMedicineID] = pm
		}
		details = append(details, &Detail{PatientTodo: *todo, PatientMedicine: pm})
	}
	return details, nil
}
