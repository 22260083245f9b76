package patientmedicine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/patient"
)

// MaxUnitLength is the longest accepted dosage unit.
const MaxUnitLength = 32

// PatientGetter looks up patients.
type PatientGetter interface {
	Get(ctx context.Context, id int64) (*patient.Patient, error)
}

// MedicineGetter looks up medicines.
type MedicineGetter interface {
	Get(ctx context.Context, id int64) (*medicine.Medicine, error)
}

// DepartmentNotifier pushes a message to every device in a department.
type DepartmentNotifier interface {
	NotifyDepartment(ctx context.Context, departmentID int64, title, body string) error
}

// ServiceConfig holds configuration for the patient medicine service.
type ServiceConfig struct {
	Repo      Repository
	Patients  PatientGetter
	Medicines MedicineGetter
	Notifier  DepartmentNotifier
	Logger    zerolog.Logger
}

// Service provides patient medicine operations.
type Service struct {
	repo      Repository
	patients  PatientGetter
	medicines MedicineGetter
	notifier  DepartmentNotifier
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates a new patient medicine service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repo,
		patients:  cfg.Patients,
		medicines: cfg.Medicines,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger.With().Str("component", "patientmedicine").Logger(),
		now:       time.Now,
	}
}

// List returns the assignments matching filters.
func (s *Service) List(ctx context.Context, filters []filter.Filter) ([]*PatientMedicine, error) {
	return s.repo.List(ctx, filters)
}

// Get retrieves an assignment by ID.
func (s *Service) Get(ctx context.Context, id int64) (*PatientMedicine, error) {
	return s.repo.Get(ctx, id)
}

// Create assigns a medicine to a patient and notifies the patient's
// department. Returns patient.ErrPatientNotFound or
// medicine.ErrMedicineNotFound when either side is missing. A failed
// notification is logged and does not fail the assignment.
func (s *Service) Create(ctx context.Context, input *models.PatientMedicineCreateRequest) (*PatientMedicine, error) {
	var v models.Validator
	v.Positive("patientId", input.PatientID)
	v.Positive("medicineId", input.MedicineID)
	validateDosage(&v, input.Amount, input.Unit)
	if err := v.Err(); err != nil {
		return nil, err
	}

	p, err := s.patients.Get(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	m, err := s.medicines.Get(ctx, input.MedicineID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	pm := &PatientMedicine{
		PatientID:  p.ID,
		MedicineID: m.ID,
		Amount:     input.Amount,
		Unit:       input.Unit,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, pm); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		body := fmt.Sprintf(assignedBodyFormat, p.Name, m.Title)
		if err := s.notifier.NotifyDepartment(ctx, p.DepartmentID, AssignedTitle, body); err != nil {
			s.logger.Warn().Err(err).
				Int64("patient_medicine_id", pm.ID).
				Int64("department_id", p.DepartmentID).
				Msg("failed to notify department")
		}
	}

	return pm, nil
}

// Update changes the dosage of an assignment.
func (s *Service) Update(ctx context.Context, id int64, input *models.PatientMedicineUpdateRequest) (*PatientMedicine, error) {
	pm, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Amount != nil {
		pm.Amount = *input.Amount
	}
	if input.Unit != nil {
		pm.Unit = *input.Unit
	}

	var v models.Validator
	validateDosage(&v, pm.Amount, pm.Unit)
	if err := v.Err(); err != nil {
		return nil, err
	}
	pm.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, pm); err != nil {
		return nil, err
	}
	return pm, nil
}

// Delete removes an assignment and returns it.
func (s *Service) Delete(ctx context.Context, id int64) (*PatientMedicine, error) {
	return s.repo.Delete(ctx, id)
}

func validateDosage(v *models.Validator, amount float64, unit string) {
	v.Check(amount > 0, "amount", "OUT_OF_RANGE", "must be positive")
	if v.Required("unit", unit) {
		v.MaxLen("unit", unit, MaxUnitLength)
	}
}
