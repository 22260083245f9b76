// Package patientmedicine manages medicines prescribed to patients.
package patientmedicine

import (
	"errors"
	"time"
)

// ErrPatientMedicineNotFound is returned when no assignment has the given ID.
var ErrPatientMedicineNotFound = errors.New("patient medicine not found")

// Notification text sent to the patient's department when a medicine is assigned.
const (
	AssignedTitle      = "Ny medicin tildelt"
	assignedBodyFormat = "%s er blevet tildelt %s"
)

// PatientMedicine assigns a dosage of a medicine to a patient.
type PatientMedicine struct {
	ID         int64     `json:"id" db:"id"`
	PatientID  int64     `json:"patientId" db:"patient_id"`
	MedicineID int64     `json:"medicineId" db:"medicine_id"`
	Amount     float64   `json:"amount" db:"amount"`
	Unit       string    `json:"unit" db:"unit"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
