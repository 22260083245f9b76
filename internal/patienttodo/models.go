// Package patienttodo manages medication reminders. A todo is one planned
// administration of a patient's medicine.
package patienttodo

import (
	"errors"
	"time"
)

// ErrPatientTodoNotFound is returned when no todo has the given ID.
var ErrPatientTodoNotFound = errors.New("patient todo not found")

// PatientTodo is a planned administration of a patient medicine.
type PatientTodo struct {
	ID                int64     `json:"id" db:"id"`
	PatientMedicineID int64     `json:"patientMedicineId" db:"patient_medicine_id"`
	PatientID         int64     `json:"patientId" db:"patient_id"`
	UserID            *int64    `json:"userId,omitempty" db:"user_id"`
	Done              bool      `json:"done" db:"done"`
	PlannedTimeAtDay  time.Time `json:"plannedTimeAtDay" db:"planned_time_at_day"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}
