// Package patientjournal manages free-text journal entries about patients.
package patientjournal

import (
	"errors"
	"time"
)

// ErrJournalNotFound is returned when no journal entry has the given ID.
var ErrJournalNotFound = errors.New("patient journal not found")

// PatientJournal is one journal entry.
type PatientJournal struct {
	ID          int64     `json:"id" db:"id"`
	PatientID   int64     `json:"patientId" db:"patient_id"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
