// Package medicine manages the medicine catalogue.
package medicine

import (
	"errors"
	"time"
)

// Errors.
var (
	ErrMedicineNotFound = errors.New("medicine not found")
	ErrMedicineInUse    = errors.New("medicine is assigned to patients")
)

// Medicine is a catalogue entry.
type Medicine struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	ActiveSubstance string    `json:"activeSubstance" db:"active_substance"`
	PricePerMg      float64   `json:"pricePerMg" db:"price_per_mg"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
