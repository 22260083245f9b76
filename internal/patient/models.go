// Package patient manages patients admitted to a department.
//
// PII stored:
//   - Name and social security number of the patient
package patient

import (
	"errors"
	"time"
)

// Errors.
var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrSSNTaken           = errors.New("social security number already registered")
	ErrDepartmentNotFound = errors.New("department does not exist")
)

// Patient is a person under care in a department.
type Patient struct {
	ID                   int64     `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	SocialSecurityNumber string    `json:"socialSecurityNumber" db:"social_security_number"`
	DepartmentID         int64     `json:"departmentId" db:"department_id"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time `json:"updatedAt" db:"updated_at"`
}
