// Package department manages hospital departments. Users and patients refer
// to a department, and push notifications are addressed per department.
package department

import (
	"errors"
	"time"
)

// Errors.
var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentInUse    = errors.New("department still has patients")
)

// Department is a ward or unit.
type Department struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
