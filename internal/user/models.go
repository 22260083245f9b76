// Package user manages staff accounts.
//
// A user is a member of staff who can sign in. Besides contact details a user
// carries a role label and an optional department. The role label is only
// interpreted by the auth package; this package stores it and rejects unknown
// labels on input.
//
// PII stored:
//   - Name, Email and JobTitle of staff members
//   - A bcrypt hash of the password (never serialized or filterable)
package user

import (
	"errors"
	"fmt"
	"time"
)

// Repository errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
	ErrUsersExist   = errors.New("users already exist")
	ErrInvalidRole  = errors.New("invalid role")
)

// Role is a user's role label.
type Role string

// Known roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole parses a role label. Only known labels are accepted.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUser:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so that JSON bodies and
// query filters only accept known labels.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Role) String() string {
	return string(r)
}

// User is a staff account.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash" filter:"-"`
	JobTitle     string    `json:"jobTitle" db:"job_title"`
	Role         Role      `json:"role" db:"role"`
	DepartmentID *int64    `json:"departmentId,omitempty" db:"department_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
