package models

// UserCreateRequest is the request body for creating a user.
type UserCreateRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	JobTitle     string `json:"jobTitle"`
	Role         string `json:"role,omitempty"`
	DepartmentID *int64 `json:"departmentId,omitempty"`
}

// UserUpdateRequest is the request body for updating a user.
// Absent fields are left unchanged.
type UserUpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Password     *string `json:"password,omitempty"`
	JobTitle     *string `json:"jobTitle,omitempty"`
	Role         *string `json:"role,omitempty"`
	DepartmentID *int64  `json:"departmentId,omitempty"`
}
