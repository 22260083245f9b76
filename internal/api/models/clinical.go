package models

import "time"

// DepartmentRequest is the request body for creating or updating a department.
type DepartmentRequest struct {
	Title string `json:"title"`
}

// MedicineCreateRequest is the request body for creating a medicine.
type MedicineCreateRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	ActiveSubstance string  `json:"activeSubstance"`
	PricePerMg      float64 `json:"pricePerMg"`
}

// MedicineUpdateRequest is the request body for updating a medicine.
type MedicineUpdateRequest struct {
	Title           *string  `json:"title,omitempty"`
	Description     *string  `json:"description,omitempty"`
	ActiveSubstance *string  `json:"activeSubstance,omitempty"`
	PricePerMg      *float64 `json:"pricePerMg,omitempty"`
}

// PatientCreateRequest is the request body for creating a patient.
type PatientCreateRequest struct {
	Name                 string `json:"name"`
	SocialSecurityNumber string `json:"socialSecurityNumber"`
	DepartmentID         int64  `json:"departmentId"`
}

// PatientUpdateRequest is the request body for updating a patient.
type PatientUpdateRequest struct {
	Name                 *string `json:"name,omitempty"`
	SocialSecurityNumber *string `json:"socialSecurityNumber,omitempty"`
	DepartmentID         *int64  `json:"departmentId,omitempty"`
}

// PatientMedicineCreateRequest is the request body for assigning a medicine to a patient.
type PatientMedicineCreateRequest struct {
	PatientID  int64   `json:"patientId"`
	MedicineID int64   `json:"medicineId"`
	Amount     float64 `json:"amount"`
	Unit       string  `json:"unit"`
}

// PatientMedicineUpdateRequest is the request body for changing a dosage.
type PatientMedicineUpdateRequest struct {
	Amount *float64 `json:"amount,omitempty"`
	Unit   *string  `json:"unit,omitempty"`
}

// PatientTodoCreateRequest is the request body for creating a reminder.
type PatientTodoCreateRequest struct {
	PatientMedicineID int64     `json:"patientMedicineId"`
	PatientID         int64     `json:"patientId"`
	UserID            *int64    `json:"userId,omitempty"`
	Done              bool      `json:"done"`
	PlannedTimeAtDay  time.Time `json:"plannedTimeAtDay"`
}

// PatientTodoUpdateRequest is the request body for updating a reminder.
type PatientTodoUpdateRequest struct {
	Done             *bool      `json:"done,omitempty"`
	PlannedTimeAtDay *time.Time `json:"plannedTimeAtDay,omitempty"`
}

// PatientJournalCreateRequest is the request body for creating a journal entry.
type PatientJournalCreateRequest struct {
	PatientID   int64  `json:"patientId"`
	Description string `json:"description"`
}

// PatientJournalUpdateRequest is the request body for updating a journal entry.
type PatientJournalUpdateRequest struct {
	PatientID   *int64  `json:"patientId,omitempty"`
	Description *string `json:"description,omitempty"`
}
