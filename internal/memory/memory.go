// Package memory assembles the in-memory repositories and links them with
// the same delete rules the PostgreSQL schema enforces through its foreign
// keys, so both storage backends answer a delete with the same status and
// leave the same rows behind.
package memory

import (
	"github.com/carejournal/carejournal/internal/department"
	"github.com/carejournal/carejournal/internal/device"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/patientjournal"
	"github.com/carejournal/carejournal/internal/patientmedicine"
	"github.com/carejournal/carejournal/internal/patienttodo"
	"github.com/carejournal/carejournal/internal/user"
)

// Repositories holds one in-memory repository per entity.
type Repositories struct {
	Users            *user.InMemoryRepository
	Devices          *device.InMemoryRepository
	Departments      *department.InMemoryRepository
	Medicines        *medicine.InMemoryRepository
	Patients         *patient.InMemoryRepository
	PatientMedicines *patientmedicine.InMemoryRepository
	PatientTodos     *patienttodo.InMemoryRepository
	PatientJournals  *patientjournal.InMemoryRepository
}

// New creates empty repositories with their delete rules:
//
//	users             devices CASCADE, patient_todos.user_id SET NULL
//	departments       users.department_id SET NULL
//	medicines         patient_medicines RESTRICT
//	patients          patient_medicines, patient_todos, patient_journals CASCADE
//	patient_medicines patient_todos CASCADE
//
// Patients restricting a department delete is checked by department.Service.
func New() *Repositories {
	r := &Repositories{
		Users:            user.NewInMemoryRepository(),
		Devices:          device.NewInMemoryRepository(),
		Departments:      department.NewInMemoryRepository(),
		Medicines:        medicine.NewInMemoryRepository(),
		Patients:         patient.NewInMemoryRepository(),
		PatientMedicines: patientmedicine.NewInMemoryRepository(),
		PatientTodos:     patienttodo.NewInMemoryRepository(),
		PatientJournals:  patientjournal.NewInMemoryRepository(),
	}

	r.Users.OnDelete(r.Devices.DeleteByUser)
	r.Users.OnDelete(r.PatientTodos.DetachUser)

	r.Departments.OnDelete(r.Users.DetachDepartment)

	r.Medicines.OnDelete(r.PatientMedicines.RestrictMedicine)

	r.Patients.OnDelete(r.PatientMedicines.CascadePatient)
	r.Patients.OnDelete(r.PatientTodos.CascadePatient)
	r.Patients.OnDelete(r.PatientJournals.CascadePatient)

	r.PatientMedicines.OnDelete(r.PatientTodos.CascadePatientMedicine)

	return r
}
