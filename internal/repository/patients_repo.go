package repository

import (
	"context"

	"aahaara-data/internal/domain"
)

// PatientWithUser is a patient row joined with its owning user.
type PatientWithUser struct {
	Patient domain.Patient
	User    domain.User
}

// PatientsFilter all fields optional.
type PatientsFilter struct {
	AssignedDoctorID string
	Status           string
	Search           string // name, email or patient code, case-insensitive
}

// PatientDependents ids of the child rows removed together with a patient.
type PatientDependents struct {
	PrakritiIDs     []string
	DiseaseIDs      []string
	ConsultationIDs []string
	DietChartIDs    []string
}

type PatientsRepository interface {
	GetPatient(ctx context.Context, patientID string) (*PatientWithUser, error)
	GetPatientByUserID(ctx context.Context, userID string) (*PatientWithUser, error)
	// ListPatients orders by created_at DESC.
	ListPatients(ctx context.Context, filter PatientsFilter, page, size int) ([]*PatientWithUser, int, error)
	UpdatePatientStatus(ctx context.Context, patientID, status string) (*domain.Patient, error)
	AssignDoctor(ctx context.Context, patientID, doctorUserID string) (*domain.Patient, error)
	// DeletePatient deletes the patient and its cascaded child rows, returning
	// the child ids it removed.
	DeletePatient(ctx context.Context, patientID string) (*PatientDependents, error)
}
