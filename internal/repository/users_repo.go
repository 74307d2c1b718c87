package repository

import (
	"context"
	"time"

	"aahaara-data/internal/domain"
)

// UsersRepository covers users and the registration writes that create a user together
// with its typed profile.
type UsersRepository interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	// GetUserByLogin matches username or email.
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error

	// RegisterPatient inserts user, patient profile and patient in one transaction and
	// fills the generated ids and timestamps into the arguments.
	RegisterPatient(ctx context.Context, user *domain.User, profile *domain.PatientProfile, patient *domain.Patient) error
	// RegisterDoctor inserts user and doctor profile in one transaction.
	RegisterDoctor(ctx context.Context, user *domain.User, profile *domain.DoctorProfile) error
}

// ProfilesRepository reads and updates the typed per-role profiles.
type ProfilesRepository interface {
	GetDoctorProfile(ctx context.Context, userID string) (*domain.DoctorProfile, error)
	UpdateDoctorProfile(ctx context.Context, profile *domain.DoctorProfile) error
	GetPatientProfile(ctx context.Context, userID string) (*domain.PatientProfile, error)
	UpdatePatientProfile(ctx context.Context, profile *domain.PatientProfile) error
}
