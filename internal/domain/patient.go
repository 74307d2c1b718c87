package domain

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PatientStatusActive   = "active"
	PatientStatusInactive = "inactive"
)

// Patient maps the patients table. A patient row always belongs to a patient-role user.
type Patient struct {
	PatientID        string         `db:"patient_id"`
	UserID           string         `db:"user_id"`
	PatientCode      string         `db:"patient_code"` // PAT-XXXXXXXX, unique
	AssignedDoctorID sql.NullString `db:"assigned_doctor_id"`
	Status           string         `db:"status"`
	RegistrationDate time.Time      `db:"registration_date"`
	LastConsultation sql.NullTime   `db:"last_consultation"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// NewPatientCode returns "PAT-" followed by eight upper-case hex characters.
func NewPatientCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "PAT-" + strings.ToUpper(id[:8])
}
