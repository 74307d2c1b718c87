package domain

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// DoctorProfile maps doctor_profiles (one row per doctor user).
type DoctorProfile struct {
	ProfileID       string          `db:"profile_id"`
	UserID          string          `db:"user_id"`
	Qualification   string          `db:"qualification"`
	ExperienceYears int             `db:"experience_years"`
	LicenseNumber   string          `db:"license_number"` // unique
	Specialization  string          `db:"specialization"`
	Bio             sql.NullString  `db:"bio"`
	ConsultationFee sql.NullFloat64 `db:"consultation_fee"`
	Languages       pq.StringArray  `db:"languages"`
	IsVerified      bool            `db:"is_verified"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

var DoctorSpecializations = []string{"general", "nutrition", "panchakarma", "lifestyle", "chronic-diseases"}

// PatientProfile maps patient_profiles (one row per patient user).
// Notes is the only free-form part of the profile.
type PatientProfile struct {
	ProfileID                string            `db:"profile_id"`
	UserID                   string            `db:"user_id"`
	DateOfBirth              sql.NullTime      `db:"date_of_birth"`
	Gender                   sql.NullString    `db:"gender"`
	BloodType                sql.NullString    `db:"blood_type"`
	HeightCm                 sql.NullFloat64   `db:"height_cm"`
	WeightKg                 sql.NullFloat64   `db:"weight_kg"`
	Location                 sql.NullString    `db:"location"`
	PhoneNumber              sql.NullString    `db:"phone_number"`
	EmergencyContactName     sql.NullString    `db:"emergency_contact_name"`
	EmergencyContactPhone    sql.NullString    `db:"emergency_contact_phone"`
	EmergencyContactRelation sql.NullString    `db:"emergency_contact_relation"`
	MedicalHistory           sql.NullString    `db:"medical_history"`
	Allergies                sql.NullString    `db:"allergies"`
	CurrentMedications       sql.NullString    `db:"current_medications"`
	InsuranceProvider        sql.NullString    `db:"insurance_provider"`
	InsuranceNumber          sql.NullString    `db:"insurance_number"`
	Notes                    map[string]string `db:"notes"` // JSONB
	CreatedAt                time.Time         `db:"created_at"`
	UpdatedAt                time.Time         `db:"updated_at"`
}

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)
