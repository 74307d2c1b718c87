package domain

import (
	"database/sql"
	"time"
)

var ConsultationTypes = []string{"initial", "follow_up", "emergency", "routine"}

const DefaultConsultationMinutes = 30

// Consultation maps consultations.
type Consultation struct {
	ConsultationID          string         `db:"consultation_id"`
	PatientID               string         `db:"patient_id"`
	DoctorID                string         `db:"doctor_id"`
	ConsultationType        string         `db:"consultation_type"`
	ChiefComplaint          string         `db:"chief_complaint"`
	HistoryOfPresentIllness sql.NullString `db:"history_of_present_illness"`
	PhysicalExamination     sql.NullString `db:"physical_examination"`
	Assessment              sql.NullString `db:"assessment"`
	Plan                    sql.NullString `db:"plan"`
	Prescription            sql.NullString `db:"prescription"`
	FollowUpDate            sql.NullTime   `db:"follow_up_date"`
	ConsultationDate        time.Time      `db:"consultation_date"`
	DurationMinutes         int            `db:"duration_minutes"`
	CreatedAt               time.Time      `db:"created_at"`
	UpdatedAt               time.Time      `db:"updated_at"`
}
