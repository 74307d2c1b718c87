package repository

import (
	"context"
	"database/sql"
	"fmt"

	"aahaara-data/internal/domain"
)

// PostgresProfilesRepository implements ProfilesRepository.
type PostgresProfilesRepository struct {
	db *sql.DB
}

func NewPostgresProfilesRepository(db *sql.DB) *PostgresProfilesRepository {
	return &PostgresProfilesRepository{db: db}
}

var _ ProfilesRepository = (*PostgresProfilesRepository)(nil)

func (r *PostgresProfilesRepository) GetDoctorProfile(ctx context.Context, userID string) (*domain.DoctorProfile, error) {
	var p domain.DoctorProfile
	err := r.db.QueryRowContext(ctx, `
		SELECT profile_id::text, user_id::text, qualification, experience_years, license_number,
		       specialization, bio, consultation_fee, languages, is_verified, created_at, updated_at
		FROM doctor_profiles
		WHERE user_id = $1`, userID,
	).Scan(
		&p.ProfileID, &p.UserID, &p.Qualification, &p.ExperienceYears, &p.LicenseNumber,
		&p.Specialization, &p.Bio, &p.ConsultationFee, &p.Languages, &p.IsVerified, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "doctor profile", userID)
	}
	return &p, nil
}

func (r *PostgresProfilesRepository) UpdateDoctorProfile(ctx context.Context, p *domain.DoctorProfile) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE doctor_profiles
		SET qualification = $2, experience_years = $3, specialization = $4, bio = $5,
		    consultation_fee = $6, languages = $7, updated_at = now()
		WHERE user_id = $1
		RETURNING profile_id::text, updated_at`,
		p.UserID, p.Qualification, p.ExperienceYears, p.Specialization, nullable(p.Bio),
		nullableFloat(p.ConsultationFee), textArray(p.Languages),
	).Scan(&p.ProfileID, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return &domain.NotFoundError{Entity: "doctor profile", ID: p.UserID}
	}
	if err != nil {
		return writeErr(err, "update doctor profile")
	}
	return nil
}

func (r *PostgresProfilesRepository) GetPatientProfile(ctx context.Context, userID string) (*domain.PatientProfile, error) {
	var p domain.PatientProfile
	var notes []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT profile_id::text, user_id::text, date_of_birth, gender, blood_type, height_cm, weight_kg,
		       location, phone_number, emergency_contact_name, emergency_contact_phone,
		       emergency_contact_relation, medical_history, allergies, current_medications,
		       insurance_provider, insurance_number, notes, created_at, updated_at
		FROM patient_profiles
		WHERE user_id = $1`, userID,
	).Scan(
		&p.ProfileID, &p.UserID, &p.DateOfBirth, &p.Gender, &p.BloodType, &p.HeightCm, &p.WeightKg,
		&p.Location, &p.PhoneNumber, &p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.EmergencyContactRelation, &p.MedicalHistory, &p.Allergies, &p.CurrentMedications,
		&p.InsuranceProvider, &p.InsuranceNumber, &notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "patient profile", userID)
	}
	if err := fromJSONB(notes, &p.Notes); err != nil {
		return nil, fmt.Errorf("failed to decode profile notes: %w", err)
	}
	return &p, nil
}

func (r *PostgresProfilesRepository) UpdatePatientProfile(ctx context.Context, p *domain.PatientProfile) error {
	notes, err := toJSONB(p.Notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	err = r.db.QueryRowContext(ctx, `
		UPDATE patient_profiles
		SET date_of_birth = $2, gender = $3, blood_type = $4, height_cm = $5, weight_kg = $6,
		    location = $7, phone_number = $8, emergency_contact_name = $9, emergency_contact_phone = $10,
		    emergency_contact_relation = $11, medical_history = $12, allergies = $13,
		    current_medications = $14, insurance_provider = $15, insurance_number = $16,
		    notes = $17::jsonb, updated_at = now()
		WHERE user_id = $1
		RETURNING profile_id::text, updated_at`,
		p.UserID, nullableTime(p.DateOfBirth), nullable(p.Gender), nullable(p.BloodType),
		nullableFloat(p.HeightCm), nullableFloat(p.WeightKg), nullable(p.Location),
		nullable(p.PhoneNumber), nullable(p.EmergencyContactName), nullable(p.EmergencyContactPhone),
		nullable(p.EmergencyContactRelation), nullable(p.MedicalHistory), nullable(p.Allergies),
		nullable(p.CurrentMedications), nullable(p.InsuranceProvider), nullable(p.InsuranceNumber), notes,
	).Scan(&p.ProfileID, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return &domain.NotFoundError{Entity: "patient profile", ID: p.UserID}
	}
	if err != nil {
		return writeErr(err, "update patient profile")
	}
	return nil
}
