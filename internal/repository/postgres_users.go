package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aahaara-data/internal/domain"
)

// PostgresUsersRepository implements UsersRepository.
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	user_id::text, username, email, password_hash, first_name, last_name,
	role, is_active, last_login, created_at, updated_at`

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var role string
	if err := s.Scan(
		&u.UserID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&role, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	return u, nil
}

func (r *PostgresUsersRepository) GetUserByLogin(ctx context.Context, login string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR lower(email) = lower($1) LIMIT 1`, login)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user", login)
	}
	return u, nil
}

func (r *PostgresUsersRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, is_active = $5, updated_at = now()
		WHERE user_id = $1
		RETURNING updated_at`,
		user.UserID, user.Email, user.FirstName, user.LastName, user.IsActive,
	).Scan(&user.UpdatedAt)
	if err == sql.ErrNoRows {
		return &domain.NotFoundError{Entity: "user", ID: user.UserID}
	}
	if err != nil {
		return writeErr(err, "update user")
	}
	return nil
}

func (r *PostgresUsersRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE user_id = $1`, userID, at); err != nil {
		return fmt.Errorf("failed to update last_login: %w", err)
	}
	return nil
}

func (r *PostgresUsersRepository) RegisterPatient(ctx context.Context, user *domain.User, profile *domain.PatientProfile, patient *domain.Patient) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}
	profile.UserID = user.UserID
	if err := insertPatientProfile(ctx, tx, profile); err != nil {
		return err
	}
	patient.UserID = user.UserID
	if err := insertPatient(ctx, tx, patient); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

func (r *PostgresUsersRepository) RegisterDoctor(ctx context.Context, user *domain.User, profile *domain.DoctorProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}
	profile.UserID = user.UserID
	if err := insertDoctorProfile(ctx, tx, profile); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

func insertUser(ctx context.Context, q dbtx, u *domain.User) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING user_id::text, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Role), u.IsActive,
	).Scan(&u.UserID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return writeErr(err, "insert user")
	}
	return nil
}

func insertDoctorProfile(ctx context.Context, q dbtx, p *domain.DoctorProfile) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO doctor_profiles (
			user_id, qualification, experience_years, license_number, specialization,
			bio, consultation_fee, languages, is_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING profile_id::text, created_at, updated_at`,
		p.UserID, p.Qualification, p.ExperienceYears, p.LicenseNumber, p.Specialization,
		nullable(p.Bio), nullableFloat(p.ConsultationFee), textArray(p.Languages), p.IsVerified,
	).Scan(&p.ProfileID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return writeErr(err, "insert doctor profile")
	}
	return nil
}

func insertPatientProfile(ctx context.Context, q dbtx, p *domain.PatientProfile) error {
	notes, err := toJSONB(p.Notes)
	if err != nil {
		return fmt.Errorf("failed to encode notes: %w", err)
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO patient_profiles (
			user_id, date_of_birth, gender, blood_type, height_cm, weight_kg, location,
			phone_number, emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
			medical_history, allergies, current_medications, insurance_provider, insurance_number, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17::jsonb)
		RETURNING profile_id::text, created_at, updated_at`,
		p.UserID, nullableTime(p.DateOfBirth), nullable(p.Gender), nullable(p.BloodType),
		nullableFloat(p.HeightCm), nullableFloat(p.WeightKg), nullable(p.Location),
		nullable(p.PhoneNumber), nullable(p.EmergencyContactName), nullable(p.EmergencyContactPhone),
		nullable(p.EmergencyContactRelation), nullable(p.MedicalHistory), nullable(p.Allergies),
		nullable(p.CurrentMedications), nullable(p.InsuranceProvider), nullable(p.InsuranceNumber), notes,
	).Scan(&p.ProfileID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return writeErr(err, "insert patient profile")
	}
	return nil
}
