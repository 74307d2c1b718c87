package repository

import (
	"context"
	"database/sql"
	"fmt"

	"aahaara-data/internal/domain"
)

// PostgresConsultationsRepository implements ConsultationsRepository.
type PostgresConsultationsRepository struct {
	db *sql.DB
}

func NewPostgresConsultationsRepository(db *sql.DB) *PostgresConsultationsRepository {
	return &PostgresConsultationsRepository{db: db}
}

var _ ConsultationsRepository = (*PostgresConsultationsRepository)(nil)

const consultationColumns = `
	consultation_id::text, patient_id::text, doctor_id::text, consultation_type, chief_complaint,
	history_of_present_illness, physical_examination, assessment, plan, prescription,
	follow_up_date, consultation_date, duration_minutes, created_at, updated_at`

func (r *PostgresConsultationsRepository) CreateConsultation(ctx context.Context, c *domain.Consultation) (*domain.Patient, error) {
	if c.DurationMinutes <= 0 {
		c.DurationMinutes = domain.DefaultConsultationMinutes
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO consultations (
			patient_id, doctor_id, consultation_type, chief_complaint, history_of_present_illness,
			physical_examination, assessment, plan, prescription, follow_up_date, duration_minutes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING consultation_id::text, consultation_date, created_at, updated_at`,
		c.PatientID, c.DoctorID, c.ConsultationType, c.ChiefComplaint, nullable(c.HistoryOfPresentIllness),
		nullable(c.PhysicalExamination), nullable(c.Assessment), nullable(c.Plan), nullable(c.Prescription),
		nullableTime(c.FollowUpDate), c.DurationMinutes,
	).Scan(&c.ConsultationID, &c.ConsultationDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, writeErr(err, "insert consultation")
	}

	patient, err := updatePatientReturning(ctx, tx, c.PatientID,
		"last_consultation = GREATEST(COALESCE(p.last_consultation, $2), $2)", c.ConsultationDate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit consultation: %w", err)
	}
	return patient, nil
}

func (r *PostgresConsultationsRepository) ListConsultations(ctx context.Context, patientID string, limit int) ([]*domain.Consultation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations
		WHERE patient_id = $1
		ORDER BY consultation_date DESC
		LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Consultation
	for rows.Next() {
		var c domain.Consultation
		if err := rows.Scan(
			&c.ConsultationID, &c.PatientID, &c.DoctorID, &c.ConsultationType, &c.ChiefComplaint,
			&c.HistoryOfPresentIllness, &c.PhysicalExamination, &c.Assessment, &c.Plan, &c.Prescription,
			&c.FollowUpDate, &c.ConsultationDate, &c.DurationMinutes, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan consultation: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
