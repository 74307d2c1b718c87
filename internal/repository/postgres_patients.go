package repository

import (
	"context"
	"database/sql"
	"fmt"

	"aahaara-data/internal/domain"
)

// PostgresPatientsRepository implements PatientsRepository.
type PostgresPatientsRepository struct {
	db *sql.DB
}

func NewPostgresPatientsRepository(db *sql.DB) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db}
}

var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

const patientColumns = `
	p.patient_id::text, p.user_id::text, p.patient_code, p.assigned_doctor_id::text, p.status,
	p.registration_date, p.last_consultation, p.created_at, p.updated_at`

const patientWithUserColumns = patientColumns + `,
	u.username, u.email, u.first_name, u.last_name, u.is_active`

func scanPatient(s scanner) (*domain.Patient, error) {
	var p domain.Patient
	if err := s.Scan(
		&p.PatientID, &p.UserID, &p.PatientCode, &p.AssignedDoctorID, &p.Status,
		&p.RegistrationDate, &p.LastConsultation, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPatientWithUser(s scanner) (*PatientWithUser, error) {
	var pu PatientWithUser
	p := &pu.Patient
	u := &pu.User
	if err := s.Scan(
		&p.PatientID, &p.UserID, &p.PatientCode, &p.AssignedDoctorID, &p.Status,
		&p.RegistrationDate, &p.LastConsultation, &p.CreatedAt, &p.UpdatedAt,
		&u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsActive,
	); err != nil {
		return nil, err
	}
	u.UserID = p.UserID
	u.Role = domain.RolePatient
	return &pu, nil
}

func insertPatient(ctx context.Context, q dbtx, p *domain.Patient) error {
	if p.PatientCode == "" {
		p.PatientCode = domain.NewPatientCode()
	}
	if p.Status == "" {
		p.Status = domain.PatientStatusActive
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO patients (user_id, patient_code, assigned_doctor_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING patient_id::text, registration_date, created_at, updated_at`,
		p.UserID, p.PatientCode, nullable(p.AssignedDoctorID), p.Status,
	).Scan(&p.PatientID, &p.RegistrationDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return writeErr(err, "insert patient")
	}
	return nil
}

func (r *PostgresPatientsRepository) GetPatient(ctx context.Context, patientID string) (*PatientWithUser, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+patientWithUserColumns+`
		FROM patients p JOIN users u ON u.user_id = p.user_id
		WHERE p.patient_id = $1`, patientID)
	pu, err := scanPatientWithUser(row)
	if err != nil {
		return nil, notFound(err, "patient", patientID)
	}
	return pu, nil
}

func (r *PostgresPatientsRepository) GetPatientByUserID(ctx context.Context, userID string) (*PatientWithUser, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+patientWithUserColumns+`
		FROM patients p JOIN users u ON u.user_id = p.user_id
		WHERE p.user_id = $1`, userID)
	pu, err := scanPatientWithUser(row)
	if err != nil {
		return nil, notFound(err, "patient", userID)
	}
	return pu, nil
}

func (r *PostgresPatientsRepository) ListPatients(ctx context.Context, filter PatientsFilter, page, size int) ([]*PatientWithUser, int, error) {
	var w whereBuilder
	if filter.AssignedDoctorID != "" {
		w.add("p.assigned_doctor_id = $%d", filter.AssignedDoctorID)
	}
	if filter.Status != "" {
		w.add("p.status = $%d", filter.Status)
	}
	if filter.Search != "" {
		w.add(`(u.first_name ILIKE $%[1]d ESCAPE '\' OR u.last_name ILIKE $%[1]d ESCAPE '\' OR u.email ILIKE $%[1]d ESCAPE '\' OR p.patient_code ILIKE $%[1]d ESCAPE '\')`,
			containsPattern(filter.Search))
	}
	from := `FROM patients p JOIN users u ON u.user_id = p.user_id ` + w.sql()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) `+from, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	limit, offset := pageBounds(page, size)
	query := fmt.Sprintf(`SELECT %s %s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		patientWithUserColumns, from, w.next(), w.next()+1)
	rows, err := r.db.QueryContext(ctx, query, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var out []*PatientWithUser
	for rows.Next() {
		pu, err := scanPatientWithUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan patient: %w", err)
		}
		out = append(out, pu)
	}
	return out, total, rows.Err()
}

func (r *PostgresPatientsRepository) updateReturning(ctx context.Context, patientID, set string, args ...any) (*domain.Patient, error) {
	return updatePatientReturning(ctx, r.db, patientID, set, args...)
}

func updatePatientReturning(ctx context.Context, q dbtx, patientID, set string, args ...any) (*domain.Patient, error) {
	row := q.QueryRowContext(ctx, `
		UPDATE patients p SET `+set+`, updated_at = now()
		WHERE p.patient_id = $1
		RETURNING `+patientColumns, append([]any{patientID}, args...)...)
	p, err := scanPatient(row)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: "patient", ID: patientID}
	}
	if err != nil {
		return nil, writeErr(err, "update patient")
	}
	return p, nil
}

func (r *PostgresPatientsRepository) UpdatePatientStatus(ctx context.Context, patientID, status string) (*domain.Patient, error) {
	return r.updateReturning(ctx, patientID, "status = $2", status)
}

func (r *PostgresPatientsRepository) AssignDoctor(ctx context.Context, patientID, doctorUserID string) (*domain.Patient, error) {
	return r.updateReturning(ctx, patientID, "assigned_doctor_id = $2", doctorUserID)
}

func (r *PostgresPatientsRepository) DeletePatient(ctx context.Context, patientID string) (*PatientDependents, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The row lock keeps new child rows out until the delete commits.
	var locked int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM patients WHERE patient_id = $1 FOR UPDATE`, patientID).Scan(&locked)
	if err != nil {
		return nil, notFound(err, "patient", patientID)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT 'prakriti', analysis_id::text FROM prakriti_analyses WHERE patient_id = $1
		UNION ALL
		SELECT 'disease', analysis_id::text FROM disease_analyses WHERE patient_id = $1
		UNION ALL
		SELECT 'consultation', consultation_id::text FROM consultations WHERE patient_id = $1
		UNION ALL
		SELECT 'diet_chart', chart_id::text FROM diet_charts WHERE patient_id = $1`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patient dependents: %w", err)
	}
	deps := &PatientDependents{}
	for rows.Next() {
		var kind, id string
		if err := rows.Scan(&kind, &id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan patient dependent: %w", err)
		}
		switch kind {
		case "prakriti":
			deps.PrakritiIDs = append(deps.PrakritiIDs, id)
		case "disease":
			deps.DiseaseIDs = append(deps.DiseaseIDs, id)
		case "consultation":
			deps.ConsultationIDs = append(deps.ConsultationIDs, id)
		case "diet_chart":
			deps.DietChartIDs = append(deps.DietChartIDs, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list patient dependents: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE patient_id = $1`, patientID); err != nil {
		return nil, fmt.Errorf("failed to delete patient: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit patient delete: %w", err)
	}
	return deps, nil
}
