package repository

import (
	"context"
	"database/sql"
	"fmt"

	"aahaara-data/internal/domain"
)

// PostgresAnalysesRepository implements AnalysesRepository.
type PostgresAnalysesRepository struct {
	db *sql.DB
}

func NewPostgresAnalysesRepository(db *sql.DB) *PostgresAnalysesRepository {
	return &PostgresAnalysesRepository{db: db}
}

var _ AnalysesRepository = (*PostgresAnalysesRepository)(nil)

// ========== Prakriti ==========

const prakritiColumns = `
	analysis_id::text, patient_id::text, primary_dosha, secondary_dosha,
	vata_score, pitta_score, kapha_score, analysis_notes, recommendations,
	status, analyzed_by::text, analysis_date, created_at, updated_at`

func scanPrakriti(s scanner) (*domain.PrakritiAnalysis, error) {
	var a domain.PrakritiAnalysis
	if err := s.Scan(
		&a.AnalysisID, &a.PatientID, &a.PrimaryDosha, &a.SecondaryDosha,
		&a.VataScore, &a.PittaScore, &a.KaphaScore, &a.AnalysisNotes, &a.Recommendations,
		&a.Status, &a.AnalyzedBy, &a.AnalysisDate, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresAnalysesRepository) CreatePrakriti(ctx context.Context, a *domain.PrakritiAnalysis) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO prakriti_analyses (
			patient_id, primary_dosha, secondary_dosha, vata_score, pitta_score, kapha_score,
			analysis_notes, recommendations, status, analyzed_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING analysis_id::text, analysis_date, created_at, updated_at`,
		a.PatientID, a.PrimaryDosha, nullable(a.SecondaryDosha), a.VataScore, a.PittaScore, a.KaphaScore,
		nullable(a.AnalysisNotes), nullable(a.Recommendations), a.Status, nullable(a.AnalyzedBy),
	).Scan(&a.AnalysisID, &a.AnalysisDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return writeErr(err, "insert prakriti analysis")
	}
	return nil
}

func (r *PostgresAnalysesRepository) ListPrakriti(ctx context.Context, patientID string) ([]*domain.PrakritiAnalysis, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+prakritiColumns+` FROM prakriti_analyses WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prakriti analyses: %w", err)
	}
	defer rows.Close()

	var out []*domain.PrakritiAnalysis
	for rows.Next() {
		a, err := scanPrakriti(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prakriti analysis: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresAnalysesRepository) LatestPrakriti(ctx context.Context, patientID string) (*domain.PrakritiAnalysis, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+prakritiColumns+` FROM prakriti_analyses WHERE patient_id = $1 ORDER BY created_at DESC LIMIT 1`, patientID)
	a, err := scanPrakriti(row)
	if err != nil {
		return nil, notFound(err, "prakriti analysis", patientID)
	}
	return a, nil
}

// ========== Disease ==========

const diseaseColumns = `
	analysis_id::text, patient_id::text, disease_name, icd_code, severity, status,
	symptoms, diagnosis_notes, treatment_plan, medications, follow_up_required,
	follow_up_date, diagnosed_by::text, diagnosis_date, is_active, created_at, updated_at`

func scanDisease(s scanner) (*domain.DiseaseAnalysis, error) {
	var d domain.DiseaseAnalysis
	if err := s.Scan(
		&d.AnalysisID, &d.PatientID, &d.DiseaseName, &d.ICDCode, &d.Severity, &d.Status,
		&d.Symptoms, &d.DiagnosisNotes, &d.TreatmentPlan, &d.Medications, &d.FollowUpRequired,
		&d.FollowUpDate, &d.DiagnosedBy, &d.DiagnosisDate, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PostgresAnalysesRepository) CreateDisease(ctx context.Context, d *domain.DiseaseAnalysis) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO disease_analyses (
			patient_id, disease_name, icd_code, severity, status, symptoms, diagnosis_notes,
			treatment_plan, medications, follow_up_required, follow_up_date, diagnosed_by, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING analysis_id::text, diagnosis_date, created_at, updated_at`,
		d.PatientID, d.DiseaseName, nullable(d.ICDCode), d.Severity, d.Status, nullable(d.Symptoms),
		nullable(d.DiagnosisNotes), nullable(d.TreatmentPlan), textArray(d.Medications),
		d.FollowUpRequired, nullableTime(d.FollowUpDate), nullable(d.DiagnosedBy), d.IsActive,
	).Scan(&d.AnalysisID, &d.DiagnosisDate, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return writeErr(err, "insert disease analysis")
	}
	return nil
}

func (r *PostgresAnalysesRepository) ListDiseases(ctx context.Context, patientID string, activeOnly bool) ([]*domain.DiseaseAnalysis, error) {
	query := `SELECT ` + diseaseColumns + ` FROM disease_analyses WHERE patient_id = $1`
	if activeOnly {
		query += ` AND is_active AND status IN ('active', 'chronic')`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list disease analyses: %w", err)
	}
	defer rows.Close()

	var out []*domain.DiseaseAnalysis
	for rows.Next() {
		d, err := scanDisease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disease analysis: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
