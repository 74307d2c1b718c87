package repository

import (
	"context"

	"aahaara-data/internal/domain"
)

// AnalysesRepository Prakriti and disease analyses. Lists are newest first.
type AnalysesRepository interface {
	CreatePrakriti(ctx context.Context, a *domain.PrakritiAnalysis) error
	ListPrakriti(ctx context.Context, patientID string) ([]*domain.PrakritiAnalysis, error)
	// LatestPrakriti returns *domain.NotFoundError when the patient has none.
	LatestPrakriti(ctx context.Context, patientID string) (*domain.PrakritiAnalysis, error)

	CreateDisease(ctx context.Context, d *domain.DiseaseAnalysis) error
	ListDiseases(ctx context.Context, patientID string, activeOnly bool) ([]*domain.DiseaseAnalysis, error)
}

// ConsultationsRepository consultations ordered by consultation_date DESC.
type ConsultationsRepository interface {
	// CreateConsultation inserts the consultation and advances the patient's
	// last_consultation in one transaction, returning the updated patient.
	CreateConsultation(ctx context.Context, c *domain.Consultation) (*domain.Patient, error)
	ListConsultations(ctx context.Context, patientID string, limit int) ([]*domain.Consultation, error)
}
