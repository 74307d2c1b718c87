package domain

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Dosha constitution labels. Combined labels are emitted when two doshas score within
// a narrow margin; tridosha when all three do.
const (
	DoshaVata       = "vata"
	DoshaPitta      = "pitta"
	DoshaKapha      = "kapha"
	DoshaVataPitta  = "vata-pitta"
	DoshaVataKapha  = "vata-kapha"
	DoshaPittaKapha = "pitta-kapha"
	DoshaTridosha   = "tridosha"
)

var DoshaTypes = []string{DoshaVata, DoshaPitta, DoshaKapha, DoshaVataPitta, DoshaVataKapha, DoshaPittaKapha, DoshaTridosha}

const (
	AnalysisStatusDraft     = "draft"
	AnalysisStatusCompleted = "completed"
	AnalysisStatusReviewed  = "reviewed"
)

// PrakritiAnalysis maps prakriti_analyses.
type PrakritiAnalysis struct {
	AnalysisID      string         `db:"analysis_id"`
	PatientID       string         `db:"patient_id"`
	PrimaryDosha    string         `db:"primary_dosha"`
	SecondaryDosha  sql.NullString `db:"secondary_dosha"`
	VataScore       int            `db:"vata_score"`
	PittaScore      int            `db:"pitta_score"`
	KaphaScore      int            `db:"kapha_score"`
	AnalysisNotes   sql.NullString `db:"analysis_notes"`
	Recommendations sql.NullString `db:"recommendations"`
	Status          string         `db:"status"`
	AnalyzedBy      sql.NullString `db:"analyzed_by"`
	AnalysisDate    time.Time      `db:"analysis_date"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// IsComplete reports whether the analysis counts toward diet chart eligibility.
func (a *PrakritiAnalysis) IsComplete() bool {
	return a.Status == AnalysisStatusCompleted || a.Status == AnalysisStatusReviewed
}

const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"

	DiseaseStatusActive   = "active"
	DiseaseStatusChronic  = "chronic"
	DiseaseStatusResolved = "resolved"
)

// DiseaseAnalysis maps disease_analyses.
type DiseaseAnalysis struct {
	AnalysisID       string         `db:"analysis_id"`
	PatientID        string         `db:"patient_id"`
	DiseaseName      string         `db:"disease_name"`
	ICDCode          sql.NullString `db:"icd_code"`
	Severity         string         `db:"severity"`
	Status           string         `db:"status"`
	Symptoms         sql.NullString `db:"symptoms"`
	DiagnosisNotes   sql.NullString `db:"diagnosis_notes"`
	TreatmentPlan    sql.NullString `db:"treatment_plan"`
	Medications      pq.StringArray `db:"medications"`
	FollowUpRequired bool           `db:"follow_up_required"`
	FollowUpDate     sql.NullTime   `db:"follow_up_date"`
	DiagnosedBy      sql.NullString `db:"diagnosed_by"`
	DiagnosisDate    time.Time      `db:"diagnosis_date"`
	IsActive         bool           `db:"is_active"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// IsOngoing reports whether the diagnosis is active or chronic and not closed.
func (d *DiseaseAnalysis) IsOngoing() bool {
	return d.IsActive && (d.Status == DiseaseStatusActive || d.Status == DiseaseStatusChronic)
}
