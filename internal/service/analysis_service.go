package service

import (
	"context"
	"database/sql"

	"aahaara-data/internal/derived"
	"aahaara-data/internal/domain"
	"aahaara-data/internal/mirror"
	"aahaara-data/internal/repository"

	"go.uber.org/zap"
)

// AnalysisService records Prakriti analyses, disease diagnoses and consultations.
// Only doctors write; patients may read their own.
type AnalysisService struct {
	patients      repository.PatientsRepository
	analyses      repository.AnalysesRepository
	consultations repository.ConsultationsRepository
	syncer        *mirror.Syncer
	logger        *zap.Logger
}

func NewAnalysisService(patients repository.PatientsRepository, analyses repository.AnalysesRepository, consultations repository.ConsultationsRepository, syncer *mirror.Syncer, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{patients: patients, analyses: analyses, consultations: consultations, syncer: syncer, logger: logger}
}

type CreatePrakritiRequest struct {
	// PrimaryDosha is derived from the scores when empty.
	PrimaryDosha    string  `json:"primary_dosha" validate:"omitempty,oneof=vata pitta kapha vata-pitta vata-kapha pitta-kapha tridosha"`
	SecondaryDosha  *string `json:"secondary_dosha" validate:"omitempty,oneof=vata pitta kapha vata-pitta vata-kapha pitta-kapha tridosha"`
	VataScore       int     `json:"vata_score" validate:"gte=0,lte=100"`
	PittaScore      int     `json:"pitta_score" validate:"gte=0,lte=100"`
	KaphaScore      int     `json:"kapha_score" validate:"gte=0,lte=100"`
	AnalysisNotes   *string `json:"analysis_notes"`
	Recommendations *string `json:"recommendations"`
	Status          string  `json:"status" validate:"omitempty,oneof=draft completed reviewed"`
}

func (s *AnalysisService) CreatePrakriti(ctx context.Context, actor Actor, patientID string, req CreatePrakritiRequest) (*PrakritiView, error) {
	if err := requireDoctor(actor, "record prakriti analyses"); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}

	primary := req.PrimaryDosha
	if primary == "" {
		if req.VataScore+req.PittaScore+req.KaphaScore == 0 {
			return nil, domain.NewValidationError("primary_dosha", "required when all scores are zero")
		}
		primary = derived.DominantDosha(req.VataScore, req.PittaScore, req.KaphaScore)
	}
	status := req.Status
	if status == "" {
		status = domain.AnalysisStatusCompleted
	}

	a := &domain.PrakritiAnalysis{
		PatientID:       patientID,
		PrimaryDosha:    primary,
		SecondaryDosha:  nullString(req.SecondaryDosha),
		VataScore:       req.VataScore,
		PittaScore:      req.PittaScore,
		KaphaScore:      req.KaphaScore,
		AnalysisNotes:   nullString(req.AnalysisNotes),
		Recommendations: nullString(req.Recommendations),
		Status:          status,
		AnalyzedBy:      sql.NullString{String: actor.UserID, Valid: true},
	}
	if err := s.analyses.CreatePrakriti(ctx, a); err != nil {
		return nil, err
	}
	v := newPrakritiView(a)
	v.MirrorID = syncMirror(ctx, s.syncer, mirror.PrakritiRecord(a))
	s.logger.Info("Prakriti analysis recorded",
		zap.String("patient_id", patientID),
		zap.String("analysis_id", a.AnalysisID),
		zap.String("primary_dosha", primary),
	)
	return v, nil
}

func (s *AnalysisService) ListPrakriti(ctx context.Context, actor Actor, patientID string) ([]*PrakritiView, error) {
	if _, err := authorizePatient(ctx, s.patients, actor, patientID); err != nil {
		return nil, err
	}
	list, err := s.analyses.ListPrakriti(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]*PrakritiView, 0, len(list))
	for _, a := range list {
		out = append(out, newPrakritiView(a))
	}
	return out, nil
}

type CreateDiseaseRequest struct {
	DiseaseName      string   `json:"disease_name" validate:"required,max=200"`
	ICDCode          *string  `json:"icd_code" validate:"omitempty,max=20"`
	Severity         string   `json:"severity" validate:"omitempty,oneof=mild moderate severe"`
	Status           string   `json:"status" validate:"omitempty,oneof=active chronic resolved"`
	Symptoms         *string  `json:"symptoms"`
	DiagnosisNotes   *string  `json:"diagnosis_notes"`
	TreatmentPlan    *string  `json:"treatment_plan"`
	Medications      []string `json:"medications"`
	FollowUpRequired bool     `json:"follow_up_required"`
	FollowUpDate     *string  `json:"follow_up_date" validate:"omitempty,datetime=2006-01-02"`
}

func (s *AnalysisService) CreateDisease(ctx context.Context, actor Actor, patientID string, req CreateDiseaseRequest) (*DiseaseView, error) {
	if err := requireDoctor(actor, "record diagnoses"); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	followUp, err := nullDate("follow_up_date", req.FollowUpDate)
	if err != nil {
		return nil, err
	}
	severity, status := req.Severity, req.Status
	if severity == "" {
		severity = domain.SeverityMild
	}
	if status == "" {
		status = domain.DiseaseStatusActive
	}

	d := &domain.DiseaseAnalysis{
		PatientID:        patientID,
		DiseaseName:      req.DiseaseName,
		ICDCode:          nullString(req.ICDCode),
		Severity:         severity,
		Status:           status,
		Symptoms:         nullString(req.Symptoms),
		DiagnosisNotes:   nullString(req.DiagnosisNotes),
		TreatmentPlan:    nullString(req.TreatmentPlan),
		Medications:      req.Medications,
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     followUp,
		DiagnosedBy:      sql.NullString{String: actor.UserID, Valid: true},
		IsActive:         status != domain.DiseaseStatusResolved,
	}
	if err := s.analyses.CreateDisease(ctx, d); err != nil {
		return nil, err
	}
	v := newDiseaseView(d)
	v.MirrorID = syncMirror(ctx, s.syncer, mirror.DiseaseRecord(d))
	s.logger.Info("Disease analysis recorded", zap.String("patient_id", patientID), zap.String("analysis_id", d.AnalysisID))
	return v, nil
}

func (s *AnalysisService) ListDiseases(ctx context.Context, actor Actor, patientID string, activeOnly bool) ([]*DiseaseView, error) {
	if _, err := authorizePatient(ctx, s.patients, actor, patientID); err != nil {
		return nil, err
	}
	list, err := s.analyses.ListDiseases(ctx, patientID, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*DiseaseView, 0, len(list))
	for _, d := range list {
		out = append(out, newDiseaseView(d))
	}
	return out, nil
}

type CreateConsultationRequest struct {
	ConsultationType        string  `json:"consultation_type" validate:"omitempty,oneof=initial follow_up emergency routine"`
	ChiefComplaint          string  `json:"chief_complaint" validate:"required"`
	HistoryOfPresentIllness *string `json:"history_of_present_illness"`
	PhysicalExamination     *string `json:"physical_examination"`
	Assessment              *string `json:"assessment"`
	Plan                    *string `json:"plan"`
	Prescription            *string `json:"prescription"`
	FollowUpDate            *string `json:"follow_up_date" validate:"omitempty,datetime=2006-01-02"`
	DurationMinutes         int     `json:"duration_minutes" validate:"gte=0,lte=600"`
}

// ConsultationResponse also returns the patient, whose last_consultation moved.
type ConsultationResponse struct {
	*ConsultationView
	Patient *PatientView `json:"patient"`
}

// CreateConsultation writes the consultation and the patient's last_consultation in one
// transaction, then mirrors both rows.
func (s *AnalysisService) CreateConsultation(ctx context.Context, actor Actor, patientID string, req CreateConsultationRequest) (*ConsultationResponse, error) {
	if err := requireDoctor(actor, "record consultations"); err != nil {
		return nil, err
	}
	followUp, err := nullDate("follow_up_date", req.FollowUpDate)
	if err != nil {
		return nil, err
	}
	ctype := req.ConsultationType
	if ctype == "" {
		ctype = "routine"
	}
	c := &domain.Consultation{
		PatientID:               patientID,
		DoctorID:                actor.UserID,
		ConsultationType:        ctype,
		ChiefComplaint:          req.ChiefComplaint,
		HistoryOfPresentIllness: nullString(req.HistoryOfPresentIllness),
		PhysicalExamination:     nullString(req.PhysicalExamination),
		Assessment:              nullString(req.Assessment),
		Plan:                    nullString(req.Plan),
		Prescription:            nullString(req.Prescription),
		FollowUpDate:            followUp,
		DurationMinutes:         req.DurationMinutes,
	}
	patient, err := s.consultations.CreateConsultation(ctx, c)
	if err != nil {
		return nil, err
	}

	resp := &ConsultationResponse{ConsultationView: newConsultationView(c), Patient: newPatientView(patient)}
	resp.MirrorID = syncMirror(ctx, s.syncer, mirror.ConsultationRecord(c))
	resp.Patient.MirrorID = syncMirror(ctx, s.syncer, mirror.PatientRecord(patient))
	s.logger.Info("Consultation recorded", zap.String("patient_id", patientID), zap.String("consultation_id", c.ConsultationID))
	return resp, nil
}

func (s *AnalysisService) ListConsultations(ctx context.Context, actor Actor, patientID string, limit int) ([]*ConsultationView, error) {
	if _, err := authorizePatient(ctx, s.patients, actor, patientID); err != nil {
		return nil, err
	}
	list, err := s.consultations.ListConsultations(ctx, patientID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*ConsultationView, 0, len(list))
	for _, c := range list {
		out = append(out, newConsultationView(c))
	}
	return out, nil
}
