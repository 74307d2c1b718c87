package service

import (
	"context"
	"errors"
	"time"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/mirror"
	"aahaara-data/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const recentConsultationsInSummary = 5

// PatientService covers patient records and the views aggregated around them.
type PatientService struct {
	users         repository.UsersRepository
	profiles      repository.ProfilesRepository
	patients      repository.PatientsRepository
	analyses      repository.AnalysesRepository
	consultations repository.ConsultationsRepository
	syncer        *mirror.Syncer
	logger        *zap.Logger
	bcryptCost    int
	now           func() time.Time
}

func NewPatientService(
	users repository.UsersRepository,
	profiles repository.ProfilesRepository,
	patients repository.PatientsRepository,
	analyses repository.AnalysesRepository,
	consultations repository.ConsultationsRepository,
	syncer *mirror.Syncer,
	logger *zap.Logger,
) *PatientService {
	return &PatientService{
		users:         users,
		profiles:      profiles,
		patients:      patients,
		analyses:      analyses,
		consultations: consultations,
		syncer:        syncer,
		logger:        logger,
		bcryptCost:    bcrypt.DefaultCost,
		now:           time.Now,
	}
}

// authorizePatient loads the patient and enforces that patients only see themselves.
// Doctors may read any patient.
func (s *PatientService) authorizePatient(ctx context.Context, actor Actor, patientID string) (*repository.PatientWithUser, error) {
	return authorizePatient(ctx, s.patients, actor, patientID)
}

func authorizePatient(ctx context.Context, patients repository.PatientsRepository, actor Actor, patientID string) (*repository.PatientWithUser, error) {
	pu, err := patients.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !actor.IsDoctor() && pu.Patient.UserID != actor.UserID {
		return nil, &domain.ForbiddenError{Reason: "patients can only access their own records"}
	}
	return pu, nil
}

// CreatePatient lets a doctor register a patient account, assigned to that doctor.
func (s *PatientService) CreatePatient(ctx context.Context, actor Actor, req RegisterPatientRequest) (*PatientView, error) {
	if err := requireDoctor(actor, "create patients"); err != nil {
		return nil, err
	}
	reg, err := registerPatient(ctx, s.users, s.syncer, s.bcryptCost, req, actor.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Patient created by doctor",
		zap.String("doctor_id", actor.UserID),
		zap.String("patient_id", reg.patient.PatientID),
	)
	v := newPatientView(reg.patient)
	uv := newUserView(reg.user)
	v.User = &uv
	v.Profile = newPatientProfileView(reg.profile, s.now())
	v.MirrorID = reg.patientMirror
	return v, nil
}

func (s *PatientService) GetPatient(ctx context.Context, actor Actor, patientID string) (*PatientView, error) {
	pu, err := s.authorizePatient(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}
	v := newPatientWithUserView(pu)
	profile, err := s.profiles.GetPatientProfile(ctx, pu.Patient.UserID)
	var nf *domain.NotFoundError
	switch {
	case err == nil:
		v.Profile = newPatientProfileView(profile, s.now())
	case !errors.As(err, &nf):
		return nil, err
	}
	return v, nil
}

type ListPatientsRequest struct {
	Status string
	Search string
	// All lists every patient instead of only those assigned to the calling doctor.
	All bool
	PageRequest
}

type ListPatientsResponse struct {
	Items []*PatientView `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// ListPatients returns the doctor's assigned patients by default; a patient only sees
// their own record.
func (s *PatientService) ListPatients(ctx context.Context, actor Actor, req ListPatientsRequest) (*ListPatientsResponse, error) {
	page, size := req.normalized()
	if !actor.IsDoctor() {
		pu, err := s.patients.GetPatientByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		return &ListPatientsResponse{Items: []*PatientView{newPatientWithUserView(pu)}, Total: 1, Page: 1, Size: size}, nil
	}

	filter := repository.PatientsFilter{Status: req.Status, Search: req.Search}
	if !req.All {
		filter.AssignedDoctorID = actor.UserID
	}
	list, total, err := s.patients.ListPatients(ctx, filter, page, size)
	if err != nil {
		return nil, err
	}
	items := make([]*PatientView, 0, len(list))
	for _, pu := range list {
		items = append(items, newPatientWithUserView(pu))
	}
	return &ListPatientsResponse{Items: items, Total: total, Page: page, Size: size}, nil
}

type UpdatePatientRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

func (s *PatientService) UpdatePatient(ctx context.Context, actor Actor, patientID string, req UpdatePatientRequest) (*PatientView, error) {
	if err := requireDoctor(actor, "update patient status"); err != nil {
		return nil, err
	}
	p, err := s.patients.UpdatePatientStatus(ctx, patientID, req.Status)
	if err != nil {
		return nil, err
	}
	v := newPatientView(p)
	v.MirrorID = syncMirror(ctx, s.syncer, mirror.PatientRecord(p))
	return v, nil
}

// DeletePatient removes the canonical row (analyses, consultations and charts cascade)
// and then the mirror rows of the patient and every cascaded child, best effort.
func (s *PatientService) DeletePatient(ctx context.Context, actor Actor, patientID string) error {
	if err := requireDoctor(actor, "delete patients"); err != nil {
		return err
	}
	deps, err := s.patients.DeletePatient(ctx, patientID)
	if err != nil {
		return err
	}
	for table, ids := range map[string][]string{
		mirror.TablePrakriti:      deps.PrakritiIDs,
		mirror.TableDiseases:      deps.DiseaseIDs,
		mirror.TableConsultations: deps.ConsultationIDs,
		mirror.TableDietCharts:    deps.DietChartIDs,
	} {
		for _, id := range ids {
			s.syncer.Remove(ctx, table, id)
		}
	}
	s.syncer.Remove(ctx, mirror.TablePatients, patientID)
	s.logger.Info("Patient deleted", zap.String("patient_id", patientID), zap.String("doctor_id", actor.UserID))
	return nil
}

type AssignDoctorRequest struct {
	// DoctorID defaults to the caller.
	DoctorID string `json:"doctor_id" validate:"omitempty,uuid"`
}

func (s *PatientService) AssignDoctor(ctx context.Context, actor Actor, patientID string, req AssignDoctorRequest) (*PatientView, error) {
	if err := requireDoctor(actor, "assign patients"); err != nil {
		return nil, err
	}
	doctorID := req.DoctorID
	if doctorID == "" {
		doctorID = actor.UserID
	} else {
		doctor, err := s.users.GetUser(ctx, doctorID)
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, domain.NewValidationError("doctor_id", "no such doctor")
		}
		if err != nil {
			return nil, err
		}
		if doctor.Role != domain.RoleDoctor {
			return nil, domain.NewValidationError("doctor_id", "user is not a doctor")
		}
	}

	p, err := s.patients.AssignDoctor(ctx, patientID, doctorID)
	if err != nil {
		return nil, err
	}
	v := newPatientView(p)
	v.MirrorID = syncMirror(ctx, s.syncer, mirror.PatientRecord(p))
	s.logger.Info("Doctor assigned", zap.String("patient_id", patientID), zap.String("doctor_id", doctorID))
	return v, nil
}

type PatientSummary struct {
	Patient             *PatientView        `json:"patient"`
	PrakritiAnalysis    *PrakritiView       `json:"prakriti_analysis"`
	ActiveDiseases      []*DiseaseView      `json:"active_diseases"`
	RecentConsultations []*ConsultationView `json:"recent_consultations"`
}

func (s *PatientService) Summary(ctx context.Context, actor Actor, patientID string) (*PatientSummary, error) {
	patient, err := s.GetPatient(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}
	out := &PatientSummary{Patient: patient}

	latest, err := s.analyses.LatestPrakriti(ctx, patientID)
	var nf *domain.NotFoundError
	switch {
	case err == nil:
		out.PrakritiAnalysis = newPrakritiView(latest)
	case !errors.As(err, &nf):
		return nil, err
	}

	diseases, err := s.analyses.ListDiseases(ctx, patientID, true)
	if err != nil {
		return nil, err
	}
	out.ActiveDiseases = make([]*DiseaseView, 0, len(diseases))
	for _, d := range diseases {
		out.ActiveDiseases = append(out.ActiveDiseases, newDiseaseView(d))
	}

	consultations, err := s.consultations.ListConsultations(ctx, patientID, recentConsultationsInSummary)
	if err != nil {
		return nil, err
	}
	out.RecentConsultations = make([]*ConsultationView, 0, len(consultations))
	for _, c := range consultations {
		out.RecentConsultations = append(out.RecentConsultations, newConsultationView(c))
	}
	return out, nil
}

// AnalysisStatus reports whether the patient has what diet chart generation needs.
type AnalysisStatus struct {
	PatientID          string  `json:"patient_id"`
	PrakritiCompleted  bool    `json:"prakriti_completed"`
	DiseaseCompleted   bool    `json:"disease_completed"`
	CanCreateDietChart bool    `json:"can_create_diet_chart"`
	PrakritiCount      int     `json:"prakriti_count"`
	ActiveDiseaseCount int     `json:"active_disease_count"`
	DominantDosha      *string `json:"dominant_dosha"`
}

func (s *PatientService) AnalysisStatus(ctx context.Context, actor Actor, patientID string) (*AnalysisStatus, error) {
	if _, err := s.authorizePatient(ctx, actor, patientID); err != nil {
		return nil, err
	}
	prakriti, err := s.analyses.ListPrakriti(ctx, patientID)
	if err != nil {
		return nil, err
	}
	diseases, err := s.analyses.ListDiseases(ctx, patientID, true)
	if err != nil {
		return nil, err
	}

	st := &AnalysisStatus{
		PatientID:          patientID,
		PrakritiCount:      len(prakriti),
		ActiveDiseaseCount: len(diseases),
		DiseaseCompleted:   len(diseases) > 0,
	}
	if len(prakriti) > 0 {
		latest := prakriti[0]
		st.PrakritiCompleted = latest.IsComplete()
		dominant := newPrakritiView(latest).DominantDosha
		st.DominantDosha = &dominant
	}
	st.CanCreateDietChart = st.PrakritiCompleted
	return st, nil
}
