package httpapi

import (
	"net/http"

	"aahaara-data/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PatientHandler patient records and the analyses hanging off them.
type PatientHandler struct {
	patientService  PatientService
	analysisService AnalysisService
	logger          *zap.Logger
}

func NewPatientHandler(patientService PatientService, analysisService AnalysisService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{
		patientService:  patientService,
		analysisService: analysisService,
		logger:          logger,
	}
}

func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterPatientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.patientService.CreatePatient(r.Context(), actorFrom(r), req)
	respond(w, h.logger, http.StatusCreated, v, err)
}

func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	v, err := h.patientService.GetPatient(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, h.logger, http.StatusOK, v, err)
}

// ListPatients query: status, search, all, page, size.
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.patientService.ListPatients(r.Context(), actorFrom(r), service.ListPatientsRequest{
		Status:      q.Get("status"),
		Search:      q.Get("search"),
		All:         parseBool(q.Get("all")),
		PageRequest: pageRequest(r),
	})
	respond(w, h.logger, http.StatusOK, resp, err)
}

func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var req service.UpdatePatientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.patientService.UpdatePatient(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	respond(w, h.logger, http.StatusOK, v, err)
}

func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	err := h.patientService.DeletePatient(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond[any](w, h.logger, http.StatusOK, nil, err)
}

func (h *PatientHandler) Summary(w http.ResponseWriter, r *http.Request) {
	v, err := h.patientService.Summary(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, h.logger, http.StatusOK, v, err)
}

func (h *PatientHandler) AssignDoctor(w http.ResponseWriter, r *http.Request) {
	var req service.AssignDoctorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.patientService.AssignDoctor(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	respond(w, h.logger, http.StatusOK, v, err)
}

func (h *PatientHandler) AnalysisStatus(w http.ResponseWriter, r *http.Request) {
	v, err := h.patientService.AnalysisStatus(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, h.logger, http.StatusOK, v, err)
}

func (h *PatientHandler) CreatePrakriti(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePrakritiRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.analysisService.CreatePrakriti(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	respond(w, h.logger, http.StatusCreated, v, err)
}

func (h *PatientHandler) ListPrakriti(w http.ResponseWriter, r *http.Request) {
	v, err := h.analysisService.ListPrakriti(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, h.logger, http.StatusOK, v, err)
}

func (h *PatientHandler) CreateDisease(w http.ResponseWriter, r *http.Request) {
	var req service.CreateDiseaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.analysisService.CreateDisease(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	respond(w, h.logger, http.StatusCreated, v, err)
}

// ListDiseases query: active=true limits to unresolved diagnoses.
func (h *PatientHandler) ListDiseases(w http.ResponseWriter, r *http.Request) {
	v, err := h.analysisService.ListDiseases(r.Context(), actorFrom(r), chi.URLParam(r, "id"), parseBool(r.URL.Query().Get("active")))
	respond(w, h.logger, http.StatusOK, v, err)
}

func (h *PatientHandler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	var req service.CreateConsultationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.analysisService.CreateConsultation(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	respond(w, h.logger, http.StatusCreated, v, err)
}

func (h *PatientHandler) ListConsultations(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	v, err := h.analysisService.ListConsultations(r.Context(), actorFrom(r), chi.URLParam(r, "id"), limit)
	respond(w, h.logger, http.StatusOK, v, err)
}
