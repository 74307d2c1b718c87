package httpapi

import (
	"net/http"

	"aahaara-data/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DietChartHandler diet chart CRUD, lifecycle transitions, generation and export.
type DietChartHandler struct {
	dietChartService DietChartService
	logger           *zap.Logger
}

func NewDietChartHandler(dietChartService DietChartService, logger *zap.Logger) *DietChartHandler {
	return &DietChartHandler{dietChartService: dietChartService, logger: logger}
}

func (h *DietChartHandler) CreateDietChart(w http.ResponseWriter, r *http.Request) {
	var req service.CreateDietChartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.dietChartService.CreateDietChart(r.Context(), actorFrom(r), req)
	respond(w, h.logger, http.StatusCreated, v, err)
}

func (h *DietChartHandler) GenerateDietChart(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateDietChartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.dietChartService.GenerateDietChart(r.Context(), actorFrom(r), req)
	respond(w, h.logger, http.StatusCreated, v, err)
}

func (h *DietChartHandler) GetDietChart(w http.ResponseWriter, r *http.Request) {
	v, err := h.dietChartService.GetDietChart(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, h.logger, http.StatusOK, v, err)
}

// ListDietCharts query: patient_id, status, mine, page, size.
func (h *DietChartHandler) ListDietCharts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.dietChartService.ListDietCharts(r.Context(), actorFrom(r), service.ListDietChartsRequest{
		PatientID:   q.Get("patient_id"),
		Status:      q.Get("status"),
		Mine:        parseBool(q.Get("mine")),
		PageRequest: pageRequest(r),
	})
	respond(w, h.logger, http.StatusOK, resp, err)
}

func (h *DietChartHandler) UpdateDietChart(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateDietChartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.dietChartService.UpdateDietChart(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	respond(w, h.logger, http.StatusOK, v, err)
}

// TransitionDietChart moves the chart along its lifecycle. Disallowed moves are a 400.
func (h *DietChartHandler) TransitionDietChart(w http.ResponseWriter, r *http.Request) {
	var req service.TransitionDietChartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.dietChartService.TransitionDietChart(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	respond(w, h.logger, http.StatusOK, v, err)
}

func (h *DietChartHandler) DeleteDietChart(w http.ResponseWriter, r *http.Request) {
	err := h.dietChartService.DeleteDietChart(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond[any](w, h.logger, http.StatusOK, nil, err)
}

func (h *DietChartHandler) ExportDietChart(w http.ResponseWriter, r *http.Request) {
	f, err := h.dietChartService.ExportDietChart(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFile(w, f)
}
