package httpapi

import (
	"net/http"

	"aahaara-data/internal/service"

	"go.uber.org/zap"
)

type RecommendationHandler struct {
	recommendationService RecommendationService
	logger                *zap.Logger
}

func NewRecommendationHandler(recommendationService RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService, logger: logger}
}

func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.recommendationService.ListRecommendations(r.Context(), actorFrom(r), service.ListRecommendationsRequest{
		DoshaType:          q.Get("dosha_type"),
		RecommendationType: q.Get("recommendation_type"),
		IncludeInactive:    parseBool(q.Get("include_inactive")),
	})
	respond(w, h.logger, http.StatusOK, list, err)
}

func (h *RecommendationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRecommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.recommendationService.CreateRecommendation(r.Context(), actorFrom(r), req)
	respond(w, h.logger, http.StatusCreated, v, err)
}
