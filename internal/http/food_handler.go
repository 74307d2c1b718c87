package httpapi

import (
	"net/http"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/repository"
	"aahaara-data/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FoodHandler the Ayurvedic food database.
type FoodHandler struct {
	foodService FoodService
	logger      *zap.Logger
}

func NewFoodHandler(foodService FoodService, logger *zap.Logger) *FoodHandler {
	return &FoodHandler{foodService: foodService, logger: logger}
}

// foodFilter reads the list and export query parameters.
func foodFilter(r *http.Request) (repository.FoodFilter, error) {
	q := r.URL.Query()
	verr := &domain.ValidationError{}
	f := repository.FoodFilter{
		VataEffect:    q.Get("vata_effect"),
		PittaEffect:   q.Get("pitta_effect"),
		KaphaEffect:   q.Get("kapha_effect"),
		Category:      q.Get("category"),
		Virya:         q.Get("virya"),
		MealType:      q.Get("meal_type"),
		Tag:           q.Get("tag"),
		Search:        q.Get("search"),
		MinCalories:   parseFloatParam(r, "min_calories", verr),
		MaxCalories:   parseFloatParam(r, "max_calories", verr),
		MinProtein:    parseFloatParam(r, "min_protein", verr),
		TridoshicOnly: parseBool(q.Get("tridoshic")),
	}
	if len(verr.Fields) > 0 {
		return f, verr
	}
	return f, nil
}

func (h *FoodHandler) ListFoodItems(w http.ResponseWriter, r *http.Request) {
	filter, err := foodFilter(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	resp, err := h.foodService.ListFoodItems(r.Context(), service.ListFoodItemsRequest{FoodFilter: filter, PageRequest: pageRequest(r)})
	respond(w, h.logger, http.StatusOK, resp, err)
}

func (h *FoodHandler) GetFoodItem(w http.ResponseWriter, r *http.Request) {
	v, err := h.foodService.GetFoodItem(r.Context(), chi.URLParam(r, "id"))
	respond(w, h.logger, http.StatusOK, v, err)
}

func (h *FoodHandler) CreateFoodItem(w http.ResponseWriter, r *http.Request) {
	var req service.FoodItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.foodService.CreateFoodItem(r.Context(), actorFrom(r), req)
	respond(w, h.logger, http.StatusCreated, v, err)
}

func (h *FoodHandler) UpdateFoodItem(w http.ResponseWriter, r *http.Request) {
	var req service.FoodItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	v, err := h.foodService.UpdateFoodItem(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req)
	respond(w, h.logger, http.StatusOK, v, err)
}

func (h *FoodHandler) DeleteFoodItem(w http.ResponseWriter, r *http.Request) {
	err := h.foodService.DeleteFoodItem(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond[any](w, h.logger, http.StatusOK, nil, err)
}

func (h *FoodHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	resp, err := h.foodService.ListCategories(r.Context())
	respond(w, h.logger, http.StatusOK, resp, err)
}

func (h *FoodHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.foodService.Stats(r.Context())
	respond(w, h.logger, http.StatusOK, resp, err)
}

func (h *FoodHandler) ExportFoodItems(w http.ResponseWriter, r *http.Request) {
	filter, err := foodFilter(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	f, err := h.foodService.ExportFoodItems(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeFile(w, f)
}
