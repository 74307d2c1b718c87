package service

import (
	"context"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/repository"

	"go.uber.org/zap"
)

// foodExportPage is the repository page size used while collecting the export.
const foodExportPage = 200

// FoodService manages the shared food database. Any authenticated user may read it;
// only doctors write.
type FoodService struct {
	foods  repository.FoodItemsRepository
	logger *zap.Logger
}

func NewFoodService(foods repository.FoodItemsRepository, logger *zap.Logger) *FoodService {
	return &FoodService{foods: foods, logger: logger}
}

type FoodItemRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	ServingSize  string   `json:"serving_size" validate:"omitempty,max=50"`
	Calories     float64  `json:"calories" validate:"gte=0"`
	ProteinG     float64  `json:"protein_g" validate:"gte=0"`
	CarbsG       float64  `json:"carbs_g" validate:"gte=0"`
	FatG         float64  `json:"fat_g" validate:"gte=0"`
	FiberG       float64  `json:"fiber_g" validate:"gte=0"`
	Rasa         []string `json:"rasa" validate:"omitempty,dive,oneof=Sweet Sour Salty Pungent Bitter Astringent"`
	Guna         []string `json:"guna"`
	Virya        string   `json:"virya" validate:"omitempty,oneof=Heating Cooling Neutral"`
	VataEffect   string   `json:"vata_effect" validate:"omitempty,oneof=pacifies aggravates neutral"`
	PittaEffect  string   `json:"pitta_effect" validate:"omitempty,oneof=pacifies aggravates neutral"`
	KaphaEffect  string   `json:"kapha_effect" validate:"omitempty,oneof=pacifies aggravates neutral"`
	MealTypes    []string `json:"meal_types" validate:"omitempty,dive,oneof=breakfast brunch lunch snack dinner"`
	FoodCategory string   `json:"food_category" validate:"omitempty,max=50"`
	Tags         []string `json:"tags" validate:"omitempty,dive,max=50"`
}

func (r FoodItemRequest) apply(f *domain.FoodItem) {
	f.Name = r.Name
	f.ServingSize = orDefault(r.ServingSize, "100g")
	f.Calories = r.Calories
	f.ProteinG = r.ProteinG
	f.CarbsG = r.CarbsG
	f.FatG = r.FatG
	f.FiberG = r.FiberG
	f.Rasa = r.Rasa
	f.Guna = r.Guna
	f.Virya = orDefault(r.Virya, "Neutral")
	f.VataEffect = orDefault(r.VataEffect, domain.EffectNeutral)
	f.PittaEffect = orDefault(r.PittaEffect, domain.EffectNeutral)
	f.KaphaEffect = orDefault(r.KaphaEffect, domain.EffectNeutral)
	f.MealTypes = r.MealTypes
	f.FoodCategory = orDefault(r.FoodCategory, "other")
	f.Tags = r.Tags
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (s *FoodService) CreateFoodItem(ctx context.Context, actor Actor, req FoodItemRequest) (*FoodItemView, error) {
	if err := requireDoctor(actor, "add food items"); err != nil {
		return nil, err
	}
	f := &domain.FoodItem{CreatedBy: actor.UserID}
	req.apply(f)
	if err := s.foods.CreateFoodItem(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info("Food item created", zap.String("food_id", f.FoodID), zap.String("name", f.Name))
	return newFoodItemView(f), nil
}

func (s *FoodService) GetFoodItem(ctx context.Context, foodID string) (*FoodItemView, error) {
	f, err := s.foods.GetFoodItem(ctx, foodID)
	if err != nil {
		return nil, err
	}
	return newFoodItemView(f), nil
}

type ListFoodItemsRequest struct {
	repository.FoodFilter
	PageRequest
}

type ListFoodItemsResponse struct {
	Items []*FoodItemView `json:"items"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

func (s *FoodService) ListFoodItems(ctx context.Context, req ListFoodItemsRequest) (*ListFoodItemsResponse, error) {
	if err := validateFoodFilter(req.FoodFilter); err != nil {
		return nil, err
	}
	page, size := req.normalized()
	list, total, err := s.foods.ListFoodItems(ctx, req.FoodFilter, page, size)
	if err != nil {
		return nil, err
	}
	items := make([]*FoodItemView, 0, len(list))
	for _, f := range list {
		items = append(items, newFoodItemView(f))
	}
	return &ListFoodItemsResponse{Items: items, Total: total, Page: page, Size: size}, nil
}

func validateFoodFilter(f repository.FoodFilter) error {
	verr := &domain.ValidationError{}
	for field, v := range map[string]string{"vata_effect": f.VataEffect, "pitta_effect": f.PittaEffect, "kapha_effect": f.KaphaEffect} {
		if v != "" && !contains(domain.DoshaEffects, v) {
			verr.Add(field, "must be one of pacifies, aggravates, neutral")
		}
	}
	if f.MinCalories != nil && f.MaxCalories != nil && *f.MinCalories > *f.MaxCalories {
		verr.Add("max_calories", "must not be below min_calories")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (s *FoodService) UpdateFoodItem(ctx context.Context, actor Actor, foodID string, req FoodItemRequest) (*FoodItemView, error) {
	if err := requireDoctor(actor, "edit food items"); err != nil {
		return nil, err
	}
	f, err := s.foods.GetFoodItem(ctx, foodID)
	if err != nil {
		return nil, err
	}
	req.apply(f)
	if err := s.foods.UpdateFoodItem(ctx, f); err != nil {
		return nil, err
	}
	return newFoodItemView(f), nil
}

func (s *FoodService) DeleteFoodItem(ctx context.Context, actor Actor, foodID string) error {
	if err := requireDoctor(actor, "delete food items"); err != nil {
		return err
	}
	if err := s.foods.DeleteFoodItem(ctx, foodID); err != nil {
		return err
	}
	s.logger.Info("Food item deleted", zap.String("food_id", foodID))
	return nil
}

func (s *FoodService) ListCategories(ctx context.Context) (*FoodCategoriesResponse, error) {
	cats, err := s.foods.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}
	return &FoodCategoriesResponse{Categories: cats}, nil
}

func (s *FoodService) Stats(ctx context.Context) (*FoodStatsView, error) {
	st, err := s.foods.FoodStats(ctx)
	if err != nil {
		return nil, err
	}
	return newFoodStatsView(st), nil
}

// ExportFoodItems writes every food matching the filter to an xlsx workbook.
func (s *FoodService) ExportFoodItems(ctx context.Context, filter repository.FoodFilter) (*ExportFile, error) {
	if err := validateFoodFilter(filter); err != nil {
		return nil, err
	}
	var all []*domain.FoodItem
	for page := 1; ; page++ {
		list, total, err := s.foods.ListFoodItems(ctx, filter, page, foodExportPage)
		if err != nil {
			return nil, err
		}
		all = append(all, list...)
		if len(list) < foodExportPage || len(all) >= total {
			break
		}
	}
	return exportFoodItems(all)
}
