package service

import (
	"context"
	"errors"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/repository"

	"go.uber.org/zap"
)

// RecommendationService standing dietary guidance per constitution. Everyone reads,
// doctors write.
type RecommendationService struct {
	recs   repository.RecommendationsRepository
	foods  repository.FoodItemsRepository
	logger *zap.Logger
}

func NewRecommendationService(recs repository.RecommendationsRepository, foods repository.FoodItemsRepository, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{recs: recs, foods: foods, logger: logger}
}

type CreateRecommendationRequest struct {
	DoshaType          string   `json:"dosha_type" validate:"required,oneof=vata pitta kapha vata-pitta vata-kapha pitta-kapha tridosha"`
	RecommendationType string   `json:"recommendation_type" validate:"required,oneof=favorable_foods avoid_foods lifestyle timing preparation general"`
	Title              string   `json:"title" validate:"required,max=255"`
	Description        string   `json:"description" validate:"required"`
	DetailedGuidelines string   `json:"detailed_guidelines"`
	FoodIDs            []string `json:"food_ids" validate:"omitempty,dive,uuid"`
	Priority           int      `json:"priority" validate:"gte=0"`
	// IsActive defaults to true.
	IsActive *bool `json:"is_active"`
}

func (s *RecommendationService) CreateRecommendation(ctx context.Context, actor Actor, req CreateRecommendationRequest) (*RecommendationView, error) {
	if err := requireDoctor(actor, "write diet recommendations"); err != nil {
		return nil, err
	}
	if !contains(domain.DoshaTypes, req.DoshaType) {
		return nil, domain.NewValidationError("dosha_type", "unknown dosha type")
	}
	if !contains(domain.RecommendationTypes, req.RecommendationType) {
		return nil, domain.NewValidationError("recommendation_type", "unknown recommendation type")
	}
	for _, id := range req.FoodIDs {
		if _, err := s.foods.GetFoodItem(ctx, id); err != nil {
			var nf *domain.NotFoundError
			if errors.As(err, &nf) {
				return nil, domain.NewValidationError("food_ids", "no such food item: "+id)
			}
			return nil, err
		}
	}

	rec := &domain.DietRecommendation{
		DoshaType:          req.DoshaType,
		RecommendationType: req.RecommendationType,
		Title:              req.Title,
		Description:        req.Description,
		DetailedGuidelines: req.DetailedGuidelines,
		FoodIDs:            req.FoodIDs,
		Priority:           req.Priority,
		IsActive:           req.IsActive == nil || *req.IsActive,
		CreatedBy:          actor.UserID,
	}
	if rec.Priority <= 0 {
		rec.Priority = 1
	}
	if err := s.recs.CreateRecommendation(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("Diet recommendation created",
		zap.String("recommendation_id", rec.RecommendationID),
		zap.String("dosha_type", rec.DoshaType))
	return newRecommendationView(rec), nil
}

type ListRecommendationsRequest struct {
	DoshaType          string
	RecommendationType string
	// IncludeInactive is honoured for doctors only.
	IncludeInactive bool
}

func (s *RecommendationService) ListRecommendations(ctx context.Context, actor Actor, req ListRecommendationsRequest) ([]*RecommendationView, error) {
	if req.DoshaType != "" && !contains(domain.DoshaTypes, req.DoshaType) {
		return nil, domain.NewValidationError("dosha_type", "unknown dosha type")
	}
	if req.RecommendationType != "" && !contains(domain.RecommendationTypes, req.RecommendationType) {
		return nil, domain.NewValidationError("recommendation_type", "unknown recommendation type")
	}
	list, err := s.recs.ListRecommendations(ctx, repository.RecommendationsFilter{
		DoshaType:          req.DoshaType,
		RecommendationType: req.RecommendationType,
		ActiveOnly:         !(req.IncludeInactive && actor.IsDoctor()),
	})
	if err != nil {
		return nil, err
	}
	return recommendationViews(list), nil
}

func recommendationViews(list []*domain.DietRecommendation) []*RecommendationView {
	out := make([]*RecommendationView, 0, len(list))
	for _, r := range list {
		out = append(out, newRecommendationView(r))
	}
	return out
}
