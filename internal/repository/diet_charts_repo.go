package repository

import (
	"context"

	"aahaara-data/internal/domain"
)

// DietChartsFilter all fields optional.
type DietChartsFilter struct {
	PatientID string
	CreatedBy string
	Status    domain.DietChartStatus
}

type DietChartsRepository interface {
	CreateDietChart(ctx context.Context, c *domain.DietChart) error
	GetDietChart(ctx context.Context, chartID string) (*domain.DietChart, error)
	ListDietCharts(ctx context.Context, filter DietChartsFilter, page, size int) ([]*domain.DietChart, int, error)
	// UpdateDietChart rewrites the editable fields and bumps version. Status is untouched.
	UpdateDietChart(ctx context.Context, c *domain.DietChart) error
	// UpdateDietChartStatus moves from -> to only if the row is still in from.
	// Returns ErrConcurrentUpdate when it is not.
	UpdateDietChartStatus(ctx context.Context, chartID string, from, to domain.DietChartStatus) (*domain.DietChart, error)
	DeleteDietChart(ctx context.Context, chartID string) error
}

// FoodFilter all fields optional. Effects are matched exactly.
type FoodFilter struct {
	VataEffect    string
	PittaEffect   string
	KaphaEffect   string
	Category      string
	Virya         string
	MealType      string
	Tag           string
	Search        string
	MinCalories   *float64
	MaxCalories   *float64
	MinProtein    *float64
	TridoshicOnly bool
}

type FoodItemsRepository interface {
	CreateFoodItem(ctx context.Context, f *domain.FoodItem) error
	GetFoodItem(ctx context.Context, foodID string) (*domain.FoodItem, error)
	// ListFoodItems orders by name.
	ListFoodItems(ctx context.Context, filter FoodFilter, page, size int) ([]*domain.FoodItem, int, error)
	UpdateFoodItem(ctx context.Context, f *domain.FoodItem) error
	DeleteFoodItem(ctx context.Context, foodID string) error
	// ListCategories returns the distinct non-empty categories, sorted.
	ListCategories(ctx context.Context) ([]string, error)
	FoodStats(ctx context.Context) (*FoodStats, error)
}

// FoodStats counts over the whole food database.
type FoodStats struct {
	Total          int
	VataPacifying  int
	PittaPacifying int
	KaphaPacifying int
	Tridoshic      int
	// ByMealType has an entry for every meal slot, zero when unused.
	ByMealType map[string]int
}

// RecommendationsFilter all fields optional.
type RecommendationsFilter struct {
	DoshaType          string
	RecommendationType string
	ActiveOnly         bool
}

type RecommendationsRepository interface {
	CreateRecommendation(ctx context.Context, r *domain.DietRecommendation) error
	// ListRecommendations orders by dosha_type, priority, title.
	ListRecommendations(ctx context.Context, filter RecommendationsFilter) ([]*domain.DietRecommendation, error)
}
