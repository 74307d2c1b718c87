package domain

import (
	"time"

	"github.com/lib/pq"
)

var RecommendationTypes = []string{"favorable_foods", "avoid_foods", "lifestyle", "timing", "preparation", "general"}

// DietRecommendation is standing dosha guidance. Priority 1 is the highest.
type DietRecommendation struct {
	RecommendationID   string         `db:"recommendation_id"`
	DoshaType          string         `db:"dosha_type"`
	RecommendationType string         `db:"recommendation_type"`
	Title              string         `db:"title"`
	Description        string         `db:"description"`
	DetailedGuidelines string         `db:"detailed_guidelines"`
	FoodIDs            pq.StringArray `db:"food_ids"`
	Priority           int            `db:"priority"`
	IsActive           bool           `db:"is_active"`
	CreatedBy          string         `db:"created_by"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}
