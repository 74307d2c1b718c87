package domain

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// DietChartStatus is the lifecycle state of a diet chart.
type DietChartStatus string

const (
	DietChartDraft     DietChartStatus = "draft"
	DietChartActive    DietChartStatus = "active"
	DietChartCompleted DietChartStatus = "completed"
	DietChartArchived  DietChartStatus = "archived"
)

// dietChartTransitions lists the allowed targets for each state.
var dietChartTransitions = map[DietChartStatus][]DietChartStatus{
	DietChartDraft:     {DietChartActive, DietChartArchived},
	DietChartActive:    {DietChartCompleted, DietChartArchived},
	DietChartCompleted: {DietChartArchived},
	DietChartArchived:  {DietChartDraft, DietChartActive},
}

// ParseDietChartStatus rejects anything outside the four known states.
func ParseDietChartStatus(s string) (DietChartStatus, error) {
	st := DietChartStatus(s)
	if _, ok := dietChartTransitions[st]; !ok {
		return "", NewValidationError("status", "must be one of draft, active, completed, archived")
	}
	return st, nil
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s DietChartStatus) CanTransitionTo(next DietChartStatus) bool {
	for _, allowed := range dietChartTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next when the move is allowed, otherwise *InvalidTransitionError.
func (s DietChartStatus) TransitionTo(next DietChartStatus) (DietChartStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, &InvalidTransitionError{From: s, To: next}
	}
	return next, nil
}

var DietChartTypes = []string{
	"therapeutic", "maintenance", "detox", "weight_loss", "weight_gain",
	"pregnancy", "diabetic", "hypertension", "digestive", "immunity",
}

// MealSlots in serving order.
var MealSlots = []string{"breakfast", "brunch", "lunch", "snack", "dinner"}

// MealEntry is one slot of one day.
type MealEntry struct {
	Name        string `json:"name"`
	Calories    int    `json:"calories"`
	Description string `json:"description"`
}

// DailyMealPlan maps "day_N" to slot to entry.
type DailyMealPlan map[string]map[string]MealEntry

// DietChart maps diet_charts. Meals and MealDistribution are JSONB columns.
type DietChart struct {
	ChartID             string             `db:"chart_id"`
	PatientID           string             `db:"patient_id"`
	CreatedBy           string             `db:"created_by"`
	ChartName           string             `db:"chart_name"`
	ChartType           string             `db:"chart_type"`
	Status              DietChartStatus    `db:"status"`
	Description         sql.NullString     `db:"description"`
	TotalDays           int                `db:"total_days"`
	StartDate           sql.NullTime       `db:"start_date"`
	EndDate             sql.NullTime       `db:"end_date"`
	TargetCalories      int                `db:"target_calories"`
	MealDistribution    map[string]float64 `db:"meal_distribution"`
	Meals               DailyMealPlan      `db:"meals"`
	DoshaFocus          pq.StringArray     `db:"dosha_focus"`
	FoodRestrictions    pq.StringArray     `db:"food_restrictions"`
	SpecialInstructions sql.NullString     `db:"special_instructions"`
	IsAIGenerated       bool               `db:"is_ai_generated"`
	Version             int                `db:"version"`
	CreatedAt           time.Time          `db:"created_at"`
	UpdatedAt           time.Time          `db:"updated_at"`
}
