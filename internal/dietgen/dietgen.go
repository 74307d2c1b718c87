// Package dietgen builds a deterministic daily meal schedule from per-slot templates.
package dietgen

import (
	"fmt"
	"math"

	"aahaara-data/internal/domain"
)

// Generator rotates through a fixed template list per slot.
type Generator struct {
	templates map[string][]MealTemplate
}

// New returns a generator over the given templates. A nil map selects DefaultTemplates.
func New(templates map[string][]MealTemplate) *Generator {
	if templates == nil {
		templates = DefaultTemplates
	}
	return &Generator{templates: templates}
}

// GenerateDailyMeals uses DefaultTemplates.
func GenerateDailyMeals(dayCount, targetCalories int, percentages map[string]float64) (domain.DailyMealPlan, error) {
	return New(nil).Generate(dayCount, targetCalories, percentages)
}

// Generate fills day_1..day_N. Day i takes template (i-1) mod len for every slot in
// percentages; slots with no templates are left out. Calories are round(target*pct).
func (g *Generator) Generate(dayCount, targetCalories int, percentages map[string]float64) (domain.DailyMealPlan, error) {
	if dayCount <= 0 {
		return nil, domain.NewValidationError("day_count", "must be positive")
	}
	if targetCalories <= 0 {
		return nil, domain.NewValidationError("target_calories", "must be positive")
	}

	plan := make(domain.DailyMealPlan, dayCount)
	for day := 1; day <= dayCount; day++ {
		meals := make(map[string]domain.MealEntry, len(percentages))
		for slot, pct := range percentages {
			list := g.templates[slot]
			if len(list) == 0 {
				continue
			}
			tpl := list[(day-1)%len(list)]
			meals[slot] = domain.MealEntry{
				Name:        tpl.Name,
				Calories:    int(math.Round(float64(targetCalories) * pct)),
				Description: tpl.Description,
			}
		}
		plan[DayKey(day)] = meals
	}
	return plan, nil
}

func DayKey(day int) string {
	return fmt.Sprintf("day_%d", day)
}

// TotalCalories sums one day of the plan.
func TotalCalories(meals map[string]domain.MealEntry) int {
	total := 0
	for _, m := range meals {
		total += m.Calories
	}
	return total
}
