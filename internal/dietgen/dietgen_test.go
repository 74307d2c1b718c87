package dietgen

import (
	"errors"
	"testing"

	"aahaara-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDailyMeals_CycleWrapAndCalories(t *testing.T) {
	pct := map[string]float64{"breakfast": 0.25, "lunch": 0.30, "dinner": 0.20}
	count := len(DefaultTemplates["breakfast"])

	plan, err := GenerateDailyMeals(count+1, 2000, pct)
	require.NoError(t, err)
	require.Len(t, plan, count+1)

	first := plan[DayKey(1)]["breakfast"]
	wrapped := plan[DayKey(1+count)]["breakfast"]
	assert.Equal(t, first.Name, wrapped.Name)
	assert.NotEqual(t, first.Name, plan[DayKey(2)]["breakfast"].Name)

	for day := 1; day <= count+1; day++ {
		meals := plan[DayKey(day)]
		assert.Equal(t, 500, meals["breakfast"].Calories)
		assert.Equal(t, 600, meals["lunch"].Calories)
		assert.Equal(t, 400, meals["dinner"].Calories)
		assert.Len(t, meals, 3)
	}
}

func TestGenerate_SlotWithoutTemplatesIsOmitted(t *testing.T) {
	g := New(map[string][]MealTemplate{
		"lunch": {{Name: "A"}, {Name: "B"}},
	})
	plan, err := g.Generate(3, 1800, map[string]float64{"lunch": 0.5, "supper": 0.5})
	require.NoError(t, err)

	for _, meals := range plan {
		_, ok := meals["supper"]
		assert.False(t, ok)
	}
	assert.Equal(t, "A", plan["day_1"]["lunch"].Name)
	assert.Equal(t, "B", plan["day_2"]["lunch"].Name)
	assert.Equal(t, "A", plan["day_3"]["lunch"].Name)
	assert.Equal(t, 900, plan["day_3"]["lunch"].Calories)
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := GenerateDailyMeals(10, 2200, DefaultMealDistribution)
	require.NoError(t, err)
	b, err := GenerateDailyMeals(10, 2200, DefaultMealDistribution)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 2200, TotalCalories(a["day_4"]))
}

func TestGenerate_RejectsNonPositiveInputs(t *testing.T) {
	var ve *domain.ValidationError

	_, err := GenerateDailyMeals(0, 2000, DefaultMealDistribution)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "day_count")

	_, err = GenerateDailyMeals(7, 0, DefaultMealDistribution)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "target_calories")
}
