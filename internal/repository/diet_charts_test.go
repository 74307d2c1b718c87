package repository

import (
	"context"
	"testing"
	"time"

	"aahaara-data/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dietChartRowColumns = []string{
	"chart_id", "patient_id", "created_by", "chart_name", "chart_type", "status",
	"description", "total_days", "start_date", "end_date", "target_calories", "meal_distribution", "meals",
	"dosha_focus", "food_restrictions", "special_instructions", "is_ai_generated", "version",
	"created_at", "updated_at",
}

func dietChartRow(rows *sqlmock.Rows, id string, status domain.DietChartStatus, now time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, "p-1", "doc-1", "Pitta reset", "therapeutic", string(status),
		nil, 7, now, now.AddDate(0, 0, 6), 2000, `{"lunch":0.3}`,
		`{"day_1":{"lunch":{"name":"Khichdi","calories":600,"description":"Moong dal"}}}`,
		"{pitta}", "{}", nil, true, 2, now, now,
	)
}

func TestGetDietChart_DecodesJSONB(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDietChartsRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM diet_charts WHERE chart_id = \$1`).
		WithArgs("dc-1").
		WillReturnRows(dietChartRow(sqlmock.NewRows(dietChartRowColumns), "dc-1", domain.DietChartActive, now))

	c, err := repo.GetDietChart(context.Background(), "dc-1")

	require.NoError(t, err)
	assert.Equal(t, domain.DietChartActive, c.Status)
	assert.InDelta(t, 0.3, c.MealDistribution["lunch"], 1e-9)
	assert.Equal(t, 600, c.Meals["day_1"]["lunch"].Calories)
	assert.Equal(t, []string{"pitta"}, []string(c.DoshaFocus))
	assert.Equal(t, 2, c.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDietChart_DefaultsToDraft(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDietChartsRepository(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO diet_charts`).
		WithArgs("p-1", "doc-1", "Plan", "maintenance", domain.DietChartDraft, nil, 7, nil, nil, 1800,
			`{"lunch":1}`, "{}", sqlmock.AnyArg(), sqlmock.AnyArg(), nil, false).
		WillReturnRows(sqlmock.NewRows([]string{"chart_id", "version", "created_at", "updated_at"}).
			AddRow("dc-9", 1, now, now))

	c := &domain.DietChart{
		PatientID: "p-1", CreatedBy: "doc-1", ChartName: "Plan", ChartType: "maintenance",
		TotalDays: 7, TargetCalories: 1800, MealDistribution: map[string]float64{"lunch": 1},
	}
	require.NoError(t, repo.CreateDietChart(context.Background(), c))
	assert.Equal(t, "dc-9", c.ChartID)
	assert.Equal(t, domain.DietChartDraft, c.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDietChartStatus_CompareAndSet(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDietChartsRepository(db)
	now := time.Now()

	mock.ExpectQuery(`UPDATE diet_charts SET status = \$3 .* WHERE chart_id = \$1 AND status = \$2`).
		WithArgs("dc-1", "draft", "active").
		WillReturnRows(dietChartRow(sqlmock.NewRows(dietChartRowColumns), "dc-1", domain.DietChartActive, now))
	mock.ExpectQuery(`UPDATE diet_charts SET status`).
		WithArgs("dc-1", "draft", "active").
		WillReturnRows(sqlmock.NewRows(dietChartRowColumns))

	c, err := repo.UpdateDietChartStatus(context.Background(), "dc-1", domain.DietChartDraft, domain.DietChartActive)
	require.NoError(t, err)
	assert.Equal(t, domain.DietChartActive, c.Status)

	_, err = repo.UpdateDietChartStatus(context.Background(), "dc-1", domain.DietChartDraft, domain.DietChartActive)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDietCharts_ByStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDietChartsRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM diet_charts WHERE patient_id = \$1 AND status = \$2`).
		WithArgs("p-1", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("p-1", "active", 20, 0).
		WillReturnRows(dietChartRow(sqlmock.NewRows(dietChartRowColumns), "dc-1", domain.DietChartActive, now))

	list, total, err := repo.ListDietCharts(context.Background(),
		DietChartsFilter{PatientID: "p-1", Status: domain.DietChartActive}, 1, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDietChart_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresDietChartsRepository(db)

	mock.ExpectQuery(`UPDATE diet_charts SET`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "version", "updated_at"}))

	err := repo.UpdateDietChart(context.Background(), &domain.DietChart{ChartID: "dc-x"})

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "dc-x", nf.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

var foodRowColumns = []string{
	"food_id", "name", "serving_size", "calories", "protein_g", "carbs_g", "fat_g", "fiber_g",
	"rasa", "guna", "virya", "vata_effect", "pitta_effect", "kapha_effect", "meal_types", "food_category",
	"tags", "created_by", "created_at", "updated_at",
}

func TestListFoodItems_Filters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFoodItemsRepository(db)
	now := time.Now()
	maxCal := 300.0

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM food_items WHERE pitta_effect = \$1 AND \$2 = ANY\(meal_types\) AND calories <= \$3 AND vata_effect = 'pacifies' AND pitta_effect = 'pacifies' AND kapha_effect = 'pacifies'`).
		WithArgs("pacifies", "lunch", maxCal).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY name LIMIT \$4 OFFSET \$5`).
		WithArgs("pacifies", "lunch", maxCal, 20, 0).
		WillReturnRows(sqlmock.NewRows(foodRowColumns).AddRow(
			"f-1", "Basmati rice", "1 cup", 205.0, 4.3, 45.0, 0.4, 0.6,
			"{Madhura}", "{Laghu}", "Cooling", "pacifies", "pacifies", "pacifies", "{lunch,dinner}", "grain",
			"{staple}", "", now, now,
		))

	items, total, err := repo.ListFoodItems(context.Background(), FoodFilter{
		PittaEffect: "pacifies", MealType: "lunch", MaxCalories: &maxCal, TridoshicOnly: true,
	}, 1, 20)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsTridoshic())
	assert.Equal(t, []string{"lunch", "dinner"}, []string(items[0].MealTypes))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListFoodItems_SearchEscapesWildcards(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFoodItemsRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM food_items WHERE name ILIKE \$1 ESCAPE '\\'`).
		WithArgs(`%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY name LIMIT \$2 OFFSET \$3`).
		WithArgs(`%50\%%`, MaxPageSize, 0).
		WillReturnRows(sqlmock.NewRows(foodRowColumns))

	items, total, err := repo.ListFoodItems(context.Background(), FoodFilter{Search: "50%"}, 1, 5000)

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListCategories(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFoodItemsRepository(db)

	mock.ExpectQuery(`SELECT DISTINCT food_category FROM food_items\s+WHERE food_category <> ''\s+ORDER BY food_category`).
		WillReturnRows(sqlmock.NewRows([]string{"food_category"}).AddRow("dairy").AddRow("grain"))

	cats, err := repo.ListCategories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"dairy", "grain"}, cats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFoodStats(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFoodItemsRepository(db)

	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE vata_effect = 'pacifies'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "vata", "pitta", "kapha", "tridoshic"}).AddRow(12, 5, 4, 3, 2))
	mock.ExpectQuery(`unnest\(meal_types\)`).
		WillReturnRows(sqlmock.NewRows([]string{"m", "count"}).AddRow("lunch", 7).AddRow("breakfast", 3))

	st, err := repo.FoodStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, st.Total)
	assert.Equal(t, 5, st.VataPacifying)
	assert.Equal(t, 4, st.PittaPacifying)
	assert.Equal(t, 3, st.KaphaPacifying)
	assert.Equal(t, 2, st.Tridoshic)
	assert.Equal(t, map[string]int{"breakfast": 3, "brunch": 0, "lunch": 7, "snack": 0, "dinner": 0}, st.ByMealType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecommendations_FilterAndOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresRecommendationsRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM diet_recommendations WHERE dosha_type = \$1 AND is_active ORDER BY dosha_type, priority, title`).
		WithArgs("pitta").
		WillReturnRows(sqlmock.NewRows([]string{
			"recommendation_id", "dosha_type", "recommendation_type", "title", "description", "detailed_guidelines",
			"food_ids", "priority", "is_active", "created_by", "created_at", "updated_at",
		}).AddRow("r-1", "pitta", "favorable_foods", "Cooling foods", "Prefer sweet and bitter tastes", "",
			"{f-1,f-2}", 1, true, "doc-1", now, now))

	list, err := repo.ListRecommendations(context.Background(), RecommendationsFilter{DoshaType: "pitta", ActiveOnly: true})

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cooling foods", list[0].Title)
	assert.Equal(t, []string{"f-1", "f-2"}, []string(list[0].FoodIDs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecommendation_DefaultsPriority(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresRecommendationsRepository(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO diet_recommendations`).
		WithArgs("vata", "timing", "Regular meals", "Eat at fixed hours", "", sqlmock.AnyArg(), 1, true, "doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"recommendation_id", "created_at", "updated_at"}).AddRow("r-9", now, now))

	rec := &domain.DietRecommendation{
		DoshaType: "vata", RecommendationType: "timing", Title: "Regular meals",
		Description: "Eat at fixed hours", IsActive: true, CreatedBy: "doc-1",
	}
	require.NoError(t, repo.CreateRecommendation(context.Background(), rec))
	assert.Equal(t, "r-9", rec.RecommendationID)
	assert.Equal(t, 1, rec.Priority)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFoodItem_DuplicateName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgresFoodItemsRepository(db)

	mock.ExpectQuery(`INSERT INTO food_items`).
		WillReturnError(pqUnique("food_items_name_key"))

	err := repo.CreateFoodItem(context.Background(), &domain.FoodItem{Name: "Ghee"})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "name", conflict.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}
