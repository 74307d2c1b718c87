package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"testing"

	"aahaara-data/internal/domain"
	"aahaara-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestFoodItems_CRUD(t *testing.T) {
	repo := newMemRepo()
	svc := NewFoodService(repo, zap.NewNop())
	ctx := context.Background()
	doctor := seedDoctor(t, repo, "drmehta")
	asha, _ := seedPatient(t, repo, "asha", nil)

	created, err := svc.CreateFoodItem(ctx, doctor, FoodItemRequest{
		Name: "Mung Dal", Calories: 105, ProteinG: 7, VataEffect: "pacifies", PittaEffect: "pacifies", KaphaEffect: "pacifies",
	})
	require.NoError(t, err)
	assert.True(t, created.IsTridoshic)
	assert.Equal(t, "100g", created.ServingSize)
	assert.Equal(t, "Neutral", created.Virya)
	assert.Equal(t, map[string]string{"vata": "pacifies", "pitta": "pacifies", "kapha": "pacifies"}, created.DoshaBalance)
	assert.Equal(t, "Vata+, Pitta+, Kapha+", created.DoshaSummary)

	plain, err := svc.CreateFoodItem(ctx, doctor, FoodItemRequest{Name: "Water"})
	require.NoError(t, err)
	assert.False(t, plain.IsTridoshic)
	assert.Equal(t, "Neutral", plain.DoshaSummary)

	_, err = svc.CreateFoodItem(ctx, doctor, FoodItemRequest{Name: "Mung Dal"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = svc.CreateFoodItem(ctx, asha, FoodItemRequest{Name: "Ghee"})
	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, err, &forbidden)

	updated, err := svc.UpdateFoodItem(ctx, doctor, created.FoodID, FoodItemRequest{Name: "Mung Dal", KaphaEffect: "aggravates"})
	require.NoError(t, err)
	assert.False(t, updated.IsTridoshic)
	assert.Equal(t, "Kapha-", updated.DoshaSummary)

	got, err := svc.GetFoodItem(ctx, created.FoodID)
	require.NoError(t, err)
	assert.Equal(t, "aggravates", got.KaphaEffect)

	require.NoError(t, svc.DeleteFoodItem(ctx, doctor, created.FoodID))
	_, err = svc.GetFoodItem(ctx, created.FoodID)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestListFoodItems_FilterValidation(t *testing.T) {
	repo := newMemRepo()
	svc := NewFoodService(repo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.ListFoodItems(ctx, ListFoodItemsRequest{FoodFilter: repository.FoodFilter{VataEffect: "calms"}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "vata_effect")

	lo, hi := 300.0, 100.0
	_, err = svc.ListFoodItems(ctx, ListFoodItemsRequest{FoodFilter: repository.FoodFilter{MinCalories: &lo, MaxCalories: &hi}})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "max_calories")
}

func TestExportFoodItems_PagesThroughEverything(t *testing.T) {
	repo := newMemRepo()
	svc := NewFoodService(repo, zap.NewNop())
	ctx := context.Background()
	doctor := seedDoctor(t, repo, "drmehta")

	for i := 0; i < foodExportPage+5; i++ {
		_, err := svc.CreateFoodItem(ctx, doctor, FoodItemRequest{Name: fmt.Sprintf("Food %03d", i), Rasa: []string{"Sweet", "Bitter"}})
		require.NoError(t, err)
	}

	out, err := svc.ExportFoodItems(ctx, repository.FoodFilter{})
	require.NoError(t, err)
	assert.Equal(t, "food_database.xlsx", out.Name)

	f, err := excelize.OpenReader(bytes.NewReader(out.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Food Database")
	require.NoError(t, err)
	require.Len(t, rows, 1+foodExportPage+5)
	assert.Equal(t, "Food 000", rows[1][0])
	assert.Equal(t, "Sweet, Bitter", rows[1][7])
	assert.Equal(t, "No", rows[1][13])
}

func TestFoodCategoriesAndStats(t *testing.T) {
	repo := newMemRepo()
	svc := NewFoodService(repo, zap.NewNop())
	ctx := context.Background()
	doctor := seedDoctor(t, repo, "drmehta")

	for _, req := range []FoodItemRequest{
		{Name: "Basmati rice", FoodCategory: "grain", VataEffect: "pacifies", PittaEffect: "pacifies", KaphaEffect: "pacifies", MealTypes: []string{"lunch", "dinner"}},
		{Name: "Ghee", FoodCategory: "dairy", VataEffect: "pacifies", PittaEffect: "pacifies", KaphaEffect: "aggravates", MealTypes: []string{"lunch"}},
		{Name: "Barley", FoodCategory: "grain", KaphaEffect: "pacifies", MealTypes: []string{"breakfast"}},
		{Name: "Water"},
	} {
		_, err := svc.CreateFoodItem(ctx, doctor, req)
		require.NoError(t, err)
	}

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dairy", "grain", "other"}, cats.Categories)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalFoods)
	assert.Equal(t, FoodDoshaStats{VataPacifying: 2, PittaPacifying: 2, KaphaPacifying: 2, Tridoshic: 1}, st.DoshaStats)
	assert.Equal(t, map[string]int{"breakfast": 1, "brunch": 0, "lunch": 2, "snack": 0, "dinner": 1}, st.MealStats)
}

func TestListFoodItems_EchoesClampedPage(t *testing.T) {
	repo := newMemRepo()
	svc := NewFoodService(repo, zap.NewNop())
	ctx := context.Background()
	doctor := seedDoctor(t, repo, "drmehta")
	_, err := svc.CreateFoodItem(ctx, doctor, FoodItemRequest{Name: "Ghee"})
	require.NoError(t, err)

	resp, err := svc.ListFoodItems(ctx, ListFoodItemsRequest{PageRequest: PageRequest{Page: 1, Size: 1000}})
	require.NoError(t, err)
	assert.Equal(t, repository.MaxPageSize, resp.Size)
	assert.Len(t, resp.Items, 1)

	resp, err = svc.ListFoodItems(ctx, ListFoodItemsRequest{PageRequest: PageRequest{Page: math.MaxInt, Size: 50}})
	require.NoError(t, err)
	assert.Equal(t, repository.MaxPage, resp.Page)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 1, resp.Total)
}
