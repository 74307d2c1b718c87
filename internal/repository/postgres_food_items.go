package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aahaara-data/internal/domain"
)

// PostgresFoodItemsRepository implements FoodItemsRepository.
type PostgresFoodItemsRepository struct {
	db *sql.DB
}

func NewPostgresFoodItemsRepository(db *sql.DB) *PostgresFoodItemsRepository {
	return &PostgresFoodItemsRepository{db: db}
}

var _ FoodItemsRepository = (*PostgresFoodItemsRepository)(nil)

const foodColumns = `
	food_id::text, name, serving_size, calories, protein_g, carbs_g, fat_g, fiber_g,
	rasa, guna, virya, vata_effect, pitta_effect, kapha_effect, meal_types, food_category,
	tags, COALESCE(created_by::text, ''), created_at, updated_at`

func scanFood(s scanner) (*domain.FoodItem, error) {
	var f domain.FoodItem
	if err := s.Scan(
		&f.FoodID, &f.Name, &f.ServingSize, &f.Calories, &f.ProteinG, &f.CarbsG, &f.FatG, &f.FiberG,
		&f.Rasa, &f.Guna, &f.Virya, &f.VataEffect, &f.PittaEffect, &f.KaphaEffect, &f.MealTypes, &f.FoodCategory,
		&f.Tags, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PostgresFoodItemsRepository) CreateFoodItem(ctx context.Context, f *domain.FoodItem) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO food_items (
			name, serving_size, calories, protein_g, carbs_g, fat_g, fiber_g, rasa, guna, virya,
			vata_effect, pitta_effect, kapha_effect, meal_types, food_category, tags, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NULLIF($17, '')::uuid)
		RETURNING food_id::text, created_at, updated_at`,
		f.Name, f.ServingSize, f.Calories, f.ProteinG, f.CarbsG, f.FatG, f.FiberG,
		textArray(f.Rasa), textArray(f.Guna), f.Virya, f.VataEffect, f.PittaEffect, f.KaphaEffect,
		textArray(f.MealTypes), f.FoodCategory, textArray(f.Tags), f.CreatedBy,
	).Scan(&f.FoodID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return writeErr(err, "insert food item")
	}
	return nil
}

func (r *PostgresFoodItemsRepository) GetFoodItem(ctx context.Context, foodID string) (*domain.FoodItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM food_items WHERE food_id = $1`, foodID)
	f, err := scanFood(row)
	if err != nil {
		return nil, notFound(err, "food item", foodID)
	}
	return f, nil
}

func (r *PostgresFoodItemsRepository) ListFoodItems(ctx context.Context, filter FoodFilter, page, size int) ([]*domain.FoodItem, int, error) {
	var w whereBuilder
	if filter.VataEffect != "" {
		w.add("vata_effect = $%d", filter.VataEffect)
	}
	if filter.PittaEffect != "" {
		w.add("pitta_effect = $%d", filter.PittaEffect)
	}
	if filter.KaphaEffect != "" {
		w.add("kapha_effect = $%d", filter.KaphaEffect)
	}
	if filter.Category != "" {
		w.add("food_category = $%d", filter.Category)
	}
	if filter.Virya != "" {
		w.add("virya = $%d", filter.Virya)
	}
	if filter.MealType != "" {
		w.add("$%d = ANY(meal_types)", filter.MealType)
	}
	if filter.Tag != "" {
		w.add("$%d = ANY(tags)", filter.Tag)
	}
	if filter.Search != "" {
		w.add(`name ILIKE $%d ESCAPE '\'`, containsPattern(filter.Search))
	}
	if filter.MinCalories != nil {
		w.add("calories >= $%d", *filter.MinCalories)
	}
	if filter.MaxCalories != nil {
		w.add("calories <= $%d", *filter.MaxCalories)
	}
	if filter.MinProtein != nil {
		w.add("protein_g >= $%d", *filter.MinProtein)
	}
	if filter.TridoshicOnly {
		w.raw("vata_effect = 'pacifies' AND pitta_effect = 'pacifies' AND kapha_effect = 'pacifies'")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM food_items `+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count food items: %w", err)
	}

	limit, offset := pageBounds(page, size)
	query := fmt.Sprintf(`SELECT %s FROM food_items %s ORDER BY name LIMIT $%d OFFSET $%d`,
		foodColumns, w.sql(), w.next(), w.next()+1)
	rows, err := r.db.QueryContext(ctx, query, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list food items: %w", err)
	}
	defer rows.Close()

	var out []*domain.FoodItem
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan food item: %w", err)
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

func (r *PostgresFoodItemsRepository) UpdateFoodItem(ctx context.Context, f *domain.FoodItem) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE food_items SET
			name = $2, serving_size = $3, calories = $4, protein_g = $5, carbs_g = $6, fat_g = $7,
			fiber_g = $8, rasa = $9, guna = $10, virya = $11, vata_effect = $12, pitta_effect = $13,
			kapha_effect = $14, meal_types = $15, food_category = $16, tags = $17, updated_at = now()
		WHERE food_id = $1
		RETURNING updated_at`,
		f.FoodID, f.Name, f.ServingSize, f.Calories, f.ProteinG, f.CarbsG, f.FatG, f.FiberG,
		textArray(f.Rasa), textArray(f.Guna), f.Virya, f.VataEffect, f.PittaEffect, f.KaphaEffect,
		textArray(f.MealTypes), f.FoodCategory, textArray(f.Tags),
	).Scan(&f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "food item", ID: f.FoodID}
	}
	if err != nil {
		return writeErr(err, "update food item")
	}
	return nil
}

func (r *PostgresFoodItemsRepository) DeleteFoodItem(ctx context.Context, foodID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM food_items WHERE food_id = $1`, foodID)
	if err != nil {
		return fmt.Errorf("failed to delete food item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "food item", ID: foodID}
	}
	return nil
}

func (r *PostgresFoodItemsRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT food_category FROM food_items
		WHERE food_category <> ''
		ORDER BY food_category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list food categories: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan food category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresFoodItemsRepository) FoodStats(ctx context.Context) (*FoodStats, error) {
	st := &FoodStats{ByMealType: make(map[string]int, len(domain.MealSlots))}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE vata_effect = 'pacifies'),
			COUNT(*) FILTER (WHERE pitta_effect = 'pacifies'),
			COUNT(*) FILTER (WHERE kapha_effect = 'pacifies'),
			COUNT(*) FILTER (WHERE vata_effect = 'pacifies' AND pitta_effect = 'pacifies' AND kapha_effect = 'pacifies')
		FROM food_items`,
	).Scan(&st.Total, &st.VataPacifying, &st.PittaPacifying, &st.KaphaPacifying, &st.Tridoshic)
	if err != nil {
		return nil, fmt.Errorf("failed to count food stats: %w", err)
	}

	for _, slot := range domain.MealSlots {
		st.ByMealType[slot] = 0
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT m, COUNT(*) FROM food_items, unnest(meal_types) AS m
		GROUP BY m`)
	if err != nil {
		return nil, fmt.Errorf("failed to count foods per meal type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var slot string
		var n int
		if err := rows.Scan(&slot, &n); err != nil {
			return nil, fmt.Errorf("failed to scan meal type count: %w", err)
		}
		st.ByMealType[slot] = n
	}
	return st, rows.Err()
}
