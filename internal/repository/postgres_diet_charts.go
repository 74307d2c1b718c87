package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aahaara-data/internal/domain"
)

// PostgresDietChartsRepository implements DietChartsRepository.
type PostgresDietChartsRepository struct {
	db *sql.DB
}

func NewPostgresDietChartsRepository(db *sql.DB) *PostgresDietChartsRepository {
	return &PostgresDietChartsRepository{db: db}
}

var _ DietChartsRepository = (*PostgresDietChartsRepository)(nil)

const dietChartColumns = `
	chart_id::text, patient_id::text, created_by::text, chart_name, chart_type, status,
	description, total_days, start_date, end_date, target_calories, meal_distribution, meals,
	dosha_focus, food_restrictions, special_instructions, is_ai_generated, version,
	created_at, updated_at`

func scanDietChart(s scanner) (*domain.DietChart, error) {
	var (
		c            domain.DietChart
		distribution []byte
		meals        []byte
	)
	if err := s.Scan(
		&c.ChartID, &c.PatientID, &c.CreatedBy, &c.ChartName, &c.ChartType, &c.Status,
		&c.Description, &c.TotalDays, &c.StartDate, &c.EndDate, &c.TargetCalories, &distribution, &meals,
		&c.DoshaFocus, &c.FoodRestrictions, &c.SpecialInstructions, &c.IsAIGenerated, &c.Version,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := fromJSONB(distribution, &c.MealDistribution); err != nil {
		return nil, fmt.Errorf("failed to decode meal_distribution: %w", err)
	}
	if err := fromJSONB(meals, &c.Meals); err != nil {
		return nil, fmt.Errorf("failed to decode meals: %w", err)
	}
	return &c, nil
}

func encodeChartJSON(c *domain.DietChart) (distribution, meals string, err error) {
	if distribution, err = toJSONB(c.MealDistribution); err != nil {
		return "", "", fmt.Errorf("failed to encode meal_distribution: %w", err)
	}
	if meals, err = toJSONB(c.Meals); err != nil {
		return "", "", fmt.Errorf("failed to encode meals: %w", err)
	}
	return distribution, meals, nil
}

func (r *PostgresDietChartsRepository) CreateDietChart(ctx context.Context, c *domain.DietChart) error {
	if c.Status == "" {
		c.Status = domain.DietChartDraft
	}
	distribution, meals, err := encodeChartJSON(c)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO diet_charts (
			patient_id, created_by, chart_name, chart_type, status, description, total_days,
			start_date, end_date, target_calories, meal_distribution, meals, dosha_focus,
			food_restrictions, special_instructions, is_ai_generated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12::jsonb, $13, $14, $15, $16)
		RETURNING chart_id::text, version, created_at, updated_at`,
		c.PatientID, c.CreatedBy, c.ChartName, c.ChartType, c.Status, nullable(c.Description), c.TotalDays,
		nullableTime(c.StartDate), nullableTime(c.EndDate), c.TargetCalories, distribution, meals,
		textArray(c.DoshaFocus), textArray(c.FoodRestrictions), nullable(c.SpecialInstructions), c.IsAIGenerated,
	).Scan(&c.ChartID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return writeErr(err, "insert diet chart")
	}
	return nil
}

func (r *PostgresDietChartsRepository) GetDietChart(ctx context.Context, chartID string) (*domain.DietChart, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+dietChartColumns+` FROM diet_charts WHERE chart_id = $1`, chartID)
	c, err := scanDietChart(row)
	if err != nil {
		return nil, notFound(err, "diet chart", chartID)
	}
	return c, nil
}

func (r *PostgresDietChartsRepository) ListDietCharts(ctx context.Context, filter DietChartsFilter, page, size int) ([]*domain.DietChart, int, error) {
	var w whereBuilder
	if filter.PatientID != "" {
		w.add("patient_id = $%d", filter.PatientID)
	}
	if filter.CreatedBy != "" {
		w.add("created_by = $%d", filter.CreatedBy)
	}
	if filter.Status != "" {
		w.add("status = $%d", string(filter.Status))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM diet_charts `+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count diet charts: %w", err)
	}

	limit, offset := pageBounds(page, size)
	query := fmt.Sprintf(`SELECT %s FROM diet_charts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		dietChartColumns, w.sql(), w.next(), w.next()+1)
	rows, err := r.db.QueryContext(ctx, query, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list diet charts: %w", err)
	}
	defer rows.Close()

	var out []*domain.DietChart
	for rows.Next() {
		c, err := scanDietChart(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan diet chart: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *PostgresDietChartsRepository) UpdateDietChart(ctx context.Context, c *domain.DietChart) error {
	distribution, meals, err := encodeChartJSON(c)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		UPDATE diet_charts SET
			chart_name = $2, chart_type = $3, description = $4, total_days = $5, start_date = $6,
			end_date = $7, target_calories = $8, meal_distribution = $9::jsonb, meals = $10::jsonb,
			dosha_focus = $11, food_restrictions = $12, special_instructions = $13,
			version = version + 1, updated_at = now()
		WHERE chart_id = $1
		RETURNING status, version, updated_at`,
		c.ChartID, c.ChartName, c.ChartType, nullable(c.Description), c.TotalDays, nullableTime(c.StartDate),
		nullableTime(c.EndDate), c.TargetCalories, distribution, meals,
		textArray(c.DoshaFocus), textArray(c.FoodRestrictions), nullable(c.SpecialInstructions),
	).Scan(&c.Status, &c.Version, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "diet chart", ID: c.ChartID}
	}
	if err != nil {
		return writeErr(err, "update diet chart")
	}
	return nil
}

func (r *PostgresDietChartsRepository) UpdateDietChartStatus(ctx context.Context, chartID string, from, to domain.DietChartStatus) (*domain.DietChart, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE diet_charts SET status = $3, updated_at = now()
		WHERE chart_id = $1 AND status = $2
		RETURNING `+dietChartColumns, chartID, string(from), string(to))
	c, err := scanDietChart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update diet chart status: %w", err)
	}
	return c, nil
}

func (r *PostgresDietChartsRepository) DeleteDietChart(ctx context.Context, chartID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM diet_charts WHERE chart_id = $1`, chartID)
	if err != nil {
		return fmt.Errorf("failed to delete diet chart: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "diet chart", ID: chartID}
	}
	return nil
}
