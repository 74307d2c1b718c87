package repository

import (
	"context"
	"database/sql"
	"fmt"

	"aahaara-data/internal/domain"
)

// PostgresRecommendationsRepository implements RecommendationsRepository.
type PostgresRecommendationsRepository struct {
	db *sql.DB
}

func NewPostgresRecommendationsRepository(db *sql.DB) *PostgresRecommendationsRepository {
	return &PostgresRecommendationsRepository{db: db}
}

var _ RecommendationsRepository = (*PostgresRecommendationsRepository)(nil)

const recommendationColumns = `
	recommendation_id::text, dosha_type, recommendation_type, title, description, detailed_guidelines,
	food_ids::text[], priority, is_active, COALESCE(created_by::text, ''), created_at, updated_at`

func (r *PostgresRecommendationsRepository) CreateRecommendation(ctx context.Context, rec *domain.DietRecommendation) error {
	if rec.Priority <= 0 {
		rec.Priority = 1
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO diet_recommendations (
			dosha_type, recommendation_type, title, description, detailed_guidelines,
			food_ids, priority, is_active, created_by
		) VALUES ($1, $2, $3, $4, $5, $6::uuid[], $7, $8, NULLIF($9, '')::uuid)
		RETURNING recommendation_id::text, created_at, updated_at`,
		rec.DoshaType, rec.RecommendationType, rec.Title, rec.Description, rec.DetailedGuidelines,
		textArray(rec.FoodIDs), rec.Priority, rec.IsActive, rec.CreatedBy,
	).Scan(&rec.RecommendationID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return writeErr(err, "insert diet recommendation")
	}
	return nil
}

func (r *PostgresRecommendationsRepository) ListRecommendations(ctx context.Context, filter RecommendationsFilter) ([]*domain.DietRecommendation, error) {
	var w whereBuilder
	if filter.DoshaType != "" {
		w.add("dosha_type = $%d", filter.DoshaType)
	}
	if filter.RecommendationType != "" {
		w.add("recommendation_type = $%d", filter.RecommendationType)
	}
	if filter.ActiveOnly {
		w.raw("is_active")
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+recommendationColumns+` FROM diet_recommendations `+
		w.sql()+` ORDER BY dosha_type, priority, title`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list diet recommendations: %w", err)
	}
	defer rows.Close()

	var out []*domain.DietRecommendation
	for rows.Next() {
		var rec domain.DietRecommendation
		if err := rows.Scan(
			&rec.RecommendationID, &rec.DoshaType, &rec.RecommendationType, &rec.Title, &rec.Description,
			&rec.DetailedGuidelines, &rec.FoodIDs, &rec.Priority, &rec.IsActive, &rec.CreatedBy,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan diet recommendation: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
