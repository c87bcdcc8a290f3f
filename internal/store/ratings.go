package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/auric/recommender/pkg/models"
)

type PostgresRatingStore struct {
	db     Querier
	logger *logrus.Logger
}

func NewPostgresRatingStore(db Querier, logger *logrus.Logger) *PostgresRatingStore {
	return &PostgresRatingStore{db: db, logger: logger}
}

func (s *PostgresRatingStore) RatingsForUser(ctx context.Context, userID string) ([]models.Rating, error) {
	query := `
		SELECT sku, stars, created_at
		FROM ratings
		WHERE customer_ref = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ratings query failed: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.SKU, &r.Stars, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ratings rows failed: %w", err)
	}

	return ratings, nil
}
