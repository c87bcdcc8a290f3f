package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/auric/recommender/pkg/models"
)

type PostgresCatalogStore struct {
	db     Querier
	logger *logrus.Logger
}

func NewPostgresCatalogStore(db Querier, logger *logrus.Logger) *PostgresCatalogStore {
	return &PostgresCatalogStore{db: db, logger: logger}
}

func (s *PostgresCatalogStore) ListActiveItems(ctx context.Context) ([]models.CatalogItem, error) {
	query := `
		SELECT sku, name, category, subcategory, description, tags,
			price, weight_g, attributes, manual_rating, quantity
		FROM products
		WHERE is_archived = false
		ORDER BY sku`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active items query failed: %w", err)
	}
	defer rows.Close()

	var items []models.CatalogItem
	for rows.Next() {
		var (
			item       models.CatalogItem
			category   *string
			subcat     *string
			desc       *string
			tags       []string
			attributes []byte
		)

		if err := rows.Scan(&item.SKU, &item.Name, &category, &subcat, &desc,
			&tags, &item.Price, &item.WeightGrams, &attributes,
			&item.ManualRating, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}

		if category != nil {
			item.Category = *category
		}
		if subcat != nil {
			item.Subcategory = *subcat
		}
		if desc != nil {
			item.Description = *desc
		}
		item.Tags = tags

		if len(attributes) > 0 {
			if err := json.Unmarshal(attributes, &item.Attributes); err != nil {
				s.logger.WithError(err).WithField("sku", item.SKU).
					Warn("Skipping malformed attribute map")
			}
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active items rows failed: %w", err)
	}

	return items, nil
}
