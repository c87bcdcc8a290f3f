package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/auric/recommender/pkg/models"
)

type PostgresOrderStore struct {
	db     Querier
	logger *logrus.Logger
}

func NewPostgresOrderStore(db Querier, logger *logrus.Logger) *PostgresOrderStore {
	return &PostgresOrderStore{db: db, logger: logger}
}

// OrdersForUser returns the user's pending and completed orders, newest
// first. Line items come back flattened and are regrouped per order here.
func (s *PostgresOrderStore) OrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	query := `
		SELECT o.id, o.customer_id, o.status, o.created_at,
			oi.sku, oi.qty, oi.price
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.customer_id = $1
			AND o.status IN ('PENDING', 'COMPLETED')
		ORDER BY o.created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("orders query failed: %w", err)
	}
	defer rows.Close()

	var (
		orders  []models.Order
		indexOf = make(map[uuid.UUID]int)
	)

	for rows.Next() {
		var (
			id         uuid.UUID
			customerID uuid.UUID
			status     string
			createdAt  time.Time
			item       models.OrderItem
		)
		if err := rows.Scan(&id, &customerID, &status, &createdAt,
			&item.SKU, &item.Qty, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}

		idx, ok := indexOf[id]
		if !ok {
			orders = append(orders, models.Order{
				ID:         id,
				CustomerID: customerID,
				Status:     status,
				CreatedAt:  createdAt,
			})
			idx = len(orders) - 1
			indexOf[id] = idx
		}
		orders[idx].Items = append(orders[idx].Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders rows failed: %w", err)
	}

	return orders, nil
}
